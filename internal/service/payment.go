package service

import (
	"context"
	"errors"
	"fmt"
	"heriken-shop/internal/client"
	"heriken-shop/internal/model"
	"heriken-shop/internal/repository"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	CallbackSuccess = "success"
	CallbackFailure = "failure"
	CallbackCancel  = "cancel"
)

type CallbackResult struct {
	OrderID uint
	Success bool
}

type RefundInput struct {
	Amount *decimal.Decimal
	Reason string
	SKU    string
}

type PaymentService interface {
	Initiate(ctx context.Context, order *model.Order) (*model.Payment, string, error)
	HandleCallback(ctx context.Context, paymentID, status string) (*CallbackResult, error)
	Query(ctx context.Context, paymentID string) (*client.BkashQueryResult, error)
	Refund(ctx context.Context, actorID uint, paymentID string, in RefundInput) (*model.Payment, error)
	SearchTransaction(ctx context.Context, trxID string) (*client.BkashTransaction, error)
}

type paymentServiceImpl struct {
	db             *gorm.DB
	bkashClient    client.BkashClient
	serviceBaseUrl string
	paymentRepo    repository.PaymentRepository
	orderRepo      repository.OrderRepository
	auditRepo      repository.AuditLogRepository
	notifier       NotificationService
}

func NewPaymentService(
	db *gorm.DB,
	bkashClient client.BkashClient,
	serviceBaseUrl string,
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	auditRepo repository.AuditLogRepository,
	notifier NotificationService,
) PaymentService {
	return &paymentServiceImpl{
		db:             db,
		bkashClient:    bkashClient,
		serviceBaseUrl: strings.TrimRight(serviceBaseUrl, "/"),
		paymentRepo:    paymentRepo,
		orderRepo:      orderRepo,
		auditRepo:      auditRepo,
		notifier:       notifier,
	}
}

// Initiate creates the bKash payment for an already committed order and
// returns the URL the customer must be sent to.
func (s *paymentServiceImpl) Initiate(ctx context.Context, order *model.Order) (*model.Payment, string, error) {
	resp, err := s.bkashClient.CreatePayment(ctx, client.BkashCreatePaymentRequest{
		Amount:         order.TotalAmount,
		OrderNumber:    order.OrderNumber,
		PayerReference: order.ShippingPhone,
		CallbackURL:    fmt.Sprintf("%s/api/payment/bkash/callback", s.serviceBaseUrl),
	})
	if err != nil {
		return nil, "", fmt.Errorf("bkash api create payment: %w", err)
	}

	payment := &model.Payment{
		OrderID:   order.ID,
		Method:    model.PaymentMethodBkash,
		PaymentID: resp.PaymentID,
		Amount:    order.TotalAmount,
		Currency:  "BDT",
		Status:    model.PaymentInitiated,
	}
	if err := s.paymentRepo.Create(ctx, nil, payment); err != nil {
		return nil, "", fmt.Errorf("store payment in db: %w", err)
	}

	return payment, resp.BkashURL, nil
}

func (s *paymentServiceImpl) findPayment(ctx context.Context, paymentID string) (*model.Payment, error) {
	payment, err := s.paymentRepo.FindByPaymentID(ctx, nil, paymentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return payment, nil
}

// HandleCallback settles a payment after bKash redirects the customer back.
// A payment that already left the initiated state is reported as is, so a
// repeated callback never executes twice.
func (s *paymentServiceImpl) HandleCallback(ctx context.Context, paymentID, status string) (*CallbackResult, error) {
	if paymentID == "" {
		return nil, model.NewValidationError("paymentID", "paymentID is required")
	}
	switch status {
	case CallbackSuccess, CallbackFailure, CallbackCancel:
	default:
		return nil, model.NewValidationError("status", "Invalid callback status")
	}

	payment, err := s.findPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	result := &CallbackResult{OrderID: payment.OrderID}

	if payment.Status != model.PaymentInitiated {
		result.Success = payment.Status == model.PaymentCompleted
		return result, nil
	}

	switch status {
	case CallbackFailure:
		return result, s.settleFailed(ctx, payment, model.PaymentFailed, "Payment failed")
	case CallbackCancel:
		return result, s.settleFailed(ctx, payment, model.PaymentCancelled, "Payment cancelled")
	}

	exec, err := s.bkashClient.ExecutePayment(ctx, paymentID)
	if err != nil {
		log.WithError(err).WithField("payment_id", paymentID).Error("bKash execute payment failed")
		msg := "Payment execution failed"
		var gwErr *client.GatewayError
		if errors.As(err, &gwErr) {
			msg = gwErr.Describe()
		}
		return result, s.settleFailed(ctx, payment, model.PaymentFailed, msg)
	}
	if !exec.Completed() {
		return result, s.settleFailed(ctx, payment, model.PaymentFailed, "Transaction status "+exec.TransactionStatus)
	}

	var order *model.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		moved, err := s.paymentRepo.Transition(ctx, tx, paymentID, []model.PaymentState{model.PaymentInitiated}, map[string]interface{}{
			"status":         model.PaymentCompleted,
			"trx_id":         exec.TrxID,
			"status_message": exec.StatusMessage,
		})
		if err != nil {
			return fmt.Errorf("mark payment completed: %w", err)
		}
		if !moved {
			return nil
		}

		if _, err := s.orderRepo.Update(ctx, tx, payment.OrderID, map[string]interface{}{
			"payment_status": model.PaymentStatusPaid,
		}); err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}

		order, err = s.orderRepo.FindByID(ctx, tx, payment.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	result.Success = true
	if order != nil && s.notifier != nil && order.ShippingPhone != "" {
		_ = s.notifier.SendPaymentReceived(ctx, order.ShippingPhone, order.OrderNumber, payment.Amount, "bKash")
	}

	log.WithFields(log.Fields{
		"payment_id": paymentID,
		"trx_id":     exec.TrxID,
		"order_id":   payment.OrderID,
	}).Info("bKash payment completed")

	return result, nil
}

func (s *paymentServiceImpl) settleFailed(ctx context.Context, payment *model.Payment, state model.PaymentState, message string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		moved, err := s.paymentRepo.Transition(ctx, tx, payment.PaymentID, []model.PaymentState{model.PaymentInitiated}, map[string]interface{}{
			"status":         state,
			"status_message": message,
		})
		if err != nil {
			return fmt.Errorf("mark payment %s: %w", state, err)
		}
		if !moved {
			return nil
		}

		if _, err := s.orderRepo.Update(ctx, tx, payment.OrderID, map[string]interface{}{
			"payment_status": model.PaymentStatusFailed,
		}); err != nil {
			return fmt.Errorf("mark order payment failed: %w", err)
		}
		return nil
	})
}

func (s *paymentServiceImpl) Query(ctx context.Context, paymentID string) (*client.BkashQueryResult, error) {
	res, err := s.bkashClient.QueryPayment(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("bkash api query payment: %w", err)
	}
	return res, nil
}

func (s *paymentServiceImpl) Refund(ctx context.Context, actorID uint, paymentID string, in RefundInput) (*model.Payment, error) {
	payment, err := s.findPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != model.PaymentCompleted {
		return nil, model.NewStatusError(model.ErrConflict, "Only completed payments can be refunded")
	}

	amount := payment.Amount
	if in.Amount != nil {
		if !in.Amount.IsPositive() || in.Amount.GreaterThan(payment.Amount) {
			return nil, model.NewValidationError("amount", "Invalid refund amount")
		}
		amount = *in.Amount
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, model.NewValidationError("reason", "Refund reason is required")
	}

	resp, err := s.bkashClient.RefundPayment(ctx, client.BkashRefundRequest{
		PaymentID: payment.PaymentID,
		TrxID:     payment.TrxID,
		Amount:    amount,
		Reason:    reason,
		SKU:       in.SKU,
	})
	if err != nil {
		return nil, fmt.Errorf("bkash api refund payment: %w", err)
	}

	fields := map[string]interface{}{
		"status":         model.PaymentRefunded,
		"refund_trx_id":  resp.RefundTrxID,
		"status_message": "Refunded " + amount.StringFixed(2) + ": " + reason,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		moved, err := s.paymentRepo.Transition(ctx, tx, paymentID, []model.PaymentState{model.PaymentCompleted}, fields)
		if err != nil {
			return fmt.Errorf("mark payment refunded: %w", err)
		}
		if !moved {
			return model.NewStatusError(model.ErrConflict, "Payment was changed while refunding")
		}

		if _, err := s.orderRepo.Update(ctx, tx, payment.OrderID, map[string]interface{}{
			"payment_status": model.PaymentStatusRefunded,
		}); err != nil {
			return fmt.Errorf("mark order refunded: %w", err)
		}

		return s.auditRepo.Record(ctx, tx, actorID, repository.AuditRefundPayment, "Payment", strconv.FormatUint(uint64(payment.ID), 10), fields)
	})
	if err != nil {
		return nil, err
	}

	return s.paymentRepo.FindByPaymentID(ctx, nil, paymentID)
}

func (s *paymentServiceImpl) SearchTransaction(ctx context.Context, trxID string) (*client.BkashTransaction, error) {
	res, err := s.bkashClient.SearchTransaction(ctx, trxID)
	if err != nil {
		return nil, fmt.Errorf("bkash api search transaction: %w", err)
	}
	return res, nil
}
