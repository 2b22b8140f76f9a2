package service

import (
	"context"
	"fmt"
	"heriken-shop/internal/dto"
	"heriken-shop/internal/model"
	"heriken-shop/internal/repository"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// PaymentInitError reports a committed order whose bKash payment could not
// be started. The order stays pending and can be paid later.
type PaymentInitError struct {
	OrderID     uint
	OrderNumber string
	Err         error
}

func (e *PaymentInitError) Error() string {
	return fmt.Sprintf("order %s created but payment could not be started: %v", e.OrderNumber, e.Err)
}

func (e *PaymentInitError) Unwrap() error {
	return e.Err
}

type CheckoutService interface {
	Summary(ctx context.Context, sessionID string) (*dto.CheckoutSummaryResponse, error)
	Process(ctx context.Context, session *model.Session, req dto.CheckoutRequest) (*dto.CheckoutResponse, error)
}

type checkoutServiceImpl struct {
	sessions       repository.SessionStore
	orderService   OrderService
	paymentService PaymentService
	notifier       NotificationService
}

func NewCheckoutService(
	sessions repository.SessionStore,
	orderService OrderService,
	paymentService PaymentService,
	notifier NotificationService,
) CheckoutService {
	return &checkoutServiceImpl{
		sessions:       sessions,
		orderService:   orderService,
		paymentService: paymentService,
		notifier:       notifier,
	}
}

// Summary is for display only. Prices come from the cart snapshot.
func (s *checkoutServiceImpl) Summary(ctx context.Context, sessionID string) (*dto.CheckoutSummaryResponse, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Cart.IsEmpty() {
		return nil, model.NewValidationError("cart", "Cart is empty")
	}

	return &dto.CheckoutSummaryResponse{
		Success: true,
		Items:   session.Cart.Items,
		Summary: session.Cart.Summary(),
	}, nil
}

func (s *checkoutServiceImpl) Process(ctx context.Context, session *model.Session, req dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	if !session.IsAuthenticated() {
		return nil, model.NewStatusError(model.ErrUnauthorized, "Please login to place an order")
	}

	var lines []model.OrderLine
	if req.Items != nil {
		lines = make([]model.OrderLine, len(req.Items))
		for i, it := range req.Items {
			lines[i] = model.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity}
		}
	} else {
		lines = session.Cart.Lines()
	}

	order, err := s.orderService.CreateOrder(ctx, CreateOrderInput{
		UserID:        session.UserID,
		Items:         lines,
		Shipping:      model.ShippingAddress(req.ShippingAddress),
		PaymentMethod: model.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.CheckoutResponse{
		Success:     true,
		Message:     "Order placed successfully",
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Total:       order.TotalAmount,
		Redirect:    fmt.Sprintf("/checkout/success/%d", order.ID),
	}

	// the cart survives a failed bKash start so the shopper can retry
	if order.PaymentMethod == model.PaymentMethodBkash {
		_, bkashURL, err := s.paymentService.Initiate(ctx, order)
		if err != nil {
			return nil, &PaymentInitError{OrderID: order.ID, OrderNumber: order.OrderNumber, Err: err}
		}
		resp.Redirect = bkashURL
		s.clearCart(ctx, session, order.ID)
		return resp, nil
	}

	s.clearCart(ctx, session, order.ID)
	if s.notifier != nil {
		_ = s.notifier.SendOrderConfirmation(ctx, order.ShippingPhone, order.OrderNumber, order.TotalAmount, decimal.Zero, order.TotalAmount)
	}
	return resp, nil
}

// clearCart runs after the order is committed, so a failure is only logged.
func (s *checkoutServiceImpl) clearCart(ctx context.Context, session *model.Session, orderID uint) {
	if _, err := s.sessions.Update(ctx, session.ID, func(sess *model.Session) error {
		sess.Cart = sess.Cart.Clear()
		return nil
	}); err != nil {
		log.WithError(err).WithField("order_id", orderID).Error("Failed to clear cart after order")
	}
	session.Cart = session.Cart.Clear()
}
