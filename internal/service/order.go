package service

import (
	"context"
	"errors"
	"fmt"
	"heriken-shop/internal/model"
	"heriken-shop/internal/repository"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CreateOrderInput struct {
	UserID        uint
	Items         []model.OrderLine
	Shipping      model.ShippingAddress
	PaymentMethod model.PaymentMethod
}

type UpdateOrderInput struct {
	Status            *model.OrderStatus
	FulfillmentStatus *model.FulfillmentStatus
	Notes             *string
	// tracking details only travel in the shipped SMS
	TrackingNumber string
	TrackingURL    string
}

type OrderService interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*model.Order, error)
	GetOrder(ctx context.Context, orderID uint) (*model.Order, error)
	GetOrderForUser(ctx context.Context, session *model.Session, orderID uint) (*model.Order, error)
	ListUserOrders(ctx context.Context, userID uint) ([]*model.Order, error)
	UpdateStatus(ctx context.Context, actorID, orderID uint, status model.OrderStatus) (*model.Order, error)
	UpdateOrder(ctx context.Context, actorID, orderID uint, in UpdateOrderInput) (*model.Order, error)
	UpdatePaymentStatus(ctx context.Context, actorID, orderID uint, status model.PaymentStatus) (*model.Order, error)
}

type OrderOption func(*orderServiceImpl)

// WithTransitionRules makes status updates follow model.CanTransition.
func WithTransitionRules(enforce bool) OrderOption {
	return func(s *orderServiceImpl) { s.enforceTransitions = enforce }
}

func WithOrderClock(now func() time.Time) OrderOption {
	return func(s *orderServiceImpl) { s.now = now }
}

type orderServiceImpl struct {
	db                 *gorm.DB
	productRepo        repository.ProductRepository
	orderRepo          repository.OrderRepository
	auditRepo          repository.AuditLogRepository
	notifier           NotificationService
	enforceTransitions bool
	now                func() time.Time
}

func NewOrderService(
	db *gorm.DB,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	auditRepo repository.AuditLogRepository,
	notifier NotificationService,
	opts ...OrderOption,
) OrderService {
	s := &orderServiceImpl{
		db:          db,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		auditRepo:   auditRepo,
		notifier:    notifier,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newOrderNumber returns HK-YYYYMMDD-XXXXXX.
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("HK-%s-%s", now.Format("20060102"), suffix)
}

// mergeLines validates quantities and sums duplicate products, keeping the
// order in which products first appear.
func mergeLines(lines []model.OrderLine) ([]model.OrderLine, error) {
	if len(lines) == 0 {
		return nil, model.NewValidationError("items", "Order items are required")
	}

	merged := make([]model.OrderLine, 0, len(lines))
	index := make(map[uint]int, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, model.NewValidationError("items", "Invalid quantity")
		}
		if i, ok := index[line.ProductID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}
	return merged, nil
}

func validateShipping(addr model.ShippingAddress) error {
	switch {
	case strings.TrimSpace(addr.Name) == "":
		return model.NewValidationError("shippingAddress.name", "Shipping name is required")
	case strings.TrimSpace(addr.Phone) == "":
		return model.NewValidationError("shippingAddress.phone", "Shipping phone is required")
	case strings.TrimSpace(addr.Address) == "":
		return model.NewValidationError("shippingAddress.address", "Shipping address is required")
	}
	return nil
}

func (s *orderServiceImpl) CreateOrder(ctx context.Context, in CreateOrderInput) (*model.Order, error) {
	if in.UserID == 0 {
		return nil, model.NewStatusError(model.ErrUnauthorized, "Please login to place an order")
	}

	lines, err := mergeLines(in.Items)
	if err != nil {
		return nil, err
	}
	if err := validateShipping(in.Shipping); err != nil {
		return nil, err
	}

	method := in.PaymentMethod
	if method == "" {
		method = model.PaymentMethodCOD
	}
	if !method.Valid() {
		return nil, model.NewValidationError("paymentMethod", "Invalid payment method")
	}

	productIDs := make([]uint, len(lines))
	for i, line := range lines {
		productIDs[i] = line.ProductID
	}

	now := s.now()
	order := &model.Order{
		OrderNumber:       newOrderNumber(now),
		UserID:            in.UserID,
		Status:            model.OrderStatusPending,
		PaymentStatus:     model.PaymentStatusPending,
		FulfillmentStatus: model.FulfillmentUnfulfilled,
		PaymentMethod:     method,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	order.SetShipping(in.Shipping)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products, err := s.productRepo.FindActiveByIDs(ctx, tx, productIDs)
		if err != nil {
			return fmt.Errorf("get products by ids: %w", err)
		}
		byID := make(map[uint]*model.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		total := decimal.Zero
		items := make([]*model.OrderItem, len(lines))
		for i, line := range lines {
			product, ok := byID[line.ProductID]
			if !ok {
				return model.NewValidationError("items", "Product with ID %d not found", line.ProductID)
			}
			item := &model.OrderItem{
				ProductID: product.ID,
				Quantity:  line.Quantity,
				UnitPrice: product.Price,
				CreatedAt: now,
			}
			total = total.Add(item.LineTotal())
			items[i] = item
		}
		order.TotalAmount = total

		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("store order in db: %w", err)
		}
		for _, item := range items {
			item.OrderID = order.ID
		}
		if err := s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
			return fmt.Errorf("store order items in db: %w", err)
		}

		order.Items = make([]model.OrderItem, len(items))
		for i, item := range items {
			order.Items[i] = *item
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total":        order.TotalAmount.String(),
	}).Info("Order created")

	return order, nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindDetail(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// GetOrderForUser returns the order to its owner or to an admin. Anybody
// else gets a not found so order ids cannot be enumerated.
func (s *orderServiceImpl) GetOrderForUser(ctx context.Context, session *model.Session, orderID uint) (*model.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != session.UserID && !session.Role.IsAdmin() {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

func (s *orderServiceImpl) ListUserOrders(ctx context.Context, userID uint) ([]*model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user orders: %w", err)
	}
	return orders, nil
}

func (s *orderServiceImpl) UpdateStatus(ctx context.Context, actorID, orderID uint, status model.OrderStatus) (*model.Order, error) {
	return s.UpdateOrder(ctx, actorID, orderID, UpdateOrderInput{Status: &status})
}

func (s *orderServiceImpl) UpdatePaymentStatus(ctx context.Context, actorID, orderID uint, status model.PaymentStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, model.NewValidationError("paymentStatus", "Invalid payment status")
	}

	fields := map[string]interface{}{"payment_status": status}
	return s.apply(ctx, actorID, orderID, fields, repository.AuditUpdatePaymentStatus, nil)
}

func (s *orderServiceImpl) UpdateOrder(ctx context.Context, actorID, orderID uint, in UpdateOrderInput) (*model.Order, error) {
	fields := map[string]interface{}{}

	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, model.NewValidationError("status", "Invalid status")
		}
		fields["status"] = *in.Status
	}
	if in.FulfillmentStatus != nil {
		if !in.FulfillmentStatus.Valid() {
			return nil, model.NewValidationError("fulfillmentStatus", "Invalid fulfillment status")
		}
		fields["fulfillment_status"] = *in.FulfillmentStatus
	}
	if in.Notes != nil {
		fields["internal_notes"] = *in.Notes
	}
	if len(fields) == 0 {
		return nil, model.NewValidationError("status", "Nothing to update")
	}

	action := repository.AuditUpdateOrder
	if len(fields) == 1 && in.Status != nil {
		action = repository.AuditUpdateOrderStatus
	}

	order, err := s.apply(ctx, actorID, orderID, fields, action, in.Status)
	if err != nil {
		return nil, err
	}

	if in.Status != nil {
		s.notifyStatus(ctx, order, in.TrackingNumber, in.TrackingURL)
	}
	return order, nil
}

// apply writes fields and the audit entry in one transaction and returns
// the updated order.
func (s *orderServiceImpl) apply(ctx context.Context, actorID, orderID uint, fields map[string]interface{}, action string, status *model.OrderStatus) (*model.Order, error) {
	var order *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.enforceTransitions && status != nil {
			current, err := s.orderRepo.FindByID(ctx, tx, orderID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.ErrOrderNotFound
			}
			if err != nil {
				return fmt.Errorf("get order: %w", err)
			}
			if !model.CanTransition(current.Status, *status) {
				return model.NewStatusError(model.ErrConflict,
					fmt.Sprintf("Cannot change order status from %s to %s", current.Status, *status))
			}
		}

		updated, err := s.orderRepo.Update(ctx, tx, orderID, fields)
		if err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		if !updated {
			return model.ErrOrderNotFound
		}

		if err := s.auditRepo.Record(ctx, tx, actorID, action, "Order", strconv.FormatUint(uint64(orderID), 10), fields); err != nil {
			return fmt.Errorf("write audit log: %w", err)
		}

		order, err = s.orderRepo.FindByID(ctx, tx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// notifyStatus sends the shipped and delivered SMS. Failures are logged by
// the notifier and never undo the status change.
func (s *orderServiceImpl) notifyStatus(ctx context.Context, order *model.Order, trackingNumber, trackingURL string) {
	if s.notifier == nil || order.ShippingPhone == "" {
		return
	}

	switch order.Status {
	case model.OrderStatusShipped:
		_ = s.notifier.SendOrderShipped(ctx, order.ShippingPhone, order.OrderNumber, trackingNumber, trackingURL)
	case model.OrderStatusDelivered:
		_ = s.notifier.SendOrderDelivered(ctx, order.ShippingPhone, order.OrderNumber)
	}
}
