package repository

import (
	"context"
	"heriken-shop/internal/model"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderFilter struct {
	Status    model.OrderStatus // empty means all
	Search    string
	StartDate *time.Time
	EndDate   *time.Time // inclusive: the whole day counts
	Page      int
	Limit     int
}

type PreorderRecipient struct {
	Phone       string
	OrderNumber string
}

type OrderStats struct {
	TotalOrders   int64           `json:"total_orders"`
	PendingOrders int64           `json:"pending_orders"`
	Revenue       decimal.Decimal `json:"revenue"`
}

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	CreateOrderItems(ctx context.Context, tx *gorm.DB, items []*model.OrderItem) error
	FindByID(ctx context.Context, tx *gorm.DB, orderID uint) (*model.Order, error)
	FindDetail(ctx context.Context, orderID uint) (*model.Order, error)
	ListByUser(ctx context.Context, userID uint) ([]*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*model.Order, int64, error)
	CountByStatus(ctx context.Context, filter OrderFilter) (map[model.OrderStatus]int64, error)
	Update(ctx context.Context, tx *gorm.DB, orderID uint, fields map[string]interface{}) (bool, error)
	Recent(ctx context.Context, limit int) ([]*model.Order, error)
	Stats(ctx context.Context) (*OrderStats, error)
	OpenOrdersForProduct(ctx context.Context, productID uint) ([]PreorderRecipient, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Omit("Items", "Payments", "User").Create(order).Error
}

func (r *orderRepoImpl) CreateOrderItems(ctx context.Context, tx *gorm.DB, items []*model.OrderItem) error {
	return tx.WithContext(ctx).Omit("Product").Create(&items).Error
}

func (r *orderRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, orderID uint) (*model.Order, error) {
	var order model.Order
	err := r.conn(tx).WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindDetail(ctx context.Context, orderID uint) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		Preload("Payments").
		Preload("User").
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) ListByUser(ctx context.Context, userID uint) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).Error

	return orders, err
}

// filtered applies everything in filter except pagination. The status
// filter is skipped when withStatus is false so summaries cover every status.
func (r *orderRepoImpl) filtered(ctx context.Context, filter OrderFilter, withStatus bool) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Order{})

	if withStatus && filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + s + "%"
		q = q.Where("order_number LIKE ? OR shipping_name LIKE ? OR shipping_phone LIKE ?", like, like, like)
	}
	if filter.StartDate != nil {
		q = q.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		q = q.Where("created_at < ?", filter.EndDate.AddDate(0, 0, 1))
	}
	return q
}

func (r *orderRepoImpl) List(ctx context.Context, filter OrderFilter) ([]*model.Order, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter, true).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []*model.Order
	err := paginate(r.filtered(ctx, filter, true), filter.Page, filter.Limit).
		Preload("Items").
		Preload("User").
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).Error

	return orders, total, err
}

func (r *orderRepoImpl) CountByStatus(ctx context.Context, filter OrderFilter) (map[model.OrderStatus]int64, error) {
	var rows []struct {
		Status model.OrderStatus
		Count  int64
	}
	err := r.filtered(ctx, filter, false).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.OrderStatus]int64, len(model.OrderStatuses))
	for _, s := range model.OrderStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *orderRepoImpl) Update(ctx context.Context, tx *gorm.DB, orderID uint, fields map[string]interface{}) (bool, error) {
	result := r.conn(tx).WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(fields)

	return result.RowsAffected > 0, result.Error
}

func (r *orderRepoImpl) Recent(ctx context.Context, limit int) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&orders).Error

	return orders, err
}

func (r *orderRepoImpl) Stats(ctx context.Context) (*OrderStats, error) {
	var stats OrderStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Order{}).
		Where("status = ?", model.OrderStatusPending).
		Count(&stats.PendingOrders).Error; err != nil {
		return nil, err
	}

	var row struct {
		Revenue decimal.NullDecimal
	}
	if err := db.Model(&model.Order{}).
		Select("SUM(total_amount) AS revenue").
		Where("payment_status = ?", model.PaymentStatusPaid).
		Scan(&row).Error; err != nil {
		return nil, err
	}
	stats.Revenue = row.Revenue.Decimal

	return &stats, nil
}

// OpenOrdersForProduct lists the customers still waiting on a product.
func (r *orderRepoImpl) OpenOrdersForProduct(ctx context.Context, productID uint) ([]PreorderRecipient, error) {
	var recipients []PreorderRecipient
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("DISTINCT orders.shipping_phone AS phone, orders.order_number").
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("order_items.product_id = ?", productID).
		Where("orders.status IN ?", []model.OrderStatus{model.OrderStatusPending, model.OrderStatusProcessing}).
		Where("orders.shipping_phone <> ''").
		Order("orders.order_number").
		Scan(&recipients).Error

	return recipients, err
}
