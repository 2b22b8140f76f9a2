package repository

import (
	"context"
	"heriken-shop/internal/model"

	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) error
	FindByPaymentID(ctx context.Context, tx *gorm.DB, paymentID string) (*model.Payment, error)
	ListByOrder(ctx context.Context, orderID uint) ([]*model.Payment, error)
	// Transition moves a payment out of one of the from states. It reports
	// false when the payment was already moved on, which makes repeated
	// gateway callbacks harmless.
	Transition(ctx context.Context, tx *gorm.DB, paymentID string, from []model.PaymentState, fields map[string]interface{}) (bool, error)
}

type paymentRepoImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepoImpl{
		db: db,
	}
}

func (r *paymentRepoImpl) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *paymentRepoImpl) Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) error {
	return r.conn(tx).WithContext(ctx).Create(payment).Error
}

func (r *paymentRepoImpl) FindByPaymentID(ctx context.Context, tx *gorm.DB, paymentID string) (*model.Payment, error) {
	var payment model.Payment
	err := r.conn(tx).WithContext(ctx).
		Where("payment_id = ?", paymentID).
		First(&payment).Error

	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepoImpl) ListByOrder(ctx context.Context, orderID uint) ([]*model.Payment, error) {
	var payments []*model.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&payments).Error

	return payments, err
}

func (r *paymentRepoImpl) Transition(ctx context.Context, tx *gorm.DB, paymentID string, from []model.PaymentState, fields map[string]interface{}) (bool, error) {
	result := r.conn(tx).WithContext(ctx).Model(&model.Payment{}).
		Where("payment_id = ? AND status IN ?", paymentID, from).
		Updates(fields)

	return result.RowsAffected > 0, result.Error
}
