package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"heriken-shop/internal/model"

	"gorm.io/gorm"
)

const (
	AuditUpdateOrder         = "UPDATE_ORDER"
	AuditUpdateOrderStatus   = "UPDATE_ORDER_STATUS"
	AuditUpdatePaymentStatus = "UPDATE_PAYMENT_STATUS"
	AuditRefundPayment       = "REFUND_PAYMENT"
)

type AuditLogRepository interface {
	Record(ctx context.Context, tx *gorm.DB, actorID uint, action, entity, entityID string, newValues interface{}) error
	ListForEntity(ctx context.Context, entity, entityID string) ([]*model.AuditLog, error)
}

type auditLogRepoImpl struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepoImpl{
		db: db,
	}
}

// Record writes one entry. actorID 0 is stored as NULL.
func (r *auditLogRepoImpl) Record(ctx context.Context, tx *gorm.DB, actorID uint, action, entity, entityID string, newValues interface{}) error {
	if tx == nil {
		tx = r.db
	}

	values, err := json.Marshal(newValues)
	if err != nil {
		return fmt.Errorf("marshal audit values: %w", err)
	}

	entry := &model.AuditLog{
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		NewValues: string(values),
	}
	if actorID != 0 {
		entry.UserID = &actorID
	}

	return tx.WithContext(ctx).Create(entry).Error
}

func (r *auditLogRepoImpl) ListForEntity(ctx context.Context, entity, entityID string) ([]*model.AuditLog, error) {
	var entries []*model.AuditLog
	err := r.db.WithContext(ctx).
		Where("entity = ? AND entity_id = ?", entity, entityID).
		Order("id ASC").
		Find(&entries).Error

	return entries, err
}
