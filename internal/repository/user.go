package repository

import (
	"context"
	"heriken-shop/internal/model"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CustomerSummary struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	Email      *string         `json:"email,omitempty"`
	Phone      *string         `json:"phone,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	OrderCount int64           `json:"order_count"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}

type UserRepository interface {
	FindByID(ctx context.Context, userID uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByPhone(ctx context.Context, phone string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, userID uint, fields map[string]interface{}) (bool, error)
	MarkPhoneVerified(ctx context.Context, userID uint, at time.Time) error
	CountCustomers(ctx context.Context) (int64, error)
	ListCustomers(ctx context.Context, page, limit int) ([]*CustomerSummary, int64, error)
}

type userRepoImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepoImpl{
		db: db,
	}
}

func (r *userRepoImpl) findOne(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where(query, arg).
		First(&user).Error

	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepoImpl) FindByID(ctx context.Context, userID uint) (*model.User, error) {
	return r.findOne(ctx, "id = ?", userID)
}

func (r *userRepoImpl) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *userRepoImpl) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	return r.findOne(ctx, "phone = ?", phone)
}

func (r *userRepoImpl) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepoImpl) Update(ctx context.Context, userID uint, fields map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(fields)

	return result.RowsAffected > 0, result.Error
}

func (r *userRepoImpl) MarkPhoneVerified(ctx context.Context, userID uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("phone_verified_at", at).Error
}

func (r *userRepoImpl) CountCustomers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("role = ?", model.RoleUser).
		Count(&count).Error

	return count, err
}

func (r *userRepoImpl) ListCustomers(ctx context.Context, page, limit int) ([]*CustomerSummary, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("role = ?", model.RoleUser).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var customers []*CustomerSummary
	q := r.db.WithContext(ctx).
		Model(&model.User{}).
		Select(`users.id, users.name, users.email, users.phone, users.created_at,
			COUNT(orders.id) AS order_count,
			COALESCE(SUM(orders.total_amount), 0) AS total_spent`).
		Joins("LEFT JOIN orders ON orders.user_id = users.id").
		Where("users.role = ?", model.RoleUser).
		Group("users.id, users.name, users.email, users.phone, users.created_at").
		Order("users.created_at DESC")
	err = paginate(q, page, limit).Scan(&customers).Error

	return customers, total, err
}
