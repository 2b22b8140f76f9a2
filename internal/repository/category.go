package repository

import (
	"context"
	"heriken-shop/internal/model"

	"gorm.io/gorm"
)

type CategoryWithCount struct {
	model.Category
	ProductCount int64 `json:"product_count"`
}

type CategoryRepository interface {
	List(ctx context.Context) ([]*CategoryWithCount, error)
	Top(ctx context.Context, limit int) ([]*CategoryWithCount, error)
	FindByID(ctx context.Context, categoryID uint) (*model.Category, error)
	Create(ctx context.Context, category *model.Category) error
	Deactivate(ctx context.Context, categoryID uint) (bool, error)
}

type categoryRepoImpl struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepoImpl{
		db: db,
	}
}

func (r *categoryRepoImpl) withCounts(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.Category{}).
		Select("categories.*, COUNT(products.id) AS product_count").
		Joins("LEFT JOIN products ON products.category_id = categories.id AND products.is_active = ?", true).
		Where("categories.is_active = ?", true).
		Group("categories.id")
}

func (r *categoryRepoImpl) List(ctx context.Context) ([]*CategoryWithCount, error) {
	var categories []*CategoryWithCount
	err := r.withCounts(ctx).
		Order("categories.name ASC").
		Scan(&categories).Error

	return categories, err
}

// Top returns the categories with the most active products.
func (r *categoryRepoImpl) Top(ctx context.Context, limit int) ([]*CategoryWithCount, error) {
	var categories []*CategoryWithCount
	err := r.withCounts(ctx).
		Order("product_count DESC").
		Order("categories.id ASC").
		Limit(limit).
		Scan(&categories).Error

	return categories, err
}

func (r *categoryRepoImpl) FindByID(ctx context.Context, categoryID uint) (*model.Category, error) {
	var category model.Category
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", categoryID, true).
		First(&category).Error

	if err != nil {
		return nil, err
	}

	return &category, nil
}

func (r *categoryRepoImpl) Create(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepoImpl) Deactivate(ctx context.Context, categoryID uint) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("id = ? AND is_active = ?", categoryID, true).
		Update("is_active", false)

	return result.RowsAffected > 0, result.Error
}
