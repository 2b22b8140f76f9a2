package repository

import (
	"context"
	"heriken-shop/internal/model"

	"gorm.io/gorm"
)

type BrandRepository interface {
	List(ctx context.Context) ([]*model.Brand, error)
}

type brandRepoImpl struct {
	db *gorm.DB
}

func NewBrandRepository(db *gorm.DB) BrandRepository {
	return &brandRepoImpl{
		db: db,
	}
}

func (r *brandRepoImpl) List(ctx context.Context) ([]*model.Brand, error) {
	var brands []*model.Brand
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&brands).Error

	return brands, err
}
