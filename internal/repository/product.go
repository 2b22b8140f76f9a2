package repository

import (
	"context"
	"heriken-shop/internal/model"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductFilter struct {
	Search     string
	CategoryID uint
	BrandID    uint
	Featured   bool
	New        bool
	Page       int
	Limit      int
}

type ProductRepository interface {
	Seed(ctx context.Context) error
	FindByID(ctx context.Context, productID uint) (*model.Product, error)
	FindActiveByIDs(ctx context.Context, tx *gorm.DB, productIDs []uint) ([]*model.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*model.Product, int64, error)
	Related(ctx context.Context, product *model.Product, limit int) ([]*model.Product, error)
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, productID uint, fields map[string]interface{}) (bool, error)
	Deactivate(ctx context.Context, productID uint) (bool, error)
	CountActive(ctx context.Context) (int64, error)
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

// Seed inserts a small sample catalogue. Rows are matched on their unique
// slug or sku so running it twice is harmless.
func (r *productRepoImpl) Seed(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories := []model.Category{
			{Name: "শাড়ি", Slug: "saree", Description: "Sarees", IsActive: true},
			{Name: "পাঞ্জাবি", Slug: "panjabi", Description: "Panjabi", IsActive: true},
			{Name: "ইলেকট্রনিক্স", Slug: "electronics", Description: "Electronics", IsActive: true},
		}
		if err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "slug"}}, DoNothing: true}).
			Create(&categories).Error; err != nil {
			return err
		}

		brands := []model.Brand{
			{Name: "Aarong", Slug: "aarong", IsActive: true},
			{Name: "Walton", Slug: "walton", IsActive: true},
		}
		if err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "slug"}}, DoNothing: true}).
			Create(&brands).Error; err != nil {
			return err
		}

		categoryIDs, err := slugIDs(tx, &model.Category{})
		if err != nil {
			return err
		}
		brandIDs, err := slugIDs(tx, &model.Brand{})
		if err != nil {
			return err
		}

		seed := []struct {
			name, nameEn, sku, category, brand string
			price                              int64
			stock                              int
			featured, isNew                    bool
		}{
			{"জামদানি শাড়ি", "Jamdani Saree", "SAR-001", "saree", "aarong", 4500, 20, true, false},
			{"সুতি শাড়ি", "Cotton Saree", "SAR-002", "saree", "aarong", 1200, 50, false, true},
			{"সিল্ক পাঞ্জাবি", "Silk Panjabi", "PAN-001", "panjabi", "aarong", 2800, 30, true, true},
			{"রাইস কুকার", "Rice Cooker", "ELE-001", "electronics", "walton", 3200, 15, false, false},
			{"ইলেকট্রিক কেটলি", "Electric Kettle", "ELE-002", "electronics", "walton", 950, 40, false, true},
		}

		products := make([]model.Product, 0, len(seed))
		for _, s := range seed {
			sku, categoryID, brandID := s.sku, categoryIDs[s.category], brandIDs[s.brand]
			products = append(products, model.Product{
				Name:       s.name,
				NameEn:     s.nameEn,
				SKU:        &sku,
				Price:      decimal.NewFromInt(s.price),
				Stock:      s.stock,
				CategoryID: &categoryID,
				BrandID:    &brandID,
				IsActive:   true,
				IsFeatured: s.featured,
				IsNew:      s.isNew,
			})
		}

		return tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "sku"}}, DoNothing: true}).
			Create(&products).Error
	})
}

func slugIDs(tx *gorm.DB, table interface{}) (map[string]uint, error) {
	var rows []struct {
		ID   uint
		Slug string
	}
	if err := tx.Model(table).Select("id", "slug").Find(&rows).Error; err != nil {
		return nil, err
	}

	ids := make(map[string]uint, len(rows))
	for _, row := range rows {
		ids[row.Slug] = row.ID
	}
	return ids, nil
}

func (r *productRepoImpl) FindByID(ctx context.Context, productID uint) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Brand").
		Where("id = ? AND is_active = ?", productID, true).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

// FindActiveByIDs loads every active product in one query. Missing or
// inactive ids are simply absent from the result.
func (r *productRepoImpl) FindActiveByIDs(ctx context.Context, tx *gorm.DB, productIDs []uint) ([]*model.Product, error) {
	if tx == nil {
		tx = r.db
	}

	var products []*model.Product
	err := tx.WithContext(ctx).
		Where("id IN ? AND is_active = ?", productIDs, true).
		Find(&products).Error

	return products, err
}

func (r *productRepoImpl) filtered(ctx context.Context, filter ProductFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Product{}).Where("is_active = ?", true)

	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + s + "%"
		q = q.Where("name LIKE ? OR name_en LIKE ? OR description LIKE ?", like, like, like)
	}
	if filter.CategoryID != 0 {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.BrandID != 0 {
		q = q.Where("brand_id = ?", filter.BrandID)
	}
	if filter.Featured {
		q = q.Where("is_featured = ?", true)
	}
	if filter.New {
		q = q.Where("is_new = ?", true)
	}
	return q
}

func (r *productRepoImpl) List(ctx context.Context, filter ProductFilter) ([]*model.Product, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []*model.Product
	err := paginate(r.filtered(ctx, filter), filter.Page, filter.Limit).
		Preload("Category").
		Order("created_at DESC").
		Order("id DESC").
		Find(&products).Error

	return products, total, err
}

func (r *productRepoImpl) Related(ctx context.Context, product *model.Product, limit int) ([]*model.Product, error) {
	var products []*model.Product
	if product.CategoryID == nil {
		return products, nil
	}

	err := r.db.WithContext(ctx).
		Where("category_id = ? AND id <> ? AND is_active = ?", *product.CategoryID, product.ID, true).
		Order("id DESC").
		Limit(limit).
		Find(&products).Error

	return products, err
}

func (r *productRepoImpl) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepoImpl) Update(ctx context.Context, productID uint, fields map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND is_active = ?", productID, true).
		Updates(fields)

	return result.RowsAffected > 0, result.Error
}

func (r *productRepoImpl) Deactivate(ctx context.Context, productID uint) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND is_active = ?", productID, true).
		Update("is_active", false)

	return result.RowsAffected > 0, result.Error
}

func (r *productRepoImpl) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("is_active = ?", true).
		Count(&count).Error

	return count, err
}

func paginate(q *gorm.DB, page, limit int) *gorm.DB {
	if limit <= 0 {
		return q
	}
	if page < 1 {
		page = 1
	}
	return q.Offset((page - 1) * limit).Limit(limit)
}
