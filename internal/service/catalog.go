package service

import (
	"context"
	"errors"
	"fmt"
	"heriken-shop/internal/dto"
	"heriken-shop/internal/model"
	"heriken-shop/internal/repository"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	productPageSize   = 12
	highlightLimit    = 8
	relatedLimit      = 4
	topCategoryLimit  = 8
	maxProductPageLen = 100
)

type CatalogService interface {
	ListProducts(ctx context.Context, filter repository.ProductFilter) (*dto.ProductListResponse, error)
	Featured(ctx context.Context) ([]*model.Product, error)
	New(ctx context.Context) ([]*model.Product, error)
	ProductDetail(ctx context.Context, productID uint) (*dto.ProductDetailResponse, error)
	Categories(ctx context.Context) ([]*repository.CategoryWithCount, error)
	TopCategories(ctx context.Context) ([]*repository.CategoryWithCount, error)
	CategoryProducts(ctx context.Context, categoryID uint, page int) (*dto.ProductListResponse, error)
	Brands(ctx context.Context) ([]*model.Brand, error)

	CreateProduct(ctx context.Context, in dto.ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, productID uint, in dto.ProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, productID uint) error
	CreateCategory(ctx context.Context, in dto.CategoryInput) (*model.Category, error)
	DeleteCategory(ctx context.Context, categoryID uint) error
}

type catalogServiceImpl struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	brandRepo    repository.BrandRepository
}

func NewCatalogService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	brandRepo repository.BrandRepository,
) CatalogService {
	return &catalogServiceImpl{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		brandRepo:    brandRepo,
	}
}

func (s *catalogServiceImpl) ListProducts(ctx context.Context, filter repository.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > maxProductPageLen {
		filter.Limit = productPageSize
	}
	filter.Search = strings.TrimSpace(filter.Search)

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return &dto.ProductListResponse{
		Success:    true,
		Products:   products,
		Pagination: dto.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

func (s *catalogServiceImpl) highlighted(ctx context.Context, filter repository.ProductFilter) ([]*model.Product, error) {
	filter.Page, filter.Limit = 1, highlightLimit
	products, _, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *catalogServiceImpl) Featured(ctx context.Context) ([]*model.Product, error) {
	return s.highlighted(ctx, repository.ProductFilter{Featured: true})
}

func (s *catalogServiceImpl) New(ctx context.Context) ([]*model.Product, error) {
	return s.highlighted(ctx, repository.ProductFilter{New: true})
}

func (s *catalogServiceImpl) ProductDetail(ctx context.Context, productID uint) (*dto.ProductDetailResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	related, err := s.productRepo.Related(ctx, product, relatedLimit)
	if err != nil {
		// the page still renders without them
		log.WithError(err).WithField("product_id", productID).Warn("Failed to load related products")
		related = []*model.Product{}
	}

	return &dto.ProductDetailResponse{Success: true, Product: product, Related: related}, nil
}

func (s *catalogServiceImpl) Categories(ctx context.Context) ([]*repository.CategoryWithCount, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *catalogServiceImpl) TopCategories(ctx context.Context) ([]*repository.CategoryWithCount, error) {
	categories, err := s.categoryRepo.Top(ctx, topCategoryLimit)
	if err != nil {
		return nil, fmt.Errorf("list top categories: %w", err)
	}
	return categories, nil
}

func (s *catalogServiceImpl) CategoryProducts(ctx context.Context, categoryID uint, page int) (*dto.ProductListResponse, error) {
	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return s.ListProducts(ctx, repository.ProductFilter{CategoryID: categoryID, Page: page})
}

func (s *catalogServiceImpl) Brands(ctx context.Context) ([]*model.Brand, error) {
	brands, err := s.brandRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	return brands, nil
}

func validateProduct(in dto.ProductInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return model.NewValidationError("name", "Product name is required")
	case in.Price == nil:
		return model.NewValidationError("price", "Price is required")
	case in.Price.IsNegative():
		return model.NewValidationError("price", "Price must not be negative")
	case in.Stock == nil:
		return model.NewValidationError("stock", "Stock is required")
	case *in.Stock < 0:
		return model.NewValidationError("stock", "Stock must not be negative")
	}
	return nil
}

func nullable(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

func originalPrice(p *decimal.Decimal) decimal.NullDecimal {
	if p == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*p)
}

func (s *catalogServiceImpl) CreateProduct(ctx context.Context, in dto.ProductInput) (*model.Product, error) {
	if err := validateProduct(in); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:          strings.TrimSpace(in.Name),
		NameEn:        strings.TrimSpace(in.NameEn),
		Description:   in.Description,
		Price:         *in.Price,
		OriginalPrice: originalPrice(in.OriginalPrice),
		SKU:           nullable(in.SKU),
		Stock:         *in.Stock,
		CategoryID:    in.CategoryID,
		BrandID:       in.BrandID,
		Image:         in.Image,
		IsActive:      true,
		IsFeatured:    in.IsFeatured,
		IsNew:         in.IsNew,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	log.WithFields(log.Fields{"product_id": product.ID, "name": product.Name}).Info("Product created")
	return product, nil
}

func (s *catalogServiceImpl) UpdateProduct(ctx context.Context, productID uint, in dto.ProductInput) (*model.Product, error) {
	if err := validateProduct(in); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"name":           strings.TrimSpace(in.Name),
		"name_en":        strings.TrimSpace(in.NameEn),
		"description":    in.Description,
		"price":          *in.Price,
		"original_price": originalPrice(in.OriginalPrice),
		"sku":            nullable(in.SKU),
		"stock":          *in.Stock,
		"category_id":    in.CategoryID,
		"brand_id":       in.BrandID,
		"image":          in.Image,
		"is_featured":    in.IsFeatured,
		"is_new":         in.IsNew,
	}
	updated, err := s.productRepo.Update(ctx, productID, fields)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	if !updated {
		return nil, model.ErrProductNotFound
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

func (s *catalogServiceImpl) DeleteProduct(ctx context.Context, productID uint) error {
	deleted, err := s.productRepo.Deactivate(ctx, productID)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}
	if !deleted {
		return model.ErrProductNotFound
	}
	return nil
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// slugify keeps ASCII letters and digits. Names written only in Bengali
// produce an empty slug, so those get a random one.
func slugify(name string) string {
	slug := strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		slug = "category-" + uuid.NewString()[:8]
	}
	return slug
}

func (s *catalogServiceImpl) CreateCategory(ctx context.Context, in dto.CategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, model.NewValidationError("name", "Category name is required")
	}

	category := &model.Category{
		Name:        name,
		Slug:        slugify(name),
		Description: in.Description,
		IsActive:    true,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, model.NewStatusError(model.ErrConflict, "Category already exists")
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

func (s *catalogServiceImpl) DeleteCategory(ctx context.Context, categoryID uint) error {
	deleted, err := s.categoryRepo.Deactivate(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("deactivate category: %w", err)
	}
	if !deleted {
		return model.ErrCategoryNotFound
	}
	return nil
}
