package dto

import (
	"heriken-shop/internal/model"
	"heriken-shop/internal/repository"

	"github.com/shopspring/decimal"
)

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	OrderID uint   `json:"orderId,omitempty"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	if page < 1 {
		page = 1
	}
	var pages int64
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// cart and wishlist

type CartItemRequest struct {
	ProductID uint `json:"productId"`
	Quantity  *int `json:"quantity"`
}

type ProductRequest struct {
	ProductID uint `json:"productId"`
}

type CartResponse struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message,omitempty"`
	Cart      model.Cart `json:"cart"`
	CartCount int        `json:"cartCount"`
}

type WishlistResponse struct {
	Success       bool           `json:"success"`
	Message       string         `json:"message,omitempty"`
	Wishlist      model.Wishlist `json:"wishlist"`
	WishlistCount int            `json:"wishlistCount"`
	CartCount     int            `json:"cartCount"`
}

// checkout

type OrderItemRequest struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
	// Price is accepted for compatibility and ignored.
	Price *decimal.Decimal `json:"price,omitempty"`
}

type ShippingRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type CheckoutRequest struct {
	Items           []OrderItemRequest `json:"items"`
	ShippingAddress ShippingRequest    `json:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
}

type CheckoutSummaryResponse struct {
	Success bool              `json:"success"`
	Items   []model.CartItem  `json:"items"`
	Summary model.CartSummary `json:"summary"`
}

type CheckoutResponse struct {
	Success     bool            `json:"success"`
	Message     string          `json:"message"`
	OrderID     uint            `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	Total       decimal.Decimal `json:"total"`
	Redirect    string          `json:"redirect"`
}

// auth and account

type SendOTPRequest struct {
	Phone string `json:"phone"`
}

type VerifyOTPRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
	Name  string `json:"name"`
}

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProfileRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type UserResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	User    *model.User `json:"user"`
}

// catalog

type ProductListResponse struct {
	Success    bool             `json:"success"`
	Products   []*model.Product `json:"products"`
	Pagination Pagination       `json:"pagination"`
}

type ProductDetailResponse struct {
	Success bool             `json:"success"`
	Product *model.Product   `json:"product"`
	Related []*model.Product `json:"relatedProducts"`
}

type CategoryListResponse struct {
	Success    bool                            `json:"success"`
	Categories []*repository.CategoryWithCount `json:"categories"`
}

type ProductInput struct {
	Name          string           `json:"name"`
	NameEn        string           `json:"nameEn"`
	Description   string           `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice"`
	SKU           string           `json:"sku"`
	Stock         *int             `json:"stock"`
	CategoryID    *uint            `json:"categoryId"`
	BrandID       *uint            `json:"brandId"`
	Image         string           `json:"image"`
	IsFeatured    bool             `json:"isFeatured"`
	IsNew         bool             `json:"isNew"`
}

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// admin

type OrderStatusRequest struct {
	Status string `json:"status"`
}

type PaymentStatusRequest struct {
	PaymentStatus string `json:"paymentStatus"`
}

type UpdateOrderRequest struct {
	Status            *string `json:"status"`
	FulfillmentStatus *string `json:"fulfillmentStatus"`
	Notes             *string `json:"notes"`
	TrackingNumber    string  `json:"trackingNumber"`
	TrackingURL       string  `json:"trackingUrl"`
}

type OrderResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Order   *model.Order `json:"order"`
}

type OrderListResponse struct {
	Success    bool                        `json:"success"`
	Orders     []*model.Order              `json:"orders"`
	Pagination Pagination                  `json:"pagination"`
	Summary    map[model.OrderStatus]int64 `json:"summary,omitempty"`
}

type DashboardResponse struct {
	Success        bool            `json:"success"`
	TotalProducts  int64           `json:"totalProducts"`
	TotalOrders    int64           `json:"totalOrders"`
	TotalCustomers int64           `json:"totalCustomers"`
	PendingOrders  int64           `json:"pendingOrders"`
	Revenue        decimal.Decimal `json:"revenue"`
	RecentOrders   []*model.Order  `json:"recentOrders"`
}

type CustomerListResponse struct {
	Success    bool                          `json:"success"`
	Customers  []*repository.CustomerSummary `json:"customers"`
	Pagination Pagination                    `json:"pagination"`
}

type RefundRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	Reason string           `json:"reason"`
	SKU    string           `json:"sku"`
}

type PreorderNotifyRequest struct {
	ProductID          uint `json:"productId"`
	IncludeOrderNumber bool `json:"includeOrderNumber"`
}

type PreorderNotifyResponse struct {
	Success    bool `json:"success"`
	Recipients int  `json:"recipients"`
	Sent       int  `json:"sent"`
	Failed     int  `json:"failed"`
}
