package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Slug        string    `gorm:"size:160;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	IsActive    bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Brand struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Slug      string    `gorm:"size:160;uniqueIndex;not null" json:"slug"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Product struct {
	ID            uint                `gorm:"primaryKey" json:"id"`
	Name          string              `gorm:"size:255;not null" json:"name"`
	NameEn        string              `gorm:"size:255" json:"name_en,omitempty"`
	Description   string              `gorm:"type:text" json:"description,omitempty"`
	Price         decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"price"`
	OriginalPrice decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"original_price"`
	SKU           *string             `gorm:"size:64;uniqueIndex" json:"sku,omitempty"`
	Stock         int                 `gorm:"not null" json:"stock"`
	CategoryID    *uint               `gorm:"index" json:"category_id,omitempty"`
	Category      *Category           `json:"category,omitempty"`
	BrandID       *uint               `gorm:"index" json:"brand_id,omitempty"`
	Brand         *Brand              `json:"brand,omitempty"`
	Image         string              `gorm:"size:512" json:"image,omitempty"`
	IsActive      bool                `gorm:"not null;default:true;index" json:"is_active"`
	IsFeatured    bool                `gorm:"not null;index" json:"is_featured"`
	IsNew         bool                `gorm:"not null;index" json:"is_new"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

type User struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Name            string     `gorm:"size:128" json:"name"`
	Email           *string    `gorm:"size:191;uniqueIndex" json:"email,omitempty"`
	Phone           *string    `gorm:"size:20;uniqueIndex" json:"phone,omitempty"`
	PasswordHash    string     `gorm:"size:128" json:"-"`
	Role            Role       `gorm:"size:20;not null;index" json:"role"`
	IsActive        bool       `gorm:"not null;default:true" json:"is_active"`
	PhoneVerifiedAt *time.Time `json:"phone_verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type ShippingAddress struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type Order struct {
	ID                uint              `gorm:"primaryKey" json:"id"`
	OrderNumber       string            `gorm:"size:32;uniqueIndex;not null" json:"order_number"`
	UserID            uint              `gorm:"index;not null" json:"user_id"`
	User              *User             `json:"user,omitempty"`
	Status            OrderStatus       `gorm:"size:20;index;not null" json:"status"`
	PaymentStatus     PaymentStatus     `gorm:"size:20;index;not null" json:"payment_status"`
	FulfillmentStatus FulfillmentStatus `gorm:"size:24;not null" json:"fulfillment_status"`
	PaymentMethod     PaymentMethod     `gorm:"size:32;not null" json:"payment_method"`
	TotalAmount       decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"total_amount"`

	// shipping snapshot, copied at order time
	ShippingName    string `gorm:"size:128;not null" json:"shipping_name"`
	ShippingPhone   string `gorm:"size:20;index" json:"shipping_phone"`
	ShippingAddress string `gorm:"size:512;not null" json:"shipping_address"`
	ShippingCity    string `gorm:"size:64" json:"shipping_city,omitempty"`
	ShippingState   string `gorm:"size:64" json:"shipping_state,omitempty"`
	ShippingZip     string `gorm:"size:16" json:"shipping_zip,omitempty"`
	ShippingCountry string `gorm:"size:64" json:"shipping_country,omitempty"`

	InternalNotes string      `gorm:"type:text" json:"internal_notes,omitempty"`
	Items         []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Payments      []Payment   `json:"payments,omitempty"`
	CreatedAt     time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (o *Order) SetShipping(addr ShippingAddress) {
	o.ShippingName = addr.Name
	o.ShippingPhone = addr.Phone
	o.ShippingAddress = addr.Address
	o.ShippingCity = addr.City
	o.ShippingState = addr.State
	o.ShippingZip = addr.Zip
	o.ShippingCountry = addr.Country
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"index;not null" json:"order_id"`
	ProductID uint            `gorm:"index;not null" json:"product_id"`
	Product   *Product        `json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"` // price snapshot
	CreatedAt time.Time       `json:"created_at"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Payment is one gateway payment attempt for an order.
type Payment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OrderID       uint            `gorm:"index;not null" json:"order_id"`
	Method        PaymentMethod   `gorm:"size:32;not null" json:"method"`
	PaymentID     string          `gorm:"size:64;uniqueIndex;not null" json:"payment_id"` // gateway payment id
	TrxID         string          `gorm:"size:64;index" json:"trx_id,omitempty"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency      string          `gorm:"size:8;not null" json:"currency"`
	Status        PaymentState    `gorm:"size:20;index;not null" json:"status"`
	RefundTrxID   string          `gorm:"size:64" json:"refund_trx_id,omitempty"`
	StatusMessage string          `gorm:"size:255" json:"status_message,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"`
	Action    string    `gorm:"size:64;not null" json:"action"`
	Entity    string    `gorm:"size:64;not null" json:"entity"`
	EntityID  string    `gorm:"size:64;index;not null" json:"entity_id"`
	NewValues string    `gorm:"type:text" json:"new_values"`
	CreatedAt time.Time `json:"created_at"`
}

// AllModels is the AutoMigrate set.
func AllModels() []any {
	return []any{
		&Category{},
		&Brand{},
		&Product{},
		&User{},
		&Order{},
		&OrderItem{},
		&Payment{},
		&AuditLog{},
	}
}
