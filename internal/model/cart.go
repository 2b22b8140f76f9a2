package model

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	freeShippingOver = decimal.NewFromInt(1000)
	flatShipping     = decimal.NewFromInt(50)
	taxRate          = decimal.NewFromFloat(0.05)
)

// CartItem snapshots the product at add time. Price is display only; orders
// are always priced from the database.
type CartItem struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
}

func NewCartItem(p *Product, quantity int) CartItem {
	return CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  quantity,
	}
}

type Cart struct {
	Items []CartItem `json:"items"`
}

type OrderLine struct {
	ProductID uint
	Quantity  int
}

type CartSummary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

func (c Cart) index(productID uint) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) clone() []CartItem {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	return items
}

func (c Cart) Add(item CartItem) (Cart, error) {
	if item.Quantity < 1 {
		return c, NewValidationError("quantity", "Invalid quantity")
	}

	items := c.clone()
	if i := c.index(item.ProductID); i >= 0 {
		items[i].Quantity += item.Quantity
		return Cart{Items: items}, nil
	}
	return Cart{Items: append(items, item)}, nil
}

// Update sets the quantity of a line. Zero removes it.
func (c Cart) Update(productID uint, quantity int) (Cart, error) {
	if quantity < 0 {
		return c, NewValidationError("quantity", "Invalid quantity")
	}
	i := c.index(productID)
	if i < 0 {
		return c, ErrNotInCart
	}
	if quantity == 0 {
		return c.Remove(productID)
	}

	items := c.clone()
	items[i].Quantity = quantity
	return Cart{Items: items}, nil
}

func (c Cart) Remove(productID uint) (Cart, error) {
	i := c.index(productID)
	if i < 0 {
		return c, ErrNotInCart
	}

	items := make([]CartItem, 0, len(c.Items)-1)
	items = append(items, c.Items[:i]...)
	items = append(items, c.Items[i+1:]...)
	return Cart{Items: items}, nil
}

func (c Cart) Clear() Cart {
	return Cart{Items: []CartItem{}}
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Count is the number of distinct lines.
func (c Cart) Count() int {
	return len(c.Items)
}

func (c Cart) Lines() []OrderLine {
	lines := make([]OrderLine, 0, len(c.Items))
	for _, it := range c.Items {
		lines = append(lines, OrderLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return lines
}

func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

func (c Cart) Summary() CartSummary {
	subtotal := c.Subtotal()
	shipping := flatShipping
	if subtotal.GreaterThan(freeShippingOver) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(taxRate).Round(2)

	return CartSummary{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}

type WishlistItem struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	AddedAt   time.Time       `json:"added_at"`
}

func NewWishlistItem(p *Product, at time.Time) WishlistItem {
	return WishlistItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		AddedAt:   at,
	}
}

type Wishlist struct {
	Items []WishlistItem `json:"items"`
}

func (w Wishlist) index(productID uint) int {
	for i := range w.Items {
		if w.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (w Wishlist) Has(productID uint) bool {
	return w.index(productID) >= 0
}

func (w Wishlist) Add(item WishlistItem) (Wishlist, error) {
	if w.Has(item.ProductID) {
		return w, ErrAlreadyInWishlist
	}
	items := make([]WishlistItem, len(w.Items), len(w.Items)+1)
	copy(items, w.Items)
	return Wishlist{Items: append(items, item)}, nil
}

func (w Wishlist) Remove(productID uint) (Wishlist, error) {
	i := w.index(productID)
	if i < 0 {
		return w, ErrNotInWishlist
	}

	items := make([]WishlistItem, 0, len(w.Items)-1)
	items = append(items, w.Items[:i]...)
	items = append(items, w.Items[i+1:]...)
	return Wishlist{Items: items}, nil
}

// MoveToCart drops the product from the wishlist and adds one unit of it to
// cart.
func (w Wishlist) MoveToCart(productID uint, cart Cart) (Wishlist, Cart, error) {
	i := w.index(productID)
	if i < 0 {
		return w, cart, ErrNotInWishlist
	}
	it := w.Items[i]

	newCart, err := cart.Add(CartItem{
		ProductID: it.ProductID,
		Name:      it.Name,
		Price:     it.Price,
		Image:     it.Image,
		Quantity:  1,
	})
	if err != nil {
		return w, cart, err
	}
	newWishlist, err := w.Remove(productID)
	if err != nil {
		return w, cart, err
	}
	return newWishlist, newCart, nil
}

func (w Wishlist) Clear() Wishlist {
	return Wishlist{Items: []WishlistItem{}}
}

func (w Wishlist) Count() int {
	return len(w.Items)
}

// Session is everything stored per browser session.
type Session struct {
	ID       string   `json:"-"`
	UserID   uint     `json:"user_id,omitempty"`
	Role     Role     `json:"role,omitempty"`
	Cart     Cart     `json:"cart"`
	Wishlist Wishlist `json:"wishlist"`
}

func (s *Session) IsAuthenticated() bool {
	return s.UserID != 0
}

func (s *Session) Login(u *User) {
	s.UserID = u.ID
	s.Role = u.Role
}
