package service

import (
	"context"
	"errors"
	"fmt"
	"heriken-shop/internal/model"
	"heriken-shop/internal/repository"
	"time"

	"gorm.io/gorm"
)

// CartService applies the pure cart and wishlist operations to the session
// stored under a session id.
type CartService interface {
	Get(ctx context.Context, sessionID string) (*model.Session, error)
	AddToCart(ctx context.Context, sessionID string, productID uint, quantity int) (*model.Session, error)
	UpdateCart(ctx context.Context, sessionID string, productID uint, quantity int) (*model.Session, error)
	RemoveFromCart(ctx context.Context, sessionID string, productID uint) (*model.Session, error)
	ClearCart(ctx context.Context, sessionID string) (*model.Session, error)
	AddToWishlist(ctx context.Context, sessionID string, productID uint) (*model.Session, error)
	RemoveFromWishlist(ctx context.Context, sessionID string, productID uint) (*model.Session, error)
	MoveToCart(ctx context.Context, sessionID string, productID uint) (*model.Session, error)
	ClearWishlist(ctx context.Context, sessionID string) (*model.Session, error)
}

type cartServiceImpl struct {
	sessions    repository.SessionStore
	productRepo repository.ProductRepository
	now         func() time.Time
}

func NewCartService(sessions repository.SessionStore, productRepo repository.ProductRepository) CartService {
	return &cartServiceImpl{
		sessions:    sessions,
		productRepo: productRepo,
		now:         time.Now,
	}
}

func (s *cartServiceImpl) product(ctx context.Context, productID uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

func (s *cartServiceImpl) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	return s.sessions.Get(ctx, sessionID)
}

func (s *cartServiceImpl) updateCart(ctx context.Context, sessionID string, fn func(model.Cart) (model.Cart, error)) (*model.Session, error) {
	return s.sessions.Update(ctx, sessionID, func(session *model.Session) error {
		cart, err := fn(session.Cart)
		if err != nil {
			return err
		}
		session.Cart = cart
		return nil
	})
}

func (s *cartServiceImpl) AddToCart(ctx context.Context, sessionID string, productID uint, quantity int) (*model.Session, error) {
	if quantity < 1 {
		return nil, model.NewValidationError("quantity", "Invalid quantity")
	}
	product, err := s.product(ctx, productID)
	if err != nil {
		return nil, err
	}

	item := model.NewCartItem(product, quantity)
	return s.updateCart(ctx, sessionID, func(c model.Cart) (model.Cart, error) {
		return c.Add(item)
	})
}

func (s *cartServiceImpl) UpdateCart(ctx context.Context, sessionID string, productID uint, quantity int) (*model.Session, error) {
	return s.updateCart(ctx, sessionID, func(c model.Cart) (model.Cart, error) {
		return c.Update(productID, quantity)
	})
}

func (s *cartServiceImpl) RemoveFromCart(ctx context.Context, sessionID string, productID uint) (*model.Session, error) {
	return s.updateCart(ctx, sessionID, func(c model.Cart) (model.Cart, error) {
		return c.Remove(productID)
	})
}

func (s *cartServiceImpl) ClearCart(ctx context.Context, sessionID string) (*model.Session, error) {
	return s.updateCart(ctx, sessionID, func(c model.Cart) (model.Cart, error) {
		return c.Clear(), nil
	})
}

func (s *cartServiceImpl) AddToWishlist(ctx context.Context, sessionID string, productID uint) (*model.Session, error) {
	product, err := s.product(ctx, productID)
	if err != nil {
		return nil, err
	}

	item := model.NewWishlistItem(product, s.now())
	return s.sessions.Update(ctx, sessionID, func(session *model.Session) error {
		wishlist, err := session.Wishlist.Add(item)
		if err != nil {
			return err
		}
		session.Wishlist = wishlist
		return nil
	})
}

func (s *cartServiceImpl) RemoveFromWishlist(ctx context.Context, sessionID string, productID uint) (*model.Session, error) {
	return s.sessions.Update(ctx, sessionID, func(session *model.Session) error {
		wishlist, err := session.Wishlist.Remove(productID)
		if err != nil {
			return err
		}
		session.Wishlist = wishlist
		return nil
	})
}

func (s *cartServiceImpl) MoveToCart(ctx context.Context, sessionID string, productID uint) (*model.Session, error) {
	return s.sessions.Update(ctx, sessionID, func(session *model.Session) error {
		wishlist, cart, err := session.Wishlist.MoveToCart(productID, session.Cart)
		if err != nil {
			return err
		}
		session.Wishlist = wishlist
		session.Cart = cart
		return nil
	})
}

func (s *cartServiceImpl) ClearWishlist(ctx context.Context, sessionID string) (*model.Session, error) {
	return s.sessions.Update(ctx, sessionID, func(session *model.Session) error {
		session.Wishlist = session.Wishlist.Clear()
		return nil
	})
}
