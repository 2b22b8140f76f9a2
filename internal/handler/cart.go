package handler

import (
	"errors"
	"heriken-shop/internal/dto"
	"heriken-shop/internal/middleware"
	"heriken-shop/internal/model"
	"heriken-shop/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

func cartResponse(c echo.Context, session *model.Session, message string) error {
	middleware.SetSession(c, session)
	return c.JSON(http.StatusOK, &dto.CartResponse{
		Success:   true,
		Message:   message,
		Cart:      session.Cart,
		CartCount: session.Cart.Count(),
	})
}

func wishlistResponse(c echo.Context, session *model.Session, message string) error {
	middleware.SetSession(c, session)
	return c.JSON(http.StatusOK, &dto.WishlistResponse{
		Success:       true,
		Message:       message,
		Wishlist:      session.Wishlist,
		WishlistCount: session.Wishlist.Count(),
		CartCount:     session.Cart.Count(),
	})
}

func (h *CartHandler) GetCart(c echo.Context) error {
	return cartResponse(c, middleware.SessionFrom(c), "")
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CartItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.ProductID == 0 {
		return model.NewValidationError("productId", "Product ID is required")
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	session, err := h.cartService.AddToCart(ctx, middleware.SessionFrom(c).ID, req.ProductID, quantity)
	if err != nil {
		return err
	}
	return cartResponse(c, session, "Product added to cart")
}

func (h *CartHandler) UpdateCart(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CartItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.ProductID == 0 || req.Quantity == nil {
		return model.NewValidationError("quantity", "Product ID and quantity are required")
	}

	session, err := h.cartService.UpdateCart(ctx, middleware.SessionFrom(c).ID, req.ProductID, *req.Quantity)
	if err != nil {
		return err
	}
	return cartResponse(c, session, "Cart updated")
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	session, err := h.cartService.RemoveFromCart(ctx, middleware.SessionFrom(c).ID, req.ProductID)
	if err != nil {
		return err
	}
	return cartResponse(c, session, "Product removed from cart")
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	session, err := h.cartService.ClearCart(c.Request().Context(), middleware.SessionFrom(c).ID)
	if err != nil {
		return err
	}
	return cartResponse(c, session, "Cart cleared")
}

func (h *CartHandler) GetWishlist(c echo.Context) error {
	return wishlistResponse(c, middleware.SessionFrom(c), "")
}

func (h *CartHandler) AddToWishlist(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.ProductID == 0 {
		return model.NewValidationError("productId", "Product ID is required")
	}

	session, err := h.cartService.AddToWishlist(ctx, middleware.SessionFrom(c).ID, req.ProductID)
	if errors.Is(err, model.ErrAlreadyInWishlist) {
		// not a failure for the storefront, it just shows the message
		return c.JSON(http.StatusOK, &dto.Response{Success: false, Message: model.ErrAlreadyInWishlist.Error()})
	}
	if err != nil {
		return err
	}
	return wishlistResponse(c, session, "Product added to wishlist")
}

func (h *CartHandler) RemoveFromWishlist(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	session, err := h.cartService.RemoveFromWishlist(ctx, middleware.SessionFrom(c).ID, req.ProductID)
	if err != nil {
		return err
	}
	return wishlistResponse(c, session, "Product removed from wishlist")
}

func (h *CartHandler) MoveToCart(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	session, err := h.cartService.MoveToCart(ctx, middleware.SessionFrom(c).ID, req.ProductID)
	if err != nil {
		return err
	}
	return wishlistResponse(c, session, "Product moved to cart")
}

func (h *CartHandler) ClearWishlist(c echo.Context) error {
	session, err := h.cartService.ClearWishlist(c.Request().Context(), middleware.SessionFrom(c).ID)
	if err != nil {
		return err
	}
	return wishlistResponse(c, session, "Wishlist cleared")
}
