package handler

import (
	"heriken-shop/internal/dto"
	"heriken-shop/internal/middleware"
	"heriken-shop/internal/model"
	"heriken-shop/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	authService  service.AuthService
	orderService service.OrderService
}

func NewAuthHandler(authService service.AuthService, orderService service.OrderService) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		orderService: orderService,
	}
}

// login moves the session the user was just bound to onto a new id.
func login(c echo.Context, user *model.User, message string) error {
	if _, err := middleware.RotateSession(c); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.UserResponse{Success: true, Message: message, User: user})
}

func (h *AuthHandler) SendOTP(c echo.Context) error {
	var req dto.SendOTPRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.authService.SendOTP(c.Request().Context(), req.Phone); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, &dto.Response{Success: true, Message: "OTP sent successfully"})
}

func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req dto.VerifyOTPRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.authService.VerifyOTP(c.Request().Context(), middleware.SessionFrom(c).ID, req.Phone, req.OTP, req.Name)
	if err != nil {
		return err
	}
	return login(c, user, "Login successful")
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), middleware.SessionFrom(c).ID, service.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return err
	}
	return login(c, user, "Registration successful")
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Login(c.Request().Context(), middleware.SessionFrom(c).ID, req.Email, req.Password)
	if err != nil {
		return err
	}
	return login(c, user, "Login successful")
}

func (h *AuthHandler) Logout(c echo.Context) error {
	sid := middleware.SessionFrom(c).ID
	if err := h.authService.Logout(c.Request().Context(), sid); err != nil {
		return err
	}
	middleware.SetSession(c, &model.Session{ID: sid})

	return c.JSON(http.StatusOK, &dto.Response{Success: true, Message: "Logged out"})
}

func (h *AuthHandler) Profile(c echo.Context) error {
	user, err := h.authService.Profile(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, &dto.UserResponse{Success: true, User: user})
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req dto.ProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.authService.UpdateProfile(c.Request().Context(), middleware.UserID(c), req.Name, req.Phone)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, &dto.UserResponse{Success: true, Message: "Profile updated", User: user})
}

func (h *AuthHandler) Orders(c echo.Context) error {
	orders, err := h.orderService.ListUserOrders(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"orders":  orders,
	})
}

func (h *AuthHandler) Order(c echo.Context) error {
	orderID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orderService.GetOrderForUser(c.Request().Context(), middleware.SessionFrom(c), orderID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, &dto.OrderResponse{Success: true, Order: order})
}
