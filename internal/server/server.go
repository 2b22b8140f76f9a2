package server

import (
	"context"
	"heriken-shop/internal/config"
	"heriken-shop/internal/handler"
	appmiddleware "heriken-shop/internal/middleware"
	"heriken-shop/internal/repository"
	"heriken-shop/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
)

// Services bundles everything the HTTP layer talks to.
type Services struct {
	Sessions repository.SessionStore
	Cart     service.CartService
	Catalog  service.CatalogService
	Checkout service.CheckoutService
	Payment  service.PaymentService
	Order    service.OrderService
	Auth     service.AuthService
	Admin    service.AdminService
}

type Server struct {
	echo            *echo.Echo
	cfg             *config.Config
	sessions        repository.SessionStore
	cartHandler     *handler.CartHandler
	catalogHandler  *handler.CatalogHandler
	checkoutHandler *handler.CheckoutHandler
	authHandler     *handler.AuthHandler
	adminHandler    *handler.AdminHandler
}

func NewServer(cfg *config.Config, services Services) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := log.WithFields(log.Fields{
				"method":    v.Method,
				"uri":       v.URI,
				"status":    v.Status,
				"latency":   v.Latency.String(),
				"remote_ip": v.RemoteIP,
			})
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("Request")
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.BaseURL},
		AllowCredentials: true,
	}))

	s := &Server{
		echo:            e,
		cfg:             cfg,
		sessions:        services.Sessions,
		cartHandler:     handler.NewCartHandler(services.Cart),
		catalogHandler:  handler.NewCatalogHandler(services.Catalog),
		checkoutHandler: handler.NewCheckoutHandler(services.Checkout, services.Payment, cfg.BaseURL),
		authHandler:     handler.NewAuthHandler(services.Auth, services.Order),
		adminHandler:    handler.NewAdminHandler(services.Admin, services.Catalog, services.Order, services.Payment),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// -------- catalog --------
	api.GET("/products", s.catalogHandler.ListProducts)
	api.GET("/products/featured", s.catalogHandler.Featured)
	api.GET("/products/new", s.catalogHandler.New)
	api.GET("/products/:id", s.catalogHandler.Product)
	api.GET("/categories", s.catalogHandler.Categories)
	api.GET("/categories/top", s.catalogHandler.TopCategories)
	api.GET("/categories/:id/products", s.catalogHandler.CategoryProducts)
	api.GET("/brands", s.catalogHandler.Brands)

	// bKash redirects the browser here, before any session cookie matters
	api.GET("/payment/bkash/callback", s.checkoutHandler.BkashCallback)

	sessioned := api.Group("", appmiddleware.Session(appmiddleware.SessionConfig{
		Store:      s.sessions,
		Secret:     s.cfg.Session.Secret,
		CookieName: s.cfg.Session.CookieName,
		TTL:        s.cfg.Session.TTL,
		Secure:     s.cfg.Session.Secure,
	}))

	// -------- cart / wishlist --------
	cart := sessioned.Group("/cart")
	cart.GET("", s.cartHandler.GetCart)
	cart.POST("/add", s.cartHandler.AddToCart)
	cart.POST("/update", s.cartHandler.UpdateCart)
	cart.POST("/remove", s.cartHandler.RemoveFromCart)
	cart.POST("/clear", s.cartHandler.ClearCart)

	wishlist := sessioned.Group("/wishlist")
	wishlist.GET("", s.cartHandler.GetWishlist)
	wishlist.POST("/add", s.cartHandler.AddToWishlist)
	wishlist.POST("/remove", s.cartHandler.RemoveFromWishlist)
	wishlist.POST("/move-to-cart", s.cartHandler.MoveToCart)
	wishlist.POST("/clear", s.cartHandler.ClearWishlist)

	// -------- checkout --------
	checkout := sessioned.Group("/checkout")
	checkout.GET("", s.checkoutHandler.Summary)
	checkout.POST("/process", s.checkoutHandler.Process, appmiddleware.RequireUser())

	// -------- auth / account --------
	auth := sessioned.Group("/auth")
	auth.POST("/otp/send", s.authHandler.SendOTP)
	auth.POST("/otp/verify", s.authHandler.VerifyOTP)
	auth.POST("/register", s.authHandler.Register)
	auth.POST("/login", s.authHandler.Login)
	auth.POST("/logout", s.authHandler.Logout)

	account := sessioned.Group("/account", appmiddleware.RequireUser())
	account.GET("/profile", s.authHandler.Profile)
	account.PUT("/profile", s.authHandler.UpdateProfile)
	account.GET("/orders", s.authHandler.Orders)
	account.GET("/orders/:id", s.authHandler.Order)

	// -------- admin --------
	admin := sessioned.Group("/admin", appmiddleware.RequireAdmin(s.cfg.Admin.RequireRole))
	admin.GET("/dashboard", s.adminHandler.Dashboard)

	admin.GET("/products", s.adminHandler.ListProducts)
	admin.POST("/products", s.adminHandler.CreateProduct)
	admin.PUT("/products/:id", s.adminHandler.UpdateProduct)
	admin.DELETE("/products/:id", s.adminHandler.DeleteProduct)

	admin.GET("/categories", s.adminHandler.Categories)
	admin.POST("/categories", s.adminHandler.CreateCategory)
	admin.DELETE("/categories/:id", s.adminHandler.DeleteCategory)

	admin.GET("/orders", s.adminHandler.ListOrders)
	admin.GET("/orders/export", s.adminHandler.ExportOrders)
	admin.GET("/orders/:id", s.adminHandler.Order)
	admin.PUT("/orders/:id", s.adminHandler.UpdateOrder)
	admin.PUT("/orders/:id/status", s.adminHandler.UpdateOrderStatus)
	admin.PUT("/orders/:id/payment-status", s.adminHandler.UpdatePaymentStatus)

	admin.GET("/customers", s.adminHandler.Customers)

	admin.GET("/payments/:paymentId", s.adminHandler.QueryPayment)
	admin.POST("/payments/:paymentId/refund", s.adminHandler.RefundPayment)
	admin.GET("/payments/transactions/:trxId", s.adminHandler.SearchTransaction)

	admin.POST("/notifications/preorder", s.adminHandler.NotifyPreorder)
	admin.GET("/sms/balance", s.adminHandler.SmsBalance)
}

// Handler exposes the router, mostly for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
