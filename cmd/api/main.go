package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"heriken-shop/internal/client"
	"heriken-shop/internal/config"
	"heriken-shop/internal/logger"
	"heriken-shop/internal/repository"
	"heriken-shop/internal/server"
	"heriken-shop/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	app := &cli.App{
		Name:   "heriken-shop",
		Usage:  "Heriken storefront API",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create or update the database schema",
				Action: migrate,
			},
			{
				Name:   "seed",
				Usage:  "insert the sample catalog",
				Action: seed,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("Command failed")
	}
}

func loadConfig() (*config.Config, error) {
	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	logger.Init(&cfg.Log)
	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}
	return cfg, nil
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := client.InitDatabase(&cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := client.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func migrate(c *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := openDatabase(cfg); err != nil {
		return err
	}

	log.Info("Database migrated")
	return nil
}

func seed(c *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}

	if err := repository.NewProductRepository(db).Seed(c.Context); err != nil {
		return err
	}

	log.Info("Sample catalog seeded")
	return nil
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	rdb, err := client.InitRedisClient(c.Context, &cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	bkashClient := client.NewBkashClient(&cfg.Bkash)
	smsClient := client.NewSmsClient(&cfg.MimSMS)

	sessions := repository.NewSessionStore(rdb, cfg.Session.TTL)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	brandRepo := repository.NewBrandRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	notifier := service.NewNotificationService(smsClient)
	orderService := service.NewOrderService(
		db,
		productRepo,
		orderRepo,
		auditRepo,
		notifier,
		service.WithTransitionRules(cfg.Order.EnforceTransitions),
	)
	paymentService := service.NewPaymentService(
		db,
		bkashClient, cfg.BaseURL,
		paymentRepo,
		orderRepo,
		auditRepo,
		notifier,
	)

	srv := server.NewServer(cfg, server.Services{
		Sessions: sessions,
		Cart:     service.NewCartService(sessions, productRepo),
		Catalog:  service.NewCatalogService(productRepo, categoryRepo, brandRepo),
		Checkout: service.NewCheckoutService(sessions, orderService, paymentService, notifier),
		Payment:  paymentService,
		Order:    orderService,
		Auth: service.NewAuthService(
			userRepo,
			sessions,
			repository.NewOTPStore(rdb),
			repository.NewRateLimiter(rdb),
			notifier,
		),
		Admin: service.NewAdminService(productRepo, orderRepo, userRepo, notifier),
	})

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	log.WithFields(log.Fields{
		"addr":        serverAddr,
		"environment": cfg.Environment.Name,
	}).Info("Starting HTTP server")
	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-sigChan:
	}
	log.Info("Signal received, starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
