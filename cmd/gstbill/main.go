package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/gstbill/gstbill/internal/app"
	"github.com/gstbill/gstbill/internal/auth"
	"github.com/gstbill/gstbill/internal/billing"
	"github.com/gstbill/gstbill/internal/customers"
	"github.com/gstbill/gstbill/internal/dashboard"
	"github.com/gstbill/gstbill/internal/invoices"
	"github.com/gstbill/gstbill/internal/observability"
	"github.com/gstbill/gstbill/internal/platform/cache"
	"github.com/gstbill/gstbill/internal/platform/db"
	"github.com/gstbill/gstbill/internal/products"
	"github.com/gstbill/gstbill/internal/settings"
	"github.com/gstbill/gstbill/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokenStore := auth.NewRedisTokenStore(redisClient, cfg.SessionTTL)
	metrics := observability.NewMetrics()

	jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	calc := billing.NewCalculator(cfg.Convention())
	invoiceRepo := invoices.NewRepository(pool)
	allocator := billing.NewAllocator(invoiceRepo, invoiceRepo, logger)
	invoiceService := invoices.NewService(invoiceRepo, calc, allocator, jobClient, logger)
	renderer := invoices.NewPDFRenderer(cfg.Convention())

	settingsService := settings.NewService(settings.NewRepository(pool), logger)
	invoiceHandler := invoices.NewHandler(logger, invoiceService, renderer, settingsService)

	productService := products.NewService(products.NewRepository(pool), logger)
	productHandler := products.NewHandler(logger, productService)

	customerService := customers.NewService(customers.NewRepository(pool), logger)
	customerHandler := customers.NewHandler(logger, customerService)

	settingsHandler := settings.NewHandler(logger, settingsService)

	dashboardService := dashboard.NewService(dashboard.NewRepository(pool), dashboard.NewCache(redisClient, cfg.DashboardTTL))
	dashboardHandler := dashboard.NewHandler(logger, dashboardService)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		TokenStore:       tokenStore,
		InvoiceHandler:   invoiceHandler,
		ProductHandler:   productHandler,
		CustomerHandler:  customerHandler,
		SettingsHandler:  settingsHandler,
		DashboardHandler: dashboardHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
