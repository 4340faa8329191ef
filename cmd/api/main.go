package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/trandaiky/techshop-discounts/internal/config"
	"github.com/trandaiky/techshop-discounts/internal/handler"
	"github.com/trandaiky/techshop-discounts/internal/repository"
	"github.com/trandaiky/techshop-discounts/internal/service"
	"github.com/trandaiky/techshop-discounts/internal/suggest"
	"github.com/trandaiky/techshop-discounts/internal/validator"
	"github.com/trandaiky/techshop-discounts/pkg/database"
)

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize zerolog based on configuration
	initLogger(cfg)

	// Create context for startup
	ctx := context.Background()

	// Initialize database pool with retry
	pool, err := database.NewPool(ctx, database.Config{
		DSN:        cfg.DB.DSN(),
		MaxConns:   int32(cfg.DB.MaxConns),
		MinConns:   int32(cfg.DB.MinConns),
		MaxRetries: 5,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Initialize Fiber with production-ready configuration
	app := fiber.New(fiber.Config{
		AppName:      "TechShop Discount Service",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024, // 1MB body limit
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New()) // Adds X-Request-ID header to all requests
	app.Use(logger.New())

	// Initialize validator
	validate := validator.New()

	// Initialize components (layered architecture)
	couponRepo := repository.NewCouponRepository(pool)
	redemptionRepo := repository.NewRedemptionRepository(pool)
	promotionRepo := repository.NewPromotionRepository(pool)

	couponService := service.NewCouponService(pool, couponRepo, redemptionRepo)
	promotionService := service.NewPromotionService(promotionRepo)
	discountService := service.NewDiscountService(promotionRepo, couponRepo)

	suggestClient := suggest.NewClient(suggest.Config{
		BaseURL:    cfg.Suggest.BaseURL,
		Timeout:    time.Duration(cfg.Suggest.Timeout) * time.Second,
		MaxRetries: cfg.Suggest.MaxRetries,
	})

	quoteHandler := handler.NewQuoteHandler(discountService, validate)
	couponHandler := handler.NewCouponHandler(couponService, validate)
	redemptionHandler := handler.NewRedemptionHandler(couponService, validate)
	promotionHandler := handler.NewPromotionHandler(promotionService, validate)
	suggestHandler := handler.NewSuggestHandler(suggestClient, validate)

	// Health handler
	healthHandler := handler.NewHealthHandler(pool)
	app.Get("/health", healthHandler.Check)

	// Discount resolution
	app.Post("/api/discounts/quote", quoteHandler.Quote)

	// Coupon routes
	app.Post("/api/coupons", couponHandler.CreateCoupon)
	app.Get("/api/coupons/:code", couponHandler.GetCoupon)
	app.Post("/api/coupons/redeem", redemptionHandler.RedeemCoupon)

	// Promotion routes
	app.Post("/api/promotions", promotionHandler.CreatePromotion)
	app.Get("/api/promotions", promotionHandler.ListPromotions)

	// Build suggestion proxy
	app.Post("/api/builds/suggest", suggestHandler.SuggestBuild)

	// Start server with graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Shutdown server (waits for in-flight requests)
	log.Info().Msg("waiting for in-flight requests to complete...")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Close database pool AFTER server shutdown (even if shutdown timed out)
	log.Info().Msg("closing database connections...")
	pool.Close()
	log.Info().Msg("database connections closed")
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		// JSON output for production
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
