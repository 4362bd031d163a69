package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agriconnect/internal/auth"
	"agriconnect/internal/cache"
	"agriconnect/internal/config"
	"agriconnect/internal/database"
	"agriconnect/internal/handler"
	"agriconnect/internal/imagestore"
	"agriconnect/internal/repository"
	"agriconnect/internal/router"
	"agriconnect/internal/service"
	"agriconnect/internal/web"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting agriconnect server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	offerRepo := repository.NewOfferRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	// Initialize image store with S3 and local fallback
	images, err := newImageStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize image store: %w", err)
	}

	// Initialize optional cart count cache
	var cartCounts *cache.CartCounts
	if cfg.Redis.Enabled {
		cartCounts, err = cache.NewCartCounts(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to connect to redis, cart counts will hit the database")
		} else {
			defer cartCounts.Close()
		}
	} else {
		logger.Info().Msg("redis disabled, cart counts served from the database")
	}

	// Initialize token utility
	tokenExpiry := time.Duration(cfg.Auth.TokenExpiryHours) * time.Hour
	tokens := auth.NewTokens(auth.TokenConfig{
		SigningKey: cfg.Auth.JWTSecret,
		Expiry:     tokenExpiry,
	})

	// Initialize services
	accountService := service.NewAccountService(userRepo, tokens, logger)
	catalogService := service.NewCatalogService(productRepo, images, logger)
	cartService := service.NewCartService(cartRepo, productRepo, cartCounts, logger)
	offerService := service.NewOfferService(offerRepo, orderRepo, productRepo, logger)
	orderService := service.NewOrderService(orderRepo, logger)

	// Initialize page renderer
	renderer, err := web.NewRenderer(logger)
	if err != nil {
		return fmt.Errorf("failed to initialize renderer: %w", err)
	}

	// Initialize HTTP handlers
	accountHandler := handler.NewAccountHandler(accountService, renderer, tokenExpiry, logger)
	productHandler := handler.NewProductHandler(catalogService, cartService, accountService, images, renderer, logger)
	cartHandler := handler.NewCartHandler(cartService, renderer, logger)
	offerHandler := handler.NewOfferHandler(offerService, catalogService, cartService, renderer, logger)
	orderHandler := handler.NewOrderHandler(orderService, catalogService, cartService, renderer, logger)

	// Initialize router
	mux := router.New(accountHandler, productHandler, cartHandler, offerHandler, orderHandler, tokens, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newImageStore builds the product image store: S3 when enabled, falling
// back to the local directory when S3 initialisation fails.
func newImageStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (imagestore.Store, error) {
	if cfg.S3.Enabled {
		store, err := imagestore.NewS3Store(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, logger)
		if err == nil {
			return store, nil
		}
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 image store, falling back to local directory")
	} else {
		logger.Info().Msg("using local directory for product images (S3 disabled)")
	}

	return imagestore.NewLocalStore(cfg.Uploads.Dir, logger)
}
