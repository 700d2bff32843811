package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	_ "github.com/stockchecker/stockchecker/docs" // Swagger docs (generated)
	"github.com/stockchecker/stockchecker/internal/auth"
	"github.com/stockchecker/stockchecker/internal/config"
	"github.com/stockchecker/stockchecker/internal/database"
	httpServer "github.com/stockchecker/stockchecker/internal/http"
	"github.com/stockchecker/stockchecker/internal/logging"
	"github.com/stockchecker/stockchecker/internal/stocks"
	"github.com/stockchecker/stockchecker/internal/user"
)

// @title           Stock Price Checker API
// @version         1.0.0
// @description     API for checking stock prices with authentication.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"token_backend", cfg.Auth.TokenBackend,
	)

	db, err := database.Connect(cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Auth subsystem
	userRepo := user.NewRepository(db)
	hasher := auth.NewHasher()

	tokenService, err := auth.NewTokenService(cfg.Auth.TokenBackend, cfg.Auth.SecretKey)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	// One registry for the process lifetime; torn down with the process.
	revocations := auth.NewRevocationRegistry()

	authService := auth.NewService(
		userRepo,
		hasher,
		tokenService,
		revocations,
		logger,
		cfg.Auth.AccessTokenTTL,
	)
	authHandler := auth.NewHandler(authService)
	authMiddleware := auth.NewMiddleware(authService)

	// Stocks subsystem
	quoteClient := stocks.NewClient(cfg.Finnhub.BaseURL, cfg.Finnhub.APIKey)
	quoteCache := stocks.NewCache(redisClient, cfg.Finnhub.QuoteCacheTTL)
	stocksHandler := stocks.NewHandler(quoteClient, quoteCache)

	router := httpServer.NewRouter(cfg, authHandler, authMiddleware, stocksHandler, logger)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initRedis initializes the Redis connection used by the quote cache.
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
