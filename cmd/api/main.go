package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hesab-payment-service/config"
	httpHandler "hesab-payment-service/internal/adapter/http/handler"
	"hesab-payment-service/internal/adapter/provider/hesabpay"
	pgStorage "hesab-payment-service/internal/adapter/storage/postgres"
	redisStorage "hesab-payment-service/internal/adapter/storage/redis"
	"hesab-payment-service/internal/core/ports"
	"hesab-payment-service/internal/service"
	"hesab-payment-service/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Hesab Payment Service")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	sessionRepo := pgStorage.NewSessionRepo(pool)
	distRepo := pgStorage.NewDistributionRepo(pool)
	errorLogRepo := pgStorage.NewErrorLogRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	replayCache := redisStorage.NewReplayCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	sigSvc := service.NewHMACSignatureService()
	pinCipher := service.NewAESPinCipher()
	tokenSvc := service.NewJWTTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer)

	// Initialize provider client
	providerClient := hesabpay.NewClient(cfg.Provider.BaseURL, cfg.Provider.APIKey, cfg.Provider.Timeout, nil, log)

	// Initialize business services
	sessionSvc := service.NewSessionService(sessionRepo, errorLogRepo, providerClient, log)
	webhookSvc := service.NewWebhookService(sessionRepo, transactor, sigSvc, replayCache, cfg.Provider.WebhookSecret, log)
	distSvc := service.NewDistributionService(
		distRepo,
		errorLogRepo,
		providerClient,
		pinCipher,
		cfg.Provider.MerchantPin,
		cfg.Provider.APIKey,
		log,
	)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		SessionSvc:      sessionSvc,
		WebhookSvc:      webhookSvc,
		DistributionSvc: distSvc,
		TokenSvc:        tokenSvc,
		RateLimitStore:  rateLimitStore,
		HealthCheckers:  []ports.HealthChecker{pgHealth, redisHealth},
		Logger:          log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
