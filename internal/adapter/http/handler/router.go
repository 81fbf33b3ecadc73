package handler

import (
	"net/http"

	"hesab-payment-service/internal/adapter/http/middleware"
	redisStore "hesab-payment-service/internal/adapter/storage/redis"
	"hesab-payment-service/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	SessionSvc      ports.SessionService
	WebhookSvc      ports.WebhookService
	DistributionSvc ports.DistributionService
	TokenSvc        ports.TokenService
	RateLimitStore  *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers  []ports.HealthChecker
	Logger          zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.HandleMethodNotAllowed = true

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error_code": "VAL_001",
			"message":    "Method not allowed",
		})
	})

	// Health check (deep, verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// Webhook callback. POST only; never rate limited.
	webhookHandler := NewWebhookHandler(deps.WebhookSvc)
	r.POST("/webhooks/hesabpay", webhookHandler.Receive)

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth; guest checkout is allowed) ---
	sessionHandler := NewSessionHandler(deps.SessionSvc)
	sessions := v1.Group("/sessions")
	{
		sessions.POST("", rl("sessions"), sessionHandler.CreateSession)
		sessions.GET("/:id", rl("queries"), sessionHandler.GetSession)
	}

	// --- JWT-authenticated routes (vendor distribution) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	distributionHandler := NewDistributionHandler(deps.DistributionSvc)
	distributions := v1.Group("/distributions", jwtAuth)
	{
		distributions.POST("", rl("distributions"), distributionHandler.Distribute)
		distributions.GET("", rl("queries"), distributionHandler.List)
	}

	return r
}
