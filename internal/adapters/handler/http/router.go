package http

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/comitanigiacomo/thirtyday/docs"
	"github.com/comitanigiacomo/thirtyday/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/thirtyday/internal/core/services"
)

type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

type RouterDependencies struct {
	AuthHandler          *AuthHandler
	ChallengeHandler     *ChallengeHandler
	DraftHandler         *DraftHandler
	ParticipationHandler *ParticipationHandler
	NotificationHandler  *NotificationHandler
	TokenService         *services.TokenService
	DB                   *sqlx.DB
	Redis                *redis.Client
	Logger               *zap.Logger
	Metrics              *middleware.HTTPMetrics
	MetricsGatherer      prometheus.Gatherer
	RateLimit            RateLimitConfig
	StartTime            time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Accept-Language, X-CSRF-Token, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Location")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
	}

	if deps.RateLimit.Enabled {
		if deps.Redis != nil {
			router.Use(middleware.RateLimiterMiddleware(deps.Redis, deps.RateLimit.Requests, deps.RateLimit.Window, logger))
		} else {
			router.Use(middleware.NewMemoryRateLimiter(deps.RateLimit.Requests, deps.RateLimit.Window).Middleware())
		}
	}

	router.GET("/health", healthHandler(deps))

	if deps.MetricsGatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.MetricsGatherer, promhttp.HandlerOpts{})))
	}
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	requireAuth := middleware.AuthMiddleware(deps.TokenService)
	optionalAuth := middleware.OptionalAuth(deps.TokenService)

	apiV1 := router.Group("/api/v1")

	deps.AuthHandler.RegisterRoutes(apiV1, requireAuth)
	deps.ChallengeHandler.RegisterRoutes(apiV1, requireAuth, optionalAuth)

	protected := apiV1.Group("")
	protected.Use(requireAuth)
	{
		deps.DraftHandler.RegisterRoutes(protected)
		deps.ParticipationHandler.RegisterRoutes(protected)
		deps.NotificationHandler.RegisterRoutes(protected)
	}

	return router
}

// healthHandler reports 503 only when a configured backend is unreachable.
func healthHandler(deps RouterDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "connected"
		if deps.DB == nil || deps.DB.PingContext(ctx) != nil {
			dbStatus = "unreachable"
		}

		redisStatus := "disabled"
		if deps.Redis != nil {
			redisStatus = "connected"
			if deps.Redis.Ping(ctx).Err() != nil {
				redisStatus = "unreachable"
			}
		}

		statusCode := 200
		status := "ok"
		if dbStatus == "unreachable" || redisStatus == "unreachable" {
			statusCode = 503
			status = "degraded"
		}

		c.JSON(statusCode, gin.H{
			"status":   status,
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	}
}
