package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/thirtyday/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/thirtyday/internal/adapters/handler/http"
	"github.com/comitanigiacomo/thirtyday/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/thirtyday/internal/adapters/repository"
	"github.com/comitanigiacomo/thirtyday/internal/config"
	"github.com/comitanigiacomo/thirtyday/internal/core/domain"
	"github.com/comitanigiacomo/thirtyday/internal/core/services"
	"github.com/comitanigiacomo/thirtyday/internal/core/workers"
)

type application struct {
	router *gin.Engine
	worker *workers.NotificationWorker
}

// newApplication wires repositories, services and handlers. rdb may be nil,
// in which case drafts, revoked tokens and rate limits are kept in memory.
func newApplication(cfg *config.Config, db *sqlx.DB, rdb *redis.Client, logger *zap.Logger, startTime time.Time) (*application, error) {
	userRepo := repository.NewPostgresUserRepository(db)
	participationRepo := repository.NewPostgresParticipationRepository(db)
	notificationRepo := repository.NewPostgresNotificationRepository(db)

	var (
		challengeRepo domain.ChallengeRepository = repository.NewPostgresChallengeRepository(db)
		listCache     services.PublicListInvalidator
		drafts        domain.DraftStore
		revoked       domain.TokenRevocationStore
	)

	if rdb != nil {
		cached := repository.NewCachedChallengeRepository(challengeRepo, rdb, cfg.PublicListCacheTTL, logger)
		challengeRepo = cached
		listCache = cached
		drafts = cache.NewRedisDraftStore(rdb, cfg.DraftTTL)
		revoked = cache.NewRedisTokenDenylist(rdb)
	} else {
		drafts = cache.NewMemoryDraftStore(cfg.DraftTTL)
		revoked = cache.NewMemoryTokenDenylist()
	}

	worker := workers.NewNotificationWorker(challengeRepo, userRepo, notificationRepo, logger)

	validator := domain.NewFormValidator()
	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTDuration, userRepo, revoked)
	authService := services.NewAuthService(userRepo, tokenService)
	challengeService := services.NewChallengeService(challengeRepo, validator)
	draftService := services.NewDraftService(drafts, challengeService, validator)
	participationService := services.NewParticipationService(challengeRepo, participationRepo, worker, listCache)
	notificationService := services.NewNotificationService(notificationRepo)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := middleware.NewHTTPMetrics()
	if err := httpMetrics.Register(registry); err != nil {
		return nil, err
	}

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:          adapterHTTP.NewAuthHandler(authService),
		ChallengeHandler:     adapterHTTP.NewChallengeHandler(challengeService, participationService),
		DraftHandler:         adapterHTTP.NewDraftHandler(draftService),
		ParticipationHandler: adapterHTTP.NewParticipationHandler(participationService),
		NotificationHandler:  adapterHTTP.NewNotificationHandler(notificationService),
		TokenService:         tokenService,
		DB:                   db,
		Redis:                rdb,
		Logger:               logger,
		Metrics:              httpMetrics,
		MetricsGatherer:      registry,
		RateLimit: adapterHTTP.RateLimitConfig{
			Enabled:  cfg.RateLimitEnabled,
			Requests: cfg.RateLimitRequests,
			Window:   cfg.RateLimitWindow,
		},
		StartTime: startTime,
	})

	return &application{router: router, worker: worker}, nil
}
