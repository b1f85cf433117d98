package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/thirtyday/internal/adapters/cache"
	"github.com/comitanigiacomo/thirtyday/internal/adapters/logger"
	"github.com/comitanigiacomo/thirtyday/internal/config"
)

// @title                      Thirty Day Challenges API
// @version                    1.0
// @description                Create, join and track 30-day challenges.
// @BasePath                   /api/v1
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Critical: invalid configuration: %v", err)
	}

	appLogger := logger.New(cfg.LoggerLevel, cfg.LoggerFormat, cfg.IsDevelopment())
	defer logger.Sync(appLogger)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger.Info("Connecting to database...", zap.String("host", cfg.DBHost), zap.String("database", cfg.DBName))

	db, err := sqlx.Connect("pgx", cfg.DSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.DBMaxOpen)
	db.SetMaxIdleConns(cfg.DBMaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)

	appLogger.Info("Database connected successfully")

	var rdb *redis.Client
	if cfg.RedisEnabled {
		rdb, err = cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			appLogger.Warn("Redis unavailable, falling back to in-memory stores", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close()
			appLogger.Info("Redis connected", zap.String("addr", cfg.RedisHost+":"+cfg.RedisPort))
		}
	}

	app, err := newApplication(cfg, db, rdb, appLogger, startTime)
	if err != nil {
		appLogger.Fatal("Failed to build application", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.worker.Start(ctx)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      app.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		appLogger.Info("Thirty day challenges API running", zap.String("addr", "http://localhost:"+cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Critical server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	appLogger.Info("Stop signal received. Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Forced shutdown", zap.Error(err))
		os.Exit(1)
	}

	appLogger.Info("Server stopped gracefully")
}
