package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/oksasatya/users-service/config"
	"github.com/oksasatya/users-service/internal/container"
	"github.com/oksasatya/users-service/internal/infrastructure/outbox"
	pginfra "github.com/oksasatya/users-service/internal/infrastructure/postgres"
	"github.com/oksasatya/users-service/internal/interface/middleware"
	"github.com/oksasatya/users-service/internal/router"
	"github.com/oksasatya/users-service/pkg/helpers"
	"github.com/oksasatya/users-service/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.AppName, cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()
	pingCtx, cancelPing := context.WithTimeout(ctx, 3*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.WithError(err).Warn("redis unavailable; cache and rate limits will fail open")
	}
	cancelPing()

	// Without a broker, users are still created; their events wait in the
	// outbox until the relay of a later run can publish them.
	pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQUserEventsQueue)
	if err != nil {
		logger.WithError(err).Warn("rabbitmq unavailable; user events stay in the outbox")
	} else {
		defer pub.Close()
	}

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPGPool(pool)
	container.SetRedis(rdb)
	container.SetRabbitPub(pub)

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RealIP())
	r.Use(middleware.Metrics())
	r.Use(middleware.RateLimit(rdb, cfg.RateLimitGlobal, cfg.RateLimitWindow, middleware.KeyByIP(), router.EngineLimitAllow(), logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Location", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.HTTPLogEnabled {
		r.Use(middleware.AccessLog(logger))
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	var wg sync.WaitGroup
	if pub != nil && cfg.OutboxRelayEnabled {
		relay := outbox.NewRelay(pginfra.NewOutboxStore(pool), pub, logger, outbox.Options{
			Interval:    cfg.OutboxRelayInterval,
			Grace:       cfg.OutboxRelayGrace,
			BatchSize:   cfg.OutboxRelayBatch,
			MaxAttempts: cfg.OutboxRelayMaxAttempts,
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			relay.Run(ctx)
		}()
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	wg.Wait()
	logger.Info("server exited properly")
}
