// Package main boots the marketplace API: configuration, logging, storage,
// broker, background workers and the HTTP listener.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/shiftpool/marketplace-api/docs"
	"github.com/shiftpool/marketplace-api/internal/api"
	"github.com/shiftpool/marketplace-api/internal/core/service"
	"github.com/shiftpool/marketplace-api/internal/infrastructure/config"
	mongodb "github.com/shiftpool/marketplace-api/internal/infrastructure/db/mongo"
	redisdb "github.com/shiftpool/marketplace-api/internal/infrastructure/db/redis"
	"github.com/shiftpool/marketplace-api/internal/infrastructure/queue"
	"github.com/shiftpool/marketplace-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title Shift Marketplace API
// @version 1.0
// @description Marketplace backend where businesses post shifts and staff apply to work them. Covers accounts, sessions, shift postings, applications and notifications.
//
// @BasePath /
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Access token. Format: "Bearer {token}".
func main() {
	// A missing .env is fine; production configures through real env vars.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logg := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.Env == "development"})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		logg.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		logg.Fatal().Err(err).Msg("mongo index setup failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		logg.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	publisher, err := queue.NewPublisher(cfg.Rabbit.URL, cfg.Rabbit.Queue)
	if err != nil {
		logg.Fatal().Err(err).Msg("rabbitmq connection failed")
	}
	defer func() { _ = publisher.Close() }()

	notifications := service.NewNotificationService(
		mongodb.NewNotificationRepository(db),
		publisher,
		logger.Component("notifications"),
	)

	dispatcher := queue.NewDispatcher(cfg.Queue.Workers, cfg.Queue.Buffer, notifications, logger.Component("dispatcher"))
	dispatcher.Start(ctx)

	e, err := api.NewRouter(cfg, logg, db, rdb, dispatcher, notifications)
	if err != nil {
		logg.Fatal().Err(err).Msg("router setup failed")
	}

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal().Err(err).Msg("server stopped")
		}
	}()
	logg.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("marketplace api listening")

	<-ctx.Done()
	logg.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logg.Error().Err(err).Msg("shutdown incomplete")
	}
	logg.Info().Msg("stopped")
}
