package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	accountcmd "github.com/eaglebank/account-rest-service/internal/command"
	"github.com/eaglebank/account-rest-service/internal/config"
	"github.com/eaglebank/account-rest-service/internal/database"
	"github.com/eaglebank/account-rest-service/internal/events"
	"github.com/eaglebank/account-rest-service/internal/handler"
	"github.com/eaglebank/account-rest-service/internal/logger"
	"github.com/eaglebank/account-rest-service/internal/models"
	accountqry "github.com/eaglebank/account-rest-service/internal/query"
	redisClient "github.com/eaglebank/account-rest-service/internal/redis"
	"github.com/eaglebank/account-rest-service/internal/repository"
	"github.com/eaglebank/account-rest-service/internal/router"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	viewCacheTTL      = 10 * time.Minute
	eventStreamMaxLen = 10000
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("Failed to load config")
	}

	log := logger.New(cfg.LogLevel, cfg.IsLocal())
	if !cfg.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Database connection (system of record)
	db, err := database.Open(ctx, cfg.DatabaseURI, cfg.DBMaxOpenConns)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := database.Migrate(ctx, log, db); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
	}

	// Redis connection (read model cache + event streaming), optional
	var (
		views     repository.ViewCache
		publisher accountcmd.EventPublisher = events.NopPublisher{}
	)
	if cfg.CacheEnabled() {
		redis, err := redisClient.Connect(ctx, redisClient.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redis.Close()

		views = redisClient.NewViewCache[models.AccountView](redis, viewCacheTTL, log)
		publisher = events.NewPublisher(redis, eventStreamMaxLen)
	} else {
		log.Info().Msg("REDIS_ADDR not set, account views are read from PostgreSQL only")
	}

	// --- CQRS wiring ---
	writeRepo := repository.NewAccountRepository(db)
	readRepo := repository.NewAccountReadRepository(writeRepo, views, log)

	commandSvc := accountcmd.NewAccountCommandService(writeRepo, readRepo, publisher, log)
	querySvc := accountqry.NewAccountQueryService(readRepo)

	accountHandler := handler.NewAccountHandler(commandSvc, querySvc, cfg.BaseURL)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(log, accountHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Account service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}
