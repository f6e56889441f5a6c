package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/datachat/datachat/internal/api"
	"github.com/datachat/datachat/internal/chat"
	"github.com/datachat/datachat/internal/config"
	"github.com/datachat/datachat/internal/genai"
	"github.com/datachat/datachat/internal/observability"
	querypostgres "github.com/datachat/datachat/internal/query/postgres"
	"github.com/datachat/datachat/internal/schema"
	schemapostgres "github.com/datachat/datachat/internal/schema/postgres"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv("datachat-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)

	db, err := querypostgres.Open(context.Background(), querypostgres.DBConfig{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Error("failed to open tenant db", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	executor := querypostgres.NewExecutor(db)
	introspector := schemapostgres.NewIntrospector(db)

	var schemaCache schema.Cache
	switch cfg.Schema.CacheBackend {
	case config.CacheBackendRedis:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Schema.RedisAddress,
			Password: cfg.Schema.RedisPassword,
			DB:       cfg.Schema.RedisDB,
		})
		defer func() { _ = redisClient.Close() }()
		schemaCache = schema.NewRedisCache(redisClient, introspector, cfg.Schema.CacheTTL, logger)
	default:
		schemaCache = schema.NewMemoryCache(introspector, cfg.Schema.CacheTTL, logger)
	}

	generator, err := genai.NewOpenAIClient(genai.OpenAIConfig{
		BaseURL:     cfg.AI.BaseURL,
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		Timeout:     cfg.AI.Timeout,
	})
	if err != nil {
		logger.Error("failed to initialize generator client", slog.Any("error", err))
		os.Exit(1)
	}

	chatService := &chat.Service{
		Schema:          schemaCache,
		Generator:       generator,
		Executor:        executor,
		Logger:          logger,
		GenerateTimeout: cfg.Chat.GenerateTimeout,
		ExecuteTimeout:  cfg.Chat.ExecuteTimeout,
		MaxHistoryTurns: cfg.Chat.MaxHistoryTurns,
	}

	handler := api.NewHandler(cfg, api.Dependencies{
		Logger:            logger,
		Chat:              chatService,
		HealthCheck:       executor.HealthCheck,
		Readiness:         api.CombineReadinessChecks(executor.HealthCheck),
		DependencyTimeout: 2 * time.Second,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server", slog.String("addr", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}
