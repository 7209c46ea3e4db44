// @title        SkinScan API
// @version      1.0
// @description  User accounts, assistant chatbot and skin image prediction proxy.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/skinscan/api/internal/api"
	"github.com/skinscan/api/internal/api/handler"
	"github.com/skinscan/api/internal/core/ports"
	"github.com/skinscan/api/internal/core/service"
	"github.com/skinscan/api/internal/infrastructure/db/mongo"
	"github.com/skinscan/api/internal/infrastructure/db/redis"
	"github.com/skinscan/api/internal/infrastructure/genai"
	"github.com/skinscan/api/internal/infrastructure/predictor"
	"github.com/skinscan/api/internal/infrastructure/ratelimit"
	"github.com/skinscan/api/internal/pkg/config"
	"github.com/skinscan/api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "skinscan-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

	users := mongo.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}

	checks := map[string]handler.DependencyCheck{
		"mongodb": func(ctx context.Context) error { return mongo.Ping(ctx, db) },
	}

	var authLimiter ports.RateLimiter
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")

		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		authLimiter = newAuthLimiter(cfg, rdb)
	} else if cfg.RateLimit.AuthPerMinute > 0 {
		authLimiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.AuthPerMinute, time.Minute)
	}

	gemini, err := genai.NewClient(ctx, cfg.Gemini.APIKey)
	if err != nil {
		return err
	}

	e := api.NewRouter(api.Dependencies{
		AuthService:      service.NewAuthService(users, cfg.BcryptCost, logger.Component("auth")),
		ChatService:      service.NewChatService(gemini, cfg.Gemini.Model, cfg.Gemini.Timeout, logger.Component("chat")),
		PredictService:   service.NewPredictService(predictor.NewClient(cfg.Predictor.URL, cfg.Predictor.Timeout), logger.Component("predict")),
		AuthLimiter:      authLimiter,
		ReadinessChecks:  checks,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		MaxUploadSize:    cfg.Predictor.MaxUpload,
		Logger:           log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}

// newAuthLimiter returns the Redis-backed limiter, or nil when throttling is
// disabled.
func newAuthLimiter(cfg *config.Config, rdb *goredis.Client) ports.RateLimiter {
	if cfg.RateLimit.AuthPerMinute <= 0 {
		return nil
	}
	return redis.NewRateLimiter(rdb, "auth", cfg.RateLimit.AuthPerMinute, time.Minute)
}
