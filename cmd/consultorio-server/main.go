package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/consultorio/consultorio/internal/config"
	"github.com/consultorio/consultorio/internal/domain/patient"
	"github.com/consultorio/consultorio/internal/platform/cache"
	"github.com/consultorio/consultorio/internal/platform/db"
	"github.com/consultorio/consultorio/internal/platform/middleware"
	"github.com/consultorio/consultorio/internal/web"
)

const (
	cleanupInterval = time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "consultorio-server",
		Short: "Consultorio clinical records server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(exportCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web and API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// newLogger writes human-readable console output in development and JSON
// lines everywhere else. env is the viper-loaded ENV value.
func newLogger(env string) zerolog.Logger {
	return zerolog.New(logOutput(env, os.Stdout)).With().Timestamp().Logger()
}

func logOutput(env string, out io.Writer) io.Writer {
	if env == "" || env == "development" {
		return zerolog.ConsoleWriter{Out: out}
	}
	return out
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		bootstrap := newLogger("")
		bootstrap.Fatal().Err(err).Msg("failed to load config")
	}
	logger := newLogger(cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	if err := db.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply schema")
	}

	store := openStore(ctx, cfg, logger)
	if closer, ok := store.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	e, err := newServer(cfg, logger, patient.NewRepo(pool), store, pool)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build server")
	}

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// openStore returns a Redis store when REDIS_URL is set and reachable, and a
// process-local store otherwise.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) cache.Store {
	if cfg.CacheEnabled() {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err == nil {
			logger.Info().Msg("response cache: redis")
			return &redisStoreCloser{RedisStore: cache.NewRedisStore(client), close: client.Close}
		}
		logger.Warn().Err(err).Msg("redis unavailable, using in-memory response cache")
	}
	mem := cache.NewMemoryStore()
	mem.StartCleanup(ctx, cleanupInterval)
	logger.Info().Msg("response cache: memory")
	return mem
}

type redisStoreCloser struct {
	*cache.RedisStore
	close func() error
}

func (r *redisStoreCloser) Close() error { return r.close() }

// newServer wires every route and middleware onto a fresh echo instance.
func newServer(cfg *config.Config, logger zerolog.Logger, repo patient.Repository, store cache.Store, pinger db.Pinger) (*echo.Echo, error) {
	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Content-Type", "Accept", middleware.RequestIDHeader},
	}))
	e.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	e.Use(middleware.Sanitize(logger))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	exposeErrors := !cfg.IsProduction()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(pinger, exposeErrors))

	svc := patient.NewService(repo, logger)
	actions := patient.NewActions(svc, cache.NewInvalidator(store, logger), logger)

	api := e.Group("/api", middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
		ExpiresIn:         middleware.DefaultRateLimitConfig().ExpiresIn,
	}, logger))
	patient.NewHandler(svc, logger, exposeErrors).
		RegisterRoutes(api, middleware.ResponseCache(store, cfg.ListCacheTTL, logger))

	web.NewHandler(svc, actions, logger).RegisterRoutes(e)

	return e, nil
}
