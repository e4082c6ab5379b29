package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/actuallystonmai/movie-recommender/internal/cache"
	"github.com/actuallystonmai/movie-recommender/internal/catalog"
	"github.com/actuallystonmai/movie-recommender/internal/config"
	"github.com/actuallystonmai/movie-recommender/internal/handler"
	"github.com/actuallystonmai/movie-recommender/internal/logging"
	"github.com/actuallystonmai/movie-recommender/internal/recommend"
	"github.com/actuallystonmai/movie-recommender/internal/repository"
	"github.com/actuallystonmai/movie-recommender/internal/repository/sqlite"
	"github.com/actuallystonmai/movie-recommender/internal/router"
	"github.com/actuallystonmai/movie-recommender/internal/service"
	"github.com/actuallystonmai/movie-recommender/seeds"
)

// store is everything the server needs from persistence; both drivers
// satisfy it.
type store interface {
	recommend.Store
	service.Store
	seeds.Store
	Ping(ctx context.Context) error
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := ""
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	// ------------ Store ---------------
	var st store
	switch cfg.StoreDriver {
	case "sqlite":
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.SQLitePath).Msg("failed to open sqlite store")
		}
		defer s.Close()
		logger.Info().Str("path", cfg.SQLitePath).Msg("opened SQLite store")
		st = s
	default:
		pool, err := openPostgres(ctx, cfg, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()

		// for migrate-down using CLI command
		if command == "migrate-down" {
			if err := runMigration(ctx, pool, "migrations/create_tables.down.sql"); err != nil {
				logger.Fatal().Err(err).Msg("failed to migrate down")
			}
			logger.Info().Msg("migrations dropped")
			return
		}
		if err := runMigration(ctx, pool, "migrations/create_tables.up.sql"); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate up")
		}
		logger.Info().Msg("migrations applied")
		st = repository.New(pool)
	}

	// ------------ Catalog ---------------
	if !cfg.CatalogConfigured() {
		logger.Warn().Msg("TMDB_API_KEY not set, catalog lookups will fail and signals will degrade")
	}
	var cat recommend.Catalog = catalog.NewClient(catalog.Options{
		APIKey:    cfg.TMDBAPIKey,
		BaseURL:   cfg.TMDBBaseURL,
		Timeout:   cfg.TMDBTimeout,
		RateLimit: cfg.TMDBRateLimit,
	}, logger)

	if cfg.RedisURL != "" {
		c, closeRedis, err := openCache(ctx, cfg)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, catalog responses will not be cached")
		} else {
			defer closeRedis()
			if command == "flush-cache" {
				if err := c.ClearCatalog(ctx); err != nil {
					logger.Fatal().Err(err).Msg("failed to flush catalog cache")
				}
				logger.Info().Msg("catalog cache flushed")
				return
			}
			cat = catalog.NewCached(cat, c, logger)
		}
	}

	// ------------ Setup Seed Data ---------------
	if cfg.SeedData {
		if err := checkSeed(ctx, st, logger); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed data")
		}
	}

	// ---------------- Server --------------------
	engine := recommend.New(cat, st, recommend.Options{Seed: cfg.RandomSeed}, logger)
	svc := service.NewService(engine, st, logger)
	h := handler.NewHandler(svc, logger)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler: router.Setup(h, logger, router.Options{
			Timeout:        cfg.RequestTimeout,
			RateLimit:      cfg.RateLimit,
			AllowedOrigins: cfg.AllowedOrigins(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Str("store", cfg.StoreDriver).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.DBPoolSize)
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := waitForDB(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info().Msg("connected to PostgreSQL")
	return pool, nil
}

func openCache(ctx context.Context, cfg *config.Config) (*cache.Cache, func(), error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	c := cache.NewCache(client, cfg.CacheTTL)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		client.Close()
		return nil, nil, err
	}
	return c, func() { client.Close() }, nil
}

func waitForDB(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			return nil
		}
		logger.Info().Int("attempt", i+1).Msg("waiting for database")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return fmt.Errorf("database connection timeout after 30s")
}

func runMigration(ctx context.Context, pool *pgxpool.Pool, path string) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration %s: %w", path, err)
	}
	return nil
}

func checkSeed(ctx context.Context, st store, logger zerolog.Logger) error {
	count, err := st.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("check users count: %w", err)
	}
	if count > 0 {
		logger.Info().Int("users", count).Msg("database already seeded, skipping")
		return nil
	}
	return seeds.Setup(ctx, st, logging.Component(logger, "seed"))
}
