package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/grse/dashboard/internal/application"
	"github.com/grse/dashboard/internal/domain"
	"github.com/grse/dashboard/internal/infrastructure/backend"
	"github.com/grse/dashboard/internal/infrastructure/repository/memory"
	"github.com/grse/dashboard/internal/infrastructure/repository/postgres"
	"github.com/grse/dashboard/internal/infrastructure/repository/redis"
	"github.com/grse/dashboard/internal/interfaces/http"
	"github.com/grse/dashboard/internal/interfaces/http/handlers"
	"github.com/grse/dashboard/internal/interfaces/http/middleware"
	"github.com/grse/dashboard/internal/pkg/config"
	"github.com/grse/dashboard/internal/pkg/logger"
)

func main() {
	// Amounts go out as JSON numbers, as the backend sends them
	decimal.MarshalJSONWithoutQuotes = true

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info", true)
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	logger.Init(cfg.Log.Level, cfg.Log.Pretty)
	log := logger.Get()

	log.Info().Msg("Starting GRSE Dashboard...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Session store
	sessions, closeStore, err := openSessionStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Session.Driver).Msg("Failed to open session store")
	}
	defer closeStore()

	// Backend client
	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout())
	log.Info().
		Str("base_url", cfg.Backend.BaseURL).
		Dur("timeout", cfg.Backend.Timeout()).
		Msg("Backend client configured")

	// Initialize services
	gate := application.NewSessionGate(client, sessions, cfg.Session.Secret, cfg.Session.Issuer, cfg.Session.SessionTTL())
	dashboard := application.NewDashboardService(client, application.NewEnricher(application.StaticInsightProvider{}))
	admin := application.NewAdminController(client)
	views := application.NewViewRouter(gate, dashboard, admin)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(gate, views, cfg.Session.CookieName)
	pageHandler := handlers.NewPageHandler(views)
	whatIfHandler := handlers.NewWhatIfHandler(views)
	adminHandler := handlers.NewAdminHandler(admin)
	statusHandler := handlers.NewStatusHandler(client)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(gate, cfg.Session.CookieName)

	router := http.NewRouter(authHandler, pageHandler, whatIfHandler, adminHandler, statusHandler, authMiddleware, &cfg.Server)
	router.SetupRoutes()

	// Start server in goroutine
	serverAddr := cfg.Server.Addr()
	go func() {
		log.Info().Str("address", serverAddr).Msg("Starting HTTP server")
		if err := router.Start(serverAddr); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	if err := router.Shutdown(); err != nil {
		log.Error().Err(err).Msg("Error during shutdown")
	}

	log.Info().Msg("Server stopped")
}

// openSessionStore builds the configured session repository and its cleanup
func openSessionStore(ctx context.Context, cfg *config.Config, log *zerolog.Logger) (domain.SessionRepository, func(), error) {
	switch cfg.Session.Driver {
	case config.SessionDriverRedis:
		client, err := connectRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("addr", cfg.Redis.Addr()).Msg("Connected to Redis")
		return redis.NewSessionRepository(client), func() { _ = client.Close() }, nil

	case config.SessionDriverPostgres:
		dbPool, err := connectDB(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Msg("Connected to PostgreSQL")

		repo := postgres.NewSessionRepository(dbPool)
		if err := runMigrations(ctx, repo, log); err != nil {
			dbPool.Close()
			return nil, nil, err
		}
		go purgeExpiredSessions(ctx, repo, cfg.Session.SessionTTL(), log)
		return repo, dbPool.Close, nil

	case config.SessionDriverMemory:
		log.Info().Msg("Using in-memory session store")
		return memory.NewSessionRepository(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown session driver %q", cfg.Session.Driver)
	}
}

func connectDB(cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

func connectRedis(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func runMigrations(ctx context.Context, repo *postgres.SessionRepository, log *zerolog.Logger) error {
	log.Info().Msg("Ensuring session schema...")

	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := repo.EnsureSchema(migrateCtx); err != nil {
		return fmt.Errorf("session schema: %w", err)
	}

	log.Info().Msg("Session schema ready")
	return nil
}

// purgeExpiredSessions deletes expired rows; Redis and memory expire on their own
func purgeExpiredSessions(ctx context.Context, repo *postgres.SessionRepository, ttl time.Duration, log *zerolog.Logger) {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("Failed to purge expired sessions")
				continue
			}
			if n > 0 {
				log.Info().Int64("count", n).Msg("Purged expired sessions")
			}
		}
	}
}
