// Command stillmind runs the mental-wellness backend: an HTTP API with
// credential auth, rotating refresh sessions, and the tracker surfaces.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stillmind/stillmind/internal/auth"
	"github.com/stillmind/stillmind/internal/config"
	"github.com/stillmind/stillmind/internal/httpapi"
	"github.com/stillmind/stillmind/internal/identity"
	"github.com/stillmind/stillmind/internal/journal"
	"github.com/stillmind/stillmind/internal/metrics"
	"github.com/stillmind/stillmind/internal/mood"
	"github.com/stillmind/stillmind/internal/password"
	"github.com/stillmind/stillmind/internal/reframe"
	"github.com/stillmind/stillmind/internal/session"
	"github.com/stillmind/stillmind/internal/token"
	"github.com/stillmind/stillmind/internal/worry"
	"github.com/stillmind/stillmind/migrations"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := run(logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}

func run(logger zerolog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	logger = logger.Level(level)

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("create pgx pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	sessions, closeSessions, err := buildSessionStore(ctx, cfg, pool)
	if err != nil {
		return err
	}
	defer closeSessions()

	codec, err := token.NewCodec(token.Config{
		Secret:     []byte(cfg.JWTSecret),
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	})
	if err != nil {
		return fmt.Errorf("create token codec: %w", err)
	}

	hasher, err := password.NewArgon2(password.DefaultConfig())
	if err != nil {
		return fmt.Errorf("create password hasher: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	identities := identity.NewPostgresStore(pool)

	authSvc, err := auth.NewService(identities, sessions, codec, hasher, metrics.NewAuth(registry), logger)
	if err != nil {
		return fmt.Errorf("create auth service: %w", err)
	}

	var generator reframe.Generator
	if cfg.OpenRouterAPIKey != "" {
		generator, err = reframe.NewOpenRouterClient(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, logger)
		if err != nil {
			return fmt.Errorf("create openrouter client: %w", err)
		}
	} else {
		logger.Warn().Msg("OPENROUTER_API_KEY not set, stress reframing disabled")
		generator = unavailableGenerator{}
	}
	reframeSvc := reframe.NewService(reframe.NewPostgresStore(pool), generator, logger)

	server := httpapi.NewServer(
		authSvc,
		identities,
		mood.NewPostgresStore(pool),
		journal.NewPostgresStore(pool),
		worry.NewPostgresStore(pool),
		reframeSvc,
		httpapi.Options{FrontendURL: cfg.FrontendURL, CookieSecure: true},
		logger,
	)

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.Router(registry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr()).Msg("server listening")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func buildSessionStore(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (session.Store, func(), error) {
	switch cfg.SessionBackend {
	case config.BackendRedis:
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		store := session.NewRedisStore(client, "stillmind", session.DefaultRetention)
		return store, func() { _ = client.Close() }, nil
	default:
		return session.NewPostgresStore(pool), func() {}, nil
	}
}

func runMigrations(databaseURL string, logger zerolog.Logger) error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}

	// The migrate pgx/v5 driver registers under the pgx5 scheme.
	url := strings.Replace(databaseURL, "postgres://", "pgx5://", 1)
	url = strings.Replace(url, "postgresql://", "pgx5://", 1)

	m, err := migrate.NewWithSourceInstance("iofs", source, url)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info().Msg("migrations applied")
	return nil
}

// unavailableGenerator stands in when no OpenRouter key is configured.
type unavailableGenerator struct{}

func (unavailableGenerator) Generate(context.Context, string) (*reframe.Result, error) {
	return nil, fmt.Errorf("reframe generator not configured")
}
