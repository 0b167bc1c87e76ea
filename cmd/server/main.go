// Package main is the entry point of the MemoDeck progression service.
//
// The service owns the gamification side of the flashcard app: the XP ledger
// with level progression, the achievement catalog and its evaluator, and the
// per-user daily challenges with claimable rewards. Study data (decks, cards,
// sessions) is read-only input from the deck/session service.
//
// The layout follows Clean Architecture / DDD:
//   - Domain: progression, achievement, challenge, session rules
//   - Application: use-case orchestration (Commands/Queries)
//   - Infrastructure: PostgreSQL repositories, Redis cache, event bus
//   - Interface: HTTP JSON API
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/memodeck/memodeck-progression/config"
	"github.com/memodeck/memodeck-progression/internal/application/command"
	"github.com/memodeck/memodeck-progression/internal/application/query"
	"github.com/memodeck/memodeck-progression/internal/domain/achievement"
	"github.com/memodeck/memodeck-progression/internal/domain/shared"
	"github.com/memodeck/memodeck-progression/internal/infrastructure/messaging"
	"github.com/memodeck/memodeck-progression/internal/infrastructure/persistence/postgres"
	redisinfra "github.com/memodeck/memodeck-progression/internal/infrastructure/persistence/redis"
	httpserver "github.com/memodeck/memodeck-progression/internal/interface/http"
	"github.com/memodeck/memodeck-progression/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting MemoDeck progression service",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.String("timezone", cfg.App.Timezone),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnection(ctx, cfg.Database.URL, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. MIGRATIONS
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Progression.RunMigrations {
		log.Info("running database migrations...")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("migrations completed")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ACHIEVEMENT CATALOG
	// ─────────────────────────────────────────────────────────────────────────
	catalog := achievement.DefaultCatalog()

	achievementRepo := postgres.NewAchievementRepository(dbConn)
	if err := achievementRepo.SyncCatalog(ctx, catalog); err != nil {
		return fmt.Errorf("failed to sync achievement catalog: %w", err)
	}
	log.Info("achievement catalog synced", logger.Int("definitions", len(catalog.All())))

	// ─────────────────────────────────────────────────────────────────────────
	// 6. REDIS (optional display cache)
	// ─────────────────────────────────────────────────────────────────────────
	var activityCache query.ActivityCache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisClient, err := redisinfra.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("failed to connect to Redis, activity caching disabled", logger.Err(err))
		} else {
			defer redisClient.Close()
			activityCache = redisinfra.NewActivityCache(
				redisClient, cfg.Redis.ActivityCacheTTL, cfg.App.Location, log)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	progressionRepo := postgres.NewProgressionRepository(dbConn)
	sessionRepo := postgres.NewSessionRepository(dbConn, cfg.App.Location)
	challengeRepo := postgres.NewChallengeRepository(dbConn, cfg.App.Location)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	eventBusConfig := messaging.DefaultInMemoryEventBusConfig()
	eventBusConfig.Logger = slog.Default()
	eventBus := messaging.NewInMemoryEventBus(eventBusConfig)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// A paid-out claim flips a claimed flag the cached display does not carry,
	// so the user-day entry is dropped to make the flag visible on the next poll.
	if activityCache != nil {
		cache := activityCache
		loc := cfg.App.Location
		err := eventBus.Subscribe(shared.EventRewardClaimed, shared.EventHandlerFunc(func(event shared.Event) error {
			cache.InvalidateDay(context.Background(), event.AggregateID(), time.Now().In(loc))
			return nil
		}))
		if err != nil {
			return fmt.Errorf("failed to subscribe cache invalidation: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. APPLICATION LAYER (Commands, Queries)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	applyXPCmd := command.NewApplyXPHandler(progressionRepo, eventBus)
	evaluateCmd := command.NewEvaluateAchievementsHandler(
		catalog, progressionRepo, achievementRepo, sessionRepo, sessionRepo, eventBus, log)
	claimCmd := command.NewClaimRewardHandler(challengeRepo, eventBus)

	progressionQuery := query.NewGetProgressionHandler(catalog, progressionRepo, achievementRepo)
	todayQuery := query.NewGetTodayHandler(challengeRepo, progressionRepo, sessionRepo, activityCache, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 10. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server...")

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.Server.Host
	httpConfig.Port = cfg.Server.Port
	httpConfig.ReadTimeout = cfg.Server.ReadTimeout
	httpConfig.WriteTimeout = cfg.Server.WriteTimeout
	httpConfig.IdleTimeout = cfg.Server.IdleTimeout

	httpDeps := httpserver.Dependencies{
		ApplyXPHandler:              applyXPCmd,
		EvaluateAchievementsHandler: evaluateCmd,
		ClaimRewardHandler:          claimCmd,
		GetProgressionHandler:       progressionQuery,
		GetTodayHandler:             todayQuery,
		Logger:                      log,
		HealthChecker:               &healthChecker{db: dbConn},
	}

	server := httpserver.NewServer(httpConfig, httpDeps)

	// ─────────────────────────────────────────────────────────────────────────
	// 11. RUN & GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	log.Info("MemoDeck progression service is running",
		logger.String("address", server.Address()))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("service error", logger.Err(err))
		return err
	}

	log.Info("starting graceful shutdown...",
		logger.String("timeout", cfg.App.ShutdownTimeout.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", logger.Err(err))
		return err
	}

	log.Info("shutdown completed")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger builds the application logger from observability config.
func setupLogger(cfg *config.Config) *logger.Logger {
	level := logger.ParseLevel(cfg.Observability.LogLevel)
	if cfg.App.Debug {
		level = logger.LevelDebug
	}

	return logger.New(logger.Options{
		Level:     level,
		Output:    os.Stdout,
		AddCaller: cfg.App.Debug,
	})
}

// healthChecker reports readiness based on database connectivity.
type healthChecker struct {
	db *postgres.Connection
}

// Check implements httpserver.HealthChecker.
func (h *healthChecker) Check(ctx context.Context) httpserver.HealthStatus {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := h.db.Ping(checkCtx); err != nil {
		return httpserver.HealthStatus{
			Healthy: false,
			Ready:   false,
			Message: "database unreachable",
		}
	}

	return httpserver.HealthStatus{Healthy: true, Ready: true}
}
