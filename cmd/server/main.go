// Package main - точка входа HTTP-сервера ядра прогресса DSA Path.
//
// Сервер принимает записи учебных сессий из браузерного клиента и отдаёт
// прогресс, рекомендации и рейтинг. Вся геймификация (XP, уровни, серии,
// достижения) считается здесь, на сервере; клиент только отображает.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries)
// - Infrastructure: репозитории, кеш, шина событий
// - Interface: HTTP endpoints
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dsapath/dsapath-progress-core/config"
	"github.com/dsapath/dsapath-progress-core/internal/application/command"
	"github.com/dsapath/dsapath-progress-core/internal/application/eventhandler"
	"github.com/dsapath/dsapath-progress-core/internal/application/query"
	"github.com/dsapath/dsapath-progress-core/internal/domain/catalog"
	"github.com/dsapath/dsapath-progress-core/internal/domain/insight"
	"github.com/dsapath/dsapath-progress-core/internal/domain/learner"
	"github.com/dsapath/dsapath-progress-core/internal/domain/notification"
	"github.com/dsapath/dsapath-progress-core/internal/domain/session"
	"github.com/dsapath/dsapath-progress-core/internal/domain/shared"
	"github.com/dsapath/dsapath-progress-core/internal/infrastructure/content"
	"github.com/dsapath/dsapath-progress-core/internal/infrastructure/messaging"
	"github.com/dsapath/dsapath-progress-core/internal/infrastructure/persistence/memory"
	"github.com/dsapath/dsapath-progress-core/internal/infrastructure/persistence/postgres"
	"github.com/dsapath/dsapath-progress-core/internal/infrastructure/persistence/redis"
	httpserver "github.com/dsapath/dsapath-progress-core/internal/interface/http"
	"github.com/dsapath/dsapath-progress-core/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.App.Debug,
	})

	log.Info("starting progress core server",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.String("storage", string(cfg.Storage.Driver)),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// Persistence
	// ─────────────────────────────────────────────────────────────────────────
	var (
		profileRepo  learner.Repository
		sessionRepo  session.Repository
		healthChecks = make(map[string]httpserver.HealthChecker)
	)

	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		conn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer conn.Close()

		if cfg.Storage.RunMigrations {
			if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}

		profileRepo = postgres.NewProfileRepository(conn)
		sessionRepo = postgres.NewSessionRepository(conn)
		healthChecks["postgres"] = conn
	default:
		profileRepo = memory.NewProfileRepository()
		sessionRepo = memory.NewSessionRepository()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Redis: insight cache + leaderboard projection
	// ─────────────────────────────────────────────────────────────────────────
	var (
		insightCache      query.InsightsCache
		insightInvalidate command.InsightCache
		leaderboard       query.Leaderboard
		leaderboardWriter eventhandler.LeaderboardWriter
	)

	if !cfg.Redis.Disabled {
		cache, err := redis.NewCache(ctx, redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() { _ = cache.Close() }()

		ic := redis.NewInsightCache(cache, cfg.Redis.InsightTTL)
		insightCache = ic
		insightInvalidate = ic

		lb := redis.NewLeaderboard(cache)
		leaderboard = lb
		leaderboardWriter = lb
		healthChecks["redis"] = cache
	} else {
		lb := memory.NewLeaderboard()
		leaderboard = lb
		leaderboardWriter = lb
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Domain services
	// ─────────────────────────────────────────────────────────────────────────
	topics := catalog.Default()

	sink := notification.NewLoggingSink(log)
	notifier := notification.NewSinkNotifier(sink, log)

	ledger := learner.NewXPLedger(notifier)
	streaks := learner.NewStreakTracker(ledger, notifier)
	achievements := learner.NewAchievementEvaluator(ledger, notifier)

	analyzer := insight.NewSkillAnalyzer(topics)
	planner := insight.NewRecommendationPlanner(topics)

	// ─────────────────────────────────────────────────────────────────────────
	// Event bus + projections
	// ─────────────────────────────────────────────────────────────────────────
	bus := messaging.NewInMemoryEventBus(messaging.DefaultInMemoryEventBusConfig())
	defer func() { _ = bus.Close() }()

	onXPGained := eventhandler.NewOnXPGainedHandler(leaderboardWriter, nil)
	if err := bus.Subscribe(shared.EventXPGained, onXPGained.Handle); err != nil {
		return fmt.Errorf("subscribe leaderboard projection: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Application handlers
	// ─────────────────────────────────────────────────────────────────────────
	recordCompletion := command.NewRecordCompletionHandler(command.RecordCompletionDeps{
		ProfileRepo:  profileRepo,
		SessionRepo:  sessionRepo,
		Catalog:      topics,
		Ledger:       ledger,
		Streaks:      streaks,
		Achievements: achievements,
		Analyzer:     analyzer,
		Planner:      planner,
		Publisher:    bus,
		Cache:        insightInvalidate,
		Logger:       log,
	})

	getProgress := query.NewGetProgressHandler(profileRepo, sessionRepo, achievements, log)
	getRecommendations := query.NewGetRecommendationsHandler(sessionRepo, analyzer, planner, insightCache, log)
	getLeaderboard := query.NewGetLeaderboardHandler(leaderboard, profileRepo, log)

	// Учебные планы по темам выключены флагом по умолчанию.
	var getStudyBrief *query.GetStudyBriefHandler
	if cfg.Features.IsEnabled(config.FeatureStudyBriefs) {
		generator := content.NewResilientGenerator(content.NewTemplateGenerator(), nil, nil)
		getStudyBrief = query.NewGetStudyBriefHandler(topics, getRecommendations, generator, log)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// HTTP server
	// ─────────────────────────────────────────────────────────────────────────
	server := httpserver.NewServer(httpserver.Config{
		Host:               cfg.HTTP.Host,
		Port:               cfg.HTTP.Port,
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		EnableCORS:         cfg.HTTP.EnableCORS,
		AllowedOrigins:     cfg.HTTP.AllowedOrigins,
		RateLimitPerMinute: cfg.HTTP.RateLimitPerMinute,
	}, httpserver.Dependencies{
		RecordCompletion:   recordCompletion,
		GetProgress:        getProgress,
		GetRecommendations: getRecommendations,
		GetLeaderboard:     getLeaderboard,
		GetStudyBrief:      getStudyBrief,
		HealthChecks:       healthChecks,
		Logger:             log,
	})

	errCh := server.StartAsync()

	// ─────────────────────────────────────────────────────────────────────────
	// Graceful shutdown
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", logger.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}
