// Package main - точка входа фоновых процессов (Worker) ядра прогресса.
//
// Worker отвечает за периодические задачи:
// - Детектирование сломанных серий (пропущен день занятий)
// - Пересборка проекции лидерборда из профилей
//
// Worker ничего не считает сам по запросу клиента: он чинит деривативные
// данные и рассылает уведомления, не трогая путь записи сессий.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dsapath/dsapath-progress-core/config"
	"github.com/dsapath/dsapath-progress-core/internal/domain/learner"
	"github.com/dsapath/dsapath-progress-core/internal/domain/notification"
	"github.com/dsapath/dsapath-progress-core/internal/infrastructure/messaging"
	"github.com/dsapath/dsapath-progress-core/internal/infrastructure/persistence/memory"
	"github.com/dsapath/dsapath-progress-core/internal/infrastructure/persistence/postgres"
	"github.com/dsapath/dsapath-progress-core/internal/infrastructure/persistence/redis"
	"github.com/dsapath/dsapath-progress-core/internal/infrastructure/scheduler"
	"github.com/dsapath/dsapath-progress-core/internal/infrastructure/scheduler/jobs"
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

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slogLevel(cfg.Observability.LogLevel),
	}))
	slog.SetDefault(slogger)

	slogger.Info("starting progress core worker",
		"env", string(cfg.App.Environment),
		"version", cfg.App.Version,
		"storage", string(cfg.Storage.Driver),
	)

	if !cfg.Scheduler.Enabled {
		slogger.Warn("scheduler is disabled, nothing to do")
		return nil
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Persistence
	// ─────────────────────────────────────────────────────────────────────────
	var profileRepo learner.Repository

	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		conn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer conn.Close()
		profileRepo = postgres.NewProfileRepository(conn)
	default:
		// Память имеет смысл только для локальной разработки: worker
		// в этом режиме видит собственные пустые данные.
		profileRepo = memory.NewProfileRepository()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Notifications and events
	// ─────────────────────────────────────────────────────────────────────────
	sink := notification.NewLoggingSink(logger.Default())

	bus := messaging.NewInMemoryEventBus(messaging.DefaultInMemoryEventBusConfig())
	defer func() { _ = bus.Close() }()

	tracker := learner.NewStreakTracker(learner.NewXPLedger(nil), nil)

	// ─────────────────────────────────────────────────────────────────────────
	// Scheduler
	// ─────────────────────────────────────────────────────────────────────────
	sched := scheduler.NewScheduler(slogger)

	brokenStreaks := jobs.NewDetectBrokenStreaksJob(profileRepo, tracker, sink, bus, slogger)
	if err := sched.Register(brokenStreaks, scheduler.NewIntervalSchedule(cfg.Scheduler.BrokenStreakInterval)); err != nil {
		return fmt.Errorf("register %s: %w", brokenStreaks.Name(), err)
	}

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

		rebuild := jobs.NewRebuildLeaderboardJob(profileRepo, redis.NewLeaderboard(cache), slogger)
		if err := sched.Register(rebuild, scheduler.NewIntervalSchedule(cfg.Scheduler.RebuildLeaderboardInterval)); err != nil {
			return fmt.Errorf("register %s: %w", rebuild.Name(), err)
		}
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Graceful shutdown
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slogger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
	}

	if err := sched.Stop(); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}

	slogger.Info("worker stopped")
	return nil
}

func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
