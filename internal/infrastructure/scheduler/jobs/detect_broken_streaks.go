// Package jobs содержит реализации фоновых задач ядра прогресса.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dsapath/dsapath-progress-core/internal/domain/learner"
	"github.com/dsapath/dsapath-progress-core/internal/domain/notification"
	"github.com/dsapath/dsapath-progress-core/internal/domain/shared"
	"github.com/dsapath/dsapath-progress-core/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// DETECT BROKEN STREAKS JOB
// ══════════════════════════════════════════════════════════════════════════════

// DetectBrokenStreaksJob находит учеников, пропустивших день занятий,
// сбрасывает их серию и отправляет уведомление. Серия считается сломанной,
// когда с последнего дня активности прошло больше одного календарного дня UTC.
//
// Запись сессии сбрасывает серию и без этой задачи; задача нужна для тех,
// кто перестал заниматься совсем и новых сессий не записывает.
type DetectBrokenStreaksJob struct {
	profileRepo learner.Repository
	tracker     *learner.StreakTracker
	sink        notification.Sink
	publisher   shared.EventPublisher
	logger      *slog.Logger
}

// NewDetectBrokenStreaksJob создаёт задачу проверки серий.
func NewDetectBrokenStreaksJob(
	profileRepo learner.Repository,
	tracker *learner.StreakTracker,
	sink notification.Sink,
	publisher shared.EventPublisher,
	logger *slog.Logger,
) *DetectBrokenStreaksJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &DetectBrokenStreaksJob{
		profileRepo: profileRepo,
		tracker:     tracker,
		sink:        sink,
		publisher:   publisher,
		logger:      logger,
	}
}

// Name возвращает имя задачи.
func (j *DetectBrokenStreaksJob) Name() string {
	return "detect_broken_streaks"
}

// Description возвращает описание задачи.
func (j *DetectBrokenStreaksJob) Description() string {
	return "resets streaks of learners who missed a day and notifies them"
}

// Run сканирует активные серии и сбрасывает сломанные.
func (j *DetectBrokenStreaksJob) Run(ctx context.Context) error {
	now := time.Now().UTC()

	// Серия жива, если последняя активность была сегодня или вчера.
	// Всё, что раньше начала вчерашнего дня, — кандидат на сброс.
	cutoff := timeutil.StartOfDay(now).AddDate(0, 0, -1)

	profiles, err := j.profileRepo.FindWithActiveStreak(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("detect_broken_streaks: find candidates: %w", err)
	}

	var reset, failed int
	for _, p := range profiles {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !j.tracker.IsBroken(p, now) {
			continue
		}

		if err := j.resetStreak(ctx, p, now); err != nil {
			failed++
			j.logger.Error("streak reset failed",
				"learner_id", p.UserID.String(),
				"error", err,
			)
			continue
		}
		reset++
	}

	j.logger.Info("broken streak scan finished",
		"candidates", len(profiles),
		"reset", reset,
		"failed", failed,
	)

	if failed > 0 {
		return fmt.Errorf("detect_broken_streaks: %d of %d resets failed", failed, len(profiles))
	}
	return nil
}

func (j *DetectBrokenStreaksJob) resetStreak(ctx context.Context, p *learner.Profile, now time.Time) error {
	previous := p.Streak.Current
	daysMissed := timeutil.DaysBetween(p.Streak.LastActivityDate, now) - 1

	p.Streak.Current = 0
	p.Touch(now)

	if err := j.profileRepo.Update(ctx, p); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	if j.publisher != nil {
		event := shared.NewStreakBrokenEvent(p.UserID.String(), previous, daysMissed)
		if err := j.publisher.Publish(event); err != nil {
			j.logger.Warn("streak broken event not published",
				"learner_id", p.UserID.String(),
				"error", err,
			)
		}
	}

	if j.sink != nil {
		n := notification.StreakBroken(notification.NotificationID(uuid.NewString()), p.UserID, previous)
		if err := j.sink.Deliver(ctx, n); err != nil {
			j.logger.Warn("streak broken notification not delivered",
				"learner_id", p.UserID.String(),
				"error", err,
			)
		}
	}

	j.logger.Debug("streak reset",
		"learner_id", p.UserID.String(),
		"previous_streak", previous,
		"days_missed", daysMissed,
	)

	return nil
}
