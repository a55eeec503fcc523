package eventhandler

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsapath/dsapath-progress-core/internal/application/command"
	"github.com/dsapath/dsapath-progress-core/internal/domain/catalog"
	"github.com/dsapath/dsapath-progress-core/internal/domain/insight"
	"github.com/dsapath/dsapath-progress-core/internal/domain/learner"
	"github.com/dsapath/dsapath-progress-core/internal/domain/shared"
	"github.com/dsapath/dsapath-progress-core/internal/infrastructure/persistence/memory"
	"github.com/dsapath/dsapath-progress-core/pkg/logger"
)

type failingWriter struct {
	err error
}

func (w *failingWriter) SetTotal(context.Context, learner.LearnerID, int) error {
	return w.err
}

type collectingPublisher struct {
	events []shared.Event
}

func (p *collectingPublisher) Publish(e shared.Event) error {
	p.events = append(p.events, e)
	return nil
}

// Рейтинг строится по TotalXPEarned профиля, который растёт и от наград
// за достижения и рубежи, а не только от начисления за тему. Одно
// завершение даёт одно событие xp_gained, поэтому проекция обязана брать
// NewTotal из события, а не суммировать отдельные начисления.
func TestOnXPGained_ProjectionTracksTotalXPEarned(t *testing.T) {
	ctx := context.Background()
	cat := catalog.Default()
	profileRepo := memory.NewProfileRepository()
	publisher := &collectingPublisher{}
	log := logger.New(logger.Options{Output: io.Discard, Level: logger.LevelError})

	ledger := learner.NewXPLedger(nil)
	recorder := command.NewRecordCompletionHandler(command.RecordCompletionDeps{
		ProfileRepo:  profileRepo,
		SessionRepo:  memory.NewSessionRepository(),
		Catalog:      cat,
		Ledger:       ledger,
		Streaks:      learner.NewStreakTracker(ledger, nil),
		Achievements: learner.NewAchievementEvaluator(ledger, nil),
		Analyzer:     insight.NewSkillAnalyzer(cat),
		Planner:      insight.NewRecommendationPlanner(cat),
		Publisher:    publisher,
		Logger:       log,
	})

	score := 85.0
	_, err := recorder.Handle(ctx, command.RecordCompletionCommand{
		LearnerID:       "learner-1",
		TopicID:         "array-basics",
		DurationMinutes: 25,
		QuizScore:       &score,
	})
	require.NoError(t, err)

	lb := memory.NewLeaderboard()
	handler := NewOnXPGainedHandler(lb, nil)
	for _, e := range publisher.events {
		if e.EventType() != shared.EventXPGained {
			continue
		}
		require.NoError(t, handler.Handle(e))
	}

	profile, err := profileRepo.GetByID(ctx, "learner-1")
	require.NoError(t, err)

	top, err := lb.Top(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "learner-1", top[0].LearnerID)
	assert.Equal(t, int(profile.XP.TotalXPEarned), top[0].TotalXP,
		"проекция должна совпадать с TotalXPEarned профиля")
	assert.Greater(t, top[0].TotalXP, 50, "наградной XP тоже идёт в рейтинг, не только начисление за тему")
}

func TestOnXPGained_RejectsForeignEvent(t *testing.T) {
	handler := NewOnXPGainedHandler(memory.NewLeaderboard(), nil)

	err := handler.Handle(shared.NewLevelUpEvent("learner-1", 2, 150, 100, "topic_completed"))
	assert.Error(t, err)
}

func TestOnXPGained_WriterErrorSurfaces(t *testing.T) {
	boom := errors.New("projection down")
	handler := NewOnXPGainedHandler(&failingWriter{err: boom}, nil)

	err := handler.Handle(shared.NewXPGainedEvent("learner-1", 50, 0, 50, "topic_completed"))
	assert.ErrorIs(t, err, boom)
}
