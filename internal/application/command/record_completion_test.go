package command

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsapath/dsapath-progress-core/internal/domain/catalog"
	"github.com/dsapath/dsapath-progress-core/internal/domain/insight"
	"github.com/dsapath/dsapath-progress-core/internal/domain/learner"
	"github.com/dsapath/dsapath-progress-core/internal/domain/shared"
	"github.com/dsapath/dsapath-progress-core/internal/infrastructure/persistence/memory"
	"github.com/dsapath/dsapath-progress-core/pkg/logger"
)

type capturingPublisher struct {
	events []shared.Event
}

func (p *capturingPublisher) Publish(e shared.Event) error {
	p.events = append(p.events, e)
	return nil
}

func (p *capturingPublisher) ofType(t shared.EventType) []shared.Event {
	var out []shared.Event
	for _, e := range p.events {
		if e.EventType() == t {
			out = append(out, e)
		}
	}
	return out
}

type testHarness struct {
	handler     *RecordCompletionHandler
	profileRepo *memory.ProfileRepository
	sessionRepo *memory.SessionRepository
	publisher   *capturingPublisher
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	cat := catalog.Default()
	profileRepo := memory.NewProfileRepository()
	sessionRepo := memory.NewSessionRepository()
	publisher := &capturingPublisher{}
	log := logger.New(logger.Options{Output: io.Discard, Level: logger.LevelError})

	ledger := learner.NewXPLedger(nil)
	handler := NewRecordCompletionHandler(RecordCompletionDeps{
		ProfileRepo:  profileRepo,
		SessionRepo:  sessionRepo,
		Catalog:      cat,
		Ledger:       ledger,
		Streaks:      learner.NewStreakTracker(ledger, nil),
		Achievements: learner.NewAchievementEvaluator(ledger, nil),
		Analyzer:     insight.NewSkillAnalyzer(cat),
		Planner:      insight.NewRecommendationPlanner(cat),
		Publisher:    publisher,
		Logger:       log,
	})

	return &testHarness{
		handler:     handler,
		profileRepo: profileRepo,
		sessionRepo: sessionRepo,
		publisher:   publisher,
	}
}

func validCommand() RecordCompletionCommand {
	score := 85.0
	return RecordCompletionCommand{
		LearnerID:       "learner-1",
		TopicID:         "array-basics",
		DurationMinutes: 25,
		QuizScore:       &score,
		Activities:      []string{"lesson", "quiz"},
	}
}

func TestHandle_ValidationRejectsBeforeMutation(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*RecordCompletionCommand)
	}{
		{"empty learner", func(c *RecordCompletionCommand) { c.LearnerID = "" }},
		{"empty topic", func(c *RecordCompletionCommand) { c.TopicID = "" }},
		{"zero duration", func(c *RecordCompletionCommand) { c.DurationMinutes = 0 }},
		{"quiz score out of range", func(c *RecordCompletionCommand) {
			bad := 140.0
			c.QuizScore = &bad
		}},
		{"unknown activity", func(c *RecordCompletionCommand) { c.Activities = []string{"karaoke"} }},
		{"future start", func(c *RecordCompletionCommand) { c.StartedAt = time.Now().Add(time.Hour) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := validCommand()
			tt.mutate(&cmd)

			_, err := h.handler.Handle(ctx, cmd)

			require.Error(t, err)
			assert.True(t, shared.IsValidation(err), "expected validation error, got %v", err)
		})
	}

	// A rejected command must leave no trace.
	sessions, err := h.sessionRepo.ListByLearner(ctx, "learner-1")
	require.NoError(t, err)
	assert.Empty(t, sessions)
	_, err = h.profileRepo.GetByID(ctx, "learner-1")
	assert.ErrorIs(t, err, learner.ErrLearnerNotFound)
}

func TestHandle_UnknownTopic(t *testing.T) {
	h := newTestHarness(t)

	cmd := validCommand()
	cmd.TopicID = "no-such-topic"

	_, err := h.handler.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, shared.ErrTopicNotFound)
}

func TestHandle_FirstCompletionCreatesProfile(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	res, err := h.handler.Handle(ctx, validCommand())
	require.NoError(t, err)

	profile, err := h.profileRepo.GetByID(ctx, "learner-1")
	require.NoError(t, err)
	assert.Equal(t, 1, profile.Stats.TopicsCompleted)
	assert.Equal(t, 1, profile.Streak.Current)

	assert.NotEmpty(t, res.SessionID)
	assert.Equal(t, 1, res.StreakDay)
	assert.True(t, res.StreakExtended)

	sessions, err := h.sessionRepo.ListByLearner(ctx, "learner-1")
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestHandle_CombinedResult(t *testing.T) {
	h := newTestHarness(t)

	// array-basics is easy: base 50 XP, no streak bonus on day one.
	res, err := h.handler.Handle(context.Background(), validCommand())
	require.NoError(t, err)

	assert.Equal(t, learner.XP(50), res.XPGained.BaseAmount)
	assert.Equal(t, learner.XP(0), res.XPGained.BonusAmount)
	assert.Equal(t, learner.XP(50), res.XPGained.FinalAmount)
	assert.Equal(t, learner.ReasonQuizCompleted, res.XPGained.Reason)

	// first_steps unlocks on the first topic and its 50 XP reward counts
	// toward the call total.
	require.NotEmpty(t, res.AchievementsUnlocked)
	assert.Equal(t, learner.AchievementFirstSteps, res.AchievementsUnlocked[0].ID)
	assert.Equal(t, learner.XP(100), res.TotalXPGained)

	assert.True(t, res.LeveledUp)
	assert.Equal(t, learner.Level(2), res.NewLevel)

	assert.NotEmpty(t, res.RecommendedTopics)
	require.NotNil(t, res.Analysis)
	assert.InDelta(t, 85, res.Analysis.SkillOf(catalog.CategoryArrays), 1e-9)
}

func TestHandle_SameDaySecondCallKeepsStreak(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	_, err := h.handler.Handle(ctx, validCommand())
	require.NoError(t, err)

	cmd := validCommand()
	cmd.TopicID = "linked-list"
	res, err := h.handler.Handle(ctx, cmd)
	require.NoError(t, err)

	assert.Equal(t, 1, res.StreakDay)
	assert.False(t, res.StreakExtended, "second session on the same day must not extend the streak")
}

func TestHandle_NoQuizUsesTopicReason(t *testing.T) {
	h := newTestHarness(t)

	cmd := validCommand()
	cmd.QuizScore = nil
	cmd.Activities = []string{"lesson"}

	res, err := h.handler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	assert.Equal(t, learner.ReasonTopicCompleted, res.XPGained.Reason)
}

func TestHandle_EmitsEvents(t *testing.T) {
	h := newTestHarness(t)

	res, err := h.handler.Handle(context.Background(), validCommand())
	require.NoError(t, err)

	assert.NotEmpty(t, res.Events)
	assert.Len(t, h.publisher.ofType(shared.EventSessionRecorded), 1)
	assert.Len(t, h.publisher.ofType(shared.EventXPGained), 1)
	assert.Len(t, h.publisher.ofType(shared.EventLevelUp), 1)
	assert.NotEmpty(t, h.publisher.ofType(shared.EventAchievementUnlocked))
}

func TestHandle_RecommendationsExcludeMasteredTopic(t *testing.T) {
	h := newTestHarness(t)

	score := 95.0
	cmd := validCommand()
	cmd.QuizScore = &score

	res, err := h.handler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	assert.NotContains(t, res.RecommendedTopics, catalog.TopicID("array-basics"))
}
