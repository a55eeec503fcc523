package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsapath/dsapath-progress-core/internal/domain/learner"
)

func validParams() NewSessionParams {
	score := learner.QuizScore(85)
	return NewSessionParams{
		ID:              "sess-1",
		LearnerID:       "learner-1",
		TopicID:         "array-basics",
		StartedAt:       time.Now().Add(-time.Hour),
		DurationMinutes: 25,
		Activities:      []Activity{ActivityLesson, ActivityQuiz},
		QuizScore:       &score,
	}
}

func TestNew_Valid(t *testing.T) {
	s, err := New(validParams())

	require.NoError(t, err)
	assert.Equal(t, SessionID("sess-1"), s.ID)
	assert.True(t, s.HasQuiz())
	assert.Equal(t, time.UTC, s.StartedAt.Location())
	assert.False(t, s.RecordedAt.IsZero())
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*NewSessionParams)
		wantErr error
	}{
		{"empty session id", func(p *NewSessionParams) { p.ID = "" }, ErrInvalidSessionID},
		{"empty learner id", func(p *NewSessionParams) { p.LearnerID = "" }, ErrInvalidLearnerID},
		{"empty topic id", func(p *NewSessionParams) { p.TopicID = "" }, ErrInvalidTopicID},
		{"zero duration", func(p *NewSessionParams) { p.DurationMinutes = 0 }, ErrInvalidDuration},
		{"negative duration", func(p *NewSessionParams) { p.DurationMinutes = -5 }, ErrInvalidDuration},
		{"quiz score above 100", func(p *NewSessionParams) {
			score := learner.QuizScore(101)
			p.QuizScore = &score
		}, ErrInvalidQuizScore},
		{"started in the future", func(p *NewSessionParams) {
			p.StartedAt = time.Now().Add(2 * time.Hour)
		}, ErrFutureTimestamp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validParams()
			tt.mutate(&params)
			_, err := New(params)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNew_ZeroStartDefaultsToNow(t *testing.T) {
	params := validParams()
	params.StartedAt = time.Time{}

	s, err := New(params)

	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), s.StartedAt, time.Minute)
}

func TestNew_CopiesSlices(t *testing.T) {
	params := validParams()
	params.ConceptsUnderstood = []string{"iteration"}
	params.StruggledConcepts = []string{"off-by-one"}

	s, err := New(params)
	require.NoError(t, err)

	params.Activities[0] = ActivityExercise
	params.ConceptsUnderstood[0] = "mutated"
	params.StruggledConcepts[0] = "mutated"

	assert.Equal(t, ActivityLesson, s.Activities[0])
	assert.Equal(t, "iteration", s.ConceptsUnderstood[0])
	assert.Equal(t, "off-by-one", s.StruggledConcepts[0])
}

func TestHasQuizAndIncludes(t *testing.T) {
	params := validParams()
	params.QuizScore = nil
	params.Activities = []Activity{ActivityVisualRun}

	s, err := New(params)
	require.NoError(t, err)

	assert.False(t, s.HasQuiz())
	assert.True(t, s.Includes(ActivityVisualRun))
	assert.False(t, s.Includes(ActivityQuiz))
}
