// Package session contains the immutable study-session log.
// A StudySession is an append-only record of one completed learning
// activity; it is never updated or deleted after being recorded.
// This is a pure domain layer with zero external dependencies.
package session

import (
	"errors"
	"time"

	"github.com/dsapath/dsapath-progress-core/internal/domain/catalog"
	"github.com/dsapath/dsapath-progress-core/internal/domain/learner"
)

// Domain errors for session package.
var (
	ErrInvalidSessionID = errors.New("session: invalid session ID")
	ErrInvalidLearnerID = errors.New("session: invalid learner ID")
	ErrInvalidTopicID   = errors.New("session: invalid topic ID")
	ErrInvalidDuration  = errors.New("session: duration must be positive")
	ErrInvalidQuizScore = errors.New("session: quiz score must be between 0 and 100")
	ErrFutureTimestamp  = errors.New("session: start time cannot be in the future")
	ErrSessionNotFound  = errors.New("session: session not found")
)

// SessionID represents a unique identifier for a study session.
type SessionID string

// IsValid checks if the session ID is valid.
func (s SessionID) IsValid() bool {
	return s != ""
}

// String returns the string representation of SessionID.
func (s SessionID) String() string {
	return string(s)
}

// Activity represents one kind of work done during a session.
type Activity string

const (
	ActivityLesson    Activity = "lesson"
	ActivityQuiz      Activity = "quiz"
	ActivityExercise  Activity = "exercise"
	ActivityVisualRun Activity = "visual_run" // stepping through an algorithm visualization
)

// IsValid checks that the activity is one of the known kinds.
func (a Activity) IsValid() bool {
	switch a {
	case ActivityLesson, ActivityQuiz, ActivityExercise, ActivityVisualRun:
		return true
	default:
		return false
	}
}

// StudySession is an immutable record of one completed learning activity.
// All fields are set at construction; there are no mutating methods.
type StudySession struct {
	ID              SessionID
	LearnerID       learner.LearnerID
	TopicID         catalog.TopicID
	StartedAt       time.Time
	DurationMinutes int
	Activities      []Activity

	// QuizScore is nil for sessions without a quiz.
	QuizScore *learner.QuizScore

	// Free-form reflections captured from the learner.
	ConceptsUnderstood []string
	StruggledConcepts  []string

	RecordedAt time.Time
}

// NewSessionParams holds the inputs for recording a study session.
type NewSessionParams struct {
	ID                 SessionID
	LearnerID          learner.LearnerID
	TopicID            catalog.TopicID
	StartedAt          time.Time
	DurationMinutes    int
	Activities         []Activity
	QuizScore          *learner.QuizScore
	ConceptsUnderstood []string
	StruggledConcepts  []string
}

// New validates the inputs and builds an immutable StudySession.
// Validation happens here, before any profile state is touched.
func New(params NewSessionParams) (*StudySession, error) {
	if !params.ID.IsValid() {
		return nil, ErrInvalidSessionID
	}
	if !params.LearnerID.IsValid() {
		return nil, ErrInvalidLearnerID
	}
	if !params.TopicID.IsValid() {
		return nil, ErrInvalidTopicID
	}
	if params.DurationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}
	if params.QuizScore != nil && !params.QuizScore.IsValid() {
		return nil, ErrInvalidQuizScore
	}
	if params.StartedAt.After(time.Now().Add(time.Minute)) { // Allow 1 minute tolerance
		return nil, ErrFutureTimestamp
	}

	now := time.Now().UTC()
	startedAt := params.StartedAt
	if startedAt.IsZero() {
		startedAt = now
	}

	s := &StudySession{
		ID:              params.ID,
		LearnerID:       params.LearnerID,
		TopicID:         params.TopicID,
		StartedAt:       startedAt.UTC(),
		DurationMinutes: params.DurationMinutes,
		QuizScore:       params.QuizScore,
		RecordedAt:      now,
	}

	// Copy slices so callers cannot mutate the record afterwards.
	if len(params.Activities) > 0 {
		s.Activities = make([]Activity, len(params.Activities))
		copy(s.Activities, params.Activities)
	}
	if len(params.ConceptsUnderstood) > 0 {
		s.ConceptsUnderstood = make([]string, len(params.ConceptsUnderstood))
		copy(s.ConceptsUnderstood, params.ConceptsUnderstood)
	}
	if len(params.StruggledConcepts) > 0 {
		s.StruggledConcepts = make([]string, len(params.StruggledConcepts))
		copy(s.StruggledConcepts, params.StruggledConcepts)
	}

	return s, nil
}

// HasQuiz reports whether the session included a quiz.
func (s *StudySession) HasQuiz() bool {
	return s.QuizScore != nil
}

// Includes reports whether the session included the given activity.
func (s *StudySession) Includes(a Activity) bool {
	for _, act := range s.Activities {
		if act == a {
			return true
		}
	}
	return false
}
