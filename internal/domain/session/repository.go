package session

import (
	"context"
	"time"

	"github.com/dsapath/dsapath-progress-core/internal/domain/learner"
)

// Repository defines the append-only session log contract.
// Implementations live in infrastructure/persistence.
type Repository interface {
	// Append stores a new session record. Sessions are never updated
	// or deleted; the log is the source of truth for skill analysis.
	Append(ctx context.Context, s *StudySession) error

	// ListByLearner returns all sessions of a learner ordered by
	// RecordedAt ascending (oldest first).
	ListByLearner(ctx context.Context, id learner.LearnerID) ([]*StudySession, error)

	// ListByLearnerSince returns the learner's sessions recorded at or
	// after the given time, ordered by RecordedAt ascending.
	ListByLearnerSince(ctx context.Context, id learner.LearnerID, since time.Time) ([]*StudySession, error)

	// CountByLearner returns the number of sessions the learner recorded.
	CountByLearner(ctx context.Context, id learner.LearnerID) (int, error)
}
