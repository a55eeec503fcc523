package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dsapath/dsapath-progress-core/internal/domain/learner"
	"github.com/dsapath/dsapath-progress-core/internal/domain/session"
)

// SessionRepository is a thread-safe in-memory append-only session log.
type SessionRepository struct {
	mu        sync.RWMutex
	byLearner map[learner.LearnerID][]*session.StudySession
}

// NewSessionRepository creates an empty in-memory session log.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		byLearner: make(map[learner.LearnerID][]*session.StudySession),
	}
}

var _ session.Repository = (*SessionRepository)(nil)

// Append adds a session to the log. Sessions are immutable, so the
// pointer is stored as-is.
func (r *SessionRepository) Append(_ context.Context, s *session.StudySession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byLearner[s.LearnerID] = append(r.byLearner[s.LearnerID], s)
	return nil
}

// ListByLearner returns the learner's sessions, oldest first.
func (r *SessionRepository) ListByLearner(_ context.Context, id learner.LearnerID) ([]*session.StudySession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.byLearner[id]
	out := make([]*session.StudySession, len(stored))
	copy(out, stored)
	return out, nil
}

// ListByLearnerSince returns sessions recorded at or after the given time.
func (r *SessionRepository) ListByLearnerSince(_ context.Context, id learner.LearnerID, since time.Time) ([]*session.StudySession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*session.StudySession
	for _, s := range r.byLearner[id] {
		if !s.RecordedAt.Before(since) {
			out = append(out, s)
		}
	}
	return out, nil
}

// CountByLearner returns the learner's session count.
func (r *SessionRepository) CountByLearner(_ context.Context, id learner.LearnerID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byLearner[id]), nil
}
