package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dsapath/dsapath-progress-core/internal/domain/catalog"
	"github.com/dsapath/dsapath-progress-core/internal/domain/learner"
	"github.com/dsapath/dsapath-progress-core/internal/domain/session"
	"github.com/dsapath/dsapath-progress-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SESSION REPOSITORY IMPLEMENTATION
// The study_sessions table is append-only: INSERT and SELECT, never
// UPDATE or DELETE.
// ══════════════════════════════════════════════════════════════════════════════

const sessionColumns = `
	id, learner_id, topic_id, started_at, duration_minutes,
	activities, quiz_score, concepts_understood, struggled_concepts, recorded_at`

// SessionRepository implements session.Repository for PostgreSQL.
type SessionRepository struct {
	conn *Connection
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(conn *Connection) *SessionRepository {
	return &SessionRepository{conn: conn}
}

var _ session.Repository = (*SessionRepository)(nil)

// Append inserts a session record.
func (r *SessionRepository) Append(ctx context.Context, s *session.StudySession) error {
	query := `
		INSERT INTO study_sessions (
			id, learner_id, topic_id, started_at, duration_minutes,
			activities, quiz_score, concepts_understood, struggled_concepts, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	activities, err := json.Marshal(s.Activities)
	if err != nil {
		return fmt.Errorf("failed to marshal activities: %w", err)
	}
	understood, err := json.Marshal(s.ConceptsUnderstood)
	if err != nil {
		return fmt.Errorf("failed to marshal concepts: %w", err)
	}
	struggled, err := json.Marshal(s.StruggledConcepts)
	if err != nil {
		return fmt.Errorf("failed to marshal concepts: %w", err)
	}

	var quizScore *float64
	if s.QuizScore != nil {
		v := float64(*s.QuizScore)
		quizScore = &v
	}

	_, err = r.conn.Exec(ctx, query,
		s.ID.String(),
		s.LearnerID.String(),
		s.TopicID.String(),
		s.StartedAt,
		s.DurationMinutes,
		activities,
		quizScore,
		understood,
		struggled,
		s.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: append session: %v", shared.ErrStorageUnavailable, err)
	}

	return nil
}

// ListByLearner returns the learner's sessions, oldest first.
func (r *SessionRepository) ListByLearner(ctx context.Context, id learner.LearnerID) ([]*session.StudySession, error) {
	query := `SELECT ` + sessionColumns + `
		FROM study_sessions
		WHERE learner_id = $1
		ORDER BY recorded_at, id`

	rows, err := r.conn.Query(ctx, query, id.String())
	if err != nil {
		return nil, fmt.Errorf("%w: list sessions: %v", shared.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	return r.scanSessions(rows)
}

// ListByLearnerSince returns sessions recorded at or after the given time.
func (r *SessionRepository) ListByLearnerSince(ctx context.Context, id learner.LearnerID, since time.Time) ([]*session.StudySession, error) {
	query := `SELECT ` + sessionColumns + `
		FROM study_sessions
		WHERE learner_id = $1 AND recorded_at >= $2
		ORDER BY recorded_at, id`

	rows, err := r.conn.Query(ctx, query, id.String(), since)
	if err != nil {
		return nil, fmt.Errorf("%w: list sessions: %v", shared.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	return r.scanSessions(rows)
}

// CountByLearner returns the learner's session count.
func (r *SessionRepository) CountByLearner(ctx context.Context, id learner.LearnerID) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM study_sessions WHERE learner_id = $1`,
		id.String(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: count sessions: %v", shared.ErrStorageUnavailable, err)
	}
	return count, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *SessionRepository) scanSessions(rows pgx.Rows) ([]*session.StudySession, error) {
	var out []*session.StudySession

	for rows.Next() {
		var (
			s          session.StudySession
			id         string
			learnerID  string
			topicID    string
			activities []byte
			quizScore  *float64
			understood []byte
			struggled  []byte
		)

		err := rows.Scan(
			&id,
			&learnerID,
			&topicID,
			&s.StartedAt,
			&s.DurationMinutes,
			&activities,
			&quizScore,
			&understood,
			&struggled,
			&s.RecordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scan session: %v", shared.ErrStorageUnavailable, err)
		}

		s.ID = session.SessionID(id)
		s.LearnerID = learner.LearnerID(learnerID)
		s.TopicID = catalog.TopicID(topicID)
		if quizScore != nil {
			qs := learner.QuizScore(*quizScore)
			s.QuizScore = &qs
		}

		if err := json.Unmarshal(activities, &s.Activities); err != nil {
			return nil, fmt.Errorf("%w: activities for %s: %v", shared.ErrStorageCorrupt, id, err)
		}
		if err := json.Unmarshal(understood, &s.ConceptsUnderstood); err != nil {
			return nil, fmt.Errorf("%w: concepts for %s: %v", shared.ErrStorageCorrupt, id, err)
		}
		if err := json.Unmarshal(struggled, &s.StruggledConcepts); err != nil {
			return nil, fmt.Errorf("%w: concepts for %s: %v", shared.ErrStorageCorrupt, id, err)
		}

		out = append(out, &s)
	}

	return out, rows.Err()
}
