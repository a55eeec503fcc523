package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dsapath/dsapath-progress-core/internal/domain/learner"
	"github.com/dsapath/dsapath-progress-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const profileColumns = `
	user_id, display_name, level, current_xp, total_xp_earned, xp_to_next_level,
	streak_current, streak_longest, streak_last_activity,
	milestones, achievements, badges,
	topics_completed, total_study_minutes, average_quiz_score, quiz_count, perfect_quiz_count,
	created_at, updated_at`

// ProfileRepository implements learner.Repository for PostgreSQL.
type ProfileRepository struct {
	conn *Connection
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(conn *Connection) *ProfileRepository {
	return &ProfileRepository{conn: conn}
}

var _ learner.Repository = (*ProfileRepository)(nil)

// Create creates a new learner profile.
func (r *ProfileRepository) Create(ctx context.Context, p *learner.Profile) error {
	query := `
		INSERT INTO learner_profiles (
			user_id, display_name, level, current_xp, total_xp_earned, xp_to_next_level,
			streak_current, streak_longest, streak_last_activity,
			milestones, achievements, badges,
			topics_completed, total_study_minutes, average_quiz_score, quiz_count, perfect_quiz_count,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	milestones, achievements, badges, err := marshalProfileJSON(p)
	if err != nil {
		return err
	}

	_, err = r.conn.Exec(ctx, query,
		p.UserID.String(),
		p.DisplayName,
		int(p.Level),
		int(p.XP.CurrentXP),
		int(p.XP.TotalXPEarned),
		int(p.XP.XPToNextLevel),
		p.Streak.Current,
		p.Streak.Longest,
		nullableTime(p.Streak.LastActivityDate),
		milestones,
		achievements,
		badges,
		p.Stats.TopicsCompleted,
		p.Stats.TotalStudyMinutes,
		p.Stats.AverageQuizScore,
		p.Stats.QuizCount,
		p.Stats.PerfectQuizCount,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return learner.ErrLearnerAlreadyExists
		}
		return fmt.Errorf("%w: create profile: %v", shared.ErrStorageUnavailable, err)
	}

	return nil
}

// GetByID returns a profile by learner ID.
func (r *ProfileRepository) GetByID(ctx context.Context, id learner.LearnerID) (*learner.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM learner_profiles WHERE user_id = $1`

	row := r.conn.QueryRow(ctx, query, id.String())
	return r.scanProfile(row)
}

// Update saves a modified profile.
func (r *ProfileRepository) Update(ctx context.Context, p *learner.Profile) error {
	query := `
		UPDATE learner_profiles SET
			display_name = $1,
			level = $2,
			current_xp = $3,
			total_xp_earned = $4,
			xp_to_next_level = $5,
			streak_current = $6,
			streak_longest = $7,
			streak_last_activity = $8,
			milestones = $9,
			achievements = $10,
			badges = $11,
			topics_completed = $12,
			total_study_minutes = $13,
			average_quiz_score = $14,
			quiz_count = $15,
			perfect_quiz_count = $16,
			updated_at = $17
		WHERE user_id = $18
	`

	milestones, achievements, badges, err := marshalProfileJSON(p)
	if err != nil {
		return err
	}

	tag, err := r.conn.Exec(ctx, query,
		p.DisplayName,
		int(p.Level),
		int(p.XP.CurrentXP),
		int(p.XP.TotalXPEarned),
		int(p.XP.XPToNextLevel),
		p.Streak.Current,
		p.Streak.Longest,
		nullableTime(p.Streak.LastActivityDate),
		milestones,
		achievements,
		badges,
		p.Stats.TopicsCompleted,
		p.Stats.TotalStudyMinutes,
		p.Stats.AverageQuizScore,
		p.Stats.QuizCount,
		p.Stats.PerfectQuizCount,
		p.UpdatedAt,
		p.UserID.String(),
	)
	if err != nil {
		return fmt.Errorf("%w: update profile: %v", shared.ErrStorageUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return learner.ErrLearnerNotFound
	}

	return nil
}

// GetAll returns profiles with pagination, ordered by creation time.
func (r *ProfileRepository) GetAll(ctx context.Context, opts learner.ListOptions) ([]*learner.Profile, error) {
	opts = opts.Normalize()

	query := `SELECT ` + profileColumns + `
		FROM learner_profiles
		ORDER BY created_at, user_id
		LIMIT $1 OFFSET $2`

	rows, err := r.conn.Query(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list profiles: %v", shared.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	return r.scanProfiles(rows)
}

// Count returns the total number of profiles.
func (r *ProfileRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM learner_profiles`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: count profiles: %v", shared.ErrStorageUnavailable, err)
	}
	return count, nil
}

// Exists checks profile existence.
func (r *ProfileRepository) Exists(ctx context.Context, id learner.LearnerID) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM learner_profiles WHERE user_id = $1)`,
		id.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: check profile: %v", shared.ErrStorageUnavailable, err)
	}
	return exists, nil
}

// FindWithActiveStreak returns profiles with a live streak whose last
// activity predates the cutoff. Used by the broken-streak scanner.
func (r *ProfileRepository) FindWithActiveStreak(ctx context.Context, lastActiveBefore time.Time) ([]*learner.Profile, error) {
	query := `SELECT ` + profileColumns + `
		FROM learner_profiles
		WHERE streak_current > 0
		  AND streak_last_activity IS NOT NULL
		  AND streak_last_activity < $1
		ORDER BY user_id`

	rows, err := r.conn.Query(ctx, query, lastActiveBefore)
	if err != nil {
		return nil, fmt.Errorf("%w: find streaks: %v", shared.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	return r.scanProfiles(rows)
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *ProfileRepository) scanProfile(row pgx.Row) (*learner.Profile, error) {
	var (
		p            learner.Profile
		level        int
		currentXP    int
		totalXP      int
		xpToNext     int
		lastActivity *time.Time
		milestones   []byte
		achievements []byte
		badges       []byte
		userID       string
	)

	err := row.Scan(
		&userID,
		&p.DisplayName,
		&level,
		&currentXP,
		&totalXP,
		&xpToNext,
		&p.Streak.Current,
		&p.Streak.Longest,
		&lastActivity,
		&milestones,
		&achievements,
		&badges,
		&p.Stats.TopicsCompleted,
		&p.Stats.TotalStudyMinutes,
		&p.Stats.AverageQuizScore,
		&p.Stats.QuizCount,
		&p.Stats.PerfectQuizCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, learner.ErrLearnerNotFound
		}
		return nil, fmt.Errorf("%w: scan profile: %v", shared.ErrStorageUnavailable, err)
	}

	p.UserID = learner.LearnerID(userID)
	p.Level = learner.Level(level)
	p.XP = learner.XPState{
		CurrentXP:     learner.XP(currentXP),
		TotalXPEarned: learner.XP(totalXP),
		XPToNextLevel: learner.XP(xpToNext),
	}
	if lastActivity != nil {
		p.Streak.LastActivityDate = lastActivity.UTC()
	}

	if err := json.Unmarshal(milestones, &p.Streak.Milestones); err != nil {
		return nil, fmt.Errorf("%w: milestones for %s: %v", shared.ErrStorageCorrupt, userID, err)
	}
	if err := json.Unmarshal(achievements, &p.Achievements); err != nil {
		return nil, fmt.Errorf("%w: achievements for %s: %v", shared.ErrStorageCorrupt, userID, err)
	}
	if err := json.Unmarshal(badges, &p.Badges); err != nil {
		return nil, fmt.Errorf("%w: badges for %s: %v", shared.ErrStorageCorrupt, userID, err)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: profile %s: %v", shared.ErrStorageCorrupt, userID, err)
	}

	return &p, nil
}

func (r *ProfileRepository) scanProfiles(rows pgx.Rows) ([]*learner.Profile, error) {
	var out []*learner.Profile
	for rows.Next() {
		p, err := r.scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func marshalProfileJSON(p *learner.Profile) (milestones, achievements, badges []byte, err error) {
	if milestones, err = json.Marshal(p.Streak.Milestones); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal milestones: %w", err)
	}
	if achievements, err = json.Marshal(p.Achievements); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal achievements: %w", err)
	}
	if badges, err = json.Marshal(p.Badges); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal badges: %w", err)
	}
	return milestones, achievements, badges, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
