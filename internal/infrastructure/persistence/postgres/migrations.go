package postgres

import (
	"context"
	"fmt"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: LEARNER PROFILES
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
CREATE TABLE IF NOT EXISTS learner_profiles (
    user_id VARCHAR(64) PRIMARY KEY,
    display_name VARCHAR(100) NOT NULL,
    level INTEGER NOT NULL DEFAULT 1,
    current_xp INTEGER NOT NULL DEFAULT 0,
    total_xp_earned INTEGER NOT NULL DEFAULT 0,
    xp_to_next_level INTEGER NOT NULL DEFAULT 100,
    streak_current INTEGER NOT NULL DEFAULT 0,
    streak_longest INTEGER NOT NULL DEFAULT 0,
    streak_last_activity TIMESTAMP WITH TIME ZONE,
    milestones JSONB NOT NULL DEFAULT '[]'::jsonb,
    achievements JSONB NOT NULL DEFAULT '[]'::jsonb,
    badges JSONB NOT NULL DEFAULT '[]'::jsonb,
    topics_completed INTEGER NOT NULL DEFAULT 0,
    total_study_minutes INTEGER NOT NULL DEFAULT 0,
    average_quiz_score DOUBLE PRECISION NOT NULL DEFAULT 0,
    quiz_count INTEGER NOT NULL DEFAULT 0,
    perfect_quiz_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_level CHECK (level >= 1),
    CONSTRAINT valid_xp CHECK (current_xp >= 0 AND total_xp_earned >= 0),
    CONSTRAINT valid_streak CHECK (streak_longest >= streak_current AND streak_current >= 0)
);

CREATE INDEX IF NOT EXISTS idx_profiles_total_xp ON learner_profiles(total_xp_earned DESC);
CREATE INDEX IF NOT EXISTS idx_profiles_streak_activity
    ON learner_profiles(streak_last_activity)
    WHERE streak_current > 0;
`

const migration001Down = `DROP TABLE IF EXISTS learner_profiles;`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: STUDY SESSIONS (append-only log)
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
CREATE TABLE IF NOT EXISTS study_sessions (
    id UUID PRIMARY KEY,
    learner_id VARCHAR(64) NOT NULL,
    topic_id VARCHAR(64) NOT NULL,
    started_at TIMESTAMP WITH TIME ZONE NOT NULL,
    duration_minutes INTEGER NOT NULL,
    activities JSONB NOT NULL DEFAULT '[]'::jsonb,
    quiz_score DOUBLE PRECISION,
    concepts_understood JSONB NOT NULL DEFAULT '[]'::jsonb,
    struggled_concepts JSONB NOT NULL DEFAULT '[]'::jsonb,
    recorded_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_duration CHECK (duration_minutes > 0),
    CONSTRAINT valid_quiz_score CHECK (quiz_score IS NULL OR (quiz_score >= 0 AND quiz_score <= 100))
);

CREATE INDEX IF NOT EXISTS idx_sessions_learner ON study_sessions(learner_id, recorded_at);
CREATE INDEX IF NOT EXISTS idx_sessions_topic ON study_sessions(topic_id);
`

const migration002Down = `DROP TABLE IF EXISTS study_sessions;`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATOR
// ══════════════════════════════════════════════════════════════════════════════

// Migration represents a database migration.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// Migrations returns all embedded migrations in order.
func Migrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_learner_profiles", UpSQL: migration001Up, DownSQL: migration001Down},
		{Version: 2, Name: "create_study_sessions", UpSQL: migration002Up, DownSQL: migration002Down},
	}
}

// Migrator applies embedded migrations.
type Migrator struct {
	conn *Connection
}

// NewMigrator creates a migrator.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{conn: conn}
}

// Migrate applies all pending migrations in version order.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.ensureTable(ctx); err != nil {
		return err
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, mig := range Migrations() {
		if applied[mig.Version] {
			continue
		}
		if _, err := m.conn.Exec(ctx, mig.UpSQL); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMigrationFailed, mig.Name, err)
		}
		if _, err := m.conn.Exec(ctx,
			`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`,
			mig.Version, mig.Name,
		); err != nil {
			return fmt.Errorf("%w: record %s: %v", ErrMigrationFailed, mig.Name, err)
		}
	}

	return nil
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	_, err := m.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("%w: ensure table: %v", ErrMigrationFailed, err)
	}
	return nil
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := m.conn.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("%w: read versions: %v", ErrMigrationFailed, err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("%w: scan version: %v", ErrMigrationFailed, err)
		}
		applied[v] = true
	}
	return applied, rows.Err()
}
