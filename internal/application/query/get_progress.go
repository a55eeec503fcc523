// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/dsapath/dsapath-progress-core/internal/domain/learner"
	"github.com/dsapath/dsapath-progress-core/internal/domain/session"
	"github.com/dsapath/dsapath-progress-core/internal/domain/shared"
	"github.com/dsapath/dsapath-progress-core/pkg/logger"
	"github.com/dsapath/dsapath-progress-core/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROGRESS QUERY
// Full progress picture of one learner: level, XP, streak, achievements,
// plus a snapshot of today's activity.
// ══════════════════════════════════════════════════════════════════════════════

// GetProgressQuery contains the query parameters.
type GetProgressQuery struct {
	LearnerID string
}

// Validate validates the query.
func (q GetProgressQuery) Validate() error {
	if !learner.LearnerID(q.LearnerID).IsValid() {
		return fmt.Errorf("get_progress: learner_id is required: %w", shared.ErrInvalidLearnerID)
	}
	return nil
}

// DailySnapshot summarizes today's activity (UTC day).
type DailySnapshot struct {
	// Date is the start of today, UTC.
	Date time.Time

	// SessionsToday is how many sessions were recorded today.
	SessionsToday int

	// StudyMinutesToday is the total study time today.
	StudyMinutesToday int

	// TopicsToday lists distinct topics studied today.
	TopicsToday []string

	// QuizzesToday is how many quizzes were taken today.
	QuizzesToday int
}

// ProgressView is the read model returned to the interface layer.
type ProgressView struct {
	LearnerID     string
	DisplayName   string
	Level         learner.Level
	CurrentXP     learner.XP
	TotalXPEarned learner.XP
	XPToNextLevel learner.XP

	StreakCurrent      int
	StreakLongest      int
	StreakLastActivity time.Time

	Stats  learner.Stats
	Badges []learner.Badge

	// Achievements holds per-achievement progress, unlocked ones at 100%.
	Achievements []learner.AchievementProgress

	// Today is the daily activity snapshot.
	Today DailySnapshot

	// TotalSessions is the size of the learner's session log.
	TotalSessions int
}

// GetProgressHandler handles the GetProgressQuery.
type GetProgressHandler struct {
	profileRepo  learner.Repository
	sessionRepo  session.Repository
	achievements *learner.AchievementEvaluator
	log          *logger.Logger
}

// NewGetProgressHandler creates a new GetProgressHandler.
func NewGetProgressHandler(
	profileRepo learner.Repository,
	sessionRepo session.Repository,
	achievements *learner.AchievementEvaluator,
	log *logger.Logger,
) *GetProgressHandler {
	return &GetProgressHandler{
		profileRepo:  profileRepo,
		sessionRepo:  sessionRepo,
		achievements: achievements,
		log:          log.With(logger.Component("get_progress")),
	}
}

// Handle executes the query.
func (h *GetProgressHandler) Handle(ctx context.Context, q GetProgressQuery) (*ProgressView, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	id := learner.LearnerID(q.LearnerID)

	profile, err := h.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get_progress: load profile: %w", err)
	}

	total, err := h.sessionRepo.CountByLearner(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get_progress: count sessions: %w", err)
	}

	now := time.Now().UTC()
	todays, err := h.sessionRepo.ListByLearnerSince(ctx, id, timeutil.StartOfDay(now))
	if err != nil {
		return nil, fmt.Errorf("get_progress: load today sessions: %w", err)
	}

	return &ProgressView{
		LearnerID:     profile.UserID.String(),
		DisplayName:   profile.DisplayName,
		Level:         profile.Level,
		CurrentXP:     profile.XP.CurrentXP,
		TotalXPEarned: profile.XP.TotalXPEarned,
		XPToNextLevel: profile.XP.XPToNextLevel,

		StreakCurrent:      profile.Streak.Current,
		StreakLongest:      profile.Streak.Longest,
		StreakLastActivity: profile.Streak.LastActivityDate,

		Stats:        profile.Stats,
		Badges:       profile.Badges,
		Achievements: h.achievements.Progress(profile),

		Today:         buildDailySnapshot(now, todays),
		TotalSessions: total,
	}, nil
}

func buildDailySnapshot(now time.Time, todays []*session.StudySession) DailySnapshot {
	snap := DailySnapshot{Date: timeutil.StartOfDay(now)}

	seen := make(map[string]bool)
	for _, s := range todays {
		snap.SessionsToday++
		snap.StudyMinutesToday += s.DurationMinutes
		if s.HasQuiz() {
			snap.QuizzesToday++
		}
		topic := s.TopicID.String()
		if !seen[topic] {
			seen[topic] = true
			snap.TopicsToday = append(snap.TopicsToday, topic)
		}
	}
	return snap
}
