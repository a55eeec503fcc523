// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dsapath/dsapath-progress-core/internal/domain/catalog"
	"github.com/dsapath/dsapath-progress-core/internal/domain/insight"
	"github.com/dsapath/dsapath-progress-core/internal/domain/learner"
	"github.com/dsapath/dsapath-progress-core/internal/domain/session"
	"github.com/dsapath/dsapath-progress-core/internal/domain/shared"
	"github.com/dsapath/dsapath-progress-core/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD COMPLETION COMMAND
// The central write path of the progress core: a learner finished working
// on a topic. One call moves XP, streak, achievements, and insights in a
// single serialized sequence per learner.
// ══════════════════════════════════════════════════════════════════════════════

// RecordCompletionCommand contains the data of one completed study session.
type RecordCompletionCommand struct {
	// LearnerID is the learner who completed the topic.
	LearnerID string

	// TopicID is the completed topic; must exist in the catalog.
	TopicID string

	// DurationMinutes is how long the session lasted. Must be positive.
	DurationMinutes int

	// QuizScore is the quiz result in percent (0-100), nil if no quiz.
	QuizScore *float64

	// Activities lists what the learner did during the session.
	Activities []string

	// StartedAt is when the session began. Zero value means "now".
	StartedAt time.Time

	// ConceptsUnderstood and StruggledConcepts are free-form reflections.
	ConceptsUnderstood []string
	StruggledConcepts  []string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate checks the command at the boundary, before any state is touched.
// Every rejection maps to a typed validation error.
func (c RecordCompletionCommand) Validate() error {
	if !learner.LearnerID(c.LearnerID).IsValid() {
		return fmt.Errorf("record_completion: %w", shared.ErrInvalidLearnerID)
	}
	if !catalog.TopicID(c.TopicID).IsValid() {
		return fmt.Errorf("record_completion: topic_id is required: %w", shared.ErrInvalidInput)
	}
	if c.DurationMinutes <= 0 {
		return fmt.Errorf("record_completion: duration %d: %w", c.DurationMinutes, shared.ErrInvalidDuration)
	}
	if c.QuizScore != nil && (*c.QuizScore < 0 || *c.QuizScore > 100) {
		return fmt.Errorf("record_completion: quiz score %.1f: %w", *c.QuizScore, shared.ErrInvalidQuizScore)
	}
	if !c.StartedAt.IsZero() && c.StartedAt.After(time.Now().Add(time.Minute)) {
		return fmt.Errorf("record_completion: %w", shared.ErrSessionInFuture)
	}
	for _, a := range c.Activities {
		if !session.Activity(a).IsValid() {
			return fmt.Errorf("record_completion: unknown activity %q: %w", a, shared.ErrInvalidInput)
		}
	}
	return nil
}

// RecordCompletionResult is the combined outcome of one completion.
type RecordCompletionResult struct {
	// SessionID is the ID of the recorded session.
	SessionID string

	// XPGained describes the XP awarded for the topic itself
	// (streak milestone and achievement rewards come on top).
	XPGained learner.XPGain

	// TotalXPGained is everything awarded by this call, rewards included.
	TotalXPGained learner.XP

	// LeveledUp indicates the learner gained at least one level.
	LeveledUp bool

	// NewLevel is the level after the call.
	NewLevel learner.Level

	// StreakDay is the current streak after the call.
	StreakDay int

	// StreakExtended indicates the streak grew today.
	StreakExtended bool

	// AchievementsUnlocked lists achievements granted by this call.
	AchievementsUnlocked []learner.AchievementDefinition

	// RecommendedTopics is the freshly recomputed recommendation list.
	RecommendedTopics []catalog.TopicID

	// Analysis is the recomputed skill picture.
	Analysis *insight.SkillAnalysis

	// Events contains domain events generated.
	Events []shared.Event
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// InsightCache invalidates cached analysis after a write.
// Implemented by the Redis insight cache; nil-able.
type InsightCache interface {
	Invalidate(ctx context.Context, id learner.LearnerID) error
}

// RecordCompletionHandler handles the RecordCompletionCommand.
type RecordCompletionHandler struct {
	profileRepo  learner.Repository
	sessionRepo  session.Repository
	catalog      *catalog.Catalog
	ledger       *learner.XPLedger
	streaks      *learner.StreakTracker
	achievements *learner.AchievementEvaluator
	analyzer     *insight.SkillAnalyzer
	planner      *insight.RecommendationPlanner
	publisher    shared.EventPublisher
	cache        InsightCache
	locks        *learnerLocks
	log          *logger.Logger
}

// RecordCompletionDeps bundles the handler dependencies.
type RecordCompletionDeps struct {
	ProfileRepo  learner.Repository
	SessionRepo  session.Repository
	Catalog      *catalog.Catalog
	Ledger       *learner.XPLedger
	Streaks      *learner.StreakTracker
	Achievements *learner.AchievementEvaluator
	Analyzer     *insight.SkillAnalyzer
	Planner      *insight.RecommendationPlanner
	Publisher    shared.EventPublisher
	Cache        InsightCache
	Logger       *logger.Logger
}

// NewRecordCompletionHandler creates a new RecordCompletionHandler.
func NewRecordCompletionHandler(deps RecordCompletionDeps) *RecordCompletionHandler {
	return &RecordCompletionHandler{
		profileRepo:  deps.ProfileRepo,
		sessionRepo:  deps.SessionRepo,
		catalog:      deps.Catalog,
		ledger:       deps.Ledger,
		streaks:      deps.Streaks,
		achievements: deps.Achievements,
		analyzer:     deps.Analyzer,
		planner:      deps.Planner,
		publisher:    deps.Publisher,
		cache:        deps.Cache,
		locks:        newLearnerLocks(defaultLockStripes),
		log:          deps.Logger.With(logger.Component("record_completion")),
	}
}

// Handle executes the record completion command.
//
// Sequence: validate → append session → load (or create) profile →
// award topic XP → evaluate achievements → update streak → recompute
// insights → persist profile once → publish events. The whole sequence
// runs under the learner's lock; the profile is written exactly once at
// the end, so a mid-sequence failure leaves the stored profile untouched.
func (h *RecordCompletionHandler) Handle(ctx context.Context, cmd RecordCompletionCommand) (*RecordCompletionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	learnerID := learner.LearnerID(cmd.LearnerID)
	topicID := catalog.TopicID(cmd.TopicID)

	topic, err := h.catalog.Get(topicID)
	if err != nil {
		return nil, fmt.Errorf("record_completion: topic %q: %w", cmd.TopicID, shared.ErrTopicNotFound)
	}

	unlock := h.locks.Lock(learnerID)
	defer unlock()

	now := time.Now().UTC()

	// Build the immutable session record
	var quizScore *learner.QuizScore
	if cmd.QuizScore != nil {
		qs := learner.QuizScore(*cmd.QuizScore)
		quizScore = &qs
	}
	activities := make([]session.Activity, 0, len(cmd.Activities))
	for _, a := range cmd.Activities {
		activities = append(activities, session.Activity(a))
	}

	sess, err := session.New(session.NewSessionParams{
		ID:                 session.SessionID(uuid.NewString()),
		LearnerID:          learnerID,
		TopicID:            topicID,
		StartedAt:          cmd.StartedAt,
		DurationMinutes:    cmd.DurationMinutes,
		Activities:         activities,
		QuizScore:          quizScore,
		ConceptsUnderstood: cmd.ConceptsUnderstood,
		StruggledConcepts:  cmd.StruggledConcepts,
	})
	if err != nil {
		return nil, fmt.Errorf("record_completion: invalid session: %w", err)
	}

	// The session log is append-only source of truth; it is written before
	// the profile, so a later failure can be replayed from the log.
	if err := h.sessionRepo.Append(ctx, sess); err != nil {
		return nil, fmt.Errorf("record_completion: append session: %w", err)
	}

	profile, err := h.loadOrCreateProfile(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	prevLevel := profile.Level
	prevTotal := profile.XP.TotalXPEarned

	profile.RecordTopicCompletion(cmd.DurationMinutes, quizScore, now)

	reason := learner.ReasonTopicCompleted
	if sess.HasQuiz() {
		reason = learner.ReasonQuizCompleted
	}
	gain := h.ledger.Award(profile, learner.XP(topic.BaseXP()), reason)

	unlocked := h.achievements.Check(profile, now)

	streakUpd := h.streaks.Update(profile, now)

	// Streak growth and milestone rewards can themselves complete
	// achievements (week_warrior, level thresholds), so check again.
	if streakUpd.Extended || streakUpd.Reset || len(streakUpd.MilestonesHit) > 0 {
		unlocked = append(unlocked, h.achievements.Check(profile, now)...)
	}

	// Recompute insights from the full session history
	sessions, err := h.sessionRepo.ListByLearner(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("record_completion: load sessions: %w", err)
	}
	scores := insight.ScoresFromSessions(sessions)
	analysis := h.analyzer.Analyze(learnerID, scores)
	path := h.planner.Plan(learnerID, analysis, scores)

	// Single profile write at the end of the sequence
	if err := h.profileRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("record_completion: persist profile: %w", err)
	}

	result := &RecordCompletionResult{
		SessionID:            sess.ID.String(),
		XPGained:             gain,
		TotalXPGained:        profile.XP.TotalXPEarned - prevTotal,
		LeveledUp:            profile.Level > prevLevel,
		NewLevel:             profile.Level,
		StreakDay:            streakUpd.Current,
		StreakExtended:       streakUpd.Extended,
		AchievementsUnlocked: unlocked,
		RecommendedTopics:    path.RecommendedTopics,
		Analysis:             analysis,
	}
	result.Events = h.buildEvents(profile, sess, cmd, result, streakUpd, prevLevel)

	h.publish(result.Events)
	h.invalidateCache(ctx, learnerID)

	h.log.Info("completion recorded",
		logger.LearnerID(learnerID.String()),
		logger.TopicID(topicID.String()),
		logger.XPAmount(int(result.TotalXPGained)),
		logger.StreakDays(result.StreakDay),
		logger.Int("achievements_unlocked", len(unlocked)),
	)

	return result, nil
}

// loadOrCreateProfile returns the learner's profile, creating it on the
// first recorded session. A learner exists from the moment they learn.
func (h *RecordCompletionHandler) loadOrCreateProfile(ctx context.Context, id learner.LearnerID) (*learner.Profile, error) {
	profile, err := h.profileRepo.GetByID(ctx, id)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, learner.ErrLearnerNotFound) {
		return nil, fmt.Errorf("record_completion: load profile: %w", err)
	}

	profile, err = learner.NewProfile(learner.NewProfileParams{
		UserID:      id,
		DisplayName: id.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("record_completion: create profile: %w", err)
	}
	if err := h.profileRepo.Create(ctx, profile); err != nil {
		// Lost a race with a writer outside our stripe set; reload.
		if errors.Is(err, learner.ErrLearnerAlreadyExists) {
			return h.profileRepo.GetByID(ctx, id)
		}
		return nil, fmt.Errorf("record_completion: create profile: %w", err)
	}
	return profile, nil
}

func (h *RecordCompletionHandler) buildEvents(
	p *learner.Profile,
	sess *session.StudySession,
	cmd RecordCompletionCommand,
	res *RecordCompletionResult,
	streakUpd learner.StreakUpdate,
	prevLevel learner.Level,
) []shared.Event {
	var events []shared.Event

	events = append(events, shared.NewSessionRecordedEvent(
		p.UserID.String(), sess.ID.String(), sess.TopicID.String(),
		sess.DurationMinutes, cmd.QuizScore,
	))
	// One xp_gained event per completion; NewTotal carries the post-award
	// TotalXPEarned so projections see reward XP too.
	if res.XPGained.FinalAmount > 0 {
		events = append(events, shared.NewXPGainedEvent(
			p.UserID.String(),
			int(res.XPGained.FinalAmount), int(res.XPGained.BonusAmount),
			int(p.XP.TotalXPEarned), res.XPGained.Reason,
		))
	}
	for lvl := prevLevel + 1; lvl <= p.Level; lvl++ {
		events = append(events, shared.NewLevelUpEvent(
			p.UserID.String(), int(lvl),
			int(p.XP.XPToNextLevel), int(p.XP.TotalXPEarned), res.XPGained.Reason,
		))
	}
	for _, def := range res.AchievementsUnlocked {
		events = append(events, shared.NewAchievementUnlockedEvent(
			p.UserID.String(), string(def.ID), def.Name, int(def.XPReward),
		))
	}
	for _, m := range streakUpd.MilestonesHit {
		events = append(events, shared.NewStreakMilestoneEvent(
			p.UserID.String(), m.Days, int(m.RewardXP),
		))
	}

	return events
}

func (h *RecordCompletionHandler) publish(events []shared.Event) {
	if h.publisher == nil {
		return
	}
	for _, e := range events {
		if err := h.publisher.Publish(e); err != nil {
			h.log.Warn("event publish failed",
				logger.String("event_type", string(e.EventType())),
				logger.Err(err),
			)
		}
	}
}

func (h *RecordCompletionHandler) invalidateCache(ctx context.Context, id learner.LearnerID) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(ctx, id); err != nil {
		h.log.Warn("insight cache invalidation failed",
			logger.LearnerID(id.String()),
			logger.Err(err),
		)
	}
}
