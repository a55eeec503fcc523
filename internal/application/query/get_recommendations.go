package query

import (
	"context"
	"fmt"

	"github.com/dsapath/dsapath-progress-core/internal/domain/insight"
	"github.com/dsapath/dsapath-progress-core/internal/domain/learner"
	"github.com/dsapath/dsapath-progress-core/internal/domain/session"
	"github.com/dsapath/dsapath-progress-core/internal/domain/shared"
	"github.com/dsapath/dsapath-progress-core/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET RECOMMENDATIONS QUERY
// Skill analysis + learning path, recomputed from the session log or
// served from cache when the log has not changed since the last write.
// ══════════════════════════════════════════════════════════════════════════════

// GetRecommendationsQuery contains the query parameters.
type GetRecommendationsQuery struct {
	LearnerID string
}

// Validate validates the query.
func (q GetRecommendationsQuery) Validate() error {
	if !learner.LearnerID(q.LearnerID).IsValid() {
		return fmt.Errorf("get_recommendations: learner_id is required: %w", shared.ErrInvalidLearnerID)
	}
	return nil
}

// Insights bundles the derived analytics for one learner.
type Insights struct {
	Analysis *insight.SkillAnalysis
	Path     *insight.LearningPath
}

// InsightsCache is a read-through cache over derived insights.
// The write path invalidates it after every recorded session.
type InsightsCache interface {
	// Get returns the cached insights, or (nil, nil) on a miss.
	Get(ctx context.Context, id learner.LearnerID) (*Insights, error)

	// Set stores the insights.
	Set(ctx context.Context, id learner.LearnerID, ins *Insights) error
}

// GetRecommendationsHandler handles the GetRecommendationsQuery.
type GetRecommendationsHandler struct {
	sessionRepo session.Repository
	analyzer    *insight.SkillAnalyzer
	planner     *insight.RecommendationPlanner
	cache       InsightsCache // nil-able
	log         *logger.Logger
}

// NewGetRecommendationsHandler creates a new GetRecommendationsHandler.
func NewGetRecommendationsHandler(
	sessionRepo session.Repository,
	analyzer *insight.SkillAnalyzer,
	planner *insight.RecommendationPlanner,
	cache InsightsCache,
	log *logger.Logger,
) *GetRecommendationsHandler {
	return &GetRecommendationsHandler{
		sessionRepo: sessionRepo,
		analyzer:    analyzer,
		planner:     planner,
		cache:       cache,
		log:         log.With(logger.Component("get_recommendations")),
	}
}

// Handle executes the query.
func (h *GetRecommendationsHandler) Handle(ctx context.Context, q GetRecommendationsQuery) (*Insights, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	id := learner.LearnerID(q.LearnerID)

	if h.cache != nil {
		cached, err := h.cache.Get(ctx, id)
		if err != nil {
			// Cache trouble must not fail the query
			h.log.Warn("insight cache read failed", logger.LearnerID(q.LearnerID), logger.Err(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	sessions, err := h.sessionRepo.ListByLearner(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get_recommendations: load sessions: %w", err)
	}

	scores := insight.ScoresFromSessions(sessions)
	analysis := h.analyzer.Analyze(id, scores)
	path := h.planner.Plan(id, analysis, scores)

	ins := &Insights{Analysis: analysis, Path: path}

	if h.cache != nil {
		if err := h.cache.Set(ctx, id, ins); err != nil {
			h.log.Warn("insight cache write failed", logger.LearnerID(q.LearnerID), logger.Err(err))
		}
	}

	return ins, nil
}
