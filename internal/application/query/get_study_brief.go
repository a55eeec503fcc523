package query

import (
	"context"
	"fmt"

	"github.com/dsapath/dsapath-progress-core/internal/domain/catalog"
	"github.com/dsapath/dsapath-progress-core/internal/domain/insight"
	"github.com/dsapath/dsapath-progress-core/internal/domain/learner"
	"github.com/dsapath/dsapath-progress-core/internal/domain/shared"
	"github.com/dsapath/dsapath-progress-core/internal/infrastructure/content"
	"github.com/dsapath/dsapath-progress-core/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STUDY BRIEF QUERY
// A short study plan for one topic, personalized with the learner's
// current learning path.
// ══════════════════════════════════════════════════════════════════════════════

// GetStudyBriefQuery contains the query parameters.
type GetStudyBriefQuery struct {
	LearnerID string
	TopicID   string
}

// Validate validates the query.
func (q GetStudyBriefQuery) Validate() error {
	if !learner.LearnerID(q.LearnerID).IsValid() {
		return fmt.Errorf("get_study_brief: learner_id is required: %w", shared.ErrInvalidLearnerID)
	}
	if !catalog.TopicID(q.TopicID).IsValid() {
		return fmt.Errorf("get_study_brief: topic_id is required: %w", shared.ErrInvalidInput)
	}
	return nil
}

// GetStudyBriefHandler handles the GetStudyBriefQuery. It reuses the
// recommendations handler so the brief sees the same (possibly cached)
// learning path the learner sees.
type GetStudyBriefHandler struct {
	catalog         *catalog.Catalog
	recommendations *GetRecommendationsHandler
	generator       content.Generator
	log             *logger.Logger
}

// NewGetStudyBriefHandler creates a new GetStudyBriefHandler.
func NewGetStudyBriefHandler(
	cat *catalog.Catalog,
	recommendations *GetRecommendationsHandler,
	generator content.Generator,
	log *logger.Logger,
) *GetStudyBriefHandler {
	return &GetStudyBriefHandler{
		catalog:         cat,
		recommendations: recommendations,
		generator:       generator,
		log:             log.With(logger.Component("get_study_brief")),
	}
}

// Handle executes the query.
func (h *GetStudyBriefHandler) Handle(ctx context.Context, q GetStudyBriefQuery) (*content.StudyBrief, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	topic, err := h.catalog.Get(catalog.TopicID(q.TopicID))
	if err != nil {
		return nil, fmt.Errorf("get_study_brief: topic %q: %w", q.TopicID, err)
	}

	// A missing or failing learning path degrades the brief, it does not
	// block it.
	var path *insight.LearningPath
	ins, err := h.recommendations.Handle(ctx, GetRecommendationsQuery{LearnerID: q.LearnerID})
	if err != nil {
		h.log.Warn("learning path unavailable for brief",
			logger.LearnerID(q.LearnerID),
			logger.Err(err),
		)
	} else {
		path = ins.Path
	}

	brief, err := h.generator.GenerateBrief(ctx, topic, path)
	if err != nil {
		return nil, fmt.Errorf("get_study_brief: %w", err)
	}
	return brief, nil
}
