// Package insight derives analytics from the session log: per-category
// skill levels and a recommended learning path. Everything here is
// ephemeral and recomputed from sessions; nothing is stored as truth.
// This is a pure domain layer with zero external dependencies.
package insight

import (
	"time"

	"github.com/dsapath/dsapath-progress-core/internal/domain/catalog"
	"github.com/dsapath/dsapath-progress-core/internal/domain/learner"
	"github.com/dsapath/dsapath-progress-core/internal/domain/session"
)

// TopicScores maps a topic to the learner's latest quiz score for it.
// A topic the learner never attempted is absent from the map.
type TopicScores map[catalog.TopicID]float64

// ScoresFromSessions folds a session log into latest-score-per-topic.
// Later sessions overwrite earlier ones; sessions without a quiz do not
// contribute a score.
func ScoresFromSessions(sessions []*session.StudySession) TopicScores {
	scores := make(TopicScores)
	for _, s := range sessions {
		if s.QuizScore == nil {
			continue
		}
		scores[s.TopicID] = float64(*s.QuizScore)
	}
	return scores
}

// SkillAnalysis is the per-category skill picture of one learner.
type SkillAnalysis struct {
	LearnerID learner.LearnerID

	// Skills maps category to mean score over that category's attempted
	// topics with a positive score. Categories with no such topics are
	// absent.
	Skills map[catalog.Category]float64

	// Overall is the mean of the non-zero category skills,
	// or 0 when there are none.
	Overall float64

	AnalyzedAt time.Time
}

// SkillOf returns the skill level for a category, 0 if unattempted.
func (a *SkillAnalysis) SkillOf(c catalog.Category) float64 {
	return a.Skills[c]
}

// SkillAnalyzer aggregates topic scores into category skill levels.
type SkillAnalyzer struct {
	catalog *catalog.Catalog
}

// NewSkillAnalyzer creates an analyzer over the given topic catalog.
func NewSkillAnalyzer(cat *catalog.Catalog) *SkillAnalyzer {
	return &SkillAnalyzer{catalog: cat}
}

// Analyze computes the skill picture from latest topic scores.
//
// Per category: mean of the scores strictly above zero. A score of zero
// is treated as "not yet meaningfully attempted" and excluded, so an
// all-zero input yields an empty skill map and Overall of 0.
// Overall is the mean across the categories present in the map.
func (sa *SkillAnalyzer) Analyze(id learner.LearnerID, scores TopicScores) *SkillAnalysis {
	sums := make(map[catalog.Category]float64)
	counts := make(map[catalog.Category]int)

	for topicID, score := range scores {
		if score <= 0 {
			continue
		}
		cat, err := sa.catalog.CategoryOf(topicID)
		if err != nil {
			// Score for a topic no longer in the catalog: skip.
			continue
		}
		sums[cat] += score
		counts[cat]++
	}

	skills := make(map[catalog.Category]float64, len(sums))
	var total float64
	for cat, sum := range sums {
		avg := sum / float64(counts[cat])
		skills[cat] = avg
		total += avg
	}

	overall := 0.0
	if len(skills) > 0 {
		overall = total / float64(len(skills))
	}

	return &SkillAnalysis{
		LearnerID:  id,
		Skills:     skills,
		Overall:    overall,
		AnalyzedAt: time.Now().UTC(),
	}
}
