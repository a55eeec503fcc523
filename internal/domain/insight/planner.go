package insight

import (
	"sort"
	"time"

	"github.com/dsapath/dsapath-progress-core/internal/domain/catalog"
	"github.com/dsapath/dsapath-progress-core/internal/domain/learner"
)

// Planner thresholds. Categories below weakThreshold are weak areas,
// at or above strongThreshold strong areas; topics below reviewThreshold
// get review priority, below masteryThreshold count as not yet mastered.
const (
	weakThreshold    = 60.0
	strongThreshold  = 80.0
	reviewThreshold  = 70.0
	masteryThreshold = 80.0

	maxWeakAreas         = 3
	maxStrongAreas       = 3
	maxReviewTopics      = 3
	maxRecommendedTopics = 8
)

// DifficultyAdjustment tells the UI whether to serve harder or easier material.
type DifficultyAdjustment string

const (
	AdjustHarder DifficultyAdjustment = "harder"
	AdjustEasier DifficultyAdjustment = "easier"
	AdjustSame   DifficultyAdjustment = "same"
)

// LearningPath is the planner's output: what to study next and why.
type LearningPath struct {
	LearnerID learner.LearnerID

	// WeakAreas - up to 3 categories with skill below 60, weakest first.
	WeakAreas []catalog.Category

	// StrongAreas - up to 3 categories with skill 80 or above, strongest first.
	StrongAreas []catalog.Category

	// DifficultyAdjustment - based on the mean of all topic scores.
	DifficultyAdjustment DifficultyAdjustment

	// RecommendedTopics - up to 8 topics: review candidates first
	// (scored below 70, weakest first, max 3), then not-yet-mastered
	// topics in catalog order. No duplicates.
	RecommendedTopics []catalog.TopicID

	PlannedAt time.Time
}

// RecommendationPlanner turns a skill analysis into a learning path.
// The plan is deterministic: identical inputs and catalog order always
// produce the identical path.
type RecommendationPlanner struct {
	catalog *catalog.Catalog
}

// NewRecommendationPlanner creates a planner over the given catalog.
func NewRecommendationPlanner(cat *catalog.Catalog) *RecommendationPlanner {
	return &RecommendationPlanner{catalog: cat}
}

// Plan builds the learning path for a learner.
func (rp *RecommendationPlanner) Plan(id learner.LearnerID, analysis *SkillAnalysis, scores TopicScores) *LearningPath {
	return &LearningPath{
		LearnerID:            id,
		WeakAreas:            rp.weakAreas(analysis),
		StrongAreas:          rp.strongAreas(analysis),
		DifficultyAdjustment: rp.difficulty(scores),
		RecommendedTopics:    rp.recommend(scores),
		PlannedAt:            time.Now().UTC(),
	}
}

// categoryOrder returns the catalog's categories in first-appearance order.
// Used as the stable tie-break when skills are equal.
func (rp *RecommendationPlanner) categoryOrder() map[catalog.Category]int {
	order := make(map[catalog.Category]int)
	for _, t := range rp.catalog.Topics() {
		if _, seen := order[t.Category]; !seen {
			order[t.Category] = len(order)
		}
	}
	return order
}

func (rp *RecommendationPlanner) weakAreas(analysis *SkillAnalysis) []catalog.Category {
	order := rp.categoryOrder()

	var weak []catalog.Category
	for cat, skill := range analysis.Skills {
		if skill < weakThreshold {
			weak = append(weak, cat)
		}
	}

	sort.SliceStable(weak, func(i, j int) bool {
		si, sj := analysis.Skills[weak[i]], analysis.Skills[weak[j]]
		if si != sj {
			return si < sj // weakest first
		}
		return order[weak[i]] < order[weak[j]]
	})

	if len(weak) > maxWeakAreas {
		weak = weak[:maxWeakAreas]
	}
	return weak
}

func (rp *RecommendationPlanner) strongAreas(analysis *SkillAnalysis) []catalog.Category {
	order := rp.categoryOrder()

	var strong []catalog.Category
	for cat, skill := range analysis.Skills {
		if skill >= strongThreshold {
			strong = append(strong, cat)
		}
	}

	sort.SliceStable(strong, func(i, j int) bool {
		si, sj := analysis.Skills[strong[i]], analysis.Skills[strong[j]]
		if si != sj {
			return si > sj // strongest first
		}
		return order[strong[i]] < order[strong[j]]
	})

	if len(strong) > maxStrongAreas {
		strong = strong[:maxStrongAreas]
	}
	return strong
}

// difficulty decides the adjustment from the mean over all topic scores,
// zeros included: above 85 means the material is too easy, below 60 too hard.
func (rp *RecommendationPlanner) difficulty(scores TopicScores) DifficultyAdjustment {
	if len(scores) == 0 {
		return AdjustSame
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}
	mean := sum / float64(len(scores))

	switch {
	case mean > 85:
		return AdjustHarder
	case mean < 60:
		return AdjustEasier
	default:
		return AdjustSame
	}
}

// recommend builds the topic list: first the review candidates (attempted
// but scored below 70, weakest first, max 3), then every not-yet-mastered
// catalog topic (unattempted, or scored below 80) in catalog order.
// Duplicates removed, capped at 8.
func (rp *RecommendationPlanner) recommend(scores TopicScores) []catalog.TopicID {
	topicOrder := make(map[catalog.TopicID]int, rp.catalog.Len())
	for i, t := range rp.catalog.Topics() {
		topicOrder[t.ID] = i
	}

	var review []catalog.TopicID
	for id, score := range scores {
		if _, inCatalog := topicOrder[id]; !inCatalog {
			continue
		}
		if score < reviewThreshold {
			review = append(review, id)
		}
	}
	sort.SliceStable(review, func(i, j int) bool {
		si, sj := scores[review[i]], scores[review[j]]
		if si != sj {
			return si < sj
		}
		return topicOrder[review[i]] < topicOrder[review[j]]
	})
	if len(review) > maxReviewTopics {
		review = review[:maxReviewTopics]
	}

	seen := make(map[catalog.TopicID]bool, maxRecommendedTopics)
	out := make([]catalog.TopicID, 0, maxRecommendedTopics)
	for _, id := range review {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	for _, t := range rp.catalog.Topics() {
		if len(out) >= maxRecommendedTopics {
			break
		}
		if seen[t.ID] {
			continue
		}
		score, attempted := scores[t.ID]
		if attempted && score >= masteryThreshold {
			continue // already mastered
		}
		seen[t.ID] = true
		out = append(out, t.ID)
	}

	return out
}
