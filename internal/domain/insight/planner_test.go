package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsapath/dsapath-progress-core/internal/domain/catalog"
)

func planFor(t *testing.T, scores TopicScores) *LearningPath {
	t.Helper()
	cat := catalog.Default()
	analysis := NewSkillAnalyzer(cat).Analyze("learner-1", scores)
	return NewRecommendationPlanner(cat).Plan("learner-1", analysis, scores)
}

func TestPlan_WeakAndStrongAreas(t *testing.T) {
	path := planFor(t, TopicScores{
		"array-basics": 95, // Arrays: strong
		"linked-list":  30, // Linked Lists: weak
		"stack":        55, // Stacks & Queues: weak
		"binary-tree":  85, // Trees: strong
		"bubble-sort":  70, // Sorting: neither
	})

	assert.Equal(t, []catalog.Category{catalog.CategoryLinkedLists, catalog.CategoryStacks}, path.WeakAreas)
	assert.Equal(t, []catalog.Category{catalog.CategoryArrays, catalog.CategoryTrees}, path.StrongAreas)
}

func TestPlan_WeakAreasCappedAtThreeWeakestFirst(t *testing.T) {
	path := planFor(t, TopicScores{
		"array-basics": 50,
		"linked-list":  20,
		"stack":        40,
		"binary-tree":  10,
	})

	assert.Equal(t, []catalog.Category{
		catalog.CategoryTrees,
		catalog.CategoryLinkedLists,
		catalog.CategoryStacks,
	}, path.WeakAreas)
}

func TestPlan_DifficultyAdjustment(t *testing.T) {
	harder := planFor(t, TopicScores{"array-basics": 90, "linked-list": 95})
	assert.Equal(t, AdjustHarder, harder.DifficultyAdjustment)

	easier := planFor(t, TopicScores{"array-basics": 40, "linked-list": 50})
	assert.Equal(t, AdjustEasier, easier.DifficultyAdjustment)

	same := planFor(t, TopicScores{"array-basics": 70, "linked-list": 75})
	assert.Equal(t, AdjustSame, same.DifficultyAdjustment)

	empty := planFor(t, TopicScores{})
	assert.Equal(t, AdjustSame, empty.DifficultyAdjustment)
}

func TestPlan_ReviewTopicsComeFirstWeakestOrder(t *testing.T) {
	path := planFor(t, TopicScores{
		"array-basics": 65,
		"linked-list":  30,
		"stack":        50,
		"queue":        90, // mastered, must not appear
	})

	require.GreaterOrEqual(t, len(path.RecommendedTopics), 3)
	assert.Equal(t, catalog.TopicID("linked-list"), path.RecommendedTopics[0])
	assert.Equal(t, catalog.TopicID("stack"), path.RecommendedTopics[1])
	assert.Equal(t, catalog.TopicID("array-basics"), path.RecommendedTopics[2])
	assert.NotContains(t, path.RecommendedTopics, catalog.TopicID("queue"))
}

func TestPlan_ReviewCappedAtThreeThenCatalogOrder(t *testing.T) {
	path := planFor(t, TopicScores{
		"array-basics": 10,
		"linked-list":  20,
		"stack":        30,
		"queue":        40, // fourth review candidate is dropped by the cap
	})

	assert.Equal(t, []catalog.TopicID{
		"array-basics", "linked-list", "stack", // review, weakest first
		"two-pointers", "sliding-window", "doubly-linked-list", // unattempted, catalog order
		"queue", "binary-tree",
	}, path.RecommendedTopics)
}

func TestPlan_CappedAtEightNoDuplicates(t *testing.T) {
	path := planFor(t, TopicScores{"array-basics": 10})

	assert.Len(t, path.RecommendedTopics, 8)
	seen := make(map[catalog.TopicID]bool)
	for _, id := range path.RecommendedTopics {
		assert.False(t, seen[id], "duplicate topic %s", id)
		seen[id] = true
	}
}

func TestPlan_IsDeterministic(t *testing.T) {
	scores := TopicScores{
		"array-basics": 65,
		"linked-list":  30,
		"binary-tree":  85,
		"merge-sort":   55,
	}

	first := planFor(t, scores)
	for i := 0; i < 10; i++ {
		again := planFor(t, scores)
		assert.Equal(t, first.WeakAreas, again.WeakAreas)
		assert.Equal(t, first.StrongAreas, again.StrongAreas)
		assert.Equal(t, first.RecommendedTopics, again.RecommendedTopics)
	}
}
