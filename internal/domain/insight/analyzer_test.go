package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsapath/dsapath-progress-core/internal/domain/catalog"
)

func TestAnalyze_MeansPerCategory(t *testing.T) {
	sa := NewSkillAnalyzer(catalog.Default())

	analysis := sa.Analyze("learner-1", TopicScores{
		"array-basics": 100,
		"two-pointers": 80,
		"linked-list":  40,
	})

	require.Len(t, analysis.Skills, 2)
	assert.InDelta(t, 90, analysis.SkillOf(catalog.CategoryArrays), 1e-9)
	assert.InDelta(t, 40, analysis.SkillOf(catalog.CategoryLinkedLists), 1e-9)
	assert.InDelta(t, 65, analysis.Overall, 1e-9)
}

func TestAnalyze_ZeroScoresExcluded(t *testing.T) {
	sa := NewSkillAnalyzer(catalog.Default())

	analysis := sa.Analyze("learner-1", TopicScores{
		"array-basics": 0,
		"linked-list":  -5,
	})

	assert.Empty(t, analysis.Skills)
	assert.Zero(t, analysis.Overall)
}

func TestAnalyze_UnknownTopicsSkipped(t *testing.T) {
	sa := NewSkillAnalyzer(catalog.Default())

	analysis := sa.Analyze("learner-1", TopicScores{
		"array-basics":  80,
		"deleted-topic": 100,
	})

	require.Len(t, analysis.Skills, 1)
	assert.InDelta(t, 80, analysis.SkillOf(catalog.CategoryArrays), 1e-9)
	assert.InDelta(t, 80, analysis.Overall, 1e-9)
}

func TestAnalyze_EmptyScores(t *testing.T) {
	sa := NewSkillAnalyzer(catalog.Default())

	analysis := sa.Analyze("learner-1", TopicScores{})

	assert.Empty(t, analysis.Skills)
	assert.Zero(t, analysis.Overall)
	assert.False(t, analysis.AnalyzedAt.IsZero())
}

func TestSkillOf_UnattemptedCategoryIsZero(t *testing.T) {
	sa := NewSkillAnalyzer(catalog.Default())

	analysis := sa.Analyze("learner-1", TopicScores{"array-basics": 75})

	assert.Zero(t, analysis.SkillOf(catalog.CategoryGraphs))
}
