package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	assert.Equal(t, 19, c.Len())
	assert.Len(t, c.ByCategory(), 8)

	// Every topic carries a valid difficulty and a name.
	for _, topic := range c.Topics() {
		assert.True(t, topic.ID.IsValid())
		assert.NotEmpty(t, topic.Name)
		assert.True(t, topic.Difficulty.IsValid())
	}
}

func TestCatalogGet(t *testing.T) {
	c := Default()

	topic, err := c.Get("array-basics")
	require.NoError(t, err)
	assert.Equal(t, "Array Basics", topic.Name)
	assert.Equal(t, CategoryArrays, topic.Category)
	assert.Equal(t, 50, topic.BaseXP())

	_, err = c.Get("no-such-topic")
	assert.ErrorIs(t, err, ErrTopicNotFound)
}

func TestCatalogContains(t *testing.T) {
	c := Default()

	assert.True(t, c.Contains("binary-search"))
	assert.False(t, c.Contains(""))
	assert.False(t, c.Contains("no-such-topic"))
}

func TestCategoryOf(t *testing.T) {
	c := Default()

	cat, err := c.CategoryOf("dp-basics")
	require.NoError(t, err)
	assert.Equal(t, CategoryDynamic, cat)

	_, err = c.CategoryOf("no-such-topic")
	assert.ErrorIs(t, err, ErrTopicNotFound)
}

func TestByCategoryPreservesOrder(t *testing.T) {
	c := Default()

	grouped := c.ByCategory()
	assert.Equal(t, []TopicID{"array-basics", "two-pointers", "sliding-window"}, grouped[CategoryArrays])
	assert.Equal(t, []TopicID{"graph-traversal", "shortest-path", "topological-sort"}, grouped[CategoryGraphs])
}

func TestNewSkipsInvalidAndDuplicateIDs(t *testing.T) {
	c := New([]Topic{
		{ID: "a", Name: "A", Category: CategoryArrays, Difficulty: DifficultyEasy},
		{ID: "", Name: "invisible", Category: CategoryArrays, Difficulty: DifficultyEasy},
		{ID: "a", Name: "A again", Category: CategoryTrees, Difficulty: DifficultyHard},
		{ID: "b", Name: "B", Category: CategoryTrees, Difficulty: DifficultyMedium},
	})

	assert.Equal(t, 2, c.Len())
	topic, err := c.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "A", topic.Name, "first occurrence wins")
}

func TestDifficultyBaseXP(t *testing.T) {
	assert.Equal(t, 50, DifficultyEasy.BaseXP())
	assert.Equal(t, 100, DifficultyMedium.BaseXP())
	assert.Equal(t, 150, DifficultyHard.BaseXP())
	assert.Equal(t, 50, Difficulty("unknown").BaseXP())
}
