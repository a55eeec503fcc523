// Package catalog contains the static topic catalog consumed read-only by
// the progress core: topic identity, category grouping, difficulty, and the
// base XP awarded for completing a topic.
// This is a pure domain layer with zero external dependencies.
package catalog

import (
	"errors"
)

// Domain errors for catalog package.
var (
	ErrTopicNotFound = errors.New("catalog: topic not found")
	ErrEmptyCatalog  = errors.New("catalog: catalog has no topics")
)

// TopicID represents a unique identifier for a topic (e.g., "array-basics").
type TopicID string

// IsValid checks if the topic ID is valid.
func (t TopicID) IsValid() bool {
	return t != ""
}

// String returns the string representation of TopicID.
func (t TopicID) String() string {
	return string(t)
}

// Category represents a skill grouping of topics (e.g., "Trees", "Graphs").
type Category string

// Categories of the default DSA curriculum.
const (
	CategoryArrays      Category = "Arrays"
	CategoryLinkedLists Category = "Linked Lists"
	CategoryStacks      Category = "Stacks & Queues"
	CategoryTrees       Category = "Trees"
	CategoryGraphs      Category = "Graphs"
	CategorySorting     Category = "Sorting"
	CategorySearching   Category = "Searching"
	CategoryDynamic     Category = "Dynamic Programming"
)

// Difficulty represents how hard a topic is, which drives base XP.
type Difficulty string

const (
	// DifficultyEasy - introductory topics.
	DifficultyEasy Difficulty = "easy"
	// DifficultyMedium - topics requiring prior fundamentals.
	DifficultyMedium Difficulty = "medium"
	// DifficultyHard - advanced topics.
	DifficultyHard Difficulty = "hard"
)

// IsValid checks that the difficulty is one of the known values.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// BaseXP returns the base XP award for completing a topic of this difficulty.
func (d Difficulty) BaseXP() int {
	switch d {
	case DifficultyEasy:
		return 50
	case DifficultyMedium:
		return 100
	case DifficultyHard:
		return 150
	default:
		return 50
	}
}

// Topic describes one catalog entry.
type Topic struct {
	// ID - unique topic identifier.
	ID TopicID

	// Name - human-readable topic name.
	Name string

	// Category - skill grouping this topic belongs to.
	Category Category

	// Difficulty - drives the base XP award.
	Difficulty Difficulty
}

// BaseXP returns the base XP award for completing this topic.
func (t Topic) BaseXP() int {
	return t.Difficulty.BaseXP()
}

// Catalog is an ordered, read-only collection of topics. Declaration order
// is significant: recommendation tie-breaks preserve it.
type Catalog struct {
	topics []Topic
	byID   map[TopicID]int
}

// New builds a Catalog from the given topics, preserving their order.
// Duplicate IDs keep the first occurrence.
func New(topics []Topic) *Catalog {
	c := &Catalog{
		topics: make([]Topic, 0, len(topics)),
		byID:   make(map[TopicID]int, len(topics)),
	}
	for _, t := range topics {
		if !t.ID.IsValid() {
			continue
		}
		if _, exists := c.byID[t.ID]; exists {
			continue
		}
		c.byID[t.ID] = len(c.topics)
		c.topics = append(c.topics, t)
	}
	return c
}

// Get returns the topic with the given ID.
func (c *Catalog) Get(id TopicID) (Topic, error) {
	idx, ok := c.byID[id]
	if !ok {
		return Topic{}, ErrTopicNotFound
	}
	return c.topics[idx], nil
}

// Contains reports whether the catalog has a topic with the given ID.
func (c *Catalog) Contains(id TopicID) bool {
	_, ok := c.byID[id]
	return ok
}

// Topics returns all topics in declaration order. The returned slice is a
// copy; callers may not mutate catalog state.
func (c *Catalog) Topics() []Topic {
	out := make([]Topic, len(c.topics))
	copy(out, c.topics)
	return out
}

// CategoryOf returns the category of the given topic.
func (c *Catalog) CategoryOf(id TopicID) (Category, error) {
	t, err := c.Get(id)
	if err != nil {
		return "", err
	}
	return t.Category, nil
}

// ByCategory groups topic IDs by category, preserving declaration order
// inside each group.
func (c *Catalog) ByCategory() map[Category][]TopicID {
	grouped := make(map[Category][]TopicID)
	for _, t := range c.topics {
		grouped[t.Category] = append(grouped[t.Category], t.ID)
	}
	return grouped
}

// Len returns the number of topics.
func (c *Catalog) Len() int {
	return len(c.topics)
}

// Default returns the built-in DSA curriculum catalog.
func Default() *Catalog {
	return New([]Topic{
		{ID: "array-basics", Name: "Array Basics", Category: CategoryArrays, Difficulty: DifficultyEasy},
		{ID: "two-pointers", Name: "Two Pointers", Category: CategoryArrays, Difficulty: DifficultyMedium},
		{ID: "sliding-window", Name: "Sliding Window", Category: CategoryArrays, Difficulty: DifficultyMedium},
		{ID: "linked-list", Name: "Singly Linked Lists", Category: CategoryLinkedLists, Difficulty: DifficultyEasy},
		{ID: "doubly-linked-list", Name: "Doubly Linked Lists", Category: CategoryLinkedLists, Difficulty: DifficultyMedium},
		{ID: "stack", Name: "Stacks", Category: CategoryStacks, Difficulty: DifficultyEasy},
		{ID: "queue", Name: "Queues", Category: CategoryStacks, Difficulty: DifficultyEasy},
		{ID: "binary-tree", Name: "Binary Trees", Category: CategoryTrees, Difficulty: DifficultyMedium},
		{ID: "bst", Name: "Binary Search Trees", Category: CategoryTrees, Difficulty: DifficultyMedium},
		{ID: "heap", Name: "Heaps", Category: CategoryTrees, Difficulty: DifficultyHard},
		{ID: "graph-traversal", Name: "Graph Traversal", Category: CategoryGraphs, Difficulty: DifficultyMedium},
		{ID: "shortest-path", Name: "Shortest Paths", Category: CategoryGraphs, Difficulty: DifficultyHard},
		{ID: "topological-sort", Name: "Topological Sort", Category: CategoryGraphs, Difficulty: DifficultyHard},
		{ID: "bubble-sort", Name: "Bubble Sort", Category: CategorySorting, Difficulty: DifficultyEasy},
		{ID: "merge-sort", Name: "Merge Sort", Category: CategorySorting, Difficulty: DifficultyMedium},
		{ID: "quick-sort", Name: "Quick Sort", Category: CategorySorting, Difficulty: DifficultyMedium},
		{ID: "binary-search", Name: "Binary Search", Category: CategorySearching, Difficulty: DifficultyEasy},
		{ID: "dp-basics", Name: "DP Fundamentals", Category: CategoryDynamic, Difficulty: DifficultyHard},
		{ID: "dp-knapsack", Name: "Knapsack Problems", Category: CategoryDynamic, Difficulty: DifficultyHard},
	})
}
