// Package content produces study briefs for recommended topics. The
// template generator works offline; the resilient wrapper guards any
// future remote generator behind retries and a circuit breaker.
package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dsapath/dsapath-progress-core/internal/domain/catalog"
	"github.com/dsapath/dsapath-progress-core/internal/domain/insight"
)

// ErrGenerationFailed is returned when a brief could not be produced.
var ErrGenerationFailed = errors.New("content generation failed")

// StudyBrief is a short plan for one recommended topic.
type StudyBrief struct {
	TopicID    catalog.TopicID `json:"topic_id"`
	Title      string          `json:"title"`
	Summary    string          `json:"summary"`
	FocusAreas []string        `json:"focus_areas"`
	Difficulty string          `json:"difficulty"`
	EstMinutes int             `json:"estimated_minutes"`
}

// Generator produces study briefs.
type Generator interface {
	GenerateBrief(ctx context.Context, topic catalog.Topic, path *insight.LearningPath) (*StudyBrief, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// TEMPLATE GENERATOR
// ══════════════════════════════════════════════════════════════════════════════

// TemplateGenerator builds briefs from static templates keyed by difficulty.
type TemplateGenerator struct{}

// NewTemplateGenerator creates a template-based generator.
func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{}
}

var estimatedMinutes = map[catalog.Difficulty]int{
	catalog.DifficultyEasy:   20,
	catalog.DifficultyMedium: 35,
	catalog.DifficultyHard:   50,
}

// GenerateBrief builds a brief for the topic. When the learning path marks
// the topic's category as weak, the brief leads with review work.
func (g *TemplateGenerator) GenerateBrief(_ context.Context, topic catalog.Topic, path *insight.LearningPath) (*StudyBrief, error) {
	if topic.ID == "" {
		return nil, fmt.Errorf("%w: empty topic", ErrGenerationFailed)
	}

	focus := []string{
		fmt.Sprintf("Work through the %s lesson and its visual run", topic.Name),
		"Solve the practice exercises until the steps feel routine",
	}

	weak := false
	if path != nil {
		for _, area := range path.WeakAreas {
			if area == topic.Category {
				weak = true
				break
			}
		}
	}
	if weak {
		focus = append([]string{
			fmt.Sprintf("Revisit the %s fundamentals before starting", topic.Category),
		}, focus...)
	}
	focus = append(focus, "Finish with the quiz; aim above your current category score")

	summary := fmt.Sprintf("%s is a %s %s topic.", topic.Name, topic.Difficulty, topic.Category)
	if weak {
		summary += " Your recent quiz scores in this category are low, so take it slow."
	}

	minutes, ok := estimatedMinutes[topic.Difficulty]
	if !ok {
		minutes = 30
	}

	return &StudyBrief{
		TopicID:    topic.ID,
		Title:      fmt.Sprintf("Study plan: %s", topic.Name),
		Summary:    summary,
		FocusAreas: focus,
		Difficulty: strings.ToLower(string(topic.Difficulty)),
		EstMinutes: minutes,
	}, nil
}
