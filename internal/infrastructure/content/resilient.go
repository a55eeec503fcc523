package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dsapath/dsapath-progress-core/internal/domain/catalog"
	"github.com/dsapath/dsapath-progress-core/internal/domain/insight"
	"github.com/dsapath/dsapath-progress-core/pkg/circuitbreaker"
	"github.com/dsapath/dsapath-progress-core/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESILIENT GENERATOR
// ══════════════════════════════════════════════════════════════════════════════

// ResilientGenerator wraps a Generator with retries and a circuit breaker,
// falling back to the template generator when the primary is unavailable.
// Recommendations must never fail because brief generation is down.
type ResilientGenerator struct {
	primary  Generator
	fallback Generator
	retrier  *retry.Retrier
	breaker  *circuitbreaker.Breaker
	logger   *slog.Logger
}

// NewResilientGenerator wraps primary. A nil fallback defaults to the
// template generator.
func NewResilientGenerator(primary Generator, fallback Generator, logger *slog.Logger) *ResilientGenerator {
	if fallback == nil {
		fallback = NewTemplateGenerator()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ResilientGenerator{
		primary:  primary,
		fallback: fallback,
		retrier:  retry.GeneratorRetrier(),
		breaker: circuitbreaker.New(circuitbreaker.Config{
			Name: "content-generator",
			OnStateChange: func(name string, from, to circuitbreaker.State) {
				logger.Warn("circuit breaker state changed",
					"breaker", name,
					"from", from.String(),
					"to", to.String(),
				)
			},
		}),
		logger: logger,
	}
}

// GenerateBrief tries the primary generator through the breaker and
// retrier, then falls back.
func (g *ResilientGenerator) GenerateBrief(ctx context.Context, topic catalog.Topic, path *insight.LearningPath) (*StudyBrief, error) {
	var brief *StudyBrief

	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		return g.retrier.Do(ctx, func(ctx context.Context) error {
			b, err := g.primary.GenerateBrief(ctx, topic, path)
			if err != nil {
				if errors.Is(err, ErrGenerationFailed) {
					// Bad input, retrying will not help.
					return retry.Permanent(err)
				}
				return err
			}
			brief = b
			return nil
		})
	})
	if err == nil {
		return brief, nil
	}

	g.logger.Warn("primary generator failed, using fallback",
		"topic_id", topic.ID.String(),
		"breaker_state", g.breaker.State().String(),
		"error", err,
	)

	brief, fberr := g.fallback.GenerateBrief(ctx, topic, path)
	if fberr != nil {
		return nil, fmt.Errorf("content: fallback generation: %w", fberr)
	}
	return brief, nil
}

// BreakerState exposes the breaker state for health reporting.
func (g *ResilientGenerator) BreakerState() circuitbreaker.State {
	return g.breaker.State()
}
