package redis

import (
	"context"
	"errors"
	"time"

	"github.com/dsapath/dsapath-progress-core/internal/application/query"
	"github.com/dsapath/dsapath-progress-core/internal/domain/learner"
)

// ══════════════════════════════════════════════════════════════════════════════
// INSIGHT CACHE
// Read-through cache of the derived skill analysis and learning path.
// The write path invalidates the key after every recorded session, so a
// hit is always consistent with the session log. TTL covers the rest.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultInsightTTL bounds staleness if an invalidation is ever lost.
const DefaultInsightTTL = 15 * time.Minute

// InsightCache implements query.InsightsCache over Redis.
type InsightCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewInsightCache creates an insight cache. Zero ttl uses the default.
func NewInsightCache(cache *Cache, ttl time.Duration) *InsightCache {
	if ttl <= 0 {
		ttl = DefaultInsightTTL
	}
	return &InsightCache{cache: cache, ttl: ttl}
}

var _ query.InsightsCache = (*InsightCache)(nil)

// Get returns the cached insights, or (nil, nil) on a miss.
func (ic *InsightCache) Get(ctx context.Context, id learner.LearnerID) (*query.Insights, error) {
	var ins query.Insights
	err := ic.cache.GetJSON(ctx, ic.key(id), &ins)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}
	return &ins, nil
}

// Set stores the insights with the configured TTL.
func (ic *InsightCache) Set(ctx context.Context, id learner.LearnerID, ins *query.Insights) error {
	return ic.cache.SetJSON(ctx, ic.key(id), ins, ic.ttl)
}

// Invalidate drops the cached insights for a learner.
func (ic *InsightCache) Invalidate(ctx context.Context, id learner.LearnerID) error {
	return ic.cache.Delete(ctx, ic.key(id))
}

func (ic *InsightCache) key(id learner.LearnerID) string {
	return PrefixInsight + id.String()
}
