package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dsapath/dsapath-progress-core/internal/application/query"
	"github.com/dsapath/dsapath-progress-core/internal/domain/learner"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD
// Sorted set "leaderboard:xp" maps learnerID -> total XP. ZADD with the
// learner's full total gives O(log N) updates; ZREVRANGE serves the top
// list. The set is a projection and can be rebuilt from learner_profiles.
// ══════════════════════════════════════════════════════════════════════════════

const keyLeaderboardXP = PrefixLeaderboard + "xp"

// Leaderboard implements the XP ranking over a Redis sorted set.
type Leaderboard struct {
	cache *Cache
}

// NewLeaderboard creates a leaderboard over the given cache.
func NewLeaderboard(cache *Cache) *Leaderboard {
	return &Leaderboard{cache: cache}
}

var _ query.Leaderboard = (*Leaderboard)(nil)

// SetTotal sets a learner's ranked total outright. Used both by the
// xp_gained projection and when rebuilding from profiles.
func (l *Leaderboard) SetTotal(ctx context.Context, id learner.LearnerID, total int) error {
	err := l.cache.Client().ZAdd(ctx, keyLeaderboardXP, redis.Z{
		Score:  float64(total),
		Member: id.String(),
	}).Err()
	if err != nil {
		return fmt.Errorf("leaderboard: set total: %w", err)
	}
	return nil
}

// Top returns the highest-XP learners, best first.
func (l *Leaderboard) Top(ctx context.Context, limit int) ([]query.LeaderboardRank, error) {
	if limit <= 0 {
		limit = 10
	}

	zs, err := l.cache.Client().ZRevRangeWithScores(ctx, keyLeaderboardXP, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard: top: %w", err)
	}

	out := make([]query.LeaderboardRank, 0, len(zs))
	for i, z := range zs {
		member, _ := z.Member.(string)
		out = append(out, query.LeaderboardRank{
			Rank:      i + 1,
			LearnerID: member,
			TotalXP:   int(z.Score),
		})
	}
	return out, nil
}

// RankOf returns the 1-based rank of a learner, 0 if unranked.
func (l *Leaderboard) RankOf(ctx context.Context, id learner.LearnerID) (int, error) {
	rank, err := l.cache.Client().ZRevRank(ctx, keyLeaderboardXP, id.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("leaderboard: rank: %w", err)
	}
	return int(rank) + 1, nil
}
