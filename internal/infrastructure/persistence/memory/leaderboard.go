package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dsapath/dsapath-progress-core/internal/application/query"
	"github.com/dsapath/dsapath-progress-core/internal/domain/learner"
)

// Leaderboard is an in-memory XP ranking. It mirrors the Redis sorted-set
// projection for tests and the "memory" storage driver.
type Leaderboard struct {
	mu     sync.RWMutex
	totals map[learner.LearnerID]int
}

// NewLeaderboard creates an empty in-memory leaderboard.
func NewLeaderboard() *Leaderboard {
	return &Leaderboard{totals: make(map[learner.LearnerID]int)}
}

var _ query.Leaderboard = (*Leaderboard)(nil)

// SetTotal sets a learner's ranked total outright.
func (l *Leaderboard) SetTotal(_ context.Context, id learner.LearnerID, total int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.totals[id] = total
	return nil
}

// Top returns the highest-XP learners, best first. Ties break by ID for
// a deterministic order.
func (l *Leaderboard) Top(_ context.Context, limit int) ([]query.LeaderboardRank, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ranked := l.rankedLocked()
	if limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// RankOf returns the 1-based rank of a learner, 0 if unranked.
func (l *Leaderboard) RankOf(_ context.Context, id learner.LearnerID) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, e := range l.rankedLocked() {
		if e.LearnerID == id.String() {
			return e.Rank, nil
		}
	}
	return 0, nil
}

func (l *Leaderboard) rankedLocked() []query.LeaderboardRank {
	out := make([]query.LeaderboardRank, 0, len(l.totals))
	for id, xp := range l.totals {
		out = append(out, query.LeaderboardRank{LearnerID: id.String(), TotalXP: xp})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalXP != out[j].TotalXP {
			return out[i].TotalXP > out[j].TotalXP
		}
		return out[i].LearnerID < out[j].LearnerID
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
