package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsapath/dsapath-progress-core/internal/domain/learner"
)

func TestLeaderboardRanking(t *testing.T) {
	lb := NewLeaderboard()
	ctx := context.Background()

	require.NoError(t, lb.SetTotal(ctx, "alice", 300))
	require.NoError(t, lb.SetTotal(ctx, "bob", 100))
	require.NoError(t, lb.SetTotal(ctx, "carol", 200))
	require.NoError(t, lb.SetTotal(ctx, "bob", 350)) // bob climbs to rank 1

	top, err := lb.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 3)

	assert.Equal(t, "bob", top[0].LearnerID)
	assert.Equal(t, 350, top[0].TotalXP)
	assert.Equal(t, 1, top[0].Rank)
	assert.Equal(t, "alice", top[1].LearnerID)
	assert.Equal(t, "carol", top[2].LearnerID)
}

func TestLeaderboardSetTotalOverwrites(t *testing.T) {
	lb := NewLeaderboard()
	ctx := context.Background()

	require.NoError(t, lb.SetTotal(ctx, "alice", 300))
	require.NoError(t, lb.SetTotal(ctx, "alice", 120))

	top, err := lb.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, 120, top[0].TotalXP, "stale total must be replaced, not summed")
}

func TestLeaderboardTopLimit(t *testing.T) {
	lb := NewLeaderboard()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, lb.SetTotal(ctx, learner.LearnerID(id), 10))
	}

	top, err := lb.Top(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}

func TestLeaderboardRankOf(t *testing.T) {
	lb := NewLeaderboard()
	ctx := context.Background()

	require.NoError(t, lb.SetTotal(ctx, "alice", 300))
	require.NoError(t, lb.SetTotal(ctx, "bob", 100))

	rank, err := lb.RankOf(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 2, rank)

	rank, err = lb.RankOf(ctx, "stranger")
	require.NoError(t, err)
	assert.Zero(t, rank, "unranked learner gets 0")
}

func TestLeaderboardTiesBreakByID(t *testing.T) {
	lb := NewLeaderboard()
	ctx := context.Background()

	require.NoError(t, lb.SetTotal(ctx, "zoe", 100))
	require.NoError(t, lb.SetTotal(ctx, "amy", 100))

	top, err := lb.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "amy", top[0].LearnerID)
	assert.Equal(t, "zoe", top[1].LearnerID)
}
