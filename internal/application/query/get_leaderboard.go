package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/dsapath/dsapath-progress-core/internal/domain/learner"
	"github.com/dsapath/dsapath-progress-core/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEADERBOARD QUERY
// Top learners by total XP. The ranking itself is maintained as a
// projection (Redis sorted set) updated from xp_gained events.
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardRank is one ranked row.
type LeaderboardRank struct {
	Rank        int
	LearnerID   string
	DisplayName string
	TotalXP     int
}

// Leaderboard is the ranking projection contract.
type Leaderboard interface {
	// Top returns the highest-XP learners, best first.
	Top(ctx context.Context, limit int) ([]LeaderboardRank, error)

	// RankOf returns the 1-based rank of a learner, 0 if unranked.
	RankOf(ctx context.Context, id learner.LearnerID) (int, error)
}

// GetLeaderboardQuery contains the query parameters.
type GetLeaderboardQuery struct {
	Limit int

	// LearnerID, when set, asks for that learner's own rank as well.
	LearnerID string
}

// GetLeaderboardResult is the read model.
type GetLeaderboardResult struct {
	Entries []LeaderboardRank

	// RequesterRank is the asking learner's rank, 0 if unranked or not asked.
	RequesterRank int
}

// GetLeaderboardHandler handles the GetLeaderboardQuery.
type GetLeaderboardHandler struct {
	leaderboard Leaderboard
	profileRepo learner.Repository
	log         *logger.Logger
}

// NewGetLeaderboardHandler creates a new GetLeaderboardHandler.
func NewGetLeaderboardHandler(lb Leaderboard, profileRepo learner.Repository, log *logger.Logger) *GetLeaderboardHandler {
	return &GetLeaderboardHandler{
		leaderboard: lb,
		profileRepo: profileRepo,
		log:         log.With(logger.Component("get_leaderboard")),
	}
}

// Handle executes the query.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, q GetLeaderboardQuery) (*GetLeaderboardResult, error) {
	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	entries, err := h.leaderboard.Top(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("get_leaderboard: %w", err)
	}

	// Enrich with display names; a missing profile is not fatal.
	for i := range entries {
		p, err := h.profileRepo.GetByID(ctx, learner.LearnerID(entries[i].LearnerID))
		if err != nil {
			if !errors.Is(err, learner.ErrLearnerNotFound) {
				h.log.Warn("leaderboard profile lookup failed",
					logger.LearnerID(entries[i].LearnerID), logger.Err(err))
			}
			entries[i].DisplayName = entries[i].LearnerID
			continue
		}
		entries[i].DisplayName = p.DisplayName
	}

	result := &GetLeaderboardResult{Entries: entries}

	if learner.LearnerID(q.LearnerID).IsValid() {
		rank, err := h.leaderboard.RankOf(ctx, learner.LearnerID(q.LearnerID))
		if err != nil {
			h.log.Warn("rank lookup failed", logger.LearnerID(q.LearnerID), logger.Err(err))
		} else {
			result.RequesterRank = rank
		}
	}

	return result, nil
}
