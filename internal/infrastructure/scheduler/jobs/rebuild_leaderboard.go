package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dsapath/dsapath-progress-core/internal/domain/learner"
)

// ══════════════════════════════════════════════════════════════════════════════
// REBUILD LEADERBOARD JOB
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardRebuilder принимает полный пересчёт одного ученика.
type LeaderboardRebuilder interface {
	SetTotal(ctx context.Context, id learner.LearnerID, total int) error
}

// RebuildLeaderboardJob пересобирает проекцию рейтинга из профилей.
// Проекция обновляется событиями xp_gained; задача чинит расхождения
// после потерянных событий или рестарта Redis.
type RebuildLeaderboardJob struct {
	profileRepo learner.Repository
	rebuilder   LeaderboardRebuilder
	logger      *slog.Logger
	batchSize   int
}

// NewRebuildLeaderboardJob создаёт задачу пересборки рейтинга.
func NewRebuildLeaderboardJob(profileRepo learner.Repository, rebuilder LeaderboardRebuilder, logger *slog.Logger) *RebuildLeaderboardJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &RebuildLeaderboardJob{
		profileRepo: profileRepo,
		rebuilder:   rebuilder,
		logger:      logger,
		batchSize:   200,
	}
}

// Name возвращает имя задачи.
func (j *RebuildLeaderboardJob) Name() string {
	return "rebuild_leaderboard"
}

// Description возвращает описание задачи.
func (j *RebuildLeaderboardJob) Description() string {
	return "rebuilds the XP leaderboard projection from learner profiles"
}

// Run проходит по всем профилям постранично и записывает их суммарный XP.
func (j *RebuildLeaderboardJob) Run(ctx context.Context) error {
	var synced, offset int

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		profiles, err := j.profileRepo.GetAll(ctx, learner.ListOptions{Limit: j.batchSize, Offset: offset})
		if err != nil {
			return fmt.Errorf("rebuild_leaderboard: list profiles: %w", err)
		}
		if len(profiles) == 0 {
			break
		}

		for _, p := range profiles {
			if err := j.rebuilder.SetTotal(ctx, p.UserID, int(p.XP.TotalXPEarned)); err != nil {
				return fmt.Errorf("rebuild_leaderboard: set total for %s: %w", p.UserID, err)
			}
			synced++
		}

		offset += len(profiles)
	}

	j.logger.Info("leaderboard rebuilt", "profiles_synced", synced)
	return nil
}
