// Package eventhandler содержит обработчики доменных событий.
// Обработчики - "реактивная" часть системы: они поддерживают проекции
// (лидерборд) и побочные эффекты, не влияя на исход команды.
package eventhandler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dsapath/dsapath-progress-core/internal/domain/learner"
	"github.com/dsapath/dsapath-progress-core/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON XP GAINED HANDLER
// Поддерживает проекцию лидерборда. Событие xp_gained несёт итоговый
// TotalXPEarned профиля (NewTotal), поэтому проекция записывает его целиком:
// награды за достижения и серии попадают в рейтинг вместе с базовым XP,
// а не только начисление за тему. Проекция деривативна - её можно
// пересобрать из профилей, поэтому ошибка обновления не фатальна.
// ═══════════════════════════════════════════════════════════════════════════

// LeaderboardWriter - запись в проекцию рейтинга.
type LeaderboardWriter interface {
	// SetTotal выставляет суммарный XP ученика в рейтинге.
	SetTotal(ctx context.Context, id learner.LearnerID, total int) error
}

// OnXPGainedHandler обновляет лидерборд при начислении XP.
type OnXPGainedHandler struct {
	leaderboard LeaderboardWriter
	logger      *slog.Logger
}

// NewOnXPGainedHandler создаёт обработчик.
func NewOnXPGainedHandler(lb LeaderboardWriter, logger *slog.Logger) *OnXPGainedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnXPGainedHandler{
		leaderboard: lb,
		logger:      logger.With("component", "on_xp_gained"),
	}
}

// Handle обрабатывает событие xp_gained.
func (h *OnXPGainedHandler) Handle(event shared.Event) error {
	e, ok := event.(shared.XPGainedEvent)
	if !ok {
		return fmt.Errorf("on_xp_gained: unexpected event type %T", event)
	}

	ctx := context.Background()
	if err := h.leaderboard.SetTotal(ctx, learner.LearnerID(e.LearnerID), e.NewTotal); err != nil {
		h.logger.Warn("leaderboard projection update failed",
			"learner_id", e.LearnerID,
			"total", e.NewTotal,
			"error", err,
		)
		return err
	}

	h.logger.Debug("leaderboard updated",
		"learner_id", e.LearnerID,
		"total", e.NewTotal,
	)
	return nil
}
