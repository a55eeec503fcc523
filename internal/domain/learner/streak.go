package learner

import (
	"time"

	"github.com/dsapath/dsapath-progress-core/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// STREAK TRACKER
// ══════════════════════════════════════════════════════════════════════════════

// StreakUpdate описывает результат обновления серии.
type StreakUpdate struct {
	// Current - серия после обновления.
	Current int

	// Longest - лучшая серия после обновления.
	Longest int

	// Extended - серия продолжилась (новый день подряд).
	Extended bool

	// Reset - серия сброшена из-за пропуска дней.
	Reset bool

	// AlreadyCounted - активность в этот день уже была учтена (no-op).
	AlreadyCounted bool

	// MilestonesHit - рубежи, пройденные этим обновлением.
	MilestonesHit []Milestone

	// MilestoneXP - суммарный бонус XP за пройденные рубежи.
	MilestoneXP XP
}

// StreakTracker ведёт серию активных дней ученика.
//
// Серия сравнивается по календарным датам UTC, а не по прошедшим часам:
// активность в 23:59 и в 00:01 следующего дня - это два подряд идущих дня.
// Повторный вызов в те же сутки идемпотентен - это ключевой инвариант.
type StreakTracker struct {
	ledger   *XPLedger
	notifier Notifier
}

// NewStreakTracker создаёт трекер серии. Бонусы за рубежи начисляются
// через переданный леджер.
func NewStreakTracker(ledger *XPLedger, notifier Notifier) *StreakTracker {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &StreakTracker{ledger: ledger, notifier: notifier}
}

// Update учитывает активность ученика в момент now и обновляет серию.
//
// Правила:
//   - та же календарная дата, что и последняя активность - no-op;
//   - ровно следующий день - серия растёт на 1, Longest подтягивается;
//   - пропуск хотя бы одного дня - серия сбрасывается до 1 (сегодня - день 1);
//   - первая активность в жизни профиля - день 1.
//
// Прохождение рубежа помечает его, начисляет RewardXP через XPLedger
// и выдаёт связанный значок. Каждый рубеж срабатывает один раз.
func (t *StreakTracker) Update(p *Profile, now time.Time) StreakUpdate {
	now = now.UTC()
	today := timeutil.StartOfDay(now)

	upd := StreakUpdate{}

	switch {
	case p.Streak.LastActivityDate.IsZero():
		// Первая активность
		p.Streak.Current = 1
		upd.Extended = true

	case timeutil.IsSameDay(p.Streak.LastActivityDate, now):
		// Уже учтено сегодня
		upd.AlreadyCounted = true
		upd.Current = p.Streak.Current
		upd.Longest = p.Streak.Longest
		return upd

	case timeutil.DaysBetween(p.Streak.LastActivityDate, now) == 1:
		p.Streak.Current++
		upd.Extended = true

	default:
		// Пропущен хотя бы один день
		p.Streak.Current = 1
		upd.Reset = true
	}

	if p.Streak.Current > p.Streak.Longest {
		p.Streak.Longest = p.Streak.Current
	}
	p.Streak.LastActivityDate = today
	p.Touch(now)

	upd.MilestonesHit, upd.MilestoneXP = t.applyMilestones(p, now)
	upd.Current = p.Streak.Current
	upd.Longest = p.Streak.Longest

	return upd
}

// IsBroken проверяет, сломана ли серия на момент now (пропущен вчерашний день,
// а сегодня активности ещё не было). Используется фоновым сканером.
func (t *StreakTracker) IsBroken(p *Profile, now time.Time) bool {
	if p.Streak.LastActivityDate.IsZero() || p.Streak.Current == 0 {
		return false
	}
	return timeutil.DaysBetween(p.Streak.LastActivityDate, now.UTC()) > 1
}

// applyMilestones помечает все непройденные рубежи, до которых доросла серия.
// Значки датируются переданным now, а не часами машины.
func (t *StreakTracker) applyMilestones(p *Profile, now time.Time) ([]Milestone, XP) {
	var hit []Milestone
	var totalXP XP

	for i := range p.Streak.Milestones {
		m := &p.Streak.Milestones[i]
		if m.Achieved || p.Streak.Current < m.Days {
			continue
		}

		m.Achieved = true
		hit = append(hit, *m)

		if t.ledger != nil && m.RewardXP > 0 {
			gain := t.ledger.Award(p, m.RewardXP, ReasonStreakMilestone)
			totalXP += gain.FinalAmount
		}
		if m.BadgeID != "" {
			p.AwardBadge(m.BadgeID, now)
		}

		t.notifier.StreakMilestone(p.UserID, m.Days, m.RewardXP)
	}

	return hit, totalXP
}
