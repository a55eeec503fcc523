package learner

import (
	"math"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEVEL CURVE
// ══════════════════════════════════════════════════════════════════════════════

// XPForLevel возвращает стоимость прохождения уровня n, то есть XP,
// необходимый для перехода с уровня n на уровень n+1.
// Формула: floor(100 * 1.5^(n-1)). Первый уровень стоит ровно 100 XP,
// далее стоимость растёт в полтора раза: 100, 150, 225, 337, ...
func XPForLevel(n Level) XP {
	if n < 1 {
		n = 1
	}
	return XP(math.Floor(100 * math.Pow(1.5, float64(n-1))))
}

// TotalXPForLevel возвращает суммарный XP, необходимый для достижения
// уровня n с нуля. Используется для отображения прогресса.
func TotalXPForLevel(n Level) XP {
	var total XP
	for l := Level(1); l < n; l++ {
		total += XPForLevel(l)
	}
	return total
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFIER
// ══════════════════════════════════════════════════════════════════════════════

// Notifier получает доменные уведомления о прогрессе ученика.
// Интерфейс объявлен на стороне потребителя; реализация живёт
// в internal/domain/notification.
type Notifier interface {
	// XPGained - ученик получил XP.
	XPGained(learnerID LearnerID, amount XP, reason string)

	// LevelUp - ученик перешёл на новый уровень.
	LevelUp(learnerID LearnerID, newLevel Level)

	// StreakMilestone - ученик прошёл рубеж серии.
	StreakMilestone(learnerID LearnerID, days int, rewardXP XP)

	// AchievementUnlocked - ученик получил достижение.
	AchievementUnlocked(learnerID LearnerID, id AchievementID, name string, rewardXP XP)
}

// NopNotifier - заглушка, молча игнорирующая все уведомления.
type NopNotifier struct{}

// XPGained - no-op.
func (NopNotifier) XPGained(LearnerID, XP, string) {}

// LevelUp - no-op.
func (NopNotifier) LevelUp(LearnerID, Level) {}

// StreakMilestone - no-op.
func (NopNotifier) StreakMilestone(LearnerID, int, XP) {}

// AchievementUnlocked - no-op.
func (NopNotifier) AchievementUnlocked(LearnerID, AchievementID, string, XP) {}

// ══════════════════════════════════════════════════════════════════════════════
// XP LEDGER
// ══════════════════════════════════════════════════════════════════════════════

// Причины начисления XP.
const (
	ReasonTopicCompleted  = "topic_completed"
	ReasonQuizCompleted   = "quiz_completed"
	ReasonStreakMilestone = "streak_milestone"
	ReasonAchievement     = "achievement"
)

// Максимальный бонус за серию: +200% к базовому начислению.
const maxStreakBonusRate = 2.0

// XPGain описывает результат одного начисления XP.
type XPGain struct {
	// BaseAmount - базовое начисление до бонуса (после приведения к нулю).
	BaseAmount XP

	// BonusAmount - надбавка за серию.
	BonusAmount XP

	// FinalAmount - итоговое начисление.
	FinalAmount XP

	// Multiplier - применённый множитель (1.0 + бонусная ставка).
	Multiplier float64

	// Reason - причина начисления.
	Reason string

	// LeveledUp - начисление подняло хотя бы один уровень.
	LeveledUp bool

	// LevelsGained - на сколько уровней поднялся ученик.
	LevelsGained int

	// NewLevel - уровень после начисления.
	NewLevel Level

	// XPToNextLevel - сколько осталось до следующего уровня.
	XPToNextLevel XP
}

// XPLedger начисляет XP с учётом бонуса за серию и двигает ученика
// по кривой уровней. Сервис без состояния: весь контекст - профиль.
type XPLedger struct {
	notifier Notifier
}

// NewXPLedger создаёт леджер. Нулевой notifier заменяется заглушкой.
func NewXPLedger(notifier Notifier) *XPLedger {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &XPLedger{notifier: notifier}
}

// Award начисляет ученику XP за действие с указанной причиной.
//
// Правила:
//   - отрицательная база приводится к нулю (XP не отнимается никогда);
//   - бонусная ставка за серию: min(Streak.Current * 0.1, 2.0);
//   - итог: round(base * (1 + ставка));
//   - одно начисление может поднять несколько уровней подряд.
//
// Профиль мутируется на месте; вызывающий отвечает за сохранение.
func (l *XPLedger) Award(p *Profile, base XP, reason string) XPGain {
	if base < 0 {
		base = 0
	}

	rate := math.Min(float64(p.Streak.Current)*0.1, maxStreakBonusRate)
	final := XP(math.Round(float64(base) * (1 + rate)))

	p.XP.CurrentXP = p.XP.CurrentXP.Add(final)
	p.XP.TotalXPEarned = p.XP.TotalXPEarned.Add(final)

	// Level-up loop: одно крупное начисление может закрыть несколько уровней
	levelsGained := 0
	for p.XP.CurrentXP >= XPForLevel(p.Level) {
		p.XP.CurrentXP -= XPForLevel(p.Level)
		p.Level++
		levelsGained++
	}
	p.XP.XPToNextLevel = XPForLevel(p.Level) - p.XP.CurrentXP

	p.Touch(time.Now().UTC())

	gain := XPGain{
		BaseAmount:    base,
		BonusAmount:   final - base,
		FinalAmount:   final,
		Multiplier:    1 + rate,
		Reason:        reason,
		LeveledUp:     levelsGained > 0,
		LevelsGained:  levelsGained,
		NewLevel:      p.Level,
		XPToNextLevel: p.XP.XPToNextLevel,
	}

	if final > 0 {
		l.notifier.XPGained(p.UserID, final, reason)
	}
	for i := 0; i < levelsGained; i++ {
		l.notifier.LevelUp(p.UserID, p.Level-Level(levelsGained-i-1))
	}

	return gain
}
