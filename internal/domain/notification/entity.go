// Package notification содержит доменную модель уведомлений о прогрессе.
// Уведомления мотивируют ученика: новый уровень, пройденный рубеж серии,
// полученное достижение. Доставка - забота инфраструктуры; домен описывает
// только содержание и контракт приёмника (Sink).
package notification

import (
	"errors"
	"fmt"
	"time"

	"github.com/dsapath/dsapath-progress-core/internal/domain/learner"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// NotificationID представляет уникальный идентификатор уведомления.
type NotificationID string

// IsValid проверяет, что идентификатор непустой.
func (id NotificationID) IsValid() bool {
	return id != ""
}

// Type определяет тип уведомления о прогрессе.
type Type string

const (
	// TypeXPGained - получен XP.
	TypeXPGained Type = "xp_gained"
	// TypeLevelUp - новый уровень.
	TypeLevelUp Type = "level_up"
	// TypeStreakMilestone - пройден рубеж серии.
	TypeStreakMilestone Type = "streak_milestone"
	// TypeStreakBroken - серия сломана.
	TypeStreakBroken Type = "streak_broken"
	// TypeAchievementUnlocked - получено достижение.
	TypeAchievementUnlocked Type = "achievement_unlocked"
	// TypeBadgeAwarded - получен значок.
	TypeBadgeAwarded Type = "badge_awarded"
)

// IsValid проверяет корректность типа уведомления.
func (t Type) IsValid() bool {
	switch t {
	case TypeXPGained, TypeLevelUp, TypeStreakMilestone,
		TypeStreakBroken, TypeAchievementUnlocked, TypeBadgeAwarded:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление типа.
func (t Type) String() string {
	return string(t)
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidType - невалидный тип уведомления.
	ErrInvalidType = errors.New("notification: invalid notification type")

	// ErrEmptyMessage - пустой текст уведомления.
	ErrEmptyMessage = errors.New("notification: message must not be empty")

	// ErrDeliveryFailed - доставка не удалась.
	ErrDeliveryFailed = errors.New("notification: delivery failed")
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: NOTIFICATION
// ══════════════════════════════════════════════════════════════════════════════

// Notification представляет одно уведомление о прогрессе.
type Notification struct {
	// ID - уникальный идентификатор.
	ID NotificationID

	// LearnerID - кому адресовано.
	LearnerID learner.LearnerID

	// Type - тип уведомления.
	Type Type

	// Title - короткий заголовок.
	Title string

	// Message - текст уведомления.
	Message string

	// Data - произвольные данные для отображения (amount, level, days и т.д.).
	Data map[string]any

	// CreatedAt - когда создано.
	CreatedAt time.Time
}

// New создаёт уведомление с валидацией.
func New(id NotificationID, learnerID learner.LearnerID, t Type, title, message string, data map[string]any) (*Notification, error) {
	if !t.IsValid() {
		return nil, ErrInvalidType
	}
	if message == "" {
		return nil, ErrEmptyMessage
	}

	return &Notification{
		ID:        id,
		LearnerID: learnerID,
		Type:      t,
		Title:     title,
		Message:   message,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// BUILDERS
// Готовые конструкторы для типовых уведомлений прогресса.
// ══════════════════════════════════════════════════════════════════════════════

// XPGained строит уведомление о полученном XP.
func XPGained(id NotificationID, learnerID learner.LearnerID, amount learner.XP, reason string) *Notification {
	return &Notification{
		ID:        id,
		LearnerID: learnerID,
		Type:      TypeXPGained,
		Title:     "XP получен",
		Message:   fmt.Sprintf("+%d XP (%s)", amount, reason),
		Data:      map[string]any{"amount": int(amount), "reason": reason},
		CreatedAt: time.Now().UTC(),
	}
}

// LevelUp строит уведомление о новом уровне.
func LevelUp(id NotificationID, learnerID learner.LearnerID, newLevel learner.Level) *Notification {
	return &Notification{
		ID:        id,
		LearnerID: learnerID,
		Type:      TypeLevelUp,
		Title:     "Новый уровень!",
		Message:   fmt.Sprintf("Поздравляем, вы достигли уровня %d", newLevel),
		Data:      map[string]any{"level": int(newLevel)},
		CreatedAt: time.Now().UTC(),
	}
}

// StreakMilestone строит уведомление о пройденном рубеже серии.
func StreakMilestone(id NotificationID, learnerID learner.LearnerID, days int, rewardXP learner.XP) *Notification {
	return &Notification{
		ID:        id,
		LearnerID: learnerID,
		Type:      TypeStreakMilestone,
		Title:     "Рубеж серии",
		Message:   fmt.Sprintf("%d дней подряд! Бонус +%d XP", days, rewardXP),
		Data:      map[string]any{"days": days, "reward_xp": int(rewardXP)},
		CreatedAt: time.Now().UTC(),
	}
}

// StreakBroken строит уведомление о сломанной серии.
func StreakBroken(id NotificationID, learnerID learner.LearnerID, lostStreak int) *Notification {
	return &Notification{
		ID:        id,
		LearnerID: learnerID,
		Type:      TypeStreakBroken,
		Title:     "Серия прервана",
		Message:   fmt.Sprintf("Серия из %d дней прервана. Начните новую сегодня!", lostStreak),
		Data:      map[string]any{"lost_streak": lostStreak},
		CreatedAt: time.Now().UTC(),
	}
}

// AchievementUnlocked строит уведомление о достижении.
func AchievementUnlocked(id NotificationID, learnerID learner.LearnerID, achievementID learner.AchievementID, name string, rewardXP learner.XP) *Notification {
	return &Notification{
		ID:        id,
		LearnerID: learnerID,
		Type:      TypeAchievementUnlocked,
		Title:     "Достижение получено",
		Message:   fmt.Sprintf("«%s» (+%d XP)", name, rewardXP),
		Data:      map[string]any{"achievement_id": string(achievementID), "reward_xp": int(rewardXP)},
		CreatedAt: time.Now().UTC(),
	}
}
