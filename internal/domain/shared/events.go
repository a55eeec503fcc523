// Package shared contains common domain types, errors, and events that are
// used across all domain packages.
package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven notification flow.
// Each event represents something significant that happened in the domain.
const (
	// Progress events
	EventXPGained            EventType = "progress.xp_gained"
	EventLevelUp             EventType = "progress.level_up"
	EventSessionRecorded     EventType = "progress.session_recorded"
	EventAchievementUnlocked EventType = "progress.achievement_unlocked"
	EventBadgeAwarded        EventType = "progress.badge_awarded"
	EventStreakExtended      EventType = "progress.streak_extended"
	EventStreakMilestone     EventType = "progress.streak_milestone"
	EventStreakBroken        EventType = "progress.streak_broken"

	// Insight events
	EventRecommendationsRebuilt EventType = "insight.recommendations_rebuilt"

	// System events
	EventStreakScanCompleted EventType = "system.streak_scan_completed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
	Version     int       `json:"version"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Progress Events
// ═══════════════════════════════════════════════════════════════════════════

// XPGainedEvent is emitted when a learner gains XP.
type XPGainedEvent struct {
	BaseEvent
	LearnerID  string `json:"learner_id"`
	Amount     int    `json:"amount"`
	Bonus      int    `json:"bonus"`
	NewTotal   int    `json:"new_total"`
	Reason     string `json:"reason"` // e.g., "topic_completed", "streak_milestone"
	TopicID    string `json:"topic_id,omitempty"`
	Multiplier string `json:"multiplier,omitempty"`
}

// Payload implements Event interface.
func (e XPGainedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"learner_id": e.LearnerID,
		"amount":     e.Amount,
		"bonus":      e.Bonus,
		"new_total":  e.NewTotal,
		"reason":     e.Reason,
		"topic_id":   e.TopicID,
	}
}

// NewXPGainedEvent creates a new XPGainedEvent.
func NewXPGainedEvent(learnerID string, amount, bonus, newTotal int, reason string) XPGainedEvent {
	return XPGainedEvent{
		BaseEvent: NewBaseEvent(EventXPGained, learnerID),
		LearnerID: learnerID,
		Amount:    amount,
		Bonus:     bonus,
		NewTotal:  newTotal,
		Reason:    reason,
	}
}

// LevelUpEvent is emitted once per level gained from an XP award.
type LevelUpEvent struct {
	BaseEvent
	LearnerID   string `json:"learner_id"`
	NewLevel    int    `json:"new_level"`
	XPToNext    int    `json:"xp_to_next"`
	TotalXP     int    `json:"total_xp"`
	TriggeredBy string `json:"triggered_by"` // reason of the award that caused the level-up
}

// Payload implements Event interface.
func (e LevelUpEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"learner_id":   e.LearnerID,
		"new_level":    e.NewLevel,
		"xp_to_next":   e.XPToNext,
		"total_xp":     e.TotalXP,
		"triggered_by": e.TriggeredBy,
	}
}

// NewLevelUpEvent creates a new LevelUpEvent.
func NewLevelUpEvent(learnerID string, newLevel, xpToNext, totalXP int, triggeredBy string) LevelUpEvent {
	return LevelUpEvent{
		BaseEvent:   NewBaseEvent(EventLevelUp, learnerID),
		LearnerID:   learnerID,
		NewLevel:    newLevel,
		XPToNext:    xpToNext,
		TotalXP:     totalXP,
		TriggeredBy: triggeredBy,
	}
}

// SessionRecordedEvent is emitted when a study session is appended to the log.
type SessionRecordedEvent struct {
	BaseEvent
	LearnerID       string   `json:"learner_id"`
	SessionID       string   `json:"session_id"`
	TopicID         string   `json:"topic_id"`
	DurationMinutes int      `json:"duration_minutes"`
	QuizScore       *float64 `json:"quiz_score,omitempty"`
}

// Payload implements Event interface.
func (e SessionRecordedEvent) Payload() map[string]interface{} {
	p := map[string]interface{}{
		"learner_id":       e.LearnerID,
		"session_id":       e.SessionID,
		"topic_id":         e.TopicID,
		"duration_minutes": e.DurationMinutes,
	}
	if e.QuizScore != nil {
		p["quiz_score"] = *e.QuizScore
	}
	return p
}

// NewSessionRecordedEvent creates a new SessionRecordedEvent.
func NewSessionRecordedEvent(learnerID, sessionID, topicID string, durationMinutes int, quizScore *float64) SessionRecordedEvent {
	return SessionRecordedEvent{
		BaseEvent:       NewBaseEvent(EventSessionRecorded, learnerID),
		LearnerID:       learnerID,
		SessionID:       sessionID,
		TopicID:         topicID,
		DurationMinutes: durationMinutes,
		QuizScore:       quizScore,
	}
}

// AchievementUnlockedEvent is emitted when an achievement unlocks.
type AchievementUnlockedEvent struct {
	BaseEvent
	LearnerID     string `json:"learner_id"`
	AchievementID string `json:"achievement_id"`
	Name          string `json:"name"`
	XPReward      int    `json:"xp_reward"`
}

// Payload implements Event interface.
func (e AchievementUnlockedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"learner_id":     e.LearnerID,
		"achievement_id": e.AchievementID,
		"name":           e.Name,
		"xp_reward":      e.XPReward,
	}
}

// NewAchievementUnlockedEvent creates a new AchievementUnlockedEvent.
func NewAchievementUnlockedEvent(learnerID, achievementID, name string, xpReward int) AchievementUnlockedEvent {
	return AchievementUnlockedEvent{
		BaseEvent:     NewBaseEvent(EventAchievementUnlocked, learnerID),
		LearnerID:     learnerID,
		AchievementID: achievementID,
		Name:          name,
		XPReward:      xpReward,
	}
}

// StreakMilestoneEvent is emitted when the streak crosses a milestone.
type StreakMilestoneEvent struct {
	BaseEvent
	LearnerID string `json:"learner_id"`
	Days      int    `json:"days"`
	RewardXP  int    `json:"reward_xp"`
}

// Payload implements Event interface.
func (e StreakMilestoneEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"learner_id": e.LearnerID,
		"days":       e.Days,
		"reward_xp":  e.RewardXP,
	}
}

// NewStreakMilestoneEvent creates a new StreakMilestoneEvent.
func NewStreakMilestoneEvent(learnerID string, days, rewardXP int) StreakMilestoneEvent {
	return StreakMilestoneEvent{
		BaseEvent: NewBaseEvent(EventStreakMilestone, learnerID),
		LearnerID: learnerID,
		Days:      days,
		RewardXP:  rewardXP,
	}
}

// StreakBrokenEvent is emitted when a learner's daily streak lapses.
type StreakBrokenEvent struct {
	BaseEvent
	LearnerID      string `json:"learner_id"`
	PreviousStreak int    `json:"previous_streak"`
	DaysMissed     int    `json:"days_missed"`
}

// Payload implements Event interface.
func (e StreakBrokenEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"learner_id":      e.LearnerID,
		"previous_streak": e.PreviousStreak,
		"days_missed":     e.DaysMissed,
	}
}

// NewStreakBrokenEvent creates a new StreakBrokenEvent.
func NewStreakBrokenEvent(learnerID string, previousStreak, daysMissed int) StreakBrokenEvent {
	return StreakBrokenEvent{
		BaseEvent:      NewBaseEvent(EventStreakBroken, learnerID),
		LearnerID:      learnerID,
		PreviousStreak: previousStreak,
		DaysMissed:     daysMissed,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID          string          `json:"id"`
	Type        EventType       `json:"type"`
	AggregateID string          `json:"aggregate_id"`
	Timestamp   time.Time       `json:"timestamp"`
	Version     int             `json:"version"`
	Payload     json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
