package notification

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dsapath/dsapath-progress-core/internal/domain/learner"
	"github.com/dsapath/dsapath-progress-core/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SINK
// ══════════════════════════════════════════════════════════════════════════════

// Sink принимает уведомления для доставки. Реализации: лог, буфер в памяти,
// внешний канал доставки. Доставка не должна блокировать доменную логику.
type Sink interface {
	// Deliver передаёт уведомление приёмнику.
	Deliver(ctx context.Context, n *Notification) error
}

// ══════════════════════════════════════════════════════════════════════════════
// LOGGING SINK
// ══════════════════════════════════════════════════════════════════════════════

// LoggingSink пишет уведомления в структурированный лог.
// Используется по умолчанию, пока не подключён внешний канал доставки.
type LoggingSink struct {
	log *logger.Logger
}

// NewLoggingSink создаёт лог-приёмник.
func NewLoggingSink(log *logger.Logger) *LoggingSink {
	return &LoggingSink{log: log.With(logger.Component("notification_sink"))}
}

// Deliver пишет уведомление в лог.
func (s *LoggingSink) Deliver(_ context.Context, n *Notification) error {
	s.log.Info("notification delivered",
		logger.LearnerID(n.LearnerID.String()),
		logger.String("type", n.Type.String()),
		logger.String("title", n.Title),
		logger.String("message", n.Message),
	)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// COLLECTING SINK
// ══════════════════════════════════════════════════════════════════════════════

// CollectingSink накапливает уведомления в памяти. Используется в тестах
// и для выдачи уведомлений через HTTP API.
type CollectingSink struct {
	mu    sync.Mutex
	items []*Notification
}

// NewCollectingSink создаёт буферный приёмник.
func NewCollectingSink() *CollectingSink {
	return &CollectingSink{}
}

// Deliver добавляет уведомление в буфер.
func (s *CollectingSink) Deliver(_ context.Context, n *Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, n)
	return nil
}

// All возвращает копию накопленных уведомлений.
func (s *CollectingSink) All() []*Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Notification, len(s.items))
	copy(out, s.items)
	return out
}

// ByLearner возвращает уведомления одного ученика.
func (s *CollectingSink) ByLearner(id learner.LearnerID) []*Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Notification
	for _, n := range s.items {
		if n.LearnerID == id {
			out = append(out, n)
		}
	}
	return out
}

// Reset очищает буфер.
func (s *CollectingSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFIER ADAPTER
// Адаптер доменного интерфейса learner.Notifier поверх Sink.
// ══════════════════════════════════════════════════════════════════════════════

// SinkNotifier реализует learner.Notifier, превращая доменные события
// в уведомления и отправляя их в Sink. Ошибки доставки логируются,
// но не прерывают доменную операцию.
type SinkNotifier struct {
	sink Sink
	log  *logger.Logger
}

// NewSinkNotifier создаёт адаптер.
func NewSinkNotifier(sink Sink, log *logger.Logger) *SinkNotifier {
	return &SinkNotifier{
		sink: sink,
		log:  log.With(logger.Component("sink_notifier")),
	}
}

var _ learner.Notifier = (*SinkNotifier)(nil)

// XPGained отправляет уведомление о полученном XP.
func (sn *SinkNotifier) XPGained(learnerID learner.LearnerID, amount learner.XP, reason string) {
	sn.deliver(XPGained(sn.newID(), learnerID, amount, reason))
}

// LevelUp отправляет уведомление о новом уровне.
func (sn *SinkNotifier) LevelUp(learnerID learner.LearnerID, newLevel learner.Level) {
	sn.deliver(LevelUp(sn.newID(), learnerID, newLevel))
}

// StreakMilestone отправляет уведомление о рубеже серии.
func (sn *SinkNotifier) StreakMilestone(learnerID learner.LearnerID, days int, rewardXP learner.XP) {
	sn.deliver(StreakMilestone(sn.newID(), learnerID, days, rewardXP))
}

// AchievementUnlocked отправляет уведомление о достижении.
func (sn *SinkNotifier) AchievementUnlocked(learnerID learner.LearnerID, id learner.AchievementID, name string, rewardXP learner.XP) {
	sn.deliver(AchievementUnlocked(sn.newID(), learnerID, id, name, rewardXP))
}

func (sn *SinkNotifier) newID() NotificationID {
	return NotificationID(uuid.NewString())
}

func (sn *SinkNotifier) deliver(n *Notification) {
	if err := sn.sink.Deliver(context.Background(), n); err != nil {
		sn.log.Warn("notification delivery failed",
			logger.LearnerID(n.LearnerID.String()),
			logger.String("type", n.Type.String()),
			logger.Err(err),
		)
	}
}
