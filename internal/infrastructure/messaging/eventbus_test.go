package messaging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsapath/dsapath-progress-core/internal/domain/shared"
)

func syncBus() *InMemoryEventBus {
	return NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: false})
}

func TestPublish_DeliversToTypedSubscribers(t *testing.T) {
	bus := syncBus()
	defer func() { _ = bus.Close() }()

	var got []shared.Event
	err := bus.Subscribe(shared.EventXPGained, func(e shared.Event) error {
		got = append(got, e)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(shared.NewXPGainedEvent("learner-1", 50, 0, 50, "topic_completed")))
	require.NoError(t, bus.Publish(shared.NewLevelUpEvent("learner-1", 2, 150, 100, "topic_completed")))

	require.Len(t, got, 1)
	assert.Equal(t, shared.EventXPGained, got[0].EventType())
	assert.Equal(t, "learner-1", got[0].AggregateID())
}

func TestPublish_GlobalSubscriberSeesEverything(t *testing.T) {
	bus := syncBus()
	defer func() { _ = bus.Close() }()

	var count int
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		count++
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewXPGainedEvent("l", 10, 0, 10, "r")))
	require.NoError(t, bus.Publish(shared.NewStreakBrokenEvent("l", 7, 2)))

	assert.Equal(t, 2, count)
}

func TestPublish_HandlerErrorDoesNotSurface(t *testing.T) {
	bus := syncBus()
	defer func() { _ = bus.Close() }()

	require.NoError(t, bus.Subscribe(shared.EventXPGained, func(shared.Event) error {
		return errors.New("projection down")
	}))

	assert.NoError(t, bus.Publish(shared.NewXPGainedEvent("l", 10, 0, 10, "r")))

	snap := bus.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.HandlerFailures)
}

func TestPublish_AsyncDeliversThroughWorkerPool(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: true, WorkerPoolSize: 2})

	done := make(chan struct{}, 20)
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		done <- struct{}{}
		return nil
	}))

	for i := 0; i < 20; i++ {
		require.NoError(t, bus.Publish(shared.NewXPGainedEvent("l", 10, 0, 10, "r")))
	}

	// Handlers run on the pool; wait for all of them before closing.
	for i := 0; i < 20; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatalf("handler %d never ran", i)
		}
	}
	require.NoError(t, bus.Close())

	assert.Equal(t, int64(20), bus.Metrics().Snapshot().HandlerExecutions)
}

func TestClosedBusRejectsEverything(t *testing.T) {
	bus := syncBus()
	require.NoError(t, bus.Close())

	assert.ErrorIs(t, bus.Publish(shared.NewXPGainedEvent("l", 10, 0, 10, "r")), ErrEventBusClosed)
	assert.ErrorIs(t, bus.Subscribe(shared.EventXPGained, func(shared.Event) error { return nil }), ErrEventBusClosed)
	assert.NoError(t, bus.Close(), "double close is a no-op")
}

func TestSubscribe_NilHandler(t *testing.T) {
	bus := syncBus()
	defer func() { _ = bus.Close() }()

	assert.Error(t, bus.Subscribe(shared.EventXPGained, nil))
	assert.Error(t, bus.SubscribeAll(nil))
}
