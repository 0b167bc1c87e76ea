package messaging

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memodeck/memodeck-progression/internal/domain/shared"
)

func newSyncBus() *InMemoryEventBus {
	cfg := DefaultInMemoryEventBusConfig()
	cfg.AsyncMode = false
	return NewInMemoryEventBus(cfg)
}

func TestEventBus_DeliversToSubscribers(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	var got atomic.Int32
	err := bus.Subscribe(shared.EventLevelUp, shared.EventHandlerFunc(func(e shared.Event) error {
		got.Add(1)
		assert.Equal(t, "user-1", e.AggregateID())
		return nil
	}))
	require.NoError(t, err)

	require.NoError(t, bus.Publish(shared.NewLevelUpEvent("user-1", 1, 2, 150)))
	assert.Equal(t, int32(1), got.Load())
}

func TestEventBus_TypeFiltering(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	var levelUps, claims atomic.Int32
	_ = bus.Subscribe(shared.EventLevelUp, shared.EventHandlerFunc(func(shared.Event) error {
		levelUps.Add(1)
		return nil
	}))
	_ = bus.Subscribe(shared.EventRewardClaimed, shared.EventHandlerFunc(func(shared.Event) error {
		claims.Add(1)
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewRewardClaimedEvent("user-1", "cards", 50, false)))

	assert.Equal(t, int32(0), levelUps.Load())
	assert.Equal(t, int32(1), claims.Load())
}

func TestEventBus_SubscribeAllSeesEverything(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	var got atomic.Int32
	_ = bus.SubscribeAll(shared.EventHandlerFunc(func(shared.Event) error {
		got.Add(1)
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewLevelUpEvent("user-1", 1, 2, 150)))
	require.NoError(t, bus.Publish(shared.NewAchievementUnlockedEvent("user-1", "level_5", 100)))

	assert.Equal(t, int32(2), got.Load())
}

func TestEventBus_PanickingHandlerDoesNotFailPublish(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	_ = bus.Subscribe(shared.EventLevelUp, shared.EventHandlerFunc(func(shared.Event) error {
		panic("boom")
	}))

	assert.NoError(t, bus.Publish(shared.NewLevelUpEvent("user-1", 1, 2, 150)))
}

func TestEventBus_FailingHandlerDoesNotFailPublish(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	_ = bus.Subscribe(shared.EventLevelUp, shared.EventHandlerFunc(func(shared.Event) error {
		return errors.New("handler error")
	}))

	assert.NoError(t, bus.Publish(shared.NewLevelUpEvent("user-1", 1, 2, 150)))
}

func TestEventBus_ClosedBusRejectsOperations(t *testing.T) {
	bus := newSyncBus()
	require.NoError(t, bus.Close())

	err := bus.Publish(shared.NewLevelUpEvent("user-1", 1, 2, 150))
	assert.ErrorIs(t, err, ErrEventBusClosed)

	err = bus.Subscribe(shared.EventLevelUp, shared.EventHandlerFunc(func(shared.Event) error { return nil }))
	assert.ErrorIs(t, err, ErrEventBusClosed)

	assert.NoError(t, bus.Close(), "double close is a no-op")
}

func TestEventBus_NilChecks(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	assert.Error(t, bus.Publish(nil))
	assert.Error(t, bus.Subscribe(shared.EventLevelUp, nil))
	assert.Error(t, bus.SubscribeAll(nil))
}
