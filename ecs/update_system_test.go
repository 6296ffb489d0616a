package ecs_test

import (
	"bytes"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/plus3/voxelvolution/ecs"
)

func TestUpdateSystemCommitsAtTargetFrame(t *testing.T) {
	registry := newTestRegistry()
	updates := ecs.UpdatesOf[Position](registry)
	store := ecs.StoreOf[Position](registry)

	updates.SubmitUpdate(1, Position{X: 1, Y: 2}, 3)

	updates.UpdateTo(2)
	assert.Nil(t, store.Get(1), "update must not be visible before its frame")
	assert.Equal(t, []ecs.FrameId{3}, updates.PendingFrames())

	updates.UpdateTo(3)
	require.NotNil(t, store.Get(1))
	assert.Equal(t, Position{X: 1, Y: 2}, *store.Get(1))
	assert.Empty(t, updates.PendingFrames())
	assert.Equal(t, ecs.FrameId(3), updates.BaseFrame())
}

func TestUpdateSystemLastWriteWins(t *testing.T) {
	registry := newTestRegistry()
	updates := ecs.UpdatesOf[Position](registry)
	entity := registry.Entity(42)

	posA := Position{X: 1, Y: 1}
	posB := Position{X: 2, Y: 2}

	updates.SubmitUpdate(42, posA, 3)
	updates.SubmitUpdate(42, posB, 3)
	updates.UpdateTo(3)

	require.NotNil(t, ecs.Get[Position](entity))
	assert.Equal(t, posB, *ecs.Get[Position](entity))

	updates.SubmitRemoval(42, 4)
	updates.UpdateTo(4)
	assert.Nil(t, ecs.Get[Position](entity))
	assert.False(t, ecs.Has[Position](entity))
}

func TestUpdateSystemNextFrame(t *testing.T) {
	t.Run("back to back submissions share the first frame", func(t *testing.T) {
		registry := newTestRegistry()
		updates := ecs.UpdatesOf[Position](registry)

		updates.SubmitUpdate(7, Position{X: 1}, ecs.NextFrame)
		updates.SubmitUpdate(7, Position{X: 2}, ecs.NextFrame)
		updates.UpdateTo(1)

		got := ecs.StoreOf[Position](registry).Get(7)
		require.NotNil(t, got)
		assert.Equal(t, float32(2), got.X)

		frame, ok := updates.UpdatedOn(7)
		assert.True(t, ok)
		assert.Equal(t, ecs.FrameId(1), frame)
	})

	t.Run("joins the earliest pending frame", func(t *testing.T) {
		registry := newTestRegistry()
		updates := ecs.UpdatesOf[Position](registry)

		updates.SubmitUpdate(1, Position{X: 1}, 5)
		updates.SubmitUpdate(2, Position{X: 2}, 9)
		updates.SubmitUpdate(3, Position{X: 3}, ecs.NextFrame)
		updates.UpdateTo(4)

		assert.Nil(t, ecs.StoreOf[Position](registry).Get(3))
		assert.Equal(t, []ecs.FrameId{5, 9}, updates.PendingFrames())

		updates.UpdateTo(5)
		assert.NotNil(t, ecs.StoreOf[Position](registry).Get(1))
		assert.NotNil(t, ecs.StoreOf[Position](registry).Get(3))
		assert.Nil(t, ecs.StoreOf[Position](registry).Get(2))
	})

	t.Run("resolves against the base frame", func(t *testing.T) {
		registry := newTestRegistry()
		updates := ecs.UpdatesOf[Position](registry)
		updates.UpdateTo(10)

		updates.SubmitUpdate(1, Position{X: 1}, ecs.NextFrame)
		updates.UpdateTo(10)
		assert.Equal(t, []ecs.FrameId{11}, updates.PendingFrames())

		updates.UpdateTo(11)
		assert.NotNil(t, ecs.StoreOf[Position](registry).Get(1))
	})
}

func TestUpdateSystemDropsCommittedFrames(t *testing.T) {
	var buf bytes.Buffer
	registry := ecs.NewRegistry(ecs.WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))
	updates := ecs.UpdatesOf[Position](registry)
	store := ecs.StoreOf[Position](registry)

	updates.SubmitUpdate(1, Position{X: 1}, 2)
	updates.UpdateTo(2)

	updates.SubmitUpdate(1, Position{X: 100}, 2)
	updates.SubmitUpdate(1, Position{X: 100}, 1)
	updates.SubmitRemoval(1, 2)
	updates.UpdateTo(3)

	require.NotNil(t, store.Get(1))
	assert.Equal(t, float32(1), store.Get(1).X)
	assert.Equal(t, uint64(3), updates.Dropped())
	assert.Contains(t, buf.String(), "dropped submission for committed frame")
	assert.Contains(t, buf.String(), `"base":2`)
}

func TestUpdateSystemRemovalWins(t *testing.T) {
	registry := newTestRegistry()
	updates := ecs.UpdatesOf[Health](registry)

	updates.SubmitUpdate(5, Health{Current: 1, Max: 1}, 1)
	updates.UpdateTo(1)

	updates.SubmitRemoval(5, 2)
	updates.SubmitUpdate(5, Health{Current: 2, Max: 2}, 2)
	updates.UpdateTo(2)

	assert.Nil(t, ecs.StoreOf[Health](registry).Get(5))
}

func TestUpdateSystemUpdateToIsIdempotent(t *testing.T) {
	registry := newTestRegistry()
	updates := ecs.UpdatesOf[Position](registry)
	store := ecs.StoreOf[Position](registry)

	updates.SubmitUpdate(1, Position{X: 1}, 2)
	updates.SubmitUpdate(1, Position{X: 2}, 4)
	updates.UpdateTo(5)
	before := *store.Get(1)

	updates.UpdateTo(5)
	assert.Equal(t, before, *store.Get(1))
	assert.Equal(t, float32(2), before.X)
	assert.Equal(t, ecs.FrameId(5), updates.BaseFrame())
	assert.Empty(t, updates.PendingFrames())
}

func TestUpdateSystemAppliesFramesInOrder(t *testing.T) {
	registry := newTestRegistry()
	updates := ecs.UpdatesOf[Name](registry)

	var order []ecs.FrameId
	log := &recorder[ecs.ComponentChanged[Name]]{}
	ecs.EventsOf[ecs.ComponentChanged[Name]](registry).SubscribeAll(log)

	updates.SubmitUpdate(1, Name{Value: "third"}, 9)
	updates.SubmitUpdate(1, Name{Value: "first"}, 2)
	updates.SubmitUpdate(1, Name{Value: "second"}, 5)
	updates.UpdateTo(10)

	for _, event := range log.received {
		order = append(order, event.Frame)
	}
	assert.Equal(t, []ecs.FrameId{2, 5, 9}, order)
	assert.Equal(t, "third", ecs.StoreOf[Name](registry).Get(1).Value)
}

func TestUpdateSystemChangeEvents(t *testing.T) {
	registry := newTestRegistry()
	updates := ecs.UpdatesOf[Position](registry)
	log := &recorder[ecs.ComponentChanged[Position]]{}
	ecs.EventsOf[ecs.ComponentChanged[Position]](registry).Subscribe(3, log)

	updates.SubmitUpdate(3, Position{X: 1}, 1)
	updates.SubmitUpdate(4, Position{X: 9}, 1)
	updates.UpdateTo(1)
	updates.SubmitUpdate(3, Position{X: 2}, 2)
	updates.UpdateTo(2)
	updates.SubmitRemoval(3, 3)
	updates.UpdateTo(3)

	require.Len(t, log.received, 3)

	assert.Nil(t, log.received[0].Old)
	assert.Equal(t, float32(1), log.received[0].New.X)

	assert.Equal(t, float32(1), log.received[1].Old.X)
	assert.Equal(t, float32(2), log.received[1].New.X)
	assert.Equal(t, ecs.FrameId(2), log.received[1].Frame)

	assert.Equal(t, float32(2), log.received[2].Old.X)
	assert.Nil(t, log.received[2].New)
	assert.Equal(t, ecs.EntityId(3), log.received[2].Entity)
}

func TestUpdateSystemConcurrentProducers(t *testing.T) {
	registry := newTestRegistry()
	updates := ecs.UpdatesOf[Health](registry)

	const producers = 16
	const perProducer = 250

	var g errgroup.Group
	for p := range producers {
		g.Go(func() error {
			for i := range perProducer {
				id := ecs.EntityId(p*perProducer + i + 1)
				updates.SubmitUpdate(id, Health{Current: i, Max: perProducer}, ecs.FrameId(1+i%3))
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	updates.UpdateTo(3)
	assert.Equal(t, producers*perProducer, ecs.StoreOf[Health](registry).Len())
	assert.Zero(t, updates.Dropped())
}

func TestUpdateSystemSubmitDuringCommit(t *testing.T) {
	registry := newTestRegistry()
	updates := ecs.UpdatesOf[Position](registry)

	var once sync.Once
	ecs.EventsOf[ecs.ComponentChanged[Position]](registry).SubscribeAll(chainReceiver(func(e ecs.ComponentChanged[Position]) {
		once.Do(func() {
			updates.SubmitUpdate(e.Entity, Position{X: e.New.X + 1}, ecs.NextFrame)
		})
	}))

	updates.SubmitUpdate(1, Position{X: 1}, 1)
	updates.UpdateTo(1)
	assert.Equal(t, float32(1), ecs.StoreOf[Position](registry).Get(1).X)

	updates.UpdateTo(2)
	assert.Equal(t, float32(2), ecs.StoreOf[Position](registry).Get(1).X)
}

type chainReceiverFunc[T any] struct {
	fn func(T)
}

func (c *chainReceiverFunc[T]) On(_ ecs.EntityId, event T) {
	c.fn(event)
}

func chainReceiver[T any](fn func(T)) *chainReceiverFunc[T] {
	return &chainReceiverFunc[T]{fn: fn}
}

func TestUpdateAllCommitsEveryType(t *testing.T) {
	registry := newTestRegistry()
	entity := registry.Entity(1)

	ecs.Submit(entity, Position{X: 1}, 1)
	ecs.Submit(entity, Velocity{DX: 2}, 1)
	ecs.Submit(entity, Name{Value: "late"}, 2)
	registry.UpdateAll(1)

	assert.True(t, ecs.Has[Position](entity))
	assert.True(t, ecs.Has[Velocity](entity))
	assert.False(t, ecs.Has[Name](entity))

	registry.UpdateAll(2)
	assert.Equal(t, "late", ecs.Get[Name](entity).Value)

	ecs.SubmitRemoval[Velocity](entity, 3)
	registry.UpdateAll(3)
	assert.False(t, ecs.Has[Velocity](entity))

	for _, stats := range registry.UpdateStats() {
		assert.Equal(t, ecs.FrameId(3), stats.BaseFrame, stats.Component)
	}
}

func TestRegistrySubmitAny(t *testing.T) {
	registry := newTestRegistry()

	assert.True(t, registry.SubmitAny(1, Position{X: 1}, 1))
	assert.True(t, registry.SubmitAny(2, &Position{X: 2}, 1))
	assert.False(t, registry.SubmitAny(3, struct{}{}, 1))
	assert.False(t, registry.SubmitAny(3, nil, 1))

	registry.UpdateAll(1)
	assert.Equal(t, 2, ecs.StoreOf[Position](registry).Len())
}
