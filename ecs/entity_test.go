package ecs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/voxelvolution/ecs"
)

func TestEntityAddFirstWriterWins(t *testing.T) {
	registry := newTestRegistry()
	entity := registry.Entity(11)

	assert.Nil(t, ecs.Get[Name](entity))
	assert.True(t, ecs.Add(entity, Name{Value: "first"}))
	assert.False(t, ecs.Add(entity, Name{Value: "second"}))

	got := ecs.Get[Name](entity)
	require.NotNil(t, got)
	assert.Equal(t, "first", got.Value)
}

func TestEntityAddThenCommittedUpdate(t *testing.T) {
	registry := newTestRegistry()
	entity := registry.Entity(11)

	ecs.Add(entity, Health{Current: 1, Max: 10})
	ecs.Submit(entity, Health{Current: 5, Max: 10}, 1)
	assert.Equal(t, 1, ecs.Get[Health](entity).Current)

	registry.UpdateAll(1)
	assert.Equal(t, 5, ecs.Get[Health](entity).Current)
}

func TestComponentStore(t *testing.T) {
	registry := newTestRegistry()
	store := ecs.StoreOf[Position](registry)
	assert.Same(t, store, ecs.StoreOf[Position](registry))
	assert.Same(t, store, ecs.UpdatesOf[Position](registry).Store())

	for id := ecs.EntityId(1); id <= 3; id++ {
		ecs.Add(registry.Entity(id), Position{X: float32(id)})
	}

	assert.Equal(t, 3, store.Len())
	assert.True(t, store.Has(2))
	assert.False(t, store.Has(4))
	assert.Nil(t, store.Get(4))

	sum := float32(0)
	for _, p := range store.All() {
		sum += p.X
	}
	assert.Equal(t, float32(6), sum)

	var ids []ecs.EntityId
	for id := range store.Entities() {
		ids = append(ids, id)
	}
	assert.ElementsMatch(t, []ecs.EntityId{1, 2, 3}, ids)
}

func TestCommittedValuesAreReplaced(t *testing.T) {
	registry := newTestRegistry()
	entity := registry.Entity(1)

	ecs.Submit(entity, Position{X: 1}, 1)
	registry.UpdateAll(1)
	held := ecs.Get[Position](entity)

	ecs.Submit(entity, Position{X: 2}, 2)
	registry.UpdateAll(2)

	assert.Equal(t, float32(1), held.X, "a held value must not be modified by later commits")
	assert.Equal(t, float32(2), ecs.Get[Position](entity).X)
}

func TestMultiton(t *testing.T) {
	registry := ecs.NewRegistry()
	materials := ecs.MultitonOf[string, int](registry)
	assert.Same(t, materials, ecs.MultitonOf[string, int](registry))
	assert.NotSame(t, materials, ecs.MultitonOf[string, int](ecs.NewRegistry()))

	_, ok := materials.Get("stone")
	assert.False(t, ok)

	materials.Set("stone", 1)
	materials.Set("stone", 2)
	materials.Set("grass", 3)

	v, ok := materials.Get("stone")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 2, materials.Len())

	materials.Remove("stone")
	materials.Remove("missing")
	assert.Equal(t, 1, materials.Len())

	for k, v := range materials.All() {
		assert.Equal(t, "grass", k)
		assert.Equal(t, 3, v)
	}
}

func TestRegistryStats(t *testing.T) {
	registry := newTestRegistry()
	ecs.NewSingleton(registry, Temperature(3))
	ecs.MultitonOf[int, string](registry)

	ecs.Add(registry.Entity(1), Position{})
	ecs.Add(registry.Entity(1), Velocity{})
	ecs.Add(registry.Entity(2), Position{})

	stats := registry.CollectStats()
	assert.Equal(t, 5, stats.ComponentTypeCount)
	assert.Equal(t, 3, stats.TotalComponents)
	assert.Equal(t, 1, stats.SingletonCount)
	assert.Equal(t, 1, stats.MultitonCount)
	assert.Len(t, stats.Updates, 5)
	assert.Equal(t, "ecs_test.Position", stats.Updates[0].Component)

	assert.Equal(t, []ecs.EntityId{1, 2}, registry.Entities())
	assert.Len(t, registry.EntityComponents(1), 2)
	assert.Len(t, registry.ComponentTypes(), 5)
}

func TestSingleton(t *testing.T) {
	registry := ecs.NewRegistry()

	var empty ecs.Singleton[Health]
	empty.Init(registry)
	assert.False(t, empty.Exists())

	s := ecs.NewSingleton(registry, Health{Current: 7})
	s.Get().Current++
	assert.True(t, empty.Exists())
	assert.Equal(t, 8, empty.Get().Current)

	again := ecs.NewSingleton(registry, Health{Current: 100})
	assert.Equal(t, 8, again.Get().Current)
}
