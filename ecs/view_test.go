package ecs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/voxelvolution/ecs"
)

func spawn(registry *ecs.Registry, id ecs.EntityId, components ...any) {
	for _, c := range components {
		if !registry.SubmitAny(id, c, ecs.NextFrame) {
			panic("unregistered test component")
		}
	}
}

func TestView(t *testing.T) {
	registry := newTestRegistry()
	spawn(registry, 1, Position{X: 1, Y: 2}, Temperature(32))
	registry.UpdateAll(1)

	view := ecs.NewView[struct {
		*Position
		*Temperature
	}](registry)

	item := view.Get(1)
	require.NotNil(t, item)
	assert.Equal(t, Temperature(32), *item.Temperature)
	assert.Equal(t, float32(1), item.Position.X)
	assert.Equal(t, float32(2), item.Position.Y)
}

func TestViewMissingComponent(t *testing.T) {
	registry := newTestRegistry()
	spawn(registry, 1, Position{X: 5, Y: 10})
	registry.UpdateAll(1)

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](registry)

	assert.Nil(t, view.Get(1))
	assert.Nil(t, view.Get(2))
}

func TestViewOptionalComponent(t *testing.T) {
	registry := newTestRegistry()
	spawn(registry, 1, Position{X: 1}, Name{Value: "named"})
	spawn(registry, 2, Position{X: 2})
	registry.UpdateAll(1)

	view := ecs.NewView[struct {
		*Position
		Name *Name `ecs:"optional"`
	}](registry)

	named := view.Get(1)
	require.NotNil(t, named)
	require.NotNil(t, named.Name)
	assert.Equal(t, "named", named.Name.Value)

	anonymous := view.Get(2)
	require.NotNil(t, anonymous)
	assert.Nil(t, anonymous.Name)
}

func TestViewNeverCommittedType(t *testing.T) {
	registry := ecs.NewRegistry()

	view := ecs.NewView[struct{ *Health }](registry)
	assert.Nil(t, view.Get(1))
	for range view.Iter() {
		t.Fatal("no entity should match")
	}

	ecs.UpdatesOf[Health](registry).SubmitUpdate(1, Health{Current: 3}, 1)
	registry.UpdateAll(1)
	require.NotNil(t, view.Get(1))
	assert.Equal(t, 3, view.Get(1).Health.Current)
}

func TestViewIter(t *testing.T) {
	registry := newTestRegistry()
	spawn(registry, 1, Position{X: 1}, Velocity{DX: 1})
	spawn(registry, 2, Position{X: 2})
	spawn(registry, 3, Position{X: 3}, Velocity{DX: 3})
	registry.UpdateAll(1)

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](registry)

	seen := make(map[ecs.EntityId]float32)
	for id, item := range view.Iter() {
		seen[id] = item.Velocity.DX
	}
	assert.Equal(t, map[ecs.EntityId]float32{1: 1, 3: 3}, seen)

	count := 0
	for range view.Values() {
		count++
	}
	assert.Equal(t, 2, count)
}

func TestViewSubmit(t *testing.T) {
	registry := newTestRegistry()
	view := ecs.NewView[struct {
		*Position
		Velocity *Velocity `ecs:"optional"`
	}](registry)

	view.Submit(9, struct {
		*Position
		Velocity *Velocity `ecs:"optional"`
	}{Position: &Position{X: 4}}, 2)

	registry.UpdateAll(1)
	assert.Nil(t, view.Get(9))

	registry.UpdateAll(2)
	item := view.Get(9)
	require.NotNil(t, item)
	assert.Equal(t, float32(4), item.Position.X)
	assert.Nil(t, item.Velocity)

	assert.Panics(t, func() {
		view.Submit(9, struct {
			*Position
			Velocity *Velocity `ecs:"optional"`
		}{}, 3)
	})
}

func TestViewInvalidShapes(t *testing.T) {
	registry := ecs.NewRegistry()

	assert.Panics(t, func() { ecs.NewView[Position](registry) })
	assert.Panics(t, func() { ecs.NewView[struct{ P Position }](registry) })
	assert.Panics(t, func() {
		ecs.NewView[struct {
			P *Position `ecs:"maybe"`
		}](registry)
	})
	assert.Panics(t, func() {
		ecs.NewView[struct {
			P *Position `ecs:"optional"`
		}](registry)
	})
}
