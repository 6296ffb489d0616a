package transform_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/voxelvolution/ecs"
	"github.com/plus3/voxelvolution/transform"
)

func TestPosePublisher(t *testing.T) {
	registry := ecs.NewRegistry()
	scheduler := ecs.NewScheduler(registry)
	scheduler.Register(&transform.PosePublisher{Entities: []ecs.EntityId{1, 2}})

	moved := transform.At(mgl32.Vec3{1, 2, 3}).Rotate(mgl32.Vec3{0, mgl32.DegToRad(90), 0})
	ecs.Add(registry.Entity(1), moved)

	// Submitted to the next frame while frame 1 runs, so frame 1's commit applies it.
	scheduler.Once(0)

	entity := registry.Entity(1)
	assert.Equal(t, &transform.Position{X: 1, Y: 2, Z: 3}, ecs.Get[transform.Position](entity))
	assert.Equal(t, transform.OrientationOf(moved), *ecs.Get[transform.Orientation](entity))
	assert.False(t, ecs.Has[transform.Position](registry.Entity(2)))

	committed, ok := ecs.UpdatesOf[transform.Position](registry).UpdatedOn(1)
	require.True(t, ok)
	scheduler.Once(0)
	again, _ := ecs.UpdatesOf[transform.Position](registry).UpdatedOn(1)
	assert.Equal(t, committed, again, "unchanged poses are not resubmitted")
}

func TestPoseApplier(t *testing.T) {
	registry := ecs.NewRegistry()
	scheduler := ecs.NewScheduler(registry)
	scheduler.Register(&transform.PoseApplier{Local: func(id ecs.EntityId) bool { return id == 2 }})

	orientation := transform.Orientation{W: 1}
	for _, id := range []ecs.EntityId{1, 2} {
		ecs.Add(registry.Entity(id), transform.Position{X: 5})
		ecs.Add(registry.Entity(id), orientation)
	}

	scheduler.Once(0)

	got := ecs.Get[transform.Transform](registry.Entity(1))
	require.NotNil(t, got)
	assert.True(t, got.Translation.ApproxEqual(mgl32.Vec3{5, 0, 0}))
	assert.True(t, got.Orientation.ApproxEqual(mgl32.QuatIdent()))
	assert.Nil(t, ecs.Get[transform.Transform](registry.Entity(2)))
}
