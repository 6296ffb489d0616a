package render

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/plus3/voxelvolution/ecs"
	"github.com/plus3/voxelvolution/transform"
)

// Camera is an entity whose model matrix doubles as a view.
type Camera struct {
	Entity ecs.EntityId

	render *RenderSystem
	ready  atomic.Bool
}

// NewCamera gives entity an identity transform if it has none and queues the creation of its
// model matrix and view. It must be called from the thread that commits frames.
func NewCamera(rs *RenderSystem, entity ecs.EntityId) *Camera {
	c := &Camera{Entity: entity, render: rs}
	ecs.Add(rs.registry.Entity(entity), transform.New())

	rs.QueueCommand(Func(func(rs *RenderSystem) {
		c.ready.Store(rs.addModelMatrix(entity) != nil)
		rs.updateViewMatrix(entity)
	}))
	return c
}

// Ready reports whether the render system has created the camera's matrices.
func (c *Camera) Ready() bool {
	return c.ready.Load()
}

// MakeActive queues the activation of the camera's view. It reports false if the view has not
// been created yet.
func (c *Camera) MakeActive() bool {
	if !c.Ready() {
		return false
	}
	c.render.QueueCommand(ActivateView{Entity: c.Entity})
	return true
}

// ViewMatrix returns the inverse of the camera's model matrix, or the identity before the
// matrix exists. It reads render state and belongs to the render thread.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	if m := c.render.ModelMatrix(c.Entity); m != nil {
		return m.Transform.Inv()
	}
	return mgl32.Ident4()
}

// Close queues the removal of the camera's model matrix and view.
func (c *Camera) Close() {
	c.render.QueueCommand(RemoveModelMatrix{Entity: c.Entity})
	c.ready.Store(false)
}
