package render

import "github.com/plus3/voxelvolution/ecs"

// Command is an instruction queued to a RenderSystem from any goroutine and applied on the
// render thread.
type Command interface {
	isRenderCommand()
}

// AddModelMatrix creates the model matrix of an entity from its committed transform. Done, if
// set, receives the matrix, or nil when the entity has no transform.
type AddModelMatrix struct {
	Entity ecs.EntityId
	Done   func(*ModelMatrix)
}

// RemoveModelMatrix removes the model matrix of an entity and the view attached to it.
type RemoveModelMatrix struct {
	Entity ecs.EntityId
}

// UpdateViewMatrix sets the view of an entity to the inverse of its model matrix.
type UpdateViewMatrix struct {
	Entity ecs.EntityId
}

// ActivateView makes the view of an entity current. Done, if set, reports whether the entity
// had a view.
type ActivateView struct {
	Entity ecs.EntityId
	Done   func(bool)
}

// AddVertexBuffer draws Buffer with Material for Entity every frame.
type AddVertexBuffer struct {
	Material *Material
	Buffer   *VertexBuffer
	Entity   ecs.EntityId
}

// Func runs arbitrary code on the render thread.
type Func func(*RenderSystem)

func (AddModelMatrix) isRenderCommand()    {}
func (RemoveModelMatrix) isRenderCommand() {}
func (UpdateViewMatrix) isRenderCommand()  {}
func (ActivateView) isRenderCommand()      {}
func (AddVertexBuffer) isRenderCommand()   {}
func (Func) isRenderCommand()              {}
