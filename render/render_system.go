// Package render keeps the per-entity matrices and draw batches of a scene and hands them to a
// Drawer once per frame. The graphics API lives behind the Drawer.
package render

import (
	"maps"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"

	"github.com/plus3/voxelvolution/ecs"
	"github.com/plus3/voxelvolution/transform"
)

const (
	defaultWidth  = 800
	defaultHeight = 600
	fieldOfView   = 45
	nearPlane     = 0.1
	farPlane      = 10000
)

// ModelMatrix is the world matrix of an entity as last refreshed by the render thread. Frame
// is the frame of the transform it was computed from.
type ModelMatrix struct {
	Transform mgl32.Mat4
	Frame     ecs.FrameId
}

// Batch is one material and vertex buffer drawn once per model matrix.
type Batch struct {
	Material *Material
	Buffer   *VertexBuffer
	Entities []ecs.EntityId
	Models   []mgl32.Mat4
}

// Frame is everything a Drawer needs to draw one frame.
type Frame struct {
	Width, Height int
	View          mgl32.Mat4
	Projection    mgl32.Mat4
	Batches       []Batch
}

// Drawer submits a frame to the graphics API.
type Drawer interface {
	Draw(frame Frame)
}

// DrawerFunc adapts a function to the Drawer interface.
type DrawerFunc func(frame Frame)

func (f DrawerFunc) Draw(frame Frame) {
	f(frame)
}

type batch struct {
	material *Material
	buffer   *VertexBuffer
	entities []ecs.EntityId
}

// RenderSystem owns model matrices, views and draw batches. Commands and transform change
// events reach it through its queues; everything else runs in Update, which reads committed
// transforms and so must run on the thread that commits frames.
type RenderSystem struct {
	Commands   *ecs.CommandQueue[Command]
	Transforms *ecs.EventQueue[transform.TransformChangedEvent]

	registry *ecs.Registry
	models   *ecs.Multiton[ecs.EntityId, *ModelMatrix]
	drawer   Drawer
	logger   zerolog.Logger

	views       map[ecs.EntityId]mgl32.Mat4
	currentView ecs.EntityId
	batches     []*batch

	width, height int
	projection    mgl32.Mat4
}

// New creates a render system for the registry and subscribes it to every transform change.
// drawer may be nil, in which case Update only processes its queues.
func New(registry *ecs.Registry, drawer Drawer) *RenderSystem {
	rs := &RenderSystem{
		Commands:   ecs.NewCommandQueue[Command](),
		Transforms: ecs.NewEventQueue[transform.TransformChangedEvent](),
		registry:   registry,
		models:     ecs.MultitonOf[ecs.EntityId, *ModelMatrix](registry),
		drawer:     drawer,
		logger:     registry.Logger().With().Str("module", "render").Logger(),
		views:      make(map[ecs.EntityId]mgl32.Mat4),
	}
	rs.SetViewportSize(defaultWidth, defaultHeight)
	ecs.EventsOf[transform.TransformChangedEvent](registry).SubscribeAll(rs.Transforms)
	return rs
}

// Close stops receiving transform changes.
func (rs *RenderSystem) Close() {
	ecs.EventsOf[transform.TransformChangedEvent](rs.registry).UnsubscribeAll(rs.Transforms)
}

// QueueCommand queues cmd for the next Update. It is safe from any goroutine.
func (rs *RenderSystem) QueueCommand(cmd Command) {
	rs.Commands.QueueCommand(cmd)
}

// SetViewportSize recomputes the projection for a window of the given size. Portrait or empty
// windows use a 4:3 aspect ratio.
func (rs *RenderSystem) SetViewportSize(width, height int) {
	rs.width, rs.height = width, height

	aspect := float32(0)
	if height > 0 {
		aspect = float32(width) / float32(height)
	}
	if aspect < 1 {
		aspect = 4.0 / 3.0
	}

	rs.projection = mgl32.Perspective(mgl32.DegToRad(fieldOfView), aspect, nearPlane, farPlane)
}

// Projection returns the current projection matrix.
func (rs *RenderSystem) Projection() mgl32.Mat4 {
	return rs.projection
}

// CurrentView returns the entity whose view is active, or 0.
func (rs *RenderSystem) CurrentView() ecs.EntityId {
	return rs.currentView
}

// View returns the view matrix of entity.
func (rs *RenderSystem) View(entity ecs.EntityId) (mgl32.Mat4, bool) {
	v, ok := rs.views[entity]
	return v, ok
}

// ModelMatrix returns the model matrix of entity, or nil.
func (rs *RenderSystem) ModelMatrix(entity ecs.EntityId) *ModelMatrix {
	m, _ := rs.models.Get(entity)
	return m
}

// Update applies queued transform changes, then queued commands, then draws.
func (rs *RenderSystem) Update(delta float64) {
	rs.Transforms.ProcessEventQueue(rs.onTransformChanged)
	rs.Commands.ProcessCommandQueue(rs.apply)

	if rs.drawer != nil {
		rs.drawer.Draw(rs.frame())
	}
}

func (rs *RenderSystem) apply(cmd Command) {
	switch c := cmd.(type) {
	case AddModelMatrix:
		m := rs.addModelMatrix(c.Entity)
		if c.Done != nil {
			c.Done(m)
		}
	case RemoveModelMatrix:
		rs.removeModelMatrix(c.Entity)
	case UpdateViewMatrix:
		rs.updateViewMatrix(c.Entity)
	case ActivateView:
		ok := rs.activateView(c.Entity)
		if c.Done != nil {
			c.Done(ok)
		}
	case AddVertexBuffer:
		rs.addVertexBuffer(c.Material, c.Buffer, c.Entity)
	case Func:
		c(rs)
	default:
		rs.logger.Warn().Type("command", cmd).Msg("ignoring unknown render command")
	}
}

func (rs *RenderSystem) committedTransform(entity ecs.EntityId) (*transform.Transform, ecs.FrameId) {
	updates := ecs.UpdatesOf[transform.Transform](rs.registry)
	t := updates.Store().Get(entity)
	if t == nil {
		return nil, 0
	}
	frame, ok := updates.UpdatedOn(entity)
	if !ok {
		frame = updates.BaseFrame()
	}
	return t, frame
}

func (rs *RenderSystem) addModelMatrix(entity ecs.EntityId) *ModelMatrix {
	t, frame := rs.committedTransform(entity)
	m, ok := rs.models.Get(entity)
	if t == nil {
		if !ok {
			rs.logger.Debug().Uint64("entity", uint64(entity)).Msg("no transform for model matrix")
		}
		return m
	}
	return rs.setModelMatrix(entity, &ModelMatrix{Transform: t.RigidMatrix(), Frame: frame})
}

// setModelMatrix replaces the model matrix of entity and refreshes its view. Published matrices
// are never changed in place.
func (rs *RenderSystem) setModelMatrix(entity ecs.EntityId, m *ModelMatrix) *ModelMatrix {
	rs.models.Set(entity, m)
	if _, ok := rs.views[entity]; ok {
		rs.updateViewMatrix(entity)
	}
	return m
}

func (rs *RenderSystem) removeModelMatrix(entity ecs.EntityId) {
	rs.models.Remove(entity)
	rs.removeViewMatrix(entity)
}

func (rs *RenderSystem) removeViewMatrix(entity ecs.EntityId) {
	if _, ok := rs.views[entity]; !ok {
		return
	}
	delete(rs.views, entity)
	if rs.currentView != entity {
		return
	}
	rs.currentView = 0
	if len(rs.views) > 0 {
		rs.currentView = slices.Min(slices.Collect(maps.Keys(rs.views)))
	}
}

func (rs *RenderSystem) updateViewMatrix(entity ecs.EntityId) {
	m, ok := rs.models.Get(entity)
	if !ok {
		return
	}
	rs.views[entity] = m.Transform.Inv()
}

func (rs *RenderSystem) activateView(entity ecs.EntityId) bool {
	if _, ok := rs.views[entity]; !ok {
		return false
	}
	rs.currentView = entity
	return true
}

func (rs *RenderSystem) addVertexBuffer(material *Material, buffer *VertexBuffer, entity ecs.EntityId) {
	for _, b := range rs.batches {
		if b.material == material && b.buffer == buffer {
			if !slices.Contains(b.entities, entity) {
				b.entities = append(b.entities, entity)
			}
			return
		}
	}
	rs.batches = append(rs.batches, &batch{material: material, buffer: buffer, entities: []ecs.EntityId{entity}})
}

func (rs *RenderSystem) onTransformChanged(entity ecs.EntityId, event transform.TransformChangedEvent) {
	m, ok := rs.models.Get(event.Entity)
	if !ok || event.New == nil {
		return
	}
	if event.Frame < m.Frame {
		return
	}
	rs.setModelMatrix(event.Entity, &ModelMatrix{Transform: event.New.RigidMatrix(), Frame: event.Frame})
}

func (rs *RenderSystem) frame() Frame {
	view, ok := rs.views[rs.currentView]
	if !ok {
		view = mgl32.Ident4()
	}

	f := Frame{
		Width:      rs.width,
		Height:     rs.height,
		View:       view,
		Projection: rs.projection,
		Batches:    make([]Batch, 0, len(rs.batches)),
	}
	for _, b := range rs.batches {
		if b.material == nil || b.buffer == nil {
			continue
		}
		models := make([]mgl32.Mat4, len(b.entities))
		for i, id := range b.entities {
			if m, ok := rs.models.Get(id); ok {
				models[i] = m.Transform
			} else {
				models[i] = mgl32.Ident4()
			}
		}
		f.Batches = append(f.Batches, Batch{
			Material: b.material,
			Buffer:   b.buffer,
			Entities: slices.Clone(b.entities),
			Models:   models,
		})
	}
	return f
}
