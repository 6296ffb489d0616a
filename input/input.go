// Package input turns keyboard events into camera movement.
package input

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/plus3/voxelvolution/ecs"
	"github.com/plus3/voxelvolution/render"
	"github.com/plus3/voxelvolution/transform"
)

// Action is what happened to a key.
type Action uint8

const (
	Press Action = iota
	Release
	Repeat
)

// Key identifies a keyboard key independently of the windowing library.
type Key int

const (
	KeyUnknown Key = iota
	KeyA
	KeyD
	KeyS
	KeyW
	KeySpace
	KeyEscape
)

// KeyboardEvent is emitted through the registry's EventSystem[KeyboardEvent].
type KeyboardEvent struct {
	Action Action
	Key    Key
}

// Emit sends ev to every keyboard subscriber of the registry.
func Emit(r *ecs.Registry, ev KeyboardEvent) {
	ecs.EventsOf[KeyboardEvent](r).Emit(ecs.WildcardEntity, ev)
}

const (
	turnStep = 10
	moveStep = 1
)

// CameraMover moves a camera entity in response to released keys: A and D turn, W and S move
// along the camera's forward axis and space makes the camera's view current. It is an
// ecs.System; keyboard events are queued and applied when the system executes, and the new
// transform is submitted to the next frame.
type CameraMover struct {
	Camera *render.Camera
	Events *ecs.EventQueue[KeyboardEvent]

	registry *ecs.Registry
}

// NewCameraMover creates a mover for camera and subscribes it to the registry's keyboard events.
func NewCameraMover(r *ecs.Registry, camera *render.Camera) *CameraMover {
	m := &CameraMover{
		Camera:   camera,
		Events:   ecs.NewEventQueue[KeyboardEvent](),
		registry: r,
	}
	ecs.EventsOf[KeyboardEvent](r).SubscribeAll(m.Events)
	return m
}

// Close stops receiving keyboard events.
func (m *CameraMover) Close() {
	ecs.EventsOf[KeyboardEvent](m.registry).UnsubscribeAll(m.Events)
}

func (m *CameraMover) Execute(frame *ecs.UpdateFrame) {
	entity := frame.Entity(m.Camera.Entity)
	current := transform.New()
	if t := ecs.Get[transform.Transform](entity); t != nil {
		current = *t
	}

	changed := false
	m.Events.ProcessEventQueue(func(_ ecs.EntityId, ev KeyboardEvent) {
		if ev.Action != Release {
			return
		}
		switch ev.Key {
		case KeyA:
			current = current.OrientedRotate(mgl32.Vec3{0, mgl32.DegToRad(turnStep), 0})
			changed = true
		case KeyD:
			current = current.OrientedRotate(mgl32.Vec3{0, mgl32.DegToRad(-turnStep), 0})
			changed = true
		case KeyW:
			current = current.OrientedTranslate(mgl32.Vec3{0, 0, -moveStep})
			changed = true
		case KeyS:
			current = current.OrientedTranslate(mgl32.Vec3{0, 0, moveStep})
			changed = true
		case KeySpace:
			m.Camera.MakeActive()
		}
	})

	if changed {
		ecs.Submit(entity, current, ecs.NextFrame)
	}
}
