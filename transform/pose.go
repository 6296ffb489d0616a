package transform

import "github.com/plus3/voxelvolution/ecs"

// PosePublisher copies the Transform of each listed entity into its Position and Orientation
// components, which are the replicated form of a transform. Changes are submitted to the next
// frame and only when they differ from the committed pose.
type PosePublisher struct {
	Entities []ecs.EntityId
}

func (p *PosePublisher) Execute(frame *ecs.UpdateFrame) {
	for _, id := range p.Entities {
		entity := frame.Entity(id)
		t := ecs.Get[Transform](entity)
		if t == nil {
			continue
		}
		if position := t.Position(); !equal(ecs.Get[Position](entity), position) {
			ecs.Submit(entity, position, ecs.NextFrame)
		}
		if orientation := OrientationOf(*t); !equal(ecs.Get[Orientation](entity), orientation) {
			ecs.Submit(entity, orientation, ecs.NextFrame)
		}
	}
}

// PoseApplier builds the Transform of remote entities from their replicated Position and
// Orientation. Entities for which Local reports true are skipped.
type PoseApplier struct {
	Poses ecs.Query[struct {
		*Position
		*Orientation
	}]
	Local func(ecs.EntityId) bool
}

func (p *PoseApplier) Execute(frame *ecs.UpdateFrame) {
	for id, pose := range p.Poses.Iter() {
		if p.Local != nil && p.Local(id) {
			continue
		}
		entity := frame.Entity(id)
		current := New()
		if t := ecs.Get[Transform](entity); t != nil {
			current = *t
		}
		next := current.SetTranslation(pose.Position.Vec3()).SetOrientation(pose.Orientation.Quat())
		if next != current {
			ecs.Submit(entity, next, ecs.NextFrame)
		}
	}
}

func equal[T comparable](committed *T, value T) bool {
	return committed != nil && *committed == value
}
