package ecs

// UpdateFrame is handed to every system executed for one frame.
type UpdateFrame struct {
	Frame     FrameId
	DeltaTime float64
	Registry  *Registry
}

func newUpdateFrame(frame FrameId, dt float64, registry *Registry) *UpdateFrame {
	return &UpdateFrame{
		Frame:     frame,
		DeltaTime: dt,
		Registry:  registry,
	}
}

// Entity returns a façade for id in the frame's registry.
func (f *UpdateFrame) Entity(id EntityId) Entity {
	return f.Registry.Entity(id)
}
