package ecs

// System represents a behavior that runs once per frame before the frame is committed.
// User-defined systems implement this interface and can include Query and Singleton fields,
// as well as custom state fields that persist between frames. Systems read committed state and
// schedule changes through the update systems; they never mutate stores directly.
type System interface {
	Execute(frame *UpdateFrame)
}

// SystemFunc adapts a plain function to the System interface.
type SystemFunc func(frame *UpdateFrame)

// Execute calls f(frame).
func (f SystemFunc) Execute(frame *UpdateFrame) {
	f(frame)
}
