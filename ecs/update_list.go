package ecs

// ComponentUpdateList collects the mutations of one component type due at one frame.
// Updates are keyed by entity so the last value submitted for an entity wins. Removals are
// applied after every update of the same list.
type ComponentUpdateList[T any] struct {
	Frame    FrameId
	Updates  map[EntityId]*T
	Removals []EntityId
}

func newComponentUpdateList[T any](frame FrameId) *ComponentUpdateList[T] {
	return &ComponentUpdateList[T]{
		Frame:   frame,
		Updates: make(map[EntityId]*T),
	}
}

// Len returns the number of distinct updates plus the number of removals.
func (l *ComponentUpdateList[T]) Len() int {
	return len(l.Updates) + len(l.Removals)
}
