package ecs

// EntityId is an opaque 64-bit identifier of a simulated object. An entity owns no data of its
// own, it is only a key into the per-type component stores.
type EntityId uint64

// WildcardEntity is the entity id used by subscriptions that receive events for every entity.
const WildcardEntity EntityId = 0

// FrameId totally orders simulation steps.
type FrameId int64

// NextFrame asks an update system to use the earliest frame that has not been committed yet.
const NextFrame FrameId = 0

// Entity binds an entity id to the component stores of a registry.
type Entity struct {
	Id       EntityId
	registry *Registry
}

// Entity returns a façade for the given entity id.
func (r *Registry) Entity(id EntityId) Entity {
	return Entity{Id: id, registry: r}
}

// Add stores value as the entity's T component unless one is already present.
// It reports whether the value was stored. Like every direct store mutation it must only be
// called from the thread that commits frames.
func Add[T any](e Entity, value T) bool {
	store := StoreOf[T](e.registry)
	if store.Has(e.Id) {
		return false
	}
	store.set(e.Id, &value)
	return true
}

// Get returns the entity's committed T component, or nil if it has none.
func Get[T any](e Entity) *T {
	return StoreOf[T](e.registry).Get(e.Id)
}

// Has reports whether the entity currently has a committed T component.
func Has[T any](e Entity) bool {
	return StoreOf[T](e.registry).Has(e.Id)
}

// Submit schedules value as the entity's T component at frame.
func Submit[T any](e Entity, value T, frame FrameId) {
	UpdatesOf[T](e.registry).SubmitUpdate(e.Id, value, frame)
}

// SubmitRemoval schedules the removal of the entity's T component at frame.
func SubmitRemoval[T any](e Entity, frame FrameId) {
	UpdatesOf[T](e.registry).SubmitRemoval(e.Id, frame)
}
