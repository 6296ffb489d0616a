package ecs

import "reflect"

// Singleton provides access to a single value of T that is not associated with any entity.
// Use this for global state shared by the systems of one registry, such as the active camera
// or configuration.
type Singleton[T any] struct {
	registry *Registry
	value    *T
}

// NewSingleton creates a new Singleton accessor for the given registry.
// If the registry has no T yet it is created from initializer, or the zero value.
func NewSingleton[T any](registry *Registry, initializer ...T) *Singleton[T] {
	var value T
	if len(initializer) > 0 {
		value = initializer[0]
	}
	actual, _ := registry.singletons.LoadOrStore(reflect.TypeFor[T](), &value)
	return &Singleton[T]{
		registry: registry,
		value:    actual.(*T),
	}
}

// Init initializes the Singleton with a registry reference.
// This is called automatically by the Scheduler during system registration.
func (s *Singleton[T]) Init(registry *Registry) {
	s.registry = registry
	s.value = nil
	s.updateCache()
}

// Get returns a pointer to the singleton value, or nil if none was created.
func (s *Singleton[T]) Get() *T {
	if s.value == nil {
		s.updateCache()
	}
	return s.value
}

// Exists returns true if the registry holds a T
func (s *Singleton[T]) Exists() bool {
	return s.Get() != nil
}

func (s *Singleton[T]) updateCache() {
	if s.registry == nil {
		return
	}
	if v, ok := s.registry.singletons.Load(reflect.TypeFor[T]()); ok {
		s.value = v.(*T)
	}
}
