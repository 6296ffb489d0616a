package ecs

import (
	"iter"
	"reflect"
	"unsafe"

	"github.com/kamstrup/intmap"
)

const defaultStoreCapacity = 256

// componentStore is the type-erased side of a ComponentStore, used by views, statistics and
// the debug UI.
type componentStore interface {
	componentType() reflect.Type
	getPointer(id EntityId) unsafe.Pointer
	getAny(id EntityId) any
	entityIds() iter.Seq[EntityId]
	count() int
}

// ComponentStore holds the committed T component of every entity that has one. It is the
// single source of truth for the current state of T.
//
// Only the commit path mutates a store. Values are handed out as *T and are replaced, never
// modified, when a new value is committed.
type ComponentStore[T any] struct {
	values *intmap.Map[EntityId, *T]
}

func newComponentStore[T any]() *ComponentStore[T] {
	return &ComponentStore[T]{
		values: intmap.New[EntityId, *T](defaultStoreCapacity),
	}
}

// Get returns the committed component for id, or nil if there is none.
func (s *ComponentStore[T]) Get(id EntityId) *T {
	v, ok := s.values.Get(id)
	if !ok {
		return nil
	}
	return v
}

// Has reports whether id has a committed component.
func (s *ComponentStore[T]) Has(id EntityId) bool {
	return s.values.Has(id)
}

// Len returns the number of entities with a committed component.
func (s *ComponentStore[T]) Len() int {
	return s.values.Len()
}

// All iterates over every committed (entity, component) pair in unspecified order.
func (s *ComponentStore[T]) All() iter.Seq2[EntityId, *T] {
	return func(yield func(EntityId, *T) bool) {
		s.values.ForEach(func(id EntityId, v *T) bool {
			return yield(id, v)
		})
	}
}

// Entities iterates over the ids that have a committed component.
func (s *ComponentStore[T]) Entities() iter.Seq[EntityId] {
	return func(yield func(EntityId) bool) {
		s.values.ForEach(func(id EntityId, _ *T) bool {
			return yield(id)
		})
	}
}

func (s *ComponentStore[T]) set(id EntityId, value *T) {
	s.values.Put(id, value)
}

func (s *ComponentStore[T]) remove(id EntityId) {
	s.values.Del(id)
}

func (s *ComponentStore[T]) componentType() reflect.Type {
	return reflect.TypeFor[T]()
}

func (s *ComponentStore[T]) getPointer(id EntityId) unsafe.Pointer {
	return unsafe.Pointer(s.Get(id))
}

func (s *ComponentStore[T]) getAny(id EntityId) any {
	if v := s.Get(id); v != nil {
		return v
	}
	return nil
}

func (s *ComponentStore[T]) entityIds() iter.Seq[EntityId] {
	return s.Entities()
}

func (s *ComponentStore[T]) count() int {
	return s.Len()
}
