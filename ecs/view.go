package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

// View reads several component types of an entity at once.
// The type T should be a struct with embedded or named pointer fields, one per component type.
// Named fields can be marked as optional using the `ecs:"optional"` struct tag
type View[T any] struct {
	registry    *Registry
	types       []reflect.Type
	optional    []bool
	fieldOffset []uintptr

	// Stores are resolved lazily since a component type may get its first value after the
	// view was created.
	stores []componentStore
}

// NewView creates a new view for the given struct type
// Embedded fields are always required
// Named fields can be marked as optional using the `ecs:"optional"` struct tag
func NewView[T any](registry *Registry) *View[T] {
	structType := reflect.TypeFor[T]()

	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	types := make([]reflect.Type, 0, structType.NumField())
	optional := make([]bool, 0, structType.NumField())
	fieldOffset := make([]uintptr, 0, structType.NumField())
	required := 0

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldType := field.Type

		if fieldType.Kind() != reflect.Ptr {
			panic("View struct fields must be pointer types")
		}

		types = append(types, fieldType.Elem())
		fieldOffset = append(fieldOffset, field.Offset)

		isOptional := false
		if !field.Anonymous {
			tag := field.Tag.Get("ecs")
			if tag != "" {
				if tag == "optional" {
					isOptional = true
				} else {
					panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
				}
			}
		}
		if !isOptional {
			required++
		}
		optional = append(optional, isOptional)
	}

	if required == 0 {
		panic("View struct must have at least one required component")
	}

	return &View[T]{
		registry:    registry,
		types:       types,
		optional:    optional,
		fieldOffset: fieldOffset,
		stores:      make([]componentStore, len(types)),
	}
}

func (v *View[T]) store(i int) componentStore {
	if v.stores[i] == nil {
		v.stores[i] = v.registry.storeFor(v.types[i])
	}
	return v.stores[i]
}

// Fill populates the provided struct pointer with component data for the given entity
// Returns false if the entity is missing any required components
// Optional components are set to nil if not present
func (v *View[T]) Fill(id EntityId, ptr *T) bool {
	structPtr := unsafe.Pointer(ptr)

	for i := range v.types {
		var component unsafe.Pointer
		if s := v.store(i); s != nil {
			component = s.getPointer(id)
		}

		fieldPtr := unsafe.Add(structPtr, v.fieldOffset[i])
		if component == nil && !v.optional[i] {
			return false
		}
		*(*unsafe.Pointer)(fieldPtr) = component
	}

	return true
}

// Get returns a populated view struct for the given entity, or nil if the entity
// doesn't have all the required components
func (v *View[T]) Get(id EntityId) *T {
	var result T
	if !v.Fill(id, &result) {
		return nil
	}
	return &result
}

// driver returns the smallest store among the required components, or nil if one of them has
// no store yet.
func (v *View[T]) driver() componentStore {
	var best componentStore
	for i := range v.types {
		if v.optional[i] {
			continue
		}
		s := v.store(i)
		if s == nil {
			return nil
		}
		if best == nil || s.count() < best.count() {
			best = s
		}
	}
	return best
}

// Iter returns an iterator over all entities that have all the required components for this view
// The iterator yields (EntityId, T) pairs where T is the populated view struct
// Optional components are set to nil if not present
func (v *View[T]) Iter() iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		driver := v.driver()
		if driver == nil {
			return
		}

		var result T
		for id := range driver.entityIds() {
			if !v.Fill(id, &result) {
				continue
			}
			if !yield(id, result) {
				return
			}
		}
	}
}

// Values returns an iterator over just the view structs (without entity IDs)
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// Submit schedules every non-nil component of data for id at frame through the update system
// of its type. Component types must have been registered with RegisterComponent.
func (v *View[T]) Submit(id EntityId, data T, frame FrameId) {
	structPtr := unsafe.Pointer(&data)

	for i, componentType := range v.types {
		componentPtr := *(*unsafe.Pointer)(unsafe.Add(structPtr, v.fieldOffset[i]))
		if componentPtr == nil {
			if !v.optional[i] {
				panic("required component is nil in View.Submit")
			}
			continue
		}

		component := reflect.NewAt(componentType, componentPtr).Interface()
		if !v.registry.SubmitAny(id, component, frame) {
			panic("component type is not registered: " + componentType.String())
		}
	}
}
