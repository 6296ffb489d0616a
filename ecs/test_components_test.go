package ecs_test

import "github.com/plus3/voxelvolution/ecs"

// Common test component types
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Name struct {
	Value string
}

type Health struct {
	Current int
	Max     int
}

type Temperature float64

func newTestRegistry() *ecs.Registry {
	registry := ecs.NewRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Name](registry)
	ecs.RegisterComponent[Health](registry)
	ecs.RegisterComponent[Temperature](registry)
	return registry
}

// recorder collects the events it receives.
type recorder[T any] struct {
	label    string
	log      *[]string
	received []T
}

func (r *recorder[T]) On(entity ecs.EntityId, event T) {
	r.received = append(r.received, event)
	if r.log != nil {
		*r.log = append(*r.log, r.label)
	}
}
