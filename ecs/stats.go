package ecs

import (
	"reflect"
	"slices"
	"strings"
)

// RegistryStats provides statistics about the contents of a registry.
type RegistryStats struct {
	ComponentTypeCount int
	TotalComponents    int
	SingletonCount     int
	MultitonCount      int
	EventTypeCount     int
	Stores             []StoreStats
	Updates            []UpdateSystemStats
	SingletonTypes     []string
}

// StoreStats describes one component store.
type StoreStats struct {
	Type  reflect.Type
	Name  string
	Count int
}

// CollectStats gathers statistics about every store, update system and singleton. It must be
// called from the thread that commits frames.
func (r *Registry) CollectStats() RegistryStats {
	var stats RegistryStats

	for _, s := range r.storeSnapshot() {
		count := s.count()
		stats.Stores = append(stats.Stores, StoreStats{
			Type:  s.componentType(),
			Name:  s.componentType().String(),
			Count: count,
		})
		stats.TotalComponents += count
	}
	stats.ComponentTypeCount = len(stats.Stores)
	stats.Updates = r.UpdateStats()

	r.singletons.Range(func(key, _ any) bool {
		stats.SingletonTypes = append(stats.SingletonTypes, key.(reflect.Type).String())
		return true
	})
	slices.Sort(stats.SingletonTypes)
	stats.SingletonCount = len(stats.SingletonTypes)

	r.multitons.Range(func(_, _ any) bool {
		stats.MultitonCount++
		return true
	})
	r.events.Range(func(_, _ any) bool {
		stats.EventTypeCount++
		return true
	})

	return stats
}

// UpdateStats returns the statistics of every update system in commit order.
func (r *Registry) UpdateStats() []UpdateSystemStats {
	committers := r.committerSnapshot()
	out := make([]UpdateSystemStats, len(committers))
	for i, c := range committers {
		out[i] = c.Stats()
	}
	return out
}

// ComponentTypes returns every component type that has a store, sorted by name.
func (r *Registry) ComponentTypes() []reflect.Type {
	stores := r.storeSnapshot()
	types := make([]reflect.Type, len(stores))
	for i, s := range stores {
		types[i] = s.componentType()
	}
	slices.SortFunc(types, func(a, b reflect.Type) int {
		return strings.Compare(a.String(), b.String())
	})
	return types
}

// EntityComponents returns the committed components of id keyed by type. Values are pointers
// into the stores and must not be modified.
func (r *Registry) EntityComponents(id EntityId) map[reflect.Type]any {
	out := make(map[reflect.Type]any)
	for _, s := range r.storeSnapshot() {
		if v := s.getAny(id); v != nil {
			out[s.componentType()] = v
		}
	}
	return out
}

// Entities returns the ids of every entity with at least one committed component, sorted.
func (r *Registry) Entities() []EntityId {
	seen := make(map[EntityId]struct{})
	for _, s := range r.storeSnapshot() {
		for id := range s.entityIds() {
			seen[id] = struct{}{}
		}
	}
	ids := make([]EntityId, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
