package ecs

import "iter"

// Multiton is a keyed registry holding at most one value per key. A registry owns one
// Multiton per (K, V) pair, see MultitonOf.
//
// Values are replaced wholesale by Set; holders of a previous value keep it until they drop it.
// A Multiton is not synchronized: it belongs to the thread that commits frames.
type Multiton[K comparable, V any] struct {
	values map[K]V
}

// NewMultiton creates an empty Multiton that is not attached to any registry.
func NewMultiton[K comparable, V any]() *Multiton[K, V] {
	return &Multiton[K, V]{values: make(map[K]V)}
}

// Get returns the value stored for key, reporting whether one was present.
func (m *Multiton[K, V]) Get(key K) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Set inserts or replaces the value for key.
func (m *Multiton[K, V]) Set(key K, value V) {
	m.values[key] = value
}

// Remove erases the entry for key. Removing a missing key is a no-op.
func (m *Multiton[K, V]) Remove(key K) {
	delete(m.values, key)
}

// Len returns the number of stored entries.
func (m *Multiton[K, V]) Len() int {
	return len(m.values)
}

// All iterates over every entry in unspecified order.
func (m *Multiton[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for k, v := range m.values {
			if !yield(k, v) {
				return
			}
		}
	}
}
