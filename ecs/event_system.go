package ecs

import (
	"slices"
	"sync"
)

// Receiver is notified of events of type T. Receivers are compared by identity when
// subscribing and unsubscribing, so implementations should be pointers.
type Receiver[T any] interface {
	On(entity EntityId, event T)
}

// EventSystem dispatches events of type T to receivers subscribed to a single entity or to
// every entity. Subscription is safe from any goroutine; Emit runs receivers synchronously on
// the caller's goroutine.
type EventSystem[T any] struct {
	mu        sync.RWMutex
	receivers map[EntityId][]Receiver[T]
}

// NewEventSystem creates an event system that is not attached to any registry.
func NewEventSystem[T any]() *EventSystem[T] {
	return &EventSystem[T]{receivers: make(map[EntityId][]Receiver[T])}
}

// Subscribe registers receiver for events about entity. Subscribing twice is a no-op.
func (es *EventSystem[T]) Subscribe(entity EntityId, receiver Receiver[T]) {
	es.mu.Lock()
	defer es.mu.Unlock()
	list := es.receivers[entity]
	if slices.Contains(list, receiver) {
		return
	}
	es.receivers[entity] = append(list, receiver)
}

// SubscribeAll registers receiver for events about every entity.
func (es *EventSystem[T]) SubscribeAll(receiver Receiver[T]) {
	es.Subscribe(WildcardEntity, receiver)
}

// Unsubscribe removes receiver from the receivers of entity.
func (es *EventSystem[T]) Unsubscribe(entity EntityId, receiver Receiver[T]) {
	es.mu.Lock()
	defer es.mu.Unlock()
	list := es.receivers[entity]
	i := slices.Index(list, receiver)
	if i < 0 {
		return
	}
	// Copy so snapshots taken by a running Emit stay intact.
	list = slices.Delete(slices.Clone(list), i, i+1)
	if len(list) == 0 {
		delete(es.receivers, entity)
		return
	}
	es.receivers[entity] = list
}

// UnsubscribeAll removes a wildcard subscription made with SubscribeAll.
func (es *EventSystem[T]) UnsubscribeAll(receiver Receiver[T]) {
	es.Unsubscribe(WildcardEntity, receiver)
}

// Emit delivers event to the receivers of entity and then to the wildcard receivers, each group
// in subscription order. Receivers may emit, subscribe or unsubscribe from within On.
func (es *EventSystem[T]) Emit(entity EntityId, event T) {
	es.mu.RLock()
	specific := es.receivers[entity]
	var wildcard []Receiver[T]
	if entity != WildcardEntity {
		wildcard = es.receivers[WildcardEntity]
	}
	es.mu.RUnlock()

	for _, r := range specific {
		r.On(entity, event)
	}
	for _, r := range wildcard {
		r.On(entity, event)
	}
}

// HasReceivers reports whether anything is subscribed.
func (es *EventSystem[T]) HasReceivers() bool {
	es.mu.RLock()
	defer es.mu.RUnlock()
	return len(es.receivers) > 0
}

// EventQueue is a Receiver that queues events for its owner instead of handling them on the
// emitting goroutine. The owner drains it with ProcessEventQueue on its own thread.
type EventQueue[T any] struct {
	list mpscList[queuedEvent[T]]
	buf  []queuedEvent[T]
}

type queuedEvent[T any] struct {
	entity EntityId
	event  T
}

// NewEventQueue creates an empty event queue.
func NewEventQueue[T any]() *EventQueue[T] {
	return &EventQueue[T]{}
}

// On queues the event.
func (q *EventQueue[T]) On(entity EntityId, event T) {
	q.list.push(queuedEvent[T]{entity: entity, event: event})
}

// ProcessEventQueue hands every queued event to handle in arrival order and returns how many
// were handled.
func (q *EventQueue[T]) ProcessEventQueue(handle func(EntityId, T)) int {
	// The buffer is detached while applying so a nested call drains into its own.
	buf := q.list.drain(q.buf[:0])
	q.buf = nil
	for _, e := range buf {
		handle(e.entity, e.event)
	}
	clear(buf)
	q.buf = buf[:0]
	return len(buf)
}

// Pending returns the approximate number of queued events.
func (q *EventQueue[T]) Pending() int {
	return q.list.len()
}
