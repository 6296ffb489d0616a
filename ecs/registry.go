package ecs

import (
	"reflect"
	"sync"

	"github.com/rs/zerolog"
)

// committer is the type-erased side of a ComponentUpdateSystem.
type committer interface {
	UpdateTo(frame FrameId)
	Stats() UpdateSystemStats
	componentType() reflect.Type
	submitAny(id EntityId, value any, frame FrameId) bool
}

type multitonKey struct {
	key, value reflect.Type
}

// Registry owns one component store, update system, event system and multiton per type.
// Independent registries never share state, so several worlds can live in one process.
//
// Lookups are safe from any goroutine. What can be done with the returned instances is
// governed by their own concurrency rules.
type Registry struct {
	stores     sync.Map // reflect.Type -> componentStore
	updates    sync.Map // reflect.Type -> committer
	events     sync.Map // reflect.Type -> *EventSystem[T]
	multitons  sync.Map // multitonKey -> *Multiton[K, V]
	singletons sync.Map // reflect.Type -> *T

	mu         sync.Mutex
	committers []committer
	storeOrder []componentStore

	logger zerolog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used by the registry and everything it owns.
func WithLogger(logger zerolog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Logger returns the registry's logger.
func (r *Registry) Logger() *zerolog.Logger {
	return &r.logger
}

// RegisterComponent creates the store and update system for T. Registering up front is
// optional; it fixes the order in which UpdateAll commits component types.
func RegisterComponent[T any](r *Registry) {
	UpdatesOf[T](r)
}

// StoreOf returns the registry's store for T, creating it on first use.
func StoreOf[T any](r *Registry) *ComponentStore[T] {
	t := reflect.TypeFor[T]()
	if s, ok := r.stores.Load(t); ok {
		return s.(*ComponentStore[T])
	}
	s, loaded := r.stores.LoadOrStore(t, newComponentStore[T]())
	if !loaded {
		r.mu.Lock()
		r.storeOrder = append(r.storeOrder, s.(componentStore))
		r.mu.Unlock()
	}
	return s.(*ComponentStore[T])
}

// UpdatesOf returns the registry's update system for T, creating it on first use.
func UpdatesOf[T any](r *Registry) *ComponentUpdateSystem[T] {
	t := reflect.TypeFor[T]()
	if u, ok := r.updates.Load(t); ok {
		return u.(*ComponentUpdateSystem[T])
	}
	u, loaded := r.updates.LoadOrStore(t, newComponentUpdateSystem(r, StoreOf[T](r)))
	if !loaded {
		r.mu.Lock()
		r.committers = append(r.committers, u.(committer))
		r.mu.Unlock()
	}
	return u.(*ComponentUpdateSystem[T])
}

// EventsOf returns the registry's event system for T, creating it on first use.
func EventsOf[T any](r *Registry) *EventSystem[T] {
	t := reflect.TypeFor[T]()
	if e, ok := r.events.Load(t); ok {
		return e.(*EventSystem[T])
	}
	e, _ := r.events.LoadOrStore(t, NewEventSystem[T]())
	return e.(*EventSystem[T])
}

// hasEvents reports whether an event system for T exists and has receivers, without
// creating one.
func hasEvents[T any](r *Registry) (*EventSystem[T], bool) {
	e, ok := r.events.Load(reflect.TypeFor[T]())
	if !ok {
		return nil, false
	}
	es := e.(*EventSystem[T])
	return es, es.HasReceivers()
}

// MultitonOf returns the registry's Multiton for (K, V), creating it on first use.
func MultitonOf[K comparable, V any](r *Registry) *Multiton[K, V] {
	key := multitonKey{key: reflect.TypeFor[K](), value: reflect.TypeFor[V]()}
	if m, ok := r.multitons.Load(key); ok {
		return m.(*Multiton[K, V])
	}
	m, _ := r.multitons.LoadOrStore(key, NewMultiton[K, V]())
	return m.(*Multiton[K, V])
}

// UpdateAll commits every component type up to and including frame, in the order the update
// systems were created. It must be called from the single thread that owns the registry.
func (r *Registry) UpdateAll(frame FrameId) {
	for _, c := range r.committerSnapshot() {
		c.UpdateTo(frame)
	}
}

// SubmitAny schedules value, a T or *T, through the update system for T. It reports false
// if no update system exists for the value's type.
func (r *Registry) SubmitAny(id EntityId, value any, frame FrameId) bool {
	t := reflect.TypeOf(value)
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	u, ok := r.updates.Load(t)
	if !ok {
		return false
	}
	return u.(committer).submitAny(id, value, frame)
}

// ComponentAny returns the committed component of type t for id, as a pointer, or nil.
func (r *Registry) ComponentAny(id EntityId, t reflect.Type) any {
	s, ok := r.stores.Load(t)
	if !ok {
		return nil
	}
	return s.(componentStore).getAny(id)
}

func (r *Registry) committerSnapshot() []committer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]committer(nil), r.committers...)
}

func (r *Registry) storeSnapshot() []componentStore {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]componentStore(nil), r.storeOrder...)
}

func (r *Registry) storeFor(t reflect.Type) componentStore {
	s, ok := r.stores.Load(t)
	if !ok {
		return nil
	}
	return s.(componentStore)
}
