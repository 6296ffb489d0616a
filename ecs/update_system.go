package ecs

import (
	"reflect"
	"slices"
	"sync/atomic"
	"time"

	"github.com/kamstrup/intmap"
)

// ComponentChanged is emitted through the registry's EventSystem[ComponentChanged[T]] each time
// a commit replaces or removes an entity's T component. New is nil for removals and Old is nil
// when the entity had no component before.
type ComponentChanged[T any] struct {
	Entity EntityId
	Frame  FrameId
	Old    *T
	New    *T
}

// UpdateSystemStats is a snapshot of the state of one update system.
type UpdateSystemStats struct {
	Component     string
	BaseFrame     FrameId
	PendingFrames int
	Queued        int
	Entities      int
	Committed     uint64
	Removed       uint64
	Dropped       uint64
	LastCommit    time.Duration
}

type submission[T any] struct {
	entity EntityId
	frame  FrameId
	value  T
	remove bool
}

// ComponentUpdateSystem schedules future mutations of one component type and commits them
// frame by frame. SubmitUpdate and SubmitRemoval may be called from any goroutine and never
// block. UpdateTo belongs to the single thread that also reads the store.
type ComponentUpdateSystem[T any] struct {
	registry *Registry
	store    *ComponentStore[T]
	name     string

	inbox   mpscList[submission[T]]
	scratch []submission[T]

	lists  *intmap.Map[FrameId, *ComponentUpdateList[T]]
	frames []FrameId // ascending, one entry per key of lists

	base      atomic.Int64
	dropped   atomic.Uint64
	updatedOn *intmap.Map[EntityId, FrameId]

	committed  uint64
	removed    uint64
	lastCommit time.Duration
}

func newComponentUpdateSystem[T any](r *Registry, store *ComponentStore[T]) *ComponentUpdateSystem[T] {
	return &ComponentUpdateSystem[T]{
		registry:  r,
		store:     store,
		name:      reflect.TypeFor[T]().String(),
		lists:     intmap.New[FrameId, *ComponentUpdateList[T]](8),
		updatedOn: intmap.New[EntityId, FrameId](defaultStoreCapacity),
	}
}

// SubmitUpdate schedules value as the T component of id at frame. NextFrame selects the
// earliest frame that has pending work, or the frame right after the base frame. Frames at or
// below the base frame have already been committed; such submissions are dropped and counted.
func (u *ComponentUpdateSystem[T]) SubmitUpdate(id EntityId, value T, frame FrameId) {
	u.inbox.push(submission[T]{entity: id, frame: frame, value: value})
}

// SubmitRemoval schedules the removal of the T component of id at frame, with the same frame
// rules as SubmitUpdate.
func (u *ComponentUpdateSystem[T]) SubmitRemoval(id EntityId, frame FrameId) {
	u.inbox.push(submission[T]{entity: id, frame: frame, remove: true})
}

// UpdateTo commits every pending list whose frame is at most frame, in increasing frame order,
// and then makes frame the new base frame. Within a list all updates are applied before any
// removal.
func (u *ComponentUpdateSystem[T]) UpdateTo(frame FrameId) {
	start := time.Now()
	u.resolveInbox()

	events, notify := hasEvents[ComponentChanged[T]](u.registry)

	n := 0
	for ; n < len(u.frames) && u.frames[n] <= frame; n++ {
		list, ok := u.lists.Get(u.frames[n])
		if !ok {
			continue
		}
		u.lists.Del(list.Frame)

		for id, value := range list.Updates {
			old := u.store.Get(id)
			u.store.set(id, value)
			u.updatedOn.Put(id, frame)
			u.committed++
			if notify {
				events.Emit(id, ComponentChanged[T]{Entity: id, Frame: list.Frame, Old: old, New: value})
			}
		}

		for _, id := range list.Removals {
			old := u.store.Get(id)
			if old == nil {
				continue
			}
			u.store.remove(id)
			u.removed++
			if notify {
				events.Emit(id, ComponentChanged[T]{Entity: id, Frame: list.Frame, Old: old})
			}
		}
	}
	u.frames = slices.Delete(u.frames, 0, n)

	u.base.Store(int64(frame))
	u.lastCommit = time.Since(start)
}

// resolveInbox moves every queued submission into the list of its target frame. Submissions
// are resolved in the order they were made, against the current base frame.
func (u *ComponentUpdateSystem[T]) resolveInbox() {
	u.scratch = u.inbox.drain(u.scratch[:0])
	if len(u.scratch) == 0 {
		return
	}

	base := FrameId(u.base.Load())
	for i := range u.scratch {
		s := &u.scratch[i]
		frame := s.frame
		switch {
		case frame == NextFrame:
			frame = u.nextPendingFrame(base)
		case frame <= base:
			u.dropped.Add(1)
			u.registry.logger.Debug().
				Str("component", u.name).
				Uint64("entity", uint64(s.entity)).
				Int64("frame", int64(frame)).
				Int64("base", int64(base)).
				Msg("dropped submission for committed frame")
			continue
		}

		list := u.listFor(frame)
		if s.remove {
			list.Removals = append(list.Removals, s.entity)
		} else {
			value := s.value
			list.Updates[s.entity] = &value
		}
	}
	clear(u.scratch)
}

func (u *ComponentUpdateSystem[T]) nextPendingFrame(base FrameId) FrameId {
	i, _ := slices.BinarySearch(u.frames, base+1)
	if i < len(u.frames) {
		return u.frames[i]
	}
	return base + 1
}

func (u *ComponentUpdateSystem[T]) listFor(frame FrameId) *ComponentUpdateList[T] {
	if list, ok := u.lists.Get(frame); ok {
		return list
	}
	list := newComponentUpdateList[T](frame)
	u.lists.Put(frame, list)
	i, _ := slices.BinarySearch(u.frames, frame)
	u.frames = slices.Insert(u.frames, i, frame)
	return list
}

// BaseFrame returns the frame of the most recent UpdateTo. It is safe to call from any goroutine.
func (u *ComponentUpdateSystem[T]) BaseFrame() FrameId {
	return FrameId(u.base.Load())
}

// UpdatedOn returns the frame of the UpdateTo call that last committed an update for id, and
// whether there was one.
func (u *ComponentUpdateSystem[T]) UpdatedOn(id EntityId) (FrameId, bool) {
	return u.updatedOn.Get(id)
}

// UpdatedOnAll returns a copy of the last commit frame of every updated entity.
func (u *ComponentUpdateSystem[T]) UpdatedOnAll() map[EntityId]FrameId {
	out := make(map[EntityId]FrameId, u.updatedOn.Len())
	u.updatedOn.ForEach(func(id EntityId, frame FrameId) bool {
		out[id] = frame
		return true
	})
	return out
}

// Dropped returns how many submissions targeted a frame that had already been committed.
func (u *ComponentUpdateSystem[T]) Dropped() uint64 {
	return u.dropped.Load()
}

// PendingFrames returns the frames that have resolved, uncommitted work, in increasing order.
// Submissions still queued for the next UpdateTo are not included.
func (u *ComponentUpdateSystem[T]) PendingFrames() []FrameId {
	return slices.Clone(u.frames)
}

// Pending returns the resolved list for frame, if any. The list must not be modified.
func (u *ComponentUpdateSystem[T]) Pending(frame FrameId) (*ComponentUpdateList[T], bool) {
	return u.lists.Get(frame)
}

// Store returns the store this system commits into.
func (u *ComponentUpdateSystem[T]) Store() *ComponentStore[T] {
	return u.store
}

// Stats returns a snapshot of the system. Apart from the atomic counters it must be called
// from the commit thread.
func (u *ComponentUpdateSystem[T]) Stats() UpdateSystemStats {
	return UpdateSystemStats{
		Component:     u.name,
		BaseFrame:     u.BaseFrame(),
		PendingFrames: len(u.frames),
		Queued:        u.inbox.len(),
		Entities:      u.store.Len(),
		Committed:     u.committed,
		Removed:       u.removed,
		Dropped:       u.Dropped(),
		LastCommit:    u.lastCommit,
	}
}

func (u *ComponentUpdateSystem[T]) componentType() reflect.Type {
	return reflect.TypeFor[T]()
}

func (u *ComponentUpdateSystem[T]) submitAny(id EntityId, value any, frame FrameId) bool {
	switch v := value.(type) {
	case T:
		u.SubmitUpdate(id, v, frame)
	case *T:
		if v == nil {
			return false
		}
		u.SubmitUpdate(id, *v, frame)
	default:
		return false
	}
	return true
}
