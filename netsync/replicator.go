// Package netsync replicates component values between registries over the message envelope.
//
// A Replicator routes inbound messages to the update system of their component type, where
// they are submitted at the frame carried by the message. After each committed frame it turns
// the changes of locally owned entities into outbound messages.
package netsync

import (
	"sync"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/plus3/voxelvolution/ecs"
	"github.com/plus3/voxelvolution/message"
)

var ErrUnknownType = eris.New("no channel registered for message type")

// Sender delivers outbound messages.
type Sender interface {
	Send(message.Message) error
}

// Handler consumes inbound messages.
type Handler interface {
	Handle(message.Message) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(message.Message) error

func (f HandlerFunc) Handle(m message.Message) error {
	return f(m)
}

// Chat is emitted on the wildcard entity of EventsOf[Chat] for every chat message received.
type Chat struct {
	Frame ecs.FrameId
	Text  string
}

type outbound interface {
	collect(owned func(ecs.EntityId) bool, emit func(message.Message))
}

// Replicator binds message types to component types of one registry. Register every channel
// before the replicator starts handling messages.
type Replicator struct {
	registry *ecs.Registry
	sender   Sender
	logger   zerolog.Logger

	inbound  map[message.Type]func(message.Message) error
	channels []outbound

	mu    sync.RWMutex
	owned map[ecs.EntityId]struct{}
}

// NewReplicator creates a replicator for r. A nil sender discards outbound messages.
func NewReplicator(r *ecs.Registry, sender Sender) *Replicator {
	rep := &Replicator{
		registry: r,
		sender:   sender,
		logger:   r.Logger().With().Str("module", "netsync").Logger(),
		inbound:  make(map[message.Type]func(message.Message) error),
		owned:    make(map[ecs.EntityId]struct{}),
	}
	rep.inbound[message.TypeChat] = rep.handleChat
	return rep
}

// Register routes change and removal messages to the T update system, and publishes committed
// changes of owned entities as the same message types.
func Register[T any](rep *Replicator, change, removal message.Type) {
	updates := ecs.UpdatesOf[T](rep.registry)
	events := ecs.NewEventQueue[ecs.ComponentChanged[T]]()
	ecs.EventsOf[ecs.ComponentChanged[T]](rep.registry).SubscribeAll(events)

	rep.inbound[change] = func(m message.Message) error {
		id, value, err := message.DecodeComponent[T](m.Body)
		if err != nil {
			return err
		}
		if rep.Owns(id) {
			return nil
		}
		updates.SubmitUpdate(id, value, m.Frame)
		return nil
	}
	rep.inbound[removal] = func(m message.Message) error {
		id, err := message.DecodeRemoval(m.Body)
		if err != nil {
			return err
		}
		if rep.Owns(id) {
			return nil
		}
		updates.SubmitRemoval(id, m.Frame)
		return nil
	}
	rep.channels = append(rep.channels, &channel[T]{change: change, removal: removal, events: events, logger: rep.logger})
}

// Own marks entities as authored locally: their changes are published and inbound messages
// about them are ignored.
func (rep *Replicator) Own(ids ...ecs.EntityId) {
	rep.mu.Lock()
	defer rep.mu.Unlock()
	for _, id := range ids {
		rep.owned[id] = struct{}{}
	}
}

// Disown reverses Own.
func (rep *Replicator) Disown(ids ...ecs.EntityId) {
	rep.mu.Lock()
	defer rep.mu.Unlock()
	for _, id := range ids {
		delete(rep.owned, id)
	}
}

func (rep *Replicator) Owns(id ecs.EntityId) bool {
	rep.mu.RLock()
	defer rep.mu.RUnlock()
	_, ok := rep.owned[id]
	return ok
}

// Handle routes m to the channel registered for its type.
func (rep *Replicator) Handle(m message.Message) error {
	handle, ok := rep.inbound[m.Type]
	if !ok {
		return eris.Wrapf(ErrUnknownType, "type %d", m.Type)
	}
	if err := handle(m); err != nil {
		return eris.Wrapf(err, "handling %s message", m.Type)
	}
	return nil
}

func (rep *Replicator) handleChat(m message.Message) error {
	ecs.EventsOf[Chat](rep.registry).Emit(ecs.WildcardEntity, Chat{Frame: m.Frame, Text: string(m.Body)})
	return nil
}

// Chat sends text to every peer.
func (rep *Replicator) Chat(frame ecs.FrameId, text string) error {
	m, err := message.New(frame, message.TypeChat, []byte(text))
	if err != nil {
		return err
	}
	return rep.send(m)
}

// Collect returns the outbound messages for every change committed since the last call.
func (rep *Replicator) Collect() []message.Message {
	var out []message.Message
	for _, ch := range rep.channels {
		ch.collect(rep.Owns, func(m message.Message) {
			out = append(out, m)
		})
	}
	return out
}

// FrameCommitted sends the changes of the frame. It lets a Replicator observe a Scheduler.
func (rep *Replicator) FrameCommitted(ecs.FrameReport) {
	for _, m := range rep.Collect() {
		if err := rep.send(m); err != nil {
			rep.logger.Warn().Err(err).Str("type", m.Type.String()).Int64("frame", int64(m.Frame)).Msg("failed to send")
		}
	}
}

func (rep *Replicator) send(m message.Message) error {
	if rep.sender == nil {
		return nil
	}
	return rep.sender.Send(m)
}

type channel[T any] struct {
	change, removal message.Type
	events          *ecs.EventQueue[ecs.ComponentChanged[T]]
	logger          zerolog.Logger
}

func (ch *channel[T]) collect(owned func(ecs.EntityId) bool, emit func(message.Message)) {
	ch.events.ProcessEventQueue(func(id ecs.EntityId, ev ecs.ComponentChanged[T]) {
		if !owned(id) {
			return
		}
		m, err := ch.encode(ev)
		if err != nil {
			ch.logger.Warn().Err(err).Uint64("entity", uint64(id)).Msg("failed to encode change")
			return
		}
		emit(m)
	})
}

func (ch *channel[T]) encode(ev ecs.ComponentChanged[T]) (message.Message, error) {
	if ev.New == nil {
		return message.New(ev.Frame, ch.removal, message.EncodeRemoval(ev.Entity))
	}
	body, err := message.EncodeComponent(ev.Entity, ev.New)
	if err != nil {
		return message.Message{}, err
	}
	return message.New(ev.Frame, ch.change, body)
}
