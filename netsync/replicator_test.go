package netsync_test

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/voxelvolution/ecs"
	"github.com/plus3/voxelvolution/message"
	"github.com/plus3/voxelvolution/netsync"
	"github.com/plus3/voxelvolution/transform"
)

type recordingSender struct {
	sent []message.Message
}

func (s *recordingSender) Send(m message.Message) error {
	s.sent = append(s.sent, m)
	return nil
}

func newReplicator(t *testing.T) (*ecs.Registry, *netsync.Replicator, *recordingSender) {
	t.Helper()
	registry := ecs.NewRegistry()
	sender := &recordingSender{}
	rep := netsync.NewReplicator(registry, sender)
	netsync.Register[transform.Position](rep, message.TypePositionChange, message.TypePositionRemoval)
	netsync.Register[transform.Orientation](rep, message.TypeOrientationChange, message.TypeOrientationRemoval)
	return registry, rep, sender
}

func TestReplicatorSubmitsAtMessageFrame(t *testing.T) {
	registry, rep, _ := newReplicator(t)

	body, err := message.EncodeComponent(3, &transform.Position{X: 1, Y: 2, Z: 3})
	require.NoError(t, err)
	require.NoError(t, rep.Handle(message.Message{Frame: 5, Type: message.TypePositionChange, Body: body}))

	registry.UpdateAll(4)
	assert.Nil(t, ecs.StoreOf[transform.Position](registry).Get(3))

	registry.UpdateAll(5)
	assert.Equal(t, &transform.Position{X: 1, Y: 2, Z: 3}, ecs.StoreOf[transform.Position](registry).Get(3))

	require.NoError(t, rep.Handle(message.Message{Frame: 6, Type: message.TypePositionRemoval, Body: message.EncodeRemoval(3)}))
	registry.UpdateAll(6)
	assert.False(t, ecs.StoreOf[transform.Position](registry).Has(3))
}

func TestReplicatorPublishesOwnedChanges(t *testing.T) {
	registry, rep, sender := newReplicator(t)
	rep.Own(1)

	updates := ecs.UpdatesOf[transform.Position](registry)
	updates.SubmitUpdate(1, transform.Position{X: 4}, 1)
	updates.SubmitUpdate(2, transform.Position{X: 5}, 1)
	ecs.UpdatesOf[transform.Orientation](registry).SubmitUpdate(1, transform.Orientation{W: 1}, 1)
	registry.UpdateAll(1)
	rep.FrameCommitted(ecs.FrameReport{Frame: 1})

	require.Len(t, sender.sent, 2)
	assert.Equal(t, message.TypePositionChange, sender.sent[0].Type)
	assert.Equal(t, ecs.FrameId(1), sender.sent[0].Frame)
	id, position, err := message.DecodeComponent[transform.Position](sender.sent[0].Body)
	require.NoError(t, err)
	assert.Equal(t, ecs.EntityId(1), id)
	assert.Equal(t, transform.Position{X: 4}, position)
	assert.Equal(t, message.TypeOrientationChange, sender.sent[1].Type)

	updates.SubmitRemoval(1, 2)
	registry.UpdateAll(2)
	out := rep.Collect()
	require.Len(t, out, 1)
	assert.Equal(t, message.TypePositionRemoval, out[0].Type)
	assert.Equal(t, ecs.FrameId(2), out[0].Frame)

	assert.Empty(t, rep.Collect(), "changes are collected once")
}

func TestReplicatorIgnoresInboundForOwnedEntities(t *testing.T) {
	registry, rep, sender := newReplicator(t)
	rep.Own(1)

	body, err := message.EncodeComponent(1, &transform.Position{X: 9})
	require.NoError(t, err)
	require.NoError(t, rep.Handle(message.Message{Frame: 1, Type: message.TypePositionChange, Body: body}))
	registry.UpdateAll(1)

	assert.False(t, ecs.StoreOf[transform.Position](registry).Has(1))
	assert.Empty(t, rep.Collect())
	assert.Empty(t, sender.sent)

	rep.Disown(1)
	assert.False(t, rep.Owns(1))
}

func TestReplicatorErrors(t *testing.T) {
	_, rep, _ := newReplicator(t)

	err := rep.Handle(message.Message{Type: 99})
	assert.True(t, eris.Is(err, netsync.ErrUnknownType))

	err = rep.Handle(message.Message{Type: message.TypePositionChange, Body: []byte{1, 2}})
	assert.True(t, eris.Is(err, message.ErrShortPayload))
}

func TestReplicatorChat(t *testing.T) {
	registry, rep, sender := newReplicator(t)
	chats := ecs.NewEventQueue[netsync.Chat]()
	ecs.EventsOf[netsync.Chat](registry).SubscribeAll(chats)

	require.NoError(t, rep.Chat(3, "hello"))
	require.Len(t, sender.sent, 1)
	require.NoError(t, rep.Handle(sender.sent[0]))

	var got []netsync.Chat
	chats.ProcessEventQueue(func(_ ecs.EntityId, c netsync.Chat) { got = append(got, c) })
	assert.Equal(t, []netsync.Chat{{Frame: 3, Text: "hello"}}, got)
}
