package message_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/voxelvolution/message"
)

func TestMessageRoundTrip(t *testing.T) {
	msg, err := message.New(42, message.TypeChat, []byte("hello"))
	require.NoError(t, err)

	bz, err := msg.Marshal()
	require.NoError(t, err)
	assert.Len(t, bz, message.HeaderLength+5)
	assert.Equal(t, []byte("TXP1"), bz[:4])

	got, err := message.Unmarshal(bz)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
	assert.Equal(t, "chat", got.Type.String())
}

func TestDecodeHeaderLayout(t *testing.T) {
	buf := make([]byte, message.HeaderLength)
	copy(buf, "TXP1")
	binary.BigEndian.PutUint64(buf[4:], 7)
	binary.BigEndian.PutUint16(buf[12:], uint16(message.TypePositionChange))
	binary.BigEndian.PutUint16(buf[14:], 3)

	h, err := message.DecodeHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, message.Header{Frame: 7, Type: message.TypePositionChange, Length: 3}, h)
}

func TestDecodeHeaderRejectsLongBody(t *testing.T) {
	buf := make([]byte, message.HeaderLength)
	require.NoError(t, message.EncodeHeader(buf, message.Header{Frame: 1, Type: message.TypeChat}))
	binary.BigEndian.PutUint16(buf[14:], message.MaxBodyLength+1)

	h, err := message.DecodeHeader(buf)
	require.Error(t, err)
	assert.True(t, eris.Is(err, message.ErrBodyTooLong))
	assert.Zero(t, h.Length)
	assert.Equal(t, message.TypeChat, h.Type)

	_, err = message.Unmarshal(buf)
	assert.True(t, eris.Is(err, message.ErrBodyTooLong))
}

func TestDecodeHeaderErrors(t *testing.T) {
	_, err := message.DecodeHeader([]byte("TXP1"))
	assert.True(t, eris.Is(err, message.ErrShortHeader))

	bad := bytes.Repeat([]byte{0}, message.HeaderLength)
	copy(bad, "TXP2")
	_, err = message.DecodeHeader(bad)
	assert.True(t, eris.Is(err, message.ErrBadSignature))

	msg, err := message.New(1, message.TypeChat, []byte("truncated"))
	require.NoError(t, err)
	bz, err := msg.Marshal()
	require.NoError(t, err)
	_, err = message.Unmarshal(bz[:len(bz)-2])
	assert.True(t, eris.Is(err, message.ErrShortBody))
}

func TestNewRejectsLongBody(t *testing.T) {
	_, err := message.New(1, message.TypeChat, make([]byte, message.MaxBodyLength+1))
	assert.True(t, eris.Is(err, message.ErrBodyTooLong))

	_, err = message.New(1, message.TypeChat, make([]byte, message.MaxBodyLength))
	assert.NoError(t, err)

	oversized := message.Message{Body: make([]byte, message.MaxBodyLength+1)}
	_, err = oversized.Marshal()
	assert.True(t, eris.Is(err, message.ErrBodyTooLong))
}

type position struct {
	X, Y, Z float32
}

func TestComponentPayload(t *testing.T) {
	body, err := message.EncodeComponent(9, &position{X: 1, Y: 2, Z: 3})
	require.NoError(t, err)
	assert.Equal(t, uint64(9), binary.BigEndian.Uint64(body))

	id, value, err := message.DecodeComponent[position](body)
	require.NoError(t, err)
	assert.EqualValues(t, 9, id)
	assert.Equal(t, position{X: 1, Y: 2, Z: 3}, value)

	removal := message.EncodeRemoval(9)
	assert.Len(t, removal, 8)
	id, err = message.DecodeRemoval(removal)
	require.NoError(t, err)
	assert.EqualValues(t, 9, id)

	_, err = message.DecodeRemoval([]byte{1, 2})
	assert.True(t, eris.Is(err, message.ErrShortPayload))

	_, _, err = message.DecodeComponent[position](append(removal, '{'))
	assert.Error(t, err)
}

func TestComponentPayloadTooLong(t *testing.T) {
	type blob struct{ Data string }
	_, err := message.EncodeComponent(1, &blob{Data: string(bytes.Repeat([]byte{'a'}, message.MaxBodyLength))})
	assert.True(t, eris.Is(err, message.ErrBodyTooLong))
}
