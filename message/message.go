// Package message implements the network envelope exchanged between clients and the relay
// server: a fixed size header followed by a bounded body.
package message

import (
	"encoding/binary"

	"github.com/rotisserie/eris"

	"github.com/plus3/voxelvolution/ecs"
)

const (
	// HeaderLength is the encoded size of a Header.
	HeaderLength = 16
	// MaxBodyLength is the largest body a message may carry.
	MaxBodyLength = 512
	// MaxLength is the largest encoded message.
	MaxLength = HeaderLength + MaxBodyLength
)

// Signature starts every header.
var Signature = [4]byte{'T', 'X', 'P', '1'}

var (
	ErrBodyTooLong  = eris.New("message body too long")
	ErrBadSignature = eris.New("bad message signature")
	ErrShortHeader  = eris.New("message shorter than header")
	ErrShortBody    = eris.New("message shorter than declared body")
	ErrShortPayload = eris.New("payload shorter than entity id")
)

// Type identifies what a message body contains.
type Type uint16

const (
	TypeChat Type = iota + 1
	TypePositionChange
	TypePositionRemoval
	TypeOrientationChange
	TypeOrientationRemoval
)

var typeNames = map[Type]string{
	TypeChat:               "chat",
	TypePositionChange:     "position_change",
	TypePositionRemoval:    "position_removal",
	TypeOrientationChange:  "orientation_change",
	TypeOrientationRemoval: "orientation_removal",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Header is laid out big endian as signature[4], frame int64, type uint16, body length uint16.
type Header struct {
	Frame  ecs.FrameId
	Type   Type
	Length uint16
}

// EncodeHeader writes h into the first HeaderLength bytes of dst.
func EncodeHeader(dst []byte, h Header) error {
	if len(dst) < HeaderLength {
		return eris.Wrapf(ErrShortHeader, "buffer of %d bytes", len(dst))
	}
	if h.Length > MaxBodyLength {
		return eris.Wrapf(ErrBodyTooLong, "length %d", h.Length)
	}
	copy(dst[0:4], Signature[:])
	binary.BigEndian.PutUint64(dst[4:12], uint64(h.Frame))
	binary.BigEndian.PutUint16(dst[12:14], uint16(h.Type))
	binary.BigEndian.PutUint16(dst[14:16], h.Length)
	return nil
}

// DecodeHeader reads a header from src. A declared body length above MaxBodyLength is reset to
// zero and reported as ErrBodyTooLong; the other fields are still returned.
func DecodeHeader(src []byte) (Header, error) {
	if len(src) < HeaderLength {
		return Header{}, eris.Wrapf(ErrShortHeader, "got %d bytes", len(src))
	}
	if [4]byte(src[0:4]) != Signature {
		return Header{}, eris.Wrapf(ErrBadSignature, "got %q", src[0:4])
	}
	h := Header{
		Frame:  ecs.FrameId(binary.BigEndian.Uint64(src[4:12])),
		Type:   Type(binary.BigEndian.Uint16(src[12:14])),
		Length: binary.BigEndian.Uint16(src[14:16]),
	}
	if h.Length > MaxBodyLength {
		declared := h.Length
		h.Length = 0
		return h, eris.Wrapf(ErrBodyTooLong, "declared length %d", declared)
	}
	return h, nil
}

// Message is a decoded envelope.
type Message struct {
	Frame ecs.FrameId
	Type  Type
	Body  []byte
}

// New creates a message, failing if body is longer than MaxBodyLength.
func New(frame ecs.FrameId, typ Type, body []byte) (Message, error) {
	if len(body) > MaxBodyLength {
		return Message{}, eris.Wrapf(ErrBodyTooLong, "length %d", len(body))
	}
	return Message{Frame: frame, Type: typ, Body: body}, nil
}

// Header returns the header describing m.
func (m Message) Header() Header {
	return Header{Frame: m.Frame, Type: m.Type, Length: uint16(min(len(m.Body), MaxBodyLength+1))}
}

// Marshal encodes m as header followed by body.
func (m Message) Marshal() ([]byte, error) {
	if len(m.Body) > MaxBodyLength {
		return nil, eris.Wrapf(ErrBodyTooLong, "length %d", len(m.Body))
	}
	buf := make([]byte, HeaderLength+len(m.Body))
	if err := EncodeHeader(buf, m.Header()); err != nil {
		return nil, err
	}
	copy(buf[HeaderLength:], m.Body)
	return buf, nil
}

// Unmarshal decodes one message from src. Bytes past the declared body are ignored. The body
// is copied out of src.
func Unmarshal(src []byte) (Message, error) {
	h, err := DecodeHeader(src)
	if err != nil {
		return Message{}, err
	}
	end := HeaderLength + int(h.Length)
	if len(src) < end {
		return Message{}, eris.Wrapf(ErrShortBody, "declared %d, got %d", h.Length, len(src)-HeaderLength)
	}
	body := make([]byte, h.Length)
	copy(body, src[HeaderLength:end])
	return Message{Frame: h.Frame, Type: h.Type, Body: body}, nil
}
