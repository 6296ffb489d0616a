package message

import (
	"encoding/binary"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"github.com/plus3/voxelvolution/ecs"
)

const entityIdLength = 8

// EncodeComponent builds a component body: the big endian entity id followed by the JSON
// encoding of value.
func EncodeComponent[T any](id ecs.EntityId, value *T) ([]byte, error) {
	bz, err := json.Marshal(value)
	if err != nil {
		return nil, eris.Wrap(err, "component must be json serializable")
	}
	body := make([]byte, entityIdLength+len(bz))
	binary.BigEndian.PutUint64(body, uint64(id))
	copy(body[entityIdLength:], bz)
	if len(body) > MaxBodyLength {
		return nil, eris.Wrapf(ErrBodyTooLong, "component body of %d bytes", len(body))
	}
	return body, nil
}

// DecodeComponent is the inverse of EncodeComponent.
func DecodeComponent[T any](body []byte) (ecs.EntityId, T, error) {
	var value T
	id, err := DecodeRemoval(body)
	if err != nil {
		return 0, value, err
	}
	if err := json.Unmarshal(body[entityIdLength:], &value); err != nil {
		return id, value, eris.Wrapf(err, "decoding component of entity %d", id)
	}
	return id, value, nil
}

// EncodeRemoval builds a removal body, which carries only the entity id.
func EncodeRemoval(id ecs.EntityId) []byte {
	return binary.BigEndian.AppendUint64(make([]byte, 0, entityIdLength), uint64(id))
}

// DecodeRemoval reads the entity id at the start of body.
func DecodeRemoval(body []byte) (ecs.EntityId, error) {
	if len(body) < entityIdLength {
		return 0, eris.Wrapf(ErrShortPayload, "got %d bytes", len(body))
	}
	return ecs.EntityId(binary.BigEndian.Uint64(body)), nil
}
