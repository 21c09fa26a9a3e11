package serializer

import (
	"bytes"

	gojson "github.com/goccy/go-json"

	"github.com/hupe1980/nativemem/buffer"
)

// Serializer converts values of type V to and from bytes.
type Serializer[V any] interface {
	// Serialize encodes v. The returned slice is copied into native memory
	// and may be reused by the caller afterwards.
	Serialize(v V) ([]byte, error)

	// Deserialize decodes the readable bytes of buf. buf is a scratch buffer
	// that will be overwritten by the next read; implementations must copy
	// anything they retain.
	Deserialize(buf *buffer.OnHeap) (V, error)
}

type bytesSerializer struct{}

// Bytes stores byte slices verbatim.
func Bytes() Serializer[[]byte] { return bytesSerializer{} }

func (bytesSerializer) Serialize(v []byte) ([]byte, error) { return v, nil }

func (bytesSerializer) Deserialize(buf *buffer.OnHeap) ([]byte, error) {
	return bytes.Clone(buf.Bytes()), nil
}

type stringSerializer struct{}

// String stores strings as their UTF-8 bytes.
func String() Serializer[string] { return stringSerializer{} }

func (stringSerializer) Serialize(v string) ([]byte, error) { return []byte(v), nil }

func (stringSerializer) Deserialize(buf *buffer.OnHeap) (string, error) {
	return string(buf.Bytes()), nil
}

type jsonSerializer[V any] struct{}

// JSON encodes values with github.com/goccy/go-json.
func JSON[V any]() Serializer[V] { return jsonSerializer[V]{} }

func (jsonSerializer[V]) Serialize(v V) ([]byte, error) { return gojson.Marshal(v) }

func (jsonSerializer[V]) Deserialize(buf *buffer.OnHeap) (V, error) {
	var v V
	err := gojson.Unmarshal(buf.Bytes(), &v)
	return v, err
}

type funcSerializer[V any] struct {
	serialize   func(V) ([]byte, error)
	deserialize func([]byte) (V, error)
}

// Funcs adapts a pair of functions to a Serializer. The slice passed to
// deserialize aliases the scratch buffer and must not be retained.
func Funcs[V any](serialize func(V) ([]byte, error), deserialize func([]byte) (V, error)) Serializer[V] {
	return funcSerializer[V]{serialize: serialize, deserialize: deserialize}
}

func (f funcSerializer[V]) Serialize(v V) ([]byte, error) { return f.serialize(v) }

func (f funcSerializer[V]) Deserialize(buf *buffer.OnHeap) (V, error) {
	return f.deserialize(buf.Bytes())
}
