package refmap

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by puts on a closed Map.
var ErrClosed = errors.New("refmap: map closed")

// SerializationError is returned when a value cannot be serialized.
// The map entry is left unchanged. The cause can be accessed via errors.Unwrap.
type SerializationError struct {
	cause error
}

// NewSerializationError wraps cause.
func NewSerializationError(cause error) *SerializationError {
	return &SerializationError{cause: cause}
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialize value: %v", e.cause)
}

func (e *SerializationError) Unwrap() error { return e.cause }

// DeserializationError is returned when stored bytes cannot be decoded.
// The map entry is left unchanged. The cause can be accessed via errors.Unwrap.
type DeserializationError struct {
	Capacity int
	cause    error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("deserialize %d bytes: %v", e.Capacity, e.cause)
}

func (e *DeserializationError) Unwrap() error { return e.cause }
