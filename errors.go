package nativemem

import (
	"errors"

	"github.com/hupe1980/nativemem/refmap"
)

var (
	// ErrClosed is returned by operations on a closed Map.
	ErrClosed = refmap.ErrClosed
	// ErrNilAllocator is returned by New when no allocator is given.
	ErrNilAllocator = errors.New("nativemem: nil allocator")
	// ErrNilSerializer is returned by New when no serializer is given.
	ErrNilSerializer = errors.New("nativemem: nil serializer")
)

// SerializationError indicates that a value could not be serialized.
// The entry is left unchanged.
//
// The original underlying error can be accessed via errors.Unwrap.
type SerializationError = refmap.SerializationError

// DeserializationError indicates that stored bytes could not be decoded.
//
// The original underlying error can be accessed via errors.Unwrap.
type DeserializationError = refmap.DeserializationError
