package allocator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned by New for unusable page or region sizes.
	ErrInvalidConfig = errors.New("allocator: invalid config")
	// ErrInvalidCapacity is returned when a non-positive capacity is requested.
	ErrInvalidCapacity = errors.New("allocator: capacity must be positive")
	// ErrOutOfPages is returned when the page pool cannot satisfy a request.
	ErrOutOfPages = errors.New("allocator: out of pages")
	// ErrBudgetExceeded is returned when the shared memory budget denies a request.
	ErrBudgetExceeded = errors.New("allocator: memory budget exceeded")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("allocator: closed")

	// ErrDoubleFree is returned when a buffer is freed more than once.
	ErrDoubleFree = errors.New("allocator: buffer already freed")
	// ErrForeignBuffer is returned when freeing a buffer owned by another allocator.
	ErrForeignBuffer = errors.New("allocator: buffer not owned by this allocator")
	// ErrNilBuffer is returned when freeing a nil buffer.
	ErrNilBuffer = errors.New("allocator: nil buffer")

	// ErrBufferFreed is returned when copying into or out of a freed buffer.
	ErrBufferFreed = errors.New("allocator: use of freed buffer")
	// ErrCapacityExceeded is returned when a copy does not fit the buffer.
	ErrCapacityExceeded = errors.New("allocator: capacity exceeded")
)

// AllocationError describes a failed Allocate call.
//
// The cause (ErrInvalidCapacity, ErrOutOfPages, ErrBudgetExceeded or
// ErrClosed) can be matched with errors.Is.
type AllocationError struct {
	CapacityBytes int
	Pages         int
	cause         error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("allocate %d bytes (%d pages): %v", e.CapacityBytes, e.Pages, e.cause)
}

func (e *AllocationError) Unwrap() error { return e.cause }

// FreeError describes a failed Free call.
type FreeError struct {
	Pages int
	cause error
}

func (e *FreeError) Error() string {
	return fmt.Sprintf("free %d pages: %v", e.Pages, e.cause)
}

func (e *FreeError) Unwrap() error { return e.cause }
