package buffer

import (
	"errors"
	"io"
)

// ErrOutOfBounds is returned when a copy falls outside the readable range.
var ErrOutOfBounds = errors.New("buffer: out of bounds")

// OnHeap is a growable on-heap byte buffer.
type OnHeap struct {
	data []byte
	n    int
}

// New creates a buffer with the given initial capacity.
func New(initialCapacity int) *OnHeap {
	return &OnHeap{data: make([]byte, max(initialCapacity, 0))}
}

// Capacity returns the number of bytes the buffer can hold without growing.
func (b *OnHeap) Capacity() int {
	return len(b.data)
}

// Len returns the number of readable bytes.
func (b *OnHeap) Len() int {
	return b.n
}

// Bytes returns the readable bytes. The slice aliases the buffer and is
// only valid until the next mutating call.
func (b *OnHeap) Bytes() []byte {
	return b.data[:b.n]
}

// Grow ensures the capacity is at least n bytes. Existing readable bytes are
// preserved.
func (b *OnHeap) Grow(n int) {
	if n <= len(b.data) {
		return
	}
	newCap := max(n, 2*len(b.data))
	data := make([]byte, newCap)
	copy(data, b.data[:b.n])
	b.data = data
}

// SetLen sets the readable length, growing the buffer if needed.
func (b *OnHeap) SetLen(n int) {
	if n < 0 {
		n = 0
	}
	b.Grow(n)
	b.n = n
}

// Reset empties the buffer without releasing its storage.
func (b *OnHeap) Reset() {
	b.n = 0
}

// CopyIn writes src at offset off, growing the buffer and extending the
// readable length as needed.
func (b *OnHeap) CopyIn(off int, src []byte) error {
	if off < 0 {
		return ErrOutOfBounds
	}
	end := off + len(src)
	b.Grow(end)
	copy(b.data[off:end], src)
	if end > b.n {
		b.n = end
	}
	return nil
}

// CopyOut copies readable bytes starting at off into dst and returns the
// number of bytes copied. It returns io.EOF when fewer than len(dst) bytes
// were available.
func (b *OnHeap) CopyOut(dst []byte, off int) (int, error) {
	if off < 0 || off > b.n {
		return 0, ErrOutOfBounds
	}
	n := copy(dst, b.data[off:b.n])
	if n < len(dst) {
		return n, io.EOF
	}
	return n, nil
}

// Window returns a writable view of [off, off+n), growing the buffer and
// extending the readable length to cover it.
func (b *OnHeap) Window(off, n int) []byte {
	if off < 0 || n < 0 {
		return nil
	}
	end := off + n
	b.Grow(end)
	if end > b.n {
		b.n = end
	}
	return b.data[off:end]
}
