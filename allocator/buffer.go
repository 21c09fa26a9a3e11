package allocator

import (
	"io"
	"slices"
	"sync/atomic"

	"github.com/hupe1980/nativemem/buffer"
)

// Buffer is a handle to a span of native pages.
//
// Capacity is the requested size in bytes; the buffer claims
// ceil(Capacity/PageSize) pages. A Buffer is never resized.
type Buffer struct {
	owner    *Allocator
	pages    []uint32
	capacity int
	freed    atomic.Bool
}

// Capacity returns the usable size in bytes.
func (b *Buffer) Capacity() int { return b.capacity }

// NumPages returns the number of pages claimed by the buffer.
func (b *Buffer) NumPages() int { return len(b.pages) }

// Pages returns a copy of the claimed page indices, in buffer order.
func (b *Buffer) Pages() []uint32 { return slices.Clone(b.pages) }

// Freed reports whether the buffer has been released.
func (b *Buffer) Freed() bool { return b.freed.Load() }

// pin keeps the region mapped until the returned unpin is called.
func (b *Buffer) pin() (unpin func(), err error) {
	if b.freed.Load() {
		return nil, ErrBufferFreed
	}
	b.owner.mu.RLock()
	if b.owner.closed.Load() {
		b.owner.mu.RUnlock()
		return nil, ErrClosed
	}
	return b.owner.mu.RUnlock, nil
}

// page returns the native bytes of the i-th page of the buffer.
func (b *Buffer) page(i int) []byte {
	ps := b.owner.pageSize
	off := int(b.pages[i]) * ps
	return b.owner.data[off : off+ps : off+ps]
}

// CopyFrom writes src to the start of the buffer.
func (b *Buffer) CopyFrom(src []byte) error {
	unpin, err := b.pin()
	if err != nil {
		return err
	}
	defer unpin()
	if len(src) > b.capacity {
		return ErrCapacityExceeded
	}

	for i := 0; len(src) > 0; i++ {
		n := copy(b.page(i), src)
		src = src[n:]
	}
	return nil
}

// CopyTo copies the whole buffer into dst, growing it as needed.
// Afterwards dst.Len() == Capacity().
func (b *Buffer) CopyTo(dst *buffer.OnHeap) error {
	unpin, err := b.pin()
	if err != nil {
		return err
	}
	defer unpin()

	dst.Reset()
	w := dst.Window(0, b.capacity)
	for i := 0; len(w) > 0; i++ {
		n := copy(w, b.page(i))
		w = w[n:]
	}
	return nil
}

// ReadAt implements io.ReaderAt over the buffer's capacity.
func (b *Buffer) ReadAt(p []byte, off int64) (int, error) {
	unpin, err := b.pin()
	if err != nil {
		return 0, err
	}
	defer unpin()

	if off < 0 {
		return 0, ErrCapacityExceeded
	}
	if off >= int64(b.capacity) {
		return 0, io.EOF
	}

	ps := b.owner.pageSize
	pos := int(off)
	end := min(b.capacity, pos+len(p))
	n := 0
	for pos < end {
		pg := b.page(pos / ps)
		within := pos % ps
		c := copy(p[n:end-int(off)], pg[within:])
		n += c
		pos += c
	}

	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
