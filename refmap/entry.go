package refmap

import (
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/hupe1980/nativemem/allocator"
	"github.com/hupe1980/nativemem/buffer"
)

// entry is a reference-counted native buffer.
type entry struct {
	buf  *allocator.Buffer
	refs atomic.Int64
}

func newEntry(buf *allocator.Buffer) *entry {
	e := &entry{buf: buf}
	e.refs.Store(1) // owned by the map
	return e
}

// releaser frees an entry's buffer on the transition to zero.
type releaser struct {
	alloc  *allocator.Allocator
	logger *slog.Logger
}

func (r releaser) release(e *entry) {
	switch refs := e.refs.Add(-1); {
	case refs == 0:
		if err := r.alloc.Free(e.buf); err != nil {
			r.logger.Error("failed to free native buffer", "error", err)
		}
	case refs < 0:
		r.logger.Error("reference count dropped below zero", "refs", refs)
	}
}

// Ref is a counted reference to a stored buffer. The buffer cannot be
// freed until Release is called.
type Ref struct {
	e        *entry
	r        releaser
	released atomic.Bool
}

// Capacity returns the size of the stored payload in bytes.
func (r *Ref) Capacity() int {
	return r.e.buf.Capacity()
}

// CopyTo copies the stored payload into dst.
func (r *Ref) CopyTo(dst *buffer.OnHeap) error {
	if r.released.Load() {
		return allocator.ErrBufferFreed
	}
	return r.e.buf.CopyTo(dst)
}

// ReadAt implements io.ReaderAt over the stored payload.
func (r *Ref) ReadAt(p []byte, off int64) (int, error) {
	if r.released.Load() {
		return 0, allocator.ErrBufferFreed
	}
	return r.e.buf.ReadAt(p, off)
}

// Release drops the reference. It is safe to call more than once.
func (r *Ref) Release() {
	if r.released.Swap(true) {
		return
	}
	r.r.release(r.e)
}

var _ io.ReaderAt = (*Ref)(nil)
