// Package allocator implements a page-based native memory allocator.
//
// # Overview
//
// An Allocator reserves one fixed-size off-heap region at construction time
// and carves it into equal-size pages. Allocate hands out a Buffer that
// claims ceil(capacity/pageSize) pages; Free returns them to the pool.
// The region is never resized.
//
//	a, err := allocator.New(allocator.Config{
//	    PageSize:   4096,
//	    TotalBytes: 256 << 20,
//	})
//	if err != nil { ... }
//	defer a.Close()
//
//	buf, err := a.Allocate(len(payload))
//	if err != nil { ... } // ErrOutOfPages: caller decides (evict, retry, fail)
//	_ = buf.CopyFrom(payload)
//	_ = a.Free(buf)
//
// # Buffers
//
// A Buffer never exposes raw memory. All access goes through capacity-checked
// copies (CopyFrom, CopyTo, ReadAt). Pages of one buffer are not necessarily
// contiguous; the buffer keeps them in order.
//
// Free consumes the handle: the first call releases the pages, any further
// call is reported as ErrDoubleFree and counted, never a panic.
//
// # Counters
//
// NumFreePages, NumUsedPages, TotalNumPages, NumAllocationExceptions and
// NumFreeExceptions are atomics and can be sampled at any time without
// blocking allocation or free.
//
// # Thread Safety
//
// Allocate, Free and the counters are safe for concurrent use. Copies into
// and out of a single Buffer must be coordinated by the owner of the handle;
// the refmap package does this with reference counts.
package allocator
