// Package nativemem provides a key/value map whose values live outside the
// Go heap, in a fixed region of native memory pages.
//
// Values are serialized on Put and copied into page-backed buffers; Get copies
// them back through a scratch buffer and deserializes. Large caches kept this
// way add no pointers and almost no bytes to the garbage-collected heap.
//
// # Quick Start
//
//	alloc, _ := allocator.New(allocator.Config{
//	    PageSize:   4096,
//	    TotalBytes: 1 << 30,
//	})
//	defer alloc.Close()
//
//	m, _ := nativemem.New[string](alloc, serializer.JSON[Profile](),
//	    nativemem.WithOperationCounters(),
//	    nativemem.WithPooledReadBuffers(4096),
//	)
//	defer m.Close()
//
//	m.Put("alice", &Profile{Name: "Alice"})
//	p, ok, _ := m.Get("alice")
//	m.Put("alice", nil) // same as Delete
//
// # Buffer Lifecycle
//
// Every stored value owns one buffer. A Put whose serialized size equals the
// current buffer's capacity overwrites it in place when no read is in
// flight; otherwise a new buffer is installed and the old one is freed once
// the last concurrent reader releases it. Buffers are never freed twice and
// never freed while a reader copies from them.
//
// # Eviction
//
// WithLRUEviction and WithWeightedLRUEviction bound the map. Least recently
// used keys are also evicted when the allocator runs out of pages, so a
// bounded map degrades into a cache instead of failing puts.
//
// # Observability
//
//   - Stats: size, eviction count, allocator page counters
//   - OperationCounters: puts, deletes and reads by outcome
//   - MetricsCollector: pluggable latency/outcome hooks
//   - Logger: structured logging via log/slog
package nativemem
