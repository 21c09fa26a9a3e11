// Package mmap reserves off-heap memory regions.
//
// # Overview
//
// MapAnon creates a read-write anonymous mapping that lives outside the Go
// garbage collector's control. The page allocator reserves its whole region
// with a single call at construction time and never grows it.
//
//	m, err := mmap.MapAnon(64 << 20)
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON|MAP_PRIVATE, madvise(2) for hints
//   - Windows: VirtualAlloc with MEM_RESERVE|MEM_COMMIT (advice is a no-op)
//
// # Thread Safety
//
// Close is idempotent and protected by an atomic flag. Callers must ensure no
// goroutine touches the slice returned by Bytes after Close returns.
package mmap
