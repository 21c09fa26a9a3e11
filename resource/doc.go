// Package resource implements a process-wide budget for off-heap memory.
//
// Several allocators can share one Controller so the sum of their claimed
// pages stays under a single limit, even though each allocator reserves its
// own region up front.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB across all allocators
//	})
//
//	if !rc.TryAcquireMemory(4096) {
//	    // budget exhausted - caller decides (evict, retry, fail)
//	}
//	defer rc.ReleaseMemory(4096)
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
// This allows optional budgeting without nil checks everywhere.
package resource
