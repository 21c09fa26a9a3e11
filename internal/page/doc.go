// Package page implements the page pool behind the native memory allocator.
//
// # Layout
//
// A pool manages N equal-size pages, identified by index 0..N-1. Page i is
// owned by stripe i % S. Each stripe keeps its free indices in a roaring
// bitmap guarded by its own mutex, so unrelated allocations rarely contend.
//
// # Claim Protocol
//
// Allocate first reserves the requested number of pages from a single atomic
// counter (CAS loop, fail-fast on exhaustion) and only then collects concrete
// indices from the stripes. A successful reservation can therefore always be
// satisfied, and two allocations can never claim the same page.
//
// Free returns each page to its home stripe before the counter is bumped, so
// a racing allocation never observes a page whose release is not committed.
//
// Pages handed out by one Allocate call are not necessarily contiguous; the
// caller keeps the ordered list and addresses each page individually.
package page
