// Package cache provides the LRU eviction policy used by bounded maps.
//
// The policy only tracks keys and weights. It never owns values: callers
// remove the evicted keys from their own storage.
//
// Bounds:
//   - maxEntries limits the number of tracked keys
//   - maxWeight limits the summed weight (e.g. payload bytes)
//
// A zero bound is unlimited.
package cache
