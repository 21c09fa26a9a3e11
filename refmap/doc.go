// Package refmap implements a concurrent map whose values live in native
// memory and are reclaimed by reference counting.
//
// # Ownership
//
// Every stored value is an entry {buffer, refs}. The map itself holds one
// reference. A reader takes another reference while it holds the shard read
// lock, so the increment is part of the lookup: once a reader has found an
// entry, a concurrent Put or Delete can unlink the entry but cannot free it.
// Whoever drives refs to zero (the replacing writer or the last reader) is
// the only caller of Allocator.Free for that buffer.
//
//	m := refmap.New[string](alloc, serializer.String())
//
//	_ = m.Put("k", "v")
//	v, ok, err := m.Get("k")
//	m.Delete("k")
//
// # Scoped Access
//
// Acquire returns a Ref for callers that want to read the raw bytes without
// deserializing. A Ref must be released; extra Release calls are no-ops.
//
// # In-place Reuse
//
// PutBytes with reuse=true overwrites the current buffer when the payload
// has exactly its capacity and nobody but the map holds a reference. The
// check runs under the shard write lock, which no reader can enter.
//
// # Sharding
//
// Keys are spread over power-of-two shards with hash/maphash; each shard has
// its own RWMutex. Len is advisory under concurrent mutation.
//
// # Tracking
//
// NewTracked reports every stored and removed key to a Tracker while the
// key's shard write lock is held, so a side structure such as an eviction
// policy sees the changes for one key in the same order as the map.
package refmap
