package refmap

import (
	"hash/maphash"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/nativemem/allocator"
	"github.com/hupe1980/nativemem/buffer"
	"github.com/hupe1980/nativemem/serializer"
)

// Outcome classifies what PutBytes did.
type Outcome uint8

const (
	// OutcomeAllocated means a new buffer was installed for a new key.
	OutcomeAllocated Outcome = iota + 1
	// OutcomeReplaced means a new buffer replaced an existing entry, whose
	// buffer is freed once its last reader is done.
	OutcomeReplaced
	// OutcomeReused means the existing buffer was overwritten in place.
	OutcomeReused
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAllocated:
		return "allocated"
	case OutcomeReplaced:
		return "replaced"
	case OutcomeReused:
		return "reused"
	default:
		return "unknown"
	}
}

type shard[K comparable] struct {
	mu     sync.RWMutex
	m      map[K]*entry
	closed bool
}

// Tracker observes the keys a Map holds. Its methods run under the key's
// shard write lock, so calls for one key arrive in the order the changes
// were made. They must not call back into the Map.
type Tracker[K comparable] interface {
	// Stored is called when a payload of size bytes is installed for key,
	// either in a new buffer or in place.
	Stored(key K, size int)
	// Removed is called when key is deleted or cleared.
	Removed(key K)
}

// Map is a concurrent key/value map whose values live in native memory.
type Map[K comparable, V any] struct {
	alloc      *allocator.Allocator
	serializer serializer.Serializer[V]
	releaser   releaser
	tracker    Tracker[K]

	seed   maphash.Seed
	shards []*shard[K]
	mask   uint64
	count  atomic.Int64

	scratchCapacity int
}

// New creates a map that stores values serialized by s in buffers from alloc.
func New[K comparable, V any](alloc *allocator.Allocator, s serializer.Serializer[V], opts ...Option) *Map[K, V] {
	return NewTracked[K](alloc, s, nil, opts...)
}

// NewTracked is like New but reports every key change to t.
func NewTracked[K comparable, V any](alloc *allocator.Allocator, s serializer.Serializer[V], t Tracker[K], opts ...Option) *Map[K, V] {
	o := options{
		shards: DefaultShards,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Map[K, V]{
		alloc:           alloc,
		serializer:      s,
		releaser:        releaser{alloc: alloc, logger: o.logger},
		tracker:         t,
		seed:            maphash.MakeSeed(),
		shards:          make([]*shard[K], o.shards),
		mask:            uint64(o.shards - 1),
		scratchCapacity: o.scratchCapacity,
	}
	for i := range m.shards {
		m.shards[i] = &shard[K]{m: make(map[K]*entry)}
	}
	return m
}

func (m *Map[K, V]) shard(key K) *shard[K] {
	return m.shards[maphash.Comparable(m.seed, key)&m.mask]
}

// Put serializes value into a freshly allocated buffer and installs it.
// The previous buffer, if any, is released after the new one is visible.
// On error the entry is left unchanged.
func (m *Map[K, V]) Put(key K, value V) error {
	payload, err := m.serializer.Serialize(value)
	if err != nil {
		return NewSerializationError(err)
	}
	_, err = m.PutBytes(key, payload, false)
	return err
}

// PutBytes installs payload as the value of key. With reuse set, the current
// buffer is overwritten in place when its capacity equals len(payload) and
// the map holds the only reference. After Close it returns ErrClosed.
func (m *Map[K, V]) PutBytes(key K, payload []byte, reuse bool) (Outcome, error) {
	s := m.shard(key)

	if reuse {
		if ok, err := m.tryReuse(s, key, payload); ok {
			return OutcomeReused, err
		}
	}

	buf, err := m.alloc.Allocate(len(payload))
	if err != nil {
		return 0, err
	}
	if err := buf.CopyFrom(payload); err != nil {
		_ = m.alloc.Free(buf)
		return 0, err
	}
	e := newEntry(buf)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		m.releaser.release(e)
		return 0, ErrClosed
	}
	prev, existed := s.m[key]
	s.m[key] = e
	if !existed {
		m.count.Add(1)
	}
	m.stored(key, len(payload))
	s.mu.Unlock()

	// The new entry is installed before the old one loses the map's
	// reference; readers that already hold prev keep it alive.
	if existed {
		m.releaser.release(prev)
		return OutcomeReplaced, nil
	}
	return OutcomeAllocated, nil
}

func (m *Map[K, V]) tryReuse(s *shard[K], key K, payload []byte) (bool, error) {
	s.mu.RLock()
	cur, ok := s.m[key]
	fits := ok && cur.buf.Capacity() == len(payload)
	s.mu.RUnlock()
	if !fits {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Readers only take references under the read lock, so with the write
	// lock held refs cannot grow; 1 means no read is in flight.
	cur, ok = s.m[key]
	if !ok || cur.buf.Capacity() != len(payload) || cur.refs.Load() != 1 {
		return false, nil
	}
	if err := cur.buf.CopyFrom(payload); err != nil {
		return true, err
	}
	m.stored(key, len(payload))
	return true, nil
}

func (m *Map[K, V]) stored(key K, size int) {
	if m.tracker != nil {
		m.tracker.Stored(key, size)
	}
}

func (m *Map[K, V]) removed(key K) {
	if m.tracker != nil {
		m.tracker.Removed(key)
	}
}

func (m *Map[K, V]) acquire(key K) *entry {
	s := m.shard(key)
	s.mu.RLock()
	e, ok := s.m[key]
	if ok {
		e.refs.Add(1)
	}
	s.mu.RUnlock()
	return e
}

// Acquire returns a counted reference to the buffer stored for key.
// The caller must call Release on the returned Ref.
func (m *Map[K, V]) Acquire(key K) (*Ref, bool) {
	e := m.acquire(key)
	if e == nil {
		return nil, false
	}
	return &Ref{e: e, r: m.releaser}, true
}

// Get returns the value stored for key, copying it through a scratch buffer
// allocated for this call.
func (m *Map[K, V]) Get(key K) (V, bool, error) {
	e := m.acquire(key)
	if e == nil {
		var zero V
		return zero, false, nil
	}
	defer m.releaser.release(e)

	scratch := buffer.New(max(m.scratchCapacity, e.buf.Capacity()))
	return m.read(e, scratch)
}

// GetWithBuffer is like Get but stages the bytes in the caller's scratch
// buffer instead of allocating one.
func (m *Map[K, V]) GetWithBuffer(key K, scratch *buffer.OnHeap) (V, bool, error) {
	e := m.acquire(key)
	if e == nil {
		var zero V
		return zero, false, nil
	}
	defer m.releaser.release(e)

	return m.read(e, scratch)
}

func (m *Map[K, V]) read(e *entry, scratch *buffer.OnHeap) (V, bool, error) {
	var zero V
	if err := e.buf.CopyTo(scratch); err != nil {
		return zero, false, err
	}
	v, err := m.serializer.Deserialize(scratch)
	if err != nil {
		return zero, false, &DeserializationError{Capacity: e.buf.Capacity(), cause: err}
	}
	return v, true, nil
}

// Delete removes key and releases its buffer. It reports whether an entry
// was present.
func (m *Map[K, V]) Delete(key K) bool {
	s := m.shard(key)
	s.mu.Lock()
	e, ok := s.m[key]
	if ok {
		delete(s.m, key)
		m.count.Add(-1)
		m.removed(key)
	}
	s.mu.Unlock()

	if ok {
		m.releaser.release(e)
	}
	return ok
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	s := m.shard(key)
	s.mu.RLock()
	_, ok := s.m[key]
	s.mu.RUnlock()
	return ok
}

// Len returns the number of entries. Advisory under concurrent mutation.
func (m *Map[K, V]) Len() int {
	return int(m.count.Load())
}

// Range calls fn for every key present when its shard is visited, until fn
// returns false. Keys are snapshotted per shard; fn may call back into the map.
func (m *Map[K, V]) Range(fn func(key K) bool) {
	var keys []K
	for _, s := range m.shards {
		s.mu.RLock()
		keys = keys[:0]
		for k := range s.m {
			keys = append(keys, k)
		}
		s.mu.RUnlock()

		for _, k := range keys {
			if !fn(k) {
				return
			}
		}
	}
}

// Close removes all entries, releasing their buffers, and makes later puts
// fail with ErrClosed. Gets and deletes find nothing. Close is idempotent.
func (m *Map[K, V]) Close() {
	for _, s := range m.shards {
		s.mu.Lock()
		old := s.m
		s.m = make(map[K]*entry)
		s.closed = true
		m.count.Add(-int64(len(old)))
		for k := range old {
			m.removed(k)
		}
		s.mu.Unlock()

		for _, e := range old {
			m.releaser.release(e)
		}
	}
}
