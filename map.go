package nativemem

import (
	"context"
	"errors"
	"iter"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/nativemem/allocator"
	"github.com/hupe1980/nativemem/buffer"
	"github.com/hupe1980/nativemem/internal/cache"
	"github.com/hupe1980/nativemem/refmap"
	"github.com/hupe1980/nativemem/serializer"
)

// PutResult classifies what a Put did to the native memory behind a key.
type PutResult uint8

const (
	// PutNoChange means an absent value was put for an absent key.
	PutNoChange PutResult = iota
	// PutFreedCurrentBuffer means an absent value removed an existing entry.
	PutFreedCurrentBuffer
	// PutReusedExistingBuffer means the value was written into the key's
	// existing buffer.
	PutReusedExistingBuffer
	// PutAllocatedNewBuffer means a new buffer was allocated for the value.
	PutAllocatedNewBuffer
)

func (r PutResult) String() string {
	switch r {
	case PutNoChange:
		return "no_change"
	case PutFreedCurrentBuffer:
		return "freed_current_buffer"
	case PutReusedExistingBuffer:
		return "reused_existing_buffer"
	case PutAllocatedNewBuffer:
		return "allocated_new_buffer"
	default:
		return "unknown"
	}
}

// Stats is a point-in-time snapshot of a Map.
type Stats struct {
	Size          int
	EvictionCount int64
	// StoredBytes sums the serialized size of all values. It is only
	// tracked when eviction is enabled.
	StoredBytes int64
	Allocator     allocator.Stats
	// Operations is nil unless WithOperationCounters was given.
	Operations *OperationCountersSnapshot
}

// Map stores serialized values in native memory pages.
//
// All methods are safe for concurrent use. Values are copied in on Put and
// copied out on Get; no reference into native memory is handed out.
type Map[K comparable, V any] struct {
	entries    *refmap.Map[K, V]
	alloc      *allocator.Allocator
	serializer serializer.Serializer[V]

	policy   *cache.LRU[K]
	metrics  MetricsCollector
	counters *operationCounters
	logger   *Logger

	readBuffers *sync.Pool
	closed      atomic.Bool
}

// New creates a map that stores values encoded by s in buffers from alloc.
// The map does not own alloc; closing the map leaves it open.
func New[K comparable, V any](alloc *allocator.Allocator, s serializer.Serializer[V], optFns ...Option) (*Map[K, V], error) {
	if alloc == nil {
		return nil, ErrNilAllocator
	}
	if s == nil {
		return nil, ErrNilSerializer
	}

	o := options{
		metrics: NoopMetricsCollector{},
		logger:  NoopLogger(),
	}
	for _, fn := range optFns {
		fn(&o)
	}

	m := &Map[K, V]{
		alloc:      alloc,
		serializer: s,
		metrics:    o.metrics,
		counters:   o.counters,
		logger:     o.logger,
	}
	if o.evictionEnabled() {
		m.policy = cache.NewLRU[K](o.maxEntries, o.maxWeightBytes)
		m.entries = refmap.NewTracked[K](alloc, s, policyTracker[K]{m.policy}, o.refmapOptions()...)
	} else {
		m.entries = refmap.New[K](alloc, s, o.refmapOptions()...)
	}
	if o.pooledReads {
		size := o.readBufferSize
		m.readBuffers = &sync.Pool{
			New: func() any { return buffer.New(size) },
		}
	}
	return m, nil
}

// Put stores value under key. A nil value removes the key.
//
// On error the entry is left unchanged.
func (m *Map[K, V]) Put(key K, value *V) (PutResult, error) {
	start := time.Now()
	result, err := m.put(key, value)
	if err != nil {
		m.metrics.RecordPutError(time.Since(start), err)
	} else {
		m.metrics.RecordPut(result, time.Since(start))
		if m.counters != nil {
			m.counters.recordPut(result)
		}
	}
	m.logger.LogPut(context.Background(), key, result, err)
	return result, err
}

func (m *Map[K, V]) put(key K, value *V) (PutResult, error) {
	if m.closed.Load() {
		return PutNoChange, ErrClosed
	}

	if value == nil {
		if !m.entries.Delete(key) {
			return PutNoChange, nil
		}
		return PutFreedCurrentBuffer, nil
	}

	payload, err := m.serializer.Serialize(*value)
	if err != nil {
		return PutNoChange, refmap.NewSerializationError(err)
	}

	outcome, err := m.install(key, payload)
	if err != nil {
		return PutNoChange, err
	}

	if m.policy != nil {
		for {
			victim, ok := m.policy.EvictOverflow()
			if !ok {
				break
			}
			m.evict(victim, "capacity")
		}
	}

	if outcome == refmap.OutcomeReused {
		return PutReusedExistingBuffer, nil
	}
	return PutAllocatedNewBuffer, nil
}

// install writes payload, evicting least recently used keys while the
// allocator is out of pages or budget.
func (m *Map[K, V]) install(key K, payload []byte) (refmap.Outcome, error) {
	for {
		outcome, err := m.entries.PutBytes(key, payload, true)
		if err == nil || m.policy == nil || !isPressure(err) {
			return outcome, err
		}
		victim, ok := m.policy.EvictOldest()
		if !ok {
			return outcome, err
		}
		m.evict(victim, "out_of_memory")
	}
}

func isPressure(err error) bool {
	return errors.Is(err, allocator.ErrOutOfPages) || errors.Is(err, allocator.ErrBudgetExceeded)
}

func (m *Map[K, V]) evict(key K, reason string) {
	if !m.entries.Delete(key) {
		return
	}
	m.metrics.RecordEviction()
	m.logger.LogEviction(context.Background(), key, reason)
}

// policyTracker keeps the eviction policy in step with the entries. refmap
// calls it under the key's shard lock.
type policyTracker[K comparable] struct {
	policy *cache.LRU[K]
}

func (t policyTracker[K]) Stored(key K, size int) { t.policy.Add(key, int64(size)) }

func (t policyTracker[K]) Removed(key K) { t.policy.Remove(key) }

// Get returns the value stored under key.
func (m *Map[K, V]) Get(key K) (V, bool, error) {
	if m.readBuffers == nil {
		return m.observeGet(key, m.entries.Get)
	}

	scratch := m.readBuffers.Get().(*buffer.OnHeap)
	defer m.readBuffers.Put(scratch)
	return m.GetWithBuffer(key, scratch)
}

// GetWithBuffer is like Get but stages the stored bytes in scratch.
// scratch must not be shared with concurrent calls.
func (m *Map[K, V]) GetWithBuffer(key K, scratch *buffer.OnHeap) (V, bool, error) {
	return m.observeGet(key, func(key K) (V, bool, error) {
		return m.entries.GetWithBuffer(key, scratch)
	})
}

func (m *Map[K, V]) observeGet(key K, get func(K) (V, bool, error)) (V, bool, error) {
	if m.closed.Load() {
		var zero V
		return zero, false, ErrClosed
	}

	start := time.Now()
	v, found, err := get(key)
	if err != nil {
		return v, false, err
	}

	if found && m.policy != nil {
		m.policy.Touch(key)
	}
	m.metrics.RecordGet(found, time.Since(start))
	if m.counters != nil {
		m.counters.recordGet(found)
	}
	return v, found, nil
}

// Delete removes key. It reports whether an entry existed and its buffer
// is being freed. On a closed map it reports false.
func (m *Map[K, V]) Delete(key K) bool {
	if m.closed.Load() {
		return false
	}

	start := time.Now()
	freed := m.entries.Delete(key)

	m.metrics.RecordDelete(freed, time.Since(start))
	if m.counters != nil {
		m.counters.recordDelete(freed)
	}
	m.logger.LogDelete(context.Background(), key, freed)
	return freed
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	return m.entries.Contains(key)
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return m.entries.Len()
}

// Keys returns an iterator over the keys present when each shard is visited.
func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		m.entries.Range(yield)
	}
}

// OperationCounters returns a snapshot of the counters enabled by
// WithOperationCounters. ok is false when they are disabled.
func (m *Map[K, V]) OperationCounters() (snap OperationCountersSnapshot, ok bool) {
	if m.counters == nil {
		return snap, false
	}
	return m.counters.snapshot(), true
}

// Stats returns a snapshot of the map and its allocator.
func (m *Map[K, V]) Stats() Stats {
	s := Stats{
		Size:      m.Len(),
		Allocator: m.alloc.Stats(),
	}
	if m.policy != nil {
		s.EvictionCount = m.policy.Evictions()
		s.StoredBytes = m.policy.Weight()
	}
	if snap, ok := m.OperationCounters(); ok {
		s.Operations = &snap
	}
	return s
}

// Close deletes every entry, returning all pages to the allocator.
// Afterwards Put and Get return ErrClosed. A Put racing with Close either
// lands before the entries are cleared or fails with ErrClosed.
func (m *Map[K, V]) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	m.entries.Close()
	return nil
}
