package nativemem

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Methods are only called for operations that returned without error,
// except RecordPutError.
type MetricsCollector interface {
	// RecordPut is called after each successful put.
	RecordPut(result PutResult, duration time.Duration)

	// RecordPutError is called when a put fails.
	RecordPutError(duration time.Duration, err error)

	// RecordGet is called after each successful read. found is false for
	// absent keys.
	RecordGet(found bool, duration time.Duration)

	// RecordDelete is called after each delete. freed reports whether an
	// entry was removed.
	RecordDelete(freed bool, duration time.Duration)

	// RecordEviction is called for every key removed by the eviction policy.
	RecordEviction()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordPut(PutResult, time.Duration)  {}
func (NoopMetricsCollector) RecordPutError(time.Duration, error) {}
func (NoopMetricsCollector) RecordGet(bool, time.Duration)       {}
func (NoopMetricsCollector) RecordDelete(bool, time.Duration)    {}
func (NoopMetricsCollector) RecordEviction()                     {}

// operationCounters counts map operations by outcome. Only the Map mutates
// them; observers read snapshots.
type operationCounters struct {
	updatesTotal        atomic.Int64
	updatesNoChange     atomic.Int64
	updatesFreedBuffer  atomic.Int64
	updatesReusedBuffer atomic.Int64
	updatesNewBuffer    atomic.Int64
	deletesFreedBuffer  atomic.Int64
	deletesNoChange     atomic.Int64
	nullValueReads      atomic.Int64
	nonNullValueReads   atomic.Int64
}

func (c *operationCounters) recordPut(result PutResult) {
	c.updatesTotal.Add(1)
	switch result {
	case PutNoChange:
		c.updatesNoChange.Add(1)
	case PutFreedCurrentBuffer:
		c.updatesFreedBuffer.Add(1)
	case PutReusedExistingBuffer:
		c.updatesReusedBuffer.Add(1)
	case PutAllocatedNewBuffer:
		c.updatesNewBuffer.Add(1)
	}
}

func (c *operationCounters) recordGet(found bool) {
	if found {
		c.nonNullValueReads.Add(1)
	} else {
		c.nullValueReads.Add(1)
	}
}

func (c *operationCounters) recordDelete(freed bool) {
	if freed {
		c.deletesFreedBuffer.Add(1)
	} else {
		c.deletesNoChange.Add(1)
	}
}

func (c *operationCounters) snapshot() OperationCountersSnapshot {
	return OperationCountersSnapshot{
		NumUpdatesTotal:        c.updatesTotal.Load(),
		NumUpdatesNoChange:     c.updatesNoChange.Load(),
		NumUpdatesFreedBuffer:  c.updatesFreedBuffer.Load(),
		NumUpdatesReusedBuffer: c.updatesReusedBuffer.Load(),
		NumUpdatesNewBuffer:    c.updatesNewBuffer.Load(),
		NumDeletesFreedBuffer:  c.deletesFreedBuffer.Load(),
		NumDeletesNoChange:     c.deletesNoChange.Load(),
		NumNullValueReads:      c.nullValueReads.Load(),
		NumNonNullValueReads:   c.nonNullValueReads.Load(),
	}
}

// OperationCountersSnapshot is a point-in-time copy of the operation counters.
// All counters increase monotonically.
type OperationCountersSnapshot struct {
	NumUpdatesTotal        int64
	NumUpdatesNoChange     int64
	NumUpdatesFreedBuffer  int64
	NumUpdatesReusedBuffer int64
	NumUpdatesNewBuffer    int64
	NumDeletesFreedBuffer  int64
	NumDeletesNoChange     int64
	NumNullValueReads      int64
	NumNonNullValueReads   int64
}

// BasicMetricsCollector provides simple in-memory latency and error metrics.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	PutCount      atomic.Int64
	PutErrors     atomic.Int64
	PutTotalNanos atomic.Int64
	GetCount      atomic.Int64
	GetTotalNanos atomic.Int64
	DeleteCount   atomic.Int64
	EvictionCount atomic.Int64
}

// RecordPut implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPut(_ PutResult, duration time.Duration) {
	b.PutCount.Add(1)
	b.PutTotalNanos.Add(duration.Nanoseconds())
}

// RecordPutError implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPutError(duration time.Duration, _ error) {
	b.PutErrors.Add(1)
	b.PutTotalNanos.Add(duration.Nanoseconds())
}

// RecordGet implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGet(_ bool, duration time.Duration) {
	b.GetCount.Add(1)
	b.GetTotalNanos.Add(duration.Nanoseconds())
}

// RecordDelete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDelete(bool, time.Duration) {
	b.DeleteCount.Add(1)
}

// RecordEviction implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEviction() {
	b.EvictionCount.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		PutCount:      b.PutCount.Load(),
		PutErrors:     b.PutErrors.Load(),
		PutAvgNanos:   avg(b.PutTotalNanos.Load(), b.PutCount.Load()+b.PutErrors.Load()),
		GetCount:      b.GetCount.Load(),
		GetAvgNanos:   avg(b.GetTotalNanos.Load(), b.GetCount.Load()),
		DeleteCount:   b.DeleteCount.Load(),
		EvictionCount: b.EvictionCount.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	PutCount      int64
	PutErrors     int64
	PutAvgNanos   int64
	GetCount      int64
	GetAvgNanos   int64
	DeleteCount   int64
	EvictionCount int64
}
