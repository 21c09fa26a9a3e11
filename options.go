package nativemem

import "github.com/hupe1980/nativemem/refmap"

type options struct {
	numShards       int
	metrics         MetricsCollector
	counters        *operationCounters
	logger          *Logger
	pooledReads     bool
	readBufferSize  int
	maxEntries      int
	maxWeightBytes  int64
	scratchCapacity int
}

// Option configures a Map.
type Option func(*options)

// WithNumShards sets the number of lock shards, rounded up to a power of two.
// Defaults to refmap.DefaultShards.
func WithNumShards(numShards int) Option {
	return func(o *options) {
		o.numShards = numShards
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &nativemem.BasicMetricsCollector{}
//	m, _ := nativemem.New(alloc, serializer.String(), nativemem.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
func WithMetricsCollector(c MetricsCollector) Option {
	return func(o *options) {
		if c == nil {
			c = NoopMetricsCollector{}
		}
		o.metrics = c
	}
}

// WithOperationCounters enables per-outcome operation counters, reported
// through Stats. They are recorded in addition to any MetricsCollector.
func WithOperationCounters() Option {
	return func(o *options) {
		o.counters = &operationCounters{}
	}
}

// WithLogger configures the logger.
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithPooledReadBuffers makes Get borrow its scratch buffer from a pool
// instead of allocating one per call. initialCapacity sizes new buffers.
func WithPooledReadBuffers(initialCapacity int) Option {
	return func(o *options) {
		o.pooledReads = true
		o.readBufferSize = max(initialCapacity, 0)
	}
}

// WithScratchCapacity sets the minimum capacity of the scratch buffers Get
// allocates when read buffers are not pooled.
func WithScratchCapacity(n int) Option {
	return func(o *options) {
		o.scratchCapacity = n
	}
}

// WithLRUEviction bounds the map to maxEntries keys. When a put exceeds the
// bound, or the allocator runs out of pages, least recently used keys are
// deleted.
func WithLRUEviction(maxEntries int) Option {
	return func(o *options) {
		o.maxEntries = maxEntries
	}
}

// WithWeightedLRUEviction bounds the summed serialized size of all values to
// maxBytes, evicting least recently used keys as needed.
func WithWeightedLRUEviction(maxBytes int64) Option {
	return func(o *options) {
		o.maxWeightBytes = maxBytes
	}
}

func (o *options) evictionEnabled() bool {
	return o.maxEntries > 0 || o.maxWeightBytes > 0
}

func (o *options) refmapOptions() []refmap.Option {
	opts := []refmap.Option{
		refmap.WithLogger(o.logger.Logger),
		refmap.WithScratchCapacity(o.scratchCapacity),
	}
	if o.numShards > 0 {
		opts = append(opts, refmap.WithShards(o.numShards))
	}
	return opts
}
