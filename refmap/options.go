package refmap

import (
	"log/slog"
	"math/bits"
)

// DefaultShards is the number of shards used when none is configured.
const DefaultShards = 64

type options struct {
	shards          int
	scratchCapacity int
	logger          *slog.Logger
}

// Option configures a Map.
type Option func(*options)

// WithShards sets the number of shards, rounded up to a power of two.
func WithShards(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.shards = 1 << bits.Len(uint(n-1))
	}
}

// WithScratchCapacity sets the minimum capacity of scratch buffers that Get
// allocates per call.
func WithScratchCapacity(n int) Option {
	return func(o *options) {
		o.scratchCapacity = max(n, 0)
	}
}

// WithLogger sets the logger used to report free failures.
// If nil is passed, logging is disabled.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = slog.New(slog.DiscardHandler)
		}
		o.logger = l
	}
}
