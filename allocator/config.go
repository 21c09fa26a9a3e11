package allocator

import (
	"fmt"
	"log/slog"
	"runtime"
)

// DefaultPageSize is the page size used when Config.PageSize is 0.
const DefaultPageSize = 4096

// Config fixes the geometry of the native region. It cannot be changed after New.
type Config struct {
	// PageSize is the size of one page in bytes. Defaults to DefaultPageSize.
	PageSize int

	// TotalBytes is the size of the reserved region. It is rounded down to a
	// whole number of pages and must hold at least one page.
	TotalBytes int

	// Stripes is the number of independently locked free-page sets.
	// Defaults to GOMAXPROCS; clamped to the page count.
	Stripes int

	// ReleaseFreedPages advises the kernel that freed pages are no longer
	// needed, returning their physical memory. Only honored when PageSize is
	// a multiple of the OS page size.
	ReleaseFreedPages bool
}

func (c Config) withDefaults() Config {
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	if c.Stripes <= 0 {
		c.Stripes = runtime.GOMAXPROCS(0)
	}
	return c
}

// Validate reports whether the config describes a usable region.
func (c Config) Validate() error {
	c = c.withDefaults()
	if c.PageSize < 0 {
		return fmt.Errorf("%w: page size %d", ErrInvalidConfig, c.PageSize)
	}
	if c.TotalBytes < c.PageSize {
		return fmt.Errorf("%w: total bytes %d smaller than page size %d", ErrInvalidConfig, c.TotalBytes, c.PageSize)
	}
	return nil
}

// NumPages returns the number of whole pages in the region.
func (c Config) NumPages() int {
	c = c.withDefaults()
	if c.PageSize <= 0 {
		return 0
	}
	return c.TotalBytes / c.PageSize
}

// MemoryAcquirer charges claimed pages against an external memory budget.
// resource.Controller implements it.
type MemoryAcquirer interface {
	TryAcquireMemory(bytes int64) bool
	ReleaseMemory(bytes int64)
}

type options struct {
	logger   *slog.Logger
	acquirer MemoryAcquirer
}

// Option configures an Allocator.
type Option func(*options)

// WithLogger sets the logger used for allocation and free failures.
// If nil is passed, logging is disabled.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = slog.New(slog.DiscardHandler)
		}
		o.logger = l
	}
}

// WithMemoryAcquirer charges every allocation against acquirer.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(o *options) {
		o.acquirer = acquirer
	}
}
