package allocator

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/nativemem/internal/mmap"
	"github.com/hupe1980/nativemem/internal/page"
)

// Allocator hands out page-backed buffers from a fixed off-heap region.
type Allocator struct {
	pageSize     int
	releasePages bool

	// mu is held shared by every access to data and exclusively by Close.
	mu     sync.RWMutex
	region *mmap.Mapping
	data   []byte
	pool   *page.Pool

	acquirer MemoryAcquirer
	logger   *slog.Logger

	allocExceptions atomic.Int64
	freeExceptions  atomic.Int64
	closed          atomic.Bool
}

// New reserves the region described by cfg.
func New(cfg Config, opts ...Option) (*Allocator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}

	numPages := cfg.NumPages()
	pool, err := page.New(numPages, cfg.Stripes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	region, err := mmap.MapAnon(numPages * cfg.PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to map native region: %w", err)
	}
	// Buffers land on arbitrary pages; readahead only wastes memory.
	_ = region.Advise(0, region.Size(), mmap.AccessRandom)

	a := &Allocator{
		pageSize:     cfg.PageSize,
		releasePages: cfg.ReleaseFreedPages && cfg.PageSize%os.Getpagesize() == 0,
		region:       region,
		data:         region.Bytes(),
		pool:         pool,
		acquirer:     o.acquirer,
		logger:       o.logger,
	}

	a.logger.Debug("native region reserved",
		"page_size", cfg.PageSize,
		"pages", numPages,
		"stripes", pool.NumStripes(),
	)

	return a, nil
}

// PageSize returns the page size in bytes.
func (a *Allocator) PageSize() int {
	return a.pageSize
}

// PagesFor returns the number of pages a buffer of capacityBytes claims.
func (a *Allocator) PagesFor(capacityBytes int) int {
	if capacityBytes <= 0 {
		return 0
	}
	return (capacityBytes + a.pageSize - 1) / a.pageSize
}

// Allocate claims enough pages for capacityBytes and returns a buffer handle.
// Failures are counted in NumAllocationExceptions; the allocator never retries.
func (a *Allocator) Allocate(capacityBytes int) (*Buffer, error) {
	if a.closed.Load() {
		return nil, a.allocationFailed(capacityBytes, 0, ErrClosed)
	}
	if capacityBytes <= 0 {
		return nil, a.allocationFailed(capacityBytes, 0, ErrInvalidCapacity)
	}

	n := a.PagesFor(capacityBytes)
	charge := int64(n) * int64(a.pageSize)

	if a.acquirer != nil && !a.acquirer.TryAcquireMemory(charge) {
		return nil, a.allocationFailed(capacityBytes, n, ErrBudgetExceeded)
	}

	pages, err := a.pool.Allocate(n)
	if err != nil {
		if a.acquirer != nil {
			a.acquirer.ReleaseMemory(charge)
		}
		return nil, a.allocationFailed(capacityBytes, n, fmt.Errorf("%w: %w", ErrOutOfPages, err))
	}

	return &Buffer{
		owner:    a,
		pages:    pages,
		capacity: capacityBytes,
	}, nil
}

// Free releases the pages claimed by buf and invalidates the handle.
// A second Free of the same handle reports ErrDoubleFree.
func (a *Allocator) Free(buf *Buffer) error {
	if buf == nil {
		return a.freeFailed(0, ErrNilBuffer)
	}
	if buf.owner != a {
		return a.freeFailed(len(buf.pages), ErrForeignBuffer)
	}
	if buf.freed.Swap(true) {
		return a.freeFailed(len(buf.pages), ErrDoubleFree)
	}

	if a.releasePages {
		a.mu.RLock()
		if !a.closed.Load() {
			for _, idx := range buf.pages {
				off := int(idx) * a.pageSize
				_ = a.region.Advise(off, a.pageSize, mmap.AccessDontNeed)
			}
		}
		a.mu.RUnlock()
	}

	if err := a.pool.Free(buf.pages); err != nil {
		// Unreachable while handles are consumed exactly once, but a
		// corrupted page list must not take the process down.
		cause := err
		if errors.Is(err, page.ErrDoubleFree) {
			cause = fmt.Errorf("%w: %w", ErrDoubleFree, err)
		}
		return a.freeFailed(len(buf.pages), cause)
	}

	if a.acquirer != nil {
		a.acquirer.ReleaseMemory(int64(len(buf.pages)) * int64(a.pageSize))
	}
	return nil
}

func (a *Allocator) allocationFailed(capacityBytes, pages int, cause error) error {
	a.allocExceptions.Add(1)
	a.logger.Warn("native allocation failed",
		"capacity_bytes", capacityBytes,
		"pages", pages,
		"free_pages", a.pool.NumFree(),
		"error", cause,
	)
	return &AllocationError{CapacityBytes: capacityBytes, Pages: pages, cause: cause}
}

func (a *Allocator) freeFailed(pages int, cause error) error {
	a.freeExceptions.Add(1)
	a.logger.Error("native free failed",
		"pages", pages,
		"error", cause,
	)
	return &FreeError{Pages: pages, cause: cause}
}

// NumFreePages returns the number of unclaimed pages.
func (a *Allocator) NumFreePages() int { return a.pool.NumFree() }

// NumUsedPages returns the number of claimed pages.
func (a *Allocator) NumUsedPages() int { return a.pool.NumUsed() }

// TotalNumPages returns the number of pages in the region.
func (a *Allocator) TotalNumPages() int { return a.pool.NumPages() }

// NumAllocationExceptions returns how many Allocate calls failed.
func (a *Allocator) NumAllocationExceptions() int64 { return a.allocExceptions.Load() }

// NumFreeExceptions returns how many Free calls failed.
func (a *Allocator) NumFreeExceptions() int64 { return a.freeExceptions.Load() }

// Stats is a point-in-time snapshot of the allocator counters.
type Stats struct {
	PageSize                int
	NumFreePages            int
	NumUsedPages            int
	TotalNumPages           int
	NumAllocationExceptions int64
	NumFreeExceptions       int64
}

// Stats returns the current counters.
func (a *Allocator) Stats() Stats {
	return Stats{
		PageSize:                a.pageSize,
		NumFreePages:            a.NumFreePages(),
		NumUsedPages:            a.NumUsedPages(),
		TotalNumPages:           a.TotalNumPages(),
		NumAllocationExceptions: a.NumAllocationExceptions(),
		NumFreeExceptions:       a.NumFreeExceptions(),
	}
}

// Close unmaps the region. It waits for copies in flight; afterwards
// buffers still alive become unusable and copies through them report
// ErrClosed.
func (a *Allocator) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed.Swap(true) {
		return nil
	}
	if used := a.pool.NumUsed(); used > 0 {
		a.logger.Warn("closing allocator with live buffers", "used_pages", used)
	}
	return a.region.Close()
}
