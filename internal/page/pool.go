package page

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"
)

var (
	// ErrExhausted is returned when fewer free pages remain than requested.
	ErrExhausted = errors.New("page: pool exhausted")
	// ErrInvalidCount is returned when a non-positive page count is requested.
	ErrInvalidCount = errors.New("page: invalid page count")
	// ErrInvalidPage is returned when freeing an index outside the pool.
	ErrInvalidPage = errors.New("page: invalid page index")
	// ErrDoubleFree is returned when freeing a page that is already free.
	ErrDoubleFree = errors.New("page: page already free")
)

type stripe struct {
	mu   sync.Mutex
	free *roaring.Bitmap
}

// take moves up to n free pages (lowest index first) into dst.
func (s *stripe) take(dst []uint32, n int) []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	for n > 0 && !s.free.IsEmpty() {
		idx := s.free.Minimum()
		s.free.Remove(idx)
		dst = append(dst, idx)
		n--
	}
	return dst
}

// Pool tracks which pages of a fixed-size region are free.
type Pool struct {
	numPages int
	stripes  []*stripe
	free     atomic.Int64
	cursor   atomic.Uint32
}

// New creates a pool of numPages pages split across numStripes stripes.
// The stripe count is clamped to [1, numPages].
func New(numPages, numStripes int) (*Pool, error) {
	if numPages <= 0 || uint64(numPages) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d pages", ErrInvalidCount, numPages)
	}
	numStripes = max(1, min(numStripes, numPages))

	p := &Pool{
		numPages: numPages,
		stripes:  make([]*stripe, numStripes),
	}
	for i := range p.stripes {
		p.stripes[i] = &stripe{free: roaring.New()}
	}
	for i := range numPages {
		p.stripes[i%numStripes].free.Add(uint32(i))
	}
	for _, s := range p.stripes {
		s.free.RunOptimize()
	}
	p.free.Store(int64(numPages))

	return p, nil
}

// Allocate claims count pages and returns their indices.
func (p *Pool) Allocate(count int) ([]uint32, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}
	if !p.reserve(int64(count)) {
		return nil, fmt.Errorf("%w: requested %d, free %d", ErrExhausted, count, p.free.Load())
	}

	pages := make([]uint32, 0, count)
	n := len(p.stripes)
	start := int(p.cursor.Add(1)) % n

	// The reservation guarantees enough pages exist across the stripes; a
	// pass can still come up short when pages are returned to a stripe we
	// already visited, so keep sweeping until the claim is complete.
	for len(pages) < count {
		for i := 0; i < n && len(pages) < count; i++ {
			pages = p.stripes[(start+i)%n].take(pages, count-len(pages))
		}
	}

	return pages, nil
}

func (p *Pool) reserve(count int64) bool {
	for {
		cur := p.free.Load()
		if cur < count {
			return false
		}
		if p.free.CompareAndSwap(cur, cur-count) {
			return true
		}
	}
}

// Free returns pages to the pool. Invalid or already-free indices are
// skipped and reported; the remaining pages are still released.
func (p *Pool) Free(pages []uint32) error {
	var errs []error
	for _, idx := range pages {
		if int(idx) >= p.numPages {
			errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidPage, idx))
			continue
		}

		s := p.stripes[int(idx)%len(p.stripes)]
		s.mu.Lock()
		added := s.free.CheckedAdd(idx)
		s.mu.Unlock()

		if !added {
			errs = append(errs, fmt.Errorf("%w: %d", ErrDoubleFree, idx))
			continue
		}
		p.free.Add(1)
	}
	return errors.Join(errs...)
}

// NumPages returns the total number of pages.
func (p *Pool) NumPages() int {
	return p.numPages
}

// NumFree returns the number of pages available for allocation.
func (p *Pool) NumFree() int {
	return int(p.free.Load())
}

// NumUsed returns the number of claimed pages.
func (p *Pool) NumUsed() int {
	return p.numPages - int(p.free.Load())
}

// NumStripes returns the number of stripes.
func (p *Pool) NumStripes() int {
	return len(p.stripes)
}

// IsFree reports whether the page at idx is currently free.
func (p *Pool) IsFree(idx uint32) bool {
	if int(idx) >= p.numPages {
		return false
	}
	s := p.stripes[int(idx)%len(p.stripes)]
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.free.Contains(idx)
}

// FreeSet returns a snapshot of all free page indices.
// Stripes are locked one at a time, so the snapshot is only exact when no
// allocation or free is in flight.
func (p *Pool) FreeSet() *roaring.Bitmap {
	out := roaring.New()
	for _, s := range p.stripes {
		s.mu.Lock()
		out.Or(s.free)
		s.mu.Unlock()
	}
	return out
}
