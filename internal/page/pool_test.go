package page

import (
	"sync"
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("stripes clamped to page count", func(t *testing.T) {
		p, err := New(4, 16)
		require.NoError(t, err)
		assert.Equal(t, 4, p.NumStripes())
		assert.Equal(t, 4, p.NumPages())
		assert.Equal(t, 4, p.NumFree())
		assert.Equal(t, 0, p.NumUsed())
	})

	t.Run("at least one stripe", func(t *testing.T) {
		p, err := New(8, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, p.NumStripes())
	})

	t.Run("invalid page count", func(t *testing.T) {
		_, err := New(0, 1)
		assert.ErrorIs(t, err, ErrInvalidCount)
	})
}

func TestPool_AllocateFree(t *testing.T) {
	p, err := New(4, 2)
	require.NoError(t, err)

	pages, err := p.Allocate(3)
	require.NoError(t, err)
	assert.Len(t, pages, 3)
	assert.Equal(t, 1, p.NumFree())
	assert.Equal(t, 3, p.NumUsed())

	seen := bitset.New(4)
	for _, idx := range pages {
		assert.Less(t, idx, uint32(4))
		assert.False(t, seen.Test(uint(idx)), "page %d handed out twice", idx)
		seen.Set(uint(idx))
		assert.False(t, p.IsFree(idx))
	}

	_, err = p.Allocate(2)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 1, p.NumFree(), "failed allocation must not leak a reservation")

	require.NoError(t, p.Free(pages))
	assert.Equal(t, 4, p.NumFree())
	assert.Equal(t, 0, p.NumUsed())
	assert.Equal(t, uint64(4), p.FreeSet().GetCardinality())
}

func TestPool_InvalidCount(t *testing.T) {
	p, err := New(4, 1)
	require.NoError(t, err)

	_, err = p.Allocate(0)
	assert.ErrorIs(t, err, ErrInvalidCount)
	_, err = p.Allocate(-3)
	assert.ErrorIs(t, err, ErrInvalidCount)
}

func TestPool_FreeErrors(t *testing.T) {
	p, err := New(4, 2)
	require.NoError(t, err)

	pages, err := p.Allocate(2)
	require.NoError(t, err)
	require.NoError(t, p.Free(pages))

	t.Run("double free", func(t *testing.T) {
		err := p.Free(pages[:1])
		assert.ErrorIs(t, err, ErrDoubleFree)
		assert.Equal(t, 4, p.NumFree())
	})

	t.Run("out of range", func(t *testing.T) {
		err := p.Free([]uint32{99})
		assert.ErrorIs(t, err, ErrInvalidPage)
		assert.Equal(t, 4, p.NumFree())
	})

	t.Run("valid pages still released", func(t *testing.T) {
		claimed, err := p.Allocate(1)
		require.NoError(t, err)

		err = p.Free([]uint32{claimed[0], 99})
		assert.ErrorIs(t, err, ErrInvalidPage)
		assert.Equal(t, 4, p.NumFree())
		assert.True(t, p.IsFree(claimed[0]))
	})
}

func TestPool_FillsAcrossStripes(t *testing.T) {
	p, err := New(16, 4)
	require.NoError(t, err)

	pages, err := p.Allocate(16)
	require.NoError(t, err)
	assert.Len(t, pages, 16)
	assert.Equal(t, 0, p.NumFree())
	assert.True(t, p.FreeSet().IsEmpty())

	require.NoError(t, p.Free(pages))
	assert.Equal(t, 16, p.NumFree())
}

func TestPool_Concurrent(t *testing.T) {
	const (
		numPages   = 256
		goroutines = 16
		iterations = 500
	)

	p, err := New(numPages, 8)
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		owned = make(map[uint32]int)
		wg    sync.WaitGroup
	)

	claim := func(g int, pages []uint32) {
		mu.Lock()
		defer mu.Unlock()
		for _, idx := range pages {
			if prev, ok := owned[idx]; ok {
				t.Errorf("page %d claimed by %d and %d", idx, prev, g)
			}
			owned[idx] = g
		}
	}
	release := func(pages []uint32) {
		mu.Lock()
		defer mu.Unlock()
		for _, idx := range pages {
			delete(owned, idx)
		}
	}

	for g := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range iterations {
				pages, err := p.Allocate(1 + (g+i)%7)
				if err != nil {
					assert.ErrorIs(t, err, ErrExhausted)
					continue
				}
				claim(g, pages)
				release(pages)
				assert.NoError(t, p.Free(pages))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, numPages, p.NumFree())
	assert.Equal(t, uint64(numPages), p.FreeSet().GetCardinality())
}

func BenchmarkPool_AllocateFree(b *testing.B) {
	p, err := New(1<<16, 32)
	require.NoError(b, err)

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			pages, err := p.Allocate(4)
			if err != nil {
				b.Fatal(err)
			}
			if err := p.Free(pages); err != nil {
				b.Fatal(err)
			}
		}
	})
}
