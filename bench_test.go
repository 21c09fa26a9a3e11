package nativemem

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/nativemem/allocator"
	"github.com/hupe1980/nativemem/serializer"
	"github.com/hupe1980/nativemem/testutil"
)

func BenchmarkMap_ZipfWorkload(b *testing.B) {
	alloc, err := allocator.New(allocator.Config{PageSize: 256, TotalBytes: 256 * 8192})
	require.NoError(b, err)
	defer alloc.Close()

	m, err := New[string](alloc, serializer.Bytes(),
		WithPooledReadBuffers(1024),
		WithWeightedLRUEviction(1<<20),
	)
	require.NoError(b, err)
	defer m.Close()

	rng := testutil.NewRNG(42)
	keys := testutil.Keys("key", 4096)
	payloads := rng.Payloads(64, 64, 1024)

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			key := keys[rng.Zipf(len(keys), 1.1)]
			if i%4 == 0 {
				p := payloads[i%len(payloads)]
				_, _ = m.Put(key, &p)
			} else {
				_, _, _ = m.Get(key)
			}
			i++
		}
	})
}
