package testutil

import (
	"math"
	"math/rand"
	"strconv"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex

	// cached harmonic number for Zipf, keyed by (n, s)
	zipfN   int
	zipfS   float64
	zipfHNS float64
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// IntRange returns a pseudo-random number in [minVal, maxVal].
func (r *RNG) IntRange(minVal, maxVal int) int {
	if maxVal <= minVal {
		return minVal
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return minVal + r.rand.Intn(maxVal-minVal+1)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Payload returns n random bytes.
func (r *RNG) Payload(n int) []byte {
	p := make([]byte, n)
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = r.rand.Read(p)
	return p
}

// Payloads returns num random payloads with lengths in [minLen, maxLen].
// Locks only once per call.
func (r *RNG) Payloads(num, minLen, maxLen int) [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([][]byte, num)
	for i := range out {
		n := minLen
		if maxLen > minLen {
			n += r.rand.Intn(maxLen - minLen + 1)
		}
		out[i] = make([]byte, n)
		_, _ = r.rand.Read(out[i])
	}
	return out
}

// Zipf returns a Zipfian-distributed value in [0, n).
// Uses Zipf's law: P(k) ∝ 1/k^s where s is the skew parameter.
// s=1.0 gives standard Zipf, s=1.5 gives heavy-tail (80/20 rule).
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	if r.zipfN != n || r.zipfS != s {
		var hns float64
		for i := 1; i <= n; i++ {
			hns += 1.0 / math.Pow(float64(i), s)
		}
		r.zipfN, r.zipfS, r.zipfHNS = n, s, hns
	}

	// Inverse transform over the cumulative weights.
	u := r.rand.Float64() * r.zipfHNS
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1 // 0-indexed
		}
	}

	return n - 1
}

// Keys returns num distinct keys of the form prefix-i.
func Keys(prefix string, num int) []string {
	keys := make([]string, num)
	for i := range keys {
		keys[i] = prefix + "-" + strconv.Itoa(i)
	}
	return keys
}
