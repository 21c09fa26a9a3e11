// Package testutil provides testing utilities for nativemem.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe RNG and helpers for generating
// payloads and skewed key workloads.
//
// # Payloads
//
//	rng := testutil.NewRNG(seed)
//	p := rng.Payload(100)                 // 100 random bytes
//	ps := rng.Payloads(1000, 16, 4096)    // sizes in [16, 4096]
//
// # Skewed Access
//
//	keys := testutil.Keys("user", 10_000)
//	k := keys[rng.Zipf(len(keys), 1.2)]
package testutil
