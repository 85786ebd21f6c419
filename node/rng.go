package node

// rng.go — per-node jitter source for the election wait window.
//
// spec.md §9 asks for a pseudo-random stream seeded from node id XOR start
// time: deterministic enough to be useful in tests, not required to be so
// for correctness. Mirrors the teacher's small mutex-guarded helper types
// (LamportClock in the auction node) rather than reaching for a new
// dependency — math/rand is the obvious, and only, fit for a jitter knob
// this small.

import (
	"math/rand"
	"sync"
	"time"
)

const electionJitterMax = 200 * time.Millisecond

type jitterSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// newJitterSource seeds the stream from id XOR the current wall clock, per
// spec.md §9. Tests that need determinism should use newJitterSourceSeeded
// instead.
func newJitterSource(id uint8) *jitterSource {
	seed := int64(id) ^ time.Now().UnixNano()
	return &jitterSource{rnd: rand.New(rand.NewSource(seed))}
}

// newJitterSourceSeeded builds a jitter source from an explicit seed, for
// deterministic tests.
func newJitterSourceSeeded(seed int64) *jitterSource {
	return &jitterSource{rnd: rand.New(rand.NewSource(seed))}
}

// next draws a uniform delay in [0, electionJitterMax).
func (j *jitterSource) next() time.Duration {
	j.mu.Lock()
	defer j.mu.Unlock()
	return time.Duration(j.rnd.Int63n(int64(electionJitterMax)))
}
