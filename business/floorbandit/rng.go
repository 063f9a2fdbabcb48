package floorbandit

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
)

// RandomSource supplies uniform draws in [0, 1). Implementations must be
// safe for concurrent use. Injected so tests (and decision replays) can
// seed determinism.
type RandomSource interface {
	Float64() float64
}

type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// NewRandomSource returns the default source: a PCG generator seeded from
// crypto/rand.
func NewRandomSource() RandomSource {
	var b [16]byte
	if _, err := crand.Read(b[:]); err != nil {
		return &lockedSource{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
	}

	hi := binary.LittleEndian.Uint64(b[0:8])
	lo := binary.LittleEndian.Uint64(b[8:16])

	return &lockedSource{rng: rand.New(rand.NewPCG(hi, lo))}
}

// NewSeededSource returns a deterministic source for a fixed seed.
func NewSeededSource(seed uint64) RandomSource {
	return &lockedSource{rng: rand.New(rand.NewPCG(seed, seed))}
}
