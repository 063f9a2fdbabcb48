//go:build !integration

package floorbandit

import (
	"math"
	"sync"
	"testing"
)

// sequenceSource replays a scripted list of uniforms, repeating the last
// value once the script runs out.
type sequenceSource struct {
	mu   sync.Mutex
	vals []float64
	idx  int
}

func (s *sequenceSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.idx < len(s.vals) {
		v := s.vals[s.idx]
		s.idx++
		return v
	}
	if len(s.vals) > 0 {
		return s.vals[len(s.vals)-1]
	}
	return 0.5
}

func TestBetaStaysInOpenUnitInterval(t *testing.T) {
	sampler := NewSampler(NewSeededSource(42))

	params := [][2]float64{
		{1, 1},
		{2, 5},
		{30, 2},
		{0.5, 0.5}, // sub-unit shapes exercise the boost path
		{101, 11},
	}

	for _, p := range params {
		for i := 0; i < 10000; i++ {
			v := sampler.Beta(p[0], p[1])
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("Beta(%v,%v) draw %d is not finite: %v", p[0], p[1], i, v)
			}
			if v <= 0 || v >= 1 {
				t.Fatalf("Beta(%v,%v) draw %d outside (0,1): %v", p[0], p[1], i, v)
			}
		}
	}
}

func TestStandardNormalGuardsZeroUniform(t *testing.T) {
	src := &sequenceSource{vals: []float64{0, 0.25, 0.3, 0.6}}
	sampler := NewSampler(src)

	v := sampler.StandardNormal()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		t.Fatalf("StandardNormal with u1=0 must stay finite, got %v", v)
	}
}

func TestStandardNormalMoments(t *testing.T) {
	sampler := NewSampler(NewSeededSource(7))

	const n = 20000
	sum := 0.0
	sumSq := 0.0
	for i := 0; i < n; i++ {
		v := sampler.StandardNormal()
		sum += v
		sumSq += v * v
	}

	mean := sum / n
	variance := sumSq/n - mean*mean

	if math.Abs(mean) > 0.05 {
		t.Fatalf("sample mean too far from 0: %v", mean)
	}
	if math.Abs(variance-1) > 0.1 {
		t.Fatalf("sample variance too far from 1: %v", variance)
	}
}

func TestGammaMoments(t *testing.T) {
	sampler := NewSampler(NewSeededSource(11))

	cases := []struct {
		shape, scale float64
	}{
		{0.5, 1.0},
		{1.0, 1.0},
		{2.0, 1.0},
		{9.0, 0.5},
	}

	const n = 20000
	for _, c := range cases {
		sum := 0.0
		for i := 0; i < n; i++ {
			v := sampler.Gamma(c.shape, c.scale)
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				t.Fatalf("Gamma(%v,%v) draw %d invalid: %v", c.shape, c.scale, i, v)
			}
			sum += v
		}

		mean := sum / n
		want := c.shape * c.scale
		if math.Abs(mean-want) > 0.15*want+0.05 {
			t.Fatalf("Gamma(%v,%v) sample mean %v too far from %v", c.shape, c.scale, mean, want)
		}
	}
}

func TestBetaMeanMatchesPosterior(t *testing.T) {
	sampler := NewSampler(NewSeededSource(99))

	// Beta(8,2) has mean 0.8
	const n = 10000
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += sampler.Beta(8, 2)
	}

	mean := sum / n
	if math.Abs(mean-0.8) > 0.03 {
		t.Fatalf("Beta(8,2) sample mean %v too far from 0.8", mean)
	}
}

func TestBetaDegenerateZeroGammaDraws(t *testing.T) {
	sampler := NewSampler(&sequenceSource{vals: []float64{0.5}})

	// shape 0 forces both Gamma draws to 0 through the boost trick
	v := sampler.Beta(0, 0)
	if v != 0.5 {
		t.Fatalf("Beta(0,0) should fall back to 0.5, got %v", v)
	}
}

func TestSeededSamplerDeterminism(t *testing.T) {
	s1 := NewSampler(NewSeededSource(1234))
	s2 := NewSampler(NewSeededSource(1234))

	for i := 0; i < 1000; i++ {
		if v1, v2 := s1.StandardNormal(), s2.StandardNormal(); v1 != v2 {
			t.Fatalf("normal draw %d differs: %v vs %v", i, v1, v2)
		}
		if v1, v2 := s1.Gamma(2.5, 1), s2.Gamma(2.5, 1); v1 != v2 {
			t.Fatalf("gamma draw %d differs: %v vs %v", i, v1, v2)
		}
		if v1, v2 := s1.Beta(3, 7), s2.Beta(3, 7); v1 != v2 {
			t.Fatalf("beta draw %d differs: %v vs %v", i, v1, v2)
		}
	}
}
