package floorbandit

import "math"

// minUniform keeps math.Log finite when a uniform draw lands on exactly 0.
const minUniform = 1e-12

// Sampler produces Standard-Normal, Gamma, and Beta variates from a single
// RandomSource. Pure CPU work, no locking needed beyond the source's own.
type Sampler struct {
	src RandomSource
}

func NewSampler(src RandomSource) *Sampler {
	if src == nil {
		src = NewRandomSource()
	}
	return &Sampler{src: src}
}

// Uniform returns one draw in [0, 1).
func (s *Sampler) Uniform() float64 {
	return s.src.Float64()
}

// StandardNormal returns one draw via the Box-Muller transform.
func (s *Sampler) StandardNormal() float64 {
	u1 := s.src.Float64()
	if u1 < minUniform {
		u1 = minUniform
	}
	u2 := s.src.Float64()

	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// Gamma returns one draw from Gamma(shape, scale) using Marsaglia and
// Tsang's method.
func (s *Sampler) Gamma(shape, scale float64) float64 {
	// boost trick for sub-unit shape:
	// Gamma(shape) = Gamma(shape+1) * U^(1/shape)
	if shape < 1 {
		return s.Gamma(shape+1, scale) * math.Pow(s.src.Float64(), 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)

	for {
		x := s.StandardNormal()
		v := 1.0 + c*x
		v = v * v * v

		if v <= 0 {
			continue
		}

		u := s.src.Float64()
		x2 := x * x

		// squeeze check first, log check as fallback
		if u < 1.0-0.0331*x2*x2 {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x2+d*(1-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// Beta returns one draw from Beta(alpha, beta) as a ratio of two Gamma
// draws: Gamma(a,1) / (Gamma(a,1) + Gamma(b,1)).
func (s *Sampler) Beta(alpha, beta float64) float64 {
	ga := s.Gamma(alpha, 1.0)
	gb := s.Gamma(beta, 1.0)

	if ga+gb == 0 {
		return 0.5
	}

	return ga / (ga + gb)
}
