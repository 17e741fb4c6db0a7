package core

import (
	"math/rand"
)

// MaxRejectionAttempts bounds the rejection-sampling loops below. Every
// candidate drawn by RandomInUnitBall already lies inside the ball and the
// unit disk accepts ~78.5% of draws, so the cap is never reached in practice.
const MaxRejectionAttempts = 1_000_000

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
}

// Vec2 represents a 2D sample point
type Vec2 struct {
	X, Y float64
}

// NewVec2 creates a new Vec2
func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own generator seeded from seed
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// Get3D returns three random float64 values in [0, 1)
func (r *RandomSampler) Get3D() Vec3 {
	return NewVec3(r.random.Float64(), r.random.Float64(), r.random.Float64())
}

// SequenceSampler replays a fixed list of values in [0, 1), wrapping around
// when exhausted. It makes renders bit-for-bit reproducible in regression tests.
type SequenceSampler struct {
	values []float64
	next   int
}

// NewSequenceSampler creates a sampler that cycles through values.
// With no values it always returns 0.
func NewSequenceSampler(values ...float64) *SequenceSampler {
	return &SequenceSampler{values: values}
}

// Get1D returns the next value of the sequence
func (s *SequenceSampler) Get1D() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// Get2D returns the next two values of the sequence
func (s *SequenceSampler) Get2D() Vec2 {
	x := s.Get1D()
	return NewVec2(x, s.Get1D())
}

// Get3D returns the next three values of the sequence
func (s *SequenceSampler) Get3D() Vec3 {
	x := s.Get1D()
	y := s.Get1D()
	return NewVec3(x, y, s.Get1D())
}

// RandomInUnitBall returns a point strictly inside the unit ball.
// Candidates are drawn uniformly from the cube [-0.5, 0.5]^3 and the first
// one with squared length below 1 is accepted, so the result is uniform over
// that cube rather than over the ball.
func RandomInUnitBall(sampler Sampler) Vec3 {
	var p Vec3
	for range MaxRejectionAttempts {
		s := sampler.Get3D()
		p = NewVec3(s.X-0.5, s.Y-0.5, s.Z-0.5)
		if p.LengthSquared() < 1.0 {
			return p
		}
	}
	return p
}

// RandomInUnitDisk generates a random point in the unit disk on the z = 0
// plane (for depth of field) by rejection from the square [-1, 1]^2.
func RandomInUnitDisk(sampler Sampler) Vec3 {
	var p Vec3
	for range MaxRejectionAttempts {
		s := sampler.Get2D()
		p = NewVec3(2*s.X-1, 2*s.Y-1, 0)
		if p.LengthSquared() < 1.0 {
			return p
		}
	}
	return NewVec3(0, 0, 0)
}
