package math3d

import "math/rand"

// RandomInUnitSphere returns a point drawn uniformly from the open unit ball
// by rejection sampling the enclosing cube.
func RandomInUnitSphere(rng *rand.Rand) Vec3 {
	for {
		p := Vec3{
			X: 2*rng.Float64() - 1,
			Y: 2*rng.Float64() - 1,
			Z: 2*rng.Float64() - 1,
		}
		if l := p.LenSq(); l < 1 && l > 0 {
			return p
		}
	}
}

// RandomUnitVector returns a direction uniformly distributed on the unit sphere.
func RandomUnitVector(rng *rand.Rand) Vec3 {
	return RandomInUnitSphere(rng).Normalize()
}
