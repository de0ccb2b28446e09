package tracer

import (
	"math"
	"math/rand"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/scene"
)

// scatter returns the color-weighted radiance of the secondary rays the
// material spawns at hit.
func (e *Engine) scatter(ray math3d.Ray, hit scene.HitRecord, mat *scene.Material, p path, rng *rand.Rand) math3d.Vec3 {
	switch mat.Kind {
	case scene.KindDiffuse:
		return mat.Color.Mul(e.diffuse(hit, p, rng))
	case scene.KindMetal:
		dir := ray.Direction.Normalize().Reflect(hit.Normal)
		return mat.Color.Mul(e.trace(math3d.NewRay(hit.Point, dir), p.next(), rng))
	case scene.KindFuzzy:
		return mat.Color.Mul(e.fuzzy(ray, hit, mat.Fuzz, p, rng))
	case scene.KindGlass:
		return mat.Color.Mul(e.glass(ray, hit, mat.RefractiveIndex, p, rng))
	default:
		return math3d.Vec3{}
	}
}

// above reports whether dir leaves the surface on the normal's side.
// Tangent directions count as below.
func above(dir, normal math3d.Vec3) bool {
	return dir.Dot(normal) > 0
}

func (e *Engine) diffuse(hit scene.HitRecord, p path, rng *rand.Rand) math3d.Vec3 {
	dir := hit.Normal.Add(math3d.RandomUnitVector(rng))
	if !above(dir, hit.Normal) {
		return math3d.Vec3{}
	}
	return e.trace(math3d.NewRay(hit.Point, dir.Normalize()), p.next(), rng)
}

// fuzzy averages perturbed mirror reflections. Samples that dip below the
// surface contribute black.
func (e *Engine) fuzzy(ray math3d.Ray, hit scene.HitRecord, fuzz float64, p path, rng *rand.Rand) math3d.Vec3 {
	n := e.opts.FuzzSamples
	if p.fanned {
		n = 1
	}
	next := p.next()
	next.fanned = true

	reflected := ray.Direction.Normalize().Reflect(hit.Normal)
	var sum math3d.Vec3
	for range n {
		dir := reflected.Add(math3d.RandomInUnitSphere(rng).Scale(fuzz))
		if !above(dir, hit.Normal) {
			continue
		}
		sum = sum.Add(e.trace(math3d.NewRay(hit.Point, dir.Normalize()), next, rng))
	}
	return sum.Div(float64(n))
}

// glass splits the ray at a dielectric boundary. eta is the refractive index
// relative to air; it is inverted, and the normal flipped, when the ray is
// leaving the volume.
func (e *Engine) glass(ray math3d.Ray, hit scene.HitRecord, eta float64, p path, rng *rand.Rand) math3d.Vec3 {
	normal := hit.Normal
	if !hit.FrontFace {
		eta = 1 / eta
		normal = normal.Negate()
	}

	unit := ray.Direction.Normalize()
	cosTheta := math.Min(unit.Negate().Dot(normal), 1)
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))

	reflect := func() math3d.Vec3 {
		return e.trace(math3d.NewRay(hit.Point, unit.Reflect(normal)), p.next(), rng)
	}
	refract := func() math3d.Vec3 {
		dir := math3d.Refract(unit, normal, eta).Normalize()
		return e.trace(math3d.NewRay(hit.Point, dir), p.next(), rng)
	}

	if math3d.CannotRefract(sinTheta, eta) {
		return reflect()
	}

	r := math3d.Schlick(cosTheta, eta)
	if e.opts.Glass == GlassBlend {
		return reflect().Scale(r).Add(refract().Scale(1 - r))
	}
	if rng.Float64() < r {
		return reflect()
	}
	return refract()
}
