// Package scene holds the renderable data: primitives, materials, lights and
// the nearest-hit query over them.
package scene

import (
	"math"

	"github.com/taigrr/prism/pkg/math3d"
)

const (
	// Epsilon is the smallest accepted hit parameter. Hits closer than this
	// are treated as self-intersections of a ray leaving a surface.
	Epsilon = 1e-3

	// TMax rejects hits so far away they are numerical blow-up.
	TMax = 1e9

	// PlaneRadius is the radius of the sphere that stands in for a plane.
	PlaneRadius = 10000.0
)

// Primitive is a surface that can be hit by rays.
type Primitive interface {
	// Intersect returns the nearest hit point in (Epsilon, TMax) along the ray.
	Intersect(ray math3d.Ray) (math3d.Vec3, bool)

	// Normal returns the outward unit normal at a point on the surface.
	Normal(point math3d.Vec3) math3d.Vec3

	// Material returns the surface material.
	Material() *Material
}

// Sphere is a sphere primitive.
type Sphere struct {
	Center math3d.Vec3
	Radius float64
	Mat    *Material
}

// NewSphere creates a new sphere.
func NewSphere(center math3d.Vec3, radius float64, mat *Material) *Sphere {
	return &Sphere{Center: center, Radius: radius, Mat: mat}
}

// NewSpherePlane approximates the plane through point with the given normal
// by a sphere of radius PlaneRadius whose surface touches point.
func NewSpherePlane(point, normal math3d.Vec3, mat *Material) *Sphere {
	n := normal.Normalize()
	return &Sphere{
		Center: point.Sub(n.Scale(PlaneRadius)),
		Radius: PlaneRadius,
		Mat:    mat,
	}
}

// Intersect solves <d,d>t² + 2<d,CO>t + <CO,CO> - r² = 0 and returns the
// smaller root in range, falling back to the larger one.
func (s *Sphere) Intersect(ray math3d.Ray) (math3d.Vec3, bool) {
	co := ray.Origin.Sub(s.Center)
	a := ray.Direction.Dot(ray.Direction)
	if a == 0 {
		return math3d.Vec3{}, false
	}
	halfB := co.Dot(ray.Direction)
	c := co.Dot(co) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return math3d.Vec3{}, false
	}
	sqrtD := math.Sqrt(discriminant)

	root := (-halfB - sqrtD) / a
	if !inRange(root) {
		root = (-halfB + sqrtD) / a
		if !inRange(root) {
			return math3d.Vec3{}, false
		}
	}

	return ray.At(root), true
}

// Normal returns normalize(point - center).
func (s *Sphere) Normal(point math3d.Vec3) math3d.Vec3 {
	return point.Sub(s.Center).Normalize()
}

// Material returns the sphere material.
func (s *Sphere) Material() *Material {
	return s.Mat
}

// Plane is an analytic infinite plane. It is a drop-in for NewSpherePlane
// that does not curve away at large distances.
type Plane struct {
	Point math3d.Vec3
	Norm  math3d.Vec3
	Mat   *Material
}

// NewPlane creates a new plane; the normal is normalized.
func NewPlane(point, normal math3d.Vec3, mat *Material) *Plane {
	return &Plane{Point: point, Norm: normal.Normalize(), Mat: mat}
}

// Intersect returns the point where the ray crosses the plane.
func (p *Plane) Intersect(ray math3d.Ray) (math3d.Vec3, bool) {
	denom := ray.Direction.Dot(p.Norm)
	if math.Abs(denom) < 1e-12 {
		return math3d.Vec3{}, false
	}
	t := p.Point.Sub(ray.Origin).Dot(p.Norm) / denom
	if !inRange(t) {
		return math3d.Vec3{}, false
	}
	return ray.At(t), true
}

// Normal returns the plane normal.
func (p *Plane) Normal(math3d.Vec3) math3d.Vec3 {
	return p.Norm
}

// Material returns the plane material.
func (p *Plane) Material() *Material {
	return p.Mat
}

func inRange(t float64) bool {
	return t > Epsilon && t < TMax
}
