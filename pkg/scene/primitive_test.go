package scene

import (
	"math"
	"math/rand"
	"testing"

	"github.com/taigrr/prism/pkg/math3d"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestSphereIntersect(t *testing.T) {
	s := NewSphere(math3d.V3(0, 0, -5), 1, NewDiffuse(math3d.Splat3(0.5)))

	tests := []struct {
		name     string
		ray      math3d.Ray
		hit      bool
		distance float64
	}{
		{"aimed at center", math3d.NewRay(math3d.Vec3{}, math3d.V3(0, 0, -1)), true, 4},
		{"offset inside radius", math3d.NewRay(math3d.V3(0.5, 0, 0), math3d.V3(0, 0, -1)), true, 5 - math.Sqrt(0.75)},
		{"perpendicular offset beyond radius", math3d.NewRay(math3d.V3(1.5, 0, 0), math3d.V3(0, 0, -1)), false, 0},
		{"pointing away", math3d.NewRay(math3d.Vec3{}, math3d.V3(0, 0, 1)), false, 0},
		{"from inside", math3d.NewRay(math3d.V3(0, 0, -5), math3d.V3(0, 1, 0)), true, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, ok := s.Intersect(tc.ray)
			if ok != tc.hit {
				t.Fatalf("hit = %v, want %v", ok, tc.hit)
			}
			if !ok {
				return
			}
			if d := p.Distance(tc.ray.Origin); !approxEqual(d, tc.distance, 1e-9) {
				t.Errorf("distance = %v, want %v", d, tc.distance)
			}
		})
	}
}

func TestSphereRejectsSelfIntersection(t *testing.T) {
	s := NewSphere(math3d.Vec3{}, 1, NewDiffuse(math3d.Splat3(0.5)))

	// A ray starting on the surface and leaving it must not hit at t≈0.
	origin := math3d.V3(0, 0, 1)
	if _, ok := s.Intersect(math3d.NewRay(origin, math3d.V3(0, 0, 1))); ok {
		t.Error("ray leaving the surface hit the sphere")
	}

	// Starting just above the surface, closer than Epsilon, is rejected too.
	origin = math3d.V3(0, 0, 1+Epsilon/2)
	if _, ok := s.Intersect(math3d.NewRay(origin, math3d.V3(0, 0, 1))); ok {
		t.Error("hit within epsilon accepted")
	}

	// Entering from the surface reaches the far side instead.
	p, ok := s.Intersect(math3d.NewRay(math3d.V3(0, 0, 1), math3d.V3(0, 0, -1)))
	if !ok || !approxEqual(p.Z, -1, 1e-9) {
		t.Errorf("far side hit = %+v, %v", p, ok)
	}
}

func TestSphereNormal(t *testing.T) {
	s := NewSphere(math3d.V3(1, 1, 1), 2, NewDiffuse(math3d.Splat3(0.5)))
	n := s.Normal(math3d.V3(1, 3, 1))
	if n != math3d.V3(0, 1, 0) {
		t.Errorf("Normal = %+v, want (0,1,0)", n)
	}
}

func TestSpherePlaneMatchesAnalyticPlane(t *testing.T) {
	mat := NewWall(math3d.Splat3(1))
	point := math3d.V3(0, -0.5, 1)
	normal := math3d.V3(0, 1, 0)
	giant := NewSpherePlane(point, normal, mat)
	flat := NewPlane(point, normal, mat)

	rng := rand.New(rand.NewSource(5))
	for range 500 {
		origin := math3d.V3(rng.Float64()*3-1.5, rng.Float64()*2, rng.Float64()*4)
		dir := math3d.V3(rng.Float64()-0.5, -rng.Float64()-0.1, rng.Float64()-0.5).Normalize()
		ray := math3d.NewRay(origin, dir)

		pg, okG := giant.Intersect(ray)
		pf, okF := flat.Intersect(ray)
		if okG != okF {
			t.Fatalf("hit mismatch for %+v: sphere %v plane %v", ray, okG, okF)
		}
		// Near the touch point the giant sphere is flat to well under 1e-3.
		if pf.Distance(point) < 1 && pg.Distance(pf) > 2e-3 {
			t.Fatalf("hit points differ: %+v vs %+v", pg, pf)
		}
		if pf.Distance(point) < 1 && giant.Normal(pg).Dot(normal) < 1-1e-6 {
			t.Fatalf("normal %+v deviates from %+v", giant.Normal(pg), normal)
		}
	}
}

func TestPlaneParallelRayMisses(t *testing.T) {
	p := NewPlane(math3d.Vec3{}, math3d.V3(0, 1, 0), NewWall(math3d.Splat3(1)))
	if _, ok := p.Intersect(math3d.NewRay(math3d.V3(0, 1, 0), math3d.V3(1, 0, 0))); ok {
		t.Error("parallel ray hit the plane")
	}
}
