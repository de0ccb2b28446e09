package tracer

import (
	"testing"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/scene"
)

// floorScene returns a matte floor at y=0 lit from (0,4,0) with unit
// irradiance at the origin, optionally with a blocker between the two.
func floorScene(t *testing.T, blocker *scene.Material, extra ...scene.Light) *scene.Scene {
	t.Helper()
	floorMat := scene.NewWall(math3d.Splat3(0.5))
	floorMat.Specular = 0
	floorMat.Ambient = 1

	objects := []scene.Primitive{scene.NewPlane(math3d.Vec3{}, math3d.V3(0, 1, 0), floorMat)}
	if blocker != nil {
		objects = append(objects, scene.NewSphere(math3d.V3(0, 2, 0), 0.5, blocker))
	}
	lights := append([]scene.Light{scene.NewPointLight(math3d.V3(0, 4, 0), math3d.Splat3(1), 16)}, extra...)
	return mustScene(t, objects, lights)
}

var down = math3d.NewRay(math3d.V3(0, 1, 0), math3d.V3(0, -1, 0))

func shadeFloor(t *testing.T, s *scene.Scene) math3d.Vec3 {
	t.Helper()
	e := mustEngine(t, s, DefaultOptions())
	hit, ok := s.Hit(down)
	if !ok || hit.Index != 0 {
		t.Fatalf("test ray does not hit the floor")
	}
	return e.Shade(down, hit)
}

func TestShadeShadowWeights(t *testing.T) {
	tests := []struct {
		name    string
		blocker *scene.Material
		want    float64
	}{
		{"unoccluded", nil, 0.5},
		{"behind opaque", scene.NewDiffuse(math3d.Splat3(1)), 0},
		{"behind metal", scene.NewMetal(math3d.Splat3(1)), 0},
		{"behind glass", scene.NewGlass(math3d.Splat3(1)), 0.25},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := shadeFloor(t, floorScene(t, tc.blocker))
			if !vecApproxEqual(got, math3d.Splat3(tc.want), 1e-12) {
				t.Errorf("Shade = %+v, want %v", got, tc.want)
			}
		})
	}
}

func TestShadeAmbientIsUnoccluded(t *testing.T) {
	fill := scene.NewAmbientLight(math3d.Splat3(1), 0.2)
	got := shadeFloor(t, floorScene(t, scene.NewDiffuse(math3d.Splat3(1)), fill))
	if !vecApproxEqual(got, math3d.Splat3(0.1), 1e-12) {
		t.Errorf("Shade = %+v, want ambient 0.1", got)
	}
}

func TestShadeShadowIsPerLight(t *testing.T) {
	// The second light is off to the side, clear of the blocker.
	side := scene.NewPointLight(math3d.V3(4, 0.5, 0), math3d.Splat3(1), 1)
	got := shadeFloor(t, floorScene(t, scene.NewDiffuse(math3d.Splat3(1)), side))
	if got.IsZero() {
		t.Error("unblocked side light contributed nothing")
	}
	if got.X >= 0.5 {
		t.Errorf("Shade = %+v, blocked overhead light still contributes", got)
	}
}

func TestShadeClipsDiffuse(t *testing.T) {
	floorMat := scene.NewWall(math3d.Splat3(1))
	floorMat.Specular = 0
	s := mustScene(t,
		[]scene.Primitive{scene.NewPlane(math3d.Vec3{}, math3d.V3(0, 1, 0), floorMat)},
		[]scene.Light{scene.NewPointLight(math3d.V3(0, 1, 0), math3d.Splat3(1), 100)},
	)
	e := mustEngine(t, s, DefaultOptions())
	ray := math3d.NewRay(math3d.V3(0.5, 1, 0), math3d.V3(0, -1, 0))
	hit, _ := s.Hit(ray)
	if got := e.Shade(ray, hit); !vecApproxEqual(got, math3d.Splat3(1), 1e-12) {
		t.Errorf("Shade = %+v, want clipped to 1", got)
	}
}

func TestShadeSpecularHighlight(t *testing.T) {
	mat := scene.NewWall(math3d.Splat3(0))
	s := mustScene(t,
		[]scene.Primitive{scene.NewPlane(math3d.Vec3{}, math3d.V3(0, 1, 0), mat)},
		[]scene.Light{scene.NewDirectionalLight(math3d.V3(1, -1, 0), math3d.Splat3(1), 1)},
	)
	e := mustEngine(t, s, DefaultOptions())

	// Black material: only the specular term remains. A viewer on the
	// reflected side sees the full highlight, other views see less.
	mirror := math3d.NewRay(math3d.V3(1, 1, 0), math3d.V3(-1, -1, 0).Normalize())
	hit, _ := s.Hit(mirror)
	peak := e.Shade(mirror, hit)
	if !vecApproxEqual(peak, math3d.Splat3(1), 1e-9) {
		t.Errorf("mirror highlight = %+v, want 1", peak)
	}

	off := math3d.NewRay(math3d.V3(-1, 1, 0), math3d.V3(1, -1, 0).Normalize())
	hit, _ = s.Hit(off)
	if got := e.Shade(off, hit); got.X >= peak.X {
		t.Errorf("off-mirror highlight %v not below peak %v", got.X, peak.X)
	}
}

func TestLocalModeShadesEverySurface(t *testing.T) {
	ball := scene.NewSphere(math3d.Vec3{}, 1, scene.NewMetal(math3d.Splat3(1)))
	lights := []scene.Light{scene.NewAmbientLight(math3d.Splat3(1), 0.5)}
	s := mustScene(t, []scene.Primitive{ball}, lights)

	opts := DefaultOptions()
	opts.Mode = ModeLocal
	e := mustEngine(t, s, opts)
	got := e.Trace(forward, DefaultMaxDepth, nil)
	if !vecApproxEqual(got, math3d.Splat3(0.5), 1e-12) {
		t.Errorf("local metal = %+v, want ambient 0.5", got)
	}
}

func TestHybridAddsLocalTerm(t *testing.T) {
	sky := math3d.Splat3(1)
	tint := math3d.Splat3(0.5)
	fill := []scene.Light{scene.NewAmbientLight(math3d.Splat3(1), 1)}
	s := mustScene(t, []scene.Primitive{dome(sky), scene.NewSphere(math3d.Vec3{}, 1, scene.NewMetal(tint))}, fill)

	path := mustEngine(t, s, noRoulette())
	hybridOpts := noRoulette()
	hybridOpts.Mode = ModeHybrid
	hybrid := mustEngine(t, s, hybridOpts)

	base := path.Trace(forward, DefaultMaxDepth, nil)
	mixed := hybrid.Trace(forward, DefaultMaxDepth, nil)
	// Metal mixes 0.1 of its local shading, here the ambient fill 0.5.
	if want := base.Add(math3d.Splat3(0.05)); !vecApproxEqual(mixed, want, 1e-12) {
		t.Errorf("hybrid = %+v, want %+v", mixed, want)
	}
}
