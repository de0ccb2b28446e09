// Package models builds renderable scenes: the built-in scenes, JSON scene
// files and glTF documents.
package models

import (
	"fmt"
	"math"
	"slices"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/render"
	"github.com/taigrr/prism/pkg/scene"
)

// Description is a scene ready to validate and render.
type Description struct {
	Name       string
	Objects    []scene.Primitive
	Lights     []scene.Light
	Camera     render.CameraConfig
	Background math3d.Vec3

	// Warnings lists parts of the source that were skipped.
	Warnings []string
}

// Scene validates the description and builds the scene.
func (d *Description) Scene() (*scene.Scene, error) {
	s, err := scene.New(d.Objects, d.Lights)
	if err != nil {
		return nil, fmt.Errorf("scene %q: %w", d.Name, err)
	}
	return s, nil
}

// Bounds returns the axis-aligned box around the finite spheres. Planes,
// including giant-sphere planes, are unbounded and ignored. ok is false
// when there is nothing finite to enclose.
func (d *Description) Bounds() (lo, hi math3d.Vec3, ok bool) {
	lo = math3d.Splat3(math.Inf(1))
	hi = math3d.Splat3(math.Inf(-1))
	for _, obj := range d.Objects {
		s, isSphere := obj.(*scene.Sphere)
		if !isSphere || s.Radius >= scene.PlaneRadius {
			continue
		}
		r := math3d.Splat3(s.Radius)
		lo = lo.Min(s.Center.Sub(r))
		hi = hi.Max(s.Center.Add(r))
		ok = true
	}
	return lo, hi, ok
}

// FrameCamera places a camera on the +Z side of the bounds so that the whole
// box fits a vertical field of view of fov degrees.
func (d *Description) FrameCamera(fov float64) render.CameraConfig {
	lo, hi, ok := d.Bounds()
	if !ok {
		cfg := render.DefaultCameraConfig()
		cfg.FOV = fov
		return cfg
	}
	center := lo.Add(hi).Scale(0.5)
	radius := hi.Sub(lo).Len() / 2
	dist := radius / math.Sin(fov*math.Pi/360)

	return render.CameraConfig{
		LookFrom: center.Add(math3d.V3(0, 0, dist)),
		LookAt:   center,
		FOV:      fov,
	}
}

var builtins = map[string]func() *Description{
	"cornell": CornellBox,
	"spheres": Spheres,
}

// BuiltinNames returns the names accepted by Builtin, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Builtin returns the built-in scene called name.
func Builtin(name string) (*Description, error) {
	build, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene %q (have %v)", name, BuiltinNames())
	}
	return build(), nil
}

// CornellBox is a closed box of five giant-sphere walls lit by an emissive
// sphere poking through the ceiling, holding one ball of each transport
// material. A point light under the emitter drives local shading.
func CornellBox() *Description {
	white := math3d.Splat3(1)
	plane := func(point, normal, color math3d.Vec3) scene.Primitive {
		return scene.NewSpherePlane(point, normal, scene.NewWall(color))
	}

	return &Description{
		Name: "cornell",
		Objects: []scene.Primitive{
			scene.NewSphere(math3d.V3(0, 5.4, 1), 3, scene.NewLight(white)),
			plane(math3d.V3(0, -0.5, 1), math3d.V3(0, 1, 0), white),                // floor
			plane(math3d.V3(0, 1, -1), math3d.V3(0, 0, 1), white),                  // back
			plane(math3d.V3(1.5, 0, 1), math3d.V3(-1, 0, 0), math3d.V3(0.6, 0, 0)), // right
			plane(math3d.V3(-1.5, 0, 1), math3d.V3(1, 0, 0), math3d.V3(0, 0.6, 0)), // left
			plane(math3d.V3(0, 2.5, 1), math3d.V3(0, -1, 0), white),                // ceiling
			scene.NewSphere(math3d.V3(0, -0.2, 1.5), 0.3, scene.NewDiffuse(math3d.V3(0.8, 0.3, 0.3))),
			scene.NewSphere(math3d.V3(0.8, 0.2, 1), 0.7, scene.NewMetal(math3d.V3(0.6, 0.8, 0.8))),
			scene.NewSphere(math3d.V3(-0.7, 0, 0.5), 0.5, scene.NewGlass(white)),
			scene.NewSphere(math3d.V3(-0.6, -0.3, 2), 0.2, scene.NewFuzzy(math3d.V3(0.8, 0.6, 0.2))),
		},
		Lights: []scene.Light{
			scene.NewPointLight(math3d.V3(0, 2.3, 1), white, 1),
		},
		Camera: render.DefaultCameraConfig(),
	}
}

// Spheres is an open scene: balls on an analytic ground plane under a sky
// emitter, a sun and an ambient fill.
func Spheres() *Description {
	return &Description{
		Name: "spheres",
		Objects: []scene.Primitive{
			scene.NewSphere(math3d.V3(0, 0, 0), 40, scene.NewLight(math3d.V3(0.7, 0.8, 1))),
			scene.NewPlane(math3d.V3(0, -1, 0), math3d.V3(0, 1, 0), scene.NewWall(math3d.V3(0.5, 0.5, 0.45))),
			scene.NewSphere(math3d.V3(0, 0, -1), 1, scene.NewDiffuse(math3d.V3(0.7, 0.3, 0.3))),
			scene.NewSphere(math3d.V3(2.1, 0, -1), 1, scene.NewMetal(math3d.V3(0.8, 0.8, 0.8))),
			scene.NewSphere(math3d.V3(-2.1, 0, -1), 1, scene.NewGlass(math3d.Splat3(1))),
			scene.NewSphere(math3d.V3(0.9, -0.6, 0.6), 0.4, scene.NewFuzzy(math3d.V3(0.8, 0.6, 0.2))),
		},
		Lights: []scene.Light{
			scene.NewDirectionalLight(math3d.V3(-0.4, -1, -0.6), math3d.V3(1, 0.95, 0.85), 0.9),
			scene.NewAmbientLight(math3d.Splat3(1), 0.1),
		},
		Camera: render.CameraConfig{
			LookFrom: math3d.V3(0, 1.2, 5),
			LookAt:   math3d.V3(0, 0, -1),
			FOV:      45,
		},
	}
}
