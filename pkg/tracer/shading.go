package tracer

import (
	"math"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/scene"
)

// Shadow weights for a light whose path to the shaded point is blocked.
const (
	ShadowOpaque = 0.0
	ShadowGlass  = 0.5
)

// Shade returns the Blinn-Phong radiance at hit as seen along ray. Each
// light's diffuse and specular terms are clipped to [0, 1] and scaled by
// that light's shadow weight; ambient lights add an unoccluded fill.
func (e *Engine) Shade(ray math3d.Ray, hit scene.HitRecord) math3d.Vec3 {
	mat := hit.Object.Material()
	view := ray.Direction.Normalize()

	var direct, ambient math3d.Vec3
	for _, l := range e.scene.Lights() {
		dir, irradiance := l.Incident(hit.Point)
		if l.Kind == scene.AmbientLight {
			ambient = ambient.Add(irradiance)
			continue
		}
		if dir.IsZero() {
			continue
		}

		shadow := e.shadowWeight(l, hit)
		if shadow == 0 {
			continue
		}

		cosTheta := math.Max(0, -hit.Normal.Dot(dir))
		diffuse := mat.Color.Mul(irradiance).Scale(cosTheta).Clamp(0, 1)

		half := dir.Add(view).Normalize()
		highlight := math.Pow(math.Max(0, -hit.Normal.Dot(half)), mat.Shininess)
		specular := irradiance.Scale(highlight).Clamp(0, 1)

		local := diffuse.Scale(mat.Diffuse).Add(specular.Scale(mat.Specular))
		direct = direct.Add(local.Scale(shadow))
	}

	return direct.Add(mat.Color.Mul(ambient).Scale(mat.Ambient))
}

// shadowWeight casts a ray between l and the shaded point. The point is lit
// when the first object on that ray is the shaded object itself.
func (e *Engine) shadowWeight(l scene.Light, hit scene.HitRecord) float64 {
	var (
		blocker scene.HitRecord
		blocked bool
	)
	switch l.Kind {
	case scene.PointLight:
		blocker, blocked = e.scene.Occluder(l.Position, hit.Point)
	case scene.DirectionalLight:
		blocker, blocked = e.scene.Hit(math3d.NewRay(hit.Point, l.Direction.Negate()))
	default:
		return 1
	}

	if !blocked || blocker.Index == hit.Index {
		return 1
	}
	if blocker.Object.Material().Kind == scene.KindGlass {
		return ShadowGlass
	}
	return ShadowOpaque
}
