package scene

import (
	"fmt"
	"math"

	"github.com/taigrr/prism/pkg/math3d"
)

// Kind selects the transport rule a material follows.
type Kind int

const (
	KindWall    Kind = iota // Local shading only, no secondary rays
	KindDiffuse             // Lambertian scatter
	KindMetal               // Perfect mirror
	KindFuzzy               // Mirror perturbed by Fuzz
	KindGlass               // Fresnel-weighted reflection/refraction
	KindLight               // Emitter; returns Color directly
)

var kindNames = map[Kind]string{
	KindWall:    "wall",
	KindDiffuse: "diffuse",
	KindMetal:   "metal",
	KindFuzzy:   "fuzzy",
	KindGlass:   "glass",
	KindLight:   "light",
}

// String returns the lower-case kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown material kind %q", name)
}

// Default material constants.
const (
	DefaultFuzz            = 0.4
	DefaultRefractiveIndex = 1.5
	DefaultShininess       = 10.0
)

// Material describes how a surface responds to light.
//
// Mix is the weight of local Blinn-Phong shading added on top of the
// recursive estimate in hybrid shading; Attenuation scales that recursive
// estimate. Both are per-kind policy constants, see the New* constructors.
type Material struct {
	Kind  Kind
	Color math3d.Vec3

	Ambient  float64
	Diffuse  float64
	Specular float64

	Attenuation math3d.Vec3
	Mix         float64

	Fuzz            float64 // KindFuzzy roughness
	RefractiveIndex float64 // KindGlass, relative to air
	Shininess       float64 // Blinn-Phong exponent
}

func newMaterial(kind Kind, color math3d.Vec3, mix float64) *Material {
	return &Material{
		Kind:            kind,
		Color:           color,
		Ambient:         1,
		Diffuse:         1,
		Specular:        1,
		Attenuation:     math3d.Splat3(1),
		Mix:             mix,
		Fuzz:            DefaultFuzz,
		RefractiveIndex: DefaultRefractiveIndex,
		Shininess:       DefaultShininess,
	}
}

// NewWall creates a plain material that is only locally shaded.
func NewWall(color math3d.Vec3) *Material {
	return newMaterial(KindWall, color, 1)
}

// NewDiffuse creates a Lambertian material. It adds no local shading.
func NewDiffuse(color math3d.Vec3) *Material {
	return newMaterial(KindDiffuse, color, 0)
}

// NewMetal creates a mirror material with local mix 0.1.
func NewMetal(color math3d.Vec3) *Material {
	return newMaterial(KindMetal, color, 0.1)
}

// NewFuzzy creates a rough mirror with local mix 0.5.
func NewFuzzy(color math3d.Vec3) *Material {
	return newMaterial(KindFuzzy, color, 0.5)
}

// NewGlass creates a dielectric with local mix 0.1.
func NewGlass(color math3d.Vec3) *Material {
	return newMaterial(KindGlass, color, 0.1)
}

// NewLight creates an emissive material radiating color.
func NewLight(color math3d.Vec3) *Material {
	return newMaterial(KindLight, color, 0)
}

// Validate reports material parameters that would produce NaNs or
// over-light a surface.
func (m *Material) Validate() error {
	if m == nil {
		return ErrNilMaterial
	}
	if _, ok := kindNames[m.Kind]; !ok {
		return fmt.Errorf("%w: %s", ErrBadMaterial, m.Kind)
	}
	switch {
	case !m.Color.IsFinite() || !m.Attenuation.IsFinite():
		return fmt.Errorf("%s material: %w: non-finite color", m.Kind, ErrBadMaterial)
	case m.Ambient < 0 || m.Diffuse < 0 || m.Specular < 0 || m.Mix < 0:
		return fmt.Errorf("%s material: %w: negative shading weight", m.Kind, ErrBadMaterial)
	case m.Kind == KindGlass && !(m.RefractiveIndex > 0):
		return fmt.Errorf("glass material: %w: refractive index %v must be positive", ErrBadMaterial, m.RefractiveIndex)
	case m.Kind == KindFuzzy && m.Fuzz < 0:
		return fmt.Errorf("fuzzy material: %w: negative fuzz %v", ErrBadMaterial, m.Fuzz)
	case !(m.Shininess >= 0) || math.IsInf(m.Shininess, 1):
		return fmt.Errorf("%s material: %w: shininess %v", m.Kind, ErrBadMaterial, m.Shininess)
	}
	return nil
}
