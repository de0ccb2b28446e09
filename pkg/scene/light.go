package scene

import (
	"fmt"

	"github.com/taigrr/prism/pkg/math3d"
)

// LightKind distinguishes the supported light sources.
type LightKind int

const (
	PointLight       LightKind = iota // Positional, inverse-square falloff
	DirectionalLight                  // Parallel rays, constant irradiance
	AmbientLight                      // Flat, unoccluded fill
)

// String returns the lower-case light kind name.
func (k LightKind) String() string {
	switch k {
	case PointLight:
		return "point"
	case DirectionalLight:
		return "directional"
	case AmbientLight:
		return "ambient"
	default:
		return fmt.Sprintf("LightKind(%d)", int(k))
	}
}

// Light is a light source. Position is used by point lights and Direction
// (the direction light travels) by directional lights.
type Light struct {
	Kind      LightKind
	Position  math3d.Vec3
	Direction math3d.Vec3
	Color     math3d.Vec3
	Intensity float64
}

// NewPointLight creates a point light.
func NewPointLight(position, color math3d.Vec3, intensity float64) Light {
	return Light{Kind: PointLight, Position: position, Color: color, Intensity: intensity}
}

// NewDirectionalLight creates a directional light travelling along direction.
func NewDirectionalLight(direction, color math3d.Vec3, intensity float64) Light {
	return Light{Kind: DirectionalLight, Direction: direction.Normalize(), Color: color, Intensity: intensity}
}

// NewAmbientLight creates an ambient light.
func NewAmbientLight(color math3d.Vec3, intensity float64) Light {
	return Light{Kind: AmbientLight, Color: color, Intensity: intensity}
}

// Incident returns the unit direction light travels to reach point and the
// irradiance it delivers there. Ambient lights report a zero direction.
func (l Light) Incident(point math3d.Vec3) (dir, irradiance math3d.Vec3) {
	radiance := l.Color.Scale(l.Intensity)

	switch l.Kind {
	case PointLight:
		toPoint := point.Sub(l.Position)
		distSq := toPoint.LenSq()
		if distSq == 0 {
			return math3d.Vec3{}, math3d.Vec3{}
		}
		return toPoint.Normalize(), radiance.Div(distSq)
	case DirectionalLight:
		return l.Direction, radiance
	default:
		return math3d.Vec3{}, radiance
	}
}

// Validate reports light parameters that cannot be shaded.
func (l Light) Validate() error {
	if l.Intensity < 0 {
		return fmt.Errorf("%s light: negative intensity %v", l.Kind, l.Intensity)
	}
	if !l.Color.IsFinite() || !l.Position.IsFinite() {
		return fmt.Errorf("%s light: non-finite parameters", l.Kind)
	}
	if l.Kind == DirectionalLight && l.Direction.IsZero() {
		return fmt.Errorf("%s light: %w", l.Kind, ErrZeroDirection)
	}
	return nil
}
