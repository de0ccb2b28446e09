package scene

import (
	"errors"
	"fmt"

	"github.com/taigrr/prism/pkg/math3d"
)

var (
	// ErrNonPositiveRadius is returned for spheres with radius <= 0.
	ErrNonPositiveRadius = errors.New("sphere radius must be positive")

	// ErrNilPrimitive is returned for nil entries in the object list.
	ErrNilPrimitive = errors.New("nil primitive")

	// ErrNilMaterial is returned for primitives without a material.
	ErrNilMaterial = errors.New("primitive has no material")

	// ErrBadMaterial is returned for out-of-range material parameters.
	ErrBadMaterial = errors.New("invalid material parameter")

	// ErrZeroDirection is returned for degenerate normals and light directions.
	ErrZeroDirection = errors.New("direction must be non-zero")

	// ErrNoLights is returned when local shading is requested without lights.
	ErrNoLights = errors.New("scene has no lights")
)

// HitRecord is the result of a ray-object intersection.
type HitRecord struct {
	Point     math3d.Vec3
	Object    Primitive
	Index     int // Position of Object in the scene's object list
	Distance  float64
	Normal    math3d.Vec3 // Outward surface normal
	FrontFace bool        // Ray arrived on the side the normal points to
}

// Scene owns the objects and lights of a render. It is read-only once built,
// so any number of goroutines may query it concurrently.
type Scene struct {
	objects []Primitive
	lights  []Light
}

// New validates and copies the object and light lists into a new Scene.
func New(objects []Primitive, lights []Light) (*Scene, error) {
	for i, obj := range objects {
		if err := validatePrimitive(obj); err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
	}
	for i, l := range lights {
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("light %d: %w", i, err)
		}
	}

	return &Scene{
		objects: append([]Primitive(nil), objects...),
		lights:  append([]Light(nil), lights...),
	}, nil
}

func validatePrimitive(obj Primitive) error {
	switch p := obj.(type) {
	case *Sphere:
		if p == nil {
			return fmt.Errorf("sphere: %w", ErrNilPrimitive)
		}
		if p.Radius <= 0 {
			return fmt.Errorf("radius %v: %w", p.Radius, ErrNonPositiveRadius)
		}
	case *Plane:
		if p == nil {
			return fmt.Errorf("plane: %w", ErrNilPrimitive)
		}
		if p.Norm.IsZero() {
			return fmt.Errorf("plane normal: %w", ErrZeroDirection)
		}
	case nil:
		return ErrNilPrimitive
	}
	return obj.Material().Validate()
}

// Objects returns the scene objects in input order.
func (s *Scene) Objects() []Primitive {
	return s.objects
}

// Lights returns the scene lights in input order.
func (s *Scene) Lights() []Light {
	return s.lights
}

// Hit scans every object and returns the nearest intersection. Ties keep
// the object that comes first in input order.
func (s *Scene) Hit(ray math3d.Ray) (HitRecord, bool) {
	var (
		best  HitRecord
		found bool
	)

	for i, obj := range s.objects {
		point, ok := obj.Intersect(ray)
		if !ok {
			continue
		}
		dist := point.Distance(ray.Origin)
		if found && dist >= best.Distance {
			continue
		}

		normal := obj.Normal(point)
		best = HitRecord{
			Point:     point,
			Object:    obj,
			Index:     i,
			Distance:  dist,
			Normal:    normal,
			FrontFace: normal.Dot(ray.Direction) < 0,
		}
		found = true
	}

	return best, found
}

// Occluder returns the first object a shadow ray leaving from runs into on
// its way to target.
func (s *Scene) Occluder(from, target math3d.Vec3) (HitRecord, bool) {
	dir := target.Sub(from)
	if dir.IsZero() {
		return HitRecord{}, false
	}
	return s.Hit(math3d.NewRay(from, dir.Normalize()))
}
