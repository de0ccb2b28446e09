package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/prism/pkg/math3d"
)

// ErrBadFOV is returned for a field of view outside (0, 180) degrees.
var ErrBadFOV = errors.New("field of view must be between 0 and 180 degrees")

// Camera generates primary rays through a viewport one unit in front of
// the eye. SetAspectRatio rebuilds the viewport eagerly, so Ray is safe to
// call from many goroutines while the camera is not being modified.
type Camera struct {
	// Position in world space
	Position math3d.Vec3
	// Point the camera looks at
	Target math3d.Vec3

	FOV         float64 // Vertical field of view in degrees
	AspectRatio float64 // Width / Height

	forward, right, up math3d.Vec3

	lowerLeft  math3d.Vec3
	horizontal math3d.Vec3
	vertical   math3d.Vec3
}

// CameraConfig is the plain description of a camera placement.
type CameraConfig struct {
	LookFrom math3d.Vec3
	LookAt   math3d.Vec3
	FOV      float64 // Degrees
}

// DefaultCameraConfig returns the placement used by the Cornell box scene.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		LookFrom: math3d.V3(0, 1, 5),
		LookAt:   math3d.V3(0, 1, 1),
		FOV:      60,
	}
}

// Validate checks that the field of view can form a viewport.
func (cfg CameraConfig) Validate() error {
	if !(cfg.FOV > 0 && cfg.FOV < 180) {
		return fmt.Errorf("fov %v: %w", cfg.FOV, ErrBadFOV)
	}
	return nil
}

// NewCamera creates a camera from cfg for an image of the given aspect ratio.
func NewCamera(cfg CameraConfig, aspect float64) *Camera {
	c := &Camera{
		Position:    cfg.LookFrom,
		Target:      cfg.LookAt,
		FOV:         cfg.FOV,
		AspectRatio: aspect,
	}
	c.update()
	return c
}

// SetAspectRatio rebuilds the viewport for a new width / height ratio.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.update()
}

func (c *Camera) update() {
	c.forward = c.Target.Sub(c.Position).Normalize()
	if c.forward.IsZero() {
		c.forward = math3d.V3(0, 0, -1)
	}

	right := c.forward.Cross(math3d.Up())
	if right.LenSq() < 1e-12 {
		// Looking straight up or down: any horizontal axis will do.
		right = c.forward.Cross(math3d.V3(0, 0, -1))
	}
	c.right = right.Normalize()
	c.up = c.right.Cross(c.forward).Normalize()

	halfHeight := math.Tan(c.FOV * math.Pi / 360)
	halfWidth := c.AspectRatio * halfHeight

	c.horizontal = c.right.Scale(2 * halfWidth)
	c.vertical = c.up.Scale(2 * halfHeight)
	c.lowerLeft = c.Position.Add(c.forward).
		Sub(c.horizontal.Scale(0.5)).
		Sub(c.vertical.Scale(0.5))
}

// Ray returns the normalized ray through viewport coordinates (u, v), where
// (0, 0) is the lower-left corner and (1, 1) the upper-right.
func (c *Camera) Ray(u, v float64) math3d.Ray {
	target := c.lowerLeft.Add(c.horizontal.Scale(u)).Add(c.vertical.Scale(v))
	return math3d.NewRay(c.Position, target.Sub(c.Position).Normalize())
}
