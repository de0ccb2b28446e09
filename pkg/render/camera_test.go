package render

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/prism/pkg/math3d"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func vecApproxEqual(a, b math3d.Vec3, tol float64) bool {
	return approxEqual(a.X, b.X, tol) && approxEqual(a.Y, b.Y, tol) && approxEqual(a.Z, b.Z, tol)
}

func TestCameraBasis(t *testing.T) {
	c := NewCamera(DefaultCameraConfig(), 1)

	if !vecApproxEqual(c.forward, math3d.V3(0, 0, -1), 1e-12) {
		t.Errorf("Forward = %+v", c.forward)
	}
	if !vecApproxEqual(c.right, math3d.V3(1, 0, 0), 1e-12) {
		t.Errorf("Right = %+v", c.right)
	}
	if !vecApproxEqual(c.up, math3d.V3(0, 1, 0), 1e-12) {
		t.Errorf("Up = %+v", c.up)
	}
}

func TestCameraRay(t *testing.T) {
	c := NewCamera(DefaultCameraConfig(), 1)

	center := c.Ray(0.5, 0.5)
	if center.Origin != math3d.V3(0, 1, 5) {
		t.Errorf("origin = %+v", center.Origin)
	}
	if !vecApproxEqual(center.Direction, math3d.V3(0, 0, -1), 1e-12) {
		t.Errorf("center direction = %+v", center.Direction)
	}

	tests := []struct {
		name  string
		u, v  float64
		angle float64 // Degrees from the view direction
	}{
		{"top edge", 0.5, 1, 30},
		{"bottom edge", 0.5, 0, 30},
		{"right edge", 1, 0.5, 30},
		{"corner", 0, 0, math.Atan(math.Sqrt2*math.Tan(math.Pi/6)) * 180 / math.Pi},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := c.Ray(tc.u, tc.v).Direction
			if !approxEqual(d.Len(), 1, 1e-12) {
				t.Errorf("|dir| = %v", d.Len())
			}
			got := math.Acos(d.Dot(c.forward)) * 180 / math.Pi
			if !approxEqual(got, tc.angle, 1e-9) {
				t.Errorf("angle = %v, want %v", got, tc.angle)
			}
		})
	}

	if d := c.Ray(0.5, 1).Direction; d.Y <= 0 {
		t.Errorf("v=1 should look up, got %+v", d)
	}
	if d := c.Ray(1, 0.5).Direction; d.X <= 0 {
		t.Errorf("u=1 should look right, got %+v", d)
	}
}

func TestCameraAspectWidensView(t *testing.T) {
	c := NewCamera(DefaultCameraConfig(), 2)
	d := c.Ray(1, 0.5).Direction
	want := math.Atan(2*math.Tan(math.Pi/6)) * 180 / math.Pi
	if got := math.Acos(d.Dot(c.forward)) * 180 / math.Pi; !approxEqual(got, want, 1e-9) {
		t.Errorf("horizontal half-angle = %v, want %v", got, want)
	}
}

func TestCameraLookingStraightDown(t *testing.T) {
	c := NewCamera(CameraConfig{LookFrom: math3d.V3(0, 5, 0), LookAt: math3d.Vec3{}, FOV: 45}, 1)
	for _, uv := range [][2]float64{{0, 0}, {0.5, 0.5}, {1, 1}} {
		d := c.Ray(uv[0], uv[1]).Direction
		if !d.IsFinite() || !approxEqual(d.Len(), 1, 1e-12) {
			t.Errorf("Ray(%v) = %+v", uv, d)
		}
	}
}

func TestCameraSetAspectRatio(t *testing.T) {
	c := NewCamera(DefaultCameraConfig(), 1)
	c.SetAspectRatio(2)

	want := NewCamera(DefaultCameraConfig(), 2)
	for _, uv := range [][2]float64{{0, 0}, {1, 0.5}, {0.25, 1}} {
		got, exp := c.Ray(uv[0], uv[1]).Direction, want.Ray(uv[0], uv[1]).Direction
		if !vecApproxEqual(got, exp, 1e-12) {
			t.Errorf("Ray(%v) = %+v, want %+v", uv, got, exp)
		}
	}
}

func TestCameraConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		fov  float64
		ok   bool
	}{
		{"default", 60, true},
		{"narrow", 0.5, true},
		{"wide", 179, true},
		{"zero", 0, false},
		{"negative", -30, false},
		{"straight", 180, false},
		{"beyond straight", 200, false},
		{"nan", math.NaN(), false},
		{"inf", math.Inf(1), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultCameraConfig()
			cfg.FOV = tc.fov
			err := cfg.Validate()
			if tc.ok && err != nil {
				t.Errorf("Validate() = %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrBadFOV) {
				t.Errorf("Validate() = %v, want ErrBadFOV", err)
			}
		})
	}
}
