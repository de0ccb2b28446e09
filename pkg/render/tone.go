package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/prism/pkg/math3d"
)

// ToneMapper maps mean linear radiance to a display color.
type ToneMapper func(math3d.Vec3) color.RGBA

// ToneSqrt clips radiance to [0, 1] and applies a square-root gamma.
func ToneSqrt(c math3d.Vec3) color.RGBA {
	c = c.Clamp(0, 1).Sqrt()
	return RGB(to8(c.X), to8(c.Y), to8(c.Z))
}

// ToneSRGB clips radiance to [0, 1] and encodes it with the sRGB curve.
func ToneSRGB(c math3d.Vec3) color.RGBA {
	r, g, b := colorful.LinearRgb(c.X, c.Y, c.Z).Clamped().RGB255()
	return RGB(r, g, b)
}

// ParseTone maps a tone mapper name to its function.
func ParseTone(name string) (ToneMapper, error) {
	switch name {
	case "sqrt":
		return ToneSqrt, nil
	case "srgb":
		return ToneSRGB, nil
	default:
		return nil, fmt.Errorf("unknown tone mapper %q", name)
	}
}

func to8(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	return uint8(math.Round(255 * v))
}

// RGB creates an opaque color from RGB values.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}
