package render

import "github.com/taigrr/prism/pkg/math3d"

// Accumulator holds per-pixel sums of linear radiance across passes.
// Row 0 is the top of the image.
type Accumulator struct {
	Width   int
	Height  int
	Sum     []math3d.Vec3
	Samples int // Samples per pixel accumulated so far
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator(width, height int) *Accumulator {
	return &Accumulator{
		Width:  width,
		Height: height,
		Sum:    make([]math3d.Vec3, width*height),
	}
}

// Merge adds a pass of per-pixel sums, each over samples rays.
func (a *Accumulator) Merge(pass []math3d.Vec3, samples int) {
	for i, c := range pass {
		a.Sum[i] = a.Sum[i].Add(c)
	}
	a.Samples += samples
}

// Mean returns the average radiance at (x, y).
func (a *Accumulator) Mean(x, y int) math3d.Vec3 {
	if a.Samples == 0 {
		return math3d.Vec3{}
	}
	return a.Sum[y*a.Width+x].Div(float64(a.Samples))
}

// Resolve tone maps the running average into a new framebuffer.
func (a *Accumulator) Resolve(tone ToneMapper) *Framebuffer {
	fb := NewFramebuffer(a.Width, a.Height)
	for y := range a.Height {
		for x := range a.Width {
			fb.Pixels[y*a.Width+x] = tone(a.Mean(x, y))
		}
	}
	return fb
}
