package render

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"
)

// GIFRecorder collects pass images into an animated GIF.
type GIFRecorder struct {
	Delay int // Frame delay in 100ths of a second

	anim gif.GIF
}

// NewGIFRecorder creates a recorder with the given per-frame delay.
func NewGIFRecorder(delay int) *GIFRecorder {
	return &GIFRecorder{Delay: delay}
}

// Add quantizes img to the Plan 9 palette and appends it as a frame.
func (g *GIFRecorder) Add(img image.Image) {
	frame := image.NewPaletted(img.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(frame, img.Bounds(), img, img.Bounds().Min)
	g.anim.Image = append(g.anim.Image, frame)
	g.anim.Delay = append(g.anim.Delay, g.Delay)
}

// Frames returns the number of recorded frames.
func (g *GIFRecorder) Frames() int {
	return len(g.anim.Image)
}

// Save writes the animation to path.
func (g *GIFRecorder) Save(path string) error {
	if len(g.anim.Image) == 0 {
		return fmt.Errorf("gif %s: no frames", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gif: %w", err)
	}
	if err := gif.EncodeAll(f, &g.anim); err != nil {
		f.Close()
		return fmt.Errorf("encode gif: %w", err)
	}
	return f.Close()
}
