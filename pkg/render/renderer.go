package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math/rand"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/tracer"
)

// ErrBadResolution is returned for non-positive image or sampling sizes.
var ErrBadResolution = errors.New("render size must be positive")

// Logger receives pass-level progress messages.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Config controls a progressive render.
type Config struct {
	Width           int
	Height          int
	SamplesPerPixel int   // Rays per pixel in each pass
	MaxDepth        int   // Surface interactions per camera ray
	Workers         int   // Rows traced concurrently; 1 is sequential, 0 uses every CPU
	Seed            int64 // Base seed; every (pass, row) pair gets its own stream
}

// DefaultConfig returns the settings the Cornell box was tuned for.
func DefaultConfig() Config {
	return Config{
		Width:           200,
		Height:          200,
		SamplesPerPixel: 4,
		MaxDepth:        tracer.DefaultMaxDepth,
		Seed:            1,
	}
}

// PassStats describes one completed pass.
type PassStats struct {
	Pass            int           // 1-based pass number
	Rays            int           // Camera rays traced in this pass
	SamplesPerPixel int           // Accumulated samples per pixel after the pass
	Duration        time.Duration // Wall time of the pass
}

// Renderer drives the engine over every pixel, one pass at a time, and
// keeps the running sum of all passes.
type Renderer struct {
	engine *tracer.Engine
	camera *Camera
	cfg    Config
	acc    *Accumulator
	logger Logger

	pass     int
	rowsDone atomic.Int64
}

// NewRenderer creates a renderer. A nil logger discards progress.
func NewRenderer(engine *tracer.Engine, camera *Camera, cfg Config, logger Logger) (*Renderer, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%dx%d: %w", cfg.Width, cfg.Height, ErrBadResolution)
	}
	if cfg.SamplesPerPixel <= 0 {
		return nil, fmt.Errorf("%d samples per pixel: %w", cfg.SamplesPerPixel, ErrBadResolution)
	}
	if engine == nil || camera == nil {
		return nil, errors.New("render: engine and camera are required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = nopLogger{}
	}

	return &Renderer{
		engine: engine,
		camera: camera,
		cfg:    cfg,
		acc:    NewAccumulator(cfg.Width, cfg.Height),
		logger: logger,
	}, nil
}

// Config returns the effective configuration.
func (r *Renderer) Config() Config {
	return r.cfg
}

// Passes returns the number of completed passes.
func (r *Renderer) Passes() int {
	return r.pass
}

// Progress returns the fraction of rows finished in the current pass.
func (r *Renderer) Progress() float64 {
	return float64(r.rowsDone.Load()) / float64(r.cfg.Height)
}

// Pass traces SamplesPerPixel jittered rays for every pixel and adds them to
// the running sum. A cancelled pass leaves the sum untouched.
func (r *Renderer) Pass(ctx context.Context) (PassStats, error) {
	start := time.Now()
	pass := r.pass + 1
	r.rowsDone.Store(0)

	r.logger.Printf("pass %d: %d spp over %d workers\n", pass, r.cfg.SamplesPerPixel, r.cfg.Workers)

	buf := make([]math3d.Vec3, r.cfg.Width*r.cfg.Height)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)

	for j := range r.cfg.Height {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(r.rowSeed(pass, j)))
			r.traceRow(j, buf, rng)
			r.rowsDone.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return PassStats{}, fmt.Errorf("pass %d: %w", pass, err)
	}

	r.acc.Merge(buf, r.cfg.SamplesPerPixel)
	r.pass = pass

	stats := PassStats{
		Pass:            pass,
		Rays:            r.cfg.Width * r.cfg.Height * r.cfg.SamplesPerPixel,
		SamplesPerPixel: r.acc.Samples,
		Duration:        time.Since(start),
	}
	r.logger.Printf("pass %d: done in %v (%d spp total)\n", pass, stats.Duration.Round(time.Millisecond), stats.SamplesPerPixel)
	return stats, nil
}

func (r *Renderer) rowSeed(pass, j int) int64 {
	return r.cfg.Seed + int64(pass)*int64(r.cfg.Height) + int64(j)
}

// traceRow samples viewport row j, counted from the bottom, into its image
// row in buf.
func (r *Renderer) traceRow(j int, buf []math3d.Vec3, rng *rand.Rand) {
	w, h := r.cfg.Width, r.cfg.Height
	row := buf[(h-1-j)*w : (h-j)*w]

	for i := range w {
		var sum math3d.Vec3
		for range r.cfg.SamplesPerPixel {
			u := (float64(i) + rng.Float64()) / float64(w)
			v := (float64(j) + rng.Float64()) / float64(h)
			sum = sum.Add(r.engine.Trace(r.camera.Ray(u, v), r.cfg.MaxDepth, rng))
		}
		row[i] = sum
	}
}

// Framebuffer tone maps the current average.
func (r *Renderer) Framebuffer(tone ToneMapper) *Framebuffer {
	return r.acc.Resolve(tone)
}

// Image tone maps the current average into an image.
func (r *Renderer) Image(tone ToneMapper) *image.RGBA {
	return r.acc.Resolve(tone).ToImage()
}
