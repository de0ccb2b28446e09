// Package tracer implements the recursive light-transport engine.
package tracer

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/scene"
)

// Mode selects how hit points are turned into radiance.
type Mode int

const (
	// ModePath follows the material transport rules; walls are locally shaded.
	ModePath Mode = iota
	// ModeLocal evaluates Blinn-Phong shading only and spawns no secondary rays.
	ModeLocal
	// ModeHybrid adds Mix-weighted local shading to the recursive estimate.
	ModeHybrid
)

var modeNames = []string{"path", "local", "hybrid"}

// String returns the mode name.
func (m Mode) String() string {
	if int(m) >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode maps a mode name to its Mode.
func ParseMode(name string) (Mode, error) {
	for i, n := range modeNames {
		if n == name {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown shading mode %q", name)
}

// GlassPolicy selects how a dielectric splits between reflection and refraction.
type GlassPolicy int

const (
	// GlassStochastic follows one branch, reflecting with probability R.
	GlassStochastic GlassPolicy = iota
	// GlassBlend traces both branches and weights them by R and 1-R.
	GlassBlend
)

var glassNames = []string{"stochastic", "blend"}

// String returns the policy name.
func (g GlassPolicy) String() string {
	if int(g) >= 0 && int(g) < len(glassNames) {
		return glassNames[g]
	}
	return fmt.Sprintf("GlassPolicy(%d)", int(g))
}

// ParseGlassPolicy maps a policy name to its GlassPolicy.
func ParseGlassPolicy(name string) (GlassPolicy, error) {
	for i, n := range glassNames {
		if n == name {
			return GlassPolicy(i), nil
		}
	}
	return 0, fmt.Errorf("unknown glass policy %q", name)
}

// Engine defaults.
const (
	DefaultMaxDepth            = 10
	DefaultRouletteProbability = 0.8
	DefaultFuzzSamples         = 20
	DefaultRouletteMinBounces  = 1
)

// ErrBadOptions is returned by New for out-of-range options.
var ErrBadOptions = errors.New("invalid tracer options")

// Options configures an Engine. Start from DefaultOptions; the zero value is
// rejected by New.
type Options struct {
	Mode  Mode
	Glass GlassPolicy

	// RouletteProbability is the chance a path continues at each bounce.
	// 1 disables Russian roulette.
	RouletteProbability float64

	// RouletteMinBounces is the number of bounces traced before roulette
	// starts. Camera rays are bounce 0, so 0 rolls at every step.
	RouletteMinBounces int

	// FuzzSamples is the number of reflections averaged at the first fuzzy
	// hit of a path. Deeper fuzzy hits take a single sample.
	FuzzSamples int

	// Background is returned for rays that leave the scene.
	Background math3d.Vec3
}

// DefaultOptions returns the options used by the prism CLI.
func DefaultOptions() Options {
	return Options{
		Mode:                ModePath,
		Glass:               GlassStochastic,
		RouletteProbability: DefaultRouletteProbability,
		RouletteMinBounces:  DefaultRouletteMinBounces,
		FuzzSamples:         DefaultFuzzSamples,
	}
}

func (o Options) validate() error {
	switch {
	case o.RouletteProbability <= 0 || o.RouletteProbability > 1:
		return fmt.Errorf("%w: roulette probability %v not in (0, 1]", ErrBadOptions, o.RouletteProbability)
	case o.RouletteMinBounces < 0:
		return fmt.Errorf("%w: negative roulette start %d", ErrBadOptions, o.RouletteMinBounces)
	case o.FuzzSamples < 1:
		return fmt.Errorf("%w: fuzz samples %d must be at least 1", ErrBadOptions, o.FuzzSamples)
	case o.Mode < ModePath || o.Mode > ModeHybrid:
		return fmt.Errorf("%w: %s", ErrBadOptions, o.Mode)
	case o.Glass < GlassStochastic || o.Glass > GlassBlend:
		return fmt.Errorf("%w: %s", ErrBadOptions, o.Glass)
	case !o.Background.IsFinite():
		return fmt.Errorf("%w: non-finite background", ErrBadOptions)
	}
	return nil
}

// Engine traces rays through a read-only scene. It holds no mutable state,
// so one Engine may be shared by any number of goroutines as long as each
// passes its own random source.
type Engine struct {
	scene *scene.Scene
	opts  Options
}

// New creates an engine over s. It fails with scene.ErrNoLights when the
// options or the scene's materials call for local shading and s has no lights.
func New(s *scene.Scene, opts Options) (*Engine, error) {
	if s == nil {
		return nil, errors.New("tracer: nil scene")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if len(s.Lights()) == 0 && needsShading(s, opts.Mode) {
		return nil, fmt.Errorf("%s shading: %w", opts.Mode, scene.ErrNoLights)
	}
	return &Engine{scene: s, opts: opts}, nil
}

func needsShading(s *scene.Scene, mode Mode) bool {
	for _, obj := range s.Objects() {
		mat := obj.Material()
		switch {
		case mat.Kind == scene.KindLight:
		case mode == ModeLocal, mat.Kind == scene.KindWall:
			return true
		case mode == ModeHybrid && mat.Mix > 0:
			return true
		}
	}
	return false
}

// Options returns the engine options.
func (e *Engine) Options() Options {
	return e.opts
}

// Scene returns the traced scene.
func (e *Engine) Scene() *scene.Scene {
	return e.scene
}

// Trace returns the linear RGB radiance arriving along ray, following at
// most depth surface interactions. Depth 0 is always black.
func (e *Engine) Trace(ray math3d.Ray, depth int, rng *rand.Rand) math3d.Vec3 {
	return e.trace(ray, path{depth: depth}, rng)
}

// path is the per-ray recursion state.
type path struct {
	depth  int  // interactions left
	bounce int  // interactions so far
	fanned bool // a fuzzy fan-out already happened upstream
}

func (p path) next() path {
	return path{depth: p.depth - 1, bounce: p.bounce + 1, fanned: p.fanned}
}

func (e *Engine) trace(ray math3d.Ray, p path, rng *rand.Rand) math3d.Vec3 {
	if p.depth <= 0 {
		return math3d.Vec3{}
	}

	weight := 1.0
	if e.rolls(p.bounce) {
		if rng.Float64() > e.opts.RouletteProbability {
			return math3d.Vec3{}
		}
		weight = 1 / e.opts.RouletteProbability
	}

	hit, ok := e.scene.Hit(ray)
	if !ok {
		return e.opts.Background.Scale(weight)
	}
	return e.radiance(ray, hit, p, rng).Scale(weight)
}

func (e *Engine) rolls(bounce int) bool {
	return e.opts.RouletteProbability < 1 && bounce >= e.opts.RouletteMinBounces
}

// radiance dispatches on the material of the hit object.
func (e *Engine) radiance(ray math3d.Ray, hit scene.HitRecord, p path, rng *rand.Rand) math3d.Vec3 {
	mat := hit.Object.Material()

	switch {
	case mat.Kind == scene.KindLight:
		return mat.Color
	case mat.Kind == scene.KindWall, e.opts.Mode == ModeLocal:
		return e.Shade(ray, hit)
	}

	global := mat.Attenuation.Mul(e.scatter(ray, hit, mat, p, rng))
	if e.opts.Mode == ModeHybrid && mat.Mix > 0 {
		return e.Shade(ray, hit).Scale(mat.Mix).Add(global)
	}
	return global
}
