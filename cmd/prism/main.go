// prism - progressive stochastic ray tracer
// Renders a built-in scene, a JSON scene file or a glTF document to PNG
// images, one progressive pass at a time, optionally with a live preview in
// the terminal.
//
// Preview controls:
//
//	Q/Esc   - Quit
//	Ctrl+C  - Quit
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/taigrr/prism/pkg/models"
	"github.com/taigrr/prism/pkg/render"
	"github.com/taigrr/prism/pkg/tracer"
)

var version = "dev"

// options holds the command line flags.
type options struct {
	width, height int
	spp           int
	passes        int
	depth         int
	workers       int
	seed          int64

	mode     string
	glass    string
	roulette float64
	tone     string

	outDir     string
	savePasses bool
	gif        string
	gifDelay   int
	preview    bool
	fps        int
}

func defaultOptions() *options {
	cfg := render.DefaultConfig()
	return &options{
		width:      cfg.Width,
		height:     cfg.Height,
		spp:        cfg.SamplesPerPixel,
		passes:     20,
		depth:      cfg.MaxDepth,
		seed:       cfg.Seed,
		mode:       tracer.ModePath.String(),
		glass:      tracer.GlassStochastic.String(),
		roulette:   tracer.DefaultRouletteProbability,
		tone:       "sqrt",
		outDir:     "output",
		savePasses: true,
		gifDelay:   20,
		fps:        30,
	}
}

func newRootCmd() *cobra.Command {
	opts := defaultOptions()

	cmd := &cobra.Command{
		Use:   "prism [scene]",
		Short: "Render a scene with a progressive stochastic ray tracer",
		Long: fmt.Sprintf(`Render a scene with a progressive stochastic ray tracer.

The scene is a built-in name (%s), a .json scene file or a .gltf/.glb
document. Each pass adds --spp samples per pixel to the running average;
the average after every pass can be written as <out>/<pass>.png and the
final image is written to <out>/image.png.`, strings.Join(models.BuiltinNames(), ", ")),
		Example: `  prism cornell --passes 8 --spp 4
  prism scene.json --mode hybrid --tone srgb --gif passes.gif
  prism --preview`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sceneName := "cornell"
			if len(args) > 0 {
				sceneName = args[0]
			}
			return run(cmd.Context(), sceneName, opts)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.width, "width", "W", opts.width, "image width in pixels")
	f.IntVarP(&opts.height, "height", "H", opts.height, "image height in pixels")
	f.IntVarP(&opts.spp, "spp", "s", opts.spp, "samples per pixel in each pass")
	f.IntVarP(&opts.passes, "passes", "p", opts.passes, "number of progressive passes")
	f.IntVarP(&opts.depth, "depth", "d", opts.depth, "maximum surface interactions per camera ray")
	f.IntVarP(&opts.workers, "workers", "j", opts.workers, "rows traced concurrently (0 uses every CPU)")
	f.Int64Var(&opts.seed, "seed", opts.seed, "base random seed")
	f.StringVarP(&opts.mode, "mode", "m", opts.mode, "shading mode: path, local or hybrid")
	f.StringVar(&opts.glass, "glass", opts.glass, "glass policy: stochastic or blend")
	f.Float64Var(&opts.roulette, "roulette", opts.roulette, "Russian roulette survival probability (1 disables)")
	f.StringVar(&opts.tone, "tone", opts.tone, "tone mapping: sqrt or srgb")
	f.StringVarP(&opts.outDir, "out", "o", opts.outDir, "output directory (empty writes nothing)")
	f.BoolVar(&opts.savePasses, "save-passes", opts.savePasses, "write the running average after every pass")
	f.StringVar(&opts.gif, "gif", opts.gif, "write an animated GIF of the passes to this path")
	f.IntVar(&opts.gifDelay, "gif-delay", opts.gifDelay, "GIF frame delay in 100ths of a second")
	f.BoolVar(&opts.preview, "preview", opts.preview, "show the passes live in the terminal")
	f.IntVar(&opts.fps, "fps", opts.fps, "preview refresh rate")

	return cmd
}

func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}

// job is everything one render needs, resolved from the flags.
type job struct {
	desc   *models.Description
	engine *tracer.Engine
	tone   render.ToneMapper
	cfg    render.Config
}

func prepare(sceneName string, opts *options, log *logger) (*job, error) {
	if opts.passes <= 0 {
		return nil, fmt.Errorf("--passes must be positive, got %d", opts.passes)
	}

	desc, err := loadScene(sceneName)
	if err != nil {
		return nil, err
	}
	for _, w := range desc.Warnings {
		log.Warnf("%s\n", w)
	}
	s, err := desc.Scene()
	if err != nil {
		return nil, err
	}

	engOpts := tracer.DefaultOptions()
	if engOpts.Mode, err = tracer.ParseMode(opts.mode); err != nil {
		return nil, err
	}
	if engOpts.Glass, err = tracer.ParseGlassPolicy(opts.glass); err != nil {
		return nil, err
	}
	engOpts.RouletteProbability = opts.roulette
	engOpts.Background = desc.Background

	engine, err := tracer.New(s, engOpts)
	if err != nil {
		return nil, err
	}
	tone, err := render.ParseTone(opts.tone)
	if err != nil {
		return nil, err
	}

	return &job{
		desc:   desc,
		engine: engine,
		tone:   tone,
		cfg: render.Config{
			Width:           opts.width,
			Height:          opts.height,
			SamplesPerPixel: opts.spp,
			MaxDepth:        opts.depth,
			Workers:         opts.workers,
			Seed:            opts.seed,
		},
	}, nil
}

// loadScene resolves a built-in name or a scene file by extension.
func loadScene(name string) (*models.Description, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return models.LoadJSON(name)
	case ".gltf", ".glb":
		return models.LoadGLTF(name)
	case "":
		return models.Builtin(name)
	default:
		return nil, fmt.Errorf("unsupported scene format: %s (use .json, .gltf or .glb)", name)
	}
}

func run(ctx context.Context, sceneName string, opts *options) error {
	log := newLogger(os.Stderr)

	j, err := prepare(sceneName, opts, log)
	if err != nil {
		return err
	}
	if opts.preview {
		return runPreview(ctx, j, opts, log)
	}

	camera := render.NewCamera(j.desc.Camera, float64(j.cfg.Width)/float64(j.cfg.Height))
	r, err := render.NewRenderer(j.engine, camera, j.cfg, log)
	if err != nil {
		return err
	}
	log.Printf("rendering %s at %dx%d, %d passes of %d spp\n",
		j.desc.Name, j.cfg.Width, j.cfg.Height, opts.passes, j.cfg.SamplesPerPixel)

	out := newOutput(opts)
	if err := out.prepare(); err != nil {
		return err
	}

	var total summary
	start := time.Now()
	for range opts.passes {
		stats, err := r.Pass(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) && r.Passes() > 0 {
				log.Warnf("interrupted after %d passes\n", r.Passes())
				break
			}
			return err
		}
		total.add(stats)
		if err := out.pass(stats.Pass, r.Image(j.tone)); err != nil {
			return err
		}
	}
	total.elapsed = time.Since(start)

	if err := out.finish(r.Image(j.tone), log); err != nil {
		return err
	}
	log.Printf("%s\n", total.String())
	return nil
}

// summary totals the passes of a render.
type summary struct {
	passes  int
	rays    int
	spp     int
	elapsed time.Duration
}

func (s *summary) add(stats render.PassStats) {
	s.passes++
	s.rays += stats.Rays
	s.spp = stats.SamplesPerPixel
}

func (s *summary) String() string {
	p := message.NewPrinter(language.English)
	rate := 0.0
	if secs := s.elapsed.Seconds(); secs > 0 {
		rate = float64(s.rays) / secs
	}
	return p.Sprintf("%d passes, %d spp, %d camera rays in %s (%.0f rays/s)",
		s.passes, s.spp, s.rays, s.elapsed.Round(time.Millisecond).String(), rate)
}
