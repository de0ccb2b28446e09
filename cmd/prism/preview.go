package main

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/prism/pkg/render"
)

var (
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	statusStyle = lipgloss.NewStyle().Faint(true)
)

// progressMeter eases the displayed progress toward the real value with a
// critically damped spring.
type progressMeter struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
}

func newProgressMeter(fps int) *progressMeter {
	return &progressMeter{
		// Frequency 6.0 = quick, damping 1.0 = no overshoot past the target
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
}

// Update advances the spring one frame toward target and returns the
// displayed value.
func (m *progressMeter) Update(target float64) float64 {
	m.pos, m.vel = m.spring.Update(m.pos, m.vel, target)
	return m.pos
}

// Reset snaps the meter back to zero.
func (m *progressMeter) Reset() {
	m.pos, m.vel = 0, 0
}

// Bar renders the displayed value as a bar of width cells.
func (m *progressMeter) Bar(width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(math.Round(min(max(m.pos, 0), 1) * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// previewRender is one progressive render at a fixed terminal size. It runs
// on its own goroutine and publishes each finished pass.
type previewRender struct {
	r      *render.Renderer
	cancel context.CancelFunc
	done   chan struct{}

	passes atomic.Int64
	latest atomic.Pointer[render.Framebuffer]

	mu  sync.Mutex
	err error
}

// startPreviewRender fits camera to width x height and starts rendering.
// The camera must not be shared with a render that is still running.
func startPreviewRender(ctx context.Context, j *job, camera *render.Camera, width, height, passes int) (*previewRender, error) {
	cfg := j.cfg
	cfg.Width, cfg.Height = width, height
	camera.SetAspectRatio(float64(width) / float64(height))
	r, err := render.NewRenderer(j.engine, camera, cfg, nil)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	p := &previewRender{r: r, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(p.done)
		for range passes {
			if _, err := r.Pass(ctx); err != nil {
				if ctx.Err() == nil {
					p.mu.Lock()
					p.err = err
					p.mu.Unlock()
				}
				return
			}
			p.latest.Store(r.Framebuffer(j.tone))
			p.passes.Add(1)
		}
	}()
	return p, nil
}

// Stop cancels the render and waits for its goroutine.
func (p *previewRender) Stop() {
	p.cancel()
	<-p.done
}

// Err reports a render failure other than cancellation.
func (p *previewRender) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Progress is the overall completion in [0, 1].
func (p *previewRender) Progress(total int) float64 {
	done := p.passes.Load()
	if int(done) >= total {
		return 1
	}
	return (float64(done) + p.r.Progress()) / float64(total)
}

func runPreview(ctx context.Context, j *job, opts *options, log *logger) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sizes := make(chan uv.Size, 1)
	go func() {
		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				// Keep only the newest size.
				select {
				case <-sizes:
				default:
				}
				sizes <- uv.Size(ev)
			case uv.KeyPressEvent:
				if ev.MatchString("escape", "q", "ctrl+c") {
					cancel()
					return
				}
			}
		}
	}()

	screen := render.NewTerminalRenderer(term, width, height)
	fbWidth, fbHeight := screen.FramebufferSize()
	camera := render.NewCamera(j.desc.Camera, float64(fbWidth)/float64(fbHeight))
	current, err := startPreviewRender(ctx, j, camera, fbWidth, fbHeight, opts.passes)
	if err != nil {
		cleanup()
		return err
	}

	fps := max(opts.fps, 1)
	meter := newProgressMeter(fps)
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	// Shown until the first pass of the current size is ready.
	placeholder := render.NewFramebuffer(fbWidth, fbHeight)
	placeholder.Clear(render.RGB(0, 0, 0))

	for {
		select {
		case <-ctx.Done():
			current.Stop()
			cleanup()
			return finishPreview(current, j, opts, log)

		case size := <-sizes:
			current.Stop()
			width, height = size.Width, size.Height
			term.Erase()
			term.Resize(width, height)
			screen = render.NewTerminalRenderer(term, width, height)
			fbWidth, fbHeight = screen.FramebufferSize()
			if prev := current.latest.Load(); prev != nil {
				placeholder = prev
			}
			placeholder = placeholder.Resample(fbWidth, fbHeight)
			meter.Reset()
			if current, err = startPreviewRender(ctx, j, camera, fbWidth, fbHeight, opts.passes); err != nil {
				cleanup()
				return err
			}

		case <-ticker.C:
			if err := current.Err(); err != nil {
				cleanup()
				return err
			}
			fb := current.latest.Load()
			if fb == nil {
				fb = placeholder
			}
			meter.Update(current.Progress(opts.passes))
			screen.Render(fb, previewStatus(meter, current, opts.passes, width))
			if err := screen.Flush(); err != nil {
				cleanup()
				return fmt.Errorf("draw: %w", err)
			}
		}
	}
}

func previewStatus(meter *progressMeter, p *previewRender, total, width int) string {
	done := int(p.passes.Load())
	label := fmt.Sprintf(" pass %d/%d ", min(done+1, total), total)
	if done >= total {
		label = fmt.Sprintf(" done %d/%d, q to quit ", done, total)
	}
	barWidth := max(width-lipgloss.Width(label)-1, 0)
	return barStyle.Render(meter.Bar(barWidth)) + statusStyle.Render(label)
}

// finishPreview writes the last complete pass of a preview.
func finishPreview(p *previewRender, j *job, opts *options, log *logger) error {
	if p.passes.Load() == 0 || opts.outDir == "" {
		return nil
	}
	out := newOutput(opts)
	out.savePasses = false
	if err := out.prepare(); err != nil {
		return err
	}
	return out.finish(p.r.Image(j.tone), log)
}
