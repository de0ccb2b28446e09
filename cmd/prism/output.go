package main

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"

	"github.com/taigrr/prism/pkg/render"
)

// output writes the images of a render: one PNG per pass, the final PNG and
// the animated GIF.
type output struct {
	dir        string
	savePasses bool
	gifPath    string
	gif        *render.GIFRecorder
}

func newOutput(opts *options) *output {
	o := &output{
		dir:        opts.outDir,
		savePasses: opts.savePasses,
		gifPath:    opts.gif,
	}
	if o.gifPath != "" {
		o.gif = render.NewGIFRecorder(opts.gifDelay)
	}
	return o
}

func (o *output) prepare() error {
	if o.dir == "" {
		return nil
	}
	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}

// pass records the running average after a pass.
func (o *output) pass(n int, img image.Image) error {
	if o.gif != nil {
		o.gif.Add(img)
	}
	if o.dir == "" || !o.savePasses {
		return nil
	}
	return render.SavePNG(filepath.Join(o.dir, strconv.Itoa(n)+".png"), img)
}

// finish writes the final image and the GIF.
func (o *output) finish(img image.Image, log *logger) error {
	if o.dir != "" {
		path := filepath.Join(o.dir, "image.png")
		if err := render.SavePNG(path, img); err != nil {
			return err
		}
		log.Printf("wrote %s\n", path)
	}
	if o.gif != nil && o.gif.Frames() > 0 {
		if err := o.gif.Save(o.gifPath); err != nil {
			return err
		}
		log.Printf("wrote %s (%d frames)\n", o.gifPath, o.gif.Frames())
	}
	return nil
}
