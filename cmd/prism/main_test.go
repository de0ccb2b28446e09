package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func smallOptions(t *testing.T) *options {
	t.Helper()
	opts := defaultOptions()
	opts.width, opts.height = 8, 6
	opts.spp = 1
	opts.passes = 2
	opts.depth = 3
	opts.workers = 2
	opts.outDir = t.TempDir()
	return opts
}

func TestLoadScene(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "scene.json")
	content := `{"objects": [{"type": "sphere", "radius": 1, "material": {"kind": "light"}}]}`
	if err := os.WriteFile(jsonPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		wantErr bool
	}{
		{"cornell", false},
		{"spheres", false},
		{jsonPath, false},
		{"teapot", true},
		{"model.obj", true},
		{filepath.Join(dir, "missing.gltf"), true},
	}
	for _, tc := range tests {
		t.Run(filepath.Base(tc.name), func(t *testing.T) {
			desc, err := loadScene(tc.name)
			if (err != nil) != tc.wantErr {
				t.Fatalf("loadScene(%q) error = %v, wantErr %v", tc.name, err, tc.wantErr)
			}
			if err == nil && len(desc.Objects) == 0 {
				t.Error("scene has no objects")
			}
		})
	}
}

func TestPrepareRejectsBadFlags(t *testing.T) {
	log := newLogger(&bytes.Buffer{})
	tests := map[string]func(*options){
		"passes":      func(o *options) { o.passes = 0 },
		"mode":        func(o *options) { o.mode = "raster" },
		"glass":       func(o *options) { o.glass = "frosted" },
		"roulette":    func(o *options) { o.roulette = 1.5 },
		"no roulette": func(o *options) { o.roulette = 0 },
		"tone":        func(o *options) { o.tone = "aces" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			opts := smallOptions(t)
			mutate(opts)
			if _, err := prepare("cornell", opts, log); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRunWritesImages(t *testing.T) {
	opts := smallOptions(t)
	opts.gif = filepath.Join(opts.outDir, "passes.gif")

	if err := run(context.Background(), "cornell", opts); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"1.png", "2.png", "image.png", "passes.gif"} {
		if _, err := os.Stat(filepath.Join(opts.outDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestRunWithoutPassImages(t *testing.T) {
	opts := smallOptions(t)
	opts.savePasses = false

	if err := run(context.Background(), "spheres", opts); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(opts.outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "image.png" {
		t.Errorf("output dir holds %v, want only image.png", entries)
	}
}

func TestRunCancelledBeforeFirstPass(t *testing.T) {
	opts := smallOptions(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := run(ctx, "cornell", opts); err == nil {
		t.Error("expected error when no pass completed")
	}
}

func TestSummary(t *testing.T) {
	s := summary{passes: 3, rays: 1234567, spp: 12}
	got := s.String()
	want := "3 passes, 12 spp, 1,234,567 camera rays in 0s (0 rays/s)"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	s.elapsed = 2 * time.Second
	if got := s.String(); !strings.Contains(got, "617,284 rays/s") && !strings.Contains(got, "617284 rays/s") {
		t.Errorf("rate missing from %q", got)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf)
	log.Printf("pass %d\n", 1)
	log.Warnf("careful\n")

	out := buf.String()
	for _, want := range []string{"prism", "pass 1", "warn", "careful"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}
