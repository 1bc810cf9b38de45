// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/tileterm"
)

// glyphAtlas returns a 128x128 atlas (8x8 slots) that is chroma-keyed
// everywhere except the slot of 'A', which is opaque white.
func glyphAtlas(t *testing.T) *tileterm.Atlas {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 128, 128))
	for y := 0; y < 128; y++ {
		for x := 0; x < 128; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 0, B: 255, A: 255})
		}
	}
	x0, y0 := int('A'%16)*8, int('A'/16)*8
	for y := y0; y < y0+8; y++ {
		for x := x0; x < x0+8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	a, err := tileterm.NewAtlas(img)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func newRenderer(t *testing.T, b *Backend) *tileterm.Renderer {
	t.Helper()
	r, err := tileterm.New("", 4, 2, 8, 8, tileterm.WithBackend(b), tileterm.WithAtlas(glyphAtlas(t)))
	if err != nil {
		t.Fatalf("tileterm.New failed: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestSoftwareDrawsGlyph(t *testing.T) {
	b := New()
	r := newRenderer(t, b)

	r.SetBackColor(tileterm.Blue)
	if err := r.Set('A', 0, 0, 0, tileterm.Red); err != nil {
		t.Fatal(err)
	}
	// 'B' samples only chroma-keyed texels and leaves no trace.
	if err := r.Set('B', 1, 0, 0, tileterm.Red); err != nil {
		t.Fatal(err)
	}
	if err := r.Render(); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	img := b.Image()
	if img.Rect.Dx() != 32 || img.Rect.Dy() != 16 {
		t.Fatalf("image size = %v, want 32x16", img.Rect.Size())
	}

	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	tests := []struct {
		name string
		x, y int
		want color.NRGBA
	}{
		// Row y = 0 is the bottom of the surface.
		{"glyph top-left", 0, 8, red},
		{"glyph bottom-right", 7, 15, red},
		{"keyed cell", 12, 12, blue},
		{"upper row", 3, 3, blue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := img.NRGBAAt(tt.x, tt.y); got != tt.want {
				t.Errorf("pixel (%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
	if b.Fragments() != 64 {
		t.Errorf("Fragments() = %d, want 64", b.Fragments())
	}
}

func TestSoftwareOffsetAndLayers(t *testing.T) {
	b := New()
	r := newRenderer(t, b)

	if err := r.SetExt('A', 0, 0.5, 0, 0, 0, tileterm.Red); err != nil {
		t.Fatal(err)
	}
	if err := r.Set('A', 0, 0, 1, tileterm.Green); err != nil {
		t.Fatal(err)
	}
	if err := r.Render(); err != nil {
		t.Fatal(err)
	}
	img := b.Image()

	// Layer 1 covers cell (0, 0); the shifted layer 0 glyph shows in the
	// left half of cell (1, 0).
	if got := img.NRGBAAt(2, 12); got != (color.NRGBA{G: 255, A: 255}) {
		t.Errorf("pixel (2, 12) = %v, want green", got)
	}
	if got := img.NRGBAAt(10, 12); got != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("pixel (10, 12) = %v, want red", got)
	}
	if got := img.NRGBAAt(14, 12); got != (color.NRGBA{}) {
		t.Errorf("pixel (14, 12) = %v, want transparent", got)
	}
}

func TestSoftwareTranslucentShade(t *testing.T) {
	b := New()
	r := newRenderer(t, b)

	r.SetBackColor(tileterm.Blue)
	if err := r.Set('A', 0, 0, 0, tileterm.RGBA(255, 0, 0, 128)); err != nil {
		t.Fatal(err)
	}
	if err := r.Render(); err != nil {
		t.Fatal(err)
	}
	got := b.Image().NRGBAAt(4, 12)
	// out = src*a + dst*(1-a) on every channel, alpha included.
	if got.R != 128 || got.G != 0 || got.B != 127 || got.A != 191 {
		t.Errorf("blended pixel = %v, want {128 0 127 191}", got)
	}
}

func TestSoftwareErrors(t *testing.T) {
	b := New()
	if err := b.SetAtlas(glyphAtlas(t)); !errors.Is(err, ErrNoSurface) {
		t.Errorf("SetAtlas before surface: err = %v, want ErrNoSurface", err)
	}
	if err := b.Submit(&tileterm.Frame{}); !errors.Is(err, ErrNoSurface) {
		t.Errorf("Submit before surface: err = %v, want ErrNoSurface", err)
	}
	if err := b.CreateSurface(0, 5, ""); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("CreateSurface(0, 5): err = %v, want ErrInvalidDimensions", err)
	}
	if err := b.CreateSurface(8, 8, "t"); err != nil {
		t.Fatal(err)
	}
	if err := b.Submit(&tileterm.Frame{}); !errors.Is(err, ErrNoAtlas) {
		t.Errorf("Submit before atlas: err = %v, want ErrNoAtlas", err)
	}
	if err := b.WritePNG(&bytes.Buffer{}); !errors.Is(err, ErrNoFrame) {
		t.Errorf("WritePNG before frame: err = %v, want ErrNoFrame", err)
	}
	_ = b.Close()
	if err := b.Submit(&tileterm.Frame{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Submit after Close: err = %v, want ErrClosed", err)
	}
}

func TestSoftwareSavePNG(t *testing.T) {
	b := New()
	r := newRenderer(t, b)

	var calls int
	b.OnFrame(func(img *image.NRGBA) { calls++ })

	if err := r.Print(0, 1, 0, "AA", tileterm.White); err != nil {
		t.Fatal(err)
	}
	if err := r.Render(); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("OnFrame calls = %d, want 1", calls)
	}

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := b.SavePNG(path); err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode saved PNG: %v", err)
	}
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 16 {
		t.Errorf("saved size = %v, want 32x16", img.Bounds().Size())
	}
	if _, _, _, a := img.At(1, 1).RGBA(); a != 0xffff {
		t.Errorf("printed glyph pixel alpha = %#x, want opaque", a)
	}
}

func TestRegistered(t *testing.T) {
	b, err := tileterm.NewBackend(tileterm.BackendSoftware)
	if err != nil {
		t.Fatalf("NewBackend(software) failed: %v", err)
	}
	if b.Name() != tileterm.BackendSoftware {
		t.Errorf("Name() = %q", b.Name())
	}
}

func TestSoftwareWorkersAgree(t *testing.T) {
	images := make([][]byte, 0, 2)
	for _, workers := range []int{1, 4} {
		b := NewWithConfig(Config{Workers: workers})
		r := newRenderer(t, b)
		if b.Workers() != workers {
			t.Errorf("Workers() = %d, want %d", b.Workers(), workers)
		}
		r.SetBackColor(tileterm.Blue)
		for x := 0; x < 4; x++ {
			if err := r.SetExt('A', x, 0.25, x%2, 0.5, 0, tileterm.RGBA(255, 0, 0, 160)); err != nil {
				t.Fatal(err)
			}
		}
		if err := r.Render(); err != nil {
			t.Fatal(err)
		}
		images = append(images, append([]byte(nil), b.Image().Pix...))
	}
	if !bytes.Equal(images[0], images[1]) {
		t.Error("parallel rasterization differs from single-threaded")
	}
}
