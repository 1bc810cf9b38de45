// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package software provides a CPU rendering backend for tileterm.
//
// Frames are rasterized into an in-memory RGBA image with the same shading
// rules the GPU backends use. The backend needs no window or device, which
// makes it the fallback for headless machines and the source of snapshots:
//
//	b := software.New()
//	r, _ := tileterm.New("tiles.png", 80, 40, 12, 12, tileterm.WithBackend(b))
//	_ = r.Render()
//	_ = b.SavePNG("frame.png")
//
// Importing the package registers the backend under the name "software".
package software

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/gogpu/tileterm"
	"github.com/gogpu/tileterm/internal/parallel"
	"github.com/gogpu/tileterm/internal/raster"
)

// Errors returned by the software backend.
var (
	// ErrNoSurface is returned when SetAtlas or Submit is called before
	// CreateSurface.
	ErrNoSurface = errors.New("software: surface not created")

	// ErrNoAtlas is returned when Submit is called before SetAtlas.
	ErrNoAtlas = errors.New("software: atlas not set")

	// ErrInvalidDimensions is returned when the surface size is not positive.
	ErrInvalidDimensions = errors.New("software: invalid dimensions")

	// ErrNoFrame is returned when saving before any frame was drawn.
	ErrNoFrame = errors.New("software: no frame rendered")

	// ErrClosed is returned by operations on a closed backend.
	ErrClosed = errors.New("software: backend is closed")
)

// Config holds configuration for the software backend.
type Config struct {
	// Workers is the number of goroutines rasterizing horizontal bands of
	// the frame. Zero uses GOMAXPROCS; one draws on the caller's goroutine.
	Workers int
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{}
}

// FrameFunc is called after every drawn frame with the target image.
// The image is reused by the next frame.
type FrameFunc func(img *image.NRGBA)

// Backend rasterizes frames on the CPU.
type Backend struct {
	cfg     Config
	pool    *parallel.Pool
	rast    *raster.Rasterizer
	atlas   *tileterm.Atlas
	title   string
	onFrame FrameFunc

	frames    int
	fragments int
	closed    bool
}

var _ tileterm.Backend = (*Backend)(nil)

func init() {
	tileterm.RegisterBackend(tileterm.BackendSoftware, func() (tileterm.Backend, error) {
		return New(), nil
	})
}

// New creates a software backend with the default configuration.
func New() *Backend {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a software backend.
func NewWithConfig(cfg Config) *Backend {
	return &Backend{cfg: cfg}
}

// OnFrame installs a callback run after each Submit.
func (b *Backend) OnFrame(fn FrameFunc) {
	b.onFrame = fn
}

// Name returns "software".
func (b *Backend) Name() string { return tileterm.BackendSoftware }

// Title returns the title passed to CreateSurface.
func (b *Backend) Title() string { return b.title }

// CreateSurface allocates the target image.
func (b *Backend) CreateSurface(width, height int, title string) error {
	if b.closed {
		return ErrClosed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	b.rast = raster.NewRasterizer(image.NewNRGBA(image.Rect(0, 0, width, height)))
	b.title = title
	if b.cfg.Workers != 1 && b.pool == nil {
		b.pool = parallel.NewPool(b.cfg.Workers)
		if b.pool.Workers() == 1 {
			b.pool.Close()
			b.pool = nil
		}
	}
	return nil
}

// SetAtlas stores the atlas used for texel lookups.
func (b *Backend) SetAtlas(a *tileterm.Atlas) error {
	if b.closed {
		return ErrClosed
	}
	if b.rast == nil {
		return ErrNoSurface
	}
	b.atlas = a
	return nil
}

// Submit rasterizes f into the target image.
func (b *Backend) Submit(f *tileterm.Frame) error {
	switch {
	case b.closed:
		return ErrClosed
	case b.rast == nil:
		return ErrNoSurface
	case b.atlas == nil:
		return ErrNoAtlas
	}

	var n int
	if b.pool != nil {
		n = b.rast.DrawFrameParallel(f, b.atlas, b.pool)
	} else {
		n = b.rast.DrawFrame(f, b.atlas)
	}
	b.frames++
	b.fragments = n
	tileterm.Logger().Debug("software: frame drawn", "quads", f.Quads(), "fragments", n)

	if b.onFrame != nil {
		b.onFrame(b.rast.Target())
	}
	return nil
}

// Image returns the target image, or nil before CreateSurface. It holds
// the last drawn frame and is overwritten by the next Submit.
func (b *Backend) Image() *image.NRGBA {
	if b.rast == nil {
		return nil
	}
	return b.rast.Target()
}

// Frames returns the number of frames drawn.
func (b *Backend) Frames() int { return b.frames }

// Fragments returns the number of pixels written by the last frame.
func (b *Backend) Fragments() int { return b.fragments }

// WritePNG encodes the last frame as PNG.
func (b *Backend) WritePNG(w io.Writer) error {
	if b.rast == nil || b.frames == 0 {
		return ErrNoFrame
	}
	return png.Encode(w, b.rast.Target())
}

// SavePNG writes the last frame to a PNG file.
func (b *Backend) SavePNG(path string) error {
	if b.rast == nil || b.frames == 0 {
		return ErrNoFrame
	}
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := png.Encode(f, b.rast.Target()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Workers returns the number of rasterizing goroutines.
func (b *Backend) Workers() int {
	if b.pool == nil {
		return 1
	}
	return b.pool.Workers()
}

// Close stops the workers and drops the atlas. The last frame stays
// readable through Image.
func (b *Backend) Close() error {
	b.closed = true
	b.atlas = nil
	if b.pool != nil {
		b.pool.Close()
		b.pool = nil
	}
	return nil
}
