// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package headless provides a tileterm backend that draws nothing.
//
// It records submitted frames and replays queued input events, which makes
// it useful for tests, benchmarks and servers that only need the geometry.
// Importing the package registers the backend under the name "headless".
package headless

import (
	"errors"
	"sync"

	"github.com/gogpu/tileterm"
)

// ErrNoSurface is returned when Submit is called before CreateSurface.
var ErrNoSurface = errors.New("headless: surface not created")

// ErrClosed is returned by operations on a closed backend.
var ErrClosed = errors.New("headless: backend is closed")

// Stats summarizes the frames a Backend has received.
type Stats struct {
	Frames     int
	Quads      int // quads in the last frame
	TotalQuads int
	MaxQuads   int
}

// Backend records frames instead of drawing them.
type Backend struct {
	mu sync.Mutex

	width, height int
	title         string
	atlas         *tileterm.Atlas

	keep   int
	frames []tileterm.Frame
	stats  Stats
	events []tileterm.Event
	closed bool
}

var (
	_ tileterm.Backend     = (*Backend)(nil)
	_ tileterm.EventSource = (*Backend)(nil)
)

func init() {
	tileterm.RegisterBackend(tileterm.BackendHeadless, func() (tileterm.Backend, error) {
		return New(), nil
	})
}

// New creates a headless backend that keeps only the last frame.
func New() *Backend {
	return &Backend{keep: 1}
}

// KeepFrames sets how many recent frames are retained. Zero keeps none.
func (b *Backend) KeepFrames(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.keep = max(n, 0)
	b.trim()
}

// Name returns "headless".
func (b *Backend) Name() string { return tileterm.BackendHeadless }

// CreateSurface records the surface size and title.
func (b *Backend) CreateSurface(width, height int, title string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.width, b.height, b.title = width, height, title
	return nil
}

// SetAtlas records the atlas.
func (b *Backend) SetAtlas(a *tileterm.Atlas) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.atlas = a
	return nil
}

// Submit copies f into the retained frames and updates the statistics.
func (b *Backend) Submit(f *tileterm.Frame) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case b.closed:
		return ErrClosed
	case b.width == 0:
		return ErrNoSurface
	}

	q := f.Quads()
	b.stats.Frames++
	b.stats.Quads = q
	b.stats.TotalQuads += q
	b.stats.MaxQuads = max(b.stats.MaxQuads, q)

	if b.keep > 0 {
		b.frames = append(b.frames, tileterm.Frame{
			Vertices:   append([]tileterm.Vertex(nil), f.Vertices...),
			Indices:    append([]uint32(nil), f.Indices...),
			ClearColor: f.ClearColor,
		})
		b.trim()
	}
	return nil
}

func (b *Backend) trim() {
	if extra := len(b.frames) - b.keep; extra > 0 {
		b.frames = append(b.frames[:0], b.frames[extra:]...)
	}
}

// Frames returns copies of the retained frames, oldest first.
func (b *Backend) Frames() []tileterm.Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]tileterm.Frame(nil), b.frames...)
}

// LastFrame returns the most recent retained frame.
func (b *Backend) LastFrame() (tileterm.Frame, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.frames) == 0 {
		return tileterm.Frame{}, false
	}
	return b.frames[len(b.frames)-1], true
}

// Stats returns the frame statistics.
func (b *Backend) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// Surface returns the size and title passed to CreateSurface.
func (b *Backend) Surface() (width, height int, title string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height, b.title
}

// Atlas returns the atlas passed to SetAtlas.
func (b *Backend) Atlas() *tileterm.Atlas {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.atlas
}

// PushEvent queues events for the next PollEvents call. It may be called
// from any goroutine.
func (b *Backend) PushEvent(events ...tileterm.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, events...)
}

// PollEvents returns and clears the queued events.
func (b *Backend) PollEvents() []tileterm.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ev := b.events
	b.events = nil
	return ev
}

// Close marks the backend closed and drops retained frames.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.frames = nil
	b.atlas = nil
	return nil
}
