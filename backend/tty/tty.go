// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package tty provides a tileterm backend that draws into a text terminal
// with tcell.
//
// Every glyph quad becomes one terminal cell: the atlas slot the quad samples
// is mapped back to its code page 437 rune, and the shade color is alpha
// blended over the cell background. Slots that are entirely chroma-keyed
// draw nothing; fully opaque slots (such as the solid block) also paint the
// cell background. Grid row 0 is the bottom terminal row.
//
// The backend is registered under the name "tty" but is never chosen by
// tileterm.DefaultBackend; request it by name.
package tty

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/gogpu/tileterm"
)

// Errors returned by the tty backend.
var (
	// ErrNoSurface is returned when Submit is called before CreateSurface.
	ErrNoSurface = errors.New("tty: surface not created")

	// ErrClosed is returned by operations on a closed backend.
	ErrClosed = errors.New("tty: backend is closed")
)

// Config holds configuration for the tty backend.
type Config struct {
	// Screen is the terminal to draw on. Nil opens the controlling terminal
	// with tcell.NewScreen.
	Screen tcell.Screen

	// EventBuffer is the capacity of the input event queue. Events arriving
	// while the queue is full are dropped.
	// Default: 64
	EventBuffer int
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{EventBuffer: 64}
}

// slotKind classifies an atlas slot by its texels.
type slotKind uint8

const (
	slotGlyph slotKind = iota // mixed texels
	slotBlank                 // every texel chroma-keyed or transparent
	slotSolid                 // every texel opaque
)

// termCell is the composed content of one terminal cell.
type termCell struct {
	r     rune
	fg    colorful.Color
	bg    colorful.Color
	hasFg bool
	hasBg bool
}

// Backend draws frames into a tcell screen.
type Backend struct {
	cfg    Config
	screen tcell.Screen

	mu     sync.Mutex
	events []tileterm.Event
	queue  chan tileterm.Event
	wg     sync.WaitGroup

	cols, rows int
	cells      []termCell
	slots      [256]slotKind

	started bool
	closed  bool
}

var (
	_ tileterm.Backend     = (*Backend)(nil)
	_ tileterm.EventSource = (*Backend)(nil)
)

func init() {
	tileterm.RegisterBackend(tileterm.BackendTTY, func() (tileterm.Backend, error) {
		return New(DefaultConfig())
	})
}

// New creates a tty backend. The terminal is not touched until
// CreateSurface.
func New(cfg Config) (*Backend, error) {
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = DefaultConfig().EventBuffer
	}
	screen := cfg.Screen
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("tty: open terminal: %w", err)
		}
		screen = s
	}
	return &Backend{
		cfg:    cfg,
		screen: screen,
		queue:  make(chan tileterm.Event, cfg.EventBuffer),
	}, nil
}

// Name returns "tty".
func (b *Backend) Name() string { return tileterm.BackendTTY }

// Screen returns the underlying tcell screen.
func (b *Backend) Screen() tcell.Screen { return b.screen }

// CreateSurface initializes the terminal and starts forwarding its events.
// The pixel size and title are ignored; the grid size is taken from the
// frames.
func (b *Backend) CreateSurface(_, _ int, _ string) error {
	if b.closed {
		return ErrClosed
	}
	if b.started {
		return nil
	}
	if err := b.screen.Init(); err != nil {
		return fmt.Errorf("tty: init terminal: %w", err)
	}
	b.screen.HideCursor()
	b.started = true

	b.wg.Add(1)
	go b.forwardEvents()
	return nil
}

// forwardEvents converts terminal events until the screen is finalized.
func (b *Backend) forwardEvents() {
	defer b.wg.Done()
	for {
		ev := b.screen.PollEvent()
		if ev == nil {
			return
		}
		te, ok := convertEvent(ev)
		if !ok {
			continue
		}
		select {
		case b.queue <- te:
		default:
			tileterm.Logger().Warn("tty: event queue full, dropping event", "type", te.Type)
		}
	}
}

// SetAtlas classifies the atlas slots into blank, solid and glyph slots.
func (b *Backend) SetAtlas(a *tileterm.Atlas) error {
	if b.closed {
		return ErrClosed
	}
	img := a.Image()
	sw, sh := a.SlotSize()
	for code := 0; code < 256; code++ {
		x0, y0 := (code%tileterm.AtlasColumns)*sw, (code/tileterm.AtlasColumns)*sh
		blank, solid := true, true
		for y := y0; y < y0+sh; y++ {
			for x := x0; x < x0+sw; x++ {
				p := img.NRGBAAt(x, y)
				keyed := tileterm.IsChromaKey(p.R, p.G, p.B) || p.A == 0
				blank = blank && keyed
				solid = solid && !keyed && p.A == 255
			}
		}
		switch {
		case blank:
			b.slots[code] = slotBlank
		case solid:
			b.slots[code] = slotSolid
		default:
			b.slots[code] = slotGlyph
		}
	}
	return nil
}

// Submit composes the frame into terminal cells and shows it.
func (b *Backend) Submit(f *tileterm.Frame) error {
	switch {
	case b.closed:
		return ErrClosed
	case !b.started:
		return ErrNoSurface
	}

	if len(f.Vertices) >= 4 {
		b.cols, b.rows = gridSize(f.Vertices[:4])
	} else if b.cols == 0 {
		b.cols, b.rows = b.screen.Size()
	}
	n := b.cols * b.rows
	if cap(b.cells) < n {
		b.cells = make([]termCell, n)
	}
	b.cells = b.cells[:n]

	// A transparent clear color leaves the terminal's default background.
	back, backA := shadeColor(f.ClearColor)
	for i := range b.cells {
		b.cells[i] = termCell{r: ' ', bg: back, hasBg: backA > 0}
	}

	for q := 0; q+3 < len(f.Vertices); q += 4 {
		b.drawQuad(f.Vertices[q : q+4])
	}

	b.screen.Clear()
	for row := 0; row < b.rows; row++ {
		for col := 0; col < b.cols; col++ {
			c := &b.cells[row*b.cols+col]
			b.screen.SetContent(col, row, c.r, nil, c.style())
		}
	}
	b.screen.Show()
	return nil
}

// drawQuad blends one glyph quad into its terminal cell.
func (b *Backend) drawQuad(v []tileterm.Vertex) {
	left, bottom := v[0].Position[0], v[1].Position[1]

	col := int(math.Floor((left+1)/2*float64(b.cols) + 0.5))
	fromBottom := int(math.Floor((bottom+1)/2*float64(b.rows) + 0.5))
	row := b.rows - 1 - fromBottom
	if col < 0 || col >= b.cols || row < 0 || row >= b.rows {
		return
	}

	code := slotCode(v[0].TexCoords[0], v[0].TexCoords[1])
	kind := b.slots[code]
	if kind == slotBlank {
		return
	}

	shade, alpha := shadeColor(v[0].Shade)
	c := &b.cells[row*b.cols+col]
	fg := c.bg.BlendRgb(shade, alpha)
	c.r = tileterm.GlyphRune(code)
	c.fg, c.hasFg = fg, true
	if kind == slotSolid {
		c.bg, c.hasBg = fg, true
	}
}

func (c *termCell) style() tcell.Style {
	st := tcell.StyleDefault
	if c.hasFg {
		r, g, b := c.fg.RGB255()
		st = st.Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
	}
	if c.hasBg {
		r, g, b := c.bg.RGB255()
		st = st.Background(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
	}
	return st
}

// gridSize recovers the grid dimensions from the extent of one quad.
func gridSize(quad []tileterm.Vertex) (cols, rows int) {
	w := quad[2].Position[0] - quad[0].Position[0]
	h := quad[0].Position[1] - quad[1].Position[1]
	cols = max(int(math.Round(2/w)), 1)
	rows = max(int(math.Round(2/h)), 1)
	return cols, rows
}

// slotCode inverts tileterm.AtlasCoords for a quad's top-left texture
// coordinates.
func slotCode(u, v float64) uint8 {
	col := int(math.Round(u * tileterm.AtlasColumns))
	row := int(math.Round(v * tileterm.AtlasRows))
	code := (tileterm.AtlasRows-row)*tileterm.AtlasColumns + col
	return uint8(min(max(code, 0), 255)) //nolint:gosec // clamped to byte range
}

func shadeColor(s [4]float32) (colorful.Color, float64) {
	return colorful.Color{R: float64(s[0]), G: float64(s[1]), B: float64(s[2])}, float64(s[3])
}

// PollEvents returns the terminal events received since the last call.
func (b *Backend) PollEvents() []tileterm.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = b.events[:0]
	for {
		select {
		case ev := <-b.queue:
			b.events = append(b.events, ev)
		default:
			if len(b.events) == 0 {
				return nil
			}
			return append([]tileterm.Event(nil), b.events...)
		}
	}
}

// Close restores the terminal and stops the event goroutine.
func (b *Backend) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	if b.started {
		b.screen.Fini()
		b.wg.Wait()
	}
	return nil
}

// convertEvent maps a tcell event to a tileterm event.
func convertEvent(ev tcell.Event) (tileterm.Event, bool) {
	switch e := ev.(type) {
	case *tcell.EventKey:
		if e.Key() == tcell.KeyCtrlC || (e.Key() == tcell.KeyRune && e.Rune() == 'c' && e.Modifiers()&tcell.ModCtrl != 0) {
			return tileterm.Event{Type: tileterm.EventClose}, true
		}
		if e.Key() == tcell.KeyRune {
			return tileterm.RuneEvent(e.Rune()), true
		}
		k := convertKey(e.Key())
		if k == tileterm.KeyUnknown {
			return tileterm.Event{}, false
		}
		return tileterm.KeyEvent(k), true

	case *tcell.EventResize:
		w, h := e.Size()
		return tileterm.Event{Type: tileterm.EventResize, Width: w, Height: h}, true

	default:
		return tileterm.Event{}, false
	}
}

func convertKey(k tcell.Key) tileterm.Key {
	switch k {
	case tcell.KeyUp:
		return tileterm.KeyUp
	case tcell.KeyDown:
		return tileterm.KeyDown
	case tcell.KeyLeft:
		return tileterm.KeyLeft
	case tcell.KeyRight:
		return tileterm.KeyRight
	case tcell.KeyEnter:
		return tileterm.KeyEnter
	case tcell.KeyEscape:
		return tileterm.KeyEscape
	case tcell.KeyTab:
		return tileterm.KeyTab
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return tileterm.KeyBackspace
	default:
		return tileterm.KeyUnknown
	}
}
