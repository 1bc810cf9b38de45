// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !headless

package ebiten

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gogpu/tileterm"
)

// Errors returned by the ebiten backend.
var (
	// ErrNoSurface is returned when Submit or Run is called before CreateSurface.
	ErrNoSurface = errors.New("ebiten: surface not created")

	// ErrNoAtlas is returned when Submit is called before SetAtlas.
	ErrNoAtlas = errors.New("ebiten: atlas not set")

	// ErrInvalidDimensions is returned for a non-positive surface size.
	ErrInvalidDimensions = errors.New("ebiten: invalid dimensions")

	// ErrClosed is returned by operations on a closed backend.
	ErrClosed = errors.New("ebiten: backend is closed")
)

// maxBatchQuads is the number of quads that fit one uint16-indexed draw.
const maxBatchQuads = (1 << 16) / 4

// Config holds configuration for the ebiten backend.
type Config struct {
	// Resizable lets the user resize the window. The surface keeps its
	// logical size and ebiten scales it to the window.
	Resizable bool

	// VSync synchronizes presentation with the display.
	// Default: true
	VSync bool

	// TPS is the number of ticks per second. Zero keeps ebiten's default.
	TPS int
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{Resizable: true, VSync: true}
}

// Backend draws frames into an ebiten window.
//
// Submit only records the frame; it is drawn by ebiten's Draw callback.
// Run hands the loop to ebiten.RunGame, which must be called from the main
// goroutine.
type Backend struct {
	cfg Config

	mu            sync.Mutex
	width, height int
	title         string

	atlas  *ebiten.Image
	atlasW int
	atlasH int
	shader *ebiten.Shader

	vertices []ebiten.Vertex
	indices  []uint16
	clear    tileterm.Color
	frames   uint64
	events   []tileterm.Event
	tick     func() error
	closed   bool
}

var (
	_ tileterm.Backend     = (*Backend)(nil)
	_ tileterm.Runner      = (*Backend)(nil)
	_ tileterm.EventSource = (*Backend)(nil)
	_ ebiten.Game          = (*game)(nil)
)

func init() {
	tileterm.RegisterBackend(tileterm.BackendEbiten, func() (tileterm.Backend, error) {
		return New(DefaultConfig()), nil
	})
}

// Available reports whether the ebiten backend was compiled in.
func Available() bool { return true }

// New creates an ebiten backend. The window opens when Run is called.
func New(cfg Config) *Backend {
	return &Backend{cfg: cfg}
}

// Name returns "ebiten".
func (b *Backend) Name() string { return tileterm.BackendEbiten }

// Frames returns the number of frames drawn to the window.
func (b *Backend) Frames() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frames
}

// CreateSurface configures the window size and title.
func (b *Backend) CreateSurface(width, height int, title string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	b.width, b.height, b.title = width, height, title

	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(resizingMode(b.cfg.Resizable))
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetVsyncEnabled(b.cfg.VSync)
	if b.cfg.TPS > 0 {
		ebiten.SetTPS(b.cfg.TPS)
	}
	return nil
}

func resizingMode(resizable bool) ebiten.WindowResizingModeType {
	if resizable {
		return ebiten.WindowResizingModeEnabled
	}
	return ebiten.WindowResizingModeDisabled
}

// SetAtlas uploads the atlas image and compiles the chroma-key shader.
func (b *Backend) SetAtlas(a *tileterm.Atlas) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	if b.shader == nil {
		sh, err := ebiten.NewShader(tileShaderKage)
		if err != nil {
			return fmt.Errorf("ebiten: compile tile shader: %w", err)
		}
		b.shader = sh
	}
	if b.atlas != nil {
		b.atlas.Deallocate()
	}
	img := a.Image()
	b.atlas = ebiten.NewImageFromImage(img)
	b.atlasW, b.atlasH = img.Rect.Dx(), img.Rect.Dy()
	tileterm.Logger().Debug("ebiten: atlas uploaded", "width", b.atlasW, "height", b.atlasH)
	return nil
}

// Submit converts f to ebiten vertices for the next Draw.
func (b *Backend) Submit(f *tileterm.Frame) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case b.closed:
		return ErrClosed
	case b.width == 0:
		return ErrNoSurface
	case b.atlas == nil:
		return ErrNoAtlas
	}
	b.vertices = appendVertices(b.vertices[:0], f.Vertices, b.width, b.height, b.atlasW, b.atlasH)
	b.indices = appendQuadIndices(b.indices[:0], f.Quads())
	b.clear = colorFromShade(f.ClearColor)
	return nil
}

// appendVertices converts NDC positions and normalized texture coordinates
// to the pixel coordinates ebiten expects.
func appendVertices(dst []ebiten.Vertex, src []tileterm.Vertex, w, h, aw, ah int) []ebiten.Vertex {
	for _, v := range src {
		px, py := tileterm.NDCToPixel(v.Position[0], v.Position[1], w, h)
		sx, sy := tileterm.TexToPixel(v.TexCoords[0], v.TexCoords[1], aw, ah)
		dst = append(dst, ebiten.Vertex{
			DstX:   float32(px),
			DstY:   float32(py),
			SrcX:   float32(sx),
			SrcY:   float32(sy),
			ColorR: v.Shade[0],
			ColorG: v.Shade[1],
			ColorB: v.Shade[2],
			ColorA: v.Shade[3],
		})
	}
	return dst
}

// appendQuadIndices writes the two triangles of each quad relative to the
// start of its batch, so every batch of maxBatchQuads quads indexes from 0.
func appendQuadIndices(dst []uint16, quads int) []uint16 {
	for q := 0; q < quads; q++ {
		base := uint16((q % maxBatchQuads) * 4) //nolint:gosec // bounded by maxBatchQuads
		dst = append(dst, base, base+1, base+2, base, base+2, base+3)
	}
	return dst
}

// colorFromShade converts a normalized clear color back to 8-bit channels.
func colorFromShade(s [4]float32) tileterm.Color {
	to8 := func(f float32) uint8 {
		return uint8(min(max(f, 0), 1)*255 + 0.5)
	}
	return tileterm.RGBA(to8(s[0]), to8(s[1]), to8(s[2]), to8(s[3]))
}

// PollEvents returns the input events collected since the last call.
func (b *Backend) PollEvents() []tileterm.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ev := b.events
	b.events = nil
	return ev
}

// Run opens the window and calls tick once per ebiten update until tick
// returns an error or the window is closed. tileterm.ErrStop ends the run
// without an error.
func (b *Backend) Run(tick func() error) error {
	b.mu.Lock()
	switch {
	case b.closed:
		b.mu.Unlock()
		return ErrClosed
	case b.width == 0:
		b.mu.Unlock()
		return ErrNoSurface
	}
	b.tick = tick
	w, h := b.width, b.height
	b.mu.Unlock()

	tileterm.Logger().Info("ebiten: window opened", "width", w, "height", h)
	err := ebiten.RunGame(&game{b: b})
	if errors.Is(err, tileterm.ErrStop) {
		return nil
	}
	return err
}

// Close releases the atlas and the shader.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	if b.atlas != nil {
		b.atlas.Deallocate()
		b.atlas = nil
	}
	if b.shader != nil {
		b.shader.Deallocate()
		b.shader = nil
	}
	b.vertices, b.indices = nil, nil
	return nil
}

// game adapts a Backend to ebiten.Game.
type game struct {
	b    *Backend
	keys []ebiten.Key
	runs []rune
}

func (g *game) Update() error {
	if ebiten.IsWindowBeingClosed() {
		g.b.pushEvents(tileterm.Event{Type: tileterm.EventClose})
	}
	g.collectInput()

	if g.b.tick == nil {
		return nil
	}
	if err := g.b.tick(); err != nil {
		if errors.Is(err, tileterm.ErrStop) {
			return ebiten.Termination
		}
		return err
	}
	return nil
}

// collectInput queues key presses and typed characters from this tick.
func (g *game) collectInput() {
	var events []tileterm.Event
	g.keys = inpututil.AppendJustPressedKeys(g.keys[:0])
	for _, k := range g.keys {
		if tk := convertKey(k); tk != tileterm.KeyUnknown {
			events = append(events, tileterm.KeyEvent(tk))
		}
	}
	g.runs = ebiten.AppendInputChars(g.runs[:0])
	for _, r := range g.runs {
		if r == ' ' {
			continue
		}
		events = append(events, tileterm.RuneEvent(r))
	}
	if len(events) > 0 {
		g.b.pushEvents(events...)
	}
}

func (b *Backend) pushEvents(events ...tileterm.Event) {
	b.mu.Lock()
	b.events = append(b.events, events...)
	b.mu.Unlock()
}

func (g *game) Draw(screen *ebiten.Image) {
	b := g.b
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	screen.Fill(b.clear)
	if b.atlas != nil && b.shader != nil {
		opts := &ebiten.DrawTrianglesShaderOptions{
			Images: [4]*ebiten.Image{b.atlas},
			Blend:  alphaBlend,
		}
		quads := len(b.vertices) / 4
		for first := 0; first < quads; first += maxBatchQuads {
			last := min(first+maxBatchQuads, quads)
			screen.DrawTrianglesShader(
				b.vertices[first*4:last*4],
				b.indices[first*6:last*6],
				b.shader, opts)
		}
	}
	b.frames++
}

func (g *game) Layout(_, _ int) (int, int) {
	g.b.mu.Lock()
	defer g.b.mu.Unlock()
	return g.b.width, g.b.height
}

// alphaBlend is src*srcAlpha + dst*(1-srcAlpha) on color and alpha. The tile
// shader returns straight (non-premultiplied) color for this reason.
var alphaBlend = ebiten.Blend{
	BlendFactorSourceRGB:        ebiten.BlendFactorSourceAlpha,
	BlendFactorSourceAlpha:      ebiten.BlendFactorSourceAlpha,
	BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
	BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
	BlendOperationRGB:           ebiten.BlendOperationAdd,
	BlendOperationAlpha:         ebiten.BlendOperationAdd,
}

func convertKey(k ebiten.Key) tileterm.Key {
	switch k {
	case ebiten.KeyArrowUp:
		return tileterm.KeyUp
	case ebiten.KeyArrowDown:
		return tileterm.KeyDown
	case ebiten.KeyArrowLeft:
		return tileterm.KeyLeft
	case ebiten.KeyArrowRight:
		return tileterm.KeyRight
	case ebiten.KeyEnter, ebiten.KeyNumpadEnter:
		return tileterm.KeyEnter
	case ebiten.KeyEscape:
		return tileterm.KeyEscape
	case ebiten.KeySpace:
		return tileterm.KeySpace
	case ebiten.KeyBackspace:
		return tileterm.KeyBackspace
	case ebiten.KeyTab:
		return tileterm.KeyTab
	default:
		return tileterm.KeyUnknown
	}
}
