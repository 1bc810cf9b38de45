package tileterm

import (
	"fmt"
	"math"
)

// Renderer owns a layered grid of glyph cells and turns it into one batched
// draw per frame.
//
// The grid is width x height cells of cellWidth x cellHeight pixels. Cell
// (0, 0) is the bottom-left cell of the surface. Layers are stacked by z:
// higher z is drawn later and therefore appears on top.
//
// Renderer is not safe for concurrent use. The typical loop polls input,
// mutates cells and calls Render once per tick, all on one goroutine.
type Renderer struct {
	width, height         int
	cellWidth, cellHeight float64

	stack    *LayerStack
	snapshot *LayerStack
	frame    Frame
	builder  quadBuilder

	backColor [4]float32
	backend   Backend
	atlas     *Atlas
	closed    bool
}

// New creates a Renderer for a width x height grid of cells sized
// cellWidth x cellHeight pixels.
//
// The glyph atlas is loaded from atlasPath unless WithAtlas is given. If no
// backend is supplied with WithBackend, the highest-priority registered
// backend is used. New creates the backend surface of
// (width*cellWidth) x (height*cellHeight) pixels, which must be whole
// numbers, and uploads the atlas. Failures are reported as
// ErrInvalidDimensions, ErrResourceLoad or ErrBackend; a backend given
// with WithBackend is closed when New fails.
func New(atlasPath string, width, height int, cellWidth, cellHeight float64, opts ...Option) (*Renderer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	fail := func(err error) (*Renderer, error) {
		if o.backend != nil {
			closeBackend(o.backend)
		}
		return nil, err
	}

	if width <= 0 || height <= 0 || !(cellWidth > 0) || !(cellHeight > 0) {
		return fail(fmt.Errorf("%w: grid %dx%d, cell %gx%g",
			ErrInvalidDimensions, width, height, cellWidth, cellHeight))
	}
	surfW := float64(width) * cellWidth
	surfH := float64(height) * cellHeight
	if surfW != math.Trunc(surfW) || surfH != math.Trunc(surfH) {
		return fail(fmt.Errorf("%w: surface %gx%g is not a whole number of pixels",
			ErrInvalidDimensions, surfW, surfH))
	}

	atlas := o.atlas
	if atlas == nil {
		a, err := LoadAtlas(atlasPath)
		if err != nil {
			return fail(err)
		}
		atlas = a
		Logger().Info("tileterm: atlas loaded", "path", atlasPath,
			"width", a.Width(), "height", a.Height())
	}

	b := o.backend
	if b == nil {
		db, err := DefaultBackend()
		if err != nil {
			return nil, err
		}
		b = db
	}

	if err := b.CreateSurface(int(surfW), int(surfH), o.title); err != nil {
		closeBackend(b)
		return nil, backendError("create surface", err)
	}
	if err := b.SetAtlas(atlas); err != nil {
		closeBackend(b)
		return nil, backendError("set atlas", err)
	}

	size := width * height
	r := &Renderer{
		width:      width,
		height:     height,
		cellWidth:  cellWidth,
		cellHeight: cellHeight,
		stack:      NewLayerStack(size),
		snapshot:   NewLayerStack(size),
		builder: quadBuilder{
			cellWidth:   cellWidth,
			cellHeight:  cellHeight,
			totalWidth:  surfW,
			totalHeight: surfH,
		},
		backColor: o.backColor.Normalized(),
		backend:   b,
		atlas:     atlas,
	}
	Logger().Debug("tileterm: renderer created", "backend", b.Name(),
		"grid", fmt.Sprintf("%dx%d", width, height),
		"surface", fmt.Sprintf("%gx%g", surfW, surfH))
	return r, nil
}

func closeBackend(b Backend) {
	if err := b.Close(); err != nil {
		Logger().Warn("tileterm: backend close failed", "backend", b.Name(), "err", err)
	}
}

// index validates a cell address and returns its layer index. The stack
// grows to include z when the address is valid.
func (r *Renderer) index(x, y, z int) (int, error) {
	if r.closed {
		return 0, ErrClosed
	}
	if x < 0 || x >= r.width || y < 0 || y >= r.height || z < 0 || z >= MaxDepth {
		return 0, &IndexError{X: x, Y: y, Z: z, Width: r.width, Height: r.height}
	}
	if r.stack.EnsureDepth(z) {
		Logger().Debug("tileterm: layer stack grew", "depth", r.stack.Depth())
	}
	return y*r.width + x, nil
}

// Set places glyph code with color c at cell (x, y) of layer z.
// Layers up to z are created on demand. The cell's sub-cell offset is kept.
func (r *Renderer) Set(code uint8, x, y, z int, c Color) error {
	i, err := r.index(x, y, z)
	if err != nil {
		return err
	}
	cell := r.stack.cell(z, i)
	cell.Code = code
	cell.Color = c
	return nil
}

// SetExt is like Set but also moves the glyph by (dx, dy) cell units.
// Offsets are not clamped; a glyph may be drawn over its neighbours.
func (r *Renderer) SetExt(code uint8, x int, dx float64, y int, dy float64, z int, c Color) error {
	i, err := r.index(x, y, z)
	if err != nil {
		return err
	}
	cell := r.stack.cell(z, i)
	cell.Code = code
	cell.Color = c
	cell.DX = dx
	cell.DY = dy
	return nil
}

// SetBackColor sets the color the surface is cleared to before each frame.
func (r *Renderer) SetBackColor(c Color) {
	r.backColor = c.Normalized()
}

// Clear empties every layer. Only glyph codes are reset: colors and offsets
// remain and are reused by later writes that leave them unchanged. The
// number of layers stays the same.
func (r *Renderer) Clear() {
	r.stack.ClearAll()
	r.frame.reset()
}

// Render builds the frame geometry from the current cells and submits it to
// the backend as a single draw.
func (r *Renderer) Render() error {
	if r.closed {
		return ErrClosed
	}

	r.frame.reset()
	r.frame.ClearColor = r.backColor
	r.stack.SnapshotInto(r.snapshot)

	for z := 0; z < r.snapshot.Depth(); z++ {
		for y := 0; y < r.height; y++ {
			row := y * r.width
			for x := 0; x < r.width; x++ {
				cell := r.snapshot.cell(z, row+x)
				if cell.Empty() {
					continue
				}
				r.builder.emit(&r.frame, cell, x, y)
			}
		}
	}

	if err := r.backend.Submit(&r.frame); err != nil {
		return backendError("submit", err)
	}
	Logger().Debug("tileterm: frame rendered", "quads", r.frame.Quads(),
		"layers", r.snapshot.Depth())
	return nil
}

// Frame returns the geometry built by the last Render. The frame is owned
// by the Renderer and is overwritten by the next Render or Clear.
func (r *Renderer) Frame() *Frame {
	return &r.frame
}

// Size returns the grid size in cells.
func (r *Renderer) Size() (width, height int) {
	return r.width, r.height
}

// CellSize returns the pixel size of one cell.
func (r *Renderer) CellSize() (width, height float64) {
	return r.cellWidth, r.cellHeight
}

// SurfaceSize returns the pixel size of the whole surface.
func (r *Renderer) SurfaceSize() (width, height float64) {
	return r.builder.totalWidth, r.builder.totalHeight
}

// Depth returns the number of layers currently allocated.
func (r *Renderer) Depth() int {
	return r.stack.Depth()
}

// Cell returns the cell at (x, y) of layer z. Layers that have not been
// written yet report the default cell.
func (r *Renderer) Cell(x, y, z int) (Cell, error) {
	if x < 0 || x >= r.width || y < 0 || y >= r.height || z < 0 || z >= MaxDepth {
		return Cell{}, &IndexError{X: x, Y: y, Z: z, Width: r.width, Height: r.height}
	}
	c, ok := r.stack.Cell(z, y*r.width+x)
	if !ok {
		return defaultCell, nil
	}
	return c, nil
}

// Atlas returns the glyph atlas in use.
func (r *Renderer) Atlas() *Atlas {
	return r.atlas
}

// Backend returns the backend the Renderer draws with.
func (r *Renderer) Backend() Backend {
	return r.backend
}

// Close releases the backend. It is safe to call more than once.
func (r *Renderer) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.atlas = nil
	if err := r.backend.Close(); err != nil {
		return backendError("close", err)
	}
	return nil
}
