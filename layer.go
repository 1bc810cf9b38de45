package tileterm

// MaxDepth is the maximum number of layers a LayerStack can hold.
// Valid z values are 0 through MaxDepth-1.
const MaxDepth = 256

// Layer is a dense, row-major grid of cells at one z-level.
// Cell (x, y) lives at index y*width + x.
type Layer struct {
	cells []Cell
}

// NewLayer creates a layer of size default cells.
func NewLayer(size int) *Layer {
	l := &Layer{cells: make([]Cell, size)}
	for i := range l.cells {
		l.cells[i] = defaultCell
	}
	return l
}

// Len returns the number of cells in the layer.
func (l *Layer) Len() int {
	return len(l.cells)
}

// Cell returns a copy of the cell at index i.
func (l *Layer) Cell(i int) Cell {
	return l.cells[i]
}

// clear resets the glyph code of every cell. Color and offsets are kept.
func (l *Layer) clear() {
	for i := range l.cells {
		l.cells[i].Code = 0
	}
}

// LayerStack is an ordered, growable arena of equally sized layers indexed
// by z. Index 0 is the bottom layer and is drawn first.
//
// The stack never shrinks: clearing only resets glyph codes, and writing
// above the current depth materializes every intermediate layer.
type LayerStack struct {
	size   int
	layers []*Layer
}

// NewLayerStack creates a stack holding exactly one layer of size cells.
func NewLayerStack(size int) *LayerStack {
	return &LayerStack{
		size:   size,
		layers: []*Layer{NewLayer(size)},
	}
}

// Depth returns the number of layers in the stack.
func (s *LayerStack) Depth() int {
	return len(s.layers)
}

// Size returns the number of cells per layer.
func (s *LayerStack) Size() int {
	return s.size
}

// Layer returns the layer at z, or nil if z is out of range.
func (s *LayerStack) Layer(z int) *Layer {
	if z < 0 || z >= len(s.layers) {
		return nil
	}
	return s.layers[z]
}

// EnsureDepth appends default layers until z is a valid index.
// It reports whether the stack grew.
func (s *LayerStack) EnsureDepth(z int) bool {
	grew := false
	for z >= len(s.layers) {
		s.layers = append(s.layers, NewLayer(s.size))
		grew = true
	}
	return grew
}

// ClearLayer resets the glyph code of every cell in layer z to 0, leaving
// color and sub-cell offsets untouched. Out-of-range z is a no-op.
func (s *LayerStack) ClearLayer(z int) {
	if l := s.Layer(z); l != nil {
		l.clear()
	}
}

// ClearAll applies ClearLayer to every layer. Depth is unchanged.
func (s *LayerStack) ClearAll() {
	for z := range s.layers {
		s.layers[z].clear()
	}
}

// Cell returns a copy of the cell at layer z, index i. The second result is
// false if either index is out of range.
func (s *LayerStack) Cell(z, i int) (Cell, bool) {
	l := s.Layer(z)
	if l == nil || i < 0 || i >= len(l.cells) {
		return Cell{}, false
	}
	return l.cells[i], true
}

// cell returns a pointer to the cell at layer z, index i. The caller must
// have validated both.
func (s *LayerStack) cell(z, i int) *Cell {
	return &s.layers[z].cells[i]
}

// SnapshotInto copies the full state of s into dst, reusing dst's storage
// where possible. After the call dst has the same depth, size and cells as
// s and shares no memory with it.
func (s *LayerStack) SnapshotInto(dst *LayerStack) {
	dst.size = s.size
	for len(dst.layers) < len(s.layers) {
		dst.layers = append(dst.layers, &Layer{})
	}
	dst.layers = dst.layers[:len(s.layers)]
	for z, l := range s.layers {
		d := dst.layers[z]
		if cap(d.cells) < len(l.cells) {
			d.cells = make([]Cell, len(l.cells))
		}
		d.cells = d.cells[:len(l.cells)]
		copy(d.cells, l.cells)
	}
}
