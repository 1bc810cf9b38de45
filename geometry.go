package tileterm

// AtlasColumns and AtlasRows describe the fixed glyph grid of an atlas.
const (
	AtlasColumns = 16
	AtlasRows    = 16
)

// Vertex is one corner of a glyph quad.
//
// Position is in normalized device coordinates: x and y in [-1, 1] with y
// growing upward. TexCoords are in texture space, where v = 0 is the
// atlas image's visual bottom row. Shade is the normalized cell color that
// multiplies the sampled texel.
type Vertex struct {
	Position  [2]float64
	TexCoords [2]float64
	Shade     [4]float32
}

// Frame is the geometry of one rendered frame: an indexed triangle list
// plus the color the surface is cleared to before drawing.
//
// Every drawn cell contributes 4 vertices and 6 indices, appended in
// painter's order (ascending z, then row-major).
type Frame struct {
	Vertices   []Vertex
	Indices    []uint32
	ClearColor [4]float32
}

// Quads returns the number of glyph quads in the frame.
func (f *Frame) Quads() int {
	return len(f.Vertices) / 4
}

// reset empties the frame, keeping its backing arrays.
func (f *Frame) reset() {
	f.Vertices = f.Vertices[:0]
	f.Indices = f.Indices[:0]
}

// AtlasCoords returns the texture-space extents of the glyph slot for code.
//
// The atlas is a 16x16 grid stored bottom-to-top, so column = code%16 and
// row = 16 - code/16. u runs from col/16 to (col+1)/16 and v from row/16
// (top edge) down to (row-1)/16 (bottom edge).
func AtlasCoords(code uint8) (left, right, top, bottom float64) {
	const step = 1.0 / AtlasColumns
	col := int(code) % AtlasColumns
	row := AtlasRows - int(code)/AtlasColumns

	left = step * float64(col)
	right = step * float64(col+1)
	top = step * float64(row)
	bottom = step * float64(row-1)
	return left, right, top, bottom
}

// quadBuilder appends glyph quads for a grid of fixed cell size.
type quadBuilder struct {
	cellWidth, cellHeight float64
	// Total surface dimensions in pixels.
	totalWidth, totalHeight float64
}

// emit appends the quad for cell at grid position (x, y) to f.
func (b quadBuilder) emit(f *Frame, cell *Cell, x, y int) {
	left := (float64(x)+cell.DX)*b.cellWidth*2/b.totalWidth - 1
	bottom := (float64(y)+cell.DY)*b.cellHeight*2/b.totalHeight - 1
	right := left + b.cellWidth*2/b.totalWidth
	top := bottom + b.cellHeight*2/b.totalHeight

	texLeft, texRight, texTop, texBottom := AtlasCoords(cell.Code)
	shade := cell.Color.Normalized()

	base := uint32(len(f.Vertices)) //nolint:gosec // bounded by grid size * MaxDepth * 4
	f.Vertices = append(f.Vertices,
		Vertex{Position: [2]float64{left, top}, TexCoords: [2]float64{texLeft, texTop}, Shade: shade},
		Vertex{Position: [2]float64{left, bottom}, TexCoords: [2]float64{texLeft, texBottom}, Shade: shade},
		Vertex{Position: [2]float64{right, bottom}, TexCoords: [2]float64{texRight, texBottom}, Shade: shade},
		Vertex{Position: [2]float64{right, top}, TexCoords: [2]float64{texRight, texTop}, Shade: shade},
	)
	f.Indices = append(f.Indices,
		base+0, base+1, base+2,
		base+0, base+2, base+3,
	)
}

// NDCToPixel converts a normalized device coordinate into pixel space of a
// surface with the given size, with the origin at the top-left corner and y
// growing downward.
func NDCToPixel(x, y float64, width, height int) (px, py float64) {
	px = (x + 1) / 2 * float64(width)
	py = (1 - y) / 2 * float64(height)
	return px, py
}

// TexToPixel converts texture coordinates into pixel coordinates of an atlas
// image with the given size, whose row 0 is at the top of the image.
func TexToPixel(u, v float64, width, height int) (px, py float64) {
	px = u * float64(width)
	py = (1 - v) * float64(height)
	return px, py
}
