package tileterm

// Cell is the renderable state of one grid position within one layer.
//
// Code selects the atlas glyph slot; 0 means the cell is empty and is never
// drawn. DX and DY displace the drawn quad by a fraction (or multiple) of a
// cell without moving the cell itself.
type Cell struct {
	Color  Color
	DX, DY float64
	Code   uint8
}

// defaultCell is the state of every cell in a freshly created layer.
var defaultCell = Cell{Color: Black}

// Empty reports whether the cell is skipped during rendering.
func (c Cell) Empty() bool {
	return c.Code == 0
}
