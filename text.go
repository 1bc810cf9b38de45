package tileterm

import (
	"github.com/gogpu/tileterm/internal/cp437"
)

// Substitute is the glyph code written for runes that code page 437 cannot
// represent.
const Substitute = '?'

// GlyphCode returns the code page 437 glyph code for r, or Substitute if r
// has no glyph. Both control characters and their display symbols
// (for example '\x01' and '☺') map to the same code.
func GlyphCode(r rune) uint8 {
	c, ok := cp437.Code(r)
	if !ok {
		return Substitute
	}
	return c
}

// GlyphRune returns the display rune of a code page 437 glyph code.
func GlyphRune(code uint8) rune {
	return cp437.Rune(code)
}

// Print writes s as successive glyphs on row y of layer z, starting at
// column x and moving right. Every rune occupies one cell.
//
// Cells that fit are written even when the text runs past the right edge;
// the first cell outside the grid is reported as an *IndexError.
func (r *Renderer) Print(x, y, z int, s string, c Color) error {
	for i, code := range cp437.Encode(s, Substitute) {
		if err := r.Set(code, x+i, y, z, c); err != nil {
			return err
		}
	}
	return nil
}
