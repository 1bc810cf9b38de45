// Package cp437 maps between IBM code page 437 glyph codes and Unicode runes.
//
// golang.org/x/text decodes bytes 0x00-0x1F and 0x7F as control characters.
// A glyph atlas draws the original display symbols for those codes, so this
// package overlays them on top of the charmap.
package cp437

import (
	"golang.org/x/text/encoding/charmap"
)

// graphics holds the display symbols of the codes x/text treats as controls.
var graphics = [32]rune{
	0x0000, '☺', '☻', '♥', '♦', '♣', '♠', '•',
	'◘', '○', '◙', '♂', '♀', '♪', '♫', '☼',
	'►', '◄', '↕', '‼', '¶', '§', '▬', '↨',
	'↑', '↓', '→', '←', '∟', '↔', '▲', '▼',
}

const house = '⌂' // 0x7F

// Rune returns the display rune for glyph code c.
// Code 0 maps to U+0000, which has no glyph.
func Rune(c byte) rune {
	switch {
	case c < 0x20:
		return graphics[c]
	case c == 0x7F:
		return house
	default:
		return charmap.CodePage437.DecodeByte(c)
	}
}

// Code returns the glyph code for r. The second result is false when r has
// no code page 437 glyph. Both the control characters and their display
// symbols map to the same code.
func Code(r rune) (byte, bool) {
	if r == house {
		return 0x7F, true
	}
	for i, g := range graphics[1:] {
		if g == r {
			return byte(i + 1), true
		}
	}
	return charmap.CodePage437.EncodeRune(r)
}

// Encode converts s to glyph codes. Runes without a glyph become sub.
func Encode(s string, sub byte) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		c, ok := Code(r)
		if !ok {
			c = sub
		}
		out = append(out, c)
	}
	return out
}
