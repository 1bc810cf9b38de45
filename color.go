package tileterm

import (
	"image/color"
)

// Color is an 8-bit per channel RGBA color, not premultiplied.
type Color struct {
	R, G, B, A uint8
}

// RGB creates an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// RGBA creates a color from all four channels.
func RGBA(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// Normalized returns the color as four floats in [0, 1], each channel
// divided by 255. This is the form consumed by shaders as the per-vertex
// shade color and by backends as the clear color.
func (c Color) Normalized() [4]float32 {
	return [4]float32{
		float32(c.R) / 255,
		float32(c.G) / 255,
		float32(c.B) / 255,
		float32(c.A) / 255,
	}
}

// RGBA implements color.Color. Channels are premultiplied as the
// interface requires.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// FromColor converts a standard color.Color to Color.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

// Hex creates a color from a hex string.
// Supports formats: "RGB", "RGBA", "RRGGBB", "RRGGBBAA", with an optional
// leading '#'. Malformed input yields opaque black.
func Hex(hex string) Color {
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint32
	a = 255

	var ok bool
	switch len(hex) {
	case 3:
		ok = parseHex(hex[0:1], &r) && parseHex(hex[1:2], &g) && parseHex(hex[2:3], &b)
		r, g, b = r*17, g*17, b*17
	case 4:
		ok = parseHex(hex[0:1], &r) && parseHex(hex[1:2], &g) &&
			parseHex(hex[2:3], &b) && parseHex(hex[3:4], &a)
		r, g, b, a = r*17, g*17, b*17, a*17
	case 6:
		ok = parseHex(hex[0:2], &r) && parseHex(hex[2:4], &g) && parseHex(hex[4:6], &b)
	case 8:
		ok = parseHex(hex[0:2], &r) && parseHex(hex[2:4], &g) &&
			parseHex(hex[4:6], &b) && parseHex(hex[6:8], &a)
	}
	if !ok {
		return Black
	}

	return Color{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(a)} //nolint:gosec // each value is at most 255
}

// parseHex accumulates hex digits of s into val.
func parseHex(s string, val *uint32) bool {
	*val = 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		*val *= 16
		switch {
		case '0' <= c && c <= '9':
			*val += uint32(c - '0')
		case 'a' <= c && c <= 'f':
			*val += uint32(c - 'a' + 10)
		case 'A' <= c && c <= 'F':
			*val += uint32(c - 'A' + 10)
		default:
			return false
		}
	}
	return true
}

// Common colors
var (
	Black       = RGB(0, 0, 0)
	White       = RGB(255, 255, 255)
	Red         = RGB(255, 0, 0)
	Green       = RGB(0, 255, 0)
	Blue        = RGB(0, 0, 255)
	Yellow      = RGB(255, 255, 0)
	Cyan        = RGB(0, 255, 255)
	Magenta     = RGB(255, 0, 255)
	Transparent = RGBA(0, 0, 0, 0)
)

// ChromaKey is the reserved atlas texel color. Texels whose RGB equal it
// are drawn fully transparent regardless of their stored alpha.
var ChromaKey = Magenta

// IsChromaKey reports whether an atlas texel with the given RGB channels is
// the reserved transparent color.
func IsChromaKey(r, g, b uint8) bool {
	return r == ChromaKey.R && g == ChromaKey.G && b == ChromaKey.B
}
