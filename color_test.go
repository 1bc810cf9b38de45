package tileterm

import (
	"image/color"
	"testing"
)

// Verify at compile time that Color implements color.Color.
var _ color.Color = Color{}

func TestNormalized(t *testing.T) {
	tests := []struct {
		name string
		c    Color
		want [4]float32
	}{
		{"opaque black", Black, [4]float32{0, 0, 0, 1}},
		{"opaque white", White, [4]float32{1, 1, 1, 1}},
		{"transparent", Transparent, [4]float32{0, 0, 0, 0}},
		{"channels", RGBA(51, 102, 204, 255), [4]float32{0.2, 0.4, 0.8, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Normalized(); got != tt.want {
				t.Errorf("Normalized() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizedRange(t *testing.T) {
	for v := 0; v < 256; v++ {
		c := RGBA(uint8(v), uint8(v), uint8(v), uint8(v))
		n := c.Normalized()
		for i, ch := range n {
			if ch < 0 || ch > 1 {
				t.Fatalf("Normalized(%d)[%d] = %g, out of [0, 1]", v, i, ch)
			}
			if ch != float32(v)/255 {
				t.Fatalf("Normalized(%d)[%d] = %g, want %g", v, i, ch, float32(v)/255)
			}
		}
	}
}

func TestColor_ColorInterface(t *testing.T) {
	tests := []struct {
		name                       string
		c                          Color
		wantR, wantG, wantB, wantA uint32
	}{
		{
			name:  "opaque black",
			c:     Black,
			wantR: 0, wantG: 0, wantB: 0, wantA: 65535,
		},
		{
			name:  "opaque white",
			c:     White,
			wantR: 65535, wantG: 65535, wantB: 65535, wantA: 65535,
		},
		{
			name:  "opaque red",
			c:     Red,
			wantR: 65535, wantG: 0, wantB: 0, wantA: 65535,
		},
		{
			name:  "transparent",
			c:     Transparent,
			wantR: 0, wantG: 0, wantB: 0, wantA: 0,
		},
		{
			name:  "50% alpha red",
			c:     RGBA(255, 0, 0, 128),
			wantR: 32896, wantG: 0, wantB: 0, wantA: 32896,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, a := tt.c.RGBA()
			if r != tt.wantR || g != tt.wantG || b != tt.wantB || a != tt.wantA {
				t.Errorf("RGBA() = (%d, %d, %d, %d), want (%d, %d, %d, %d)",
					r, g, b, a, tt.wantR, tt.wantG, tt.wantB, tt.wantA)
			}
		})
	}
}

func TestFromColorRoundtrip(t *testing.T) {
	original := RGBA(204, 77, 128, 230)
	got := FromColor(original)
	if got != original {
		t.Errorf("roundtrip: %v → %v", original, got)
	}

	if got := FromColor(color.Gray{Y: 10}); got != RGB(10, 10, 10) {
		t.Errorf("FromColor(Gray) = %v", got)
	}
}

func TestHex(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#fff", White},
		{"f00", Red},
		{"#0f08", RGBA(0, 255, 0, 136)},
		{"#3498db", RGB(0x34, 0x98, 0xdb)},
		{"3498DB80", RGBA(0x34, 0x98, 0xdb, 0x80)},
		{"", Black},
		{"#12", Black},
		{"#zzzzzz", Black},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Hex(tt.in); got != tt.want {
				t.Errorf("Hex(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsChromaKey(t *testing.T) {
	if !IsChromaKey(255, 0, 255) {
		t.Error("magenta should be the chroma key")
	}
	for _, c := range []Color{Black, White, Red, Blue, RGB(254, 0, 255), RGB(255, 1, 255)} {
		if IsChromaKey(c.R, c.G, c.B) {
			t.Errorf("%v should not be the chroma key", c)
		}
	}
}
