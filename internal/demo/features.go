// Package demo holds the demonstration scenes shown by the tileterm
// command: a feature tour over a full grid and a generated map explored by
// a player glyph.
package demo

import (
	"fmt"
	"math/rand/v2"

	"github.com/gogpu/tileterm"
)

// Grid and cell size of the feature tour.
const (
	FeaturesWidth  = 80
	FeaturesHeight = 40
	CellSize       = 12
)

// featuresBack is the background the tour clears to.
var featuresBack = tileterm.RGB(40, 80, 190)

// Features is the feature tour: every cell of layer 0 holds a glyph in a
// random color, three layers are stacked on cell (0, 0) and an 'X' on
// layer 3 drifts diagonally using sub-cell offsets.
//
// Space clears the grid; the drifting glyph keeps moving afterwards.
type Features struct {
	r     *tileterm.Renderer
	t     float64
	frame int
}

// NewFeatures fills r, which must be at least FeaturesWidth x
// FeaturesHeight cells, and returns the tour.
func NewFeatures(r *tileterm.Renderer, rng *rand.Rand) (*Features, error) {
	if w, h := r.Size(); w < FeaturesWidth || h < FeaturesHeight {
		return nil, fmt.Errorf("demo: features needs %dx%d cells, got %dx%d",
			FeaturesWidth, FeaturesHeight, w, h)
	}
	r.SetBackColor(featuresBack)

	for x := 0; x < FeaturesWidth; x++ {
		for y := 0; y < FeaturesHeight; y++ {
			c := tileterm.RGB(uint8(rng.IntN(255)), uint8(rng.IntN(255)), uint8(rng.IntN(255))) //nolint:gosec // IntN(255) fits a byte
			code := uint8((y*FeaturesWidth + x) % 255)                                         //nolint:gosec // reduced mod 255
			if err := r.Set(code, x, y, 0, c); err != nil {
				return nil, err
			}
		}
	}

	stack := []struct {
		code uint8
		z    int
	}{{176, 0}, {'g', 1}, {'^', 2}}
	for _, s := range stack {
		if err := r.Set(s.code, 0, 0, s.z, tileterm.Red); err != nil {
			return nil, err
		}
	}
	return &Features{r: r}, nil
}

// Tick advances the drifting glyph by a tenth of a cell. It wraps around
// after crossing the grid.
func (f *Features) Tick(events []tileterm.Event) error {
	for _, ev := range events {
		if ev.Type == tileterm.EventKey && ev.Key == tileterm.KeySpace {
			f.r.Clear()
		}
	}

	f.t += 0.1
	if f.t > FeaturesHeight-2 {
		f.t = 0
	}
	f.frame++
	return f.r.SetExt('X', 1, f.t, 1, f.t, 3, tileterm.Red)
}

// Frame returns the number of ticks so far.
func (f *Features) Frame() int { return f.frame }
