// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !headless

package ebiten

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gogpu/tileterm"
)

func TestAppendVertices(t *testing.T) {
	src := []tileterm.Vertex{
		{Position: [2]float64{-1, 1}, TexCoords: [2]float64{0, 1}, Shade: [4]float32{1, 0.5, 0, 1}},
		{Position: [2]float64{0, 0}, TexCoords: [2]float64{0.5, 0.5}, Shade: [4]float32{0, 0, 1, 0.25}},
	}
	got := appendVertices(nil, src, 200, 100, 64, 32)
	want := []ebiten.Vertex{
		{DstX: 0, DstY: 0, SrcX: 0, SrcY: 0, ColorR: 1, ColorG: 0.5, ColorB: 0, ColorA: 1},
		{DstX: 100, DstY: 50, SrcX: 32, SrcY: 16, ColorR: 0, ColorG: 0, ColorB: 1, ColorA: 0.25},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("appendVertices mismatch (-want +got):\n%s", diff)
	}
}

func TestAppendQuadIndices(t *testing.T) {
	got := appendQuadIndices(nil, 2)
	want := []uint16{0, 1, 2, 0, 2, 3, 4, 5, 6, 4, 6, 7}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("indices mismatch (-want +got):\n%s", diff)
	}

	// The first quad of every batch starts again at index 0.
	long := appendQuadIndices(nil, maxBatchQuads+1)
	if first := long[maxBatchQuads*6]; first != 0 {
		t.Errorf("first index of second batch = %d, want 0", first)
	}
	if last := long[maxBatchQuads*6-1]; last != 65535 {
		t.Errorf("last index of first batch = %d, want 65535", last)
	}
}

func TestColorFromShade(t *testing.T) {
	c := tileterm.RGBA(10, 128, 255, 0)
	if got := colorFromShade(c.Normalized()); got != c {
		t.Errorf("colorFromShade(%v) = %v", c, got)
	}
}

func TestConvertKey(t *testing.T) {
	tests := []struct {
		in   ebiten.Key
		want tileterm.Key
	}{
		{ebiten.KeyArrowUp, tileterm.KeyUp},
		{ebiten.KeyArrowLeft, tileterm.KeyLeft},
		{ebiten.KeyNumpadEnter, tileterm.KeyEnter},
		{ebiten.KeyEscape, tileterm.KeyEscape},
		{ebiten.KeyF1, tileterm.KeyUnknown},
	}
	for _, tt := range tests {
		if got := convertKey(tt.in); got != tt.want {
			t.Errorf("convertKey(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBackendErrors(t *testing.T) {
	b := New(DefaultConfig())
	if err := b.Submit(&tileterm.Frame{}); !errors.Is(err, ErrNoSurface) {
		t.Errorf("Submit before surface: err = %v, want ErrNoSurface", err)
	}
	if err := b.CreateSurface(0, 10, ""); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("CreateSurface(0, 10): err = %v, want ErrInvalidDimensions", err)
	}
	if err := b.Run(func() error { return nil }); !errors.Is(err, ErrNoSurface) {
		t.Errorf("Run before surface: err = %v, want ErrNoSurface", err)
	}
	_ = b.Close()
	if err := b.CreateSurface(10, 10, ""); !errors.Is(err, ErrClosed) {
		t.Errorf("CreateSurface after Close: err = %v, want ErrClosed", err)
	}
}
