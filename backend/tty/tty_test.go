// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package tty

import (
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/gogpu/tileterm"
)

// ttyAtlas returns a 64x64 atlas (4x4 slots): 'A' is a partial glyph, code
// 219 is solid and every other slot is chroma-keyed.
func ttyAtlas(t *testing.T) *tileterm.Atlas {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, B: 255, A: 255})
		}
	}
	fill := func(code, w int) {
		x0, y0 := (code%16)*4, (code/16)*4
		for y := y0; y < y0+4; y++ {
			for x := x0; x < x0+w; x++ {
				img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
			}
		}
	}
	fill('A', 2)
	fill(219, 4)
	a, err := tileterm.NewAtlas(img)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func newSim(t *testing.T) (*Backend, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	b, err := New(Config{Screen: sim})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b, sim
}

func TestTTYDrawsCells(t *testing.T) {
	b, sim := newSim(t)
	r, err := tileterm.New("", 8, 4, 4, 4, tileterm.WithBackend(b), tileterm.WithAtlas(ttyAtlas(t)))
	if err != nil {
		t.Fatalf("tileterm.New failed: %v", err)
	}
	defer r.Close()
	sim.SetSize(8, 4)

	r.SetBackColor(tileterm.Blue)
	if err := r.Set('A', 1, 0, 0, tileterm.Red); err != nil {
		t.Fatal(err)
	}
	if err := r.Set(219, 0, 3, 0, tileterm.Green); err != nil {
		t.Fatal(err)
	}
	// 'B' is blank in the atlas and leaves the cell empty.
	if err := r.Set('B', 5, 2, 0, tileterm.White); err != nil {
		t.Fatal(err)
	}
	if err := r.Render(); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	red := tcell.NewRGBColor(255, 0, 0)
	green := tcell.NewRGBColor(0, 255, 0)
	blue := tcell.NewRGBColor(0, 0, 255)

	tests := []struct {
		name    string
		x, y    int
		r       rune
		fg, bg  tcell.Color
		checkFg bool
	}{
		{"glyph on bottom row", 1, 3, 'A', red, blue, true},
		{"solid block on top row", 0, 0, '█', green, green, true},
		{"blank glyph", 5, 1, ' ', 0, blue, false},
		{"empty cell", 7, 2, ' ', 0, blue, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mainc, _, style, _ := sim.GetContent(tt.x, tt.y) //nolint:staticcheck // GetContent is the correct API
			fg, bg, _ := style.Decompose()
			if mainc != tt.r {
				t.Errorf("rune = %q, want %q", mainc, tt.r)
			}
			if bg != tt.bg {
				t.Errorf("background = %v, want %v", bg, tt.bg)
			}
			if tt.checkFg && fg != tt.fg {
				t.Errorf("foreground = %v, want %v", fg, tt.fg)
			}
		})
	}
}

func TestTTYBlendsShade(t *testing.T) {
	b, sim := newSim(t)
	r, err := tileterm.New("", 2, 1, 4, 4, tileterm.WithBackend(b), tileterm.WithAtlas(ttyAtlas(t)))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	r.SetBackColor(tileterm.Black)
	if err := r.Set('A', 0, 0, 0, tileterm.RGBA(255, 255, 255, 51)); err != nil {
		t.Fatal(err)
	}
	if err := r.Render(); err != nil {
		t.Fatal(err)
	}
	_, _, style, _ := sim.GetContent(0, 0) //nolint:staticcheck // GetContent is the correct API
	fg, _, _ := style.Decompose()
	if want := tcell.NewRGBColor(51, 51, 51); fg != want {
		t.Errorf("foreground = %v, want %v", fg, want)
	}
}

func TestTTYEvents(t *testing.T) {
	b, sim := newSim(t)
	if err := b.CreateSurface(0, 0, ""); err != nil {
		t.Fatal(err)
	}

	sim.InjectKey(tcell.KeyUp, 0, tcell.ModNone)
	sim.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	sim.InjectKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)

	var got []tileterm.Event
	deadline := time.Now().Add(2 * time.Second)
	for len(got) < 3 && time.Now().Before(deadline) {
		for _, ev := range b.PollEvents() {
			if ev.Type != tileterm.EventResize {
				got = append(got, ev)
			}
		}
		time.Sleep(time.Millisecond)
	}
	if len(got) != 3 {
		t.Fatalf("received %d events, want 3: %+v", len(got), got)
	}
	if got[0].Key != tileterm.KeyUp {
		t.Errorf("event 0 = %+v, want KeyUp", got[0])
	}
	if got[1].Key != tileterm.KeyRune || got[1].Rune != 'q' {
		t.Errorf("event 1 = %+v, want rune q", got[1])
	}
	if got[2].Type != tileterm.EventClose {
		t.Errorf("event 2 = %+v, want close", got[2])
	}
}

func TestTTYErrors(t *testing.T) {
	b, _ := newSim(t)
	if err := b.Submit(&tileterm.Frame{}); !errors.Is(err, ErrNoSurface) {
		t.Errorf("Submit before surface: err = %v, want ErrNoSurface", err)
	}
	if err := b.CreateSurface(0, 0, ""); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if err := b.Submit(&tileterm.Frame{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Submit after Close: err = %v, want ErrClosed", err)
	}
}

func TestSlotCode(t *testing.T) {
	for c := 1; c < 256; c++ {
		u, _, v, _ := tileterm.AtlasCoords(uint8(c))
		if got := slotCode(u, v); int(got) != c {
			t.Errorf("slotCode(AtlasCoords(%d)) = %d", c, got)
		}
	}
}
