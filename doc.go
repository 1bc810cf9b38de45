// Package tileterm renders a grid of glyph cells in the manner of a
// character terminal, using a tiled glyph atlas and a pluggable graphics
// backend.
//
// # Overview
//
// A Renderer owns a grid of width x height cells, each cellWidth x
// cellHeight pixels. Every cell holds a glyph code (an index into a 16x16
// atlas image), a shade color and an optional sub-cell offset. Cells live in
// layers stacked by z; higher layers are drawn over lower ones without a
// depth buffer.
//
// Each call to Render rebuilds the frame geometry from scratch, one textured
// quad per non-empty cell, and hands it to the Backend as a single draw.
// Code 0 means "empty" and is never drawn.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/tileterm"
//	    _ "github.com/gogpu/tileterm/backend/software"
//	)
//
//	r, err := tileterm.New("tileset.png", 80, 40, 12, 12)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	r.SetBackColor(tileterm.RGB(40, 80, 190))
//	r.Set('@', 10, 5, 0, tileterm.White)
//	r.Print(0, 0, 1, "Hello ☺", tileterm.Yellow)
//	r.Render()
//
// # Coordinate System
//
// Cell (0, 0) is the bottom-left corner of the surface; y grows upward.
// Sub-cell offsets are in cell units, so SetExt with dx = 0.5 moves a glyph
// half a cell to the right.
//
// # Atlas
//
// The atlas is a 16x16 grid of equally sized glyph slots. Slot n sits in
// column n%16 of row n/16, counting rows from the top of the image. Pixels
// whose RGB is pure magenta (255, 0, 255) are transparent when drawn.
// DefaultAtlas generates a code page 437 atlas from the Go Mono font.
//
// # Backends
//
// Backends register themselves from init; import the one you need:
//
//	_ "github.com/gogpu/tileterm/backend/wgpu"     // GPU via gogpu/wgpu
//	_ "github.com/gogpu/tileterm/backend/ebiten"   // window via Ebitengine
//	_ "github.com/gogpu/tileterm/backend/software" // CPU rasterizer to image
//	_ "github.com/gogpu/tileterm/backend/headless" // records frames
//	_ "github.com/gogpu/tileterm/backend/tty"      // terminal via tcell
//
// # Logging
//
// tileterm is silent by default. Call SetLogger to receive structured
// log/slog output from the Renderer and its backends.
package tileterm

// Version is the current version of the library.
const Version = "0.1.0"
