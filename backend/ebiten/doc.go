// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package ebiten provides a windowed tileterm backend built on Ebitengine.
//
// The backend implements tileterm.Runner: tileterm.Run hands the frame loop
// to ebiten.RunGame and the tick runs inside ebiten's Update callback. Glyph
// quads are drawn with a Kage shader that applies the shade and the magenta
// chroma key.
//
// Importing the package registers the backend under the name "ebiten".
// Building with the headless tag compiles the backend out; Available then
// reports false and nothing is registered.
package ebiten
