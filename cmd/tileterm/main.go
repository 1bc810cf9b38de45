// Command tileterm shows the tileterm demos, renders snapshots, generates
// glyph atlases and runs Lua scripts against a renderer.
//
// Usage:
//
//	tileterm features                 # feature tour in a window or terminal
//	tileterm mapgen                   # explore a generated cave with the arrow keys
//	tileterm shot -o features.png     # render one frame offscreen
//	tileterm atlas -o tileset.png     # generate a CP437 atlas from a font
//	tileterm run game.lua             # drive the grid from a Lua script
package main

import (
	"context"
	"os"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
