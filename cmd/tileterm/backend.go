package main

import (
	"fmt"
	"os"
	"runtime"

	"golang.org/x/term"

	"github.com/gogpu/tileterm"
	"github.com/gogpu/tileterm/backend/ebiten"
	_ "github.com/gogpu/tileterm/backend/headless"
	_ "github.com/gogpu/tileterm/backend/software"
	_ "github.com/gogpu/tileterm/backend/tty"
	_ "github.com/gogpu/tileterm/backend/wgpu"
)

// detectBackend picks a backend for an interactive demo: a window when a
// display is available, the terminal when attached to one, headless
// otherwise.
func detectBackend() string {
	if ebiten.Available() && hasDisplay() {
		return tileterm.BackendEbiten
	}
	if term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) {
		return tileterm.BackendTTY
	}
	return tileterm.BackendHeadless
}

func hasDisplay() bool {
	if runtime.GOOS != "linux" && runtime.GOOS != "freebsd" {
		return true
	}
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

// openRenderer creates a width x height renderer on the backend named by
// name, or a detected one when name is empty.
func (g *globalFlags) openRenderer(name string, width, height int, title string) (*tileterm.Renderer, error) {
	if name == "" {
		name = detectBackend()
	}
	b, err := tileterm.NewBackend(name)
	if err != nil {
		return nil, fmt.Errorf("%w (available: %v)", err, tileterm.AvailableBackends())
	}
	tileterm.Logger().Info("tileterm: backend selected", "backend", name)

	opts := []tileterm.Option{tileterm.WithBackend(b), tileterm.WithTitle(title)}
	if g.atlas == "" {
		a, err := tileterm.DefaultAtlas(int(g.cellSize), int(g.cellSize))
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		opts = append(opts, tileterm.WithAtlas(a))
	}
	return tileterm.New(g.atlas, width, height, g.cellSize, g.cellSize, opts...)
}
