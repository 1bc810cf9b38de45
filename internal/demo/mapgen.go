package demo

import (
	"math/rand/v2"

	"github.com/gogpu/tileterm"
)

// Map tiles.
const (
	Wall  = '#'
	Floor = '.'
)

var (
	wallColor   = tileterm.RGB(191, 82, 9)
	floorColor  = tileterm.RGB(214, 194, 143)
	playerColor = tileterm.White
)

// Map is a cave carved by drunkard walks, with a player on layer 1.
type Map struct {
	Width, Height int
	Tiles         []byte // row-major, row 0 at the bottom

	PlayerX, PlayerY int
}

// MapConfig controls map generation.
type MapConfig struct {
	Width, Height int
	Walks         int // number of independent walkers
	Steps         int // steps per walker
}

// DefaultMapConfig returns a 40x40 map carved by 10 walks of 100 steps.
func DefaultMapConfig() MapConfig {
	return MapConfig{Width: 40, Height: 40, Walks: 10, Steps: 100}
}

// GenerateMap fills a map with walls and carves floor along random walks.
// Every walker starts at a random cell and moves at most one cell per axis
// each step, staying inside the map. The player starts on the first floor
// cell carved.
func GenerateMap(cfg MapConfig, rng *rand.Rand) *Map {
	m := &Map{
		Width:  cfg.Width,
		Height: cfg.Height,
		Tiles:  make([]byte, cfg.Width*cfg.Height),
	}
	for i := range m.Tiles {
		m.Tiles[i] = Wall
	}

	first := true
	for range cfg.Walks {
		x, y := rng.IntN(cfg.Width), rng.IntN(cfg.Height)
		if first {
			m.PlayerX, m.PlayerY = x, y
			first = false
		}
		for range cfg.Steps {
			m.Tiles[y*m.Width+x] = Floor
			x = clamp(x+rng.IntN(3)-1, 0, cfg.Width-1)
			y = clamp(y+rng.IntN(3)-1, 0, cfg.Height-1)
		}
	}
	return m
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// Tile returns the tile at (x, y).
func (m *Map) Tile(x, y int) byte {
	return m.Tiles[y*m.Width+x]
}

// Move moves the player one cell for an arrow key. Up increases y. The
// player stays inside the map but may walk through walls.
func (m *Map) Move(k tileterm.Key) {
	switch k {
	case tileterm.KeyUp:
		m.PlayerY = clamp(m.PlayerY+1, 0, m.Height-1)
	case tileterm.KeyDown:
		m.PlayerY = clamp(m.PlayerY-1, 0, m.Height-1)
	case tileterm.KeyLeft:
		m.PlayerX = clamp(m.PlayerX-1, 0, m.Width-1)
	case tileterm.KeyRight:
		m.PlayerX = clamp(m.PlayerX+1, 0, m.Width-1)
	}
}

// Draw clears r, draws the tiles on layer 0 and the player on layer 1.
func (m *Map) Draw(r *tileterm.Renderer) error {
	r.Clear()
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			t := m.Tile(x, y)
			c := playerColor
			switch t {
			case Wall:
				c = wallColor
			case Floor:
				c = floorColor
			}
			if err := r.Set(t, x, y, 0, c); err != nil {
				return err
			}
		}
	}
	return r.Set('@', m.PlayerX, m.PlayerY, 1, playerColor)
}

// TickFunc returns a tileterm.TickFunc that moves the player with the
// arrow keys and redraws r. Escape stops the loop.
func (m *Map) TickFunc(r *tileterm.Renderer) tileterm.TickFunc {
	return func(events []tileterm.Event) error {
		for _, ev := range events {
			if ev.Type != tileterm.EventKey {
				continue
			}
			if ev.Key == tileterm.KeyEscape {
				return tileterm.ErrStop
			}
			m.Move(ev.Key)
		}
		return m.Draw(r)
	}
}
