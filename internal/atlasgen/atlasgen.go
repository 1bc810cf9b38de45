// Package atlasgen renders code page 437 glyph atlases from TrueType fonts.
//
// The atlas is a 16x16 grid of CellWidth x CellHeight slots. Glyph code n is
// drawn into column n%16 of row n/16, counting rows from the top. Pixels no
// glyph touches are filled with the key color so they are transparent when
// the atlas is drawn.
package atlasgen

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	gotext "github.com/go-text/typesetting/font"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/tileterm/internal/cp437"
)

const (
	columns = 16
	rows    = 16
)

// ErrInvalidConfig is returned for non-positive slot or font sizes.
var ErrInvalidConfig = errors.New("atlasgen: invalid config")

// Config describes the atlas to generate.
type Config struct {
	// CellWidth and CellHeight are the slot size in pixels.
	CellWidth, CellHeight int

	// Font is TrueType or OpenType data. Nil selects Go Mono.
	Font []byte

	// Size is the font size in pixels per em. Zero derives a size that
	// fits the slot.
	Size float64

	// Foreground is the glyph color. Keep it white so shading by the cell
	// color reproduces that color exactly.
	Foreground color.NRGBA

	// Key fills uncovered pixels.
	Key color.NRGBA

	// Solid disables anti-aliasing: coverage of half or more becomes fully
	// opaque, anything less becomes Key.
	Solid bool
}

// DefaultConfig returns a 12x12 Go Mono configuration with a magenta key.
func DefaultConfig() Config {
	return Config{
		CellWidth:  12,
		CellHeight: 12,
		Foreground: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Key:        color.NRGBA{R: 255, G: 0, B: 255, A: 255},
	}
}

// Result is a generated atlas.
type Result struct {
	Image *image.NRGBA

	// FontName is the family name of the source font, if it has one.
	FontName string

	// Size is the font size that was used.
	Size float64

	// Missing lists the glyph codes whose rune the font does not cover.
	// Their slots are left empty.
	Missing []byte
}

// Generate renders the atlas described by cfg.
func Generate(cfg Config) (*Result, error) {
	if cfg.CellWidth <= 0 || cfg.CellHeight <= 0 || cfg.Size < 0 {
		return nil, fmt.Errorf("%w: cell %dx%d, size %g",
			ErrInvalidConfig, cfg.CellWidth, cfg.CellHeight, cfg.Size)
	}
	data := cfg.Font
	if data == nil {
		data = gomono.TTF
	}

	missing, err := coverage(data)
	if err != nil {
		return nil, err
	}

	otFont, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("atlasgen: failed to parse font: %w", err)
	}

	size := cfg.Size
	if size == 0 {
		size, err = fitSize(otFont, cfg.CellWidth, cfg.CellHeight)
		if err != nil {
			return nil, err
		}
	}

	face, err := opentype.NewFace(otFont, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("atlasgen: failed to create face: %w", err)
	}
	defer func() {
		_ = face.Close()
	}()

	w, h := cfg.CellWidth*columns, cfg.CellHeight*rows
	mask := image.NewAlpha(image.Rect(0, 0, w, h))

	m := face.Metrics()
	ascent := m.Ascent.Ceil()
	descent := m.Descent.Ceil()
	baseline := (cfg.CellHeight-ascent-descent)/2 + ascent

	skip := make(map[byte]bool, len(missing))
	for _, c := range missing {
		skip[c] = true
	}

	for code := 1; code < columns*rows; code++ {
		if skip[byte(code)] {
			continue
		}
		r := cp437.Rune(byte(code))
		slot := image.Rect(0, 0, cfg.CellWidth, cfg.CellHeight).Add(image.Point{
			X: (code % columns) * cfg.CellWidth,
			Y: (code / columns) * cfg.CellHeight,
		})
		drawGlyph(mask.SubImage(slot).(*image.Alpha), face, r, baseline)
	}

	img := image.NewNRGBA(mask.Rect)
	for i, a := range mask.Pix {
		var px color.NRGBA
		switch {
		case a == 0, cfg.Solid && a < 0x80:
			px = cfg.Key
		case cfg.Solid:
			px = cfg.Foreground
		default:
			px = cfg.Foreground
			px.A = uint8(uint16(px.A) * uint16(a) / 255) //nolint:gosec // product/255 fits in uint8
		}
		j := i * 4
		img.Pix[j+0] = px.R
		img.Pix[j+1] = px.G
		img.Pix[j+2] = px.B
		img.Pix[j+3] = px.A
	}

	name, _ := otFont.Name(nil, sfnt.NameIDFamily)
	return &Result{
		Image:    img,
		FontName: name,
		Size:     size,
		Missing:  missing,
	}, nil
}

// drawGlyph draws r horizontally centered in dst, clipped to dst's bounds.
func drawGlyph(dst *image.Alpha, face font.Face, r rune, baseline int) {
	adv, ok := face.GlyphAdvance(r)
	if !ok {
		return
	}
	b := dst.Bounds()
	x := fixed.I(b.Min.X) + (fixed.I(b.Dx())-adv)/2

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.Point26_6{X: x, Y: fixed.I(b.Min.Y + baseline)},
	}
	d.DrawString(string(r))
}

// fitSize returns the largest whole-pixel font size whose advance and line
// height fit in a slot.
func fitSize(f *opentype.Font, cellW, cellH int) (float64, error) {
	for size := cellH; size > 1; size-- {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    float64(size),
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return 0, fmt.Errorf("atlasgen: failed to create face: %w", err)
		}
		adv, _ := face.GlyphAdvance('M')
		m := face.Metrics()
		_ = face.Close()

		if adv.Ceil() <= cellW && (m.Ascent+m.Descent).Ceil() <= cellH {
			return float64(size), nil
		}
	}
	return 1, nil
}

// coverage reports the glyph codes 1..255 whose rune the font lacks.
func coverage(data []byte) ([]byte, error) {
	face, err := gotext.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("atlasgen: failed to parse font: %w", err)
	}
	var missing []byte
	for code := 1; code < columns*rows; code++ {
		r := cp437.Rune(byte(code))
		if r == 0xA0 || r == ' ' {
			continue
		}
		if _, ok := face.NominalGlyph(r); !ok {
			missing = append(missing, byte(code))
		}
	}
	return missing, nil
}

