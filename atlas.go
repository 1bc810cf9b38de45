package tileterm

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"

	// Decoders registered with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gogpu/tileterm/internal/atlasgen"
	"github.com/gogpu/tileterm/internal/cache"
)

// Atlas is a decoded glyph atlas: an RGBA8 image laid out as a 16x16 grid of
// equally sized glyph slots. Slot n occupies column n%16 of image row n/16,
// counting rows from the top of the image; in texture space the rows are
// reversed (v = 0 is the image's bottom edge).
type Atlas struct {
	img        *image.NRGBA
	slotWidth  int
	slotHeight int
}

// NewAtlas validates img and copies it into an Atlas.
// The image width and height must both be positive multiples of 16.
func NewAtlas(img image.Image) (*Atlas, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil atlas image", ErrResourceLoad)
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || w%AtlasColumns != 0 || h%AtlasRows != 0 {
		return nil, fmt.Errorf("%w: atlas is %dx%d, want a multiple of %dx%d",
			ErrResourceLoad, w, h, AtlasColumns, AtlasRows)
	}

	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) || nrgba.Stride != w*4 {
		nrgba = image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(nrgba, nrgba.Rect, img, b.Min, draw.Src)
	} else {
		nrgba = &image.NRGBA{
			Pix:    append([]uint8(nil), nrgba.Pix...),
			Stride: nrgba.Stride,
			Rect:   nrgba.Rect,
		}
	}

	return &Atlas{
		img:        nrgba,
		slotWidth:  w / AtlasColumns,
		slotHeight: h / AtlasRows,
	}, nil
}

// DecodeAtlas decodes an atlas image from r. PNG, JPEG, GIF, BMP, TIFF and
// WebP are supported.
func DecodeAtlas(r io.Reader) (*Atlas, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: decode atlas: %w", ErrResourceLoad, err)
	}
	a, err := NewAtlas(img)
	if err != nil {
		return nil, err
	}
	Logger().Debug("tileterm: atlas decoded", "format", format,
		"width", a.img.Rect.Dx(), "height", a.img.Rect.Dy())
	return a, nil
}

// LoadAtlas reads and decodes the atlas image at path.
func LoadAtlas(path string) (*Atlas, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResourceLoad, err)
	}
	a, err := DecodeAtlas(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// defaultAtlases memoizes generated atlases by slot size. Atlases are
// immutable, so renderers may share them.
var defaultAtlases = cache.New[[2]int, *Atlas](8)

// DefaultAtlas renders a code page 437 atlas from the built-in Go Mono font
// with slots of the given pixel size. Unused pixels are chroma-keyed.
// Atlases are generated once per slot size and shared.
func DefaultAtlas(slotWidth, slotHeight int) (*Atlas, error) {
	return defaultAtlases.GetOrCreate([2]int{slotWidth, slotHeight}, func() (*Atlas, error) {
		cfg := atlasgen.DefaultConfig()
		cfg.CellWidth = slotWidth
		cfg.CellHeight = slotHeight
		res, err := atlasgen.Generate(cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: generate atlas: %w", ErrResourceLoad, err)
		}
		Logger().Debug("tileterm: default atlas generated",
			"slot_width", slotWidth, "slot_height", slotHeight, "missing", len(res.Missing))
		return NewAtlas(res.Image)
	})
}

// Image returns the atlas pixels with row 0 at the top. The returned image
// must not be modified.
func (a *Atlas) Image() *image.NRGBA {
	return a.img
}

// Width returns the atlas width in pixels.
func (a *Atlas) Width() int { return a.img.Rect.Dx() }

// Height returns the atlas height in pixels.
func (a *Atlas) Height() int { return a.img.Rect.Dy() }

// SlotSize returns the pixel size of one glyph slot.
func (a *Atlas) SlotSize() (width, height int) {
	return a.slotWidth, a.slotHeight
}

// ReversedPix returns the atlas pixels as tightly packed RGBA8 rows ordered
// bottom-to-top. Uploading these rows as a texture places v = 0 at the
// image's visual bottom, which is the convention AtlasCoords relies on.
func (a *Atlas) ReversedPix() []byte {
	w, h := a.Width(), a.Height()
	rowLen := w * 4
	out := make([]byte, rowLen*h)
	for y := 0; y < h; y++ {
		src := a.img.Pix[y*a.img.Stride : y*a.img.Stride+rowLen]
		copy(out[(h-1-y)*rowLen:], src)
	}
	return out
}

// Texel returns the stored channels of the pixel nearest to texture
// coordinates (u, v). Coordinates outside [0, 1] are clamped to the edge.
func (a *Atlas) Texel(u, v float64) (r, g, b, alpha uint8) {
	w, h := a.Width(), a.Height()
	fx, fy := TexToPixel(u, v, w, h)
	x := clampInt(int(fx), 0, w-1)
	y := clampInt(int(fy), 0, h-1)
	i := y*a.img.Stride + x*4
	p := a.img.Pix[i : i+4 : i+4]
	return p[0], p[1], p[2], p[3]
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
