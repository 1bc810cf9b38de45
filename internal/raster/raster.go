// Package raster rasterizes textured, shaded triangle lists into an RGBA8
// image on the CPU.
//
// It reproduces the fixed-function behaviour tileterm backends implement on
// the GPU: nearest-neighbour texture sampling, texel * shade, a magenta
// chroma key that forces alpha to zero, and source-alpha blending applied
// to all four channels.
package raster

import (
	"image"
	"math"

	"github.com/gogpu/tileterm"
	"github.com/gogpu/tileterm/internal/parallel"
)

// RGBA is a color with normalized float channels.
type RGBA struct {
	R, G, B, A float64
}

// Sampler returns the texel nearest to texture coordinates (u, v).
type Sampler interface {
	Texel(u, v float64) (r, g, b, a uint8)
}

// point is a vertex transformed into pixel space.
type point struct {
	x, y  float64
	u, v  float64
	shade [4]float32
}

// Rasterizer draws frames into a fixed-size target.
type Rasterizer struct {
	width  int
	height int
	dst    *image.NRGBA
}

// NewRasterizer creates a rasterizer drawing into dst.
func NewRasterizer(dst *image.NRGBA) *Rasterizer {
	return &Rasterizer{
		width:  dst.Rect.Dx(),
		height: dst.Rect.Dy(),
		dst:    dst,
	}
}

// Target returns the image the rasterizer draws into.
func (r *Rasterizer) Target() *image.NRGBA {
	return r.dst
}

// Clear fills the whole target with c.
func (r *Rasterizer) Clear(c [4]float32) {
	px := [4]uint8{
		toByte(float64(c[0])), toByte(float64(c[1])),
		toByte(float64(c[2])), toByte(float64(c[3])),
	}
	pix := r.dst.Pix
	for y := 0; y < r.height; y++ {
		row := pix[y*r.dst.Stride : y*r.dst.Stride+r.width*4]
		for i := 0; i < len(row); i += 4 {
			copy(row[i:i+4], px[:])
		}
	}
}

// DrawFrame clears the target to f.ClearColor and draws every triangle of
// f in index order. It returns the number of fragments written.
func (r *Rasterizer) DrawFrame(f *tileterm.Frame, tex Sampler) int {
	r.Clear(f.ClearColor)
	pts := r.projectAll(f.Vertices)
	return r.drawRows(pts, f.Indices, tex, 0, r.height)
}

// DrawFrameParallel is DrawFrame with the target split into horizontal
// bands drawn on pool. Every band walks the triangles in index order, so the
// result matches DrawFrame exactly.
func (r *Rasterizer) DrawFrameParallel(f *tileterm.Frame, tex Sampler, pool *parallel.Pool) int {
	r.Clear(f.ClearColor)
	pts := r.projectAll(f.Vertices)

	bands := min(pool.Workers()*2, r.height)
	if bands <= 1 {
		return r.drawRows(pts, f.Indices, tex, 0, r.height)
	}
	counts := make([]int, bands)
	pool.Run(bands, func(i int) {
		y0 := i * r.height / bands
		y1 := (i + 1) * r.height / bands
		counts[i] = r.drawRows(pts, f.Indices, tex, y0, y1)
	})

	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}

func (r *Rasterizer) projectAll(vs []tileterm.Vertex) []point {
	pts := make([]point, len(vs))
	for i, v := range vs {
		pts[i] = r.project(v)
	}
	return pts
}

// drawRows draws the triangles clipped to target rows [y0, y1).
func (r *Rasterizer) drawRows(pts []point, indices []uint32, tex Sampler, y0, y1 int) int {
	n := 0
	for i := 0; i+2 < len(indices); i += 3 {
		n += r.triangle(pts[indices[i]], pts[indices[i+1]], pts[indices[i+2]], tex, y0, y1)
	}
	return n
}

func (r *Rasterizer) project(v tileterm.Vertex) point {
	x, y := tileterm.NDCToPixel(v.Position[0], v.Position[1], r.width, r.height)
	return point{x: x, y: y, u: v.TexCoords[0], v: v.TexCoords[1], shade: v.Shade}
}

// edge evaluates the edge function of a->b at p. Its sign tells which side
// of the edge p lies on.
func edge(ax, ay, bx, by, px, py float64) float64 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// ownsEdge implements the top-left fill rule: a pixel center exactly on an
// edge belongs to only one of the two triangles sharing that edge.
func ownsEdge(ax, ay, bx, by float64) bool {
	dy := by - ay
	return dy > 0 || (dy == 0 && bx-ax < 0)
}

func inside(w float64, owns bool) bool {
	return w > 0 || (w == 0 && owns)
}

// triangle rasterizes the part of one triangle inside rows [y0, y1),
// sampling pixel centers.
func (r *Rasterizer) triangle(a, b, c point, tex Sampler, y0, y1 int) int {
	area := edge(a.x, a.y, b.x, b.y, c.x, c.y)
	if area == 0 {
		return 0
	}
	if area < 0 {
		b, c = c, b
		area = -area
	}

	minX := max(int(math.Floor(min(a.x, b.x, c.x))), 0)
	maxX := min(int(math.Ceil(max(a.x, b.x, c.x))), r.width-1)
	minY := max(int(math.Floor(min(a.y, b.y, c.y))), y0)
	maxY := min(int(math.Ceil(max(a.y, b.y, c.y))), y1-1)
	if minY > maxY {
		return 0
	}

	ownBC := ownsEdge(b.x, b.y, c.x, c.y)
	ownCA := ownsEdge(c.x, c.y, a.x, a.y)
	ownAB := ownsEdge(a.x, a.y, b.x, b.y)

	n := 0
	for py := minY; py <= maxY; py++ {
		cy := float64(py) + 0.5
		for px := minX; px <= maxX; px++ {
			cx := float64(px) + 0.5

			w0 := edge(b.x, b.y, c.x, c.y, cx, cy)
			w1 := edge(c.x, c.y, a.x, a.y, cx, cy)
			w2 := edge(a.x, a.y, b.x, b.y, cx, cy)
			if !inside(w0, ownBC) || !inside(w1, ownCA) || !inside(w2, ownAB) {
				continue
			}

			l0, l1, l2 := w0/area, w1/area, w2/area
			u := l0*a.u + l1*b.u + l2*c.u
			v := l0*a.v + l1*b.v + l2*c.v
			var shade [4]float64
			for k := range shade {
				shade[k] = l0*float64(a.shade[k]) + l1*float64(b.shade[k]) + l2*float64(c.shade[k])
			}

			src, ok := Shade(tex, u, v, shade)
			if !ok {
				continue
			}
			r.blend(px, py, src)
			n++
		}
	}
	return n
}

// Shade samples tex at (u, v) and multiplies the texel by shade. The
// second result is false when the texel is the chroma key, whose alpha is
// forced to zero and therefore leaves the destination unchanged.
func Shade(tex Sampler, u, v float64, shade [4]float64) (RGBA, bool) {
	tr, tg, tb, ta := tex.Texel(u, v)
	if tileterm.IsChromaKey(tr, tg, tb) {
		return RGBA{}, false
	}
	return RGBA{
		R: float64(tr) / 255 * shade[0],
		G: float64(tg) / 255 * shade[1],
		B: float64(tb) / 255 * shade[2],
		A: float64(ta) / 255 * shade[3],
	}, true
}

// Blend composites src over dst with source-alpha blending on every
// channel, alpha included: out = src*src.A + dst*(1-src.A).
func Blend(src, dst RGBA) RGBA {
	inv := 1 - src.A
	return RGBA{
		R: src.R*src.A + dst.R*inv,
		G: src.G*src.A + dst.G*inv,
		B: src.B*src.A + dst.B*inv,
		A: src.A*src.A + dst.A*inv,
	}
}

func (r *Rasterizer) blend(x, y int, src RGBA) {
	i := r.dst.PixOffset(x+r.dst.Rect.Min.X, y+r.dst.Rect.Min.Y)
	p := r.dst.Pix[i : i+4 : i+4]
	dst := RGBA{
		R: float64(p[0]) / 255,
		G: float64(p[1]) / 255,
		B: float64(p[2]) / 255,
		A: float64(p[3]) / 255,
	}
	out := Blend(src, dst)
	p[0] = toByte(out.R)
	p[1] = toByte(out.G)
	p[2] = toByte(out.B)
	p[3] = toByte(out.A)
}

func toByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}
