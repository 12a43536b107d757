// seehuhn.de/go/pdfpaint - render PDF page content to raster images
// Copyright (C) 2025  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package pattern

import (
	"context"
	"image"
	stdcolor "image/color"
	"math"
	"sync"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pdfpaint/graphics/color"
	"seehuhn.de/go/pdfpaint/graphics/raster"
	"seehuhn.de/go/pdfpaint/graphics/shapes"
)

// Type1 represents a tiling pattern (pattern type 1).
//
// See section 8.7.3 (Tiling patterns) of ISO 32000-2:2020.
type Type1 struct {
	// TilingType is a code that controls adjustments to the spacing of tiles
	// relative to the device pixel grid.  All three tiling types are
	// painted with constant spacing.
	TilingType int

	// The pattern cell's bounding box.
	// The pattern cell is clipped to this rectangle before it is painted.
	BBox rect.Rect

	// XStep is the horizontal spacing between pattern cells.
	XStep float64

	// YStep is the vertical spacing between pattern cells.
	YStep float64

	// Matrix maps pattern space to the default coordinate space of the
	// pattern's parent content stream.
	Matrix matrix.Matrix

	// Color is true for colored tiling patterns (PaintType 1).
	Color bool

	// Build returns the program which paints one pattern cell.
	// It is called at most once, when the pattern is first used.
	Build func() *shapes.Program

	once sync.Once
	prog *shapes.Program

	mu    sync.Mutex
	cache *cell
}

// maxCellPixels limits the resolution of a rendered pattern cell.
const maxCellPixels = 1 << 22

// maxCopies limits the number of neighbouring cells, per direction, which
// are considered when a cell's bounding box is larger than the step size.
const maxCopies = 4

type cell struct {
	w, h int
	img  *image.RGBA
}

// PatternType returns 1 for tiling patterns.
// This implements the [Pattern] interface.
func (p *Type1) PatternType() int {
	return 1
}

// PaintType returns 1 for colored patterns and 2 for uncolored patterns.
// This implements the [Pattern] interface.
func (p *Type1) PaintType() int {
	if p.Color {
		return 1
	}
	return 2
}

// Program returns the program which paints the pattern cell.
// The result is nil if the cell cannot be built.
func (p *Type1) Program() *shapes.Program {
	p.once.Do(func() {
		if p.Build != nil {
			p.prog = p.Build()
		}
	})
	return p.prog
}

// Fallback returns the first color used in the pattern cell, or black if
// the cell sets no color.
// This implements the [shapes.Paint] interface.
func (p *Type1) Fallback() color.RGB {
	if c, ok := shapes.FirstColor(p.Program()); ok {
		return c
	}
	return color.RGB{}
}

// Source implements the [shapes.Paint] interface.
func (p *Type1) Source(env *shapes.Env) image.Image {
	return p.source(env, nil)
}

// Tint returns the paint for an uncolored tiling pattern used with the
// color c.  For colored patterns, the color is ignored.
func (p *Type1) Tint(c color.RGB) shapes.Paint {
	if p.Color {
		return p
	}
	return &tinted{pat: p, c: c}
}

type tinted struct {
	pat *Type1
	c   color.RGB
}

func (t *tinted) Source(env *shapes.Env) image.Image {
	return t.pat.source(env, &t.c)
}

func (t *tinted) Fallback() color.RGB {
	return t.c
}

func (p *Type1) source(env *shapes.Env, tint *color.RGB) image.Image {
	fallback := func() image.Image {
		c := p.Fallback()
		if tint != nil {
			c = *tint
		}
		return image.NewUniform(c)
	}

	xs, ys := math.Abs(p.XStep), math.Abs(p.YStep)
	m := p.Matrix
	if m == (matrix.Matrix{}) {
		m = matrix.Identity
	}
	m = m.Mul(env.Base)
	inv, ok := raster.Invert(m)
	prog := p.Program()
	if !ok || xs == 0 || ys == 0 || prog == nil {
		return fallback()
	}

	// pixels per pattern space unit, along the two axes
	sx := math.Hypot(m[0], m[1])
	sy := math.Hypot(m[2], m[3])
	w := max(int(math.Ceil(xs*sx)), 1)
	h := max(int(math.Ceil(ys*sy)), 1)
	if area := float64(w) * float64(h); area > maxCellPixels {
		f := math.Sqrt(maxCellPixels / area)
		w = max(int(float64(w)*f), 1)
		h = max(int(float64(h)*f), 1)
	}

	img := p.render(env, prog, w, h)
	res := &tileImage{
		bounds: env.Bounds,
		inv:    inv,
		cell:   img,
		sx:     float64(w) / xs,
		sy:     float64(h) / ys,
		xs:     xs,
		ys:     ys,
	}
	if tint != nil {
		c := stdcolor.RGBAModel.Convert(*tint).(stdcolor.RGBA)
		res.tint = &c
	}
	return res
}

// render paints the pattern cell at the given resolution.  Parts of
// neighbouring cells which extend into this cell are included.
func (p *Type1) render(env *shapes.Env, prog *shapes.Program, w, h int) *image.RGBA {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c := p.cache; c != nil && c.w == w && c.h == h {
		return c.img
	}

	xs, ys := math.Abs(p.XStep), math.Abs(p.YStep)
	scale := matrix.Scale(float64(w)/xs, float64(h)/ys)
	surf := raster.NewSurface(w, h)
	bbox := raster.Rect(p.BBox.LLx, p.BBox.LLy, p.BBox.URx-p.BBox.LLx, p.BBox.URy-p.BBox.LLy)

	iMin, iMax := copies(p.BBox.LLx, p.BBox.URx, xs)
	jMin, jMax := copies(p.BBox.LLy, p.BBox.URy, ys)
	ctx := env.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	stopped := false
	for i := iMin; i <= iMax; i++ {
		for j := jMin; j <= jMax; j++ {
			base := matrix.Translate(float64(i)*xs, float64(j)*ys).Mul(scale)
			clip := raster.Coverage(bbox, base, raster.NonZero, surf.Bounds())
			if clip == nil {
				continue
			}
			res := shapes.Replay(ctx, prog, surf, &shapes.Options{
				Base:   base,
				Clip:   clip,
				Images: env.Images,
				Config: env.Config,
				Policy: env.Policy,
			})
			stopped = stopped || res.Stopped
		}
	}

	// An interrupted cell must not be reused by later passes.
	if !stopped {
		p.cache = &cell{w: w, h: h, img: surf.Img}
	}
	return surf.Img
}

// copies returns the range of cell offsets k such that the interval
// [lo+k*step, hi+k*step] overlaps [0, step].
func copies(lo, hi, step float64) (int, int) {
	kMin := int(math.Floor(-hi/step)) + 1
	kMax := int(math.Ceil((step-lo)/step)) - 1
	kMin = max(kMin, -maxCopies)
	kMax = min(kMax, maxCopies)
	return kMin, kMax
}

// tileImage repeats a rendered pattern cell over the device plane.
type tileImage struct {
	bounds image.Rectangle
	inv    matrix.Matrix
	cell   *image.RGBA
	sx, sy float64
	xs, ys float64
	tint   *stdcolor.RGBA
}

func (im *tileImage) ColorModel() stdcolor.Model {
	return stdcolor.RGBAModel
}

func (im *tileImage) Bounds() image.Rectangle {
	return im.bounds
}

func (im *tileImage) At(x, y int) stdcolor.Color {
	q := raster.Apply(im.inv, vec.Vec2{X: float64(x) + 0.5, Y: float64(y) + 0.5})
	u := q.X - im.xs*math.Floor(q.X/im.xs)
	v := q.Y - im.ys*math.Floor(q.Y/im.ys)
	b := im.cell.Rect
	px := min(max(int(u*im.sx), 0), b.Dx()-1)
	py := min(max(int(v*im.sy), 0), b.Dy()-1)
	c := im.cell.RGBAAt(px, py)
	if t := im.tint; t != nil {
		a := uint32(c.A)
		return stdcolor.RGBA{
			R: uint8(uint32(t.R) * a / 255),
			G: uint8(uint32(t.G) * a / 255),
			B: uint8(uint32(t.B) * a / 255),
			A: c.A,
		}
	}
	return c
}
