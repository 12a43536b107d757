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

package raster

import (
	"image"
	"image/draw"

	"golang.org/x/image/vector"
	"seehuhn.de/go/geom/matrix"
)

// Rule selects how the inside of a path is determined.
type Rule uint8

// These are the fill rules supported by PDF.
const (
	NonZero Rule = iota
	EvenOdd
)

// Coverage computes the anti-aliased coverage of the path.  The result is
// restricted to the rectangle r, and is nil if the path does not touch r.
func Coverage(p *Path, m matrix.Matrix, rule Rule, r image.Rectangle) *image.Alpha {
	polys := p.flatten(m)
	if len(polys) == 0 {
		return nil
	}

	b := polyBounds(polys).Intersect(r)
	if b.Empty() {
		return nil
	}

	if rule == NonZero || len(polys) == 1 {
		return rasterize(polys, b)
	}

	// For the even-odd rule, the subpaths are rasterized one at a time and
	// their coverage is combined by parity.
	res := image.NewAlpha(b)
	for _, poly := range polys {
		layer := rasterize([]polyline{poly}, b)
		for i, a := range layer.Pix {
			if a == 0 {
				continue
			}
			c := uint32(res.Pix[i])
			res.Pix[i] = uint8((c*255 + uint32(a)*255 - 2*c*uint32(a) + 127) / 255)
		}
	}
	return res
}

func rasterize(polys []polyline, b image.Rectangle) *image.Alpha {
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	dx, dy := float32(b.Min.X), float32(b.Min.Y)
	for _, poly := range polys {
		if len(poly.pts) < 2 {
			continue
		}
		z.MoveTo(float32(poly.pts[0].X)-dx, float32(poly.pts[0].Y)-dy)
		for _, pt := range poly.pts[1:] {
			z.LineTo(float32(pt.X)-dx, float32(pt.Y)-dy)
		}
		z.ClosePath()
	}
	res := image.NewAlpha(b)
	z.Draw(res, res.Rect, image.Opaque, image.Point{})
	return res
}

// polyBounds returns the pixel rectangle covering all points.
func polyBounds(polys []polyline) image.Rectangle {
	var r image.Rectangle
	first := true
	for _, poly := range polys {
		for _, pt := range poly.pts {
			q := image.Rectangle{
				Min: image.Point{X: floor(pt.X), Y: floor(pt.Y)},
				Max: image.Point{X: floor(pt.X) + 1, Y: floor(pt.Y) + 1},
			}
			if first {
				r = q
				first = false
			} else {
				r = r.Union(q)
			}
		}
	}
	return r
}

// Intersect returns the intersection of two clip masks.
// A nil mask is unconstrained; the result is nil only if both are nil.
func Intersect(a, b *image.Alpha) *image.Alpha {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	r := a.Rect.Intersect(b.Rect)
	res := image.NewAlpha(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			ca := uint32(a.Pix[a.PixOffset(x, y)])
			cb := uint32(b.Pix[b.PixOffset(x, y)])
			res.Pix[res.PixOffset(x, y)] = uint8((ca*cb + 127) / 255)
		}
	}
	return res
}

// RectMask returns a fully opaque mask covering r.
func RectMask(r image.Rectangle) *image.Alpha {
	res := image.NewAlpha(r)
	draw.Draw(res, r, image.Opaque, image.Point{}, draw.Src)
	return res
}

// MaskBounds returns the pixels where painting is possible, given the
// clip mask and the surface bounds.
func MaskBounds(clip *image.Alpha, surface image.Rectangle) image.Rectangle {
	if clip == nil {
		return surface
	}
	return clip.Rect.Intersect(surface)
}

// clipAt returns the clip coverage at (x, y), in the range 0 to 255.
func clipAt(clip *image.Alpha, x, y int) uint32 {
	if clip == nil {
		return 255
	}
	if !(image.Point{X: x, Y: y}.In(clip.Rect)) {
		return 0
	}
	return uint32(clip.Pix[clip.PixOffset(x, y)])
}
