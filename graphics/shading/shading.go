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

package shading

import (
	"errors"
	"image"
	stdcolor "image/color"
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pdfpaint/function"
	"seehuhn.de/go/pdfpaint/graphics/color"
	"seehuhn.de/go/pdfpaint/graphics/raster"
)

// Shading represents a PDF shading dictionary.
type Shading interface {
	ShadingType() int

	// Source returns the colors of the shading.  The matrix m maps
	// shading space to device space.  The returned image has the given
	// bounds and is transparent where the shading paints nothing.
	Source(m matrix.Matrix, bounds image.Rectangle) image.Image
}

// ErrUnsupported is returned by [Extract] for shading types which cannot
// be painted.
var ErrUnsupported = errors.New("unsupported shading type")

// lutSize is the number of samples in the color lookup table.
const lutSize = 256

// lut holds the colors of a shading for equally spaced values of the
// parameter t.
type lut [lutSize]stdcolor.RGBA

func newLUT(cs color.Space, f function.Func, tMin, tMax float64) *lut {
	res := &lut{}
	n := cs.Channels()
	comps := make([]float64, n)
	for i := range res {
		t := tMin + (tMax-tMin)*float64(i)/(lutSize-1)
		copy(comps, color.Default(cs))
		out := f.Apply(t)
		copy(comps, out)
		res[i] = toRGBA(color.Resolve(cs, comps))
	}
	return res
}

// at returns the color for s in the range 0 to 1.
func (l *lut) at(s float64) stdcolor.RGBA {
	i := int(math.Round(s * (lutSize - 1)))
	return l[min(max(i, 0), lutSize-1)]
}

func toRGBA(c color.RGB) stdcolor.RGBA {
	return stdcolor.RGBAModel.Convert(c).(stdcolor.RGBA)
}

// background returns the background color of a shading, or a transparent
// color if no background is set.
func background(cs color.Space, bg []float64) stdcolor.RGBA {
	if len(bg) != cs.Channels() {
		return stdcolor.RGBA{}
	}
	return toRGBA(color.Resolve(cs, bg))
}

// sourceImage maps device pixels to shading colors.
type sourceImage struct {
	bounds image.Rectangle
	inv    matrix.Matrix
	bbox   *rect.Rect

	// param returns the position within the color table, in the range
	// 0 to 1.  The second return value is false if the shading does not
	// cover the point.
	param func(p vec.Vec2) (float64, bool)
	lut   *lut
	bg    stdcolor.RGBA
}

func newSource(m matrix.Matrix, bounds image.Rectangle, bbox *rect.Rect) *sourceImage {
	inv, ok := raster.Invert(m)
	if !ok {
		return nil
	}
	return &sourceImage{bounds: bounds, inv: inv, bbox: bbox}
}

func (im *sourceImage) ColorModel() stdcolor.Model {
	return stdcolor.RGBAModel
}

func (im *sourceImage) Bounds() image.Rectangle {
	return im.bounds
}

func (im *sourceImage) At(x, y int) stdcolor.Color {
	p := raster.Apply(im.inv, vec.Vec2{X: float64(x) + 0.5, Y: float64(y) + 0.5})
	if b := im.bbox; b != nil {
		if p.X < b.LLx || p.X > b.URx || p.Y < b.LLy || p.Y > b.URy {
			return stdcolor.RGBA{}
		}
	}
	s, ok := im.param(p)
	if !ok {
		return im.bg
	}
	return im.lut.at(s)
}

// extend applies the Extend flags to the parameter s.
func extend(s float64, start, end bool) (float64, bool) {
	switch {
	case s < 0:
		return 0, start
	case s > 1:
		return 1, end
	default:
		return s, true
	}
}
