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
	"image"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pdfpaint/function"
	"seehuhn.de/go/pdfpaint/graphics/color"
)

// Type2 represents a type 2 (axial) shading.
type Type2 struct {
	ColorSpace color.Space

	// P0 and P1 are the start and end points of the axis, in shading
	// space.
	P0, P1 vec.Vec2

	// F is a 1->n function, where n is the number of colour components of
	// the ColorSpace.
	F function.Func

	TMin, TMax  float64
	ExtendStart bool
	ExtendEnd   bool
	Background  []float64
	BBox        *rect.Rect
}

// ShadingType implements the [Shading] interface.
func (s *Type2) ShadingType() int {
	return 2
}

// Source implements the [Shading] interface.
func (s *Type2) Source(m matrix.Matrix, bounds image.Rectangle) image.Image {
	im := newSource(m, bounds, s.BBox)
	if im == nil {
		return nil
	}
	im.lut = newLUT(s.ColorSpace, s.F, s.TMin, s.TMax)
	im.bg = background(s.ColorSpace, s.Background)

	d := s.P1.Sub(s.P0)
	dd := d.X*d.X + d.Y*d.Y
	im.param = func(p vec.Vec2) (float64, bool) {
		if dd == 0 {
			return 0, false
		}
		q := p.Sub(s.P0)
		t := (q.X*d.X + q.Y*d.Y) / dd
		return extend(t, s.ExtendStart, s.ExtendEnd)
	}
	return im
}
