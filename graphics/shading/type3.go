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
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pdfpaint/function"
	"seehuhn.de/go/pdfpaint/graphics/color"
)

// Type3 represents a type 3 (radial) shading.
//
// The shading is painted by a family of circles, interpolating between the
// start circle (Center1, R1) and the end circle (Center2, R2).  Circles
// with larger parameter values are painted on top.
type Type3 struct {
	ColorSpace color.Space
	Center1    vec.Vec2
	R1         float64
	Center2    vec.Vec2
	R2         float64

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
func (s *Type3) ShadingType() int {
	return 3
}

// Source implements the [Shading] interface.
func (s *Type3) Source(m matrix.Matrix, bounds image.Rectangle) image.Image {
	im := newSource(m, bounds, s.BBox)
	if im == nil {
		return nil
	}
	im.lut = newLUT(s.ColorSpace, s.F, s.TMin, s.TMax)
	im.bg = background(s.ColorSpace, s.Background)
	im.param = s.param
	return im
}

// param finds the largest circle parameter such that p lies on the circle.
func (s *Type3) param(p vec.Vec2) (float64, bool) {
	dc := s.Center2.Sub(s.Center1)
	dr := s.R2 - s.R1
	pd := p.Sub(s.Center1)

	// |pd - t dc|^2 = (R1 + t dr)^2
	a := dc.X*dc.X + dc.Y*dc.Y - dr*dr
	b := pd.X*dc.X + pd.Y*dc.Y + s.R1*dr
	c := pd.X*pd.X + pd.Y*pd.Y - s.R1*s.R1

	var cand [2]float64
	n := 0
	if math.Abs(a) < 1e-9 {
		if b == 0 {
			return 0, false
		}
		cand[0] = c / (2 * b)
		n = 1
	} else {
		disc := b*b - a*c
		if disc < 0 {
			return 0, false
		}
		sq := math.Sqrt(disc)
		t1, t2 := (b+sq)/a, (b-sq)/a
		cand[0], cand[1] = max(t1, t2), min(t1, t2)
		n = 2
	}

	for _, t := range cand[:n] {
		if s.R1+t*dr < 0 {
			continue
		}
		if u, ok := extend(t, s.ExtendStart, s.ExtendEnd); ok {
			return u, true
		}
	}
	return 0, false
}
