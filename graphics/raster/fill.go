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

	"seehuhn.de/go/geom/matrix"
)

// Fill paints the inside of the path.
func Fill(dst *image.RGBA, p *Path, m matrix.Matrix, rule Rule, s *Style) {
	cov := Coverage(p, m, rule, MaskBounds(s.Clip, dst.Rect))
	if cov == nil {
		return
	}
	paintMask(dst, cov, s)
}

// Stroke paints the outline of the path.
func Stroke(dst *image.RGBA, p *Path, m matrix.Matrix, stroke *StrokeStyle, s *Style) {
	outline := stroke.Outline(p, m)
	if outline.IsEmpty() {
		return
	}
	cov := Coverage(outline, matrix.Identity, NonZero, MaskBounds(s.Clip, dst.Rect))
	if cov == nil {
		return
	}
	paintMask(dst, cov, s)
}

// Hairline paints the path as a line of width one device pixel.
// This is used for shapes which are too thin to be filled.
func Hairline(dst *image.RGBA, p *Path, m matrix.Matrix, s *Style) {
	Stroke(dst, p, m, &StrokeStyle{Cap: SquareCap}, s)
}
