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
	"image"

	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pdfpaint/graphics/color"
	"seehuhn.de/go/pdfpaint/graphics/shading"
	"seehuhn.de/go/pdfpaint/graphics/shapes"
)

// Type2 represents a shading pattern (pattern type 2).
//
// See section 8.7.4 (Type2 patterns) of ISO 32000-2:2020.
type Type2 struct {
	// Shading is the shading which gives the pattern colors.  If this is
	// nil, the pattern paints nothing.
	Shading shading.Shading

	// Matrix maps pattern space to the default coordinate space of the
	// pattern's parent content stream.
	Matrix matrix.Matrix
}

// PatternType returns 2 for shading patterns.
// This implements the [Pattern] interface.
func (p *Type2) PatternType() int {
	return 2
}

// PaintType returns 1 to indicate that shading patterns are colored.
// This implements the [Pattern] interface.
func (p *Type2) PaintType() int {
	return 1
}

// Source implements the [shapes.Paint] interface.
func (p *Type2) Source(env *shapes.Env) image.Image {
	if p.Shading == nil {
		return nil
	}
	m := p.Matrix
	if m == (matrix.Matrix{}) {
		m = matrix.Identity
	}
	return p.Shading.Source(m.Mul(env.Base), env.Bounds)
}

// Fallback returns black.
// This implements the [shapes.Paint] interface.
func (p *Type2) Fallback() color.RGB {
	return color.RGB{}
}
