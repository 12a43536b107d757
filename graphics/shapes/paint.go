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

package shapes

import (
	"context"
	stdimage "image"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pdfpaint"
	"seehuhn.de/go/pdfpaint/config"
	"seehuhn.de/go/pdfpaint/graphics/color"
	"seehuhn.de/go/pdfpaint/graphics/image"
	"seehuhn.de/go/pdfpaint/graphics/raster"
)

// Paint is a source of color for fill, stroke and text operations.
type Paint interface {
	// Source returns the color at every device pixel.  A nil result means
	// that nothing is painted.
	Source(env *Env) stdimage.Image

	// Fallback returns a single color which approximates the paint.
	Fallback() color.RGB
}

// Env describes the context in which a paint is used.
type Env struct {
	Ctx context.Context

	// Base maps the pattern space of the current program to device space.
	Base matrix.Matrix

	// Bounds is the pixel rectangle of the target surface.
	Bounds stdimage.Rectangle

	Images ImageSource
	Config *config.Config
	Policy image.Policy
}

// SolidPaint paints a single color.
type SolidPaint struct {
	Color color.RGB
}

// Solid returns the paint for the given color.
func Solid(space color.Space, comps []float64) SolidPaint {
	return SolidPaint{Color: color.Resolve(space, comps)}
}

// Source implements the [Paint] interface.
func (p SolidPaint) Source(*Env) stdimage.Image {
	return stdimage.NewUniform(p.Color)
}

// Fallback implements the [Paint] interface.
func (p SolidPaint) Fallback() color.RGB {
	return p.Color
}

// FirstColor returns the first solid color set by the program or one of
// its nested programs.
func FirstColor(prog *Program) (color.RGB, bool) {
	if prog == nil {
		return color.RGB{}, false
	}
	for _, op := range prog.ops {
		switch op := op.(type) {
		case SetPaint:
			if p, ok := op.Paint.(SolidPaint); ok {
				return p.Color, true
			}
		case Nested:
			if c, ok := FirstColor(op.Program); ok {
				return c, true
			}
		case FormGroup:
			if c, ok := FirstColor(op.Program); ok {
				return c, true
			}
		}
	}
	return color.RGB{}, false
}

// ImageSource supplies decoded images.  This is implemented by
// [*image.Pipeline].
type ImageSource interface {
	Get(ctx context.Context, ref pdfpaint.Reference, policy image.Policy, target stdimage.Point) (*image.Bitmap, bool)
}

// Font paints the glyphs of text runs.
type Font interface {
	// Bounds returns the device space bounding box of the glyphs, where m
	// maps text space to device space.
	Bounds(glyphs []Glyph, m matrix.Matrix) rect.Rect

	// Draw paints the glyphs onto dst.
	Draw(dst *stdimage.RGBA, glyphs []Glyph, m matrix.Matrix, s *raster.Style)
}
