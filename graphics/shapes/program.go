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
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/postscript/cid"

	"seehuhn.de/go/pdfpaint"
	"seehuhn.de/go/pdfpaint/graphics/image"
	"seehuhn.de/go/pdfpaint/graphics/raster"
)

// Op is a paint operation.
//
// The set of operations is fixed; these are the types defined in this
// package.
type Op interface {
	isOp()
}

// SetGeometry makes Path the current geometry, which is used by the
// following [Fill], [Draw] and [ClipPush] operations.
type SetGeometry struct {
	Path *raster.Path
}

// Fill paints the inside of the current geometry with the current paint.
type Fill struct {
	Rule raster.Rule
}

// Draw strokes the current geometry, using the current stroke style.
type Draw struct{}

// ClipPush intersects the clip region with the current geometry.
type ClipPush struct {
	Rule raster.Rule
}

// ClipReset restores the clip region which was in effect when the
// replay of the program started.
type ClipReset struct{}

// SetTransform sets the current transformation to M, relative to the
// base transformation of the program.
type SetTransform struct {
	M matrix.Matrix
}

// SetPaint sets the paint used by the following operations.
type SetPaint struct {
	Paint Paint
}

// SetComposite sets the blend mode and constant opacity.
type SetComposite struct {
	Mode  raster.BlendMode
	Alpha float64
}

// SetStroke sets the stroke style.
type SetStroke struct {
	Style raster.StrokeStyle
}

// DrawImage paints an image XObject at the unit square, mapped through
// the current transformation.
type DrawImage struct {
	Ref pdfpaint.Reference

	// Interpolate requests smooth image scaling.
	Interpolate bool
}

// Glyph is a positioned glyph of a text run.
type Glyph struct {
	CID cid.CID

	// Text is the character represented by the glyph, if known.
	Text rune

	// X and Y give the position of the glyph origin, in text space.
	X, Y float64
}

// TextRun paints a sequence of glyphs with the current paint.
// M maps text space (where the font size is 1) to user space.
type TextRun struct {
	Font   Font
	Glyphs []Glyph
	M      matrix.Matrix
}

// Nested replays a program inline, sharing the current transformation,
// clip region and paint.
type Nested struct {
	Program *Program
}

// FormGroup paints a transparency group.
//
// Isolated groups are painted into a separate surface, which is then
// composited onto the page using the current blend mode and opacity.
type FormGroup struct {
	Program *Program

	// BBox is the group bounding box, in form space.
	BBox rect.Rect

	// M maps form space to user space.
	M matrix.Matrix

	Isolated bool
	Knockout bool
}

func (SetGeometry) isOp()  {}
func (Fill) isOp()         {}
func (Draw) isOp()         {}
func (ClipPush) isOp()     {}
func (ClipReset) isOp()    {}
func (SetTransform) isOp() {}
func (SetPaint) isOp()     {}
func (SetComposite) isOp() {}
func (SetStroke) isOp()    {}
func (DrawImage) isOp()    {}
func (TextRun) isOp()      {}
func (Nested) isOp()       {}
func (FormGroup) isOp()    {}

// Program is an ordered list of paint operations.
//
// Programs are built by appending operations, and must not be modified
// while they are being replayed.  A program may be replayed concurrently
// by several goroutines.
type Program struct {
	ops    []Op
	images []pdfpaint.Reference
	seen   map[pdfpaint.Reference]bool
}

// Append adds operations at the end of the program.
func (p *Program) Append(ops ...Op) *Program {
	for _, op := range ops {
		if img, ok := op.(DrawImage); ok {
			p.addImage(img.Ref)
		}
		p.ops = append(p.ops, op)
	}
	return p
}

func (p *Program) addImage(ref pdfpaint.Reference) {
	if p.seen == nil {
		p.seen = make(map[pdfpaint.Reference]bool)
	}
	if !p.seen[ref] {
		p.seen[ref] = true
		p.images = append(p.images, ref)
	}
}

// Len returns the number of operations in the program.
func (p *Program) Len() int {
	return len(p.ops)
}

// Ops returns the operations of the program.
// The returned slice must not be modified.
func (p *Program) Ops() []Op {
	return p.ops
}

// Images returns the images painted by the program, including the images
// of nested programs, each listed once.
func (p *Program) Images() []pdfpaint.Reference {
	res := make([]pdfpaint.Reference, 0, len(p.images))
	seen := make(map[pdfpaint.Reference]bool)
	var walk func(q *Program)
	walk = func(q *Program) {
		if q == nil {
			return
		}
		for _, ref := range q.images {
			if !seen[ref] {
				seen[ref] = true
				res = append(res, ref)
			}
		}
		for _, op := range q.ops {
			switch op := op.(type) {
			case Nested:
				walk(op.Program)
			case FormGroup:
				walk(op.Program)
			}
		}
	}
	walk(p)
	return res
}

// policy returns the image variant requested by the operation.
func (op DrawImage) policy(def image.Policy) image.Policy {
	if op.Interpolate && def == image.Native {
		return image.Smooth
	}
	return def
}
