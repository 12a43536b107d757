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
	"fmt"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pdfpaint"
	"seehuhn.de/go/pdfpaint/function"
	"seehuhn.de/go/pdfpaint/graphics/color"
)

// Extract reads a shading dictionary or stream.
//
// For shading types other than 2 and 3, the returned error wraps
// [ErrUnsupported].  If spaces is nil, a new color space parser is used.
func Extract(r pdfpaint.Getter, obj pdfpaint.Object, spaces *color.Parser) (Shading, error) {
	obj, err := pdfpaint.Resolve(r, obj)
	if err != nil {
		return nil, err
	} else if obj == nil {
		return nil, &pdfpaint.MalformedFileError{
			Err: errors.New("missing shading object"),
		}
	}

	var dict pdfpaint.Dict
	switch obj := obj.(type) {
	case pdfpaint.Dict:
		dict = obj
	case *pdfpaint.Stream:
		dict = obj.Dict
	default:
		return nil, &pdfpaint.MalformedFileError{
			Err: errors.New("shading must be a dictionary or stream"),
		}
	}

	st, ok := dict["ShadingType"]
	if !ok {
		return nil, &pdfpaint.MalformedFileError{
			Err: errors.New("missing /ShadingType entry"),
		}
	}
	stNum, err := pdfpaint.GetInteger(r, st)
	if err != nil {
		return nil, err
	}
	switch stNum {
	case 2, 3:
		// pass
	case 1, 4, 5, 6, 7:
		return nil, fmt.Errorf("shading type %d: %w", stNum, ErrUnsupported)
	default:
		return nil, &pdfpaint.MalformedFileError{
			Err: fmt.Errorf("unknown shading type %d", stNum),
		}
	}

	if spaces == nil {
		spaces = color.NewParser(r)
	}
	c, err := readCommon(r, dict, spaces)
	if err != nil {
		return nil, err
	}

	coords, err := pdfpaint.GetFloatArray(r, dict["Coords"])
	if err != nil {
		return nil, err
	}

	if stNum == 2 {
		if len(coords) != 4 {
			return nil, &pdfpaint.MalformedFileError{
				Err: fmt.Errorf("axial shading needs 4 coordinates, got %d", len(coords)),
			}
		}
		return &Type2{
			ColorSpace:  c.space,
			P0:          vec.Vec2{X: coords[0], Y: coords[1]},
			P1:          vec.Vec2{X: coords[2], Y: coords[3]},
			F:           c.f,
			TMin:        c.tMin,
			TMax:        c.tMax,
			ExtendStart: c.extendStart,
			ExtendEnd:   c.extendEnd,
			Background:  c.background,
			BBox:        c.bbox,
		}, nil
	}

	if len(coords) != 6 {
		return nil, &pdfpaint.MalformedFileError{
			Err: fmt.Errorf("radial shading needs 6 coordinates, got %d", len(coords)),
		}
	}
	if coords[2] < 0 || coords[5] < 0 {
		return nil, &pdfpaint.MalformedFileError{
			Err: fmt.Errorf("invalid radius in %v", coords),
		}
	}
	return &Type3{
		ColorSpace:  c.space,
		Center1:     vec.Vec2{X: coords[0], Y: coords[1]},
		R1:          coords[2],
		Center2:     vec.Vec2{X: coords[3], Y: coords[4]},
		R2:          coords[5],
		F:           c.f,
		TMin:        c.tMin,
		TMax:        c.tMax,
		ExtendStart: c.extendStart,
		ExtendEnd:   c.extendEnd,
		Background:  c.background,
		BBox:        c.bbox,
	}, nil
}

// common holds the entries shared by axial and radial shadings.
type common struct {
	space       color.Space
	f           function.Func
	tMin, tMax  float64
	extendStart bool
	extendEnd   bool
	background  []float64
	bbox        *rect.Rect
}

func readCommon(r pdfpaint.Getter, dict pdfpaint.Dict, spaces *color.Parser) (*common, error) {
	res := &common{tMin: 0, tMax: 1}

	csObj, ok := dict["ColorSpace"]
	if !ok {
		return nil, &pdfpaint.MalformedFileError{
			Err: errors.New("missing /ColorSpace entry"),
		}
	}
	cs, err := spaces.Parse(csObj)
	if err != nil {
		return nil, pdfpaint.Wrap(err, "ColorSpace")
	}
	if cs.Family() == color.FamilyPattern {
		return nil, &pdfpaint.MalformedFileError{
			Err: errors.New("invalid shading color space /Pattern"),
		}
	}
	res.space = cs

	fnObj, ok := dict["Function"]
	if !ok {
		return nil, &pdfpaint.MalformedFileError{
			Err: errors.New("missing /Function entry"),
		}
	}
	f, err := function.Extract(r, fnObj)
	if err != nil {
		return nil, pdfpaint.Wrap(err, "Function")
	}
	if nIn, _ := f.Shape(); nIn != 1 {
		return nil, &pdfpaint.MalformedFileError{
			Err: fmt.Errorf("shading function has %d inputs, expected 1", nIn),
		}
	}
	res.f = f

	domain, err := pdfpaint.GetFloatArray(r, dict["Domain"])
	if err != nil {
		return nil, err
	}
	if len(domain) == 2 {
		res.tMin, res.tMax = domain[0], domain[1]
	}

	ext, err := pdfpaint.GetArray(r, dict["Extend"])
	if err != nil {
		return nil, err
	}
	if len(ext) == 2 {
		a, _ := pdfpaint.GetBool(r, ext[0])
		b, _ := pdfpaint.GetBool(r, ext[1])
		res.extendStart, res.extendEnd = bool(a), bool(b)
	}

	bg, err := pdfpaint.GetFloatArray(r, dict["Background"])
	if err != nil {
		return nil, err
	}
	if len(bg) == cs.Channels() {
		res.background = bg
	}

	llx, lly, urx, ury, ok, err := pdfpaint.GetRectangle(r, dict["BBox"])
	if err != nil {
		return nil, err
	}
	if ok {
		res.bbox = &rect.Rect{LLx: llx, LLy: lly, URx: urx, URy: ury}
	}

	return res, nil
}
