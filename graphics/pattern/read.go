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
	"errors"
	"fmt"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pdfpaint"
	"seehuhn.de/go/pdfpaint/graphics/color"
	"seehuhn.de/go/pdfpaint/graphics/shading"
	"seehuhn.de/go/pdfpaint/graphics/shapes"
)

// CellBuilder converts the content stream of a tiling pattern into a
// program.  Content stream parsing is not part of this module, so the
// caller supplies this function.
type CellBuilder func(stm *pdfpaint.Stream) *shapes.Program

// Extract reads a pattern dictionary or stream.
//
// Shading patterns with an unsupported shading type are returned with a
// nil Shading, so that they paint nothing.  If spaces is nil, a new color
// space parser is used.
func Extract(r pdfpaint.Getter, obj pdfpaint.Object, spaces *color.Parser, build CellBuilder) (Pattern, error) {
	resolved, err := pdfpaint.Resolve(r, obj)
	if err != nil {
		return nil, err
	} else if resolved == nil {
		return nil, &pdfpaint.MalformedFileError{
			Err: errors.New("missing pattern object"),
		}
	}

	var dict pdfpaint.Dict
	switch resolved := resolved.(type) {
	case pdfpaint.Dict:
		dict = resolved
	case *pdfpaint.Stream:
		dict = resolved.Dict
	default:
		return nil, &pdfpaint.MalformedFileError{
			Err: errors.New("pattern must be dictionary or stream"),
		}
	}

	patternType, err := pdfpaint.GetInteger(r, dict["PatternType"])
	if err != nil {
		return nil, err
	}

	switch patternType {
	case 1:
		stream, ok := resolved.(*pdfpaint.Stream)
		if !ok {
			return nil, &pdfpaint.MalformedFileError{
				Err: errors.New("type 1 pattern must be a stream"),
			}
		}
		return extractType1(r, stream, build)
	case 2:
		return extractType2(r, dict, spaces)
	default:
		return nil, &pdfpaint.MalformedFileError{
			Err: fmt.Errorf("unsupported pattern type %d", patternType),
		}
	}
}

func extractType2(r pdfpaint.Getter, dict pdfpaint.Dict, spaces *color.Parser) (*Type2, error) {
	shadingObj := dict["Shading"]
	if shadingObj == nil {
		return nil, &pdfpaint.MalformedFileError{
			Err: errors.New("missing Shading entry in type 2 pattern"),
		}
	}

	pat := &Type2{}
	m, err := getMatrix(r, dict["Matrix"])
	if err != nil {
		return nil, err
	}
	pat.Matrix = m

	sh, err := shading.Extract(r, shadingObj, spaces)
	if errors.Is(err, shading.ErrUnsupported) {
		pdfpaint.Logger().Info("shading pattern not painted", "err", err)
		return pat, nil
	} else if err != nil {
		return nil, err
	}
	pat.Shading = sh

	return pat, nil
}

func extractType1(r pdfpaint.Getter, stream *pdfpaint.Stream, build CellBuilder) (*Type1, error) {
	dict := stream.Dict

	paintType, err := pdfpaint.GetInteger(r, dict["PaintType"])
	if err != nil {
		return nil, err
	}
	if paintType != 1 && paintType != 2 {
		return nil, &pdfpaint.MalformedFileError{
			Err: fmt.Errorf("invalid PaintType %d", paintType),
		}
	}

	tilingType, err := pdfpaint.GetInteger(r, dict["TilingType"])
	if err != nil {
		return nil, err
	}
	if tilingType < 1 || tilingType > 3 {
		return nil, &pdfpaint.MalformedFileError{
			Err: fmt.Errorf("invalid TilingType %d", tilingType),
		}
	}

	llx, lly, urx, ury, ok, err := pdfpaint.GetRectangle(r, dict["BBox"])
	if err != nil {
		return nil, err
	}
	if !ok || urx <= llx || ury <= lly {
		return nil, &pdfpaint.MalformedFileError{
			Err: errors.New("missing or invalid BBox"),
		}
	}

	xStep, err := pdfpaint.GetNumber(r, dict["XStep"])
	if err != nil {
		return nil, err
	}
	yStep, err := pdfpaint.GetNumber(r, dict["YStep"])
	if err != nil {
		return nil, err
	}
	if xStep == 0 || yStep == 0 {
		return nil, &pdfpaint.MalformedFileError{
			Err: fmt.Errorf("invalid step size (%g, %g)", xStep, yStep),
		}
	}

	m, err := getMatrix(r, dict["Matrix"])
	if err != nil {
		return nil, err
	}

	pat := &Type1{
		TilingType: int(tilingType),
		BBox:       rect.Rect{LLx: llx, LLy: lly, URx: urx, URy: ury},
		XStep:      xStep,
		YStep:      yStep,
		Matrix:     m,
		Color:      paintType == 1,
	}
	if build != nil {
		pat.Build = func() *shapes.Program { return build(stream) }
	}
	return pat, nil
}

// getMatrix reads an optional pattern matrix.  A missing matrix gives the
// identity.
func getMatrix(r pdfpaint.Getter, obj pdfpaint.Object) (matrix.Matrix, error) {
	a, err := pdfpaint.GetFloatArray(r, obj)
	if err != nil {
		return matrix.Matrix{}, err
	}
	if a == nil {
		return matrix.Identity, nil
	}
	if len(a) != 6 {
		return matrix.Matrix{}, &pdfpaint.MalformedFileError{
			Err: fmt.Errorf("invalid pattern matrix %v", a),
		}
	}
	var m matrix.Matrix
	copy(m[:], a)
	return m, nil
}
