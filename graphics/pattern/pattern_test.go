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
	"bytes"
	"context"
	stdcolor "image/color"
	"testing"

	"github.com/stretchr/testify/require"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pdfpaint"
	"seehuhn.de/go/pdfpaint/function"
	"seehuhn.de/go/pdfpaint/graphics/color"
	"seehuhn.de/go/pdfpaint/graphics/raster"
	"seehuhn.de/go/pdfpaint/graphics/shading"
	"seehuhn.de/go/pdfpaint/graphics/shapes"
)

var (
	red    = shapes.SolidPaint{Color: color.RGB{R: 1}}
	opaque = stdcolor.RGBA{R: 255, A: 255}
)

// paintWith fills a 40x40 surface with the given paint.
func paintWith(p shapes.Paint) *raster.Surface {
	prog := (&shapes.Program{}).Append(
		shapes.SetPaint{Paint: p},
		shapes.SetGeometry{Path: raster.Rect(0, 0, 40, 40)},
		shapes.Fill{},
	)
	s := raster.NewSurface(40, 40)
	shapes.Replay(context.Background(), prog, s, nil)
	return s
}

func squareCell(x, y, size float64) func() *shapes.Program {
	return func() *shapes.Program {
		return (&shapes.Program{}).Append(
			shapes.SetPaint{Paint: red},
			shapes.SetGeometry{Path: raster.Rect(x, y, size, size)},
			shapes.Fill{},
		)
	}
}

func TestTilingRepeat(t *testing.T) {
	pat := &Type1{
		TilingType: 1,
		BBox:       rect.Rect{LLx: 0, LLy: 0, URx: 10, URy: 10},
		XStep:      10,
		YStep:      10,
		Color:      true,
		Build:      squareCell(0, 0, 5),
	}
	s := paintWith(pat)

	for _, p := range [][2]int{{2, 2}, {12, 12}, {32, 22}} {
		require.Equal(t, opaque, s.Img.RGBAAt(p[0], p[1]), "pixel %v", p)
	}
	require.Equal(t, uint8(0), s.Img.RGBAAt(7, 7).A)
	require.Equal(t, uint8(0), s.Img.RGBAAt(27, 3).A)
}

func TestTilingOverlap(t *testing.T) {
	pat := &Type1{
		TilingType: 1,
		BBox:       rect.Rect{LLx: -5, LLy: -5, URx: 5, URy: 5},
		XStep:      20,
		YStep:      20,
		Color:      true,
		Build:      squareCell(-5, -5, 10),
	}
	s := paintWith(pat)

	require.Equal(t, opaque, s.Img.RGBAAt(2, 2))
	require.Equal(t, opaque, s.Img.RGBAAt(17, 2))
	require.Equal(t, opaque, s.Img.RGBAAt(17, 17))
	require.Equal(t, uint8(0), s.Img.RGBAAt(10, 10).A)
}

func TestTilingUncolored(t *testing.T) {
	pat := &Type1{
		TilingType: 1,
		BBox:       rect.Rect{LLx: 0, LLy: 0, URx: 10, URy: 10},
		XStep:      10,
		YStep:      10,
		Build:      squareCell(0, 0, 5),
	}
	require.Equal(t, 2, pat.PaintType())

	blue := color.RGB{B: 1}
	paint := pat.Tint(blue)
	require.Equal(t, blue, paint.Fallback())

	s := paintWith(paint)
	require.Equal(t, stdcolor.RGBA{B: 255, A: 255}, s.Img.RGBAAt(2, 2))
	require.Equal(t, uint8(0), s.Img.RGBAAt(7, 7).A)
}

func TestTilingFallback(t *testing.T) {
	calls := 0
	pat := &Type1{
		BBox:  rect.Rect{URx: 10, URy: 10},
		XStep: 0,
		YStep: 10,
		Color: true,
		Build: func() *shapes.Program {
			calls++
			return (&shapes.Program{}).Append(
				shapes.SetGeometry{Path: raster.Rect(0, 0, 5, 5)},
				shapes.Fill{},
			)
		},
	}

	// The cell sets no color, so the fallback is black.
	require.Equal(t, color.RGB{}, pat.Fallback())

	// With a zero step size, the pattern is painted in its fallback color.
	s := paintWith(pat)
	require.Equal(t, stdcolor.RGBA{A: 255}, s.Img.RGBAAt(30, 30))
	require.Equal(t, 1, calls)

	pat2 := &Type1{Build: squareCell(0, 0, 1)}
	require.Equal(t, red.Color, pat2.Fallback())
}

func TestShadingPattern(t *testing.T) {
	sh := &shading.Type2{
		ColorSpace: color.DeviceRGB,
		P0:         vec.Vec2{X: 0, Y: 0},
		P1:         vec.Vec2{X: 40, Y: 0},
		F: &function.Type2{
			XMin: 0, XMax: 1,
			C0: []float64{1, 0, 0},
			C1: []float64{0, 0, 1},
			N:  1,
		},
		TMax:        1,
		ExtendStart: true,
		ExtendEnd:   true,
	}
	s := paintWith(&Type2{Shading: sh})
	left := s.Img.RGBAAt(0, 20)
	right := s.Img.RGBAAt(39, 20)
	require.True(t, left.R > 250 && left.B < 5, "left: %v", left)
	require.True(t, right.B > 250 && right.R < 5, "right: %v", right)

	// a pattern without a shading paints nothing
	s = paintWith(&Type2{})
	require.Equal(t, uint8(0), s.Img.RGBAAt(20, 20).A)
}

func TestExtract(t *testing.T) {
	store := pdfpaint.NewStore()

	tiling := &pdfpaint.Stream{
		Dict: pdfpaint.Dict{
			"PatternType": pdfpaint.Integer(1),
			"PaintType":   pdfpaint.Integer(1),
			"TilingType":  pdfpaint.Integer(2),
			"BBox": pdfpaint.Array{
				pdfpaint.Integer(0), pdfpaint.Integer(0), pdfpaint.Integer(10), pdfpaint.Integer(10),
			},
			"XStep": pdfpaint.Integer(10),
			"YStep": pdfpaint.Real(12.5),
		},
		R: bytes.NewReader([]byte("0 0 5 5 re f")),
	}
	ref, err := store.Add(tiling)
	require.NoError(t, err)

	var seen *pdfpaint.Stream
	build := func(stm *pdfpaint.Stream) *shapes.Program {
		seen = stm
		return squareCell(0, 0, 5)()
	}
	pat, err := Extract(store, ref, nil, build)
	require.NoError(t, err)
	t1, ok := pat.(*Type1)
	require.True(t, ok)
	require.Equal(t, 12.5, t1.YStep)
	require.Equal(t, 2, t1.TilingType)
	require.Nil(t, seen, "cell built too early")
	require.NotNil(t, t1.Program())
	require.NotNil(t, seen)

	shadingPat := pdfpaint.Dict{
		"PatternType": pdfpaint.Integer(2),
		"Shading": pdfpaint.Dict{
			"ShadingType": pdfpaint.Integer(6),
			"ColorSpace":  pdfpaint.Name("DeviceRGB"),
		},
	}
	pat, err = Extract(store, shadingPat, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 2, pat.PatternType())
	require.Nil(t, pat.(*Type2).Shading)

	_, err = Extract(store, pdfpaint.Dict{"PatternType": pdfpaint.Integer(1)}, nil, nil)
	require.Error(t, err)
}
