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
	"testing"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pdfpaint"
	"seehuhn.de/go/pdfpaint/function"
	"seehuhn.de/go/pdfpaint/graphics/color"
)

// blackToWhite is an RGB function going from black at 0 to white at 1.
var blackToWhite = &function.Type2{
	XMin: 0, XMax: 1,
	C0: []float64{0, 0, 0},
	C1: []float64{1, 1, 1},
	N:  1,
}

func rgbaAt(img image.Image, x, y int) stdcolor.RGBA {
	return stdcolor.RGBAModel.Convert(img.At(x, y)).(stdcolor.RGBA)
}

func TestAxialEndpoints(t *testing.T) {
	s := &Type2{
		ColorSpace: color.DeviceRGB,
		P0:         vec.Vec2{X: 0, Y: 0},
		P1:         vec.Vec2{X: 100, Y: 0},
		F:          blackToWhite,
		TMax:       1,
	}
	bounds := image.Rect(0, 0, 100, 10)
	img := s.Source(matrix.Identity, bounds)

	if c := rgbaAt(img, 0, 5); c.R > 2 || c.A != 255 {
		t.Errorf("start: got %v", c)
	}
	if c := rgbaAt(img, 99, 5); c.R < 253 {
		t.Errorf("end: got %v", c)
	}
	if c := rgbaAt(img, 49, 5); c.R < 120 || c.R > 135 {
		t.Errorf("middle: got %v", c)
	}

	// without Extend, nothing is painted beyond the end points
	img = s.Source(matrix.Translate(10, 0), image.Rect(0, 0, 120, 10))
	if c := rgbaAt(img, 5, 5); c.A != 0 {
		t.Errorf("before start: got %v", c)
	}
	if c := rgbaAt(img, 115, 5); c.A != 0 {
		t.Errorf("after end: got %v", c)
	}

	s.ExtendStart = true
	s.ExtendEnd = true
	img = s.Source(matrix.Translate(10, 0), image.Rect(0, 0, 120, 10))
	if c := rgbaAt(img, 5, 5); c != (stdcolor.RGBA{A: 255}) {
		t.Errorf("extended start: got %v", c)
	}
	if c := rgbaAt(img, 115, 5); c != (stdcolor.RGBA{255, 255, 255, 255}) {
		t.Errorf("extended end: got %v", c)
	}
}

func TestAxialBackground(t *testing.T) {
	s := &Type2{
		ColorSpace: color.DeviceRGB,
		P0:         vec.Vec2{X: 10, Y: 0},
		P1:         vec.Vec2{X: 20, Y: 0},
		F:          blackToWhite,
		TMax:       1,
		Background: []float64{1, 0, 0},
	}
	img := s.Source(matrix.Identity, image.Rect(0, 0, 30, 1))
	if c := rgbaAt(img, 2, 0); c != (stdcolor.RGBA{255, 0, 0, 255}) {
		t.Errorf("got %v", c)
	}
}

func TestRadial(t *testing.T) {
	s := &Type3{
		ColorSpace: color.DeviceRGB,
		Center1:    vec.Vec2{X: 50, Y: 50},
		R1:         0,
		Center2:    vec.Vec2{X: 50, Y: 50},
		R2:         50,
		F:          blackToWhite,
		TMax:       1,
	}
	img := s.Source(matrix.Identity, image.Rect(0, 0, 100, 100))

	if c := rgbaAt(img, 50, 50); c.R > 5 || c.A != 255 {
		t.Errorf("center: got %v", c)
	}
	if c := rgbaAt(img, 50, 25); c.R < 115 || c.R > 140 {
		t.Errorf("half radius: got %v", c)
	}
	if c := rgbaAt(img, 2, 2); c.A != 0 {
		t.Errorf("outside: got %v", c)
	}
}

func TestSingularMatrix(t *testing.T) {
	s := &Type2{ColorSpace: color.DeviceGray, F: blackToWhite, TMax: 1}
	if img := s.Source(matrix.Matrix{}, image.Rect(0, 0, 1, 1)); img != nil {
		t.Error("expected nil source")
	}
}

func TestExtract(t *testing.T) {
	store := pdfpaint.NewStore()
	fn := pdfpaint.Dict{
		"FunctionType": pdfpaint.Integer(2),
		"Domain":       pdfpaint.Array{pdfpaint.Integer(0), pdfpaint.Integer(1)},
		"C0":           pdfpaint.Array{pdfpaint.Integer(0)},
		"C1":           pdfpaint.Array{pdfpaint.Integer(1)},
		"N":            pdfpaint.Integer(1),
	}
	dict := pdfpaint.Dict{
		"ShadingType": pdfpaint.Integer(3),
		"ColorSpace":  pdfpaint.Name("DeviceGray"),
		"Coords": pdfpaint.Array{
			pdfpaint.Integer(0), pdfpaint.Integer(0), pdfpaint.Integer(0),
			pdfpaint.Integer(0), pdfpaint.Integer(0), pdfpaint.Integer(10),
		},
		"Function": fn,
		"Extend":   pdfpaint.Array{pdfpaint.Bool(false), pdfpaint.Bool(true)},
	}
	ref, err := store.Add(dict)
	if err != nil {
		t.Fatal(err)
	}

	sh, err := Extract(store, ref, nil)
	if err != nil {
		t.Fatal(err)
	}
	radial, ok := sh.(*Type3)
	if !ok {
		t.Fatalf("got %T", sh)
	}
	if radial.R2 != 10 || radial.ExtendStart || !radial.ExtendEnd || radial.TMax != 1 {
		t.Errorf("got %+v", radial)
	}

	dict["ShadingType"] = pdfpaint.Integer(4)
	_, err = Extract(store, dict, nil)
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("type 4: got %v", err)
	}

	dict["ShadingType"] = pdfpaint.Integer(2)
	_, err = Extract(store, dict, nil)
	if !pdfpaint.IsMalformed(err) {
		t.Errorf("wrong number of coordinates: got %v", err)
	}
}
