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
	"math"
	"testing"

	"seehuhn.de/go/geom/matrix"
)

func covered(t *testing.T, p *Path, x, y int) bool {
	t.Helper()
	cov := Coverage(p, matrix.Identity, NonZero, image.Rect(0, 0, 100, 100))
	if cov == nil || !(image.Point{X: x, Y: y}.In(cov.Rect)) {
		return false
	}
	return cov.AlphaAt(x, y).A > 128
}

func TestStrokeWidth(t *testing.T) {
	line := (&Path{}).MoveTo(10, 50).LineTo(90, 50)
	s := &StrokeStyle{Width: 10, Cap: ButtCap}
	out := s.Outline(line, matrix.Identity)

	if !covered(t, out, 50, 46) || !covered(t, out, 50, 53) {
		t.Error("stroke too thin")
	}
	if covered(t, out, 50, 57) || covered(t, out, 50, 42) {
		t.Error("stroke too wide")
	}
	if covered(t, out, 7, 50) {
		t.Error("butt cap extends beyond the end point")
	}
}

func TestStrokeCaps(t *testing.T) {
	line := (&Path{}).MoveTo(20, 50).LineTo(80, 50)
	for _, c := range []Cap{ButtCap, RoundCap, SquareCap} {
		s := &StrokeStyle{Width: 10, Cap: c}
		out := s.Outline(line, matrix.Identity)
		got := covered(t, out, 83, 50)
		if want := c != ButtCap; got != want {
			t.Errorf("cap %d: extension %t, want %t", c, got, want)
		}
		corner := covered(t, out, 84, 54)
		if want := c == SquareCap; corner != want {
			t.Errorf("cap %d: corner %t, want %t", c, corner, want)
		}
	}
}

func TestStrokeDot(t *testing.T) {
	dot := (&Path{}).MoveTo(50, 50).LineTo(50, 50)
	for _, c := range []Cap{ButtCap, RoundCap, SquareCap} {
		s := &StrokeStyle{Width: 10, Cap: c}
		out := s.Outline(dot, matrix.Identity)
		if got, want := !out.IsEmpty(), c != ButtCap; got != want {
			t.Errorf("cap %d: painted %t, want %t", c, got, want)
		}
	}
}

func TestStrokeJoins(t *testing.T) {
	// a right angle at (50, 50)
	corner := (&Path{}).MoveTo(10, 50).LineTo(50, 50).LineTo(50, 90)
	for _, j := range []Join{MiterJoin, RoundJoin, BevelJoin} {
		s := &StrokeStyle{Width: 10, Join: j, MiterLimit: 10}
		out := s.Outline(corner, matrix.Identity)
		// the outer corner of the miter
		got := covered(t, out, 54, 46)
		if want := j == MiterJoin; got != want {
			t.Errorf("join %d: outer corner %t, want %t", j, got, want)
		}
	}

	// a sharp angle exceeds the miter limit
	sharp := (&Path{}).MoveTo(10, 50).LineTo(90, 50).LineTo(10, 55)
	s := &StrokeStyle{Width: 4, Join: MiterJoin, MiterLimit: 2}
	b := s.Outline(sharp, matrix.Identity).Bounds(matrix.Identity)
	if b.URx > 95 {
		t.Errorf("miter not limited: %g", b.URx)
	}
}

func TestStrokeDash(t *testing.T) {
	line := (&Path{}).MoveTo(0, 50).LineTo(100, 50)
	s := &StrokeStyle{Width: 4, Dash: []float64{10, 10}}
	out := s.Outline(line, matrix.Identity)
	if !covered(t, out, 5, 50) {
		t.Error("first dash missing")
	}
	if covered(t, out, 15, 50) {
		t.Error("first gap painted")
	}
	if !covered(t, out, 25, 50) {
		t.Error("second dash missing")
	}

	s.DashPhase = 10
	out = s.Outline(line, matrix.Identity)
	if covered(t, out, 5, 50) || !covered(t, out, 15, 50) {
		t.Error("dash phase ignored")
	}
}

func TestStrokeHairline(t *testing.T) {
	line := (&Path{}).MoveTo(10, 10).LineTo(10, 90)
	s := &StrokeStyle{}
	if hw := s.HalfWidth(matrix.Scale(0.01, 0.01)); hw != 0.5 {
		t.Errorf("half width %g", hw)
	}
	dst := NewSurface(20, 100)
	Hairline(dst.Img, line, matrix.Identity, &Style{Src: red, Alpha: 1})
	painted := 0
	for x := range 20 {
		if dst.Img.RGBAAt(x, 50).A > 0 {
			painted++
		}
	}
	if painted == 0 || painted > 2 {
		t.Errorf("hairline covers %d pixels", painted)
	}
}

func TestFlattenCubic(t *testing.T) {
	// quarter circle approximation of radius 40
	const k = 0.5522847498
	p := (&Path{}).MoveTo(40, 0).CubeTo(40, 40*k, 40*k, 40, 0, 40)
	polys := p.flatten(matrix.Identity)
	if len(polys) != 1 {
		t.Fatalf("got %d polylines", len(polys))
	}
	for _, pt := range polys[0].pts {
		r := math.Hypot(pt.X, pt.Y)
		if math.Abs(r-40) > 0.5 {
			t.Errorf("point %v at distance %g", pt, r)
		}
	}
}

func TestInvert(t *testing.T) {
	m := matrix.Matrix{2, 1, -1, 3, 5, 7}
	inv, ok := Invert(m)
	if !ok {
		t.Fatal("not invertible")
	}
	id := m.Mul(inv)
	for i, want := range matrix.Identity {
		if math.Abs(id[i]-want) > 1e-12 {
			t.Errorf("m*inv = %v", id)
			break
		}
	}
	if _, ok := Invert(matrix.Matrix{1, 2, 2, 4, 0, 0}); ok {
		t.Error("singular matrix inverted")
	}
}
