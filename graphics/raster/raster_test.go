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
	"errors"
	"image"
	"image/color"
	"testing"

	"seehuhn.de/go/geom/matrix"
)

var (
	red   = image.NewUniform(color.RGBA{255, 0, 0, 255})
	blue  = image.NewUniform(color.RGBA{0, 0, 255, 255})
	white = image.NewUniform(color.White)
)

func pixel(img *image.RGBA, x, y int) color.RGBA {
	return img.RGBAAt(x, y)
}

func TestFillRect(t *testing.T) {
	s := NewSurface(20, 20)
	Fill(s.Img, Rect(5, 5, 10, 10), matrix.Identity, NonZero, &Style{Src: red, Alpha: 1})

	if c := pixel(s.Img, 10, 10); c != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("inside: got %v", c)
	}
	if c := pixel(s.Img, 2, 2); c.A != 0 {
		t.Errorf("outside: got %v", c)
	}
	if c := pixel(s.Img, 15, 10); c.A != 0 {
		t.Errorf("right edge: got %v", c)
	}
}

func TestFillEvenOdd(t *testing.T) {
	p := Rect(0, 0, 20, 20)
	p.MoveTo(5, 5).LineTo(15, 5).LineTo(15, 15).LineTo(5, 15).Close()

	for _, rule := range []Rule{NonZero, EvenOdd} {
		s := NewSurface(20, 20)
		Fill(s.Img, p, matrix.Identity, rule, &Style{Src: red, Alpha: 1})
		hole := pixel(s.Img, 10, 10).A
		ring := pixel(s.Img, 2, 2).A
		if ring != 255 {
			t.Errorf("%d: ring alpha %d", rule, ring)
		}
		if rule == EvenOdd && hole != 0 {
			t.Errorf("even-odd: hole alpha %d", hole)
		}
		if rule == NonZero && hole != 255 {
			t.Errorf("non-zero: hole alpha %d", hole)
		}
	}
}

func TestFillClip(t *testing.T) {
	s := NewSurface(20, 20)
	clip := RectMask(image.Rect(0, 0, 10, 20))
	Fill(s.Img, Rect(0, 0, 20, 20), matrix.Identity, NonZero, &Style{Src: red, Clip: clip, Alpha: 1})
	if pixel(s.Img, 5, 5).A != 255 {
		t.Error("clip region not painted")
	}
	if pixel(s.Img, 15, 5).A != 0 {
		t.Error("painted outside clip")
	}
}

func TestFillTransform(t *testing.T) {
	s := NewSurface(40, 40)
	m := matrix.Scale(2, 2).Mul(matrix.Translate(10, 10))
	Fill(s.Img, Rect(0, 0, 5, 5), m, NonZero, &Style{Src: red, Alpha: 1})
	if pixel(s.Img, 15, 15).A != 255 {
		t.Error("transformed rectangle not painted")
	}
	if pixel(s.Img, 21, 21).A != 0 {
		t.Error("transformed rectangle too large")
	}
}

func TestIntersect(t *testing.T) {
	a := RectMask(image.Rect(0, 0, 10, 10))
	b := RectMask(image.Rect(5, 5, 15, 15))
	c := Intersect(a, b)
	if c.Rect != image.Rect(5, 5, 10, 10) {
		t.Errorf("got %v", c.Rect)
	}
	if Intersect(nil, a) != a || Intersect(b, nil) != b {
		t.Error("nil mask should be neutral")
	}
	if Intersect(nil, nil) != nil {
		t.Error("expected nil")
	}
	if !Intersect(a, RectMask(image.Rect(20, 20, 30, 30))).Rect.Empty() {
		t.Error("expected empty mask")
	}
}

func TestCompositeModes(t *testing.T) {
	backdrop := color.RGBA{200, 100, 50, 255}
	source := color.RGBA{100, 100, 100, 255}
	cases := []struct {
		mode BlendMode
		want color.RGBA
	}{
		{Normal, color.RGBA{100, 100, 100, 255}},
		{Multiply, color.RGBA{78, 39, 19, 255}},
		{Screen, color.RGBA{221, 160, 130, 255}},
		{Darken, color.RGBA{100, 100, 50, 255}},
		{Lighten, color.RGBA{200, 100, 100, 255}},
	}
	for _, c := range cases {
		dst := image.NewRGBA(image.Rect(0, 0, 1, 1))
		dst.SetRGBA(0, 0, backdrop)
		src := image.NewRGBA(image.Rect(0, 0, 1, 1))
		src.SetRGBA(0, 0, source)
		Composite(dst, src, nil, 1, c.mode)
		got := dst.RGBAAt(0, 0)
		if !closeRGBA(got, c.want, 1) {
			t.Errorf("%s: got %v, want %v", c.mode, got, c.want)
		}
	}
}

func TestCompositeAlpha(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 1, 1))
	dst.SetRGBA(0, 0, color.RGBA{0, 0, 0, 255})
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))
	src.SetRGBA(0, 0, color.RGBA{255, 255, 255, 255})
	Composite(dst, src, nil, 0.5, Normal)
	got := dst.RGBAAt(0, 0)
	if !closeRGBA(got, color.RGBA{128, 128, 128, 255}, 1) {
		t.Errorf("got %v", got)
	}
}

func closeRGBA(a, b color.RGBA, tol int) bool {
	d := func(x, y uint8) bool {
		v := int(x) - int(y)
		return v >= -tol && v <= tol
	}
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func TestParseBlendMode(t *testing.T) {
	for _, m := range []BlendMode{Normal, Multiply, Screen, Darken, Lighten} {
		if got := ParseBlendMode(m.String()); got != m {
			t.Errorf("%s: got %s", m, got)
		}
	}
	if ParseBlendMode("ColorDodge") != Normal {
		t.Error("unknown modes should map to Normal")
	}
}

func TestDrawImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255}) // top left
	src.SetRGBA(1, 0, color.RGBA{255, 0, 0, 255})
	src.SetRGBA(0, 1, color.RGBA{0, 0, 255, 255})
	src.SetRGBA(1, 1, color.RGBA{0, 0, 255, 255})

	// The unit square is mapped to (0, 0)-(20, 20), with y pointing down.
	// The first image row is at the top of the unit square, which is at
	// device y = 0.
	m := matrix.Matrix{20, 0, 0, -20, 0, 20}
	for _, q := range []Quality{High, Low} {
		dst := NewSurface(20, 20)
		err := DrawImage(dst.Img, src, m, q, &Style{Alpha: 1})
		if err != nil {
			t.Fatal(err)
		}
		if c := pixel(dst.Img, 10, 2); c.R < 200 || c.B > 50 {
			t.Errorf("quality %d: top: got %v", q, c)
		}
		if c := pixel(dst.Img, 10, 17); c.B < 200 || c.R > 50 {
			t.Errorf("quality %d: bottom: got %v", q, c)
		}
	}
}

func TestDrawImageTooLarge(t *testing.T) {
	saved := MaxLayerPixels
	MaxLayerPixels = 10
	defer func() { MaxLayerPixels = saved }()

	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	dst := NewSurface(100, 100)
	m := matrix.Matrix{100, 0, 0, 100, 0, 0}
	err := DrawImage(dst.Img, src, m, High, &Style{Alpha: 1})
	if !errors.Is(err, ErrOutOfMemory) {
		t.Errorf("got %v, want ErrOutOfMemory", err)
	}
	if err := DrawImage(dst.Img, src, m, Low, &Style{Alpha: 1}); err != nil {
		t.Errorf("low quality: %v", err)
	}
}

func TestImageBounds(t *testing.T) {
	m := matrix.Matrix{10, 0, 0, -5, 3, 8}
	if r := ImageBounds(m); r != image.Rect(3, 3, 13, 8) {
		t.Errorf("got %v", r)
	}
}

func TestSurfaceClone(t *testing.T) {
	s := NewSurface(3, 3)
	s.Fill(white)
	c := s.Clone()
	Fill(c.Img, Rect(0, 0, 3, 3), matrix.Identity, NonZero, &Style{Src: blue, Alpha: 1})
	if pixel(s.Img, 1, 1) != (color.RGBA{255, 255, 255, 255}) {
		t.Error("clone shares pixels")
	}
}
