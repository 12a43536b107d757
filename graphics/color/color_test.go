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

package color

import (
	"math"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"seehuhn.de/go/pdfpaint"
	"seehuhn.de/go/pdfpaint/function"
)

var approx = cmpopts.EquateApprox(0, 1e-5)

func TestDeviceSpaces(t *testing.T) {
	cases := []struct {
		space Space
		in    []float64
		want  RGB
	}{
		{DeviceGray, []float64{0}, Black},
		{DeviceGray, []float64{1}, White},
		{DeviceGray, []float64{2}, White},
		{DeviceRGB, []float64{1, 0, 0.5}, RGB{1, 0, 0.5}},
		{DeviceRGB, []float64{-1, 0.25, 7}, RGB{0, 0.25, 1}},
		{DeviceCMYK, []float64{0, 0, 0, 0}, White},
		{DeviceCMYK, []float64{0, 0, 0, 1}, Black},
		{DeviceCMYK, []float64{1, 0, 0, 0}, RGB{0, 1, 1}},
		{DeviceCMYK, []float64{0.5, 0, 0, 0.5}, RGB{0.25, 0.5, 0.5}},
		{DeviceRGB, nil, Black},
	}
	for i, c := range cases {
		got := Resolve(c.space, c.in)
		if d := cmp.Diff(c.want, got, approx); d != "" {
			t.Errorf("%d: %s", i, d)
		}
	}
}

func TestCMYKRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for range 1000 {
		cmyk := [4]float64{rng.Float64(), rng.Float64(), rng.Float64(), rng.Float64()}
		// The conversion can only be inverted if one of c, m, y is zero.
		cmyk[rng.IntN(3)] = 0
		if cmyk[3] > 0.999 {
			continue
		}

		rgb := CMYKToRGB(cmyk[0], cmyk[1], cmyk[2], cmyk[3])
		c, m, y, k := RGBToCMYK(float64(rgb.R), float64(rgb.G), float64(rgb.B))
		got := [4]float64{c, m, y, k}
		if d := cmp.Diff(cmyk, got, cmpopts.EquateApprox(0, 1e-4)); d != "" {
			t.Fatalf("%v: %s", cmyk, d)
		}
	}
}

func TestIndexedBoundary(t *testing.T) {
	s, err := Indexed(DeviceGray, 1, []byte{0, 255})
	if err != nil {
		t.Fatal(err)
	}
	if got := Resolve(s, []float64{0}); got != Black {
		t.Errorf("index 0: got %v, want black", got)
	}
	if got := Resolve(s, []float64{1}); got != White {
		t.Errorf("index 1: got %v, want white", got)
	}

	palette := make([]byte, 3*256)
	for i := range 256 {
		palette[3*i] = byte(i)
	}
	for _, hiVal := range []int{1, 2, 15, 100, 255} {
		s, err := Indexed(DeviceRGB, hiVal, palette)
		if err != nil {
			t.Fatal(err)
		}
		last := Resolve(s, []float64{1.0})
		if want := s.Color(hiVal); last != want {
			t.Errorf("hival %d: t=1 gives %v, want %v", hiVal, last, want)
		}
		for i := 0; i <= hiVal; i++ {
			got := Resolve(s, []float64{float64(i) / float64(hiVal)})
			want := float32(i) / 255
			if math.Abs(float64(got.R-want)) > 1e-6 {
				t.Errorf("hival %d, index %d: got %g, want %g", hiVal, i, got.R, want)
			}
		}
		// out of range values are clamped
		if got := Resolve(s, []float64{7}); got != last {
			t.Errorf("hival %d: t=7 gives %v, want %v", hiVal, got, last)
		}
		if got := Resolve(s, []float64{-3}); got != s.Color(0) {
			t.Errorf("hival %d: t=-3 gives %v", hiVal, got)
		}
	}
}

func TestIndexedShortPalette(t *testing.T) {
	s, err := Indexed(DeviceRGB, 3, []byte{255, 255, 255})
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Color(0); got != White {
		t.Errorf("got %v, want white", got)
	}
	if got := s.Color(3); got != Black {
		t.Errorf("got %v, want black", got)
	}
}

func TestIndexedConcurrent(t *testing.T) {
	s, err := Indexed(DeviceGray, 255, nil)
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 256 {
				Resolve(s, []float64{float64(i) / 255})
			}
		}()
	}
	wg.Wait()
}

func TestDeviceNCMYKShortcut(t *testing.T) {
	alt := DeviceRGB
	s, err := DeviceN([]pdfpaint.Name{"Cyan", "Magenta", "Yellow", "Black"}, alt, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, in := range [][]float64{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0.2, 0.4, 0.6, 0.8},
	} {
		got := Resolve(s, in)
		want := Resolve(DeviceCMYK, in)
		if got != want {
			t.Errorf("%v: got %v, want %v", in, got, want)
		}
	}

	// The same names in a different order don't get the shortcut.
	s, err = DeviceN([]pdfpaint.Name{"Black", "Cyan", "Magenta", "Yellow"}, DeviceCMYK, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.cmyk {
		t.Error("unexpected CMYK shortcut")
	}
}

func TestSeparation(t *testing.T) {
	// broadcast into the alternate space when there is no tint transform
	s, err := Separation("Spot", DeviceCMYK, nil)
	if err != nil {
		t.Fatal(err)
	}
	got := Resolve(s, []float64{0.5})
	want := Resolve(DeviceCMYK, []float64{0.5, 0.5, 0.5, 0.5})
	if got != want {
		t.Errorf("broadcast: got %v, want %v", got, want)
	}

	// tint transform
	tint := &function.Type2{
		XMin: 0, XMax: 1,
		C0: []float64{1, 1, 1},
		C1: []float64{1, 0, 0},
		N:  1,
	}
	s, err = Separation("Red", DeviceRGB, tint)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(RGB{1, 0, 0}, Resolve(s, []float64{1}), approx); d != "" {
		t.Error(d)
	}
	if d := cmp.Diff(RGB{1, 0.5, 0.5}, Resolve(s, []float64{0.5}), approx); d != "" {
		t.Error(d)
	}

	// special colorant names
	all, _ := Separation("All", DeviceGray, nil)
	if got := Resolve(all, []float64{1}); got != Black {
		t.Errorf("All: got %v", got)
	}
	none, _ := Separation("None", DeviceGray, nil)
	if got := Resolve(none, []float64{1}); got != White {
		t.Errorf("None: got %v", got)
	}
	magenta, _ := Separation("Magenta", DeviceRGB, nil)
	if got, want := Resolve(magenta, []float64{1}), Resolve(DeviceCMYK, []float64{0, 1, 0, 0}); got != want {
		t.Errorf("Magenta: got %v, want %v", got, want)
	}

	// invalid tint transform shape
	if _, err := Separation("Red", DeviceCMYK, tint); err == nil {
		t.Error("expected error")
	}
}

func TestCalRGBDefault(t *testing.T) {
	s, err := CalRGB([]float64{0.9505, 1, 1.089}, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewPCG(3, 4))
	for range 100 {
		in := []float64{rng.Float64(), rng.Float64(), rng.Float64()}
		got := Resolve(s, in)
		want := Resolve(DeviceRGB, in)
		if d := cmp.Diff(want, got, approx); d != "" {
			t.Fatalf("%v: %s", in, d)
		}
	}

	if _, err := CalRGB([]float64{1, 2, 3}, nil, nil, nil); err == nil {
		t.Error("expected error for invalid white point")
	}
}

func TestCalRGBGammaMatrix(t *testing.T) {
	s, err := CalRGB(
		[]float64{0.9505, 1, 1.089}, nil,
		[]float64{2, 1, 1},
		[]float64{0, 1, 0, 1, 0, 0, 0, 0, 1}, // swap the first two channels
	)
	if err != nil {
		t.Fatal(err)
	}
	got := Resolve(s, []float64{0.5, 0.1, 0.3})
	if d := cmp.Diff(RGB{0.1, 0.25, 0.3}, got, approx); d != "" {
		t.Error(d)
	}
}

func TestLabWhite(t *testing.T) {
	s, err := Lab([]float64{0.9505, 1, 1.089}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	white := Resolve(s, []float64{100, 0, 0})
	for _, x := range []float32{white.R, white.G, white.B} {
		if x < 0.98 {
			t.Errorf("L=100 gives %v, expected white", white)
			break
		}
	}
	black := Resolve(s, []float64{0, 0, 0})
	if black.R > 0.01 || black.G > 0.01 || black.B > 0.01 {
		t.Errorf("L=0 gives %v, expected black", black)
	}
	// a* > 0 is red-ish
	red := Resolve(s, []float64{50, 80, 0})
	if !(red.R > red.G && red.R > red.B) {
		t.Errorf("unexpected color %v", red)
	}
}

func TestCalGray(t *testing.T) {
	s, err := CalGray([]float64{0.9505, 1, 1.089}, nil, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := Resolve(s, []float64{1}); got != White {
		t.Errorf("got %v", got)
	}
	if got := Resolve(s, []float64{0}); got != Black {
		t.Errorf("got %v", got)
	}
	if _, err := CalGray([]float64{0.9505, 1, 1.089}, nil, 0); err == nil {
		t.Error("expected error for gamma 0")
	}
}

func TestICCFallback(t *testing.T) {
	for _, profile := range [][]byte{nil, []byte("not an ICC profile")} {
		s, err := ICCBased(4, profile, nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		in := []float64{0.1, 0.2, 0.3, 0.4}
		want := Resolve(DeviceCMYK, in)
		for range 3 {
			if got := Resolve(s, in); got != want {
				t.Errorf("got %v, want %v", got, want)
			}
		}
		if s.tr != nil || !s.inited {
			t.Error("profile should have failed permanently")
		}
		// a different input after the cache was filled
		in2 := []float64{0, 0, 0, 1}
		if got := Resolve(s, in2); got != Black {
			t.Errorf("got %v, want black", got)
		}
	}

	if _, err := ICCBased(2, nil, nil, nil); err == nil {
		t.Error("expected error for N=2")
	}
	if _, err := ICCBased(3, nil, DeviceGray, nil); err == nil {
		t.Error("expected error for mismatched alternate")
	}
}

func TestDefault(t *testing.T) {
	lab, _ := Lab([]float64{0.9505, 1, 1.089}, nil, []float64{10, 20, -5, 5})
	sep, _ := Separation("Spot", DeviceGray, nil)
	cases := []struct {
		space Space
		want  []float64
	}{
		{DeviceGray, []float64{0}},
		{DeviceRGB, []float64{0, 0, 0}},
		{DeviceCMYK, []float64{0, 0, 0, 1}},
		{lab, []float64{0, 10, 0}},
		{sep, []float64{1}},
		{PatternColored, nil},
		{&SpacePattern{Base: DeviceRGB}, []float64{0, 0, 0}},
	}
	for _, c := range cases {
		if d := cmp.Diff(c.want, Default(c.space)); d != "" {
			t.Errorf("%s: %s", c.space.Family(), d)
		}
	}
}

func TestPatternSpace(t *testing.T) {
	if got := Resolve(PatternColored, nil); got != Black {
		t.Errorf("got %v", got)
	}
	s := &SpacePattern{Base: DeviceRGB}
	if got := Resolve(s, []float64{0, 1, 0}); got != (RGB{0, 1, 0}) {
		t.Errorf("got %v", got)
	}
}
