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

package function

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// ramp returns a linear function from c0 to c1 on [0, 1].
func ramp(c0, c1 float64) *Type2 {
	return &Type2{XMin: 0, XMax: 1, C0: []float64{c0}, C1: []float64{c1}, N: 1}
}

func stitch(xMax float64, bounds []float64, fns ...Func) *Type3 {
	encode := make([]float64, 0, 2*len(fns))
	for range fns {
		encode = append(encode, 0, 1)
	}
	return &Type3{XMin: 0, XMax: xMax, Functions: fns, Bounds: bounds, Encode: encode}
}

func TestType3Subdomain(t *testing.T) {
	two := stitch(2, []float64{1}, ramp(0, 1), ramp(1, 0))
	three := stitch(3, []float64{1, 2}, ramp(0, 1), ramp(1, 0), ramp(0, 1))
	pinned := stitch(2, []float64{0}, ramp(0, 1), ramp(1, 0))
	single := stitch(1, nil, ramp(0, 1))

	type sub struct {
		I    int
		A, B float64
	}
	cases := []struct {
		f    *Type3
		x    float64
		want sub
	}{
		{two, 0, sub{0, 0, 1}},
		{two, 0.999, sub{0, 0, 1}},
		{two, 1, sub{1, 1, 2}}, // a bound belongs to the interval on its right
		{two, 2, sub{1, 1, 2}}, // the last interval is closed
		{three, 1.999, sub{1, 1, 2}},
		{three, 2, sub{2, 2, 3}},
		{three, 3, sub{2, 2, 3}},
		{pinned, 0, sub{0, 0, 0}}, // Bounds[0] == XMin: first interval is a point
		{pinned, 0.001, sub{1, 0, 2}},
		{single, 0.5, sub{0, 0, 1}},
		{single, 1, sub{0, 0, 1}},
	}
	for _, c := range cases {
		i, a, b := c.f.subdomain(c.x)
		if d := cmp.Diff(c.want, sub{i, a, b}); d != "" {
			t.Errorf("x=%g: %s", c.x, d)
		}
	}
}

func TestType3Apply(t *testing.T) {
	// constant pieces show which function was chosen
	f := stitch(2, []float64{1}, ramp(0.25, 0.25), ramp(0.75, 0.75))
	for _, c := range []struct{ x, want float64 }{
		{-1, 0.25}, {0.5, 0.25}, {1, 0.75}, {2, 0.75}, {5, 0.75},
	} {
		if got := f.Apply(c.x); got[0] != c.want {
			t.Errorf("f(%g) = %g, want %g", c.x, got[0], c.want)
		}
	}

	// Encode maps each subdomain onto the domain of its function, and
	// reversed Encode pairs run the function backwards.
	g := stitch(2, []float64{1}, ramp(0, 1), ramp(0, 1))
	g.Encode = []float64{0, 1, 1, 0}
	approx := cmpopts.EquateApprox(0, 1e-12)
	for _, c := range []struct{ x, want float64 }{
		{0, 0}, {0.5, 0.5}, {1, 1}, {1.25, 0.75}, {2, 0},
	} {
		if d := cmp.Diff([]float64{c.want}, g.Apply(c.x), approx); d != "" {
			t.Errorf("g(%g): %s", c.x, d)
		}
	}

	// a degenerate first subdomain still evaluates its function
	h := stitch(2, []float64{0}, ramp(0.5, 0.5), ramp(0, 1))
	if got := h.Apply(0); got[0] != 0.5 {
		t.Errorf("h(0) = %g, want 0.5", got[0])
	}
}

func TestType3Validate(t *testing.T) {
	cases := []struct {
		name string
		f    *Type3
	}{
		{"no-functions", &Type3{XMin: 0, XMax: 1}},
		{"bounds-count", stitch(2, nil, ramp(0, 1), ramp(1, 0))},
		{"bounds-order", stitch(3, []float64{2, 1}, ramp(0, 1), ramp(1, 0), ramp(0, 1))},
		{"bounds-outside", stitch(2, []float64{3}, ramp(0, 1), ramp(1, 0))},
		{"encode-count", &Type3{XMin: 0, XMax: 1, Functions: []Func{ramp(0, 1)}, Encode: []float64{0}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.f.validate()
			if !errors.Is(err, &InvalidFunctionError{}) {
				t.Errorf("got %v, want InvalidFunctionError", err)
			}
		})
	}
	if err := stitch(2, []float64{1}, ramp(0, 1), ramp(1, 0)).validate(); err != nil {
		t.Errorf("valid function rejected: %v", err)
	}
}
