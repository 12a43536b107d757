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

// Func is a PDF function.
//
// Implementations must be safe for concurrent use, since one function can
// be shared by many color spaces and shadings.
type Func interface {
	// Shape returns the number of input and output values of the function.
	Shape() (int, int)

	// Apply evaluates the function.  Inputs outside the domain are clipped.
	// The number of inputs must match the first return value of Shape.
	Apply(inputs ...float64) []float64
}

// Array combines n functions with one output each into a single function
// with n outputs.  This is how PDF represents an array of functions in
// places where a single function is expected.
type Array []Func

// Shape implements the [Func] interface.
func (a Array) Shape() (int, int) {
	if len(a) == 0 {
		return 0, 0
	}
	m, _ := a[0].Shape()
	return m, len(a)
}

// Apply implements the [Func] interface.
func (a Array) Apply(inputs ...float64) []float64 {
	res := make([]float64, len(a))
	for i, f := range a {
		out := f.Apply(inputs...)
		if len(out) > 0 {
			res[i] = out[0]
		}
	}
	return res
}
