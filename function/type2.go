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
	"math"
)

// Type2 represents a power interpolation function, of the form
// y = C0 + x^N × (C1 - C0).  These functions have a single input x and can
// have one or more outputs.  ISO 32000 refers to this type of
// function as "exponential interpolation".
type Type2 struct {
	// XMin and XMax give the input domain.
	XMin, XMax float64

	// Range (optional) defines clipping ranges for the outputs, in the form
	// [min0, max0, min1, max1, ...].
	Range []float64

	// C0 defines function result when x = 0.0.
	C0 []float64

	// C1 defines function result when x = 1.0.
	C1 []float64

	// N is the interpolation exponent.
	N float64
}

// Shape implements the [Func] interface.
func (f *Type2) Shape() (int, int) {
	return 1, len(f.C0)
}

func (f *Type2) validate() error {
	if !isRange(f.XMin, f.XMax) {
		return invalid(2, "Domain", "[%g %g] is not a valid range", f.XMin, f.XMax)
	}
	if len(f.C0) == 0 || len(f.C0) != len(f.C1) {
		return invalid(2, "C0", "inconsistent lengths of /C0 and /C1")
	}
	if f.Range != nil && (len(f.Range) != 2*len(f.C0) || !isRanges(f.Range)) {
		return invalid(2, "Range", "invalid ranges")
	}
	if f.N != math.Trunc(f.N) && f.XMin < 0 {
		return invalid(2, "Domain", "must be non-negative for non-integer exponent")
	}
	if f.N < 0 && f.XMin <= 0 && f.XMax >= 0 {
		return invalid(2, "Domain", "must not contain 0 for negative exponent")
	}
	return nil
}

// Apply implements the [Func] interface.
func (f *Type2) Apply(inputs ...float64) []float64 {
	x := 0.0
	if len(inputs) > 0 {
		x = inputs[0]
	}
	x = clip(x, f.XMin, f.XMax)

	var xN float64
	switch f.N {
	case 0:
		xN = 1
	case 1:
		xN = x
	default:
		xN = math.Pow(x, f.N)
	}

	out := make([]float64, len(f.C0))
	for i := range out {
		out[i] = f.C0[i] + xN*(f.C1[i]-f.C0[i])
	}
	clipRanges(out, f.Range)
	return out
}
