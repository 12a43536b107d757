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

// Type3 represents a piecewise defined function with a single input.
// ISO 32000 calls this a "stitching function".
type Type3 struct {
	// XMin and XMax give the input domain.
	XMin, XMax float64

	// Range (optional) defines the valid output ranges as [min0, max0, min1,
	// max1, ...].
	Range []float64

	// Functions is the array of k functions to be combined.
	// All functions must have 1 input and the same number of outputs.
	Functions []Func

	// Bounds defines the boundaries between subdomains.
	// It must have k-1 elements, in increasing order, within the domain.
	Bounds []float64

	// Encode maps each subdomain to corresponding function's domain as
	// [min0, max0, min1, max1, ...].
	Encode []float64
}

// Shape implements the [Func] interface.
func (f *Type3) Shape() (int, int) {
	if len(f.Functions) == 0 {
		return 1, 0
	}
	_, n := f.Functions[0].Shape()
	return 1, n
}

func (f *Type3) validate() error {
	k := len(f.Functions)
	if k == 0 {
		return invalid(3, "Functions", "must not be empty")
	}
	if !isRange(f.XMin, f.XMax) {
		return invalid(3, "Domain", "[%g %g] is not a valid range", f.XMin, f.XMax)
	}
	_, n := f.Functions[0].Shape()
	for i, fi := range f.Functions {
		mi, ni := fi.Shape()
		if mi != 1 || ni != n {
			return invalid(3, "Functions", "function %d has shape %d→%d", i, mi, ni)
		}
	}
	if len(f.Bounds) != k-1 {
		return invalid(3, "Bounds", "has %d elements, expected %d", len(f.Bounds), k-1)
	}
	prev := f.XMin
	for _, b := range f.Bounds {
		if b < prev || b > f.XMax {
			return invalid(3, "Bounds", "must be increasing and inside the domain")
		}
		prev = b
	}
	if len(f.Encode) != 2*k {
		return invalid(3, "Encode", "has %d elements, expected %d", len(f.Encode), 2*k)
	}
	return nil
}

// Apply implements the [Func] interface.
func (f *Type3) Apply(inputs ...float64) []float64 {
	x := 0.0
	if len(inputs) > 0 {
		x = inputs[0]
	}
	x = clip(x, f.XMin, f.XMax)

	i, a, b := f.subdomain(x)
	y := interpolate(x, a, b, f.Encode[2*i], f.Encode[2*i+1])
	out := f.Functions[i].Apply(y)
	clipRanges(out, f.Range)
	return out
}

// subdomain finds the function responsible for input x and the boundaries
// of its subdomain.
//
// Subdomains are half-open intervals [a, b), except for the last one which
// is closed.  If XMin equals Bounds[0], the first subdomain degenerates to
// the single point XMin and the second subdomain is open on the left.
func (f *Type3) subdomain(x float64) (int, float64, float64) {
	k := len(f.Functions)
	if k == 1 {
		return 0, f.XMin, f.XMax
	}

	if x == f.XMin && f.Bounds[0] == f.XMin {
		return 0, f.XMin, f.XMin
	}

	lower := f.XMin
	for i, b := range f.Bounds {
		if x < b {
			return i, lower, b
		}
		lower = b
	}
	return k - 1, f.Bounds[k-2], f.XMax
}
