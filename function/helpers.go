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

import "math"

// isRange checks if the given values x and y are finite and satisfy x <= y.
func isRange(x, y float64) bool {
	return !math.IsInf(x, 0) && !math.IsInf(y, 0) && !math.IsNaN(x) && !math.IsNaN(y) && x <= y
}

// isRanges checks that x is a list of valid [min, max] pairs.
func isRanges(x []float64) bool {
	if len(x)%2 != 0 {
		return false
	}
	for i := 0; i < len(x); i += 2 {
		if !isRange(x[i], x[i+1]) {
			return false
		}
	}
	return true
}

// clip clips a value to the given range [min, max].
// NaN values are mapped to min.
func clip(value, min, max float64) float64 {
	if value >= max {
		return max
	}
	if value >= min {
		return value
	}
	return min
}

// clipRanges clips the values of x to the pairs in ranges, in place.
// Missing ranges leave the corresponding values unchanged.
func clipRanges(x []float64, ranges []float64) {
	for i := range x {
		if 2*i+1 >= len(ranges) {
			break
		}
		x[i] = clip(x[i], ranges[2*i], ranges[2*i+1])
	}
}

// interpolate performs linear interpolation.
func interpolate(x, xMin, xMax, yMin, yMax float64) float64 {
	if xMax == xMin {
		return yMin
	}
	return yMin + (x-xMin)*(yMax-yMin)/(xMax-xMin)
}
