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

// Type0 represents a sampled function.  The function values are given by a
// table of samples, with multilinear interpolation between the samples.
type Type0 struct {
	// Domain defines the valid input ranges as [min0, max0, min1, max1, ...]
	Domain []float64

	// Range defines the valid output ranges as [min0, max0, min1, max1, ...]
	Range []float64

	// Size specifies the number of samples in each input dimension.
	Size []int

	// BitsPerSample is one of 1, 2, 4, 8, 12, 16, 24 or 32.
	BitsPerSample int

	// Encode maps inputs to sample table indices as [min0, max0, min1, max1, ...].
	// If this is nil, [0, Size[0]-1, 0, Size[1]-1, ...] is used.
	Encode []float64

	// Decode maps samples to output values as [min0, max0, min1, max1, ...].
	// If this is nil, Range is used.
	Decode []float64

	// Samples contains the packed sample data, in the order of increasing
	// first input dimension.
	Samples []byte
}

// Shape implements the [Func] interface.
func (f *Type0) Shape() (int, int) {
	return len(f.Domain) / 2, len(f.Range) / 2
}

func (f *Type0) validate() error {
	m, n := f.Shape()
	if m == 0 || !isRanges(f.Domain) {
		return invalid(0, "Domain", "must contain at least one valid range")
	}
	if n == 0 || !isRanges(f.Range) {
		return invalid(0, "Range", "must contain at least one valid range")
	}
	if len(f.Size) != m {
		return invalid(0, "Size", "has %d elements, expected %d", len(f.Size), m)
	}
	total := 1
	for _, s := range f.Size {
		if s < 1 || s > 1<<16 {
			return invalid(0, "Size", "invalid entry %d", s)
		}
		total *= s
		if total > 1<<26 {
			return invalid(0, "Size", "too many samples")
		}
	}
	switch f.BitsPerSample {
	case 1, 2, 4, 8, 12, 16, 24, 32:
		// pass
	default:
		return invalid(0, "BitsPerSample", "invalid value %d", f.BitsPerSample)
	}
	if f.Encode != nil && len(f.Encode) != 2*m {
		return invalid(0, "Encode", "has %d elements, expected %d", len(f.Encode), 2*m)
	}
	if f.Decode != nil && len(f.Decode) != 2*n {
		return invalid(0, "Decode", "has %d elements, expected %d", len(f.Decode), 2*n)
	}
	need := (total*n*f.BitsPerSample + 7) / 8
	if len(f.Samples) < need {
		return invalid(0, "Samples", "has %d bytes, expected %d", len(f.Samples), need)
	}
	return nil
}

// Apply implements the [Func] interface.
func (f *Type0) Apply(inputs ...float64) []float64 {
	m, n := f.Shape()

	// position in the sample table, split into integer part and fraction
	idx := make([]int, m)
	frac := make([]float64, m)
	for i := range m {
		x := 0.0
		if i < len(inputs) {
			x = inputs[i]
		}
		x = clip(x, f.Domain[2*i], f.Domain[2*i+1])

		var e0, e1 float64
		if f.Encode != nil {
			e0, e1 = f.Encode[2*i], f.Encode[2*i+1]
		} else {
			e0, e1 = 0, float64(f.Size[i]-1)
		}
		e := interpolate(x, f.Domain[2*i], f.Domain[2*i+1], e0, e1)
		e = clip(e, 0, float64(f.Size[i]-1))

		k := int(math.Floor(e))
		if k >= f.Size[i]-1 {
			k = max(f.Size[i]-2, 0)
		}
		idx[i] = k
		frac[i] = e - float64(k)
	}

	out := make([]float64, n)
	corner := make([]int, m)
	for c := 0; c < 1<<m; c++ {
		w := 1.0
		for i := range m {
			if c&(1<<i) != 0 {
				if f.Size[i] == 1 {
					w = 0
					break
				}
				corner[i] = idx[i] + 1
				w *= frac[i]
			} else {
				corner[i] = idx[i]
				w *= 1 - frac[i]
			}
		}
		if w == 0 {
			continue
		}
		base := f.offset(corner) * n
		for j := range n {
			out[j] += w * f.sample(base+j)
		}
	}

	decode := f.Decode
	if decode == nil {
		decode = f.Range
	}
	maxVal := math.Exp2(float64(f.BitsPerSample)) - 1
	for j := range n {
		out[j] = interpolate(out[j], 0, maxVal, decode[2*j], decode[2*j+1])
	}
	clipRanges(out, f.Range)
	return out
}

// offset returns the index of the sample point with the given coordinates,
// counted in sample points.
func (f *Type0) offset(coords []int) int {
	pos := 0
	stride := 1
	for i, c := range coords {
		pos += c * stride
		stride *= f.Size[i]
	}
	return pos
}

// sample extracts the k-th sample value from the packed sample data.
func (f *Type0) sample(k int) float64 {
	bps := f.BitsPerSample
	bitPos := k * bps
	bytePos := bitPos / 8
	if bytePos >= len(f.Samples) {
		return 0
	}

	if bps < 8 {
		shift := 8 - bps - bitPos%8
		return float64((f.Samples[bytePos] >> shift) & (1<<bps - 1))
	}

	var v uint64
	nBytes := (bps + 7) / 8
	if bps == 12 {
		// 12 bit samples straddle byte boundaries
		if bytePos+1 >= len(f.Samples) {
			return 0
		}
		v = uint64(f.Samples[bytePos])<<8 | uint64(f.Samples[bytePos+1])
		if bitPos%8 == 0 {
			v >>= 4
		}
		return float64(v & 0xFFF)
	}
	for i := range nBytes {
		if bytePos+i >= len(f.Samples) {
			return 0
		}
		v = v<<8 | uint64(f.Samples[bytePos+i])
	}
	return float64(v)
}
