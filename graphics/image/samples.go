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

package image

import (
	"math"

	"seehuhn.de/go/pdfpaint/graphics/color"
)

// unpackRow extracts the samples of one image row.  Rows start on a byte
// boundary, samples are stored most significant bit first.
func unpackRow(row []byte, bpc int, out []uint16) {
	switch bpc {
	case 8:
		for i := range out {
			out[i] = uint16(row[i])
		}
	case 16:
		for i := range out {
			out[i] = uint16(row[2*i])<<8 | uint16(row[2*i+1])
		}
	default: // 1, 2, 4
		samplesPerByte := 8 / bpc
		mask := byte(1<<bpc - 1)
		for i := range out {
			b := row[i/samplesPerByte]
			shift := (samplesPerByte - 1 - i%samplesPerByte) * bpc
			out[i] = uint16((b >> shift) & mask)
		}
	}
}

// rowBytes returns the number of bytes in one row of samples.
func rowBytes(width, n, bpc int) int {
	return (width*n*bpc + 7) / 8
}

// converter maps raw sample values to RGB, applying the Decode array.
type converter struct {
	space   color.Space
	indexed *color.SpaceIndexed
	n       int
	decode  []float64
	maxVal  float64

	comps []float64

	// lut holds the colors of all possible sample values, for single
	// component images with at most 8 bits per sample.
	lut []color.RGB

	// the most recently converted multi-component pixel
	lastValid bool
	last      [color.MaxChannels]uint16
	lastRGB   color.RGB
}

func newConverter(cs color.Space, decode []float64, bpc int) *converter {
	c := &converter{
		space:  cs,
		n:      cs.Channels(),
		decode: decode,
		maxVal: float64(int(1)<<bpc - 1),
	}
	c.comps = make([]float64, c.n)
	c.indexed, _ = cs.(*color.SpaceIndexed)

	if c.n == 1 && bpc <= 8 {
		c.lut = make([]color.RGB, 1<<bpc)
		var s [1]uint16
		for v := range c.lut {
			s[0] = uint16(v)
			c.lut[v] = c.compute(s[:])
		}
	}
	return c
}

func (c *converter) convert(samples []uint16) color.RGB {
	if c.lut != nil {
		return c.lut[samples[0]]
	}
	var key [color.MaxChannels]uint16
	copy(key[:], samples)
	if c.lastValid && key == c.last {
		return c.lastRGB
	}
	rgb := c.compute(samples)
	c.last, c.lastRGB, c.lastValid = key, rgb, true
	return rgb
}

func (c *converter) compute(samples []uint16) color.RGB {
	for i := range c.n {
		lo, hi := c.decode[2*i], c.decode[2*i+1]
		c.comps[i] = lo + float64(samples[i])*(hi-lo)/c.maxVal
	}
	if c.indexed != nil {
		return c.indexed.Color(int(math.Round(c.comps[0])))
	}
	return color.Resolve(c.space, c.comps)
}

// colorKeyMatch reports whether all samples fall into the color key masking
// ranges.
func colorKeyMatch(samples []uint16, key []int) bool {
	for i, s := range samples {
		if int(s) < key[2*i] || int(s) > key[2*i+1] {
			return false
		}
	}
	return true
}
