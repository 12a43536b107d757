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

// Resolve converts color values in the color space s to RGB.
//
// Missing components are taken to be zero and extra components are ignored.
// Component values outside the valid range are clamped.  For a Pattern
// color space, the result is the color in the underlying color space, or
// black for colored patterns.
func Resolve(s Space, c []float64) RGB {
	if s == nil {
		return Black
	}
	if n := s.Channels(); len(c) < n {
		padded := make([]float64, n)
		copy(padded, c)
		c = padded
	}

	switch s := s.(type) {
	case SpaceDeviceGray:
		return grayToRGB(c[0])
	case SpaceDeviceRGB:
		return newRGB(c[0], c[1], c[2])
	case SpaceDeviceCMYK:
		return CMYKToRGB(c[0], c[1], c[2], c[3])
	case *SpaceCalGray:
		return s.resolve(c[0])
	case *SpaceCalRGB:
		return s.resolve(c)
	case *SpaceLab:
		return s.resolve(c)
	case *SpaceIndexed:
		return s.resolve(c[0])
	case *SpaceSeparation:
		return s.resolve(c[0])
	case *SpaceDeviceN:
		return s.resolve(c)
	case *SpaceICCBased:
		return s.resolve(c)
	case *SpacePattern:
		if s.Base == nil {
			return Black
		}
		return Resolve(s.Base, c)
	default:
		panic("unreachable")
	}
}
