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
	stdcolor "image/color"
	"math"
)

// RGB is an opaque color with components in the range [0, 1].
// RGB implements the [image/color.Color] interface.
type RGB struct {
	R, G, B float32
}

// Predefined colors.
var (
	Black = RGB{0, 0, 0}
	White = RGB{1, 1, 1}
)

// newRGB clamps the components into [0, 1].
func newRGB(r, g, b float64) RGB {
	return RGB{float32(clamp01(r)), float32(clamp01(g)), float32(clamp01(b))}
}

// RGBA implements the [image/color.Color] interface.
func (c RGB) RGBA() (r, g, b, a uint32) {
	return toUint16(c.R), toUint16(c.G), toUint16(c.B), 0xffff
}

// NRGBA converts the color to 8 bits per channel.
func (c RGB) NRGBA() stdcolor.NRGBA {
	return stdcolor.NRGBA{
		R: toUint8(c.R),
		G: toUint8(c.G),
		B: toUint8(c.B),
		A: 0xff,
	}
}

func toUint16(v float32) uint32 {
	return uint32(clamp01(float64(v))*0xffff + 0.5)
}

func toUint8(v float32) uint8 {
	return uint8(clamp01(float64(v))*0xff + 0.5)
}

// D50 reference white, used as the profile connection space by ICC.
const (
	d50X = 0.9642
	d50Y = 1.0000
	d50Z = 0.8249
)

// xyzToSRGB converts CIE XYZ (D50) to sRGB.
func xyzToSRGB(X, Y, Z float64) RGB {
	// Bradford chromatic adaptation D50 to D65
	X2 := 0.9555766*X - 0.0230393*Y + 0.0631636*Z
	Y2 := -0.0282895*X + 1.0099416*Y + 0.0210077*Z
	Z2 := 0.0122982*X - 0.0204830*Y + 1.3299098*Z

	// XYZ (D65) to linear sRGB
	rLin := 3.2404542*X2 - 1.5371385*Y2 - 0.4985314*Z2
	gLin := -0.9692660*X2 + 1.8760108*Y2 + 0.0415560*Z2
	bLin := 0.0556434*X2 - 0.2040259*Y2 + 1.0572252*Z2

	return newRGB(srgbGamma(rLin), srgbGamma(gLin), srgbGamma(bLin))
}

func srgbGamma(v float64) float64 {
	if v <= 0.0031308 {
		return 12.92 * v
	}
	return 1.055*math.Pow(v, 1/2.4) - 0.055
}

// adaptToD50 maps XYZ values relative to the white point wp to XYZ values
// relative to D50, using a simple von Kries scaling.
func adaptToD50(X, Y, Z float64, wp [3]float64) (float64, float64, float64) {
	if wp[0] <= 0 || wp[1] <= 0 || wp[2] <= 0 {
		return X, Y, Z
	}
	return X * d50X / wp[0], Y * d50Y / wp[1], Z * d50Z / wp[2]
}
