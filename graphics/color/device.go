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

import "seehuhn.de/go/pdfpaint"

// Singleton objects for the color spaces which do not require any parameters.
var (
	DeviceGray = SpaceDeviceGray{}
	DeviceRGB  = SpaceDeviceRGB{}
	DeviceCMYK = SpaceDeviceCMYK{}
)

// == DeviceGray =============================================================

// SpaceDeviceGray represents the DeviceGray color space.
type SpaceDeviceGray struct{}

// Family returns /DeviceGray.
// This implements the [Space] interface.
func (s SpaceDeviceGray) Family() pdfpaint.Name {
	return FamilyDeviceGray
}

// Channels returns 1.
// This implements the [Space] interface.
func (s SpaceDeviceGray) Channels() int {
	return 1
}

func (s SpaceDeviceGray) isSpace() {}

func grayToRGB(gray float64) RGB {
	return newRGB(gray, gray, gray)
}

// == DeviceRGB ==============================================================

// SpaceDeviceRGB represents the DeviceRGB color space.
type SpaceDeviceRGB struct{}

// Family returns /DeviceRGB.
// This implements the [Space] interface.
func (s SpaceDeviceRGB) Family() pdfpaint.Name {
	return FamilyDeviceRGB
}

// Channels returns 3.
// This implements the [Space] interface.
func (s SpaceDeviceRGB) Channels() int {
	return 3
}

func (s SpaceDeviceRGB) isSpace() {}

// == DeviceCMYK =============================================================

// SpaceDeviceCMYK represents the DeviceCMYK color space.
type SpaceDeviceCMYK struct{}

// Family returns /DeviceCMYK.
// This implements the [Space] interface.
func (s SpaceDeviceCMYK) Family() pdfpaint.Name {
	return FamilyDeviceCMYK
}

// Channels returns 4.
// This implements the [Space] interface.
func (s SpaceDeviceCMYK) Channels() int {
	return 4
}

func (s SpaceDeviceCMYK) isSpace() {}

// CMYKToRGB converts CMYK values to RGB, using the naive conversion
// r = (1-c)(1-k), g = (1-m)(1-k), b = (1-y)(1-k).
// Inputs are clamped to [0, 1].
func CMYKToRGB(c, m, y, k float64) RGB {
	c, m, y, k = clamp01(c), clamp01(m), clamp01(y), clamp01(k)
	return newRGB((1-c)*(1-k), (1-m)*(1-k), (1-y)*(1-k))
}

// RGBToCMYK converts RGB values to CMYK.  This is the inverse of
// [CMYKToRGB], using full black generation: k = 1 - max(r, g, b).
//
// Since the conversion from CMYK to RGB loses information, a round trip
// only reproduces CMYK values with min(c, m, y) = 0.
func RGBToCMYK(r, g, b float64) (c, m, y, k float64) {
	r, g, b = clamp01(r), clamp01(g), clamp01(b)
	k = 1 - max(r, g, b)
	if k >= 1 {
		return 0, 0, 0, 1
	}
	c = (1 - r - k) / (1 - k)
	m = (1 - g - k) / (1 - k)
	y = (1 - b - k) / (1 - k)
	return c, m, y, k
}
