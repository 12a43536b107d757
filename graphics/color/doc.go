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

// Package color implements PDF color spaces and their conversion to RGB.
//
// In PDF, every color is represented by a color space and a set of color
// component values.  Some color spaces don't need parameters and are
// available as package-level values:
//   - [DeviceGray]: grayscale colors
//   - [DeviceRGB]: RGB colors
//   - [DeviceCMYK]: CMYK colors
//
// The other color spaces depend on parameters:
//   - [SpaceCalGray], [SpaceCalRGB] and [SpaceLab]: CIE-based color spaces
//   - [SpaceICCBased]: color spaces described by an ICC profile
//   - [SpaceIndexed]: a palette of colors in a base color space
//   - [SpaceSeparation] and [SpaceDeviceN]: named colorants, mapped to an
//     alternate color space by a tint transform
//   - [SpacePattern]: paint with a pattern instead of a solid color
//
// The set of color spaces is closed.  [Resolve] converts color values in
// any of these spaces to [RGB].  It never fails: component values outside
// the valid range are clamped, and spaces which cannot be evaluated fall
// back to a simpler approximation.
//
// Color spaces are immutable after construction and can be shared between
// goroutines.  Lazily computed state, like the palette of an indexed color
// space or a decoded ICC profile, is initialized at most once.
//
// Use a [Parser] to read color spaces from a PDF file.
package color
