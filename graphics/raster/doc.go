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

// Package raster implements the pixel operations of the page painter.
//
// All coordinates handled by this package are device coordinates: the
// x-axis points right, the y-axis points down, and one unit is one pixel.
// Paths are given in user space together with a transformation matrix
// which maps user space to device space.
//
// Colors are written to [image.RGBA] surfaces, which store premultiplied
// alpha.  Clip regions are represented as [image.Alpha] coverage masks,
// where a nil mask means "no clipping".
package raster
