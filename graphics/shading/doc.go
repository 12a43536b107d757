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

// Package shading implements PDF shadings as sources of device pixels.
//
// Axial (type 2) and radial (type 3) shadings are supported.  Their colors
// depend on a single parameter t, so each shading samples its color
// function once into a lookup table and then maps every device pixel to an
// entry of this table.
//
// The mesh based shadings (types 4 to 7) and function based shadings
// (type 1) are not supported; [Extract] returns [ErrUnsupported] for these.
package shading
