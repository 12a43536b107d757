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

// Package image decodes PDF image XObjects into bitmaps.
//
// [Decode] converts a single image stream, applying the color space,
// the Decode array and any soft mask.  A [Pipeline] manages the decoding
// of all images of a file: it produces the variants selected by a
// [Policy], stores the results in a shared cache and runs the work on a
// bounded pool of goroutines.
package image
