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

// Package pdfpaint provides the PDF object model used by the page painting
// engine.
//
// The objects of a PDF file are represented by Go types implementing the
// [Object] interface: [Bool], [Integer], [Real], [String], [Name], [Array],
// [Dict], [*Stream] and [Reference].  Indirect objects are looked up through
// a [Getter]; [Store] is a simple in-memory implementation.
//
// The painting engine itself lives in the sub-packages:
//
//   - graphics/color resolves colors in all PDF color spaces to RGB,
//   - graphics/image decodes image XObjects, optionally in the background,
//   - graphics/imagecache holds decoded images in a memory-bounded cache,
//   - graphics/shapes replays paint programs onto a raster surface,
//   - graphics/pattern provides tiling and shading patterns,
//   - render ties everything together.
package pdfpaint
