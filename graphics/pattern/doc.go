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

// Package pattern implements PDF patterns as paint sources.
// Two pattern types are supported:
//   - Tiling patterns (PatternType 1).
//     These patterns repeat a pattern cell periodically in the plane.
//     Colored tiling patterns (PaintType 1) specify their colors as part
//     of the cell; uncolored ones (PaintType 2) are painted in the color
//     given when the pattern is used, see [Type1.Tint].
//   - Shading patterns (PatternType 2).
//     These patterns are non-repeating,
//     the color is given by a shading object.
//
// Both types implement the [seehuhn.de/go/pdfpaint/graphics/shapes.Paint]
// interface.  The cell contents of a tiling pattern are described by a
// shapes program, which is built on first use.
package pattern
