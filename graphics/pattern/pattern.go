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

package pattern

import (
	"seehuhn.de/go/pdfpaint/graphics/shapes"
)

// Pattern is a PDF pattern.
type Pattern interface {
	shapes.Paint

	// PatternType returns 1 for tiling patterns and 2 for shading
	// patterns.
	PatternType() int

	// PaintType returns 1 for colored patterns and 2 for uncolored
	// patterns.
	PaintType() int
}

var (
	_ Pattern = (*Type1)(nil)
	_ Pattern = (*Type2)(nil)
)
