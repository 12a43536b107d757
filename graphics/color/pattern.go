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

// PDF 2.0 sections: 8.6.6.2

// SpacePattern represents a Pattern color space.
//
// If Base is nil, the space is used for colored tiling patterns and
// shading patterns.  Otherwise the space is used for uncolored tiling
// patterns, and the color values are in the Base color space.
type SpacePattern struct {
	Base Space
}

// PatternColored is the color space for colored patterns.
var PatternColored = &SpacePattern{}

// Family returns /Pattern.
// This implements the [Space] interface.
func (s *SpacePattern) Family() pdfpaint.Name {
	return FamilyPattern
}

// Channels returns the number of color components of the underlying color
// space, or 0 for colored patterns.
// This implements the [Space] interface.
func (s *SpacePattern) Channels() int {
	if s.Base == nil {
		return 0
	}
	return s.Base.Channels()
}

func (s *SpacePattern) isSpace() {}
