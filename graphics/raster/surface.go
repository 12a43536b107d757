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

package raster

import (
	"image"
	"image/draw"
)

// Surface is a raster image which can be painted on.
type Surface struct {
	Img *image.RGBA
}

// NewSurface allocates a transparent surface of the given size.
func NewSurface(width, height int) *Surface {
	return &Surface{Img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// NewSurfaceRect allocates a transparent surface covering r.
func NewSurfaceRect(r image.Rectangle) *Surface {
	return &Surface{Img: image.NewRGBA(r)}
}

// Bounds returns the pixel rectangle covered by the surface.
func (s *Surface) Bounds() image.Rectangle {
	return s.Img.Rect
}

// Clone returns a deep copy of the surface.
func (s *Surface) Clone() *Surface {
	img := image.NewRGBA(s.Img.Rect)
	copy(img.Pix, s.Img.Pix)
	return &Surface{Img: img}
}

// Fill sets every pixel of the surface to c.
func (s *Surface) Fill(c image.Image) {
	draw.Draw(s.Img, s.Img.Rect, c, image.Point{}, draw.Src)
}
