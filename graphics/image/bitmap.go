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

package image

import (
	"image"
	"image/draw"
)

// Bitmap is a decoded image.
//
// Bitmaps are immutable once they have been returned by [Decode] or
// stored in a cache.
type Bitmap struct {
	Width, Height int

	// Img holds the pixels.  This is an [*image.NRGBA] if Premultiplied is
	// false, and an [*image.RGBA] otherwise.
	Img draw.Image

	// Premultiplied indicates whether the color values in Img are
	// premultiplied by alpha.
	Premultiplied bool

	// Opaque is set if every pixel has full alpha.
	Opaque bool

	// IsMask is set for stencil masks.  Only the alpha channel of a
	// stencil mask is meaningful; the color comes from the current fill
	// paint.
	IsMask bool
}

func newBitmap(width, height int) *Bitmap {
	return &Bitmap{
		Width:  width,
		Height: height,
		Img:    image.NewNRGBA(image.Rect(0, 0, width, height)),
		Opaque: true,
	}
}

// Weight returns the approximate memory used by the bitmap in bytes.
// This implements the imagecache.Weighted interface.
func (b *Bitmap) Weight() int64 {
	const overhead = 128
	return int64(b.Width)*int64(b.Height)*4 + overhead
}

// Bounds returns the pixel rectangle of the bitmap.
func (b *Bitmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}
