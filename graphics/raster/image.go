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
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"
)

// Quality selects the interpolation used for painting images.
type Quality uint8

// These are the supported image painting qualities.
const (
	// High uses bilinear interpolation into an intermediate layer.
	High Quality = iota

	// Low uses nearest neighbour sampling, one band of rows at a time.
	Low
)

// ErrOutOfMemory is returned by [DrawImage] if the memory needed for
// painting an image could not be allocated.
var ErrOutOfMemory = errors.New("out of memory while painting image")

// MaxLayerPixels limits the size of the intermediate layer used by
// [DrawImage] at high quality.
var MaxLayerPixels = 1 << 26

// lowBand is the number of rows painted at once at low quality.
const lowBand = 64

// ImageMatrix returns the affine map from the pixel grid of an image of
// the given size to device space.  The matrix m maps the unit square to
// device space, with the first image row at the top of the square.
func ImageMatrix(width, height int, m matrix.Matrix) f64.Aff3 {
	w, h := float64(width), float64(height)
	return f64.Aff3{
		m[0] / w, -m[2] / h, m[2] + m[4],
		m[1] / w, -m[3] / h, m[3] + m[5],
	}
}

// ImageBounds returns the device pixels covered by the unit square under m.
func ImageBounds(m matrix.Matrix) image.Rectangle {
	corners := [4]vec.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}
	x0, y0 := math.Inf(1), math.Inf(1)
	x1, y1 := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		q := Apply(m, c)
		x0, y0 = min(x0, q.X), min(y0, q.Y)
		x1, y1 = max(x1, q.X), max(y1, q.Y)
	}
	return image.Rect(floor(x0), floor(y0), int(math.Ceil(x1)), int(math.Ceil(y1)))
}

// DrawImage paints src onto dst, mapping the image to the unit square
// transformed by m.
//
// At high quality the image is first transformed into a layer covering
// the whole image, which is then composited using the style.  If the layer
// cannot be allocated, ErrOutOfMemory is returned and nothing is painted.
// At low quality, the layer only holds a few rows at a time.
func DrawImage(dst *image.RGBA, src image.Image, m matrix.Matrix, q Quality, s *Style) (err error) {
	r := ImageBounds(m).Intersect(MaskBounds(s.Clip, dst.Rect))
	if r.Empty() || s.alpha16() == 0 {
		return nil
	}
	aff := ImageMatrix(src.Bounds().Dx(), src.Bounds().Dy(), m)
	// The image pixel grid starts at the origin of the source bounds.
	sb := src.Bounds()
	aff[2] -= aff[0]*float64(sb.Min.X) + aff[1]*float64(sb.Min.Y)
	aff[5] -= aff[3]*float64(sb.Min.X) + aff[4]*float64(sb.Min.Y)

	if q == Low {
		// Paint in horizontal bands, to bound the memory used.
		for y := r.Min.Y; y < r.Max.Y; y += lowBand {
			strip := image.NewRGBA(image.Rect(r.Min.X, y, r.Max.X, min(y+lowBand, r.Max.Y)))
			xdraw.NearestNeighbor.Transform(strip, aff, src, sb, draw.Src, nil)
			Composite(dst, strip, s.Clip, s.Alpha, s.Mode)
		}
		return nil
	}

	if int64(r.Dx())*int64(r.Dy()) > int64(MaxLayerPixels) {
		return ErrOutOfMemory
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrOutOfMemory, p)
		}
	}()
	layer := image.NewRGBA(r)
	xdraw.BiLinear.Transform(layer, aff, src, sb, draw.Src, nil)
	Composite(dst, layer, s.Clip, s.Alpha, s.Mode)
	return nil
}

// DrawMask paints s.Src through the stencil mask given by the alpha
// channel of mask, which is mapped to the unit square transformed by m.
func DrawMask(dst *image.RGBA, mask image.Image, m matrix.Matrix, s *Style) error {
	r := ImageBounds(m).Intersect(MaskBounds(s.Clip, dst.Rect))
	if r.Empty() {
		return nil
	}
	if int64(r.Dx())*int64(r.Dy()) > int64(MaxLayerPixels) {
		return ErrOutOfMemory
	}
	aff := ImageMatrix(mask.Bounds().Dx(), mask.Bounds().Dy(), m)
	sb := mask.Bounds()
	aff[2] -= aff[0]*float64(sb.Min.X) + aff[1]*float64(sb.Min.Y)
	aff[5] -= aff[3]*float64(sb.Min.X) + aff[4]*float64(sb.Min.Y)

	cov := image.NewAlpha(r)
	xdraw.BiLinear.Transform(cov, aff, mask, sb, draw.Src, nil)
	paintMask(dst, cov, s)
	return nil
}
