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
	"fmt"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Policy selects which variant of an image is produced.
type Policy uint8

// These are the supported image variants.
const (
	// Native keeps the image at its source resolution.
	Native Policy = iota

	// FixedScale shrinks wide images by a fixed factor, chosen by the
	// image width.
	FixedScale

	// Smooth shrinks large images with a smooth resampling filter, by a
	// factor chosen by the larger of width and height.
	Smooth
)

func (p Policy) String() string {
	switch p {
	case Native:
		return "native"
	case FixedScale:
		return "fixed"
	case Smooth:
		return "smooth"
	default:
		return fmt.Sprintf("Policy(%d)", uint8(p))
	}
}

// ParsePolicy converts a policy name, as returned by [Policy.String], to a
// Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "native", "":
		return Native, nil
	case "fixed":
		return FixedScale, nil
	case "smooth":
		return Smooth, nil
	}
	return Native, fmt.Errorf("unknown image scaling policy %q", s)
}

type breakpoint struct {
	limit int
	scale float64
}

// fixedScaleSteps is keyed by the image width.  Widths of at least limit
// use the given scale.
var fixedScaleSteps = []breakpoint{
	{1800, 0.5},
	{1000, 0.75},
}

// smoothSteps is keyed by the larger of width and height.  Sizes up to
// limit use the given scale; larger images use the scale of the last entry.
var smoothSteps = []breakpoint{
	{500, 1},
	{1000, 0.75},
	{1500, 0.6},
	{3000, 0.5},
	{math.MaxInt, 0.35},
}

// Scale returns the factor by which an image of the given size is shrunk.
// The target is the size of the image on the output device; it may be
// zero if unknown.  Smooth scaling never shrinks the image below the
// target size.
func (p Policy) Scale(width, height int, target image.Point) float64 {
	switch p {
	case FixedScale:
		for _, bp := range fixedScaleSteps {
			if width >= bp.limit {
				return bp.scale
			}
		}
	case Smooth:
		size := max(width, height)
		scale := 1.0
		for _, bp := range smoothSteps {
			if size <= bp.limit {
				scale = bp.scale
				break
			}
		}
		if target.X > 0 && width > 0 {
			scale = max(scale, float64(target.X)/float64(width))
		}
		if target.Y > 0 && height > 0 {
			scale = max(scale, float64(target.Y)/float64(height))
		}
		return min(scale, 1)
	}
	return 1
}

// Resample returns the variant of bm selected by the policy.  If no
// scaling is needed, bm itself is returned.
func Resample(bm *Bitmap, p Policy, target image.Point) *Bitmap {
	scale := p.Scale(bm.Width, bm.Height, target)
	if scale >= 1 {
		return bm
	}
	w := max(int(math.Round(float64(bm.Width)*scale)), 1)
	h := max(int(math.Round(float64(bm.Height)*scale)), 1)
	if w == bm.Width && h == bm.Height {
		return bm
	}

	var interp xdraw.Interpolator = xdraw.ApproxBiLinear
	if p == Smooth {
		interp = xdraw.CatmullRom
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	interp.Scale(dst, dst.Bounds(), bm.Img, bm.Img.Bounds(), xdraw.Src, nil)

	return &Bitmap{
		Width:         w,
		Height:        h,
		Img:           dst,
		Premultiplied: true,
		Opaque:        bm.Opaque,
		IsMask:        bm.IsMask,
	}
}
