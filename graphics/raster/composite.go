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
	"fmt"
	"image"
	"math"
)

// BlendMode selects how source and backdrop colors are combined.
type BlendMode uint8

// These are the supported blend modes.
const (
	Normal BlendMode = iota
	Multiply
	Screen
	Darken
	Lighten
)

func (m BlendMode) String() string {
	switch m {
	case Normal:
		return "Normal"
	case Multiply:
		return "Multiply"
	case Screen:
		return "Screen"
	case Darken:
		return "Darken"
	case Lighten:
		return "Lighten"
	default:
		return fmt.Sprintf("BlendMode(%d)", uint8(m))
	}
}

// ParseBlendMode converts a PDF blend mode name to a BlendMode.
// Unknown names map to Normal, as required for PDF readers.
func ParseBlendMode(name string) BlendMode {
	switch name {
	case "Multiply":
		return Multiply
	case "Screen":
		return Screen
	case "Darken":
		return Darken
	case "Lighten":
		return Lighten
	default:
		return Normal
	}
}

// blend computes the blend function B(cb, cs) for one channel, using
// non-premultiplied values in the range 0 to 0xffff.
func (m BlendMode) blend(cb, cs uint32) uint32 {
	switch m {
	case Multiply:
		return cb * cs / 0xffff
	case Screen:
		return cb + cs - cb*cs/0xffff
	case Darken:
		return min(cb, cs)
	case Lighten:
		return max(cb, cs)
	default:
		return cs
	}
}

// Style describes how a region is painted.
type Style struct {
	// Src gives the color at every device pixel.
	Src image.Image

	// Clip, if non-nil, restricts painting to the covered pixels.
	Clip *image.Alpha

	// Alpha is the constant opacity, in the range 0 to 1.
	Alpha float64

	Mode BlendMode
}

func (s *Style) alpha16() uint32 {
	a := s.Alpha
	if math.IsNaN(a) {
		a = 1
	}
	return uint32(min(max(a, 0), 1)*0xffff + 0.5)
}

// paintMask paints s.Src onto dst, weighted by the coverage mask, the clip
// mask and the constant alpha.
func paintMask(dst *image.RGBA, cov *image.Alpha, s *Style) {
	r := cov.Rect.Intersect(dst.Rect)
	if s.Clip != nil {
		r = r.Intersect(s.Clip.Rect)
	}
	alpha := s.alpha16()
	if r.Empty() || alpha == 0 {
		return
	}

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := uint32(cov.Pix[cov.PixOffset(x, y)])
			if c == 0 {
				continue
			}
			c = c * clipAt(s.Clip, x, y) / 255
			if c == 0 {
				continue
			}
			// weight in the range 0 to 0xffff
			w := c * 0x101 * alpha / 0xffff
			sr, sg, sb, sa := s.Src.At(x, y).RGBA()
			blendPixel(dst, x, y, sr*w/0xffff, sg*w/0xffff, sb*w/0xffff, sa*w/0xffff, s.Mode)
		}
	}
}

// blendPixel composites a premultiplied 16-bit source color onto the pixel
// (x, y) of dst.
func blendPixel(dst *image.RGBA, x, y int, sr, sg, sb, sa uint32, mode BlendMode) {
	if sa == 0 {
		return
	}
	i := dst.PixOffset(x, y)
	pix := dst.Pix[i : i+4 : i+4]
	dr := uint32(pix[0]) * 0x101
	dg := uint32(pix[1]) * 0x101
	db := uint32(pix[2]) * 0x101
	da := uint32(pix[3]) * 0x101

	if mode != Normal && da != 0 {
		// Replace the source color by the blended color where the
		// backdrop is present:
		//   cs' = (1 - ab) cs + ab B(cb, cs)
		sr = mix(sr, sa, dr, da, mode)
		sg = mix(sg, sa, dg, da, mode)
		sb = mix(sb, sa, db, da, mode)
	}

	// Porter-Duff source-over.
	k := 0xffff - sa
	pix[0] = uint8((sr + dr*k/0xffff) >> 8)
	pix[1] = uint8((sg + dg*k/0xffff) >> 8)
	pix[2] = uint8((sb + db*k/0xffff) >> 8)
	pix[3] = uint8((sa + da*k/0xffff) >> 8)
}

// mix returns the premultiplied source channel after blending with the
// backdrop channel.  All arguments are premultiplied.
func mix(cs, as, cb, ab uint32, mode BlendMode) uint32 {
	csN := cs * 0xffff / as
	cbN := cb * 0xffff / ab
	b := mode.blend(cbN, csN)
	v := ((0xffff-ab)*csN + ab*b) / 0xffff
	return v * as / 0xffff
}

// Composite paints the premultiplied layer src onto dst.  Both images
// use the same device coordinates.
func Composite(dst, src *image.RGBA, clip *image.Alpha, alpha float64, mode BlendMode) {
	s := &Style{Clip: clip, Alpha: alpha, Mode: mode}
	r := src.Rect.Intersect(dst.Rect)
	if clip != nil {
		r = r.Intersect(clip.Rect)
	}
	a := s.alpha16()
	if r.Empty() || a == 0 {
		return
	}

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i := src.PixOffset(x, y)
			if src.Pix[i+3] == 0 {
				continue
			}
			w := clipAt(clip, x, y) * 0x101 * a / 0xffff
			if w == 0 {
				continue
			}
			sr := uint32(src.Pix[i]) * 0x101 * w / 0xffff
			sg := uint32(src.Pix[i+1]) * 0x101 * w / 0xffff
			sb := uint32(src.Pix[i+2]) * 0x101 * w / 0xffff
			sa := uint32(src.Pix[i+3]) * 0x101 * w / 0xffff
			blendPixel(dst, x, y, sr, sg, sb, sa, mode)
		}
	}
}

func floor(x float64) int {
	return int(math.Floor(x))
}
