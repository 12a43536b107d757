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
	"context"
	"errors"
	"fmt"
	"image"

	"seehuhn.de/go/pdfpaint"
	"seehuhn.de/go/pdfpaint/graphics/color"
)

var (
	// ErrCancelled is returned by [Decode] if the context is cancelled
	// before decoding is complete.
	ErrCancelled = errors.New("image decoding cancelled")

	// ErrUnsupportedFilter indicates an image compression method which
	// cannot be decoded.
	ErrUnsupportedFilter = errors.New("unsupported image filter")
)

func cancelled(err error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, err)
}

// Decode reads an image XObject and converts it to a bitmap.
//
// Soft masks, explicit masks and color key masking are applied to the
// alpha channel.  Stencil masks result in a bitmap with IsMask set.
// The context is checked between rows; if it is cancelled, Decode
// returns an error wrapping [ErrCancelled].
func Decode(ctx context.Context, r pdfpaint.Getter, spaces *color.Parser, obj pdfpaint.Object) (*Bitmap, error) {
	h, rows, closeFn, err := open(r, spaces, obj)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var bm *Bitmap
	if h.IsMask {
		bm, err = decodeStencil(ctx, h, rows)
	} else {
		bm, err = decodeColor(ctx, h, rows)
	}
	if err != nil {
		return nil, err
	}

	alphaObj, soft := h.SMask, true
	if alphaObj == nil {
		alphaObj, soft = h.Mask, false
	}
	if alphaObj != nil {
		alpha, err := decodeAlpha(ctx, r, spaces, alphaObj, soft)
		if errors.Is(err, ErrCancelled) {
			return nil, err
		} else if err != nil {
			// A broken mask does not prevent the image from being shown.
			pdfpaint.Logger().Debug("ignoring invalid image mask", "err", err)
		} else {
			applyAlpha(bm, alpha)
		}
	}

	return bm, nil
}

func open(r pdfpaint.Getter, spaces *color.Parser, obj pdfpaint.Object) (*header, rowSource, func() error, error) {
	stm, err := pdfpaint.GetStream(r, obj)
	if err != nil {
		return nil, nil, nil, err
	}
	if stm == nil {
		return nil, nil, nil, &pdfpaint.MalformedFileError{Err: errors.New("missing image stream")}
	}

	body, imgFilter, err := pdfpaint.DecodeStream(r, stm)
	if err != nil {
		return nil, nil, nil, err
	}
	h, err := readHeader(r, spaces, stm.Dict, imgFilter)
	if err != nil {
		body.Close()
		return nil, nil, nil, err
	}
	rows, err := openRows(r, body, imgFilter, h)
	if err != nil {
		body.Close()
		return nil, nil, nil, err
	}
	return h, rows, body.Close, nil
}

// readRows calls fn for every row of samples.  Missing data at the end of
// the image is treated as zero samples.
func readRows(ctx context.Context, h *header, rows rowSource, n int, fn func(y int, samples []uint16)) error {
	samples := make([]uint16, h.Width*n)
	truncated := false
	for y := range h.Height {
		if err := ctx.Err(); err != nil {
			return cancelled(err)
		}
		if !truncated {
			err := rows.Next(samples)
			if err != nil && y == 0 {
				return fmt.Errorf("reading image data: %w", err)
			} else if err != nil {
				pdfpaint.Logger().Debug("image data truncated",
					"row", y, "height", h.Height, "err", err)
				truncated = true
			}
		} else {
			clear(samples)
		}
		fn(y, samples)
	}
	return nil
}

func decodeColor(ctx context.Context, h *header, rows rowSource) (*Bitmap, error) {
	cs := h.ColorSpace
	decode := h.Decode
	n := cs.Channels()
	bpc := h.BitsPerComponent
	if m := rows.Channels(); m != 0 {
		// The sample layout is determined by the compressed data.
		bpc = 8
		if m != n {
			pdfpaint.Logger().Debug("image color space does not match data",
				"space", cs.Family(), "channels", m)
			cs = deviceSpace(m)
			n = m
			decode = DefaultDecode(cs, bpc)
		}
	}

	bm := newBitmap(h.Width, h.Height)
	img := bm.Img.(*image.NRGBA)
	conv := newConverter(cs, decode, bpc)
	err := readRows(ctx, h, rows, n, func(y int, samples []uint16) {
		pix := img.Pix[y*img.Stride:]
		for x := range h.Width {
			s := samples[x*n : (x+1)*n]
			c := conv.convert(s).NRGBA()
			pix[4*x] = c.R
			pix[4*x+1] = c.G
			pix[4*x+2] = c.B
			if h.ColorKey != nil && colorKeyMatch(s, h.ColorKey) {
				pix[4*x+3] = 0
				bm.Opaque = false
			} else {
				pix[4*x+3] = 0xff
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return bm, nil
}

func deviceSpace(n int) color.Space {
	switch n {
	case 1:
		return color.DeviceGray
	case 4:
		return color.DeviceCMYK
	default:
		return color.DeviceRGB
	}
}

// decodeStencil decodes a stencil mask.  Painted pixels get full alpha.
func decodeStencil(ctx context.Context, h *header, rows rowSource) (*Bitmap, error) {
	plane, err := readPlane(ctx, h, rows)
	if err != nil {
		return nil, err
	}
	bm := newBitmap(h.Width, h.Height)
	bm.IsMask = true
	bm.Opaque = false
	img := bm.Img.(*image.NRGBA)
	for i, a := range plane {
		img.Pix[4*i+3] = a
	}
	return bm, nil
}

// readPlane reads a single channel image into a slice of alpha values.
// For stencil masks, painted samples give 0xff and all other samples give
// 0.  For soft masks, the gray value is used.
func readPlane(ctx context.Context, h *header, rows rowSource) ([]uint8, error) {
	if h.ColorSpace != nil && h.ColorSpace.Channels() != 1 {
		return nil, &pdfpaint.MalformedFileError{
			Err: fmt.Errorf("mask has %d color components", h.ColorSpace.Channels()),
		}
	}
	if rows.Channels() > 1 {
		return nil, &pdfpaint.MalformedFileError{Err: errors.New("mask data has color")}
	}

	bpc := h.BitsPerComponent
	if rows.Channels() != 0 {
		bpc = 8
	}
	lo, hi := h.Decode[0], h.Decode[1]
	maxVal := float64(int(1)<<bpc - 1)

	// all possible values, at most 64k entries
	table := make([]uint8, 1<<bpc)
	for v := range table {
		t := lo + float64(v)*(hi-lo)/maxVal
		if h.IsMask {
			if t < 0.5 {
				table[v] = 0xff
			}
		} else {
			table[v] = uint8(min(max(t, 0), 1)*0xff + 0.5)
		}
	}

	plane := make([]uint8, h.Width*h.Height)
	err := readRows(ctx, h, rows, 1, func(y int, samples []uint16) {
		row := plane[y*h.Width : (y+1)*h.Width]
		for x, s := range samples {
			row[x] = table[s]
		}
	})
	if err != nil {
		return nil, err
	}
	return plane, nil
}

// alphaPlane is a decoded soft mask or explicit mask.
type alphaPlane struct {
	width, height int
	pix           []uint8
}

func decodeAlpha(ctx context.Context, r pdfpaint.Getter, spaces *color.Parser, obj pdfpaint.Object, soft bool) (*alphaPlane, error) {
	h, rows, closeFn, err := open(r, spaces, obj)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	if soft == h.IsMask {
		return nil, &pdfpaint.MalformedFileError{Err: errors.New("wrong type of mask image")}
	}
	pix, err := readPlane(ctx, h, rows)
	if err != nil {
		return nil, err
	}
	return &alphaPlane{width: h.Width, height: h.Height, pix: pix}, nil
}

// applyAlpha multiplies the alpha channel of bm by the mask.  If the sizes
// differ, the mask is scaled to the size of the image by nearest neighbor
// sampling.
func applyAlpha(bm *Bitmap, mask *alphaPlane) {
	img := bm.Img.(*image.NRGBA)
	for y := range bm.Height {
		my := y * mask.height / bm.Height
		pix := img.Pix[y*img.Stride:]
		for x := range bm.Width {
			mx := x * mask.width / bm.Width
			a := mask.pix[my*mask.width+mx]
			old := pix[4*x+3]
			if a != 0xff {
				pix[4*x+3] = uint8((uint16(old)*uint16(a) + 127) / 255)
			}
		}
	}
	bm.Opaque = isOpaque(img)
}

func isOpaque(img *image.NRGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0xff {
			return false
		}
	}
	return true
}
