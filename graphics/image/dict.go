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
	"errors"
	"fmt"

	"seehuhn.de/go/pdfpaint"
	"seehuhn.de/go/pdfpaint/graphics/color"
)

// PDF 2.0 sections: 8.9.5

// maxPixels limits the size of decoded images.
const maxPixels = 1 << 26

// header holds the entries of an image dictionary which are needed for
// decoding the samples.
type header struct {
	Width, Height    int
	BitsPerComponent int

	// ColorSpace is nil for stencil masks.
	ColorSpace color.Space

	// Decode has two entries per color component.
	Decode []float64

	IsMask bool

	// ColorKey holds the color key masking ranges [min1 max1 ...], in raw
	// sample values.
	ColorKey []int

	// SMask and Mask refer to soft masks and explicit stencil masks.
	SMask pdfpaint.Object
	Mask  pdfpaint.Object

	Interpolate bool
}

func readHeader(r pdfpaint.Getter, spaces *color.Parser, dict pdfpaint.Dict, imgFilter *pdfpaint.FilterInfo) (*header, error) {
	if subtype, _ := pdfpaint.GetName(r, dict["Subtype"]); subtype != "" && subtype != "Image" {
		return nil, &pdfpaint.MalformedFileError{
			Err: fmt.Errorf("invalid Subtype %q for image XObject", subtype),
		}
	}

	width, err := pdfpaint.GetInteger(r, dict["Width"])
	if err != nil {
		return nil, fmt.Errorf("invalid Width: %w", err)
	}
	height, err := pdfpaint.GetInteger(r, dict["Height"])
	if err != nil {
		return nil, fmt.Errorf("invalid Height: %w", err)
	}
	if width <= 0 || height <= 0 {
		return nil, &pdfpaint.MalformedFileError{
			Err: fmt.Errorf("invalid image size %dx%d", width, height),
		}
	}
	if width > maxPixels || height > maxPixels || width*height > maxPixels {
		return nil, fmt.Errorf("image too large (%dx%d)", width, height)
	}

	h := &header{
		Width:  int(width),
		Height: int(height),
	}

	isMask, err := pdfpaint.GetBool(r, dict["ImageMask"])
	if err != nil {
		return nil, err
	}
	h.IsMask = bool(isMask)
	if interp, err := pdfpaint.GetBool(r, dict["Interpolate"]); err == nil {
		h.Interpolate = bool(interp)
	}

	bpc, err := pdfpaint.GetInteger(r, dict["BitsPerComponent"])
	if err != nil {
		return nil, err
	}
	switch {
	case h.IsMask:
		if bpc != 0 && bpc != 1 {
			return nil, &pdfpaint.MalformedFileError{
				Err: fmt.Errorf("invalid BitsPerComponent %d for image mask", bpc),
			}
		}
		bpc = 1
	case imgFilter != nil && imgFilter.Name == "CCITTFaxDecode":
		bpc = 1
	case bpc == 0 && imgFilter != nil && imgFilter.Name == "DCTDecode":
		bpc = 8
	}
	switch bpc {
	case 1, 2, 4, 8, 16:
		h.BitsPerComponent = int(bpc)
	default:
		return nil, &pdfpaint.MalformedFileError{
			Err: fmt.Errorf("invalid BitsPerComponent %d", bpc),
		}
	}

	n := 1
	if !h.IsMask {
		if dict["ColorSpace"] == nil {
			return nil, &pdfpaint.MalformedFileError{Err: errors.New("missing image color space")}
		}
		cs, err := spaces.Parse(dict["ColorSpace"])
		if err != nil {
			return nil, err
		}
		if cs.Family() == color.FamilyPattern {
			return nil, &pdfpaint.MalformedFileError{Err: errors.New("Pattern color space in image")}
		}
		h.ColorSpace = cs
		n = cs.Channels()
	}

	decode, err := pdfpaint.GetFloatArray(r, dict["Decode"])
	if err != nil || len(decode) != 2*n {
		decode = DefaultDecode(h.ColorSpace, h.BitsPerComponent)
	}
	h.Decode = decode

	if h.IsMask {
		return h, nil
	}

	h.SMask = dict["SMask"]
	maskObj, err := pdfpaint.Resolve(r, dict["Mask"])
	if err != nil {
		return nil, err
	}
	switch mask := maskObj.(type) {
	case pdfpaint.Array:
		if len(mask) != 2*n {
			break
		}
		key := make([]int, len(mask))
		for i, obj := range mask {
			v, err := pdfpaint.GetInteger(r, obj)
			if err != nil {
				return nil, err
			}
			key[i] = int(v)
		}
		h.ColorKey = key
	case *pdfpaint.Stream:
		h.Mask = dict["Mask"]
	}

	return h, nil
}

// DefaultDecode returns the default Decode array for an image with the
// given color space and bits per component.  The returned array has two
// entries [Dmin Dmax] for each channel.  For a nil color space, the result
// is the default Decode array of a stencil mask.
func DefaultDecode(cs color.Space, bpc int) []float64 {
	if cs == nil {
		return []float64{0, 1}
	}
	if _, isIndexed := cs.(*color.SpaceIndexed); isIndexed {
		return []float64{0, float64(int(1)<<bpc - 1)}
	}
	return color.ComponentRanges(cs)
}
