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
	"bufio"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"golang.org/x/image/ccitt"

	"seehuhn.de/go/pdfpaint"
)

// rowSource delivers the samples of an image, one row at a time.
type rowSource interface {
	// Channels returns the number of samples per pixel, or 0 if this is
	// determined by the image color space.
	Channels() int

	// Next reads the samples of the next row into out.  On error, out is
	// filled with as many samples as were available, followed by zeros.
	Next(out []uint16) error
}

// streamRows reads an uncompressed sample stream.
type streamRows struct {
	r      *bufio.Reader
	buf    []byte
	rowLen int // bytes per row in the stream, at most len(buf)
	bpc    int
}

// newStreamRows returns a reader for rows of rowLen bytes each.  Rows
// shorter than need bytes are padded with zeros.
func newStreamRows(r io.Reader, rowLen, need, bpc int) *streamRows {
	return &streamRows{
		r:      bufio.NewReader(r),
		buf:    make([]byte, max(rowLen, need)),
		rowLen: rowLen,
		bpc:    bpc,
	}
}

func (s *streamRows) Channels() int { return 0 }

func (s *streamRows) Next(out []uint16) error {
	n, err := io.ReadFull(s.r, s.buf[:s.rowLen])
	clear(s.buf[n:])
	unpackRow(s.buf, s.bpc, out)
	return err
}

// imageRows reads the pixels of a decoded Go image, as 8-bit samples.
type imageRows struct {
	img image.Image
	n   int
	y   int
}

func newImageRows(img image.Image) *imageRows {
	n := 3
	switch img.(type) {
	case *image.Gray:
		n = 1
	case *image.CMYK:
		n = 4
	}
	return &imageRows{img: img, n: n}
}

func (s *imageRows) Channels() int { return s.n }

func (s *imageRows) Next(out []uint16) error {
	b := s.img.Bounds()
	y := b.Min.Y + s.y
	s.y++
	width := len(out) / s.n
	if y >= b.Max.Y {
		clear(out)
		return io.ErrUnexpectedEOF
	}

	switch img := s.img.(type) {
	case *image.Gray:
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := range min(width, b.Dx()) {
			out[x] = uint16(row[x])
		}
	case *image.CMYK:
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for i := range 4 * min(width, b.Dx()) {
			out[i] = uint16(row[i])
		}
	default:
		for x := range min(width, b.Dx()) {
			r, g, bb, _ := img.At(b.Min.X+x, y).RGBA()
			out[3*x] = uint16(r >> 8)
			out[3*x+1] = uint16(g >> 8)
			out[3*x+2] = uint16(bb >> 8)
		}
	}
	if width > b.Dx() {
		clear(out[s.n*b.Dx():])
	}
	return nil
}

// openRows sets up the sample source for an image stream.  The stream
// filters other than the final image filter have already been removed
// from body.
func openRows(r pdfpaint.Getter, body io.Reader, imgFilter *pdfpaint.FilterInfo, h *header) (rowSource, error) {
	n := 1
	if h.ColorSpace != nil {
		n = h.ColorSpace.Channels()
	}

	if imgFilter == nil {
		rowLen := rowBytes(h.Width, n, h.BitsPerComponent)
		return newStreamRows(body, rowLen, rowLen, h.BitsPerComponent), nil
	}

	switch imgFilter.Name {
	case "DCTDecode":
		img, err := jpeg.Decode(body)
		if err != nil {
			return nil, fmt.Errorf("DCTDecode: %w", err)
		}
		return newImageRows(img), nil

	case "CCITTFaxDecode":
		parms := imgFilter.Parms
		k, _ := pdfpaint.GetInteger(r, parms["K"])
		cols := pdfpaint.Integer(1728)
		if parms["Columns"] != nil {
			cols, _ = pdfpaint.GetInteger(r, parms["Columns"])
		}
		if cols <= 0 {
			return nil, &pdfpaint.MalformedFileError{
				Err: fmt.Errorf("CCITTFaxDecode: invalid Columns %d", cols),
			}
		}
		rows, _ := pdfpaint.GetInteger(r, parms["Rows"])
		height := int(rows)
		if height <= 0 {
			height = h.Height
		}
		blackIs1, _ := pdfpaint.GetBool(r, parms["BlackIs1"])
		align, _ := pdfpaint.GetBool(r, parms["EncodedByteAlign"])

		mode := ccitt.Group3
		if k < 0 {
			mode = ccitt.Group4
		}
		opts := &ccitt.Options{Invert: bool(blackIs1), Align: bool(align)}
		rd := ccitt.NewReader(body, ccitt.MSB, mode, int(cols), height, opts)

		return newStreamRows(rd, rowBytes(int(cols), 1, 1), rowBytes(h.Width, 1, 1), 1), nil

	default:
		return nil, fmt.Errorf("%w %s", ErrUnsupportedFilter, imgFilter.Name)
	}
}
