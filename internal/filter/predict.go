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

package filter

import (
	"errors"
	"fmt"
	"io"
)

const maxColumns = 1 << 20

// Predictor holds the parameters of the PNG and TIFF prediction functions
// which can be applied before LZW or Flate compression.
type Predictor struct {
	// Predictor is 1 (no prediction), 2 (TIFF) or 10-15 (PNG).
	Predictor int

	// Colors is the number of color components per pixel.
	Colors int

	// BitsPerComponent is one of 1, 2, 4, 8 or 16.
	BitsPerComponent int

	// Columns is the number of pixels per row.
	Columns int
}

// Validate checks that the parameters are usable.
func (p *Predictor) Validate() error {
	switch p.Predictor {
	case 1:
		return nil
	case 2, 10, 11, 12, 13, 14, 15:
		// pass
	default:
		return fmt.Errorf("invalid predictor %d", p.Predictor)
	}

	if p.Colors < 1 || p.Colors > 256 {
		return errors.New("invalid Colors value")
	}
	switch p.BitsPerComponent {
	case 1, 2, 4, 8, 16:
		// pass
	default:
		return fmt.Errorf("invalid BitsPerComponent %d", p.BitsPerComponent)
	}
	if p.Columns < 1 || p.Columns > maxColumns {
		return errors.New("invalid Columns value")
	}
	if p.Predictor == 2 && p.BitsPerComponent < 8 {
		return fmt.Errorf("TIFF predictor with %d bits per component not supported",
			p.BitsPerComponent)
	}
	return nil
}

func (p *Predictor) bytesPerPixel() int {
	return max(1, (p.Colors*p.BitsPerComponent+7)/8)
}

func (p *Predictor) bytesPerRow() int {
	return (p.Colors*p.BitsPerComponent*p.Columns + 7) / 8
}

// predictReader undoes the effect of a prediction function.
type predictReader struct {
	r    io.ReadCloser
	p    *Predictor
	bpp  int
	pngs bool

	raw  []byte // one encoded row, including the PNG tag byte
	prev []byte // previous decoded row
	cur  []byte // current decoded row
	pos  int    // read position in cur
	err  error
}

// NewPredictReader returns a reader which reverses the prediction function
// described by p.
func NewPredictReader(r io.ReadCloser, p *Predictor) (io.ReadCloser, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Predictor == 1 {
		return r, nil
	}

	n := p.bytesPerRow()
	res := &predictReader{
		r:    r,
		p:    p,
		bpp:  p.bytesPerPixel(),
		pngs: p.Predictor >= 10,
		prev: make([]byte, n),
		cur:  make([]byte, n),
	}
	if res.pngs {
		res.raw = make([]byte, n+1)
	} else {
		res.raw = make([]byte, n)
	}
	res.pos = n
	return res, nil
}

func (r *predictReader) Read(buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		if r.pos < len(r.cur) {
			k := copy(buf[total:], r.cur[r.pos:])
			r.pos += k
			total += k
			continue
		}
		if r.err != nil {
			break
		}
		r.err = r.nextRow()
	}
	if total > 0 {
		return total, nil
	}
	return 0, r.err
}

func (r *predictReader) nextRow() error {
	n, err := io.ReadFull(r.r, r.raw)
	if err == io.ErrUnexpectedEOF {
		// A truncated last row is decoded as far as possible.
		clear(r.raw[n:])
		err = nil
	} else if err != nil {
		return err
	}
	if n == 0 {
		return io.EOF
	}

	r.prev, r.cur = r.cur, r.prev
	if r.pngs {
		err = r.decodePNG(r.raw[0], r.raw[1:])
	} else {
		r.decodeTIFF(r.raw)
	}
	if err != nil {
		return err
	}

	r.pos = 0
	if n < len(r.raw) {
		keep := n
		if r.pngs {
			keep--
		}
		r.cur = r.cur[:max(keep, 0)]
		return nil
	}
	return nil
}

func (r *predictReader) decodePNG(tag byte, in []byte) error {
	cur, prev, bpp := r.cur[:len(in)], r.prev, r.bpp
	if len(prev) < len(cur) {
		prev = make([]byte, len(cur))
	}
	switch tag {
	case 0: // None
		copy(cur, in)
	case 1: // Sub
		for i := range in {
			var left byte
			if i >= bpp {
				left = cur[i-bpp]
			}
			cur[i] = in[i] + left
		}
	case 2: // Up
		for i := range in {
			cur[i] = in[i] + prev[i]
		}
	case 3: // Average
		for i := range in {
			var left int
			if i >= bpp {
				left = int(cur[i-bpp])
			}
			cur[i] = in[i] + byte((left+int(prev[i]))/2)
		}
	case 4: // Paeth
		for i := range in {
			var a, c byte
			if i >= bpp {
				a = cur[i-bpp]
				c = prev[i-bpp]
			}
			cur[i] = in[i] + paeth(a, prev[i], c)
		}
	default:
		return fmt.Errorf("invalid PNG filter type %d", tag)
	}
	return nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	default:
		return c
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func (r *predictReader) decodeTIFF(in []byte) {
	cur := r.cur[:len(in)]
	colors := r.p.Colors
	if r.p.BitsPerComponent == 16 {
		step := 2 * colors
		copy(cur, in)
		for i := step; i+1 < len(cur); i += 2 {
			prev := uint16(cur[i-step])<<8 | uint16(cur[i-step+1])
			delta := uint16(in[i])<<8 | uint16(in[i+1])
			v := prev + delta
			cur[i] = byte(v >> 8)
			cur[i+1] = byte(v)
		}
		return
	}
	for i := range in {
		if i < colors {
			cur[i] = in[i]
		} else {
			cur[i] = in[i] + cur[i-colors]
		}
	}
}

func (r *predictReader) Close() error {
	return r.r.Close()
}
