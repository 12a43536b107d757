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

// Package filter implements the general purpose PDF stream filters.
//
// Image-specific filters (DCTDecode, CCITTFaxDecode, JPXDecode, JBIG2Decode)
// are not handled here, since they decode to pixels rather than to bytes.
package filter

import (
	"encoding/ascii85"
	"errors"
	"fmt"
	"io"

	"github.com/hhrutter/lzw"
	"github.com/klauspost/compress/zlib"
)

// Names of the supported filters.
const (
	Flate     = "FlateDecode"
	LZW       = "LZWDecode"
	ASCIIHex  = "ASCIIHexDecode"
	ASCII85   = "ASCII85Decode"
	RunLength = "RunLengthDecode"
)

// Info describes one stage of a stream's filter pipeline.
type Info struct {
	Name string

	// Params holds the integer-valued decode parameters of the filter,
	// for example "Predictor" or "EarlyChange".
	Params map[string]int
}

// ErrUnsupported is returned by [Decode] for unknown filter names.
var ErrUnsupported = errors.New("unsupported filter")

// IsImageFilter returns true for filters which decode to image data
// rather than to a byte stream.
func IsImageFilter(name string) bool {
	switch name {
	case "DCTDecode", "CCITTFaxDecode", "JPXDecode", "JBIG2Decode":
		return true
	}
	return false
}

// param returns the value of an integer parameter, or def if the
// parameter is not set.
func (info Info) param(key string, def int) int {
	if val, ok := info.Params[key]; ok {
		return val
	}
	return def
}

// Decode returns a reader which yields the data from r with the filter
// removed.
func Decode(r io.Reader, info Info) (io.ReadCloser, error) {
	switch info.Name {
	case Flate, "Fl":
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", Flate, err)
		}
		return withPredictor(zr, info)

	case LZW, "LZW":
		earlyChange := info.param("EarlyChange", 1) == 1
		lr := lzw.NewReader(r, earlyChange)
		return withPredictor(lr, info)

	case ASCIIHex, "AHx":
		return decodeASCIIHex(r), nil

	case ASCII85, "A85":
		return io.NopCloser(ascii85.NewDecoder(&ascii85Trailer{r: r})), nil

	case RunLength, "RL":
		return decodeRunLength(r), nil

	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupported, info.Name)
	}
}

func withPredictor(r io.ReadCloser, info Info) (io.ReadCloser, error) {
	p := &Predictor{
		Predictor:        info.param("Predictor", 1),
		Colors:           info.param("Colors", 1),
		BitsPerComponent: info.param("BitsPerComponent", 8),
		Columns:          info.param("Columns", 1),
	}
	if p.Predictor == 1 {
		return r, nil
	}
	pr, err := NewPredictReader(r, p)
	if err != nil {
		r.Close()
		return nil, err
	}
	return pr, nil
}

// ascii85Trailer strips the "~>" end-of-data marker, which is not understood
// by the standard library decoder.
type ascii85Trailer struct {
	r    io.Reader
	done bool
	prev byte
}

func (t *ascii85Trailer) Read(p []byte) (int, error) {
	if t.done {
		return 0, io.EOF
	}
	n, err := t.r.Read(p)
	for i := 0; i < n; i++ {
		if p[i] == '>' && t.prev == '~' {
			// drop the '~' as well, which was either written in this
			// buffer or at the end of the previous one
			if i > 0 {
				n = i - 1
			} else {
				n = 0
			}
			t.done = true
			return n, nil
		}
		t.prev = p[i]
	}
	if n > 0 && p[n-1] == '~' {
		// keep the '~' back, it may start the trailer
		n--
		if n == 0 && err == nil {
			return t.Read(p)
		}
	}
	return n, err
}
