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
	"bufio"
	"fmt"
	"io"
)

func decodeRunLength(r io.Reader) io.ReadCloser {
	return &rlReader{br: bufio.NewReader(r)}
}

type rlReader struct {
	br      *bufio.Reader
	err     error
	literal bool
	count   int
	value   byte
}

func (r *rlReader) Read(p []byte) (n int, err error) {
	for len(p) > 0 {
		if r.count > 0 {
			k := min(r.count, len(p))
			if r.literal {
				k, err = io.ReadFull(r.br, p[:k])
				if err != nil {
					r.err = io.ErrUnexpectedEOF
				}
			} else {
				for i := range k {
					p[i] = r.value
				}
			}
			n += k
			r.count -= k
			p = p[k:]
			if r.err != nil {
				break
			}
			continue
		}
		if r.err != nil {
			break
		}

		length, err := r.br.ReadByte()
		if err != nil {
			r.err = err
			break
		}
		switch {
		case length == 128: // end of data
			r.err = io.EOF
		case length < 128:
			r.count = int(length) + 1
			r.literal = true
		default:
			b, err := r.br.ReadByte()
			if err != nil {
				r.err = io.ErrUnexpectedEOF
				break
			}
			r.count = 257 - int(length)
			r.literal = false
			r.value = b
		}
	}

	if n > 0 {
		return n, nil
	}
	return 0, r.err
}

func (r *rlReader) Close() error {
	return nil
}

func decodeASCIIHex(r io.Reader) io.ReadCloser {
	return &hexReader{br: bufio.NewReader(r)}
}

type hexReader struct {
	br  *bufio.Reader
	err error
}

func (r *hexReader) Read(p []byte) (n int, err error) {
	var high byte
	haveHigh := false
	for n < len(p) && r.err == nil {
		c, err := r.br.ReadByte()
		if err == io.EOF {
			// a missing '>' is tolerated
			r.err = io.EOF
		} else if err != nil {
			r.err = err
		}
		if r.err != nil {
			break
		}

		var b byte
		switch {
		case c >= '0' && c <= '9':
			b = c - '0'
		case c >= 'A' && c <= 'F':
			b = c - 'A' + 10
		case c >= 'a' && c <= 'f':
			b = c - 'a' + 10
		case c == 0 || c == 9 || c == 10 || c == 12 || c == 13 || c == 32:
			continue
		case c == '>':
			r.err = io.EOF
			continue
		default:
			r.err = fmt.Errorf("invalid hex character %q", c)
			continue
		}

		if haveHigh {
			p[n] = high<<4 | b
			n++
			haveHigh = false
		} else {
			high = b
			haveHigh = true
		}
	}
	if haveHigh {
		// An odd number of digits is completed with a zero.
		p[n] = high << 4
		n++
	}

	if n > 0 {
		return n, nil
	}
	return 0, r.err
}

func (r *hexReader) Close() error {
	return nil
}
