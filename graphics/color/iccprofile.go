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

package color

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// iccTransform converts colors using a matrix/TRC profile.
//
// For RGB profiles, each component is linearized using its tone
// reproduction curve and then mapped to XYZ using the colorant matrix.
// For gray profiles, the gray tone reproduction curve gives the luminance.
type iccTransform struct {
	curves [3]curve
	matrix [9]float64 // rows X, Y, Z; columns r, g, b
	gray   bool
}

func (t *iccTransform) convert(in []float64) RGB {
	if t.gray {
		Y := t.curves[0].eval(in[0])
		return grayToRGB(srgbGamma(Y))
	}
	r := t.curves[0].eval(in[0])
	g := t.curves[1].eval(in[1])
	b := t.curves[2].eval(in[2])
	m := &t.matrix
	X := m[0]*r + m[1]*g + m[2]*b
	Y := m[3]*r + m[4]*g + m[5]*b
	Z := m[6]*r + m[7]*g + m[8]*b
	return xyzToSRGB(X, Y, Z)
}

// parseMatrixTRC reads the tags of a matrix/TRC profile with n components
// (1 or 3) from the raw profile data.
func parseMatrixTRC(data []byte, n int) (*iccTransform, error) {
	if len(data) < 132 {
		return nil, errors.New("ICC profile too short")
	}
	if pcs := string(data[20:24]); pcs != "XYZ " {
		return nil, fmt.Errorf("unsupported profile connection space %q", pcs)
	}

	tags, err := readTagTable(data)
	if err != nil {
		return nil, err
	}

	t := &iccTransform{}
	if n == 1 {
		c, err := readCurve(data, tags, "kTRC")
		if err != nil {
			return nil, err
		}
		t.curves[0] = c
		t.gray = true
		return t, nil
	}

	for i, sig := range []string{"rXYZ", "gXYZ", "bXYZ"} {
		xyz, err := readXYZ(data, tags, sig)
		if err != nil {
			return nil, err
		}
		t.matrix[i] = xyz[0]
		t.matrix[3+i] = xyz[1]
		t.matrix[6+i] = xyz[2]
	}
	for i, sig := range []string{"rTRC", "gTRC", "bTRC"} {
		c, err := readCurve(data, tags, sig)
		if err != nil {
			return nil, err
		}
		t.curves[i] = c
	}
	return t, nil
}

type tagEntry struct {
	offset, size uint32
}

func readTagTable(data []byte) (map[string]tagEntry, error) {
	count := binary.BigEndian.Uint32(data[128:132])
	if count > 1000 || 132+12*int(count) > len(data) {
		return nil, errors.New("invalid ICC tag table")
	}
	tags := make(map[string]tagEntry, count)
	for i := range int(count) {
		pos := 132 + 12*i
		sig := string(data[pos : pos+4])
		e := tagEntry{
			offset: binary.BigEndian.Uint32(data[pos+4 : pos+8]),
			size:   binary.BigEndian.Uint32(data[pos+8 : pos+12]),
		}
		if uint64(e.offset)+uint64(e.size) > uint64(len(data)) {
			return nil, fmt.Errorf("ICC tag %q out of range", sig)
		}
		tags[sig] = e
	}
	return tags, nil
}

func tagData(data []byte, tags map[string]tagEntry, sig string) ([]byte, error) {
	e, ok := tags[sig]
	if !ok {
		return nil, fmt.Errorf("missing ICC tag %q", sig)
	}
	body := data[e.offset : e.offset+e.size]
	if len(body) < 12 {
		return nil, fmt.Errorf("ICC tag %q too short", sig)
	}
	return body, nil
}

func s15Fixed16(b []byte) float64 {
	return float64(int32(binary.BigEndian.Uint32(b))) / 65536
}

func readXYZ(data []byte, tags map[string]tagEntry, sig string) ([3]float64, error) {
	var res [3]float64
	body, err := tagData(data, tags, sig)
	if err != nil {
		return res, err
	}
	if string(body[:4]) != "XYZ " || len(body) < 20 {
		return res, fmt.Errorf("ICC tag %q: invalid XYZ data", sig)
	}
	for i := range res {
		res[i] = s15Fixed16(body[8+4*i:])
	}
	return res, nil
}

// curve is a tone reproduction curve.  If table is set, the curve is given
// by linear interpolation in the table.  Otherwise it is the parametric
// curve of the given function type: Y = (a*X+b)^g + e for X >= d and
// Y = c*X + f for X < d.
type curve struct {
	table []float64

	g, a, b, c, d, e, f float64
}

func (c *curve) eval(x float64) float64 {
	x = clamp01(x)
	if c.table != nil {
		n := len(c.table)
		if n == 1 {
			return c.table[0]
		}
		pos := x * float64(n-1)
		i := int(pos)
		if i >= n-1 {
			return c.table[n-1]
		}
		frac := pos - float64(i)
		return c.table[i]*(1-frac) + c.table[i+1]*frac
	}
	if x < c.d {
		return clamp01(c.c*x + c.f)
	}
	base := c.a*x + c.b
	if base <= 0 {
		return clamp01(c.e)
	}
	return clamp01(math.Pow(base, c.g) + c.e)
}

func readCurve(data []byte, tags map[string]tagEntry, sig string) (curve, error) {
	body, err := tagData(data, tags, sig)
	if err != nil {
		return curve{}, err
	}
	switch string(body[:4]) {
	case "curv":
		n := int(binary.BigEndian.Uint32(body[8:12]))
		if 12+2*n > len(body) {
			return curve{}, fmt.Errorf("ICC tag %q: truncated curve", sig)
		}
		switch n {
		case 0:
			return curve{g: 1, a: 1}, nil
		case 1:
			gamma := float64(binary.BigEndian.Uint16(body[12:14])) / 256
			return curve{g: gamma, a: 1}, nil
		}
		table := make([]float64, n)
		for i := range table {
			table[i] = float64(binary.BigEndian.Uint16(body[12+2*i:])) / 65535
		}
		return curve{table: table}, nil

	case "para":
		tp := binary.BigEndian.Uint16(body[8:10])
		nParams := map[uint16]int{0: 1, 1: 3, 2: 4, 3: 5, 4: 7}[tp]
		if nParams == 0 || 12+4*nParams > len(body) {
			return curve{}, fmt.Errorf("ICC tag %q: invalid parametric curve", sig)
		}
		p := make([]float64, 7)
		for i := range nParams {
			p[i] = s15Fixed16(body[12+4*i:])
		}
		c := curve{g: p[0], a: 1}
		switch tp {
		case 1: // Y = (aX+b)^g for X >= -b/a, 0 otherwise
			c.a, c.b = p[1], p[2]
			if c.a != 0 {
				c.d = -c.b / c.a
			}
		case 2: // Y = (aX+b)^g + c for X >= -b/a, c otherwise
			c.a, c.b, c.e, c.f = p[1], p[2], p[3], p[3]
			if c.a != 0 {
				c.d = -c.b / c.a
			}
		case 3:
			c.a, c.b, c.c, c.d = p[1], p[2], p[3], p[4]
		case 4:
			c.a, c.b, c.c, c.d, c.e, c.f = p[1], p[2], p[3], p[4], p[5], p[6]
		}
		return c, nil
	}
	return curve{}, fmt.Errorf("ICC tag %q: unsupported curve type %q", sig, body[:4])
}
