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

package function

import (
	"errors"
	"fmt"
	"io"

	"seehuhn.de/go/pdfpaint"
)

// maxDepth limits the nesting of stitching functions.
const maxDepth = 8

// Extract reads a function from a PDF file.
//
// The object can be a function dictionary, a function stream, or an array of
// functions with one output each.  In the latter case, the result is an
// [Array].
func Extract(r pdfpaint.Getter, obj pdfpaint.Object) (Func, error) {
	return extract(r, obj, 0)
}

func extract(r pdfpaint.Getter, obj pdfpaint.Object, depth int) (Func, error) {
	if depth > maxDepth {
		return nil, &pdfpaint.MalformedFileError{
			Err: errors.New("functions nested too deeply"),
		}
	}

	obj, err := pdfpaint.Resolve(r, obj)
	if err != nil {
		return nil, err
	}

	var dict pdfpaint.Dict
	var stm *pdfpaint.Stream
	switch obj := obj.(type) {
	case pdfpaint.Dict:
		dict = obj
	case *pdfpaint.Stream:
		dict = obj.Dict
		stm = obj
	case pdfpaint.Array:
		res := make(Array, len(obj))
		for i, elem := range obj {
			f, err := extract(r, elem, depth+1)
			if err != nil {
				return nil, err
			}
			if _, n := f.Shape(); n != 1 {
				return nil, &pdfpaint.MalformedFileError{
					Err: fmt.Errorf("function %d in array has %d outputs", i, n),
				}
			}
			res[i] = f
		}
		if len(res) == 0 {
			return nil, &pdfpaint.MalformedFileError{Err: errors.New("empty function array")}
		}
		return res, nil
	case nil:
		return nil, &pdfpaint.MalformedFileError{Err: errors.New("missing function")}
	default:
		return nil, &pdfpaint.MalformedFileError{
			Err: fmt.Errorf("expected function dictionary or stream, got %T", obj),
		}
	}

	tp, err := pdfpaint.GetInteger(r, dict["FunctionType"])
	if err != nil {
		return nil, err
	}

	var f interface {
		Func
		validate() error
	}
	switch tp {
	case 0:
		f, err = extractType0(r, dict, stm)
	case 2:
		f, err = extractType2(r, dict)
	case 3:
		f, err = extractType3(r, dict, depth)
	case 4:
		f, err = extractType4(r, dict, stm)
	default:
		return nil, &pdfpaint.MalformedFileError{
			Err: fmt.Errorf("unsupported function type %d", tp),
		}
	}
	if err != nil {
		return nil, err
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func extractType0(r pdfpaint.Getter, dict pdfpaint.Dict, stm *pdfpaint.Stream) (*Type0, error) {
	if stm == nil {
		return nil, invalid(0, "Samples", "function must be a stream")
	}
	f := &Type0{}
	var err error
	if f.Domain, err = pdfpaint.GetFloatArray(r, dict["Domain"]); err != nil {
		return nil, err
	}
	if f.Range, err = pdfpaint.GetFloatArray(r, dict["Range"]); err != nil {
		return nil, err
	}
	if f.Encode, err = pdfpaint.GetFloatArray(r, dict["Encode"]); err != nil {
		return nil, err
	}
	if f.Decode, err = pdfpaint.GetFloatArray(r, dict["Decode"]); err != nil {
		return nil, err
	}
	bps, err := pdfpaint.GetInteger(r, dict["BitsPerSample"])
	if err != nil {
		return nil, err
	}
	f.BitsPerSample = int(bps)
	size, err := pdfpaint.GetArray(r, dict["Size"])
	if err != nil {
		return nil, err
	}
	for _, s := range size {
		n, err := pdfpaint.GetInteger(r, s)
		if err != nil {
			return nil, err
		}
		f.Size = append(f.Size, int(n))
	}

	f.Samples, err = readStream(r, stm)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func extractType2(r pdfpaint.Getter, dict pdfpaint.Dict) (*Type2, error) {
	domain, err := pdfpaint.GetFloatArray(r, dict["Domain"])
	if err != nil {
		return nil, err
	}
	if len(domain) != 2 {
		return nil, invalid(2, "Domain", "must have 2 elements")
	}
	f := &Type2{XMin: domain[0], XMax: domain[1], C0: []float64{0}, C1: []float64{1}}
	if f.Range, err = pdfpaint.GetFloatArray(r, dict["Range"]); err != nil {
		return nil, err
	}
	if c0, err := pdfpaint.GetFloatArray(r, dict["C0"]); err != nil {
		return nil, err
	} else if c0 != nil {
		f.C0 = c0
	}
	if c1, err := pdfpaint.GetFloatArray(r, dict["C1"]); err != nil {
		return nil, err
	} else if c1 != nil {
		f.C1 = c1
	}
	if f.N, err = pdfpaint.GetNumber(r, dict["N"]); err != nil {
		return nil, err
	}
	return f, nil
}

func extractType3(r pdfpaint.Getter, dict pdfpaint.Dict, depth int) (*Type3, error) {
	domain, err := pdfpaint.GetFloatArray(r, dict["Domain"])
	if err != nil {
		return nil, err
	}
	if len(domain) != 2 {
		return nil, invalid(3, "Domain", "must have 2 elements")
	}
	f := &Type3{XMin: domain[0], XMax: domain[1]}
	if f.Range, err = pdfpaint.GetFloatArray(r, dict["Range"]); err != nil {
		return nil, err
	}
	if f.Bounds, err = pdfpaint.GetFloatArray(r, dict["Bounds"]); err != nil {
		return nil, err
	}
	if f.Encode, err = pdfpaint.GetFloatArray(r, dict["Encode"]); err != nil {
		return nil, err
	}
	fns, err := pdfpaint.GetArray(r, dict["Functions"])
	if err != nil {
		return nil, err
	}
	for _, obj := range fns {
		fi, err := extract(r, obj, depth+1)
		if err != nil {
			return nil, err
		}
		f.Functions = append(f.Functions, fi)
	}
	return f, nil
}

func extractType4(r pdfpaint.Getter, dict pdfpaint.Dict, stm *pdfpaint.Stream) (*Type4, error) {
	if stm == nil {
		return nil, invalid(4, "Program", "function must be a stream")
	}
	f := &Type4{}
	var err error
	if f.Domain, err = pdfpaint.GetFloatArray(r, dict["Domain"]); err != nil {
		return nil, err
	}
	if f.Range, err = pdfpaint.GetFloatArray(r, dict["Range"]); err != nil {
		return nil, err
	}
	body, err := readStream(r, stm)
	if err != nil {
		return nil, err
	}
	f.Program = string(body)
	return f, nil
}

// maxStreamSize limits the amount of data read for a single function.
const maxStreamSize = 64 << 20

func readStream(r pdfpaint.Getter, stm *pdfpaint.Stream) ([]byte, error) {
	body, imgFilter, err := pdfpaint.DecodeStream(r, stm)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	if imgFilter != nil {
		return nil, &pdfpaint.MalformedFileError{
			Err: fmt.Errorf("unexpected filter %s in function stream", imgFilter.Name),
		}
	}
	data, err := io.ReadAll(io.LimitReader(body, maxStreamSize))
	if err != nil {
		return nil, pdfpaint.Wrap(err, "function stream")
	}
	return data, nil
}
