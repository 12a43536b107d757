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

package pdfpaint

import (
	"errors"
	"fmt"
)

// Getter gives access to the indirect objects of a PDF file.
type Getter interface {
	Get(Reference) (Object, error)
}

// maxIndirection is the maximal length of a chain of references which
// Resolve will follow.
const maxIndirection = 16

// Resolve resolves references to indirect objects.
//
// If obj is a [Reference], the function reads the corresponding object from
// the file and returns the result.  If obj is not a [Reference], it is
// returned unchanged.  The function recursively follows chains of references
// until it resolves to a non-reference object.
//
// If a reference loop is encountered, the function returns an error of type
// [MalformedFileError].
func Resolve(r Getter, obj Object) (Object, error) {
	origObj := obj

	count := 0
	for {
		ref, isReference := obj.(Reference)
		if !isReference {
			break
		}
		count++
		if count > maxIndirection {
			return nil, &MalformedFileError{
				Err: errors.New("too many levels of indirection"),
				Loc: []string{"object " + origObj.(Reference).String()},
			}
		}
		if r == nil {
			return nil, &MalformedFileError{
				Err: errors.New("cannot resolve reference without a Getter"),
				Loc: []string{"object " + ref.String()},
			}
		}

		var err error
		obj, err = r.Get(ref)
		if err != nil {
			return nil, err
		}
	}

	return obj, nil
}

func resolveAndCast[T Object](r Getter, obj Object) (x T, err error) {
	obj, err = Resolve(r, obj)
	if err != nil {
		return x, err
	}

	if obj == nil {
		return x, nil
	}

	var isCorrectType bool
	x, isCorrectType = obj.(T)
	if isCorrectType {
		return x, nil
	}

	return x, &MalformedFileError{
		Err: fmt.Errorf("expected %T but got %T", x, obj),
	}
}

// Helper functions for getting objects of a specific type.  Each of these
// functions calls Resolve on the object before attempting to convert it to the
// desired type.  If the object is `null`, a zero object is returned without
// error.  If the object is of the wrong type, an error is returned.
//
// The signature of these functions is
//
//	func GetT(r Getter, obj Object) (x T, err error)
//
// where T is the type of the object to be returned.
var (
	GetArray   = resolveAndCast[Array]
	GetBool    = resolveAndCast[Bool]
	GetDict    = resolveAndCast[Dict]
	GetInteger = resolveAndCast[Integer]
	GetName    = resolveAndCast[Name]
	GetStream  = resolveAndCast[*Stream]
	GetString  = resolveAndCast[String]
)

// GetNumber is a helper function for reading numeric values from a PDF file.
// This resolves indirect references and makes sure the resulting object is an
// Integer or a Real.
func GetNumber(r Getter, obj Object) (float64, error) {
	obj, err := Resolve(r, obj)
	if err != nil {
		return 0, err
	}
	switch x := obj.(type) {
	case Integer:
		return float64(x), nil
	case Real:
		return float64(x), nil
	case nil:
		return 0, nil
	default:
		return 0, &MalformedFileError{
			Err: fmt.Errorf("expected number but got %T", obj),
		}
	}
}

// GetFloatArray resolves an array of numbers.
// If the object is null, nil is returned.
func GetFloatArray(r Getter, obj Object) ([]float64, error) {
	a, err := GetArray(r, obj)
	if err != nil || a == nil {
		return nil, err
	}
	res := make([]float64, len(a))
	for i, elem := range a {
		res[i], err = GetNumber(r, elem)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// GetRectangle resolves a PDF rectangle, given as an array of four numbers.
// The corners are normalized so that LLx <= URx and LLy <= URy.
// If the object is null, ok is false.
func GetRectangle(r Getter, obj Object) (llx, lly, urx, ury float64, ok bool, err error) {
	a, err := GetFloatArray(r, obj)
	if err != nil || a == nil {
		return 0, 0, 0, 0, false, err
	}
	if len(a) != 4 {
		return 0, 0, 0, 0, false, &MalformedFileError{
			Err: fmt.Errorf("rectangle has %d elements instead of 4", len(a)),
		}
	}
	llx, urx = min(a[0], a[2]), max(a[0], a[2])
	lly, ury = min(a[1], a[3]), max(a[1], a[3])
	return llx, lly, urx, ury, true, nil
}
