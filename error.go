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
	"strings"
)

// MalformedFileError indicates that a PDF object could not be interpreted.
// Loc, if set, describes where in the file the problem was found.
type MalformedFileError struct {
	Err error
	Loc []string
}

func (err *MalformedFileError) Error() string {
	parts := []string{"malformed PDF object"}
	if len(err.Loc) > 0 {
		parts = append(parts, " ("+strings.Join(err.Loc, ", ")+")")
	}
	if err.Err != nil {
		parts = append(parts, ": "+err.Err.Error())
	}
	return strings.Join(parts, "")
}

func (err *MalformedFileError) Unwrap() error {
	return err.Err
}

// Wrap adds location information to an error.
// If err is not a [MalformedFileError], it is returned unchanged.
func Wrap(err error, loc string) error {
	var e *MalformedFileError
	if !errors.As(err, &e) {
		return err
	}
	return &MalformedFileError{
		Err: e.Err,
		Loc: append([]string{loc}, e.Loc...),
	}
}

// IsMalformed returns true if err indicates a malformed PDF object.
func IsMalformed(err error) bool {
	var e *MalformedFileError
	return errors.As(err, &e)
}
