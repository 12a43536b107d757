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
	"io"

	"seehuhn.de/go/pdfpaint/internal/filter"
)

// FilterInfo describes one filter of a stream's filter pipeline.
type FilterInfo struct {
	Name  Name
	Parms Dict
}

// Filters returns the filter pipeline of the stream, in the order in which
// the filters need to be removed.
func Filters(r Getter, s *Stream) ([]FilterInfo, error) {
	filterObj, err := Resolve(r, s.Dict["Filter"])
	if err != nil {
		return nil, err
	}
	parmsObj, err := Resolve(r, s.Dict["DecodeParms"])
	if err != nil {
		return nil, err
	}

	var res []FilterInfo
	switch f := filterObj.(type) {
	case nil:
		return nil, nil
	case Name:
		parms, err := GetDict(r, parmsObj)
		if err != nil {
			return nil, err
		}
		res = append(res, FilterInfo{Name: f, Parms: parms})
	case Array:
		parmsArray, _ := parmsObj.(Array)
		for i, obj := range f {
			name, err := GetName(r, obj)
			if err != nil {
				return nil, err
			}
			var parms Dict
			if i < len(parmsArray) {
				parms, err = GetDict(r, parmsArray[i])
				if err != nil {
					return nil, err
				}
			}
			res = append(res, FilterInfo{Name: name, Parms: parms})
		}
	default:
		return nil, &MalformedFileError{
			Err: fmt.Errorf("invalid /Filter entry %s", Format(filterObj)),
		}
	}
	return res, nil
}

// DecodeStream returns a reader for the decoded stream data.
// Decoding stops before the first image filter (for example DCTDecode),
// which is left for the caller to apply; the remaining image filter, if any,
// is returned.
func DecodeStream(r Getter, s *Stream) (io.ReadCloser, *FilterInfo, error) {
	if s == nil || s.R == nil {
		return nil, nil, errors.New("missing stream data")
	}

	filters, err := Filters(r, s)
	if err != nil {
		return nil, nil, err
	}

	var body io.ReadCloser = io.NopCloser(s.R)
	var closers []io.Closer
	for i, fi := range filters {
		if filter.IsImageFilter(string(fi.Name)) {
			if i != len(filters)-1 {
				return nil, nil, &MalformedFileError{
					Err: fmt.Errorf("image filter %s is not the last filter", fi.Name),
				}
			}
			return &multiCloser{body, closers}, &filters[i], nil
		}

		info := filter.Info{
			Name:   string(fi.Name),
			Params: intParams(fi.Parms),
		}
		next, err := filter.Decode(body, info)
		if err != nil {
			closeAll(closers)
			return nil, nil, err
		}
		closers = append(closers, next)
		body = next
	}
	return &multiCloser{body, closers}, nil, nil
}

func intParams(d Dict) map[string]int {
	if d == nil {
		return nil
	}
	res := make(map[string]int, len(d))
	for key, val := range d {
		switch val := val.(type) {
		case Integer:
			res[string(key)] = int(val)
		case Bool:
			if val {
				res[string(key)] = 1
			} else {
				res[string(key)] = 0
			}
		}
	}
	return res
}

type multiCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiCloser) Close() error {
	return closeAll(m.closers)
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
