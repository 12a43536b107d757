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
	"errors"
	"fmt"
	"io"
	"sync"

	"seehuhn.de/go/pdfpaint"
	"seehuhn.de/go/pdfpaint/function"
)

// Parser reads color spaces from a PDF file.
//
// Color spaces which are stored as indirect objects are only parsed once;
// later requests for the same reference return the same [Space] value, so
// that lazily computed state is shared.  A Parser can be used concurrently.
type Parser struct {
	r pdfpaint.Getter

	mu    sync.Mutex
	cache map[pdfpaint.Reference]Space
}

// NewParser returns a new color space parser for the given file.
func NewParser(r pdfpaint.Getter) *Parser {
	return &Parser{
		r:     r,
		cache: make(map[pdfpaint.Reference]Space),
	}
}

// maxNesting limits the depth of nested color space definitions.
const maxNesting = 4

// maxProfileSize limits the amount of ICC profile data read.
const maxProfileSize = 16 << 20

// Parse reads a color space.  The object can be a name, an array, or a
// reference to one of these.
func (p *Parser) Parse(obj pdfpaint.Object) (Space, error) {
	return p.parse(obj, 0)
}

func (p *Parser) parse(obj pdfpaint.Object, depth int) (Space, error) {
	if depth > maxNesting {
		return nil, &pdfpaint.MalformedFileError{
			Err: errors.New("color spaces nested too deeply"),
		}
	}

	ref, isRef := obj.(pdfpaint.Reference)
	if isRef {
		p.mu.Lock()
		s, ok := p.cache[ref]
		p.mu.Unlock()
		if ok {
			return s, nil
		}
	}

	s, err := p.parseDirect(obj, depth)
	if err != nil {
		if isRef {
			err = pdfpaint.Wrap(err, "color space "+ref.String())
		}
		return nil, err
	}

	if isRef {
		p.mu.Lock()
		if prev, ok := p.cache[ref]; ok {
			s = prev
		} else {
			p.cache[ref] = s
		}
		p.mu.Unlock()
	}
	return s, nil
}

func (p *Parser) parseDirect(obj pdfpaint.Object, depth int) (Space, error) {
	obj, err := pdfpaint.Resolve(p.r, obj)
	if err != nil {
		return nil, err
	}

	var family pdfpaint.Name
	var args pdfpaint.Array
	switch obj := obj.(type) {
	case pdfpaint.Name:
		family = obj
	case pdfpaint.Array:
		if len(obj) == 0 {
			return nil, &pdfpaint.MalformedFileError{Err: errors.New("empty color space array")}
		}
		family, err = pdfpaint.GetName(p.r, obj[0])
		if err != nil {
			return nil, err
		}
		args = obj[1:]
	default:
		return nil, &pdfpaint.MalformedFileError{
			Err: fmt.Errorf("invalid color space %s", pdfpaint.Format(obj)),
		}
	}

	switch family {
	case FamilyDeviceGray, "G", "DefaultGray":
		return DeviceGray, nil
	case FamilyDeviceRGB, "RGB", "DefaultRGB":
		return DeviceRGB, nil
	case FamilyDeviceCMYK, "CMYK", "DefaultCMYK", "CalCMYK":
		// CalCMYK is deprecated and treated as DeviceCMYK.
		return DeviceCMYK, nil

	case FamilyPattern:
		if len(args) == 0 {
			return PatternColored, nil
		}
		base, err := p.parse(args[0], depth+1)
		if err != nil {
			return nil, err
		}
		if base.Family() == FamilyPattern {
			return nil, &pdfpaint.MalformedFileError{Err: errors.New("invalid pattern base space")}
		}
		return &SpacePattern{Base: base}, nil

	case FamilyCalGray, FamilyCalRGB, FamilyLab:
		if len(args) < 1 {
			break
		}
		return p.parseCIE(family, args[0])

	case FamilyICCBased:
		if len(args) < 1 {
			break
		}
		return p.parseICC(args[0], depth)

	case FamilyIndexed, "I":
		if len(args) < 3 {
			break
		}
		return p.parseIndexed(args, depth)

	case FamilySeparation:
		if len(args) < 3 {
			break
		}
		name, err := pdfpaint.GetName(p.r, args[0])
		if err != nil {
			return nil, err
		}
		alt, err := p.parse(args[1], depth+1)
		if err != nil {
			return nil, err
		}
		tint := p.tintTransform(args[2])
		if tint != nil {
			if m, n := tint.Shape(); m != 1 || n != alt.Channels() {
				tint = nil
			}
		}
		s, err := Separation(name, alt, tint)
		if err != nil {
			return nil, &pdfpaint.MalformedFileError{Err: err}
		}
		return s, nil

	case FamilyDeviceN:
		if len(args) < 3 {
			break
		}
		nameArr, err := pdfpaint.GetArray(p.r, args[0])
		if err != nil {
			return nil, err
		}
		names := make([]pdfpaint.Name, len(nameArr))
		for i, obj := range nameArr {
			names[i], err = pdfpaint.GetName(p.r, obj)
			if err != nil {
				return nil, err
			}
		}
		alt, err := p.parse(args[1], depth+1)
		if err != nil {
			return nil, err
		}
		tint := p.tintTransform(args[2])
		if tint != nil {
			if m, n := tint.Shape(); m != len(names) || n != alt.Channels() {
				tint = nil
			}
		}
		var attr pdfpaint.Dict
		if len(args) > 3 {
			attr, _ = pdfpaint.GetDict(p.r, args[3])
		}
		s, err := DeviceN(names, alt, tint, attr)
		if err != nil {
			return nil, &pdfpaint.MalformedFileError{Err: err}
		}
		return s, nil

	default:
		return nil, &pdfpaint.MalformedFileError{
			Err: fmt.Errorf("unknown color space family %s", family),
		}
	}

	return nil, &pdfpaint.MalformedFileError{
		Err: fmt.Errorf("missing parameters for %s color space", family),
	}
}

func (p *Parser) parseCIE(family pdfpaint.Name, obj pdfpaint.Object) (Space, error) {
	dict, err := pdfpaint.GetDict(p.r, obj)
	if err != nil {
		return nil, err
	}
	wp, err := pdfpaint.GetFloatArray(p.r, dict["WhitePoint"])
	if err != nil {
		return nil, err
	}
	bp, err := pdfpaint.GetFloatArray(p.r, dict["BlackPoint"])
	if err != nil {
		return nil, err
	}

	var s Space
	switch family {
	case FamilyCalGray:
		gamma := 1.0
		if dict["Gamma"] != nil {
			gamma, err = pdfpaint.GetNumber(p.r, dict["Gamma"])
			if err != nil {
				return nil, err
			}
		}
		s, err = CalGray(wp, bp, gamma)
	case FamilyCalRGB:
		var gamma, matrix []float64
		gamma, err = pdfpaint.GetFloatArray(p.r, dict["Gamma"])
		if err != nil {
			return nil, err
		}
		matrix, err = pdfpaint.GetFloatArray(p.r, dict["Matrix"])
		if err != nil {
			return nil, err
		}
		s, err = CalRGB(wp, bp, gamma, matrix)
	default:
		var ranges []float64
		ranges, err = pdfpaint.GetFloatArray(p.r, dict["Range"])
		if err != nil {
			return nil, err
		}
		s, err = Lab(wp, bp, ranges)
	}
	if err != nil {
		return nil, &pdfpaint.MalformedFileError{Err: err}
	}
	return s, nil
}

func (p *Parser) parseICC(obj pdfpaint.Object, depth int) (Space, error) {
	stm, err := pdfpaint.GetStream(p.r, obj)
	if err != nil {
		return nil, err
	}
	if stm == nil {
		return nil, &pdfpaint.MalformedFileError{Err: errors.New("missing ICC profile stream")}
	}

	n, err := pdfpaint.GetInteger(p.r, stm.Dict["N"])
	if err != nil {
		return nil, err
	}
	var alt Space
	if stm.Dict["Alternate"] != nil {
		alt, err = p.parse(stm.Dict["Alternate"], depth+1)
		if err != nil || alt.Channels() != int(n) {
			pdfpaint.Logger().Debug("ignoring invalid ICC alternate color space", "err", err)
			alt = nil
		}
	}
	ranges, err := pdfpaint.GetFloatArray(p.r, stm.Dict["Range"])
	if err != nil || len(ranges) != 2*int(n) {
		ranges = nil
	}

	// A profile which cannot be read makes the color space fall back to
	// the alternate space when it is first used.
	profile, err := readAll(p.r, stm, maxProfileSize)
	if err != nil {
		pdfpaint.Logger().Debug("cannot read ICC profile", "err", err)
		profile = nil
	}

	s, err := ICCBased(int(n), profile, alt, ranges)
	if err != nil {
		return nil, &pdfpaint.MalformedFileError{Err: err}
	}
	return s, nil
}

func (p *Parser) parseIndexed(args pdfpaint.Array, depth int) (Space, error) {
	base, err := p.parse(args[0], depth+1)
	if err != nil {
		return nil, err
	}
	hiVal, err := pdfpaint.GetInteger(p.r, args[1])
	if err != nil {
		return nil, err
	}
	hiVal = max(0, min(hiVal, 255))

	lookupObj, err := pdfpaint.Resolve(p.r, args[2])
	if err != nil {
		return nil, err
	}
	var lookup []byte
	switch obj := lookupObj.(type) {
	case pdfpaint.String:
		lookup = obj
	case *pdfpaint.Stream:
		lookup, err = readAll(p.r, obj, 4*256)
		if err != nil {
			return nil, err
		}
	default:
		return nil, &pdfpaint.MalformedFileError{
			Err: fmt.Errorf("invalid Indexed lookup table %s", pdfpaint.Format(lookupObj)),
		}
	}

	s, err := Indexed(base, int(hiVal), lookup)
	if err != nil {
		return nil, &pdfpaint.MalformedFileError{Err: err}
	}
	return s, nil
}

// tintTransform reads the tint transform of a Separation or DeviceN color
// space.  Invalid functions are ignored; the tints are then used directly.
func (p *Parser) tintTransform(obj pdfpaint.Object) function.Func {
	if name, _ := obj.(pdfpaint.Name); name == "Identity" {
		return nil
	}
	f, err := function.Extract(p.r, obj)
	if err != nil {
		pdfpaint.Logger().Debug("ignoring invalid tint transform", "err", err)
		return nil
	}
	return f
}

func readAll(r pdfpaint.Getter, stm *pdfpaint.Stream, limit int64) ([]byte, error) {
	body, imgFilter, err := pdfpaint.DecodeStream(r, stm)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	if imgFilter != nil {
		return nil, &pdfpaint.MalformedFileError{
			Err: fmt.Errorf("unexpected filter %s", imgFilter.Name),
		}
	}
	return io.ReadAll(io.LimitReader(body, limit))
}
