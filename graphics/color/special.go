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
	"math"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"seehuhn.de/go/pdfpaint"
	"seehuhn.de/go/pdfpaint/function"
)

// == Indexed ================================================================

// PDF 2.0 sections: 8.6.6.3

// SpaceIndexed represents an indexed color space.
//
// Indexed colors have a single component t in the range [0, 1], which
// selects the palette entry round(t*HiVal).  A palette index i thus
// corresponds to the component value i/HiVal.
type SpaceIndexed struct {
	Base  Space
	HiVal int

	// Lookup contains the palette, with Base.Channels() bytes per entry.
	Lookup []byte

	lutOnce sync.Once
	lut     []RGB
}

// Indexed returns a new indexed color space.
//
// The palette must contain between 1 and 256 entries.  If lookup is shorter
// than required, the missing bytes are taken to be zero.
func Indexed(base Space, hiVal int, lookup []byte) (*SpaceIndexed, error) {
	if base == nil {
		return nil, errors.New("Indexed: missing base color space")
	}
	switch base.Family() {
	case FamilyIndexed, FamilyPattern:
		return nil, fmt.Errorf("Indexed: invalid base color space %s", base.Family())
	}
	if hiVal < 0 || hiVal > 255 {
		return nil, fmt.Errorf("Indexed: invalid hival %d", hiVal)
	}

	need := base.Channels() * (hiVal + 1)
	if len(lookup) < need {
		padded := make([]byte, need)
		copy(padded, lookup)
		lookup = padded
	}
	return &SpaceIndexed{
		Base:   base,
		HiVal:  hiVal,
		Lookup: lookup[:need],
	}, nil
}

// Family returns /Indexed.
// This implements the [Space] interface.
func (s *SpaceIndexed) Family() pdfpaint.Name {
	return FamilyIndexed
}

// Channels returns 1.
// This implements the [Space] interface.
func (s *SpaceIndexed) Channels() int {
	return 1
}

func (s *SpaceIndexed) isSpace() {}

// Color returns palette entry i.  The index is clamped to [0, HiVal].
func (s *SpaceIndexed) Color(i int) RGB {
	lut := s.palette()
	return lut[max(0, min(i, s.HiVal))]
}

func (s *SpaceIndexed) resolve(t float64) RGB {
	if math.IsNaN(t) {
		t = 0
	}
	return s.Color(int(math.Round(t * float64(s.HiVal))))
}

// palette returns the RGB values of all palette entries.  The table is
// computed on first use.
func (s *SpaceIndexed) palette() []RGB {
	s.lutOnce.Do(func() {
		n := s.Base.Channels()
		lo, hi := componentRanges(s.Base)
		lut := make([]RGB, s.HiVal+1)
		comps := make([]float64, n)
		for i := range lut {
			for j := range n {
				b := float64(s.Lookup[i*n+j])
				comps[j] = lo[j] + b/255*(hi[j]-lo[j])
			}
			lut[i] = Resolve(s.Base, comps)
		}
		s.lut = lut
	})
	return s.lut
}

// componentRanges returns the natural ranges of the color components,
// which are used to decode palette bytes and image samples.
func componentRanges(s Space) (lo, hi []float64) {
	n := s.Channels()
	lo = make([]float64, n)
	hi = make([]float64, n)
	for i := range hi {
		hi[i] = 1
	}
	switch s := s.(type) {
	case *SpaceLab:
		hi[0] = 100
		lo[1], hi[1] = s.Ranges[0], s.Ranges[1]
		lo[2], hi[2] = s.Ranges[2], s.Ranges[3]
	case *SpaceICCBased:
		for i := range n {
			lo[i], hi[i] = s.Ranges[2*i], s.Ranges[2*i+1]
		}
	}
	return lo, hi
}

// ComponentRanges returns the default decode ranges for image samples in
// the color space, as [min0 max0 min1 max1 ...].
func ComponentRanges(s Space) []float64 {
	if ix, ok := s.(*SpaceIndexed); ok {
		return []float64{0, float64(ix.HiVal)}
	}
	lo, hi := componentRanges(s)
	res := make([]float64, 0, 2*len(lo))
	for i := range lo {
		res = append(res, lo[i], hi[i])
	}
	return res
}

// == Separation =============================================================

// PDF 2.0 sections: 8.6.6.4

// SpaceSeparation represents a Separation color space.
type SpaceSeparation struct {
	Colorant  pdfpaint.Name
	Alternate Space

	// Transform maps the tint value to the alternate color space.
	// If this is nil, the tint is used for every component of the
	// alternate space.
	Transform function.Func

	// process is 1+channel if the colorant is a DeviceCMYK process
	// colorant, and 0 otherwise.
	process int
}

// Separation returns a new separation color space.
func Separation(colorant pdfpaint.Name, alternate Space, transform function.Func) (*SpaceSeparation, error) {
	if alternate == nil || IsSpecial(alternate) {
		return nil, errors.New("Separation: invalid alternate color space")
	}
	if transform != nil {
		m, n := transform.Shape()
		if m != 1 || n != alternate.Channels() {
			return nil, fmt.Errorf("Separation: tint transform has shape %d→%d", m, n)
		}
	}
	res := &SpaceSeparation{
		Colorant:  colorant,
		Alternate: alternate,
		Transform: transform,
	}
	if ch, ok := processColorant(string(colorant)); ok {
		res.process = ch + 1
	}
	return res, nil
}

// Family returns /Separation.
// This implements the [Space] interface.
func (s *SpaceSeparation) Family() pdfpaint.Name {
	return FamilySeparation
}

// Channels returns 1.
// This implements the [Space] interface.
func (s *SpaceSeparation) Channels() int {
	return 1
}

func (s *SpaceSeparation) isSpace() {}

func (s *SpaceSeparation) resolve(t float64) RGB {
	t = clamp01(t)
	switch s.Colorant {
	case "None":
		return White
	case "All":
		return grayToRGB(1 - t)
	}
	if s.process > 0 {
		var cmyk [4]float64
		cmyk[s.process-1] = t
		return CMYKToRGB(cmyk[0], cmyk[1], cmyk[2], cmyk[3])
	}
	return tintToAlternate(s.Alternate, s.Transform, []float64{t})
}

// == DeviceN ================================================================

// PDF 2.0 sections: 8.6.6.5

// SpaceDeviceN represents a DeviceN color space.
type SpaceDeviceN struct {
	Names     []pdfpaint.Name
	Alternate Space

	// Transform maps the tint values to the alternate color space.
	// If this is nil, the tints are spread over the components of the
	// alternate space.
	Transform function.Func

	// Attributes is the optional DeviceN attributes dictionary.
	Attributes pdfpaint.Dict

	cmyk bool
}

// DeviceN returns a new DeviceN color space.
func DeviceN(names []pdfpaint.Name, alternate Space, transform function.Func, attr pdfpaint.Dict) (*SpaceDeviceN, error) {
	if len(names) == 0 || len(names) > MaxChannels {
		return nil, fmt.Errorf("DeviceN: invalid number of colorants %d", len(names))
	}
	if alternate == nil || IsSpecial(alternate) {
		return nil, errors.New("DeviceN: invalid alternate color space")
	}
	if transform != nil {
		m, n := transform.Shape()
		if m != len(names) || n != alternate.Channels() {
			return nil, fmt.Errorf("DeviceN: tint transform has shape %d→%d", m, n)
		}
	}
	return &SpaceDeviceN{
		Names:      names,
		Alternate:  alternate,
		Transform:  transform,
		Attributes: attr,
		cmyk:       isCMYKNames(names),
	}, nil
}

// Family returns /DeviceN.
// This implements the [Space] interface.
func (s *SpaceDeviceN) Family() pdfpaint.Name {
	return FamilyDeviceN
}

// Channels returns the number of colorants.
// This implements the [Space] interface.
func (s *SpaceDeviceN) Channels() int {
	return len(s.Names)
}

func (s *SpaceDeviceN) isSpace() {}

func (s *SpaceDeviceN) resolve(c []float64) RGB {
	if s.cmyk {
		return CMYKToRGB(c[0], c[1], c[2], c[3])
	}
	tints := make([]float64, len(c))
	for i, x := range c {
		tints[i] = clamp01(x)
	}
	return tintToAlternate(s.Alternate, s.Transform, tints)
}

// tintToAlternate maps tint values into the alternate color space and
// resolves the result there.
func tintToAlternate(alt Space, f function.Func, tints []float64) RGB {
	var comps []float64
	if f != nil {
		comps = f.Apply(tints...)
	} else {
		comps = make([]float64, alt.Channels())
		for i := range comps {
			comps[i] = tints[i%len(tints)]
		}
	}
	return Resolve(alt, comps)
}

// processColorant checks whether name is one of the process colorants of
// DeviceCMYK and returns the channel index.
func processColorant(name string) (int, bool) {
	switch cases.Fold().String(name) {
	case "cyan":
		return 0, true
	case "magenta":
		return 1, true
	case "yellow":
		return 2, true
	case "black":
		return 3, true
	}
	return 0, false
}

// isCMYKNames reports whether the four colorant names look like the process
// colorants in CMYK order, judging by their first letters.
func isCMYKNames(names []pdfpaint.Name) bool {
	if len(names) != 4 {
		return false
	}
	prefixes := [4]string{"c", "m", "y", "kb"}
	fold := cases.Fold()
	for i, name := range names {
		n := fold.String(string(name))
		if n == "" || !strings.ContainsRune(prefixes[i], rune(n[0])) {
			return false
		}
	}
	return true
}
