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
	"slices"
	"sync"

	"seehuhn.de/go/icc"

	"seehuhn.de/go/pdfpaint"
)

// PDF 2.0 sections: 8.6.5.5

// SpaceICCBased represents an ICC-based color space.
//
// Colors are converted using the profile if it is a gray or RGB
// matrix/TRC profile.  For all other profiles, and for profiles which
// cannot be decoded, the alternate color space is used instead.
type SpaceICCBased struct {
	N         int
	Alternate Space
	Ranges    []float64

	profile []byte

	// conversion state, set up on first use
	initMu sync.Mutex
	inited bool
	tr     *iccTransform

	// the most recently converted color
	lastMu    sync.Mutex
	lastValid bool
	lastIn    [4]float64
	lastOut   RGB
}

// ICCBased returns a new ICC-based color space.
//
// If alternate is nil, DeviceGray, DeviceRGB or DeviceCMYK is used,
// depending on n.  If ranges is nil, all components have range [0, 1].
func ICCBased(n int, profile []byte, alternate Space, ranges []float64) (*SpaceICCBased, error) {
	if n != 1 && n != 3 && n != 4 {
		return nil, fmt.Errorf("ICCBased: invalid number of components %d", n)
	}
	if alternate == nil {
		alternate = alternateForN(n)
	} else if alternate.Channels() != n || alternate.Family() == FamilyPattern {
		return nil, fmt.Errorf("ICCBased: invalid alternate color space %s", alternate.Family())
	}
	if ranges == nil {
		ranges = make([]float64, 2*n)
		for i := range n {
			ranges[2*i+1] = 1
		}
	} else if len(ranges) != 2*n {
		return nil, errors.New("ICCBased: invalid ranges")
	} else {
		ranges = slices.Clone(ranges)
	}
	return &SpaceICCBased{
		N:         n,
		Alternate: alternate,
		Ranges:    ranges,
		profile:   profile,
	}, nil
}

func alternateForN(n int) Space {
	switch n {
	case 1:
		return DeviceGray
	case 4:
		return DeviceCMYK
	default:
		return DeviceRGB
	}
}

// Family returns /ICCBased.
// This implements the [Space] interface.
func (s *SpaceICCBased) Family() pdfpaint.Name {
	return FamilyICCBased
}

// Channels returns the number of color channels.
// This implements the [Space] interface.
func (s *SpaceICCBased) Channels() int {
	return s.N
}

func (s *SpaceICCBased) isSpace() {}

// Profile returns the raw ICC profile data.
func (s *SpaceICCBased) Profile() []byte {
	return s.profile
}

// transform returns the profile conversion, or nil if the profile cannot be
// used.  The profile is only examined once; failures are permanent.
func (s *SpaceICCBased) transform() *iccTransform {
	s.initMu.Lock()
	defer s.initMu.Unlock()
	if !s.inited {
		s.inited = true
		tr, err := newICCTransform(s.profile, s.N)
		if err != nil {
			pdfpaint.Logger().Debug("ICC profile not used, falling back to alternate color space",
				"alternate", s.Alternate.Family(),
				"err", err)
		}
		s.tr = tr
	}
	return s.tr
}

func (s *SpaceICCBased) resolve(c []float64) RGB {
	var in [4]float64
	for i := range s.N {
		in[i] = clampTo(c[i], s.Ranges[2*i], s.Ranges[2*i+1])
	}

	s.lastMu.Lock()
	if s.lastValid && s.lastIn == in {
		out := s.lastOut
		s.lastMu.Unlock()
		return out
	}
	s.lastMu.Unlock()

	var out RGB
	if tr := s.transform(); tr != nil {
		out = tr.convert(in[:s.N])
	} else {
		out = Resolve(s.Alternate, in[:s.N])
	}

	s.lastMu.Lock()
	s.lastIn = in
	s.lastOut = out
	s.lastValid = true
	s.lastMu.Unlock()
	return out
}

func newICCTransform(profile []byte, n int) (*iccTransform, error) {
	if len(profile) == 0 {
		return nil, errors.New("missing profile data")
	}
	p, err := icc.Decode(profile)
	if err != nil {
		return nil, err
	}
	if got := p.ColorSpace.NumComponents(); got != n {
		return nil, fmt.Errorf("profile has %d components, expected %d", got, n)
	}
	if p.ColorSpace != icc.GraySpace && p.ColorSpace != icc.RGBSpace {
		return nil, fmt.Errorf("unsupported profile color space %v", p.ColorSpace)
	}
	return parseMatrixTRC(profile, n)
}
