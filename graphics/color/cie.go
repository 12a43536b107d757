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

	"seehuhn.de/go/pdfpaint"
)

// == CalGray ================================================================

// PDF 2.0 sections: 8.6.5.2

// SpaceCalGray represents a CalGray color space.
type SpaceCalGray struct {
	WhitePoint [3]float64
	BlackPoint [3]float64
	Gamma      float64
}

// CalGray returns a new CalGray color space.
//
// The white point is required, the black point defaults to [0 0 0].
// The gamma value must be positive.
func CalGray(whitePoint, blackPoint []float64, gamma float64) (*SpaceCalGray, error) {
	s := &SpaceCalGray{Gamma: gamma}
	if err := setPoints(&s.WhitePoint, &s.BlackPoint, whitePoint, blackPoint); err != nil {
		return nil, fmt.Errorf("CalGray: %w", err)
	}
	if !(gamma > 0) {
		return nil, fmt.Errorf("CalGray: expected gamma > 0, got %g", gamma)
	}
	return s, nil
}

// Family returns /CalGray.
// This implements the [Space] interface.
func (s *SpaceCalGray) Family() pdfpaint.Name {
	return FamilyCalGray
}

// Channels returns 1.
// This implements the [Space] interface.
func (s *SpaceCalGray) Channels() int {
	return 1
}

func (s *SpaceCalGray) isSpace() {}

// resolve maps A to the luminance Y = A^gamma, and then Y to a gray value
// in sRGB.
func (s *SpaceCalGray) resolve(a float64) RGB {
	Y := math.Pow(clamp01(a), s.Gamma)
	return grayToRGB(srgbGamma(Y))
}

// == CalRGB =================================================================

// PDF 2.0 sections: 8.6.5.3

// SpaceCalRGB represents a CalRGB color space.
type SpaceCalRGB struct {
	WhitePoint [3]float64
	BlackPoint [3]float64
	Gamma      [3]float64

	// Matrix holds the /Matrix entry [XA YA ZA XB YB ZB XC YC ZC].
	Matrix [9]float64
}

// CalRGB returns a new CalRGB color space.
//
// The white point is required.  The black point defaults to [0 0 0], gamma
// defaults to [1 1 1] and matrix defaults to the identity matrix.
func CalRGB(whitePoint, blackPoint, gamma, matrix []float64) (*SpaceCalRGB, error) {
	s := &SpaceCalRGB{
		Gamma:  [3]float64{1, 1, 1},
		Matrix: [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1},
	}
	if err := setPoints(&s.WhitePoint, &s.BlackPoint, whitePoint, blackPoint); err != nil {
		return nil, fmt.Errorf("CalRGB: %w", err)
	}
	if gamma != nil {
		if len(gamma) != 3 {
			return nil, errors.New("CalRGB: invalid gamma")
		}
		for i, g := range gamma {
			if !(g > 0) {
				return nil, fmt.Errorf("CalRGB: expected gamma > 0, got %g", g)
			}
			s.Gamma[i] = g
		}
	}
	if matrix != nil {
		if len(matrix) != 9 {
			return nil, errors.New("CalRGB: invalid matrix")
		}
		copy(s.Matrix[:], matrix)
	}
	return s, nil
}

// Family returns /CalRGB.
// This implements the [Space] interface.
func (s *SpaceCalRGB) Family() pdfpaint.Name {
	return FamilyCalRGB
}

// Channels returns 3.
// This implements the [Space] interface.
func (s *SpaceCalRGB) Channels() int {
	return 3
}

func (s *SpaceCalRGB) isSpace() {}

// resolve applies the gamma values to the components A, B and C, and then
// the matrix.  The result of the matrix multiplication is used as the RGB
// value, with each channel clamped to [0, 1].  With the default gamma values
// and matrix, CalRGB colors look the same as DeviceRGB colors.
func (s *SpaceCalRGB) resolve(c []float64) RGB {
	A := math.Pow(clamp01(c[0]), s.Gamma[0])
	B := math.Pow(clamp01(c[1]), s.Gamma[1])
	C := math.Pow(clamp01(c[2]), s.Gamma[2])

	m := &s.Matrix
	r := m[0]*A + m[3]*B + m[6]*C
	g := m[1]*A + m[4]*B + m[7]*C
	b := m[2]*A + m[5]*B + m[8]*C
	return newRGB(r, g, b)
}

// == Lab ====================================================================

// PDF 2.0 sections: 8.6.5.4

// SpaceLab represents a CIE 1976 L*a*b* color space.
type SpaceLab struct {
	WhitePoint [3]float64
	BlackPoint [3]float64

	// Ranges gives the valid ranges for a* and b* as [amin amax bmin bmax].
	Ranges [4]float64
}

// Lab returns a new Lab color space.
//
// The white point is required.  The black point defaults to [0 0 0] and the
// ranges default to [-100 100 -100 100].
func Lab(whitePoint, blackPoint, ranges []float64) (*SpaceLab, error) {
	s := &SpaceLab{Ranges: [4]float64{-100, 100, -100, 100}}
	if err := setPoints(&s.WhitePoint, &s.BlackPoint, whitePoint, blackPoint); err != nil {
		return nil, fmt.Errorf("Lab: %w", err)
	}
	if ranges != nil {
		if len(ranges) != 4 || ranges[0] > ranges[1] || ranges[2] > ranges[3] {
			return nil, errors.New("Lab: invalid ranges")
		}
		copy(s.Ranges[:], ranges)
	}
	return s, nil
}

// Family returns /Lab.
// This implements the [Space] interface.
func (s *SpaceLab) Family() pdfpaint.Name {
	return FamilyLab
}

// Channels returns 3.
// This implements the [Space] interface.
func (s *SpaceLab) Channels() int {
	return 3
}

func (s *SpaceLab) isSpace() {}

func (s *SpaceLab) resolve(c []float64) RGB {
	L := clampTo(c[0], 0, 100)
	a := clampTo(c[1], s.Ranges[0], s.Ranges[1])
	b := clampTo(c[2], s.Ranges[2], s.Ranges[3])
	X, Y, Z := labToXYZ(L, a, b, s.WhitePoint)
	return xyzToSRGB(adaptToD50(X, Y, Z, s.WhitePoint))
}

// labToXYZ converts CIE L*a*b* values to XYZ, relative to the white
// point wp.
func labToXYZ(L, a, b float64, wp [3]float64) (X, Y, Z float64) {
	M := (L + 16) / 116
	finv := func(x float64) float64 {
		if x >= 6.0/29.0 {
			return x * x * x
		}
		return 108.0 / 841.0 * (x - 4.0/29.0)
	}
	X = wp[0] * finv(M+a/500)
	Y = wp[1] * finv(M)
	Z = wp[2] * finv(M-b/200)
	return X, Y, Z
}

// setPoints validates and stores the white and black point of a CIE-based
// color space.
func setPoints(wp, bp *[3]float64, whitePoint, blackPoint []float64) error {
	if len(whitePoint) != 3 || whitePoint[0] <= 0 || whitePoint[2] <= 0 ||
		math.Abs(whitePoint[1]-1) > 1e-3 {
		return errors.New("invalid white point")
	}
	copy(wp[:], whitePoint)
	if blackPoint != nil {
		if len(blackPoint) != 3 {
			return errors.New("invalid black point")
		}
		for _, x := range blackPoint {
			if x < 0 {
				return errors.New("invalid black point")
			}
		}
		copy(bp[:], blackPoint)
	}
	return nil
}
