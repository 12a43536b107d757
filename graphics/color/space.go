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
	"seehuhn.de/go/pdfpaint"
)

// Space represents a PDF color space.
//
// The set of implementations is closed: the unexported method prevents
// other packages from adding new color spaces.
type Space interface {
	// Family returns the family of the color space.
	Family() pdfpaint.Name

	// Channels returns the dimensionality of the color space.
	// This returns 0 for colored patterns.
	Channels() int

	isSpace()
}

// Color space families supported by PDF.
const (
	FamilyDeviceGray pdfpaint.Name = "DeviceGray"
	FamilyDeviceRGB  pdfpaint.Name = "DeviceRGB"
	FamilyDeviceCMYK pdfpaint.Name = "DeviceCMYK"
	FamilyCalGray    pdfpaint.Name = "CalGray"
	FamilyCalRGB     pdfpaint.Name = "CalRGB"
	FamilyLab        pdfpaint.Name = "Lab"
	FamilyICCBased   pdfpaint.Name = "ICCBased"
	FamilyPattern    pdfpaint.Name = "Pattern"
	FamilyIndexed    pdfpaint.Name = "Indexed"
	FamilySeparation pdfpaint.Name = "Separation"
	FamilyDeviceN    pdfpaint.Name = "DeviceN"
)

// MaxChannels is the largest number of components of any color space.
const MaxChannels = 32

// IsSpecial reports whether the color space is a special color space.
// The special color spaces are Pattern, Indexed, Separation, and DeviceN.
func IsSpecial(s Space) bool {
	switch s.Family() {
	case FamilyPattern, FamilyIndexed, FamilySeparation, FamilyDeviceN:
		return true
	default:
		return false
	}
}

// Default returns the initial color values for the color space.
//
// For most color spaces all components are zero.  Lab colors are clipped
// into the a* and b* ranges, ICC-based colors are clipped into the
// component ranges, and Separation and DeviceN colors start at full tint.
func Default(s Space) []float64 {
	switch s := s.(type) {
	case SpaceDeviceCMYK:
		return []float64{0, 0, 0, 1}
	case *SpaceLab:
		return []float64{0, clampTo(0, s.Ranges[0], s.Ranges[1]), clampTo(0, s.Ranges[2], s.Ranges[3])}
	case *SpaceSeparation:
		return []float64{1}
	case *SpaceDeviceN:
		res := make([]float64, len(s.Names))
		for i := range res {
			res[i] = 1
		}
		return res
	case *SpacePattern:
		if s.Base == nil {
			return nil
		}
		return Default(s.Base)
	default:
		return make([]float64, s.Channels())
	}
}

func clampTo(x, lo, hi float64) float64 {
	if x >= hi {
		return hi
	}
	if x >= lo {
		return x
	}
	return lo
}

func clamp01(v float64) float64 {
	return clampTo(v, 0, 1)
}
