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

package main

import (
	"bytes"
	"fmt"
	stdimage "image"
	stdcolor "image/color"
	"image/jpeg"
	"math"

	"github.com/klauspost/compress/zlib"
	"golang.org/x/image/font/gofont/goregular"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pdfpaint"
	"seehuhn.de/go/pdfpaint/graphics/color"
	"seehuhn.de/go/pdfpaint/graphics/raster"
	"seehuhn.de/go/pdfpaint/graphics/shapes"
	"seehuhn.de/go/pdfpaint/graphics/text"
	"seehuhn.de/go/pdfpaint/render"
)

// buildTestCard stores the resources of the test card in store and returns
// the paint program for the page.
func buildTestCard(store *pdfpaint.Store, e *render.Engine) (*shapes.Program, error) {
	photo, err := addPhoto(store)
	if err != nil {
		return nil, err
	}
	wheel, err := addColorWheel(store)
	if err != nil {
		return nil, err
	}
	steps, err := addGraySteps(store)
	if err != nil {
		return nil, err
	}
	stencil, err := addStencil(store)
	if err != nil {
		return nil, err
	}

	checker, err := e.Pattern(&pdfpaint.Stream{
		Dict: pdfpaint.Dict{
			"PatternType": pdfpaint.Integer(1),
			"PaintType":   pdfpaint.Integer(1),
			"TilingType":  pdfpaint.Integer(1),
			"BBox":        rectArray(0, 0, 20, 20),
			"XStep":       pdfpaint.Integer(20),
			"YStep":       pdfpaint.Integer(20),
		},
		R: bytes.NewReader(nil),
	}, checkerCell)
	if err != nil {
		return nil, fmt.Errorf("tiling pattern: %w", err)
	}

	sky, err := e.Pattern(pdfpaint.Dict{
		"PatternType": pdfpaint.Integer(2),
		"Shading": pdfpaint.Dict{
			"ShadingType": pdfpaint.Integer(2),
			"ColorSpace":  pdfpaint.Name("DeviceRGB"),
			"Coords":      rectArray(36, 0, 576, 0),
			"Function":    interpolation([]float64{0.1, 0.2, 0.6}, []float64{0.9, 0.95, 1}),
			"Extend":      pdfpaint.Array{pdfpaint.Bool(true), pdfpaint.Bool(true)},
		},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("shading pattern: %w", err)
	}

	sun, err := e.Pattern(pdfpaint.Dict{
		"PatternType": pdfpaint.Integer(2),
		"Shading": pdfpaint.Dict{
			"ShadingType": pdfpaint.Integer(3),
			"ColorSpace":  pdfpaint.Name("DeviceCMYK"),
			"Coords": pdfpaint.Array{
				pdfpaint.Integer(470), pdfpaint.Integer(190), pdfpaint.Integer(0),
				pdfpaint.Integer(470), pdfpaint.Integer(190), pdfpaint.Integer(70),
			},
			"Function": interpolation([]float64{0, 0.1, 0.9, 0}, []float64{0, 0.6, 0.2, 0}),
		},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("radial shading: %w", err)
	}

	lab, err := e.ColorSpace(pdfpaint.Array{
		pdfpaint.Name("Lab"),
		pdfpaint.Dict{"WhitePoint": pdfpaint.Array{
			pdfpaint.Real(0.9505), pdfpaint.Integer(1), pdfpaint.Real(1.089),
		}},
	})
	if err != nil {
		return nil, err
	}
	spot, err := e.ColorSpace(pdfpaint.Array{
		pdfpaint.Name("Separation"),
		pdfpaint.Name("Orange"),
		pdfpaint.Name("DeviceCMYK"),
		interpolation([]float64{0, 0, 0, 0}, []float64{0, 0.5, 1, 0}),
	})
	if err != nil {
		return nil, err
	}

	font, err := text.New(goregular.TTF)
	if err != nil {
		return nil, err
	}

	white := shapes.Solid(color.DeviceGray, []float64{1})
	black := shapes.Solid(color.DeviceGray, []float64{0})
	red := shapes.Solid(color.DeviceRGB, []float64{0.85, 0.1, 0.1})
	teal := shapes.Solid(lab, []float64{60, -40, -10})
	orange := shapes.Solid(spot, []float64{1})

	prog := &shapes.Program{}

	// background and header
	prog.Append(
		shapes.SetPaint{Paint: white},
		shapes.SetGeometry{Path: raster.Rect(0, 0, pageWidth, pageHeight)},
		shapes.Fill{},
		shapes.SetPaint{Paint: sky},
		shapes.SetGeometry{Path: raster.Rect(36, 680, 540, 76)},
		shapes.Fill{},
		shapes.SetPaint{Paint: black},
		shapes.TextRun{
			Font:   font,
			Glyphs: font.Layout("pdfpaint test card"),
			M:      matrix.Scale(28, 28).Mul(matrix.Translate(54, 706)),
		},
	)

	// overlapping disks with blend modes
	modes := []raster.BlendMode{raster.Normal, raster.Multiply, raster.Screen}
	for i, mode := range modes {
		x := 90 + float64(i)*60
		prog.Append(
			shapes.SetComposite{Mode: raster.Normal, Alpha: 1},
			shapes.SetPaint{Paint: teal},
			shapes.SetGeometry{Path: circle(x, 590, 34)},
			shapes.Fill{},
			shapes.SetComposite{Mode: mode, Alpha: 0.8},
			shapes.SetPaint{Paint: orange},
			shapes.SetGeometry{Path: circle(x+22, 570, 34)},
			shapes.Fill{},
		)
	}
	prog.Append(shapes.SetComposite{Mode: raster.Normal, Alpha: 1})

	// transparency group
	group := &shapes.Program{}
	group.Append(
		shapes.SetPaint{Paint: red},
		shapes.SetGeometry{Path: raster.Rect(0, 0, 60, 60)},
		shapes.Fill{},
		shapes.SetGeometry{Path: raster.Rect(30, 30, 60, 60)},
		shapes.Fill{},
	)
	prog.Append(
		shapes.SetComposite{Mode: raster.Normal, Alpha: 0.5},
		shapes.FormGroup{
			Program:  group,
			BBox:     rect.Rect{LLx: 0, LLy: 0, URx: 90, URy: 90},
			M:        matrix.Translate(390, 530),
			Isolated: true,
		},
		shapes.SetComposite{Mode: raster.Normal, Alpha: 1},
	)

	// strokes
	dashed := raster.DefaultStroke()
	dashed.Width = 4
	dashed.Dash = []float64{12, 6}
	round := raster.DefaultStroke()
	round.Width = 10
	round.Cap = raster.RoundCap
	round.Join = raster.RoundJoin
	zigzag := (&raster.Path{}).MoveTo(54, 440).LineTo(104, 490).LineTo(154, 440).LineTo(204, 490)
	prog.Append(
		shapes.SetPaint{Paint: black},
		shapes.SetStroke{Style: dashed},
		shapes.SetGeometry{Path: raster.Rect(36, 420, 540, 90)},
		shapes.Draw{},
		shapes.SetPaint{Paint: red},
		shapes.SetStroke{Style: round},
		shapes.SetGeometry{Path: zigzag},
		shapes.Draw{},
		shapes.SetStroke{Style: raster.StrokeStyle{}},
		shapes.SetGeometry{Path: (&raster.Path{}).MoveTo(240, 430).LineTo(560, 500)},
		shapes.Draw{},
	)

	// clipped tiling pattern and radial shading
	prog.Append(
		shapes.SetGeometry{Path: circle(160, 300, 90)},
		shapes.ClipPush{},
		shapes.SetPaint{Paint: checker},
		shapes.SetGeometry{Path: raster.Rect(60, 200, 200, 200)},
		shapes.Fill{},
		shapes.ClipReset{},
		shapes.SetPaint{Paint: sun},
		shapes.SetGeometry{Path: raster.Rect(390, 110, 160, 160)},
		shapes.Fill{},
	)

	// images
	imageAt := func(x, y, w, h float64) shapes.SetTransform {
		return shapes.SetTransform{M: matrix.Scale(w, h).Mul(matrix.Translate(x, y))}
	}
	prog.Append(
		imageAt(36, 36, 120, 120),
		shapes.DrawImage{Ref: photo},
		imageAt(176, 36, 120, 120),
		shapes.DrawImage{Ref: wheel, Interpolate: true},
		imageAt(316, 36, 120, 60),
		shapes.DrawImage{Ref: steps},
		shapes.SetPaint{Paint: orange},
		imageAt(456, 36, 120, 60),
		shapes.DrawImage{Ref: stencil},
		shapes.SetTransform{M: matrix.Identity},
	)

	return prog, nil
}

// checkerCell draws one cell of a two-color checker board.
func checkerCell(*pdfpaint.Stream) *shapes.Program {
	dark := shapes.Solid(color.DeviceRGB, []float64{0.2, 0.3, 0.5})
	light := shapes.Solid(color.DeviceRGB, []float64{0.8, 0.85, 0.9})
	prog := &shapes.Program{}
	prog.Append(
		shapes.SetPaint{Paint: light},
		shapes.SetGeometry{Path: raster.Rect(0, 0, 20, 20)},
		shapes.Fill{},
		shapes.SetPaint{Paint: dark},
		shapes.SetGeometry{Path: raster.Rect(0, 0, 10, 10)},
		shapes.Fill{},
		shapes.SetGeometry{Path: raster.Rect(10, 10, 10, 10)},
		shapes.Fill{},
	)
	return prog
}

// circle approximates a circle by four Bézier curves.
func circle(x, y, r float64) *raster.Path {
	const k = 0.5522847498
	c := k * r
	p := &raster.Path{}
	return p.MoveTo(x+r, y).
		CubeTo(x+r, y+c, x+c, y+r, x, y+r).
		CubeTo(x-c, y+r, x-r, y+c, x-r, y).
		CubeTo(x-r, y-c, x-c, y-r, x, y-r).
		CubeTo(x+c, y-r, x+r, y-c, x+r, y).
		Close()
}

func rectArray(a, b, c, d float64) pdfpaint.Array {
	return pdfpaint.Array{pdfpaint.Real(a), pdfpaint.Real(b), pdfpaint.Real(c), pdfpaint.Real(d)}
}

func numbers(xx []float64) pdfpaint.Array {
	res := make(pdfpaint.Array, len(xx))
	for i, x := range xx {
		res[i] = pdfpaint.Real(x)
	}
	return res
}

// interpolation returns a linear type 2 function from c0 to c1.
func interpolation(c0, c1 []float64) pdfpaint.Dict {
	return pdfpaint.Dict{
		"FunctionType": pdfpaint.Integer(2),
		"Domain":       pdfpaint.Array{pdfpaint.Integer(0), pdfpaint.Integer(1)},
		"C0":           numbers(c0),
		"C1":           numbers(c1),
		"N":            pdfpaint.Integer(1),
	}
}

func imageDict(w, h, bpc int, cs pdfpaint.Object) pdfpaint.Dict {
	dict := pdfpaint.Dict{
		"Type":             pdfpaint.Name("XObject"),
		"Subtype":          pdfpaint.Name("Image"),
		"Width":            pdfpaint.Integer(w),
		"Height":           pdfpaint.Integer(h),
		"BitsPerComponent": pdfpaint.Integer(bpc),
	}
	if cs != nil {
		dict["ColorSpace"] = cs
	}
	return dict
}

func addStream(store *pdfpaint.Store, dict pdfpaint.Dict, data []byte) (pdfpaint.Reference, error) {
	return store.Add(&pdfpaint.Stream{Dict: dict, R: bytes.NewReader(data)})
}

// addPhoto stores a JPEG compressed image.
func addPhoto(store *pdfpaint.Store) (pdfpaint.Reference, error) {
	const size = 128
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, size, size))
	for y := range size {
		for x := range size {
			d := math.Hypot(float64(x-size/2), float64(y-size/2)) / size
			img.SetRGBA(x, y, stdcolor.RGBA{
				R: uint8(255 * x / size),
				G: uint8(255 * (1 - min(2*d, 1))),
				B: uint8(255 * y / size),
				A: 255,
			})
		}
	}
	buf := &bytes.Buffer{}
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return 0, err
	}
	dict := imageDict(size, size, 8, pdfpaint.Name("DeviceRGB"))
	dict["Filter"] = pdfpaint.Name("DCTDecode")
	return addStream(store, dict, buf.Bytes())
}

// addColorWheel stores a Flate compressed RGB image with a soft mask.
func addColorWheel(store *pdfpaint.Store) (pdfpaint.Reference, error) {
	const size = 64
	rgb := make([]byte, 0, 3*size*size)
	alpha := make([]byte, 0, size*size)
	for y := range size {
		for x := range size {
			dx := float64(x) - size/2 + 0.5
			dy := float64(y) - size/2 + 0.5
			h := (math.Atan2(dy, dx) + math.Pi) / (2 * math.Pi)
			r, g, b := hue(h)
			rgb = append(rgb, r, g, b)
			a := byte(0)
			if math.Hypot(dx, dy) < size/2 {
				a = 255
			}
			alpha = append(alpha, a)
		}
	}

	maskDict := imageDict(size, size, 8, pdfpaint.Name("DeviceGray"))
	maskDict["Filter"] = pdfpaint.Name("FlateDecode")
	maskRef, err := addStream(store, maskDict, deflate(alpha))
	if err != nil {
		return 0, err
	}

	dict := imageDict(size, size, 8, pdfpaint.Name("DeviceRGB"))
	dict["Filter"] = pdfpaint.Name("FlateDecode")
	dict["SMask"] = maskRef
	return addStream(store, dict, deflate(rgb))
}

// addGraySteps stores a 4 bit indexed image.
func addGraySteps(store *pdfpaint.Store) (pdfpaint.Reference, error) {
	const levels = 16
	palette := make(pdfpaint.String, 0, 3*levels)
	for i := range levels {
		v := byte(i * 255 / (levels - 1))
		palette = append(palette, v, v/2, 255-v)
	}
	cs := pdfpaint.Array{
		pdfpaint.Name("Indexed"),
		pdfpaint.Name("DeviceRGB"),
		pdfpaint.Integer(levels - 1),
		palette,
	}
	data := make([]byte, levels/2)
	for i := range data {
		data[i] = byte(2*i)<<4 | byte(2*i+1)
	}
	return addStream(store, imageDict(levels, 1, 4, cs), data)
}

// addStencil stores a stencil mask showing a diagonal stripe pattern.
func addStencil(store *pdfpaint.Store) (pdfpaint.Reference, error) {
	const w, h = 32, 16
	data := make([]byte, 0, w/8*h)
	for y := range h {
		for bx := range w / 8 {
			var b byte
			for bit := range 8 {
				x := 8*bx + bit
				if (x+y)%8 < 4 {
					b |= 0x80 >> bit
				}
			}
			data = append(data, b)
		}
	}
	dict := pdfpaint.Dict{
		"Subtype":   pdfpaint.Name("Image"),
		"Width":     pdfpaint.Integer(w),
		"Height":    pdfpaint.Integer(h),
		"ImageMask": pdfpaint.Bool(true),
	}
	return addStream(store, dict, data)
}

func deflate(data []byte) []byte {
	buf := &bytes.Buffer{}
	zw := zlib.NewWriter(buf)
	zw.Write(data)
	zw.Close()
	return buf.Bytes()
}

// hue converts a hue in [0, 1] to a saturated color.
func hue(h float64) (byte, byte, byte) {
	c := func(offset float64) byte {
		v := math.Abs(math.Mod(6*h+offset, 6)-3) - 1
		return byte(255 * min(max(v, 0), 1))
	}
	return c(0), c(4), c(2)
}
