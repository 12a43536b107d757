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

package shapes

import (
	"bytes"
	"context"
	stdimage "image"
	stdcolor "image/color"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pdfpaint"
	"seehuhn.de/go/pdfpaint/config"
	"seehuhn.de/go/pdfpaint/graphics/color"
	"seehuhn.de/go/pdfpaint/graphics/image"
	"seehuhn.de/go/pdfpaint/graphics/raster"
)

var (
	red  = SolidPaint{Color: color.RGB{R: 1}}
	blue = SolidPaint{Color: color.RGB{B: 1}}
)

func alphaAt(s *raster.Surface, x, y int) uint8 {
	return s.Img.RGBAAt(x, y).A
}

func quickConfig() *config.Config {
	cfg := config.Default()
	cfg.ProgressInterval = 0
	return cfg
}

func TestReplayFill(t *testing.T) {
	prog := (&Program{}).Append(
		SetPaint{Paint: red},
		SetGeometry{Path: raster.Rect(10, 10, 20, 20)},
		Fill{Rule: raster.NonZero},
	)
	s := raster.NewSurface(40, 40)
	res := Replay(context.Background(), prog, s, nil)
	if d := cmp.Diff(Result{Ops: 3}, res); d != "" {
		t.Error(d)
	}
	if c := s.Img.RGBAAt(20, 20); c != (stdcolor.RGBA{R: 255, A: 255}) {
		t.Errorf("inside: got %v", c)
	}
	if alphaAt(s, 5, 5) != 0 {
		t.Error("outside pixel painted")
	}
}

func TestReplayDeterministic(t *testing.T) {
	path := (&raster.Path{}).MoveTo(3, 4).CubeTo(30, 0, 40, 40, 5, 35).Close()
	prog := (&Program{}).Append(
		SetPaint{Paint: blue},
		SetGeometry{Path: path},
		Fill{Rule: raster.EvenOdd},
		SetStroke{Style: raster.StrokeStyle{Width: 3, Join: raster.RoundJoin, MiterLimit: 10}},
		SetComposite{Mode: raster.Multiply, Alpha: 0.7},
		SetPaint{Paint: red},
		Draw{},
	)

	a := raster.NewSurface(50, 50)
	b := raster.NewSurface(50, 50)
	Replay(context.Background(), prog, a, nil)
	Replay(context.Background(), prog, b, nil)
	if !bytes.Equal(a.Img.Pix, b.Img.Pix) {
		t.Error("replays differ")
	}
}

func TestSetTransformRelativeToBase(t *testing.T) {
	prog := (&Program{}).Append(
		SetTransform{M: matrix.Scale(2, 2)},
		SetTransform{M: matrix.Scale(2, 2)},
		SetGeometry{Path: raster.Rect(0, 0, 5, 5)},
		Fill{},
	)
	s := raster.NewSurface(60, 60)
	Replay(context.Background(), prog, s, &Options{Base: matrix.Translate(10, 10)})
	if alphaAt(s, 15, 15) != 255 {
		t.Error("rectangle not painted")
	}
	if alphaAt(s, 22, 22) != 0 {
		t.Error("transformations accumulated")
	}
}

func TestClipReset(t *testing.T) {
	clipped := (&Program{}).Append(
		SetGeometry{Path: raster.Rect(0, 0, 10, 10)},
		ClipPush{},
		SetGeometry{Path: raster.Rect(0, 0, 40, 40)},
		Fill{},
	)
	s := raster.NewSurface(40, 40)
	Replay(context.Background(), clipped, s, nil)
	if alphaAt(s, 5, 5) != 255 || alphaAt(s, 30, 30) != 0 {
		t.Error("clip not applied")
	}

	reset := (&Program{}).Append(
		SetGeometry{Path: raster.Rect(0, 0, 10, 10)},
		ClipPush{},
		ClipReset{},
		SetGeometry{Path: raster.Rect(0, 0, 40, 40)},
		Fill{},
	)
	s = raster.NewSurface(40, 40)
	Replay(context.Background(), reset, s, nil)
	if alphaAt(s, 30, 30) != 255 {
		t.Error("clip not reset")
	}

	// the reset restores the clip at entry, not "no clip"
	s = raster.NewSurface(40, 40)
	opts := &Options{Clip: raster.RectMask(stdimage.Rect(0, 0, 20, 20))}
	Replay(context.Background(), reset, s, opts)
	if alphaAt(s, 15, 15) != 255 || alphaAt(s, 30, 30) != 0 {
		t.Error("entry clip lost")
	}
}

func TestDisableClip(t *testing.T) {
	prog := (&Program{}).Append(
		SetGeometry{Path: raster.Rect(0, 0, 10, 10)},
		ClipPush{},
		SetGeometry{Path: raster.Rect(0, 0, 40, 40)},
		Fill{},
	)
	cfg := config.Default()
	cfg.DisableClip = true
	s := raster.NewSurface(40, 40)
	Replay(context.Background(), prog, s, &Options{Config: cfg})
	if alphaAt(s, 30, 30) != 255 {
		t.Error("clip was applied")
	}
}

func TestDegenerateFill(t *testing.T) {
	line := (&raster.Path{}).MoveTo(5, 10).LineTo(35, 10).Close()
	prog := (&Program{}).Append(
		SetGeometry{Path: line},
		Fill{},
	)
	s := raster.NewSurface(40, 20)
	Replay(context.Background(), prog, s, nil)
	if max(alphaAt(s, 20, 9), alphaAt(s, 20, 10)) == 0 {
		t.Error("degenerate shape not painted")
	}
	if alphaAt(s, 20, 15) != 0 {
		t.Error("hairline too wide")
	}
}

func TestStop(t *testing.T) {
	prog := &Program{}
	for range 10 {
		prog.Append(SetGeometry{Path: raster.Rect(0, 0, 5, 5)}, Fill{})
	}

	polls := 0
	stop := func() bool {
		polls++
		return polls > 3
	}
	res := Replay(context.Background(), prog, raster.NewSurface(10, 10), &Options{Stop: stop})
	if d := cmp.Diff(Result{Ops: 3, Stopped: true}, res); d != "" {
		t.Error(d)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res = Replay(ctx, prog, raster.NewSurface(10, 10), nil)
	if d := cmp.Diff(Result{Ops: 0, Stopped: true}, res); d != "" {
		t.Error(d)
	}
}

func TestProgress(t *testing.T) {
	prog := (&Program{}).Append(
		SetGeometry{Path: raster.Rect(0, 0, 5, 5)},
		Fill{},
		SetPaint{Paint: red},
		Fill{},
		Draw{},
	)
	var calls []int
	opts := &Options{
		Config:   quickConfig(),
		Listener: func(ops int) { calls = append(calls, ops) },
	}
	Replay(context.Background(), prog, raster.NewSurface(10, 10), opts)
	if d := cmp.Diff([]int{2, 4, 5}, calls); d != "" {
		t.Error(d)
	}

	// with a long interval, no notification is sent for a short replay
	calls = nil
	opts.Config = config.Default()
	opts.Config.ProgressInterval = time.Hour
	Replay(context.Background(), prog, raster.NewSurface(10, 10), opts)
	if len(calls) != 0 {
		t.Errorf("unexpected notifications %v", calls)
	}
}

func TestNested(t *testing.T) {
	inner := (&Program{}).Append(
		SetPaint{Paint: blue},
		SetTransform{M: matrix.Translate(20, 0)},
		SetGeometry{Path: raster.Rect(0, 0, 5, 5)},
		Fill{},
	)
	outer := (&Program{}).Append(
		SetPaint{Paint: red},
		SetTransform{M: matrix.Translate(0, 10)},
		Nested{Program: inner},
		SetGeometry{Path: raster.Rect(0, 0, 5, 5)},
		Fill{},
	)
	s := raster.NewSurface(40, 40)
	res := Replay(context.Background(), outer, s, nil)
	if res.Ops != 9 {
		t.Errorf("got %d ops, want 9", res.Ops)
	}
	// the nested transformation is relative to the outer one
	if c := s.Img.RGBAAt(22, 12); c != (stdcolor.RGBA{B: 255, A: 255}) {
		t.Errorf("nested: got %v", c)
	}
	// the nested paint does not leak out
	if c := s.Img.RGBAAt(2, 12); c != (stdcolor.RGBA{R: 255, A: 255}) {
		t.Errorf("outer: got %v", c)
	}
}

func TestFormGroupIsolated(t *testing.T) {
	group := (&Program{}).Append(
		SetPaint{Paint: red},
		SetGeometry{Path: raster.Rect(0, 0, 20, 20)},
		Fill{},
		SetGeometry{Path: raster.Rect(10, 10, 20, 20)},
		Fill{},
	)
	prog := (&Program{}).Append(
		SetComposite{Mode: raster.Normal, Alpha: 0.5},
		FormGroup{
			Program:  group,
			BBox:     rect.Rect{LLx: 0, LLy: 0, URx: 40, URy: 40},
			M:        matrix.Identity,
			Isolated: true,
		},
	)
	s := raster.NewSurface(40, 40)
	Replay(context.Background(), prog, s, nil)

	single := alphaAt(s, 5, 5)
	overlap := alphaAt(s, 15, 15)
	if single < 126 || single > 129 {
		t.Errorf("single: alpha %d", single)
	}
	if overlap != single {
		t.Errorf("overlap alpha %d differs from %d", overlap, single)
	}
}

func TestFormGroupBBox(t *testing.T) {
	group := (&Program{}).Append(
		SetGeometry{Path: raster.Rect(0, 0, 40, 40)},
		Fill{},
	)
	prog := (&Program{}).Append(
		FormGroup{
			Program: group,
			BBox:    rect.Rect{LLx: 0, LLy: 0, URx: 10, URy: 10},
			M:       matrix.Identity,
		},
	)
	s := raster.NewSurface(40, 40)
	Replay(context.Background(), prog, s, nil)
	if alphaAt(s, 5, 5) != 255 || alphaAt(s, 20, 20) != 0 {
		t.Error("group not clipped to its bounding box")
	}
}

type testImages struct {
	bm    *image.Bitmap
	calls int
}

func (ti *testImages) Get(_ context.Context, _ pdfpaint.Reference, _ image.Policy, _ stdimage.Point) (*image.Bitmap, bool) {
	ti.calls++
	return ti.bm, ti.bm != nil
}

func redBitmap() *image.Bitmap {
	img := stdimage.NewNRGBA(stdimage.Rect(0, 0, 2, 2))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
		img.Pix[i+3] = 255
	}
	return &image.Bitmap{Width: 2, Height: 2, Img: img, Opaque: true}
}

func TestDrawImage(t *testing.T) {
	ref := pdfpaint.NewReference(7, 0)
	prog := (&Program{}).Append(
		SetTransform{M: matrix.Matrix{20, 0, 0, 20, 0, 0}},
		DrawImage{Ref: ref},
	)

	src := &testImages{bm: redBitmap()}
	s := raster.NewSurface(40, 40)
	Replay(context.Background(), prog, s, &Options{Images: src})
	if c := s.Img.RGBAAt(10, 10); c != (stdcolor.RGBA{R: 255, A: 255}) {
		t.Errorf("got %v", c)
	}
	if alphaAt(s, 30, 30) != 0 {
		t.Error("image too large")
	}

	// images outside the clip region are not requested
	src.calls = 0
	opts := &Options{Images: src, Clip: raster.RectMask(stdimage.Rect(25, 25, 40, 40))}
	Replay(context.Background(), prog, raster.NewSurface(40, 40), opts)
	if src.calls != 0 {
		t.Error("invisible image was requested")
	}

	// a missing image is skipped
	Replay(context.Background(), prog, raster.NewSurface(40, 40), &Options{Images: &testImages{}})
}

func TestDrawImageRetry(t *testing.T) {
	saved := raster.MaxLayerPixels
	raster.MaxLayerPixels = 1
	defer func() { raster.MaxLayerPixels = saved }()

	prog := (&Program{}).Append(
		SetTransform{M: matrix.Matrix{20, 0, 0, 20, 0, 0}},
		DrawImage{Ref: pdfpaint.NewReference(7, 0)},
	)
	s := raster.NewSurface(40, 40)
	Replay(context.Background(), prog, s, &Options{Images: &testImages{bm: redBitmap()}})
	if c := s.Img.RGBAAt(10, 10); c != (stdcolor.RGBA{R: 255, A: 255}) {
		t.Errorf("image not painted after retry: got %v", c)
	}
}

type boxFont struct {
	draws int
}

func (f *boxFont) Bounds(glyphs []Glyph, m matrix.Matrix) rect.Rect {
	b := rect.Rect{}
	for i, g := range glyphs {
		r := raster.Rect(g.X, g.Y, 1, 1).Bounds(m)
		if i == 0 {
			b = r
			continue
		}
		b.LLx, b.LLy = min(b.LLx, r.LLx), min(b.LLy, r.LLy)
		b.URx, b.URy = max(b.URx, r.URx), max(b.URy, r.URy)
	}
	return b
}

func (f *boxFont) Draw(dst *stdimage.RGBA, glyphs []Glyph, m matrix.Matrix, s *raster.Style) {
	f.draws++
	for _, g := range glyphs {
		raster.Fill(dst, raster.Rect(g.X, g.Y, 1, 1), m, raster.NonZero, s)
	}
}

func TestTextRun(t *testing.T) {
	font := &boxFont{}
	run := TextRun{
		Font:   font,
		Glyphs: []Glyph{{CID: 1, Text: 'A', X: 0}, {CID: 2, Text: 'B', X: 1}},
		M:      matrix.Scale(10, 10),
	}
	prog := (&Program{}).Append(SetPaint{Paint: red}, run)

	s := raster.NewSurface(40, 40)
	Replay(context.Background(), prog, s, nil)
	if font.draws != 1 {
		t.Fatalf("got %d draws, want 1", font.draws)
	}
	if alphaAt(s, 15, 5) != 255 {
		t.Error("second glyph not painted")
	}

	// runs outside the clip region are skipped
	opts := &Options{Clip: raster.RectMask(stdimage.Rect(30, 30, 40, 40))}
	Replay(context.Background(), prog, raster.NewSurface(40, 40), opts)
	if font.draws != 1 {
		t.Error("invisible text run was drawn")
	}
}

func TestFirstColor(t *testing.T) {
	inner := (&Program{}).Append(SetPaint{Paint: blue})
	prog := (&Program{}).Append(
		SetGeometry{Path: raster.Rect(0, 0, 1, 1)},
		Nested{Program: inner},
		SetPaint{Paint: red},
	)
	c, ok := FirstColor(prog)
	if !ok || c != blue.Color {
		t.Errorf("got %v %t", c, ok)
	}

	if _, ok := FirstColor(&Program{}); ok {
		t.Error("empty program has a color")
	}
}

func TestProgramImages(t *testing.T) {
	a := pdfpaint.NewReference(1, 0)
	b := pdfpaint.NewReference(2, 0)
	inner := (&Program{}).Append(DrawImage{Ref: b}, DrawImage{Ref: a})
	prog := (&Program{}).Append(
		DrawImage{Ref: a},
		DrawImage{Ref: a},
		FormGroup{Program: inner},
	)
	if d := cmp.Diff([]pdfpaint.Reference{a, b}, prog.Images()); d != "" {
		t.Error(d)
	}
	if prog.Len() != 3 {
		t.Errorf("got %d ops", prog.Len())
	}
}
