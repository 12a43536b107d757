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
	"context"
	"errors"
	stdimage "image"
	"math"
	"time"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pdfpaint"
	"seehuhn.de/go/pdfpaint/config"
	"seehuhn.de/go/pdfpaint/graphics/image"
	"seehuhn.de/go/pdfpaint/graphics/raster"
)

// Options control a replay.
type Options struct {
	// Base maps the user space of the program to device space.  The zero
	// matrix is treated as the identity.
	Base matrix.Matrix

	// Clip is the clip region at program entry.  If this is nil, the
	// whole surface can be painted.
	Clip *stdimage.Alpha

	// Listener, if non-nil, is called with the number of operations
	// executed so far, at most once per configured progress interval.
	Listener func(ops int)

	// Stop, if non-nil, is polled between operations.  Once it returns
	// true, the replay ends.
	Stop func() bool

	// Images supplies the bitmaps for image operations.  If this is nil,
	// images are not painted.
	Images ImageSource

	// Config holds the engine settings.  If this is nil, the defaults are
	// used.
	Config *config.Config

	// Policy is the variant of images to paint.
	Policy image.Policy
}

// Result describes the outcome of a replay.
type Result struct {
	// Ops is the number of operations executed, including the operations
	// of nested programs.
	Ops int

	// Stopped is set if the replay ended early.
	Stopped bool
}

var errStopped = errors.New("replay stopped")

// Replay executes a program onto the surface dst.
//
// Operations are executed in program order.  The replay ends early if
// ctx is cancelled or opts.Stop returns true; the partially painted
// surface remains valid in this case.
func Replay(ctx context.Context, prog *Program, dst *raster.Surface, opts *Options) Result {
	if opts == nil {
		opts = &Options{}
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	base := opts.Base
	if base == (matrix.Matrix{}) {
		base = matrix.Identity
	}

	r := &replayer{
		ctx:          ctx,
		opts:         opts,
		cfg:          cfg,
		lastProgress: time.Now(),
	}
	st := newState(base, opts.Clip)
	err := r.run(prog, st, dst.Img)
	return Result{
		Ops:     r.ops,
		Stopped: errors.Is(err, errStopped),
	}
}

type replayer struct {
	ctx  context.Context
	opts *Options
	cfg  *config.Config

	ops          int
	lastProgress time.Time
}

// state is the mutable paint state of one program.
type state struct {
	base      matrix.Matrix
	ctm       matrix.Matrix
	clip      *stdimage.Alpha
	entryClip *stdimage.Alpha

	geom   *raster.Path
	paint  Paint
	src    stdimage.Image
	srcOK  bool
	stroke raster.StrokeStyle
	mode   raster.BlendMode
	alpha  float64
}

func newState(base matrix.Matrix, clip *stdimage.Alpha) *state {
	return &state{
		base:      base,
		ctm:       base,
		clip:      clip,
		entryClip: clip,
		paint:     SolidPaint{},
		stroke:    raster.DefaultStroke(),
		mode:      raster.Normal,
		alpha:     1,
	}
}

// child returns the state at entry to a nested program.
func (st *state) child(base matrix.Matrix, clip *stdimage.Alpha) *state {
	c := *st
	c.base = base
	c.ctm = base
	c.clip = clip
	c.entryClip = clip
	c.geom = nil
	return &c
}

func (r *replayer) stopped() bool {
	if r.ctx.Err() != nil {
		return true
	}
	return r.opts.Stop != nil && r.opts.Stop()
}

func (r *replayer) progress() {
	if r.opts.Listener == nil {
		return
	}
	now := time.Now()
	if now.Sub(r.lastProgress) < r.cfg.ProgressInterval {
		return
	}
	r.lastProgress = now
	r.opts.Listener(r.ops)
}

func (r *replayer) run(prog *Program, st *state, dst *stdimage.RGBA) error {
	if prog == nil {
		return nil
	}
	for _, op := range prog.ops {
		if r.stopped() {
			return errStopped
		}
		r.ops++

		switch op := op.(type) {
		case SetGeometry:
			st.geom = op.Path
		case SetTransform:
			st.ctm = op.M.Mul(st.base)
		case SetPaint:
			st.paint = op.Paint
			st.src, st.srcOK = nil, false
		case SetComposite:
			st.mode = op.Mode
			st.alpha = op.Alpha
		case SetStroke:
			st.stroke = op.Style

		case ClipPush:
			if r.cfg.DisableClip || st.geom == nil {
				break
			}
			cov := raster.Coverage(st.geom, st.ctm, op.Rule, dst.Rect)
			st.clip = raster.Intersect(st.clip, cov)
		case ClipReset:
			st.clip = st.entryClip

		case Fill:
			r.fill(st, dst, op.Rule)
			r.progress()
		case Draw:
			r.draw(st, dst)
			r.progress()
		case TextRun:
			r.text(st, dst, op)
			r.progress()
		case DrawImage:
			r.image(st, dst, op)

		case Nested:
			if err := r.run(op.Program, st.child(st.ctm, st.clip), dst); err != nil {
				return err
			}
		case FormGroup:
			if err := r.group(st, dst, op); err != nil {
				return err
			}
		}
	}
	return nil
}

// style returns the paint style for the current state.  The second return
// value is false if nothing would be painted.
func (r *replayer) style(st *state, dst *stdimage.RGBA) (*raster.Style, bool) {
	if !st.srcOK {
		st.srcOK = true
		if st.paint != nil {
			st.src = st.paint.Source(&Env{
				Ctx:    r.ctx,
				Base:   st.base,
				Bounds: dst.Rect,
				Images: r.opts.Images,
				Config: r.cfg,
				Policy: r.opts.Policy,
			})
		}
	}
	if st.src == nil {
		return nil, false
	}
	s := &raster.Style{
		Src:   st.src,
		Clip:  r.clip(st),
		Alpha: r.alpha(st),
		Mode:  st.mode,
	}
	return s, s.Alpha > 0
}

func (r *replayer) clip(st *state) *stdimage.Alpha {
	if r.cfg.DisableClip {
		return nil
	}
	return st.clip
}

func (r *replayer) alpha(st *state) float64 {
	if r.cfg.DisableAlpha {
		return 1
	}
	return st.alpha
}

// visible reports whether the device space box b overlaps the clip region.
func (r *replayer) visible(st *state, dst *stdimage.RGBA, b rect.Rect) bool {
	cb := raster.MaskBounds(r.clip(st), dst.Rect)
	return b.URx > float64(cb.Min.X) && b.LLx < float64(cb.Max.X) &&
		b.URy > float64(cb.Min.Y) && b.LLy < float64(cb.Max.Y)
}

func degenerate(b rect.Rect) bool {
	return b.URx-b.LLx < 1 || b.URy-b.LLy < 1
}

func (r *replayer) fill(st *state, dst *stdimage.RGBA, rule raster.Rule) {
	if st.geom.IsEmpty() {
		return
	}
	b := st.geom.Bounds(st.ctm)
	thin := degenerate(b)
	if !thin && !r.visible(st, dst, b) {
		return
	}
	s, ok := r.style(st, dst)
	if !ok {
		return
	}
	if thin {
		// A shape this thin would vanish under area coverage.
		raster.Hairline(dst, st.geom, st.ctm, s)
		return
	}
	raster.Fill(dst, st.geom, st.ctm, rule, s)
}

func (r *replayer) draw(st *state, dst *stdimage.RGBA) {
	if st.geom.IsEmpty() {
		return
	}
	b := st.geom.Bounds(st.ctm)
	thin := degenerate(b)
	if !thin {
		hw := st.stroke.HalfWidth(st.ctm) * max(st.stroke.MiterLimit, 1)
		b = rect.Rect{LLx: b.LLx - hw, LLy: b.LLy - hw, URx: b.URx + hw, URy: b.URy + hw}
		if !r.visible(st, dst, b) {
			return
		}
	}
	s, ok := r.style(st, dst)
	if !ok {
		return
	}
	raster.Stroke(dst, st.geom, st.ctm, &st.stroke, s)
}

func (r *replayer) text(st *state, dst *stdimage.RGBA, op TextRun) {
	if op.Font == nil || len(op.Glyphs) == 0 {
		return
	}
	m := op.M.Mul(st.ctm)
	if !r.visible(st, dst, op.Font.Bounds(op.Glyphs, m)) {
		return
	}
	s, ok := r.style(st, dst)
	if !ok {
		return
	}
	op.Font.Draw(dst, op.Glyphs, m, s)
}

func (r *replayer) image(st *state, dst *stdimage.RGBA, op DrawImage) {
	if r.opts.Images == nil {
		return
	}
	ib := raster.ImageBounds(st.ctm)
	if ib.Intersect(raster.MaskBounds(r.clip(st), dst.Rect)).Empty() {
		return
	}

	bm, ok := r.opts.Images.Get(r.ctx, op.Ref, op.policy(r.opts.Policy), ib.Size())
	if !ok {
		return
	}

	var s *raster.Style
	if bm.IsMask {
		s, ok = r.style(st, dst)
		if !ok {
			return
		}
	} else {
		s = &raster.Style{Clip: r.clip(st), Alpha: r.alpha(st), Mode: st.mode}
	}

	paint := func(q raster.Quality) error {
		if bm.IsMask {
			return raster.DrawMask(dst, bm.Img, st.ctm, s)
		}
		return raster.DrawImage(dst, bm.Img, st.ctm, q, s)
	}
	err := paint(raster.High)
	if errors.Is(err, raster.ErrOutOfMemory) && !bm.IsMask {
		pdfpaint.Logger().Warn("out of memory while painting image, retrying at low quality",
			"ref", op.Ref,
			"width", bm.Width,
			"height", bm.Height)
		err = paint(raster.Low)
	}
	if err != nil {
		pdfpaint.Logger().Debug("image not painted", "ref", op.Ref, "err", err)
	}
}

// group paints a form XObject.  Isolated groups, and groups which are
// composited with a non-trivial blend mode or opacity, are painted into
// a separate surface first.
func (r *replayer) group(st *state, dst *stdimage.RGBA, op FormGroup) error {
	m := op.M.Mul(st.ctm)
	bbox := raster.Rect(op.BBox.LLx, op.BBox.LLy, op.BBox.URx-op.BBox.LLx, op.BBox.URy-op.BBox.LLy)

	clip := st.clip
	if !r.cfg.DisableClip {
		clip = raster.Intersect(clip, raster.Coverage(bbox, m, raster.NonZero, dst.Rect))
	}

	direct := !op.Isolated && st.mode == raster.Normal && r.alpha(st) >= 1
	if direct {
		return r.run(op.Program, st.child(m, clip), dst)
	}

	area := deviceRect(bbox.Bounds(m)).Intersect(raster.MaskBounds(r.clip(st), dst.Rect))
	if area.Empty() {
		return nil
	}
	layer := raster.NewSurfaceRect(area)

	inner := st.child(m, nil)
	inner.mode = raster.Normal
	inner.alpha = 1
	err := r.run(op.Program, inner, layer.Img)

	// A stopped group is still composited, so that the partial output
	// stays consistent with the rest of the page.
	groupClip := clip
	if r.cfg.DisableClip {
		groupClip = nil
	}
	raster.Composite(dst, layer.Img, groupClip, r.alpha(st), st.mode)
	return err
}

func deviceRect(b rect.Rect) stdimage.Rectangle {
	const limit = 1 << 30
	c := func(x float64) int {
		if math.IsNaN(x) {
			return 0
		}
		return int(min(max(x, -limit), limit))
	}
	return stdimage.Rect(
		c(math.Floor(b.LLx)), c(math.Floor(b.LLy)),
		c(math.Ceil(b.URx)), c(math.Ceil(b.URy)))
}
