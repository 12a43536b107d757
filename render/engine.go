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

// Package render ties the parts of the page painting engine together.
//
// An [Engine] holds the state which is shared between the paint passes for
// one PDF file: the color space parser, the image decode pipeline and the
// image cache.  Paint passes for different pages, or for the same page at
// different resolutions, can run concurrently.
package render

import (
	"context"
	stdimage "image"
	"math"

	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pdfpaint"
	"seehuhn.de/go/pdfpaint/config"
	"seehuhn.de/go/pdfpaint/graphics/color"
	"seehuhn.de/go/pdfpaint/graphics/image"
	"seehuhn.de/go/pdfpaint/graphics/imagecache"
	"seehuhn.de/go/pdfpaint/graphics/pattern"
	"seehuhn.de/go/pdfpaint/graphics/raster"
	"seehuhn.de/go/pdfpaint/graphics/shading"
	"seehuhn.de/go/pdfpaint/graphics/shapes"
)

// Engine paints programs for one PDF file.
type Engine struct {
	cfg    *config.Config
	r      pdfpaint.Getter
	spaces *color.Parser
	images *image.Pipeline
	policy image.Policy
}

// New creates an engine for the objects available through r.
// If cfg is nil, the default configuration is used.
func New(cfg *config.Config, r pdfpaint.Getter) (*Engine, error) {
	return NewWithCache(cfg, r, nil)
}

// NewWithCache is like [New], but uses the given image cache.  This allows
// several engines to share one memory budget.  If cache is nil, a new
// cache is allocated.
func NewWithCache(cfg *config.Config, r pdfpaint.Getter, cache *imagecache.Cache[*image.Bitmap]) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy, err := image.ParsePolicy(cfg.ImageScaling)
	if err != nil {
		return nil, err
	}

	spaces := color.NewParser(r)
	e := &Engine{
		cfg:    cfg,
		r:      r,
		spaces: spaces,
		images: image.NewPipeline(cfg, r, spaces, cache),
		policy: policy,
	}
	pdfpaint.Logger().Debug("engine created",
		"cacheMB", cfg.ImageCacheMB,
		"workers", cfg.DecodeWorkers,
		"async", cfg.AsyncImages,
		"scaling", policy.String())
	return e, nil
}

// Config returns the configuration of the engine.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Cache returns the image cache of the engine.
func (e *Engine) Cache() *imagecache.Cache[*image.Bitmap] {
	return e.images.Cache()
}

// Pass describes one paint pass.
type Pass struct {
	// Base maps the program's user space to device space.
	Base matrix.Matrix

	// Clip, if non-nil, restricts painting to part of the surface.
	Clip *stdimage.Alpha

	// Listener, if non-nil, receives progress notifications.
	Listener func(ops int)

	// Stop, if non-nil, is polled between operations.
	Stop func() bool
}

// Replay paints a program onto dst.  If pass is nil, the program is painted
// with the identity transformation and without clipping.
func (e *Engine) Replay(ctx context.Context, prog *shapes.Program, dst *raster.Surface, pass *Pass) shapes.Result {
	if pass == nil {
		pass = &Pass{}
	}
	res := shapes.Replay(ctx, prog, dst, &shapes.Options{
		Base:     pass.Base,
		Clip:     pass.Clip,
		Listener: pass.Listener,
		Stop:     pass.Stop,
		Images:   e.images,
		Config:   e.cfg,
		Policy:   e.policy,
	})
	if res.Stopped {
		pdfpaint.Logger().Debug("paint pass stopped", "ops", res.Ops, "total", prog.Len())
	}
	return res
}

// ColorSpace reads a color space object.  Parsed color spaces are shared
// between all users of the engine.
func (e *Engine) ColorSpace(obj pdfpaint.Object) (color.Space, error) {
	return e.spaces.Parse(obj)
}

// ResolveColor converts a color to sRGB.
func (e *Engine) ResolveColor(space color.Space, comps []float64) color.RGB {
	return color.Resolve(space, comps)
}

// Shading reads a shading object.
func (e *Engine) Shading(obj pdfpaint.Object) (shading.Shading, error) {
	return shading.Extract(e.r, obj, e.spaces)
}

// Pattern reads a pattern object.  The function build is used to convert
// the content stream of tiling patterns into a program.
func (e *Engine) Pattern(obj pdfpaint.Object, build pattern.CellBuilder) (pattern.Pattern, error) {
	return pattern.Extract(e.r, obj, e.spaces, build)
}

// DefaultPolicy can be passed to [Engine.GetOrDecodeImage] to select the
// policy set by Config.ImageScaling.
const DefaultPolicy image.Policy = math.MaxUint8

// GetOrDecodeImage returns the bitmap for an image, decoding it if needed.
func (e *Engine) GetOrDecodeImage(ctx context.Context, ref pdfpaint.Reference, policy image.Policy, target stdimage.Point) (*image.Bitmap, bool) {
	if policy == DefaultPolicy {
		policy = e.policy
	}
	return e.images.Get(ctx, ref, policy, target)
}

// Prefetch starts decoding all images painted by prog.  In asynchronous
// mode, this returns immediately.
func (e *Engine) Prefetch(prog *shapes.Program) {
	for _, ref := range prog.Images() {
		e.images.Reference(ref, e.policy, stdimage.Point{}).Start()
	}
}

// ReleaseProgram drops the image references held for prog.  Decodes
// which are still running are cancelled, cached bitmaps stay available.
func (e *Engine) ReleaseProgram(prog *shapes.Program) {
	e.images.Release(prog.Images())
}

// Decodes returns the number of images decoded so far.
func (e *Engine) Decodes() int64 {
	return e.images.Decodes()
}

// Close stops all background work.
func (e *Engine) Close() {
	e.images.Close()
}
