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

package image

import (
	"context"
	"image"
	"slices"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/maps"

	"seehuhn.de/go/pdfpaint"
	"seehuhn.de/go/pdfpaint/config"
	"seehuhn.de/go/pdfpaint/graphics/color"
	"seehuhn.de/go/pdfpaint/graphics/imagecache"
	"seehuhn.de/go/pdfpaint/internal/workpool"
)

// Pipeline decodes the images of a PDF file.
//
// The pipeline hands out one [Reference] per image and variant policy, so
// that concurrent requests for the same image share a single decode.
// Decoded bitmaps are stored in a cache, which may be shared between
// pipelines.
type Pipeline struct {
	r      pdfpaint.Getter
	spaces *color.Parser
	cache  *imagecache.Cache[*Bitmap]
	pool   *workpool.Pool
	async  bool

	ctx  context.Context
	stop context.CancelFunc

	mu   sync.Mutex
	refs map[refKey]*Reference

	decodes atomic.Int64
}

type refKey struct {
	ref    pdfpaint.Reference
	policy Policy
}

// NewPipeline creates a new decode pipeline.  If cache is nil, a cache
// is allocated as described by cfg.
func NewPipeline(cfg *config.Config, r pdfpaint.Getter, spaces *color.Parser, cache *imagecache.Cache[*Bitmap]) *Pipeline {
	if spaces == nil {
		spaces = color.NewParser(r)
	}
	if cache == nil {
		cache = imagecache.New[*Bitmap](cfg.CacheBytes(), cfg.ImageCacheEnabled)
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Pipeline{
		r:      r,
		spaces: spaces,
		cache:  cache,
		pool:   workpool.New(cfg.DecodeWorkers),
		async:  cfg.AsyncImages,
		ctx:    ctx,
		stop:   stop,
		refs:   make(map[refKey]*Reference),
	}
}

// Cache returns the bitmap cache used by the pipeline.
func (p *Pipeline) Cache() *imagecache.Cache[*Bitmap] {
	return p.cache
}

// Reference returns the shared reference for the given image and policy.
// The target size is recorded if the image has not been decoded yet.
func (p *Pipeline) Reference(ref pdfpaint.Reference, policy Policy, target image.Point) *Reference {
	key := refKey{ref, policy}

	p.mu.Lock()
	r, ok := p.refs[key]
	if !ok {
		r = &Reference{p: p, ref: ref, policy: policy}
		p.refs[key] = r
	}
	p.mu.Unlock()

	r.SetTarget(target)
	return r
}

// Get returns the bitmap for an image, decoding it if necessary.
// The second return value is false if the image could not be decoded,
// or if ctx was cancelled first.
func (p *Pipeline) Get(ctx context.Context, ref pdfpaint.Reference, policy Policy, target image.Point) (*Bitmap, bool) {
	if bm, ok := p.cache.Get(imagecache.Key{Ref: ref, Variant: uint8(policy)}); ok {
		return bm, true
	}
	return p.Reference(ref, policy, target).Wait(ctx)
}

// Release forgets the references for the given images.  Decodes which are
// still running are cancelled; callers still waiting for one of them with
// a live context restart the decode.  Cached bitmaps stay available.
func (p *Pipeline) Release(refs []pdfpaint.Reference) {
	drop := make(map[pdfpaint.Reference]bool, len(refs))
	for _, ref := range refs {
		drop[ref] = true
	}

	p.mu.Lock()
	keys := maps.Keys(p.refs)
	slices.SortFunc(keys, compareRefKeys)
	var victims []*Reference
	for _, key := range keys {
		if drop[key.ref] {
			victims = append(victims, p.refs[key])
			delete(p.refs, key)
		}
	}
	p.mu.Unlock()

	for _, r := range victims {
		r.Cancel()
	}
}

func compareRefKeys(a, b refKey) int {
	if a.ref != b.ref {
		if a.ref < b.ref {
			return -1
		}
		return 1
	}
	return int(a.policy) - int(b.policy)
}

// Pending returns the number of references held by the pipeline.
func (p *Pipeline) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.refs)
}

// Decodes returns the number of images decoded so far.
func (p *Pipeline) Decodes() int64 {
	return p.decodes.Load()
}

// Close cancels all running decodes and waits for the worker pool to
// drain.
func (p *Pipeline) Close() {
	p.stop()
	p.pool.Close()
}

// produce computes one variant of an image, using cached bitmaps where
// possible.
func (p *Pipeline) produce(ctx context.Context, ref pdfpaint.Reference, policy Policy, target image.Point) (*Bitmap, error) {
	key := imagecache.Key{Ref: ref, Variant: uint8(policy)}
	if bm, ok := p.cache.Get(key); ok {
		return bm, nil
	}

	nativeKey := imagecache.Key{Ref: ref, Variant: uint8(Native)}
	native, ok := p.cache.Get(nativeKey)
	if !ok {
		var err error
		native, err = Decode(ctx, p.r, p.spaces, ref)
		if err != nil {
			return nil, err
		}
		p.decodes.Add(1)
		if policy == Native {
			p.cache.Put(nativeKey, native)
			return native, nil
		}
	}

	bm := Resample(native, policy, target)
	p.cache.Put(key, bm)
	return bm, nil
}
