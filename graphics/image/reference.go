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
	"errors"
	"image"
	"sync"

	"seehuhn.de/go/pdfpaint"
	"seehuhn.de/go/pdfpaint/graphics/imagecache"
)

// State describes the progress of decoding an image.
type State uint8

// These are the states of a [Reference].
const (
	Unstarted State = iota
	Decoding
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Unstarted:
		return "unstarted"
	case Decoding:
		return "decoding"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "invalid"
	}
}

// Reference is one variant of an image, together with its decoding state.
//
// A reference starts in the Unstarted state.  [Reference.Start] moves it to
// Decoding, and from there it reaches Ready or Failed once the decode has
// finished.  Ready and Failed are final.  If decoding is cancelled, the
// reference returns to Unstarted, so that a later paint pass can try again.
// At most one decode runs at any time.
type Reference struct {
	p      *Pipeline
	ref    pdfpaint.Reference
	policy Policy

	mu     sync.Mutex
	state  State
	target image.Point
	done   chan struct{} // closed when the current decode finishes
	cancel context.CancelFunc
	bm     *Bitmap
}

// Ref returns the PDF reference of the image.
func (r *Reference) Ref() pdfpaint.Reference {
	return r.ref
}

// Policy returns the variant policy of the reference.
func (r *Reference) Policy() Policy {
	return r.policy
}

// State returns the current state of the reference.
func (r *Reference) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// SetTarget records the size at which the image will be painted, in device
// pixels.  This only has an effect before decoding starts.
func (r *Reference) SetTarget(target image.Point) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == Unstarted {
		r.target = target
	}
}

func (r *Reference) key() imagecache.Key {
	return imagecache.Key{Ref: r.ref, Variant: uint8(r.policy)}
}

// Start begins decoding the image, if this has not happened yet.
//
// If a decoded variant is found in the cache, the reference becomes Ready
// immediately.  Otherwise, in asynchronous mode the decode is queued on
// the worker pool and Start returns without waiting.  In synchronous mode
// the image is decoded before Start returns.
func (r *Reference) Start() {
	r.start(nil)
}

// start is like Start.  In synchronous mode, cancelling caller interrupts
// the decode.
func (r *Reference) start(caller context.Context) {
	r.mu.Lock()
	if r.state != Unstarted {
		r.mu.Unlock()
		return
	}
	if bm, ok := r.p.cache.Get(r.key()); ok {
		r.bm = bm
		r.state = Ready
		r.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(r.p.ctx)
	if !r.p.async && caller != nil {
		stop := context.AfterFunc(caller, cancel)
		defer stop()
	}
	done := make(chan struct{})
	r.state = Decoding
	r.cancel = cancel
	r.done = done
	target := r.target
	r.mu.Unlock()

	task := func() { r.run(ctx, target, done) }
	if !r.p.async || !r.p.pool.Submit(task) {
		task()
	}
}

// Wait returns the decoded bitmap, starting the decode if needed.
// If the image is still being decoded, Wait blocks until the decode
// finishes or ctx is cancelled.  The second return value is false if no
// bitmap is available.
//
// If the decode is cancelled on behalf of someone else, for example by
// [Pipeline.Release], while ctx is still live, Wait starts it again.
func (r *Reference) Wait(ctx context.Context) (*Bitmap, bool) {
	for {
		r.start(ctx)

		r.mu.Lock()
		state, done := r.state, r.done
		r.mu.Unlock()

		if state == Decoding {
			select {
			case <-done:
			case <-ctx.Done():
				return nil, false
			}
		}

		r.mu.Lock()
		state, bm := r.state, r.bm
		r.mu.Unlock()

		switch {
		case state == Ready:
			return bm, true
		case state == Unstarted && ctx.Err() == nil && r.p.ctx.Err() == nil:
			continue
		default:
			return nil, false
		}
	}
}

// Cancel interrupts a running decode.  Bitmaps which are already stored in
// the cache are not affected.
func (r *Reference) Cancel() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (r *Reference) run(ctx context.Context, target image.Point, done chan struct{}) {
	bm, err := r.p.produce(ctx, r.ref, r.policy, target)

	r.mu.Lock()
	switch {
	case err == nil:
		r.bm = bm
		r.state = Ready
	case errors.Is(err, ErrCancelled) || ctx.Err() != nil:
		pdfpaint.Logger().Debug("image decode cancelled", "ref", r.ref)
		r.state = Unstarted
	default:
		pdfpaint.Logger().Debug("image decode failed",
			"ref", r.ref,
			"variant", r.policy.String(),
			"err", err)
		r.state = Failed
	}
	r.cancel()
	r.cancel = nil
	r.mu.Unlock()

	close(done)
}
