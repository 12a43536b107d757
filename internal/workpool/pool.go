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

// Package workpool implements a pool of goroutines with a bounded number of
// workers and an unbounded queue of pending tasks.
package workpool

import (
	"fmt"
	"sync"

	"seehuhn.de/go/pdfpaint"
)

// Pool runs submitted tasks on at most a fixed number of goroutines.
//
// Submit never blocks: tasks which cannot start immediately are queued in
// FIFO order.  Pool is safe for concurrent use.
type Pool struct {
	workers int

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	running int // number of started worker goroutines
	idle    int // number of workers waiting for tasks
	closed  bool

	wg sync.WaitGroup
}

// New creates a pool with the given number of workers.
// Values smaller than one are treated as one.
// Worker goroutines are started on demand.
func New(workers int) *Pool {
	p := &Pool{workers: max(workers, 1)}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Workers returns the maximal number of concurrently running tasks.
func (p *Pool) Workers() int {
	return p.workers
}

// Submit schedules fn to run on one of the workers.
// It returns false if the pool has been closed, in which case fn is not run.
func (p *Pool) Submit(fn func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return false
	}
	p.queue = append(p.queue, fn)
	if p.idle > 0 {
		p.cond.Signal()
	} else if p.running < p.workers {
		p.running++
		p.wg.Add(1)
		go p.worker()
	}
	return true
}

// Len returns the number of queued tasks which have not yet started.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Close stops accepting new tasks and waits until all queued tasks
// have finished.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.idle++
			p.cond.Wait()
			p.idle--
		}
		if len(p.queue) == 0 {
			p.running--
			p.mu.Unlock()
			return
		}
		fn := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.mu.Unlock()

		run(fn)
	}
}

// run executes a single task.  A panicking task must not take down the
// worker, so that the remaining queue still drains.
func run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			pdfpaint.Logger().Warn("panic in background task",
				"err", fmt.Sprint(r))
		}
	}()
	fn()
}
