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

package workpool

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestBoundedConcurrency(t *testing.T) {
	const workers = 2
	const tasks = 50

	p := New(workers)

	var active, peak, done atomic.Int32
	release := make(chan struct{})
	for range tasks {
		ok := p.Submit(func() {
			n := active.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			<-release
			active.Add(-1)
			done.Add(1)
		})
		if !ok {
			t.Fatal("Submit failed on an open pool")
		}
	}
	close(release)
	p.Close()

	if got := done.Load(); got != tasks {
		t.Errorf("%d tasks finished, want %d", got, tasks)
	}
	if got := peak.Load(); got > workers {
		t.Errorf("%d tasks ran concurrently, limit is %d", got, workers)
	}
}

func TestSubmitAfterClose(t *testing.T) {
	p := New(1)
	p.Close()
	if p.Submit(func() {}) {
		t.Error("Submit succeeded on a closed pool")
	}
}

func TestFIFO(t *testing.T) {
	p := New(1)

	var mu sync.Mutex
	var order []int
	for i := range 10 {
		p.Submit(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}
	p.Close()

	for i, v := range order {
		if v != i {
			t.Fatalf("tasks ran out of order: %v", order)
		}
	}
}

func TestPanicDoesNotKillWorker(t *testing.T) {
	p := New(1)
	p.Submit(func() { panic("boom") })

	var ran atomic.Bool
	p.Submit(func() { ran.Store(true) })
	p.Close()

	if !ran.Load() {
		t.Error("task after panic did not run")
	}
}
