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

package imagecache

import (
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"seehuhn.de/go/pdfpaint"
)

type blob int64

func (b blob) Weight() int64 { return int64(b) }

func key(n uint32) Key {
	return Key{Ref: pdfpaint.NewReference(n, 0)}
}

// checkList verifies the linked list against the map and the weight total.
func checkList[V Weighted](t *testing.T, c *Cache[V]) {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	var total int64
	var prev *entry[V]
	for ent := c.first; ent != nil; ent = ent.next {
		require.True(t, ent.prev == prev, "broken back link")
		require.True(t, c.entries[ent.key] == ent, "entry missing from map")
		total += ent.weight
		prev = ent
		n++
	}
	require.True(t, c.last == prev, "wrong last entry")
	require.Equal(t, len(c.entries), n)
	require.Equal(t, c.weight, total)
}

func TestLRUOrder(t *testing.T) {
	c := New[blob](30, true)
	c.Put(key(1), 10)
	c.Put(key(2), 10)
	c.Put(key(3), 10)

	// key 1 is the oldest entry, but using it makes key 2 the candidate
	// for eviction
	_, ok := c.Get(key(1))
	require.True(t, ok)

	c.Put(key(4), 10)
	checkList(t, c)

	_, ok = c.Get(key(2))
	require.False(t, ok, "key 2 should have been evicted")
	for _, n := range []uint32{1, 3, 4} {
		_, ok := c.Get(key(n))
		require.True(t, ok, "key %d missing", n)
	}
	require.Equal(t, 3, c.Len())
	require.Equal(t, int64(30), c.Weight())
	require.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestReplace(t *testing.T) {
	c := New[blob](100, true)
	c.Put(key(1), 40)
	c.Put(key(2), 40)
	c.Put(key(1), 10)
	require.Equal(t, int64(50), c.Weight())
	require.Equal(t, 2, c.Len())

	// growing an entry can evict others
	c.Put(key(1), 90)
	checkList(t, c)
	require.Equal(t, int64(90), c.Weight())
	_, ok := c.Get(key(2))
	require.False(t, ok)
}

func TestOversized(t *testing.T) {
	c := New[blob](100, true)
	c.Put(key(1), 50)
	c.Put(key(2), 500)
	checkList(t, c)

	_, ok := c.Get(key(2))
	require.False(t, ok)
	_, ok = c.Get(key(1))
	require.True(t, ok, "oversized value evicted other entries")
	require.Equal(t, 1, c.Len())
	require.Equal(t, int64(50), c.Weight())
	require.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestDisabled(t *testing.T) {
	c := New[blob](1000, false)
	c.Put(key(1), 1)
	_, ok := c.Get(key(1))
	require.False(t, ok)
	require.Equal(t, 0, c.Len())
	require.Equal(t, uint64(1), c.Stats().Misses)
}

func TestRemoveClear(t *testing.T) {
	c := New[blob](100, true)
	for i := range uint32(5) {
		c.Put(key(i), 10)
	}
	c.Remove(key(0)) // last
	c.Remove(key(4)) // first
	c.Remove(key(2)) // middle
	c.Remove(key(7)) // not present
	checkList(t, c)
	require.Equal(t, 2, c.Len())
	require.Equal(t, int64(20), c.Weight())

	c.Clear()
	checkList(t, c)
	require.Equal(t, 0, c.Len())

	c.Put(key(1), 10)
	_, ok := c.Get(key(1))
	require.True(t, ok)
}

func TestVariants(t *testing.T) {
	c := New[blob](100, true)
	ref := pdfpaint.NewReference(9, 0)
	c.Put(Key{Ref: ref, Variant: 0}, 1)
	c.Put(Key{Ref: ref, Variant: 1}, 2)

	v, ok := c.Get(Key{Ref: ref, Variant: 1})
	require.True(t, ok)
	require.Equal(t, blob(2), v)
	require.Equal(t, 2, c.Len())
}

func TestWeightInvariant(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	for round := range 20 {
		capacity := 1 + rng.Int64N(1000)
		c := New[blob](capacity, true)
		for range 500 {
			k := key(uint32(rng.IntN(50)))
			switch rng.IntN(4) {
			case 0:
				c.Get(k)
			case 1:
				c.Remove(k)
			default:
				c.Put(k, blob(rng.Int64N(capacity/2+2)))
			}
			require.True(t, c.Weight() <= capacity,
				"round %d: weight %d exceeds capacity %d", round, c.Weight(), capacity)
		}
		checkList(t, c)
	}
}

func TestConcurrent(t *testing.T) {
	c := New[blob](500, true)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rng := rand.New(rand.NewPCG(uint64(g), 7))
			for range 1000 {
				k := key(uint32(rng.IntN(40)))
				if rng.IntN(2) == 0 {
					c.Put(k, blob(1+rng.IntN(50)))
				} else {
					c.Get(k)
				}
			}
		}()
	}
	wg.Wait()

	checkList(t, c)
	require.True(t, c.Weight() <= c.Capacity())
}
