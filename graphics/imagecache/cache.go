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

// Package imagecache implements a memory-bounded LRU cache for decoded
// images.
//
// Each entry has a weight, which approximates the memory used by the
// entry in bytes.  When the total weight exceeds the capacity of the cache,
// the least recently used entries are removed.  Both [Cache.Get] and
// [Cache.Put] count as a use.
//
// A Cache can be used concurrently from several goroutines.
package imagecache

import (
	"sync"

	"seehuhn.de/go/pdfpaint"
)

// Weighted is implemented by values stored in a [Cache].
type Weighted interface {
	// Weight returns the approximate size of the value in bytes.
	Weight() int64
}

// Key identifies a cache entry.
// Different variants of the same image are cached separately.
type Key struct {
	Ref     pdfpaint.Reference
	Variant uint8
}

// Stats summarizes the activity of a cache.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Cache is a weighted LRU cache.
type Cache[V Weighted] struct {
	enabled  bool
	capacity int64

	mu          sync.Mutex
	weight      int64
	entries     map[Key]*entry[V]
	first, last *entry[V]
	stats       Stats
}

type entry[V Weighted] struct {
	prev, next *entry[V]
	key        Key
	val        V
	weight     int64
}

// New creates a new cache with the given capacity in bytes.
// If enabled is false, the cache never stores anything.
func New[V Weighted](capacity int64, enabled bool) *Cache[V] {
	return &Cache[V]{
		enabled:  enabled,
		capacity: capacity,
		entries:  make(map[Key]*entry[V]),
	}
}

// Get returns a value from the cache and marks it as recently used.
func (c *Cache[V]) Get(key Key) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false
	}
	c.stats.Hits++
	c.moveToFront(ent)
	return ent.val, true
}

// Put adds a value to the cache, replacing any previous value for the same
// key.  Afterwards, least recently used entries are evicted until the total
// weight fits into the capacity.  A value whose weight alone exceeds the
// capacity is evicted immediately.
func (c *Cache[V]) Put(key Key, val V) {
	if !c.enabled {
		return
	}
	w := max(val.Weight(), 0)

	c.mu.Lock()
	defer c.mu.Unlock()

	if w > c.capacity {
		if ent, ok := c.entries[key]; ok {
			c.unlink(ent)
		}
		c.stats.Evictions++
		return
	}

	if ent, ok := c.entries[key]; ok {
		c.weight += w - ent.weight
		ent.val = val
		ent.weight = w
		c.moveToFront(ent)
	} else {
		ent := &entry[V]{key: key, val: val, weight: w}
		c.entries[key] = ent
		c.weight += w
		c.moveToFront(ent)
	}

	c.evict()
}

// Remove deletes an entry from the cache.
func (c *Cache[V]) Remove(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.entries[key]; ok {
		c.unlink(ent)
	}
}

// Clear removes all entries from the cache.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
	c.first = nil
	c.last = nil
	c.weight = 0
}

// Len returns the number of entries in the cache.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Weight returns the total weight of all entries.
func (c *Cache[V]) Weight() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.weight
}

// Capacity returns the maximum total weight of the cache.
func (c *Cache[V]) Capacity() int64 {
	return c.capacity
}

// Enabled reports whether the cache stores values.
func (c *Cache[V]) Enabled() bool {
	return c.enabled
}

// Stats returns a snapshot of the cache statistics.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// evict removes the least recently used entries until the total weight
// fits.  The caller must hold c.mu.
func (c *Cache[V]) evict() {
	for c.weight > c.capacity && c.last != nil {
		c.unlink(c.last)
		c.stats.Evictions++
	}
}

func (c *Cache[V]) moveToFront(ent *entry[V]) {
	if ent == c.first {
		return
	}
	c.detach(ent)

	ent.next = c.first
	if c.first != nil {
		c.first.prev = ent
	}
	c.first = ent
	if c.last == nil {
		c.last = ent
	}
}

// detach removes ent from the list, but not from the map.
func (c *Cache[V]) detach(ent *entry[V]) {
	if ent.prev != nil {
		ent.prev.next = ent.next
	}
	if ent.next != nil {
		ent.next.prev = ent.prev
	}
	if ent == c.first {
		c.first = ent.next
	}
	if ent == c.last {
		c.last = ent.prev
	}
	ent.prev = nil
	ent.next = nil
}

func (c *Cache[V]) unlink(ent *entry[V]) {
	c.detach(ent)
	delete(c.entries, ent.key)
	c.weight -= ent.weight
}
