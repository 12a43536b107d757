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

package pdfpaint

import (
	"bytes"
	"errors"
	"io"
	"sync"
)

// Store is an in-memory collection of indirect objects.
// It implements the [Getter] interface and is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	objs map[Reference]Object
	data map[Reference][]byte
	next uint32
}

// NewStore returns an empty object store.
func NewStore() *Store {
	return &Store{
		objs: make(map[Reference]Object),
		data: make(map[Reference][]byte),
		next: 1,
	}
}

// Alloc allocates a new, unused object reference.
func (s *Store) Alloc() Reference {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref := NewReference(s.next, 0)
	s.next++
	return ref
}

// Put stores an object under the given reference.
// For streams, the data is read completely and kept in memory.
func (s *Store) Put(ref Reference, obj Object) error {
	var body []byte
	if stm, ok := obj.(*Stream); ok {
		if stm.R != nil {
			var err error
			body, err = io.ReadAll(stm.R)
			if err != nil {
				return err
			}
		}
		obj = &Stream{Dict: stm.Dict}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.objs[ref] = obj
	if body != nil {
		s.data[ref] = body
	} else {
		delete(s.data, ref)
	}
	if n := ref.Number(); n >= s.next {
		s.next = n + 1
	}
	return nil
}

// Add stores obj under a newly allocated reference.
func (s *Store) Add(obj Object) (Reference, error) {
	ref := s.Alloc()
	return ref, s.Put(ref, obj)
}

// Get implements the [Getter] interface.
// Missing objects are reported as null, as required for PDF files.
// Each call returns a fresh reader for stream data.
func (s *Store) Get(ref Reference) (Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objs[ref]
	if !ok {
		return nil, nil
	}
	if stm, isStream := obj.(*Stream); isStream {
		return &Stream{
			Dict: stm.Dict,
			R:    bytes.NewReader(s.data[ref]),
		}, nil
	}
	return obj, nil
}

// ErrNotFound is returned by [MustGet] for references which are not present
// in the store.
var ErrNotFound = errors.New("object not found")

// MustGet is like Get, but returns [ErrNotFound] for missing objects.
func (s *Store) MustGet(ref Reference) (Object, error) {
	s.mu.RLock()
	_, ok := s.objs[ref]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s.Get(ref)
}
