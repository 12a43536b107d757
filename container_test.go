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
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zlib"
)

func TestResolveLoop(t *testing.T) {
	s := NewStore()
	a := s.Alloc()
	b := s.Alloc()
	s.Put(a, b)
	s.Put(b, a)

	_, err := Resolve(s, a)
	if !IsMalformed(err) {
		t.Errorf("expected MalformedFileError, got %v", err)
	}
}

func TestResolveChain(t *testing.T) {
	s := NewStore()
	a := s.Alloc()
	b := s.Alloc()
	s.Put(a, b)
	s.Put(b, Integer(7))

	x, err := GetNumber(s, a)
	if err != nil {
		t.Fatal(err)
	}
	if x != 7 {
		t.Errorf("got %g, want 7", x)
	}
}

func TestGetters(t *testing.T) {
	s := NewStore()

	if _, err := GetDict(s, Integer(1)); !IsMalformed(err) {
		t.Errorf("wrong type accepted: %v", err)
	}

	d, err := GetDict(s, nil)
	if err != nil || d != nil {
		t.Errorf("null object: %v %v", d, err)
	}

	xs, err := GetFloatArray(s, Array{Integer(1), Real(2.5)})
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]float64{1, 2.5}, xs); d != "" {
		t.Error(d)
	}

	llx, lly, urx, ury, ok, err := GetRectangle(s, Array{Integer(10), Integer(20), Integer(0), Integer(5)})
	if err != nil || !ok {
		t.Fatal(ok, err)
	}
	if llx != 0 || lly != 5 || urx != 10 || ury != 20 {
		t.Errorf("wrong rectangle %g %g %g %g", llx, lly, urx, ury)
	}
}

func TestStoreStreams(t *testing.T) {
	s := NewStore()
	ref, err := s.Add(&Stream{Dict: Dict{"Length": Integer(5)}, R: strings.NewReader("hello")})
	if err != nil {
		t.Fatal(err)
	}

	for range 2 {
		stm, err := GetStream(s, ref)
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(stm.R)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "hello" {
			t.Errorf("got %q", data)
		}
	}

	if _, err := s.MustGet(NewReference(99, 0)); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing object: %v", err)
	}
}

func TestDecodeStreamChain(t *testing.T) {
	buf := &bytes.Buffer{}
	w := zlib.NewWriter(buf)
	w.Write([]byte("chained filters"))
	w.Close()

	encoded := hex.EncodeToString(buf.Bytes()) + ">"

	stm := &Stream{
		Dict: Dict{"Filter": Array{Name("ASCIIHexDecode"), Name("FlateDecode")}},
		R:    strings.NewReader(encoded),
	}
	body, img, err := DecodeStream(nil, stm)
	if err != nil {
		t.Fatal(err)
	}
	defer body.Close()
	if img != nil {
		t.Errorf("unexpected image filter %v", img.Name)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "chained filters" {
		t.Errorf("got %q", data)
	}
}

func TestDecodeStreamImageFilter(t *testing.T) {
	stm := &Stream{
		Dict: Dict{
			"Filter":      Name("DCTDecode"),
			"DecodeParms": Dict{"ColorTransform": Integer(0)},
		},
		R: strings.NewReader("not really a JPEG"),
	}
	body, img, err := DecodeStream(nil, stm)
	if err != nil {
		t.Fatal(err)
	}
	defer body.Close()
	if img == nil || img.Name != "DCTDecode" {
		t.Fatalf("image filter not reported: %v", img)
	}
	if img.Parms["ColorTransform"] != Integer(0) {
		t.Errorf("decode parameters lost")
	}
}

func TestFormat(t *testing.T) {
	obj := Dict{
		"Type": Name("XObject"),
		"W":    Array{Integer(1), Real(0.5), Bool(true), nil},
		"Ref":  NewReference(12, 1),
	}
	got := Format(obj)
	want := "<</Ref 12 1 R/Type /XObject/W [1 0.5 true null]>>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWrap(t *testing.T) {
	plain := errors.New("plain")
	if Wrap(plain, "here") != plain {
		t.Error("non-malformed errors must be returned unchanged")
	}

	err := Wrap(&MalformedFileError{Err: plain, Loc: []string{"inner"}}, "outer")
	if !errors.Is(err, plain) {
		t.Error("wrapped error lost")
	}
	want := "malformed PDF object (outer, inner): plain"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestGetRectangle(t *testing.T) {
	llx, lly, urx, ury, ok, err := GetRectangle(nil, Array{Integer(10), Real(5), Integer(0), Integer(20)})
	if err != nil || !ok {
		t.Fatal(ok, err)
	}
	if d := cmp.Diff([]float64{0, 5, 10, 20}, []float64{llx, lly, urx, ury}); d != "" {
		t.Error(d)
	}

	if _, _, _, _, ok, err := GetRectangle(nil, nil); ok || err != nil {
		t.Errorf("null rectangle: %v %v", ok, err)
	}
	if _, _, _, _, _, err := GetRectangle(nil, Array{Integer(1)}); !IsMalformed(err) {
		t.Errorf("short rectangle: got %v", err)
	}
}
