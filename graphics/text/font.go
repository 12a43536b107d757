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

// Package text paints text runs using TrueType and OpenType fonts.
package text

import (
	"bytes"
	"errors"
	"image"
	"sync"

	"seehuhn.de/go/geom/matrix"
	geompath "seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/postscript/cid"
	"seehuhn.de/go/sfnt"
	"seehuhn.de/go/sfnt/glyph"

	"seehuhn.de/go/pdfpaint/graphics/raster"
	"seehuhn.de/go/pdfpaint/graphics/shapes"
)

// SFNTFont paints glyphs from an sfnt font file.
// A SFNTFont can be shared by concurrent paint passes.
type SFNTFont struct {
	font   *sfnt.Font
	lookup func(rune) glyph.ID

	mu    sync.Mutex
	paths map[glyph.ID]*raster.Path
}

var _ shapes.Font = (*SFNTFont)(nil)

// New loads a TrueType or OpenType font.
func New(data []byte) (*SFNTFont, error) {
	font, err := sfnt.Read(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if font.Outlines == nil {
		return nil, errors.New("font has no glyph outlines")
	}

	f := &SFNTFont{
		font:  font,
		paths: make(map[glyph.ID]*raster.Path),
	}
	if subtable, err := font.CMapTable.GetBest(); err == nil && subtable != nil {
		f.lookup = subtable.Lookup
	}
	return f, nil
}

// GID returns the glyph used for g.  If the font's character map knows
// the character, this is used; otherwise the CID is used as the glyph ID.
func (f *SFNTFont) GID(g shapes.Glyph) glyph.ID {
	if f.lookup != nil && g.Text != 0 {
		if gid := f.lookup(g.Text); gid != 0 {
			return gid
		}
	}
	return glyph.ID(g.CID)
}

// Path returns the outline of a glyph, scaled so that one em is one unit.
func (f *SFNTFont) Path(gid glyph.ID) *raster.Path {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.paths[gid]; ok {
		return p
	}

	q := 1 / float64(f.font.UnitsPerEm)
	p := &raster.Path{}
	var cur vec.Vec2
	for cmd, pts := range f.font.Outlines.Path(gid) {
		switch cmd {
		case geompath.CmdMoveTo:
			cur = pts[0].Mul(q)
			p.MoveTo(cur.X, cur.Y)
		case geompath.CmdLineTo:
			cur = pts[0].Mul(q)
			p.LineTo(cur.X, cur.Y)
		case geompath.CmdQuadTo:
			c := pts[0].Mul(q)
			end := pts[1].Mul(q)
			c1 := cur.Add(c.Sub(cur).Mul(2.0 / 3))
			c2 := end.Add(c.Sub(end).Mul(2.0 / 3))
			p.CubeTo(c1.X, c1.Y, c2.X, c2.Y, end.X, end.Y)
			cur = end
		case geompath.CmdCubeTo:
			c1, c2, end := pts[0].Mul(q), pts[1].Mul(q), pts[2].Mul(q)
			p.CubeTo(c1.X, c1.Y, c2.X, c2.Y, end.X, end.Y)
			cur = end
		case geompath.CmdClose:
			p.Close()
		}
	}
	f.paths[gid] = p
	return p
}

// outline returns the combined outline of all glyphs, in text space.
func (f *SFNTFont) outline(glyphs []shapes.Glyph) *raster.Path {
	res := &raster.Path{}
	for _, g := range glyphs {
		p := f.Path(f.GID(g))
		res.Cmds = append(res.Cmds, p.Cmds...)
		for _, pt := range p.Pts {
			res.Pts = append(res.Pts, vec.Vec2{X: pt.X + g.X, Y: pt.Y + g.Y})
		}
	}
	return res
}

// Bounds implements the [shapes.Font] interface.
func (f *SFNTFont) Bounds(glyphs []shapes.Glyph, m matrix.Matrix) rect.Rect {
	return f.outline(glyphs).Bounds(m)
}

// Draw implements the [shapes.Font] interface.
func (f *SFNTFont) Draw(dst *image.RGBA, glyphs []shapes.Glyph, m matrix.Matrix, s *raster.Style) {
	p := f.outline(glyphs)
	if p.IsEmpty() {
		return
	}
	raster.Fill(dst, p, m, raster.NonZero, s)
}

// Layout places the characters of s on a line starting at the origin, using
// the advance widths of the font.  Positions are in units of one em.
func (f *SFNTFont) Layout(s string) []shapes.Glyph {
	var res []shapes.Glyph
	x := 0.0
	for _, r := range s {
		g := shapes.Glyph{Text: r, X: x}
		gid := f.GID(g)
		g.CID = cid.CID(gid)
		res = append(res, g)
		x += f.font.GlyphWidthPDF(gid) / 1000
	}
	return res
}
