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

package raster

import (
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Cmd is a path construction command.
type Cmd uint8

// These are the path construction commands.
const (
	CmdMoveTo Cmd = iota
	CmdLineTo
	CmdCubeTo
	CmdClose
)

// Path is a sequence of subpaths.
//
// MoveTo and LineTo consume one point from Pts, CubeTo consumes three
// points (two control points and the end point), Close consumes none.
type Path struct {
	Cmds []Cmd
	Pts  []vec.Vec2
}

// MoveTo starts a new subpath.
func (p *Path) MoveTo(x, y float64) *Path {
	p.Cmds = append(p.Cmds, CmdMoveTo)
	p.Pts = append(p.Pts, vec.Vec2{X: x, Y: y})
	return p
}

// LineTo appends a straight line segment to the current subpath.
func (p *Path) LineTo(x, y float64) *Path {
	p.Cmds = append(p.Cmds, CmdLineTo)
	p.Pts = append(p.Pts, vec.Vec2{X: x, Y: y})
	return p
}

// CubeTo appends a cubic Bézier curve to the current subpath.
func (p *Path) CubeTo(x1, y1, x2, y2, x3, y3 float64) *Path {
	p.Cmds = append(p.Cmds, CmdCubeTo)
	p.Pts = append(p.Pts,
		vec.Vec2{X: x1, Y: y1}, vec.Vec2{X: x2, Y: y2}, vec.Vec2{X: x3, Y: y3})
	return p
}

// Close closes the current subpath.
func (p *Path) Close() *Path {
	p.Cmds = append(p.Cmds, CmdClose)
	return p
}

// Rect returns a closed rectangular path.
func Rect(x, y, w, h float64) *Path {
	p := &Path{}
	return p.MoveTo(x, y).LineTo(x+w, y).LineTo(x+w, y+h).LineTo(x, y+h).Close()
}

// IsEmpty reports whether the path contains no segments.
func (p *Path) IsEmpty() bool {
	return p == nil || len(p.Pts) == 0
}

// Apply transforms a point from user space to device space.
func Apply(m matrix.Matrix, v vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: m[0]*v.X + m[2]*v.Y + m[4],
		Y: m[1]*v.X + m[3]*v.Y + m[5],
	}
}

// Invert returns the inverse of m.  The second return value is false if m
// is singular.
func Invert(m matrix.Matrix) (matrix.Matrix, bool) {
	det := m[0]*m[3] - m[1]*m[2]
	if math.Abs(det) < 1e-12 {
		return matrix.Matrix{}, false
	}
	return matrix.Matrix{
		m[3] / det,
		-m[1] / det,
		-m[2] / det,
		m[0] / det,
		(m[2]*m[5] - m[3]*m[4]) / det,
		(m[1]*m[4] - m[0]*m[5]) / det,
	}, true
}

// Bounds returns the bounding box of the path after transformation by m.
// Control points are included, so the box may be larger than the exact
// bounds of the curves.
func (p *Path) Bounds(m matrix.Matrix) rect.Rect {
	if p.IsEmpty() {
		return rect.Rect{}
	}
	first := Apply(m, p.Pts[0])
	b := rect.Rect{LLx: first.X, LLy: first.Y, URx: first.X, URy: first.Y}
	for _, pt := range p.Pts[1:] {
		q := Apply(m, pt)
		b.LLx = min(b.LLx, q.X)
		b.LLy = min(b.LLy, q.Y)
		b.URx = max(b.URx, q.X)
		b.URy = max(b.URy, q.Y)
	}
	return b
}

// polyline is a flattened subpath in device space.
type polyline struct {
	pts    []vec.Vec2
	closed bool
}

// flatTolerance is the maximal distance, in device pixels, between a curve
// and its polygonal approximation.
const flatTolerance = 0.2

// flatten converts the path to polygons in device space.
func (p *Path) flatten(m matrix.Matrix) []polyline {
	var res []polyline
	var cur polyline
	var start vec.Vec2
	flush := func() {
		if len(cur.pts) > 0 {
			res = append(res, cur)
		}
		cur = polyline{}
	}

	k := 0
	for _, cmd := range p.Cmds {
		switch cmd {
		case CmdMoveTo:
			flush()
			start = Apply(m, p.Pts[k])
			cur.pts = append(cur.pts, start)
			k++
		case CmdLineTo:
			q := Apply(m, p.Pts[k])
			if len(cur.pts) == 0 {
				cur.pts = append(cur.pts, start)
			}
			cur.pts = append(cur.pts, q)
			k++
		case CmdCubeTo:
			if len(cur.pts) == 0 {
				cur.pts = append(cur.pts, start)
			}
			p0 := cur.pts[len(cur.pts)-1]
			p1 := Apply(m, p.Pts[k])
			p2 := Apply(m, p.Pts[k+1])
			p3 := Apply(m, p.Pts[k+2])
			cur.pts = appendCubic(cur.pts, p0, p1, p2, p3)
			k += 3
		case CmdClose:
			// Segments after a close start a new subpath at the
			// start point of the closed one.
			if len(cur.pts) > 0 {
				cur.closed = true
				flush()
			}
		}
	}
	flush()
	return res
}

// appendCubic appends a polygonal approximation of the cubic Bézier curve
// p0, p1, p2, p3 to pts.  The start point p0 is not appended.
func appendCubic(pts []vec.Vec2, p0, p1, p2, p3 vec.Vec2) []vec.Vec2 {
	// The second differences bound the distance between the curve and
	// the chords.
	d1 := p0.Sub(p1.Mul(2)).Add(p2).Length()
	d2 := p1.Sub(p2.Mul(2)).Add(p3).Length()
	dd := max(d1, d2)
	n := int(math.Ceil(math.Sqrt(0.75 * dd / flatTolerance)))
	n = min(max(n, 1), 100)

	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		s := 1 - t
		a := s * s * s
		b := 3 * s * s * t
		c := 3 * s * t * t
		d := t * t * t
		pts = append(pts, vec.Vec2{
			X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
			Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
		})
	}
	return pts
}
