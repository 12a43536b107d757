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
	"seehuhn.de/go/geom/vec"
)

// Cap is the shape at the open ends of a stroked line.
type Cap uint8

// These are the line cap styles of PDF.
const (
	ButtCap Cap = iota
	RoundCap
	SquareCap
)

// Join is the shape where two segments of a stroked line meet.
type Join uint8

// These are the line join styles of PDF.
const (
	MiterJoin Join = iota
	RoundJoin
	BevelJoin
)

// StrokeStyle describes the parameters used for stroking a path.
// All lengths are given in user space.
type StrokeStyle struct {
	// Width is the line width.  Zero selects the thinnest line which
	// can be rendered, one device pixel.
	Width      float64
	Cap        Cap
	Join       Join
	MiterLimit float64

	// Dash gives the lengths of alternating dashes and gaps.  If empty,
	// the line is solid.
	Dash      []float64
	DashPhase float64
}

// DefaultStroke returns the initial stroke style of PDF.
func DefaultStroke() StrokeStyle {
	return StrokeStyle{Width: 1, MiterLimit: 10}
}

// scale returns the factor by which m scales lengths, on average.
func scale(m matrix.Matrix) float64 {
	return math.Sqrt(math.Abs(m[0]*m[3] - m[1]*m[2]))
}

// HalfWidth returns half the device space line width.
func (s *StrokeStyle) HalfWidth(m matrix.Matrix) float64 {
	return max(s.Width*scale(m), 1) / 2
}

// Outline returns a device space path which, when filled with the
// non-zero winding rule, covers the stroke of p.
func (s *StrokeStyle) Outline(p *Path, m matrix.Matrix) *Path {
	lines := p.flatten(m)
	if dash := s.deviceDash(m); dash != nil {
		lines = applyDash(lines, dash, s.DashPhase*scale(m))
	}

	hw := s.HalfWidth(m)
	miter := s.MiterLimit
	if miter < 1 {
		miter = 10
	}
	out := &outliner{res: &Path{}, hw: hw}
	for _, line := range lines {
		pts := dedup(line.pts, line.closed)
		switch {
		case len(pts) == 0:
			continue
		case len(pts) == 1:
			// A zero-length subpath only shows its caps.
			switch s.Cap {
			case RoundCap:
				out.circle(pts[0])
			case SquareCap:
				out.polygon(pts[0].Add(vec.Vec2{X: -hw, Y: -hw}), pts[0].Add(vec.Vec2{X: hw, Y: -hw}),
					pts[0].Add(vec.Vec2{X: hw, Y: hw}), pts[0].Add(vec.Vec2{X: -hw, Y: hw}))
			}
			continue
		}

		n := len(pts)
		for i := 0; i+1 < n; i++ {
			out.segment(pts[i], pts[i+1])
		}
		if line.closed {
			out.segment(pts[n-1], pts[0])
			for i := range n {
				out.join(s.Join, miter, pts[(i+n-1)%n], pts[i], pts[(i+1)%n])
			}
		} else {
			for i := 1; i+1 < n; i++ {
				out.join(s.Join, miter, pts[i-1], pts[i], pts[i+1])
			}
			out.cap(s.Cap, pts[1], pts[0])
			out.cap(s.Cap, pts[n-2], pts[n-1])
		}
	}
	return out.res
}

func (s *StrokeStyle) deviceDash(m matrix.Matrix) []float64 {
	if len(s.Dash) == 0 {
		return nil
	}
	sc := scale(m)
	total := 0.0
	dash := make([]float64, 0, 2*len(s.Dash))
	for _, d := range s.Dash {
		if d < 0 {
			return nil
		}
		total += d
		dash = append(dash, d*sc)
	}
	if total*sc < 0.1 {
		return nil
	}
	if len(dash)%2 == 1 {
		dash = append(dash, dash...)
	}
	return dash
}

// applyDash splits the polylines into dashes.
func applyDash(lines []polyline, dash []float64, phase float64) []polyline {
	period := 0.0
	for _, d := range dash {
		period += d
	}

	var res []polyline
	for _, line := range lines {
		pts := line.pts
		if line.closed && len(pts) > 0 {
			pts = append(pts[:len(pts):len(pts)], pts[0])
		}

		// The dash pattern restarts for every subpath.
		idx := 0
		left := dash[0]
		pos := math.Mod(phase, period)
		for pos > 0 {
			if pos < left {
				left -= pos
				break
			}
			pos -= left
			idx = (idx + 1) % len(dash)
			left = dash[idx]
		}

		var cur []vec.Vec2
		on := idx%2 == 0
		if on && len(pts) > 0 {
			cur = append(cur, pts[0])
		}
		for i := 0; i+1 < len(pts); i++ {
			a, b := pts[i], pts[i+1]
			seg := b.Sub(a)
			l := seg.Length()
			done := 0.0
			for l-done > left {
				done += left
				q := a.Add(seg.Mul(done / l))
				if on {
					cur = append(cur, q)
					res = append(res, polyline{pts: cur})
					cur = nil
				} else {
					cur = []vec.Vec2{q}
				}
				on = !on
				idx = (idx + 1) % len(dash)
				left = dash[idx]
			}
			left -= l - done
			if on {
				cur = append(cur, b)
			}
		}
		if on && len(cur) > 0 {
			res = append(res, polyline{pts: cur})
		}
	}
	return res
}

// dedup removes repeated points.  For closed lines, a final point equal to
// the first point is removed as well.
func dedup(pts []vec.Vec2, closed bool) []vec.Vec2 {
	res := make([]vec.Vec2, 0, len(pts))
	for _, pt := range pts {
		if len(res) > 0 && near(res[len(res)-1], pt) {
			continue
		}
		res = append(res, pt)
	}
	if closed && len(res) > 1 && near(res[0], res[len(res)-1]) {
		res = res[:len(res)-1]
	}
	return res
}

func near(a, b vec.Vec2) bool {
	return math.Abs(a.X-b.X) < 1e-6 && math.Abs(a.Y-b.Y) < 1e-6
}

// outliner collects the polygons which make up a stroke.  All polygons
// are added with the same orientation, so that their union is covered
// under the non-zero winding rule.
type outliner struct {
	res *Path
	hw  float64
}

func (o *outliner) polygon(pts ...vec.Vec2) {
	area := 0.0
	for i, a := range pts {
		b := pts[(i+1)%len(pts)]
		area += a.X*b.Y - b.X*a.Y
	}
	if area == 0 {
		return
	}
	if area < 0 {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	o.res.MoveTo(pts[0].X, pts[0].Y)
	for _, pt := range pts[1:] {
		o.res.LineTo(pt.X, pt.Y)
	}
	o.res.Close()
}

// normal returns the unit normal of the segment a→b, scaled to half
// the line width.
func (o *outliner) normal(a, b vec.Vec2) vec.Vec2 {
	d := b.Sub(a).Normalize()
	return vec.Vec2{X: -d.Y, Y: d.X}.Mul(o.hw)
}

func (o *outliner) segment(a, b vec.Vec2) {
	n := o.normal(a, b)
	o.polygon(a.Add(n), b.Add(n), b.Sub(n), a.Sub(n))
}

func (o *outliner) circle(c vec.Vec2) {
	k := int(math.Ceil(math.Pi / math.Acos(max(1-flatTolerance/o.hw, 0))))
	k = min(max(k, 8), 128)
	pts := make([]vec.Vec2, k)
	for i := range pts {
		phi := 2 * math.Pi * float64(i) / float64(k)
		pts[i] = vec.Vec2{X: c.X + o.hw*math.Cos(phi), Y: c.Y + o.hw*math.Sin(phi)}
	}
	o.polygon(pts...)
}

// join fills the gap at vertex b between the segments a→b and b→c.
func (o *outliner) join(style Join, miterLimit float64, a, b, c vec.Vec2) {
	if style == RoundJoin {
		o.circle(b)
		return
	}

	n1 := o.normal(a, b)
	n2 := o.normal(b, c)
	d1 := b.Sub(a)
	d2 := c.Sub(b)
	cross := d1.X*d2.Y - d1.Y*d2.X
	if math.Abs(cross) < 1e-12 {
		return
	}
	// choose the outer side of the turn
	if cross > 0 {
		n1, n2 = n1.Mul(-1), n2.Mul(-1)
	}
	p1, p2 := b.Add(n1), b.Add(n2)

	if style == MiterJoin {
		// The miter length ratio is 1/sin(θ/2), where θ is the angle
		// between the segments.
		cosTheta := -(d1.X*d2.X + d1.Y*d2.Y) / (d1.Length() * d2.Length())
		sinHalf := math.Sqrt(max((1-cosTheta)/2, 0))
		if sinHalf > 0 && 1/sinHalf <= miterLimit {
			bis := n1.Add(n2).Normalize()
			tip := b.Add(bis.Mul(o.hw / sinHalf))
			o.polygon(b, p1, tip, p2)
			return
		}
	}
	o.polygon(b, p1, p2)
}

// cap adds the line cap at the end point b of the segment a→b.
func (o *outliner) cap(style Cap, a, b vec.Vec2) {
	switch style {
	case RoundCap:
		o.circle(b)
	case SquareCap:
		n := o.normal(a, b)
		d := b.Sub(a).Normalize().Mul(o.hw)
		o.polygon(b.Add(n), b.Add(n).Add(d), b.Sub(n).Add(d), b.Sub(n))
	}
}
