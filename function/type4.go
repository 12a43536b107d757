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

package function

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"sync"
)

// Type4 represents a PostScript calculator function.
type Type4 struct {
	// Domain defines the valid input ranges as [min0, max0, min1, max1, ...]
	Domain []float64

	// Range defines the valid output ranges as [min0, max0, min1, max1, ...]
	Range []float64

	// Program contains the PostScript code, including the outer braces.
	// The outer braces may be omitted.
	Program string

	once sync.Once
	code []node
	err  error
}

// Shape implements the [Func] interface.
func (f *Type4) Shape() (int, int) {
	return len(f.Domain) / 2, len(f.Range) / 2
}

func (f *Type4) validate() error {
	m, n := f.Shape()
	if m == 0 || !isRanges(f.Domain) {
		return invalid(4, "Domain", "must contain at least one valid range")
	}
	if n == 0 || !isRanges(f.Range) {
		return invalid(4, "Range", "must contain at least one valid range")
	}
	if _, err := f.compiled(); err != nil {
		return invalid(4, "Program", "%v", err)
	}
	return nil
}

func (f *Type4) compiled() ([]node, error) {
	f.once.Do(func() {
		f.code, f.err = compile(f.Program)
	})
	return f.code, f.err
}

// Apply implements the [Func] interface.
//
// If the program cannot be compiled, or if it fails at run time, all outputs
// are zero (before clipping to the range).
func (f *Type4) Apply(inputs ...float64) []float64 {
	m, n := f.Shape()
	out := make([]float64, n)

	code, err := f.compiled()
	if err == nil {
		st := &stack{vals: make([]value, 0, 16)}
		for i := range m {
			x := 0.0
			if i < len(inputs) {
				x = inputs[i]
			}
			st.push(realValue(clip(x, f.Domain[2*i], f.Domain[2*i+1])))
		}
		err = run(code, st, 0)
		if err == nil && len(st.vals) < n {
			err = errStackUnderflow
		}
		if err == nil {
			res := st.vals[len(st.vals)-n:]
			for i := range out {
				out[i] = res[i].num()
			}
		}
	}
	if err != nil {
		clear(out)
	}

	clipRanges(out, f.Range)
	return out
}

var (
	errStackUnderflow = errors.New("stack underflow")
	errStackOverflow  = errors.New("stack overflow")
	errTypeCheck      = errors.New("type check")
	errRangeCheck     = errors.New("range check")
	errUndefined      = errors.New("undefined result")
)

// The operand stack of a calculator function has a limited depth.
const maxStack = 100

type kind uint8

const (
	kindReal kind = iota
	kindInt
	kindBool
)

type value struct {
	kind kind
	x    float64
	i    int64
	b    bool
}

func realValue(x float64) value { return value{kind: kindReal, x: x} }
func intValue(i int64) value { return value{kind: kindInt, i: i} }
func boolValue(b bool) value { return value{kind: kindBool, b: b} }

func (v value) num() float64 {
	switch v.kind {
	case kindInt:
		return float64(v.i)
	case kindBool:
		if v.b {
			return 1
		}
		return 0
	default:
		return v.x
	}
}

type stack struct {
	vals []value
}

func (s *stack) push(v value) error {
	if len(s.vals) >= maxStack {
		return errStackOverflow
	}
	s.vals = append(s.vals, v)
	return nil
}

func (s *stack) pop() (value, error) {
	if len(s.vals) == 0 {
		return value{}, errStackUnderflow
	}
	v := s.vals[len(s.vals)-1]
	s.vals = s.vals[:len(s.vals)-1]
	return v, nil
}

func (s *stack) popNum() (value, error) {
	v, err := s.pop()
	if err != nil {
		return v, err
	}
	if v.kind == kindBool {
		return v, errTypeCheck
	}
	return v, nil
}

func (s *stack) popInt() (int64, error) {
	v, err := s.pop()
	if err != nil {
		return 0, err
	}
	if v.kind != kindInt {
		return 0, errTypeCheck
	}
	return v.i, nil
}

// node is an element of a compiled calculator program.  Exactly one of the
// fields is used: a literal, an operator, or a conditional.
type node struct {
	lit     *value
	op      func(*stack) error
	ifTrue  []node
	ifFalse []node
	hasElse bool
	cond    bool
}

// compile tokenizes and parses a calculator program.
func compile(program string) ([]node, error) {
	toks := tokenize(program)
	if len(toks) >= 2 && toks[0] == "{" && toks[len(toks)-1] == "}" {
		toks = toks[1 : len(toks)-1]
	}
	p := &parser{toks: toks}
	code, err := p.block(0)
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.toks) {
		return nil, errors.New("unexpected '}'")
	}
	return code, nil
}

func tokenize(program string) []string {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	inComment := false
	for _, c := range program {
		if inComment {
			if c == '\n' || c == '\r' {
				inComment = false
			}
			continue
		}
		switch c {
		case '%':
			flush()
			inComment = true
		case '{', '}':
			flush()
			toks = append(toks, string(c))
		case ' ', '\t', '\n', '\r', '\f', 0:
			flush()
		default:
			cur.WriteRune(c)
		}
	}
	flush()
	return toks
}

type parser struct {
	toks []string
	pos  int
}

const maxNesting = 64

// block parses operators until the end of input or an unmatched '}'.
// Procedures are only allowed as operands of if and ifelse.
func (p *parser) block(depth int) ([]node, error) {
	if depth > maxNesting {
		return nil, errors.New("procedures nested too deeply")
	}
	var code []node
	var pending [][]node
	for p.pos < len(p.toks) {
		tok := p.toks[p.pos]
		if tok == "}" {
			break
		}
		p.pos++

		switch tok {
		case "{":
			proc, err := p.block(depth + 1)
			if err != nil {
				return nil, err
			}
			if p.pos >= len(p.toks) {
				return nil, errors.New("missing '}'")
			}
			p.pos++
			pending = append(pending, proc)
			continue
		case "if":
			if len(pending) != 1 {
				return nil, errors.New("malformed if")
			}
			code = append(code, node{cond: true, ifTrue: pending[0]})
			pending = nil
			continue
		case "ifelse":
			if len(pending) != 2 {
				return nil, errors.New("malformed ifelse")
			}
			code = append(code, node{cond: true, ifTrue: pending[0], ifFalse: pending[1], hasElse: true})
			pending = nil
			continue
		}
		if len(pending) > 0 {
			return nil, errors.New("procedure without if or ifelse")
		}

		if op, ok := operators[tok]; ok {
			code = append(code, node{op: op})
			continue
		}
		switch tok {
		case "true", "false":
			v := boolValue(tok == "true")
			code = append(code, node{lit: &v})
			continue
		}
		if !strings.ContainsAny(tok, ".eE") {
			if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
				v := intValue(i)
				code = append(code, node{lit: &v})
				continue
			}
		}
		x, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, errors.New("unknown operator " + strconv.Quote(tok))
		}
		v := realValue(x)
		code = append(code, node{lit: &v})
	}
	if len(pending) > 0 {
		return nil, errors.New("procedure without if or ifelse")
	}
	return code, nil
}

func run(code []node, st *stack, depth int) error {
	if depth > maxNesting {
		return errors.New("procedures nested too deeply")
	}
	for i := range code {
		n := &code[i]
		switch {
		case n.lit != nil:
			if err := st.push(*n.lit); err != nil {
				return err
			}
		case n.op != nil:
			if err := n.op(st); err != nil {
				return err
			}
		case n.cond:
			v, err := st.pop()
			if err != nil {
				return err
			}
			if v.kind != kindBool {
				return errTypeCheck
			}
			if v.b {
				err = run(n.ifTrue, st, depth+1)
			} else if n.hasElse {
				err = run(n.ifFalse, st, depth+1)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

var operators map[string]func(*stack) error

func init() {
	operators = map[string]func(*stack) error{
		"abs": intOrReal(
			func(i int64) value { return intValue(max(i, -i)) },
			func(x float64) value { return realValue(math.Abs(x)) }),
		"neg": intOrReal(
			func(i int64) value { return intValue(-i) },
			func(x float64) value { return realValue(-x) }),
		"ceiling": intOrReal(
			func(i int64) value { return intValue(i) },
			func(x float64) value { return realValue(math.Ceil(x)) }),
		"floor": intOrReal(
			func(i int64) value { return intValue(i) },
			func(x float64) value { return realValue(math.Floor(x)) }),
		"round": intOrReal(
			func(i int64) value { return intValue(i) },
			func(x float64) value { return realValue(math.Floor(x + 0.5)) }),
		"truncate": intOrReal(
			func(i int64) value { return intValue(i) },
			func(x float64) value { return realValue(math.Trunc(x)) }),
		"cvi": intOrReal(
			func(i int64) value { return intValue(i) },
			func(x float64) value { return intValue(int64(math.Trunc(x))) }),
		"cvr": intOrReal(
			func(i int64) value { return realValue(float64(i)) },
			func(x float64) value { return realValue(x) }),

		"sqrt": realFunc(func(x float64) (float64, error) {
			if x < 0 {
				return 0, errRangeCheck
			}
			return math.Sqrt(x), nil
		}),
		"sin": realFunc(func(x float64) (float64, error) {
			return math.Sin(x * math.Pi / 180), nil
		}),
		"cos": realFunc(func(x float64) (float64, error) {
			return math.Cos(x * math.Pi / 180), nil
		}),
		"ln": realFunc(func(x float64) (float64, error) {
			if x <= 0 {
				return 0, errRangeCheck
			}
			return math.Log(x), nil
		}),
		"log": realFunc(func(x float64) (float64, error) {
			if x <= 0 {
				return 0, errRangeCheck
			}
			return math.Log10(x), nil
		}),

		"add": arith(
			func(a, b int64) (value, error) { return intValue(a + b), nil },
			func(a, b float64) (value, error) { return realValue(a + b), nil }),
		"sub": arith(
			func(a, b int64) (value, error) { return intValue(a - b), nil },
			func(a, b float64) (value, error) { return realValue(a - b), nil }),
		"mul": arith(
			func(a, b int64) (value, error) { return intValue(a * b), nil },
			func(a, b float64) (value, error) { return realValue(a * b), nil }),
		"div": arith(nil, func(a, b float64) (value, error) {
			if b == 0 {
				return value{}, errUndefined
			}
			return realValue(a / b), nil
		}),
		"idiv": intArith(func(a, b int64) (value, error) {
			if b == 0 {
				return value{}, errUndefined
			}
			return intValue(a / b), nil
		}),
		"mod": intArith(func(a, b int64) (value, error) {
			if b == 0 {
				return value{}, errUndefined
			}
			return intValue(a % b), nil
		}),
		"atan": arith(nil, func(a, b float64) (value, error) {
			if a == 0 && b == 0 {
				return value{}, errUndefined
			}
			deg := math.Atan2(a, b) * 180 / math.Pi
			if deg < 0 {
				deg += 360
			}
			return realValue(deg), nil
		}),
		"exp": arith(nil, func(a, b float64) (value, error) {
			r := math.Pow(a, b)
			if math.IsNaN(r) || math.IsInf(r, 0) {
				return value{}, errUndefined
			}
			return realValue(r), nil
		}),

		"eq": compare(func(c int) bool { return c == 0 }),
		"ne": compare(func(c int) bool { return c != 0 }),
		"gt": compare(func(c int) bool { return c > 0 }),
		"ge": compare(func(c int) bool { return c >= 0 }),
		"lt": compare(func(c int) bool { return c < 0 }),
		"le": compare(func(c int) bool { return c <= 0 }),

		"and": logic(func(a, b bool) bool { return a && b }, func(a, b int64) int64 { return a & b }),
		"or":  logic(func(a, b bool) bool { return a || b }, func(a, b int64) int64 { return a | b }),
		"xor": logic(func(a, b bool) bool { return a != b }, func(a, b int64) int64 { return a ^ b }),
		"not": func(s *stack) error {
			v, err := s.pop()
			if err != nil {
				return err
			}
			if v.kind == kindBool {
				return s.push(boolValue(!v.b))
			} else if v.kind == kindInt {
				return s.push(intValue(^v.i))
			}
			return errTypeCheck
		},
		"bitshift": func(s *stack) error {
			shift, err := s.popInt()
			if err != nil {
				return err
			}
			i, err := s.popInt()
			if err != nil {
				return err
			}
			if shift >= 0 {
				return s.push(intValue(int64(int32(i) << min(shift, 63))))
			}
			return s.push(intValue(int64(int32(i) >> min(-shift, 63))))
		},

		"pop": func(s *stack) error {
			_, err := s.pop()
			return err
		},
		"exch": func(s *stack) error {
			n := len(s.vals)
			if n < 2 {
				return errStackUnderflow
			}
			s.vals[n-1], s.vals[n-2] = s.vals[n-2], s.vals[n-1]
			return nil
		},
		"dup": func(s *stack) error {
			if len(s.vals) == 0 {
				return errStackUnderflow
			}
			return s.push(s.vals[len(s.vals)-1])
		},
		"copy": func(s *stack) error {
			k, err := s.popInt()
			if err != nil {
				return err
			}
			if k < 0 || int(k) > len(s.vals) {
				return errRangeCheck
			}
			if len(s.vals)+int(k) > maxStack {
				return errStackOverflow
			}
			s.vals = append(s.vals, s.vals[len(s.vals)-int(k):]...)
			return nil
		},
		"index": func(s *stack) error {
			k, err := s.popInt()
			if err != nil {
				return err
			}
			if k < 0 || int(k) >= len(s.vals) {
				return errRangeCheck
			}
			return s.push(s.vals[len(s.vals)-1-int(k)])
		},
		"roll": func(s *stack) error {
			j, err := s.popInt()
			if err != nil {
				return err
			}
			k, err := s.popInt()
			if err != nil {
				return err
			}
			if k < 0 || int(k) > len(s.vals) {
				return errRangeCheck
			}
			if k == 0 {
				return nil
			}
			seg := s.vals[len(s.vals)-int(k):]
			j = ((j % k) + k) % k
			tmp := make([]value, k)
			for i := range seg {
				tmp[(int64(i)+j)%k] = seg[i]
			}
			copy(seg, tmp)
			return nil
		},
	}
}

func intOrReal(fi func(int64) value, fr func(float64) value) func(*stack) error {
	return func(s *stack) error {
		v, err := s.popNum()
		if err != nil {
			return err
		}
		if v.kind == kindInt {
			return s.push(fi(v.i))
		}
		return s.push(fr(v.x))
	}
}

func realFunc(fn func(float64) (float64, error)) func(*stack) error {
	return func(s *stack) error {
		v, err := s.popNum()
		if err != nil {
			return err
		}
		r, err := fn(v.num())
		if err != nil {
			return err
		}
		return s.push(realValue(r))
	}
}

// arith implements a binary operator.  If fi is non-nil, it is used when
// both operands are integers.
func arith(fi func(a, b int64) (value, error), fr func(a, b float64) (value, error)) func(*stack) error {
	return func(s *stack) error {
		b, err := s.popNum()
		if err != nil {
			return err
		}
		a, err := s.popNum()
		if err != nil {
			return err
		}
		var r value
		if fi != nil && a.kind == kindInt && b.kind == kindInt {
			r, err = fi(a.i, b.i)
		} else {
			r, err = fr(a.num(), b.num())
		}
		if err != nil {
			return err
		}
		return s.push(r)
	}
}

func intArith(fn func(a, b int64) (value, error)) func(*stack) error {
	return func(s *stack) error {
		b, err := s.popInt()
		if err != nil {
			return err
		}
		a, err := s.popInt()
		if err != nil {
			return err
		}
		r, err := fn(a, b)
		if err != nil {
			return err
		}
		return s.push(r)
	}
}

func compare(test func(int) bool) func(*stack) error {
	return func(s *stack) error {
		b, err := s.pop()
		if err != nil {
			return err
		}
		a, err := s.pop()
		if err != nil {
			return err
		}
		var c int
		switch {
		case a.kind == kindBool && b.kind == kindBool:
			if a.b == b.b {
				c = 0
			} else if a.b {
				c = 1
			} else {
				c = -1
			}
		case a.kind == kindBool || b.kind == kindBool:
			return errTypeCheck
		default:
			x, y := a.num(), b.num()
			if x < y {
				c = -1
			} else if x > y {
				c = 1
			}
		}
		return s.push(boolValue(test(c)))
	}
}

func logic(fb func(a, b bool) bool, fi func(a, b int64) int64) func(*stack) error {
	return func(s *stack) error {
		b, err := s.pop()
		if err != nil {
			return err
		}
		a, err := s.pop()
		if err != nil {
			return err
		}
		switch {
		case a.kind == kindBool && b.kind == kindBool:
			return s.push(boolValue(fb(a.b, b.b)))
		case a.kind == kindInt && b.kind == kindInt:
			return s.push(intValue(fi(a.i, b.i)))
		}
		return errTypeCheck
	}
}
