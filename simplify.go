package minigebra

import "math"

// ============================================================
// Simplification
// ============================================================

// DefaultMaxIterations caps the fixpoint loop of SimplifyFull.
const DefaultMaxIterations = 100

// Simplifier repeats single rewrite steps until a step returns a tree that
// is structurally the same as its input. Renderings alone are ambiguous:
// -(a b) and (-a) b print alike.
type Simplifier struct {
	// MaxIterations bounds the loop; zero means DefaultMaxIterations.
	MaxIterations int
}

// Run simplifies a to a fixpoint. When the cap is reached it returns the
// last tree together with a *SimplifyDivergenceError; the tree is still a
// valid rewrite of a.
func (s Simplifier) Run(a Atom) (Atom, error) {
	max := s.MaxIterations
	if max <= 0 {
		max = DefaultMaxIterations
	}
	for i := 0; i < max; i++ {
		next := a.Simplify()
		if Same(next, a) {
			return next, nil
		}
		a = next
	}
	return a, &SimplifyDivergenceError{Iterations: max, Last: a.String()}
}

// SimplifyFull runs the default Simplifier.
func SimplifyFull(a Atom) (Atom, error) {
	return Simplifier{}.Run(a)
}

func (n *Number) Simplify() Atom   { return n }
func (v *Variable) Simplify() Atom { return v }

// Simplify applies the first rule matching this node. When none matches the
// node is rebuilt from its simplified operands.
func (b *BinaryOp) Simplify() Atom {
	switch b.op {
	case OpAdd:
		return b.simplifyAdd()
	case OpSub:
		return b.simplifySub()
	case OpMul:
		return b.simplifyMul()
	case OpDiv:
		return b.simplifyDiv()
	default:
		return b.simplifyPow()
	}
}

func (b *BinaryOp) rebuild() Atom {
	return Bin(b.op, b.left.Simplify(), b.right.Simplify())
}

func (b *BinaryOp) simplifyAdd() Atom {
	l, r := b.left, b.right
	if isNum(l, 0) {
		return r.Simplify()
	}
	if isNum(r, 0) {
		return l.Simplify()
	}
	ln, lnum := asNumber(l)
	rn, rnum := asNumber(r)
	if lnum && rnum {
		return numAdd(ln, rn)
	}
	if la, ok := asUnary(l, Ln); ok {
		if ra, ok := asUnary(r, Ln); ok {
			return LnOf(MulOf(la, ra))
		}
	}
	if a, x, ok := coefficient(l); ok && Same(x, r) {
		return MulOf(numAdd(a, N(1)), r)
	}
	if a, x, ok := coefficient(r); ok && Same(l, x) {
		return MulOf(numAdd(a, N(1)), l)
	}
	if Same(l, r) {
		return MulOf(N(2), l)
	}
	if a, x, ok := coefficient(l); ok {
		if c, y, ok := coefficient(r); ok && Same(x, y) {
			return MulOf(numAdd(a, c), x)
		}
	}
	if lnum {
		return AddOf(r, l)
	}
	if rnum {
		if s, ok := asBinary(l, OpAdd); ok {
			if c, ok := asNumber(s.right); ok {
				return AddOf(s.left, numAdd(c, rn))
			}
		}
		if s, ok := asBinary(l, OpSub); ok {
			if c, ok := asNumber(s.right); ok {
				return AddOf(s.left, numSub(rn, c))
			}
		}
		if rn.IsNegative() {
			return SubOf(l, numNeg(rn))
		}
	}
	if c, y, ok := coefficient(r); ok && c.IsNegative() {
		return SubOf(l, MulOf(numNeg(c), y))
	}
	return b.rebuild()
}

func (b *BinaryOp) simplifySub() Atom {
	l, r := b.left, b.right
	if isNum(r, 0) {
		return l.Simplify()
	}
	if isNum(l, 0) {
		return Neg(r.Simplify())
	}
	ln, lnum := asNumber(l)
	rn, rnum := asNumber(r)
	if lnum && rnum {
		return numSub(ln, rn)
	}
	if la, ok := asUnary(l, Ln); ok {
		if ra, ok := asUnary(r, Ln); ok {
			return LnOf(DivOf(la, ra))
		}
	}
	if Same(l, r) {
		return N(0)
	}
	if a, x, ok := coefficient(l); ok {
		if c, y, ok := coefficient(r); ok && Same(x, y) {
			return MulOf(numSub(a, c), x)
		}
		if Same(x, r) {
			return MulOf(numSub(a, N(1)), r)
		}
	}
	if a, x, ok := coefficient(r); ok && Same(l, x) {
		return MulOf(numSub(N(1), a), l)
	}
	if rnum {
		if s, ok := asBinary(l, OpAdd); ok {
			if c, ok := asNumber(s.right); ok {
				return AddOf(s.left, numSub(c, rn))
			}
		}
		if s, ok := asBinary(l, OpSub); ok {
			if c, ok := asNumber(s.right); ok {
				return SubOf(s.left, numAdd(c, rn))
			}
		}
		if rn.IsNegative() {
			return AddOf(l, numNeg(rn))
		}
	}
	if c, y, ok := coefficient(r); ok && c.IsNegative() {
		return AddOf(l, MulOf(numNeg(c), y))
	}
	return b.rebuild()
}

func (b *BinaryOp) simplifyMul() Atom {
	l, r := b.left, b.right
	if isNum(l, 0) || isNum(r, 0) {
		return N(0)
	}
	if isNum(l, 1) {
		return r.Simplify()
	}
	if isNum(r, 1) {
		return l.Simplify()
	}
	ln, lnum := asNumber(l)
	rn, rnum := asNumber(r)
	if rnum && !lnum {
		return MulOf(rn, l.Simplify())
	}
	if lnum && rnum {
		return numMul(ln, rn)
	}
	ld, lDiv := asBinary(l, OpDiv)
	rd, rDiv := asBinary(r, OpDiv)
	if lDiv && rDiv {
		return DivOf(MulOf(ld.left, rd.left), MulOf(ld.right, rd.right))
	}
	if lb, la, ok := numericExp(l); ok {
		if rb, ra, ok := numericExp(r); ok && Same(lb, rb) {
			return PowOf(lb, numAdd(la, ra))
		}
	}
	if lnum {
		if c, x, ok := coefficient(r); ok {
			return MulOf(numMul(ln, c), x.Simplify())
		}
		if rDiv {
			if c, ok := asNumber(rd.left); ok {
				return DivOf(numMul(ln, c), rd.right.Simplify())
			}
		}
	} else {
		if rDiv {
			return DivOf(MulOf(l, rd.left), rd.right)
		}
		if lDiv {
			return DivOf(MulOf(ld.left, r), ld.right)
		}
		if c, y, ok := coefficient(r); ok {
			return MulOf(c, MulOf(l, y))
		}
		if c, x, ok := coefficient(l); ok {
			return MulOf(c, MulOf(x, r))
		}
	}
	if Same(l, r) {
		return PowOf(l, N(2))
	}
	if rb, ra, ok := numericExp(r); ok && Same(l, rb) {
		return PowOf(l, numAdd(ra, N(1)))
	}
	if lb, la, ok := numericExp(l); ok && Same(lb, r) {
		return PowOf(r, numAdd(la, N(1)))
	}
	if _, ok := asBinary(l, OpPow); ok {
		if _, ok := asBinary(r, OpMul); ok {
			return MulOf(r, l)
		}
	}
	return b.rebuild()
}

func (b *BinaryOp) simplifyDiv() Atom {
	l, r := b.left, b.right
	if isNum(l, 0) {
		return N(0)
	}
	if isNum(r, 1) {
		return l.Simplify()
	}
	if ln, ok := asNumber(l); ok {
		if rn, ok := asNumber(r); ok && !rn.IsZero() {
			return divNumbers(b, ln, rn)
		}
	}
	if Same(l, r) {
		return N(1)
	}
	if base, a, ok := numericExp(l); ok {
		if Same(base, r) {
			return powDiff(base, a, N(1))
		}
		if rb, c, ok := numericExp(r); ok && Same(base, rb) {
			return powDiff(base, a, c)
		}
	}
	if base, c, ok := numericExp(r); ok && Same(l, base) {
		return powDiff(l, N(1), c)
	}
	if _, rnum := r.(*Number); !rnum {
		if c, y, ok := coefficient(l); ok {
			return MulOf(c, DivOf(y, r))
		}
	}
	if ab, ok := asBinary(l, OpDiv); ok {
		return DivOf(ab.left, MulOf(ab.right, r))
	}
	if bc, ok := asBinary(r, OpDiv); ok {
		return DivOf(MulOf(l, bc.right), bc.left)
	}
	return b.rebuild()
}

// divNumbers folds a quotient of literals. Integer quotients that do not
// divide evenly are reduced by their gcd and keep the sign on the numerator.
func divNumbers(orig *BinaryOp, l, r *Number) Atom {
	li, lok := l.Int64()
	ri, rok := r.Int64()
	if !lok || !rok {
		v := l.Value() / r.Value()
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return orig
		}
		return NFloat(v)
	}
	if li%ri == 0 && !(li == math.MinInt64 && ri == -1) {
		return N(li / ri)
	}
	if li == math.MinInt64 || ri == math.MinInt64 {
		return orig
	}
	g := gcdInt(li, ri)
	p, q := li/g, ri/g
	if q < 0 {
		p, q = -p, -q
	}
	if p == li && q == ri {
		return orig
	}
	return DivOf(N(p), N(q))
}

// powDiff builds base^(a-b), moving a negative exponent to a denominator.
func powDiff(base Atom, a, b *Number) Atom {
	d := numSub(a, b)
	if d.IsNegative() {
		return DivOf(N(1), PowOf(base, numNeg(d)))
	}
	return PowOf(base, d)
}

func (b *BinaryOp) simplifyPow() Atom {
	l, r := b.left, b.right
	if isNum(r, 1) {
		return l.Simplify()
	}
	if isNum(r, 0) {
		return N(1)
	}
	rn, rnum := asNumber(r)
	if base, a, ok := numericExp(l); ok && rnum {
		return PowOf(base, numMul(a, rn))
	}
	ln, lnum := asNumber(l)
	if lnum && rnum {
		if v, ok := numPow(ln, rn); ok {
			return v
		}
		if ln.IsInt() && rn.IsInt() && rn.IsNegative() && !ln.IsZero() {
			return DivOf(N(1), PowOf(ln, numNeg(rn)))
		}
	}
	if isNum(l, 1) {
		return N(1)
	}
	if lnum && ln.IsZero() && rnum && rn.Value() > 0 {
		return N(0)
	}
	return b.rebuild()
}

func (c *Call) Simplify() Atom {
	if c.builtin != NoBuiltin && len(c.args) == 1 {
		u := c.args[0]
		switch c.builtin {
		case Ln:
			if p, ok := asBinary(u, OpPow); ok {
				return MulOf(p.right, LnOf(p.left))
			}
			if isNum(u, 1) {
				return N(0)
			}
			if v, ok := asUnary(u, Exp); ok {
				return v
			}
		case Exp:
			if m, ok := asBinary(u, OpMul); ok {
				if x, ok := asUnary(m.right, Ln); ok {
					return PowOf(x, m.left)
				}
			}
			if isNum(u, 0) {
				return N(1)
			}
			if v, ok := asUnary(u, Ln); ok {
				return v
			}
		case Sin, Tan:
			if isNum(u, 0) {
				return N(0)
			}
		case Cos:
			if isNum(u, 0) {
				return N(1)
			}
		}
	}
	return c.withArgs(mapAtoms(c.args, Atom.Simplify))
}
