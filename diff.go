package minigebra

// ============================================================
// Differentiation
// ============================================================

// AnyVariable as a differentiation target makes every variable
// differentiate to 1, the single-variable convention of a session that
// never declared its variables.
const AnyVariable = ""

// DiffN differentiates n times. The result is not simplified.
func DiffN(a Atom, varName string, n int) Atom {
	for i := 0; i < n; i++ {
		a = a.Diff(varName)
	}
	return a
}

func (n *Number) Diff(string) Atom { return N(0) }

func (v *Variable) Diff(varName string) Atom {
	if varName == AnyVariable || varName == v.name {
		return N(1)
	}
	return N(0)
}

func (b *BinaryOp) Diff(varName string) Atom {
	l, r := b.left, b.right
	dl, dr := l.Diff(varName), r.Diff(varName)
	switch b.op {
	case OpAdd:
		return AddOf(dl, dr)
	case OpSub:
		return SubOf(dl, dr)
	case OpMul:
		return AddOf(MulOf(dl, r), MulOf(l, dr))
	case OpDiv:
		return DivOf(SubOf(MulOf(dl, r), MulOf(l, dr)), PowOf(r, N(2)))
	default:
		// d(l^r) = l^r * (r' ln(l) + r l' / l)
		return MulOf(b, AddOf(MulOf(dr, LnOf(l)), DivOf(MulOf(r, dl), l)))
	}
}

// Diff applies the chain rule. A user function with a single argument f(u)
// becomes Df(u) * u'; with several arguments the result is the opaque call
// Df(u1, ..., un).
func (c *Call) Diff(varName string) Atom {
	if len(c.args) != 1 {
		return CallOf(derivativeName(c.name), c.args...)
	}
	u := c.args[0]
	du := u.Diff(varName)
	switch c.builtin {
	case Sin:
		return MulOf(CosOf(u), du)
	case Cos:
		return MulOf(Neg(SinOf(u)), du)
	case Tan:
		return DivOf(du, PowOf(CosOf(u), N(2)))
	case Exp:
		return MulOf(ExpOf(u), du)
	case Ln:
		return DivOf(du, u)
	}
	return MulOf(CallOf(derivativeName(c.name), u), du)
}

func derivativeName(name string) string { return "D" + name }
