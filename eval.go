package minigebra

import "math"

// ============================================================
// Numeric evaluation
// ============================================================

// Bindings maps variable names to values.
type Bindings map[string]float64

func (n *Number) Eval(Bindings) (float64, error) { return n.Value(), nil }

func (v *Variable) Eval(b Bindings) (float64, error) {
	x, ok := b[v.name]
	if !ok {
		return 0, &UnboundVariableError{Name: v.name}
	}
	return x, nil
}

func (b *BinaryOp) Eval(env Bindings) (float64, error) {
	l, err := b.left.Eval(env)
	if err != nil {
		return 0, err
	}
	r, err := b.right.Eval(env)
	if err != nil {
		return 0, err
	}
	var v float64
	switch b.op {
	case OpAdd:
		v = l + r
	case OpSub:
		v = l - r
	case OpMul:
		v = l * r
	case OpDiv:
		if r == 0 {
			return 0, &ArithmeticError{Op: "div", Msg: "division by zero"}
		}
		v = l / r
	default:
		v = math.Pow(l, r)
	}
	return finite(b.op.String(), v)
}

func (c *Call) Eval(env Bindings) (float64, error) {
	if c.builtin == NoBuiltin || len(c.args) != 1 {
		return 0, &UndefinedFunctionError{Name: c.name}
	}
	u, err := c.args[0].Eval(env)
	if err != nil {
		return 0, err
	}
	var v float64
	switch c.builtin {
	case Sin:
		v = math.Sin(u)
	case Cos:
		v = math.Cos(u)
	case Tan:
		if math.Abs(math.Cos(u)) < tanPoleTolerance {
			return 0, &ArithmeticError{Op: "tan", Msg: "argument is a pole"}
		}
		v = math.Tan(u)
	case Exp:
		v = math.Exp(u)
	case Ln:
		if u <= 0 {
			return 0, &ArithmeticError{Op: "ln", Msg: "logarithm of a non-positive value"}
		}
		v = math.Log(u)
	}
	return finite(c.name, v)
}

// tanPoleTolerance is how close cos(u) may come to zero before tan(u) is
// treated as undefined.
const tanPoleTolerance = 1e-12

func finite(op string, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ArithmeticError{Op: op, Msg: "result is not a finite real number"}
	}
	return v, nil
}
