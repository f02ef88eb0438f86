// Package minigebra is a small computer-algebra engine.
//
// Text is tokenized and parsed into an immutable Atom tree, user functions
// are inlined from a Registry, and the tree can then be simplified toward a
// canonical form, differentiated, evaluated and rendered as plain text or
// LaTeX/MathJax markup.
//
// Design goals:
//   - Immutable trees: every transformation builds a new tree and may share
//     untouched subtrees, so independent expressions can be processed in
//     parallel without locking
//   - Deterministic rendering, used as the convergence oracle of the
//     simplifier fixpoint
//   - Typed errors for every failure mode (lexing, parsing, evaluation,
//     substitution, divergence)
package minigebra

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/edwingeng/deque"
	"github.com/segmentio/fasthash/fnv1a"
)

// ============================================================
// Core Interface
// ============================================================

// Atom is a node of an expression tree: *Number, *Variable, *BinaryOp or
// *Call. Atoms are never mutated after construction.
type Atom interface {
	// Simplify applies one rewrite step. See Simplifier for the fixpoint.
	Simplify() Atom
	// Diff returns the derivative with respect to varName. AnyVariable
	// treats every variable as the differentiation target.
	Diff(varName string) Atom
	Eval(b Bindings) (float64, error)
	Print(style Style) string
	// String is the canonical plain rendering.
	String() string
	// Sub replaces variables simultaneously.
	Sub(values map[string]Atom) Atom
	Equal(other Atom) bool
	// Key is a structural hash; equal atoms have equal keys.
	Key() uint64

	render(tex bool) string
	substitute(reg *Registry, depth int) (Atom, error)
	toJSON() map[string]interface{}
}

// Same reports whether a and b are the same subexpression. It is the cheap
// replacement for comparing canonical renderings.
func Same(a, b Atom) bool {
	return a.Key() == b.Key() && a.Equal(b)
}

// ============================================================
// Number
// ============================================================

// Number is an integer or floating point literal.
type Number struct {
	i     int64
	f     float64
	float bool
	text  string
	key   uint64
}

// N returns an integer literal.
func N(i int64) *Number {
	return newNumber(&Number{i: i, text: strconv.FormatInt(i, 10)})
}

// NFloat returns a floating point literal.
func NFloat(f float64) *Number {
	if f == 0 {
		f = 0 // drop the sign of -0
	}
	return newNumber(&Number{f: f, float: true, text: strconv.FormatFloat(f, 'f', -1, 64)})
}

func newNumber(n *Number) *Number {
	n.key = fnv1a.AddString64(fnv1a.AddString64(fnv1a.Init64, "num:"), n.text)
	return n
}

// parseNumber reads a literal produced by the lexer.
func parseNumber(text string) (*Number, error) {
	if !strings.Contains(text, ".") {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return N(i), nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, err
	}
	return NFloat(f), nil
}

func (n *Number) Value() float64 {
	if n.float {
		return n.f
	}
	return float64(n.i)
}

// Int64 returns the integer value for integer literals.
func (n *Number) Int64() (int64, bool) { return n.i, !n.float }
func (n *Number) IsInt() bool          { return !n.float }
func (n *Number) Is(v float64) bool    { return n.Value() == v }
func (n *Number) IsZero() bool         { return n.Value() == 0 }
func (n *Number) IsNegative() bool     { return n.Value() < 0 }
func (n *Number) String() string       { return n.text }
func (n *Number) Key() uint64          { return n.key }
func (n *Number) render(bool) string   { return n.text }
func (n *Number) Sub(map[string]Atom) Atom {
	return n
}
func (n *Number) Equal(other Atom) bool {
	o, ok := other.(*Number)
	return ok && n.Value() == o.Value()
}
func (n *Number) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "num", "value": n.text}
}

func numAdd(a, b *Number) *Number {
	if a.IsInt() && b.IsInt() {
		r := a.i + b.i
		if (r > a.i) == (b.i > 0) {
			return N(r)
		}
	}
	return NFloat(a.Value() + b.Value())
}

func numSub(a, b *Number) *Number { return numAdd(a, numNeg(b)) }

func numMul(a, b *Number) *Number {
	if a.IsInt() && b.IsInt() {
		if a.i == 0 || b.i == 0 {
			return N(0)
		}
		r := a.i * b.i
		if r/b.i == a.i && !(a.i == -1 && b.i == math.MinInt64) && !(b.i == -1 && a.i == math.MinInt64) {
			return N(r)
		}
	}
	return NFloat(a.Value() * b.Value())
}

func numNeg(a *Number) *Number {
	if a.IsInt() && a.i != math.MinInt64 {
		return N(-a.i)
	}
	return NFloat(-a.Value())
}

// numPow folds base^exp. It reports false when the result would not be a
// finite real number or when an exact result needs a fraction.
func numPow(base, exp *Number) (*Number, bool) {
	if base.IsInt() && exp.IsInt() && exp.i >= 0 {
		switch base.i {
		case 0, 1:
			if exp.i == 0 {
				return N(1), true
			}
			return base, true
		case -1:
			return N(1 - 2*(exp.i%2)), true
		}
		r := N(1)
		for k := int64(0); k < exp.i; k++ {
			r = numMul(r, base)
			if !r.IsInt() {
				break
			}
		}
		if r.IsInt() {
			return r, true
		}
	}
	if base.IsInt() && exp.IsInt() && exp.i < 0 {
		return nil, false
	}
	v := math.Pow(base.Value(), exp.Value())
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, false
	}
	return NFloat(v), true
}

func gcdInt(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// ============================================================
// Variable
// ============================================================

type Variable struct {
	name string
	key  uint64
}

// V returns a variable reference.
func V(name string) *Variable {
	return &Variable{name: name, key: fnv1a.AddString64(fnv1a.AddString64(fnv1a.Init64, "var:"), name)}
}

func (v *Variable) Name() string       { return v.name }
func (v *Variable) String() string     { return v.name }
func (v *Variable) Key() uint64        { return v.key }
func (v *Variable) render(bool) string { return v.name }
func (v *Variable) Equal(other Atom) bool {
	o, ok := other.(*Variable)
	return ok && v.name == o.name
}
func (v *Variable) Sub(values map[string]Atom) Atom {
	if a, ok := values[v.name]; ok {
		return a
	}
	return v
}
func (v *Variable) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "var", "name": v.name}
}

// ============================================================
// BinaryOp
// ============================================================

// Op is the operator of a BinaryOp.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpPow
)

var opNames = [...]string{"add", "sub", "mul", "div", "pow"}
var opSymbols = [...]string{"+", "-", "*", "/", "^"}

func (o Op) String() string { return opNames[o] }
func (o Op) Symbol() string { return opSymbols[o] }

func opFromName(name string) (Op, bool) {
	for i, n := range opNames {
		if n == name {
			return Op(i), true
		}
	}
	return 0, false
}

type BinaryOp struct {
	op          Op
	left, right Atom
	key         uint64
}

// Bin builds a binary node without simplifying it.
func Bin(op Op, left, right Atom) *BinaryOp {
	h := fnv1a.AddString64(fnv1a.Init64, opNames[op])
	h = fnv1a.AddUint64(h, left.Key())
	h = fnv1a.AddUint64(h, right.Key())
	return &BinaryOp{op: op, left: left, right: right, key: h}
}

func AddOf(l, r Atom) *BinaryOp { return Bin(OpAdd, l, r) }
func SubOf(l, r Atom) *BinaryOp { return Bin(OpSub, l, r) }
func MulOf(l, r Atom) *BinaryOp { return Bin(OpMul, l, r) }
func DivOf(l, r Atom) *BinaryOp { return Bin(OpDiv, l, r) }
func PowOf(l, r Atom) *BinaryOp { return Bin(OpPow, l, r) }

// Neg is the canonical unary minus, -1 * a.
func Neg(a Atom) *BinaryOp { return MulOf(N(-1), a) }

func (b *BinaryOp) Op() Op         { return b.op }
func (b *BinaryOp) Left() Atom     { return b.left }
func (b *BinaryOp) Right() Atom    { return b.right }
func (b *BinaryOp) Key() uint64    { return b.key }
func (b *BinaryOp) String() string { return b.render(false) }
func (b *BinaryOp) Equal(other Atom) bool {
	o, ok := other.(*BinaryOp)
	return ok && b.op == o.op && b.left.Equal(o.left) && b.right.Equal(o.right)
}
func (b *BinaryOp) Sub(values map[string]Atom) Atom {
	return Bin(b.op, b.left.Sub(values), b.right.Sub(values))
}
func (b *BinaryOp) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": opNames[b.op], "left": b.left.toJSON(), "right": b.right.toJSON()}
}

// ============================================================
// Call
// ============================================================

// Builtin tags the elementary functions with hard-coded rules.
type Builtin int

const (
	NoBuiltin Builtin = iota
	Sin
	Cos
	Tan
	Exp
	Ln
)

var builtinNames = [...]string{"", "sin", "cos", "tan", "exp", "ln"}

func (b Builtin) String() string { return builtinNames[b] }

// LookupBuiltin returns NoBuiltin for names that are not elementary functions.
func LookupBuiltin(name string) Builtin {
	for i, n := range builtinNames {
		if i > 0 && n == name {
			return Builtin(i)
		}
	}
	return NoBuiltin
}

type Call struct {
	name    string
	args    []Atom
	builtin Builtin
	key     uint64
}

// CallOf builds a function application. The builtin tag is derived from the
// name; any other name is a user function awaiting substitution.
func CallOf(name string, args ...Atom) *Call {
	h := fnv1a.AddString64(fnv1a.AddString64(fnv1a.Init64, "call:"), name)
	h = fnv1a.AddUint64(h, uint64(len(args)))
	for _, a := range args {
		h = fnv1a.AddUint64(h, a.Key())
	}
	return &Call{name: name, args: args, builtin: LookupBuiltin(name), key: h}
}

func SinOf(u Atom) *Call { return CallOf("sin", u) }
func CosOf(u Atom) *Call { return CallOf("cos", u) }
func TanOf(u Atom) *Call { return CallOf("tan", u) }
func ExpOf(u Atom) *Call { return CallOf("exp", u) }
func LnOf(u Atom) *Call  { return CallOf("ln", u) }

func (c *Call) Name() string       { return c.name }
func (c *Call) Builtin() Builtin   { return c.builtin }
func (c *Call) Args() []Atom       { return append([]Atom(nil), c.args...) }
func (c *Call) Key() uint64        { return c.key }
func (c *Call) String() string     { return c.render(false) }
func (c *Call) withArgs(args []Atom) *Call {
	return CallOf(c.name, args...)
}
func (c *Call) Equal(other Atom) bool {
	o, ok := other.(*Call)
	if !ok || c.name != o.name || len(c.args) != len(o.args) {
		return false
	}
	for i := range c.args {
		if !c.args[i].Equal(o.args[i]) {
			return false
		}
	}
	return true
}
func (c *Call) Sub(values map[string]Atom) Atom {
	return c.withArgs(mapAtoms(c.args, func(a Atom) Atom { return a.Sub(values) }))
}
func (c *Call) toJSON() map[string]interface{} {
	args := make([]map[string]interface{}, len(c.args))
	for i, a := range c.args {
		args[i] = a.toJSON()
	}
	return map[string]interface{}{"type": "call", "name": c.name, "args": args}
}

func mapAtoms(in []Atom, f func(Atom) Atom) []Atom {
	out := make([]Atom, len(in))
	for i, a := range in {
		out[i] = f(a)
	}
	return out
}

// ============================================================
// Tree walks
// ============================================================

// Children returns the direct subexpressions of a.
func Children(a Atom) []Atom {
	switch v := a.(type) {
	case *BinaryOp:
		return []Atom{v.left, v.right}
	case *Call:
		return v.Args()
	}
	return nil
}

// Variables returns the sorted names of the free variables of a.
func Variables(a Atom) []string {
	seen := map[string]struct{}{}
	queue := deque.NewDeque()
	queue.PushBack(a)
	for !queue.Empty() {
		cur := queue.PopFront().(Atom)
		if v, ok := cur.(*Variable); ok {
			seen[v.name] = struct{}{}
			continue
		}
		for _, c := range Children(cur) {
			queue.PushBack(c)
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Helpers used by the rewrite rules.

func asNumber(a Atom) (*Number, bool) {
	n, ok := a.(*Number)
	return n, ok
}

func isNum(a Atom, v float64) bool {
	n, ok := a.(*Number)
	return ok && n.Is(v)
}

func asBinary(a Atom, op Op) (*BinaryOp, bool) {
	b, ok := a.(*BinaryOp)
	if !ok || b.op != op {
		return nil, false
	}
	return b, true
}

// asUnary matches a single-argument call of the given builtin.
func asUnary(a Atom, fn Builtin) (Atom, bool) {
	c, ok := a.(*Call)
	if !ok || c.builtin != fn || len(c.args) != 1 {
		return nil, false
	}
	return c.args[0], true
}

// numericExp matches base^c with a numeric exponent.
func numericExp(a Atom) (base Atom, exp *Number, ok bool) {
	p, ok := asBinary(a, OpPow)
	if !ok {
		return nil, nil, false
	}
	exp, ok = asNumber(p.right)
	if !ok {
		return nil, nil, false
	}
	return p.left, exp, true
}

// coefficient matches c*x with a numeric c.
func coefficient(a Atom) (c *Number, rest Atom, ok bool) {
	m, ok := asBinary(a, OpMul)
	if !ok {
		return nil, nil, false
	}
	c, ok = asNumber(m.left)
	if !ok {
		return nil, nil, false
	}
	return c, m.right, true
}
