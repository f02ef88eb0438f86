package minigebra

import (
	"fmt"
	"sort"
	"strings"
)

// ============================================================
// Function registry and substitution
// ============================================================

// MaxSubstitutionDepth bounds nested inlining of user functions.
const MaxSubstitutionDepth = 32

// FunctionDefinition is a named function. Builtins carry their tag and no
// body; user functions carry formal parameters and a body over them.
type FunctionDefinition struct {
	Name    string
	Params  []string
	Body    Atom
	Builtin Builtin
}

func (d *FunctionDefinition) Arity() int {
	if d.Builtin != NoBuiltin {
		return 1
	}
	return len(d.Params)
}

// String renders the definition in the form accepted by ParseDefinition.
func (d *FunctionDefinition) String() string {
	if d.Builtin != NoBuiltin {
		return d.Name + "(u) = <builtin>"
	}
	return d.Name + "(" + strings.Join(d.Params, ", ") + ") = " + d.Body.String()
}

// Registry is an append-only list of definitions; the newest definition of a
// name shadows older ones. A Registry is not safe for concurrent mutation;
// Session clones it before applying commands.
type Registry struct {
	defs []*FunctionDefinition
}

// NewRegistry returns a registry holding the builtin functions.
func NewRegistry() *Registry {
	r := &Registry{}
	for b := Sin; b <= Ln; b++ {
		r.defs = append(r.defs, &FunctionDefinition{Name: b.String(), Params: []string{"u"}, Builtin: b})
	}
	return r
}

// Define registers a user function.
func (r *Registry) Define(def *FunctionDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("function name is empty")
	}
	if LookupBuiltin(def.Name) != NoBuiltin {
		return fmt.Errorf("cannot redefine builtin %s", def.Name)
	}
	if def.Body == nil {
		return fmt.Errorf("function %s has no body", def.Name)
	}
	seen := map[string]bool{}
	for _, p := range def.Params {
		if seen[p] {
			return fmt.Errorf("function %s: duplicate parameter %s", def.Name, p)
		}
		seen[p] = true
	}
	r.defs = append(r.defs, def)
	return nil
}

// Lookup returns the newest definition named name.
func (r *Registry) Lookup(name string) (*FunctionDefinition, bool) {
	for i := len(r.defs) - 1; i >= 0; i-- {
		if r.defs[i].Name == name {
			return r.defs[i], true
		}
	}
	return nil, false
}

// Definitions returns the visible user definitions sorted by name.
func (r *Registry) Definitions() []*FunctionDefinition {
	var out []*FunctionDefinition
	for _, d := range r.defs {
		if d.Builtin != NoBuiltin {
			continue
		}
		if cur, _ := r.Lookup(d.Name); cur == d {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) Clone() *Registry {
	return &Registry{defs: append([]*FunctionDefinition(nil), r.defs...)}
}

// Substitute inlines every call to a registered user function, binding
// formal parameters to the argument subtrees. Builtin calls and calls to
// unknown names are kept.
func Substitute(a Atom, reg *Registry) (Atom, error) {
	if reg == nil {
		return a, nil
	}
	return a.substitute(reg, 0)
}

func (n *Number) substitute(*Registry, int) (Atom, error)   { return n, nil }
func (v *Variable) substitute(*Registry, int) (Atom, error) { return v, nil }

func (b *BinaryOp) substitute(reg *Registry, depth int) (Atom, error) {
	l, err := b.left.substitute(reg, depth)
	if err != nil {
		return nil, err
	}
	r, err := b.right.substitute(reg, depth)
	if err != nil {
		return nil, err
	}
	return Bin(b.op, l, r), nil
}

func (c *Call) substitute(reg *Registry, depth int) (Atom, error) {
	args := make([]Atom, len(c.args))
	for i, a := range c.args {
		s, err := a.substitute(reg, depth)
		if err != nil {
			return nil, err
		}
		args[i] = s
	}
	if c.builtin != NoBuiltin {
		return c.withArgs(args), nil
	}
	def, ok := reg.Lookup(c.name)
	if !ok {
		return c.withArgs(args), nil
	}
	if len(args) != len(def.Params) {
		return nil, &ArityError{Name: c.name, Want: len(def.Params), Got: len(args)}
	}
	if depth >= MaxSubstitutionDepth {
		return nil, &RecursionError{Name: c.name, Depth: depth}
	}
	bind := make(map[string]Atom, len(args))
	for i, p := range def.Params {
		bind[p] = args[i]
	}
	return def.Body.Sub(bind).substitute(reg, depth+1)
}

// ParseDefinition reads "f(x, y) = body".
func ParseDefinition(text string) (*FunctionDefinition, error) {
	head, body, ok := strings.Cut(text, "=")
	if !ok {
		return nil, &CommandError{Command: "def", Msg: "missing '='"}
	}
	lhs, err := Parse(head)
	if err != nil {
		return nil, fmt.Errorf("def: left-hand side: %w", err)
	}
	call, ok := lhs.(*Call)
	if !ok {
		return nil, &CommandError{Command: "def", Msg: "left-hand side must look like f(x, ...)"}
	}
	params := make([]string, len(call.args))
	for i, a := range call.args {
		v, ok := a.(*Variable)
		if !ok {
			return nil, &CommandError{Command: "def", Msg: fmt.Sprintf("parameter %d of %s is not a variable", i+1, call.name)}
		}
		params[i] = v.name
	}
	rhs, err := Parse(body)
	if err != nil {
		return nil, fmt.Errorf("def %s: body: %w", call.name, err)
	}
	return &FunctionDefinition{Name: call.name, Params: params, Body: rhs}, nil
}
