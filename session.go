package minigebra

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/njchilds90/minigebra/internal/store"
)

// ============================================================
// Session
// ============================================================

// Options are the settings changed by quoted commands.
type Options struct {
	Vars      []string
	Params    []string
	Domain    [2]float64
	Precision float64
	DiffOrder int
	// MaxIterations caps each simplification; zero means DefaultMaxIterations.
	MaxIterations int
}

func DefaultOptions() Options {
	return Options{
		Domain:        [2]float64{-10, 10},
		Precision:     0.01,
		DiffOrder:     1,
		MaxIterations: DefaultMaxIterations,
	}
}

func (o Options) clone() Options {
	o.Vars = append([]string(nil), o.Vars...)
	o.Params = append([]string(nil), o.Params...)
	return o
}

// DiffVariable is the differentiation target: the first declared variable,
// or AnyVariable when none was declared.
func (o Options) DiffVariable() string {
	if len(o.Vars) > 0 {
		return o.Vars[0]
	}
	return AnyVariable
}

// Session holds the state an interactive front end carries between inputs.
type Session struct {
	Options  Options
	Registry *Registry
	// Library, when set, receives every "def" and is read by LoadLibrary.
	Library store.Store
	// Expressions is the derivative sequence of the last Run.
	Expressions [][]Atom
}

func NewSession(lib store.Store) *Session {
	return &Session{Options: DefaultOptions(), Registry: NewRegistry(), Library: lib}
}

// LoadLibrary defines every function stored in the library.
func (s *Session) LoadLibrary() error {
	if s.Library == nil {
		return nil
	}
	defs, err := s.Library.List()
	if err != nil {
		return fmt.Errorf("load library: %w", err)
	}
	reg := s.Registry.Clone()
	for _, d := range defs {
		body, err := Parse(d.Body)
		if err != nil {
			return fmt.Errorf("load library: %s: %w", d.Name, err)
		}
		if err := reg.Define(&FunctionDefinition{Name: d.Name, Params: d.Params, Body: body}); err != nil {
			return fmt.Errorf("load library: %w", err)
		}
	}
	s.Registry = reg
	return nil
}

// Result is the outcome of one Interpret call.
type Result struct {
	Commands []Command
	// Sequence is indexed by derivative order, then by expression.
	Sequence [][]Atom
	// Warnings holds non-fatal errors such as *SimplifyDivergenceError.
	Warnings []error
}

// Interpret compiles text, applies its commands and runs its expressions.
// On error the session is left unchanged.
func (s *Session) Interpret(text string) (*Result, error) {
	cmds, exprs, err := Compile(text)
	if err != nil {
		return nil, err
	}
	opts := s.Options.clone()
	reg := s.Registry.Clone()
	for _, c := range cmds {
		if err := applyCommand(&opts, reg, c); err != nil {
			return nil, err
		}
	}

	res := &Result{Commands: cmds}
	if len(exprs) > 0 {
		run := &Session{Options: opts, Registry: reg}
		seq, warnings, err := run.Run(exprs)
		if err != nil {
			return nil, err
		}
		res.Sequence, res.Warnings = seq, warnings
	}

	if s.Library != nil {
		for _, c := range cmds {
			if c.Def == nil {
				continue
			}
			if err := s.Library.Put(store.Definition{Name: c.Def.Name, Params: c.Def.Params, Body: c.Def.Body.String()}); err != nil {
				return nil, fmt.Errorf("def %s: %w", c.Def.Name, err)
			}
		}
	}
	s.Options, s.Registry = opts, reg
	if res.Sequence != nil {
		s.Expressions = res.Sequence
	}
	return res, nil
}

// Apply runs a single command against the session.
func (s *Session) Apply(cmd Command) error {
	opts := s.Options.clone()
	reg := s.Registry.Clone()
	if err := applyCommand(&opts, reg, cmd); err != nil {
		return err
	}
	if cmd.Def != nil && s.Library != nil {
		if err := s.Library.Put(store.Definition{Name: cmd.Def.Name, Params: cmd.Def.Params, Body: cmd.Def.Body.String()}); err != nil {
			return fmt.Errorf("def %s: %w", cmd.Def.Name, err)
		}
	}
	s.Options, s.Registry = opts, reg
	return nil
}

func applyCommand(o *Options, reg *Registry, c Command) error {
	switch c.Name {
	case "vars":
		o.Vars = append([]string(nil), c.Params...)
	case "params":
		o.Params = append([]string(nil), c.Params...)
	case "domain":
		lo, err := strconv.ParseFloat(strings.TrimLeft(c.Params[0], "("), 64)
		if err != nil {
			return &CommandError{Command: c.Name, Msg: err.Error()}
		}
		hi, err := strconv.ParseFloat(strings.TrimRight(c.Params[1], ")"), 64)
		if err != nil {
			return &CommandError{Command: c.Name, Msg: err.Error()}
		}
		o.Domain = [2]float64{lo, hi}
	case "precision":
		p, err := strconv.ParseFloat(c.Params[0], 64)
		if err != nil {
			return &CommandError{Command: c.Name, Msg: err.Error()}
		}
		o.Precision = p
	case "diff_order":
		n, err := strconv.Atoi(c.Params[0])
		if err != nil {
			return &CommandError{Command: c.Name, Msg: err.Error()}
		}
		o.DiffOrder = n
	case "def":
		if c.Def == nil {
			return &CommandError{Command: c.Name, Msg: "missing definition"}
		}
		if err := reg.Define(c.Def); err != nil {
			return &CommandError{Command: c.Name, Msg: err.Error()}
		}
	default:
		return &CommandError{Command: c.Name, Msg: "unknown command"}
	}
	return nil
}

// Run substitutes user functions into exprs, simplifies them and derives
// them Options.DiffOrder times. Each expression is processed in its own
// goroutine; the orders of one expression are computed in sequence.
func (s *Session) Run(exprs []Atom) ([][]Atom, []error, error) {
	subs := make([]Atom, len(exprs))
	for i, e := range exprs {
		sub, err := Substitute(e, s.Registry)
		if err != nil {
			return nil, nil, fmt.Errorf("expression %d: %w", i+1, err)
		}
		subs[i] = sub
	}

	order := s.Options.DiffOrder
	if order < 0 {
		order = 0
	}
	seq := make([][]Atom, order+1)
	for k := range seq {
		seq[k] = make([]Atom, len(subs))
	}
	simp := Simplifier{MaxIterations: s.Options.MaxIterations}
	v := s.Options.DiffVariable()
	warnings := make([][]error, len(subs))

	var wg sync.WaitGroup
	for i, sub := range subs {
		wg.Add(1)
		go func(i int, cur Atom) {
			defer wg.Done()
			for k := 0; k <= order; k++ {
				if k > 0 {
					cur = cur.Diff(v)
				}
				next, err := simp.Run(cur)
				var div *SimplifyDivergenceError
				if errors.As(err, &div) {
					warnings[i] = append(warnings[i], fmt.Errorf("expression %d, order %d: %w", i+1, k, err))
				}
				cur = next
				seq[k][i] = cur
			}
		}(i, sub)
	}
	wg.Wait()

	var flat []error
	for _, w := range warnings {
		flat = append(flat, w...)
	}
	return seq, flat, nil
}
