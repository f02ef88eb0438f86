package minigebra_test

import (
	"errors"
	"testing"

	"github.com/njchilds90/minigebra"
)

// ============================================================
// Command tests
// ============================================================

func TestParseCommand(t *testing.T) {
	cases := []struct {
		in     string
		name   string
		params []string
	}{
		{"vars x y", "vars", []string{"x", "y"}},
		{"params a, b", "params", []string{"a", "b"}},
		{"domain (-1, 1)", "domain", []string{"-1", "1"}},
		{"precision 0.5", "precision", []string{"0.5"}},
		{"diff_order 2", "diff_order", []string{"2"}},
		{"  vars   t ", "vars", []string{"t"}},
	}
	for _, c := range cases {
		cmd, err := minigebra.ParseCommand(c.in)
		if err != nil {
			t.Errorf("ParseCommand(%q): %v", c.in, err)
			continue
		}
		if cmd.Name != c.name {
			t.Errorf("%q: want name %s, got %s", c.in, c.name, cmd.Name)
		}
		if len(cmd.Params) != len(c.params) {
			t.Errorf("%q: want params %v, got %v", c.in, c.params, cmd.Params)
			continue
		}
		for i := range c.params {
			if cmd.Params[i] != c.params[i] {
				t.Errorf("%q: want params %v, got %v", c.in, c.params, cmd.Params)
				break
			}
		}
	}
}

func TestParseCommand_Def(t *testing.T) {
	cmd, err := minigebra.ParseCommand("def f(t) = t^2")
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Def == nil || cmd.Def.Name != "f" || cmd.Def.Body.String() != "t ^ 2" {
		t.Errorf("want definition of f, got %+v", cmd.Def)
	}
	if cmd.String() != "def f(t) = t^2" {
		t.Errorf("want raw text kept, got %s", cmd)
	}
}

func TestParseCommand_Errors(t *testing.T) {
	for _, in := range []string{
		"bogus 1",
		"vars x2",
		"domain 1",
		"domain (2, 1)",
		"domain (a, b)",
		"precision 0",
		"precision",
		"diff_order -1",
		"diff_order 1.5",
	} {
		_, err := minigebra.ParseCommand(in)
		var ce *minigebra.CommandError
		if !errors.As(err, &ce) {
			t.Errorf("ParseCommand(%q): want CommandError, got %v", in, err)
		}
	}
}

// ============================================================
// Compile tests
// ============================================================

func TestCompile_Split(t *testing.T) {
	cmds, exprs, err := minigebra.Compile(`"vars x" x^2; 2/4` + "\n" + `sin(x)`)
	if err != nil {
		t.Fatal(err)
	}
	if len(cmds) != 1 || cmds[0].Name != "vars" || cmds[0].Params[0] != "x" {
		t.Errorf("want one vars command, got %v", cmds)
	}
	want := []string{"x ^ 2", "2 / 4", "sin(x)"}
	if len(exprs) != len(want) {
		t.Fatalf("want %d expressions, got %d", len(want), len(exprs))
	}
	for i, w := range want {
		if exprs[i].String() != w {
			t.Errorf("expression %d: want %s, got %s", i, w, exprs[i])
		}
	}
}

func TestCompile_CommandSeparatesExpressions(t *testing.T) {
	_, exprs, err := minigebra.Compile(`x "diff_order 0" y`)
	if err != nil {
		t.Fatal(err)
	}
	if len(exprs) != 2 {
		t.Errorf("want x and y kept apart, got %v", exprs)
	}
}

func TestCompile_Operators(t *testing.T) {
	cases := []struct{ in, want string }{
		{"x-1", "x - 1"},
		{"2*-3", "2 * (-3)"},
		{"x^-1", "x ^ -1"},
		{"-x+y", "-x + y"},
		{"(x)-(y)", "x - y"},
		{"3x", "3 x"},
	}
	for _, c := range cases {
		_, exprs, err := minigebra.Compile(c.in)
		if err != nil {
			t.Errorf("Compile(%q): %v", c.in, err)
			continue
		}
		if len(exprs) != 1 || exprs[0].String() != c.want {
			t.Errorf("Compile(%q): want %s, got %v", c.in, c.want, exprs)
		}
	}
}

func TestCompile_Errors(t *testing.T) {
	_, _, err := minigebra.Compile(`"vars x`)
	var le *minigebra.LexError
	if !errors.As(err, &le) || le.Pos != 0 {
		t.Errorf("want LexError at 0 for unterminated quote, got %v", err)
	}

	_, _, err = minigebra.Compile(`x; ""`)
	if !errors.As(err, &le) {
		t.Errorf("want LexError for empty command, got %v", err)
	}

	_, _, err = minigebra.Compile("x; y +")
	var pe *minigebra.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("want ParseError, got %v", err)
	}

	_, _, err = minigebra.Compile(`"bogus" x`)
	var ce *minigebra.CommandError
	if !errors.As(err, &ce) {
		t.Errorf("want CommandError, got %v", err)
	}
}

func TestCompile_Empty(t *testing.T) {
	cmds, exprs, err := minigebra.Compile("  ;\n ; ")
	if err != nil || len(cmds) != 0 || len(exprs) != 0 {
		t.Errorf("want nothing, got %v %v %v", cmds, exprs, err)
	}
}

func TestCompile_ErrorOffsets(t *testing.T) {
	_, _, err := minigebra.Compile("x+y*$")
	var le *minigebra.LexError
	if !errors.As(err, &le) || le.Pos != 4 {
		t.Errorf("want LexError at 4, got %v", err)
	}

	_, _, err = minigebra.Compile(`"vars x" 2*$`)
	if !errors.As(err, &le) || le.Pos != 11 {
		t.Errorf("want LexError at 11 after a command, got %v", err)
	}

	_, _, err = minigebra.Compile("x; y+)")
	var pe *minigebra.ParseError
	if !errors.As(err, &pe) || pe.Pos != 5 || pe.Token.Pos != 5 {
		t.Errorf("want ParseError at 5, got %v", err)
	}

	_, _, err = minigebra.Compile("x+")
	if !errors.As(err, &pe) || pe.Pos != 2 {
		t.Errorf("want ParseError at end of input 2, got %v", err)
	}
}
