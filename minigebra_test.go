package minigebra_test

import (
	"errors"
	"math"
	"testing"

	"github.com/njchilds90/minigebra"
)

func parse(t *testing.T, src string) minigebra.Atom {
	t.Helper()
	a, err := minigebra.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return a
}

func simplify(t *testing.T, a minigebra.Atom) minigebra.Atom {
	t.Helper()
	s, err := minigebra.SimplifyFull(a)
	if err != nil {
		t.Fatalf("SimplifyFull(%s): %v", a, err)
	}
	return s
}

func simplified(t *testing.T, src string) string {
	t.Helper()
	return simplify(t, parse(t, src)).String()
}

func derived(t *testing.T, src, v string) string {
	t.Helper()
	return simplify(t, simplify(t, parse(t, src)).Diff(v)).String()
}

func eval(t *testing.T, a minigebra.Atom, x float64) float64 {
	t.Helper()
	v, err := a.Eval(minigebra.Bindings{"x": x})
	if err != nil {
		t.Fatalf("Eval(%s) at x=%v: %v", a, x, err)
	}
	return v
}

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

// ============================================================
// End-to-end scenarios
// ============================================================

func TestScenario_ImplicitMultiplication(t *testing.T) {
	got := parse(t, "x^2 + 3*x + 2").Print(minigebra.Plain)
	if got != "x ^ 2 + 3 x + 2" {
		t.Errorf("want x ^ 2 + 3 x + 2, got %s", got)
	}
	if s := simplified(t, "x^2 + 3*x + 2"); s != "x ^ 2 + 3 x + 2" {
		t.Errorf("simplification should keep x ^ 2 + 3 x + 2, got %s", s)
	}
}

func TestScenario_DiffSquare(t *testing.T) {
	if got := derived(t, "x^2", "x"); got != "2 x" {
		t.Errorf("want 2 x, got %s", got)
	}
}

func TestScenario_ReduceFraction(t *testing.T) {
	if got := simplified(t, "2/4"); got != "1 / 2" {
		t.Errorf("want 1 / 2, got %s", got)
	}
}

func TestScenario_ZeroPower(t *testing.T) {
	if got := simplified(t, "sin(x)^0"); got != "1" {
		t.Errorf("want 1, got %s", got)
	}
}

func TestScenario_Eval(t *testing.T) {
	if got := eval(t, parse(t, "x^2 + 1"), 3); got != 10 {
		t.Errorf("want 10, got %v", got)
	}
}

func TestScenario_DiffLog(t *testing.T) {
	if got := derived(t, "ln(x^2)", "x"); got != "2 / x" {
		t.Errorf("want 2 / x, got %s", got)
	}
	// Differentiating before simplifying reaches the same form.
	got := simplify(t, parse(t, "ln(x^2)").Diff("x")).String()
	if got != "2 / x" {
		t.Errorf("want 2 / x without pre-simplification, got %s", got)
	}
}

// ============================================================
// Properties
// ============================================================

var corpus = []string{
	"x^2 + 3*x + 2",
	"-x^2",
	"-2^2",
	"x-1",
	"2*-3",
	"(a+b)*(a-b)",
	"x/y/z",
	"x^y^z",
	"2 sin(x) cos(x)",
	"f(x, y) + g(x)",
	"exp(2*ln(x))",
	"ln(x^2) - ln(x)",
	"x / x^3",
	"(x^2)^3 * x",
	"1/(1 + x^2)",
	"x - (y - z)",
	"x * (-y)",
	"(-2)^x",
	"3 x + 2 x - x",
	"tan(x) / (x + 1)",
	"2.5 x - 0.5",
}

func TestProperty_RoundTrip(t *testing.T) {
	for _, src := range corpus {
		a := parse(t, src)
		for _, b := range []minigebra.Atom{a, simplify(t, a), simplify(t, a.Diff("x"))} {
			plain := b.String()
			again, err := minigebra.Parse(plain)
			if err != nil {
				t.Errorf("%s: cannot reparse %q: %v", src, plain, err)
				continue
			}
			if again.String() != plain {
				t.Errorf("%s: round trip changed %q into %q", src, plain, again.String())
			}
		}
	}
}

func TestProperty_FixpointIdempotent(t *testing.T) {
	for _, src := range corpus {
		once := simplify(t, parse(t, src))
		twice := simplify(t, once)
		if !minigebra.Same(once, twice) {
			t.Errorf("%s: %q simplified again to %q", src, once, twice)
		}
	}
}

func TestProperty_DiffLinearity(t *testing.T) {
	pairs := [][2]string{
		{"x^2", "sin(x)"},
		{"ln(x)", "exp(x)"},
		{"3*x", "x^3"},
	}
	for _, p := range pairs {
		a, b := parse(t, p[0]), parse(t, p[1])
		whole := simplify(t, minigebra.AddOf(a, b).Diff("x")).String()
		parts := simplify(t, minigebra.AddOf(a.Diff("x"), b.Diff("x"))).String()
		if whole != parts {
			t.Errorf("d(%s + %s): want %s, got %s", p[0], p[1], parts, whole)
		}
	}

	for _, src := range []string{"x^2", "sin(x)", "ln(x)"} {
		a := parse(t, src)
		scaled := simplify(t, minigebra.MulOf(minigebra.N(3), a).Diff("x")).String()
		outside := simplify(t, minigebra.MulOf(minigebra.N(3), a.Diff("x"))).String()
		if scaled != outside {
			t.Errorf("d(3 %s): want %s, got %s", src, outside, scaled)
		}
	}
}

func TestProperty_NumericConsistency(t *testing.T) {
	for _, src := range corpus {
		a := parse(t, src)
		if len(minigebra.Variables(a)) != 1 || minigebra.Variables(a)[0] != "x" {
			continue
		}
		want, err := a.Eval(minigebra.Bindings{"x": 1.7})
		if err != nil {
			continue
		}
		got := eval(t, simplify(t, a), 1.7)
		if !near(want, got, 1e-9) {
			t.Errorf("%s: eval %v, simplified eval %v", src, want, got)
		}
	}
}

func TestProperty_DerivativeMatchesDifference(t *testing.T) {
	const h = 1e-5
	for _, src := range []string{"x^3 - 2*x", "sin(x)*cos(x)", "ln(x^2 + 1)", "exp(x)/x", "tan(x)", "x^x", "1/(1 + x^2)"} {
		a := parse(t, src)
		d := simplify(t, a.Diff("x"))
		slope := (eval(t, a, 0.9+h) - eval(t, a, 0.9-h)) / (2 * h)
		if got := eval(t, d, 0.9); !near(got, slope, 1e-6) {
			t.Errorf("d/dx %s at 0.9: symbolic %v (%s), numeric %v", src, got, d, slope)
		}
	}
}

// ============================================================
// Errors
// ============================================================

func TestErrors_As(t *testing.T) {
	_, err := minigebra.Parse("x $ y")
	var lex *minigebra.LexError
	if !errors.As(err, &lex) || lex.Pos != 2 || lex.Char != "$" {
		t.Errorf("want LexError at 2 for $, got %v", err)
	}

	_, err = parse(t, "y + 1").Eval(minigebra.Bindings{})
	var unbound *minigebra.UnboundVariableError
	if !errors.As(err, &unbound) || unbound.Name != "y" {
		t.Errorf("want UnboundVariableError for y, got %v", err)
	}
}
