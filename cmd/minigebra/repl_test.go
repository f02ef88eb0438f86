package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/njchilds90/minigebra"
	"github.com/njchilds90/minigebra/internal/store"
)

func newTestRepl() (*repl, *bytes.Buffer, *store.Memory) {
	var buf bytes.Buffer
	lib := store.NewMemory()
	return &repl{sess: minigebra.NewSession(lib), style: minigebra.Plain, out: &buf}, &buf, lib
}

func TestHandle_Sequence(t *testing.T) {
	r, buf, _ := newTestRepl()
	if !r.handle(`"vars x" x^2`) {
		t.Fatal("handle failed")
	}
	out := buf.String()
	for _, want := range []string{"Commands:", "vars x", "Expressions:", "x ^ 2", "Differentiations of order 1:", "2 x"} {
		if !strings.Contains(out, want) {
			t.Errorf("want %q in output:\n%s", want, out)
		}
	}
}

func TestHandle_Error(t *testing.T) {
	r, _, _ := newTestRepl()
	if r.handle("x +") {
		t.Error("want failure for a malformed expression")
	}
	if r.handle(":bogus") {
		t.Error("want failure for an unknown meta command")
	}
}

func TestMeta_EvalAndStyle(t *testing.T) {
	r, buf, _ := newTestRepl()
	r.handle("x^2")
	buf.Reset()
	if !r.handle(":eval x=3") {
		t.Fatalf("eval failed:\n%s", buf.String())
	}
	if out := buf.String(); !strings.Contains(out, "x ^ 2 = 9") || !strings.Contains(out, "2 x = 6") {
		t.Errorf("unexpected eval output:\n%s", out)
	}
	if r.handle(":eval x") {
		t.Error("want failure for an assignment without '='")
	}

	if !r.handle(":style latex") || r.style != minigebra.LaTeX {
		t.Errorf("want latex style, got %v", r.style)
	}
	buf.Reset()
	r.handle("x/2")
	if !strings.Contains(buf.String(), `\frac{x}{2}`) {
		t.Errorf("want latex output, got:\n%s", buf.String())
	}
}

func TestMeta_Library(t *testing.T) {
	r, buf, lib := newTestRepl()
	r.handle(`"def f(t) = t + 1"`)
	buf.Reset()
	r.handle(":defs")
	if !strings.Contains(buf.String(), "f(t) = t + 1") {
		t.Errorf("want f listed, got:\n%s", buf.String())
	}
	if !r.handle(":show f") {
		t.Error("show f failed")
	}
	if r.handle(":show g") {
		t.Error("want failure for an unknown function")
	}
	if !r.handle(":forget f") {
		t.Fatal("forget failed")
	}
	if _, ok, _ := lib.Get("f"); ok {
		t.Error("want f removed from the library")
	}
}

func TestRunBasic(t *testing.T) {
	r, buf, _ := newTestRepl()
	in := strings.NewReader("x^3\n\n:quit\ny +\n")
	if status := r.runBasic(in); status != 0 {
		t.Errorf("want status 0, got %d", status)
	}
	if !strings.Contains(buf.String(), "3 x ^ 2") {
		t.Errorf("want derivative of x^3, got:\n%s", buf.String())
	}

	r, _, _ = newTestRepl()
	if status := r.runBasic(strings.NewReader("y +\n")); status != 1 {
		t.Errorf("want status 1 after a failed line, got %d", status)
	}
}
