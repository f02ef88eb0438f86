package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/njchilds90/minigebra"
)

const prompt = "minigebra> "

type repl struct {
	sess  *minigebra.Session
	style minigebra.Style
	out   io.Writer
}

// run reads lines until EOF or :quit and returns the exit status.
func (r *repl) run(histPath string) int {
	fmt.Fprintln(r.out, cyan("minigebra")+": type :help for commands, :quit to exit")
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return r.runBasic(os.Stdin)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	for {
		line, err := ln.Prompt(prompt)
		if err == liner.ErrPromptAborted {
			continue
		}
		if err != nil {
			fmt.Fprintln(r.out)
			return 0
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)
		if r.quit(line) {
			return 0
		}
		r.handle(line)
	}
}

// runBasic handles piped input.
func (r *repl) runBasic(in io.Reader) int {
	status := 0
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if r.quit(line) {
			break
		}
		if !r.handle(line) {
			status = 1
		}
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		return 1
	}
	return status
}

func (r *repl) quit(line string) bool {
	s := strings.TrimSpace(line)
	return s == ":quit" || s == ":q"
}

func (r *repl) fail(err error) bool {
	fmt.Fprintln(os.Stderr, red("error: "+err.Error()))
	return false
}

// handle runs one line and reports whether it succeeded.
func (r *repl) handle(line string) bool {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, ":") {
		return r.meta(line)
	}
	res, err := r.sess.Interpret(line)
	if err != nil {
		return r.fail(err)
	}
	if len(res.Commands) > 0 {
		fmt.Fprintln(r.out, cyan("Commands:"))
		for _, c := range res.Commands {
			fmt.Fprintln(r.out, "\t"+c.String())
		}
	}
	for _, w := range res.Warnings {
		fmt.Fprintln(os.Stderr, yellow("warning: "+w.Error()))
	}
	r.printSequence(res.Sequence)
	return true
}

func (r *repl) printSequence(seq [][]minigebra.Atom) {
	for k, row := range seq {
		if k == 0 {
			fmt.Fprintln(r.out, cyan("Expressions:"))
		} else {
			fmt.Fprintln(r.out, cyan(fmt.Sprintf("Differentiations of order %d:", k)))
		}
		for _, a := range row {
			fmt.Fprintln(r.out, "\t"+a.Print(r.style))
		}
	}
}

const help = `meta commands:
  :eval x=1 y=2   evaluate the last expressions and derivatives
  :style NAME     plain, latex, inline or block
  :tree           show the parse tree of the last expressions
  :defs           list user functions
  :show NAME      show one definition
  :forget NAME    remove a function from the library file
  :options        show session options
  :quit           exit
quoted commands:
  "vars x y"  "params a b"  "domain (-1, 1)"  "precision 0.01"
  "diff_order 2"  "def f(x) = x^2"`

func (r *repl) meta(line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":help", ":h":
		fmt.Fprintln(r.out, help)
	case ":style":
		if len(fields) != 2 {
			fmt.Fprintln(r.out, r.style)
			return true
		}
		s, err := minigebra.ParseStyle(fields[1])
		if err != nil {
			return r.fail(err)
		}
		r.style = s
	case ":eval":
		return r.eval(fields[1:])
	case ":tree":
		if len(r.sess.Expressions) == 0 {
			return r.fail(errors.New("no expressions yet"))
		}
		for _, a := range r.sess.Expressions[0] {
			fmt.Fprint(r.out, minigebra.Tree(a))
		}
	case ":defs":
		for _, d := range r.sess.Registry.Definitions() {
			fmt.Fprintln(r.out, "\t"+d.String())
		}
	case ":show":
		if len(fields) != 2 {
			return r.fail(errors.New("usage: :show NAME"))
		}
		d, ok := r.sess.Registry.Lookup(fields[1])
		if !ok {
			return r.fail(&minigebra.UndefinedFunctionError{Name: fields[1]})
		}
		fmt.Fprintln(r.out, "\t"+d.String())
	case ":forget":
		if len(fields) != 2 {
			return r.fail(errors.New("usage: :forget NAME"))
		}
		if err := r.sess.Library.Delete(fields[1]); err != nil {
			return r.fail(err)
		}
		fmt.Fprintln(r.out, "removed from library; takes effect next session")
	case ":options":
		o := r.sess.Options
		fmt.Fprintf(r.out, "\tvars: %v\n\tparams: %v\n\tdomain: (%g, %g)\n\tprecision: %g\n\tdiff_order: %d\n",
			o.Vars, o.Params, o.Domain[0], o.Domain[1], o.Precision, o.DiffOrder)
	default:
		return r.fail(fmt.Errorf("unknown meta command %s (try :help)", fields[0]))
	}
	return true
}

func (r *repl) eval(assignments []string) bool {
	if len(r.sess.Expressions) == 0 {
		return r.fail(errors.New("no expressions yet"))
	}
	env := minigebra.Bindings{}
	for _, a := range assignments {
		name, val, ok := strings.Cut(a, "=")
		if !ok {
			return r.fail(fmt.Errorf("want name=value, got %q", a))
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return r.fail(fmt.Errorf("%s: %w", name, err))
		}
		env[name] = f
	}
	ok := true
	for k, row := range r.sess.Expressions {
		for _, a := range row {
			v, err := a.Eval(env)
			if err != nil {
				fmt.Fprintf(r.out, "\t[%d] %s = %s\n", k, a, red(err.Error()))
				ok = false
				continue
			}
			fmt.Fprintf(r.out, "\t[%d] %s = %g\n", k, a, v)
		}
	}
	return ok
}
