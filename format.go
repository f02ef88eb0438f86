package minigebra

import (
	"fmt"
	"strings"
)

// ============================================================
// Formatting
// ============================================================

// Style selects an output notation for Print.
type Style int

const (
	Plain Style = iota
	LaTeX
	// MarkupInline wraps LaTeX in $...$ for MathJax-style renderers.
	MarkupInline
	// MarkupBlock wraps LaTeX in $$...$$.
	MarkupBlock
)

var styleNames = [...]string{"plain", "latex", "inline", "block"}

func (s Style) String() string { return styleNames[s] }

// ParseStyle is the inverse of Style.String.
func ParseStyle(name string) (Style, error) {
	for i, n := range styleNames {
		if strings.EqualFold(n, name) {
			return Style(i), nil
		}
	}
	return Plain, fmt.Errorf("unknown style %q (want one of %s)", name, strings.Join(styleNames[:], ", "))
}

func printAtom(a Atom, style Style) string {
	switch style {
	case LaTeX:
		return a.render(true)
	case MarkupInline:
		return "$" + a.render(true) + "$"
	case MarkupBlock:
		return "$$" + a.render(true) + "$$"
	}
	return a.render(false)
}

func (n *Number) Print(style Style) string   { return printAtom(n, style) }
func (v *Variable) Print(style Style) string { return printAtom(v, style) }
func (b *BinaryOp) Print(style Style) string { return printAtom(b, style) }
func (c *Call) Print(style Style) string     { return printAtom(c, style) }

// String renders a with the plain style.
func String(a Atom) string { return a.String() }

// LaTeXString renders a with the LaTeX style.
func LaTeXString(a Atom) string { return a.Print(LaTeX) }

func paren(s string, tex bool) string {
	if tex {
		return `\left(` + s + `\right)`
	}
	return "(" + s + ")"
}

func isOp(a Atom, ops ...Op) bool {
	b, ok := a.(*BinaryOp)
	if !ok {
		return false
	}
	for _, op := range ops {
		if b.op == op {
			return true
		}
	}
	return false
}

// Parenthesisation is decided on the plain rendering so every style agrees.

func startsNegative(a Atom) bool { return strings.HasPrefix(a.String(), "-") }

func startsLetter(a Atom) bool {
	s := a.String()
	return s != "" && isLetter(s[0])
}

func (b *BinaryOp) render(tex bool) string {
	l, r := b.left.render(tex), b.right.render(tex)
	switch b.op {
	case OpAdd:
		return l + " + " + r
	case OpSub:
		if isOp(b.right, OpAdd, OpSub) {
			r = paren(r, tex)
		}
		return l + " - " + r
	case OpMul:
		return b.renderMul(l, r, tex)
	case OpDiv:
		if isOp(b.left, OpAdd, OpSub, OpDiv, OpPow) {
			l = paren(l, tex)
		}
		if isOp(b.right, OpAdd, OpSub, OpDiv, OpPow, OpMul) {
			r = paren(r, tex)
		}
		if tex {
			return `\frac{` + l + "}{" + r + "}"
		}
		return l + " / " + r
	default:
		if _, ok := b.left.(*BinaryOp); ok {
			l = paren(l, tex)
		} else if n, ok := b.left.(*Number); ok && n.IsNegative() {
			l = paren(l, tex)
		}
		if _, ok := b.right.(*BinaryOp); ok {
			r = paren(r, tex)
		}
		if tex {
			return "{" + l + "}^{" + r + "}"
		}
		return l + " ^ " + r
	}
}

func (b *BinaryOp) renderMul(l, r string, tex bool) string {
	rightParen := isOp(b.right, OpAdd, OpSub, OpDiv) || startsNegative(b.right)
	if rightParen {
		r = paren(r, tex)
	}
	if isNum(b.left, -1) {
		if _, ok := b.right.(*Number); !ok {
			return "-" + r
		}
	}
	if isOp(b.left, OpAdd, OpSub, OpDiv) {
		l = paren(l, tex)
	}
	if !rightParen && startsLetter(b.right) {
		return l + " " + r
	}
	if tex {
		return l + ` \cdot ` + r
	}
	return l + " * " + r
}

var texBuiltins = map[Builtin]string{
	Sin: `\sin`,
	Cos: `\cos`,
	Tan: `\tan`,
	Ln:  `\ln`,
}

func (c *Call) render(tex bool) string {
	args := make([]string, len(c.args))
	for i, a := range c.args {
		args[i] = a.render(tex)
	}
	joined := strings.Join(args, ", ")
	if !tex {
		return c.name + "(" + joined + ")"
	}
	if c.builtin == Exp {
		return "e^{" + joined + "}"
	}
	if name, ok := texBuiltins[c.builtin]; ok {
		return name + paren(joined, true)
	}
	return `\operatorname{` + c.name + "}" + paren(joined, true)
}

// Tree renders a as an indented outline, one node per line, operators
// by name. Useful for inspecting how an input was parsed.
func Tree(a Atom) string {
	var sb strings.Builder
	writeTree(&sb, a, 0)
	return sb.String()
}

func writeTree(sb *strings.Builder, a Atom, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	switch v := a.(type) {
	case *BinaryOp:
		sb.WriteString(v.op.String())
	case *Call:
		sb.WriteString(v.name)
	default:
		sb.WriteString(a.String())
	}
	sb.WriteByte('\n')
	for _, c := range Children(a) {
		writeTree(sb, c, depth+1)
	}
}
