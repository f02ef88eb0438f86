package minigebra

import (
	"fmt"
	"strings"
)

// Parse builds an Atom from a single expression.
//
// Grammar, lowest precedence first:
//
//	expr    := term (('+'|'-') term)*
//	term    := factor (('*'|'/') factor | factor)*
//	factor  := '-' factor | power
//	power   := primary ('^' factor)?
//	primary := NUMBER | VAR ('(' expr (',' expr)* ')')? | '(' expr ')'
//
// Juxtaposition multiplies ("3 x", "2 sin(x)"). Unary minus becomes
// -1 * operand, so "-x^2" is -(x^2).
func Parse(text string) (Atom, error) {
	p := newParser(text)
	a, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.tok.Kind != EOF {
		return nil, p.fail("unexpected token")
	}
	return a, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level fixtures.
func MustParse(text string) Atom {
	a, err := Parse(text)
	if err != nil {
		panic(fmt.Sprintf("minigebra: MustParse(%q): %v", text, err))
	}
	return a
}

type parser struct {
	lex  *Lexer
	tok  Token
	peek Token
}

func newParser(text string) *parser {
	p := &parser{lex: NewLexer(text)}
	p.tok = p.lex.Next()
	p.peek = p.lex.Next()
	return p
}

func (p *parser) advance() {
	p.tok = p.peek
	p.peek = p.lex.Next()
}

func (p *parser) fail(msg string) error {
	if p.tok.Kind == INVALID {
		return &LexError{Pos: p.tok.Pos, Char: p.tok.Text}
	}
	return &ParseError{Pos: p.tok.Pos, Token: p.tok, Msg: msg}
}

func (p *parser) expect(kind TokenKind, msg string) error {
	if p.tok.Kind != kind {
		return p.fail(msg)
	}
	p.advance()
	return nil
}

// signedNumber reports whether the current token is a literal like "-2".
func (p *parser) signedNumber() bool {
	return p.tok.Kind == NUMBER && strings.HasPrefix(p.tok.Text, "-")
}

// unsign drops the sign of the current literal, leaving the cursor on it.
func (p *parser) unsign() {
	p.tok = Token{Kind: NUMBER, Text: p.tok.Text[1:], Pos: p.tok.Pos + 1}
}

func (p *parser) expr() (Atom, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		var op Op
		switch {
		case p.tok.Kind == PLUS:
			op = OpAdd
			p.advance()
		case p.tok.Kind == MINUS:
			op = OpSub
			p.advance()
		case p.signedNumber():
			// "x-1" lexes as x, -1.
			op = OpSub
			p.unsign()
		default:
			return left, nil
		}
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = Bin(op, left, right)
	}
}

func (p *parser) term() (Atom, error) {
	left, err := p.factor()
	if err != nil {
		return nil, err
	}
	for {
		op := OpMul
		switch p.tok.Kind {
		case MUL:
			p.advance()
		case DIV:
			op = OpDiv
			p.advance()
		case VAR, LPAR:
		case NUMBER:
			if p.signedNumber() {
				return left, nil
			}
		default:
			return left, nil
		}
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		left = Bin(op, left, right)
	}
}

func (p *parser) factor() (Atom, error) {
	if p.tok.Kind == MINUS {
		p.advance()
		a, err := p.factor()
		if err != nil {
			return nil, err
		}
		return Neg(a), nil
	}
	if p.signedNumber() && p.peek.Kind == EXP {
		// "-2^2" is -(2^2).
		p.unsign()
		a, err := p.factor()
		if err != nil {
			return nil, err
		}
		return Neg(a), nil
	}
	return p.power()
}

func (p *parser) power() (Atom, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if p.tok.Kind != EXP {
		return base, nil
	}
	p.advance()
	exp, err := p.factor()
	if err != nil {
		return nil, err
	}
	return PowOf(base, exp), nil
}

func (p *parser) primary() (Atom, error) {
	switch p.tok.Kind {
	case NUMBER:
		n, err := parseNumber(p.tok.Text)
		if err != nil {
			return nil, p.fail("malformed number")
		}
		p.advance()
		return n, nil
	case VAR:
		name := p.tok.Text
		p.advance()
		if p.tok.Kind != LPAR {
			return V(name), nil
		}
		return p.call(name)
	case LPAR:
		p.advance()
		a, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(RPAR, "missing closing parenthesis"); err != nil {
			return nil, err
		}
		return a, nil
	case EOF:
		return nil, p.fail("unexpected end of input")
	}
	return nil, p.fail("unexpected token")
}

func (p *parser) call(name string) (Atom, error) {
	open := p.tok
	p.advance()
	if p.tok.Kind == RPAR {
		return nil, p.fail("empty argument list")
	}
	var args []Atom
	for {
		a, err := p.expr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.tok.Kind != COMMA {
			break
		}
		p.advance()
	}
	if err := p.expect(RPAR, "missing closing parenthesis"); err != nil {
		return nil, err
	}
	if LookupBuiltin(name) != NoBuiltin && len(args) != 1 {
		return nil, &ParseError{Pos: open.Pos, Token: open, Msg: fmt.Sprintf("%s takes exactly one argument", name)}
	}
	return CallOf(name, args...), nil
}
