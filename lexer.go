package minigebra

import "fmt"

// TokenKind identifies a lexical token.
type TokenKind int

const (
	EOF TokenKind = iota
	INVALID
	NUMBER
	VAR
	COMMAND
	PLUS
	MINUS
	MUL
	DIV
	EXP
	LPAR
	RPAR
	COMMA
)

var tokenNames = [...]string{
	EOF:     "EOF",
	INVALID: "INVALID",
	NUMBER:  "NUMBER",
	VAR:     "VAR",
	COMMAND: "COMMAND",
	PLUS:    "PLUS",
	MINUS:   "MINUS",
	MUL:     "MUL",
	DIV:     "DIV",
	EXP:     "EXP",
	LPAR:    "LPAR",
	RPAR:    "RPAR",
	COMMA:   "COMMA",
}

func (k TokenKind) String() string { return tokenNames[k] }

// Token is one lexeme and its byte offset in the source.
type Token struct {
	Kind TokenKind
	Text string
	Pos  int
}

func (t Token) String() string {
	if t.Kind == EOF {
		return "EOF"
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}

var punctuation = map[byte]TokenKind{
	'+': PLUS,
	'-': MINUS,
	'*': MUL,
	'/': DIV,
	'^': EXP,
	'(': LPAR,
	')': RPAR,
	',': COMMA,
}

// Lexer produces tokens on demand. Its cursor only moves forward; once it
// has returned EOF or INVALID it keeps returning that token.
type Lexer struct {
	src  string
	pos  int
	done *Token
}

func NewLexer(src string) *Lexer { return &Lexer{src: src} }

// Next returns the next token. Patterns are tried in a fixed order and the
// first one that matches the remaining input wins.
func (l *Lexer) Next() Token {
	if l.done != nil {
		return *l.done
	}
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}
	start := l.pos
	if start == len(l.src) {
		return l.finish(Token{Kind: EOF, Pos: start})
	}
	if n := l.matchNumber(); n > 0 {
		return l.emit(NUMBER, start, n)
	}
	if n := l.matchWhile(start, isLetter); n > 0 {
		return l.emit(VAR, start, n)
	}
	if n := l.matchCommand(); n > 0 {
		return l.emit(COMMAND, start, n)
	}
	if k, ok := punctuation[l.src[start]]; ok {
		return l.emit(k, start, 1)
	}
	return l.finish(Token{Kind: INVALID, Text: l.src[start : start+1], Pos: start})
}

func (l *Lexer) emit(kind TokenKind, start, n int) Token {
	l.pos = start + n
	return Token{Kind: kind, Text: l.src[start:l.pos], Pos: start}
}

func (l *Lexer) finish(t Token) Token {
	l.done = &t
	return t
}

func (l *Lexer) matchWhile(from int, pred func(byte) bool) int {
	i := from
	for i < len(l.src) && pred(l.src[i]) {
		i++
	}
	return i - from
}

// matchNumber matches -?digits(.digits)?
func (l *Lexer) matchNumber() int {
	i := l.pos
	if i < len(l.src) && l.src[i] == '-' {
		i++
	}
	d := l.matchWhile(i, isDigit)
	if d == 0 {
		return 0
	}
	i += d
	if i+1 < len(l.src) && l.src[i] == '.' && isDigit(l.src[i+1]) {
		i++
		i += l.matchWhile(i, isDigit)
	}
	return i - l.pos
}

// matchCommand matches a double-quoted, non-empty string.
func (l *Lexer) matchCommand() int {
	if l.src[l.pos] != '"' {
		return 0
	}
	body := 0
	for i := l.pos + 1; i < len(l.src); i++ {
		if l.src[i] == '"' {
			if body == 0 {
				return 0
			}
			return i + 1 - l.pos
		}
		body++
	}
	return 0
}

func isSpace(c byte) bool  { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
