package minigebra

import (
	"fmt"
	"strconv"
	"strings"
)

// ============================================================
// Compile front end
// ============================================================

// Command is a quoted session directive such as "vars x y" or
// "def f(x) = x^2".
type Command struct {
	Name   string
	Params []string
	// Raw is the text after the command name, untokenized.
	Raw string
	// Def is set for "def" commands.
	Def *FunctionDefinition
}

func (c Command) String() string {
	if c.Raw == "" {
		return c.Name
	}
	return c.Name + " " + c.Raw
}

// ParseCommand reads the body of a quoted command and validates its
// parameters.
func ParseCommand(text string) (Command, error) {
	text = strings.TrimSpace(text)
	name, raw, _ := strings.Cut(text, " ")
	raw = strings.TrimSpace(raw)
	cmd := Command{Name: name, Raw: raw, Params: strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})}
	fail := func(format string, args ...interface{}) (Command, error) {
		return Command{}, &CommandError{Command: name, Msg: fmt.Sprintf(format, args...)}
	}
	switch name {
	case "vars", "params":
		for _, p := range cmd.Params {
			if !isIdentifier(p) {
				return fail("%q is not a name", p)
			}
		}
	case "domain":
		if len(cmd.Params) != 2 {
			return fail("want 2 bounds, got %d", len(cmd.Params))
		}
		cmd.Params[0] = strings.TrimLeft(cmd.Params[0], "(")
		cmd.Params[1] = strings.TrimRight(cmd.Params[1], ")")
		lo, err1 := strconv.ParseFloat(cmd.Params[0], 64)
		hi, err2 := strconv.ParseFloat(cmd.Params[1], 64)
		if err1 != nil || err2 != nil {
			return fail("bounds must be numbers")
		}
		if lo >= hi {
			return fail("lower bound %v is not below upper bound %v", lo, hi)
		}
	case "precision":
		if len(cmd.Params) != 1 {
			return fail("want 1 value, got %d", len(cmd.Params))
		}
		if p, err := strconv.ParseFloat(cmd.Params[0], 64); err != nil || p <= 0 {
			return fail("%q is not a positive number", cmd.Params[0])
		}
	case "diff_order":
		if len(cmd.Params) != 1 {
			return fail("want 1 value, got %d", len(cmd.Params))
		}
		if n, err := strconv.Atoi(cmd.Params[0]); err != nil || n < 0 {
			return fail("%q is not a non-negative integer", cmd.Params[0])
		}
	case "def":
		def, err := ParseDefinition(raw)
		if err != nil {
			return Command{}, err
		}
		cmd.Def = def
	default:
		return fail("unknown command")
	}
	return cmd, nil
}

// Compile splits text into quoted commands and expressions and parses both.
// Expressions are separated by ';' or newlines.
func Compile(text string) ([]Command, []Atom, error) {
	rest, quoted, err := extractCommands(text)
	if err != nil {
		return nil, nil, err
	}
	cmds := make([]Command, 0, len(quoted))
	for _, q := range quoted {
		c, err := ParseCommand(q)
		if err != nil {
			return nil, nil, err
		}
		cmds = append(cmds, c)
	}
	var exprs []Atom
	start := 0
	for i := 0; i <= len(rest); i++ {
		if i < len(rest) && rest[i] != ';' && rest[i] != '\n' {
			continue
		}
		src := rest[start:i]
		offset := start
		start = i + 1
		if strings.TrimSpace(src) == "" {
			continue
		}
		a, err := parseSpaced(src, offset)
		if err != nil {
			return nil, nil, fmt.Errorf("expression %d: %w", len(exprs)+1, err)
		}
		exprs = append(exprs, a)
	}
	return cmds, exprs, nil
}

// parseSpaced parses src after spacing its operators. Error offsets point
// into the caller's text, where src begins at offset.
func parseSpaced(src string, offset int) (Atom, error) {
	spaced, origin := spaceOperators(src)
	a, err := Parse(spaced)
	if err != nil {
		return nil, relocate(err, origin, offset)
	}
	return a, nil
}

// relocate moves the offset of a lex or parse error from the spaced
// expression back to the caller's text.
func relocate(err error, origin []int, offset int) error {
	at := func(pos int) int {
		if pos >= len(origin) {
			pos = len(origin) - 1
		}
		return offset + origin[pos]
	}
	switch e := err.(type) {
	case *LexError:
		return &LexError{Pos: at(e.Pos), Char: e.Char}
	case *ParseError:
		tok := e.Token
		tok.Pos = at(tok.Pos)
		return &ParseError{Pos: at(e.Pos), Token: tok, Msg: e.Msg}
	}
	return err
}

// extractCommands pulls the double-quoted segments out of text. Each
// segment is blanked out, starting with a newline so its neighbours stay
// separate, and the remaining text keeps its offsets.
func extractCommands(text string) (string, []string, error) {
	var rest strings.Builder
	var quoted []string
	for i := 0; i < len(text); i++ {
		if text[i] != '"' {
			rest.WriteByte(text[i])
			continue
		}
		end := strings.IndexByte(text[i+1:], '"')
		if end <= 0 {
			return "", nil, &LexError{Pos: i, Char: `"`}
		}
		quoted = append(quoted, text[i+1:i+1+end])
		rest.WriteByte('\n')
		rest.WriteString(strings.Repeat(" ", end+1))
		i += end + 1
	}
	return rest.String(), quoted, nil
}

// spaceOperators surrounds operators with blanks. A '-' is only spaced when
// it follows an operand, so signed literals such as "-3" or "2*-3" survive.
// origin maps each byte of the result, plus its end, to an offset in src.
func spaceOperators(src string) (string, []int) {
	var sb strings.Builder
	origin := make([]int, 0, len(src)+1)
	write := func(s string, at int) {
		sb.WriteString(s)
		for range s {
			origin = append(origin, at)
		}
	}
	last := byte(0)
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case strings.IndexByte("+*/^(),", c) >= 0,
			c == '-' && (isLetter(last) || isDigit(last) || last == ')'):
			write(" "+string(c)+" ", i)
		default:
			sb.WriteByte(c)
			origin = append(origin, i)
		}
		if !isSpace(c) {
			last = c
		}
	}
	origin = append(origin, len(src))
	return sb.String(), origin
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isLetter(s[i]) {
			return false
		}
	}
	return true
}
