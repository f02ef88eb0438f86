package minigebra

import "fmt"

// LexError reports a character no token pattern accepts.
type LexError struct {
	Pos  int
	Char string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("invalid character %q at offset %d", e.Char, e.Pos)
}

// ParseError reports an unexpected token.
type ParseError struct {
	Pos   int
	Token Token
	Msg   string
}

func (e *ParseError) Error() string {
	if e.Token.Kind == EOF {
		return fmt.Sprintf("%s at end of input", e.Msg)
	}
	return fmt.Sprintf("%s at offset %d (%s)", e.Msg, e.Pos, e.Token)
}

// UnboundVariableError is returned by Eval for a name missing from the bindings.
type UnboundVariableError struct {
	Name string
}

func (e *UnboundVariableError) Error() string {
	return fmt.Sprintf("variable %s has no value", e.Name)
}

// ArithmeticError is a numeric fault during evaluation.
type ArithmeticError struct {
	Op  string
	Msg string
}

func (e *ArithmeticError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

// UndefinedFunctionError is returned by Eval for a call that was never
// resolved to a definition.
type UndefinedFunctionError struct {
	Name string
}

func (e *UndefinedFunctionError) Error() string {
	return fmt.Sprintf("function %s is not defined", e.Name)
}

// SimplifyDivergenceError is a warning: the fixpoint loop hit its iteration
// cap. The tree returned with it is still a valid simplification.
type SimplifyDivergenceError struct {
	Iterations int
	Last       string
}

func (e *SimplifyDivergenceError) Error() string {
	return fmt.Sprintf("simplification did not converge after %d iterations (last: %s)", e.Iterations, e.Last)
}

// CommandError reports a malformed quoted command.
type CommandError struct {
	Command string
	Msg     string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q: %s", e.Command, e.Msg)
}

// ArityError reports a call with the wrong number of arguments.
type ArityError struct {
	Name      string
	Want, Got int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s expects %d argument(s), got %d", e.Name, e.Want, e.Got)
}

// RecursionError reports a user function whose expansion does not terminate.
type RecursionError struct {
	Name  string
	Depth int
}

func (e *RecursionError) Error() string {
	return fmt.Sprintf("expanding %s exceeded depth %d", e.Name, e.Depth)
}
