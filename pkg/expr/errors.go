package expr

import "fmt"

// SyntaxError indicates a condition that does not conform to the restricted
// grammar. It is raised at parse time, before any evaluation happens, and is
// structurally distinct from an EvalError so callers can tell a malformed
// rule apart from a rule that evaluated to false or failed on types.
type SyntaxError struct {
	// Message describes what was rejected.
	Message string

	// Pos is the byte offset in the condition text where the problem was
	// detected, or -1 if not applicable.
	Pos int
}

// Error returns the error message.
func (e *SyntaxError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("invalid expression syntax at offset %d: %s", e.Pos, e.Message)
	}
	return fmt.Sprintf("invalid expression syntax: %s", e.Message)
}

// EvalError indicates a well-formed expression that failed during
// evaluation, typically because of incompatible operand types or division
// by zero. The engine treats it as a rule failure, not a crash.
type EvalError struct {
	Message string
}

// Error returns the error message.
func (e *EvalError) Error() string {
	return e.Message
}

// syntaxErrorf builds a *SyntaxError at the given offset.
func syntaxErrorf(pos int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Message: fmt.Sprintf(format, args...), Pos: pos}
}

// evalErrorf builds a *EvalError.
func evalErrorf(format string, args ...any) *EvalError {
	return &EvalError{Message: fmt.Sprintf(format, args...)}
}
