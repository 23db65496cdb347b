package values

import (
	"fmt"

	"github.com/refinex-lang/refinex/internal/ast"
)

// ErrorKind discriminates the evaluator's first-class error values. Like
// the teacher's *Error object, evaluation failures are values returned
// from Eval rather than Go errors, so that a caller can inspect which
// form of failure occurred without type-asserting on error strings.
type ErrorKind int

const (
	UnboundVariable ErrorKind = iota
	TypeMismatch
	AssertionFailed
	ForceNowFailed
	Unimplemented
	BuiltinFailure
)

func (k ErrorKind) String() string {
	switch k {
	case UnboundVariable:
		return "UnboundVariable"
	case TypeMismatch:
		return "TypeMismatch"
	case AssertionFailed:
		return "AssertionFailed"
	case ForceNowFailed:
		return "ForceNowFailed"
	case Unimplemented:
		return "Unimplemented"
	case BuiltinFailure:
		return "BuiltinFailure"
	default:
		return "Error"
	}
}

// EvalError is the value produced when evaluation cannot proceed.
type EvalError struct {
	Kind    ErrorKind
	Message string
	Pos     ast.Pos
}

func (e *EvalError) Error() string {
	if e.Pos.Line != 0 {
		return fmt.Sprintf("%s at %d:%d: %s", e.Kind.String(), e.Pos.Line, e.Pos.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind.String(), e.Message)
}

func NewError(kind ErrorKind, pos ast.Pos, format string, args ...interface{}) *EvalError {
	return &EvalError{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos}
}
