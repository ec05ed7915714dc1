package value

import (
	"errors"
	"fmt"
)

// EvalErrorKind distinguishes the run-time error strata a resolved
// expression can fail with. Abort is never produced by ordinary
// expression evaluation; it is only raised by the Abort expression and is
// the sole mechanism that terminates a program early.
type EvalErrorKind int

const (
	TypeMismatch EvalErrorKind = iota
	ArithmeticOverflow
	PathNotFound
	UserFunctionError
	Abort
)

func (k EvalErrorKind) String() string {
	switch k {
	case TypeMismatch:
		return "type mismatch"
	case ArithmeticOverflow:
		return "arithmetic overflow"
	case PathNotFound:
		return "path not found"
	case UserFunctionError:
		return "user function error"
	case Abort:
		return "abort"
	default:
		return "unknown"
	}
}

// EvalError is the error type every Resolve/RunVM/JIT call returns on
// failure. It is recoverable by the caller unless Kind == Abort, which is
// the only error an enclosing program cannot capture with an
// error-coalescing assignment.
type EvalError struct {
	Kind    EvalErrorKind
	Message string
}

func (e *EvalError) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// IsAbort reports whether err is (or wraps) an Abort EvalError.
func IsAbort(err error) bool {
	var ee *EvalError
	return errors.As(err, &ee) && ee.Kind == Abort
}

func NewTypeMismatch(format string, args ...any) *EvalError {
	return &EvalError{Kind: TypeMismatch, Message: fmt.Sprintf(format, args...)}
}

func NewPathNotFound(path string) *EvalError {
	return &EvalError{Kind: PathNotFound, Message: path}
}

func NewAbort(message string) *EvalError {
	return &EvalError{Kind: Abort, Message: message}
}

func NewArithmeticOverflow(op string) *EvalError {
	return &EvalError{Kind: ArithmeticOverflow, Message: op}
}

func NewUserFunctionError(name string, err error) *EvalError {
	return &EvalError{Kind: UserFunctionError, Message: fmt.Sprintf("%s: %v", name, err)}
}
