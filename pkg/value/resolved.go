package value

// Resolved is the outcome of evaluating one expression: either a Value or
// an EvalError, never both. It is the element type of the bytecode VM's
// operand stack (see pkg/vm) and the wire shape the LLVM JIT's Resolved
// struct mirrors across the FFI boundary - both compiled backends carry
// exactly this sum type end to end rather than the bare Value the
// tree-walking Resolve returns, since pushing an Err and routing around
// it with JumpIfErr is what makes error-coalescing assignment lowerable
// to bytecode/IR in the first place.
type Resolved struct {
	value Value
	err   *EvalError
}

// OkResolved wraps a successfully evaluated Value.
func OkResolved(v Value) Resolved { return Resolved{value: v} }

// ErrResolved wraps a failed evaluation. Its Value() is Null, matching
// the payload an error-coalescing assignment binds to its primary target.
func ErrResolved(err *EvalError) Resolved { return Resolved{value: Null, err: err} }

func (r Resolved) IsErr() bool     { return r.err != nil }
func (r Resolved) Value() Value    { return r.value }
func (r Resolved) Err() *EvalError { return r.err }

// ErrIntoOk renders an Err to its message string and wraps it back up as
// a successful Bytes Resolved, or passes Null through for an Ok Resolved.
// This is the err_into_ok runtime helper error-coalescing assignment uses
// to bind its `err` target: Null on success, the failure's message on
// failure.
func (r Resolved) ErrIntoOk() Resolved {
	if r.err != nil {
		return OkResolved(Bytes(r.err.Error()))
	}
	return OkResolved(Null)
}
