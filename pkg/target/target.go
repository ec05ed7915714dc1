package target

import "github.com/vrlcore/vrlcore/pkg/value"

// Target is the external mutable event an expression tree reads from and
// writes to. Get/Insert are path-addressed; the Path/Segment navigation
// rules (object keys index into maps, integer segments index into arrays,
// missing intermediate segments are created on Insert) are implementation
// details of a concrete Target, not a contract this interface enforces.
//
// Insert errors triggered by the external-assignment path (a top-level
// `.path = expr` statement) are deliberately not surfaced as an EvalError
// to the running program — see pkg/runtime.Runtime.RunVM, which discards
// them but logs them through pkg/telemetry.
type Target interface {
	Get(p Path) (value.Value, bool)
	Insert(p Path, v value.Value) error
	Remove(p Path) bool
}

// TargetError reports a failure to navigate or mutate a Target, distinct
// from value.EvalError because it is a property of the external event,
// not of expression evaluation.
type TargetError struct {
	Path    Path
	Message string
}

func (e *TargetError) Error() string {
	return e.Path.String() + ": " + e.Message
}
