package compstate

import "github.com/vrlcore/vrlcore/pkg/value"

// Function is a callable VRL built-in. Parsing/type-checking of call
// arguments is out of scope; FunctionCall nodes resolve arguments
// left-to-right and hand the resolved value.Values to Invoke.
type Function struct {
	Name   string
	Invoke func(args []value.Value) (value.Value, error)
}

// FunctionRegistry resolves function names used by FunctionCall nodes at
// compile time, so a call to an undefined function is a compile
// diagnostic rather than a run-time surprise.
type FunctionRegistry struct {
	byName map[string]*Function
}

func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{byName: make(map[string]*Function)}
}

func (r *FunctionRegistry) Register(fn *Function) {
	r.byName[fn.Name] = fn
}

func (r *FunctionRegistry) Resolve(name string) (*Function, bool) {
	fn, ok := r.byName[name]
	return fn, ok
}

// Names lists every registered function, used by pkg/diagnostics to
// suggest a correction when a call references an unknown name.
func (r *FunctionRegistry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	return names
}

// Standard returns a FunctionRegistry preloaded with the handful of
// built-ins the documented scenarios exercise (parse_json, upcase,
// downcase, length). It mirrors the breadth of the teacher's
// registerBuiltins, not the full VRL standard library.
func Standard() *FunctionRegistry {
	r := NewFunctionRegistry()
	r.Register(&Function{Name: "upcase", Invoke: fnUpcase})
	r.Register(&Function{Name: "downcase", Invoke: fnDowncase})
	r.Register(&Function{Name: "length", Invoke: fnLength})
	r.Register(&Function{Name: "parse_json", Invoke: fnParseJSON})
	return r
}
