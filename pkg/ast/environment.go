package ast

import "github.com/vrlcore/vrlcore/pkg/value"

// Environment is the tree-walking Resolve path's variable scope chain,
// the Resolve-backend counterpart to compstate.SymbolTable on the
// compile-to-VM/LLVM paths. A Block enters a child Environment the way
// it enters a child compstate.SymbolTable, so a variable defined inside
// an if-branch does not leak past it.
type Environment struct {
	vars   map[string]value.Value
	parent *Environment
}

func NewEnvironment() *Environment {
	return &Environment{vars: make(map[string]value.Value)}
}

func (e *Environment) Child() *Environment {
	return &Environment{vars: make(map[string]value.Value), parent: e}
}

// Define binds name in this scope, shadowing any outer binding of the
// same name for as long as this scope is active.
func (e *Environment) Define(name string, v value.Value) {
	e.vars[name] = v
}

// Get looks up name in this scope, then outward through parents.
func (e *Environment) Get(name string) (value.Value, bool) {
	if v, ok := e.vars[name]; ok {
		return v, true
	}
	if e.parent != nil {
		return e.parent.Get(name)
	}
	return value.Null, false
}

// Set updates an already-bound name in the nearest enclosing scope that
// defines it, or defines it in the current scope if it is new -
// matching VRL's reassignment-without-declaration semantics.
func (e *Environment) Set(name string, v value.Value) {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.vars[name]; ok {
			env.vars[name] = v
			return
		}
	}
	e.vars[name] = v
}
