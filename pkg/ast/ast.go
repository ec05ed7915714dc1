// Package ast defines the expression tree every execution backend
// shares. Each node implements a uniform four-capability contract -
// Resolve (tree-walking interpretation), TypeDef (static approximation),
// CompileToVM (bytecode lowering), EmitLLVM (LLVM IR lowering) - which
// must all agree on the value a node produces. IfStatement is the
// exemplar node; every other node follows the same shape.
package ast

import (
	"github.com/vrlcore/vrlcore/pkg/compstate"
	"github.com/vrlcore/vrlcore/pkg/jit"
	"github.com/vrlcore/vrlcore/pkg/target"
	"github.com/vrlcore/vrlcore/pkg/value"
	"github.com/vrlcore/vrlcore/pkg/vm"
)

// Node is the shared contract every expression-tree node implements. A
// node is never polymorphic through a vtable of unrelated interfaces;
// all four capabilities live on the same concrete type, the way the
// original compiler's `impl Expression for IfStatement` groups them.
type Node interface {
	Resolve(ctx *Context) (value.Value, error)
	TypeDef(state *compstate.State) value.TypeDef
	CompileToVM(chunk *vm.Chunk, state *compstate.State) error
	EmitLLVM(jctx *jit.Context, state *compstate.State) error
}

// Context is the per-execution state Resolve is threaded through: the
// external Target, the tree-walking variable environment, the function
// registry, and the insert-error accumulator. It carries no timezone.
// It is the Resolve-path analogue of the VM's locals array and the JIT's
// per-call execState.
type Context struct {
	Target    target.Target
	Env       *Environment
	Functions *compstate.FunctionRegistry

	// InsertErrs accumulates Target.Insert failures triggered by a
	// top-level `.path = expr` assignment, mirroring vm.VM.InsertErrs:
	// a failed write to the external event is not surfaced to the
	// running program as an EvalError, only logged by the caller. It is
	// a pointer so every child Context a Block creates (see block.go)
	// shares the same accumulator as the Program-level Context.
	InsertErrs *[]error
}

func NewContext(tgt target.Target, functions *compstate.FunctionRegistry) *Context {
	errs := make([]error, 0)
	return &Context{Target: tgt, Env: NewEnvironment(), Functions: functions, InsertErrs: &errs}
}

// Program is the top-level compiled unit: an ordered list of Nodes plus
// the ConstantPool/SymbolTable/FunctionRegistry state they were compiled
// against. Both RunVM and the JIT execute the same Program.
type Program struct {
	Nodes []Node
	State *compstate.State
}
