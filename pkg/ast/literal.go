package ast

import (
	"github.com/vrlcore/vrlcore/pkg/compstate"
	"github.com/vrlcore/vrlcore/pkg/jit"
	"github.com/vrlcore/vrlcore/pkg/value"
	"github.com/vrlcore/vrlcore/pkg/vm"
)

// Literal is a compile-time-known value.Value with no dependence on
// Context or State: every backend just hands back the same constant.
type Literal struct {
	Value value.Value
}

func (l *Literal) Resolve(ctx *Context) (value.Value, error) {
	return l.Value, nil
}

func (l *Literal) TypeDef(state *compstate.State) value.TypeDef {
	return value.Exact(l.Value.Kind())
}

func (l *Literal) CompileToVM(chunk *vm.Chunk, state *compstate.State) error {
	chunk.EmitConstant(l.Value)
	return nil
}

// EmitLLVM writes the literal's constant, looked up by index through the
// out-of-band constant table (vrl_constant_lookup), directly into
// jctx.ResultRef() - the single mutable Resolved slot every node's IR
// reads and overwrites in sequence, mirroring the original backend's
// result_ref() discipline.
func (l *Literal) EmitLLVM(jctx *jit.Context, state *compstate.State) error {
	idx := state.Constants.AddValue(l.Value)
	_, err := jctx.CallConstantLookup(idx)
	return err
}
