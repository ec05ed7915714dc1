package ast

import (
	"github.com/vrlcore/vrlcore/pkg/compstate"
	"github.com/vrlcore/vrlcore/pkg/jit"
	"github.com/vrlcore/vrlcore/pkg/value"
	"github.com/vrlcore/vrlcore/pkg/vm"
)

// Abort terminates a running program with a fixed message, the only
// EvalError an enclosing error-coalescing assignment cannot recover
// from (see value.IsAbort). Its message is a compile-time constant,
// mirroring OpAbort's encoding: the bytecode carries a constant-pool
// index, not an evaluated expression, so aborting never itself risks
// failing to resolve its own message.
type Abort struct {
	Message string
}

func (a *Abort) Resolve(ctx *Context) (value.Value, error) {
	return value.Null, value.NewAbort(a.Message)
}

func (a *Abort) TypeDef(state *compstate.State) value.TypeDef {
	return value.TypeDef{Kinds: value.KindNull, Fallible: true}
}

func (a *Abort) CompileToVM(chunk *vm.Chunk, state *compstate.State) error {
	idx := chunk.Constants.AddValue(value.Bytes(a.Message))
	chunk.EmitOperand(vm.OpAbort, uint16(idx))
	return nil
}

func (a *Abort) EmitLLVM(jctx *jit.Context, state *compstate.State) error {
	idx := state.Constants.AddValue(value.Bytes(a.Message))
	_, err := jctx.CallAbort(idx)
	return err
}
