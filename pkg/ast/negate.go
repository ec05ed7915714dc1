package ast

import (
	"github.com/vrlcore/vrlcore/pkg/compstate"
	"github.com/vrlcore/vrlcore/pkg/jit"
	"github.com/vrlcore/vrlcore/pkg/value"
	"github.com/vrlcore/vrlcore/pkg/vm"
)

// Negate implements unary minus over integers and floats.
type Negate struct {
	Inner Node
}

func (n *Negate) Resolve(ctx *Context) (value.Value, error) {
	v, err := n.Inner.Resolve(ctx)
	if err != nil {
		return value.Null, err
	}
	return vm.Negate(v)
}

func (n *Negate) TypeDef(state *compstate.State) value.TypeDef {
	return n.Inner.TypeDef(state).AsFallible()
}

func (n *Negate) CompileToVM(chunk *vm.Chunk, state *compstate.State) error {
	if err := n.Inner.CompileToVM(chunk, state); err != nil {
		return err
	}
	chunk.Emit(vm.OpNegate)
	return nil
}

func (n *Negate) EmitLLVM(jctx *jit.Context, state *compstate.State) error {
	if err := n.Inner.EmitLLVM(jctx, state); err != nil {
		return err
	}
	return jctx.EmitUnaryOperatorCall("negate", vm.Negate)
}
