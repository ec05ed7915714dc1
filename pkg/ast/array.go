package ast

import (
	"github.com/vrlcore/vrlcore/pkg/compstate"
	"github.com/vrlcore/vrlcore/pkg/jit"
	"github.com/vrlcore/vrlcore/pkg/value"
	"github.com/vrlcore/vrlcore/pkg/vm"
)

// Array builds a fixed-length array literal from its item expressions,
// evaluated left to right.
type Array struct {
	Items []Node
}

func (a *Array) Resolve(ctx *Context) (value.Value, error) {
	items := make([]value.Value, len(a.Items))
	for i, item := range a.Items {
		v, err := item.Resolve(ctx)
		if err != nil {
			return value.Null, err
		}
		items[i] = v
	}
	return value.Array(items), nil
}

func (a *Array) TypeDef(state *compstate.State) value.TypeDef {
	return value.Exact(value.KindArray)
}

// CompileToVM evaluates every item (left to right, so side effects run
// in source order) then emits OpMakeArray, which pops them back off in
// reverse to rebuild the same order.
func (a *Array) CompileToVM(chunk *vm.Chunk, state *compstate.State) error {
	for _, item := range a.Items {
		if err := item.CompileToVM(chunk, state); err != nil {
			return err
		}
	}
	chunk.EmitOperand(vm.OpMakeArray, uint16(len(a.Items)))
	return nil
}

func (a *Array) EmitLLVM(jctx *jit.Context, state *compstate.State) error {
	operands := make([]func() error, len(a.Items))
	for i, item := range a.Items {
		item := item
		operands[i] = func() error { return item.EmitLLVM(jctx, state) }
	}
	return jctx.EmitVariadicOperatorCall("make_array", operands, func(args []value.Value) (value.Value, error) {
		return value.Array(args), nil
	})
}
