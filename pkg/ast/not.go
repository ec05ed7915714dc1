package ast

import (
	"github.com/vrlcore/vrlcore/pkg/compstate"
	"github.com/vrlcore/vrlcore/pkg/jit"
	"github.com/vrlcore/vrlcore/pkg/value"
	"github.com/vrlcore/vrlcore/pkg/vm"
)

// Not negates a boolean-valued expression.
type Not struct {
	Inner Node
}

func (n *Not) Resolve(ctx *Context) (value.Value, error) {
	v, err := n.Inner.Resolve(ctx)
	if err != nil {
		return value.Null, err
	}
	b, err := v.TryBoolean()
	if err != nil {
		return value.Null, err
	}
	return value.Boolean(!b), nil
}

func (n *Not) TypeDef(state *compstate.State) value.TypeDef {
	return value.Exact(value.KindBoolean)
}

func (n *Not) CompileToVM(chunk *vm.Chunk, state *compstate.State) error {
	if err := n.Inner.CompileToVM(chunk, state); err != nil {
		return err
	}
	chunk.Emit(vm.OpNot)
	return nil
}

// EmitLLVM routes through the same operator-call mechanism FunctionCall
// uses (see functioncall.go): the inner value is resolved into
// ResultRef(), then vrl_call_function invokes a Go closure that applies
// value.Value's boolean negation and writes the result back.
func (n *Not) EmitLLVM(jctx *jit.Context, state *compstate.State) error {
	if err := n.Inner.EmitLLVM(jctx, state); err != nil {
		return err
	}
	return jctx.EmitUnaryOperatorCall("not", func(v value.Value) (value.Value, error) {
		b, err := v.TryBoolean()
		if err != nil {
			return value.Null, err
		}
		return value.Boolean(!b), nil
	})
}
