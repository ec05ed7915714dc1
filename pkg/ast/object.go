package ast

import (
	"github.com/vrlcore/vrlcore/pkg/compstate"
	"github.com/vrlcore/vrlcore/pkg/jit"
	"github.com/vrlcore/vrlcore/pkg/value"
	"github.com/vrlcore/vrlcore/pkg/vm"
)

// Object builds an object literal from parallel Keys/Values slices
// (rather than a map) so every backend agrees on evaluation order, the
// same requirement Array has.
type Object struct {
	Keys   []string
	Values []Node
}

func (o *Object) Resolve(ctx *Context) (value.Value, error) {
	fields := make(map[string]value.Value, len(o.Keys))
	for i, key := range o.Keys {
		v, err := o.Values[i].Resolve(ctx)
		if err != nil {
			return value.Null, err
		}
		fields[key] = v
	}
	return value.Object(fields), nil
}

func (o *Object) TypeDef(state *compstate.State) value.TypeDef {
	return value.Exact(value.KindObject)
}

// CompileToVM pushes every field's value left to right, then records the
// key order as a constant-pool array so OpMakeObject can pair popped
// values back up with their names.
func (o *Object) CompileToVM(chunk *vm.Chunk, state *compstate.State) error {
	for _, v := range o.Values {
		if err := v.CompileToVM(chunk, state); err != nil {
			return err
		}
	}
	keys := make([]value.Value, len(o.Keys))
	for i, k := range o.Keys {
		keys[i] = value.Bytes(k)
	}
	idx := chunk.Constants.AddValue(value.Array(keys))
	chunk.EmitOperand(vm.OpMakeObject, uint16(idx))
	return nil
}

func (o *Object) EmitLLVM(jctx *jit.Context, state *compstate.State) error {
	operands := make([]func() error, len(o.Values))
	for i, v := range o.Values {
		v := v
		operands[i] = func() error { return v.EmitLLVM(jctx, state) }
	}
	keys := o.Keys
	return jctx.EmitVariadicOperatorCall("make_object", operands, func(args []value.Value) (value.Value, error) {
		fields := make(map[string]value.Value, len(keys))
		for i, k := range keys {
			fields[k] = args[i]
		}
		return value.Object(fields), nil
	})
}
