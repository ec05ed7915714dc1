package ast

import (
	"github.com/vrlcore/vrlcore/pkg/compstate"
	"github.com/vrlcore/vrlcore/pkg/jit"
	"github.com/vrlcore/vrlcore/pkg/value"
	"github.com/vrlcore/vrlcore/pkg/vm"
)

// Variable reads a previously assigned local, by name on the Resolve
// path and by resolved compstate.Symbol slot on the compiled paths. An
// unresolved name is a compile-time diagnostic, not a run-time surprise,
// since every assignment form (see assignment.go) defines its symbol
// before any later read of it can be compiled.
type Variable struct {
	Name string
}

func (v *Variable) Resolve(ctx *Context) (value.Value, error) {
	val, ok := ctx.Env.Get(v.Name)
	if !ok {
		return value.Null, nil
	}
	return val, nil
}

func (v *Variable) TypeDef(state *compstate.State) value.TypeDef {
	return value.TypeDef{Kinds: value.KindNull | value.KindBoolean | value.KindInteger |
		value.KindFloat | value.KindBytes | value.KindTimestamp | value.KindArray | value.KindObject}
}

func (v *Variable) CompileToVM(chunk *vm.Chunk, state *compstate.State) error {
	sym, ok := state.Symbols.Resolve(v.Name)
	if !ok {
		state.AddError(&compstate.CompileError{Message: "undefined variable: " + v.Name})
		chunk.EmitConstant(value.Null)
		return nil
	}
	chunk.EmitOperand(vm.OpGetLocal, uint16(sym.Index))
	return nil
}

func (v *Variable) EmitLLVM(jctx *jit.Context, state *compstate.State) error {
	sym, ok := state.Symbols.Resolve(v.Name)
	if !ok {
		state.AddError(&compstate.CompileError{Message: "undefined variable: " + v.Name})
		idx := state.Constants.AddValue(value.Null)
		_, err := jctx.CallConstantLookup(idx)
		return err
	}
	alloca := jctx.AllocaFor(sym)
	_, err := jctx.CallCopy(jctx.ResultRef(), alloca)
	return err
}
