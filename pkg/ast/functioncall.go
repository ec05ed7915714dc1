package ast

import (
	"github.com/vrlcore/vrlcore/pkg/compstate"
	"github.com/vrlcore/vrlcore/pkg/jit"
	"github.com/vrlcore/vrlcore/pkg/value"
	"github.com/vrlcore/vrlcore/pkg/vm"
)

// FunctionCall invokes a registered built-in (see compstate.Standard) by
// name, with arguments evaluated left to right. The function is
// resolved once, at compile time, for the VM and JIT paths; the
// tree-walking Resolve path resolves it against ctx.Functions instead,
// since it has no compstate.State to consult.
type FunctionCall struct {
	Name string
	Args []Node
}

func (f *FunctionCall) Resolve(ctx *Context) (value.Value, error) {
	fn, ok := ctx.Functions.Resolve(f.Name)
	if !ok {
		return value.Null, value.NewTypeMismatch("undefined function: %s", f.Name)
	}
	args := make([]value.Value, len(f.Args))
	for i, a := range f.Args {
		v, err := a.Resolve(ctx)
		if err != nil {
			return value.Null, err
		}
		args[i] = v
	}
	result, err := fn.Invoke(args)
	if err != nil {
		return value.Null, value.NewUserFunctionError(f.Name, err)
	}
	return result, nil
}

func (f *FunctionCall) TypeDef(state *compstate.State) value.TypeDef {
	return value.TypeDef{Kinds: value.KindNull | value.KindBoolean | value.KindInteger |
		value.KindFloat | value.KindBytes | value.KindTimestamp | value.KindArray | value.KindObject,
		Fallible: true}
}

func (f *FunctionCall) CompileToVM(chunk *vm.Chunk, state *compstate.State) error {
	fn, ok := state.Functions.Resolve(f.Name)
	if !ok {
		state.AddError(&compstate.CompileError{Message: "undefined function: " + f.Name})
		chunk.EmitConstant(value.Null)
		return nil
	}
	for _, a := range f.Args {
		if err := a.CompileToVM(chunk, state); err != nil {
			return err
		}
	}
	chunk.EmitCall(fn, len(f.Args))
	return nil
}

func (f *FunctionCall) EmitLLVM(jctx *jit.Context, state *compstate.State) error {
	fn, ok := state.Functions.Resolve(f.Name)
	if !ok {
		state.AddError(&compstate.CompileError{Message: "undefined function: " + f.Name})
		idx := state.Constants.AddValue(value.Null)
		_, err := jctx.CallConstantLookup(idx)
		return err
	}
	callIdx := jctx.AddCall(fn)
	operands := make([]func() error, len(f.Args))
	for i, a := range f.Args {
		a := a
		operands[i] = func() error { return a.EmitLLVM(jctx, state) }
	}
	return jctx.EmitStagedCall(callIdx, operands)
}
