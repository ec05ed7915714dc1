package ast

import (
	"github.com/vrlcore/vrlcore/pkg/compstate"
	"github.com/vrlcore/vrlcore/pkg/jit"
	"github.com/vrlcore/vrlcore/pkg/target"
	"github.com/vrlcore/vrlcore/pkg/value"
	"github.com/vrlcore/vrlcore/pkg/vm"
)

// Assignment covers every form the language's `=` statement takes. The
// assigned value goes to VariableName or Path (never both); when Value
// fails with a non-Abort error, the error-coalescing forms (ErrVar or
// ErrPath set) capture the error's message there instead of propagating
// it and bind/insert Null for the value target:
//
//	x = expr                  VariableName set
//	.foo.bar = expr           Path set
//	x, err = expr             VariableName + ErrVar set
//	.a, .err = expr           Path + ErrPath set
//
// An Abort error is never coalesced - it always propagates, the one
// failure mode none of these forms can catch.
type Assignment struct {
	VariableName string
	Path         *target.Path
	ErrVar       string
	ErrPath      *target.Path
	Value        Node
}

func (a *Assignment) coalesces() bool {
	return a.ErrVar != "" || a.ErrPath != nil
}

func (a *Assignment) Resolve(ctx *Context) (value.Value, error) {
	v, err := a.Value.Resolve(ctx)
	if err != nil {
		if !a.coalesces() || value.IsAbort(err) {
			return value.Null, err
		}
		if setErr := a.setErr(ctx, value.Bytes(err.Error())); setErr != nil {
			*ctx.InsertErrs = append(*ctx.InsertErrs, setErr)
		}
		v = value.Null
	} else if a.coalesces() {
		if setErr := a.setErr(ctx, value.Null); setErr != nil {
			*ctx.InsertErrs = append(*ctx.InsertErrs, setErr)
		}
	}

	if a.Path != nil {
		if insertErr := ctx.Target.Insert(*a.Path, v); insertErr != nil {
			*ctx.InsertErrs = append(*ctx.InsertErrs, insertErr)
		}
	}
	if a.VariableName != "" {
		ctx.Env.Set(a.VariableName, v)
	}
	return v, nil
}

func (a *Assignment) setErr(ctx *Context, v value.Value) error {
	if a.ErrPath != nil {
		return ctx.Target.Insert(*a.ErrPath, v)
	}
	ctx.Env.Set(a.ErrVar, v)
	return nil
}

func (a *Assignment) TypeDef(state *compstate.State) value.TypeDef {
	return a.Value.TypeDef(state)
}

// CompileToVM emits a.Value, then either:
//
//   - the plain forms: OpJumpIfErr past the store when the Resolved is an
//     Err (propagating it as this node's own Resolved, the same as
//     Resolve's early return), else store and fall through leaving the
//     Ok Resolved on the stack;
//   - the coalescing forms: OpDup the Resolved so one copy can be turned
//     into the err binding's value via OpErrIntoOk while the other is
//     stored as-is and then OpUnwrapOk'd into the primary binding's
//     value, guaranteeing the assignment's own Resolved is always Ok -
//     exactly what "coalescing" means: the failure is captured, not
//     propagated.
//
// OpSetLocal/OpSetTarget both read the Resolved on top of the stack
// without popping it, which is what lets the store sit in the middle of
// either sequence without disturbing what's left behind for the caller.
func (a *Assignment) CompileToVM(chunk *vm.Chunk, state *compstate.State) error {
	if err := a.Value.CompileToVM(chunk, state); err != nil {
		return err
	}

	if a.coalesces() {
		chunk.Emit(vm.OpDup)
		chunk.Emit(vm.OpErrIntoOk)
		a.emitStore(chunk, state, a.ErrPath, a.ErrVar)
		chunk.Emit(vm.OpPop)
		chunk.Emit(vm.OpUnwrapOk)
		a.emitStore(chunk, state, a.Path, a.VariableName)
		return nil
	}

	skip := chunk.EmitJump(vm.OpJumpIfErr)
	a.emitStore(chunk, state, a.Path, a.VariableName)
	chunk.PatchJump(skip)
	return nil
}

// emitStore emits OpSetTarget/OpSetLocal for whichever of path/variable
// is set, defining the local on first assignment the way CompileToVM
// always has. Exactly one of path/variable is ever set, mirroring the
// VariableName/Path and ErrVar/ErrPath exclusivity Assignment's doc
// comment describes.
func (a *Assignment) emitStore(chunk *vm.Chunk, state *compstate.State, path *target.Path, variable string) {
	if path != nil {
		idx := state.Constants.AddPath(*path)
		chunk.EmitOperand(vm.OpSetTarget, uint16(idx))
		return
	}
	if variable != "" {
		sym, ok := state.Symbols.Resolve(variable)
		if !ok {
			sym = state.Symbols.Define(variable)
		}
		chunk.EmitOperand(vm.OpSetLocal, uint16(sym.Index))
	}
}

// EmitLLVM mirrors CompileToVM block for block: the plain forms branch
// around the store when ResultRef() holds an Err, and the coalescing
// forms stash a copy of the raw Resolved in a temp alloca so the err
// binding (vrl_resolved_err_into_ok) and the primary binding
// (vrl_resolved_unwrap_ok) can each derive their own value from it
// independently of whatever ResultRef() holds by the time the other
// runs.
func (a *Assignment) EmitLLVM(jctx *jit.Context, state *compstate.State) error {
	if err := a.Value.EmitLLVM(jctx, state); err != nil {
		return err
	}

	if a.coalesces() {
		tmp := jctx.NewTempResolved("coalesced")
		if _, err := jctx.CallCopy(tmp, jctx.ResultRef()); err != nil {
			return err
		}

		if _, err := jctx.CallErrIntoOk(jctx.ResultRef(), tmp); err != nil {
			return err
		}
		if err := a.emitLLVMStore(jctx, state, a.ErrPath, a.ErrVar); err != nil {
			return err
		}

		if _, err := jctx.CallUnwrapOk(jctx.ResultRef(), tmp); err != nil {
			return err
		}
		return a.emitLLVMStore(jctx, state, a.Path, a.VariableName)
	}

	isErr, err := jctx.CallIsErr(jctx.ResultRef())
	if err != nil {
		return err
	}
	fn := jctx.Function()
	storeBlock := jit.AppendBasicBlock(fn, "assign_store")
	endBlock := jit.AppendBasicBlock(fn, "assign_end")
	jctx.Builder().CreateCondBr(isErr, endBlock, storeBlock)

	jctx.Builder().SetInsertPointAtEnd(storeBlock)
	if err := a.emitLLVMStore(jctx, state, a.Path, a.VariableName); err != nil {
		return err
	}
	jctx.Builder().CreateBr(endBlock)

	jctx.Builder().SetInsertPointAtEnd(endBlock)
	return nil
}

func (a *Assignment) emitLLVMStore(jctx *jit.Context, state *compstate.State, path *target.Path, variable string) error {
	if path != nil {
		idx := state.Constants.AddPath(*path)
		_, err := jctx.CallTargetInsert(idx)
		return err
	}
	if variable != "" {
		sym, ok := state.Symbols.Resolve(variable)
		if !ok {
			sym = state.Symbols.Define(variable)
		}
		alloca := jctx.AllocaFor(sym)
		_, err := jctx.CallCopy(alloca, jctx.ResultRef())
		return err
	}
	return nil
}
