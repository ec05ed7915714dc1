package jit

import (
	"fmt"

	"github.com/vrlcore/vrlcore/pkg/compstate"
	"github.com/vrlcore/vrlcore/pkg/value"
	"tinygo.org/x/go-llvm"
)

// Context is passed to every ast.Node's EmitLLVM method while a Program
// is being lowered to IR. It is always passed by reference and the AST
// never holds a pointer back into it - emission is one-directional, the
// same discipline the original Rust llvm::Context enforces structurally
// through lifetimes.
type Context struct {
	llctx    llvm.Context
	module   llvm.Module
	builder  llvm.Builder
	fn       llvm.Value
	ctxParam llvm.Value
	outParam llvm.Value

	// vars holds one alloca per compstate.Symbol index, all created in
	// the function's entry block regardless of where in the IR the
	// corresponding Assignment node is emitted. Hoisting every alloca to
	// the entry block - rather than allocating where first assigned -
	// is what makes them eligible for LLVM's mem2reg pass later.
	vars map[int]llvm.Value

	resolvedTy llvm.Type

	calls []jitCallSite
}

// AppendBasicBlock is the one point where pkg/ast touches the LLVM API
// directly, needed because IfStatement's emission creates several
// basic blocks of its own. Keeping it here (rather than exporting
// llvm.BasicBlock-returning helpers all over this package) means a
// future swap away from tinygo.org/x/go-llvm only has to change this
// package, per the design note that LLVM is a swappable collaborator.
func AppendBasicBlock(fn llvm.Value, name string) llvm.BasicBlock {
	return llvm.AddBasicBlock(fn, name)
}

func newContext(llctx llvm.Context, module llvm.Module, fn llvm.Value) *Context {
	entry := llvm.AddBasicBlock(fn, "entry")
	builder := llctx.NewBuilder()
	builder.SetInsertPointAtEnd(entry)

	return &Context{
		llctx:      llctx,
		module:     module,
		builder:    builder,
		fn:         fn,
		ctxParam:   fn.Param(0),
		outParam:   fn.Param(1),
		vars:       make(map[int]llvm.Value),
		resolvedTy: module.GetTypeByName("Resolved"),
	}
}

func (c *Context) LLContext() llvm.Context { return c.llctx }
func (c *Context) Module() llvm.Module     { return c.module }
func (c *Context) Builder() llvm.Builder   { return c.builder }
func (c *Context) Function() llvm.Value    { return c.fn }
func (c *Context) CtxRef() llvm.Value      { return c.ctxParam }
func (c *Context) ResultRef() llvm.Value   { return c.outParam }

// AllocaFor returns the entry-block alloca backing local variable slot
// idx, creating it (in the entry block, never at the current insert
// point) the first time it is referenced.
func (c *Context) AllocaFor(sym *compstate.Symbol) llvm.Value {
	if v, ok := c.vars[sym.Index]; ok {
		return v
	}
	entry := c.fn.EntryBasicBlock()
	tmp := c.llctx.NewBuilder()
	if first := entry.FirstInstruction(); !first.IsNil() {
		tmp.SetInsertPointBefore(first)
	} else {
		tmp.SetInsertPointAtEnd(entry)
	}
	alloca := tmp.CreateAlloca(c.resolvedTy, fmt.Sprintf("local.%s", sym.Name))
	c.vars[sym.Index] = alloca
	return alloca
}

// CallHelper invokes a named runtime helper function declared/defined in
// precompiled.ll, looking it up from the module rather than re-declaring
// it, so a typo in a helper's name fails at Compile time (get_function
// returning IsNil) rather than silently linking against nothing.
func (c *Context) CallHelper(name string, args []llvm.Value) (llvm.Value, error) {
	fn := c.module.NamedFunction(name)
	if fn.IsNil() {
		return llvm.Value{}, fmt.Errorf("jit: helper function %q not found in precompiled module", name)
	}
	return c.builder.CreateCall(fn.GlobalValueType(), fn, args, ""), nil
}

// AddCall records a function call site and returns its index into the
// Context's call table, mirroring pkg/vm.Chunk.EmitCall so the VM and
// JIT backends resolve function calls the same way. Arguments cross the
// ABI boundary as hostResolved values; a fresh stringArena decodes them
// back to value.Value for the duration of one call, since call arguments
// never need to outlive the call itself.
func (c *Context) AddCall(fn *compstate.Function) int {
	idx := len(c.calls)
	c.calls = append(c.calls, jitCallSite{
		name: fn.Name,
		invoke: func(args []hostResolved) (hostResolved, error) {
			arena := newStringArena()
			valueArgs := make([]value.Value, len(args))
			for i, a := range args {
				valueArgs[i] = decodeResolved(a, arena)
			}
			result, err := fn.Invoke(valueArgs)
			if err != nil {
				return hostResolved{Tag: tagErr}, err
			}
			return encodeResolved(result, arena), nil
		},
	})
	return idx
}

// Calls returns the call table accumulated while emitting IR, handed to
// JITContext.GetJITFunction by Builder.Compile.
func (c *Context) Calls() []jitCallSite { return c.calls }

// NewTempResolved allocates a scratch Resolved slot in the entry block,
// used for intermediate results (e.g. the copy of an error-coalescing
// Assignment's right-hand side) that don't correspond to a named source
// variable.
func (c *Context) NewTempResolved(hint string) llvm.Value {
	entry := c.fn.EntryBasicBlock()
	tmp := c.llctx.NewBuilder()
	if first := entry.FirstInstruction(); !first.IsNil() {
		tmp.SetInsertPointBefore(first)
	} else {
		tmp.SetInsertPointAtEnd(entry)
	}
	return tmp.CreateAlloca(c.resolvedTy, hint)
}
