package jit

import (
	"fmt"

	"github.com/vrlcore/vrlcore/pkg/compstate"
	"tinygo.org/x/go-llvm"
)

// Node is the subset of ast.Node the JIT backend depends on. Declared
// here (rather than imported from pkg/ast) to keep this package a leaf:
// pkg/ast imports pkg/jit for Context, not the other way around.
type Node interface {
	EmitLLVM(ctx *Context, state *compstate.State) error
}

// Builder compiles a Program's AST to native code once, per the
// original crate's Builder::new / Builder::compile pair. One Builder
// should be reused for the lifetime of a process the way
// llvm::Context::get_jit_function's caller in benches/vm.rs does,
// since tearing down and recreating an LLVM context per program is
// wasteful.
type Builder struct {
	llctx llvm.Context
}

func NewBuilder() (*Builder, error) {
	llctx := llvm.NewContext()
	return &Builder{llctx: llctx}, nil
}

// Compile lowers nodes (a Program's top-level expressions) into the
// stripped-and-refilled vrl_execute stub of a fresh copy of the
// precompiled module, verifies the result, and returns a JITContext
// ready for Optimize + GetJITFunction.
func (b *Builder) Compile(nodes []Node, state *compstate.State) (*JITContext, []jitCallSite, error) {
	module, err := loadPrecompiledModule(b.llctx)
	if err != nil {
		return nil, nil, err
	}

	fn := module.NamedFunction(stubFunctionName)
	if fn.IsNil() {
		return nil, nil, fmt.Errorf("jit: precompiled module missing %q", stubFunctionName)
	}
	// Strip the stub's placeholder body so it can be re-emitted; the
	// stub exists in precompiled.ll purely to fix the function's
	// signature and give the rest of the module something concrete to
	// declare against before a Program is known.
	for bb := fn.FirstBasicBlock(); !bb.IsNil(); {
		next := bb.NextBasicBlock()
		bb.EraseFromParent()
		bb = next
	}

	ctx := newContext(b.llctx, module, fn)

	var lastErr error
	for _, node := range nodes {
		if err := node.EmitLLVM(ctx, state); err != nil {
			lastErr = err
			break
		}
	}
	if lastErr != nil {
		return nil, nil, fmt.Errorf("jit: emitting IR: %w", lastErr)
	}

	// Every node writes its result straight into the out parameter
	// (ResultRef), so the program ends with a plain return; no drop
	// calls are emitted.
	ctx.builder.CreateRetVoid()

	if err := llvm.VerifyModule(module, llvm.ReturnStatusAction); err != nil {
		return nil, nil, fmt.Errorf("jit: module verification failed: %w", err)
	}

	return &JITContext{llctx: b.llctx, module: module, fn: fn}, ctx.Calls(), nil
}
