// Package jit implements the LLVM-based ahead-of-compile execution
// backend. It never embeds raw host-layout Value bytes as LLVM globals;
// constants, target access, and function calls are routed through an
// out-of-band, index-keyed table reached via the runtime helper ABI
// declared in precompiled.ll, exactly as a managed-runtime implementer
// is expected to (see SPEC_FULL.md §9 / spec.md §9's design note).
package jit

import (
	_ "embed"
	"fmt"

	"tinygo.org/x/go-llvm"
)

//go:embed precompiled.ll
var precompiledIR string

// stubFunctionName is the function Builder.Compile locates, strips the
// body of, and re-emits per compiled Program.
const stubFunctionName = "vrl_execute"

// loadPrecompiledModule parses the embedded IR into a fresh module in
// the given LLVM context. Builder.Compile calls it once per compiled
// Program, so every Program gets its own copy of the helper module.
func loadPrecompiledModule(llctx llvm.Context) (llvm.Module, error) {
	buf := llvm.NewMemoryBufferFromMemoryCopy([]byte(precompiledIR))
	mod, err := llctx.ParseIR(buf)
	if err != nil {
		return llvm.Module{}, fmt.Errorf("jit: parsing precompiled IR: %w", err)
	}
	return mod, nil
}
