// Package runtime is the facade the rest of the world drives: parse a
// source string once into a Program, then run it any number of times
// through either execution backend against a caller-supplied Target.
// It implements the external call order:
//
//	Runtime.New -> Compile -> RunVM -> Resolve -> Clear
//	Builder.New -> Compile -> Optimize -> GetJITFunction -> call
//
// with the first line driven entirely by this package and the second
// happening underneath RunVM once a Program has run often enough to be
// promoted to the JIT backend.
package runtime

import (
	"fmt"
	"strings"
	"time"

	"github.com/vrlcore/vrlcore/pkg/ast"
	"github.com/vrlcore/vrlcore/pkg/compstate"
	"github.com/vrlcore/vrlcore/pkg/config"
	"github.com/vrlcore/vrlcore/pkg/diagnostics"
	"github.com/vrlcore/vrlcore/pkg/jit"
	"github.com/vrlcore/vrlcore/pkg/memory"
	"github.com/vrlcore/vrlcore/pkg/parser"
	"github.com/vrlcore/vrlcore/pkg/target"
	"github.com/vrlcore/vrlcore/pkg/telemetry"
	"github.com/vrlcore/vrlcore/pkg/value"
	"github.com/vrlcore/vrlcore/pkg/vm"
)

// Program is one parsed-and-compiled VRL source: a Block ready to run
// through Resolve, a Chunk ready for the VM, and (once promoted) a
// linked JIT function. A Program is safe for repeated RunVM/Resolve
// calls from a single goroutine; see the design note on Clear below for
// what running the same Program twice requires.
type Program struct {
	Name   string
	Source string

	block *ast.Block
	state *compstate.State
	chunk *vm.Chunk

	jitCtx  *jit.JITContext
	jitFn   func(tgt target.Target, insertErrs *[]error) (value.Value, error)
	runs    int64
}

// Runtime owns a pool of VMs (RunVM is safe to call concurrently from
// multiple goroutines, each borrowing its own VM rather than
// serializing on one shared stack), the JIT Builder (created lazily -
// most programs this module compiles never run often enough to be
// worth the LLVM context setup cost), the hot-path Promoter, and the
// telemetry sinks every RunVM/Resolve call reports to.
type Runtime struct {
	functions *compstate.FunctionRegistry
	config    config.RuntimeConfig

	vmPool   *memory.Pool[*vm.VM]
	builder  *jit.Builder
	promoter *jit.Promoter

	logger  *telemetry.Logger
	metrics *telemetry.Metrics
	dumps   *diagnostics.DumpWriter
}

// New constructs a Runtime against the given function registry and
// config. Passing a zero config.RuntimeConfig{} is a programmer error in
// every caller this module ships (cmd/vrlbench and the tests always use
// config.Default()); Runtime does not silently substitute defaults for a
// config the caller built themselves, only for one loaded from disk with
// fields omitted (see pkg/config.Load).
func New(functions *compstate.FunctionRegistry, cfg config.RuntimeConfig) *Runtime {
	r := &Runtime{
		functions: functions,
		config:    cfg,
		promoter:  jit.NewPromoterWithThreshold(cfg.HotPathThreshold),
		logger:    telemetry.NewLogger(telemetry.DefaultConfig()),
		metrics:   telemetry.NewMetrics(telemetry.DefaultMetricsConfig()),
		dumps:     diagnostics.NewDumpWriter(cfg.DiagnosticsDir),
	}
	r.vmPool = memory.NewPool(
		func() *vm.VM {
			v := vm.New()
			v.SetMaxSteps(cfg.MaxSteps)
			return v
		},
		func(v **vm.VM) { (*v).Reset(0) },
	)
	return r
}

// Compile parses source and lowers it to bytecode, returning the
// diagnostics formatted and ready to print if either the parser or any
// node's CompileToVM rejected the program.
func (r *Runtime) Compile(name, source string) (*Program, error) {
	block, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}

	state := compstate.NewState(r.functions)
	chunk := vm.NewChunk(state.Constants)
	if err := block.CompileToVM(chunk, state); err != nil {
		return nil, err
	}
	if state.HasErrors() {
		return nil, fmt.Errorf("%s", diagnostics.FormatAll(state.Errors(), source, name, false))
	}

	return &Program{Name: name, Source: source, block: block, state: state, chunk: chunk}, nil
}

// RunVM executes prog through the bytecode VM, promoting it to the JIT
// backend first if it has been run often enough (per
// pkg/config.RuntimeConfig.HotPathThreshold) and JIT is enabled. A
// Target.Insert failure triggered by an assignment is never surfaced as
// the returned error - it is logged through telemetry and counted in
// metrics, per the execution core's discarded-insert-error design.
func (r *Runtime) RunVM(prog *Program, tgt target.Target) (value.Value, error) {
	prog.runs++
	start := time.Now()

	if r.config.EnableJIT && prog.jitFn == nil && r.promoter.ShouldPromote(prog.Name) {
		if err := r.promote(prog); err != nil {
			r.logger.WarnWithFields("jit promotion failed, continuing on VM backend", map[string]interface{}{
				"program": prog.Name, "error": err.Error(),
			})
		}
	}

	var (
		result     value.Value
		err        error
		insertErrs []error
		backend    = "vm"
	)

	if prog.jitFn != nil {
		backend = "jit"
		result, err = prog.jitFn(tgt, &insertErrs)
	} else {
		machine := r.vmPool.Get()
		machine.Reset(prog.state.Symbols.LocalCount())
		result, err = machine.Run(prog.chunk, tgt)
		insertErrs = machine.InsertErrs
		r.vmPool.Put(machine)
		r.metrics.AddVMSteps(1)
		if err != nil && isStepLimitError(err) {
			r.metrics.RecordVMStepLimitAbort()
		}
	}

	elapsed := time.Since(start)
	r.metrics.RecordResolve(backend, elapsed)
	if backend == "vm" {
		r.promoter.RecordRun(prog.Name, elapsed)
	}
	r.reportInsertErrs(prog, insertErrs)

	return result, err
}

// Resolve runs prog through the tree-walking interpreter, the
// always-correct reference path every compiled backend is checked
// against.
func (r *Runtime) Resolve(prog *Program, tgt target.Target) (value.Value, error) {
	start := time.Now()
	ctx := ast.NewContext(tgt, r.functions)
	result, err := prog.block.Resolve(ctx)
	r.metrics.RecordResolve("tree-walk", time.Since(start))
	r.reportInsertErrs(prog, *ctx.InsertErrs)
	return result, err
}

// Clear is a no-op preserved for the Runtime.New -> Compile -> RunVM ->
// Resolve -> Clear call order: each RunVM call already borrows its VM
// from a pool that resets operand stack, locals, and discarded insert
// errors on return (see vmPool's reset func above), so there is no
// per-Runtime transient state left over for a caller to clear between
// runs. It does not recompile or re-promote anything either way: a
// Program's chunk, state, and JIT function (if any) are unaffected.
func (r *Runtime) Clear() {}

// promote compiles prog to native code via a lazily-created Builder,
// optimizes it, links it, and dumps its IR if DiagnosticsDir is set. The
// Builder is created once per Runtime and reused across every Program
// promoted during the Runtime's lifetime, since tearing down an LLVM
// context per Program is wasteful (see jit.Builder's doc comment).
func (r *Runtime) promote(prog *Program) error {
	if r.builder == nil {
		b, err := jit.NewBuilder()
		if err != nil {
			return fmt.Errorf("runtime: creating jit builder: %w", err)
		}
		r.builder = b
	}

	jctx, calls, err := r.builder.Compile([]jit.Node{prog.block}, prog.state)
	if err != nil {
		return err
	}
	if r.dumps.Enabled() {
		_ = r.dumps.WriteIR(prog.Name, "unoptimized", jctx.String())
	}
	if err := jctx.Optimize(); err != nil {
		return err
	}
	if r.dumps.Enabled() {
		_ = r.dumps.WriteIR(prog.Name, "optimized", jctx.String())
	}

	fn, err := jctx.GetJITFunction(prog.state.Constants, calls)
	if err != nil {
		return err
	}

	prog.jitCtx = jctx
	prog.jitFn = fn
	r.metrics.RecordJITCompilation()
	r.logger.InfoWithFields("promoted program to jit backend", map[string]interface{}{
		"program": prog.Name, "runs_before_promotion": prog.runs,
	})
	return nil
}

func (r *Runtime) reportInsertErrs(prog *Program, errs []error) {
	for _, e := range errs {
		r.metrics.RecordInsertError()
		r.logger.WarnWithFields("target insert failed", map[string]interface{}{
			"program": prog.Name, "error": e.Error(),
		})
	}
}

func isStepLimitError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "exceeded step limit")
}

// Dispose releases prog's JIT execution engine, if it was promoted. It
// is a no-op for a Program that only ever ran on the VM backend.
func (p *Program) Dispose() {
	if p.jitCtx != nil {
		p.jitCtx.Dispose()
	}
}

// Metrics exposes the Runtime's Prometheus registry for an embedder to
// serve on its own /metrics endpoint.
func (r *Runtime) Metrics() *telemetry.Metrics { return r.metrics }
