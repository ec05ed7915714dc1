package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrlcore/vrlcore/pkg/compstate"
	"github.com/vrlcore/vrlcore/pkg/config"
	"github.com/vrlcore/vrlcore/pkg/target"
	"github.com/vrlcore/vrlcore/pkg/value"
)

func newTestRuntime() *Runtime {
	return New(compstate.Standard(), config.Default())
}

func TestRuntime_ResolveAssignment(t *testing.T) {
	rt := newTestRuntime()
	prog, err := rt.Compile("assign", `.greeting = "hello"`)
	require.NoError(t, err)

	tgt := target.NewLocalTarget(value.Null)
	result, err := rt.Resolve(prog, tgt)
	require.NoError(t, err)
	assert.Equal(t, "hello", result.String())

	got, ok := tgt.Get(target.NewPath(target.Field("greeting")))
	require.True(t, ok)
	s, _ := got.AsBytes()
	assert.Equal(t, "hello", s)
}

func TestRuntime_RunVMMatchesResolve(t *testing.T) {
	rt := newTestRuntime()
	prog, err := rt.Compile("arith", `.total = 1 + 2 * 3`)
	require.NoError(t, err)

	vmResult, err := rt.RunVM(prog, target.NewLocalTarget(value.Null))
	require.NoError(t, err)

	resolveResult, err := rt.Resolve(prog, target.NewLocalTarget(value.Null))
	require.NoError(t, err)

	assert.True(t, value.Equal(vmResult, resolveResult), "vm and tree-walk backends disagree: %s vs %s", vmResult, resolveResult)

	i, ok := vmResult.AsInteger()
	require.True(t, ok)
	assert.Equal(t, int64(7), i)
}

func TestRuntime_IfElse(t *testing.T) {
	rt := newTestRuntime()
	prog, err := rt.Compile("cond", `
if .x > 0 {
  y = "positive"
} else {
  y = "non-positive"
}
y`)
	require.NoError(t, err)

	root := value.Object(map[string]value.Value{"x": value.Integer(5)})
	result, err := rt.RunVM(prog, target.NewLocalTarget(root))
	require.NoError(t, err)
	s, _ := result.AsBytes()
	assert.Equal(t, "positive", s)
}

func TestRuntime_ErrorCoalescingAssignment(t *testing.T) {
	rt := newTestRuntime()
	prog, err := rt.Compile("coalesce", `parsed, err = parse_json(.raw)
[parsed, err]`)
	require.NoError(t, err)

	root := value.Object(map[string]value.Value{"raw": value.Bytes("not json")})
	result, err := rt.RunVM(prog, target.NewLocalTarget(root))
	require.NoError(t, err, "a coalesced failure must not propagate as the program's error")

	items, ok := result.AsArray()
	require.True(t, ok)
	require.Len(t, items, 2)
	assert.True(t, items[0].IsNull(), "failed parse_json should bind Null to the coalesced variable")
	msg, ok := items[1].AsBytes()
	require.True(t, ok, "err should be bound to the rendered error message")
	assert.NotEmpty(t, msg)
}

func TestRuntime_ErrorCoalescingAssignmentWithPathTargets(t *testing.T) {
	rt := newTestRuntime()
	prog, err := rt.Compile("coalesce_path", `.a, .err = 1 + "x"
.a`)
	require.NoError(t, err)

	result, err := rt.RunVM(prog, target.NewLocalTarget(value.Null))
	require.NoError(t, err, "a coalesced failure at a path target must not propagate as the program's error")
	assert.True(t, result.IsNull(), "failed arithmetic should insert Null at the coalesced path")
}

func TestRuntime_ErrorCoalescingAssignmentVMMatchesJIT(t *testing.T) {
	cfg := config.Default()
	cfg.HotPathThreshold = 1
	rt := New(compstate.Standard(), cfg)

	prog, err := rt.Compile("coalesce_jit", `parsed, err = parse_json(.raw)
[parsed, err]`)
	require.NoError(t, err)
	defer prog.Dispose()

	root := func() value.Value { return value.Object(map[string]value.Value{"raw": value.Bytes("not json")}) }

	vmResult, err := rt.RunVM(prog, target.NewLocalTarget(root()))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := rt.RunVM(prog, target.NewLocalTarget(root()))
		require.NoError(t, err)
	}
	require.NotNil(t, prog.jitFn, "program should have been promoted to the jit backend after crossing the hot path threshold")

	jitResult, err := rt.RunVM(prog, target.NewLocalTarget(root()))
	require.NoError(t, err, "a coalesced failure must not propagate as the program's error on the jit backend either")

	assert.True(t, value.Equal(vmResult, jitResult), "vm and jit backends disagree on error-coalescing assignment: %s vs %s", vmResult, jitResult)
}

func TestRuntime_Abort(t *testing.T) {
	rt := newTestRuntime()
	prog, err := rt.Compile("abort", `abort "stop"`)
	require.NoError(t, err)

	_, err = rt.RunVM(prog, target.NewLocalTarget(value.Null))
	require.Error(t, err)
	assert.True(t, value.IsAbort(err))
}

func TestRuntime_CompileErrorIsReported(t *testing.T) {
	rt := newTestRuntime()
	_, err := rt.Compile("bad", `x = ,`)
	assert.Error(t, err)
}

func TestRuntime_PromotesToJITAfterThreshold(t *testing.T) {
	cfg := config.Default()
	cfg.HotPathThreshold = 2
	rt := New(compstate.Standard(), cfg)

	prog, err := rt.Compile("hot", `1 + 1`)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := rt.RunVM(prog, target.NewLocalTarget(value.Null))
		require.NoError(t, err)
	}

	assert.NotNil(t, prog.jitFn, "program should have been promoted to the jit backend after crossing the hot path threshold")
	prog.Dispose()
}

func TestRuntime_JITDisabledNeverPromotes(t *testing.T) {
	cfg := config.Default()
	cfg.EnableJIT = false
	cfg.HotPathThreshold = 1
	rt := New(compstate.Standard(), cfg)

	prog, err := rt.Compile("cold", `1 + 1`)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := rt.RunVM(prog, target.NewLocalTarget(value.Null))
		require.NoError(t, err)
	}

	assert.Nil(t, prog.jitFn)
}

func TestRuntime_ConcurrentRunVM(t *testing.T) {
	rt := newTestRuntime()
	prog, err := rt.Compile("concurrent", `.total = 1 + 2 * 3`)
	require.NoError(t, err)

	const goroutines = 8
	errs := make(chan error, goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			_, err := rt.RunVM(prog, target.NewLocalTarget(value.Null))
			errs <- err
		}()
	}
	for i := 0; i < goroutines; i++ {
		assert.NoError(t, <-errs)
	}
}
