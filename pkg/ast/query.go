package ast

import (
	"github.com/vrlcore/vrlcore/pkg/compstate"
	"github.com/vrlcore/vrlcore/pkg/jit"
	"github.com/vrlcore/vrlcore/pkg/target"
	"github.com/vrlcore/vrlcore/pkg/value"
	"github.com/vrlcore/vrlcore/pkg/vm"
)

// Query reads a path-addressed value out of the external Target (e.g.
// `.message` or `.tags[0]`), as opposed to Variable which reads a local.
// A missing path resolves to Null rather than erroring, matching the
// original language's lenient field-read semantics.
type Query struct {
	Path target.Path
}

func (q *Query) Resolve(ctx *Context) (value.Value, error) {
	v, ok := ctx.Target.Get(q.Path)
	if !ok {
		return value.Null, nil
	}
	return v, nil
}

func (q *Query) TypeDef(state *compstate.State) value.TypeDef {
	return value.TypeDef{Kinds: value.KindNull | value.KindBoolean | value.KindInteger |
		value.KindFloat | value.KindBytes | value.KindTimestamp | value.KindArray | value.KindObject}
}

func (q *Query) CompileToVM(chunk *vm.Chunk, state *compstate.State) error {
	idx := state.Constants.AddPath(q.Path)
	chunk.EmitOperand(vm.OpGetTarget, uint16(idx))
	return nil
}

func (q *Query) EmitLLVM(jctx *jit.Context, state *compstate.State) error {
	idx := state.Constants.AddPath(q.Path)
	_, err := jctx.CallTargetGet(idx)
	return err
}
