package ast

import (
	"github.com/vrlcore/vrlcore/pkg/compstate"
	"github.com/vrlcore/vrlcore/pkg/jit"
	"github.com/vrlcore/vrlcore/pkg/value"
	"github.com/vrlcore/vrlcore/pkg/vm"
)

// Predicate wraps the boolean-producing expression of an IfStatement. It
// is its own node type (rather than IfStatement holding a bare Node)
// because in a fuller implementation it would validate that its
// TypeDef is exactly boolean; here it simply delegates to the wrapped
// Block, matching the original's thin Predicate(Vec<Expr>) wrapper.
type Predicate struct {
	Body *Block
}

func NewPredicate(nodes ...Node) *Predicate {
	return &Predicate{Body: NewBlock(nodes...)}
}

func (p *Predicate) Resolve(ctx *Context) (value.Value, error) {
	return p.Body.Resolve(ctx)
}

func (p *Predicate) TypeDef(state *compstate.State) value.TypeDef {
	return p.Body.TypeDef(state)
}

func (p *Predicate) CompileToVM(chunk *vm.Chunk, state *compstate.State) error {
	return p.Body.CompileToVM(chunk, state)
}

func (p *Predicate) EmitLLVM(jctx *jit.Context, state *compstate.State) error {
	return p.Body.EmitLLVM(jctx, state)
}
