package ast

import (
	"github.com/vrlcore/vrlcore/pkg/compstate"
	"github.com/vrlcore/vrlcore/pkg/jit"
	"github.com/vrlcore/vrlcore/pkg/value"
	"github.com/vrlcore/vrlcore/pkg/vm"
)

// Block is an ordered sequence of Nodes evaluated for side effect, whose
// value is whatever the last Node resolves to (or Null for an empty
// Block). It introduces its own variable scope, entered before its
// first Node and exited once its last Node has been compiled/resolved.
type Block struct {
	Nodes []Node
}

func NewBlock(nodes ...Node) *Block { return &Block{Nodes: nodes} }

func (b *Block) Resolve(ctx *Context) (value.Value, error) {
	child := &Context{Target: ctx.Target, Env: ctx.Env.Child(), Functions: ctx.Functions, InsertErrs: ctx.InsertErrs}
	result := value.Null
	for _, node := range b.Nodes {
		v, err := node.Resolve(child)
		if err != nil {
			return value.Null, err
		}
		result = v
	}
	return result, nil
}

func (b *Block) TypeDef(state *compstate.State) value.TypeDef {
	if len(b.Nodes) == 0 {
		return value.Exact(value.KindNull)
	}
	var result value.TypeDef
	for _, node := range b.Nodes {
		result = node.TypeDef(state)
	}
	return result
}

func (b *Block) CompileToVM(chunk *vm.Chunk, state *compstate.State) error {
	outer := state.Symbols
	state.Symbols = outer.EnterScope()
	defer func() { state.Symbols = outer }()

	if len(b.Nodes) == 0 {
		chunk.EmitConstant(value.Null)
		return nil
	}
	// Every statement but the last leaves exactly one Resolved on the
	// stack, which must be discarded before the next statement runs; the
	// final statement's Resolved is what the Block leaves behind. An
	// erroring non-last statement must instead short-circuit the rest of
	// the Block, the same way Resolve's tree-walk returns on the first
	// failing statement - so its OpJumpIfErr is patched past every
	// remaining statement to land here, leaving that Err as the Block's
	// Resolved instead of a later statement's.
	var shortCircuits []int
	for i, node := range b.Nodes {
		if err := node.CompileToVM(chunk, state); err != nil {
			return err
		}
		if i < len(b.Nodes)-1 {
			shortCircuits = append(shortCircuits, chunk.EmitJump(vm.OpJumpIfErr))
			chunk.Emit(vm.OpPop)
		}
	}
	for _, offset := range shortCircuits {
		chunk.PatchJump(offset)
	}
	return nil
}

// EmitLLVM mirrors CompileToVM's short-circuit: a non-last statement
// that resolves to an Err branches straight to the Block's end rather
// than letting the next statement overwrite ResultRef() with its own
// Resolved, keeping the JIT and VM backends in agreement for a block
// whose first failing statement isn't its last.
func (b *Block) EmitLLVM(jctx *jit.Context, state *compstate.State) error {
	outer := state.Symbols
	state.Symbols = outer.EnterScope()
	defer func() { state.Symbols = outer }()

	if len(b.Nodes) == 0 {
		_, err := jctx.CallConstantLookup(state.Constants.AddValue(value.Null))
		return err
	}

	fn := jctx.Function()
	endBlock := jit.AppendBasicBlock(fn, "block_end")

	for i, node := range b.Nodes {
		if err := node.EmitLLVM(jctx, state); err != nil {
			return err
		}
		if i < len(b.Nodes)-1 {
			isErr, err := jctx.CallIsErr(jctx.ResultRef())
			if err != nil {
				return err
			}
			nextBlock := jit.AppendBasicBlock(fn, "block_next")
			jctx.Builder().CreateCondBr(isErr, endBlock, nextBlock)
			jctx.Builder().SetInsertPointAtEnd(nextBlock)
		}
	}
	jctx.Builder().CreateBr(endBlock)
	jctx.Builder().SetInsertPointAtEnd(endBlock)
	return nil
}
