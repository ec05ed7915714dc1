package ast

import (
	"github.com/vrlcore/vrlcore/pkg/compstate"
	"github.com/vrlcore/vrlcore/pkg/jit"
	"github.com/vrlcore/vrlcore/pkg/value"
	"github.com/vrlcore/vrlcore/pkg/vm"
)

// IfStatement is the exemplar node for the four-capability contract:
// every other node in this package follows its shape. alternative is
// nil for a bare `if` with no else branch, in which case the statement
// resolves to Null when the predicate is false.
type IfStatement struct {
	Predicate   *Predicate
	Consequent  *Block
	Alternative *Block
}

func (s *IfStatement) Resolve(ctx *Context) (value.Value, error) {
	predicate, err := s.Predicate.Resolve(ctx)
	if err != nil {
		return value.Null, err
	}
	b, err := predicate.TryBoolean()
	if err != nil {
		return value.Null, err
	}
	if b {
		return s.Consequent.Resolve(ctx)
	}
	if s.Alternative != nil {
		return s.Alternative.Resolve(ctx)
	}
	return value.Null, nil
}

func (s *IfStatement) TypeDef(state *compstate.State) value.TypeDef {
	typeDef := s.Consequent.TypeDef(state)
	if s.Alternative != nil {
		typeDef = typeDef.Merge(s.Alternative.TypeDef(state))
	}
	return typeDef
}

// CompileToVM follows the original compiler's exact emission order:
// predicate -> JumpIfFalse(else) -> Pop -> consequent -> Jump(end) ->
// patch(else) -> Pop -> alternative (or Constant(Null)) -> patch(end).
// JumpIfFalse/JumpIfTrue peek the top of the operand stack rather than
// popping it, which is why both branches below start with their own
// explicit Pop: the predicate's boolean is still on the stack when
// either branch begins.
func (s *IfStatement) CompileToVM(chunk *vm.Chunk, state *compstate.State) error {
	if err := s.Predicate.CompileToVM(chunk, state); err != nil {
		return err
	}

	elseJump := chunk.EmitJump(vm.OpJumpIfFalse)
	chunk.Emit(vm.OpPop)

	if err := s.Consequent.CompileToVM(chunk, state); err != nil {
		return err
	}

	continueJump := chunk.EmitJump(vm.OpJump)

	chunk.PatchJump(elseJump)
	chunk.Emit(vm.OpPop)

	if s.Alternative != nil {
		if err := s.Alternative.CompileToVM(chunk, state); err != nil {
			return err
		}
	} else {
		chunk.EmitConstant(value.Null)
	}

	chunk.PatchJump(continueJump)
	return nil
}

// EmitLLVM mirrors the original LLVM backend block-for-block: predicate
// emitted into ResultRef(), a not-boolean block that falls through to
// end without raising an error (an internal invariant the type checker
// is assumed to have already enforced), and if/else
// blocks that both converge on end_block.
func (s *IfStatement) EmitLLVM(jctx *jit.Context, state *compstate.State) error {
	fn := jctx.Function()
	beginBlock := jit.AppendBasicBlock(fn, "if_begin")
	jctx.Builder().CreateBr(beginBlock)
	jctx.Builder().SetInsertPointAtEnd(beginBlock)

	if err := s.Predicate.EmitLLVM(jctx, state); err != nil {
		return err
	}

	isBool, err := jctx.CallIsBoolean()
	if err != nil {
		return err
	}

	isBooleanBlock := jit.AppendBasicBlock(fn, "if_predicate_is_boolean")
	notBooleanBlock := jit.AppendBasicBlock(fn, "if_predicate_not_boolean")
	jctx.Builder().CreateCondBr(isBool, isBooleanBlock, notBooleanBlock)

	jctx.Builder().SetInsertPointAtEnd(isBooleanBlock)
	isTrue, err := jctx.CallBooleanIsTrue()
	if err != nil {
		return err
	}

	endBlock := jit.AppendBasicBlock(fn, "if_end")
	ifBranch := jit.AppendBasicBlock(fn, "if_branch")
	elseBranch := jit.AppendBasicBlock(fn, "else_branch")
	jctx.Builder().CreateCondBr(isTrue, ifBranch, elseBranch)

	jctx.Builder().SetInsertPointAtEnd(ifBranch)
	if err := s.Consequent.EmitLLVM(jctx, state); err != nil {
		return err
	}
	jctx.Builder().CreateBr(endBlock)

	jctx.Builder().SetInsertPointAtEnd(elseBranch)
	if s.Alternative != nil {
		if err := s.Alternative.EmitLLVM(jctx, state); err != nil {
			return err
		}
	} else if _, err := jctx.CallConstantLookup(state.Constants.AddValue(value.Null)); err != nil {
		return err
	}
	jctx.Builder().CreateBr(endBlock)

	jctx.Builder().SetInsertPointAtEnd(notBooleanBlock)
	jctx.Builder().CreateBr(endBlock)

	jctx.Builder().SetInsertPointAtEnd(endBlock)
	return nil
}
