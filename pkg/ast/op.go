package ast

import (
	"github.com/vrlcore/vrlcore/pkg/compstate"
	"github.com/vrlcore/vrlcore/pkg/jit"
	"github.com/vrlcore/vrlcore/pkg/value"
	"github.com/vrlcore/vrlcore/pkg/vm"
)

// opNames labels each BinaryOp's operator call site and its VM opcode.
var opNames = map[vm.Opcode]string{
	vm.OpAdd: "add", vm.OpSub: "sub", vm.OpMul: "mul", vm.OpDiv: "div", vm.OpMod: "mod",
	vm.OpEq: "eq", vm.OpNe: "ne",
	vm.OpLt: "lt", vm.OpLe: "le", vm.OpGt: "gt", vm.OpGe: "ge",
}

// BinaryOp covers arithmetic (+ - * / %), equality (== !=), and ordering
// (< <= > >=) over two expressions. Resolve, CompileToVM, and EmitLLVM
// all dispatch through the same pkg/vm helpers (Arith, Compare,
// value.Equal) so the three backends can never disagree on what an
// operator computes, only on how it reaches that computation.
type BinaryOp struct {
	Op    vm.Opcode
	Left  Node
	Right Node
}

func (b *BinaryOp) Resolve(ctx *Context) (value.Value, error) {
	left, err := b.Left.Resolve(ctx)
	if err != nil {
		return value.Null, err
	}
	right, err := b.Right.Resolve(ctx)
	if err != nil {
		return value.Null, err
	}
	return b.apply(left, right)
}

func (b *BinaryOp) apply(left, right value.Value) (value.Value, error) {
	switch b.Op {
	case vm.OpEq:
		return value.Boolean(value.Equal(left, right)), nil
	case vm.OpNe:
		return value.Boolean(!value.Equal(left, right)), nil
	case vm.OpLt, vm.OpLe, vm.OpGt, vm.OpGe:
		result, err := vm.Compare(b.Op, left, right)
		if err != nil {
			return value.Null, err
		}
		return value.Boolean(result), nil
	default:
		return vm.Arith(b.Op, left, right)
	}
}

func (b *BinaryOp) TypeDef(state *compstate.State) value.TypeDef {
	switch b.Op {
	case vm.OpEq, vm.OpNe, vm.OpLt, vm.OpLe, vm.OpGt, vm.OpGe:
		return value.Exact(value.KindBoolean)
	case vm.OpAdd:
		return value.Exact(value.KindInteger | value.KindFloat | value.KindBytes | value.KindArray | value.KindObject).AsFallible()
	default:
		return value.Exact(value.KindInteger | value.KindFloat | value.KindBytes).AsFallible()
	}
}

func (b *BinaryOp) CompileToVM(chunk *vm.Chunk, state *compstate.State) error {
	if err := b.Left.CompileToVM(chunk, state); err != nil {
		return err
	}
	if err := b.Right.CompileToVM(chunk, state); err != nil {
		return err
	}
	chunk.Emit(b.Op)
	return nil
}

func (b *BinaryOp) EmitLLVM(jctx *jit.Context, state *compstate.State) error {
	name := opNames[b.Op]
	return jctx.EmitBinaryOperatorCall(
		name,
		func() error { return b.Left.EmitLLVM(jctx, state) },
		func() error { return b.Right.EmitLLVM(jctx, state) },
		b.apply,
	)
}
