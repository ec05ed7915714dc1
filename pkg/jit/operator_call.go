package jit

import (
	"github.com/vrlcore/vrlcore/pkg/value"
	"tinygo.org/x/go-llvm"
)

// AddOperatorCall registers a call site implemented directly against
// value.Value, for operator nodes (Not, Negate, the binary arithmetic
// and comparison operators) that have no backing compstate.Function.
// They reuse vrl_call_function's N-argument calling convention instead
// of growing the ABI with per-operator dispatch opcodes, and they route
// to the exact same pkg/vm arithmetic helpers the bytecode interpreter
// uses, so the two backends can't drift apart on operator semantics.
func (c *Context) AddOperatorCall(name string, invoke func(args []value.Value) (value.Value, error)) int {
	idx := len(c.calls)
	c.calls = append(c.calls, jitCallSite{
		name: name,
		invoke: func(args []hostResolved) (hostResolved, error) {
			arena := newStringArena()
			valueArgs := make([]value.Value, len(args))
			for i, a := range args {
				valueArgs[i] = decodeResolved(a, arena)
			}
			result, err := invoke(valueArgs)
			if err != nil {
				return hostResolved{Tag: tagErr}, err
			}
			return encodeResolved(result, arena), nil
		},
	})
	return idx
}

// allocaResolvedArray creates an n-element array of Resolved in the
// function's entry block, used to stage vrl_call_function's contiguous
// args buffer next to whichever operand expressions were just emitted.
func (c *Context) allocaResolvedArray(hint string, n int) (llvm.Value, llvm.Type) {
	entry := c.fn.EntryBasicBlock()
	tmp := c.llctx.NewBuilder()
	if first := entry.FirstInstruction(); !first.IsNil() {
		tmp.SetInsertPointBefore(first)
	} else {
		tmp.SetInsertPointAtEnd(entry)
	}
	arrTy := llvm.ArrayType(c.resolvedTy, n)
	return tmp.CreateAlloca(arrTy, hint), arrTy
}

func (c *Context) resolvedSlot(arr llvm.Value, arrTy llvm.Type, i int) llvm.Value {
	zero := c.i32(0)
	idx := c.i32(i)
	return c.builder.CreateGEP(arrTy, arr, []llvm.Value{zero, idx}, "")
}

// EmitUnaryOperatorCall assumes the operand's value has already been
// emitted into ResultRef() (by the caller invoking the operand node's
// EmitLLVM first), stages it as a one-element vrl_call_function args
// buffer, and writes the call's result back into ResultRef().
func (c *Context) EmitUnaryOperatorCall(name string, invoke func(value.Value) (value.Value, error)) error {
	callIdx := c.AddOperatorCall(name, func(args []value.Value) (value.Value, error) {
		return invoke(args[0])
	})

	arr, arrTy := c.allocaResolvedArray(name+".args", 1)
	slot0 := c.resolvedSlot(arr, arrTy, 0)
	if _, err := c.CallCopy(slot0, c.outParam); err != nil {
		return err
	}

	_, err := c.CallHelper("vrl_call_function", []llvm.Value{c.i64(callIdx), slot0, c.i64(1), c.outParam})
	return err
}

// EmitVariadicOperatorCall emits each operand in order, staging every
// result into its own args slot before the next operand overwrites
// ResultRef(), then invokes a single call carrying all of them. Array
// and Object literals use this to build their aggregate value entirely
// on the Go side, since precompiled.ll has no native aggregate
// construction IR.
func (c *Context) EmitVariadicOperatorCall(name string, operands []func() error, invoke func(args []value.Value) (value.Value, error)) error {
	callIdx := c.AddOperatorCall(name, invoke)
	return c.EmitStagedCall(callIdx, operands)
}

// EmitStagedCall emits each operand in order, staging every result into
// its own args slot, then calls the already-registered call site
// callIdx (from AddCall or AddOperatorCall) with all of them, writing
// the result back into ResultRef(). FunctionCall uses this directly
// with an index from AddCall, since its call site is resolved once at
// compile time rather than built fresh per emission.
func (c *Context) EmitStagedCall(callIdx int, operands []func() error) error {
	n := len(operands)
	if n == 0 {
		_, err := c.CallHelper("vrl_call_function", []llvm.Value{c.i64(callIdx), c.outParam, c.i64(0), c.outParam})
		return err
	}

	arr, arrTy := c.allocaResolvedArray("call.args", n)
	for i, emit := range operands {
		if err := emit(); err != nil {
			return err
		}
		slot := c.resolvedSlot(arr, arrTy, i)
		if _, err := c.CallCopy(slot, c.outParam); err != nil {
			return err
		}
	}

	slot0 := c.resolvedSlot(arr, arrTy, 0)
	_, err := c.CallHelper("vrl_call_function", []llvm.Value{c.i64(callIdx), slot0, c.i64(n), c.outParam})
	return err
}

// EmitBinaryOperatorCall emits left then right (each writes ResultRef()
// in turn, so each result is copied into its own args slot before the
// next operand overwrites ResultRef()), stages both as a two-element
// vrl_call_function args buffer, and writes the result back into
// ResultRef().
func (c *Context) EmitBinaryOperatorCall(name string, left, right func() error, invoke func(a, b value.Value) (value.Value, error)) error {
	callIdx := c.AddOperatorCall(name, func(args []value.Value) (value.Value, error) {
		return invoke(args[0], args[1])
	})

	arr, arrTy := c.allocaResolvedArray(name+".args", 2)
	slot0 := c.resolvedSlot(arr, arrTy, 0)
	slot1 := c.resolvedSlot(arr, arrTy, 1)

	if err := left(); err != nil {
		return err
	}
	if _, err := c.CallCopy(slot0, c.outParam); err != nil {
		return err
	}

	if err := right(); err != nil {
		return err
	}
	if _, err := c.CallCopy(slot1, c.outParam); err != nil {
		return err
	}

	_, err := c.CallHelper("vrl_call_function", []llvm.Value{c.i64(callIdx), slot0, c.i64(2), c.outParam})
	return err
}
