package vm

import (
	"encoding/binary"
	"fmt"

	"github.com/vrlcore/vrlcore/pkg/target"
	"github.com/vrlcore/vrlcore/pkg/value"
)

// maxStackSize bounds the operand stack the way the teacher VM bounds
// its own stack; pushing past it aborts execution rather than growing
// unbounded, since a correctly compiled Chunk never needs more than a
// few dozen slots at once.
const maxStackSize = 10000

// defaultMaxSteps is the step-limit guard applied when a VM is run
// without an explicit budget (see pkg/config.RuntimeConfig.MaxSteps).
const defaultMaxSteps = 1_000_000

// VM interprets a compiled Chunk. One VM is reused across many runs of
// the same Program (see pkg/runtime.Runtime.Clear), which is why its
// stack and locals are plain slices reset in place rather than
// reallocated per run.
//
// The operand stack holds value.Resolved, not value.Value: most
// error-producing opcodes push an Err Resolved and carry on rather than
// halting, so a node's compiled bytecode can route around a failure with
// OpJumpIfErr instead of the interpreter unwinding through a Go error
// return. A Go error return from Run still happens for failures no VRL
// program can recover from - an exceeded step limit, a stack overflow,
// or an Abort, which by design is never caught by error-coalescing
// assignment - and for whatever Resolved is left on the stack when
// execution reaches the end of the Chunk, converted at that one point.
type VM struct {
	stack      []value.Resolved
	locals     []value.Value
	maxSteps   int
	InsertErrs []error
}

func New() *VM {
	return &VM{stack: make([]value.Resolved, 0, 64)}
}

// SetMaxSteps overrides the step-limit guard; 0 restores the default.
func (vm *VM) SetMaxSteps(n int) { vm.maxSteps = n }

// Reset clears the operand stack, local slots, and discarded
// Target.Insert errors between runs of the same compiled Chunk, without
// discarding the VM's backing arrays.
func (vm *VM) Reset(localCount int) {
	vm.stack = vm.stack[:0]
	vm.InsertErrs = nil
	if cap(vm.locals) < localCount {
		vm.locals = make([]value.Value, localCount)
	} else {
		vm.locals = vm.locals[:localCount]
		for i := range vm.locals {
			vm.locals[i] = value.Null
		}
	}
}

func (vm *VM) push(r value.Resolved) error {
	if len(vm.stack) >= maxStackSize {
		return fmt.Errorf("vm: stack overflow")
	}
	vm.stack = append(vm.stack, r)
	return nil
}

func (vm *VM) pushOk(v value.Value) error { return vm.push(value.OkResolved(v)) }

func (vm *VM) pop() value.Resolved {
	n := len(vm.stack)
	r := vm.stack[n-1]
	vm.stack = vm.stack[:n-1]
	return r
}

func (vm *VM) peek() value.Resolved {
	return vm.stack[len(vm.stack)-1]
}

// Run interprets chunk against tgt and returns the single value.Value
// left on the stack when execution reaches the end of the code, or an
// EvalError if that final Resolved was an Err. An Abort EvalError is
// distinguished from every other error by value.IsAbort and is the only
// one a caller cannot recover via an error-coalescing assignment. Failed
// Target.Insert calls triggered by OpSetTarget are not surfaced here -
// they accumulate in vm.InsertErrs for the caller to log, per the
// execution core's discarded-insert-error design.
func (vm *VM) Run(chunk *Chunk, tgt target.Target) (value.Value, error) {
	steps := 0
	limit := vm.maxSteps
	if limit == 0 {
		limit = defaultMaxSteps
	}

	ip := 0
	code := chunk.Code
	for ip < len(code) {
		steps++
		if steps > limit {
			return value.Null, value.NewTypeMismatch("vm: exceeded step limit (%d)", limit)
		}

		op := Opcode(code[ip])
		ip++

		switch op {
		case OpConstant:
			idx := readOperand(code, ip)
			ip += 2
			if err := vm.pushOk(chunk.Constants.Value(int(idx))); err != nil {
				return value.Null, err
			}

		case OpPop:
			vm.pop()

		case OpDup:
			if err := vm.push(vm.peek()); err != nil {
				return value.Null, err
			}

		case OpGetLocal:
			idx := readOperand(code, ip)
			ip += 2
			if err := vm.pushOk(vm.locals[idx]); err != nil {
				return value.Null, err
			}

		case OpSetLocal:
			idx := readOperand(code, ip)
			ip += 2
			vm.locals[idx] = vm.peek().Value()

		case OpGetTarget:
			idx := readOperand(code, ip)
			ip += 2
			path := chunk.Constants.Path(int(idx))
			v, ok := tgt.Get(path)
			if !ok {
				v = value.Null
			}
			if err := vm.pushOk(v); err != nil {
				return value.Null, err
			}

		case OpSetTarget:
			idx := readOperand(code, ip)
			ip += 2
			path := chunk.Constants.Path(int(idx))
			if err := tgt.Insert(path, vm.peek().Value()); err != nil {
				vm.InsertErrs = append(vm.InsertErrs, err)
			}

		case OpJump:
			ip = int(readOperand(code, ip))

		case OpJumpIfFalse:
			top := vm.peek()
			if top.IsErr() {
				return value.Null, top.Err()
			}
			b, _ := top.Value().TryBoolean()
			if !b {
				ip = int(readOperand(code, ip))
			} else {
				ip += 2
			}

		case OpJumpIfTrue:
			top := vm.peek()
			if top.IsErr() {
				return value.Null, top.Err()
			}
			b, _ := top.Value().TryBoolean()
			if b {
				ip = int(readOperand(code, ip))
			} else {
				ip += 2
			}

		case OpJumpIfErr:
			if vm.peek().IsErr() {
				ip = int(readOperand(code, ip))
			} else {
				ip += 2
			}

		case OpErrIntoOk:
			r := vm.pop()
			if err := vm.push(r.ErrIntoOk()); err != nil {
				return value.Null, err
			}

		case OpUnwrapOk:
			r := vm.pop()
			if err := vm.pushOk(r.Value()); err != nil {
				return value.Null, err
			}

		case OpAdd, OpSub, OpMul, OpDiv, OpMod:
			b := vm.pop()
			a := vm.pop()
			if propagated, err := vm.propagate(a, b); propagated {
				if err != nil {
					return value.Null, err
				}
				continue
			}
			result, err := Arith(op, a.Value(), b.Value())
			if err != nil {
				if err := vm.push(value.ErrResolved(err.(*value.EvalError))); err != nil {
					return value.Null, err
				}
				continue
			}
			if err := vm.pushOk(result); err != nil {
				return value.Null, err
			}

		case OpEq, OpNe:
			b := vm.pop()
			a := vm.pop()
			if propagated, err := vm.propagate(a, b); propagated {
				if err != nil {
					return value.Null, err
				}
				continue
			}
			eq := value.Equal(a.Value(), b.Value())
			if op == OpNe {
				eq = !eq
			}
			if err := vm.pushOk(value.Boolean(eq)); err != nil {
				return value.Null, err
			}

		case OpLt, OpLe, OpGt, OpGe:
			b := vm.pop()
			a := vm.pop()
			if propagated, err := vm.propagate(a, b); propagated {
				if err != nil {
					return value.Null, err
				}
				continue
			}
			result, err := Compare(op, a.Value(), b.Value())
			if err != nil {
				if err := vm.push(value.ErrResolved(err.(*value.EvalError))); err != nil {
					return value.Null, err
				}
				continue
			}
			if err := vm.pushOk(value.Boolean(result)); err != nil {
				return value.Null, err
			}

		case OpNot:
			v := vm.pop()
			if v.IsErr() {
				if err := vm.push(v); err != nil {
					return value.Null, err
				}
				continue
			}
			b, ok := v.Value().AsBoolean()
			if !ok {
				evalErr := value.NewTypeMismatch("cannot negate non-boolean %s", v.Value().Kind())
				if err := vm.push(value.ErrResolved(evalErr)); err != nil {
					return value.Null, err
				}
				continue
			}
			if err := vm.pushOk(value.Boolean(!b)); err != nil {
				return value.Null, err
			}

		case OpNegate:
			v := vm.pop()
			if v.IsErr() {
				if err := vm.push(v); err != nil {
					return value.Null, err
				}
				continue
			}
			negated, err := Negate(v.Value())
			if err != nil {
				if err := vm.push(value.ErrResolved(err.(*value.EvalError))); err != nil {
					return value.Null, err
				}
				continue
			}
			if err := vm.pushOk(negated); err != nil {
				return value.Null, err
			}

		case OpMakeArray:
			count := int(readOperand(code, ip))
			ip += 2
			items := make([]value.Resolved, count)
			for i := count - 1; i >= 0; i-- {
				items[i] = vm.pop()
			}
			if errResolved, ok := firstErr(items); ok {
				if err := vm.push(errResolved); err != nil {
					return value.Null, err
				}
				continue
			}
			values := make([]value.Value, count)
			for i, r := range items {
				values[i] = r.Value()
			}
			if err := vm.pushOk(value.Array(values)); err != nil {
				return value.Null, err
			}

		case OpMakeObject:
			idx := int(readOperand(code, ip))
			ip += 2
			keys, _ := chunk.Constants.Value(idx).AsArray()
			items := make([]value.Resolved, len(keys))
			for i := len(keys) - 1; i >= 0; i-- {
				items[i] = vm.pop()
			}
			if errResolved, ok := firstErr(items); ok {
				if err := vm.push(errResolved); err != nil {
					return value.Null, err
				}
				continue
			}
			fields := make(map[string]value.Value, len(keys))
			for i, k := range keys {
				name, _ := k.AsBytes()
				fields[name] = items[i].Value()
			}
			if err := vm.pushOk(value.Object(fields)); err != nil {
				return value.Null, err
			}

		case OpCall:
			idx := int(readOperand(code, ip))
			ip += 2
			site := chunk.Calls[idx]
			items := make([]value.Resolved, site.Arity)
			for i := site.Arity - 1; i >= 0; i-- {
				items[i] = vm.pop()
			}
			if errResolved, ok := firstErr(items); ok {
				if err := vm.push(errResolved); err != nil {
					return value.Null, err
				}
				continue
			}
			args := make([]value.Value, site.Arity)
			for i, r := range items {
				args[i] = r.Value()
			}
			result, err := site.Function.Invoke(args)
			if err != nil {
				evalErr := value.NewUserFunctionError(site.Function.Name, err)
				if err := vm.push(value.ErrResolved(evalErr)); err != nil {
					return value.Null, err
				}
				continue
			}
			if err := vm.pushOk(result); err != nil {
				return value.Null, err
			}

		case OpAbort:
			idx := readOperand(code, ip)
			ip += 2
			msg, _ := chunk.Constants.Value(int(idx)).AsBytes()
			return value.Null, value.NewAbort(msg)

		case OpReturn:
			if len(vm.stack) == 0 {
				return value.Null, nil
			}
			return finalResult(vm.pop())

		default:
			return value.Null, fmt.Errorf("vm: unknown opcode 0x%02x", byte(op))
		}
	}

	if len(vm.stack) == 0 {
		return value.Null, nil
	}
	return finalResult(vm.pop())
}

// propagate reports whether either operand is an Err, in which case the
// first one is pushed back without evaluating the operator, matching
// tree-walking Resolve's short-circuit on the first failing operand.
func (vm *VM) propagate(a, b value.Resolved) (propagated bool, err error) {
	if a.IsErr() {
		return true, vm.push(a)
	}
	if b.IsErr() {
		return true, vm.push(b)
	}
	return false, nil
}

// firstErr reports the first Err Resolved among items, if any.
func firstErr(items []value.Resolved) (value.Resolved, bool) {
	for _, r := range items {
		if r.IsErr() {
			return r, true
		}
	}
	return value.Resolved{}, false
}

// finalResult converts the Resolved left on the stack at the end of a
// Run into this package's external (value.Value, error) contract.
func finalResult(r value.Resolved) (value.Value, error) {
	if r.IsErr() {
		return value.Null, r.Err()
	}
	return r.Value(), nil
}

func readOperand(code []byte, ip int) uint16 {
	return binary.LittleEndian.Uint16(code[ip : ip+2])
}
