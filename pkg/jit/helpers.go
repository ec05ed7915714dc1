package jit

import "tinygo.org/x/go-llvm"

// The methods in this file are thin, typed wrappers around CallHelper
// for each runtime helper declared in precompiled.ll. ast.Node
// implementations call these instead of building raw llvm.Value
// argument lists themselves, keeping the IR-construction detail (how an
// i64 constant index is built, which pointer ResultRef resolves to) out
// of every node.

func (c *Context) i64(v int) llvm.Value {
	return llvm.ConstInt(c.llctx.Int64Type(), uint64(v), false)
}

func (c *Context) i32(v int) llvm.Value {
	return llvm.ConstInt(c.llctx.Int32Type(), uint64(v), false)
}

// CallConstantLookup writes constants[idx] into ResultRef().
func (c *Context) CallConstantLookup(idx int) (llvm.Value, error) {
	return c.CallHelper("vrl_constant_lookup", []llvm.Value{c.i64(idx), c.outParam})
}

// CallTargetGet writes the Target value at the given compile-time path
// index into ResultRef().
func (c *Context) CallTargetGet(pathIdx int) (llvm.Value, error) {
	return c.CallHelper("vrl_target_get", []llvm.Value{c.ctxParam, c.i64(pathIdx), c.outParam})
}

// CallTargetInsert writes the value currently in ResultRef() to the
// Target at the given path index.
func (c *Context) CallTargetInsert(pathIdx int) (llvm.Value, error) {
	return c.CallHelper("vrl_target_insert", []llvm.Value{c.ctxParam, c.i64(pathIdx), c.outParam})
}

// CallAbort records an Abort, carrying the constant-pool message index,
// on the execState so GetJITFunction's closure returns it after
// RunFunction returns. ResultRef() is not written.
func (c *Context) CallAbort(messageIdx int) (llvm.Value, error) {
	return c.CallHelper("vrl_abort", []llvm.Value{c.ctxParam, c.i64(messageIdx), c.outParam})
}

// CallIsBoolean reports (as an i1) whether ResultRef() currently holds a
// boolean.
func (c *Context) CallIsBoolean() (llvm.Value, error) {
	return c.CallHelper("vrl_resolved_is_boolean", []llvm.Value{c.outParam})
}

// CallBooleanIsTrue reports (as an i1) whether ResultRef(), assumed
// boolean, is true.
func (c *Context) CallBooleanIsTrue() (llvm.Value, error) {
	return c.CallHelper("vrl_resolved_boolean_is_true", []llvm.Value{c.outParam})
}

// CallCopy copies the Resolved slot src into the Resolved slot dst.
func (c *Context) CallCopy(dst, src llvm.Value) (llvm.Value, error) {
	return c.CallHelper("vrl_resolved_copy", []llvm.Value{dst, src})
}

// CallIsErr reports (as an i1) whether the Resolved slot holds an Err.
// Block uses it to short-circuit a statement sequence the same way the
// VM backend's OpJumpIfErr does, and Assignment uses it to skip a store
// for a failed, non-coalescing right-hand side.
func (c *Context) CallIsErr(slot llvm.Value) (llvm.Value, error) {
	return c.CallHelper("vrl_resolved_is_err", []llvm.Value{slot})
}

// CallErrIntoOk renders src's Err to its message string and writes it
// into dst as an Ok Bytes Resolved, or writes Null for an Ok src - the
// err_into_ok runtime helper error-coalescing assignment uses to derive
// its err binding's value from a copy of its right-hand side's Resolved.
func (c *Context) CallErrIntoOk(dst, src llvm.Value) (llvm.Value, error) {
	return c.CallHelper("vrl_resolved_err_into_ok", []llvm.Value{dst, src})
}

// CallUnwrapOk writes Null into dst for an Err src, or copies src's Ok
// value through unchanged - what error-coalescing assignment uses to
// derive its primary binding's value, guaranteeing that value is always
// Ok regardless of whether the right-hand side failed.
func (c *Context) CallUnwrapOk(dst, src llvm.Value) (llvm.Value, error) {
	return c.CallHelper("vrl_resolved_unwrap_ok", []llvm.Value{dst, src})
}
