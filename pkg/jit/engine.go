package jit

/*
#include <stdint.h>
typedef struct { int8_t tag; int64_t i; double f; uint8_t* s; int64_t slen; } vrl_resolved_t;
extern void vrlHostDispatchTrampoline(void* ctx, int32_t op, int64_t a, int64_t b, vrl_resolved_t* io);
*/
import "C"

import (
	"sync"
	"unsafe"

	"github.com/vrlcore/vrlcore/pkg/target"
)

// execState is the per-call state vrl_host_dispatch needs: the running
// Program's constant/function tables and the Target/Context being
// executed against. It is looked up through a small registry keyed by
// the opaque i8* %ctx pointer the JIT-compiled vrl_execute is called
// with, since a cgo export can only cross the FFI boundary with plain
// data, never a Go interface value.
type execState struct {
	constants []hostResolved
	paths     []target.Path
	calls     []jitCallSite
	target    target.Target
	strings   *stringArena
	insertErr error
	abortErr  error
}

type jitCallSite struct {
	name   string
	invoke func(args []hostResolved) (hostResolved, error)
}

var (
	execRegistryMu sync.Mutex
	execRegistry   = map[uintptr]*execState{}
	nextHandle     uintptr
)

func registerExecState(s *execState) uintptr {
	execRegistryMu.Lock()
	defer execRegistryMu.Unlock()
	nextHandle++
	h := nextHandle
	execRegistry[h] = s
	return h
}

func unregisterExecState(h uintptr) {
	execRegistryMu.Lock()
	defer execRegistryMu.Unlock()
	delete(execRegistry, h)
}

func lookupExecState(h uintptr) *execState {
	execRegistryMu.Lock()
	defer execRegistryMu.Unlock()
	return execRegistry[h]
}

//export vrlHostDispatchTrampoline
func vrlHostDispatchTrampoline(ctx unsafe.Pointer, op C.int32_t, a, b C.int64_t, io *C.vrl_resolved_t) {
	state := lookupExecState(uintptr(ctx))
	if state == nil {
		return
	}
	switch dispatchOp(op) {
	case dispatchConstantLookup:
		idx := int64(a)
		if int(idx) < len(state.constants) {
			writeHostResolved(io, state.constants[idx])
		}
	case dispatchTargetGet:
		path := state.pathByIndex(int64(a))
		v, ok := state.target.Get(path)
		result := hostResolved{Tag: tagNull}
		if ok {
			result = encodeResolved(v, state.strings)
		}
		writeHostResolved(io, result)
	case dispatchTargetInsert:
		path := state.pathByIndex(int64(a))
		v := decodeResolved(readHostResolved(io), state.strings)
		if err := state.target.Insert(path, v); err != nil {
			state.insertErr = err
		}
	case dispatchCallFunction:
		site := state.calls[a]
		argc := int(b)
		args := make([]hostResolved, argc)
		// Arguments are passed packed contiguously starting at io; real
		// callers stage them into a small stack-allocated array before
		// the call, matching the original ABI's args pointer + argc pair.
		base := (*[1 << 16]C.vrl_resolved_t)(unsafe.Pointer(io))
		for i := 0; i < argc; i++ {
			args[i] = readHostResolved(&base[i])
		}
		result, err := site.invoke(args)
		if err != nil {
			ptr, n := state.strings.intern(err.Error())
			result = hostResolved{Tag: tagErr, S: ptr, SLen: n}
		}
		writeHostResolved(&base[0], result)
	case dispatchAbort:
		msg := ""
		if int(a) < len(state.constants) {
			msg = state.strings.read(state.constants[a].S, state.constants[a].SLen)
		}
		state.abortErr = &abortSignal{message: msg}
	case dispatchRecordInsertError:
		// No-op placeholder: the Insert path above already records
		// state.insertErr; this opcode exists for symmetry with the
		// Rust ABI's explicit logging hook and is reserved for a future
		// structured-log callback.
	}
}

type abortSignal struct{ message string }

func (a *abortSignal) Error() string { return a.message }

func (s *execState) pathByIndex(idx int64) target.Path {
	if int(idx) >= len(s.paths) {
		return target.Root()
	}
	return s.paths[idx]
}

func writeHostResolved(dst *C.vrl_resolved_t, h hostResolved) {
	dst.tag = C.int8_t(h.Tag)
	dst.i = C.int64_t(h.I)
	dst.f = C.double(h.F)
	dst.slen = C.int64_t(h.SLen)
	if h.S != nil {
		dst.s = (*C.uint8_t)(unsafe.Pointer(h.S))
	} else {
		dst.s = nil
	}
}

// hostDispatchTrampolinePtr exposes the cgo-exported C function pointer
// so jitcontext.go can bind it into the execution engine via
// AddGlobalMapping without itself needing a cgo preamble.
func hostDispatchTrampolinePtr() unsafe.Pointer {
	return unsafe.Pointer(C.vrlHostDispatchTrampoline)
}

func readHostResolved(src *C.vrl_resolved_t) hostResolved {
	return hostResolved{
		Tag:  int8(src.tag),
		I:    int64(src.i),
		F:    float64(src.f),
		S:    (*byte)(unsafe.Pointer(src.s)),
		SLen: int64(src.slen),
	}
}
