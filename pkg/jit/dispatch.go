package jit

import "github.com/vrlcore/vrlcore/pkg/value"

// dispatchOp mirrors the dispatch_op operand vrl_host_dispatch in
// precompiled.ll is called with. Keeping this as a small closed enum
// multiplexed through one callback (rather than one cgo export per
// helper) keeps the FFI surface this package has to maintain small.
type dispatchOp int32

const (
	dispatchConstantLookup dispatchOp = iota
	dispatchTargetGet
	dispatchTargetInsert
	dispatchCallFunction
	dispatchAbort
	dispatchRecordInsertError
)

// hostResolved is the Go-side mirror of precompiled.ll's %Resolved
// struct layout: { i8 tag, i64 i, double f, i8* s, i64 slen }. encode and
// decode translate between it and value.Value at the FFI boundary; no
// Go pointer to a value.Value ever crosses into JIT-compiled code,
// satisfying the "no raw host-layout globals" rule for the constant
// path as well as the live-call path.
type hostResolved struct {
	Tag  int8
	I    int64
	F    float64
	S    *byte
	SLen int64
}

const (
	tagNull int8 = iota
	tagBoolean
	tagInteger
	tagFloat
	tagBytes
	tagArray
	tagObject
	tagErr = 99
)

func encodeResolved(v value.Value, strings *stringArena) hostResolved {
	switch v.Kind() {
	case value.KindNull:
		return hostResolved{Tag: tagNull}
	case value.KindBoolean:
		b, _ := v.AsBoolean()
		i := int64(0)
		if b {
			i = 1
		}
		return hostResolved{Tag: tagBoolean, I: i}
	case value.KindInteger:
		i, _ := v.AsInteger()
		return hostResolved{Tag: tagInteger, I: i}
	case value.KindFloat:
		f, _ := v.AsFloat()
		return hostResolved{Tag: tagFloat, F: f}
	case value.KindBytes:
		s, _ := v.AsBytes()
		ptr, n := strings.intern(s)
		return hostResolved{Tag: tagBytes, S: ptr, SLen: n}
	default:
		// Arrays/objects are not passed through the JIT ABI directly in
		// this implementation; they encode as Null.
		return hostResolved{Tag: tagNull}
	}
}

func decodeResolved(h hostResolved, strings *stringArena) value.Value {
	switch h.Tag {
	case tagNull:
		return value.Null
	case tagBoolean:
		return value.Boolean(h.I != 0)
	case tagInteger:
		return value.Integer(h.I)
	case tagFloat:
		return value.Float(h.F)
	case tagBytes:
		return value.Bytes(strings.read(h.S, h.SLen))
	default:
		return value.Null
	}
}
