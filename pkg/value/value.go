// Package value implements the runtime Value model shared by every
// execution backend: tree-walking Resolve, the bytecode VM, and the LLVM
// JIT all read and write the same Value representation.
package value

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind tags the variant held by a Value. Kept as its own type (rather than
// a type switch on Go's built-in types) so TypeDef approximations can be
// expressed as a bitset over Kind.
type Kind uint16

const (
	KindNull Kind = 1 << iota
	KindBoolean
	KindInteger
	KindFloat
	KindBytes
	KindTimestamp
	KindArray
	KindObject
)

func (k Kind) String() string {
	var names []string
	for kind, name := range kindNames {
		if k&kind != 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "never"
	}
	sort.Strings(names)
	return strings.Join(names, "|")
}

var kindNames = map[Kind]string{
	KindNull:      "null",
	KindBoolean:   "boolean",
	KindInteger:   "integer",
	KindFloat:     "float",
	KindBytes:     "bytes",
	KindTimestamp: "timestamp",
	KindArray:     "array",
	KindObject:    "object",
}

// Value is the runtime value VRL expressions resolve to. It is a closed
// sum type: exactly one of the typed accessors is meaningful, selected by
// Kind. A struct-with-tag representation (rather than an interface with
// one implementation per variant) is used deliberately: the JIT backend
// needs a single, fixed-layout Go type it can marshal through the runtime
// helper ABI without a type switch at the FFI boundary.
type Value struct {
	kind   Kind
	b      bool
	i      int64
	f      float64
	s      string
	t      time.Time
	arr    []Value
	object map[string]Value
}

// Null is the singleton null value.
var Null = Value{kind: KindNull}

func Boolean(b bool) Value   { return Value{kind: KindBoolean, b: b} }
func Integer(i int64) Value  { return Value{kind: KindInteger, i: i} }
func Float(f float64) Value  { return Value{kind: KindFloat, f: f} }
func Bytes(s string) Value   { return Value{kind: KindBytes, s: s} }
func Timestamp(t time.Time) Value { return Value{kind: KindTimestamp, t: t} }

func Array(items []Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindArray, arr: cp}
}

func Object(fields map[string]Value) Value {
	cp := make(map[string]Value, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return Value{kind: KindObject, object: cp}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBoolean returns the boolean payload and whether v actually holds one.
func (v Value) AsBoolean() (bool, bool) { return v.b, v.kind == KindBoolean }
func (v Value) AsInteger() (int64, bool) { return v.i, v.kind == KindInteger }
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }
func (v Value) AsBytes() (string, bool) { return v.s, v.kind == KindBytes }
func (v Value) AsTimestamp() (time.Time, bool) { return v.t, v.kind == KindTimestamp }
func (v Value) AsArray() ([]Value, bool) { return v.arr, v.kind == KindArray }
func (v Value) AsObject() (map[string]Value, bool) { return v.object, v.kind == KindObject }

// TryBoolean coerces v to a boolean or reports a type-mismatch error. This
// is the helper IfStatement's predicate evaluation relies on.
func (v Value) TryBoolean() (bool, error) {
	if v.kind != KindBoolean {
		return false, fmt.Errorf("expected boolean, got %s", v.kind)
	}
	return v.b, nil
}

// Equal implements VRL's value equality: same payload, with arrays/objects
// compared structurally. Integer and Float compare across kinds by numeric
// value (1 == 1.0), so a numeric/numeric pair is handled before the
// same-kind switch below.
func Equal(a, b Value) bool {
	if a.kind&(KindInteger|KindFloat) != 0 && b.kind&(KindInteger|KindFloat) != 0 {
		return numericValue(a) == numericValue(b)
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBoolean:
		return a.b == b.b
	case KindInteger:
		return a.i == b.i
	case KindFloat:
		return a.f == b.f
	case KindBytes:
		return a.s == b.s
	case KindTimestamp:
		return a.t.Equal(b.t)
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.object) != len(b.object) {
			return false
		}
		for k, av := range a.object {
			bv, ok := b.object[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	}
	return false
}

// numericValue returns v's Integer or Float payload widened to float64, for
// comparing across the two kinds. Callers must already know v holds one.
func numericValue(v Value) float64 {
	if v.kind == KindInteger {
		return float64(v.i)
	}
	return v.f
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBoolean:
		return strconv.FormatBool(v.b)
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBytes:
		return v.s
	case KindTimestamp:
		return v.t.Format(time.RFC3339Nano)
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, item := range v.arr {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindObject:
		keys := make([]string, 0, len(v.object))
		for k := range v.object {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%q: %s", k, v.object[k].String())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return "<invalid>"
}
