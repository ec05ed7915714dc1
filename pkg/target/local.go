package target

import "github.com/vrlcore/vrlcore/pkg/value"

// LocalTarget is a Target backed entirely by in-process state: one root
// value.Value tree, mutated in place. It is the Target every scenario test
// in pkg/runtime drives, and is representative of what an embedder's real
// Target (backed by a log event, a metric, whatever) must implement.
type LocalTarget struct {
	root value.Value
}

func NewLocalTarget(root value.Value) *LocalTarget {
	return &LocalTarget{root: root}
}

func (t *LocalTarget) Root() value.Value { return t.root }

func (t *LocalTarget) Get(p Path) (value.Value, bool) {
	cur := t.root
	for _, seg := range p.Segments {
		if seg.IsIndex {
			arr, ok := cur.AsArray()
			if !ok || seg.Index < 0 || seg.Index >= len(arr) {
				return value.Null, false
			}
			cur = arr[seg.Index]
			continue
		}
		obj, ok := cur.AsObject()
		if !ok {
			return value.Null, false
		}
		v, ok := obj[seg.Field]
		if !ok {
			return value.Null, false
		}
		cur = v
	}
	return cur, true
}

func (t *LocalTarget) Insert(p Path, v value.Value) error {
	if len(p.Segments) == 0 {
		t.root = v
		return nil
	}
	newRoot, err := insertInto(t.root, p.Segments, v)
	if err != nil {
		return err
	}
	t.root = newRoot
	return nil
}

func (t *LocalTarget) Remove(p Path) bool {
	if len(p.Segments) == 0 {
		t.root = value.Null
		return true
	}
	newRoot, removed := removeFrom(t.root, p.Segments)
	t.root = newRoot
	return removed
}

// insertInto rebuilds the path from root to leaf, since value.Value is an
// immutable struct (object/array contents are copied on construction).
// Intermediate objects are created as needed; inserting through a missing
// array index is an error rather than silently padding with nulls.
func insertInto(cur value.Value, segs []Segment, v value.Value) (value.Value, error) {
	seg := segs[0]
	rest := segs[1:]

	if seg.IsIndex {
		arr, ok := cur.AsArray()
		if !ok {
			if cur.IsNull() {
				arr = nil
			} else {
				return value.Value{}, &TargetError{Message: "cannot index into non-array"}
			}
		}
		for len(arr) <= seg.Index {
			arr = append(arr, value.Null)
		}
		if len(rest) == 0 {
			arr[seg.Index] = v
		} else {
			child, err := insertInto(arr[seg.Index], rest, v)
			if err != nil {
				return value.Value{}, err
			}
			arr[seg.Index] = child
		}
		return value.Array(arr), nil
	}

	obj, ok := cur.AsObject()
	if !ok {
		if cur.IsNull() {
			obj = map[string]value.Value{}
		} else {
			return value.Value{}, &TargetError{Message: "cannot set field on non-object"}
		}
	}
	if len(rest) == 0 {
		obj[seg.Field] = v
	} else {
		existing := obj[seg.Field]
		child, err := insertInto(existing, rest, v)
		if err != nil {
			return value.Value{}, err
		}
		obj[seg.Field] = child
	}
	return value.Object(obj), nil
}

func removeFrom(cur value.Value, segs []Segment) (value.Value, bool) {
	seg := segs[0]
	rest := segs[1:]

	if seg.IsIndex {
		arr, ok := cur.AsArray()
		if !ok || seg.Index < 0 || seg.Index >= len(arr) {
			return cur, false
		}
		if len(rest) == 0 {
			arr = append(arr[:seg.Index:seg.Index], arr[seg.Index+1:]...)
			return value.Array(arr), true
		}
		child, removed := removeFrom(arr[seg.Index], rest)
		if !removed {
			return cur, false
		}
		arr[seg.Index] = child
		return value.Array(arr), true
	}

	obj, ok := cur.AsObject()
	if !ok {
		return cur, false
	}
	if len(rest) == 0 {
		if _, ok := obj[seg.Field]; !ok {
			return cur, false
		}
		delete(obj, seg.Field)
		return value.Object(obj), true
	}
	existing, ok := obj[seg.Field]
	if !ok {
		return cur, false
	}
	child, removed := removeFrom(existing, rest)
	if !removed {
		return cur, false
	}
	obj[seg.Field] = child
	return value.Object(obj), true
}
