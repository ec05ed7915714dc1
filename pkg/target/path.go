// Package target defines the Target interface expressions read from and
// write to, and a Path-addressed in-memory implementation of it backed by
// value.Value.
package target

import (
	"strconv"
	"strings"
)

// Segment is one step of a Path: either a field name (object key) or an
// index (array position). Exactly one of Field/Index is meaningful,
// selected by IsIndex.
type Segment struct {
	Field   string
	Index   int
	IsIndex bool
}

func Field(name string) Segment { return Segment{Field: name} }
func Index(i int) Segment       { return Segment{Index: i, IsIndex: true} }

// Path is an ordered list of Segments, e.g. `.a.b[0]` -> [Field("a"),
// Field("b"), Index(0)].
type Path struct {
	Segments []Segment
}

func NewPath(segments ...Segment) Path { return Path{Segments: segments} }

// Root is the empty path, addressing the whole event.
func Root() Path { return Path{} }

func (p Path) String() string {
	var b strings.Builder
	for _, s := range p.Segments {
		if s.IsIndex {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.Index))
			b.WriteByte(']')
		} else {
			b.WriteByte('.')
			b.WriteString(s.Field)
		}
	}
	if b.Len() == 0 {
		return "."
	}
	return b.String()
}
