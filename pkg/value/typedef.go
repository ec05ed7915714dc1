package value

// TypeDef is the static approximation of the Kind(s) an expression can
// resolve to, plus whether it is known to be fallible. It is intentionally
// coarser than a full type-checker: this package only needs enough
// information to let IfStatement.TypeDef merge branches, not to perform
// inference.
type TypeDef struct {
	Kinds    Kind
	Fallible bool
}

// Exact builds a non-fallible TypeDef pinned to a single Kind set.
func Exact(kinds Kind) TypeDef { return TypeDef{Kinds: kinds} }

// Merge combines two TypeDefs the way IfStatement.TypeDef merges its
// consequent and alternative branches: union the possible kinds, and the
// result is fallible if either branch is.
func (t TypeDef) Merge(other TypeDef) TypeDef {
	return TypeDef{
		Kinds:    t.Kinds | other.Kinds,
		Fallible: t.Fallible || other.Fallible,
	}
}

// AsFallible marks a TypeDef as possibly erroring, without changing the
// kinds it may produce.
func (t TypeDef) AsFallible() TypeDef {
	t.Fallible = true
	return t
}

func (t TypeDef) Is(kind Kind) bool { return t.Kinds&kind != 0 }
