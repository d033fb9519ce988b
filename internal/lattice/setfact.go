package lattice

// SetFact is a generic set-valued fact over a comparable element type,
// used by the live-variable analysis (elements are *ir.Var) and reused
// for the pointer analyses' points-to sets.
type SetFact[T comparable] struct {
	m map[T]struct{}
}

func NewSetFact[T comparable]() *SetFact[T] {
	return &SetFact[T]{m: make(map[T]struct{})}
}

func (f *SetFact[T]) Add(v T) bool {
	if _, ok := f.m[v]; ok {
		return false
	}
	f.m[v] = struct{}{}
	return true
}

func (f *SetFact[T]) Remove(v T) { delete(f.m, v) }

func (f *SetFact[T]) Contains(v T) bool {
	_, ok := f.m[v]
	return ok
}

func (f *SetFact[T]) Len() int { return len(f.m) }

func (f *SetFact[T]) Elems() []T {
	out := make([]T, 0, len(f.m))
	for v := range f.m {
		out = append(out, v)
	}
	return out
}

// Copy returns an independent copy of f.
func (f *SetFact[T]) Copy() *SetFact[T] {
	g := NewSetFact[T]()
	for k := range f.m {
		g.m[k] = struct{}{}
	}
	return g
}

// UnionInto merges src into tgt (set union, the meet operator for the
// live-variable analysis' may-lattice). Returns true if tgt changed.
func UnionInto[T comparable](src, tgt *SetFact[T]) bool {
	changed := false
	for k := range src.m {
		if _, ok := tgt.m[k]; !ok {
			tgt.m[k] = struct{}{}
			changed = true
		}
	}
	return changed
}

// SetAssign replaces tgt's contents with src's, returning true if tgt
// changed.
func SetAssign[T comparable](src, tgt *SetFact[T]) bool {
	if tgt.Equal(src) {
		return false
	}
	tgt.m = make(map[T]struct{}, len(src.m))
	for k := range src.m {
		tgt.m[k] = struct{}{}
	}
	return true
}

// Equal reports set equality.
func (f *SetFact[T]) Equal(o *SetFact[T]) bool {
	if len(f.m) != len(o.m) {
		return false
	}
	for k := range f.m {
		if _, ok := o.m[k]; !ok {
			return false
		}
	}
	return true
}
