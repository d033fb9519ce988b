package lattice

import "github.com/lmysuzi/static-software-analysis/internal/ir"

// CPFact is a partial mapping from Var to Value; a missing key means
// UNDEF. Equality is semantic: two CPFacts are equal iff they
// agree on every non-UNDEF binding.
type CPFact struct {
	m map[*ir.Var]Value
}

// NewCPFact returns an empty fact (every var implicitly UNDEF).
func NewCPFact() *CPFact {
	return &CPFact{m: make(map[*ir.Var]Value)}
}

// Get returns the bound Value, or UNDEF if v has no binding.
func (f *CPFact) Get(v *ir.Var) Value {
	if val, ok := f.m[v]; ok {
		return val
	}
	return UndefVal
}

// Set binds v to val. Setting UNDEF removes the binding (keeping the
// map's key set exactly the "non-UNDEF bindings" equality refers to).
func (f *CPFact) Set(v *ir.Var, val Value) {
	if val.IsUndef() {
		delete(f.m, v)
		return
	}
	f.m[v] = val
}

// Remove deletes any binding for v, used by the CallToReturn edge
// transfer to drop the call site's own lvalue from the fact the
// callee must not see.
func (f *CPFact) Remove(v *ir.Var) { delete(f.m, v) }

// Keys returns the bound variables in no particular order; callers that
// need determinism should sort by *ir.Var.Index().
func (f *CPFact) Keys() []*ir.Var {
	out := make([]*ir.Var, 0, len(f.m))
	for v := range f.m {
		out = append(out, v)
	}
	return out
}

// Copy returns an independent copy of f.
func (f *CPFact) Copy() *CPFact {
	g := NewCPFact()
	for k, v := range f.m {
		g.m[k] = v
	}
	return g
}

// Equal reports whether f and o hold exactly the same non-UNDEF bindings.
func (f *CPFact) Equal(o *CPFact) bool {
	if len(f.m) != len(o.m) {
		return false
	}
	for k, v := range f.m {
		ov, ok := o.m[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// MeetInto merges src into tgt in place: for each key k in src,
// tgt[k] := Meet(src[k], tgt.get(k) or UNDEF). Returns true if
// tgt changed. The data-flow solvers ignore this result and re-enqueue
// successors from the transfer function's changed flag instead.
func MeetInto(src, tgt *CPFact) bool {
	changed := false
	for k, sv := range src.m {
		tv := tgt.Get(k)
		nv := Meet(sv, tv)
		if !nv.Equal(tv) {
			tgt.Set(k, nv)
			changed = true
		}
	}
	return changed
}
