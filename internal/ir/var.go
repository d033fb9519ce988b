package ir

// Var is a local variable (or parameter / this-reference) of a Method.
// Identity is by pointer: two *Var values are the same variable iff
// they are the same pointer. This lets CPFact, SetFact and the pointer
// analyses use *Var directly as a map key, the same way
// golang.org/x/tools/go/pointer uses ssa.Value identity as a map key.
type Var struct {
	name   string
	typ    *Type
	method *Method
	index  int // 0-based ordinal within the owning method, for deterministic iteration
}

func (v *Var) Name() string    { return v.name }
func (v *Var) Type() *Type     { return v.typ }
func (v *Var) Method() *Method { return v.method }
func (v *Var) Index() int      { return v.index }

func (v *Var) String() string {
	if v == nil {
		return "<nil-var>"
	}
	return v.name
}
