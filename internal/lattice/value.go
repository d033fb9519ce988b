// Package lattice defines the shared fact lattices used by the
// intra- and inter-procedural data-flow analyses: a three-valued
// constant-propagation lattice (Value), a partial variable-to-value
// mapping (CPFact), and a generic set fact (SetFact).
package lattice

import "fmt"

// Kind discriminates the three members of the constant-propagation
// lattice: UNDEF ⊑ CONST(c) ⊑ NAC.
type Kind uint8

const (
	Undef Kind = iota
	Const
	NAC
)

// Value is an element of the three-valued lattice UNDEF ⊑ CONST(i32) ⊑ NAC.
// The zero Value is UNDEF.
type Value struct {
	kind  Kind
	const_ int32
}

// UndefVal is the bottom of the lattice.
var UndefVal = Value{kind: Undef}

// NACVal is the top of the lattice ("not a constant").
var NACVal = Value{kind: NAC}

// NewConst returns the lattice element for the concrete constant c.
func NewConst(c int32) Value {
	return Value{kind: Const, const_: c}
}

func (v Value) IsUndef() bool { return v.kind == Undef }
func (v Value) IsConst() bool { return v.kind == Const }
func (v Value) IsNAC() bool   { return v.kind == NAC }

// ConstValue returns the held constant. Precondition: v.IsConst().
func (v Value) ConstValue() int32 {
	if v.kind != Const {
		panic("lattice: ConstValue called on non-CONST Value")
	}
	return v.const_
}

func (v Value) String() string {
	switch v.kind {
	case Undef:
		return "UNDEF"
	case NAC:
		return "NAC"
	case Const:
		return fmt.Sprintf("%d", v.const_)
	}
	return "?"
}

// Equal reports semantic equality: two CONSTs are equal iff they hold
// the same integer.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind == Const {
		return v.const_ == o.const_
	}
	return true
}

// Meet computes the lattice meet (greatest lower bound) of v1 and v2.
//
//   - any NAC ⇒ NAC
//   - both CONST, equal ⇒ same CONST; unequal ⇒ NAC
//   - one CONST, other UNDEF ⇒ the CONST
//   - both UNDEF ⇒ UNDEF
func Meet(v1, v2 Value) Value {
	if v1.kind == NAC || v2.kind == NAC {
		return NACVal
	}
	if v1.kind == Undef {
		return v2
	}
	if v2.kind == Undef {
		return v1
	}
	// both Const
	if v1.const_ == v2.const_ {
		return v1
	}
	return NACVal
}
