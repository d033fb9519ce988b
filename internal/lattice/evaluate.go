package lattice

import "github.com/lmysuzi/static-software-analysis/internal/ir"

// HeapReader resolves field/array accesses for the inter-procedural
// constant propagation; the intra-procedural analysis
// passes a nil HeapReader, in which case Evaluate returns NAC for any
// FieldAccess/ArrayAccess node, matching "Field/array access in the
// intra-procedural constant propagation: returns NAC".
type HeapReader interface {
	FieldValue(base *ir.Var, f *ir.Field) Value
	ArrayValue(base *ir.Var, index Value) Value
}

// Evaluate computes the Value of expression e under fact in
// heap may be nil (intra-procedural use).
func Evaluate(e ir.RValue, in *CPFact, heap HeapReader) Value {
	switch e := e.(type) {
	case ir.VarRef:
		return in.Get(e.V)

	case ir.IntLiteral:
		return NewConst(e.Value)

	case ir.BinaryExp:
		return evalBinary(e, in, heap)

	case ir.FieldAccess:
		if heap == nil {
			return NACVal
		}
		return heap.FieldValue(e.Base, e.Field)

	case ir.ArrayAccess:
		if heap == nil {
			return NACVal
		}
		return heap.ArrayValue(e.Base, Evaluate(e.Index, in, heap))

	default:
		// NewExp, CastExp and any other reference-typed expression is
		// not a candidate for the int-holding lattice; treat as UNDEF
		// (the caller only invokes Evaluate on int-holding lvalues).
		return UndefVal
	}
}

func evalBinary(e ir.BinaryExp, in *CPFact, heap HeapReader) Value {
	a := Evaluate(e.A, in, heap)
	b := Evaluate(e.B, in, heap)

	// Division/remainder by a concrete zero is UNDEF even when the
	// other operand is NAC: a divide-by-zero site is unreachable under
	// any sound execution, so it contributes no fact rather than NAC.
	if e.Op.IsDivOrRem() && b.IsConst() && b.ConstValue() == 0 {
		return UndefVal
	}

	if a.IsNAC() || b.IsNAC() {
		return NACVal
	}

	if a.IsConst() && b.IsConst() {
		v, ok := compute(e.Op, a.ConstValue(), b.ConstValue())
		if !ok {
			return UndefVal
		}
		return NewConst(v)
	}

	// One or both UNDEF (and neither NAC, and not the division-by-zero
	// case above): result is UNDEF.
	return UndefVal
}

// compute applies op to two known int32 constants using 32-bit two's
// complement semantics; comparisons yield 1 or 0. ok is false only for
// the /,% -by-zero case, which the caller special-cases before reaching
// here, so compute always succeeds when called from evalBinary.
func compute(op ir.BinOp, a, b int32) (int32, bool) {
	switch op {
	case ir.OpAdd:
		return a + b, true
	case ir.OpSub:
		return a - b, true
	case ir.OpMul:
		return a * b, true
	case ir.OpDiv:
		if b == 0 {
			return 0, false
		}
		return a / b, true
	case ir.OpRem:
		if b == 0 {
			return 0, false
		}
		return a % b, true
	case ir.OpEq:
		return boolInt(a == b), true
	case ir.OpNe:
		return boolInt(a != b), true
	case ir.OpLt:
		return boolInt(a < b), true
	case ir.OpGt:
		return boolInt(a > b), true
	case ir.OpLe:
		return boolInt(a <= b), true
	case ir.OpGe:
		return boolInt(a >= b), true
	case ir.OpShl:
		return a << (uint32(b) & 31), true
	case ir.OpShr:
		return a >> (uint32(b) & 31), true
	case ir.OpUshr:
		// >>> is logical (unsigned) right shift on 32 bits.
		return int32(uint32(a) >> (uint32(b) & 31)), true
	case ir.OpAnd:
		return a & b, true
	case ir.OpOr:
		return a | b, true
	case ir.OpXor:
		return a ^ b, true
	default:
		return 0, false
	}
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
