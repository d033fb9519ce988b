package ir

import "strconv"

// RValue is an operand: anything evaluate() or the pointer
// analysis' generator can read. It is the right-hand side of an
// AssignStmt, or an argument/condition operand elsewhere.
type RValue interface {
	isRValue()
	String() string
}

// VarRef is a use of a local variable.
type VarRef struct{ V *Var }

func (VarRef) isRValue()        {}
func (r VarRef) String() string { return r.V.String() }

// IntLiteral is a compile-time integer constant operand.
type IntLiteral struct{ Value int32 }

func (IntLiteral) isRValue() {}
func (l IntLiteral) String() string {
	return strconv.Itoa(int(l.Value))
}

// BinOp enumerates the integer operators required by
type BinOp uint8

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpEq
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe
	OpShl
	OpShr
	OpUshr // >>> logical (unsigned) right shift
	OpAnd
	OpOr
	OpXor
)

var binOpNames = map[BinOp]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpRem: "%",
	OpEq: "==", OpNe: "!=", OpLt: "<", OpGt: ">", OpLe: "<=", OpGe: ">=",
	OpShl: "<<", OpShr: ">>", OpUshr: ">>>", OpAnd: "&", OpOr: "|", OpXor: "^",
}

func (op BinOp) String() string { return binOpNames[op] }

// IsDivOrRem reports whether op ∈ {/, %}: the two operators for which
// evaluate() special-cases division by a concrete zero.
func (op BinOp) IsDivOrRem() bool { return op == OpDiv || op == OpRem }

// IsComparison reports whether op yields a 0/1 boolean result.
func (op BinOp) IsComparison() bool {
	switch op {
	case OpEq, OpNe, OpLt, OpGt, OpLe, OpGe:
		return true
	}
	return false
}

// BinaryExp is a binary arithmetic/comparison/bitwise operation.
type BinaryExp struct {
	Op   BinOp
	A, B RValue
}

func (BinaryExp) isRValue() {}
func (e BinaryExp) String() string {
	return e.A.String() + " " + e.Op.String() + " " + e.B.String()
}

// FieldAccess reads an instance (Base != nil) or static (Base == nil)
// field. It is only ever used as the RHS of an AssignStmt that models a
// generic load outside the dedicated LoadField statement kind — most
// field reads are represented directly as *LoadField statements; this
// expression form exists so evaluate() has a uniform node to dispatch
// on when called from the inter-procedural constant propagation.
type FieldAccess struct {
	Base  *Var // nil for a static field access
	Field *Field
}

func (FieldAccess) isRValue() {}
func (e FieldAccess) String() string {
	if e.Base == nil {
		return e.Field.DeclClass + "." + e.Field.Name
	}
	return e.Base.String() + "." + e.Field.Name
}

// ArrayAccess reads Base[Index].
type ArrayAccess struct {
	Base  *Var
	Index RValue
}

func (ArrayAccess) isRValue() {}
func (e ArrayAccess) String() string {
	return e.Base.String() + "[" + e.Index.String() + "]"
}

// NewExp allocates a fresh heap object of Type at this syntactic site.
// Each NewExp value is itself the allocation site identity the heap
// model keys on ( "obj(allocationSite)").
type NewExp struct{ Type *Type }

func (NewExp) isRValue()        {}
func (e NewExp) String() string { return "new " + e.Type.String() }

// CastExp is a checked type cast; side-effect-free status is
// false for casts (a ClassCastException may fire), so the dead-code
// detector must never drop a CastExp-valued dead assignment.
type CastExp struct {
	X    RValue
	Type *Type
}

func (CastExp) isRValue()        {}
func (e CastExp) String() string { return "(" + e.Type.String() + ") " + e.X.String() }
