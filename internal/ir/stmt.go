package ir

// Stmt is the common interface of every IR statement kind. Analyses
// discriminate statements with a type switch over the concrete structs
// below (New, Copy, LoadField, ...), the same way golang.org/x/tools's
// pointer analysis switches over concrete ssa.Instruction types — a sum
// type expressed as an interface plus exhaustive concrete variants.
type Stmt interface {
	// Index is the statement's position within its method, used for
	// deterministic ordering of worklists and result sets.
	Index() int
	// Def returns the statement's defined lvalue, or nil.
	Def() *Var
	// Uses returns the variables read by the statement (not including
	// Def). Order is significant for live-variable use-set construction.
	Uses() []*Var
	String() string
}

type stmtBase struct {
	index int
}

func (s stmtBase) Index() int { return s.index }

// New is `x = new C`: allocates a heap object of ClassType and binds
// it to Def.
type New struct {
	stmtBase
	LValue    *Var
	ClassType *Type
}

func (s *New) Def() *Var     { return s.LValue }
func (s *New) Uses() []*Var  { return nil }
func (s *New) String() string {
	return s.LValue.String() + " = new " + s.ClassType.String()
}

// Copy is `x = y`.
type Copy struct {
	stmtBase
	LValue *Var
	RHS    *Var
}

func (s *Copy) Def() *Var    { return s.LValue }
func (s *Copy) Uses() []*Var { return []*Var{s.RHS} }
func (s *Copy) String() string {
	return s.LValue.String() + " = " + s.RHS.String()
}

// LoadField is `x = y.f` (Base != nil) or `x = C.f` (Base == nil, static).
type LoadField struct {
	stmtBase
	LValue *Var
	Base   *Var // nil for static
	Field  *Field
}

func (s *LoadField) Def() *Var { return s.LValue }
func (s *LoadField) Uses() []*Var {
	if s.Base == nil {
		return nil
	}
	return []*Var{s.Base}
}
func (s *LoadField) String() string {
	return s.LValue.String() + " = " + (FieldAccess{Base: s.Base, Field: s.Field}).String()
}

// StoreField is `x.f = y` (Base != nil) or `C.f = y` (Base == nil, static).
type StoreField struct {
	stmtBase
	Base  *Var // nil for static
	Field *Field
	RHS   *Var
}

func (s *StoreField) Def() *Var { return nil }
func (s *StoreField) Uses() []*Var {
	if s.Base == nil {
		return []*Var{s.RHS}
	}
	return []*Var{s.Base, s.RHS}
}
func (s *StoreField) String() string {
	return (FieldAccess{Base: s.Base, Field: s.Field}).String() + " = " + s.RHS.String()
}

// LoadArray is `x = a[i]`.
type LoadArray struct {
	stmtBase
	LValue *Var
	Base   *Var
	Index  *Var
}

func (s *LoadArray) Def() *Var    { return s.LValue }
func (s *LoadArray) Uses() []*Var { return []*Var{s.Base, s.Index} }
func (s *LoadArray) String() string {
	return s.LValue.String() + " = " + s.Base.String() + "[" + s.Index.String() + "]"
}

// StoreArray is `a[i] = y`.
type StoreArray struct {
	stmtBase
	Base  *Var
	Index *Var
	RHS   *Var
}

func (s *StoreArray) Def() *Var    { return nil }
func (s *StoreArray) Uses() []*Var { return []*Var{s.Base, s.Index, s.RHS} }
func (s *StoreArray) String() string {
	return s.Base.String() + "[" + s.Index.String() + "] = " + s.RHS.String()
}

// CallKind discriminates dispatch behaviour at an Invoke.
type CallKind uint8

const (
	CallStatic CallKind = iota
	CallSpecial
	CallVirtual
	CallInterface
)

func (k CallKind) String() string {
	return [...]string{"static", "special", "virtual", "interface"}[k]
}

// Invoke is a call statement. Receiver is nil for CallStatic. LValue is
// nil when the call's result is discarded.
type Invoke struct {
	stmtBase
	LValue   *Var
	Kind     CallKind
	Ref      MethodRef
	Receiver *Var
	Args     []*Var
}

func (s *Invoke) Def() *Var { return s.LValue }
func (s *Invoke) Uses() []*Var {
	uses := make([]*Var, 0, len(s.Args)+1)
	if s.Receiver != nil {
		uses = append(uses, s.Receiver)
	}
	uses = append(uses, s.Args...)
	return uses
}
func (s *Invoke) String() string {
	prefix := ""
	if s.LValue != nil {
		prefix = s.LValue.String() + " = "
	}
	recv := ""
	if s.Receiver != nil {
		recv = s.Receiver.String() + "."
	}
	return prefix + recv + s.Ref.Subsig + " [" + s.Kind.String() + "]"
}

// If is a conditional branch; the CFG carries the IfTrue/IfFalse edges.
type If struct {
	stmtBase
	Cond RValue // a BinaryExp with a comparison operator, or a VarRef (boolean)
}

func (s *If) Def() *Var    { return nil }
func (s *If) Uses() []*Var { return varsIn(s.Cond) }
func (s *If) String() string {
	return "if " + s.Cond.String()
}

// SwitchCase is one `case Value:` arm of a Switch, naming the successor
// block it transfers control to.
type SwitchCase struct {
	Value  int32
	Target *BasicBlock
}

// Switch is a multi-way branch on an integer variable. DefaultTarget is
// always non-nil (Java bytecode switches always have a default, even if
// synthesized to fall through).
type Switch struct {
	stmtBase
	Var           *Var
	Cases         []SwitchCase
	DefaultTarget *BasicBlock
}

func (s *Switch) Def() *Var    { return nil }
func (s *Switch) Uses() []*Var { return []*Var{s.Var} }
func (s *Switch) String() string {
	return "switch " + s.Var.String()
}

// Return is a method return; ResultVars is empty for a void return.
type Return struct {
	stmtBase
	ResultVars []*Var
}

func (s *Return) Def() *Var    { return nil }
func (s *Return) Uses() []*Var { return s.ResultVars }
func (s *Return) String() string {
	return "return"
}

// AssignStmt is the generic catch-all "any stmt defining an lvalue"
// mentioned in: it models assignments whose RHS is a general RValue
// expression (BinaryExp, CastExp, FieldAccess, ArrayAccess, NewExp)
// rather than one of the dedicated statement kinds above. It is the
// form the intra-procedural constant-propagation transfer and
// the dead-code detector's dead-assignment pass both match on.
type AssignStmt struct {
	stmtBase
	LValue *Var
	RHS    RValue
}

func (s *AssignStmt) Def() *Var    { return s.LValue }
func (s *AssignStmt) Uses() []*Var { return varsIn(s.RHS) }
func (s *AssignStmt) String() string {
	return s.LValue.String() + " = " + s.RHS.String()
}

// Other is the generic catch-all for statements with no data-flow
// relevance to these analyses (e.g. a no-op, a monitor enter/exit, a
// goto already encoded by CFG structure).
type Other struct {
	stmtBase
	Label string
}

func (s *Other) Def() *Var      { return nil }
func (s *Other) Uses() []*Var   { return nil }
func (s *Other) String() string { return s.Label }

// varsIn collects the *Var operands that appear (transitively) in an
// RValue expression tree, used by statements whose Uses() must reflect
// a compound RHS.
func varsIn(e RValue) []*Var {
	switch e := e.(type) {
	case VarRef:
		return []*Var{e.V}
	case IntLiteral:
		return nil
	case BinaryExp:
		return append(varsIn(e.A), varsIn(e.B)...)
	case FieldAccess:
		if e.Base == nil {
			return nil
		}
		return []*Var{e.Base}
	case ArrayAccess:
		return append([]*Var{e.Base}, varsIn(e.Index)...)
	case NewExp:
		return nil
	case CastExp:
		return varsIn(e.X)
	default:
		return nil
	}
}
