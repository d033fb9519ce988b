package ir

// BasicBlock is a maximal straight-line run of statements; control
// leaves a block only via its last statement (If, Switch, Return) or by
// falling through to Succs[0].
type BasicBlock struct {
	Index  int
	Stmts  []Stmt
	Preds  []*BasicBlock
	Succs  []*BasicBlock
	// IfTrue/IfFalse classify Succs for a block ending in *If; both nil
	// otherwise. SwitchEdges classifies Succs for a block ending in
	// *Switch (parallel to the Switch statement's Cases, plus the
	// default), letting the dead-code detector distinguish a
	// case edge from an ordinary fall-through edge.
	IfTrue, IfFalse *BasicBlock
	SwitchEdges     map[int32]*BasicBlock
	SwitchDefault   *BasicBlock
}

// Method is a single method's signature, parameters and CFG. Static
// methods have This == nil.
type Method struct {
	ClassName  string
	Name       string
	Subsig     string
	Signature  []*Type // parameter types, in order
	ReturnType *Type
	IsStatic   bool
	IsAbstract bool

	This    *Var
	Params  []*Var
	Locals  []*Var // every Var declared in the method, including Params/This
	Blocks  []*BasicBlock
	Entry   *BasicBlock
	Exit    *BasicBlock // synthetic, successor-less sink; carries no statement, so it is never itself reported dead

	nextVarIndex  int
	nextStmtIndex int
}

func (m *Method) String() string { return m.ClassName + "." + m.Subsig }

// AllStmts returns every statement in the method, in block then
// in-block order — the canonical deterministic enumeration order used
// to seed worklists.
func (m *Method) AllStmts() []Stmt {
	var out []Stmt
	for _, b := range m.Blocks {
		out = append(out, b.Stmts...)
	}
	return out
}

// LoadFieldsOf returns every *LoadField statement in the method whose
// Base is v (used by addReachable when wiring PFG edges for
// x.f loads, and by alias-triggered re-enqueue).
func (m *Method) LoadFieldsOf(v *Var) []*LoadField {
	var out []*LoadField
	for _, b := range m.Blocks {
		for _, s := range b.Stmts {
			if lf, ok := s.(*LoadField); ok && lf.Base == v {
				out = append(out, lf)
			}
		}
	}
	return out
}

// StoreFieldsOf returns every *StoreField statement in the method whose
// Base is v.
func (m *Method) StoreFieldsOf(v *Var) []*StoreField {
	var out []*StoreField
	for _, b := range m.Blocks {
		for _, s := range b.Stmts {
			if sf, ok := s.(*StoreField); ok && sf.Base == v {
				out = append(out, sf)
			}
		}
	}
	return out
}

// LoadArraysOf / StoreArraysOf mirror the field-access helpers above
// for array element accesses on v.
func (m *Method) LoadArraysOf(v *Var) []*LoadArray {
	var out []*LoadArray
	for _, b := range m.Blocks {
		for _, s := range b.Stmts {
			if la, ok := s.(*LoadArray); ok && la.Base == v {
				out = append(out, la)
			}
		}
	}
	return out
}

func (m *Method) StoreArraysOf(v *Var) []*StoreArray {
	var out []*StoreArray
	for _, b := range m.Blocks {
		for _, s := range b.Stmts {
			if sa, ok := s.(*StoreArray); ok && sa.Base == v {
				out = append(out, sa)
			}
		}
	}
	return out
}

// InvokesOn returns every *Invoke in the method whose Receiver is v
// (used by processCall to find the virtual/interface/special
// call sites that must be resolved once v's points-to set grows).
func (m *Method) InvokesOn(v *Var) []*Invoke {
	var out []*Invoke
	for _, b := range m.Blocks {
		for _, s := range b.Stmts {
			if inv, ok := s.(*Invoke); ok && inv.Receiver == v {
				out = append(out, inv)
			}
		}
	}
	return out
}
