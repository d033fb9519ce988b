package dataflow

import (
	"github.com/lmysuzi/static-software-analysis/internal/ir"
	"github.com/lmysuzi/static-software-analysis/internal/lattice"
)

// ConstProp is the intra-procedural integer constant-propagation
// analysis: forward, boundary fact maps every int-holding
// parameter to NAC, initial fact is empty, meet is meetValue,
// transfer evaluates the RHS of an int-holding AssignStmt against the
// intra-procedural lattice.Evaluate, propagates a Copy's RHS fact
// directly, and sets an int-holding LoadField/LoadArray/Invoke result
// to NAC (this pass has no heap model or callee summaries of its own).
var ConstProp = Analysis[*lattice.CPFact]{
	Direction: Forward,
	NewBoundaryFact: func(m *ir.Method) *lattice.CPFact {
		f := lattice.NewCPFact()
		for _, p := range m.Params {
			if p.Type().CanHoldInt() {
				f.Set(p, lattice.NACVal)
			}
		}
		return f
	},
	NewInitialFact: func() *lattice.CPFact {
		return lattice.NewCPFact()
	},
	MeetInto: func(src, tgt *lattice.CPFact) bool {
		return lattice.MeetInto(src, tgt)
	},
	Transfer: func(stmt ir.Stmt, in *lattice.CPFact, prevOut *lattice.CPFact) (*lattice.CPFact, bool) {
		out := in.Copy()
		switch s := stmt.(type) {
		case *ir.AssignStmt:
			if s.LValue.Type().CanHoldInt() {
				out.Set(s.LValue, lattice.Evaluate(s.RHS, in, nil))
			}
		case *ir.Copy:
			if s.LValue.Type().CanHoldInt() {
				out.Set(s.LValue, in.Get(s.RHS))
			}
		case *ir.LoadField:
			if s.Field.Type.CanHoldInt() {
				out.Set(s.LValue, lattice.NACVal)
			}
		case *ir.LoadArray:
			if s.LValue.Type().CanHoldInt() {
				out.Set(s.LValue, lattice.NACVal)
			}
		case *ir.Invoke:
			if s.LValue != nil && s.LValue.Type().CanHoldInt() {
				out.Set(s.LValue, lattice.NACVal)
			}
		}
		changed := !out.Equal(prevOut)
		return out, changed
	},
}
