package dataflow

import (
	"github.com/lmysuzi/static-software-analysis/internal/ir"
	"github.com/lmysuzi/static-software-analysis/internal/lattice"
)

// LiveVars is the May-live-variable analysis: backward,
// boundary/initial fact both the empty set, meet is set union.
//
//	transfer(stmt, out) -> in: in := out; if stmt defines v, in := in\{v};
//	then for each used v, in := in ∪ {v}.
var LiveVars = Analysis[*lattice.SetFact[*ir.Var]]{
	Direction: Backward,
	NewBoundaryFact: func(m *ir.Method) *lattice.SetFact[*ir.Var] {
		return lattice.NewSetFact[*ir.Var]()
	},
	NewInitialFact: func() *lattice.SetFact[*ir.Var] {
		return lattice.NewSetFact[*ir.Var]()
	},
	MeetInto: func(src, tgt *lattice.SetFact[*ir.Var]) bool {
		return lattice.UnionInto(src, tgt)
	},
	Transfer: func(stmt ir.Stmt, out *lattice.SetFact[*ir.Var], prevIn *lattice.SetFact[*ir.Var]) (*lattice.SetFact[*ir.Var], bool) {
		in := out.Copy()
		if def := stmt.Def(); def != nil {
			in.Remove(def)
		}
		for _, use := range stmt.Uses() {
			in.Add(use)
		}
		changed := !in.Equal(prevIn)
		return in, changed
	},
}
