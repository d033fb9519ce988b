package dataflow

import "github.com/lmysuzi/static-software-analysis/internal/ir"

// Direction selects whether a Solve run is a forward or backward
// data-flow analysis.
type Direction uint8

const (
	Forward Direction = iota
	Backward
)

// Analysis is the generic monotone data-flow problem definition:
// direction, boundary-fact constructor, initial-fact constructor,
// meetInto and transferNode. F is the fact type (e.g. *lattice.CPFact
// or *lattice.SetFact[*ir.Var]); it is instantiated freshly per call so
// no two statements alias the same Fact value.
type Analysis[F any] struct {
	Direction        Direction
	NewBoundaryFact  func(m *ir.Method) F
	NewInitialFact   func() F
	// MeetInto merges src into tgt in place, returning true if tgt changed.
	MeetInto func(src, tgt F) bool
	// Transfer applies the statement's transfer function: given the
	// fact on the "near" side (IN for forward, OUT for backward),
	// compute and return the fact on the "far" side, plus whether it
	// changed relative to the previous far-side fact supplied as prev.
	Transfer func(stmt ir.Stmt, near F, prev F) (far F, changed bool)
}

// Result holds the fixpoint IN/OUT fact at every statement ( "Intra
// results: per-statement IN/OUT facts").
type Result[F any] struct {
	In  map[ir.Stmt]F
	Out map[ir.Stmt]F
}

// Solve runs the analysis to a fixpoint over m's CFG using a FIFO
// worklist (: "worklists are FIFO queues" for reproducibility).
func Solve[F any](m *ir.Method, g *StmtGraph, a Analysis[F]) *Result[F] {
	res := &Result[F]{In: make(map[ir.Stmt]F), Out: make(map[ir.Stmt]F)}

	for _, s := range g.All() {
		res.In[s] = a.NewInitialFact()
		res.Out[s] = a.NewInitialFact()
	}

	boundary := g.Entry()
	if a.Direction == Backward {
		// The boundary statement for a backward analysis is the last
		// statement reachable before the synthetic exit; g.exit may be
		// nil for an empty exit block, in which case every Return
		// statement already flows OUT into nothing and needs no
		// special-cased boundary fact (its OUT is the identity
		// initial fact, which for live-variables is the empty set —
		// exactly newBoundaryFact()'s value too).
		boundary = g.exit
	}
	if boundary != nil {
		if a.Direction == Forward {
			res.In[boundary] = a.NewBoundaryFact(m)
		} else {
			res.Out[boundary] = a.NewBoundaryFact(m)
		}
	}

	queue := append([]ir.Stmt(nil), g.All()...)
	queued := make(map[ir.Stmt]bool, len(queue))
	for _, s := range queue {
		queued[s] = true
	}

	push := func(s ir.Stmt) {
		if !queued[s] {
			queued[s] = true
			queue = append(queue, s)
		}
	}

	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		queued[s] = false

		if a.Direction == Forward {
			// IN[s] = ⊔ OUT[pred], unless s is the fixed boundary.
			if s != boundary {
				merged := a.NewInitialFact()
				for _, p := range g.Preds(s) {
					a.MeetInto(res.Out[p], merged)
				}
				res.In[s] = merged
			}
			out, changed := a.Transfer(s, res.In[s], res.Out[s])
			res.Out[s] = out
			if changed {
				for _, succ := range g.Succs(s) {
					push(succ)
				}
			}
		} else {
			if s != boundary {
				merged := a.NewInitialFact()
				for _, succ := range g.Succs(s) {
					a.MeetInto(res.In[succ], merged)
				}
				res.Out[s] = merged
			}
			in, changed := a.Transfer(s, res.Out[s], res.In[s])
			res.In[s] = in
			if changed {
				for _, p := range g.Preds(s) {
					push(p)
				}
			}
		}
	}

	return res
}
