// Package interconstprop implements inter-procedural integer constant
// propagation on the ICFG (internal/icfg), consuming a
// context-insensitive points-to result (internal/pointer) to resolve
// instance/static field and array loads and stores through an explicit
// HeapFactStore standing in for shared heap state.
package interconstprop

import (
	"github.com/lmysuzi/static-software-analysis/internal/icfg"
	"github.com/lmysuzi/static-software-analysis/internal/ir"
	"github.com/lmysuzi/static-software-analysis/internal/lattice"
	"github.com/lmysuzi/static-software-analysis/internal/pointer"
)

// Result holds the fixpoint IN/OUT fact at every statement across every
// method in the ICFG.
type Result struct {
	In  map[ir.Stmt]*lattice.CPFact
	Out map[ir.Stmt]*lattice.CPFact
}

// Solve runs inter-procedural constant propagation to a fixpoint.
// entry is the ICFG's root method; its int-holding parameters are
// bound to NAC as the analysis boundary, matching the intra-procedural
// convention.
func Solve(g *icfg.ICFG, pta *pointer.CIResult, entry *ir.Method) *Result {
	store := NewHeapFactStore(pta, g.Methods())
	res := &Result{In: make(map[ir.Stmt]*lattice.CPFact), Out: make(map[ir.Stmt]*lattice.CPFact)}

	all := g.AllStmts()
	for _, s := range all {
		res.In[s] = lattice.NewCPFact()
		res.Out[s] = lattice.NewCPFact()
	}

	entryStmt := g.Entry(entry)
	boundary := boundaryFact(entry)

	queue := append([]ir.Stmt(nil), all...)
	queued := make(map[ir.Stmt]bool, len(queue))
	for _, s := range queue {
		queued[s] = true
	}
	push := func(s ir.Stmt) {
		if s == nil || queued[s] {
			return
		}
		queued[s] = true
		queue = append(queue, s)
	}

	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		queued[s] = false

		var merged *lattice.CPFact
		if s == entryStmt {
			merged = boundary.Copy()
		} else {
			merged = lattice.NewCPFact()
		}
		for _, e := range g.InEdges(s) {
			lattice.MeetInto(edgeFact(g, e, res.Out[e.From]), merged)
		}
		res.In[s] = merged

		for _, reenq := range processHeapEffects(store, pta, s, res.In[s]) {
			push(reenq)
		}

		out := nodeTransfer(s, res.In[s], store)
		changed := !out.Equal(res.Out[s])
		res.Out[s] = out
		if changed {
			for _, e := range g.OutEdges(s) {
				push(e.To)
			}
		}
	}

	return res
}

func boundaryFact(m *ir.Method) *lattice.CPFact {
	f := lattice.NewCPFact()
	for _, p := range m.Params {
		if p.Type().CanHoldInt() {
			f.Set(p, lattice.NACVal)
		}
	}
	return f
}

// edgeFact computes the fact an ICFG edge contributes to its target's
// meet's four edge transfers.
func edgeFact(g *icfg.ICFG, e icfg.Edge, outFrom *lattice.CPFact) *lattice.CPFact {
	switch e.Kind {
	case icfg.Normal:
		return outFrom

	case icfg.CallToReturn:
		f := outFrom.Copy()
		if e.Site.LValue != nil {
			f.Remove(e.Site.LValue)
		}
		return f

	case icfg.Call:
		f := lattice.NewCPFact()
		callee := g.OwnerOf(e.To)
		for i, p := range callee.Params {
			if i >= len(e.Site.Args) {
				break
			}
			if p.Type().CanHoldInt() {
				f.Set(p, outFrom.Get(e.Site.Args[i]))
			}
		}
		return f

	case icfg.Return:
		f := lattice.NewCPFact()
		if e.Site.LValue != nil && e.Site.LValue.Type().CanHoldInt() {
			ret := e.From.(*ir.Return)
			v := lattice.UndefVal
			for _, rv := range ret.ResultVars {
				v = lattice.Meet(v, outFrom.Get(rv))
			}
			f.Set(e.Site.LValue, v)
		}
		return f
	}
	return lattice.NewCPFact()
}

// nodeTransfer is node transfer: call nodes propagate in->out
// minus the defined var (the CallToReturn edge supplies the gap); every
// other kind delegates to the intra-procedural rule of, now with
// a non-nil HeapReader so field/array reads consult the HeapFactStore
// instead of defaulting to NAC.
func nodeTransfer(s ir.Stmt, in *lattice.CPFact, store *HeapFactStore) *lattice.CPFact {
	out := in.Copy()
	switch st := s.(type) {
	case *ir.Invoke:
		if st.LValue != nil {
			out.Remove(st.LValue)
		}
	case *ir.AssignStmt:
		if st.LValue.Type().CanHoldInt() {
			out.Set(st.LValue, lattice.Evaluate(st.RHS, in, store))
		}
	case *ir.Copy:
		if st.LValue.Type().CanHoldInt() {
			out.Set(st.LValue, in.Get(st.RHS))
		}
	case *ir.LoadField:
		if st.Field.Type.CanHoldInt() {
			out.Set(st.LValue, store.FieldValue(st.Base, st.Field))
		}
	case *ir.LoadArray:
		if st.LValue.Type().CanHoldInt() {
			out.Set(st.LValue, store.ArrayValue(st.Base, in.Get(st.Index)))
		}
	}
	return out
}

// processHeapEffects applies "heap/field/array propagation"
// step, run before the node transfer for StoreField/StoreArray
// statements: it updates the HeapFactStore's side tables and returns
// the LoadField/LoadArray statements that must be re-enqueued because
// an aliased store changed a value they depend on.
func processHeapEffects(store *HeapFactStore, pta *pointer.CIResult, s ir.Stmt, in *lattice.CPFact) []ir.Stmt {
	var reenq []ir.Stmt
	switch st := s.(type) {
	case *ir.StoreField:
		if !st.Field.Type.CanHoldInt() {
			return nil
		}
		val := in.Get(st.RHS)
		if st.Base == nil {
			if store.UpdateStatic(st.Field, val) {
				for _, lf := range store.StaticLoadsOf(st.Field) {
					reenq = append(reenq, lf)
				}
			}
			return reenq
		}
		for _, obj := range pta.PointsTo(st.Base) {
			if !store.UpdateInstance(obj, st.Field, val) {
				continue
			}
			for _, v := range store.AliasesOf(obj) {
				for _, lf := range v.Method().LoadFieldsOf(v) {
					if lf.Field == st.Field {
						reenq = append(reenq, lf)
					}
				}
			}
		}

	case *ir.StoreArray:
		idx := in.Get(st.Index)
		if idx.IsUndef() {
			return nil
		}
		val := in.Get(st.RHS)
		for _, obj := range pta.PointsTo(st.Base) {
			if !store.UpdateArray(obj, idx, val) {
				continue
			}
			for _, v := range store.AliasesOf(obj) {
				for _, la := range v.Method().LoadArraysOf(v) {
					reenq = append(reenq, la)
				}
			}
		}
	}
	return reenq
}
