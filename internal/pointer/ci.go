package pointer

import (
	"sort"

	"github.com/lmysuzi/static-software-analysis/internal/callgraph"
	"github.com/lmysuzi/static-software-analysis/internal/diag"
	"github.com/lmysuzi/static-software-analysis/internal/heap"
	"github.com/lmysuzi/static-software-analysis/internal/hierarchy"
	"github.com/lmysuzi/static-software-analysis/internal/ir"
)

// workItem is a pending "add these objects to this pointer" task.
type workItem struct {
	n   Pointer
	pts *PointsToSet
}

// CIResult is the outcome of a context-insensitive pointer analysis
// run: per-pointer points-to sets plus the on-the-fly call
// graph built alongside them.
type CIResult struct {
	CallGraph *callgraph.Graph
	pt        map[Pointer]*PointsToSet
}

// PointsTo returns v's points-to set, in deterministic Obj-id order.
func (r *CIResult) PointsTo(v *ir.Var) []*heap.Obj { return objsOf(r.pt[VarPtr{v}]) }

// PointsToField returns obj.f's points-to set.
func (r *CIResult) PointsToField(obj *heap.Obj, f *ir.Field) []*heap.Obj {
	return objsOf(r.pt[InstanceField{obj, f}])
}

// PointsToStatic returns C.f's points-to set.
func (r *CIResult) PointsToStatic(f *ir.Field) []*heap.Obj {
	return objsOf(r.pt[StaticField{f}])
}

// PointsToArray returns obj[*]'s points-to set.
func (r *CIResult) PointsToArray(obj *heap.Obj) []*heap.Obj {
	return objsOf(r.pt[ArrayIndex{obj}])
}

func objsOf(s *PointsToSet) []*heap.Obj {
	if s == nil {
		return nil
	}
	out := s.Elems()
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// ci is the mutable state of a context-insensitive analysis run.
type ci struct {
	h    *hierarchy.Hierarchy
	heap *heap.Model
	cg   *callgraph.Graph
	pfg  *PFG
	pt   map[Pointer]*PointsToSet
	reach map[*ir.Method]bool
	work []workItem
	log  *diag.Logger
}

// SolveCI runs the context-insensitive inclusion-based pointer analysis
// starting from entry, returning the fixpoint points-to sets and
// the call graph discovered on the fly.
func SolveCI(h *hierarchy.Hierarchy, hm *heap.Model, entry *ir.Method, log *diag.Logger) *CIResult {
	if log == nil {
		log = diag.Discard
	}
	a := &ci{
		h:     h,
		heap:  hm,
		cg:    callgraph.New(),
		pfg:   NewPFG(),
		pt:    make(map[Pointer]*PointsToSet),
		reach: make(map[*ir.Method]bool),
		log:   log,
	}
	a.cg.Root = a.cg.CreateNode(entry)
	a.addReachable(entry)
	a.solve()
	return &CIResult{CallGraph: a.cg, pt: a.pt}
}

func (a *ci) ptOf(n Pointer) *PointsToSet {
	s, ok := a.pt[n]
	if !ok {
		s = NewPointsToSet()
		a.pt[n] = s
	}
	return s
}

func (a *ci) push(n Pointer, objs ...*heap.Obj) {
	if len(objs) == 0 {
		return
	}
	s := NewPointsToSet()
	for _, o := range objs {
		s.Add(o)
	}
	a.work = append(a.work, workItem{n: n, pts: s})
}

// addReachable marks m reachable and, on first visit, scans its
// statements for the parts of that don't depend on a points-to set
// having grown yet: allocation sites, copies, static field accesses and
// statically-dispatched calls. Instance field/array accesses and
// virtual/interface/special calls are wired lazily as their receiver's
// points-to set gains objects (processVarPtrObj/processCall below).
func (a *ci) addReachable(m *ir.Method) {
	if a.reach[m] {
		return
	}
	a.reach[m] = true
	a.log.Debugf("pointer", "reachable method %s", m)

	for _, stmt := range m.AllStmts() {
		switch s := stmt.(type) {
		case *ir.New:
			obj := a.heap.Obj(s, s.ClassType)
			a.push(VarPtr{s.LValue}, obj)
		case *ir.Copy:
			a.pfg.AddEdge(VarPtr{s.RHS}, VarPtr{s.LValue})
		case *ir.LoadField:
			if s.Base == nil {
				a.pfg.AddEdge(StaticField{s.Field}, VarPtr{s.LValue})
			}
		case *ir.StoreField:
			if s.Base == nil {
				a.pfg.AddEdge(VarPtr{s.RHS}, StaticField{s.Field})
			}
		case *ir.Invoke:
			a.cg.AddSite(m, s)
			if s.Kind == ir.CallStatic {
				callee := a.h.Dispatch(s.Ref.DeclClass, s.Ref.Subsig)
				a.resolveCall(m, s, callee)
			}
		}
	}
}

// resolveCall wires a known (caller, site, callee) triple: adds the
// call-graph edge (if new, recurses into the callee) and the
// argument/return PFG edges that make parameter passing and result
// propagation ordinary pointer flow.
func (a *ci) resolveCall(caller *ir.Method, site *ir.Invoke, callee *ir.Method) {
	if callee == nil {
		a.log.Warnf("pointer", "missing dispatch target for %s at %s", site.Ref.Subsig, caller)
		return
	}
	callerNode := a.cg.CreateNode(caller)
	calleeNode := a.cg.CreateNode(callee)
	added := callgraph.AddEdge(callerNode, site, site.Kind, calleeNode)
	if !added {
		return
	}
	a.addReachable(callee)
	for i, arg := range site.Args {
		if i >= len(callee.Params) {
			break
		}
		a.pfg.AddEdge(VarPtr{arg}, VarPtr{callee.Params[i]})
	}
	if site.LValue != nil {
		for _, stmt := range callee.AllStmts() {
			if ret, ok := stmt.(*ir.Return); ok {
				for _, rv := range ret.ResultVars {
					a.pfg.AddEdge(VarPtr{rv}, VarPtr{site.LValue})
				}
			}
		}
	}
}

// processVarPtrObj wires the instance-field, array and call edges that
// newly flowing obj into x's points-to set makes live.
func (a *ci) processVarPtrObj(x *ir.Var, obj *heap.Obj) {
	m := x.Method()
	for _, sf := range m.StoreFieldsOf(x) {
		a.pfg.AddEdge(VarPtr{sf.RHS}, InstanceField{obj, sf.Field})
	}
	for _, lf := range m.LoadFieldsOf(x) {
		a.pfg.AddEdge(InstanceField{obj, lf.Field}, VarPtr{lf.LValue})
	}
	for _, sa := range m.StoreArraysOf(x) {
		a.pfg.AddEdge(VarPtr{sa.RHS}, ArrayIndex{obj})
	}
	for _, la := range m.LoadArraysOf(x) {
		a.pfg.AddEdge(ArrayIndex{obj}, VarPtr{la.LValue})
	}
	a.processCall(m, x, obj)
}

// processCall resolves the virtual/interface/special call sites with
// receiver x now that obj is known to be in x's points-to set,
// dispatching against obj's declared type rather than x's static type.
func (a *ci) processCall(m *ir.Method, x *ir.Var, obj *heap.Obj) {
	for _, inv := range m.InvokesOn(x) {
		if inv.Kind == ir.CallStatic {
			continue
		}
		callee := a.h.Dispatch(obj.Type.ClassName, inv.Ref.Subsig)
		a.resolveCall(m, inv, callee)
		if callee != nil && callee.This != nil {
			a.push(VarPtr{callee.This}, obj)
		}
	}
}

// solve drains the worklist to a fixpoint: propagate grows a pointer's
// points-to set by the delta, which is then pushed along PFG edges and,
// for VarPtrs, used to discover new field/array/call edges.
func (a *ci) solve() {
	for len(a.work) > 0 {
		item := a.work[0]
		a.work = a.work[1:]

		delta := a.propagate(item.n, item.pts)
		if delta.Len() == 0 {
			continue
		}
		for _, succ := range a.pfg.Succs(item.n) {
			a.push(succ, delta.Elems()...)
		}
		if vp, ok := item.n.(VarPtr); ok {
			for _, obj := range delta.Elems() {
				a.processVarPtrObj(vp.V, obj)
			}
		}
	}
}

func (a *ci) propagate(n Pointer, pts *PointsToSet) *PointsToSet {
	delta := NewPointsToSet()
	cur := a.ptOf(n)
	for _, o := range pts.Elems() {
		if cur.Add(o) {
			delta.Add(o)
		}
	}
	return delta
}
