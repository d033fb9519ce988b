package pointer

import (
	"github.com/lmysuzi/static-software-analysis/internal/callgraph"
	"github.com/lmysuzi/static-software-analysis/internal/context"
	"github.com/lmysuzi/static-software-analysis/internal/diag"
	"github.com/lmysuzi/static-software-analysis/internal/heap"
	"github.com/lmysuzi/static-software-analysis/internal/hierarchy"
	"github.com/lmysuzi/static-software-analysis/internal/ir"
)

// csWorkItem mirrors workItem for the context-sensitive lattice.
type csWorkItem struct {
	n   CSPointer
	pts *CSPointsToSet
}

// TaintPush is one (pointer, object) pair a Hooks callback asks the
// CS-PTA worklist to inject, used by the taint analysis to seed
// source objects and propagate transfers without the pointer package
// needing to know anything about sources/sinks/transfers itself.
type TaintPush struct {
	V   CSVar
	Obj CSObj
}

// Hooks lets a consumer (internal/taint) observe and extend the CS-PTA
// worklist at its two integration points: source injection and
// BASE/RESULT/ARG transfer propagation happen through OnCall's
// returned pushes; sink collection happens in OnFinish once the
// analysis reaches its fixpoint. A nil Hooks is equivalent to a Hooks
// whose methods do nothing. pointsTo lets OnCall read the live
// points-to snapshot of any CSVar at the moment its call edge is
// resolved, which transfer propagation needs to see which arguments
// are currently tainted.
type Hooks interface {
	OnCall(caller CSMethod, site *ir.Invoke, callee CSMethod, pointsTo func(CSVar) []CSObj) []TaintPush
	OnFinish(result *CSResult)
}

// CSResult is the outcome of a context-sensitive pointer analysis run.
type CSResult struct {
	CallGraph *callgraph.Graph // Node.Key values are CSMethod
	pt        map[CSPointer]*CSPointsToSet
}

func (r *CSResult) PointsTo(v CSVar) []CSObj { return csObjsOf(r.pt[CSVarPtr{v}]) }
func (r *CSResult) PointsToField(obj CSObj, f *ir.Field) []CSObj {
	return csObjsOf(r.pt[CSInstanceField{obj, f}])
}
func (r *CSResult) PointsToStatic(f *ir.Field) []CSObj { return csObjsOf(r.pt[CSStaticField{f}]) }
func (r *CSResult) PointsToArray(obj CSObj) []CSObj    { return csObjsOf(r.pt[CSArrayIndex{obj}]) }

func csObjsOf(s *CSPointsToSet) []CSObj {
	if s == nil {
		return nil
	}
	return s.Elems()
}

type cs struct {
	h     *hierarchy.Hierarchy
	heap  *heap.Model
	sel   context.Selector
	hooks Hooks
	cg    *callgraph.Graph
	pfg   *CSPFG
	pt    map[CSPointer]*CSPointsToSet
	reach map[CSMethod]bool
	work  []csWorkItem
	log   *diag.Logger
}

// SolveCS runs the context-sensitive inclusion-based pointer analysis
//. sel supplies the context-sensitivity policy (context.OneCallSelector
// for 1-call-site sensitivity); hooks may be nil.
func SolveCS(h *hierarchy.Hierarchy, hm *heap.Model, sel context.Selector, entry *ir.Method, hooks Hooks, log *diag.Logger) *CSResult {
	if log == nil {
		log = diag.Discard
	}
	a := &cs{
		h:     h,
		heap:  hm,
		sel:   sel,
		hooks: hooks,
		cg:    callgraph.New(),
		pfg:   NewCSPFG(),
		pt:    make(map[CSPointer]*CSPointsToSet),
		reach: make(map[CSMethod]bool),
		log:   log,
	}
	entryCSM := CSMethod{Ctx: sel.Empty(), X: entry}
	a.cg.Root = a.cg.CreateNode(entryCSM)
	a.addReachable(entryCSM)
	a.solve()
	result := &CSResult{CallGraph: a.cg, pt: a.pt}
	if a.hooks != nil {
		a.hooks.OnFinish(result)
	}
	return result
}

func (a *cs) ptOf(n CSPointer) *CSPointsToSet {
	s, ok := a.pt[n]
	if !ok {
		s = NewCSPointsToSet()
		a.pt[n] = s
	}
	return s
}

func (a *cs) push(n CSPointer, objs ...CSObj) {
	if len(objs) == 0 {
		return
	}
	s := NewCSPointsToSet()
	for _, o := range objs {
		s.Add(o)
	}
	a.work = append(a.work, csWorkItem{n: n, pts: s})
}

func (a *cs) pushTaint(pushes []TaintPush) {
	for _, p := range pushes {
		a.push(CSVarPtr{p.V}, p.Obj)
	}
}

func (a *cs) addReachable(csm CSMethod) {
	if a.reach[csm] {
		return
	}
	a.reach[csm] = true
	a.log.Debugf("pointer", "reachable method %s in context %s", csm.X, csm.Ctx)
	m := csm.X
	ctx := csm.Ctx

	for _, stmt := range m.AllStmts() {
		switch s := stmt.(type) {
		case *ir.New:
			obj := a.heap.Obj(s, s.ClassType)
			heapCtx := a.sel.SelectHeapContext(csm, obj)
			a.push(CSVarPtr{CSVar{Ctx: ctx, X: s.LValue}}, CSObj{Ctx: heapCtx, X: obj})
		case *ir.Copy:
			a.pfg.AddEdge(CSVarPtr{CSVar{ctx, s.RHS}}, CSVarPtr{CSVar{ctx, s.LValue}})
		case *ir.LoadField:
			if s.Base == nil {
				a.pfg.AddEdge(CSStaticField{s.Field}, CSVarPtr{CSVar{ctx, s.LValue}})
			}
		case *ir.StoreField:
			if s.Base == nil {
				a.pfg.AddEdge(CSVarPtr{CSVar{ctx, s.RHS}}, CSStaticField{s.Field})
			}
		case *ir.Invoke:
			a.cg.AddSite(csm, s)
			if s.Kind == ir.CallStatic {
				callee := a.h.Dispatch(s.Ref.DeclClass, s.Ref.Subsig)
				if callee == nil {
					a.log.Warnf("pointer", "missing dispatch target for %s at %s", s.Ref.Subsig, m)
					continue
				}
				calleeCtx := a.sel.SelectCallContext(CSCallSite{ctx, s}, callee)
				a.resolveCall(csm, s, CSMethod{calleeCtx, callee})
			}
		}
	}
}

// resolveCall wires a known (caller context, site, callee context)
// triple exactly as the CI variant does, but every Pointer carries its
// owning Context.
func (a *cs) resolveCall(caller CSMethod, site *ir.Invoke, callee CSMethod) {
	callerNode := a.cg.CreateNode(caller)
	calleeNode := a.cg.CreateNode(callee)
	added := callgraph.AddEdge(callerNode, site, site.Kind, calleeNode)
	if !added {
		return
	}
	a.addReachable(callee)
	for i, arg := range site.Args {
		if i >= len(callee.X.Params) {
			break
		}
		a.pfg.AddEdge(CSVarPtr{CSVar{caller.Ctx, arg}}, CSVarPtr{CSVar{callee.Ctx, callee.X.Params[i]}})
	}
	if site.LValue != nil {
		for _, stmt := range callee.X.AllStmts() {
			if ret, ok := stmt.(*ir.Return); ok {
				for _, rv := range ret.ResultVars {
					a.pfg.AddEdge(CSVarPtr{CSVar{callee.Ctx, rv}}, CSVarPtr{CSVar{caller.Ctx, site.LValue}})
				}
			}
		}
	}
	if a.hooks != nil {
		pointsTo := func(v CSVar) []CSObj { return csObjsOf(a.pt[CSVarPtr{v}]) }
		a.pushTaint(a.hooks.OnCall(caller, site, callee, pointsTo))
	}
}

func (a *cs) processVarPtrObj(v CSVar, obj CSObj) {
	m := v.X.Method()
	for _, sf := range m.StoreFieldsOf(v.X) {
		a.pfg.AddEdge(CSVarPtr{CSVar{v.Ctx, sf.RHS}}, CSInstanceField{obj, sf.Field})
	}
	for _, lf := range m.LoadFieldsOf(v.X) {
		a.pfg.AddEdge(CSInstanceField{obj, lf.Field}, CSVarPtr{CSVar{v.Ctx, lf.LValue}})
	}
	for _, sa := range m.StoreArraysOf(v.X) {
		a.pfg.AddEdge(CSVarPtr{CSVar{v.Ctx, sa.RHS}}, CSArrayIndex{obj})
	}
	for _, la := range m.LoadArraysOf(v.X) {
		a.pfg.AddEdge(CSArrayIndex{obj}, CSVarPtr{CSVar{v.Ctx, la.LValue}})
	}
	a.processCall(v, obj)
}

func (a *cs) processCall(v CSVar, obj CSObj) {
	m := v.X.Method()
	for _, inv := range m.InvokesOn(v.X) {
		if inv.Kind == ir.CallStatic {
			continue
		}
		callee := a.h.Dispatch(obj.X.Type.ClassName, inv.Ref.Subsig)
		if callee == nil {
			a.log.Warnf("pointer", "missing dispatch target for %s at %s", inv.Ref.Subsig, m)
			continue
		}
		calleeCtx := a.sel.SelectInstanceCallContext(CSCallSite{v.Ctx, inv}, obj, callee)
		calleeCSM := CSMethod{calleeCtx, callee}
		a.resolveCall(CSMethod{v.Ctx, m}, inv, calleeCSM)
		if callee.This != nil {
			a.push(CSVarPtr{CSVar{calleeCtx, callee.This}}, obj)
		}
	}
}

func (a *cs) solve() {
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
		if vp, ok := item.n.(CSVarPtr); ok {
			for _, obj := range delta.Elems() {
				a.processVarPtrObj(vp.V, obj)
			}
		}
	}
}

func (a *cs) propagate(n CSPointer, pts *CSPointsToSet) *CSPointsToSet {
	delta := NewCSPointsToSet()
	cur := a.ptOf(n)
	for _, o := range pts.Elems() {
		if cur.Add(o) {
			delta.Add(o)
		}
	}
	return delta
}
