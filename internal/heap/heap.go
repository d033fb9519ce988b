// Package heap models the heap abstraction the pointer analyses share:
// allocation site -> Obj, Obj -> type, plus the taint-object kind and
// TaintManager used by taint propagation. Objs are owned here and
// referenced by identity everywhere else.
package heap

import "github.com/lmysuzi/static-software-analysis/internal/ir"

// Obj is an abstract heap object, uniquely identified by its allocation
// site. A context-insensitive Obj stands for every object ever
// allocated at Site; the context-sensitive pointer analysis pairs an
// Obj with a heap Context externally (see internal/pointer.CSObj) rather
// than here, keeping one Obj per site regardless of sensitivity level.
type Obj struct {
	id    int
	Site  ir.Stmt  // the *ir.New (or similar) allocation statement; nil for taint Objs
	Type  *ir.Type
	Taint *TaintInfo // non-nil iff this Obj is a taint marker
}

func (o *Obj) ID() int { return o.id }

func (o *Obj) String() string {
	if o.Taint != nil {
		return "taint@" + o.Type.String()
	}
	return o.Type.String()
}

// TaintInfo identifies the (sourceCallSite, type) pair a taint Obj
// carries.
type TaintInfo struct {
	SourceCallSite *ir.Invoke
	Type           *ir.Type
}

// Model is the heap model: it interns one Obj per allocation site,
// so repeated calls to Obj for the same site return the identical
// pointer. The points-to sets' monotonicity depends on Obj identity
// being stable across the whole run.
type Model struct {
	bySite map[ir.Stmt]*Obj
	next   int
}

func NewModel() *Model {
	return &Model{bySite: make(map[ir.Stmt]*Obj)}
}

// Obj returns the canonical Obj for allocation site, creating it on
// first use.
func (m *Model) Obj(site ir.Stmt, typ *ir.Type) *Obj {
	if o, ok := m.bySite[site]; ok {
		return o
	}
	o := &Obj{id: m.next, Site: site, Type: typ}
	m.next++
	m.bySite[site] = o
	return o
}

// TaintManager ensures there is exactly one taint Obj per
// (sourceCallSite, type) pair, regardless of how many times a source
// call or a transfer mints one during the PTA worklist's iteration.
type TaintManager struct {
	model *Model
	byKey map[taintKey]*Obj
	next  int
}

type taintKey struct {
	site *ir.Invoke
	typ  *ir.Type
}

func NewTaintManager(model *Model) *TaintManager {
	return &TaintManager{model: model, byKey: make(map[taintKey]*Obj)}
}

// Make returns the canonical taint Obj for (site, typ), creating it if
// this is the first request for that pair. Retyping a taint object for
// an ARG->BASE/BASE->RESULT/ARG->RESULT transfer is simply calling
// Make with the same site and a different typ: the manager still
// produces one object per resulting pair, preserving the original
// source call.
func (tm *TaintManager) Make(site *ir.Invoke, typ *ir.Type) *Obj {
	k := taintKey{site, typ}
	if o, ok := tm.byKey[k]; ok {
		return o
	}
	o := &Obj{id: tm.model.next, Type: typ, Taint: &TaintInfo{SourceCallSite: site, Type: typ}}
	tm.model.next++
	tm.byKey[k] = o
	return o
}

// IsTaint reports whether o is a taint marker object.
func IsTaint(o *Obj) bool { return o != nil && o.Taint != nil }
