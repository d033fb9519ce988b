package pointer

import (
	"github.com/lmysuzi/static-software-analysis/internal/context"
	"github.com/lmysuzi/static-software-analysis/internal/heap"
	"github.com/lmysuzi/static-software-analysis/internal/ir"
	"github.com/lmysuzi/static-software-analysis/internal/lattice"
)

// CSVar, CSObj, CSMethod and CSCallSite are a Var/Obj/Method/Invoke
// paired with the Context it was reached under — all four are
// the same generic context.CSPair shape, aliased here under the names
// prose uses.
type (
	CSVar      = context.CSPair[*ir.Var]
	CSObj      = context.CSPair[*heap.Obj]
	CSMethod   = context.CSPair[*ir.Method]
	CSCallSite = context.CSPair[*ir.Invoke]
)

// CSPointer is the context-sensitive points-to container:
// CSVarPtr and CSArrayIndex/CSInstanceField carry a Context (on the var
// or the object respectively); CSStaticField does not, since static
// fields are process-global regardless of calling context.
type CSPointer interface {
	isCSPointer()
	String() string
}

type CSVarPtr struct{ V CSVar }

func (CSVarPtr) isCSPointer()  {}
func (p CSVarPtr) String() string { return p.V.Ctx.String() + ":" + p.V.X.String() }

type CSInstanceField struct {
	Obj   CSObj
	Field *ir.Field
}

func (CSInstanceField) isCSPointer() {}
func (p CSInstanceField) String() string {
	return p.Obj.Ctx.String() + ":" + p.Obj.X.String() + "." + p.Field.Name
}

type CSStaticField struct{ Field *ir.Field }

func (CSStaticField) isCSPointer() {}
func (p CSStaticField) String() string {
	return p.Field.DeclClass + "." + p.Field.Name
}

type CSArrayIndex struct{ Obj CSObj }

func (CSArrayIndex) isCSPointer() {}
func (p CSArrayIndex) String() string {
	return p.Obj.Ctx.String() + ":" + p.Obj.X.String() + "[*]"
}

// CSPointsToSet is the points-to abstraction for a CSPointer: a set of
// CSObjs, reusing the same generic SetFact the CI analysis and the
// live-variable analysis both use.
type CSPointsToSet = lattice.SetFact[CSObj]

func NewCSPointsToSet() *CSPointsToSet { return lattice.NewSetFact[CSObj]() }

// CSPFG is the context-sensitive Pointer-Flow Graph.
type CSPFG struct {
	succs map[CSPointer]map[CSPointer]bool
}

func NewCSPFG() *CSPFG { return &CSPFG{succs: make(map[CSPointer]map[CSPointer]bool)} }

func (g *CSPFG) AddEdge(src, tgt CSPointer) bool {
	if src == tgt {
		return false
	}
	m, ok := g.succs[src]
	if !ok {
		m = make(map[CSPointer]bool)
		g.succs[src] = m
	}
	if m[tgt] {
		return false
	}
	m[tgt] = true
	return true
}

func (g *CSPFG) Succs(n CSPointer) []CSPointer {
	out := make([]CSPointer, 0, len(g.succs[n]))
	for s := range g.succs[n] {
		out = append(out, s)
	}
	return out
}
