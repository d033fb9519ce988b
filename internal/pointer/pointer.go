// Package pointer implements the inclusion-based pointer analysis in
// both its context-insensitive and context-sensitive
// variants: a worklist fixpoint over a Pointer-Flow Graph (PFG) with
// on-the-fly call-graph construction driven by the receiver's
// points-to set.
package pointer

import (
	"github.com/lmysuzi/static-software-analysis/internal/heap"
	"github.com/lmysuzi/static-software-analysis/internal/ir"
	"github.com/lmysuzi/static-software-analysis/internal/lattice"
)

// Pointer is a context-insensitive points-to container: a
// VarPtr, an InstanceField, a StaticField or an ArrayIndex. All four
// variants are small comparable value types so a Pointer value (stored
// in the interface) can be used directly as a map key, the same way
// golang.org/x/tools/go/pointer uses an ssa.Value or nodeid as a map
// key throughout its analysis.
type Pointer interface {
	isPointer()
	String() string
}

type VarPtr struct{ V *ir.Var }

func (VarPtr) isPointer()        {}
func (p VarPtr) String() string  { return p.V.String() }

type InstanceField struct {
	Obj   *heap.Obj
	Field *ir.Field
}

func (InstanceField) isPointer() {}
func (p InstanceField) String() string {
	return p.Obj.String() + "." + p.Field.Name
}

type StaticField struct{ Field *ir.Field }

func (StaticField) isPointer() {}
func (p StaticField) String() string {
	return p.Field.DeclClass + "." + p.Field.Name
}

// ArrayIndex is the merged (index-insensitive) array-element pointer
// for obj: every element of an array object shares one ArrayIndex
// pointer rather than being tracked per index.
type ArrayIndex struct{ Obj *heap.Obj }

func (ArrayIndex) isPointer() {}
func (p ArrayIndex) String() string {
	return p.Obj.String() + "[*]"
}

// PointsToSet is the points-to abstraction for a context-insensitive
// Pointer: a monotonically growing set of Objs, reusing
// internal/lattice's generic SetFact exactly as the live-variable
// analysis does.
type PointsToSet = lattice.SetFact[*heap.Obj]

func NewPointsToSet() *PointsToSet { return lattice.NewSetFact[*heap.Obj]() }

// PFG is the Pointer-Flow Graph: edge src->tgt means "every object in
// pt(src) must be in pt(tgt)". Edges persist once added and are
// deduplicated at insertion.
type PFG struct {
	succs map[Pointer]map[Pointer]bool
}

func NewPFG() *PFG { return &PFG{succs: make(map[Pointer]map[Pointer]bool)} }

// AddEdge adds src->tgt if not already present, returning true iff new.
func (g *PFG) AddEdge(src, tgt Pointer) bool {
	if src == tgt {
		return false
	}
	m, ok := g.succs[src]
	if !ok {
		m = make(map[Pointer]bool)
		g.succs[src] = m
	}
	if m[tgt] {
		return false
	}
	m[tgt] = true
	return true
}

// Succs returns n's PFG successors.
func (g *PFG) Succs(n Pointer) []Pointer {
	out := make([]Pointer, 0, len(g.succs[n]))
	for s := range g.succs[n] {
		out = append(out, s)
	}
	return out
}
