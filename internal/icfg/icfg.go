// Package icfg builds the inter-procedural control-flow graph that
// internal/interconstprop's constant-propagation solver runs on:
// Normal edges within a method, plus Call/CallToReturn/Return edges at
// each call site, stitched together from the per-method
// intra-procedural CFGs (internal/dataflow) and a context-insensitive
// call graph (internal/callgraph, as produced by CHA or
// internal/pointer's CI-PTA).
package icfg

import (
	"sort"

	"github.com/lmysuzi/static-software-analysis/internal/callgraph"
	"github.com/lmysuzi/static-software-analysis/internal/dataflow"
	"github.com/lmysuzi/static-software-analysis/internal/ir"
)

// EdgeKind discriminates an inter-procedural control-flow graph edge.
type EdgeKind uint8

const (
	Normal EdgeKind = iota
	Call
	CallToReturn
	Return
)

func (k EdgeKind) String() string {
	return [...]string{"normal", "call", "call-to-return", "return"}[k]
}

// Edge is one ICFG edge. Site is non-nil for Call/CallToReturn/Return
// edges, naming the call site the edge is relative to.
type Edge struct {
	From, To ir.Stmt
	Kind     EdgeKind
	Site     *ir.Invoke
}

// ICFG is built once over a fixed set of reachable methods and a
// context-insensitive call graph and is immutable thereafter.
type ICFG struct {
	owner map[ir.Stmt]*ir.Method
	intra map[*ir.Method]*dataflow.StmtGraph
	cg    *callgraph.Graph // Nodes keyed by *ir.Method
}

// Build constructs the ICFG over methods using cg to resolve call
// edges. methods must be exactly the call graph's reachable set (or a
// superset) so every call site's callees can be found.
func Build(methods []*ir.Method, cg *callgraph.Graph) *ICFG {
	g := &ICFG{
		owner: make(map[ir.Stmt]*ir.Method),
		intra: make(map[*ir.Method]*dataflow.StmtGraph, len(methods)),
		cg:    cg,
	}
	for _, m := range methods {
		sg := dataflow.BuildStmtGraph(m)
		g.intra[m] = sg
		for _, s := range sg.All() {
			g.owner[s] = m
		}
	}
	return g
}

// Methods returns every method the ICFG was built over, ordered by
// their Class.subsig name.
func (g *ICFG) Methods() []*ir.Method {
	out := make([]*ir.Method, 0, len(g.intra))
	for m := range g.intra {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// AllStmts returns every statement across every method in the ICFG,
// in method-then-intra order — the deterministic enumeration worklists
// seed from.
func (g *ICFG) AllStmts() []ir.Stmt {
	var out []ir.Stmt
	for _, m := range g.Methods() {
		out = append(out, g.intra[m].All()...)
	}
	return out
}

// Entry returns m's intra-procedural entry statement.
func (g *ICFG) Entry(m *ir.Method) ir.Stmt { return g.intra[m].Entry() }

// OwnerOf returns the method a statement belongs to.
func (g *ICFG) OwnerOf(s ir.Stmt) *ir.Method { return g.owner[s] }

// OutEdges returns s's outgoing ICFG edges. A non-call statement's
// intra successors are Normal edges. A call statement's intra
// successors become CallToReturn edges (the callee is bypassed, not
// followed, by that edge), and a Call edge is added to each resolved
// callee's entry statement.
func (g *ICFG) OutEdges(s ir.Stmt) []Edge {
	m := g.owner[s]
	intra := g.intra[m]
	inv, isCall := s.(*ir.Invoke)
	var out []Edge
	if isCall {
		for _, callee := range g.calleesOf(m, inv) {
			out = append(out, Edge{From: s, To: g.Entry(callee), Kind: Call, Site: inv})
		}
		for _, succ := range intra.Succs(s) {
			out = append(out, Edge{From: s, To: succ, Kind: CallToReturn, Site: inv})
		}
		return out
	}
	for _, succ := range intra.Succs(s) {
		out = append(out, Edge{From: s, To: succ, Kind: Normal})
	}
	return out
}

// InEdges returns s's incoming ICFG edges: the mirror of OutEdges,
// plus the Return edges landing at s from every Return statement of
// every method called by s's call-site predecessors, plus — when s is
// its method's entry statement — a Call edge from every call site that
// targets this method, found via the call graph rather than via intra
// predecessors (an entry statement has none).
func (g *ICFG) InEdges(s ir.Stmt) []Edge {
	m := g.owner[s]
	intra := g.intra[m]
	var in []Edge
	for _, pred := range intra.Preds(s) {
		if inv, ok := pred.(*ir.Invoke); ok {
			in = append(in, Edge{From: pred, To: s, Kind: CallToReturn, Site: inv})
			for _, callee := range g.calleesOf(m, inv) {
				for _, ret := range returnStmtsOf(callee) {
					in = append(in, Edge{From: ret, To: s, Kind: Return, Site: inv})
				}
			}
			continue
		}
		in = append(in, Edge{From: pred, To: s, Kind: Normal})
	}
	if s == g.Entry(m) {
		in = append(in, g.callEdgesInto(m, s)...)
	}
	return in
}

// callEdgesInto returns a Call edge from every call site, anywhere in
// the ICFG, that the call graph resolves to callee, landing at s
// (callee's entry statement).
func (g *ICFG) callEdgesInto(callee *ir.Method, s ir.Stmt) []Edge {
	node, ok := g.cg.Nodes[callee]
	if !ok {
		return nil
	}
	var in []Edge
	for _, e := range node.In {
		in = append(in, Edge{From: e.Site, To: s, Kind: Call, Site: e.Site})
	}
	return in
}

func (g *ICFG) calleesOf(caller *ir.Method, inv *ir.Invoke) []*ir.Method {
	node, ok := g.cg.Nodes[caller]
	if !ok {
		return nil
	}
	var out []*ir.Method
	for _, n := range g.cg.Callees(node, inv) {
		if callee, ok := n.Key.(*ir.Method); ok {
			out = append(out, callee)
		}
	}
	return out
}

func returnStmtsOf(m *ir.Method) []*ir.Return {
	var out []*ir.Return
	for _, s := range m.AllStmts() {
		if r, ok := s.(*ir.Return); ok {
			out = append(out, r)
		}
	}
	return out
}
