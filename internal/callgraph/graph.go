// Package callgraph defines the call-graph representation shared by
// class-hierarchy analysis and both pointer-analysis variants: nodes
// are methods (or, once paired with a Context by the CS analysis,
// comparable (context, method) pair values — see internal/pointer),
// edges are (call-site, callee) tagged with a
// CallKind. The Node/Edge/CreateNode/AddEdge shape is modeled on
// golang.org/x/tools/go/callgraph's Graph, which cannot be imported
// directly because it is keyed on *ssa.Function and these analyses
// never construct go/ssa values directly.
package callgraph

import "github.com/lmysuzi/static-software-analysis/internal/ir"

// Node is a callgraph.Graph vertex. Key is whatever comparable value
// identifies the node in scope (a *ir.Method for CHA and CI-PTA; a
// (Context, *ir.Method) pair value for CS-PTA — see
// internal/pointer.CSMethod).
type Node struct {
	Key   any
	Out   []*Edge
	In    []*Edge
}

// Edge is a call-graph edge from a call site to a resolved callee.
type Edge struct {
	Caller *Node
	Site   *ir.Invoke
	Callee *Node
	Kind   ir.CallKind
}

// Graph is a call graph: a set of Nodes plus the Edges between them,
// plus the set of call sites textually contained in each reachable
// method.
type Graph struct {
	Root  *Node
	Nodes map[any]*Node

	// Sites maps a node key to the call sites textually contained in
	// that method/context, populated incrementally as addReachable (or
	// its CS equivalent) discovers them.
	Sites map[any][]*ir.Invoke
}

func New() *Graph {
	return &Graph{Nodes: make(map[any]*Node), Sites: make(map[any][]*ir.Invoke)}
}

// CreateNode returns the Node for key, creating it if this is the
// first reference.
func (g *Graph) CreateNode(key any) *Node {
	if n, ok := g.Nodes[key]; ok {
		return n
	}
	n := &Node{Key: key}
	g.Nodes[key] = n
	return n
}

// AddEdge adds an edge caller--site-->callee of the given kind if it is
// not already present; call-graph edges, once added, persist and are
// never added twice for the same (site, callee) pair. Returns true iff
// a new edge was added.
func AddEdge(caller *Node, site *ir.Invoke, kind ir.CallKind, callee *Node) bool {
	for _, e := range caller.Out {
		if e.Site == site && e.Callee == callee {
			return false
		}
	}
	e := &Edge{Caller: caller, Site: site, Callee: callee, Kind: kind}
	caller.Out = append(caller.Out, e)
	callee.In = append(callee.In, e)
	return true
}

// AddSite records that method/context key textually contains call site s.
func (g *Graph) AddSite(key any, s *ir.Invoke) {
	for _, existing := range g.Sites[key] {
		if existing == s {
			return
		}
	}
	g.Sites[key] = append(g.Sites[key], s)
}

// ReachableMethods returns every node key currently in the graph
// (CHA/CI-PTA populate Graph.Nodes only with reachable methods, so this
// is exactly the reachable set).
func (g *Graph) ReachableMethods() []any {
	out := make([]any, 0, len(g.Nodes))
	for k := range g.Nodes {
		out = append(out, k)
	}
	return out
}

// Callees returns the resolved targets of call site s from node caller.
func (g *Graph) Callees(caller *Node, s *ir.Invoke) []*Node {
	var out []*Node
	for _, e := range caller.Out {
		if e.Site == s {
			out = append(out, e.Callee)
		}
	}
	return out
}
