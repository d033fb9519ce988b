package callgraph

import (
	"github.com/lmysuzi/static-software-analysis/internal/hierarchy"
	"github.com/lmysuzi/static-software-analysis/internal/ir"
)

// BuildCHA builds a call graph from entry by worklist reachability,
// resolving virtual/interface dispatch against the class hierarchy.
// The algorithm mirrors golang.org/x/tools/go/callgraph/cha's
// doc-commented shape (a worklist of reachable functions, resolve each
// call site, recurse into newly discovered callees) but is implemented
// directly over internal/ir + internal/hierarchy rather than go/ssa +
// go/types, since importing the x/tools cha package would require
// building a go/ssa program from real source (see DESIGN.md).
func BuildCHA(h *hierarchy.Hierarchy, entry *ir.Method) *Graph {
	g := New()
	root := g.CreateNode(entry)
	g.Root = root

	worklist := []*ir.Method{entry}
	reachable := map[*ir.Method]bool{entry: true}

	for len(worklist) > 0 {
		m := worklist[0]
		worklist = worklist[1:]
		caller := g.CreateNode(m)

		for _, s := range m.AllStmts() {
			inv, ok := s.(*ir.Invoke)
			if !ok {
				continue
			}
			g.AddSite(m, inv)

			for _, callee := range resolve(h, inv) {
				AddEdge(caller, inv, inv.Kind, g.CreateNode(callee))
				if !reachable[callee] {
					reachable[callee] = true
					worklist = append(worklist, callee)
				}
			}
		}
	}
	return g
}

// resolve implements CHA's per-call-site resolution:
//   - STATIC / SPECIAL: single target = dispatch(declaredClass, subsig).
//   - VIRTUAL / INTERFACE: from the declared class/interface of the
//     reference, traverse direct subclasses, subinterfaces and
//     implementors transitively, dispatching at each visited class and
//     collecting the non-null results.
func resolve(h *hierarchy.Hierarchy, inv *ir.Invoke) []*ir.Method {
	switch inv.Kind {
	case ir.CallStatic, ir.CallSpecial:
		if m := h.Dispatch(inv.Ref.DeclClass, inv.Ref.Subsig); m != nil {
			return []*ir.Method{m}
		}
		return nil

	case ir.CallVirtual, ir.CallInterface:
		var out []*ir.Method
		seen := map[string]bool{}
		var visit func(class string)
		visit = func(class string) {
			if seen[class] {
				return
			}
			seen[class] = true
			if m := h.Dispatch(class, inv.Ref.Subsig); m != nil {
				out = append(out, m)
			}
			for _, sub := range h.DirectSubclassesOf(class) {
				visit(sub)
			}
			for _, sub := range h.DirectSubinterfacesOf(class) {
				visit(sub)
			}
			for _, impl := range h.DirectImplementorsOf(class) {
				visit(impl)
			}
		}
		visit(inv.Ref.DeclClass)
		return out

	default:
		return nil
	}
}
