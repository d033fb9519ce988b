// Package dataflow implements the generic monotone intra-procedural
// solver and its two exemplar analyses: live-variable analysis
// and integer constant propagation.
package dataflow

import "github.com/lmysuzi/static-software-analysis/internal/ir"

// StmtGraph is the statement-level control-flow graph the solver
// iterates, derived once from a Method's BasicBlocks: within a block,
// each statement's successor is the next statement (or, for the last
// statement, the block's Succs' first statements); across blocks it
// follows BasicBlock.Preds/Succs.
type StmtGraph struct {
	method *ir.Method
	preds  map[ir.Stmt][]ir.Stmt
	succs  map[ir.Stmt][]ir.Stmt
	all    []ir.Stmt // deterministic order: block order, then in-block order
	entry  ir.Stmt
	exit   ir.Stmt // synthetic; has no statement of its own, represented as nil sentinel handled by caller
}

// BuildStmtGraph derives the per-statement predecessor/successor edges
// for m.
func BuildStmtGraph(m *ir.Method) *StmtGraph {
	g := &StmtGraph{
		method: m,
		preds:  make(map[ir.Stmt][]ir.Stmt),
		succs:  make(map[ir.Stmt][]ir.Stmt),
	}

	firstOf := make(map[*ir.BasicBlock]ir.Stmt)
	lastOf := make(map[*ir.BasicBlock]ir.Stmt)
	for _, b := range m.Blocks {
		if len(b.Stmts) == 0 {
			continue
		}
		firstOf[b] = b.Stmts[0]
		lastOf[b] = b.Stmts[len(b.Stmts)-1]
	}

	link := func(a, b ir.Stmt) {
		g.succs[a] = append(g.succs[a], b)
		g.preds[b] = append(g.preds[b], a)
	}

	for _, b := range m.Blocks {
		g.all = append(g.all, b.Stmts...)
		for i := 0; i+1 < len(b.Stmts); i++ {
			link(b.Stmts[i], b.Stmts[i+1])
		}
		if len(b.Stmts) == 0 {
			continue
		}
		last := b.Stmts[len(b.Stmts)-1]
		for _, succBlock := range b.Succs {
			if first, ok := firstOf[succBlock]; ok {
				link(last, first)
			}
		}
	}

	if m.Entry != nil {
		g.entry = firstOf[m.Entry]
	}
	if m.Exit != nil {
		g.exit = lastOf[m.Exit] // nil if the exit block is empty, the common case
	}
	return g
}

func (g *StmtGraph) Preds(s ir.Stmt) []ir.Stmt { return g.preds[s] }
func (g *StmtGraph) Succs(s ir.Stmt) []ir.Stmt { return g.succs[s] }
func (g *StmtGraph) All() []ir.Stmt            { return g.all }
func (g *StmtGraph) Entry() ir.Stmt            { return g.entry }
