// Package deadcode implements per-method dead-code detection,
// combining an unreachable-code breadth-first pass (driven by the
// constant-propagation result) with a dead-assignment pass (driven by
// the live-variable result).
package deadcode

import (
	"sort"

	"github.com/lmysuzi/static-software-analysis/internal/dataflow"
	"github.com/lmysuzi/static-software-analysis/internal/ir"
	"github.com/lmysuzi/static-software-analysis/internal/lattice"
)

// Detect runs both passes over m and returns the dead statements found,
// in statement-index order. cp and live are m's already-solved
// constant-propagation and live-variable results; g is m's
// intra-procedural CFG.
func Detect(m *ir.Method, g *dataflow.StmtGraph, cp *dataflow.Result[*lattice.CPFact], live *dataflow.Result[*lattice.SetFact[*ir.Var]]) []ir.Stmt {
	dead := map[ir.Stmt]bool{}

	// The synthetic exit block carries no statement of its own (cfg.go's
	// StmtGraph.exit is nil whenever the exit block is empty, the common
	// case), so it never appears in g.All() and can never be reported
	// dead without a special case.
	reachable := reachableStmts(m, g, cp)
	for _, s := range g.All() {
		if !reachable[s] {
			dead[s] = true
		}
	}

	for _, s := range g.All() {
		if assign, ok := s.(*ir.AssignStmt); ok && sideEffectFree(assign.RHS) {
			if !live.Out[s].Contains(assign.LValue) {
				dead[s] = true
			}
		}
	}

	out := make([]ir.Stmt, 0, len(dead))
	for s := range dead {
		out = append(out, s)
	}
	sortByIndex(out)
	return out
}

// reachableStmts performs the breadth-first unreachable-code pass:
// from the CFG entry, follow only the edges a statement's constant-
// propagation OUT fact proves are taken.
func reachableStmts(m *ir.Method, g *dataflow.StmtGraph, cp *dataflow.Result[*lattice.CPFact]) map[ir.Stmt]bool {
	seen := map[ir.Stmt]bool{}
	entry := g.Entry()
	if entry == nil {
		return seen
	}
	queue := []ir.Stmt{entry}
	seen[entry] = true

	blockOf := map[ir.Stmt]*ir.BasicBlock{}
	for _, b := range m.Blocks {
		for _, s := range b.Stmts {
			blockOf[s] = b
		}
	}

	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]

		var succs []ir.Stmt
		switch st := s.(type) {
		case *ir.If:
			succs = ifSuccessors(st, s, blockOf[s], g, cp)
		case *ir.Switch:
			succs = switchSuccessors(st, s, g, cp)
		default:
			succs = g.Succs(s)
		}
		for _, succ := range succs {
			if succ != nil && !seen[succ] {
				seen[succ] = true
				queue = append(queue, succ)
			}
		}
	}
	return seen
}

func ifSuccessors(st *ir.If, s ir.Stmt, b *ir.BasicBlock, g *dataflow.StmtGraph, cp *dataflow.Result[*lattice.CPFact]) []ir.Stmt {
	all := g.Succs(s)
	if b == nil || b.IfTrue == nil || b.IfFalse == nil {
		return all
	}
	val := lattice.Evaluate(st.Cond, cp.Out[s], nil)
	trueTarget := firstStmt(b.IfTrue)
	falseTarget := firstStmt(b.IfFalse)
	if val.IsConst() {
		if val.ConstValue() != 0 {
			return filterTo(all, trueTarget)
		}
		return filterTo(all, falseTarget)
	}
	return all
}

func switchSuccessors(st *ir.Switch, s ir.Stmt, g *dataflow.StmtGraph, cp *dataflow.Result[*lattice.CPFact]) []ir.Stmt {
	all := g.Succs(s)
	val := cp.Out[s].Get(st.Var)
	if !val.IsConst() {
		return all
	}
	c := val.ConstValue()
	for _, sc := range st.Cases {
		if sc.Value == c {
			return filterTo(all, firstStmt(sc.Target))
		}
	}
	return filterTo(all, firstStmt(st.DefaultTarget))
}

func firstStmt(b *ir.BasicBlock) ir.Stmt {
	if b == nil || len(b.Stmts) == 0 {
		return nil
	}
	return b.Stmts[0]
}

func filterTo(all []ir.Stmt, target ir.Stmt) []ir.Stmt {
	if target == nil {
		return all
	}
	for _, s := range all {
		if s == target {
			return []ir.Stmt{target}
		}
	}
	return nil
}

// sideEffectFree reports whether an AssignStmt's RHS has no side
// effects reaching beyond its own evaluation: NewExp,
// CastExp, any FieldAccess, any ArrayAccess, and division/remainder are
// excluded (their evaluation can allocate, fault, or observe aliasable
// state, so removing a dead assignment to them would be unsound).
func sideEffectFree(e ir.RValue) bool {
	switch v := e.(type) {
	case ir.NewExp, ir.CastExp, ir.FieldAccess, ir.ArrayAccess:
		return false
	case ir.BinaryExp:
		if v.Op.IsDivOrRem() {
			return false
		}
		return sideEffectFree(v.A) && sideEffectFree(v.B)
	default:
		return true
	}
}

func sortByIndex(stmts []ir.Stmt) {
	sort.Slice(stmts, func(i, j int) bool { return stmts[i].Index() < stmts[j].Index() })
}
