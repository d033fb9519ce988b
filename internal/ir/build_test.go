package ir

import "testing"

// buildIfMethod builds:
//
//	entry: if x > 0 goto then else els
//	then:  y = 1; goto exit
//	els:   y = 2; goto exit
//	exit:  return y
func buildIfMethod() (*Method, *Var, *Var) {
	b := NewMethodBuilder("C", "m", "m(int)", []*Type{TypeInt}, TypeInt, true)
	x := b.Param("x", TypeInt)

	entry := b.NewBlock()
	then := b.NewBlock()
	els := b.NewBlock()
	exit := b.NewBlock()

	b.SetCurrent(entry)
	b.IfStmt(BinaryExp{Op: OpGt, A: VarRef{V: x}, B: IntLiteral{Value: 0}})
	b.IfEdges(then, els)

	var y *Var
	b.SetCurrent(then)
	y = b.NewVar("y", TypeInt)
	b.Assign(y, IntLiteral{Value: 1})
	b.Jump(exit)

	b.SetCurrent(els)
	b.Assign(y, IntLiteral{Value: 2})
	b.Jump(exit)

	b.SetCurrent(exit)
	b.ReturnStmt(y)

	return b.Finish(), x, y
}

func TestBuilderEntryAndExit(t *testing.T) {
	m, _, _ := buildIfMethod()
	if m.Entry == nil {
		t.Fatal("method has no entry block")
	}
	if m.Exit == nil {
		t.Fatal("Finish should attach a synthetic exit block")
	}
	if len(m.Exit.Preds) == 0 {
		t.Fatal("exit block should be reachable from the method's return-ending blocks")
	}
}

func TestBuilderIfEdgesClassified(t *testing.T) {
	m, _, _ := buildIfMethod()
	entry := m.Blocks[0]
	if entry.IfTrue == nil || entry.IfFalse == nil {
		t.Fatal("If-ending block should classify IfTrue/IfFalse")
	}
	if entry.IfTrue == entry.IfFalse {
		t.Fatal("IfTrue and IfFalse should be distinct blocks")
	}
}

func TestAllStmtsOrder(t *testing.T) {
	m, _, _ := buildIfMethod()
	stmts := m.AllStmts()
	if len(stmts) == 0 {
		t.Fatal("expected statements")
	}
	for i := 1; i < len(stmts); i++ {
		if stmts[i].Index() <= stmts[i-1].Index() {
			t.Fatalf("AllStmts not in index order at %d", i)
		}
	}
}

func TestVarsInRecordsUses(t *testing.T) {
	m, x, _ := buildIfMethod()
	var ifStmt *If
	for _, s := range m.AllStmts() {
		if v, ok := s.(*If); ok {
			ifStmt = v
		}
	}
	if ifStmt == nil {
		t.Fatal("expected an If statement")
	}
	uses := ifStmt.Uses()
	if len(uses) != 1 || uses[0] != x {
		t.Fatalf("If.Uses() = %v, want [x]", uses)
	}
}

func TestCanHoldInt(t *testing.T) {
	if !TypeInt.CanHoldInt() || !TypeBoolean.CanHoldInt() {
		t.Error("int/boolean should canHoldInt")
	}
	if RefType("C").CanHoldInt() || ArrayOf(TypeInt).CanHoldInt() {
		t.Error("reference/array types should not canHoldInt")
	}
}
