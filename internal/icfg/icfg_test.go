package icfg

import (
	"testing"

	"github.com/lmysuzi/static-software-analysis/internal/callgraph"
	"github.com/lmysuzi/static-software-analysis/internal/hierarchy"
	"github.com/lmysuzi/static-software-analysis/internal/ir"
)

// buildCallee returns a trivial static method: callee() { return; }
func buildCallee() *ir.Method {
	b := ir.NewMethodBuilder("Util", "callee", "callee()", nil, ir.TypeVoid, true)
	b.NewBlock()
	b.ReturnStmt()
	return b.Finish()
}

// buildCaller returns: caller() { callee(); return; }
func buildCaller() (*ir.Method, *ir.Invoke) {
	b := ir.NewMethodBuilder("Util", "caller", "caller()", nil, ir.TypeVoid, true)
	b.NewBlock()
	inv := b.InvokeStmt(nil, ir.CallStatic, ir.MethodRef{DeclClass: "Util", Subsig: "callee()"}, nil, nil)
	b.ReturnStmt()
	return b.Finish(), inv
}

func TestOutEdgesClassifiesCallSite(t *testing.T) {
	callee := buildCallee()
	caller, site := buildCaller()

	h := hierarchy.New([]*hierarchy.Class{
		{Name: "Util", Methods: map[string]*ir.Method{
			"callee()": callee,
			"caller()": caller,
		}},
	})
	cg := callgraph.BuildCHA(h, caller)
	g := Build([]*ir.Method{caller, callee}, cg)

	edges := g.OutEdges(site)
	var sawCall, sawCallToReturn bool
	for _, e := range edges {
		switch e.Kind {
		case Call:
			sawCall = true
			if e.To != g.Entry(callee) {
				t.Errorf("Call edge should land on callee's entry statement")
			}
		case CallToReturn:
			sawCallToReturn = true
		default:
			t.Errorf("unexpected edge kind %v out of a call site", e.Kind)
		}
	}
	if !sawCall {
		t.Error("expected a Call edge out of the invocation")
	}
	if !sawCallToReturn {
		t.Error("expected a CallToReturn edge out of the invocation")
	}
}

func TestInEdgesIncludesReturnEdge(t *testing.T) {
	callee := buildCallee()
	caller, site := buildCaller()

	h := hierarchy.New([]*hierarchy.Class{
		{Name: "Util", Methods: map[string]*ir.Method{
			"callee()": callee,
			"caller()": caller,
		}},
	})
	cg := callgraph.BuildCHA(h, caller)
	g := Build([]*ir.Method{caller, callee}, cg)

	var afterSite ir.Stmt
	for _, s := range caller.AllStmts() {
		if s.Index() > site.Index() {
			afterSite = s
			break
		}
	}
	if afterSite == nil {
		t.Fatal("expected a statement after the call site")
	}

	var sawReturn, sawCallToReturn bool
	for _, e := range g.InEdges(afterSite) {
		switch e.Kind {
		case Return:
			sawReturn = true
			if e.Site != site {
				t.Errorf("Return edge Site = %v, want the original call site", e.Site)
			}
		case CallToReturn:
			sawCallToReturn = true
		}
	}
	if !sawReturn {
		t.Error("expected a Return edge from callee() back to the statement after the call site")
	}
	if !sawCallToReturn {
		t.Error("expected a CallToReturn edge alongside the Return edge")
	}
}

func TestOwnerOfAndAllStmts(t *testing.T) {
	callee := buildCallee()
	caller, _ := buildCaller()

	h := hierarchy.New([]*hierarchy.Class{
		{Name: "Util", Methods: map[string]*ir.Method{
			"callee()": callee,
			"caller()": caller,
		}},
	})
	cg := callgraph.BuildCHA(h, caller)
	g := Build([]*ir.Method{caller, callee}, cg)

	for _, s := range caller.AllStmts() {
		if g.OwnerOf(s) != caller {
			t.Errorf("OwnerOf(%v) = %v, want caller", s, g.OwnerOf(s))
		}
	}
	if len(g.AllStmts()) != len(caller.AllStmts())+len(callee.AllStmts()) {
		t.Error("AllStmts should cover every method's statements")
	}
}
