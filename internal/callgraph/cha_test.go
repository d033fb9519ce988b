package callgraph

import (
	"testing"

	"github.com/lmysuzi/static-software-analysis/internal/hierarchy"
	"github.com/lmysuzi/static-software-analysis/internal/ir"
)

// buildLeafMethod returns a trivial concrete method belonging to class,
// implementing subsig with an empty body.
func buildLeafMethod(class, subsig string) *ir.Method {
	b := ir.NewMethodBuilder(class, "f", subsig, nil, ir.TypeVoid, false)
	b.This(class)
	b.NewBlock()
	b.ReturnStmt()
	return b.Finish()
}

// buildCaller returns a concrete method that virtually invokes subsig on
// a variable of static type declClass.
func buildCaller(class, subsig, declClass string) *ir.Method {
	b := ir.NewMethodBuilder(class, "caller", "caller()", nil, ir.TypeVoid, false)
	b.This(class)
	b.NewBlock()
	target := b.NewVar("t", ir.RefType(declClass))
	b.InvokeStmt(nil, ir.CallVirtual, ir.MethodRef{DeclClass: declClass, Subsig: subsig}, target, nil)
	b.ReturnStmt()
	return b.Finish()
}

func TestBuildCHAResolvesVirtualCallToAllOverriders(t *testing.T) {
	dogF := buildLeafMethod("Dog", "f()")
	catF := buildLeafMethod("Cat", "f()")
	caller := buildCaller("Main", "f()", "Animal")

	h := hierarchy.New([]*hierarchy.Class{
		{Name: "Animal", Methods: map[string]*ir.Method{}},
		{Name: "Dog", Super: "Animal", Methods: map[string]*ir.Method{"f()": dogF}},
		{Name: "Cat", Super: "Animal", Methods: map[string]*ir.Method{"f()": catF}},
		{Name: "Main", Methods: map[string]*ir.Method{"caller()": caller}},
	})

	g := BuildCHA(h, caller)

	if _, ok := g.Nodes[dogF]; !ok {
		t.Error("Dog.f() should be reachable")
	}
	if _, ok := g.Nodes[catF]; !ok {
		t.Error("Cat.f() should be reachable")
	}

	callerNode := g.Nodes[caller]
	var invoke *ir.Invoke
	for _, s := range caller.AllStmts() {
		if inv, ok := s.(*ir.Invoke); ok {
			invoke = inv
		}
	}
	callees := g.Callees(callerNode, invoke)
	if len(callees) != 2 {
		t.Errorf("CHA should resolve the virtual call to both overriders, got %d", len(callees))
	}
}

func TestBuildCHASkipsUnreachableMethods(t *testing.T) {
	caller := buildCaller("Main", "caller()", "Animal")
	unreachable := buildLeafMethod("Other", "g()")

	h := hierarchy.New([]*hierarchy.Class{
		{Name: "Animal", Methods: map[string]*ir.Method{}},
		{Name: "Main", Methods: map[string]*ir.Method{"caller()": caller}},
		{Name: "Other", Methods: map[string]*ir.Method{"g()": unreachable}},
	})

	g := BuildCHA(h, caller)
	if _, ok := g.Nodes[unreachable]; ok {
		t.Error("a method never invoked from the entry should not be in the reachable graph")
	}
}
