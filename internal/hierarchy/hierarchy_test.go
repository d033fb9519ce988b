package hierarchy

import (
	"testing"

	"github.com/lmysuzi/static-software-analysis/internal/ir"
)

func declaredMethod(class, subsig string, abstract bool) *ir.Method {
	b := ir.NewMethodBuilder(class, "f", subsig, nil, ir.TypeVoid, false)
	if !abstract {
		b.This(class)
		b.NewBlock()
		b.ReturnStmt()
		return b.Finish()
	}
	m := b.Method()
	m.IsAbstract = true
	return m
}

func TestDispatchFindsDirectDeclaration(t *testing.T) {
	base := declaredMethod("Base", "f()", false)
	h := New([]*Class{
		{Name: "Base", Methods: map[string]*ir.Method{"f()": base}},
	})
	if got := h.Dispatch("Base", "f()"); got != base {
		t.Errorf("Dispatch(Base, f()) = %v, want Base's own f()", got)
	}
}

func TestDispatchAscendsPastAbstract(t *testing.T) {
	abstractF := declaredMethod("Base", "f()", true)
	concreteF := declaredMethod("Mid", "f()", false)

	h := New([]*Class{
		{Name: "Base", Methods: map[string]*ir.Method{"f()": abstractF}},
		{Name: "Mid", Super: "Base", Methods: map[string]*ir.Method{"f()": concreteF}},
		{Name: "Leaf", Super: "Mid", Methods: map[string]*ir.Method{}},
	})

	if got := h.Dispatch("Leaf", "f()"); got != concreteF {
		t.Errorf("Dispatch(Leaf, f()) = %v, want Mid's concrete f()", got)
	}
}

func TestDispatchMissingTargetIsNil(t *testing.T) {
	h := New([]*Class{{Name: "Lonely", Methods: map[string]*ir.Method{}}})
	if got := h.Dispatch("Lonely", "missing()"); got != nil {
		t.Errorf("Dispatch for an undeclared method = %v, want nil", got)
	}
	if got := h.Dispatch("DoesNotExist", "f()"); got != nil {
		t.Errorf("Dispatch on an unknown class = %v, want nil", got)
	}
}

func TestDirectSubtypeQueries(t *testing.T) {
	h := New([]*Class{
		{Name: "Animal"},
		{Name: "Dog", Super: "Animal"},
		{Name: "Cat", Super: "Animal"},
		{Name: "Runnable", IsInterface: true},
		{Name: "Dog2", Interfaces: []string{"Runnable"}},
	})

	subs := h.DirectSubclassesOf("Animal")
	if len(subs) != 2 {
		t.Errorf("DirectSubclassesOf(Animal) = %v, want 2 entries", subs)
	}
	impls := h.DirectImplementorsOf("Runnable")
	if len(impls) != 1 || impls[0] != "Dog2" {
		t.Errorf("DirectImplementorsOf(Runnable) = %v, want [Dog2]", impls)
	}
}
