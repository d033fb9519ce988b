package pointer

import (
	"testing"

	"github.com/lmysuzi/static-software-analysis/internal/diag"
	"github.com/lmysuzi/static-software-analysis/internal/heap"
	"github.com/lmysuzi/static-software-analysis/internal/hierarchy"
	"github.com/lmysuzi/static-software-analysis/internal/ir"
)

// buildSpeakMethod returns a trivial no-arg instance method.
func buildSpeakMethod(class string) *ir.Method {
	b := ir.NewMethodBuilder(class, "speak", "speak()", nil, ir.TypeVoid, false)
	b.This(class)
	b.NewBlock()
	b.ReturnStmt()
	return b.Finish()
}

// buildMainField builds:
//
//	main():
//	  box = new Box
//	  dog = new Dog
//	  box.f = dog
//	  loaded = box.f
//	  dog.speak() [virtual]
func buildMainField(fField *ir.Field) (*ir.Method, *ir.Var, *ir.Var, *ir.Invoke) {
	b := ir.NewMethodBuilder("Main", "main", "main()", nil, ir.TypeVoid, true)
	b.NewBlock()
	box := b.NewVar("box", ir.RefType("Box"))
	dog := b.NewVar("dog", ir.RefType("Dog"))
	loaded := b.NewVar("loaded", ir.RefType("Animal"))
	b.New(box, ir.RefType("Box"))
	b.New(dog, ir.RefType("Dog"))
	b.StoreField(box, fField, dog)
	b.LoadField(loaded, box, fField)
	inv := b.InvokeStmt(nil, ir.CallVirtual, ir.MethodRef{DeclClass: "Animal", Subsig: "speak()"}, dog, nil)
	b.ReturnStmt()
	return b.Finish(), box, loaded, inv
}

func TestSolveCIFieldFlowAndVirtualDispatch(t *testing.T) {
	fField := &ir.Field{DeclClass: "Box", Name: "f", Type: ir.RefType("Animal")}
	dogSpeak := buildSpeakMethod("Dog")
	main, box, loaded, inv := buildMainField(fField)

	h := hierarchy.New([]*hierarchy.Class{
		{Name: "Animal", IsInterface: true, Methods: map[string]*ir.Method{}},
		{Name: "Dog", Interfaces: []string{"Animal"}, Methods: map[string]*ir.Method{"speak()": dogSpeak}},
		{Name: "Box", Methods: map[string]*ir.Method{}},
		{Name: "Main", Methods: map[string]*ir.Method{"main()": main}},
	})

	result := SolveCI(h, heap.NewModel(), main, diag.Discard)

	boxPts := result.PointsTo(box)
	if len(boxPts) != 1 {
		t.Fatalf("box should point to exactly one Box object, got %d", len(boxPts))
	}
	fieldPts := result.PointsToField(boxPts[0], fField)
	if len(fieldPts) != 1 || fieldPts[0].Type.ClassName != "Dog" {
		t.Fatalf("box.f should point to the Dog object, got %v", fieldPts)
	}

	loadedPts := result.PointsTo(loaded)
	if len(loadedPts) != 1 || loadedPts[0].Type.ClassName != "Dog" {
		t.Errorf("loaded = box.f should resolve to the Dog object via field flow, got %v", loadedPts)
	}

	mainNode := result.CallGraph.Nodes[main]
	callees := result.CallGraph.Callees(mainNode, inv)
	if len(callees) != 1 || callees[0].Key != dogSpeak {
		t.Errorf("virtual call should dispatch to Dog.speak() once dog's points-to set is known, got %v", callees)
	}
}

func TestSolveCIMissingDispatchTargetLogsAndContinues(t *testing.T) {
	b := ir.NewMethodBuilder("Main", "main", "main()", nil, ir.TypeVoid, true)
	b.NewBlock()
	b.InvokeStmt(nil, ir.CallStatic, ir.MethodRef{DeclClass: "Missing", Subsig: "f()"}, nil, nil)
	b.ReturnStmt()
	main := b.Finish()

	h := hierarchy.New([]*hierarchy.Class{
		{Name: "Main", Methods: map[string]*ir.Method{"main()": main}},
	})

	result := SolveCI(h, heap.NewModel(), main, diag.Discard)
	if _, ok := result.CallGraph.Nodes[main]; !ok {
		t.Fatal("main should still be reachable even though its only call is unresolvable")
	}
}
