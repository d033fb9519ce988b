package interconstprop

import (
	"testing"

	"github.com/lmysuzi/static-software-analysis/internal/diag"
	"github.com/lmysuzi/static-software-analysis/internal/heap"
	"github.com/lmysuzi/static-software-analysis/internal/hierarchy"
	"github.com/lmysuzi/static-software-analysis/internal/icfg"
	"github.com/lmysuzi/static-software-analysis/internal/ir"
	"github.com/lmysuzi/static-software-analysis/internal/pointer"
)

// buildSetter builds: setter(Box box, int v) { box.f = v; return; }
func buildSetter(f *ir.Field) *ir.Method {
	b := ir.NewMethodBuilder("Main", "setter", "setter(Box,int)", []*ir.Type{ir.RefType("Box"), ir.TypeInt}, ir.TypeVoid, true)
	box := b.Param("box", ir.RefType("Box"))
	v := b.Param("v", ir.TypeInt)
	b.NewBlock()
	b.StoreField(box, f, v)
	b.ReturnStmt()
	return b.Finish()
}

// buildMain builds:
//
//	main() {
//	  b = new Box
//	  v = 42
//	  setter(b, v)
//	  r = b.f
//	  return r
//	}
func buildMain(f *ir.Field) (*ir.Method, *ir.LoadField) {
	b := ir.NewMethodBuilder("Main", "main", "main()", nil, ir.TypeInt, true)
	b.NewBlock()
	box := b.NewVar("b", ir.RefType("Box"))
	v := b.NewVar("v", ir.TypeInt)
	r := b.NewVar("r", ir.TypeInt)
	b.New(box, ir.RefType("Box"))
	b.Assign(v, ir.IntLiteral{Value: 42})
	b.InvokeStmt(nil, ir.CallStatic, ir.MethodRef{DeclClass: "Main", Subsig: "setter(Box,int)"}, nil, []*ir.Var{box, v})
	load := b.LoadField(r, box, f)
	b.ReturnStmt(r)
	return b.Finish(), load
}

func TestSolvePropagatesConstThroughInstanceField(t *testing.T) {
	f := &ir.Field{DeclClass: "Box", Name: "f", Type: ir.TypeInt}
	setter := buildSetter(f)
	main, load := buildMain(f)

	h := hierarchy.New([]*hierarchy.Class{
		{Name: "Box", Methods: map[string]*ir.Method{}},
		{Name: "Main", Methods: map[string]*ir.Method{
			"setter(Box,int)": setter,
			"main()":          main,
		}},
	})

	pta := pointer.SolveCI(h, heap.NewModel(), main, diag.Discard)
	methods := []*ir.Method{main, setter}
	g := icfg.Build(methods, pta.CallGraph)
	res := Solve(g, pta, main)

	got := res.Out[load].Get(load.LValue)
	if !got.IsConst() || got.ConstValue() != 42 {
		t.Errorf("r = b.f after setter(b, 42) = %v, want CONST(42)", got)
	}
}

func TestSolveBoundaryNACForIntParam(t *testing.T) {
	f := &ir.Field{DeclClass: "Box", Name: "f", Type: ir.TypeInt}
	setter := buildSetter(f)
	main, _ := buildMain(f)

	h := hierarchy.New([]*hierarchy.Class{
		{Name: "Box", Methods: map[string]*ir.Method{}},
		{Name: "Main", Methods: map[string]*ir.Method{
			"setter(Box,int)": setter,
			"main()":          main,
		}},
	})

	pta := pointer.SolveCI(h, heap.NewModel(), main, diag.Discard)
	methods := []*ir.Method{main, setter}
	g := icfg.Build(methods, pta.CallGraph)
	res := Solve(g, pta, setter)

	entry := g.Entry(setter)
	if res.In[entry] == nil {
		t.Fatal("expected an IN fact at the entry statement")
	}
	if got := res.In[entry].Get(setter.Params[1]); !got.IsNAC() {
		t.Errorf("int parameter at setter's entry = %v, want NAC", got)
	}
}
