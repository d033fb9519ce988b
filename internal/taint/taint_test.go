package taint

import (
	"testing"

	"github.com/lmysuzi/static-software-analysis/internal/config"
	"github.com/lmysuzi/static-software-analysis/internal/context"
	"github.com/lmysuzi/static-software-analysis/internal/diag"
	"github.com/lmysuzi/static-software-analysis/internal/heap"
	"github.com/lmysuzi/static-software-analysis/internal/hierarchy"
	"github.com/lmysuzi/static-software-analysis/internal/ir"
	"github.com/lmysuzi/static-software-analysis/internal/pointer"
)

func buildSourceSinkScenario() (source, sink, main *ir.Method, sourceInv, sinkInv *ir.Invoke) {
	sb := ir.NewMethodBuilder("Main", "source", "source()", nil, ir.RefType("String"), true)
	sb.NewBlock()
	sb.ReturnStmt()
	source = sb.Finish()

	kb := ir.NewMethodBuilder("Main", "sink", "sink(String)", []*ir.Type{ir.RefType("String")}, ir.TypeVoid, true)
	kb.Param("s", ir.RefType("String"))
	kb.NewBlock()
	kb.ReturnStmt()
	sink = kb.Finish()

	mb := ir.NewMethodBuilder("Main", "main", "main()", nil, ir.TypeVoid, true)
	mb.NewBlock()
	s := mb.NewVar("s", ir.RefType("String"))
	sourceInv = mb.InvokeStmt(s, ir.CallStatic, ir.MethodRef{DeclClass: "Main", Subsig: "source()"}, nil, nil)
	sinkInv = mb.InvokeStmt(nil, ir.CallStatic, ir.MethodRef{DeclClass: "Main", Subsig: "sink(String)"}, nil, []*ir.Var{s})
	mb.ReturnStmt()
	main = mb.Finish()
	return
}

func buildHierarchy(source, sink, main *ir.Method) *hierarchy.Hierarchy {
	return hierarchy.New([]*hierarchy.Class{
		{Name: "Main", Methods: map[string]*ir.Method{
			"source()":     source,
			"sink(String)": sink,
			"main()":       main,
		}},
	})
}

func TestTaintFlowsFromSourceToSink(t *testing.T) {
	source, sink, main, sourceInv, sinkInv := buildSourceSinkScenario()
	h := buildHierarchy(source, sink, main)

	cfg := config.TaintConfig{
		Sources: []config.SourceSpec{{Method: "source()", ReturnType: "String"}},
		Sinks:   []config.SinkSpec{{Method: "sink(String)", ParamIndex: 0}},
	}.Build(diag.Discard)

	hm := heap.NewModel()
	ta := New(cfg, hm)
	pointer.SolveCS(h, hm, context.OneCallSelector{}, main, ta, diag.Discard)

	flows := ta.Flows()
	if len(flows) != 1 {
		t.Fatalf("expected exactly one flow, got %d", len(flows))
	}
	f := flows[0]
	if f.Source != sourceInv || f.Sink != sinkInv || f.ParamIndex != 0 {
		t.Errorf("flow = %+v, want Source=%v Sink=%v ParamIndex=0", f, sourceInv, sinkInv)
	}
}

// buildTransferScenario builds source() -> s; t = s.wrap(); sink(t),
// where wrap is an instance method configured as a BASE->RESULT
// transfer, so the sink only sees a flow if the taint analysis
// actually retypes the object across the transfer call.
func buildTransferScenario() (source, wrap, sink, main *ir.Method, sourceInv, wrapInv, sinkInv *ir.Invoke) {
	sb := ir.NewMethodBuilder("Main", "source", "source()", nil, ir.RefType("Tainted"), true)
	sb.NewBlock()
	sb.ReturnStmt()
	source = sb.Finish()

	wb := ir.NewMethodBuilder("Tainted", "wrap", "wrap()", nil, ir.RefType("Wrapped"), false)
	wb.This("Tainted")
	wb.NewBlock()
	wb.ReturnStmt()
	wrap = wb.Finish()

	kb := ir.NewMethodBuilder("Main", "sink", "sink(Wrapped)", []*ir.Type{ir.RefType("Wrapped")}, ir.TypeVoid, true)
	kb.Param("w", ir.RefType("Wrapped"))
	kb.NewBlock()
	kb.ReturnStmt()
	sink = kb.Finish()

	mb := ir.NewMethodBuilder("Main", "main", "main()", nil, ir.TypeVoid, true)
	mb.NewBlock()
	s := mb.NewVar("s", ir.RefType("Tainted"))
	t := mb.NewVar("t", ir.RefType("Wrapped"))
	sourceInv = mb.InvokeStmt(s, ir.CallStatic, ir.MethodRef{DeclClass: "Main", Subsig: "source()"}, nil, nil)
	wrapInv = mb.InvokeStmt(t, ir.CallVirtual, ir.MethodRef{DeclClass: "Tainted", Subsig: "wrap()"}, s, nil)
	sinkInv = mb.InvokeStmt(nil, ir.CallStatic, ir.MethodRef{DeclClass: "Main", Subsig: "sink(Wrapped)"}, nil, []*ir.Var{t})
	mb.ReturnStmt()
	main = mb.Finish()
	return
}

func TestTaintFlowsThroughTransfer(t *testing.T) {
	source, wrap, sink, main, sourceInv, _, sinkInv := buildTransferScenario()
	h := hierarchy.New([]*hierarchy.Class{
		{Name: "Main", Methods: map[string]*ir.Method{
			"source()":      source,
			"sink(Wrapped)": sink,
			"main()":        main,
		}},
		{Name: "Tainted", Methods: map[string]*ir.Method{"wrap()": wrap}},
	})

	cfg := config.TaintConfig{
		Sources: []config.SourceSpec{{Method: "source()", ReturnType: "Tainted"}},
		Sinks:   []config.SinkSpec{{Method: "sink(Wrapped)", ParamIndex: 0}},
		Transfers: []config.TransferSpec{
			{Method: "wrap()", From: "BASE", To: "RESULT", Type: "Wrapped"},
		},
	}.Build(diag.Discard)

	hm := heap.NewModel()
	ta := New(cfg, hm)
	pointer.SolveCS(h, hm, context.OneCallSelector{}, main, ta, diag.Discard)

	flows := ta.Flows()
	if len(flows) != 1 {
		t.Fatalf("expected exactly one flow through the transfer, got %d: %+v", len(flows), flows)
	}
	f := flows[0]
	if f.Source != sourceInv || f.Sink != sinkInv || f.ParamIndex != 0 {
		t.Errorf("flow = %+v, want Source=%v Sink=%v ParamIndex=0", f, sourceInv, sinkInv)
	}
}

func TestTaintNoFlowWhenSinkNotConfigured(t *testing.T) {
	source, sink, main, _, _ := buildSourceSinkScenario()
	h := buildHierarchy(source, sink, main)

	cfg := config.TaintConfig{
		Sources: []config.SourceSpec{{Method: "source()", ReturnType: "String"}},
	}.Build(diag.Discard)

	hm := heap.NewModel()
	ta := New(cfg, hm)
	pointer.SolveCS(h, hm, context.OneCallSelector{}, main, ta, diag.Discard)

	if len(ta.Flows()) != 0 {
		t.Errorf("expected no flows when no sink is configured, got %v", ta.Flows())
	}
}
