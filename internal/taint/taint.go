// Package taint implements taint-propagation analysis: configured
// Source/Sink/Transfer entries integrated into the context-sensitive
// pointer analysis (internal/pointer) at its three hooks, producing a
// deterministically ordered set of TaintFlows.
package taint

import (
	"sort"

	"github.com/lmysuzi/static-software-analysis/internal/config"
	"github.com/lmysuzi/static-software-analysis/internal/context"
	"github.com/lmysuzi/static-software-analysis/internal/heap"
	"github.com/lmysuzi/static-software-analysis/internal/ir"
	"github.com/lmysuzi/static-software-analysis/internal/pointer"
)

// Flow is one confirmed source-to-sink taint flow.
type Flow struct {
	Source     *ir.Invoke
	Sink       *ir.Invoke
	ParamIndex int
}

// Analysis is a pointer.Hooks implementation: it injects source taint
// objects and propagates configured transfers as the CS-PTA worklist
// discovers call edges (hooks 1 and 2), then walks every reachable call
// site at onFinish to collect sink flows (hook 3).
type Analysis struct {
	cfg   *config.Taint
	tm    *heap.TaintManager
	flows []Flow
}

// New returns a taint Analysis ready to be passed as pointer.SolveCS's
// Hooks argument.
func New(cfg *config.Taint, hm *heap.Model) *Analysis {
	return &Analysis{cfg: cfg, tm: heap.NewTaintManager(hm)}
}

// OnCall is hook 1 (source injection) and hook 2 (transfer
// propagation), run once per newly discovered (caller, site, callee)
// call-graph edge. Transfer propagation reads the live points-to
// snapshot of the transfer's From endpoint at the moment the edge is
// resolved; it does not re-fire if that endpoint's points-to set grows
// afterward (documented scope simplification, see DESIGN.md).
func (a *Analysis) OnCall(caller pointer.CSMethod, site *ir.Invoke, callee pointer.CSMethod, pointsTo func(pointer.CSVar) []pointer.CSObj) []pointer.TaintPush {
	var pushes []pointer.TaintPush

	for _, src := range a.cfg.Sources {
		if src.Signature == site.Ref.Subsig && site.LValue != nil {
			obj := a.tm.Make(site, src.ReturnType)
			pushes = append(pushes, pointer.TaintPush{
				V:   pointer.CSVar{Ctx: caller.Ctx, X: site.LValue},
				Obj: pointer.CSObj{Ctx: context.Empty(), X: obj},
			})
		}
	}

	for _, xf := range a.cfg.TransfersFor(site.Ref.Subsig) {
		fromVar, ok := endVar(site, xf.From, caller.Ctx)
		if !ok {
			continue
		}
		toVar, ok := endVar(site, xf.To, caller.Ctx)
		if !ok {
			continue
		}
		for _, obj := range pointsTo(fromVar) {
			if !heap.IsTaint(obj.X) {
				continue
			}
			retyped := a.tm.Make(obj.X.Taint.SourceCallSite, xf.Type)
			pushes = append(pushes, pointer.TaintPush{
				V:   toVar,
				Obj: pointer.CSObj{Ctx: context.Empty(), X: retyped},
			})
		}
	}

	return pushes
}

// endVar resolves a transfer/sink endpoint to the concrete CSVar it
// names at a call site: BASE is the receiver, RESULT is the call's
// lvalue, an argument index is the corresponding actual argument.
func endVar(site *ir.Invoke, e config.End, ctx context.Context) (pointer.CSVar, bool) {
	switch e.Kind {
	case config.EndBase:
		if site.Receiver == nil {
			return pointer.CSVar{}, false
		}
		return pointer.CSVar{Ctx: ctx, X: site.Receiver}, true
	case config.EndResult:
		if site.LValue == nil {
			return pointer.CSVar{}, false
		}
		return pointer.CSVar{Ctx: ctx, X: site.LValue}, true
	default:
		if e.ArgIndex < 0 || e.ArgIndex >= len(site.Args) {
			return pointer.CSVar{}, false
		}
		return pointer.CSVar{Ctx: ctx, X: site.Args[e.ArgIndex]}, true
	}
}

// OnFinish is hook 3: walk every reachable call site, and for every
// configured Sink(m, i) matching a call, emit a Flow for every tainted
// object in pt(arg_i) — sorted into a deterministic order.
func (a *Analysis) OnFinish(result *pointer.CSResult) {
	seen := make(map[Flow]bool)
	for key, sites := range result.CallGraph.Sites {
		caller, ok := key.(pointer.CSMethod)
		if !ok {
			continue
		}
		for _, site := range sites {
			for _, sink := range a.cfg.SinksFor(site.Ref.Subsig) {
				if sink.ParamIndex < 0 || sink.ParamIndex >= len(site.Args) {
					continue
				}
				argVar := pointer.CSVar{Ctx: caller.Ctx, X: site.Args[sink.ParamIndex]}
				for _, obj := range result.PointsTo(argVar) {
					if !heap.IsTaint(obj.X) {
						continue
					}
					f := Flow{
						Source:     obj.X.Taint.SourceCallSite,
						Sink:       site,
						ParamIndex: sink.ParamIndex,
					}
					if seen[f] {
						continue
					}
					seen[f] = true
					a.flows = append(a.flows, f)
				}
			}
		}
	}
	sortFlows(a.flows)
}

// Flows returns the confirmed taint flows in deterministic order.
func (a *Analysis) Flows() []Flow { return a.flows }

func sortFlows(flows []Flow) {
	sort.Slice(flows, func(i, j int) bool {
		a, b := flows[i], flows[j]
		if a.Source.Index() != b.Source.Index() {
			return a.Source.Index() < b.Source.Index()
		}
		if a.Sink.Index() != b.Sink.Index() {
			return a.Sink.Index() < b.Sink.Index()
		}
		return a.ParamIndex < b.ParamIndex
	})
}
