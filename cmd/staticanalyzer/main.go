// Command staticanalyzer is the CLI front end wiring the configured
// options to a run of CHA, the requested pointer-analysis variant,
// inter-procedural constant propagation, taint analysis and
// dead-code detection, printing the result sink's contents to
// stdout. It is pure plumbing, using only the stdlib flag package for
// argument parsing, the way capslock's own driver does.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/lmysuzi/static-software-analysis/internal/callgraph"
	"github.com/lmysuzi/static-software-analysis/internal/config"
	"github.com/lmysuzi/static-software-analysis/internal/context"
	"github.com/lmysuzi/static-software-analysis/internal/dataflow"
	"github.com/lmysuzi/static-software-analysis/internal/deadcode"
	"github.com/lmysuzi/static-software-analysis/internal/diag"
	"github.com/lmysuzi/static-software-analysis/internal/heap"
	"github.com/lmysuzi/static-software-analysis/internal/hierarchy"
	"github.com/lmysuzi/static-software-analysis/internal/icfg"
	"github.com/lmysuzi/static-software-analysis/internal/interconstprop"
	"github.com/lmysuzi/static-software-analysis/internal/ir"
	"github.com/lmysuzi/static-software-analysis/internal/pointer"
	"github.com/lmysuzi/static-software-analysis/internal/result"
	"github.com/lmysuzi/static-software-analysis/internal/ssaimport"
	"github.com/lmysuzi/static-software-analysis/internal/taint"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a JSON options file ( Options); required")
		pattern    = flag.String("pkg", "", "go/packages load pattern of the program to analyze")
		entry      = flag.String("entry", "main", "name of the entry function to analyze")
		verbose    = flag.Bool("v", false, "enable debug logging")
		jsonOut    = flag.Bool("json", false, "print the result sink as JSON instead of text")
	)
	flag.Parse()

	if *configPath == "" || *pattern == "" {
		fmt.Fprintln(os.Stderr, "usage: staticanalyzer -config=opts.json -pkg=./... [-entry=main] [-v] [-json]")
		os.Exit(2)
	}

	var log *diag.Logger
	if *verbose {
		log = diag.NewLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	} else {
		log = diag.Discard
	}

	opts, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "staticanalyzer:", err)
		os.Exit(1)
	}

	prog, err := ssaimport.Load(*pattern, *entry, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "staticanalyzer:", err)
		os.Exit(1)
	}

	sink := run(opts, prog, log)

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		doc := map[string]any{}
		for _, id := range sink.IDs() {
			doc[id] = fmt.Sprintf("%v", mustGet(sink, id))
		}
		if err := enc.Encode(doc); err != nil {
			fmt.Fprintln(os.Stderr, "staticanalyzer:", err)
			os.Exit(1)
		}
		return
	}
	for _, id := range sink.IDs() {
		v, _ := sink.Get(id)
		fmt.Printf("%s: %v\n", id, v)
	}
}

func mustGet(s *result.Sink, id string) any {
	v, _ := s.Get(id)
	return v
}

// run drives class-hierarchy analysis, pointer analysis, inter-
// procedural constant propagation, taint analysis and dead-code
// detection in sequence over prog, publishing every intermediate
// result to a result.Sink.
func run(opts *config.Options, prog *ssaimport.Program, log *diag.Logger) *result.Sink {
	sink := result.NewSink()

	h := hierarchy.New(prog.Classes)
	sink.Put("cha", callgraph.BuildCHA(h, prog.Entry))

	var (
		ciResult *pointer.CIResult
		ciGraph  *callgraph.Graph
		tflows   []taint.Flow
	)

	switch opts.PTAVariantOrDefault() {
	case "ci":
		ciResult = pointer.SolveCI(h, heap.NewModel(), prog.Entry, log)
		ciGraph = ciResult.CallGraph
		sink.Put("pta-ci", ciResult)
	default:
		hm := heap.NewModel()
		cfg := opts.Taint.Build(log)
		ta := taint.New(cfg, hm)
		sel := context.OneCallSelector{}
		csResult := pointer.SolveCS(h, hm, sel, prog.Entry, ta, log)
		sink.Put("pta-cs", csResult)
		tflows = ta.Flows()
		sink.Put("taint", tflows)

		// Inter-procedural constant propagation consumes a
		// context-insensitive PTA result; run CI-PTA separately so it
		// never has to reason about contexts.
		ciResult = pointer.SolveCI(h, heap.NewModel(), prog.Entry, log)
		ciGraph = ciResult.CallGraph
	}

	g := icfg.Build(methodsOf(prog.Classes), ciGraph)
	icp := interconstprop.Solve(g, ciResult, prog.Entry)
	sink.Put("inter-constprop", icp)

	dead := map[*ir.Method][]ir.Stmt{}
	for _, c := range prog.Classes {
		for _, m := range c.Methods {
			if m.IsAbstract {
				continue
			}
			sg := dataflow.BuildStmtGraph(m)
			cp := dataflow.Solve(m, sg, dataflow.ConstProp)
			live := dataflow.Solve(m, sg, dataflow.LiveVars)
			if ds := deadcode.Detect(m, sg, cp, live); len(ds) > 0 {
				dead[m] = ds
			}
		}
	}
	sink.Put("deadcode", dead)

	return sink
}

func methodsOf(classes []*hierarchy.Class) []*ir.Method {
	var out []*ir.Method
	for _, c := range classes {
		for _, m := range c.Methods {
			if !m.IsAbstract {
				out = append(out, m)
			}
		}
	}
	return out
}
