// Package config loads the options document: the taint
// source/sink/transfer table and the PTA-variant selection, loaded
// from JSON the way gosec's Config loads its rule settings — a plain
// struct tree decoded with encoding/json, no schema validation
// library.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/lmysuzi/static-software-analysis/internal/diag"
	"github.com/lmysuzi/static-software-analysis/internal/ir"
)

// Options is the top-level configuration document: which PTA
// variant downstream analyses should run against, plus the taint
// source/sink/transfer table.
type Options struct {
	PTAVariant string      `json:"ptaVariant"` // "ci" or "cs"; "" defaults to "cs"
	Taint      TaintConfig `json:"taint"`
}

// TaintConfig is the tabular taint configuration schema from
type TaintConfig struct {
	Sources   []SourceSpec   `json:"sources"`
	Sinks     []SinkSpec     `json:"sinks"`
	Transfers []TransferSpec `json:"transfers"`
}

type SourceSpec struct {
	Method     string `json:"method"`
	ReturnType string `json:"returnType"`
}

type SinkSpec struct {
	Method     string `json:"method"`
	ParamIndex int    `json:"paramIndex"`
}

// TransferSpec's From/To are "BASE", "RESULT", or a non-negative
// argument index encoded as a decimal string (e.g. "0").
type TransferSpec struct {
	Method string `json:"method"`
	From   string `json:"from"`
	To     string `json:"to"`
	Type   string `json:"type"`
}

// Load reads and decodes an Options document from path.
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var o Options
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &o, nil
}

// PTAVariantOrDefault reports the configured pointer-analysis variant, "ci" or
// "cs", defaulting to "cs" when unset.
func (o *Options) PTAVariantOrDefault() string {
	if o.PTAVariant == "" {
		return "cs"
	}
	return o.PTAVariant
}

// EndKind discriminates a transfer endpoint.
type EndKind uint8

const (
	EndBase EndKind = iota
	EndResult
	EndArg
)

// End is one endpoint of a resolved Transfer.
type End struct {
	Kind     EndKind
	ArgIndex int
}

func (e End) String() string {
	switch e.Kind {
	case EndBase:
		return "BASE"
	case EndResult:
		return "RESULT"
	default:
		return fmt.Sprintf("arg%d", e.ArgIndex)
	}
}

// Source, Sink and Transfer are the resolved (config-error-free) taint
// table entries the taint analysis consumes; they are matched against a
// call site by Signature == Invoke.Ref.Subsig ( "method signature"
// is taken to identify a method regardless of its declaring class,
// consistent with Java overload resolution already having happened
// upstream of this IR).
type Source struct {
	Signature  string
	ReturnType *ir.Type
}

type Sink struct {
	Signature  string
	ParamIndex int
}

type Transfer struct {
	Signature string
	From, To  End
	Type      *ir.Type
}

// Taint is the resolved taint table, built from TaintConfig by
// resolving each entry's From/To strings — unresolvable entries are
// reported and skipped rather than aborting the load (
// "Configuration error... report with location, skip the entry").
type Taint struct {
	Sources   []Source
	sinkBySig map[string][]Sink
	xferBySig map[string][]Transfer
}

// Build resolves t into a Taint table, logging and skipping any entry
// whose From/To cannot be parsed.
func (t TaintConfig) Build(log *diag.Logger) *Taint {
	if log == nil {
		log = diag.Discard
	}
	out := &Taint{
		sinkBySig: make(map[string][]Sink),
		xferBySig: make(map[string][]Transfer),
	}
	for _, s := range t.Sources {
		out.Sources = append(out.Sources, Source{Signature: s.Method, ReturnType: ir.RefType(s.ReturnType)})
	}
	for _, s := range t.Sinks {
		out.sinkBySig[s.Method] = append(out.sinkBySig[s.Method], Sink{Signature: s.Method, ParamIndex: s.ParamIndex})
	}
	for _, x := range t.Transfers {
		from, ok := parseEnd(x.From)
		if !ok {
			log.Warnf("config", "taint transfer for %s: unresolvable from-endpoint %q, skipping entry", x.Method, x.From)
			continue
		}
		to, ok := parseEnd(x.To)
		if !ok {
			log.Warnf("config", "taint transfer for %s: unresolvable to-endpoint %q, skipping entry", x.Method, x.To)
			continue
		}
		out.xferBySig[x.Method] = append(out.xferBySig[x.Method], Transfer{
			Signature: x.Method, From: from, To: to, Type: ir.RefType(x.Type),
		})
	}
	return out
}

func parseEnd(s string) (End, bool) {
	switch s {
	case "BASE":
		return End{Kind: EndBase}, true
	case "RESULT":
		return End{Kind: EndResult}, true
	default:
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return End{}, false
		}
		return End{Kind: EndArg, ArgIndex: n}, true
	}
}

// SinksFor returns the configured sinks for a method signature.
func (t *Taint) SinksFor(sig string) []Sink { return t.sinkBySig[sig] }

// TransfersFor returns the configured transfers for a method signature.
func (t *Taint) TransfersFor(sig string) []Transfer { return t.xferBySig[sig] }
