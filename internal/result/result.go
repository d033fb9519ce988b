// Package result stores named analysis outputs keyed by analysis id
// (e.g. "cha", "pta-ci", "pta-cs", "inter-constprop", "taint",
// "deadcode"), published once by the CLI driver and consulted by
// whatever downstream reporting (or, in tests, assertions) reads it.
package result

// Sink collects the named outputs the analyses expose: CHA call
// graph, PTA results, taint flows, dead-code set, and so on. It is a
// plain map wrapper — the driver runs analyses one at a time and
// publishes each result only once finished, so no synchronization is
// needed here.
type Sink struct {
	byID map[string]any
}

func NewSink() *Sink { return &Sink{byID: make(map[string]any)} }

// Put stores value under id, overwriting any prior value.
func (s *Sink) Put(id string, value any) { s.byID[id] = value }

// Get returns the value stored under id, and whether one was found.
func (s *Sink) Get(id string) (any, bool) {
	v, ok := s.byID[id]
	return v, ok
}

// IDs returns every id currently stored, in no particular order.
func (s *Sink) IDs() []string {
	out := make([]string, 0, len(s.byID))
	for id := range s.byID {
		out = append(out, id)
	}
	return out
}
