package interconstprop

import (
	"github.com/lmysuzi/static-software-analysis/internal/heap"
	"github.com/lmysuzi/static-software-analysis/internal/ir"
	"github.com/lmysuzi/static-software-analysis/internal/lattice"
	"github.com/lmysuzi/static-software-analysis/internal/pointer"
)

// HeapFactStore replaces the source analyzer's process-wide
// alias/instance/static/array maps ( "Global state in the source")
// with a single value owned by the inter-procedural solver: the
// instance/static/array constant maps themselves, plus the alias map
// and static-load index precomputed once from the PTA result so the
// solver can find which LoadField/LoadArray statements to re-enqueue
// when a store changes a map entry.
type HeapFactStore struct {
	pta *pointer.CIResult

	instance map[instKey]lattice.Value
	static   map[*ir.Field]lattice.Value
	array    map[arrKey]lattice.Value

	aliasOf     map[*heap.Obj][]*ir.Var
	staticLoads map[*ir.Field][]*ir.LoadField
}

type instKey struct {
	obj   *heap.Obj
	field *ir.Field
}

type arrKey struct {
	obj   *heap.Obj
	isNAC bool
	idx   int32
}

// NewHeapFactStore precomputes the alias map (obj -> vars that may
// point to it) and the static-load index over methods, consulting pta
// for each variable's points-to set.
func NewHeapFactStore(pta *pointer.CIResult, methods []*ir.Method) *HeapFactStore {
	s := &HeapFactStore{
		pta:         pta,
		instance:    make(map[instKey]lattice.Value),
		static:      make(map[*ir.Field]lattice.Value),
		array:       make(map[arrKey]lattice.Value),
		aliasOf:     make(map[*heap.Obj][]*ir.Var),
		staticLoads: make(map[*ir.Field][]*ir.LoadField),
	}
	for _, m := range methods {
		for _, v := range m.Locals {
			for _, obj := range pta.PointsTo(v) {
				s.aliasOf[obj] = append(s.aliasOf[obj], v)
			}
		}
		for _, stmt := range m.AllStmts() {
			if lf, ok := stmt.(*ir.LoadField); ok && lf.Base == nil {
				s.staticLoads[lf.Field] = append(s.staticLoads[lf.Field], lf)
			}
		}
	}
	return s
}

// AliasesOf returns every variable whose points-to set may contain obj.
func (s *HeapFactStore) AliasesOf(obj *heap.Obj) []*ir.Var { return s.aliasOf[obj] }

// StaticLoadsOf returns every static LoadField of f, gathered at init time.
func (s *HeapFactStore) StaticLoadsOf(f *ir.Field) []*ir.LoadField { return s.staticLoads[f] }

// UpdateInstance meets v into instanceMap[(obj,f)], returning whether
// the entry changed.
func (s *HeapFactStore) UpdateInstance(obj *heap.Obj, f *ir.Field, v lattice.Value) bool {
	k := instKey{obj, f}
	prev := s.instance[k]
	next := lattice.Meet(prev, v)
	if next.Equal(prev) {
		return false
	}
	s.instance[k] = next
	return true
}

// UpdateStatic meets v into staticMap[f].
func (s *HeapFactStore) UpdateStatic(f *ir.Field, v lattice.Value) bool {
	prev := s.static[f]
	next := lattice.Meet(prev, v)
	if next.Equal(prev) {
		return false
	}
	s.static[f] = next
	return true
}

// UpdateArray meets v into arrayMap[(obj,idx)]. idx must not be UNDEF
// (callers skip the store entirely when the index is UNDEF).
func (s *HeapFactStore) UpdateArray(obj *heap.Obj, idx, v lattice.Value) bool {
	k := arrKeyOf(obj, idx)
	prev := s.array[k]
	next := lattice.Meet(prev, v)
	if next.Equal(prev) {
		return false
	}
	s.array[k] = next
	return true
}

func arrKeyOf(obj *heap.Obj, idx lattice.Value) arrKey {
	if idx.IsNAC() {
		return arrKey{obj: obj, isNAC: true}
	}
	return arrKey{obj: obj, idx: idx.ConstValue()}
}

// FieldValue implements lattice.HeapReader: an instance load meets the
// instanceMap entries over pt(base); a static load (base == nil) reads
// staticMap directly.
func (s *HeapFactStore) FieldValue(base *ir.Var, f *ir.Field) lattice.Value {
	if base == nil {
		return s.static[f]
	}
	v := lattice.UndefVal
	for _, obj := range s.pta.PointsTo(base) {
		v = lattice.Meet(v, s.instance[instKey{obj, f}])
	}
	return v
}

// ArrayValue implements lattice.HeapReader: a constant index meets both
// arrayMap[(obj,i)] and arrayMap[(obj,NAC)] over pt(base); a NAC index
// meets every entry recorded for that obj; an UNDEF index yields UNDEF.
func (s *HeapFactStore) ArrayValue(base *ir.Var, index lattice.Value) lattice.Value {
	if index.IsUndef() {
		return lattice.UndefVal
	}
	v := lattice.UndefVal
	for _, obj := range s.pta.PointsTo(base) {
		if index.IsConst() {
			v = lattice.Meet(v, s.array[arrKey{obj: obj, idx: index.ConstValue()}])
			v = lattice.Meet(v, s.array[arrKey{obj: obj, isNAC: true}])
			continue
		}
		// NAC index: meet every entry recorded for this obj.
		for k, entry := range s.array {
			if k.obj == obj {
				v = lattice.Meet(v, entry)
			}
		}
	}
	return v
}
