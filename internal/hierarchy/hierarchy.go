// Package hierarchy models a class hierarchy: direct subclasses,
// direct subinterfaces, direct implementors, superclass lookup and
// declared-method lookup. It is a concrete, in-memory implementation
// rather than a classfile loader — source and bytecode loading are
// out of scope — populated by the same test/CLI builders that
// construct internal/ir methods.
package hierarchy

import "github.com/lmysuzi/static-software-analysis/internal/ir"

// Class is a declared class or interface.
type Class struct {
	Name        string
	Super       string   // "" for java.lang.Object or an interface
	Interfaces  []string // directly implemented/extended interfaces
	IsInterface bool
	Methods     map[string]*ir.Method // subsignature -> declared method (may be abstract)
}

// Hierarchy is the read-only-after-construction class hierarchy.
// Once built it answers the queries used by class-hierarchy analysis
// and by the pointer analyses' virtual/interface dispatch, always
// resolving against an object's runtime declared type rather than the
// receiver variable's static type.
type Hierarchy struct {
	classes map[string]*Class

	subclasses    map[string][]string // direct subclasses of a class
	subinterfaces map[string][]string // direct subinterfaces of an interface
	implementors  map[string][]string // direct implementors of an interface
}

// New builds a Hierarchy from the given class declarations, indexing
// the direct-subtype relations once so the traversal can walk them
// without re-scanning all classes per query.
func New(classes []*Class) *Hierarchy {
	h := &Hierarchy{
		classes:       make(map[string]*Class, len(classes)),
		subclasses:    make(map[string][]string),
		subinterfaces: make(map[string][]string),
		implementors:  make(map[string][]string),
	}
	for _, c := range classes {
		h.classes[c.Name] = c
	}
	for _, c := range classes {
		if c.IsInterface {
			for _, super := range c.Interfaces {
				h.subinterfaces[super] = append(h.subinterfaces[super], c.Name)
			}
			continue
		}
		if c.Super != "" {
			h.subclasses[c.Super] = append(h.subclasses[c.Super], c.Name)
		}
		for _, iface := range c.Interfaces {
			h.implementors[iface] = append(h.implementors[iface], c.Name)
		}
	}
	return h
}

// Class looks up a declared class/interface by name.
func (h *Hierarchy) Class(name string) *Class { return h.classes[name] }

// DirectSubclassesOf returns the class names directly extending C.
func (h *Hierarchy) DirectSubclassesOf(c string) []string { return h.subclasses[c] }

// DirectSubinterfacesOf returns the interface names directly extending I.
func (h *Hierarchy) DirectSubinterfacesOf(i string) []string { return h.subinterfaces[i] }

// DirectImplementorsOf returns the class names directly implementing I.
func (h *Hierarchy) DirectImplementorsOf(i string) []string { return h.implementors[i] }

// SuperClassOf returns C's superclass name, or "" if C has none
// (java.lang.Object or an interface).
func (h *Hierarchy) SuperClassOf(c string) string {
	cl := h.classes[c]
	if cl == nil {
		return ""
	}
	return cl.Super
}

// DeclaredMethod returns the method C itself declares with the given
// subsignature, or nil if C declares no such method.
func (h *Hierarchy) DeclaredMethod(c, subsig string) *ir.Method {
	cl := h.classes[c]
	if cl == nil {
		return nil
	}
	return cl.Methods[subsig]
}

// Dispatch resolves a virtual/special/static method reference against a
// concrete receiver class C: ascend from C while the class
// declares no method of sig or the declared method is abstract; return
// the first non-abstract declaration, or nil if none exists (a "missing
// dispatch target", — callers must treat nil as an empty target set,
// not an error).
func (h *Hierarchy) Dispatch(c, subsig string) *ir.Method {
	for c != "" {
		if m := h.DeclaredMethod(c, subsig); m != nil && !m.IsAbstract {
			return m
		}
		c = h.SuperClassOf(c)
	}
	return nil
}
