// Package context implements the context-sensitivity policy: an empty
// context, context selection for static and instance calls, and heap
// context selection. It also defines the generic (X, Context) pairing
// (CSPair) the context-sensitive pointer analysis uses to build CSVar,
// CSObj, CSMethod and CSCallSite out of their context-insensitive
// counterparts, since all four are the same "identity plus a Context"
// shape.
package context

import (
	"github.com/lmysuzi/static-software-analysis/internal/heap"
	"github.com/lmysuzi/static-software-analysis/internal/ir"
)

// Context abstracts calling/allocation history. The zero Context (nil
// Site) is emptyContext(), used by the context-insensitive analysis and
// as the root context of every entry method.
type Context struct {
	site *ir.Invoke
}

// Empty returns the context-insensitive/root context.
func Empty() Context { return Context{} }

func (c Context) String() string {
	if c.site == nil {
		return "[]"
	}
	return "[" + c.site.String() + "]"
}

// CSPair pairs a comparable identity X with a Context, giving CSVar,
// CSObj, CSMethod and CSCallSite their common shape; it is itself
// comparable (hence usable as a map key) whenever X is.
type CSPair[T comparable] struct {
	Ctx Context
	X   T
}

// Selector is the context-sensitivity policy. The concrete
// implementation below is 1-call-site sensitivity (k=1): a callee's
// context is the single most recent call site, independent of the
// caller's own context — the simplest non-trivial policy, and a
// reasonable default before tuning for precision against cost.
type Selector interface {
	Empty() Context
	SelectCallContext(callSite CSPair[*ir.Invoke], callee *ir.Method) Context
	SelectInstanceCallContext(callSite CSPair[*ir.Invoke], recv CSPair[*heap.Obj], callee *ir.Method) Context
	SelectHeapContext(csMethod CSPair[*ir.Method], obj *heap.Obj) Context
}

// OneCallSelector is the 1-call-site-sensitive Selector.
type OneCallSelector struct{}

func (OneCallSelector) Empty() Context { return Empty() }

func (OneCallSelector) SelectCallContext(callSite CSPair[*ir.Invoke], callee *ir.Method) Context {
	return Context{site: callSite.X}
}

func (OneCallSelector) SelectInstanceCallContext(callSite CSPair[*ir.Invoke], recv CSPair[*heap.Obj], callee *ir.Method) Context {
	return Context{site: callSite.X}
}

// SelectHeapContext assigns a freshly allocated object the context of
// the method that allocates it — heap objects do not get their own
// call-site component under 1-call-site sensitivity, only the
// allocating method's context (see DESIGN.md for the reasoning behind
// this choice).
func (OneCallSelector) SelectHeapContext(csMethod CSPair[*ir.Method], obj *heap.Obj) Context {
	return csMethod.Ctx
}
