// Package cha implements Class Hierarchy Analysis: a reachable-methods
// call-graph builder using only declared class relationships (spec
// §4.5), used both standalone and to materialize the ICFG.
package cha

import "flowcore/internal/ir"

// Edge is a resolved call-graph edge: the dispatch form, the call site
// that produced it, the caller, and the resolved callee (spec §3).
type Edge struct {
	Kind     ir.DispatchKind
	CallSite ir.Stmt
	Caller   ir.Method
	Callee   ir.Method
}

// CallGraph is the frozen result of CHA: the set of methods transitively
// reachable from the entry set, and every edge discovered while
// reaching them.
type CallGraph struct {
	entries   []ir.Method
	reachable map[ir.Method]bool
	edges     []Edge
	outEdges  map[ir.Method][]Edge
}

// Entries returns the anchoring entry-method set.
func (g *CallGraph) Entries() []ir.Method { return g.entries }

// ContainsMethod reports whether m is in the reachable set — spec §3's
// invariant that a call graph contains a method iff it is transitively
// reachable from an entry method.
func (g *CallGraph) ContainsMethod(m ir.Method) bool { return g.reachable[m] }

// Reachable returns every method in the call graph (SPEC_FULL addition:
// spec.md states the reachability invariant but a consumer needs a way
// to enumerate the set it defines).
func (g *CallGraph) Reachable() []ir.Method {
	out := make([]ir.Method, 0, len(g.reachable))
	for m := range g.reachable {
		out = append(out, m)
	}
	return out
}

// Edges returns every resolved call-graph edge.
func (g *CallGraph) Edges() []Edge { return g.edges }

// CalleesOf returns the edges whose caller is m.
func (g *CallGraph) CalleesOf(m ir.Method) []Edge { return g.outEdges[m] }
