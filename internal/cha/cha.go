package cha

import (
	"github.com/tliron/commonlog"

	"flowcore/internal/ir"
)

// ID is this analysis's registry key (spec §6).
const ID = "cha"

var log = commonlog.GetLogger("flowcore.cha")

// Build runs the worklist BFS of spec §4.5: starting from entries, scan
// each reachable method's call sites, resolve each against hierarchy,
// and enqueue every resolved callee.
func Build(entries []ir.Method, hierarchy ir.ClassHierarchy) *CallGraph {
	g := &CallGraph{
		entries:   entries,
		reachable: make(map[ir.Method]bool),
		outEdges:  make(map[ir.Method][]Edge),
	}

	queue := append([]ir.Method(nil), entries...)
	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]
		if m == nil || g.reachable[m] {
			continue
		}
		g.reachable[m] = true

		for _, stmt := range m.Statements() {
			if !stmt.IsInvoke() {
				continue
			}
			inv, ok := stmt.RHS().(*ir.Invoke)
			if !ok {
				continue
			}
			for _, callee := range resolve(hierarchy, inv) {
				edge := Edge{Kind: inv.Kind, CallSite: stmt, Caller: m, Callee: callee}
				g.edges = append(g.edges, edge)
				g.outEdges[m] = append(g.outEdges[m], edge)
				queue = append(queue, callee)
			}
		}
	}

	log.Debugf("cha: %d reachable methods, %d edges", len(g.reachable), len(g.edges))
	return g
}

// resolve implements spec §4.5's resolve(C) for a single call site.
func resolve(hierarchy ir.ClassHierarchy, inv *ir.Invoke) []ir.Method {
	switch inv.Kind {
	case ir.DispatchStatic:
		cls, ok := hierarchy.ClassByName(inv.Ref.DeclaringClass)
		if !ok {
			return nil
		}
		m, ok := hierarchy.DeclaredMethod(cls, inv.Ref.Subsignature)
		if !ok {
			return nil
		}
		return []ir.Method{m}

	case ir.DispatchSpecial:
		cls, ok := hierarchy.ClassByName(inv.Ref.DeclaringClass)
		if !ok {
			return nil
		}
		if m := dispatch(hierarchy, cls, inv.Ref.Subsignature); m != nil {
			return []ir.Method{m}
		}
		return nil

	case ir.DispatchVirtual, ir.DispatchInterface:
		root, ok := hierarchy.ClassByName(inv.Ref.DeclaringClass)
		if !ok {
			return nil
		}
		var out []ir.Method
		for _, c := range cone(hierarchy, root) {
			if m := dispatch(hierarchy, c, inv.Ref.Subsignature); m != nil {
				out = append(out, m)
			}
		}
		return out

	default:
		// DYNAMIC call sites (e.g. dynamically computed targets) have no
		// declared-type resolution; CHA contributes no edge.
		return nil
	}
}

// dispatch implements spec §4.5's dispatch(cls, subsig): if cls declares
// a non-abstract method matching subsig, return it; else recurse into
// its superclass; return nil if no superclass.
func dispatch(hierarchy ir.ClassHierarchy, cls ir.Class, subsig string) ir.Method {
	for cls != nil {
		if m, ok := hierarchy.DeclaredMethod(cls, subsig); ok && !m.IsAbstract() {
			return m
		}
		super, ok := hierarchy.SuperClass(cls)
		if !ok {
			return nil
		}
		cls = super
	}
	return nil
}

// cone returns root and its transitive subclasses (for a class) or
// subinterfaces plus implementors (for an interface), BFS order.
func cone(hierarchy ir.ClassHierarchy, root ir.Class) []ir.Class {
	visited := make(map[ir.Class]bool)
	queue := []ir.Class{root}
	var out []ir.Class
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil || visited[c] {
			continue
		}
		visited[c] = true
		out = append(out, c)

		if hierarchy.IsInterface(c) {
			queue = append(queue, hierarchy.DirectSubinterfaces(c)...)
			queue = append(queue, hierarchy.DirectImplementors(c)...)
		} else {
			queue = append(queue, hierarchy.DirectSubclasses(c)...)
		}
	}
	return out
}
