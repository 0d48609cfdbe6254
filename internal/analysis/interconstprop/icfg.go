// Package interconstprop implements interprocedural constant
// propagation (spec §4.6): an ICFG built over a CHA call graph, and the
// node/edge transfer functions that compose intraprocedural CP across
// call, return, call-to-return, and normal edges.
package interconstprop

import (
	"flowcore/internal/cfg"
	"flowcore/internal/cha"
	"flowcore/internal/diagnostics"
	"flowcore/internal/ir"
)

// ID is this analysis's registry key (spec §6).
const ID = "inter-constprop"

// ICFG is the union of every reachable method's CFG plus the
// inter-procedural edges spec §3 defines: CallEdge, ReturnEdge,
// CallToReturnEdge, and (within a method) NormalEdge.
type ICFG struct {
	callGraph *cha.CallGraph

	methodGraph map[ir.Method]*cfg.Graph[ir.Stmt]
	ownerOf     map[ir.Stmt]ir.Method
	entryOf     map[ir.Method]ir.Stmt
	exitOf      map[ir.Method]ir.Stmt
	entryOwner  map[ir.Stmt]ir.Method // node -> method whose entry it is
	exitOwner   map[ir.Stmt]ir.Method // node -> method whose exit it is

	calleesAt       map[ir.Stmt][]ir.Method // call site -> resolved callees
	callersOf       map[ir.Method][]ir.Stmt // callee -> call sites invoking it
	succToCallSites map[ir.Stmt][]ir.Stmt   // call-to-return target -> call sites

	returnVarsOf map[ir.Method][]*ir.Var
}

// BuildICFG assembles the ICFG from a CHA call graph. Every reachable
// method must already carry a *cfg.Graph[ir.Stmt] under
// ir.CFGResultID; a missing or mistyped CFG is a precondition violation
// (spec §7) and aborts with a Fault rather than a partial ICFG.
func BuildICFG(cg *cha.CallGraph) (*ICFG, error) {
	icfg := &ICFG{
		callGraph:       cg,
		methodGraph:     make(map[ir.Method]*cfg.Graph[ir.Stmt]),
		ownerOf:         make(map[ir.Stmt]ir.Method),
		entryOf:         make(map[ir.Method]ir.Stmt),
		exitOf:          make(map[ir.Method]ir.Stmt),
		entryOwner:      make(map[ir.Stmt]ir.Method),
		exitOwner:       make(map[ir.Stmt]ir.Method),
		calleesAt:       make(map[ir.Stmt][]ir.Method),
		callersOf:       make(map[ir.Method][]ir.Stmt),
		succToCallSites: make(map[ir.Stmt][]ir.Stmt),
		returnVarsOf:    make(map[ir.Method][]*ir.Var),
	}

	for _, m := range cg.Reachable() {
		res, ok := m.GetResult(ir.CFGResultID)
		if !ok {
			return nil, diagnostics.NewFault(diagnostics.CodeMissingCFG,
				"method %s has no CFG published under %q", m.Name(), ir.CFGResultID)
		}
		g, ok := res.(*cfg.Graph[ir.Stmt])
		if !ok {
			return nil, diagnostics.NewFault(diagnostics.CodeMissingCFG,
				"method %s's %q result is not a *cfg.Graph[ir.Stmt]", m.Name(), ir.CFGResultID)
		}
		icfg.methodGraph[m] = g
		icfg.entryOf[m] = g.Entry()
		icfg.exitOf[m] = g.Exit()
		icfg.entryOwner[g.Entry()] = m
		icfg.exitOwner[g.Exit()] = m
		for _, n := range g.Nodes() {
			icfg.ownerOf[n] = m
		}

		var returns []*ir.Var
		for _, s := range m.Statements() {
			if !s.IsReturn() {
				continue
			}
			if ref, ok := s.RHS().(*ir.VarRef); ok {
				returns = append(returns, ref.V)
			}
		}
		icfg.returnVarsOf[m] = returns
	}

	for _, e := range cg.Edges() {
		if !icfg.callGraph.ContainsMethod(e.Callee) {
			continue
		}
		icfg.calleesAt[e.CallSite] = append(icfg.calleesAt[e.CallSite], e.Callee)
		icfg.callersOf[e.Callee] = append(icfg.callersOf[e.Callee], e.CallSite)
	}
	for callSite := range icfg.calleesAt {
		owner := icfg.ownerOf[callSite]
		g := icfg.methodGraph[owner]
		for _, succ := range g.Succs(callSite) {
			icfg.succToCallSites[succ] = append(icfg.succToCallSites[succ], callSite)
		}
	}

	return icfg, nil
}

// Nodes returns every node across every reachable method's CFG.
func (g *ICFG) Nodes() []ir.Stmt {
	var out []ir.Stmt
	for _, m := range g.callGraph.Reachable() {
		out = append(out, g.methodGraph[m].Nodes()...)
	}
	return out
}

func (g *ICFG) intraSuccs(n ir.Stmt) []ir.Stmt {
	return g.methodGraph[g.ownerOf[n]].Succs(n)
}

func (g *ICFG) intraPreds(n ir.Stmt) []ir.Stmt {
	return g.methodGraph[g.ownerOf[n]].Preds(n)
}

// successors returns every node whose IN depends on n's OUT: n's intra
// successors (which double as CallToReturnEdge targets when n is a call
// site), the entry of each callee n calls (CallEdge targets), and — when
// n is a method's exit — the call-to-return target of every call site
// invoking that method (ReturnEdge targets).
func (g *ICFG) successors(n ir.Stmt) []ir.Stmt {
	out := append([]ir.Stmt(nil), g.intraSuccs(n)...)
	for _, callee := range g.calleesAt[n] {
		out = append(out, g.entryOf[callee])
	}
	if m, ok := g.exitOwner[n]; ok {
		for _, callSite := range g.callersOf[m] {
			out = append(out, g.intraSuccs(callSite)...)
		}
	}
	return out
}
