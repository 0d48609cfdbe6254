// Package deadcode fuses constant-propagation and live-variable results
// to identify unreachable branches and useless assignments (spec §4.7).
package deadcode

import (
	"sort"

	"flowcore/internal/analysis/constprop"
	"flowcore/internal/cfg"
	"flowcore/internal/dataflow"
	"flowcore/internal/ir"
	"flowcore/internal/lattice"
)

// ID is this analysis's registry key (spec §6).
const ID = "deadcode"

// CPResult and LiveResult are the two upstream results this detector
// fuses.
type CPResult = *dataflow.DataflowResult[ir.Stmt, *lattice.CPFact]
type LiveResult = *dataflow.DataflowResult[ir.Stmt, *lattice.SetFact[*ir.Var]]

// Result groups the dead statements by why they are dead (SPEC_FULL
// addition over spec.md's single ordered set, mirrored on the teacher's
// FlowAnalyzer.AnalysisResult split).
type Result struct {
	Unreachable    []ir.Stmt
	DeadAssignment []ir.Stmt
}

// All returns every dead statement, ordered by source index — spec
// §4.7's output contract.
func (r *Result) All() []ir.Stmt {
	out := append(append([]ir.Stmt(nil), r.Unreachable...), r.DeadAssignment...)
	sort.Slice(out, func(i, j int) bool { return out[i].Index() < out[j].Index() })
	return out
}

// Detect runs the algorithm of spec §4.7 over g, using cp's IN facts and
// live's OUT sets.
func Detect(g *cfg.Graph[ir.Stmt], cp CPResult, live LiveResult) *Result {
	visited := make(map[ir.Stmt]bool)
	queue := []ir.Stmt{g.Entry()}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if visited[n] {
			continue
		}
		visited[n] = true
		queue = append(queue, nextTargets(g, n, cp)...)
	}

	result := &Result{}
	for _, n := range g.Nodes() {
		if !visited[n] {
			if n.Line() > 0 {
				result.Unreachable = append(result.Unreachable, n)
			}
			continue
		}
		if isDeadAssignment(n, live.Out(n)) {
			result.DeadAssignment = append(result.DeadAssignment, n)
		}
	}

	sort.Slice(result.Unreachable, func(i, j int) bool { return result.Unreachable[i].Index() < result.Unreachable[j].Index() })
	sort.Slice(result.DeadAssignment, func(i, j int) bool { return result.DeadAssignment[i].Index() < result.DeadAssignment[j].Index() })
	return result
}

// nextTargets computes which of n's CFG successors the BFS should
// enqueue, folding branch/switch conditions through the CP facts at n
// (spec §4.7 steps 2-3).
func nextTargets(g *cfg.Graph[ir.Stmt], n ir.Stmt, cp CPResult) []ir.Stmt {
	edges := g.OutEdges(n)

	if n.IsIf() {
		val := constprop.Evaluate(n.RHS(), cp.In(n))
		switch {
		case val.IsNAC():
			return targetsOfKinds(edges, cfg.IfTrue, cfg.IfFalse)
		case val.IsUndef():
			return nil
		default:
			c, _ := val.Constant()
			if c != 0 {
				return targetsOfKinds(edges, cfg.IfTrue)
			}
			return targetsOfKinds(edges, cfg.IfFalse)
		}
	}

	if n.IsSwitch() {
		val := constprop.Evaluate(n.RHS(), cp.In(n))
		switch {
		case val.IsNAC():
			return targetsOfKinds(edges, cfg.SwitchCase, cfg.SwitchDefault)
		case val.IsUndef():
			return nil
		default:
			c, _ := val.Constant()
			for _, e := range edges {
				if e.Kind == cfg.SwitchCase && e.Label == c {
					return []ir.Stmt{e.To}
				}
			}
			return targetsOfKinds(edges, cfg.SwitchDefault)
		}
	}

	out := make([]ir.Stmt, len(edges))
	for i, e := range edges {
		out[i] = e.To
	}
	return out
}

func targetsOfKinds(edges []cfg.Edge[ir.Stmt], kinds ...cfg.EdgeKind) []ir.Stmt {
	var out []ir.Stmt
	for _, e := range edges {
		for _, k := range kinds {
			if e.Kind == k {
				out = append(out, e.To)
			}
		}
	}
	return out
}

// isDeadAssignment implements spec §4.7 step 4. A statement whose RHS
// contains a call anywhere in its expression tree is never eligible,
// regardless of liveOut: a call's effects are never fully captured by
// its IR node, so eliminating an unused call result is unsound in
// general (see DESIGN.md's open question (d)). hasSideEffect enforces
// this at any nesting depth, not just when the statement's RHS is
// itself an *ir.Invoke.
func isDeadAssignment(n ir.Stmt, liveOut *lattice.SetFact[*ir.Var]) bool {
	if !n.IsDefinition() {
		return false
	}
	lhs, ok := n.LHS()
	if !ok {
		return false
	}
	if liveOut.Contains(lhs) {
		return false
	}
	return !hasSideEffect(n.RHS())
}

// hasSideEffect implements spec §4.7's side-effect classification:
// object allocation, cast, field access, array access, call, or DIV/REM
// arithmetic are side-effecting; everything else is pure. ir.Expr nests
// arbitrarily (a BinaryExpr's operands are themselves Expr), so this
// walks the whole tree rather than inspecting only the root: a buried
// a/b or f() several levels down a compound expression must still block
// elimination. BinaryExpr and InstanceOfExpr are the only pass-through
// forms (neither is itself side-effecting, but either may wrap one);
// every other case is conclusively true or false on its own and has no
// need to inspect its children.
func hasSideEffect(e ir.Expr) bool {
	switch x := e.(type) {
	case nil:
		return false
	case *ir.NewExpr:
		return true
	case *ir.CastExpr:
		return true
	case *ir.FieldAccess:
		return true
	case *ir.ArrayAccess:
		return true
	case *ir.Invoke:
		return true
	case *ir.InstanceOfExpr:
		return hasSideEffect(x.Operand)
	case *ir.BinaryExpr:
		return x.Op == ir.Div || x.Op == ir.Rem || hasSideEffect(x.A) || hasSideEffect(x.B)
	default:
		return false
	}
}
