package interconstprop

import (
	"github.com/tliron/commonlog"

	"flowcore/internal/analysis/constprop"
	"flowcore/internal/dataflow"
	"flowcore/internal/diagnostics"
	"flowcore/internal/ir"
	"flowcore/internal/lattice"
)

var log = commonlog.GetLogger("flowcore.interconstprop")

// Result is the ICFG-wide dataflow result: IN/OUT CPFacts per node
// across every reachable method.
type Result = *dataflow.DataflowResult[ir.Stmt, *lattice.CPFact]

// Solve runs interprocedural constant propagation to a fixed point over
// icfg (spec §4.6). Unlike the single-procedure solvers in
// internal/dataflow, boundary facts are injected at every entry method's
// entry node (not a single global entry), so this is a bespoke worklist
// driver rather than a dataflow.Solve call — it still applies the same
// node transfer internal/analysis/constprop provides, and dispatches on
// edge kind exactly as spec §4.6 describes.
func Solve(icfg *ICFG) (Result, error) {
	nodes := icfg.Nodes()
	in := make(map[ir.Stmt]*lattice.CPFact, len(nodes))
	out := make(map[ir.Stmt]*lattice.CPFact, len(nodes))
	for _, n := range nodes {
		in[n] = lattice.NewCPFact()
		out[n] = lattice.NewCPFact()
	}

	boundary := make(map[ir.Stmt]*lattice.CPFact)
	for _, m := range icfg.callGraph.Entries() {
		if _, reachable := icfg.methodGraph[m]; !reachable {
			continue
		}
		cp := constprop.New(m)
		boundary[icfg.entryOf[m]] = cp.NewBoundaryFact(nil)
	}

	queue := append([]ir.Stmt(nil), nodes...)
	queued := make(map[ir.Stmt]bool, len(nodes))
	for _, n := range nodes {
		queued[n] = true
	}
	push := func(n ir.Stmt) {
		if queued[n] {
			return
		}
		queued[n] = true
		queue = append(queue, n)
	}

	steps := 0
	for len(queue) > 0 {
		steps++
		n := queue[0]
		queue = queue[1:]
		queued[n] = false

		newIn := lattice.NewCPFact()
		if b, ok := boundary[n]; ok {
			lattice.MeetInto(b, newIn)
		}

		for _, p := range icfg.intraPreds(n) {
			contribution := edgeFactNormalOrCallToReturn(p, out[p])
			lattice.MeetInto(contribution, newIn)
		}

		if m, ok := icfg.entryOwner[n]; ok {
			for _, callSite := range icfg.callersOf[m] {
				contribution, err := callEdgeFact(callSite, m, out[callSite])
				if err != nil {
					return nil, err
				}
				lattice.MeetInto(contribution, newIn)
			}
		}

		for _, callSite := range icfg.succToCallSites[n] {
			for _, callee := range icfg.calleesAt[callSite] {
				contribution := returnEdgeFact(callSite, out[icfg.exitOf[callee]], icfg.returnVarsOf[callee])
				lattice.MeetInto(contribution, newIn)
			}
		}

		inChanged := !newIn.Equal(in[n])
		in[n] = newIn

		outChanged := transferICFGNode(n, newIn, out[n])

		if inChanged || outChanged {
			for _, s := range icfg.successors(n) {
				push(s)
			}
		}
	}

	log.Debugf("interconstprop: converged after %d pops over %d nodes", steps, len(nodes))

	result := newResult(in, out)
	return result, nil
}

// transferICFGNode implements spec §4.6's node transfer: identical to
// intra-CP for a non-call node, and identity (out := meet(in, out)) for
// a call node — the LHS kill is deferred to the CallToReturnEdge.
func transferICFGNode(n ir.Stmt, in, out *lattice.CPFact) bool {
	if n.IsInvoke() {
		return lattice.MeetInto(in, out)
	}
	return constprop.TransferStmt(n, in, out)
}

// edgeFactNormalOrCallToReturn applies the NormalEdge (identity) or
// CallToReturnEdge (identity with the call site's LHS killed) transfer,
// depending on whether the source statement is a call.
func edgeFactNormalOrCallToReturn(src ir.Stmt, srcOut *lattice.CPFact) *lattice.CPFact {
	if !src.IsInvoke() {
		return srcOut
	}
	fact := srcOut.Copy()
	if lhs, ok := src.LHS(); ok {
		fact.Remove(lhs)
	}
	return fact
}

// callEdgeFact implements the CallEdge transfer: a fresh fact mapping
// each formal parameter of callee to the evaluated argument from the
// call site's OUT fact. Arity mismatch is a precondition violation
// (spec §7).
func callEdgeFact(callSite ir.Stmt, callee ir.Method, callSiteOut *lattice.CPFact) (*lattice.CPFact, error) {
	inv, ok := callSite.RHS().(*ir.Invoke)
	if !ok {
		return nil, diagnostics.NewFault(diagnostics.CodeArityMismatch,
			"call site at line %d has no Invoke expression", callSite.Line())
	}
	params := callee.Params()
	if len(inv.Args) != len(params) {
		return nil, diagnostics.NewFault(diagnostics.CodeArityMismatch,
			"call to %s: %d arguments, %d parameters", callee.Name(), len(inv.Args), len(params))
	}
	fact := lattice.NewCPFact()
	for i, p := range params {
		if !p.Type.CanHoldInt() {
			continue
		}
		fact.Update(p, constprop.Evaluate(inv.Args[i], callSiteOut))
	}
	return fact, nil
}

// returnEdgeFact implements the ReturnEdge transfer: if the call site
// defines an LHS variable x, bind x to the meet of calleeExitOut.get(r)
// across every return variable r of callee; otherwise produce an empty
// fact.
func returnEdgeFact(callSite ir.Stmt, calleeExitOut *lattice.CPFact, returnVars []*ir.Var) *lattice.CPFact {
	fact := lattice.NewCPFact()
	lhs, ok := callSite.LHS()
	if !ok || !lhs.Type.CanHoldInt() {
		return fact
	}
	val := lattice.Undef()
	for _, r := range returnVars {
		val = lattice.Meet(val, calleeExitOut.Get(r))
	}
	fact.Update(lhs, val)
	return fact
}

func newResult(in, out map[ir.Stmt]*lattice.CPFact) Result {
	return dataflow.NewDataflowResult(in, out)
}
