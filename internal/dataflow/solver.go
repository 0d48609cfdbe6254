package dataflow

import (
	"github.com/tliron/commonlog"

	"flowcore/internal/cfg"
	"flowcore/internal/diagnostics"
)

var log = commonlog.GetLogger("flowcore.dataflow")

// Strategy selects the fixed-point driver. Spec §4.3 describes iterative
// as backward and worklist as forward, but the design notes (§9c) permit
// either strategy for either direction as long as the same fixed point is
// reached; both drivers below are direction-agnostic.
type Strategy int

const (
	Iterative Strategy = iota
	Worklist
)

func (s Strategy) String() string {
	switch s {
	case Iterative:
		return "iterative"
	case Worklist:
		return "worklist"
	default:
		return "unsupported"
	}
}

// Solve runs analysis over g using strategy, returning the IN/OUT facts
// at every node. It rejects an unrecognized strategy before doing any
// work, per spec §7.
func Solve[N comparable, F any](strategy Strategy, g *cfg.Graph[N], analysis Analysis[N, F]) (*DataflowResult[N, F], error) {
	switch strategy {
	case Iterative:
		return solveIterative(g, analysis), nil
	case Worklist:
		return solveWorklist(g, analysis), nil
	default:
		return nil, diagnostics.NewFault(diagnostics.CodeUnsupportedStrategy,
			"solver strategy %v is not supported", strategy)
	}
}

// solveIterative implements spec §4.3's iterative driver, generalized to
// run forward or backward depending on analysis.IsForward().
//
// Backward (as specified): pre-order, all nodes except exit, reversed.
// OUT[B] := meet of IN[S] over successors S, then transfer IN[B]->OUT[B].
// Boundary: OUT[exit] := newBoundaryFact(exit).
//
// Forward (symmetric): all nodes except entry, in order. IN[B] := meet of
// OUT[P] over predecessors P, then transfer. Boundary: IN[entry] :=
// newBoundaryFact(entry).
func solveIterative[N comparable, F any](g *cfg.Graph[N], a Analysis[N, F]) *DataflowResult[N, F] {
	r := newResult[N, F]()
	nodes := g.Nodes()

	var order []N
	if a.IsForward() {
		r.setIn(g.Entry(), a.NewBoundaryFact(g))
		r.setOut(g.Entry(), a.NewInitialFact())
		for _, n := range nodes {
			if n == g.Entry() {
				continue
			}
			r.setIn(n, a.NewInitialFact())
			r.setOut(n, a.NewInitialFact())
			order = append(order, n)
		}
	} else {
		r.setOut(g.Exit(), a.NewBoundaryFact(g))
		r.setIn(g.Exit(), a.NewInitialFact())
		for i := len(nodes) - 1; i >= 0; i-- {
			n := nodes[i]
			if n == g.Exit() {
				continue
			}
			r.setIn(n, a.NewInitialFact())
			r.setOut(n, a.NewInitialFact())
			order = append(order, n)
		}
	}

	iterations := 0
	for {
		iterations++
		changed := false
		for _, b := range order {
			if a.IsForward() {
				in := r.In(b)
				for _, p := range g.Preds(b) {
					if a.MeetInto(r.Out(p), in) {
						changed = true
					}
				}
				if a.TransferNode(b, in, r.Out(b)) {
					changed = true
				}
			} else {
				out := r.Out(b)
				for _, s := range g.Succs(b) {
					if a.MeetInto(r.In(s), out) {
						changed = true
					}
				}
				if a.TransferNode(b, r.In(b), out) {
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
	log.Debugf("iterative solver converged after %d passes over %d nodes", iterations, len(nodes))
	return r
}

// solveWorklist implements spec §4.3's worklist driver, generalized to run
// forward or backward. Forward (as specified): IN[entry] := boundary;
// worklist seeded with every non-entry node; popping B recomputes IN[B]
// as the meet of OUT[P] over predecessors, transfers, and enqueues
// successors on change. Backward is the dual over OUT/IN and
// succ/pred.
func solveWorklist[N comparable, F any](g *cfg.Graph[N], a Analysis[N, F]) *DataflowResult[N, F] {
	r := newResult[N, F]()
	nodes := g.Nodes()

	boundary := g.Entry()
	if !a.IsForward() {
		boundary = g.Exit()
	}

	for _, n := range nodes {
		r.setIn(n, a.NewInitialFact())
		r.setOut(n, a.NewInitialFact())
	}
	if a.IsForward() {
		r.setIn(boundary, a.NewBoundaryFact(g))
	} else {
		r.setOut(boundary, a.NewBoundaryFact(g))
	}

	queue := make([]N, 0, len(nodes))
	queued := make(map[N]bool, len(nodes))
	push := func(n N) {
		if n == boundary || queued[n] {
			return
		}
		queued[n] = true
		queue = append(queue, n)
	}
	for _, n := range nodes {
		push(n)
	}

	steps := 0
	for len(queue) > 0 {
		steps++
		b := queue[0]
		queue = queue[1:]
		queued[b] = false

		if a.IsForward() {
			in := a.NewInitialFact()
			for _, p := range g.Preds(b) {
				a.MeetInto(r.Out(p), in)
			}
			r.setIn(b, in)
			if a.TransferNode(b, in, r.Out(b)) {
				for _, s := range g.Succs(b) {
					push(s)
				}
			}
		} else {
			out := a.NewInitialFact()
			for _, s := range g.Succs(b) {
				a.MeetInto(r.In(s), out)
			}
			r.setOut(b, out)
			if a.TransferNode(b, r.In(b), out) {
				for _, p := range g.Preds(b) {
					push(p)
				}
			}
		}
	}
	log.Debugf("worklist solver converged after %d pops over %d nodes", steps, len(nodes))
	return r
}
