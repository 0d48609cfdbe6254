// Package cfg implements the generic directed graph the dataflow solver
// walks: a node type parameterized CFG with entry/exit nodes and
// out-edges tagged by kind (spec §3). It holds one method's
// intraprocedural CFG; the interprocedural ICFG
// (internal/analysis/interconstprop) is a separate type that keeps one
// such graph per reachable method.
package cfg

// EdgeKind tags an out-edge of a CFG node.
type EdgeKind int

const (
	Normal EdgeKind = iota
	IfTrue
	IfFalse
	SwitchCase
	SwitchDefault
)

func (k EdgeKind) String() string {
	switch k {
	case Normal:
		return "normal"
	case IfTrue:
		return "if_true"
	case IfFalse:
		return "if_false"
	case SwitchCase:
		return "switch_case"
	case SwitchDefault:
		return "switch_default"
	default:
		return "unknown"
	}
}

// Edge is an out-edge from one node to another. Label carries the case
// constant for a SwitchCase edge; it is unused otherwise.
type Edge[N comparable] struct {
	Kind  EdgeKind
	Label int32
	To    N
}

// Graph is a directed graph over a comparable node type, built once by
// the IR builder and then read only by the solvers and consumers.
type Graph[N comparable] struct {
	entry, exit N
	nodes       []N
	succs       map[N][]Edge[N]
	preds       map[N][]N
}

// NewGraph creates an empty graph with the given entry and exit nodes.
// Both are added as nodes even before any edge references them.
func NewGraph[N comparable](entry, exit N) *Graph[N] {
	g := &Graph[N]{
		entry: entry,
		exit:  exit,
		succs: make(map[N][]Edge[N]),
		preds: make(map[N][]N),
	}
	g.addNode(entry)
	g.addNode(exit)
	return g
}

func (g *Graph[N]) addNode(n N) {
	if _, ok := g.succs[n]; ok {
		return
	}
	g.succs[n] = nil
	g.preds[n] = nil
	g.nodes = append(g.nodes, n)
}

// AddEdge records a from->to edge of the given kind, creating either
// endpoint as a node if it is not already present.
func (g *Graph[N]) AddEdge(from, to N, kind EdgeKind, label int32) {
	g.addNode(from)
	g.addNode(to)
	g.succs[from] = append(g.succs[from], Edge[N]{Kind: kind, Label: label, To: to})
	g.preds[to] = append(g.preds[to], from)
}

// AddNode registers a node with no edges yet (e.g. an isolated exit).
func (g *Graph[N]) AddNode(n N) { g.addNode(n) }

func (g *Graph[N]) Entry() N { return g.entry }
func (g *Graph[N]) Exit() N  { return g.exit }

// Nodes returns every node in insertion order.
func (g *Graph[N]) Nodes() []N {
	out := make([]N, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// OutEdges returns n's out-edges in insertion order.
func (g *Graph[N]) OutEdges(n N) []Edge[N] {
	return g.succs[n]
}

// Succs returns the plain successor list (edge kind discarded).
func (g *Graph[N]) Succs(n N) []N {
	edges := g.succs[n]
	out := make([]N, len(edges))
	for i, e := range edges {
		out[i] = e.To
	}
	return out
}

// Preds returns n's predecessors in insertion order.
func (g *Graph[N]) Preds(n N) []N {
	return g.preds[n]
}
