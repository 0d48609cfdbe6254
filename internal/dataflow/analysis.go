// Package dataflow implements the generic fixed-point solver framework
// (spec §4.3): a capability record exposing five methods, and two
// concrete drivers (iterative, worklist) that can each run a forward or
// backward analysis to the same meet-over-all-paths fixed point.
package dataflow

import "flowcore/internal/cfg"

// Analysis is the capability record a concrete analysis (constant
// propagation, live variables, ...) implements. N is the CFG node type,
// F is the fact type (expected to be a pointer/reference type so
// MeetInto and TransferNode can mutate it in place).
type Analysis[N comparable, F any] interface {
	IsForward() bool

	// NewBoundaryFact is the fact injected at the graph's start (forward)
	// or end (backward) node, prior to iteration.
	NewBoundaryFact(g *cfg.Graph[N]) F

	// NewInitialFact is the fact every non-boundary node starts from.
	NewInitialFact() F

	// MeetInto merges src into dst in place and reports whether dst
	// changed.
	MeetInto(src, dst F) bool

	// TransferNode applies the node's transfer function, writing through
	// out in place, and reports whether out changed.
	TransferNode(node N, in, out F) bool
}
