// Package registry records the analysis IDs (spec §6) the engine knows,
// a name-keyed set in the style of the teacher's
// internal/types.TypeRegistry, and provides one Run function per
// analysis. The ID set and the Run functions are separate: looking up an
// ID reports only whether it is known, not which function runs it.
package registry

import (
	"fmt"

	"flowcore/internal/analysis/constprop"
	"flowcore/internal/analysis/deadcode"
	"flowcore/internal/analysis/interconstprop"
	"flowcore/internal/analysis/livevar"
	"flowcore/internal/cfg"
	"flowcore/internal/cha"
	"flowcore/internal/dataflow"
	"flowcore/internal/ir"
	"flowcore/internal/lattice"
)

// Config groups the runtime knobs of a run: which solver strategy
// intraprocedural analyses use, and (for cha and inter-constprop) which
// methods anchor reachability. No Run function in this package takes a
// Config; each takes these knobs as parameters.
type Config struct {
	Strategy  dataflow.Strategy
	Entries   []ir.Method
	Hierarchy ir.ClassHierarchy
}

// Registry holds one entry per analysis ID known to the engine.
type Registry struct {
	builtins map[string]bool
}

// NewRegistry returns a registry with every built-in analysis ID
// registered, mirroring TypeRegistry.NewTypeRegistry +
// InitializeBuiltins.
func NewRegistry() *Registry {
	r := &Registry{builtins: make(map[string]bool)}
	for _, id := range []string{constprop.ID, livevar.ID, cha.ID, interconstprop.ID, deadcode.ID} {
		r.builtins[id] = true
	}
	return r
}

// IsRegistered reports whether id names a known analysis.
func (r *Registry) IsRegistered(id string) bool { return r.builtins[id] }

// RunConstProp runs intraprocedural constant propagation for one method.
func RunConstProp(g *cfg.Graph[ir.Stmt], m ir.Method, strategy dataflow.Strategy) (*dataflow.DataflowResult[ir.Stmt, *lattice.CPFact], error) {
	return dataflow.Solve(strategy, g, constprop.New(m))
}

// RunLiveVar runs live-variable analysis for one method.
func RunLiveVar(g *cfg.Graph[ir.Stmt], strategy dataflow.Strategy) (*dataflow.DataflowResult[ir.Stmt, *lattice.SetFact[*ir.Var]], error) {
	return dataflow.Solve(strategy, g, &livevar.LiveVariable{})
}

// RunCHA builds the call graph from the given entries.
func RunCHA(entries []ir.Method, hierarchy ir.ClassHierarchy) *cha.CallGraph {
	return cha.Build(entries, hierarchy)
}

// RunInterConstProp builds the ICFG over cg and solves interprocedural
// constant propagation across it.
func RunInterConstProp(cg *cha.CallGraph) (interconstprop.Result, error) {
	icfg, err := interconstprop.BuildICFG(cg)
	if err != nil {
		return nil, err
	}
	return interconstprop.Solve(icfg)
}

// RunDeadCode fuses a method's CP and live-variable results into its
// dead-code report.
func RunDeadCode(g *cfg.Graph[ir.Stmt], cp deadcode.CPResult, live deadcode.LiveResult) *deadcode.Result {
	return deadcode.Detect(g, cp, live)
}

// ErrUnknownAnalysis reports a registry lookup for an ID nothing
// registers.
func ErrUnknownAnalysis(id string) error {
	return fmt.Errorf("registry: unknown analysis id %q", id)
}
