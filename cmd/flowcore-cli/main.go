// Command flowcore-cli parses a .flow source file, builds its call
// graph and ICFG, and prints every analysis result — the same
// read-parse-report shape as the teacher's cmd/kanso-cli.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"flowcore/internal/analysis/constprop"
	"flowcore/internal/analysis/deadcode"
	"flowcore/internal/analysis/interconstprop"
	"flowcore/internal/analysis/livevar"
	"flowcore/internal/cfg"
	"flowcore/internal/cha"
	"flowcore/internal/dataflow"
	"flowcore/internal/diagnostics"
	"flowcore/internal/ir"
	"flowcore/internal/toyir"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: flowcore-cli <file.flow>")
		os.Exit(1)
	}

	prog, err := toyir.ParseFile(os.Args[1])
	if err != nil {
		os.Exit(1)
	}

	hierarchy, methods, err := toyir.Build(prog)
	if err != nil {
		color.Red("build error: %s", err)
		os.Exit(1)
	}

	entries := entryMethods(methods)
	if len(entries) == 0 {
		entries = methods
	}

	cg := cha.Build(entries, hierarchy)
	color.Green("call graph: %d reachable methods, %d edges", len(cg.Reachable()), len(cg.Edges()))

	icfg, err := interconstprop.BuildICFG(cg)
	if err != nil {
		reportFault(err)
		os.Exit(1)
	}
	interResult, err := interconstprop.Solve(icfg)
	if err != nil {
		reportFault(err)
		os.Exit(1)
	}

	for _, m := range cg.Reachable() {
		fmt.Printf("\n== %s.%s ==\n", m.DeclaringClass(), m.Name())

		g, ok := methodGraph(m)
		if !ok {
			reportFault(diagnostics.NewFault(diagnostics.CodeMissingCFG,
				"method %s has no *cfg.Graph[ir.Stmt] published under %q", m.Name(), ir.CFGResultID))
			continue
		}

		cpResult, err := dataflow.Solve(dataflow.Worklist, g, constprop.New(m))
		if err != nil {
			reportFault(err)
			continue
		}
		liveResult, err := dataflow.Solve(dataflow.Worklist, g, &livevar.LiveVariable{})
		if err != nil {
			reportFault(err)
			continue
		}
		dead := deadcode.Detect(g, cpResult, liveResult)

		for _, n := range g.Nodes() {
			fmt.Printf("  line %2d: in=%s icfg-in=%s\n", n.Line(), cpResult.In(n), interResult.In(n))
			if n.IsSwitch() {
				if sw, ok := n.(ir.SwitchLabels); ok {
					fmt.Printf("    cases: %v\n", sw.CaseLabels())
				}
			}
		}
		for _, n := range dead.Unreachable {
			color.Yellow("  unreachable: line %d", n.Line())
		}
		for _, n := range dead.DeadAssignment {
			color.Yellow("  dead assignment: line %d", n.Line())
		}
	}
}

func entryMethods(methods []ir.Method) []ir.Method {
	var out []ir.Method
	for _, m := range methods {
		if m.Name() == "main" {
			out = append(out, m)
		}
	}
	return out
}

func reportFault(err error) {
	if f, ok := err.(*diagnostics.Fault); ok {
		fmt.Println(diagnostics.Format(f))
		return
	}
	color.Red("error: %s", err)
}

// methodGraph fetches a method's published CFG, asserting the concrete
// type the intraprocedural analyses expect (spec §7: a missing or
// mistyped CFG is reported, not silently skipped).
func methodGraph(m ir.Method) (*cfg.Graph[ir.Stmt], bool) {
	res, ok := m.GetResult(ir.CFGResultID)
	if !ok {
		return nil, false
	}
	g, ok := res.(*cfg.Graph[ir.Stmt])
	return g, ok
}
