package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowcore/internal/cfg"
	"flowcore/internal/dataflow"
	"flowcore/internal/ir"
	"flowcore/internal/registry"
	"flowcore/internal/toyir"
)

func TestNewRegistryKnowsAllBuiltins(t *testing.T) {
	r := registry.NewRegistry()
	for _, id := range []string{"constprop", "livevar", "cha", "inter-constprop", "deadcode"} {
		assert.True(t, r.IsRegistered(id), "expected %s to be registered", id)
	}
	assert.False(t, r.IsRegistered("no-such-analysis"))
}

const source = `
class Calc {
	static fun square(n: int): int {
		let r = n * n;
		return r;
	}

	fun main(): int {
		let x = Calc.square(3);
		return x;
	}
}
`

func TestRegistryRunnersExecuteEndToEnd(t *testing.T) {
	prog, err := toyir.ParseSource("calc.flow", source)
	require.NoError(t, err)
	h, methods, err := toyir.Build(prog)
	require.NoError(t, err)

	var main, square ir.Method
	for _, m := range methods {
		switch m.Name() {
		case "main":
			main = m
		case "square":
			square = m
		}
	}
	require.NotNil(t, main)
	require.NotNil(t, square)

	mainGraph := graphOf(t, main)
	cpResult, err := registry.RunConstProp(mainGraph, main, dataflow.Worklist)
	require.NoError(t, err)
	assert.NotNil(t, cpResult)

	liveResult, err := registry.RunLiveVar(mainGraph, dataflow.Worklist)
	require.NoError(t, err)
	assert.NotNil(t, liveResult)

	deadResult := registry.RunDeadCode(mainGraph, cpResult, liveResult)
	assert.Empty(t, deadResult.All(), "straight-line code with a used result has nothing dead")

	cg := registry.RunCHA([]ir.Method{main}, h)
	assert.True(t, cg.ContainsMethod(square), "static call from main must resolve square into the call graph")

	interResult, err := registry.RunInterConstProp(cg)
	require.NoError(t, err)
	assert.NotNil(t, interResult)
}

func graphOf(t *testing.T, m ir.Method) *cfg.Graph[ir.Stmt] {
	t.Helper()
	res, ok := m.GetResult(ir.CFGResultID)
	require.True(t, ok)
	g, ok := res.(*cfg.Graph[ir.Stmt])
	require.True(t, ok)
	return g
}
