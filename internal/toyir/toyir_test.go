package toyir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowcore/internal/cfg"
	"flowcore/internal/ir"
	"flowcore/internal/toyir"
)

const switchSource = `
class Weekday {
	fun isWeekend(n: int): int {
		switch (n) {
		case 6:
			return 1;
		case 7:
			return 1;
		default:
			return 0;
		}
	}
}
`

const sampleSource = `
class Shape {
	fun area(): int {
		return 0;
	}
}

class Circle extends Shape {
	fun area(): int {
		let r = 2;
		if (r > 0) {
			return r * r;
		} else {
			return 0;
		}
	}

	fun describe(): int {
		return this.area();
	}
}
`

func TestParseSourceBuildsExpectedAST(t *testing.T) {
	prog, err := toyir.ParseSource("sample.flow", sampleSource)
	require.NoError(t, err)
	require.Len(t, prog.Classes, 2)

	shape := prog.Classes[0]
	assert.Equal(t, "Shape", shape.Name)
	assert.Nil(t, shape.Super)
	require.Len(t, shape.Methods, 1)
	assert.Equal(t, "area", shape.Methods[0].Name)

	circle := prog.Classes[1]
	assert.Equal(t, "Circle", circle.Name)
	require.NotNil(t, circle.Super)
	assert.Equal(t, "Shape", *circle.Super)
	require.Len(t, circle.Methods, 2)
}

func TestParseSourceRejectsMalformedInput(t *testing.T) {
	_, err := toyir.ParseSource("bad.flow", "class { fun broken( }")
	assert.Error(t, err)
}

func TestBuildProducesHierarchyAndMethodsWithCFGs(t *testing.T) {
	prog, err := toyir.ParseSource("sample.flow", sampleSource)
	require.NoError(t, err)

	h, methods, err := toyir.Build(prog)
	require.NoError(t, err)
	require.Len(t, methods, 3)

	circle, ok := h.ClassByName("Circle")
	require.True(t, ok)
	shape, ok := h.SuperClass(circle)
	require.True(t, ok)
	assert.Equal(t, "Shape", shape.Name())

	areaM, ok := h.DeclaredMethod(circle, "area/0")
	require.True(t, ok)
	assert.Equal(t, "Circle", areaM.DeclaringClass())

	res, ok := areaM.GetResult(ir.CFGResultID)
	require.True(t, ok)
	g, ok := res.(*cfg.Graph[ir.Stmt])
	require.True(t, ok)
	assert.NotEmpty(t, g.Nodes())

	// area() has an if/else where both branches return, so its exit
	// node has exactly two predecessors (one per branch's return).
	assert.Len(t, g.Preds(g.Exit()), 2)
}

func TestBuildInfersDispatchKindFromReceiverForm(t *testing.T) {
	prog, err := toyir.ParseSource("sample.flow", sampleSource)
	require.NoError(t, err)
	_, methods, err := toyir.Build(prog)
	require.NoError(t, err)

	var describe ir.Method
	for _, m := range methods {
		if m.Name() == "describe" {
			describe = m
		}
	}
	require.NotNil(t, describe)

	var callStmt ir.Stmt
	for _, s := range describe.Statements() {
		if s.IsReturn() {
			callStmt = s
		}
	}
	require.NotNil(t, callStmt)

	inv, ok := callStmt.RHS().(*ir.Invoke)
	require.True(t, ok)
	assert.Equal(t, ir.DispatchVirtual, inv.Kind, "this.-qualified calls dispatch virtually")
	assert.Equal(t, "Circle", inv.Ref.DeclaringClass)
	assert.Equal(t, "area/0", inv.Ref.Subsignature)
}

func TestBuildRejectsDuplicateClassNames(t *testing.T) {
	prog, err := toyir.ParseSource("dup.flow", `
class A { fun f(): int { return 0; } }
class A { fun g(): int { return 1; } }
`)
	require.NoError(t, err)
	_, _, err = toyir.Build(prog)
	assert.Error(t, err)
}

func TestBuildLowersSwitchToCaseLabeledCFGEdges(t *testing.T) {
	prog, err := toyir.ParseSource("weekday.flow", switchSource)
	require.NoError(t, err)
	_, methods, err := toyir.Build(prog)
	require.NoError(t, err)
	require.Len(t, methods, 1)

	g, ok := graphOf(t, methods[0])
	require.True(t, ok)

	var sw ir.Stmt
	for _, n := range g.Nodes() {
		if n.IsSwitch() {
			sw = n
		}
	}
	require.NotNil(t, sw)

	labels, ok := sw.(ir.SwitchLabels)
	require.True(t, ok, "a switch statement must implement ir.SwitchLabels")
	assert.Equal(t, []int32{6, 7}, labels.CaseLabels())

	var caseEdges, defaultEdges int
	for _, e := range g.OutEdges(sw) {
		switch e.Kind {
		case cfg.SwitchCase:
			caseEdges++
		case cfg.SwitchDefault:
			defaultEdges++
		}
	}
	assert.Equal(t, 2, caseEdges)
	assert.Equal(t, 1, defaultEdges)
}

func graphOf(t *testing.T, m ir.Method) (*cfg.Graph[ir.Stmt], bool) {
	t.Helper()
	res, ok := m.GetResult(ir.CFGResultID)
	if !ok {
		return nil, false
	}
	g, ok := res.(*cfg.Graph[ir.Stmt])
	return g, ok
}

func TestBuildRejectsUnknownSuperclass(t *testing.T) {
	prog, err := toyir.ParseSource("bad.flow", `
class B extends Ghost { fun f(): int { return 0; } }
`)
	require.NoError(t, err)
	_, _, err = toyir.Build(prog)
	assert.Error(t, err)
}
