package cha_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowcore/internal/cha"
	"flowcore/internal/ir"
)

type fakeStmt struct {
	invoke *ir.Invoke
}

func (s *fakeStmt) Line() int             { return 1 }
func (s *fakeStmt) Index() int            { return 0 }
func (s *fakeStmt) IsDefinition() bool    { return false }
func (s *fakeStmt) IsIf() bool            { return false }
func (s *fakeStmt) IsSwitch() bool        { return false }
func (s *fakeStmt) IsInvoke() bool        { return s.invoke != nil }
func (s *fakeStmt) IsReturn() bool        { return false }
func (s *fakeStmt) LHS() (*ir.Var, bool)  { return nil, false }
func (s *fakeStmt) RHS() ir.Expr          { return s.invoke }

type fakeMethod struct {
	name, class, subsig string
	abstract            bool
	stmts               []ir.Stmt
}

func (m *fakeMethod) Name() string           { return m.name }
func (m *fakeMethod) DeclaringClass() string { return m.class }
func (m *fakeMethod) Subsignature() string   { return m.subsig }
func (m *fakeMethod) IsStatic() bool         { return false }
func (m *fakeMethod) IsAbstract() bool       { return m.abstract }
func (m *fakeMethod) Statements() []ir.Stmt  { return m.stmts }
func (m *fakeMethod) Params() []*ir.Var      { return nil }
func (m *fakeMethod) ReturnType() ir.Type    { return ir.TypeInt }
func (m *fakeMethod) GetResult(string) (any, bool) { return nil, false }
func (m *fakeMethod) SetResult(string, any)        {}

type fakeClass struct{ name string }

func (c *fakeClass) Name() string { return c.name }

type fakeHierarchy struct {
	classes map[string]*fakeClass
	super   map[*fakeClass]*fakeClass
	subs    map[*fakeClass][]*fakeClass
	methods map[*fakeClass]map[string]*fakeMethod
}

func newFakeHierarchy() *fakeHierarchy {
	return &fakeHierarchy{
		classes: make(map[string]*fakeClass),
		super:   make(map[*fakeClass]*fakeClass),
		subs:    make(map[*fakeClass][]*fakeClass),
		methods: make(map[*fakeClass]map[string]*fakeMethod),
	}
}

func (h *fakeHierarchy) addClass(name string, superName string) *fakeClass {
	c := &fakeClass{name: name}
	h.classes[name] = c
	if superName != "" {
		super := h.classes[superName]
		h.super[c] = super
		h.subs[super] = append(h.subs[super], c)
	}
	h.methods[c] = make(map[string]*fakeMethod)
	return c
}

func (h *fakeHierarchy) addMethod(c *fakeClass, m *fakeMethod) {
	h.methods[c][m.subsig] = m
}

func (h *fakeHierarchy) ClassByName(name string) (ir.Class, bool) {
	c, ok := h.classes[name]
	if !ok {
		return nil, false
	}
	return c, true
}

func (h *fakeHierarchy) DirectSubclasses(c ir.Class) []ir.Class {
	var out []ir.Class
	for _, s := range h.subs[c.(*fakeClass)] {
		out = append(out, s)
	}
	return out
}

func (h *fakeHierarchy) DirectSubinterfaces(ir.Class) []ir.Class { return nil }
func (h *fakeHierarchy) DirectImplementors(ir.Class) []ir.Class  { return nil }

func (h *fakeHierarchy) SuperClass(c ir.Class) (ir.Class, bool) {
	s, ok := h.super[c.(*fakeClass)]
	if !ok || s == nil {
		return nil, false
	}
	return s, true
}

func (h *fakeHierarchy) DeclaredMethod(c ir.Class, subsig string) (ir.Method, bool) {
	m, ok := h.methods[c.(*fakeClass)][subsig]
	if !ok {
		return nil, false
	}
	return m, true
}

func (h *fakeHierarchy) IsAbstract(c ir.Class) bool { return false }
func (h *fakeHierarchy) IsInterface(ir.Class) bool  { return false }

// buildVirtualConeScenario builds: class A { m() }, class B extends A { m()
// override }, caller C { main() calls a.m() declared type A }.
func buildVirtualConeScenario() (*fakeHierarchy, *fakeMethod, *fakeMethod, *fakeMethod) {
	h := newFakeHierarchy()
	a := h.addClass("A", "")
	b := h.addClass("B", "A")

	aM := &fakeMethod{name: "m", class: "A", subsig: "m/0"}
	bM := &fakeMethod{name: "m", class: "B", subsig: "m/0"}
	h.addMethod(a, aM)
	h.addMethod(b, bM)

	inv := &ir.Invoke{Ref: ir.MethodRef{DeclaringClass: "A", Subsignature: "m/0"}, Kind: ir.DispatchVirtual}
	mainM := &fakeMethod{name: "main", class: "C", subsig: "main/0", stmts: []ir.Stmt{&fakeStmt{invoke: inv}}}

	return h, mainM, aM, bM
}

func TestCHAVirtualDispatchResolvesWholeCone(t *testing.T) {
	h, mainM, aM, bM := buildVirtualConeScenario()

	cg := cha.Build([]ir.Method{mainM}, h)

	assert.True(t, cg.ContainsMethod(mainM))
	assert.True(t, cg.ContainsMethod(aM), "A.m must be reachable via the virtual cone")
	assert.True(t, cg.ContainsMethod(bM), "B.m (override) must be reachable via the virtual cone")

	edges := cg.CalleesOf(mainM)
	require.Len(t, edges, 2)
	for _, e := range edges {
		assert.Equal(t, ir.DispatchVirtual, e.Kind)
	}
}

func TestCHAStaticDispatchIsDirectLookupOnly(t *testing.T) {
	h := newFakeHierarchy()
	a := h.addClass("A", "")
	b := h.addClass("B", "A")
	aM := &fakeMethod{name: "s", class: "A", subsig: "s/0"}
	h.addMethod(a, aM)
	_ = b

	inv := &ir.Invoke{Ref: ir.MethodRef{DeclaringClass: "A", Subsignature: "s/0"}, Kind: ir.DispatchStatic}
	mainM := &fakeMethod{name: "main", class: "C", subsig: "main/0", stmts: []ir.Stmt{&fakeStmt{invoke: inv}}}

	cg := cha.Build([]ir.Method{mainM}, h)
	assert.True(t, cg.ContainsMethod(aM))
	require.Len(t, cg.CalleesOf(mainM), 1)
	assert.Equal(t, aM, cg.CalleesOf(mainM)[0].Callee)
}

func TestCHASpecialDispatchFallsThroughToSuperclass(t *testing.T) {
	h := newFakeHierarchy()
	a := h.addClass("A", "")
	b := h.addClass("B", "A")
	aM := &fakeMethod{name: "m", class: "A", subsig: "m/0"}
	h.addMethod(a, aM)
	// B declares no override; special dispatch on B must fall through to A.

	inv := &ir.Invoke{Ref: ir.MethodRef{DeclaringClass: "B", Subsignature: "m/0"}, Kind: ir.DispatchSpecial}
	mainM := &fakeMethod{name: "main", class: "C", subsig: "main/0", stmts: []ir.Stmt{&fakeStmt{invoke: inv}}}

	cg := cha.Build([]ir.Method{mainM}, h)
	require.Len(t, cg.CalleesOf(mainM), 1)
	assert.Equal(t, aM, cg.CalleesOf(mainM)[0].Callee)
	_ = b
}

func TestCHADynamicDispatchContributesNoEdge(t *testing.T) {
	h := newFakeHierarchy()
	inv := &ir.Invoke{Ref: ir.MethodRef{DeclaringClass: "A", Subsignature: "m/0"}, Kind: ir.DispatchDynamic}
	mainM := &fakeMethod{name: "main", class: "C", subsig: "main/0", stmts: []ir.Stmt{&fakeStmt{invoke: inv}}}

	cg := cha.Build([]ir.Method{mainM}, h)
	assert.Empty(t, cg.CalleesOf(mainM))
}

func TestCHAReachabilityInvariant(t *testing.T) {
	h, mainM, aM, _ := buildVirtualConeScenario()
	cg := cha.Build([]ir.Method{mainM}, h)

	unreached := &fakeMethod{name: "dead", class: "Z", subsig: "dead/0"}
	assert.False(t, cg.ContainsMethod(unreached))
	assert.True(t, cg.ContainsMethod(aM))
}
