package toyir

import (
	"fmt"
	"strconv"

	"flowcore/internal/cfg"
	"flowcore/internal/ir"
)

// class is the concrete ir.Class this builder produces.
type class struct {
	name      string
	superName *string
	super     *class
	subs      []*class
	methods   map[string]*method
}

func (c *class) Name() string { return c.name }

// method is the concrete ir.Method this builder produces.
type method struct {
	name           string
	declaringClass string
	subsig         string
	static         bool
	params         []*ir.Var
	returnType     ir.Type
	stmts          []ir.Stmt
	results        map[string]any
}

func (m *method) Name() string           { return m.name }
func (m *method) DeclaringClass() string { return m.declaringClass }
func (m *method) Subsignature() string   { return m.subsig }
func (m *method) IsStatic() bool         { return m.static }
func (m *method) IsAbstract() bool       { return false }
func (m *method) Statements() []ir.Stmt  { return m.stmts }
func (m *method) Params() []*ir.Var      { return m.params }
func (m *method) ReturnType() ir.Type    { return m.returnType }

func (m *method) GetResult(id string) (any, bool) {
	v, ok := m.results[id]
	return v, ok
}

func (m *method) SetResult(id string, result any) {
	if m.results == nil {
		m.results = make(map[string]any)
	}
	m.results[id] = result
}

// Hierarchy is the concrete ir.ClassHierarchy this builder produces.
type Hierarchy struct {
	byName map[string]*class
}

func (h *Hierarchy) ClassByName(name string) (ir.Class, bool) {
	c, ok := h.byName[name]
	if !ok {
		return nil, false
	}
	return c, true
}

func (h *Hierarchy) DirectSubclasses(c ir.Class) []ir.Class {
	return classSlice(c.(*class).subs)
}

func (h *Hierarchy) DirectSubinterfaces(ir.Class) []ir.Class { return nil }
func (h *Hierarchy) DirectImplementors(ir.Class) []ir.Class  { return nil }

func (h *Hierarchy) SuperClass(c ir.Class) (ir.Class, bool) {
	s := c.(*class).super
	if s == nil {
		return nil, false
	}
	return s, true
}

func (h *Hierarchy) DeclaredMethod(c ir.Class, subsignature string) (ir.Method, bool) {
	m, ok := c.(*class).methods[subsignature]
	if !ok {
		return nil, false
	}
	return m, true
}

func (h *Hierarchy) IsAbstract(ir.Class) bool { return false }
func (h *Hierarchy) IsInterface(ir.Class) bool { return false }

func classSlice(cs []*class) []ir.Class {
	out := make([]ir.Class, len(cs))
	for i, c := range cs {
		out[i] = c
	}
	return out
}

// subsignature matches the encoding used both when a method is
// registered and when a call site's MethodRef is built, so
// ClassHierarchy.DeclaredMethod lookups agree.
func subsignature(name string, arity int) string {
	return fmt.Sprintf("%s/%d", name, arity)
}

// Build converts a parsed Program into a Hierarchy and the flat list of
// every method it declares, each already carrying its CFG under
// ir.CFGResultID. This is the toy language's only producer of ir.Method
// values — the real IR builder is out of scope (spec §6).
func Build(prog *Program) (*Hierarchy, []ir.Method, error) {
	h := &Hierarchy{byName: make(map[string]*class)}
	for _, cd := range prog.Classes {
		if _, dup := h.byName[cd.Name]; dup {
			return nil, nil, fmt.Errorf("class %s declared twice", cd.Name)
		}
		h.byName[cd.Name] = &class{name: cd.Name, superName: cd.Super, methods: make(map[string]*method)}
	}
	for _, cd := range prog.Classes {
		c := h.byName[cd.Name]
		if c.superName == nil {
			continue
		}
		super, ok := h.byName[*c.superName]
		if !ok {
			return nil, nil, fmt.Errorf("class %s extends unknown class %s", c.name, *c.superName)
		}
		c.super = super
		super.subs = append(super.subs, c)
	}

	var all []ir.Method
	for _, cd := range prog.Classes {
		c := h.byName[cd.Name]
		for _, md := range cd.Methods {
			m, err := buildMethod(c.name, md)
			if err != nil {
				return nil, nil, err
			}
			c.methods[m.subsig] = m
			all = append(all, m)
		}
	}
	return h, all, nil
}

func buildMethod(className string, md *MethodDecl) (*method, error) {
	m := &method{
		name:           md.Name,
		declaringClass: className,
		subsig:         subsignature(md.Name, len(md.Params)),
		static:         md.Static,
	}
	if md.Returns {
		m.returnType = ir.TypeInt
	} else {
		m.returnType = ir.TypeOther
	}

	b := &builder{
		currentClass: className,
		vars:         make(map[string]*ir.Var),
	}
	for _, p := range md.Params {
		v := b.varFor(p.Name)
		v.Parameter = true
		m.params = append(m.params, v)
	}

	entry := ir.NewEntrySentinel()
	exit := ir.NewExitSentinel()
	b.g = cfg.NewGraph[ir.Stmt](entry, exit)
	b.exit = exit

	exits := b.buildStmts(md.Body, []pendingEdge{{from: entry, kind: cfg.Normal}})
	b.linkPendingTo(exits, exit)

	m.stmts = b.stmts
	m.SetResult(ir.CFGResultID, b.g)
	return m, nil
}

// pendingEdge is a not-yet-connected out-edge: its source node, the edge
// kind, and (for a SwitchCase edge) the case label it must be added with
// once the target node is known.
type pendingEdge struct {
	from  ir.Stmt
	kind  cfg.EdgeKind
	label int32
}

// builder assembles one method's CFG and flat statement list while
// walking its parsed statement tree.
type builder struct {
	currentClass string
	g            *cfg.Graph[ir.Stmt]
	exit         ir.Stmt
	vars         map[string]*ir.Var
	stmts        []ir.Stmt
	line         int
}

func (b *builder) varFor(name string) *ir.Var {
	if v, ok := b.vars[name]; ok {
		return v
	}
	v := &ir.Var{Name: name, Type: ir.TypeInt, Index: len(b.vars)}
	b.vars[name] = v
	return v
}

func (b *builder) nextLine() int {
	b.line++
	return b.line
}

func (b *builder) linkPendingTo(pending []pendingEdge, to ir.Stmt) {
	for _, p := range pending {
		b.g.AddEdge(p.from, to, p.kind, p.label)
	}
}

func (b *builder) append(s *toyStmt) {
	s.index = len(b.stmts)
	b.stmts = append(b.stmts, s)
	b.g.AddNode(s)
}

// buildStmts lowers a statement list into the CFG, returning the
// dangling out-edges control can leave the list through (empty if every
// path returns).
func (b *builder) buildStmts(stmts []*Stmt, preds []pendingEdge) []pendingEdge {
	current := preds
	for _, s := range stmts {
		current = b.buildStmt(s, current)
	}
	return current
}

func (b *builder) buildStmt(s *Stmt, preds []pendingEdge) []pendingEdge {
	switch {
	case s.Let != nil:
		rhs := b.expr(s.Let.Expr)
		node := &toyStmt{line: b.nextLine(), isDef: true, lhs: b.varFor(s.Let.Name), rhs: rhs}
		if _, ok := rhs.(*ir.Invoke); ok {
			node.isInvoke = true
		}
		b.linkPendingTo(preds, node)
		b.append(node)
		return []pendingEdge{{from: node, kind: cfg.Normal}}

	case s.Assign != nil:
		rhs := b.expr(s.Assign.Expr)
		node := &toyStmt{line: b.nextLine(), isDef: true, lhs: b.varFor(s.Assign.Name), rhs: rhs}
		if _, ok := rhs.(*ir.Invoke); ok {
			node.isInvoke = true
		}
		b.linkPendingTo(preds, node)
		b.append(node)
		return []pendingEdge{{from: node, kind: cfg.Normal}}

	case s.If != nil:
		cond := &toyStmt{line: b.nextLine(), isIf: true, rhs: b.expr(s.If.Cond)}
		b.linkPendingTo(preds, cond)
		b.append(cond)
		thenExits := b.buildStmts(s.If.Then, []pendingEdge{{from: cond, kind: cfg.IfTrue}})
		var elseExits []pendingEdge
		if s.If.Else != nil {
			elseExits = b.buildStmts(s.If.Else, []pendingEdge{{from: cond, kind: cfg.IfFalse}})
		} else {
			elseExits = []pendingEdge{{from: cond, kind: cfg.IfFalse}}
		}
		return append(thenExits, elseExits...)

	case s.While != nil:
		cond := &toyStmt{line: b.nextLine(), isIf: true, rhs: b.expr(s.While.Cond)}
		b.linkPendingTo(preds, cond)
		b.append(cond)
		bodyExits := b.buildStmts(s.While.Body, []pendingEdge{{from: cond, kind: cfg.IfTrue}})
		b.linkPendingTo(bodyExits, cond)
		return []pendingEdge{{from: cond, kind: cfg.IfFalse}}

	case s.Switch != nil:
		sw := &toyStmt{line: b.nextLine(), isSwitch: true, rhs: b.expr(s.Switch.Cond)}
		b.linkPendingTo(preds, sw)
		b.append(sw)

		var exits []pendingEdge
		var labels []int32
		hasDefault := false
		for _, c := range s.Switch.Cases {
			switch {
			case c.Case != nil:
				n, _ := strconv.ParseInt(c.Case.Label, 10, 32)
				label := int32(n)
				labels = append(labels, label)
				caseExits := b.buildStmts(c.Case.Body, []pendingEdge{{from: sw, kind: cfg.SwitchCase, label: label}})
				exits = append(exits, caseExits...)
			case c.Default != nil:
				hasDefault = true
				defaultExits := b.buildStmts(c.Default.Body, []pendingEdge{{from: sw, kind: cfg.SwitchDefault}})
				exits = append(exits, defaultExits...)
			}
		}
		if !hasDefault {
			exits = append(exits, pendingEdge{from: sw, kind: cfg.SwitchDefault})
		}
		sw.caseLabels = labels
		return exits

	case s.Return != nil:
		var rhs ir.Expr
		if s.Return.Expr != nil {
			rhs = b.expr(s.Return.Expr)
		}
		node := &toyStmt{line: b.nextLine(), isReturn: true, rhs: rhs}
		b.linkPendingTo(preds, node)
		b.append(node)
		b.g.AddEdge(node, b.exit, cfg.Normal, 0)
		return nil

	case s.Expr != nil:
		rhs := b.expr(s.Expr.Expr)
		node := &toyStmt{line: b.nextLine(), rhs: rhs}
		if _, ok := rhs.(*ir.Invoke); ok {
			node.isInvoke = true
		}
		b.linkPendingTo(preds, node)
		b.append(node)
		return []pendingEdge{{from: node, kind: cfg.Normal}}
	}
	return preds
}

func (b *builder) expr(e *Expr) ir.Expr {
	left := b.unary(e.Left)
	for _, op := range e.Ops {
		left = &ir.BinaryExpr{Op: binOp(op.Operator), A: left, B: b.unary(op.Right), ValType: resultType(op.Operator)}
	}
	return left
}

func (b *builder) unary(u *UnaryExpr) ir.Expr {
	val := b.primary(u.Value)
	if u.Operator == nil {
		return val
	}
	switch *u.Operator {
	case "-":
		return &ir.BinaryExpr{Op: ir.Sub, A: &ir.IntLiteral{Value: 0}, B: val, ValType: ir.TypeInt}
	case "!":
		return &ir.BinaryExpr{Op: ir.Eq, A: val, B: &ir.IntLiteral{Value: 0}, ValType: ir.TypeBoolean}
	}
	return val
}

func (b *builder) primary(p *PrimaryExpr) ir.Expr {
	switch {
	case p.Call != nil:
		return b.call(p.Call)
	case p.Number != nil:
		n, _ := strconv.ParseInt(*p.Number, 10, 32)
		return &ir.IntLiteral{Value: int32(n)}
	case p.Ident != nil:
		return &ir.VarRef{V: b.varFor(*p.Ident)}
	case p.Parens != nil:
		return b.expr(p.Parens)
	}
	return nil
}

func (b *builder) call(c *CallExpr) *ir.Invoke {
	var declClass string
	var kind ir.DispatchKind
	switch {
	case c.Recv == nil:
		declClass, kind = b.currentClass, ir.DispatchSpecial
	case *c.Recv == "this":
		declClass, kind = b.currentClass, ir.DispatchVirtual
	default:
		declClass, kind = *c.Recv, ir.DispatchStatic
	}

	args := make([]ir.Expr, len(c.Args))
	for i, a := range c.Args {
		args[i] = b.expr(a)
	}
	return &ir.Invoke{
		Ref:     ir.MethodRef{DeclaringClass: declClass, Subsignature: subsignature(c.Name, len(c.Args))},
		Args:    args,
		Kind:    kind,
		ValType: ir.TypeInt,
	}
}

func binOp(op string) ir.BinOp {
	switch op {
	case "+":
		return ir.Add
	case "-":
		return ir.Sub
	case "*":
		return ir.Mul
	case "/":
		return ir.Div
	case "%":
		return ir.Rem
	case "&&":
		return ir.And
	case "||":
		return ir.Or
	case "==":
		return ir.Eq
	case "!=":
		return ir.Ne
	case "<":
		return ir.Lt
	case "<=":
		return ir.Le
	case ">":
		return ir.Gt
	case ">=":
		return ir.Ge
	default:
		return ir.Add
	}
}

func resultType(op string) ir.Type {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=", "&&", "||":
		return ir.TypeBoolean
	default:
		return ir.TypeInt
	}
}

// toyStmt is the concrete ir.Stmt this builder produces.
type toyStmt struct {
	line       int
	index      int
	isDef      bool
	isIf       bool
	isSwitch   bool
	isInvoke   bool
	isReturn   bool
	lhs        *ir.Var
	rhs        ir.Expr
	caseLabels []int32
}

func (s *toyStmt) Line() int          { return s.line }
func (s *toyStmt) Index() int         { return s.index }
func (s *toyStmt) IsDefinition() bool { return s.isDef }
func (s *toyStmt) IsIf() bool         { return s.isIf }
func (s *toyStmt) IsSwitch() bool     { return s.isSwitch }
func (s *toyStmt) IsInvoke() bool     { return s.isInvoke }
func (s *toyStmt) IsReturn() bool     { return s.isReturn }

// CaseLabels implements ir.SwitchLabels: the constant labels this
// switch's SwitchCase edges correspond to, in source order.
func (s *toyStmt) CaseLabels() []int32 { return s.caseLabels }

func (s *toyStmt) LHS() (*ir.Var, bool) {
	if s.lhs == nil {
		return nil, false
	}
	return s.lhs, true
}

func (s *toyStmt) RHS() ir.Expr { return s.rhs }
