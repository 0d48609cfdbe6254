// Package livevar implements backward live-variable analysis (spec
// §4.4): a may-analysis over SetFact[*ir.Var] consumed by dead-code
// detection.
package livevar

import (
	"flowcore/internal/cfg"
	"flowcore/internal/ir"
	"flowcore/internal/lattice"
)

// ID is this analysis's registry key (spec §6).
const ID = "livevar"

// VarSet is the fact type: the set of variables live at a program point.
type VarSet = *lattice.SetFact[*ir.Var]

// LiveVariable is the capability record for dataflow.Solve.
type LiveVariable struct{}

func New() *LiveVariable { return &LiveVariable{} }

func (*LiveVariable) IsForward() bool { return false }

func (*LiveVariable) NewBoundaryFact(_ *cfg.Graph[ir.Stmt]) VarSet {
	return lattice.NewSetFact[*ir.Var]()
}

func (*LiveVariable) NewInitialFact() VarSet {
	return lattice.NewSetFact[*ir.Var]()
}

func (*LiveVariable) MeetInto(src, dst VarSet) bool {
	return dst.Union(src)
}

// TransferNode computes in := use(s) ∪ (out ∖ def(s)), per spec §4.4.
func (*LiveVariable) TransferNode(stmt ir.Stmt, in, out VarSet) bool {
	next := lattice.NewSetFact[*ir.Var]()
	for _, v := range Use(stmt) {
		next.Add(v)
	}
	if d, ok := Def(stmt); ok {
		for _, v := range out.Diff(lattice.NewSetFactOf(d)).Elements() {
			next.Add(v)
		}
	} else {
		for _, v := range out.Elements() {
			next.Add(v)
		}
	}

	if next.Equal(in) {
		return false
	}
	for _, v := range in.Elements() {
		if !next.Contains(v) {
			in.Remove(v)
		}
	}
	for _, v := range next.Elements() {
		in.Add(v)
	}
	return true
}

// Def returns the variable s assigns, if any. The IR's three-address
// form defines at most one variable per statement.
func Def(s ir.Stmt) (*ir.Var, bool) {
	return s.LHS()
}

// Use returns the variables s reads: the variables occurring in its RHS
// expression tree. For an assignment `x = x + 1`, x is both defined and
// used.
func Use(s ir.Stmt) []*ir.Var {
	return extractVars(s.RHS(), nil)
}

func extractVars(e ir.Expr, out []*ir.Var) []*ir.Var {
	switch x := e.(type) {
	case nil:
		return out
	case *ir.VarRef:
		return append(out, x.V)
	case *ir.IntLiteral:
		return out
	case *ir.BinaryExpr:
		out = extractVars(x.A, out)
		out = extractVars(x.B, out)
		return out
	case *ir.FieldAccess:
		return extractVars(x.Base, out)
	case *ir.ArrayAccess:
		out = extractVars(x.Base, out)
		out = extractVars(x.Index, out)
		return out
	case *ir.Invoke:
		for _, a := range x.Args {
			out = extractVars(a, out)
		}
		return out
	case *ir.NewExpr:
		return out
	case *ir.CastExpr:
		return extractVars(x.Operand, out)
	case *ir.InstanceOfExpr:
		return extractVars(x.Operand, out)
	default:
		return out
	}
}
