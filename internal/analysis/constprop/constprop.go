// Package constprop implements intraprocedural constant propagation
// (spec §4.2): a forward analysis over CPFact that folds binary
// expressions using two's-complement 32-bit semantics.
package constprop

import (
	"flowcore/internal/cfg"
	"flowcore/internal/ir"
	"flowcore/internal/lattice"
)

// ID is this analysis's registry key (spec §6).
const ID = "constprop"

// ConstantPropagation is the capability record for dataflow.Solve,
// instantiated over ir.Stmt nodes and *lattice.CPFact facts.
type ConstantPropagation struct {
	Method ir.Method
}

func New(m ir.Method) *ConstantPropagation {
	return &ConstantPropagation{Method: m}
}

func (*ConstantPropagation) IsForward() bool { return true }

// NewBoundaryFact maps every formal parameter to NAC: callers are
// unknown intraprocedurally. Non-parameter locals are implicitly UNDEF.
func (c *ConstantPropagation) NewBoundaryFact(_ *cfg.Graph[ir.Stmt]) *lattice.CPFact {
	f := lattice.NewCPFact()
	for _, p := range c.Method.Params() {
		if p.Type.CanHoldInt() {
			f.Update(p, lattice.NAC())
		}
	}
	return f
}

func (*ConstantPropagation) NewInitialFact() *lattice.CPFact {
	return lattice.NewCPFact()
}

func (*ConstantPropagation) MeetInto(src, dst *lattice.CPFact) bool {
	return lattice.MeetInto(src, dst)
}

// TransferNode computes out := meetInto(in, out) composed with the
// statement's gen/kill, per spec §4.2. For a definition `x = rhs` where x
// can hold an int, out[x] := evaluate(rhs, in); otherwise out := in.
func (c *ConstantPropagation) TransferNode(stmt ir.Stmt, in, out *lattice.CPFact) bool {
	return TransferStmt(stmt, in, out)
}

// TransferStmt is the statement transfer function itself, exposed as a
// free function so the interprocedural analysis can delegate non-call
// node transfer to it without needing a ConstantPropagation instance
// (spec §4.6: "Non-call node: identical to intra-CP transferNode").
func TransferStmt(stmt ir.Stmt, in, out *lattice.CPFact) bool {
	changed := lattice.MeetInto(in, out)

	lhs, isDef := stmt.LHS()
	if !isDef || !lhs.Type.CanHoldInt() {
		return changed
	}
	val := Evaluate(stmt.RHS(), in)
	if out.Update(lhs, val) {
		changed = true
	}
	return changed
}

// Evaluate resolves an expression to a Value under the fact in,
// implementing the evaluator of spec §4.2.
func Evaluate(exp ir.Expr, in *lattice.CPFact) lattice.Value {
	switch e := exp.(type) {
	case nil:
		return lattice.Undef()
	case *ir.VarRef:
		return in.Get(e.V)
	case *ir.IntLiteral:
		return lattice.NewConst(e.Value)
	case *ir.BinaryExpr:
		return evaluateBinary(e, in)
	default:
		// Field load, array load, call, allocation, cast, instance-of.
		return lattice.NAC()
	}
}

func evaluateBinary(e *ir.BinaryExpr, in *lattice.CPFact) lattice.Value {
	if !e.A.ExprType().CanHoldInt() || !e.B.ExprType().CanHoldInt() {
		return lattice.Undef()
	}
	va := Evaluate(e.A, in)
	vb := Evaluate(e.B, in)

	if va.IsNAC() || vb.IsNAC() {
		if (e.Op == ir.Div || e.Op == ir.Rem) && isConstZero(vb) {
			return lattice.Undef()
		}
		return lattice.NAC()
	}

	ca, aok := va.Constant()
	cb, bok := vb.Constant()
	if aok && bok {
		return evalConstBinary(e.Op, ca, cb)
	}
	// Mixed UNDEF with CONST (and UNDEF/UNDEF).
	return lattice.Undef()
}

func isConstZero(v lattice.Value) bool {
	c, ok := v.Constant()
	return ok && c == 0
}

// evalConstBinary computes e.Op(a, b) with two's-complement 32-bit
// semantics, per spec §4.2.
func evalConstBinary(op ir.BinOp, a, b int32) lattice.Value {
	switch op {
	case ir.Add:
		return lattice.NewConst(a + b)
	case ir.Sub:
		return lattice.NewConst(a - b)
	case ir.Mul:
		return lattice.NewConst(a * b)
	case ir.Div:
		if b == 0 {
			return lattice.Undef()
		}
		return lattice.NewConst(a / b)
	case ir.Rem:
		if b == 0 {
			return lattice.Undef()
		}
		return lattice.NewConst(a % b)
	case ir.And:
		return lattice.NewConst(a & b)
	case ir.Or:
		return lattice.NewConst(a | b)
	case ir.Xor:
		return lattice.NewConst(a ^ b)
	case ir.Shl:
		return lattice.NewConst(a << (uint32(b) % 32))
	case ir.Shr:
		return lattice.NewConst(a >> (uint32(b) % 32))
	case ir.Ushr:
		return lattice.NewConst(int32(uint32(a) >> (uint32(b) % 32)))
	case ir.Eq:
		return boolConst(a == b)
	case ir.Ne:
		return boolConst(a != b)
	case ir.Lt:
		return boolConst(a < b)
	case ir.Le:
		return boolConst(a <= b)
	case ir.Gt:
		return boolConst(a > b)
	case ir.Ge:
		return boolConst(a >= b)
	default:
		return lattice.NAC()
	}
}

func boolConst(b bool) lattice.Value {
	if b {
		return lattice.NewConst(1)
	}
	return lattice.NewConst(0)
}
