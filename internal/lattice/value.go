// Package lattice implements the three-point constant-propagation value
// lattice and the fact containers built on top of it.
package lattice

import "fmt"

// Kind tags the three variants of Value. The lattice has height 3:
// Undef (bottom) -> Const(i) -> NAC (top).
type Kind int8

const (
	UndefKind Kind = iota
	ConstKind
	NACKind
)

// Value is a closed sum of UNDEF, CONST(i32), and NAC. It is an immutable
// value object; construct one with Undef, NewConst, or NAC and never
// mutate it in place.
type Value struct {
	kind Kind
	c    int32
}

// Undef returns the bottom value: no information.
func Undef() Value { return Value{kind: UndefKind} }

// NewConst returns the value denoting exactly i.
func NewConst(i int32) Value { return Value{kind: ConstKind, c: i} }

// NAC returns the top value: known to vary, not a constant.
func NAC() Value { return Value{kind: NACKind} }

func (v Value) IsUndef() bool    { return v.kind == UndefKind }
func (v Value) IsConstant() bool { return v.kind == ConstKind }
func (v Value) IsNAC() bool      { return v.kind == NACKind }

// Constant returns the constant payload and true when IsConstant, or
// (0, false) otherwise.
func (v Value) Constant() (int32, bool) {
	if v.kind != ConstKind {
		return 0, false
	}
	return v.c, true
}

// Equal is structural equality.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	return v.kind != ConstKind || v.c == o.c
}

func (v Value) String() string {
	switch v.kind {
	case UndefKind:
		return "UNDEF"
	case NACKind:
		return "NAC"
	case ConstKind:
		return fmt.Sprintf("%d", v.c)
	default:
		return "?"
	}
}

// Meet implements the meet table from spec §3:
//
//	meet(a, b)               = meet(b, a)
//	meet(a, UNDEF)            = a
//	meet(a, NAC)              = NAC
//	meet(CONST(c), CONST(c))  = CONST(c)
//	meet(CONST(c), CONST(d))  = NAC  (c != d)
func Meet(a, b Value) Value {
	if a.kind == UndefKind {
		return b
	}
	if b.kind == UndefKind {
		return a
	}
	if a.kind == NACKind || b.kind == NACKind {
		return NAC()
	}
	// both constant
	if a.c == b.c {
		return a
	}
	return NAC()
}
