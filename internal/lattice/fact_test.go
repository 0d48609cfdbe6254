package lattice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"flowcore/internal/ir"
	"flowcore/internal/lattice"
)

func TestCPFactAbsentKeyIsUndef(t *testing.T) {
	f := lattice.NewCPFact()
	x := &ir.Var{Name: "x", Type: ir.TypeInt}
	assert.True(t, f.Get(x).IsUndef())
	assert.Equal(t, 0, f.Len())
}

func TestCPFactUpdateStoresAndRemoves(t *testing.T) {
	f := lattice.NewCPFact()
	x := &ir.Var{Name: "x", Type: ir.TypeInt}

	assert.True(t, f.Update(x, lattice.NewConst(1)))
	assert.False(t, f.Update(x, lattice.NewConst(1)), "same value is not a change")
	assert.Equal(t, 1, f.Len())

	assert.True(t, f.Update(x, lattice.Undef()), "storing UNDEF removes the entry")
	assert.Equal(t, 0, f.Len())
	assert.True(t, f.Get(x).IsUndef())
}

func TestCPFactEqualAndCopy(t *testing.T) {
	x := &ir.Var{Name: "x", Type: ir.TypeInt}
	a := lattice.NewCPFact()
	a.Update(x, lattice.NewConst(1))

	b := a.Copy()
	assert.True(t, a.Equal(b))

	b.Update(x, lattice.NewConst(2))
	assert.False(t, a.Equal(b))
	assert.True(t, a.Get(x).Equal(lattice.NewConst(1)), "copy must not alias the original")
}

func TestMeetIntoOnlyTouchesSrcKeys(t *testing.T) {
	x := &ir.Var{Name: "x", Type: ir.TypeInt}
	y := &ir.Var{Name: "y", Type: ir.TypeInt}

	dst := lattice.NewCPFact()
	dst.Update(y, lattice.NewConst(9))

	src := lattice.NewCPFact()
	src.Update(x, lattice.NewConst(1))

	changed := lattice.MeetInto(src, dst)
	assert.True(t, changed)
	assert.True(t, dst.Get(x).Equal(lattice.NewConst(1)))
	assert.True(t, dst.Get(y).Equal(lattice.NewConst(9)), "keys absent from src are untouched")
}

func TestSetFactUnionIsMeet(t *testing.T) {
	x := &ir.Var{Name: "x"}
	y := &ir.Var{Name: "y"}

	a := lattice.NewSetFactOf(x)
	b := lattice.NewSetFactOf(y)

	changed := a.Union(b)
	assert.True(t, changed)
	assert.True(t, a.Contains(x))
	assert.True(t, a.Contains(y))
	assert.Equal(t, 2, a.Len())

	assert.False(t, a.Union(b), "union with an already-subsumed set is a no-op")
}

func TestSetFactDiff(t *testing.T) {
	x := &ir.Var{Name: "x"}
	y := &ir.Var{Name: "y"}
	a := lattice.NewSetFactOf(x, y)
	b := lattice.NewSetFactOf(y)

	d := a.Diff(b)
	assert.True(t, d.Contains(x))
	assert.False(t, d.Contains(y))
	assert.Equal(t, 1, d.Len())
}
