package lattice

import (
	"fmt"
	"sort"
	"strings"

	"flowcore/internal/ir"
)

// CPFact maps variables to Values with the load-bearing convention that
// an absent key denotes UNDEF (spec §3, §9): never materialize a default
// entry, since lattice height bounds depend on the set of touched keys.
type CPFact struct {
	m map[*ir.Var]Value
}

// NewCPFact returns the empty (all-UNDEF) fact.
func NewCPFact() *CPFact {
	return &CPFact{m: make(map[*ir.Var]Value)}
}

// Get returns v's value, or Undef if v has no entry.
func (f *CPFact) Get(v *ir.Var) Value {
	if val, ok := f.m[v]; ok {
		return val
	}
	return Undef()
}

// Update stores val for v and reports whether the fact changed. Storing
// Undef is a no-op removal, preserving the absent-key-means-bottom
// convention.
func (f *CPFact) Update(v *ir.Var, val Value) bool {
	old, had := f.m[v]
	if val.IsUndef() {
		if !had {
			return false
		}
		delete(f.m, v)
		return true
	}
	if had && old.Equal(val) {
		return false
	}
	f.m[v] = val
	return true
}

// Remove deletes v's entry, equivalent to Update(v, Undef()).
func (f *CPFact) Remove(v *ir.Var) {
	delete(f.m, v)
}

// Copy returns a deep (map-level) copy.
func (f *CPFact) Copy() *CPFact {
	out := make(map[*ir.Var]Value, len(f.m))
	for k, v := range f.m {
		out[k] = v
	}
	return &CPFact{m: out}
}

// Equal is structural equality over present entries.
func (f *CPFact) Equal(o *CPFact) bool {
	if len(f.m) != len(o.m) {
		return false
	}
	for k, v := range f.m {
		ov, ok := o.m[k]
		if !ok || !ov.Equal(v) {
			return false
		}
	}
	return true
}

// ForEach iterates the present entries. Iteration order is unspecified.
func (f *CPFact) ForEach(fn func(v *ir.Var, val Value)) {
	for k, v := range f.m {
		fn(k, v)
	}
}

// Len returns the number of present (non-UNDEF) entries.
func (f *CPFact) Len() int { return len(f.m) }

func (f *CPFact) String() string {
	keys := make([]*ir.Var, 0, len(f.m))
	for k := range f.m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Name < keys[j].Name })
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k.Name, f.m[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// MeetInto implements intra constant propagation's meetInto (spec §4.2):
// for each key present in src, dst[k] := meet(dst[k], src[k]). Returns
// whether dst changed.
func MeetInto(src, dst *CPFact) bool {
	changed := false
	src.ForEach(func(v *ir.Var, val Value) {
		if dst.Update(v, Meet(dst.Get(v), val)) {
			changed = true
		}
	})
	return changed
}
