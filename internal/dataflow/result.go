package dataflow

// DataflowResult holds the IN and OUT fact computed for every CFG node
// (spec §3). It is written only by its owning solver run; once the
// solver returns, callers treat it as frozen and read-only.
type DataflowResult[N comparable, F any] struct {
	in  map[N]F
	out map[N]F
}

func newResult[N comparable, F any]() *DataflowResult[N, F] {
	return &DataflowResult[N, F]{
		in:  make(map[N]F),
		out: make(map[N]F),
	}
}

// NewDataflowResult builds a DataflowResult from precomputed IN/OUT
// maps. It exists for solvers outside this package (the ICFG solver in
// internal/analysis/interconstprop does not share this package's
// single-entry/single-exit assumption and drives its own fixed point).
func NewDataflowResult[N comparable, F any](in, out map[N]F) *DataflowResult[N, F] {
	return &DataflowResult[N, F]{in: in, out: out}
}

func (r *DataflowResult[N, F]) In(n N) F  { return r.in[n] }
func (r *DataflowResult[N, F]) Out(n N) F { return r.out[n] }

func (r *DataflowResult[N, F]) setIn(n N, f F)  { r.in[n] = f }
func (r *DataflowResult[N, F]) setOut(n N, f F) { r.out[n] = f }
