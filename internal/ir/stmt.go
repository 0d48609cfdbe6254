package ir

// Stmt is a single IR statement: the CFG node type for intraprocedural
// analyses. Spec §6: source line number, dense index within its method,
// optional LHS, RHS expression, and a tag identifying its statement form.
type Stmt interface {
	Line() int
	Index() int
	IsDefinition() bool
	IsIf() bool
	IsSwitch() bool
	IsInvoke() bool
	IsReturn() bool

	// LHS returns the assigned variable and true for a definition
	// statement (including an invoke whose result is captured).
	LHS() (*Var, bool)

	// RHS is the statement's right-hand expression: the assigned
	// expression for a definition, the branch condition for an if, the
	// discriminant for a switch, the Invoke itself for a bare call
	// statement, or the returned expression for a return statement (nil
	// for a void return or a statement with no operand).
	RHS() Expr
}

// SwitchLabels is implemented by switch statements to expose the case
// labels their CFG's SWITCH_CASE edges correspond to (spec §4.7 needs the
// mapping from a constant discriminant to the matching successor).
type SwitchLabels interface {
	CaseLabels() []int32
}

// Method is the read-only per-method IR surface (spec §6).
type Method interface {
	Name() string
	DeclaringClass() string
	Subsignature() string
	IsStatic() bool
	IsAbstract() bool

	Statements() []Stmt
	Params() []*Var
	ReturnType() Type

	// GetResult/SetResult implement the result map: earlier analyses
	// (e.g. the CFG builder) publish under their analysis ID, and later
	// analyses fetch and publish their own results the same way.
	GetResult(analysisID string) (any, bool)
	SetResult(analysisID string, result any)
}

// CFGResultID is the result-map key the IR builder publishes a method's
// *cfg.Graph[Stmt] under (spec §6's example of an earlier result fetched
// via GetResult).
const CFGResultID = "cfg"

// sentinel is the minimal Stmt implementation used for a CFG's synthetic
// entry and exit nodes: no tag is set, so every analysis's transfer
// function treats it as a pure pass-through node.
type sentinel struct {
	label string
	index int
}

// NewEntrySentinel returns a fresh, uniquely-identified entry node for
// one method's CFG.
func NewEntrySentinel() Stmt { return &sentinel{label: "entry", index: -1} }

// NewExitSentinel returns a fresh, uniquely-identified exit node for one
// method's CFG.
func NewExitSentinel() Stmt { return &sentinel{label: "exit", index: -2} }

func (s *sentinel) Line() int             { return 0 }
func (s *sentinel) Index() int            { return s.index }
func (s *sentinel) IsDefinition() bool    { return false }
func (s *sentinel) IsIf() bool            { return false }
func (s *sentinel) IsSwitch() bool        { return false }
func (s *sentinel) IsInvoke() bool        { return false }
func (s *sentinel) IsReturn() bool        { return false }
func (s *sentinel) LHS() (*Var, bool)     { return nil, false }
func (s *sentinel) RHS() Expr             { return nil }
func (s *sentinel) String() string        { return s.label }
