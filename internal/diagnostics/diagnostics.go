// Package diagnostics implements the engine's error-reporting and
// logging surface (spec §7): precondition violations are fatal faults,
// formatted the way the teacher's internal/errors package formats
// compiler errors, and every subsystem logs through a shared
// commonlog-backed logger factory.
package diagnostics

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"
)

// Code identifies a class of fault, mirroring the teacher's E-numbered
// error codes but scoped to the engine's own precondition failures.
type Code string

const (
	// CodeArityMismatch is a call/return edge whose argument count does
	// not match the callee's parameter count (spec §7).
	CodeArityMismatch Code = "F001"
	// CodeMissingCFG is a method whose result map has no CFG published
	// under ir.CFGResultID.
	CodeMissingCFG Code = "F002"
	// CodeUnsupportedStrategy is a request to solve with a solver
	// strategy the engine does not implement.
	CodeUnsupportedStrategy Code = "F003"
)

// Fault is a precondition violation (spec §7): a programming error, not
// a recoverable failure. Producing a Fault always aborts the current
// analysis; it never corrupts results already computed for other
// methods.
type Fault struct {
	Code    Code
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("[%s] %s", f.Code, f.Message)
}

// NewFault constructs a Fault with a formatted message.
func NewFault(code Code, format string, args ...any) *Fault {
	return &Fault{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Format renders a Fault the way the teacher's ErrorReporter renders a
// CompilerError: a bold, colored "fault[code]: message" header.
func Format(f *Fault) string {
	bold := color.New(color.Bold).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	return fmt.Sprintf("%s[%s]: %s", red(bold("fault")), f.Code, f.Message)
}

// GetLogger returns the shared structured logger for a subsystem name
// (e.g. "flowcore.solver"), using the teacher's commonlog idiom
// (cmd/kanso-lsp/main.go configures the same backend with
// commonlog.Configure).
func GetLogger(name string) commonlog.Logger {
	return commonlog.GetLogger(name)
}
