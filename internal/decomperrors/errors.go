// Package decomperrors is the decompiler's error family, grounded on
// pkg/errors: a small closed set of typed errors behind a common
// interface rather than bare fmt.Errorf strings, because callers (the
// class aggregator, the CLI) need to tell a per-function structural
// failure apart from a benign diagnostic.
package decomperrors

import "fmt"

// DecompileError is implemented by every error this package produces.
type DecompileError interface {
	error
	Pos() Position
	Kind() string
	Message() string
}

// Position locates a failure within a function body. HL bytecode carries
// no source spans, so this is an opcode index rather than a line/column.
type Position struct {
	FunctionIndex int
	OpcodeIndex   int
}

func (p Position) String() string {
	return fmt.Sprintf("fn#%d@%d", p.FunctionIndex, p.OpcodeIndex)
}

// StructuralError marks a fatal condition: the bytecode violates the
// structured shape the decompiler assumes. It aborts only the function
// currently being decompiled, never the whole module.
type StructuralError struct {
	Position
	Msg string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error at %s: %s", e.Position, e.Msg)
}
func (e *StructuralError) Pos() Position   { return e.Position }
func (e *StructuralError) Kind() string    { return "Structural" }
func (e *StructuralError) Message() string { return e.Msg }

// Diagnostic is a soft, non-fatal condition logged and collected but
// never surfaced as a Go error: stray forward jumps with no matching
// scope, GetGlobal string initializers that cannot be resolved, closures
// that cannot be (or are too deeply nested to be) decompiled. Unresolved
// register reads produce an Unknown placeholder expression and
// unimplemented opcodes are skipped; neither produces a Diagnostic.
type Diagnostic struct {
	Position
	Msg string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("diagnostic at %s: %s", d.Position, d.Msg)
}
