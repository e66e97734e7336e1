// Package errors defines the error kinds surfaced by the compiler and the
// virtual machine. All of them are fatal to the offending thread and, for
// the runtime, fatal to the VM: none are recovered within bytecode
// execution.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors. Wrap these with fmt.Errorf("...: %w", Err...) to attach
// context; callers can still errors.Is against the sentinel.
var (
	ErrOperandStackUnderflow = errors.New("operand stack underflow")
	ErrRuntimeStackUnderflow = errors.New("runtime stack underflow")
	ErrInternal              = errors.New("internal VM assertion failure")
)

// Position is a source location. Synthesized AST nodes (e.g. the implicit
// else-branch of an if-only statement) use the zero Position.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	if p.Line == 0 && p.Column == 0 {
		return "<unknown>"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// CompileError is raised when the compiler is handed an AST it cannot
// lower: a break outside any loop, an unknown operator, or a node type the
// compiler does not handle. A return outside a function and the
// callability of a symbol are not checked at compile time. No partial
// bytecode is ever returned alongside a CompileError.
type CompileError struct {
	Message string
	Pos     Position
}

func NewCompileError(pos Position, format string, args ...interface{}) *CompileError {
	return &CompileError{Message: fmt.Sprintf(format, args...), Pos: pos}
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile error at %s: %s", e.Pos, e.Message)
}

// PcOutOfBounds is raised when fetch reads past the end of the program.
type PcOutOfBounds struct {
	PC int
}

func (e *PcOutOfBounds) Error() string {
	return fmt.Sprintf("pc out of bounds: %d", e.PC)
}

// UnboundSymbol is raised by LD/ASSIGN when a symbol is not found in the
// current environment chain.
type UnboundSymbol struct {
	Name string
}

func (e *UnboundSymbol) Error() string {
	return fmt.Sprintf("unbound symbol: %q", e.Name)
}

// UninitializedSymbol is raised by LD when the bound value is the
// Uninitialized sentinel left by scope entry.
type UninitializedSymbol struct {
	Name string
}

func (e *UninitializedSymbol) Error() string {
	return fmt.Sprintf("uninitialized symbol read before assignment: %q", e.Name)
}

// TypeError is raised when an operator is applied to operands whose types
// it does not define.
type TypeError struct {
	Op       string
	Operands []string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("type error: operator %q not defined for operands %v", e.Op, e.Operands)
}

// ThreadNotFound is raised by JOIN against an unknown ThreadID.
type ThreadNotFound struct {
	ThreadID int64
}

func (e *ThreadNotFound) Error() string {
	return fmt.Sprintf("thread not found: %d", e.ThreadID)
}

// BuiltinError wraps an error returned by a host builtin function.
type BuiltinError struct {
	Name    string
	Message string
}

func (e *BuiltinError) Error() string {
	return fmt.Sprintf("builtin %q failed: %s", e.Name, e.Message)
}

// Internal wraps a scheduler-invariant violation (e.g. an empty ready queue
// on yield, or a joining thread not actually in the Joining state at the
// join site). These are VM implementation bugs, not user-facing errors.
func Internal(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInternal, fmt.Sprintf(format, args...))
}
