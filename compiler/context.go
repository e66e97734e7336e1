package compiler

import "github.com/wudi/threadvm/opcodes"

// compileContext is a parent-chained compilation scope, in the teacher's
// CompileContext idiom (compiler/context.go): it chains to its enclosing
// scope and carries the break-label plumbing loops need.
//
// Unlike the teacher, slots aren't numbered here — ENTERSCOPE/ASSIGN/LD
// address bindings by name, so there is no variable-slot table to keep;
// name resolution is left entirely to the runtime's environment chain
// (vm.EnvRegistry.lookup), not tracked at compile time.
type compileContext struct {
	parent *compileContext

	// breakPatches accumulates the instruction indices of GOTOs emitted by
	// a break statement inside the nearest enclosing loop; loop compilation
	// patches every one of them to the loop's exit address once known. nil
	// outside a loop, so a break with no enclosing loop is caught as a
	// CompileError rather than silently patching the wrong loop.
	breakPatches *[]int
}

func newCompileContext(parent *compileContext) *compileContext {
	return &compileContext{parent: parent}
}

// childLoop returns a child context that starts a fresh break-patch list,
// the way the teacher's loop compilation saves/restores BreakLabel.
func (c *compileContext) childLoop() *compileContext {
	child := newCompileContext(c)
	patches := make([]int, 0)
	child.breakPatches = &patches
	return child
}

// childBlock returns a child context that inherits the nearest enclosing
// loop's break-patch list, so a break inside a nested (non-loop) block
// still reaches its loop.
func (c *compileContext) childBlock() *compileContext {
	child := newCompileContext(c)
	child.breakPatches = c.breakPatches
	return child
}

// forwardJump records that the GOTO/JOF/SPAWN at patchIndex still needs its
// target address filled in; patch(instrs, target) does the filling-in once
// the target instruction's position is known. This is the teacher's
// ForwardJump idiom, reduced to the one field this language's fixed-shape
// GOTO/JOF/SPAWN instructions need (the teacher's is generic over opcode
// type and an immediate operand because PHP's jump targets take several
// shapes; here every forward jump is a GOTO, JOF or SPAWN address).
type forwardJump struct {
	patchIndex int
}

func (j forwardJump) patch(instrs []opcodes.Instruction, target int) {
	switch instrs[j.patchIndex].Op {
	case opcodes.GOTO, opcodes.JOF, opcodes.SPAWN:
		instrs[j.patchIndex].Addr = target
	default:
		panic("forwardJump.patch: instruction at patch index is not GOTO/JOF/SPAWN")
	}
}
