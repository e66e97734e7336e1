// Package compiler lowers the AST (package ast) into the flat bytecode
// array the vm package executes, following core spec §4.1.
package compiler

import (
	"github.com/wudi/threadvm/ast"
	"github.com/wudi/threadvm/errors"
	"github.com/wudi/threadvm/opcodes"
	"github.com/wudi/threadvm/values"
)

type compiler struct {
	instrs []opcodes.Instruction
}

// Compile lowers a complete program to bytecode. No partial result is ever
// returned alongside an error.
func Compile(prog *ast.Program) ([]opcodes.Instruction, error) {
	c := &compiler{}
	ctx := newCompileContext(nil)
	if _, err := c.compileBlock(ctx, prog.Body, false); err != nil {
		return nil, err
	}
	c.emit(opcodes.Done())
	return c.instrs, nil
}

func (c *compiler) emit(instr opcodes.Instruction) int {
	c.instrs = append(c.instrs, instr)
	return len(c.instrs) - 1
}

func (c *compiler) here() int { return len(c.instrs) }

func (c *compiler) patchHere(j forwardJump) { j.patch(c.instrs, c.here()) }

// collectDecls gathers the names a block's *direct* let/fn declarations
// introduce, in source order, so ENTERSCOPE can pre-declare them all as
// Uninitialized before any statement runs — the mechanism mutually
// recursive function declarations rely on (core spec §4.1, "declaration
// pre-pass").
func collectDecls(b *ast.Block) []string {
	var names []string
	for _, s := range b.Stmts {
		switch s := s.(type) {
		case *ast.LetStmt:
			names = append(names, s.Name)
		case *ast.FnDeclStmt:
			names = append(names, s.Name)
		}
	}
	return names
}

// compileBlock lowers a block. If requireValue is true, the block is
// guaranteed to leave exactly one value on the operand stack: a real tail
// expression's value, or a synthesized Unit if the block has none (or its
// tail is itself a block that, recursively, leaves nothing — the "none-like
// block" case). If requireValue is false, a block with no producible tail
// leaves nothing at all; this is how Program's root block and a loop's
// body are compiled. The returned bool reports whether a value was left.
func (c *compiler) compileBlock(parent *compileContext, b *ast.Block, requireValue bool) (bool, error) {
	ctx := parent.childBlock()
	names := collectDecls(b)
	if len(names) > 0 {
		c.emit(opcodes.EnterScope(names))
	}

	for _, s := range b.Stmts {
		if err := c.compileStmt(ctx, s); err != nil {
			return false, err
		}
		c.emit(opcodes.Pop())
	}

	var leavesValue bool
	switch {
	case b.Tail == nil && requireValue:
		c.emit(opcodes.Ldc(values.Unit()))
		leavesValue = true
	case b.Tail == nil:
		leavesValue = false
	default:
		if tailBlock, ok := b.Tail.(*ast.Block); ok {
			v, err := c.compileBlock(ctx, tailBlock, requireValue)
			if err != nil {
				return false, err
			}
			leavesValue = v
		} else {
			if err := c.compileExpr(ctx, b.Tail); err != nil {
				return false, err
			}
			leavesValue = true
		}
	}

	if len(names) > 0 {
		c.emit(opcodes.ExitScope())
	}
	return leavesValue, nil
}

// compileStmt lowers a statement. Every statement, by construction, leaves
// exactly one value on the stack for the enclosing block's trailing POP —
// Unit for declarations/assignments/signals, the branch value for an
// if-statement, or nothing reachable (because control jumped away) for
// break/return.
func (c *compiler) compileStmt(ctx *compileContext, s ast.Stmt) error {
	switch s := s.(type) {
	case *ast.ExprStmt:
		return c.compileExprStmt(ctx, s.Expr)

	case *ast.LetStmt:
		if err := c.compileExpr(ctx, s.Expr); err != nil {
			return err
		}
		c.emit(opcodes.Assign(s.Name))
		c.emit(opcodes.Ldc(values.Unit()))
		return nil

	case *ast.AssignStmt:
		if err := c.compileExpr(ctx, s.Expr); err != nil {
			return err
		}
		c.emit(opcodes.Assign(s.Name))
		c.emit(opcodes.Ldc(values.Unit()))
		return nil

	case *ast.IfStmt:
		empty := ast.NewBlock(nil, nil)
		return c.compileIfElse(ctx, s.Cond, s.Then, empty)

	case *ast.LoopStmt:
		return c.compileLoop(ctx, s)

	case *ast.BreakStmt:
		if ctx.breakPatches == nil {
			return errors.NewCompileError(s.Pos(), "break outside of a loop")
		}
		idx := c.emit(opcodes.Goto(0))
		*ctx.breakPatches = append(*ctx.breakPatches, idx)
		return nil

	case *ast.ReturnStmt:
		if s.Expr != nil {
			if err := c.compileExpr(ctx, s.Expr); err != nil {
				return err
			}
		} else {
			c.emit(opcodes.Ldc(values.Unit()))
		}
		c.emit(opcodes.Reset(opcodes.CallFrame))
		return nil

	case *ast.WaitStmt:
		if err := c.compileExpr(ctx, s.Sem); err != nil {
			return err
		}
		c.emit(opcodes.Wait())
		c.emit(opcodes.Ldc(values.Unit()))
		return nil

	case *ast.PostStmt:
		if err := c.compileExpr(ctx, s.Sem); err != nil {
			return err
		}
		c.emit(opcodes.Post())
		c.emit(opcodes.Ldc(values.Unit()))
		return nil

	case *ast.YieldStmt:
		c.emit(opcodes.Yield())
		c.emit(opcodes.Ldc(values.Unit()))
		return nil

	case *ast.FnDeclStmt:
		return c.compileFnDecl(ctx, s)

	default:
		return errors.NewCompileError(s.Pos(), "unhandled statement type %T", s)
	}
}

// compileExprStmt lowers an expression used as a statement (`e;`). If e is
// a block that statically cannot produce a value, requiring one here
// guarantees a synthesized Unit, so the caller's POP never underflows.
func (c *compiler) compileExprStmt(ctx *compileContext, e ast.Expr) error {
	if b, ok := e.(*ast.Block); ok {
		_, err := c.compileBlock(ctx, b, true)
		return err
	}
	return c.compileExpr(ctx, e)
}

func (c *compiler) compileExpr(ctx *compileContext, e ast.Expr) error {
	switch e := e.(type) {
	case *ast.IntLit:
		c.emit(opcodes.Ldc(values.NewInt(e.Value)))
		return nil
	case *ast.FloatLit:
		c.emit(opcodes.Ldc(values.NewFloat(e.Value)))
		return nil
	case *ast.BoolLit:
		c.emit(opcodes.Ldc(values.NewBool(e.Value)))
		return nil
	case *ast.StringLit:
		c.emit(opcodes.Ldc(values.NewString(e.Value)))
		return nil
	case *ast.Symbol:
		c.emit(opcodes.Ld(e.Name))
		return nil
	case *ast.UnaryExpr:
		return c.compileUnary(ctx, e)
	case *ast.BinaryExpr:
		return c.compileBinary(ctx, e)
	case *ast.Block:
		_, err := c.compileBlock(ctx, e, true)
		return err
	case *ast.IfExpr:
		return c.compileIfElse(ctx, e.Cond, e.Then, e.Else)
	case *ast.CallExpr:
		return c.compileCall(ctx, e)
	case *ast.FnLit:
		return c.compileFnLit(ctx, e)
	case *ast.SpawnExpr:
		return c.compileSpawn(ctx, e)
	case *ast.JoinExpr:
		c.emit(opcodes.Join(e.Thread))
		return nil
	default:
		return errors.NewCompileError(e.Pos(), "unhandled expression type %T", e)
	}
}

func (c *compiler) compileUnary(ctx *compileContext, e *ast.UnaryExpr) error {
	if err := c.compileExpr(ctx, e.Operand); err != nil {
		return err
	}
	var op opcodes.UnOp
	switch e.Op {
	case ast.Neg:
		op = opcodes.Neg
	case ast.Not:
		op = opcodes.Not
	default:
		return errors.NewCompileError(e.Pos(), "unknown unary operator %v", e.Op)
	}
	c.emit(opcodes.Unary(op))
	return nil
}

// compileBinary lowers every binary operator. && and || are short-circuit
// control flow, not BINOP instructions: `a && b` only evaluates b if a is
// true, and `a || b` only evaluates b if a is false (core spec §4.1).
func (c *compiler) compileBinary(ctx *compileContext, e *ast.BinaryExpr) error {
	switch e.Op {
	case ast.And:
		if err := c.compileExpr(ctx, e.Lhs); err != nil {
			return err
		}
		skipRhs := c.emit(opcodes.Jof(0))
		if err := c.compileExpr(ctx, e.Rhs); err != nil {
			return err
		}
		toEnd := c.emit(opcodes.Goto(0))
		c.patchHere(forwardJump{patchIndex: skipRhs})
		c.emit(opcodes.Ldc(values.NewBool(false)))
		c.patchHere(forwardJump{patchIndex: toEnd})
		return nil

	case ast.Or:
		if err := c.compileExpr(ctx, e.Lhs); err != nil {
			return err
		}
		toRhs := c.emit(opcodes.Jof(0))
		toEnd := c.emit(opcodes.Goto(0))
		c.patchHere(forwardJump{patchIndex: toRhs})
		if err := c.compileExpr(ctx, e.Rhs); err != nil {
			return err
		}
		skipTrue := c.emit(opcodes.Goto(0))
		c.patchHere(forwardJump{patchIndex: toEnd})
		c.emit(opcodes.Ldc(values.NewBool(true)))
		c.patchHere(forwardJump{patchIndex: skipTrue})
		return nil
	}

	if err := c.compileExpr(ctx, e.Lhs); err != nil {
		return err
	}
	if err := c.compileExpr(ctx, e.Rhs); err != nil {
		return err
	}
	var op opcodes.BinOp
	switch e.Op {
	case ast.Add:
		op = opcodes.Add
	case ast.Sub:
		op = opcodes.Sub
	case ast.Mul:
		op = opcodes.Mul
	case ast.Div:
		op = opcodes.Div
	case ast.Mod:
		op = opcodes.Mod
	case ast.Lt:
		op = opcodes.Lt
	case ast.Gt:
		op = opcodes.Gt
	case ast.Eq:
		op = opcodes.Eq
	default:
		return errors.NewCompileError(e.Pos(), "unknown binary operator %v", e.Op)
	}
	c.emit(opcodes.Binary(op))
	return nil
}

// compileIfElse lowers `if cond { then } else { els }`. Both branches are
// compiled with requireValue=true, so each leaves exactly one value no
// matter which one runs.
func (c *compiler) compileIfElse(ctx *compileContext, cond ast.Expr, then, els *ast.Block) error {
	if err := c.compileExpr(ctx, cond); err != nil {
		return err
	}
	toElse := c.emit(opcodes.Jof(0))
	if _, err := c.compileBlock(ctx, then, true); err != nil {
		return err
	}
	toEnd := c.emit(opcodes.Goto(0))
	c.patchHere(forwardJump{patchIndex: toElse})
	if _, err := c.compileBlock(ctx, els, true); err != nil {
		return err
	}
	c.patchHere(forwardJump{patchIndex: toEnd})
	return nil
}

// compileLoop lowers `loop { body }`. The body is compiled as a statement
// sequence: any value it happens to leave (a producible tail expression)
// is discarded, since nothing ever consumes a loop's per-iteration result.
// break compiles to a GOTO patched to the instruction right after the
// loop, where a synthesized Unit satisfies the enclosing block's POP (a
// loop is a statement like any other).
func (c *compiler) compileLoop(parent *compileContext, s *ast.LoopStmt) error {
	ctx := parent.childLoop()
	top := c.here()
	leaves, err := c.compileBlock(ctx, s.Body, false)
	if err != nil {
		return err
	}
	if leaves {
		c.emit(opcodes.Pop())
	}
	c.emit(opcodes.Goto(top))

	exit := c.here()
	for _, idx := range *ctx.breakPatches {
		forwardJump{patchIndex: idx}.patch(c.instrs, exit)
	}
	c.emit(opcodes.Ldc(values.Unit()))
	return nil
}

func (c *compiler) compileCall(ctx *compileContext, e *ast.CallExpr) error {
	if err := c.compileExpr(ctx, e.Callee); err != nil {
		return err
	}
	for _, a := range e.Args {
		if err := c.compileExpr(ctx, a); err != nil {
			return err
		}
	}
	c.emit(opcodes.Call(len(e.Args)))
	return nil
}

// compileFnLit lowers an anonymous (or nested, non-self-referential)
// function literal as an expression: LDF carries the address right after
// the skip-GOTO, then the GOTO itself, then the body, then RESET. The
// value LDF pushes is the literal's value in whatever context it appears —
// a let's RHS, a call argument, another block's tail.
func (c *compiler) compileFnLit(ctx *compileContext, e *ast.FnLit) error {
	bodyAddr := c.here() + 2
	c.emit(opcodes.Ldf(bodyAddr, e.Params))
	skip := c.emit(opcodes.Goto(0))
	if err := c.compileFnBody(ctx, e.Body); err != nil {
		return err
	}
	c.patchHere(forwardJump{patchIndex: skip})
	return nil
}

// compileFnDecl lowers a named function declaration. The teacher's
// original (rustscript's bytecode/ignite test fixtures) binds the name
// immediately after LDF, before the skip-GOTO: this way the slot a
// recursive call inside the body will LD is already assigned by the time
// any CALL can run, regardless of the GOTO/ASSIGN ordering in the
// instruction stream (CALL only ever happens after compilation finishes).
func (c *compiler) compileFnDecl(ctx *compileContext, s *ast.FnDeclStmt) error {
	bodyAddr := c.here() + 3
	c.emit(opcodes.Ldf(bodyAddr, s.Params))
	c.emit(opcodes.Assign(s.Name))
	skip := c.emit(opcodes.Goto(0))
	if err := c.compileFnBody(ctx, s.Body); err != nil {
		return err
	}
	c.patchHere(forwardJump{patchIndex: skip})
	c.emit(opcodes.Ldc(values.Unit()))
	return nil
}

// compileFnBody lowers a function's body with requireValue=true: falling
// off the end leaves the tail expression's value (or Unit) as the implicit
// return value, exactly as an explicit `return` would via RESET.
func (c *compiler) compileFnBody(parent *compileContext, body *ast.Block) error {
	ctx := newCompileContext(parent)
	if _, err := c.compileBlock(ctx, body, true); err != nil {
		return err
	}
	c.emit(opcodes.Reset(opcodes.CallFrame))
	return nil
}

// compileSpawn lowers `spawn f(args)`. SPAWN itself clones the current
// thread into a child queued at child_start_addr and pushes the new
// ThreadID onto the parent's stack; the GOTO right after it sends the
// parent straight past the child-only code that follows, which is only
// ever reached by the child's own PC starting at child_start_addr.
func (c *compiler) compileSpawn(ctx *compileContext, e *ast.SpawnExpr) error {
	spawnIdx := c.emit(opcodes.Spawn(0))
	toParentResume := c.emit(opcodes.Goto(0))

	forwardJump{patchIndex: spawnIdx}.patch(c.instrs, c.here())
	c.emit(opcodes.Pop()) // drop the sentinel 0 SPAWN pushed onto the child
	if err := c.compileCall(ctx, e.Call); err != nil {
		return err
	}
	c.emit(opcodes.Done())

	c.patchHere(forwardJump{patchIndex: toParentResume})
	return nil
}
