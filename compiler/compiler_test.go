package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/threadvm/ast"
	"github.com/wudi/threadvm/opcodes"
	"github.com/wudi/threadvm/registry"
	"github.com/wudi/threadvm/values"
	"github.com/wudi/threadvm/vm"
)

// run compiles prog and executes it to completion, returning the main
// thread's final operand-stack value (if any).
func run(t *testing.T, prog *ast.Program) (*values.Value, bool) {
	t.Helper()
	instrs, err := Compile(prog)
	require.NoError(t, err)

	table := &registry.Table{}
	rt := vm.New(instrs, table)
	rt, err = vm.Run(rt)
	require.NoError(t, err)
	return rt.Result()
}

func TestCompile_Literal(t *testing.T) {
	prog := ast.NewProgram(ast.NewBlock(nil, ast.NewIntLit(42)))
	v, ok := run(t, prog)
	require.True(t, ok)
	assert.Equal(t, int64(42), v.Int())
}

func TestCompile_ExprStmtLeavesEmptyStack(t *testing.T) {
	prog := ast.NewProgram(ast.NewBlock(
		[]ast.Stmt{ast.NewExprStmt(ast.NewIntLit(42))},
		nil,
	))
	_, ok := run(t, prog)
	assert.False(t, ok, "a statement-only program leaves no value on the operand stack")
}

func TestCompile_LetAndArithmetic(t *testing.T) {
	// let x = 2; let y = 3; x + y
	body := ast.NewBlock(
		[]ast.Stmt{
			ast.NewLet("x", ast.NewIntLit(2)),
			ast.NewLet("y", ast.NewIntLit(3)),
		},
		ast.NewBinary(ast.Add, ast.NewSymbol("x"), ast.NewSymbol("y")),
	)
	v, ok := run(t, ast.NewProgram(body))
	require.True(t, ok)
	assert.Equal(t, int64(5), v.Int())
}

func TestCompile_IfElseExpression(t *testing.T) {
	then := ast.NewBlock(nil, ast.NewIntLit(1))
	els := ast.NewBlock(nil, ast.NewIntLit(0))
	ifExpr := ast.NewIfExpr(ast.NewBoolLit(true), then, els)
	prog := ast.NewProgram(ast.NewBlock(nil, ifExpr))

	v, ok := run(t, prog)
	require.True(t, ok)
	assert.Equal(t, int64(1), v.Int())
}

func TestCompile_IfStmtImplicitElseProducesUnit(t *testing.T) {
	// if false { 1; } -- no else, condition false, so the statement's
	// own value (discarded by the enclosing POP) is the implicit Unit.
	// The program's tail reads back the let-bound flag to prove we got here.
	then := ast.NewBlock([]ast.Stmt{ast.NewExprStmt(ast.NewIntLit(1))}, nil)
	ifStmt := ast.NewIfStmt(ast.NewBoolLit(false), then)
	body := ast.NewBlock(
		[]ast.Stmt{ast.NewLet("done", ast.NewBoolLit(true)), ifStmt},
		ast.NewSymbol("done"),
	)
	v, ok := run(t, ast.NewProgram(body))
	require.True(t, ok)
	assert.True(t, v.Bool())
}

func TestCompile_NoneLikeBlockSynthesizesUnit(t *testing.T) {
	// { { } } as a statement: nested blocks with no tail at all.
	inner := ast.NewBlock(nil, nil)
	outer := ast.NewBlock(nil, inner)
	prog := ast.NewProgram(ast.NewBlock(
		[]ast.Stmt{ast.NewExprStmt(outer)},
		ast.NewBoolLit(true),
	))
	v, ok := run(t, prog)
	require.True(t, ok)
	assert.True(t, v.Bool())
}

func TestCompile_LogicalAndShortCircuits(t *testing.T) {
	// false && (1/0 == 0) -- if the rhs ran, this program would error out.
	rhs := ast.NewBinary(ast.Eq,
		ast.NewBinary(ast.Div, ast.NewIntLit(1), ast.NewIntLit(0)),
		ast.NewIntLit(0))
	expr := ast.NewBinary(ast.And, ast.NewBoolLit(false), rhs)
	prog := ast.NewProgram(ast.NewBlock(nil, expr))

	v, ok := run(t, prog)
	require.True(t, ok)
	assert.False(t, v.Bool())
}

func TestCompile_LogicalOrShortCircuits(t *testing.T) {
	rhs := ast.NewBinary(ast.Eq,
		ast.NewBinary(ast.Div, ast.NewIntLit(1), ast.NewIntLit(0)),
		ast.NewIntLit(0))
	expr := ast.NewBinary(ast.Or, ast.NewBoolLit(true), rhs)
	prog := ast.NewProgram(ast.NewBlock(nil, expr))

	v, ok := run(t, prog)
	require.True(t, ok)
	assert.True(t, v.Bool())
}

func TestCompile_FunctionCall(t *testing.T) {
	addBody := ast.NewBlock(nil, ast.NewBinary(ast.Add, ast.NewSymbol("a"), ast.NewSymbol("b")))
	addDecl := ast.NewFnDecl("add", []string{"a", "b"}, addBody)
	call := ast.NewCall(ast.NewSymbol("add"), ast.NewIntLit(2), ast.NewIntLit(3))
	prog := ast.NewProgram(ast.NewBlock([]ast.Stmt{addDecl}, call))

	v, ok := run(t, prog)
	require.True(t, ok)
	assert.Equal(t, int64(5), v.Int())
}

func TestCompile_ClosureCapturesEnvironmentAtCreation(t *testing.T) {
	// fn make_adder(x) { fn(y) { x + y } }
	// let add5 = make_adder(5);
	// add5(3)
	inner := ast.NewFnLit("", []string{"y"},
		ast.NewBlock(nil, ast.NewBinary(ast.Add, ast.NewSymbol("x"), ast.NewSymbol("y"))))
	makeAdder := ast.NewFnDecl("make_adder", []string{"x"}, ast.NewBlock(nil, inner))
	letAdd5 := ast.NewLet("add5", ast.NewCall(ast.NewSymbol("make_adder"), ast.NewIntLit(5)))
	tail := ast.NewCall(ast.NewSymbol("add5"), ast.NewIntLit(3))

	prog := ast.NewProgram(ast.NewBlock([]ast.Stmt{makeAdder, letAdd5}, tail))
	v, ok := run(t, prog)
	require.True(t, ok)
	assert.Equal(t, int64(8), v.Int())
}

func TestCompile_RecursiveFunction(t *testing.T) {
	// fn fact(n) { if n == 0 { 1 } else { n * fact(n - 1) } }
	// fact(5)
	cond := ast.NewBinary(ast.Eq, ast.NewSymbol("n"), ast.NewIntLit(0))
	then := ast.NewBlock(nil, ast.NewIntLit(1))
	recCall := ast.NewCall(ast.NewSymbol("fact"),
		ast.NewBinary(ast.Sub, ast.NewSymbol("n"), ast.NewIntLit(1)))
	els := ast.NewBlock(nil, ast.NewBinary(ast.Mul, ast.NewSymbol("n"), recCall))
	factBody := ast.NewBlock(nil, ast.NewIfExpr(cond, then, els))
	factDecl := ast.NewFnDecl("fact", []string{"n"}, factBody)

	call := ast.NewCall(ast.NewSymbol("fact"), ast.NewIntLit(5))
	prog := ast.NewProgram(ast.NewBlock([]ast.Stmt{factDecl}, call))

	v, ok := run(t, prog)
	require.True(t, ok)
	assert.Equal(t, int64(120), v.Int())
}

func TestCompile_LoopWithBreak(t *testing.T) {
	// let i = 0;
	// loop {
	//   i = i + 1;
	//   if i == 3 { break; }
	// }
	// i
	assign := ast.NewAssign("i", ast.NewBinary(ast.Add, ast.NewSymbol("i"), ast.NewIntLit(1)))
	ifBreak := ast.NewIfStmt(
		ast.NewBinary(ast.Eq, ast.NewSymbol("i"), ast.NewIntLit(3)),
		ast.NewBlock([]ast.Stmt{ast.NewBreak()}, nil),
	)
	loop := ast.NewLoop(ast.NewBlock([]ast.Stmt{assign, ifBreak}, nil))
	body := ast.NewBlock([]ast.Stmt{ast.NewLet("i", ast.NewIntLit(0)), loop}, ast.NewSymbol("i"))

	v, ok := run(t, ast.NewProgram(body))
	require.True(t, ok)
	assert.Equal(t, int64(3), v.Int())
}

func TestCompile_SpawnAndJoin(t *testing.T) {
	addBody := ast.NewBlock(nil, ast.NewBinary(ast.Add, ast.NewSymbol("a"), ast.NewSymbol("b")))
	addDecl := ast.NewFnDecl("add", []string{"a", "b"}, addBody)
	spawnCall := ast.NewCall(ast.NewSymbol("add"), ast.NewIntLit(2), ast.NewIntLit(3))
	letThread := ast.NewLet("t", ast.NewSpawn(spawnCall))
	letResult := ast.NewLet("r", ast.NewJoin("t"))

	body := ast.NewBlock([]ast.Stmt{addDecl, letThread, letResult}, ast.NewSymbol("r"))
	v, ok := run(t, ast.NewProgram(body))
	require.True(t, ok)
	assert.Equal(t, int64(5), v.Int())
}

func TestCompile_BreakOutsideLoopIsCompileError(t *testing.T) {
	body := ast.NewBlock([]ast.Stmt{ast.NewBreak()}, nil)
	_, err := Compile(ast.NewProgram(body))
	assert.Error(t, err)
}

func TestCompile_EmitsNoAndOrBinop(t *testing.T) {
	expr := ast.NewBinary(ast.And, ast.NewBoolLit(true), ast.NewBoolLit(false))
	instrs, err := Compile(ast.NewProgram(ast.NewBlock(nil, expr)))
	require.NoError(t, err)
	for _, in := range instrs {
		if in.Op == opcodes.BINOP {
			t.Fatalf("&& must lower to JOF/GOTO, found a BINOP instruction: %v", in)
		}
	}
}
