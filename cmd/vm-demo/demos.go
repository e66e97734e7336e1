package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/wudi/threadvm/ast"
)

var spawnJoinCommand = &cli.Command{
	Name:  "spawn-join",
	Usage: "spawns a worker thread, joins it, and prints its return value",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		return runDemo(cmd, "spawn-join", spawnJoinProgram())
	},
}

var semaphoreFifoCommand = &cli.Command{
	Name:  "semaphore-fifo",
	Usage: "blocks a worker on a semaphore, posts it from the main thread, and joins",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		return runDemo(cmd, "semaphore-fifo", semaphoreFifoProgram())
	},
}

var closuresCommand = &cli.Command{
	Name:  "closures",
	Usage: "builds a closure over a captured parameter and calls it later",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		return runDemo(cmd, "closures", closuresProgram())
	},
}

var shortCircuitCommand = &cli.Command{
	Name:  "short-circuit",
	Usage: "proves && and || never evaluate their right-hand side when short-circuited",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		return runDemo(cmd, "short-circuit", shortCircuitProgram())
	},
}

// spawnJoinProgram builds:
//
//	fn add(a, b) { a + b }
//	let result = spawn add(2, 3);
//	let value = join result;
//	value
func spawnJoinProgram() *ast.Program {
	addBody := ast.NewBlock(nil, ast.NewBinary(ast.Add, ast.NewSymbol("a"), ast.NewSymbol("b")))
	addDecl := ast.NewFnDecl("add", []string{"a", "b"}, addBody)

	spawnCall := ast.NewCall(ast.NewSymbol("add"), ast.NewIntLit(2), ast.NewIntLit(3))
	letResult := ast.NewLet("result", ast.NewSpawn(spawnCall))
	letValue := ast.NewLet("value", ast.NewJoin("result"))

	body := ast.NewBlock([]ast.Stmt{addDecl, letResult, letValue}, ast.NewSymbol("value"))
	return ast.NewProgram(body)
}

// semaphoreFifoProgram builds:
//
//	fn worker(s) { wait s; 42 }
//	let s = sem(0);
//	let t = spawn worker(s);
//	yield;      // let the worker run up to its wait and block
//	post s;
//	let r = join t;
//	r
func semaphoreFifoProgram() *ast.Program {
	workerBody := ast.NewBlock(
		[]ast.Stmt{ast.NewWait(ast.NewSymbol("s"))},
		ast.NewIntLit(42),
	)
	workerDecl := ast.NewFnDecl("worker", []string{"s"}, workerBody)

	letSem := ast.NewLet("s", ast.NewCall(ast.NewSymbol("sem"), ast.NewIntLit(0)))
	spawnCall := ast.NewCall(ast.NewSymbol("worker"), ast.NewSymbol("s"))
	letThread := ast.NewLet("t", ast.NewSpawn(spawnCall))
	yieldStmt := ast.NewYield()
	postStmt := ast.NewPost(ast.NewSymbol("s"))
	letResult := ast.NewLet("r", ast.NewJoin("t"))

	body := ast.NewBlock(
		[]ast.Stmt{workerDecl, letSem, letThread, yieldStmt, postStmt, letResult},
		ast.NewSymbol("r"),
	)
	return ast.NewProgram(body)
}

// closuresProgram builds:
//
//	fn make_adder(x) { fn(y) { x + y } }
//	let add5 = make_adder(5);
//	add5(3)
func closuresProgram() *ast.Program {
	innerFn := ast.NewFnLit("", []string{"y"}, ast.NewBlock(nil,
		ast.NewBinary(ast.Add, ast.NewSymbol("x"), ast.NewSymbol("y"))))
	makeAdderBody := ast.NewBlock(nil, innerFn)
	makeAdderDecl := ast.NewFnDecl("make_adder", []string{"x"}, makeAdderBody)

	letAdd5 := ast.NewLet("add5", ast.NewCall(ast.NewSymbol("make_adder"), ast.NewIntLit(5)))
	tail := ast.NewCall(ast.NewSymbol("add5"), ast.NewIntLit(3))

	body := ast.NewBlock([]ast.Stmt{makeAdderDecl, letAdd5}, tail)
	return ast.NewProgram(body)
}

// shortCircuitProgram builds:
//
//	let a = false && (1 / 0 == 0);
//	let b = true || (1 / 0 == 0);
//	a
//
// If either operator evaluated its right-hand side, the division by zero
// would abort the VM; reaching the tail expression proves it didn't.
func shortCircuitProgram() *ast.Program {
	divByZeroEq := ast.NewBinary(ast.Eq,
		ast.NewBinary(ast.Div, ast.NewIntLit(1), ast.NewIntLit(0)),
		ast.NewIntLit(0))

	letA := ast.NewLet("a", ast.NewBinary(ast.And, ast.NewBoolLit(false), divByZeroEq))
	letB := ast.NewLet("b", ast.NewBinary(ast.Or, ast.NewBoolLit(true), divByZeroEq))

	body := ast.NewBlock([]ast.Stmt{letA, letB}, ast.NewSymbol("a"))
	return ast.NewProgram(body)
}
