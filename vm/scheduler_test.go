package vm

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/threadvm/ast"
	"github.com/wudi/threadvm/compiler"
	"github.com/wudi/threadvm/runtime"
)

// TestSemaphoreWake_IsFIFOByBlockOrder spawns two workers that both block on
// the same semaphore, then posts once (core spec §5: a single post wakes
// every thread blocked on that semaphore, waking order following
// blocked-queue order — the thread that blocked first is appended to the
// ready queue first, and so runs first).
//
//	fn worker(tag) { wait s; log = log + tag; }
//	let log = "";
//	let s = sem(0);
//	let t1 = spawn worker("A");
//	let t2 = spawn worker("B");
//	yield;           // let both workers run up to their wait and block
//	post s;          // wakes both; t1 (blocked first) runs first
//	let r1 = join t1;
//	let r2 = join t2;
//	log
func TestSemaphoreWake_IsFIFOByBlockOrder(t *testing.T) {
	workerBody := ast.NewBlock(
		[]ast.Stmt{
			ast.NewWait(ast.NewSymbol("s")),
			ast.NewAssign("log", ast.NewBinary(ast.Add, ast.NewSymbol("log"), ast.NewSymbol("tag"))),
		},
		nil,
	)
	workerDecl := ast.NewFnDecl("worker", []string{"tag"}, workerBody)

	letLog := ast.NewLet("log", ast.NewStringLit(""))
	letSem := ast.NewLet("s", ast.NewCall(ast.NewSymbol("sem"), ast.NewIntLit(0)))
	letT1 := ast.NewLet("t1", ast.NewSpawn(ast.NewCall(ast.NewSymbol("worker"), ast.NewStringLit("A"))))
	letT2 := ast.NewLet("t2", ast.NewSpawn(ast.NewCall(ast.NewSymbol("worker"), ast.NewStringLit("B"))))
	yieldStmt := ast.NewYield()
	postStmt := ast.NewPost(ast.NewSymbol("s"))
	letR1 := ast.NewLet("r1", ast.NewJoin("t1"))
	letR2 := ast.NewLet("r2", ast.NewJoin("t2"))

	body := ast.NewBlock(
		[]ast.Stmt{workerDecl, letLog, letSem, letT1, letT2, yieldStmt, postStmt, letR1, letR2},
		ast.NewSymbol("log"),
	)

	instrs, err := compiler.Compile(ast.NewProgram(body))
	require.NoError(t, err)

	table := runtime.Bootstrap(strings.NewReader(""), io.Discard)
	rt := New(instrs, table)
	rt, err = Run(rt)
	require.NoError(t, err)

	v, ok := rt.Result()
	require.True(t, ok)
	assert.Equal(t, "AB", v.Text(), "t1 blocked before t2, so it must wake and run first")
}

// TestRoundRobin_YieldGivesEachSpawnedThreadATurn proves that the yield a
// pending join performs in the parent (the program has no yield statement)
// hands control to the ready children in spawn (FIFO) order, without
// needing the time quantum to expire.
func TestRoundRobin_YieldGivesEachSpawnedThreadATurn(t *testing.T) {
	workerBody := ast.NewBlock(
		[]ast.Stmt{ast.NewAssign("log", ast.NewBinary(ast.Add, ast.NewSymbol("log"), ast.NewSymbol("tag")))},
		nil,
	)
	workerDecl := ast.NewFnDecl("worker", []string{"tag"}, workerBody)

	letLog := ast.NewLet("log", ast.NewStringLit(""))
	letT1 := ast.NewLet("t1", ast.NewSpawn(ast.NewCall(ast.NewSymbol("worker"), ast.NewStringLit("A"))))
	letT2 := ast.NewLet("t2", ast.NewSpawn(ast.NewCall(ast.NewSymbol("worker"), ast.NewStringLit("B"))))
	letR1 := ast.NewLet("r1", ast.NewJoin("t1"))
	letR2 := ast.NewLet("r2", ast.NewJoin("t2"))

	body := ast.NewBlock(
		[]ast.Stmt{workerDecl, letLog, letT1, letT2, letR1, letR2},
		ast.NewSymbol("log"),
	)

	instrs, err := compiler.Compile(ast.NewProgram(body))
	require.NoError(t, err)

	table := runtime.Bootstrap(strings.NewReader(""), io.Discard)
	rt := New(instrs, table)
	rt, err = Run(rt)
	require.NoError(t, err)

	v, ok := rt.Result()
	require.True(t, ok)
	assert.Equal(t, "AB", v.Text(), "join t1 must yield until t1's own turn runs it to completion before t2 gets to run")
}
