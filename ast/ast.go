// Package ast defines the AST the compiler accepts. Nothing in this
// repository produces it from source text: concrete-syntax parsing and
// lexical tokenisation are out of scope (see spec.md §1). Callers — tests,
// cmd/vm-demo, or an external parser this package doesn't know about —
// build these nodes directly, the way a parser's output would look once
// tree-built.
package ast

import "github.com/wudi/threadvm/errors"

// Node is the common interface satisfied by every AST node, mirroring the
// teacher's Node contract minus the parts (JSON encoding, lexer-backed
// Position) that don't apply without a concrete-syntax front end.
type Node interface {
	Pos() errors.Position
}

// Expr is any node compiled as an expression: lowering it leaves exactly
// one value on the operand stack.
type Expr interface {
	Node
	exprNode()
}

// Stmt is any node compiled as a statement: lowering it, plus the
// compiler's trailing POP, leaves the operand stack exactly as it found it.
type Stmt interface {
	Node
	stmtNode()
}

type base struct {
	Position errors.Position
}

func (b base) Pos() errors.Position { return b.Position }

// ---- Expressions ----

type IntLit struct {
	base
	Value int64
}

type FloatLit struct {
	base
	Value float64
}

type BoolLit struct {
	base
	Value bool
}

type StringLit struct {
	base
	Value string
}

// Symbol is a reference to a bound name in expression position.
type Symbol struct {
	base
	Name string
}

type UnOpKind byte

const (
	Neg UnOpKind = iota
	Not
)

type UnaryExpr struct {
	base
	Op      UnOpKind
	Operand Expr
}

type BinOpKind byte

const (
	Add BinOpKind = iota
	Sub
	Mul
	Div
	Mod
	Lt
	Gt
	Eq
	And // short-circuit &&
	Or  // short-circuit ||
)

type BinaryExpr struct {
	base
	Op       BinOpKind
	Lhs, Rhs Expr
}

// Block is a sequence of statements followed by an optional tail
// expression; it is the only production that can appear either as an
// expression (its value is the tail expression's value, or Unit if there is
// none) or, via ExprStmt, as a statement.
type Block struct {
	base
	Stmts []Stmt
	Tail  Expr // nil if the block has no trailing expression
}

// IfExpr is `if cond { then } else { else }` used in expression position.
// Else is never nil here: an `if` with no else, used as a statement, is
// represented by IfStmt instead (see core spec §4.1).
type IfExpr struct {
	base
	Cond Expr
	Then *Block
	Else *Block
}

type CallExpr struct {
	base
	Callee Expr
	Args   []Expr
}

// FnLit is a function literal / nested function declaration: `fn(params) { body }`.
type FnLit struct {
	base
	Name   string // empty for anonymous literals; the compiler does not use it
	Params []string
	Body   *Block
}

// SpawnExpr spawns a child thread running `Call` and yields the new
// thread's ThreadID as its value in the parent.
type SpawnExpr struct {
	base
	Call *CallExpr
}

// JoinExpr blocks the current thread until the thread bound to symbol
// `Thread` becomes a zombie, then yields its final operand-stack value.
// The operand is a bare symbol name, not a general expression: JOIN's
// bytecode form (opcodes.Join) resolves it directly, the same way ASSIGN
// takes a symbol rather than a compiled target expression.
type JoinExpr struct {
	base
	Thread string
}

func (*IntLit) exprNode()     {}
func (*FloatLit) exprNode()   {}
func (*BoolLit) exprNode()    {}
func (*StringLit) exprNode()  {}
func (*Symbol) exprNode()     {}
func (*UnaryExpr) exprNode()  {}
func (*BinaryExpr) exprNode() {}
func (*Block) exprNode()      {}
func (*IfExpr) exprNode()     {}
func (*CallExpr) exprNode()   {}
func (*FnLit) exprNode()      {}
func (*SpawnExpr) exprNode()  {}
func (*JoinExpr) exprNode()   {}

// ---- Statements ----

type ExprStmt struct {
	base
	Expr Expr
}

// LetStmt declares a new binding in the enclosing block's scope.
type LetStmt struct {
	base
	Name string
	Expr Expr
}

// AssignStmt writes to an existing binding, found by walking the
// environment chain outward from the current scope.
type AssignStmt struct {
	base
	Name string
	Expr Expr
}

// IfStmt is `if cond { then }` with no else, used as a statement; it
// compiles as an if-else whose implicit else branch produces Unit.
type IfStmt struct {
	base
	Cond Expr
	Then *Block
}

type LoopStmt struct {
	base
	Body *Block
}

type BreakStmt struct{ base }

// ReturnStmt with a nil Expr is `return;`, which is value-equivalent to
// `return ();`.
type ReturnStmt struct {
	base
	Expr Expr // nil for bare `return;`
}

type WaitStmt struct {
	base
	Sem Expr
}

type PostStmt struct {
	base
	Sem Expr
}

type YieldStmt struct{ base }

// FnDeclStmt is a top-level-of-block function declaration, distinct from an
// FnLit assigned via let only in that the compiler's block pre-pass
// collects its name into the enclosing scope before compiling any
// statement, so mutually recursive declarations can resolve each other.
type FnDeclStmt struct {
	base
	Name   string
	Params []string
	Body   *Block
}

func (*ExprStmt) stmtNode()   {}
func (*LetStmt) stmtNode()    {}
func (*AssignStmt) stmtNode() {}
func (*IfStmt) stmtNode()     {}
func (*LoopStmt) stmtNode()   {}
func (*BreakStmt) stmtNode()  {}
func (*ReturnStmt) stmtNode() {}
func (*WaitStmt) stmtNode()   {}
func (*PostStmt) stmtNode()   {}
func (*YieldStmt) stmtNode()  {}
func (*FnDeclStmt) stmtNode() {}

// Program is the compilation root: a BlockSeq with no enclosing braces,
// whose declared top-level symbols form the program's global scope.
type Program struct {
	base
	Body *Block
}

// --- constructors (position defaults to the zero Position; callers that
// track source locations set Position after construction) ---

func NewIntLit(v int64) *IntLit         { return &IntLit{Value: v} }
func NewFloatLit(v float64) *FloatLit   { return &FloatLit{Value: v} }
func NewBoolLit(v bool) *BoolLit        { return &BoolLit{Value: v} }
func NewStringLit(v string) *StringLit  { return &StringLit{Value: v} }
func NewSymbol(name string) *Symbol     { return &Symbol{Name: name} }
func NewUnary(op UnOpKind, e Expr) *UnaryExpr {
	return &UnaryExpr{Op: op, Operand: e}
}
func NewBinary(op BinOpKind, lhs, rhs Expr) *BinaryExpr {
	return &BinaryExpr{Op: op, Lhs: lhs, Rhs: rhs}
}
func NewBlock(stmts []Stmt, tail Expr) *Block {
	return &Block{Stmts: stmts, Tail: tail}
}
func NewIfExpr(cond Expr, then, els *Block) *IfExpr {
	return &IfExpr{Cond: cond, Then: then, Else: els}
}
func NewCall(callee Expr, args ...Expr) *CallExpr {
	return &CallExpr{Callee: callee, Args: args}
}
func NewFnLit(name string, params []string, body *Block) *FnLit {
	return &FnLit{Name: name, Params: params, Body: body}
}
func NewSpawn(call *CallExpr) *SpawnExpr  { return &SpawnExpr{Call: call} }
func NewJoin(thread string) *JoinExpr     { return &JoinExpr{Thread: thread} }
func NewExprStmt(e Expr) *ExprStmt         { return &ExprStmt{Expr: e} }
func NewLet(name string, e Expr) *LetStmt  { return &LetStmt{Name: name, Expr: e} }
func NewAssign(name string, e Expr) *AssignStmt {
	return &AssignStmt{Name: name, Expr: e}
}
func NewIfStmt(cond Expr, then *Block) *IfStmt { return &IfStmt{Cond: cond, Then: then} }
func NewLoop(body *Block) *LoopStmt            { return &LoopStmt{Body: body} }
func NewBreak() *BreakStmt                     { return &BreakStmt{} }
func NewReturn(e Expr) *ReturnStmt             { return &ReturnStmt{Expr: e} }
func NewWait(sem Expr) *WaitStmt               { return &WaitStmt{Sem: sem} }
func NewPost(sem Expr) *PostStmt               { return &PostStmt{Sem: sem} }
func NewYield() *YieldStmt                     { return &YieldStmt{} }
func NewFnDecl(name string, params []string, body *Block) *FnDeclStmt {
	return &FnDeclStmt{Name: name, Params: params, Body: body}
}
func NewProgram(body *Block) *Program { return &Program{Body: body} }
