package vm

import "github.com/wudi/threadvm/values"

// ThreadID identifies a thread. The main thread is always 1.
type ThreadID int64

const MainThreadID ThreadID = 1

// ThreadState is stored in a table keyed by ThreadID, separate from the
// Thread record itself, so blocked and zombie threads can be inspected
// without moving them (core spec §3).
type ThreadState struct {
	Kind   ThreadStateKind
	Target ThreadID        // meaningful only for Joining
	Sem    *values.Semaphore // meaningful only for Blocked
}

type ThreadStateKind byte

const (
	StateReady ThreadStateKind = iota
	StateYielded
	StateBlocked
	StateJoining
	StateDone
	StateZombie
)

func Ready() ThreadState   { return ThreadState{Kind: StateReady} }
func Yielded() ThreadState { return ThreadState{Kind: StateYielded} }
func Blocked(s *values.Semaphore) ThreadState {
	return ThreadState{Kind: StateBlocked, Sem: s}
}
func Joining(target ThreadID) ThreadState {
	return ThreadState{Kind: StateJoining, Target: target}
}
func Done() ThreadState  { return ThreadState{Kind: StateDone} }
func Zombie() ThreadState { return ThreadState{Kind: StateZombie} }

// FrameKind distinguishes the two runtime-stack frame shapes.
type FrameKind byte

const (
	FrameBlock FrameKind = iota
	FrameCall
)

// RuntimeFrame is one entry on a thread's runtime (call/block) stack. A
// block frame restores only the prior environment on EXITSCOPE; a call
// frame additionally restores the prior PC on RESET.
type RuntimeFrame struct {
	Kind     FrameKind
	PriorEnv EnvID
	PriorPC  int // meaningful only for FrameCall
}

// Thread is a single cooperatively-scheduled execution context: its own
// PC, operand stack, runtime stack, and current environment. Environments
// are shared across threads and closures by EnvID, resolved through the
// Runtime's environment registry (core spec §3, §4.5).
type Thread struct {
	ID           ThreadID
	PC           int
	OperandStack []*values.Value
	RuntimeStack []RuntimeFrame
	Env          EnvID
}

func newThread(id ThreadID, pc int, env EnvID) *Thread {
	return &Thread{ID: id, PC: pc, Env: env}
}

func (t *Thread) pushOperand(v *values.Value) {
	t.OperandStack = append(t.OperandStack, v)
}

func (t *Thread) popOperand() (*values.Value, bool) {
	n := len(t.OperandStack)
	if n == 0 {
		return nil, false
	}
	v := t.OperandStack[n-1]
	t.OperandStack = t.OperandStack[:n-1]
	return v, true
}

func (t *Thread) peekOperand() (*values.Value, bool) {
	n := len(t.OperandStack)
	if n == 0 {
		return nil, false
	}
	return t.OperandStack[n-1], true
}

func (t *Thread) pushFrame(f RuntimeFrame) {
	t.RuntimeStack = append(t.RuntimeStack, f)
}

func (t *Thread) popFrame() (RuntimeFrame, bool) {
	n := len(t.RuntimeStack)
	if n == 0 {
		return RuntimeFrame{}, false
	}
	f := t.RuntimeStack[n-1]
	t.RuntimeStack = t.RuntimeStack[:n-1]
	return f, true
}

// clone produces an independent copy of t's stacks and environment
// reference, used by SPAWN to give the child thread its own starting
// image while sharing the parent's environment chain by reference (core
// spec §4.2, SPAWN).
func (t *Thread) clone(id ThreadID, pc int) *Thread {
	child := &Thread{ID: id, PC: pc, Env: t.Env}
	child.OperandStack = append([]*values.Value(nil), t.OperandStack...)
	child.RuntimeStack = append([]RuntimeFrame(nil), t.RuntimeStack...)
	return child
}
