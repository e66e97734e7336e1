package vm

import (
	"github.com/wudi/threadvm/errors"
	"github.com/wudi/threadvm/opcodes"
	"github.com/wudi/threadvm/values"
)

// execute dispatches a single instruction to its micro-operation, exactly
// one per opcode, following the core spec's instruction table (§4.2).
func (rt *Runtime) execute(instr opcodes.Instruction) error {
	switch instr.Op {
	case opcodes.LDC:
		rt.current.pushOperand(instr.Const)
		return nil
	case opcodes.LD:
		return rt.execLd(instr.Sym)
	case opcodes.ASSIGN:
		return rt.execAssign(instr.Sym)
	case opcodes.POP:
		_, ok := rt.current.popOperand()
		if !ok {
			return errors.ErrOperandStackUnderflow
		}
		return nil
	case opcodes.UNOP:
		return rt.execUnop(instr.Un)
	case opcodes.BINOP:
		return rt.execBinop(instr.Bin)
	case opcodes.JOF:
		return rt.execJof(instr.Addr)
	case opcodes.GOTO:
		rt.current.PC = instr.Addr
		return nil
	case opcodes.ENTERSCOPE:
		rt.execEnterScope(instr.Syms)
		return nil
	case opcodes.EXITSCOPE:
		return rt.execExitScope()
	case opcodes.LDF:
		rt.execLdf(instr.Addr, instr.Params)
		return nil
	case opcodes.CALL:
		return rt.execCall(instr.Arity)
	case opcodes.RESET:
		return rt.execReset()
	case opcodes.SPAWN:
		return rt.execSpawn(instr.Addr)
	case opcodes.JOIN:
		return rt.execJoin(instr.ThreadSym)
	case opcodes.YIELD:
		rt.setState(rt.current.ID, Yielded())
		return nil
	case opcodes.WAIT:
		return rt.execWait()
	case opcodes.POST:
		return rt.execPost()
	case opcodes.DONE:
		rt.setState(rt.current.ID, Done())
		return nil
	default:
		return errors.Internal("unknown opcode %v", instr.Op)
	}
}

func (rt *Runtime) execLd(sym string) error {
	v, ok := rt.envs.lookup(rt.current.Env, sym)
	if !ok {
		return &errors.UnboundSymbol{Name: sym}
	}
	if v.Kind() == values.KindUninitialized {
		return &errors.UninitializedSymbol{Name: sym}
	}
	rt.current.pushOperand(v)
	return nil
}

func (rt *Runtime) execAssign(sym string) error {
	v, ok := rt.current.popOperand()
	if !ok {
		return errors.ErrOperandStackUnderflow
	}
	if !rt.envs.assign(rt.current.Env, sym, v) {
		return &errors.UnboundSymbol{Name: sym}
	}
	return nil
}

func (rt *Runtime) execUnop(op opcodes.UnOp) error {
	v, ok := rt.current.popOperand()
	if !ok {
		return errors.ErrOperandStackUnderflow
	}
	result, err := applyUnop(op, v)
	if err != nil {
		return err
	}
	rt.current.pushOperand(result)
	return nil
}

func (rt *Runtime) execBinop(op opcodes.BinOp) error {
	rhs, ok := rt.current.popOperand()
	if !ok {
		return errors.ErrOperandStackUnderflow
	}
	lhs, ok := rt.current.popOperand()
	if !ok {
		return errors.ErrOperandStackUnderflow
	}
	result, err := applyBinop(op, lhs, rhs)
	if err != nil {
		return err
	}
	rt.current.pushOperand(result)
	return nil
}

func (rt *Runtime) execJof(addr int) error {
	v, ok := rt.current.popOperand()
	if !ok {
		return errors.ErrOperandStackUnderflow
	}
	if v.Kind() != values.KindBool {
		return &errors.TypeError{Op: "JOF", Operands: []string{v.Kind().String()}}
	}
	if !v.Bool() {
		rt.current.PC = addr
	}
	return nil
}

func (rt *Runtime) execEnterScope(syms []string) {
	rt.current.pushFrame(RuntimeFrame{Kind: FrameBlock, PriorEnv: rt.current.Env})
	newEnv := rt.envs.new(rt.current.Env, true)
	for _, s := range syms {
		rt.envs.declare(newEnv, s, values.Uninitialized())
	}
	rt.current.Env = newEnv
}

func (rt *Runtime) execExitScope() error {
	frame, ok := rt.current.popFrame()
	if !ok || frame.Kind != FrameBlock {
		return errors.ErrRuntimeStackUnderflow
	}
	rt.current.Env = frame.PriorEnv
	return nil
}

func (rt *Runtime) execLdf(addr int, params []string) {
	closure := values.NewClosure(&values.Closure{
		Kind:   values.ClosureUser,
		Name:   "closure",
		Params: params,
		Addr:   addr,
		Env:    rt.envs.get(rt.current.Env),
	})
	rt.current.pushOperand(closure)
}

// execCall pops arity args (first-pushed argument is the first parameter),
// pops the callee, and either jumps into user bytecode with a fresh call
// frame or invokes a builtin synchronously (core spec §4.2, §4.4).
func (rt *Runtime) execCall(arity int) error {
	args := make([]*values.Value, arity)
	for i := arity - 1; i >= 0; i-- {
		v, ok := rt.current.popOperand()
		if !ok {
			return errors.ErrOperandStackUnderflow
		}
		args[i] = v
	}
	callee, ok := rt.current.popOperand()
	if !ok {
		return errors.ErrOperandStackUnderflow
	}
	if callee.Kind() != values.KindClosure {
		return &errors.TypeError{Op: "CALL", Operands: []string{callee.Kind().String()}}
	}
	clo := callee.Closure()

	if clo.Kind == values.ClosureBuiltin {
		result, err := clo.Builtin(args)
		if err != nil {
			return &errors.BuiltinError{Name: clo.Name, Message: err.Error()}
		}
		rt.current.pushOperand(result)
		return nil
	}

	rt.current.pushFrame(RuntimeFrame{Kind: FrameCall, PriorEnv: rt.current.Env, PriorPC: rt.current.PC})

	env, ok := clo.Env.(*Environment)
	if !ok {
		return errors.Internal("closure environment is not a *vm.Environment")
	}
	callEnv := rt.envs.new(env.id, true)
	for i, p := range clo.Params {
		rt.envs.declare(callEnv, p, args[i])
	}
	rt.current.Env = callEnv
	rt.current.PC = clo.Addr
	return nil
}

// execReset unwinds the runtime stack until (and including) a call frame,
// discarding any block frames along the way, and restores that frame's
// environment and PC. The single value on top of the operand stack (the
// return value) is left untouched.
func (rt *Runtime) execReset() error {
	for {
		frame, ok := rt.current.popFrame()
		if !ok {
			return errors.ErrRuntimeStackUnderflow
		}
		if frame.Kind == FrameCall {
			rt.current.Env = frame.PriorEnv
			rt.current.PC = frame.PriorPC
			return nil
		}
	}
}

func (rt *Runtime) execSpawn(childAddr int) error {
	rt.threadCount++
	childID := rt.threadCount
	child := rt.current.clone(childID, childAddr)
	child.pushOperand(values.NewInt(0))

	rt.states[childID] = Ready()
	rt.current.pushOperand(values.NewThreadID(int64(childID)))
	rt.readyQueue = append(rt.readyQueue, child)
	return nil
}

func (rt *Runtime) execJoin(threadSym string) error {
	v, ok := rt.envs.lookup(rt.current.Env, threadSym)
	if !ok {
		return &errors.UnboundSymbol{Name: threadSym}
	}
	if v.Kind() != values.KindThreadID {
		return &errors.TypeError{Op: "JOIN", Operands: []string{v.Kind().String()}}
	}
	rt.setState(rt.current.ID, Joining(ThreadID(v.Int())))
	return nil
}

func (rt *Runtime) execWait() error {
	v, ok := rt.current.popOperand()
	if !ok {
		return errors.ErrOperandStackUnderflow
	}
	if v.Kind() != values.KindSemaphore {
		return &errors.TypeError{Op: "WAIT", Operands: []string{v.Kind().String()}}
	}
	sem := v.Semaphore()
	if sem.Count > 0 {
		sem.Count--
		return nil
	}
	rt.setState(rt.current.ID, Blocked(sem))
	return nil
}

func (rt *Runtime) execPost() error {
	v, ok := rt.current.popOperand()
	if !ok {
		return errors.ErrOperandStackUnderflow
	}
	if v.Kind() != values.KindSemaphore {
		return &errors.TypeError{Op: "POST", Operands: []string{v.Kind().String()}}
	}
	rt.pendingPost = v.Semaphore()
	return nil
}
