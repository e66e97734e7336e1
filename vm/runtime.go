// Package vm is the runtime component of the core spec: the fetch–execute
// loop, the cooperative scheduler, the environment/closure model, and the
// mark-and-sweep garbage collector (spec.md §4.2–§4.5, §5).
package vm

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wudi/threadvm/errors"
	"github.com/wudi/threadvm/opcodes"
	"github.com/wudi/threadvm/registry"
	"github.com/wudi/threadvm/values"
)

const DefaultTimeQuantum = 100 * time.Millisecond

// Runtime holds every piece of state the fetch–execute loop needs: the
// instruction array, the current thread, the ready/blocked queues, the
// zombie and thread-state tables, the thread counter, the time quantum,
// the pending-post signal slot, and the environment registry (core spec
// §4.2).
type Runtime struct {
	instrs []opcodes.Instruction

	timeQuantum   time.Duration
	quantumStart  time.Time
	debug         bool

	threadCount   ThreadID
	current       *Thread
	readyQueue    []*Thread
	blockedQueue  []*Thread
	zombies       map[ThreadID]*Thread
	states        map[ThreadID]ThreadState
	pendingPost   *values.Semaphore

	envs   *EnvRegistry
	global EnvID

	log   *logrus.Entry
	runID uuid.UUID
}

// New constructs a Runtime ready to execute instrs, with a fresh global
// environment populated from table (constants and builtins).
func New(instrs []opcodes.Instruction, table *registry.Table) *Runtime {
	rt := &Runtime{
		instrs:      instrs,
		timeQuantum: DefaultTimeQuantum,
		threadCount: MainThreadID,
		zombies:     make(map[ThreadID]*Thread),
		states:      make(map[ThreadID]ThreadState),
		envs:        newEnvRegistry(),
		runID:       uuid.New(),
	}
	rt.log = logrus.WithField("run_id", rt.runID)
	rt.global = rt.envs.new(0, false)
	rt.bootstrapGlobals(table)

	rt.current = newThread(MainThreadID, 0, rt.envs.new(rt.global, true))
	rt.states[MainThreadID] = Ready()
	rt.quantumStart = time.Now()
	return rt
}

func (rt *Runtime) bootstrapGlobals(table *registry.Table) {
	if table == nil {
		return
	}
	for _, c := range table.Constants {
		rt.envs.declare(rt.global, c.Name, c.Value)
	}
	for _, b := range table.Builtins {
		fn := b.Fn
		name := b.Name
		closure := values.NewClosure(&values.Closure{
			Kind: values.ClosureBuiltin,
			Name: name,
			Env:  rt.envs.get(rt.global),
			Builtin: func(args []*values.Value) (*values.Value, error) {
				return fn(args)
			},
		})
		rt.envs.declare(rt.global, name, closure)
	}
}

// SetTimeQuantum overrides the default 100ms preemption quantum.
func (rt *Runtime) SetTimeQuantum(d time.Duration) { rt.timeQuantum = d }

// SetDebugMode enables verbose scheduler/GC logging.
func (rt *Runtime) SetDebugMode() { rt.debug = true }

// RunID returns the correlation id this Runtime's log entries carry.
func (rt *Runtime) RunID() uuid.UUID { return rt.runID }

// Result returns the top of the main thread's operand stack, if any, once
// Run has returned successfully.
func (rt *Runtime) Result() (*values.Value, bool) {
	if rt.current == nil || rt.current.ID != MainThreadID {
		return nil, false
	}
	return rt.current.peekOperand()
}

// Run drives the fetch–execute loop until the main thread reaches DONE, or
// an error terminates the VM (core spec §4.3).
func Run(rt *Runtime) (*Runtime, error) {
	for {
		if rt.timeQuantumExpired() {
			if err := rt.yieldCurrent(); err != nil {
				return rt, err
			}
			continue
		}

		state := rt.currentState()
		if state.Kind == StateYielded {
			if err := rt.yieldCurrent(); err != nil {
				return rt, err
			}
			continue
		}
		if state.Kind == StateBlocked {
			if err := rt.blockCurrent(); err != nil {
				return rt, err
			}
			continue
		}
		if rt.pendingPost != nil {
			rt.signalPost()
			continue
		}
		if state.Kind == StateJoining {
			if err := rt.joinCurrent(); err != nil {
				return rt, err
			}
			continue
		}

		instr, err := rt.fetch()
		if err != nil {
			return rt, err
		}

		if err := rt.execute(instr); err != nil {
			return rt, err
		}

		if rt.currentState().Kind != StateDone {
			continue
		}

		if rt.current.ID != MainThreadID {
			if err := rt.zombifyCurrent(); err != nil {
				return rt, err
			}
			continue
		}

		return rt, nil
	}
}

func (rt *Runtime) currentState() ThreadState {
	s, ok := rt.states[rt.current.ID]
	if !ok {
		panic(errors.Internal("no state recorded for current thread %d", rt.current.ID))
	}
	return s
}

func (rt *Runtime) setState(id ThreadID, s ThreadState) { rt.states[id] = s }

func (rt *Runtime) timeQuantumExpired() bool {
	return time.Since(rt.quantumStart) >= rt.timeQuantum
}

func (rt *Runtime) fetch() (opcodes.Instruction, error) {
	if rt.current.PC < 0 || rt.current.PC >= len(rt.instrs) {
		return opcodes.Instruction{}, &errors.PcOutOfBounds{PC: rt.current.PC}
	}
	instr := rt.instrs[rt.current.PC]
	rt.current.PC++
	return instr, nil
}
