package vm

import (
	"time"

	"github.com/wudi/threadvm/errors"
)

// yieldCurrent marks the current thread Ready, pushes it to the back of the
// ready queue, and pops the front of the ready queue as the new current
// thread, resetting the quantum-start timestamp. It is a fatal internal
// error for the ready queue to be empty here (core spec §4.3).
func (rt *Runtime) yieldCurrent() error {
	rt.setState(rt.current.ID, Ready())
	rt.readyQueue = append(rt.readyQueue, rt.current)

	next, ok := rt.popReady()
	if !ok {
		return errors.Internal("ready queue empty on yield")
	}
	rt.current = next
	rt.quantumStart = time.Now()
	return nil
}

// blockCurrent pushes the current thread (whose state already records
// which semaphore it's waiting on) to the blocked queue and pops the next
// ready thread. The quantum timestamp is left untouched: blocking isn't a
// quantum-driven event.
func (rt *Runtime) blockCurrent() error {
	rt.blockedQueue = append(rt.blockedQueue, rt.current)

	next, ok := rt.popReady()
	if !ok {
		return errors.Internal("ready queue empty on block")
	}
	rt.current = next
	return nil
}

// zombifyCurrent moves the current thread into the zombie table, keyed by
// ThreadID, and pops the next ready thread.
func (rt *Runtime) zombifyCurrent() error {
	rt.setState(rt.current.ID, Zombie())
	rt.zombies[rt.current.ID] = rt.current

	next, ok := rt.popReady()
	if !ok {
		return errors.Internal("ready queue empty on zombify")
	}
	rt.current = next
	return nil
}

// joinCurrent services a pending JOIN. If the target thread isn't a
// zombie yet, it decrements the current thread's PC (so the same JOIN
// fires again once the joinee completes — core spec §9's join-re-execution
// note) and yields. Otherwise it consumes the zombie: its final
// operand-stack value moves to the joiner, and both the zombie record and
// its thread-state entry are removed.
func (rt *Runtime) joinCurrent() error {
	state := rt.currentState()
	target := state.Target

	targetState, known := rt.states[target]
	if !known {
		return &errors.ThreadNotFound{ThreadID: int64(target)}
	}

	if targetState.Kind != StateZombie {
		rt.current.PC--
		return rt.yieldCurrent()
	}

	zombie, ok := rt.zombies[target]
	if !ok {
		return errors.Internal("thread %d marked zombie but missing from zombie table", target)
	}

	rt.setState(rt.current.ID, Ready())
	val, hasVal := zombie.popOperand()
	if hasVal {
		rt.current.pushOperand(val)
	}
	delete(rt.zombies, target)
	delete(rt.states, target)
	return nil
}

// signalPost consumes the pending-post slot: increments the semaphore's
// counter and wakes, in blocked-queue order, every thread blocked on that
// exact semaphore (reference identity), moving each to the back of the
// ready queue (core spec §4.3).
func (rt *Runtime) signalPost() {
	sem := rt.pendingPost
	rt.pendingPost = nil

	sem.Count++

	remaining := rt.blockedQueue[:0]
	for _, t := range rt.blockedQueue {
		state := rt.states[t.ID]
		if state.Kind == StateBlocked && state.Sem == sem {
			rt.setState(t.ID, Ready())
			rt.readyQueue = append(rt.readyQueue, t)
		} else {
			remaining = append(remaining, t)
		}
	}
	rt.blockedQueue = remaining
}

func (rt *Runtime) popReady() (*Thread, bool) {
	if len(rt.readyQueue) == 0 {
		return nil, false
	}
	t := rt.readyQueue[0]
	rt.readyQueue = rt.readyQueue[1:]
	return t, true
}
