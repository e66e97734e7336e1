package vm

import "github.com/wudi/threadvm/values"

// MarkAndSweep reclaims every environment unreachable from a live thread or
// a live closure. It must only be called while the VM is paused between
// instructions: it is never concurrent with mutation (core spec §4.5).
//
// Mark walks the current thread, every ready thread, and every blocked
// thread — marking each thread's current environment, the environment of
// every closure value on its operand stack, the environment of every
// frame on its runtime stack, and (recursively) each marked environment's
// parent chain. Zombie threads are intentionally excluded: their
// environments are garbage once nothing else references them, exactly as
// the original runtime.rs's mark_and_weep/gc.rs sweep does.
func (rt *Runtime) MarkAndSweep() {
	if rt.debug {
		rt.log.Debug("gc: mark begin")
	}

	marked := make(map[EnvID]bool, rt.envs.len())
	for id := range rt.envs.entries {
		marked[id] = false
	}

	rt.markThread(marked, rt.current)
	for _, t := range rt.readyQueue {
		rt.markThread(marked, t)
	}
	for _, t := range rt.blockedQueue {
		rt.markThread(marked, t)
	}

	before := rt.envs.len()
	for id, isMarked := range marked {
		if !isMarked {
			delete(rt.envs.entries, id)
		}
	}
	after := rt.envs.len()

	if rt.debug {
		rt.log.WithField("removed", before-after).Debug("gc: sweep end")
	}
}

func (rt *Runtime) markThread(marked map[EnvID]bool, t *Thread) {
	rt.markEnv(marked, t.Env)
	for _, v := range t.OperandStack {
		rt.markClosureEnv(marked, v)
	}
	for _, f := range t.RuntimeStack {
		rt.markEnv(marked, f.PriorEnv)
	}
}

func (rt *Runtime) markClosureEnv(marked map[EnvID]bool, v *values.Value) {
	if v.Kind() != values.KindClosure {
		return
	}
	clo := v.Closure()
	if env, ok := clo.Env.(*Environment); ok {
		rt.markEnv(marked, env.id)
	}
}

func (rt *Runtime) markEnv(marked map[EnvID]bool, id EnvID) {
	if marked[id] {
		return
	}
	marked[id] = true

	env := rt.envs.get(id)
	if env.hasParent {
		rt.markEnv(marked, env.parent)
	}
}
