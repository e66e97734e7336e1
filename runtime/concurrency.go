package runtime

import (
	"github.com/wudi/threadvm/registry"
	"github.com/wudi/threadvm/values"
)

// concurrencyFunctions returns sem, the one builtin core spec §5's worked
// examples use but §6's registry table omits: `sem(initial)` allocates a
// fresh semaphore with the given non-negative starting count. Without it
// no program could ever construct the Semaphore value wait/post operate
// on, since the language has no semaphore literal syntax (see SPEC_FULL's
// Open Question resolution).
func concurrencyFunctions() []registry.Builtin {
	return []registry.Builtin{
		{Name: "sem", Fn: func(args []*values.Value) (*values.Value, error) {
			if err := arity("sem", args, 1); err != nil {
				return nil, err
			}
			if args[0].Kind() != values.KindInt {
				return nil, typeErr("sem", args)
			}
			initial := args[0].Int()
			if initial < 0 {
				return nil, typeErr("sem", args)
			}
			return values.NewSemaphore(&values.Semaphore{Count: initial}), nil
		}},
	}
}
