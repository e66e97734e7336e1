package runtime

import (
	"github.com/wudi/threadvm/registry"
	"github.com/wudi/threadvm/values"
)

// stringFunctions returns core spec §6's one string builtin: len.
func stringFunctions() []registry.Builtin {
	return []registry.Builtin{
		{Name: "len", Fn: func(args []*values.Value) (*values.Value, error) {
			if err := arity("len", args, 1); err != nil {
				return nil, err
			}
			if args[0].Kind() != values.KindString {
				return nil, typeErr("len", args)
			}
			return values.NewInt(int64(len(args[0].Text()))), nil
		}},
	}
}
