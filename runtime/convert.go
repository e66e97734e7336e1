package runtime

import (
	"strconv"

	"github.com/wudi/threadvm/registry"
	"github.com/wudi/threadvm/values"
)

// convertFunctions returns core spec §6's conversion builtins:
// int_to_float, float_to_int, atoi, itoa.
func convertFunctions() []registry.Builtin {
	return []registry.Builtin{
		{Name: "int_to_float", Fn: func(args []*values.Value) (*values.Value, error) {
			if err := arity("int_to_float", args, 1); err != nil {
				return nil, err
			}
			if args[0].Kind() != values.KindInt {
				return nil, typeErr("int_to_float", args)
			}
			return values.NewFloat(float64(args[0].Int())), nil
		}},
		{Name: "float_to_int", Fn: func(args []*values.Value) (*values.Value, error) {
			if err := arity("float_to_int", args, 1); err != nil {
				return nil, err
			}
			if args[0].Kind() != values.KindFloat {
				return nil, typeErr("float_to_int", args)
			}
			return values.NewInt(int64(args[0].Float())), nil
		}},
		{Name: "atoi", Fn: func(args []*values.Value) (*values.Value, error) {
			if err := arity("atoi", args, 1); err != nil {
				return nil, err
			}
			if args[0].Kind() != values.KindString {
				return nil, typeErr("atoi", args)
			}
			n, err := strconv.ParseInt(args[0].Text(), 10, 64)
			if err != nil {
				return nil, err
			}
			return values.NewInt(n), nil
		}},
		{Name: "itoa", Fn: func(args []*values.Value) (*values.Value, error) {
			if err := arity("itoa", args, 1); err != nil {
				return nil, err
			}
			if args[0].Kind() != values.KindInt {
				return nil, typeErr("itoa", args)
			}
			return values.NewString(strconv.FormatInt(args[0].Int(), 10)), nil
		}},
	}
}
