package runtime

import (
	"math"

	"github.com/wudi/threadvm/registry"
	"github.com/wudi/threadvm/values"
)

// mathFunctions returns the numeric builtins core spec §6 installs into
// the global environment: abs, cos, sin, tan, sqrt, log, pow, min, max.
// Each accepts both Int and Float. abs, min and max follow the teacher's
// runtime/math.go pattern of branching on the argument's concrete kind and
// return a value of that kind; cos, sin, tan, sqrt, log and pow convert
// their arguments to Float and always return a Float.
func mathFunctions() []registry.Builtin {
	unary := func(name string, fn func(float64) float64) registry.Builtin {
		return registry.Builtin{Name: name, Fn: func(args []*values.Value) (*values.Value, error) {
			f, err := arg1Float(name, args)
			if err != nil {
				return nil, err
			}
			return values.NewFloat(fn(f)), nil
		}}
	}

	return []registry.Builtin{
		{Name: "abs", Fn: func(args []*values.Value) (*values.Value, error) {
			if err := arity("abs", args, 1); err != nil {
				return nil, err
			}
			switch args[0].Kind() {
			case values.KindInt:
				v := args[0].Int()
				if v < 0 {
					v = -v
				}
				return values.NewInt(v), nil
			case values.KindFloat:
				return values.NewFloat(math.Abs(args[0].Float())), nil
			default:
				return nil, typeErr("abs", args)
			}
		}},
		unary("cos", math.Cos),
		unary("sin", math.Sin),
		unary("tan", math.Tan),
		unary("sqrt", math.Sqrt),
		unary("log", math.Log),
		{Name: "pow", Fn: func(args []*values.Value) (*values.Value, error) {
			if err := arity("pow", args, 2); err != nil {
				return nil, err
			}
			base, err := toFloat(args[0])
			if err != nil {
				return nil, typeErr("pow", args)
			}
			exp, err := toFloat(args[1])
			if err != nil {
				return nil, typeErr("pow", args)
			}
			return values.NewFloat(math.Pow(base, exp)), nil
		}},
		{Name: "min", Fn: func(args []*values.Value) (*values.Value, error) {
			return minMax("min", args, false)
		}},
		{Name: "max", Fn: func(args []*values.Value) (*values.Value, error) {
			return minMax("max", args, true)
		}},
	}
}

func minMax(name string, args []*values.Value, wantMax bool) (*values.Value, error) {
	if err := arity(name, args, 2); err != nil {
		return nil, err
	}
	if args[0].Kind() != args[1].Kind() {
		return nil, typeErr(name, args)
	}
	switch args[0].Kind() {
	case values.KindInt:
		a, b := args[0].Int(), args[1].Int()
		if (wantMax && b > a) || (!wantMax && b < a) {
			return values.NewInt(b), nil
		}
		return values.NewInt(a), nil
	case values.KindFloat:
		a, b := args[0].Float(), args[1].Float()
		if (wantMax && b > a) || (!wantMax && b < a) {
			return values.NewFloat(b), nil
		}
		return values.NewFloat(a), nil
	default:
		return nil, typeErr(name, args)
	}
}
