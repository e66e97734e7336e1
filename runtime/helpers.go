package runtime

import (
	"fmt"

	"github.com/wudi/threadvm/values"
)

func arity(name string, args []*values.Value, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s: expected %d argument(s), got %d", name, n, len(args))
	}
	return nil
}

func typeErr(name string, args []*values.Value) error {
	kinds := make([]string, len(args))
	for i, a := range args {
		kinds[i] = a.Kind().String()
	}
	return fmt.Errorf("%s: no overload for operand kinds %v", name, kinds)
}

func toFloat(v *values.Value) (float64, error) {
	switch v.Kind() {
	case values.KindFloat:
		return v.Float(), nil
	case values.KindInt:
		return float64(v.Int()), nil
	default:
		return 0, fmt.Errorf("expected int or float, got %s", v.Kind())
	}
}

func arg1Float(name string, args []*values.Value) (float64, error) {
	if err := arity(name, args, 1); err != nil {
		return 0, err
	}
	f, err := toFloat(args[0])
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}
