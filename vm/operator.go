package vm

import (
	"math"

	"github.com/wudi/threadvm/errors"
	"github.com/wudi/threadvm/opcodes"
	"github.com/wudi/threadvm/values"
)

// applyUnop implements core spec §4.2's unary operators: Neg on Int/Float,
// Not on Bool.
func applyUnop(op opcodes.UnOp, v *values.Value) (*values.Value, error) {
	switch op {
	case opcodes.Neg:
		switch v.Kind() {
		case values.KindInt:
			return values.NewInt(-v.Int()), nil
		case values.KindFloat:
			return values.NewFloat(-v.Float()), nil
		}
	case opcodes.Not:
		if v.Kind() == values.KindBool {
			return values.NewBool(!v.Bool()), nil
		}
	}
	return nil, &errors.TypeError{Op: op.String(), Operands: []string{v.Kind().String()}}
}

// applyBinop implements core spec §4.2's typing rules: + on (Int,Int),
// (Float,Float), (String,String); - * / % and < > on matching numeric
// types; == on matching primitives. && and || never reach here — they are
// lowered to JOF/GOTO sequences by the compiler.
func applyBinop(op opcodes.BinOp, lhs, rhs *values.Value) (*values.Value, error) {
	mismatch := func() error {
		return &errors.TypeError{Op: op.String(), Operands: []string{lhs.Kind().String(), rhs.Kind().String()}}
	}

	if op == opcodes.Eq {
		eq, err := values.Equal(lhs, rhs)
		if err != nil {
			return nil, &errors.TypeError{Op: "==", Operands: []string{lhs.Kind().String(), rhs.Kind().String()}}
		}
		return values.NewBool(eq), nil
	}

	if lhs.Kind() != rhs.Kind() {
		return nil, mismatch()
	}

	switch lhs.Kind() {
	case values.KindInt:
		a, b := lhs.Int(), rhs.Int()
		switch op {
		case opcodes.Add:
			return values.NewInt(a + b), nil
		case opcodes.Sub:
			return values.NewInt(a - b), nil
		case opcodes.Mul:
			return values.NewInt(a * b), nil
		case opcodes.Div:
			if b == 0 {
				return nil, errors.Internal("division by zero")
			}
			return values.NewInt(a / b), nil
		case opcodes.Mod:
			if b == 0 {
				return nil, errors.Internal("modulo by zero")
			}
			return values.NewInt(a % b), nil
		case opcodes.Lt:
			return values.NewBool(a < b), nil
		case opcodes.Gt:
			return values.NewBool(a > b), nil
		}
	case values.KindFloat:
		a, b := lhs.Float(), rhs.Float()
		switch op {
		case opcodes.Add:
			return values.NewFloat(a + b), nil
		case opcodes.Sub:
			return values.NewFloat(a - b), nil
		case opcodes.Mul:
			return values.NewFloat(a * b), nil
		case opcodes.Div:
			return values.NewFloat(a / b), nil
		case opcodes.Mod:
			return values.NewFloat(math.Mod(a, b)), nil
		case opcodes.Lt:
			return values.NewBool(a < b), nil
		case opcodes.Gt:
			return values.NewBool(a > b), nil
		}
	case values.KindString:
		if op == opcodes.Add {
			return values.NewString(lhs.Text() + rhs.Text()), nil
		}
	}

	return nil, mismatch()
}
