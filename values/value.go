// Package values implements the tagged Value union that flows through the
// compiler's constant pool, the operand stacks, and every environment
// binding.
package values

import "fmt"

// Kind tags the variant held by a Value.
type Kind byte

const (
	KindUnit Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindThreadID
	KindSemaphore
	KindUninitialized
	KindClosure
)

func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindThreadID:
		return "thread_id"
	case KindSemaphore:
		return "semaphore"
	case KindUninitialized:
		return "uninitialized"
	case KindClosure:
		return "closure"
	default:
		return "unknown"
	}
}

// ClosureKind distinguishes user-defined closures, which jump into the
// bytecode stream, from builtins, which invoke a host function directly.
type ClosureKind byte

const (
	ClosureUser ClosureKind = iota
	ClosureBuiltin
)

// Env is the minimal read surface the values package needs from an
// environment in order to let a Closure carry a weak reference to the
// frame that defined it. The concrete implementation lives in package vm;
// defining the interface here avoids an import cycle between values and vm.
type Env interface {
	// ID uniquely identifies the environment for registry bookkeeping.
	ID() uint64
}

// Closure bundles a function value: either a jump target into the
// bytecode plus captured environment (User), or a host function (Builtin).
type Closure struct {
	Kind   ClosureKind
	Name   string
	Params []string
	Addr   int // instruction index; meaningless for Builtin
	Env    Env // captured defining environment (the global env for Builtin closures)

	// Builtin is the host function invoked by CALL when Kind == ClosureBuiltin.
	// It receives the popped argument values, in parameter order, and
	// returns the single resulting Value or an error (wrapped by the VM
	// into errors.BuiltinError).
	Builtin func(args []*Value) (*Value, error)
}

// Value is a tagged sum of every runtime value this language produces.
// Only one of the typed accessors below is meaningful for a given Kind;
// reading the wrong one panics, mirroring the teacher's Value.Data
// type-asserts-or-panics discipline.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	sem  *Semaphore
	clo  *Closure
}

// Semaphore is a shared non-negative counter. Two handles are the same
// semaphore iff they point at the same Semaphore value: identity is by
// reference, never by count.
type Semaphore struct {
	Count int64
}

func Unit() *Value                { return &Value{kind: KindUnit} }
func Uninitialized() *Value       { return &Value{kind: KindUninitialized} }
func NewBool(b bool) *Value       { return &Value{kind: KindBool, b: b} }
func NewInt(i int64) *Value       { return &Value{kind: KindInt, i: i} }
func NewFloat(f float64) *Value   { return &Value{kind: KindFloat, f: f} }
func NewString(s string) *Value   { return &Value{kind: KindString, s: s} }
func NewThreadID(id int64) *Value { return &Value{kind: KindThreadID, i: id} }
func NewSemaphore(s *Semaphore) *Value {
	return &Value{kind: KindSemaphore, sem: s}
}
func NewClosure(c *Closure) *Value { return &Value{kind: KindClosure, clo: c} }

func (v *Value) Kind() Kind { return v.kind }

func (v *Value) Bool() bool {
	if v.kind != KindBool {
		panic(fmt.Sprintf("Value.Bool called on %s", v.kind))
	}
	return v.b
}

func (v *Value) Int() int64 {
	if v.kind != KindInt && v.kind != KindThreadID {
		panic(fmt.Sprintf("Value.Int called on %s", v.kind))
	}
	return v.i
}

func (v *Value) Float() float64 {
	if v.kind != KindFloat {
		panic(fmt.Sprintf("Value.Float called on %s", v.kind))
	}
	return v.f
}

func (v *Value) String() string {
	switch v.kind {
	case KindUnit:
		return "()"
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindString:
		return v.s
	case KindThreadID:
		return fmt.Sprintf("thread#%d", v.i)
	case KindSemaphore:
		return fmt.Sprintf("semaphore(%d)", v.sem.Count)
	case KindUninitialized:
		return "<uninitialized>"
	case KindClosure:
		return fmt.Sprintf("closure(%s)", v.clo.Name)
	default:
		return "<invalid>"
	}
}

// Text returns the raw string payload of a KindString value.
func (v *Value) Text() string {
	if v.kind != KindString {
		panic(fmt.Sprintf("Value.Text called on %s", v.kind))
	}
	return v.s
}

func (v *Value) Semaphore() *Semaphore {
	if v.kind != KindSemaphore {
		panic(fmt.Sprintf("Value.Semaphore called on %s", v.kind))
	}
	return v.sem
}

func (v *Value) Closure() *Closure {
	if v.kind != KindClosure {
		panic(fmt.Sprintf("Value.Closure called on %s", v.kind))
	}
	return v.clo
}

// Equal implements the primitive equality "==" defines: same kind, same
// payload. Closures, semaphores, and Unit/Uninitialized never compare
// equal via this operator (the core spec restricts "==" to primitives).
func Equal(a, b *Value) (bool, error) {
	if a.kind != b.kind {
		return false, nil
	}
	switch a.kind {
	case KindBool:
		return a.b == b.b, nil
	case KindInt, KindThreadID:
		return a.i == b.i, nil
	case KindFloat:
		return a.f == b.f, nil
	case KindString:
		return a.s == b.s, nil
	default:
		return false, fmt.Errorf("== not defined for %s", a.kind)
	}
}
