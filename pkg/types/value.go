package types

import "fmt"

// Null represents the MQL null value, distinct from the number 0. It is
// what a host query method with no meaningful return value yields (see
// functions.Method) — and it is what NULL_COALESCE's right-hand side
// replaces.
type Null struct{}

// NullValue is the singleton MQL null value.
var NullValue = Null{}

// Callable is a zero-or-more-argument function-reference value. Arity is
// fixed at construction time; Invoke receives already-evaluated arguments.
// Neither the interpreter nor the compiler produces one: ident.member(...)
// and ident.member are dispatched through functions.Method instead.
type Callable struct {
	Arity  int
	Invoke func(args []Value) (Value, error)
}

// Value is the interpreter's runtime value. It is a closed variant over
// three cases: a Number, Null, or a Callable. There is no string, array,
// or object case — MQL's Non-goals exclude those entirely.
type Value struct {
	kind     valueKind
	number   float64
	callable *Callable
}

type valueKind uint8

const (
	kindNumber valueKind = iota
	kindNull
	kindCallable
)

// Number constructs a numeric value.
func Number(v float64) Value { return Value{kind: kindNumber, number: v} }

// NullVal constructs the null value.
func NullVal() Value { return Value{kind: kindNull} }

// FromCallable constructs a callable value.
func FromCallable(c *Callable) Value { return Value{kind: kindCallable, callable: c} }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == kindNull }

// IsCallable reports whether v holds a Callable.
func (v Value) IsCallable() bool { return v.kind == kindCallable }

// Callable returns the callable held by v, or nil if v is not callable.
func (v Value) Callable() *Callable {
	if v.kind != kindCallable {
		return nil
	}
	return v.callable
}

// Num projects v onto a double per spec.md §4.3: Null coerces to 0.0,
// a Callable has no numeric projection and is a programming error to call
// this on (it never happens on a path the interpreter exercises, since
// every Callable site either invokes or propagates a TypeError first).
func (v Value) Num() float64 {
	switch v.kind {
	case kindNumber:
		return v.number
	case kindNull:
		return 0
	default:
		return 0
	}
}

// Bool treats any nonzero numeric projection as true, per spec.md §4.3.
func (v Value) Bool() bool { return v.Num() != 0 }

func (v Value) String() string {
	switch v.kind {
	case kindNumber:
		return fmt.Sprintf("%g", v.number)
	case kindNull:
		return "null"
	default:
		return "<callable>"
	}
}
