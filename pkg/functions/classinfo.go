// Package functions provides the host-registration protocol for MQL query
// roots.
//
// A host exposes a Go type to MQL scripts by building a [ClassInfo]: a
// table of the type's query-callable methods, each given as a [Method]
// with a fixed arity, declared parameter kinds, and an invoker closure.
// This replaces the runtime reflection the original dialect uses to
// discover @Query-annotated methods — Go has no answer to that without
// reflect, so the host hand-registers the equivalent table once, and the
// compiler resolves every identifier against it ahead of any invocation.
//
// # Example
//
//	health := functions.Method{
//	    Name: "health",
//	    Invoke: func(receiver interface{}, _ []float64) (types.Value, error) {
//	        return types.Number(receiver.(*Query).Health()), nil
//	    },
//	}
//	classInfo, err := functions.NewClassInfo(health)
package functions

import (
	"sort"
	"strconv"

	"github.com/hollowcube/mql/pkg/types"
)

// ParamKind is a query method parameter's declared kind. MQL restricts
// host method parameters to these two kinds; any other kind is a
// registration-time TypeError.
type ParamKind uint8

const (
	ParamNumber  ParamKind = iota // coerced as-is
	ParamBoolean                  // nonzero -> true, zero -> false
)

// Method is one callable member of a query root, keyed by name and arity.
// Invoke receives the receiver object bound to the matching signature slot
// (nil for the static math root) and the already-evaluated, already-coerced
// argument list, in order. A host method with no meaningful return value
// should yield types.NullVal(), matching the original dialect's "void
// query method" semantics.
type Method struct {
	Name       string
	ParamKinds []ParamKind
	Invoke     func(receiver interface{}, args []float64) (types.Value, error)
}

// Arity returns the method's declared parameter count.
func (m Method) Arity() int { return len(m.ParamKinds) }

// overloadKey identifies one arity-resolved overload of a named method.
type overloadKey struct {
	name  string
	arity int
}

// ClassInfo is a host query type's precomputed method table: name -> list
// of arity-distinguished overloads. Built once at registration and
// immutable thereafter, per spec.md §3's Lifecycles.
type ClassInfo struct {
	methods map[overloadKey]Method
	arities map[string][]int // name -> sorted distinct arities registered for it
}

// NewClassInfo builds a ClassInfo from a set of methods. Registration
// fails with a TypeError if any method declares a parameter kind other
// than ParamNumber/ParamBoolean, or if two methods share both a name and
// an arity (ambiguous overload resolution, since MQL resolves overloads
// by arity alone).
func NewClassInfo(methods ...Method) (*ClassInfo, error) {
	table := make(map[overloadKey]Method, len(methods))
	arities := make(map[string][]int, len(methods))
	for _, m := range methods {
		for _, k := range m.ParamKinds {
			if k != ParamNumber && k != ParamBoolean {
				return nil, types.NewTypeError(-1, "method "+m.Name+" declares a parameter kind that is neither numeric nor boolean")
			}
		}
		for _, k := range m.ParamKinds {
			if k == ParamBoolean && m.Invoke != nil {
				kinds, invoke := m.ParamKinds, m.Invoke
				m.Invoke = func(receiver interface{}, args []float64) (types.Value, error) {
					coerced := append([]float64(nil), args...)
					for i := 0; i < len(kinds) && i < len(coerced); i++ {
						if kinds[i] == ParamBoolean && coerced[i] != 0 {
							coerced[i] = 1
						}
					}
					return invoke(receiver, coerced)
				}
				break
			}
		}
		key := overloadKey{name: m.Name, arity: m.Arity()}
		if _, dup := table[key]; dup {
			return nil, types.NewTypeError(-1, "method "+m.Name+" is registered twice for arity "+strconv.Itoa(m.Arity()))
		}
		table[key] = m
		arities[m.Name] = append(arities[m.Name], m.Arity())
	}
	for name := range arities {
		sort.Ints(arities[name])
	}
	return &ClassInfo{methods: table, arities: arities}, nil
}

// Lookup finds the method named name accepting exactly arity arguments.
// Overloads are resolved by arity only, per spec.md §4.5 step 4.
func (ci *ClassInfo) Lookup(name string, arity int) (Method, bool) {
	m, ok := ci.methods[overloadKey{name: name, arity: arity}]
	return m, ok
}

// Arities reports the distinct arities registered for name, in ascending
// order, or nil if no method by that name was registered at all. Callers
// use this to distinguish "no such method" (nil) from "wrong argument
// count" (non-nil) when a Lookup misses.
func (ci *ClassInfo) Arities(name string) []int {
	return ci.arities[name]
}
