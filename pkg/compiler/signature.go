package compiler

import (
	"github.com/hollowcube/mql/pkg/functions"
	"github.com/hollowcube/mql/pkg/types"
)

// ParamInfo describes one positional query-root parameter of a compiled
// script's declared signature (spec.md §3). Names is the non-empty set of
// identifiers a script may use to refer to this root — e.g. both "q" and
// "query" can name the same slot. Generic marks a parameter the host
// declared without pinning a concrete type until compile time; Go has no
// runtime cast to insert for this the way a JIT backend would (every
// receiver already arrives boxed in an interface{}, and the host's own
// Method.Invoke closure performs whatever assertion it needs), so the
// flag here is carried as metadata only; NewSignature and the compiler do
// not read it.
type ParamInfo struct {
	Names   []string
	Class   *functions.ClassInfo
	Generic bool
}

// Signature is a compiled script's declared shape: its ordered query-root
// parameters. The built-in math/m root is implicit and does not appear
// here.
type Signature struct {
	Params []ParamInfo
}

// NewSignature validates and builds a Signature. It rejects: a parameter
// with no bound names, a parameter with a nil ClassInfo, and any name
// (including "math"/"m", which are reserved for the built-in root) bound
// to more than one parameter.
func NewSignature(params ...ParamInfo) (*Signature, error) {
	seen := map[string]bool{"math": true, "m": true}
	for _, p := range params {
		if len(p.Names) == 0 {
			return nil, types.NewTypeError(-1, "signature parameter has no bound names")
		}
		if p.Class == nil {
			return nil, types.NewTypeError(-1, "signature parameter has no ClassInfo")
		}
		for _, name := range p.Names {
			if seen[name] {
				return nil, types.NewTypeError(-1, "signature name \""+name+"\" is bound to more than one parameter")
			}
			seen[name] = true
		}
	}
	return &Signature{Params: params}, nil
}

// resolve finds the parameter index bound to name, if any.
func (s *Signature) resolve(name string) (int, bool) {
	for i, p := range s.Params {
		for _, n := range p.Names {
			if n == name {
				return i, true
			}
		}
	}
	return 0, false
}
