// Package mql implements MQL, a small embeddable numeric expression
// language for evaluating host-provided "query" objects.
//
// An expression such as math.sqrt(q.health + 1) > 0 ? 1 : 0 parses into a
// tree, binds against a set of host-provided query roots, and evaluates
// to a single double. Two execution paths share the same grammar and
// numeric semantics:
//
//   - [evaluator.Interpreter]: a tree walker, useful for one-off
//     evaluation or scripts whose signature varies per call.
//   - [compiler.Compiler]: resolves every identifier against a declared
//     signature once, ahead of any call, and produces a
//     [compiler.SpecializedCallable] with no further name lookup.
//
// # Quick Start
//
//	// One-off evaluation, no query roots.
//	result, err := mql.Eval("math.sqrt(16)", evaluator.NewEnv())
//
//	// Compile once, invoke many times against a declared signature.
//	sig, _ := compiler.NewSignature(compiler.ParamInfo{
//	    Names: []string{"q"},
//	    Class: queryClassInfo,
//	})
//	c, _ := compiler.NewCompiler(sig)
//	callable, err := c.Compile("q.health + 1")
//	result, err := callable.Invoke(query)
//
// # More Information
//
// For detailed documentation, see:
//   - Lexer: github.com/hollowcube/mql/pkg/lexer
//   - Parser: github.com/hollowcube/mql/pkg/parser
//   - Interpreter: github.com/hollowcube/mql/pkg/evaluator
//   - Compiler: github.com/hollowcube/mql/pkg/compiler
//   - Host registration protocol: github.com/hollowcube/mql/pkg/functions
//   - Built-in math library: github.com/hollowcube/mql/pkg/mathlib
package mql

import (
	"fmt"

	"github.com/hollowcube/mql/pkg/evaluator"
	"github.com/hollowcube/mql/pkg/parser"
	"github.com/hollowcube/mql/pkg/types"
)

// Version returns the current version of this module.
func Version() string {
	return "v0.1.0-dev"
}

// Parse parses source into a Script without evaluating it.
func Parse(source string) (*types.Script, error) {
	return parser.Parse(source)
}

// Eval parses and evaluates source against env in one call, using the
// tree-walking interpreter. Pass evaluator.NewEnv() if the script binds
// no query roots beyond the built-in math/m.
//
// For repeated evaluation of the same source, prefer Parse once and
// Interpreter.Evaluate per call, or compile against a fixed signature
// with the compiler package.
func Eval(source string, env *evaluator.Env) (types.Value, error) {
	script, err := Parse(source)
	if err != nil {
		return types.Value{}, err
	}
	return evaluator.New().Evaluate(script.Root(), env)
}

// MustParse is like Parse but panics if source cannot be parsed. It
// simplifies safe initialization of global variables.
func MustParse(source string) *types.Script {
	script, err := Parse(source)
	if err != nil {
		panic(fmt.Sprintf("mql: Parse(%q): %v", source, err))
	}
	return script
}
