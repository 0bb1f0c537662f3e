// Package parser implements a recursive-descent parser for MQL.
//
// The grammar is precedence-ordered from low to high: ternary, null-coalesce,
// equality, comparison, additive, multiplicative, unary, postfix, primary.
// Every level but ternary is left-associative; ternary is right-associative.
//
// # Example
//
//	script, err := parser.Parse("math.sqrt(q.health + 1) > 0 ? 1 : 0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	root := script.Root()
package parser

import (
	"github.com/hollowcube/mql/pkg/types"
)

// Parse tokenizes and parses source, returning its expression tree wrapped
// in a Script. A parse failure returns a *types.Error of kind LexError or
// ParseError.
func Parse(source string) (*types.Script, error) {
	p := New(source)
	return p.Parse()
}
