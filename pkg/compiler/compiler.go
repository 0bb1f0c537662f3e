// Package compiler implements MQL's ahead-of-call code generator
// (spec.md §4.5). Given a script signature — the declared query roots a
// script may reference — it resolves every identifier in a parsed script
// against that signature once, at compile time, and produces a
// [SpecializedCallable]: a plain Go closure with zero per-invocation name
// lookup, which is the closure-capture backend spec.md §9 calls out as
// "universally portable".
//
// # Example
//
//	sig, _ := compiler.NewSignature(compiler.ParamInfo{
//	    Names: []string{"q", "query"},
//	    Class: queryClassInfo,
//	})
//	c, _ := compiler.NewCompiler(sig)
//	callable, err := c.Compile("math.sqrt(q.health + 1) > 0 ? 1 : 0")
//	result, err := callable.Invoke(query)
package compiler

import (
	"fmt"
	"log/slog"

	"github.com/hollowcube/mql/pkg/cache"
	"github.com/hollowcube/mql/pkg/functions"
	"github.com/hollowcube/mql/pkg/mathlib"
	"github.com/hollowcube/mql/pkg/parser"
	"github.com/hollowcube/mql/pkg/types"
)

// Compiler compiles MQL source against one fixed Signature. A single
// instance is not safe for concurrent Compile calls (spec.md §5); the
// host must serialize them. The callables Compile returns have no such
// restriction.
type Compiler struct {
	sig     *Signature
	math    *functions.ClassInfo
	logger  *slog.Logger
	debug   bool
	cache   *cache.Cache // non-nil when WithCache is set
	counter uint64
}

// Option configures a Compiler.
type Option func(*compilerOptions)

type compilerOptions struct {
	mathSeed   int64
	mathSeeded bool
	logger     *slog.Logger
	debug      bool
	cache      *cache.Cache
}

// WithCache attaches a parsed-script cache, so repeated Compile calls for
// the same source string skip re-lexing and re-parsing it. The cache is
// keyed on source text alone, so it may be shared across Compilers with
// different signatures.
func WithCache(c *cache.Cache) Option {
	return func(o *compilerOptions) { o.cache = c }
}

// WithMathSeed pins the built-in math root's random()/random_int() source
// to a deterministic seed. Per spec.md §9's open question on math.random,
// the default is a fresh seed per Compiler instance.
func WithMathSeed(seed int64) Option {
	return func(o *compilerOptions) {
		o.mathSeed = seed
		o.mathSeeded = true
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *compilerOptions) { o.logger = logger }
}

// WithDebug enables debug-level tracing of identifier resolution at
// Compile time: every Ident resolved against the signature (or the
// built-in math/m root) and every method match is logged, once, as part
// of that Compile call — never per invocation of the resulting
// SpecializedCallable, since that would defeat the "zero per-call name
// lookup" contract Compile exists to provide.
func WithDebug(debug bool) Option {
	return func(o *compilerOptions) { o.debug = debug }
}

// NewCompiler validates sig and builds a Compiler for it.
func NewCompiler(sig *Signature, opts ...Option) (*Compiler, error) {
	if sig == nil {
		return nil, types.NewTypeError(-1, "signature must not be nil")
	}
	options := compilerOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	math := mathlib.New()
	if options.mathSeeded {
		math = mathlib.NewSeeded(options.mathSeed)
	}

	return &Compiler{sig: sig, math: math, logger: options.logger, debug: options.debug, cache: options.cache}, nil
}

// Compile parses source and lowers it into a SpecializedCallable bound to
// the compiler's signature. Compile-time rejections are listed in
// spec.md §4.5.
func (c *Compiler) Compile(source string) (*SpecializedCallable, error) {
	var script *types.Script
	var err error
	if c.cache != nil {
		script, err = c.cache.GetOrParse(source, parser.Parse)
	} else {
		script, err = parser.Parse(source)
	}
	if err != nil {
		return nil, err
	}

	body, err := c.lower(script.Root())
	if err != nil {
		return nil, err
	}

	c.counter++
	name := fmt.Sprintf("mql_compiled_%d", c.counter)

	return &SpecializedCallable{name: name, arity: len(c.sig.Params), body: body}, nil
}

// SpecializedCallable is a script compiled against a fixed signature. It
// performs no name-based method lookup per invocation; every
// identifier-to-method resolution happened once, in Compile.
type SpecializedCallable struct {
	name  string
	arity int
	body  invoker
}

// Name returns the callable's compiler-minted unique name, distinct
// across every callable produced by a single Compiler instance.
func (sc *SpecializedCallable) Name() string { return sc.name }

// Invoke evaluates the compiled script against roots, one positional
// argument per signature parameter, and returns its numeric result.
func (sc *SpecializedCallable) Invoke(roots ...interface{}) (float64, error) {
	if len(roots) != sc.arity {
		return 0, types.NewArityError(-1, sc.arity, len(roots))
	}
	return sc.body(roots)
}
