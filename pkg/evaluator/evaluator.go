// Package evaluator implements MQL's tree-walking interpreter, the
// fallback path alongside the compiler (spec.md §6). It evaluates an
// expression tree directly against an [Env] of bound query roots, with
// no ahead-of-time resolution: every Access and Call re-resolves its
// target against the environment on each visit.
//
// # Example
//
//	env := evaluator.NewEnv()
//	env.Bind("q", healthClassInfo, query)
//	result, err := evaluator.New().Evaluate(script.Root(), env)
package evaluator

import (
	"log/slog"

	"github.com/hollowcube/mql/pkg/functions"
	"github.com/hollowcube/mql/pkg/mathlib"
	"github.com/hollowcube/mql/pkg/types"
)

// root is an environment entry: a host type's method table paired with
// the concrete receiver object those methods are invoked against.
type root struct {
	class    *functions.ClassInfo
	receiver interface{}
}

// Env binds query-root names to host objects for one evaluation. The
// built-in math root is bound to both "math" and "m" automatically.
type Env struct {
	roots map[string]*root
}

// NewEnv creates an environment with only the built-in math root bound.
func NewEnv() *Env {
	e := &Env{roots: make(map[string]*root)}
	e.bindRoot("math", mathlib.New(), nil)
	e.bindRoot("m", e.roots["math"].class, nil)
	return e
}

// Bind registers a host query root under name, backed by class and
// invoked against receiver. A script referencing name resolves its
// member accesses against class.
func (e *Env) Bind(name string, class *functions.ClassInfo, receiver interface{}) {
	e.bindRoot(name, class, receiver)
}

func (e *Env) bindRoot(name string, class *functions.ClassInfo, receiver interface{}) {
	e.roots[name] = &root{class: class, receiver: receiver}
}

func (e *Env) lookup(name string) (*root, bool) {
	r, ok := e.roots[name]
	return r, ok
}

// Interpreter evaluates parsed MQL expressions against an Env.
type Interpreter struct {
	logger *slog.Logger
	debug  bool
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger attaches a structured logger, used for debug-level tracing
// of name resolution failures.
func WithLogger(logger *slog.Logger) Option {
	return func(it *Interpreter) { it.logger = logger }
}

// WithDebug enables debug-level tracing of identifier resolution: every
// unbound query root and every unmatched/mis-arity member lookup is
// logged via the Interpreter's logger before the corresponding error is
// returned.
func WithDebug(debug bool) Option {
	return func(it *Interpreter) { it.debug = debug }
}

// New creates an Interpreter. With no options it logs via slog.Default().
func New(opts ...Option) *Interpreter {
	it := &Interpreter{logger: slog.Default()}
	for _, opt := range opts {
		opt(it)
	}
	return it
}

// Evaluate walks expr against env and returns its value, per spec.md
// §4.4's contract.
func (it *Interpreter) Evaluate(expr *types.Expr, env *Env) (types.Value, error) {
	switch expr.Type {
	case types.NodeNumber:
		return types.Number(expr.Number), nil

	case types.NodeIdent:
		if _, ok := env.lookup(expr.Ident); !ok {
			return types.Value{}, types.NewNameError(expr.Position, expr.Ident)
		}
		return types.Value{}, types.NewTypeError(expr.Position, "query root \""+expr.Ident+"\" cannot be used as a value; access a member of it")

	case types.NodeAccess:
		return it.evalAccess(expr, env)

	case types.NodeCall:
		return it.evalCall(expr, env)

	case types.NodeUnary:
		rhs, err := it.Evaluate(expr.Unary(), env)
		if err != nil {
			return types.Value{}, err
		}
		return types.Number(-rhs.Num()), nil

	case types.NodeBinary:
		return it.evalBinary(expr, env)

	case types.NodeTernary:
		return it.evalTernary(expr, env)

	default:
		return types.Value{}, types.NewTypeError(expr.Position, "unrecognized expression node")
	}
}

// evalAccess resolves a bare member reference q.name with no call syntax.
// Per spec.md §4.4, a zero-argument method auto-invokes so that q.name
// and q.name() are equivalent.
func (it *Interpreter) evalAccess(access *types.Expr, env *Env) (types.Value, error) {
	r, rootName, err := it.resolveRoot(access.LHS, env)
	if err != nil {
		return types.Value{}, err
	}
	return it.invokeMethod(r, rootName, access.Ident, access.Position, nil)
}

// evalCall resolves and invokes access(args...).
func (it *Interpreter) evalCall(call *types.Expr, env *Env) (types.Value, error) {
	access := call.Access
	if access.Type != types.NodeAccess {
		return types.Value{}, types.NewTypeError(call.Position, "call target is not a member access")
	}
	r, rootName, err := it.resolveRoot(access.LHS, env)
	if err != nil {
		return types.Value{}, err
	}

	args := make([]float64, len(call.Args))
	for i, argExpr := range call.Args {
		v, err := it.Evaluate(argExpr, env)
		if err != nil {
			return types.Value{}, err
		}
		args[i] = v.Num()
	}

	return it.invokeMethod(r, rootName, access.Ident, access.Position, args)
}

// resolveRoot requires lhs to be a bare identifier naming a bound query
// root. Deeper chains (a.b.c) have no member-lookup semantics in a value
// model with no object variant, so they fail the same way the compiler
// rejects them (spec.md §4.5 step 2).
func (it *Interpreter) resolveRoot(lhs *types.Expr, env *Env) (*root, string, error) {
	if lhs.Type != types.NodeIdent {
		if it.debug {
			it.logger.Debug("rejecting nested query root", "position", lhs.Position)
		}
		return nil, "", types.NewUnsupportedFeature(lhs.Position, "nested queries are not supported")
	}
	r, ok := env.lookup(lhs.Ident)
	if !ok {
		if it.debug {
			it.logger.Debug("unknown query root", "root", lhs.Ident, "position", lhs.Position)
		}
		return nil, "", types.NewNameError(lhs.Position, lhs.Ident)
	}
	return r, lhs.Ident, nil
}

func (it *Interpreter) invokeMethod(r *root, rootName, member string, pos int, args []float64) (types.Value, error) {
	m, ok := r.class.Lookup(member, len(args))
	if !ok {
		arities := r.class.Arities(member)
		if len(arities) == 0 {
			if it.debug {
				it.logger.Debug("unknown member", "root", rootName, "member", member, "arity", len(args), "position", pos)
			}
			return types.Value{}, types.NewMethodError(pos, rootName, member, len(args))
		}
		if it.debug {
			it.logger.Debug("arity mismatch", "root", rootName, "member", member, "got", len(args), "expected", arities[0], "position", pos)
		}
		return types.Value{}, types.NewArityError(pos, arities[0], len(args))
	}
	result, err := m.Invoke(r.receiver, args)
	if err != nil {
		return types.Value{}, (&types.Error{Kind: types.KindMethodError, Position: pos, Message: rootName + "." + member + " failed"}).WithCause(err)
	}
	return result, nil
}

func (it *Interpreter) evalBinary(expr *types.Expr, env *Env) (types.Value, error) {
	if expr.Op == types.OpNullCoalesce {
		lhs, err := it.Evaluate(expr.LHS, env)
		if err != nil {
			return types.Value{}, err
		}
		if lhs.IsNull() {
			return it.Evaluate(expr.RHS, env)
		}
		return lhs, nil
	}

	lhsVal, err := it.Evaluate(expr.LHS, env)
	if err != nil {
		return types.Value{}, err
	}
	rhsVal, err := it.Evaluate(expr.RHS, env)
	if err != nil {
		return types.Value{}, err
	}
	lhs, rhs := lhsVal.Num(), rhsVal.Num()

	switch expr.Op {
	case types.OpAdd:
		return types.Number(lhs + rhs), nil
	case types.OpSub:
		return types.Number(lhs - rhs), nil
	case types.OpMul:
		return types.Number(lhs * rhs), nil
	case types.OpDiv:
		return types.Number(lhs / rhs), nil
	case types.OpEq:
		return boolValue(lhs == rhs), nil
	case types.OpNeq:
		return boolValue(lhs != rhs), nil
	case types.OpLt:
		return boolValue(lhs < rhs), nil
	case types.OpLte:
		return boolValue(lhs <= rhs), nil
	case types.OpGt:
		return boolValue(lhs > rhs), nil
	case types.OpGte:
		return boolValue(lhs >= rhs), nil
	default:
		return types.Value{}, types.NewTypeError(expr.Position, "unrecognized binary operator")
	}
}

// evalTernary evaluates cond, then, and else unconditionally — the
// intentional non-short-circuit contract of spec.md §4.3 — then selects
// by cond's truthiness.
func (it *Interpreter) evalTernary(expr *types.Expr, env *Env) (types.Value, error) {
	cond, err := it.Evaluate(expr.LHS, env)
	if err != nil {
		return types.Value{}, err
	}
	then, err := it.Evaluate(expr.RHS, env)
	if err != nil {
		return types.Value{}, err
	}
	els, err := it.Evaluate(expr.Else, env)
	if err != nil {
		return types.Value{}, err
	}
	if cond.Bool() {
		return then, nil
	}
	return els, nil
}

func boolValue(b bool) types.Value {
	if b {
		return types.Number(1)
	}
	return types.Number(0)
}
