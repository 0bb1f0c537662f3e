package compiler

import (
	"fmt"

	"github.com/hollowcube/mql/pkg/functions"
	"github.com/hollowcube/mql/pkg/types"
)

// invoker is the compiled form of one expression node: a closure over the
// positional query roots supplied to SpecializedCallable.Invoke, with
// every identifier it touches already resolved to a fixed ClassInfo
// method. This is the "specialized closure that captures resolved
// invokers" backend named in spec.md §9.
type invoker func(roots []interface{}) (float64, error)

// lower walks expr and emits its compiled closure, applying the
// operator-lowering table of spec.md §4.5.
func (c *Compiler) lower(expr *types.Expr) (invoker, error) {
	switch expr.Type {
	case types.NodeNumber:
		v := expr.Number
		return func([]interface{}) (float64, error) { return v, nil }, nil

	case types.NodeIdent:
		return nil, types.NewTypeError(expr.Position, "query root \""+expr.Ident+"\" cannot be used as a value; access a member of it")

	case types.NodeAccess:
		return c.lowerCall(expr, nil, expr.Position)

	case types.NodeCall:
		if expr.Access.Type != types.NodeAccess {
			return nil, types.NewTypeError(expr.Position, "call target is not a member access")
		}
		return c.lowerCall(expr.Access, expr.Args, expr.Position)

	case types.NodeUnary:
		rhs, err := c.lower(expr.Unary())
		if err != nil {
			return nil, err
		}
		return func(roots []interface{}) (float64, error) {
			v, err := rhs(roots)
			if err != nil {
				return 0, err
			}
			return -v, nil
		}, nil

	case types.NodeBinary:
		return c.lowerBinary(expr)

	case types.NodeTernary:
		return c.lowerTernary(expr)

	default:
		return nil, types.NewTypeError(expr.Position, "unrecognized expression node")
	}
}

// lowerCall resolves access's root and member against the signature (or
// the built-in math root) once, and emits a closure that evaluates args
// and dispatches directly to the resolved method — no name lookup at
// invocation time. args is nil for a bare Access (arity 0).
func (c *Compiler) lowerCall(access *types.Expr, args []*types.Expr, pos int) (invoker, error) {
	class, receiverOf, rootName, err := c.resolveRoot(access)
	if err != nil {
		return nil, err
	}

	argFns := make([]invoker, len(args))
	for i, a := range args {
		fn, err := c.lower(a)
		if err != nil {
			return nil, err
		}
		argFns[i] = fn
	}

	method, ok := class.Lookup(access.Ident, len(args))
	if !ok {
		arities := class.Arities(access.Ident)
		if len(arities) == 0 {
			if c.debug {
				c.logger.Debug("unknown member", "root", rootName, "member", access.Ident, "arity", len(args), "position", pos)
			}
			return nil, types.NewMethodError(pos, rootName, access.Ident, len(args))
		}
		if c.debug {
			c.logger.Debug("arity mismatch", "root", rootName, "member", access.Ident, "got", len(args), "expected", arities[0], "position", pos)
		}
		return nil, types.NewArityError(pos, arities[0], len(args))
	}
	if c.debug {
		c.logger.Debug("resolved method", "root", rootName, "member", access.Ident, "arity", len(args), "position", pos)
	}

	return func(roots []interface{}) (float64, error) {
		argv := make([]float64, len(argFns))
		for i, fn := range argFns {
			v, err := fn(roots)
			if err != nil {
				return 0, err
			}
			argv[i] = v
		}
		result, err := method.Invoke(receiverOf(roots), argv)
		if err != nil {
			return 0, (&types.Error{Kind: types.KindMethodError, Position: pos, Message: rootName + "." + access.Ident + " failed"}).WithCause(err)
		}
		return result.Num(), nil
	}, nil
}

// resolveRoot matches access.LHS against the built-in math root or the
// signature, per spec.md §4.5 steps 2-3. access.LHS must be a bare Ident;
// anything deeper is a nested-query rejection.
func (c *Compiler) resolveRoot(access *types.Expr) (class *functions.ClassInfo, receiverOf func([]interface{}) interface{}, rootName string, err error) {
	if access.LHS.Type != types.NodeIdent {
		if c.debug {
			c.logger.Debug("rejecting nested query root", "position", access.LHS.Position)
		}
		return nil, nil, "", types.NewUnsupportedFeature(access.LHS.Position, "nested queries are not supported")
	}
	ident := access.LHS.Ident

	if ident == "math" || ident == "m" {
		if c.debug {
			c.logger.Debug("resolved ident to built-in root", "ident", ident, "position", access.LHS.Position)
		}
		return c.math, func([]interface{}) interface{} { return nil }, ident, nil
	}

	idx, ok := c.sig.resolve(ident)
	if !ok {
		if c.debug {
			c.logger.Debug("unknown query root", "root", ident, "position", access.LHS.Position)
		}
		return nil, nil, "", types.NewNameError(access.LHS.Position, ident)
	}
	if c.debug {
		c.logger.Debug("resolved ident to signature parameter", "ident", ident, "param", idx, "position", access.LHS.Position)
	}
	return c.sig.Params[idx].Class, func(roots []interface{}) interface{} { return roots[idx] }, ident, nil
}

func (c *Compiler) lowerBinary(expr *types.Expr) (invoker, error) {
	if expr.Op == types.OpNullCoalesce {
		return nil, types.NewUnsupportedFeature(expr.Position, "?? cannot be lowered to the compiled double ABI")
	}

	lhs, err := c.lower(expr.LHS)
	if err != nil {
		return nil, err
	}
	rhs, err := c.lower(expr.RHS)
	if err != nil {
		return nil, err
	}

	combine, err := binaryOp(expr.Op)
	if err != nil {
		return nil, &types.Error{Kind: types.KindTypeError, Position: expr.Position, Message: err.Error()}
	}

	return func(roots []interface{}) (float64, error) {
		l, err := lhs(roots)
		if err != nil {
			return 0, err
		}
		r, err := rhs(roots)
		if err != nil {
			return 0, err
		}
		return combine(l, r), nil
	}, nil
}

func binaryOp(op types.Operator) (func(l, r float64) float64, error) {
	switch op {
	case types.OpAdd:
		return func(l, r float64) float64 { return l + r }, nil
	case types.OpSub:
		return func(l, r float64) float64 { return l - r }, nil
	case types.OpMul:
		return func(l, r float64) float64 { return l * r }, nil
	case types.OpDiv:
		return func(l, r float64) float64 { return l / r }, nil
	case types.OpEq:
		return boolOp(func(l, r float64) bool { return l == r }), nil
	case types.OpNeq:
		return boolOp(func(l, r float64) bool { return l != r }), nil
	case types.OpLt:
		return boolOp(func(l, r float64) bool { return l < r }), nil
	case types.OpLte:
		return boolOp(func(l, r float64) bool { return l <= r }), nil
	case types.OpGt:
		return boolOp(func(l, r float64) bool { return l > r }), nil
	case types.OpGte:
		return boolOp(func(l, r float64) bool { return l >= r }), nil
	default:
		return nil, fmt.Errorf("unrecognized binary operator %s", op)
	}
}

func boolOp(cmp func(l, r float64) bool) func(l, r float64) float64 {
	return func(l, r float64) float64 {
		if cmp(l, r) {
			return 1
		}
		return 0
	}
}

// lowerTernary evaluates cond, then, and else unconditionally and selects
// with a branch-free comparison, per spec.md §4.3's intentionally
// non-short-circuiting contract and §4.5's operator-lowering table. Do
// not "fix" this into a short-circuiting form — both branches running
// unconditionally is the documented behavior.
func (c *Compiler) lowerTernary(expr *types.Expr) (invoker, error) {
	condFn, err := c.lower(expr.LHS)
	if err != nil {
		return nil, err
	}
	thenFn, err := c.lower(expr.RHS)
	if err != nil {
		return nil, err
	}
	elseFn, err := c.lower(expr.Else)
	if err != nil {
		return nil, err
	}

	return func(roots []interface{}) (float64, error) {
		cond, err := condFn(roots)
		if err != nil {
			return 0, err
		}
		then, err := thenFn(roots)
		if err != nil {
			return 0, err
		}
		els, err := elseFn(roots)
		if err != nil {
			return 0, err
		}
		if cond == 0 {
			return els, nil
		}
		return then, nil
	}, nil
}
