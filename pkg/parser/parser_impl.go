package parser

import (
	"strconv"

	"github.com/hollowcube/mql/pkg/lexer"
	"github.com/hollowcube/mql/pkg/types"
)

// Parser is a recursive-descent parser over a single MQL source string.
type Parser struct {
	lex     *lexer.Lexer
	source  string
	current lexer.Token
}

// New creates a parser for source. The first token is read immediately.
func New(source string) *Parser {
	p := &Parser{lex: lexer.New(source), source: source}
	p.advance()
	return p
}

// Parse parses the entire input as a single expression and requires EOF
// immediately after it, per spec.md §4.2: "The parser MUST reject EOF
// before a complete expression and any trailing non-EOF token."
func (p *Parser) Parse() (*types.Script, error) {
	if p.current.Type == lexer.TokenError {
		return nil, p.lex.Err()
	}
	if p.current.Type == lexer.TokenEOF {
		return nil, types.NewParseError(p.current.Position, "an expression", "end of input")
	}

	root, err := p.parseTernary()
	if err != nil {
		return nil, err
	}

	if p.current.Type == lexer.TokenError {
		return nil, p.lex.Err()
	}
	if p.current.Type != lexer.TokenEOF {
		return nil, types.NewParseError(p.current.Position, "end of input", p.current.Value)
	}

	return types.NewScript(root, p.source), nil
}

func (p *Parser) advance() {
	p.current = p.lex.Next()
}

// expect consumes the current token if it has type tt, otherwise returns a
// positional parse error describing what was wanted.
func (p *Parser) expect(tt lexer.TokenType, want string) (lexer.Token, error) {
	if p.current.Type == lexer.TokenError {
		return lexer.Token{}, p.lex.Err()
	}
	if p.current.Type != tt {
		return lexer.Token{}, types.NewParseError(p.current.Position, want, p.describeCurrent())
	}
	t := p.current
	p.advance()
	return t, nil
}

func (p *Parser) describeCurrent() string {
	if p.current.Type == lexer.TokenEOF {
		return "end of input"
	}
	return p.current.Value
}

// parseTernary handles `cond ? then : else`, right-associative.
func (p *Parser) parseTernary() (*types.Expr, error) {
	cond, err := p.parseNullCoalesce()
	if err != nil {
		return nil, err
	}
	if p.current.Type != lexer.TokenQuestion {
		return cond, nil
	}
	pos := p.current.Position
	p.advance()

	then, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenColon, "':'"); err != nil {
		return nil, err
	}
	els, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	return types.NewTernary(pos, cond, then, els), nil
}

// parseNullCoalesce handles left-associative `a ?? b ?? c`.
func (p *Parser) parseNullCoalesce() (*types.Expr, error) {
	lhs, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.current.Type == lexer.TokenQColon {
		pos := p.current.Position
		p.advance()
		rhs, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		lhs = types.NewBinary(pos, types.OpNullCoalesce, lhs, rhs)
	}
	return lhs, nil
}

func (p *Parser) parseEquality() (*types.Expr, error) {
	lhs, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for {
		var op types.Operator
		switch p.current.Type {
		case lexer.TokenEq:
			op = types.OpEq
		case lexer.TokenNeq:
			op = types.OpNeq
		default:
			return lhs, nil
		}
		pos := p.current.Position
		p.advance()
		rhs, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		lhs = types.NewBinary(pos, op, lhs, rhs)
	}
}

func (p *Parser) parseComparison() (*types.Expr, error) {
	lhs, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		var op types.Operator
		switch p.current.Type {
		case lexer.TokenLt:
			op = types.OpLt
		case lexer.TokenLte:
			op = types.OpLte
		case lexer.TokenGt:
			op = types.OpGt
		case lexer.TokenGte:
			op = types.OpGte
		default:
			return lhs, nil
		}
		pos := p.current.Position
		p.advance()
		rhs, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		lhs = types.NewBinary(pos, op, lhs, rhs)
	}
}

func (p *Parser) parseAdditive() (*types.Expr, error) {
	lhs, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op types.Operator
		switch p.current.Type {
		case lexer.TokenPlus:
			op = types.OpAdd
		case lexer.TokenMinus:
			op = types.OpSub
		default:
			return lhs, nil
		}
		pos := p.current.Position
		p.advance()
		rhs, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		lhs = types.NewBinary(pos, op, lhs, rhs)
	}
}

func (p *Parser) parseMultiplicative() (*types.Expr, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op types.Operator
		switch p.current.Type {
		case lexer.TokenStar:
			op = types.OpMul
		case lexer.TokenSlash:
			op = types.OpDiv
		default:
			return lhs, nil
		}
		pos := p.current.Position
		p.advance()
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		lhs = types.NewBinary(pos, op, lhs, rhs)
	}
}

// parseUnary handles the prefix negation `-x`, which may stack (`--x`).
func (p *Parser) parseUnary() (*types.Expr, error) {
	if p.current.Type == lexer.TokenMinus {
		pos := p.current.Position
		p.advance()
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return types.NewUnary(pos, types.OpNegate, rhs), nil
	}
	return p.parsePostfix()
}

// parsePostfix handles zero or more `.member` or `.member(args...)`
// suffixes applied to a primary expression.
func (p *Parser) parsePostfix() (*types.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for p.current.Type == lexer.TokenDot {
		pos := p.current.Position
		p.advance()
		member, err := p.expect(lexer.TokenIdent, "a member name")
		if err != nil {
			return nil, err
		}
		access := types.NewAccess(pos, expr, member.Value)

		if p.current.Type != lexer.TokenLParen {
			expr = access
			continue
		}
		callPos := p.current.Position
		p.advance()
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenRParen, "')'"); err != nil {
			return nil, err
		}
		expr = types.NewCall(callPos, access, args)
	}

	return expr, nil
}

// parseArgs parses a comma-separated, possibly-empty expression list up to
// (but not including) the closing ')'.
func (p *Parser) parseArgs() ([]*types.Expr, error) {
	if p.current.Type == lexer.TokenRParen {
		return nil, nil
	}
	var args []*types.Expr
	for {
		arg, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.current.Type != lexer.TokenComma {
			return args, nil
		}
		p.advance()
	}
}

func (p *Parser) parsePrimary() (*types.Expr, error) {
	switch p.current.Type {
	case lexer.TokenError:
		return nil, p.lex.Err()
	case lexer.TokenNumber:
		tok := p.current
		p.advance()
		value, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, types.NewParseError(tok.Position, "a number", tok.Value)
		}
		return types.NewNumber(tok.Position, value), nil
	case lexer.TokenIdent:
		tok := p.current
		p.advance()
		return types.NewIdent(tok.Position, tok.Value), nil
	case lexer.TokenLParen:
		p.advance()
		expr, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenRParen, "')'"); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, types.NewParseError(p.current.Position, "an expression", p.describeCurrent())
	}
}
