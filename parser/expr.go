package parser

import (
	"strconv"

	"github.com/GameBuilder202/Hexagn/ast"
	"github.com/GameBuilder202/Hexagn/token"
)

// parseExpr implements the top precedence tier. Per spec.md 4.2 this is a
// deliberate simplification: comparison operators share the very same
// loop as '+'/'-' rather than sitting at a lower precedence tier of their
// own, so "a + b < c + d" does not parse the way a C programmer would
// expect. See SPEC_FULL.md section 9 for why this is kept rather than
// fixed.
func parseExpr(b *Buffer) (ast.Expr, error) {
	lhs, err := parseTerm(b)
	if err != nil {
		return nil, err
	}

	for {
		switch b.Current().Kind {
		case token.Plus:
			b.Advance()
			rhs, err := parseTerm(b)
			if err != nil {
				return nil, err
			}
			lhs = ast.BiOp{Lhs: lhs, Op: ast.Add, Rhs: rhs}
		case token.Minus:
			b.Advance()
			rhs, err := parseTerm(b)
			if err != nil {
				return nil, err
			}
			lhs = ast.BiOp{Lhs: lhs, Op: ast.Sub, Rhs: rhs}
		case token.EQ:
			b.Advance()
			rhs, err := parseTerm(b)
			if err != nil {
				return nil, err
			}
			lhs = ast.Comp{Lhs: lhs, Op: ast.CEQ, Rhs: rhs}
		case token.NEQ:
			b.Advance()
			rhs, err := parseTerm(b)
			if err != nil {
				return nil, err
			}
			lhs = ast.Comp{Lhs: lhs, Op: ast.CNEQ, Rhs: rhs}
		case token.LT:
			b.Advance()
			rhs, err := parseTerm(b)
			if err != nil {
				return nil, err
			}
			lhs = ast.Comp{Lhs: lhs, Op: ast.CLT, Rhs: rhs}
		case token.LTE:
			b.Advance()
			rhs, err := parseTerm(b)
			if err != nil {
				return nil, err
			}
			lhs = ast.Comp{Lhs: lhs, Op: ast.CLTE, Rhs: rhs}
		case token.GT:
			b.Advance()
			rhs, err := parseTerm(b)
			if err != nil {
				return nil, err
			}
			lhs = ast.Comp{Lhs: lhs, Op: ast.CGT, Rhs: rhs}
		case token.GTE:
			b.Advance()
			rhs, err := parseTerm(b)
			if err != nil {
				return nil, err
			}
			lhs = ast.Comp{Lhs: lhs, Op: ast.CGTE, Rhs: rhs}
		default:
			return lhs, nil
		}
	}
}

func parseTerm(b *Buffer) (ast.Expr, error) {
	lhs, err := parseFactor(b)
	if err != nil {
		return nil, err
	}

	for {
		switch b.Current().Kind {
		case token.Star:
			b.Advance()
			rhs, err := parseFactor(b)
			if err != nil {
				return nil, err
			}
			lhs = ast.BiOp{Lhs: lhs, Op: ast.Mul, Rhs: rhs}
		case token.Slash:
			b.Advance()
			rhs, err := parseFactor(b)
			if err != nil {
				return nil, err
			}
			lhs = ast.BiOp{Lhs: lhs, Op: ast.Div, Rhs: rhs}
		case token.Percent:
			b.Advance()
			rhs, err := parseFactor(b)
			if err != nil {
				return nil, err
			}
			lhs = ast.BiOp{Lhs: lhs, Op: ast.Mod, Rhs: rhs}
		default:
			return lhs, nil
		}
	}
}

func parseFactor(b *Buffer) (ast.Expr, error) {
	cur := b.Current()

	switch cur.Kind {
	case token.Num:
		b.Advance()
		n, err := strconv.ParseInt(cur.Literal, 10, 64)
		if err != nil {
			return nil, b.errorf(cur, "invalid numeric literal '"+cur.Literal+"'")
		}
		return ast.Number{Value: n}, nil

	case token.Str:
		b.Advance()
		return ast.Str{Value: cur.Literal}, nil

	case token.LParen:
		b.Advance()
		inner, err := parseExpr(b)
		if err != nil {
			return nil, err
		}
		if _, err := b.Consume("expected ')' to close parenthesised expression", token.RParen); err != nil {
			return nil, err
		}
		return inner, nil

	case token.Identifier:
		b.Advance()
		if b.Current().Kind == token.LParen {
			b.Advance()
			args, err := parseArgs(b)
			if err != nil {
				return nil, err
			}
			if _, err := b.Consume("expected ')' to close call arguments", token.RParen); err != nil {
				return nil, err
			}
			return ast.Call{Name: cur.Literal, Args: args}, nil
		}
		return ast.Ident{Name: cur.Literal}, nil

	default:
		return nil, b.errorf(cur, "expected an expression")
	}
}

func parseArgs(b *Buffer) ([]ast.Expr, error) {
	if b.Current().Kind == token.RParen {
		return nil, nil
	}

	var args []ast.Expr
	for {
		arg, err := parseExpr(b)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		if b.Current().Kind == token.Comma {
			b.Advance()
			continue
		}
		break
	}
	return args, nil
}
