package parser

import (
	"strconv"
	"strings"

	"github.com/GameBuilder202/Hexagn/ast"
	"github.com/GameBuilder202/Hexagn/lexer"
	"github.com/GameBuilder202/Hexagn/token"
)

// Parse lexes and parses a complete Hexagn source file into a Program.
func Parse(source string) (ast.Program, error) {
	toks, err := lexer.New(source).Tokenize()
	if err != nil {
		return nil, err
	}
	return parseTokens(toks, source)
}

func parseTokens(toks []token.Token, source string) (ast.Program, error) {
	b := NewBuffer(toks, source)
	return parseProgram(b, source)
}

func parseProgram(b *Buffer, source string) (ast.Program, error) {
	var prog ast.Program
	for b.Current().Kind != token.EOF {
		stmt, err := parseStatement(b, source)
		if err != nil {
			return nil, err
		}
		prog = append(prog, stmt)
	}
	return prog, nil
}

func parseStatement(b *Buffer, source string) (ast.Node, error) {
	cur := b.Current()

	switch {
	case cur.Kind == token.Pub:
		b.Advance()
		return parseTypeLeading(b, source, ast.Public)
	case token.IsTypeKeyword(cur.Kind):
		return parseTypeLeading(b, source, ast.Private)
	case cur.Kind == token.Extern:
		return parseExtern(b, source)
	case cur.Kind == token.If:
		return parseIf(b, source)
	case cur.Kind == token.While:
		return parseWhile(b, source)
	case cur.Kind == token.Return:
		return parseReturn(b, source)
	case cur.Kind == token.Import:
		return parseImport(b, source)
	case cur.Kind == token.Urcl:
		return parseInlineURCL(b, source)
	case cur.Kind == token.Identifier:
		return parseIdentStatement(b, source)
	default:
		return nil, b.Errorf("unexpected token '%s'", cur.Literal)
	}
}

// headerSym builds a DebugSym from the tokens consumed since from, using
// the line of the first such token.
func headerSym(b *Buffer, from int) ast.DebugSym {
	toks := b.Slice(from)
	line := 0
	if len(toks) > 0 {
		line = toks[0].Span.Line
	}
	return ast.DebugSym{Line: line, Text: reconstruct(toks)}
}

// reconstruct rejoins a token slice into source-like text. It is not
// byte-identical to the original source, but re-lexing it recovers an
// equivalent token stream, which is all spec.md 8's round-trip property
// requires.
func reconstruct(toks []token.Token) string {
	parts := make([]string, 0, len(toks))
	for _, t := range toks {
		if t.Kind == token.EOF {
			continue
		}
		if t.Kind == token.Str {
			parts = append(parts, strconv.Quote(t.Literal))
			continue
		}
		parts = append(parts, t.Literal)
	}
	return strings.Join(parts, " ")
}

func parseType(b *Buffer) (ast.Type, error) {
	cur := b.Current()
	if !token.IsTypeKeyword(cur.Kind) {
		return nil, b.errorf(cur, "expected a type")
	}
	b.Advance()

	var t ast.Type = ast.NamedType{Name: cur.Literal}
	for b.Current().Kind == token.Star {
		b.Advance()
		t = ast.PtrType{Inner: t}
	}
	return t, nil
}

func isVoid(t ast.Type) bool {
	named, ok := t.(ast.NamedType)
	return ok && named.Name == "void"
}

func parseParams(b *Buffer) ([]ast.Param, error) {
	var params []ast.Param
	if b.Current().Kind == token.RParen {
		return params, nil
	}
	for {
		ty, err := parseType(b)
		if err != nil {
			return nil, err
		}
		nameTok, err := b.Consume("expected a parameter name", token.Identifier)
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Type: ty, Name: nameTok.Literal})

		if b.Current().Kind == token.Comma {
			b.Advance()
			continue
		}
		break
	}
	return params, nil
}

// parseTypeLeading handles the "type ident ( '=' | ';' | '(' )" dispatch
// of spec.md 4.2: a variable definition with an initialiser, a bare
// variable declaration, or a function definition.
func parseTypeLeading(b *Buffer, source string, linkage ast.Linkage) (ast.Node, error) {
	from := b.Pos()

	ty, err := parseType(b)
	if err != nil {
		return nil, err
	}
	nameTok, err := b.Consume("expected an identifier after type", token.Identifier)
	if err != nil {
		return nil, err
	}

	switch b.Current().Kind {
	case token.Assign:
		if isVoid(ty) {
			return nil, b.SemanticErrorf("cannot declare a variable of type void")
		}
		b.Advance()
		init, err := parseExpr(b)
		if err != nil {
			return nil, err
		}
		if _, err := b.Consume("expected ';' after variable initialiser", token.Semi); err != nil {
			return nil, err
		}
		return ast.VarDefine{Type: ty, Ident: nameTok.Literal, Init: init, Sym: headerSym(b, from)}, nil

	case token.Semi:
		if isVoid(ty) {
			return nil, b.SemanticErrorf("cannot declare a variable of type void")
		}
		b.Advance()
		return ast.VarDefine{Type: ty, Ident: nameTok.Literal, Init: nil, Sym: headerSym(b, from)}, nil

	case token.LParen:
		b.Advance()
		params, err := parseParams(b)
		if err != nil {
			return nil, err
		}
		if _, err := b.Consume("expected ')' after parameter list", token.RParen); err != nil {
			return nil, err
		}
		sym := headerSym(b, from)
		body, err := b.ExtractBraced()
		if err != nil {
			return nil, err
		}
		bodyProg, err := parseTokens(body, source)
		if err != nil {
			return nil, err
		}
		return ast.Function{Ret: ty, Name: nameTok.Literal, Params: params, Body: bodyProg, Linkage: linkage, Sym: sym}, nil

	default:
		return nil, b.Errorf("expected '=', ';', or '(' after '%s %s'", ty, nameTok.Literal)
	}
}

func parseExtern(b *Buffer, source string) (ast.Node, error) {
	from := b.Pos()
	if _, err := b.Consume("expected 'extern'", token.Extern); err != nil {
		return nil, err
	}
	ty, err := parseType(b)
	if err != nil {
		return nil, err
	}
	nameTok, err := b.Consume("expected an identifier after type", token.Identifier)
	if err != nil {
		return nil, err
	}
	if _, err := b.Consume("expected '(' after function name", token.LParen); err != nil {
		return nil, err
	}
	params, err := parseParams(b)
	if err != nil {
		return nil, err
	}
	if _, err := b.Consume("expected ')' after parameter list", token.RParen); err != nil {
		return nil, err
	}
	if _, err := b.Consume("expected ';' after extern declaration", token.Semi); err != nil {
		return nil, err
	}
	return ast.Extern{Name: nameTok.Literal, Params: params, Ret: ty, Sym: headerSym(b, from)}, nil
}

func parseIf(b *Buffer, source string) (ast.Node, error) {
	from := b.Pos()
	if _, err := b.Consume("expected 'if'", token.If); err != nil {
		return nil, err
	}
	if _, err := b.Consume("expected '(' after 'if'", token.LParen); err != nil {
		return nil, err
	}
	cond, err := parseExpr(b)
	if err != nil {
		return nil, err
	}
	if _, err := b.Consume("expected ')' after if-condition", token.RParen); err != nil {
		return nil, err
	}
	sym := headerSym(b, from)
	body, err := b.ExtractBraced()
	if err != nil {
		return nil, err
	}
	bodyProg, err := parseTokens(body, source)
	if err != nil {
		return nil, err
	}
	return ast.If{Cond: cond, Body: bodyProg, Sym: sym}, nil
}

func parseWhile(b *Buffer, source string) (ast.Node, error) {
	from := b.Pos()
	if _, err := b.Consume("expected 'while'", token.While); err != nil {
		return nil, err
	}
	if _, err := b.Consume("expected '(' after 'while'", token.LParen); err != nil {
		return nil, err
	}
	cond, err := parseExpr(b)
	if err != nil {
		return nil, err
	}
	if _, err := b.Consume("expected ')' after while-condition", token.RParen); err != nil {
		return nil, err
	}
	sym := headerSym(b, from)
	body, err := b.ExtractBraced()
	if err != nil {
		return nil, err
	}
	bodyProg, err := parseTokens(body, source)
	if err != nil {
		return nil, err
	}
	return ast.While{Cond: cond, Body: bodyProg, Sym: sym}, nil
}

func parseReturn(b *Buffer, source string) (ast.Node, error) {
	from := b.Pos()
	if _, err := b.Consume("expected 'return'", token.Return); err != nil {
		return nil, err
	}

	var expr ast.Expr
	if b.Current().Kind != token.Semi {
		var err error
		expr, err = parseExpr(b)
		if err != nil {
			return nil, err
		}
	}
	if _, err := b.Consume("expected ';' after return statement", token.Semi); err != nil {
		return nil, err
	}
	return ast.Return{Expr: expr, Sym: headerSym(b, from)}, nil
}

func parseImport(b *Buffer, source string) (ast.Node, error) {
	from := b.Pos()
	if _, err := b.Consume("expected 'import'", token.Import); err != nil {
		return nil, err
	}

	var path []string
	for {
		tok, err := b.Consume("expected an identifier in import path", token.Identifier)
		if err != nil {
			return nil, err
		}
		path = append(path, tok.Literal)

		if b.Current().Kind == token.Dot || b.Current().Kind == token.Colon {
			b.Advance()
			continue
		}
		break
	}
	if _, err := b.Consume("expected ';' after import path", token.Semi); err != nil {
		return nil, err
	}
	return ast.Import{Path: path, Sym: headerSym(b, from)}, nil
}

func parseInlineURCL(b *Buffer, source string) (ast.Node, error) {
	from := b.Pos()
	if _, err := b.Consume("expected 'urcl'", token.Urcl); err != nil {
		return nil, err
	}
	strTok, err := b.Consume("expected a string literal after 'urcl'", token.Str)
	if err != nil {
		return nil, err
	}
	if _, err := b.Consume("expected ';' after inline urcl block", token.Semi); err != nil {
		return nil, err
	}
	return ast.InlineURCL{Text: strTok.Literal, Sym: headerSym(b, from)}, nil
}

func parseIdentStatement(b *Buffer, source string) (ast.Node, error) {
	from := b.Pos()
	nameTok, err := b.Consume("expected an identifier", token.Identifier)
	if err != nil {
		return nil, err
	}

	switch b.Current().Kind {
	case token.Assign:
		b.Advance()
		expr, err := parseExpr(b)
		if err != nil {
			return nil, err
		}
		if _, err := b.Consume("expected ';' after assignment", token.Semi); err != nil {
			return nil, err
		}
		return ast.VarAssign{Ident: nameTok.Literal, Expr: expr, Sym: headerSym(b, from)}, nil

	case token.LParen:
		b.Advance()
		args, err := parseArgs(b)
		if err != nil {
			return nil, err
		}
		if _, err := b.Consume("expected ')' after call arguments", token.RParen); err != nil {
			return nil, err
		}
		if _, err := b.Consume("expected ';' after function call", token.Semi); err != nil {
			return nil, err
		}
		return ast.FuncCall{Name: nameTok.Literal, Args: args, Sym: headerSym(b, from)}, nil

	default:
		return nil, b.Errorf("expected '=' or '(' after identifier '%s'", nameTok.Literal)
	}
}
