// Package parser implements Hexagn's recursive-descent parser: a
// TokenBuffer offering lookahead and an assertion helper, and a grammar
// built directly on top of it (spec.md section 4.2).
package parser

import (
	"fmt"

	"github.com/GameBuilder202/Hexagn/diag"
	"github.com/GameBuilder202/Hexagn/token"
)

// Buffer exposes the current token, advancement, and a consume assertion
// over a fixed token slice produced by the lexer.
type Buffer struct {
	tokens []token.Token
	pos    int
	source string
}

// NewBuffer wraps tokens (which must end in an EOF token) for parsing.
func NewBuffer(tokens []token.Token, source string) *Buffer {
	return &Buffer{tokens: tokens, source: source}
}

// Current returns the token the buffer is positioned at, without
// consuming it.
func (b *Buffer) Current() token.Token {
	if b.pos >= len(b.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return b.tokens[b.pos]
}

// Peek looks ahead offset tokens without consuming anything.
func (b *Buffer) Peek(offset int) token.Token {
	idx := b.pos + offset
	if idx >= len(b.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return b.tokens[idx]
}

// Advance consumes and returns the current token.
func (b *Buffer) Advance() token.Token {
	tok := b.Current()
	if b.pos < len(b.tokens) {
		b.pos++
	}
	return tok
}

// Consume asserts that the current token's kind is one of expected, and
// advances past it; otherwise it returns a syntax diagnostic built from
// msg.
func (b *Buffer) Consume(msg string, expected ...token.Kind) (token.Token, error) {
	cur := b.Current()
	for _, k := range expected {
		if cur.Kind == k {
			return b.Advance(), nil
		}
	}
	return token.Token{}, b.errorf(cur, msg)
}

func (b *Buffer) errorf(tok token.Token, msg string) error {
	return diag.NewSpan(diag.Syntax, msg, b.source, tok.Span.Line, tok.Span.StartCol-1, tok.Span.EndCol-1)
}

// Errorf builds a syntax diagnostic keyed to the buffer's current token.
func (b *Buffer) Errorf(format string, args ...any) error {
	return b.errorf(b.Current(), fmt.Sprintf(format, args...))
}

// SemanticErrorf builds a semantic diagnostic (exit 1) keyed to the
// buffer's current token, for name-resolution-ish errors the grammar
// itself can detect (e.g. void used as a variable type).
func (b *Buffer) SemanticErrorf(format string, args ...any) error {
	cur := b.Current()
	return diag.NewSpan(diag.Semantic, fmt.Sprintf(format, args...), b.source, cur.Span.Line, cur.Span.StartCol-1, cur.Span.EndCol-1)
}

// ExtractBraced expects the buffer to be positioned at a '{' and returns
// the tokens strictly between it and its matching '}' (terminated by a
// synthetic EOF), having advanced the buffer past the closing brace.
//
// This mirrors spec.md 4.2's "sub-program extraction": counting nested
// braces to carve out a function or control-flow body as a token slice,
// which is then parsed recursively as its own Program.
func (b *Buffer) ExtractBraced() ([]token.Token, error) {
	open, err := b.Consume("expected '{'", token.LBrace)
	if err != nil {
		return nil, err
	}

	depth := 1
	start := b.pos
	for depth > 0 {
		cur := b.Current()
		switch cur.Kind {
		case token.EOF:
			return nil, b.errorf(open, "unterminated block, missing '}'")
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
		}
		if depth == 0 {
			break
		}
		b.Advance()
	}

	inner := append([]token.Token{}, b.tokens[start:b.pos]...)
	inner = append(inner, token.Token{Kind: token.EOF})
	b.Advance() // consume the matching '}'
	return inner, nil
}

// Slice returns the raw tokens consumed between [from, b.pos), used to
// reconstruct a statement's DebugSym text.
func (b *Buffer) Slice(from int) []token.Token {
	return b.tokens[from:b.pos]
}

// Pos returns the buffer's current index, for capturing a DebugSym
// reconstruction range.
func (b *Buffer) Pos() int { return b.pos }
