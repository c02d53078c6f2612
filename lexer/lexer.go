// Package lexer turns Hexagn source text into a stream of tokens.
//
// The rune-buffer scanning technique (position/readPosition/ch) is
// inherited from the teacher compiler's lexer; this version generalises
// it from a single arithmetic expression to the full multi-line Hexagn
// grammar: keywords, punctuation, and quoted string/char literals, each
// carrying a line/column span.
package lexer

import (
	"fmt"

	"github.com/GameBuilder202/Hexagn/diag"
	"github.com/GameBuilder202/Hexagn/token"
)

// Lexer holds our object-state.
type Lexer struct {
	source       string
	characters   []rune
	position     int // current character position
	readPosition int // next character position
	ch           rune
	line         int
	lineStart    int // index (into characters) of the current line's first rune
}

// New creates a Lexer instance from string input.
func New(source string) *Lexer {
	l := &Lexer{source: source, characters: []rune(source), line: 1}
	l.readChar()
	return l
}

// read one character forward
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.characters) {
		l.ch = rune(0)
	} else {
		l.ch = l.characters[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.characters) {
		return rune(0)
	}
	return l.characters[l.readPosition]
}

// column computes the 1-indexed column of position p on the current line,
// per spec.md 4.1: "absolute_position minus position_of_(line-1)th_newline".
func (l *Lexer) column(p int) int {
	return p - l.lineStart + 1
}

func (l *Lexer) span(startPos int) token.Span {
	return token.Span{Line: l.line, StartCol: l.column(startPos), EndCol: l.column(l.position)}
}

// Tokenize scans the entire source buffer and returns every token,
// including a trailing EOF. It stops and returns a diagnostic at the
// first lexical error, per spec.md section 7's fatal-on-first policy.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var tokens []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return tokens, nil
}

// NextToken scans and returns the next token, skipping leading whitespace.
func (l *Lexer) NextToken() (token.Token, error) {
	l.skipWhitespace()

	start := l.position
	var tok token.Token

	switch l.ch {
	case rune(0):
		return token.Token{Kind: token.EOF, Literal: "", Span: l.span(start)}, nil

	case '(':
		tok = l.simple(token.LParen, start)
	case ')':
		tok = l.simple(token.RParen, start)
	case '{':
		tok = l.simple(token.LBrace, start)
	case '}':
		tok = l.simple(token.RBrace, start)
	case ',':
		tok = l.simple(token.Comma, start)
	case ';':
		tok = l.simple(token.Semi, start)
	case '.':
		tok = l.simple(token.Dot, start)
	case ':':
		tok = l.simple(token.Colon, start)
	case '+':
		tok = l.simple(token.Plus, start)
	case '-':
		tok = l.simple(token.Minus, start)
	case '*':
		tok = l.simple(token.Star, start)
	case '/':
		tok = l.simple(token.Slash, start)
	case '%':
		tok = l.simple(token.Percent, start)

	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Kind: token.EQ, Literal: "==", Span: l.span(start)}
		} else {
			tok = token.Token{Kind: token.Assign, Literal: "=", Span: l.span(start)}
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Kind: token.NEQ, Literal: "!=", Span: l.span(start)}
		} else {
			return token.Token{}, l.errorf(start, "unexpected character '!'")
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Kind: token.LTE, Literal: "<=", Span: l.span(start)}
		} else {
			tok = token.Token{Kind: token.LT, Literal: "<", Span: l.span(start)}
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Kind: token.GTE, Literal: ">=", Span: l.span(start)}
		} else {
			tok = token.Token{Kind: token.GT, Literal: ">", Span: l.span(start)}
		}

	case '"':
		return l.readString(start)
	case '\'':
		return l.readCharLiteral(start)

	default:
		if isDigit(l.ch) {
			return l.readNumber(start), nil
		}
		if isIdentStart(l.ch) {
			return l.readIdentifier(start), nil
		}
		return token.Token{}, l.errorf(start, fmt.Sprintf("unexpected character '%c'", l.ch))
	}

	l.readChar()
	tok.Span.EndCol = l.column(l.position)
	return tok, nil
}

func (l *Lexer) simple(kind token.Kind, start int) token.Token {
	return token.Token{Kind: kind, Literal: string(l.ch), Span: l.span(start)}
}

func (l *Lexer) skipWhitespace() {
	for {
		switch l.ch {
		case ' ', '\t', '\r':
			l.readChar()
		case '\n':
			l.readChar()
			l.line++
			l.lineStart = l.position
		default:
			return
		}
	}
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch)
}

// readNumber scans a decimal integer literal: a bare sequence of digits,
// with no prefixes and no underscores, per spec.md 4.1.
func (l *Lexer) readNumber(start int) token.Token {
	for isDigit(l.ch) {
		l.readChar()
	}
	return token.Token{
		Kind:    token.Num,
		Literal: string(l.characters[start:l.position]),
		Span:    l.span(start),
	}
}

func (l *Lexer) readIdentifier(start int) token.Token {
	for isIdentPart(l.ch) {
		l.readChar()
	}
	lit := string(l.characters[start:l.position])
	return token.Token{
		Kind:    token.LookupIdentifier(lit),
		Literal: lit,
		Span:    l.span(start),
	}
}

// readEscape consumes a backslash escape sequence, assuming l.ch == '\\'.
// Supported escapes: \n \t \' \" \\.
func (l *Lexer) readEscape(start int) (rune, error) {
	l.readChar() // consume the backslash
	switch l.ch {
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case '\'':
		return '\'', nil
	case '"':
		return '"', nil
	case '\\':
		return '\\', nil
	default:
		return 0, l.errorf(start, fmt.Sprintf("invalid escape sequence '\\%c'", l.ch))
	}
}

// readString scans a double-quoted string literal. A raw newline inside a
// string is a lex error, per spec.md 4.1.
func (l *Lexer) readString(start int) (token.Token, error) {
	l.readChar() // consume opening quote
	var sb []rune
	for {
		switch l.ch {
		case '"':
			l.readChar()
			return token.Token{Kind: token.Str, Literal: string(sb), Span: l.span(start)}, nil
		case '\n', rune(0):
			return token.Token{}, l.errorf(start, "unterminated string literal")
		case '\\':
			r, err := l.readEscape(start)
			if err != nil {
				return token.Token{}, err
			}
			sb = append(sb, r)
			l.readChar()
		default:
			sb = append(sb, l.ch)
			l.readChar()
		}
	}
}

// readCharLiteral scans a single-quoted character literal and produces a
// Num token whose value is the byte code of the character, per spec.md
// 4.1.
func (l *Lexer) readCharLiteral(start int) (token.Token, error) {
	l.readChar() // consume opening quote

	var value rune
	switch l.ch {
	case '\'', rune(0), '\n':
		return token.Token{}, l.errorf(start, "empty or unterminated character literal")
	case '\\':
		r, err := l.readEscape(start)
		if err != nil {
			return token.Token{}, err
		}
		value = r
		l.readChar()
	default:
		value = l.ch
		l.readChar()
	}

	if l.ch != '\'' {
		return token.Token{}, l.errorf(start, "character literal must contain exactly one character")
	}
	l.readChar()
	return token.Token{Kind: token.Num, Literal: fmt.Sprintf("%d", value), Span: l.span(start)}, nil
}

// errorf builds a lex diagnostic. Lex errors are syntactic in nature but
// spec.md section 7 special-cases them to exit code 1 rather than 2, so
// they use diag.Semantic (value 1) rather than diag.Syntax here.
func (l *Lexer) errorf(startPos int, msg string) error {
	return diag.NewSpan(diag.Semantic, msg, l.source, l.line, l.column(startPos)-1, l.column(l.position))
}
