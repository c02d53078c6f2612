package lexer

import (
	"testing"

	"github.com/GameBuilder202/Hexagn/token"
)

func tokenize(t *testing.T, input string) []token.Token {
	t.Helper()
	toks, err := New(input).Tokenize()
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	return toks
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	toks := tokenize(t, "int32 x pub myFunc extern while")

	want := []token.Kind{token.Int32, token.Identifier, token.Pub, token.Identifier, token.Extern, token.While, token.EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
}

func TestMaximalMunchOperators(t *testing.T) {
	toks := tokenize(t, "= == != < <= > >=")
	want := []token.Kind{token.Assign, token.EQ, token.NEQ, token.LT, token.LTE, token.GT, token.GTE, token.EOF}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
}

func TestNumberLiteral(t *testing.T) {
	toks := tokenize(t, "12345")
	if toks[0].Kind != token.Num || toks[0].Literal != "12345" {
		t.Errorf("got %+v", toks[0])
	}
}

func TestStringEscapes(t *testing.T) {
	toks := tokenize(t, `"hi\n\t\"\\"`)
	if toks[0].Kind != token.Str {
		t.Fatalf("got kind %s", toks[0].Kind)
	}
	want := "hi\n\t\"\\"
	if toks[0].Literal != want {
		t.Errorf("got %q, want %q", toks[0].Literal, want)
	}
}

func TestCharLiteralIsNumeric(t *testing.T) {
	toks := tokenize(t, `'A'`)
	if toks[0].Kind != token.Num {
		t.Fatalf("got kind %s, want Num", toks[0].Kind)
	}
	if toks[0].Literal != "65" {
		t.Errorf("got %q, want %q", toks[0].Literal, "65")
	}
}

func TestUnterminatedStringIsLexError(t *testing.T) {
	_, err := New("\"abc\ndef\"").Tokenize()
	if err == nil {
		t.Fatal("expected an error for a newline inside a string literal")
	}
}

func TestSpansAreMonotoneAndNonOverlapping(t *testing.T) {
	toks := tokenize(t, "int32 add ( int32 a , int32 b ) { return a + b ; }")
	prevEnd := 0
	for i, tok := range toks {
		if tok.Kind == token.EOF {
			continue
		}
		if tok.Span.StartCol < prevEnd {
			t.Errorf("token %d (%s) overlaps previous token: start=%d prevEnd=%d", i, tok.Kind, tok.Span.StartCol, prevEnd)
		}
		prevEnd = tok.Span.EndCol
	}
}

func TestLineTracking(t *testing.T) {
	toks := tokenize(t, "int32 x;\nint32 y;\n")
	var lines []int
	for _, tok := range toks {
		if tok.Kind == token.EOF {
			continue
		}
		lines = append(lines, tok.Span.Line)
	}
	want := []int{1, 1, 1, 2, 2, 2}
	if len(lines) != len(want) {
		t.Fatalf("got %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("token %d: line %d, want %d", i, lines[i], want[i])
		}
	}
}
