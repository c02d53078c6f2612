// Package token contains the tokens that the lexer will produce when
// scanning a Hexagn source file.
package token

// Kind is a string, following the teacher's convention of using a
// string-backed type for the token tag rather than an int enum - it
// keeps error messages and debug prints readable for free.
type Kind string

// Span records where a token came from in the source buffer.
//
// Columns are 1-indexed; Line is 1-indexed. EndCol is exclusive, so a
// single-character token has EndCol == StartCol+1.
type Span struct {
	Line     int
	StartCol int
	EndCol   int
}

// Token is a tagged record: a kind, its literal text, and its span.
type Token struct {
	Kind    Kind
	Literal string
	Span    Span
}

// pre-defined kinds
const (
	EOF     Kind = "EOF"
	ILLEGAL Kind = "ILLEGAL"

	// literals
	Num        Kind = "NUM"
	Flt        Kind = "FLT"
	Str        Kind = "STR"
	Char       Kind = "CHAR"
	Identifier Kind = "IDENT"

	// keywords - control flow and declarations
	If     Kind = "if"
	Else   Kind = "else"
	While  Kind = "while"
	Return Kind = "return"
	Import Kind = "import"
	Urcl   Kind = "urcl"
	Extern Kind = "extern"
	Pub    Kind = "pub"

	// keywords - named primitive types
	Void    Kind = "void"
	Int8    Kind = "int8"
	Int16   Kind = "int16"
	Int32   Kind = "int32"
	Int64   Kind = "int64"
	Uint8   Kind = "uint8"
	Uint16  Kind = "uint16"
	Uint32  Kind = "uint32"
	Uint64  Kind = "uint64"
	Float32 Kind = "float32"
	Float64 Kind = "float64"
	TString Kind = "string"
	TChar   Kind = "char"

	// punctuation
	LParen  Kind = "("
	RParen  Kind = ")"
	LBrace  Kind = "{"
	RBrace  Kind = "}"
	Comma   Kind = ","
	Semi    Kind = ";"
	Dot     Kind = "."
	Colon   Kind = ":"
	Star    Kind = "*"
	Slash   Kind = "/"
	Percent Kind = "%"
	Plus    Kind = "+"
	Minus   Kind = "-"
	Assign  Kind = "="
	EQ      Kind = "=="
	NEQ     Kind = "!="
	LT      Kind = "<"
	LTE     Kind = "<="
	GT      Kind = ">"
	GTE     Kind = ">="
)

// keywords maps every reserved word to its kind. Type keywords and
// control-flow keywords both live here; LookupIdentifier doesn't care
// which bucket a match falls into.
var keywords = map[string]Kind{
	"if":     If,
	"else":   Else,
	"while":  While,
	"return": Return,
	"import": Import,
	"urcl":   Urcl,
	"extern": Extern,
	"pub":    Pub,

	"void":    Void,
	"int8":    Int8,
	"int16":   Int16,
	"int32":   Int32,
	"int64":   Int64,
	"uint8":   Uint8,
	"uint16":  Uint16,
	"uint32":  Uint32,
	"uint64":  Uint64,
	"float32": Float32,
	"float64": Float64,
	"string":  TString,
	"char":    TChar,
}

// LookupIdentifier classifies a scanned identifier as a keyword, or
// returns Identifier if it isn't one.
func LookupIdentifier(ident string) Kind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return Identifier
}

// IsTypeKeyword reports whether kind begins a type name.
func IsTypeKeyword(kind Kind) bool {
	switch kind {
	case Void, Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64,
		Float32, Float64, TString, TChar:
		return true
	default:
		return false
	}
}
