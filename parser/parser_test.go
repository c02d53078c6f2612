package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GameBuilder202/Hexagn/ast"
	"github.com/GameBuilder202/Hexagn/lexer"
)

func TestParseVarDefine(t *testing.T) {
	prog, err := Parse("int32 x = 1 + 2;")
	require.NoError(t, err)
	require.Len(t, prog, 1)

	def, ok := prog[0].(ast.VarDefine)
	require.True(t, ok, "expected VarDefine, got %T", prog[0])
	assert.Equal(t, "x", def.Ident)
	assert.Equal(t, ast.NamedType{Name: "int32"}, def.Type)
	assert.Equal(t, ast.BiOp{Lhs: ast.Number{Value: 1}, Op: ast.Add, Rhs: ast.Number{Value: 2}}, def.Init)
}

func TestVoidVariableRejected(t *testing.T) {
	_, err := Parse("void x;")
	require.Error(t, err)
}

func TestParsePubFunction(t *testing.T) {
	prog, err := Parse("pub int32 add(int32 a, int32 b) { return a + b; }")
	require.NoError(t, err)
	require.Len(t, prog, 1)

	fn, ok := prog[0].(ast.Function)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	assert.Equal(t, ast.Public, fn.Linkage)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name)
	require.Len(t, fn.Body, 1)
	_, ok = fn.Body[0].(ast.Return)
	assert.True(t, ok)
}

func TestPrivateIsDefaultLinkage(t *testing.T) {
	prog, err := Parse("int8 main() { return 1; }")
	require.NoError(t, err)
	fn := prog[0].(ast.Function)
	assert.Equal(t, ast.Private, fn.Linkage)
}

func TestExternDeclarationHasNoBody(t *testing.T) {
	prog, err := Parse("extern int32 puts(string s);")
	require.NoError(t, err)
	require.Len(t, prog, 1)
	ext, ok := prog[0].(ast.Extern)
	require.True(t, ok)
	assert.Equal(t, "puts", ext.Name)
	assert.Len(t, ext.Params, 1)
}

func TestIfRequiresParens(t *testing.T) {
	_, err := Parse("int8 main() { if x < 1 { return 1; } }")
	assert.Error(t, err, "if without parentheses must be a syntax error")
}

func TestComparisonSharesArithmeticPrecedence(t *testing.T) {
	// spec.md 4.2's documented simplification: comparisons live in the
	// very same left-to-right loop as + and -, so this parses as
	// ((a + b) < c) + d, not (a + b) < (c + d).
	prog, err := Parse("int8 main() { return a + b < c + d; }")
	require.NoError(t, err)
	ret := prog[0].(ast.Function).Body[0].(ast.Return)

	outer, ok := ret.Expr.(ast.BiOp)
	require.True(t, ok, "expected the outermost node to be a BiOp, got %T", ret.Expr)
	assert.Equal(t, ast.Add, outer.Op)

	inner, ok := outer.Lhs.(ast.Comp)
	require.True(t, ok, "expected the left operand to be a Comp, got %T", outer.Lhs)
	assert.Equal(t, ast.CLT, inner.Op)
}

func TestImportPath(t *testing.T) {
	prog, err := Parse("import std.io.file;")
	require.NoError(t, err)
	imp := prog[0].(ast.Import)
	assert.Equal(t, []string{"std", "io", "file"}, imp.Path)
}

func TestInlineURCLVerbatim(t *testing.T) {
	prog, err := Parse(`urcl "HLT";`)
	require.NoError(t, err)
	u := prog[0].(ast.InlineURCL)
	assert.Equal(t, "HLT", u.Text)
}

func TestWhileLoopBody(t *testing.T) {
	prog, err := Parse("int8 main() { while (1) { return 1; } }")
	require.NoError(t, err)
	fn := prog[0].(ast.Function)
	wl, ok := fn.Body[0].(ast.While)
	require.True(t, ok)
	require.Len(t, wl.Body, 1)
}

func TestFunctionCallStatementAndExpression(t *testing.T) {
	prog, err := Parse("int8 main() { foo(1, 2); return bar(3); }")
	require.NoError(t, err)
	fn := prog[0].(ast.Function)

	call, ok := fn.Body[0].(ast.FuncCall)
	require.True(t, ok)
	assert.Equal(t, "foo", call.Name)
	assert.Len(t, call.Args, 2)

	ret := fn.Body[1].(ast.Return)
	innerCall, ok := ret.Expr.(ast.Call)
	require.True(t, ok)
	assert.Equal(t, "bar", innerCall.Name)
}

func TestPointerType(t *testing.T) {
	prog, err := Parse("int32* p;")
	require.NoError(t, err)
	def := prog[0].(ast.VarDefine)
	assert.Equal(t, ast.PtrType{Inner: ast.NamedType{Name: "int32"}}, def.Type)
}

// DebugSym.Text should re-lex to an equivalent token stream, per
// spec.md 8's round-trip property.
func TestDebugSymRoundTrips(t *testing.T) {
	prog, err := Parse(`int32 x = "hi" + 1;`)
	require.NoError(t, err)
	def := prog[0].(ast.VarDefine)

	retoks, err := lexer.New(def.Sym.Text).Tokenize()
	require.NoError(t, err)

	original, err := lexer.New(`int32 x = "hi" + 1 ;`).Tokenize()
	require.NoError(t, err)

	require.Len(t, retoks, len(original))
	for i := range original {
		assert.Equal(t, original[i].Kind, retoks[i].Kind, "token %d kind", i)
		assert.Equal(t, original[i].Literal, retoks[i].Literal, "token %d literal", i)
	}
}
