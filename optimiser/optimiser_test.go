package optimiser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GameBuilder202/Hexagn/ast"
	"github.com/GameBuilder202/Hexagn/parser"
)

func TestFoldsArithmeticConstant(t *testing.T) {
	prog, err := parser.Parse("int8 main() { return 1 + 2 * 3; }")
	require.NoError(t, err)

	folded, err := Optimise(prog, "int8 main() { return 1 + 2 * 3; }", 1)
	require.NoError(t, err)

	ret := folded[0].(ast.Function).Body[0].(ast.Return)
	assert.Equal(t, ast.Number{Value: 7}, ret.Expr)
}

func TestFoldsStringConcatenation(t *testing.T) {
	src := `string s = "hi" + 5;`
	prog, err := parser.Parse(src)
	require.NoError(t, err)

	folded, err := Optimise(prog, src, 1)
	require.NoError(t, err)

	def := folded[0].(ast.VarDefine)
	assert.Equal(t, ast.Str{Value: "hi5"}, def.Init)
}

func TestStringMinusIsFatal(t *testing.T) {
	src := `string s = "hi" - 5;`
	prog, err := parser.Parse(src)
	require.NoError(t, err)

	_, err = Optimise(prog, src, 1)
	require.Error(t, err)
}

func TestDivisionByFoldedZeroIsFatal(t *testing.T) {
	src := `int32 x = 10 / 0;`
	prog, err := parser.Parse(src)
	require.NoError(t, err)

	_, err = Optimise(prog, src, 1)
	require.Error(t, err)
}

func TestModuloByFoldedZeroIsFatal(t *testing.T) {
	src := `int32 x = 10 % 0;`
	prog, err := parser.Parse(src)
	require.NoError(t, err)

	_, err = Optimise(prog, src, 1)
	require.Error(t, err)
}

func TestOptLevelZeroDisablesFolding(t *testing.T) {
	src := `int32 x = 1 + 2;`
	prog, err := parser.Parse(src)
	require.NoError(t, err)

	unfolded, err := Optimise(prog, src, 0)
	require.NoError(t, err)
	assert.Equal(t, prog, unfolded)
}

func TestFoldingIsIdempotent(t *testing.T) {
	src := `int8 main() { return ((1 + 2) * 3 - 4) / 2; }`
	prog, err := parser.Parse(src)
	require.NoError(t, err)

	once, err := Optimise(prog, src, 1)
	require.NoError(t, err)
	twice, err := Optimise(once, src, 1)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestFoldingRecursesIntoNestedBodies(t *testing.T) {
	src := `int8 main() { while (1) { if (1) { return 2 + 3; } } }`
	prog, err := parser.Parse(src)
	require.NoError(t, err)

	folded, err := Optimise(prog, src, 1)
	require.NoError(t, err)

	fn := folded[0].(ast.Function)
	wl := fn.Body[0].(ast.While)
	ifn := wl.Body[0].(ast.If)
	ret := ifn.Body[0].(ast.Return)
	assert.Equal(t, ast.Number{Value: 5}, ret.Expr)
}
