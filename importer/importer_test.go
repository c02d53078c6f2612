package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GameBuilder202/Hexagn/ast"
	"github.com/GameBuilder202/Hexagn/linker"
)

var int32Type = ast.NamedType{Name: "int32"}

func writeLib(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestResolveImportsPublicFunctionOnly(t *testing.T) {
	dir := t.TempDir()
	writeLib(t, dir, "mathlib.hxgn", `
int32 helper(int32 x) { return x; }
pub int32 square(int32 x) { helper(x); return x * x; }
`)

	outer := linker.New()
	r := New(outer, 0, false)
	r.Roots = []string{dir}

	imp := ast.Import{Path: []string{"mathlib"}}
	require.NoError(t, r.Resolve(imp, ""))

	// Only square is callable from the importing module - helper is
	// Private and has no entry in the outer Linker's lookup table.
	funcs := outer.Funcs()
	require.Len(t, funcs, 1, "only the Public function should be in the outer lookup table")
	assert.Equal(t, "square", funcs[0].Name)
	assert.Equal(t, ast.Public, funcs[0].Linkage)

	// helper's code must still land in the final assembly, even though
	// it never reaches the outer Linker: square's own compiled body CALs
	// its mangled label, and nothing else will ever emit a matching
	// code block for it.
	helperLabel := linker.Mangle("helper", []ast.Type{int32Type}, int32Type)
	code := r.ImportedCode()
	assert.Contains(t, code, "CAL ."+helperLabel, "square's body should call helper")
	assert.Contains(t, code, "."+helperLabel+"\n", "helper's own code block must be emitted")
}

func TestResolveIsIdempotentOnDuplicateImport(t *testing.T) {
	dir := t.TempDir()
	writeLib(t, dir, "util.hxgn", `pub int32 id(int32 x) { return x; }`)

	outer := linker.New()
	r := New(outer, 0, false)
	r.Roots = []string{dir}

	imp := ast.Import{Path: []string{"util"}}
	require.NoError(t, r.Resolve(imp, ""))
	require.NoError(t, r.Resolve(imp, ""))

	assert.Len(t, outer.Funcs(), 1, "re-importing the same file must not duplicate its functions")
}

func TestResolveRecursesIntoDirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "collections")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	writeLib(t, sub, "list.hxgn", `pub int32 len(int32 x) { return x; }`)
	writeLib(t, sub, "notes.txt", `not a hexagn file`)

	outer := linker.New()
	r := New(outer, 0, false)
	r.Roots = []string{dir}

	imp := ast.Import{Path: []string{"collections"}}
	require.NoError(t, r.Resolve(imp, ""))

	funcs := outer.Funcs()
	require.Len(t, funcs, 1)
	assert.Equal(t, "len", funcs[0].Name)
}

func TestResolveUnknownPathIsFatal(t *testing.T) {
	outer := linker.New()
	r := New(outer, 0, false)
	r.Roots = []string{t.TempDir()}

	imp := ast.Import{Path: []string{"nope"}, Sym: ast.DebugSym{Line: 3}}
	err := r.Resolve(imp, "import nope;\n")
	require.Error(t, err)
}

func TestDefaultStdlibRootMatchesPlatform(t *testing.T) {
	root := DefaultStdlibRoot()
	assert.NotEmpty(t, root)
}
