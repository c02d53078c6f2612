package emitter

import (
	"strings"
	"testing"

	"github.com/GameBuilder202/Hexagn/linker"
	"github.com/GameBuilder202/Hexagn/parser"
)

func compileSrc(t *testing.T, src string, standalone bool) (string, *linker.Linker) {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	l := linker.New()
	e := New(l, src, false)
	out, err := e.Compile(prog, standalone)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	return out, l
}

func TestEmptyMainEmitsPrologueAndEpilogue(t *testing.T) {
	out, _ := compileSrc(t, "int8 main() { return 0; }", false)

	if !strings.HasPrefix(out, programPrologue) {
		t.Fatalf("expected output to start with the program prologue, got:\n%s", out)
	}
	if !strings.Contains(out, "CAL ._Hx4maini8\nHLT") {
		t.Fatalf("expected the entry jump to main, got:\n%s", out)
	}
	if !strings.Contains(out, ".main\n") {
		t.Fatalf("expected a .main label, got:\n%s", out)
	}
	if !strings.Contains(out, "PSH R1\nMOV R1 SP") {
		t.Fatalf("expected function entry sequence, got:\n%s", out)
	}
	if !strings.Contains(out, "MOV SP R1\nPOP R1\nRET") {
		t.Fatalf("expected function exit sequence, got:\n%s", out)
	}
}

func TestStandaloneSkipsPrologue(t *testing.T) {
	out, _ := compileSrc(t, "pub int32 id(int32 x) { return x; }", true)
	if strings.Contains(out, "MINHEAP") {
		t.Fatalf("standalone compilation must not emit the program prologue, got:\n%s", out)
	}
}

func TestFunctionRegisteredUnderMangledName(t *testing.T) {
	_, l := compileSrc(t, "pub int32 add(int32 a, int32 b) { return a + b; }", true)
	fns := l.Funcs()
	if len(fns) != 1 {
		t.Fatalf("expected exactly one registered function, got %d", len(fns))
	}
	got := fns[0].Mangled()
	const want = "_Hx3add_3i32_3i32_3i32"
	if got != want {
		t.Fatalf("got mangled name %q, want %q", got, want)
	}
}

func TestDeepExpressionFlushesQueueBeforeFinalOp(t *testing.T) {
	out, _ := compileSrc(t, "int8 main() { int32 x = (1 + 2) * (3 + 4); return 0; }", false)
	mltIdx := strings.Index(out, "MLT")
	addIdx := strings.Index(out, "ADD")
	if mltIdx == -1 || addIdx == -1 {
		t.Fatalf("expected both ADD and MLT instructions, got:\n%s", out)
	}
	if addIdx > mltIdx {
		t.Fatalf("expected operand ADDs to be queued before the MLT that depends on them, got:\n%s", out)
	}
}

func TestUnknownIdentifierIsFatal(t *testing.T) {
	_, err := func() (string, error) {
		prog, err := parser.Parse("int8 main() { return y; }")
		if err != nil {
			return "", err
		}
		l := linker.New()
		e := New(l, "int8 main() { return y; }", false)
		return e.Compile(prog, false)
	}()
	if err == nil {
		t.Fatal("expected a fatal diagnostic for an unknown identifier")
	}
}

func TestUnknownCalleeIsFatal(t *testing.T) {
	prog, err := parser.Parse("int8 main() { foo(1); return 0; }")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	l := linker.New()
	e := New(l, "int8 main() { foo(1); return 0; }", false)
	if _, err := e.Compile(prog, false); err == nil {
		t.Fatal("expected a fatal diagnostic for a call to an unregistered function")
	}
}

func TestModuleLevelGlobalIsVisibleInsideFunction(t *testing.T) {
	src := `int32 counter = 0;
int8 main() { counter = 1; return 0; }`
	out, _ := compileSrc(t, src, false)

	if !strings.Contains(out, "LSTR R1 -1 R2") {
		t.Fatalf("expected the global initialiser to store into slot -1, got:\n%s", out)
	}
	// main's own assignment to the same global must address the same
	// slot, not be rejected as an unknown identifier.
	if strings.Count(out, "LSTR R1 -1 R2") < 2 {
		t.Fatalf("expected both the global's init and main's assignment to use slot -1, got:\n%s", out)
	}
}

func TestUndeclaredTopLevelVarAssignIsFatal(t *testing.T) {
	src := "missing = 5;\nint8 main() { return 0; }"
	_, err := func() (string, error) {
		prog, err := parser.Parse(src)
		if err != nil {
			return "", err
		}
		l := linker.New()
		e := New(l, src, false)
		return e.Compile(prog, false)
	}()
	if err == nil {
		t.Fatal("expected a fatal diagnostic for an assignment to an undeclared global")
	}
}

func TestParamShadowsModuleLevelGlobal(t *testing.T) {
	src := `int32 x = 0;
int32 id(int32 x) { return x; }`
	out, _ := compileSrc(t, src, true)

	// x is both a global (slot -1) and id's sole parameter (slot +2);
	// the return statement inside id must read the parameter.
	if !strings.Contains(out, "LLOD R2 R1 2") {
		t.Fatalf("expected id to read its parameter via R1 +2, got:\n%s", out)
	}
	if strings.Contains(out, "LLOD R2 R1 -1") {
		t.Fatalf("id's body must not address the shadowed global, got:\n%s", out)
	}
}

func TestIfAndWhileLabelsAreUnique(t *testing.T) {
	src := `int8 main() {
		while (1) {
			if (1) {
				return 1;
			}
		}
		while (1) {
			if (1) {
				return 2;
			}
		}
		return 0;
	}`
	out, _ := compileSrc(t, src, false)
	if strings.Count(out, "BRZ") < 4 {
		t.Fatalf("expected a BRZ per if/while condition, got:\n%s", out)
	}
	// every label definition line (".name") must be unique.
	seen := map[string]bool{}
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, ".") {
			if seen[line] {
				t.Fatalf("duplicate label %q in output", line)
			}
			seen[line] = true
		}
	}
}
