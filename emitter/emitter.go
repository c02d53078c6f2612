// Package emitter lowers a folded, import-resolved AST into URCL
// assembly text, registering one LinkerFunc per function definition.
//
// The overall shape - a handful of small gen* methods, each returning a
// string blob of assembly, glued together by a driving Compile method -
// is grounded on the teacher compiler's compiler/generator.go. Where the
// teacher has one flat instruction stream and no variables, this package
// adds a VarStack of nested frames and a virtual-register instruction
// queue for expression trees, generalising the teacher's instructions
// package InstructionType tagging into the full node/expr set named by
// the data model.
package emitter

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/GameBuilder202/Hexagn/ast"
	"github.com/GameBuilder202/Hexagn/diag"
	"github.com/GameBuilder202/Hexagn/linker"
)

// programPrologue establishes the URCL machine and, per spec.md
// Invariant 2, a frame pointer over the module-global slot space before
// control ever reaches main; programEntry then hands off to it.
const programPrologue = "BITS == 32\nMINHEAP 4096\nMINSTACK 1024\nMOV R1 SP\n"
const programEntry = "CAL ._Hx4maini8\nHLT\n"

// Emitter walks one compilation unit's AST and populates a Linker.
type Emitter struct {
	linker       *linker.Linker
	source       string
	debugSymbols bool

	// globals holds module-level VarDefine/VarAssign slots. Unlike vars
	// it is never reset by compileFunction - it is the outer scope every
	// function in this compilation unit is compiled against.
	globals *VarStack

	// per-function state: compileFunction resets vars, params and
	// regNext and sets fnLabel. labelN is never reset, so labels stay
	// unique across the whole compilation unit.
	vars    *VarStack
	params  map[string]paramSlot
	regNext int
	labelN  int
	fnLabel string
}

type paramSlot struct {
	offset int
	typ    ast.Type
}

// New returns an Emitter that registers functions into l.
func New(l *linker.Linker, source string, debugSymbols bool) *Emitter {
	globals := NewVarStack()
	globals.PushFrame()
	return &Emitter{
		linker:       l,
		source:       source,
		debugSymbols: debugSymbols,
		globals:      globals,
		vars:         NewVarStack(),
	}
}

// Compile lowers every top-level node in prog, registering functions
// into the Emitter's Linker, then assembles the final module text.
// standalone suppresses the program prologue - set when compiling an
// imported library file, which has no entry point of its own.
func (e *Emitter) Compile(prog ast.Program, standalone bool) (string, error) {
	var globalInit strings.Builder
	for _, n := range prog {
		code, err := e.compileTopLevel(n)
		if err != nil {
			return "", err
		}
		globalInit.WriteString(code)
	}

	var out strings.Builder
	if !standalone {
		out.WriteString(programPrologue)
		out.WriteString(globalInit.String())
		out.WriteString(programEntry)
	} else {
		out.WriteString(globalInit.String())
	}
	for _, fn := range e.linker.Funcs() {
		out.WriteString(fn.Code)
	}
	return out.String(), nil
}

// compileTopLevel handles one top-level node. Function/Extern/Import/
// InlineURCL act purely through side effects on the Linker and return no
// code of their own; VarDefine/VarAssign are module-level globals (see
// resolveSlot) and return the initialiser code to be run before main is
// called.
func (e *Emitter) compileTopLevel(n ast.Node) (string, error) {
	switch nv := n.(type) {
	case ast.Function:
		return "", e.compileFunction(nv)
	case ast.Extern:
		if err := e.linker.Add(&linker.LinkerFunc{
			RetType:  nv.Ret,
			Name:     nv.Name,
			ArgTypes: paramTypes(nv.Params),
			Linkage:  ast.External,
		}, false); err != nil {
			return "", diag.New(diag.Semantic, err.Error(), e.source, nv.Sym.Line)
		}
		return "", nil
	case ast.Import:
		// Resolved by the importer package before the emitter runs; by
		// the time Compile sees a Program, Import nodes are inert.
		return "", nil
	case ast.InlineURCL:
		e.labelN++
		return "", e.linker.Add(&linker.LinkerFunc{
			RetType: ast.NamedType{Name: "void"},
			Name:    fmt.Sprintf("__urcl_%d", e.labelN),
			Code:    e.inlineURCL(nv),
		}, false)
	case ast.VarDefine:
		return e.compileGlobalDefine(nv)
	case ast.VarAssign:
		return e.compileGlobalAssign(nv)
	default:
		return "", diag.New(diag.Semantic, fmt.Sprintf("%T is not valid at top level", n), e.source, n.Debug().Line)
	}
}

// compileGlobalDefine allocates a module-level slot in e.globals, the
// outer scope threaded into every function body by resolveSlot.
func (e *Emitter) compileGlobalDefine(v ast.VarDefine) (string, error) {
	offset := e.globals.Define(v.Ident)
	if v.Init == nil {
		return "DEC SP SP\n", nil
	}

	code, err := e.compileExpr(v.Init, v.Type, v.Sym)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(code)
	sb.WriteString("POP R2\n")
	fmt.Fprintf(&sb, "LSTR R1 -%d R2\n", offset)
	return sb.String(), nil
}

// compileGlobalAssign stores into an already-declared module-level slot.
func (e *Emitter) compileGlobalAssign(v ast.VarAssign) (string, error) {
	offset, typ, _, err := e.resolveSlot(v.Ident, v.Sym)
	if err != nil {
		return "", err
	}

	code, err := e.compileExpr(v.Expr, typ, v.Sym)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(code)
	sb.WriteString("POP R2\n")
	fmt.Fprintf(&sb, "LSTR R1 -%d R2\n", offset)
	return sb.String(), nil
}

func paramTypes(params []ast.Param) []ast.Type {
	out := make([]ast.Type, len(params))
	for i, p := range params {
		out[i] = p.Type
	}
	return out
}

func (e *Emitter) compileFunction(fn ast.Function) error {
	logrus.Debugf("emitter: compiling function %s", fn.Name)

	e.vars = NewVarStack()
	e.vars.PushFrame()
	e.params = make(map[string]paramSlot, len(fn.Params))
	for i, p := range fn.Params {
		e.params[p.Name] = paramSlot{offset: i, typ: p.Type}
	}
	e.regNext = 1
	e.fnLabel = linker.Mangle(fn.Name, paramTypes(fn.Params), fn.Ret)

	body, err := e.compileBody(fn.Body)
	if err != nil {
		return err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, ".%s\n", e.fnLabel)
	sb.WriteString("PSH R1\nMOV R1 SP\n")
	sb.WriteString(body)
	fmt.Fprintf(&sb, ".%s_exit\n", e.fnLabel)
	sb.WriteString("MOV SP R1\nPOP R1\nRET\n")

	if err := e.linker.Add(&linker.LinkerFunc{
		RetType:  fn.Ret,
		Name:     fn.Name,
		ArgTypes: paramTypes(fn.Params),
		Linkage:  fn.Linkage,
		Code:     sb.String(),
	}, false); err != nil {
		return diag.New(diag.Semantic, err.Error(), e.source, fn.Sym.Line)
	}
	return nil
}

func (e *Emitter) compileBody(body ast.Program) (string, error) {
	var sb strings.Builder
	for _, stmt := range body {
		code, err := e.compileStatement(stmt)
		if err != nil {
			return "", err
		}
		sb.WriteString(code)
	}
	return sb.String(), nil
}

func (e *Emitter) compileStatement(n ast.Node) (string, error) {
	switch nv := n.(type) {
	case ast.VarDefine:
		return e.compileVarDefine(nv)
	case ast.VarAssign:
		return e.compileVarAssign(nv)
	case ast.FuncCall:
		return e.compileFuncCallStmt(nv)
	case ast.If:
		return e.compileIf(nv)
	case ast.While:
		return e.compileWhile(nv)
	case ast.Return:
		return e.compileReturn(nv)
	case ast.InlineURCL:
		return e.inlineURCL(nv), nil
	case ast.Function:
		// Nested function definitions are not in the surface grammar
		// (spec.md 4.2); the parser never produces one inside a body.
		return "", diag.New(diag.Semantic, "nested function definitions are not supported", e.source, n.Debug().Line)
	default:
		return "", diag.New(diag.Semantic, fmt.Sprintf("%T is not a valid statement", n), e.source, n.Debug().Line)
	}
}

func (e *Emitter) inlineURCL(u ast.InlineURCL) string {
	var sb strings.Builder
	if e.debugSymbols {
		fmt.Fprintf(&sb, "// Inline URCL @ line %d\n", u.Sym.Line)
	}
	sb.WriteString(u.Text)
	sb.WriteByte('\n')
	return sb.String()
}

func (e *Emitter) compileVarDefine(v ast.VarDefine) (string, error) {
	offset := e.vars.Define(v.Ident)
	if v.Init == nil {
		return "DEC SP SP\n", nil
	}

	code, err := e.compileExpr(v.Init, v.Type, v.Sym)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(code)
	sb.WriteString("POP R2\n")
	fmt.Fprintf(&sb, "LSTR R1 -%d R2\n", offset)
	return sb.String(), nil
}

func (e *Emitter) compileVarAssign(v ast.VarAssign) (string, error) {
	offset, typ, _, err := e.resolveSlot(v.Ident, v.Sym)
	if err != nil {
		return "", err
	}

	code, err := e.compileExpr(v.Expr, typ, v.Sym)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(code)
	sb.WriteString("POP R2\n")
	fmt.Fprintf(&sb, "LSTR R1 -%d R2\n", offset)
	return sb.String(), nil
}

// resolveSlot finds ident's stack offset, checking the three tiers
// named by spec.md Invariant 2 in shadowing order: local frames
// (including enclosing if/while blocks), then function parameters, then
// module-level globals. typ is the declared type for a parameter only;
// VarStack records no types, so it is nil for locals and globals.
// isParam reports which
// addressing form the caller should use: parameters sit above the saved
// R1 and return address (LLOD R1 +offset); locals and globals sit below
// it (LLOD R1 -offset).
func (e *Emitter) resolveSlot(ident string, sym ast.DebugSym) (offset int, typ ast.Type, isParam bool, err error) {
	if off, ok := e.vars.Offset(ident); ok {
		return off, nil, false, nil
	}
	if p, ok := e.params[ident]; ok {
		return p.offset + 2, p.typ, true, nil
	}
	if off, ok := e.globals.Offset(ident); ok {
		return off, nil, false, nil
	}
	return 0, nil, false, diag.New(diag.Semantic, fmt.Sprintf("unknown identifier %q", ident), e.source, sym.Line)
}

func (e *Emitter) compileFuncCallStmt(c ast.FuncCall) (string, error) {
	code, _, err := e.compileCall(c.Name, c.Args, c.Sym)
	return code, err
}

// compileCall infers each argument's family type, looks the callee up
// in the Linker, pushes arguments left to right, calls, then reclaims
// the argument slots. It returns the assembly and the callee's return
// type (for callers that need it, though none currently do, since Call
// used as a sub-expression is unimplemented - see compileExpr).
func (e *Emitter) compileCall(name string, args []ast.Expr, sym ast.DebugSym) (string, ast.Type, error) {
	argTypes := make([]ast.Type, len(args))
	for i, a := range args {
		t, err := e.inferArgType(a, sym)
		if err != nil {
			return "", nil, err
		}
		argTypes[i] = t
	}

	fn, ok := e.linker.Lookup(name, argTypes)
	if !ok {
		return "", nil, diag.New(diag.Semantic, fmt.Sprintf("call to unknown function %q", name), e.source, sym.Line)
	}

	var sb strings.Builder
	for i, a := range args {
		code, err := e.compileExpr(a, argTypes[i], sym)
		if err != nil {
			return "", nil, err
		}
		sb.WriteString(code)
	}
	fmt.Fprintf(&sb, "CAL .%s\n", linker.Mangle(fn.Name, fn.ArgTypes, fn.RetType))
	if len(args) > 0 {
		fmt.Fprintf(&sb, "ADD SP SP %d\n", len(args))
	}
	return sb.String(), fn.RetType, nil
}

// inferArgType implements spec.md 4.6's argument-type inference: number
// literals are int, identifiers take their declared type, everything
// else is unimplemented for call-argument purposes.
func (e *Emitter) inferArgType(a ast.Expr, sym ast.DebugSym) (ast.Type, error) {
	switch av := a.(type) {
	case ast.Number:
		return ast.NamedType{Name: "int32"}, nil
	case ast.Ident:
		_, typ, _, err := e.resolveSlot(av.Name, sym)
		if err != nil {
			return nil, err
		}
		if typ == nil {
			// A local's declared type isn't tracked by VarStack (only
			// its offset is); locals are assumed int32 for call-site
			// overload resolution, matching the int-literal default.
			return ast.NamedType{Name: "int32"}, nil
		}
		return typ, nil
	default:
		return nil, diag.New(diag.Semantic, "unsupported expression in call argument position", e.source, sym.Line)
	}
}

func (e *Emitter) compileReturn(r ast.Return) (string, error) {
	var sb strings.Builder
	if r.Expr != nil {
		// The return type isn't threaded through from the enclosing
		// Function node; int32 is used for masking width, matching the
		// int32-default used for untyped call arguments above.
		code, err := e.compileExpr(r.Expr, ast.NamedType{Name: "int32"}, r.Sym)
		if err != nil {
			return "", err
		}
		sb.WriteString(code)
	}
	fmt.Fprintf(&sb, "JMP .%s_exit\n", e.fnLabel)
	return sb.String(), nil
}

func (e *Emitter) compileIf(n ast.If) (string, error) {
	cond, err := e.compileExpr(n.Cond, ast.NamedType{Name: "int32"}, n.Sym)
	if err != nil {
		return "", err
	}
	e.vars.PushFrame()
	body, err := e.compileBody(n.Body)
	e.vars.PopFrame()
	if err != nil {
		return "", err
	}

	label := e.newLabel("endif")
	var sb strings.Builder
	sb.WriteString(cond)
	sb.WriteString("POP R2\n")
	fmt.Fprintf(&sb, "BRZ .%s R2\n", label)
	sb.WriteString(body)
	fmt.Fprintf(&sb, ".%s\n", label)
	return sb.String(), nil
}

func (e *Emitter) compileWhile(n ast.While) (string, error) {
	top := e.newLabel("while")
	end := e.newLabel("endwhile")

	cond, err := e.compileExpr(n.Cond, ast.NamedType{Name: "int32"}, n.Sym)
	if err != nil {
		return "", err
	}
	e.vars.PushFrame()
	body, err := e.compileBody(n.Body)
	e.vars.PopFrame()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, ".%s\n", top)
	sb.WriteString(cond)
	sb.WriteString("POP R2\n")
	fmt.Fprintf(&sb, "BRZ .%s R2\n", end)
	sb.WriteString(body)
	fmt.Fprintf(&sb, "JMP .%s\n", top)
	fmt.Fprintf(&sb, ".%s\n", end)
	return sb.String(), nil
}

// newLabel returns a fresh, monotonically numbered local label so
// nested/sibling if and while statements never collide.
func (e *Emitter) newLabel(prefix string) string {
	e.labelN++
	return fmt.Sprintf("%s_%s_%d", e.fnLabel, prefix, e.labelN)
}

func (e *Emitter) nextReg() string {
	e.regNext++
	return fmt.Sprintf("R%d", e.regNext)
}
