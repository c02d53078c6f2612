package emitter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/GameBuilder202/Hexagn/ast"
	"github.com/GameBuilder202/Hexagn/diag"
)

// compileExpr lowers expr so that its final value ends up pushed on
// top of the operand stack, per spec.md 4.6. Number and Ident push
// directly; BiOp and Comp trees go through the virtual-register
// instruction queue in lowerOperand, then mask the result to
// expectedType's bit width before pushing it.
func (e *Emitter) compileExpr(expr ast.Expr, expectedType ast.Type, sym ast.DebugSym) (string, error) {
	switch ev := expr.(type) {
	case ast.Number:
		width := 32
		if expectedType != nil {
			width = ast.BitWidth(expectedType)
		}
		return fmt.Sprintf("PSH %d\n", wrapToWidth(ev.Value, width)), nil

	case ast.Ident:
		off, _, isParam, err := e.resolveSlot(ev.Name, sym)
		if err != nil {
			return "", err
		}
		reg := e.nextReg()
		if isParam {
			return fmt.Sprintf("LLOD %s R1 %d\nPSH %s\n", reg, off, reg), nil
		}
		return fmt.Sprintf("LLOD %s R1 -%d\nPSH %s\n", reg, off, reg), nil

	case ast.Str:
		return "", diag.New(diag.Semantic, "string-literal lowering is not yet implemented", e.source, sym.Line)

	case ast.Call:
		return "", diag.New(diag.Semantic, "function calls used as sub-expressions are not yet implemented", e.source, sym.Line)

	case ast.BiOp, ast.Comp:
		var queue []string
		dest, err := e.lowerOperand(expr, sym, &queue)
		if err != nil {
			return "", err
		}
		width := 32
		if expectedType != nil {
			width = ast.BitWidth(expectedType)
		}
		var sb strings.Builder
		for _, instr := range queue {
			sb.WriteString(instr)
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "AND %s %s 0x%X\n", dest, dest, maskFor(width))
		fmt.Fprintf(&sb, "PSH %s\n", dest)
		return sb.String(), nil

	default:
		return "", diag.New(diag.Semantic, fmt.Sprintf("%T is not a valid expression", expr), e.source, sym.Line)
	}
}

// lowerOperand recursively walks expr, appending each sub-instruction
// to queue in the order its dependencies are computed, and returns the
// register or immediate operand text that holds expr's value.
func (e *Emitter) lowerOperand(expr ast.Expr, sym ast.DebugSym, queue *[]string) (string, error) {
	switch ev := expr.(type) {
	case ast.Number:
		return strconv.FormatInt(ev.Value, 10), nil

	case ast.Ident:
		off, _, isParam, err := e.resolveSlot(ev.Name, sym)
		if err != nil {
			return "", err
		}
		reg := e.nextReg()
		if isParam {
			*queue = append(*queue, fmt.Sprintf("LLOD %s R1 %d", reg, off))
		} else {
			*queue = append(*queue, fmt.Sprintf("LLOD %s R1 -%d", reg, off))
		}
		return reg, nil

	case ast.BiOp:
		lhs, err := e.lowerOperand(ev.Lhs, sym, queue)
		if err != nil {
			return "", err
		}
		rhs, err := e.lowerOperand(ev.Rhs, sym, queue)
		if err != nil {
			return "", err
		}
		dest := e.nextReg()
		*queue = append(*queue, fmt.Sprintf("%s %s %s %s", biOpMnemonic(ev.Op), dest, lhs, rhs))
		return dest, nil

	case ast.Comp:
		lhs, err := e.lowerOperand(ev.Lhs, sym, queue)
		if err != nil {
			return "", err
		}
		rhs, err := e.lowerOperand(ev.Rhs, sym, queue)
		if err != nil {
			return "", err
		}
		dest := e.nextReg()
		*queue = append(*queue, fmt.Sprintf("%s %s %s %s", compMnemonic(ev.Op), dest, lhs, rhs))
		return dest, nil

	case ast.Str:
		return "", diag.New(diag.Semantic, "string-literal lowering is not yet implemented", e.source, sym.Line)

	case ast.Call:
		return "", diag.New(diag.Semantic, "function calls used as sub-expressions are not yet implemented", e.source, sym.Line)

	default:
		return "", diag.New(diag.Semantic, fmt.Sprintf("%T is not a valid expression", expr), e.source, sym.Line)
	}
}

func biOpMnemonic(op ast.BinOp) string {
	switch op {
	case ast.Add:
		return "ADD"
	case ast.Sub:
		return "SUB"
	case ast.Mul:
		return "MLT"
	case ast.Div:
		return "DIV"
	case ast.Mod:
		return "MOD"
	default:
		panic(fmt.Sprintf("emitter: unhandled BinOp %v", op))
	}
}

func compMnemonic(op ast.CompOp) string {
	switch op {
	case ast.CEQ:
		return "SETE"
	case ast.CNEQ:
		return "SETNE"
	case ast.CLT:
		return "SETL"
	case ast.CLTE:
		return "SETLE"
	case ast.CGT:
		return "SETG"
	case ast.CGTE:
		return "SETGE"
	default:
		panic(fmt.Sprintf("emitter: unhandled CompOp %v", op))
	}
}

// maskFor returns the bitmask for a value of the given width, used to
// emulate narrower-than-register arithmetic on URCL's register machine.
func maskFor(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(width)) - 1
}

// wrapToWidth truncates n to width bits, matching the two's-complement
// wraparound spec.md 4.3 already applies at constant-fold time; this
// additionally covers literals the optimiser never touched (opt_level 0).
func wrapToWidth(n int64, width int) int64 {
	if width >= 64 {
		return n
	}
	mask := (int64(1) << uint(width)) - 1
	return n & mask
}
