// Package optimiser implements Hexagn's constant-folding pass: an
// AST-to-AST rewrite repeated opt_level times, per spec.md section 4.3.
//
// The teacher compiler never builds a tree to rewrite - it deduplicates
// numeric literals into a `constants` map while flattening tokens
// straight into instructions. This package keeps that same idea (fold
// what can be folded, once, as early as possible) but generalises it
// into a proper recursive AST rewrite, since Hexagn's AST has nested
// scopes the teacher's flat RPN stream never had.
package optimiser

import (
	"fmt"
	"strconv"

	"github.com/GameBuilder202/Hexagn/ast"
	"github.com/GameBuilder202/Hexagn/diag"
)

// Optimise runs the constant-folding pass level times over prog. A level
// of 0 disables optimisation entirely and returns prog unchanged.
func Optimise(prog ast.Program, source string, level int) (ast.Program, error) {
	var err error
	for i := 0; i < level; i++ {
		prog, err = foldProgram(prog, source)
		if err != nil {
			return nil, err
		}
	}
	return prog, nil
}

func foldProgram(prog ast.Program, source string) (ast.Program, error) {
	out := make(ast.Program, len(prog))
	for i, n := range prog {
		folded, err := foldNode(n, source)
		if err != nil {
			return nil, err
		}
		out[i] = folded
	}
	return out, nil
}

func foldNode(n ast.Node, source string) (ast.Node, error) {
	switch nv := n.(type) {
	case ast.VarDefine:
		if nv.Init == nil {
			return nv, nil
		}
		folded, err := foldExpr(nv.Init, nv.Sym, source)
		if err != nil {
			return nil, err
		}
		nv.Init = folded
		return nv, nil

	case ast.VarAssign:
		folded, err := foldExpr(nv.Expr, nv.Sym, source)
		if err != nil {
			return nil, err
		}
		nv.Expr = folded
		return nv, nil

	case ast.Function:
		body, err := foldProgram(nv.Body, source)
		if err != nil {
			return nil, err
		}
		nv.Body = body
		return nv, nil

	case ast.FuncCall:
		args := make([]ast.Expr, len(nv.Args))
		for i, a := range nv.Args {
			folded, err := foldExpr(a, nv.Sym, source)
			if err != nil {
				return nil, err
			}
			args[i] = folded
		}
		nv.Args = args
		return nv, nil

	case ast.If:
		cond, err := foldExpr(nv.Cond, nv.Sym, source)
		if err != nil {
			return nil, err
		}
		body, err := foldProgram(nv.Body, source)
		if err != nil {
			return nil, err
		}
		nv.Cond, nv.Body = cond, body
		return nv, nil

	case ast.While:
		cond, err := foldExpr(nv.Cond, nv.Sym, source)
		if err != nil {
			return nil, err
		}
		body, err := foldProgram(nv.Body, source)
		if err != nil {
			return nil, err
		}
		nv.Cond, nv.Body = cond, body
		return nv, nil

	case ast.Return:
		if nv.Expr == nil {
			return nv, nil
		}
		folded, err := foldExpr(nv.Expr, nv.Sym, source)
		if err != nil {
			return nil, err
		}
		nv.Expr = folded
		return nv, nil

	default:
		// Extern, Import, InlineURCL carry no expressions to fold.
		return n, nil
	}
}

// foldExpr folds e as far as it can go. BiOp nodes are folded; Comp
// keeps its comparison but has both operands folded, and Call's
// arguments are folded recursively - matching spec.md 4.3's "recursion
// descends into ... FuncCall.args" for the statement form, generalised
// here to calls used as sub-expressions too. Other variants are
// returned unchanged.
func foldExpr(e ast.Expr, sym ast.DebugSym, source string) (ast.Expr, error) {
	switch ev := e.(type) {
	case ast.BiOp:
		lhs, err := foldExpr(ev.Lhs, sym, source)
		if err != nil {
			return nil, err
		}
		rhs, err := foldExpr(ev.Rhs, sym, source)
		if err != nil {
			return nil, err
		}
		return foldBiOp(lhs, ev.Op, rhs, sym, source)

	case ast.Comp:
		lhs, err := foldExpr(ev.Lhs, sym, source)
		if err != nil {
			return nil, err
		}
		rhs, err := foldExpr(ev.Rhs, sym, source)
		if err != nil {
			return nil, err
		}
		return ast.Comp{Lhs: lhs, Op: ev.Op, Rhs: rhs}, nil

	case ast.Call:
		args := make([]ast.Expr, len(ev.Args))
		for i, a := range ev.Args {
			folded, err := foldExpr(a, sym, source)
			if err != nil {
				return nil, err
			}
			args[i] = folded
		}
		return ast.Call{Name: ev.Name, Args: args}, nil

	default:
		return e, nil
	}
}

func foldBiOp(lhs ast.Expr, op ast.BinOp, rhs ast.Expr, sym ast.DebugSym, source string) (ast.Expr, error) {
	if ln, ok := lhs.(ast.Number); ok {
		if rn, ok := rhs.(ast.Number); ok {
			return foldNumbers(ln.Value, op, rn.Value, sym, source)
		}
	}

	if ls, ok := lhs.(ast.Str); ok {
		if op != ast.Add {
			return nil, fatalf(source, sym, "cannot perform string concatenation")
		}
		switch rv := rhs.(type) {
		case ast.Number:
			return ast.Str{Value: ls.Value + strconv.FormatInt(rv.Value, 10)}, nil
		case ast.Str:
			return ast.Str{Value: ls.Value + rv.Value}, nil
		default:
			return nil, fatalf(source, sym, "cannot perform string concatenation")
		}
	}

	return ast.BiOp{Lhs: lhs, Op: op, Rhs: rhs}, nil
}

// foldNumbers performs wrapping signed 64-bit arithmetic, per spec.md
// 4.3. Division and modulo by a folded zero are fatal semantic errors.
func foldNumbers(a int64, op ast.BinOp, b int64, sym ast.DebugSym, source string) (ast.Expr, error) {
	switch op {
	case ast.Add:
		return ast.Number{Value: a + b}, nil
	case ast.Sub:
		return ast.Number{Value: a - b}, nil
	case ast.Mul:
		return ast.Number{Value: a * b}, nil
	case ast.Div:
		if b == 0 {
			return nil, fatalf(source, sym, "division by zero")
		}
		return ast.Number{Value: a / b}, nil
	case ast.Mod:
		if b == 0 {
			return nil, fatalf(source, sym, "modulo by zero")
		}
		return ast.Number{Value: a % b}, nil
	default:
		panic(fmt.Sprintf("optimiser: unhandled BinOp %v", op))
	}
}

func fatalf(source string, sym ast.DebugSym, msg string) error {
	return diag.New(diag.Semantic, msg, source, sym.Line)
}
