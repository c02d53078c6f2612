package linker

import (
	"fmt"

	"github.com/GameBuilder202/Hexagn/ast"
)

// primitiveCodes maps a primitive type name to its mangling short code,
// per spec.md 4.5.
var primitiveCodes = map[string]string{
	"void":    "v",
	"int8":    "i8",
	"int16":   "i16",
	"int32":   "i32",
	"int64":   "i64",
	"uint8":   "u8",
	"uint16":  "u16",
	"uint32":  "u32",
	"uint64":  "u64",
	"float32": "f32",
	"float64": "f64",
	"string":  "s",
	"char":    "c",
}

// encodeType renders a single type in the _<len><code> form spec.md 4.5
// defines for primitives, generalised with single-letter tags for the
// pointer/array/const wrappers that have no direct analogue in the
// original scheme (spec.md leaves composite-type mangling unspecified;
// the p/a/k tags are this package's own extension).
func encodeType(t ast.Type) string {
	switch tv := t.(type) {
	case ast.NamedType:
		code, ok := primitiveCodes[tv.Name]
		if !ok {
			// A user-defined nominal type: emit the raw name itself
			// with its own length prefix, per spec.md 4.5.
			return fmt.Sprintf("_%d%s", len(tv.Name), tv.Name)
		}
		return fmt.Sprintf("_%d%s", len(code), code)
	case ast.PtrType:
		return "_1p" + encodeType(tv.Inner)
	case ast.ArrType:
		return "_1a" + encodeType(tv.Inner)
	case ast.ConstType:
		return "_1k" + encodeType(tv.Inner)
	default:
		panic(fmt.Sprintf("linker: unhandled Type %T in encodeType", t))
	}
}

// isEntryPoint reports whether (name, argTypes, ret) is the program's
// entry point signature, `int8 main()`, which spec.md 4.5 mandates is
// emitted literally as `main` rather than mangled.
func isEntryPoint(name string, argTypes []ast.Type, ret ast.Type) bool {
	if name != "main" || len(argTypes) != 0 {
		return false
	}
	named, ok := ret.(ast.NamedType)
	return ok && named.Name == "int8"
}

// Mangle computes the link-time label for a function, per spec.md 4.5:
//
//	_Hx<len(name)><name><encoded_return><encoded_args…>
//
// with the single exception that `int8 main()` is emitted literally as
// `main`.
func Mangle(name string, argTypes []ast.Type, ret ast.Type) string {
	if isEntryPoint(name, argTypes, ret) {
		return "main"
	}

	out := fmt.Sprintf("_Hx%d%s%s", len(name), name, encodeType(ret))
	for _, a := range argTypes {
		out += encodeType(a)
	}
	return out
}
