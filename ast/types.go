// Package ast contains the typed syntax tree produced by the parser:
// types, expressions, and statements.
package ast

import "fmt"

// Type is a recursive sum: a named primitive, or a pointer/array/const
// wrapper around another Type. Equality is structural, so two separately
// constructed NamedType{"int32"} values compare equal.
type Type interface {
	isType()
	String() string
}

// NamedType is a primitive or (reserved for future use) user-defined
// nominal type referenced by name.
type NamedType struct {
	Name string
}

func (NamedType) isType()          {}
func (n NamedType) String() string { return n.Name }

// PtrType wraps a type one level of pointer indirection deeper.
type PtrType struct {
	Inner Type
}

func (PtrType) isType()          {}
func (p PtrType) String() string { return p.Inner.String() + "*" }

// ArrType wraps a type as an array element type. The surface grammar has
// no syntax to produce this (spec.md 4.2); it exists for completeness and
// for types synthesised internally.
type ArrType struct {
	Inner Type
}

func (ArrType) isType()          {}
func (a ArrType) String() string { return a.Inner.String() + "[]" }

// ConstType marks a type as immutable. Like ArrType, there is no surface
// syntax to write one directly.
type ConstType struct {
	Inner Type
}

func (ConstType) isType()          {}
func (c ConstType) String() string { return "const " + c.Inner.String() }

// TypesEqual reports structural equality between two types.
func TypesEqual(a, b Type) bool {
	switch av := a.(type) {
	case NamedType:
		bv, ok := b.(NamedType)
		return ok && av.Name == bv.Name
	case PtrType:
		bv, ok := b.(PtrType)
		return ok && TypesEqual(av.Inner, bv.Inner)
	case ArrType:
		bv, ok := b.(ArrType)
		return ok && TypesEqual(av.Inner, bv.Inner)
	case ConstType:
		bv, ok := b.(ConstType)
		return ok && TypesEqual(av.Inner, bv.Inner)
	default:
		return false
	}
}

// FamKind is the coarse type bucket used for overload resolution.
type FamKind int

// pre-defined family kinds
const (
	FamVoid FamKind = iota
	FamInt
	FamF32
	FamF64
	FamString
	FamChar
	FamNamed
	FamPtr
	FamArr
	FamConst
)

// Family is the result of collapsing a Type via Family(). Pointer, array,
// and const wrappers recurse through Elem so that e.g. int32* and int64*
// collapse to the same family (a pointer to int) but char* and int32* do
// not.
type Family struct {
	Kind FamKind
	Name string // populated only when Kind == FamNamed
	Elem *Family
}

// FamiliesEqual reports whether two families match for overload-resolution
// purposes.
func FamiliesEqual(a, b Family) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case FamNamed:
		return a.Name == b.Name
	case FamPtr, FamArr, FamConst:
		if a.Elem == nil || b.Elem == nil {
			return a.Elem == b.Elem
		}
		return FamiliesEqual(*a.Elem, *b.Elem)
	default:
		return true
	}
}

// FamilyOf maps a Type down to its overload-resolution family. Every
// signed and unsigned integer primitive collapses to FamInt; every float
// keeps its own width; string and char are their own families; pointers,
// arrays, and consts recurse and keep their wrapper tag.
func FamilyOf(t Type) Family {
	switch tv := t.(type) {
	case NamedType:
		switch tv.Name {
		case "void":
			return Family{Kind: FamVoid}
		case "int8", "int16", "int32", "int64",
			"uint8", "uint16", "uint32", "uint64":
			return Family{Kind: FamInt}
		case "float32":
			return Family{Kind: FamF32}
		case "float64":
			return Family{Kind: FamF64}
		case "string":
			return Family{Kind: FamString}
		case "char":
			return Family{Kind: FamChar}
		default:
			return Family{Kind: FamNamed, Name: tv.Name}
		}
	case PtrType:
		f := FamilyOf(tv.Inner)
		return Family{Kind: FamPtr, Elem: &f}
	case ArrType:
		f := FamilyOf(tv.Inner)
		return Family{Kind: FamArr, Elem: &f}
	case ConstType:
		f := FamilyOf(tv.Inner)
		return Family{Kind: FamConst, Elem: &f}
	default:
		panic(fmt.Sprintf("ast: unhandled Type %T in FamilyOf", t))
	}
}

// BitWidth returns the storage width of t, used by the emitter to mask
// expression results. Pointers are modelled as 32-bit addresses, matching
// the BITS == 32 directive emitted in the program prologue.
func BitWidth(t Type) int {
	switch tv := t.(type) {
	case NamedType:
		switch tv.Name {
		case "int8", "uint8", "char":
			return 8
		case "int16", "uint16":
			return 16
		case "int32", "uint32", "float32":
			return 32
		case "int64", "uint64", "float64":
			return 64
		default:
			return 32
		}
	case PtrType:
		return 32
	case ArrType:
		return 32
	case ConstType:
		return BitWidth(tv.Inner)
	default:
		panic(fmt.Sprintf("ast: unhandled Type %T in BitWidth", t))
	}
}
