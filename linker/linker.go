// Package linker implements Hexagn's function registry: uniqueness
// checking, overload lookup by family-collapsed argument types, and
// name mangling.
//
// The mutex-guarded slice here is grounded on the teacher compiler's
// stack.Stack (a mutex-guarded []string with Push/Pop/Empty) -
// generalised from a LIFO of strings to a linear-scan registry of
// *LinkerFunc, keyed by name and family rather than popped by position.
// Hexagn's pipeline never actually touches a Linker from more than one
// goroutine (see SPEC_FULL.md section 5), but the teacher guards its one
// shared collection unconditionally, and this repo follows that idiom.
package linker

import (
	"fmt"
	"sync"

	"github.com/GameBuilder202/Hexagn/ast"
)

// LinkerFunc is a single registered function: its signature, its
// linkage, and the assembly code the emitter produced for its body.
type LinkerFunc struct {
	RetType  ast.Type
	Name     string
	ArgTypes []ast.Type
	Linkage  ast.Linkage
	Code     string
}

// Mangled returns this function's link-time label.
func (f *LinkerFunc) Mangled() string {
	return Mangle(f.Name, f.ArgTypes, f.RetType)
}

// Linker holds the function table for one compilation unit.
type Linker struct {
	lock  sync.Mutex
	funcs []*LinkerFunc
}

// New returns an empty Linker.
func New() *Linker {
	return &Linker{}
}

// Add registers fn. It rejects a function sharing a full mangled
// signature with an existing entry unless allowReplace is set, in which
// case the existing entry is replaced in place rather than appended -
// this lets the importer re-register a Public library function compiled
// in standalone mode without growing the table. It separately rejects a
// function whose (name, family(arg_types)) matches an existing entry but
// whose return type differs - return-type-only overloading is forbidden
// by spec.md 4.5.
func (l *Linker) Add(fn *LinkerFunc, allowReplace bool) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	mangled := fn.Mangled()
	for i, existing := range l.funcs {
		if existing.Mangled() == mangled {
			if !allowReplace {
				return fmt.Errorf("duplicate definition of function %s", fn.Name)
			}
			l.funcs[i] = fn
			return nil
		}
		if existing.Name == fn.Name && sameFamilies(existing.ArgTypes, fn.ArgTypes) &&
			!ast.TypesEqual(existing.RetType, fn.RetType) {
			return fmt.Errorf("cannot overload function %s based on return types", fn.Name)
		}
	}

	l.funcs = append(l.funcs, fn)
	return nil
}

// Lookup finds the first-registered function named name whose parameter
// families element-wise match argTypes' families. First match wins, per
// spec.md 8's determinism property.
func (l *Linker) Lookup(name string, argTypes []ast.Type) (*LinkerFunc, bool) {
	l.lock.Lock()
	defer l.lock.Unlock()

	for _, fn := range l.funcs {
		if fn.Name == name && sameFamilies(fn.ArgTypes, argTypes) {
			return fn, true
		}
	}
	return nil, false
}

// Funcs returns every registered function, in registration order.
func (l *Linker) Funcs() []*LinkerFunc {
	l.lock.Lock()
	defer l.lock.Unlock()

	out := make([]*LinkerFunc, len(l.funcs))
	copy(out, l.funcs)
	return out
}

// PublicFuncs returns only the Public-linkage entries, in registration
// order - the set an importer publishes to the outer scope.
func (l *Linker) PublicFuncs() []*LinkerFunc {
	l.lock.Lock()
	defer l.lock.Unlock()

	var out []*LinkerFunc
	for _, fn := range l.funcs {
		if fn.Linkage == ast.Public {
			out = append(out, fn)
		}
	}
	return out
}

func sameFamilies(a, b []ast.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !ast.FamiliesEqual(ast.FamilyOf(a[i]), ast.FamilyOf(b[i])) {
			return false
		}
	}
	return true
}
