package mir

import (
	"fmt"

	"github.com/rill-lang/rill/compiler/tp"
)

type (
	// Place is a path to addressable storage: a root plus a chain of
	// projections. Places are immutable value trees; building a
	// longer path shares the base structurally and never mutates it.
	Place interface {
		isPlace()
	}

	// Var is a local variable declared by the user.
	Var uint32

	// Temp is a temporary introduced during lowering.
	Temp uint32

	// Arg is a formal parameter of the function. Note these are NOT
	// the bindings the user declares, which are Vars.
	Arg uint32

	// Static is a static item.
	Static tp.Item

	// ReturnPointer is the return slot of the function.
	ReturnPointer struct{}

	// Projection is one step out of a base place: a field access, a
	// deref, etc. The pointer node is the single heap indirection
	// that bounds the size of the recursive case; projections are
	// strictly tree-shaped and singly owned.
	Projection struct {
		Base Place
		Elem ProjElem
	}

	// ProjElem is one projection step.
	ProjElem interface {
		isProjElem()
	}

	// Deref follows an indirection.
	Deref struct{}

	// FieldProj accesses a declared field by position. The type is
	// cached for convenience, not recomputed.
	FieldProj struct {
		Field Field
		Ty    tp.Type
	}

	// IndexProj subscripts by a runtime-computed value.
	IndexProj struct {
		Index Operand
	}

	// ConstantIndex is static slice-pattern indexing:
	//
	//	[X, _, .., _, _] => {Offset: 0, MinLength: 4, FromEnd: false}
	//	[_, X, .., _, _] => {Offset: 1, MinLength: 4, FromEnd: false}
	//	[_, _, .., X, _] => {Offset: 2, MinLength: 4, FromEnd: true}
	//	[_, _, .., _, X] => {Offset: 1, MinLength: 4, FromEnd: true}
	//
	// The producer guarantees the indexed value is at least
	// MinLength long.
	ConstantIndex struct {
		// Offset counts from the front, or from the back if FromEnd.
		Offset    uint32
		MinLength uint32
		FromEnd   bool
	}

	// Downcast narrows a multi-variant aggregate to one variant.
	// Legal only immediately preceding a FieldProj.
	Downcast struct {
		Adt     *tp.Adt
		Variant int
	}
)

func (Var) isPlace()           {}
func (Temp) isPlace()          {}
func (Arg) isPlace()           {}
func (Static) isPlace()        {}
func (ReturnPointer) isPlace() {}
func (*Projection) isPlace()   {}

func (Deref) isProjElem()         {}
func (FieldProj) isProjElem()     {}
func (IndexProj) isProjElem()     {}
func (ConstantIndex) isProjElem() {}
func (Downcast) isProjElem()      {}

func (v Var) String() string  { return fmt.Sprintf("var%d", uint32(v)) }
func (t Temp) String() string { return fmt.Sprintf("tmp%d", uint32(t)) }
func (a Arg) String() string  { return fmt.Sprintf("arg%d", uint32(a)) }

// ElemOf appends one projection step to a place.
func ElemOf(base Place, elem ProjElem) Place {
	return &Projection{Base: base, Elem: elem}
}

// DerefOf is (*base).
func DerefOf(base Place) Place {
	return ElemOf(base, Deref{})
}

// FieldOf is (base.f: ty).
func FieldOf(base Place, f Field, ty tp.Type) Place {
	return ElemOf(base, FieldProj{Field: f, Ty: ty})
}

// IndexOf is base[index].
func IndexOf(base Place, index Operand) Place {
	return ElemOf(base, IndexProj{Index: index})
}
