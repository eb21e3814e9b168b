package mir

import (
	"bytes"
	"math"

	"github.com/rill-lang/rill/compiler/source"
	"github.com/rill-lang/rill/compiler/tp"
)

type (
	// Constant is a compile-time value. Two constants are equal if
	// they are the same constant syntactically, which is not the same
	// as comparing the runtime values: a NaN float literal is equal
	// to itself here.
	Constant struct {
		Span    source.Span
		Ty      tp.Type
		Literal Literal
	}

	Literal interface {
		isLiteral()
		eqLiteral(Literal) bool
	}

	// ItemLit refers to a named constant item with its generic
	// instantiation.
	ItemLit struct {
		Item   tp.Item
		Substs tp.Substs
	}

	// ValueLit is an inline value.
	ValueLit struct {
		Value ConstVal
	}

	ConstVal interface {
		isConstVal()
		eqConst(ConstVal) bool
	}

	Float    float64
	Integral int64
	Str      string
	ByteStr  []byte
	Bool     bool
	Char     rune

	// StructLit refers back to the syntax node of a structural
	// literal (struct, tuple, array or repeat expression).
	StructLit source.NodeID

	// Function refers to a fn item.
	Function tp.Item

	// Dummy marks an unreachable constant. It must never appear in a
	// finished body; rendering one is fatal.
	Dummy struct{}

	// TypedConstVal is a typed compile-time length, as used by
	// Repeat.
	TypedConstVal struct {
		Ty    tp.Type
		Span  source.Span
		Value uint64
	}
)

func (ItemLit) isLiteral()  {}
func (ValueLit) isLiteral() {}

func (Float) isConstVal()     {}
func (Integral) isConstVal()  {}
func (Str) isConstVal()       {}
func (ByteStr) isConstVal()   {}
func (Bool) isConstVal()      {}
func (Char) isConstVal()      {}
func (StructLit) isConstVal() {}
func (Function) isConstVal()  {}
func (Dummy) isConstVal()     {}

// Eq is syntactic representation equality.
func (c Constant) Eq(o Constant) bool {
	return c.Span == o.Span && c.Ty == o.Ty &&
		c.Literal != nil && o.Literal != nil &&
		c.Literal.eqLiteral(o.Literal)
}

func (l ItemLit) eqLiteral(other Literal) bool {
	o, ok := other.(ItemLit)
	if !ok || l.Item != o.Item || len(l.Substs) != len(o.Substs) {
		return false
	}

	for i := range l.Substs {
		if l.Substs[i] != o.Substs[i] {
			return false
		}
	}

	return true
}

func (l ValueLit) eqLiteral(other Literal) bool {
	o, ok := other.(ValueLit)

	return ok && l.Value.eqConst(o.Value)
}

// Floats compare by bit pattern: the same NaN literal is the same
// constant.
func (v Float) eqConst(other ConstVal) bool {
	o, ok := other.(Float)

	return ok && math.Float64bits(float64(v)) == math.Float64bits(float64(o))
}

func (v Integral) eqConst(other ConstVal) bool {
	o, ok := other.(Integral)

	return ok && v == o
}

func (v Str) eqConst(other ConstVal) bool {
	o, ok := other.(Str)

	return ok && v == o
}

func (v ByteStr) eqConst(other ConstVal) bool {
	o, ok := other.(ByteStr)

	return ok && bytes.Equal(v, o)
}

func (v Bool) eqConst(other ConstVal) bool {
	o, ok := other.(Bool)

	return ok && v == o
}

func (v Char) eqConst(other ConstVal) bool {
	o, ok := other.(Char)

	return ok && v == o
}

func (v StructLit) eqConst(other ConstVal) bool {
	o, ok := other.(StructLit)

	return ok && v == o
}

func (v Function) eqConst(other ConstVal) bool {
	o, ok := other.(Function)

	return ok && v == o
}

func (Dummy) eqConst(other ConstVal) bool {
	_, ok := other.(Dummy)

	return ok
}
