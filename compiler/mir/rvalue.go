package mir

import (
	"github.com/rill-lang/rill/compiler/tp"
)

type (
	// Operand is a readable value source inside an rvalue or
	// terminator. Operands are intentionally this limited so rvalues
	// cannot nest.
	Operand interface {
		isOperand()
	}

	// Consume reads a place; whether that is a move or a copy is
	// decided by the place's type, outside this layer.
	Consume struct {
		Place Place
	}

	// ConstOperand supplies a compile-time constant.
	ConstOperand struct {
		Constant Constant
	}

	// Rvalue is a value-producing operation. The set is closed; side
	// effects beyond evaluating the operands are not expressible.
	Rvalue interface {
		isRvalue()
	}

	// Use is the identity of one operand.
	Use struct {
		Op Operand
	}

	// Repeat builds a fixed-length homogeneous sequence: [x; 32].
	Repeat struct {
		Op    Operand
		Count TypedConstVal
	}

	// Ref takes a reference to a place.
	Ref struct {
		Region tp.Region
		Kind   BorrowKind
		Place  Place
	}

	// Len is the length of a sequence-typed place.
	Len struct {
		Place Place
	}

	// Cast converts an operand to a type under one of the closed,
	// non-overlapping conversion policies.
	Cast struct {
		Kind CastKind
		Op   Operand
		Ty   tp.Type
	}

	BinaryOp struct {
		Op   BinOp
		L, R Operand
	}

	UnaryOp struct {
		Op UnOp
		X  Operand
	}

	// BoxAlloc produces an uninitialized owning heap allocation.
	BoxAlloc struct {
		Ty tp.Type
	}

	// Aggregate constructs a whole sequence/tuple/variant/closure
	// value at once. Operand order equals declared field order. Kept
	// distinct from field-by-field assignment because destructor
	// insertion treats whole-aggregate construction differently.
	Aggregate struct {
		Kind AggKind
		Ops  []Operand
	}

	// Slice is the sub-range view input[FromStart .. len-FromEnd],
	// created by slice pattern matching.
	Slice struct {
		Input     Place
		FromStart int
		FromEnd   int
	}

	// InlineAsm is an opaque assembly escape. Fidelity only; no
	// semantic modeling.
	InlineAsm struct {
		Asm     string
		Outputs []Place
		Inputs  []Operand
	}

	// AggKind says what an Aggregate builds.
	AggKind interface {
		isAggKind()
	}

	AggVec   struct{}
	AggTuple struct{}

	AggAdt struct {
		Adt     *tp.Adt
		Variant int
		Substs  tp.Substs
	}

	AggClosure struct {
		Item   tp.Item
		Substs tp.Substs
	}

	BorrowKind int
	CastKind   int
	BinOp      int
	UnOp       int
)

func (Consume) isOperand()      {}
func (ConstOperand) isOperand() {}

func (Use) isRvalue()       {}
func (Repeat) isRvalue()    {}
func (Ref) isRvalue()       {}
func (Len) isRvalue()       {}
func (Cast) isRvalue()      {}
func (BinaryOp) isRvalue()  {}
func (UnaryOp) isRvalue()   {}
func (BoxAlloc) isRvalue()  {}
func (Aggregate) isRvalue() {}
func (Slice) isRvalue()     {}
func (InlineAsm) isRvalue() {}

func (AggVec) isAggKind()     {}
func (AggTuple) isAggKind()   {}
func (AggAdt) isAggKind()     {}
func (AggClosure) isAggKind() {}

const (
	// BorrowShared: referent must be immutable, may alias.
	BorrowShared BorrowKind = iota

	// BorrowUnique: referent is immutable but must not alias. There
	// is no surface syntax for it; only closure-capture lowering may
	// produce it, when a closure borrows or mutates through a &mut
	// it captured. That is a producer contract, not enforced here.
	// Aliasing analyses depend on the distinction from BorrowMut, so
	// the two must never be conflated.
	BorrowUnique

	// BorrowMut: referent is mutable and must not alias.
	BorrowMut
)

const (
	// CastMisc is the generic numeric or pointer conversion.
	CastMisc CastKind = iota

	// CastReifyFnPointer converts the unique zero-sized type of a fn
	// item to a function pointer.
	CastReifyFnPointer

	// CastUnsafeFnPointer converts a safe fn pointer to an unsafe one.
	CastUnsafeFnPointer

	// CastUnsize converts a thin pointer to a fat one, e.g. &[T; n]
	// to &[T]. The details are codegen's problem once the concrete
	// types are known.
	CastUnsize
)

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Rem
	BitXor
	BitAnd
	BitOr
	Shl
	Shr
	Eq
	Lt
	Le
	Ne
	Ge
	Gt
)

const (
	// UnNot is logical inversion.
	UnNot UnOp = iota
	// UnNeg is negation.
	UnNeg
)

var binOpNames = [...]string{
	Add: "Add", Sub: "Sub", Mul: "Mul", Div: "Div", Rem: "Rem",
	BitXor: "BitXor", BitAnd: "BitAnd", BitOr: "BitOr",
	Shl: "Shl", Shr: "Shr",
	Eq: "Eq", Lt: "Lt", Le: "Le", Ne: "Ne", Ge: "Ge", Gt: "Gt",
}

func (op BinOp) String() string {
	if int(op) < len(binOpNames) {
		return binOpNames[op]
	}

	return "BinOp?"
}

func (op UnOp) String() string {
	switch op {
	case UnNot:
		return "Not"
	case UnNeg:
		return "Neg"
	}

	return "UnOp?"
}

func (k BorrowKind) String() string {
	switch k {
	case BorrowShared:
		return "Shared"
	case BorrowUnique:
		return "Unique"
	case BorrowMut:
		return "Mut"
	}

	return "BorrowKind?"
}

func (k CastKind) String() string {
	switch k {
	case CastMisc:
		return "Misc"
	case CastReifyFnPointer:
		return "ReifyFnPointer"
	case CastUnsafeFnPointer:
		return "UnsafeFnPointer"
	case CastUnsize:
		return "Unsize"
	}

	return "CastKind?"
}
