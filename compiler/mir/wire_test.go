package mir

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rill-lang/rill/compiler/source"
	"github.com/rill-lang/rill/compiler/tp"
)

// floatsByBits makes cmp agree with constant identity: the wire format
// preserves float bit patterns, NaN included.
var floatsByBits = cmp.Comparer(func(x, y Float) bool {
	return math.Float64bits(float64(x)) == math.Float64bits(float64(y))
})

func assign(pl Place, rv Rvalue) Statement {
	return Statement{Scope: 0, Kind: Assign{Place: pl, Rvalue: rv}}
}

// fullBody builds a body touching every place root, projection elem,
// operand, rvalue, aggregate kind, literal, constant value and
// terminator the format knows.
func fullBody() *Body {
	shape := threeVariants()

	deep := DerefOf(FieldOf(
		ElemOf(Var(0), Downcast{Adt: shape, Variant: 1}),
		NewField(0), "f64"))

	return &Body{
		ReturnTy: "i32",
		Span:     source.Span{Lo: 0, Hi: 120},
		Scopes: []ScopeData{
			{Parent: NoScope, Span: source.Span{Lo: 0, Hi: 120}},
			{Parent: 0, Span: source.Span{Lo: 10, Hi: 90}},
		},
		Vars: []VarDecl{
			{Mut: Mut, Name: "x", Ty: "Shape", Scope: 0, Span: source.Span{Lo: 4, Hi: 5}},
			{Mut: Not, Name: "y", Ty: "f64", Scope: 1},
		},
		Args: []ArgDecl{
			{Ty: "i32", DebugName: "n"},
			{Ty: "(i32, i32)", Spread: true},
		},
		Temps: []TempDecl{
			{Ty: "i32"},
			{Ty: "&str"},
		},
		Upvars: []UpvarDecl{
			{DebugName: "cap", ByRef: true},
		},
		Blocks: []BlockData{
			{
				Statements: []Statement{
					assign(Var(1), Use{Op: Consume{Place: deep}}),
					assign(Temp(0), Use{Op: intOp(1)}),
					assign(Temp(0), Repeat{
						Op:    intOp(0),
						Count: TypedConstVal{Ty: "usize", Span: source.Span{Lo: 7, Hi: 9}, Value: 32},
					}),
					assign(Temp(0), Ref{Region: "'a", Kind: BorrowMut, Place: Var(0)}),
					assign(Temp(0), Ref{Kind: BorrowUnique, Place: DerefOf(Arg(0))}),
					assign(Temp(0), Len{Place: IndexOf(Var(0), Consume{Place: Temp(0)})}),
					assign(Temp(0), Cast{Kind: CastUnsize, Op: Consume{Place: Var(0)}, Ty: "&[u8]"}),
					assign(Temp(0), BinaryOp{Op: Mul, L: Consume{Place: Arg(1)}, R: intOp(2)}),
					assign(Temp(0), UnaryOp{Op: UnNot, X: Consume{Place: Static("FLAG")}}),
					assign(Temp(0), BoxAlloc{Ty: "i32"}),
					assign(Temp(0), Aggregate{Kind: AggVec{}, Ops: []Operand{intOp(1), intOp(2)}}),
					assign(Temp(0), Aggregate{Kind: AggTuple{}, Ops: []Operand{}}),
					assign(Temp(0), Aggregate{
						Kind: AggAdt{Adt: shape, Variant: 2, Substs: tp.Substs{"f64"}},
						Ops:  []Operand{intOp(1), intOp(2)},
					}),
					assign(Temp(0), Aggregate{
						Kind: AggClosure{Item: "main::{{closure}}", Substs: tp.Substs{"i32"}},
						Ops:  []Operand{Consume{Place: Var(0)}},
					}),
					assign(Temp(0), Slice{
						Input:     ElemOf(Var(0), ConstantIndex{Offset: 1, MinLength: 4, FromEnd: true}),
						FromStart: 1,
						FromEnd:   2,
					}),
					assign(ReturnPointer{}, InlineAsm{
						Asm:     "nop",
						Outputs: []Place{Var(1)},
						Inputs:  []Operand{intOp(1)},
					}),
					assign(Temp(1), Use{Op: ConstOperand{Constant: Constant{
						Ty:      "&str",
						Literal: ValueLit{Value: Str("hi")},
					}}}),
					assign(Temp(1), Use{Op: ConstOperand{Constant: Constant{
						Ty:      "&[u8]",
						Literal: ValueLit{Value: ByteStr([]byte{0, 1, 255})},
					}}}),
					assign(Temp(1), Use{Op: ConstOperand{Constant: Constant{
						Ty:      "bool",
						Literal: ValueLit{Value: Bool(true)},
					}}}),
					assign(Temp(1), Use{Op: ConstOperand{Constant: Constant{
						Ty:      "char",
						Literal: ValueLit{Value: Char('日')},
					}}}),
					assign(Temp(1), Use{Op: ConstOperand{Constant: Constant{
						Ty:      "S",
						Literal: ValueLit{Value: StructLit(9)},
					}}}),
					assign(Temp(1), Use{Op: ConstOperand{Constant: Constant{
						Ty:      "fn(i32)",
						Literal: ValueLit{Value: Function("foo")},
					}}}),
					assign(Temp(1), Use{Op: ConstOperand{Constant: Constant{
						Ty:      "f64",
						Literal: ValueLit{Value: Float(math.NaN())},
					}}}),
					assign(Temp(1), Use{Op: itemOp("DEFAULT", "i32", "u8")}),
				},
				Terminator: &Terminator{
					Span:  source.Span{Lo: 20, Hi: 21},
					Scope: 1,
					Kind:  &If{Cond: Consume{Place: Temp(0)}, Then: 1, Else: 2},
				},
			},
			{
				Terminator: &Terminator{Kind: &SwitchInt{
					Discr:    Var(1),
					SwitchTy: "i32",
					Values:   []ConstVal{Integral(0), Integral(7)},
					Targets:  []BasicBlock{2, 3, 4},
				}},
			},
			{
				Terminator: &Terminator{Kind: &Switch{
					Discr:   Var(0),
					Adt:     shape,
					Targets: []BasicBlock{3, 4, 5},
				}},
			},
			{
				Terminator: &Terminator{Kind: &Drop{Value: Var(0), Target: 5, Unwind: bbp(7)}},
			},
			{
				Terminator: &Terminator{Kind: &Call{
					Func:        itemOp("add", "i32"),
					Args:        []Operand{Consume{Place: Arg(0)}, intOp(3)},
					Destination: &CallDestination{Place: Temp(0), Target: 5},
					Cleanup:     bbp(7),
				}},
			},
			{
				Terminator: &Terminator{Kind: &Goto{Target: 6}},
			},
			{
				Terminator: &Terminator{Kind: &Return{}},
			},
			{
				IsCleanup:  true,
				Terminator: &Terminator{Kind: &Resume{}},
			},
		},
	}
}

func TestBodyRoundTrip(t *testing.T) {
	m := fullBody()

	data, err := EncodeBody(m)
	require.NoError(t, err)

	got, err := DecodeBody(data)
	require.NoError(t, err)

	if diff := cmp.Diff(m, got, floatsByBits); diff != "" {
		t.Errorf("decoded body differs (-want +got):\n%s", diff)
	}

	// A second trip reproduces the same bytes.
	data2, err := EncodeBody(got)
	require.NoError(t, err)

	assert.Equal(t, string(data), string(data2))
}

func TestRoundTripPreservesNilSlices(t *testing.T) {
	m := &Body{
		ReturnTy: "()",
		Blocks: []BlockData{
			{Terminator: &Terminator{Kind: &Call{Func: itemOp("f")}}},
			{Terminator: &Terminator{Kind: &Return{}}, Statements: []Statement{}},
		},
	}

	data, err := EncodeBody(m)
	require.NoError(t, err)

	got, err := DecodeBody(data)
	require.NoError(t, err)

	assert.Nil(t, got.Vars)
	assert.Nil(t, got.Blocks[0].Statements)
	assert.Nil(t, got.Blocks[0].Terminator.Kind.(*Call).Args)
	assert.NotNil(t, got.Blocks[1].Statements)
	assert.Len(t, got.Blocks[1].Statements, 0)

	if diff := cmp.Diff(m, got); diff != "" {
		t.Errorf("decoded body differs (-want +got):\n%s", diff)
	}
}

func TestNaNConstantRoundTrip(t *testing.T) {
	c := Constant{Ty: "f64", Literal: ValueLit{Value: Float(math.NaN())}}

	raw, err := marshalConstant(c)
	require.NoError(t, err)

	got, err := unmarshalConstant(raw)
	require.NoError(t, err)

	assert.True(t, c.Eq(got), "NaN must survive the trip as the same constant")
}

func TestDecodeErrors(t *testing.T) {
	_, err := DecodeBody([]byte(`{`))
	assert.Error(t, err)

	// Unknown terminator kind.
	_, err = DecodeBody([]byte(`{"blocks": [{"terminator": {"span": {}, "scope": 0, "kind": {"k": "bogus"}}}]}`))
	assert.Error(t, err)

	// Unknown place kind buried in a statement.
	_, err = DecodeBody([]byte(`{"blocks": [{"statements": [{"span": {}, "scope": 0, "kind": {"k": "assign", "v": {"place": {"k": "nope"}, "rvalue": {"k": "use", "v": {"op": {"k": "consume", "v": {"k": "var", "v": 0}}}}}}}]}]}`))
	assert.Error(t, err)
}
