package mir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rill-lang/rill/compiler/tp"
)

func itemOp(it tp.Item, substs ...tp.Type) Operand {
	return ConstOperand{Constant: Constant{Literal: ItemLit{Item: it, Substs: substs}}}
}

func render(t *testing.T, p Printer, x any) string {
	t.Helper()

	b, err := p.Append(nil, x)
	require.NoError(t, err)

	return string(b)
}

func TestFnRendering(t *testing.T) {
	m := &Body{
		ReturnTy: "()",
		Vars: []VarDecl{
			{Mut: Mut, Name: "x", Ty: "i32", Scope: 0},
		},
		Scopes: []ScopeData{
			{Parent: NoScope},
		},
		Blocks: []BlockData{
			{
				Statements: []Statement{
					{Kind: Assign{
						Place:  Var(0),
						Rvalue: BinaryOp{Op: Add, L: intOp(1), R: intOp(2)},
					}},
				},
				Terminator: &Terminator{Kind: &Goto{Target: 1}},
			},
			{
				Terminator: &Terminator{Kind: &Return{}},
			},
		},
	}

	exp := `fn() -> () {
	let mut var0: i32;	// x

	bb0: {
		var0 = Add(const 1, const 2)
		goto -> bb1
	}

	bb1: {
		return
	}
}
`

	assert.Equal(t, exp, render(t, Printer{}, m))
}

func TestFnRenderingCallCleanup(t *testing.T) {
	m := &Body{
		ReturnTy: "i32",
		Args: []ArgDecl{
			{Ty: "i32"},
		},
		Temps: []TempDecl{
			{Ty: "i32"},
		},
		Blocks: []BlockData{
			{
				Terminator: &Terminator{Kind: &Call{
					Func:        itemOp("foo"),
					Args:        []Operand{Consume{Place: Arg(0)}},
					Destination: &CallDestination{Place: Temp(0), Target: 1},
					Cleanup:     bbp(2),
				}},
			},
			{
				Statements: []Statement{
					{Kind: Assign{
						Place:  ReturnPointer{},
						Rvalue: Use{Op: Consume{Place: Temp(0)}},
					}},
				},
				Terminator: &Terminator{Kind: &Return{}},
			},
			{
				IsCleanup:  true,
				Terminator: &Terminator{Kind: &Resume{}},
			},
		},
	}

	exp := `fn(arg0: i32) -> i32 {
	let tmp0: i32;

	bb0: {
		tmp0 = foo(arg0) -> [return: bb1, unwind: bb2]
	}

	bb1: {
		return = tmp0
		return
	}

	bb2 (cleanup): {
		resume
	}
}
`

	assert.Equal(t, exp, render(t, Printer{}, m))
}

func TestTerminatorRendering(t *testing.T) {
	for _, tc := range []struct {
		kind TerminatorKind
		want string
	}{
		{&Goto{Target: 3}, "goto -> bb3"},
		{
			&If{Cond: Consume{Place: Var(0)}, Then: 1, Else: 2},
			"if(var0) -> [true: bb1, false: bb2]",
		},
		{
			&Switch{Discr: Var(0), Adt: threeVariants(), Targets: []BasicBlock{1, 2, 3}},
			"switch(var0) -> [Point: bb1, Circle: bb2, Rect: bb3]",
		},
		{
			&SwitchInt{
				Discr:    Var(0),
				SwitchTy: "i32",
				Values:   []ConstVal{Integral(1), Integral(7)},
				Targets:  []BasicBlock{1, 2, 3},
			},
			"switchInt(var0) -> [1: bb1, 7: bb2, otherwise: bb3]",
		},
		{&Return{}, "return"},
		{&Resume{}, "resume"},
		{&Drop{Value: Var(2), Target: 4}, "drop(var2) -> bb4"},
		{
			&Drop{Value: Var(2), Target: 4, Unwind: bbp(5)},
			"drop(var2) -> [return: bb4, unwind: bb5]",
		},
		{&Call{Func: itemOp("panic")}, "panic()"},
		{
			&Call{
				Func:        itemOp("add", "i32"),
				Args:        []Operand{intOp(1), Consume{Place: Arg(0)}},
				Destination: &CallDestination{Place: Temp(0), Target: 1},
			},
			"tmp0 = add::<i32>(const 1, arg0) -> bb1",
		},
	} {
		assert.Equal(t, tc.want, render(t, Printer{}, tc.kind), "%#v", tc.kind)
	}
}

func TestRvalueRendering(t *testing.T) {
	for _, tc := range []struct {
		rv   Rvalue
		want string
	}{
		{Use{Op: intOp(1)}, "const 1"},
		{Use{Op: Consume{Place: Var(0)}}, "var0"},
		{
			Repeat{Op: intOp(0), Count: TypedConstVal{Ty: "usize", Value: 32}},
			"[const 0; const 32]",
		},
		{Ref{Kind: BorrowShared, Place: Var(0)}, "&var0"},
		{Ref{Kind: BorrowUnique, Place: Var(0)}, "&mut var0"},
		{Ref{Kind: BorrowMut, Place: Var(0)}, "&mut var0"},
		{Len{Place: Var(1)}, "Len(var1)"},
		{
			Cast{Kind: CastMisc, Op: intOp(1), Ty: "f64"},
			"const 1 as f64 (Misc)",
		},
		{
			Cast{Kind: CastUnsize, Op: Consume{Place: Var(0)}, Ty: "&[u8]"},
			"var0 as &[u8] (Unsize)",
		},
		{BinaryOp{Op: Shl, L: intOp(1), R: intOp(4)}, "Shl(const 1, const 4)"},
		{UnaryOp{Op: UnNeg, X: intOp(1)}, "Neg(const 1)"},
		{UnaryOp{Op: UnNot, X: Consume{Place: Var(0)}}, "Not(var0)"},
		{BoxAlloc{Ty: "i32"}, "Box(i32)"},
		{Slice{Input: Var(0), FromStart: 1, FromEnd: 2}, "var0[1..-2]"},
		{
			InlineAsm{Asm: "nop", Outputs: []Place{Var(0)}, Inputs: []Operand{intOp(1)}},
			`asm!("nop" : [var0] : [const 1])`,
		},
	} {
		assert.Equal(t, tc.want, render(t, Printer{}, tc.rv), "%#v", tc.rv)
	}
}

func TestAggregateRendering(t *testing.T) {
	point := &tp.Adt{
		Name: "Point",
		Variants: []tp.Variant{
			{Name: "Point", Kind: tp.Struct, Fields: []tp.Field{
				{Name: "x", Type: "f64"},
				{Name: "y", Type: "f64"},
			}},
		},
	}

	for _, tc := range []struct {
		rv   Rvalue
		want string
	}{
		{
			Aggregate{Kind: AggVec{}, Ops: []Operand{intOp(1), intOp(2)}},
			"[const 1, const 2]",
		},
		{Aggregate{Kind: AggTuple{}}, "()"},
		{Aggregate{Kind: AggTuple{}, Ops: []Operand{intOp(1)}}, "(const 1,)"},
		{
			Aggregate{Kind: AggTuple{}, Ops: []Operand{intOp(1), intOp(2)}},
			"(const 1, const 2)",
		},
		{
			Aggregate{Kind: AggAdt{Adt: threeVariants(), Variant: 0}},
			"Shape::Point",
		},
		{
			Aggregate{
				Kind: AggAdt{Adt: threeVariants(), Variant: 1},
				Ops:  []Operand{intOp(1)},
			},
			"Shape::Circle(const 1)",
		},
		{
			Aggregate{
				Kind: AggAdt{Adt: threeVariants(), Variant: 2},
				Ops:  []Operand{intOp(1), intOp(2)},
			},
			"Shape::Rect { w: const 1, h: const 2 }",
		},
		{
			// Single-variant types render without the variant name.
			Aggregate{
				Kind: AggAdt{Adt: point, Variant: 0, Substs: tp.Substs{"f64"}},
				Ops:  []Operand{intOp(1), intOp(2)},
			},
			"Point::<f64> { x: const 1, y: const 2 }",
		},
		{
			Aggregate{Kind: AggClosure{Item: "main::{{closure}}"}},
			"[closure@main::{{closure}}]",
		},
	} {
		assert.Equal(t, tc.want, render(t, Printer{}, tc.rv), "%#v", tc.rv)
	}
}

func TestClosureUpvarNames(t *testing.T) {
	m := &Body{
		Upvars: []UpvarDecl{
			{DebugName: "n", ByRef: true},
		},
	}

	rv := Aggregate{
		Kind: AggClosure{Item: "main::{{closure}}"},
		Ops:  []Operand{Consume{Place: Var(0)}},
	}

	assert.Equal(t, "[closure@main::{{closure}}] { n: var0 }", render(t, Printer{Body: m}, rv))

	// Without the enclosing body the capture names are unknown.
	assert.Equal(t, "[closure@main::{{closure}}] { var0 }", render(t, Printer{}, rv))
}

func TestConstantRendering(t *testing.T) {
	for _, tc := range []struct {
		c    Constant
		want string
	}{
		{Constant{Ty: "i32", Literal: ValueLit{Value: Integral(-5)}}, "const -5"},
		{Constant{Ty: "f64", Literal: ValueLit{Value: Float(3.25)}}, "const 3.25"},
		{Constant{Ty: "&str", Literal: ValueLit{Value: Str("hi")}}, `const "hi"`},
		{Constant{Ty: "&[u8]", Literal: ValueLit{Value: ByteStr([]byte("ab"))}}, `const b"ab"`},
		{Constant{Ty: "bool", Literal: ValueLit{Value: Bool(true)}}, "const true"},
		{Constant{Ty: "char", Literal: ValueLit{Value: Char('q')}}, "const 'q'"},
		{Constant{Ty: "S", Literal: ValueLit{Value: StructLit(7)}}, "const node#7"},
		{Constant{Ty: "fn()", Literal: ValueLit{Value: Function("foo")}}, "const foo"},
		{Constant{Ty: "i32", Literal: ItemLit{Item: "LIMIT"}}, "LIMIT"},
		{
			Constant{Ty: "T", Literal: ItemLit{Item: "DEFAULT", Substs: tp.Substs{"i32", "u8"}}},
			"DEFAULT::<i32, u8>",
		},
	} {
		assert.Equal(t, tc.want, render(t, Printer{}, tc.c), "%#v", tc.c)
	}
}

func TestDummyConstantFatal(t *testing.T) {
	c := Constant{Ty: "!", Literal: ValueLit{Value: Dummy{}}}

	assert.Panics(t, func() {
		_, _ = Printer{}.Append(nil, c)
	})
}

func TestAppendUnsupported(t *testing.T) {
	_, err := Printer{}.Append(nil, 42)
	assert.Error(t, err)
}
