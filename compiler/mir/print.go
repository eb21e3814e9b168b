package mir

import (
	"strconv"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/rill-lang/rill/compiler/tp"
)

// Printer renders IR entities into a stable, human-oriented text form
// used for diagnostics and golden tests. It carries the enclosing
// body explicitly; renderers never reach into shared global state.
type Printer struct {
	Body *Body
}

// Append renders any IR entity.
func (p Printer) Append(b []byte, x any) ([]byte, error) {
	switch x := x.(type) {
	case *Body:
		return Printer{Body: x}.Fn(b), nil
	case Place:
		return p.Place(b, x), nil
	case Operand:
		return p.Operand(b, x), nil
	case Rvalue:
		return p.Rvalue(b, x), nil
	case Constant:
		return p.Constant(b, x), nil
	case *Statement:
		return p.Statement(b, x), nil
	case *Terminator:
		return p.Terminator(b, x), nil
	case TerminatorKind:
		return p.TerminatorKind(b, x), nil
	default:
		return nil, errors.New("unsupported type: %T", x)
	}
}

// Fn renders the whole body, mirroring its structural nesting.
func (p Printer) Fn(b []byte) []byte {
	m := p.Body

	b = append(b, "fn("...)

	for i, a := range m.Args {
		if i != 0 {
			b = append(b, ", "...)
		}

		b = hfmt.Appendf(b, "arg%d: %s", i, a.Ty)
	}

	b = hfmt.Appendf(b, ") -> %s {\n", m.ReturnTy)

	for i, v := range m.Vars {
		mut := ""
		if v.Mut == Mut {
			mut = "mut "
		}

		b = app(b, 1, "let %s%v: %s;", mut, Var(i), v.Ty)

		if v.Name != "" {
			b = hfmt.Appendf(b, "\t// %s", v.Name)
		}

		b = append(b, '\n')
	}

	for i, t := range m.Temps {
		b = app(b, 1, "let %v: %s;\n", Temp(i), t.Ty)
	}

	for i, d := range m.Blocks {
		b = append(b, '\n')

		cleanup := ""
		if d.IsCleanup {
			cleanup = " (cleanup)"
		}

		b = app(b, 1, "%v%s: {\n", NewBasicBlock(i), cleanup)

		for j := range d.Statements {
			b = app(b, 2, "")
			b = p.Statement(b, &d.Statements[j])
			b = append(b, '\n')
		}

		b = app(b, 2, "")
		b = p.Terminator(b, d.Term())
		b = append(b, '\n')

		b = app(b, 1, "}\n")
	}

	b = append(b, "}\n"...)

	return b
}

func (p Printer) Statement(b []byte, s *Statement) []byte {
	switch k := s.Kind.(type) {
	case Assign:
		b = p.Place(b, k.Place)
		b = append(b, " = "...)
		b = p.Rvalue(b, k.Rvalue)
	default:
		invariant("unknown statement kind: %T", s.Kind)
	}

	return b
}

// Terminator renders the head followed by the successor edges, with
// one label per edge.
func (p Printer) Terminator(b []byte, t *Terminator) []byte {
	return p.TerminatorKind(b, t.Kind)
}

func (p Printer) TerminatorKind(b []byte, k TerminatorKind) []byte {
	b = p.terminatorHead(b, k)

	succ := k.Successors()
	labels := k.SuccessorLabels()

	if succ.Len() != len(labels) {
		invariant("successor count mismatch: %v edges, %v labels", succ.Len(), len(labels))
	}

	switch succ.Len() {
	case 0:
	case 1:
		b = hfmt.Appendf(b, " -> %v", succ.At(0))
	default:
		b = append(b, " -> ["...)

		for i := 0; i < succ.Len(); i++ {
			if i != 0 {
				b = append(b, ", "...)
			}

			b = hfmt.Appendf(b, "%s: %v", labels[i], succ.At(i))
		}

		b = append(b, ']')
	}

	return b
}

func (p Printer) terminatorHead(b []byte, k TerminatorKind) []byte {
	switch k := k.(type) {
	case *Goto:
		b = append(b, "goto"...)
	case *If:
		b = append(b, "if("...)
		b = p.Operand(b, k.Cond)
		b = append(b, ')')
	case *Switch:
		b = append(b, "switch("...)
		b = p.Place(b, k.Discr)
		b = append(b, ')')
	case *SwitchInt:
		b = append(b, "switchInt("...)
		b = p.Place(b, k.Discr)
		b = append(b, ')')
	case *Return:
		b = append(b, "return"...)
	case *Resume:
		b = append(b, "resume"...)
	case *Drop:
		b = append(b, "drop("...)
		b = p.Place(b, k.Value)
		b = append(b, ')')
	case *Call:
		if k.Destination != nil {
			b = p.Place(b, k.Destination.Place)
			b = append(b, " = "...)
		}

		b = p.Operand(b, k.Func)
		b = append(b, '(')

		for i, a := range k.Args {
			if i != 0 {
				b = append(b, ", "...)
			}

			b = p.Operand(b, a)
		}

		b = append(b, ')')
	default:
		invariant("unknown terminator kind: %T", k)
	}

	return b
}

func (p Printer) Place(b []byte, pl Place) []byte {
	switch pl := pl.(type) {
	case Var:
		b = hfmt.Appendf(b, "var%d", uint32(pl))
	case Temp:
		b = hfmt.Appendf(b, "tmp%d", uint32(pl))
	case Arg:
		b = hfmt.Appendf(b, "arg%d", uint32(pl))
	case Static:
		b = append(b, string(pl)...)
	case ReturnPointer:
		b = append(b, "return"...)
	case *Projection:
		b = p.projection(b, pl)
	default:
		invariant("unknown place: %T", pl)
	}

	return b
}

func (p Printer) projection(b []byte, pr *Projection) []byte {
	switch elem := pr.Elem.(type) {
	case Downcast:
		b = append(b, '(')
		b = p.Place(b, pr.Base)
		b = hfmt.Appendf(b, " as %s)", elem.Adt.Variants[elem.Variant].Name)
	case Deref:
		b = append(b, "(*"...)
		b = p.Place(b, pr.Base)
		b = append(b, ')')
	case FieldProj:
		b = append(b, '(')
		b = p.Place(b, pr.Base)
		b = hfmt.Appendf(b, ".%d: %s)", elem.Field.Index(), elem.Ty)
	case IndexProj:
		b = p.Place(b, pr.Base)
		b = append(b, '[')
		b = p.Operand(b, elem.Index)
		b = append(b, ']')
	case ConstantIndex:
		b = p.Place(b, pr.Base)

		if elem.FromEnd {
			b = hfmt.Appendf(b, "[-%d of %d]", elem.Offset, elem.MinLength)
		} else {
			b = hfmt.Appendf(b, "[%d of %d]", elem.Offset, elem.MinLength)
		}
	default:
		invariant("unknown projection elem: %T", pr.Elem)
	}

	return b
}

func (p Printer) Operand(b []byte, op Operand) []byte {
	switch op := op.(type) {
	case Consume:
		b = p.Place(b, op.Place)
	case ConstOperand:
		b = p.Constant(b, op.Constant)
	default:
		invariant("unknown operand: %T", op)
	}

	return b
}

func (p Printer) Rvalue(b []byte, rv Rvalue) []byte {
	switch rv := rv.(type) {
	case Use:
		b = p.Operand(b, rv.Op)
	case Repeat:
		b = append(b, '[')
		b = p.Operand(b, rv.Op)
		b = hfmt.Appendf(b, "; const %d]", rv.Count.Value)
	case Ref:
		b = append(b, '&')

		switch rv.Kind {
		case BorrowMut, BorrowUnique:
			b = append(b, "mut "...)
		}

		b = p.Place(b, rv.Place)
	case Len:
		b = append(b, "Len("...)
		b = p.Place(b, rv.Place)
		b = append(b, ')')
	case Cast:
		b = p.Operand(b, rv.Op)
		b = hfmt.Appendf(b, " as %s (%v)", rv.Ty, rv.Kind)
	case BinaryOp:
		b = hfmt.Appendf(b, "%v(", rv.Op)
		b = p.Operand(b, rv.L)
		b = append(b, ", "...)
		b = p.Operand(b, rv.R)
		b = append(b, ')')
	case UnaryOp:
		b = hfmt.Appendf(b, "%v(", rv.Op)
		b = p.Operand(b, rv.X)
		b = append(b, ')')
	case BoxAlloc:
		b = hfmt.Appendf(b, "Box(%s)", rv.Ty)
	case Aggregate:
		b = p.aggregate(b, rv)
	case Slice:
		b = p.Place(b, rv.Input)
		b = hfmt.Appendf(b, "[%d..-%d]", rv.FromStart, rv.FromEnd)
	case InlineAsm:
		b = hfmt.Appendf(b, "asm!(%q : ", rv.Asm)
		b = p.placeList(b, rv.Outputs)
		b = append(b, " : "...)
		b = p.operandList(b, rv.Inputs)
		b = append(b, ')')
	default:
		invariant("unknown rvalue: %T", rv)
	}

	return b
}

func (p Printer) aggregate(b []byte, rv Aggregate) []byte {
	switch kind := rv.Kind.(type) {
	case AggVec:
		b = p.operandList(b, rv.Ops)
	case AggTuple:
		switch len(rv.Ops) {
		case 0:
			b = append(b, "()"...)
		case 1:
			b = append(b, '(')
			b = p.Operand(b, rv.Ops[0])
			b = append(b, ",)"...)
		default:
			b = append(b, '(')

			for i, op := range rv.Ops {
				if i != 0 {
					b = append(b, ", "...)
				}

				b = p.Operand(b, op)
			}

			b = append(b, ')')
		}
	case AggAdt:
		v := kind.Adt.Variant(kind.Variant)

		b = append(b, kind.Adt.Name...)

		if len(kind.Adt.Variants) > 1 {
			b = hfmt.Appendf(b, "::%s", v.Name)
		}

		b = appendSubsts(b, kind.Substs)

		switch v.Kind {
		case tp.Unit:
		case tp.Tuple:
			b = append(b, '(')

			for i, op := range rv.Ops {
				if i != 0 {
					b = append(b, ", "...)
				}

				b = p.Operand(b, op)
			}

			b = append(b, ')')
		case tp.Struct:
			b = append(b, " { "...)

			for i, op := range rv.Ops {
				if i != 0 {
					b = append(b, ", "...)
				}

				b = hfmt.Appendf(b, "%s: ", v.Fields[i].Name)
				b = p.Operand(b, op)
			}

			b = append(b, " }"...)
		}
	case AggClosure:
		b = hfmt.Appendf(b, "[closure@%s]", kind.Item)

		if len(rv.Ops) == 0 {
			break
		}

		b = append(b, " { "...)

		for i, op := range rv.Ops {
			if i != 0 {
				b = append(b, ", "...)
			}

			if p.Body != nil && i < len(p.Body.Upvars) {
				b = hfmt.Appendf(b, "%s: ", p.Body.Upvars[i].DebugName)
			}

			b = p.Operand(b, op)
		}

		b = append(b, " }"...)
	default:
		invariant("unknown aggregate kind: %T", rv.Kind)
	}

	return b
}

func (p Printer) Constant(b []byte, c Constant) []byte {
	return p.Literal(b, c.Literal)
}

func (p Printer) Literal(b []byte, l Literal) []byte {
	switch l := l.(type) {
	case ItemLit:
		b = append(b, string(l.Item)...)
		b = appendSubsts(b, l.Substs)
	case ValueLit:
		b = append(b, "const "...)
		b = appendConstVal(b, l.Value)
	default:
		invariant("unknown literal: %T", l)
	}

	return b
}

func (p Printer) placeList(b []byte, pls []Place) []byte {
	b = append(b, '[')

	for i, pl := range pls {
		if i != 0 {
			b = append(b, ", "...)
		}

		b = p.Place(b, pl)
	}

	return append(b, ']')
}

func (p Printer) operandList(b []byte, ops []Operand) []byte {
	b = append(b, '[')

	for i, op := range ops {
		if i != 0 {
			b = append(b, ", "...)
		}

		b = p.Operand(b, op)
	}

	return append(b, ']')
}

// appendConstVal writes a constant value in a form close to source
// code; it also provides the value labels of switchInt edges.
func appendConstVal(b []byte, v ConstVal) []byte {
	switch v := v.(type) {
	case Float:
		b = strconv.AppendFloat(b, float64(v), 'g', -1, 64)
	case Integral:
		b = strconv.AppendInt(b, int64(v), 10)
	case Str:
		b = strconv.AppendQuote(b, string(v))
	case ByteStr:
		b = append(b, 'b')
		b = strconv.AppendQuote(b, string(v))
	case Bool:
		b = strconv.AppendBool(b, bool(v))
	case Char:
		b = strconv.AppendQuoteRune(b, rune(v))
	case StructLit:
		b = hfmt.Appendf(b, "node#%d", uint32(v))
	case Function:
		b = append(b, string(v)...)
	case Dummy:
		invariant("dummy constant observed")
	default:
		invariant("unknown const val: %T", v)
	}

	return b
}

func appendSubsts(b []byte, substs tp.Substs) []byte {
	if len(substs) == 0 {
		return b
	}

	b = append(b, "::<"...)

	for i, s := range substs {
		if i != 0 {
			b = append(b, ", "...)
		}

		b = append(b, string(s)...)
	}

	return append(b, '>')
}

func app(b []byte, d int, f string, args ...any) []byte {
	const tabs = "\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t"
	b = append(b, tabs[:d]...)
	b = hfmt.Appendf(b, f, args...)
	return b
}
