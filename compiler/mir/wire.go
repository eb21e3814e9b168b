package mir

import (
	"encoding/json"
	"math"

	"tlog.app/go/errors"

	"github.com/rill-lang/rill/compiler/source"
	"github.com/rill-lang/rill/compiler/tp"
)

// Wire format: every closed union is encoded as a {"k": kind, "v":
// payload} envelope; plain structs encode as themselves. Decoding an
// encoded body reproduces it exactly, recursive projections and index
// types included.

type (
	wireEnv struct {
		K string          `json:"k"`
		V json.RawMessage `json:"v,omitempty"`
	}

	wireBody struct {
		Blocks   []wireBlock `json:"blocks"`
		Scopes   []ScopeData `json:"scopes"`
		Vars     []VarDecl   `json:"vars"`
		Args     []ArgDecl   `json:"args"`
		Temps    []TempDecl  `json:"temps"`
		Upvars   []UpvarDecl `json:"upvars"`
		ReturnTy tp.Type     `json:"return_ty"`
		Span     source.Span `json:"span"`
	}

	wireBlock struct {
		Statements []wireStmt `json:"statements"`
		Terminator *wireTerm  `json:"terminator,omitempty"`
		IsCleanup  bool       `json:"is_cleanup,omitempty"`
	}

	wireStmt struct {
		Span  source.Span     `json:"span"`
		Scope ScopeID         `json:"scope"`
		Kind  json.RawMessage `json:"kind"`
	}

	wireTerm struct {
		Span  source.Span     `json:"span"`
		Scope ScopeID         `json:"scope"`
		Kind  json.RawMessage `json:"kind"`
	}

	wireProj struct {
		Base json.RawMessage `json:"base"`
		Elem json.RawMessage `json:"elem"`
	}

	wireFieldProj struct {
		Field Field   `json:"field"`
		Ty    tp.Type `json:"ty"`
	}

	wireIndexProj struct {
		Index json.RawMessage `json:"index"`
	}

	wireConstant struct {
		Span    source.Span     `json:"span"`
		Ty      tp.Type         `json:"ty"`
		Literal json.RawMessage `json:"literal"`
	}

	wireValueLit struct {
		Value json.RawMessage `json:"value"`
	}

	wireUse struct {
		Op json.RawMessage `json:"op"`
	}

	wireRepeat struct {
		Op    json.RawMessage `json:"op"`
		Count TypedConstVal   `json:"count"`
	}

	wireRef struct {
		Region tp.Region       `json:"region,omitempty"`
		Kind   BorrowKind      `json:"borrow"`
		Place  json.RawMessage `json:"place"`
	}

	wireLen struct {
		Place json.RawMessage `json:"place"`
	}

	wireCast struct {
		Kind CastKind        `json:"cast"`
		Op   json.RawMessage `json:"op"`
		Ty   tp.Type         `json:"ty"`
	}

	wireBinaryOp struct {
		Op BinOp           `json:"op"`
		L  json.RawMessage `json:"l"`
		R  json.RawMessage `json:"r"`
	}

	wireUnaryOp struct {
		Op UnOp            `json:"op"`
		X  json.RawMessage `json:"x"`
	}

	wireAggregate struct {
		Kind json.RawMessage   `json:"agg"`
		Ops  []json.RawMessage `json:"ops"`
	}

	wireSlice struct {
		Input     json.RawMessage `json:"input"`
		FromStart int             `json:"from_start"`
		FromEnd   int             `json:"from_end"`
	}

	wireInlineAsm struct {
		Asm     string            `json:"asm"`
		Outputs []json.RawMessage `json:"outputs"`
		Inputs  []json.RawMessage `json:"inputs"`
	}

	wireIf struct {
		Cond json.RawMessage `json:"cond"`
		Then BasicBlock      `json:"then"`
		Else BasicBlock      `json:"else"`
	}

	wireSwitch struct {
		Discr   json.RawMessage `json:"discr"`
		Adt     *tp.Adt         `json:"adt"`
		Targets []BasicBlock    `json:"targets"`
	}

	wireSwitchInt struct {
		Discr    json.RawMessage   `json:"discr"`
		SwitchTy tp.Type           `json:"switch_ty"`
		Values   []json.RawMessage `json:"values"`
		Targets  []BasicBlock      `json:"targets"`
	}

	wireDrop struct {
		Value  json.RawMessage `json:"value"`
		Target BasicBlock      `json:"target"`
		Unwind *BasicBlock     `json:"unwind,omitempty"`
	}

	wireCall struct {
		Func        json.RawMessage   `json:"func"`
		Args        []json.RawMessage `json:"args"`
		Destination *wireCallDest     `json:"destination,omitempty"`
		Cleanup     *BasicBlock       `json:"cleanup,omitempty"`
	}

	wireCallDest struct {
		Place  json.RawMessage `json:"place"`
		Target BasicBlock      `json:"target"`
	}

	wireAssign struct {
		Place  json.RawMessage `json:"place"`
		Rvalue json.RawMessage `json:"rvalue"`
	}
)

// EncodeBody encodes a whole function body.
func EncodeBody(m *Body) ([]byte, error) {
	w := wireBody{
		Scopes:   m.Scopes,
		Vars:     m.Vars,
		Args:     m.Args,
		Temps:    m.Temps,
		Upvars:   m.Upvars,
		ReturnTy: m.ReturnTy,
		Span:     m.Span,
	}

	if m.Blocks != nil {
		w.Blocks = make([]wireBlock, len(m.Blocks))

		for i := range m.Blocks {
			wb, err := marshalBlock(&m.Blocks[i])
			if err != nil {
				return nil, errors.Wrap(err, "%v", NewBasicBlock(i))
			}

			w.Blocks[i] = wb
		}
	}

	return json.Marshal(w)
}

// DecodeBody is the inverse of EncodeBody.
func DecodeBody(data []byte) (*Body, error) {
	var w wireBody

	err := json.Unmarshal(data, &w)
	if err != nil {
		return nil, errors.Wrap(err, "body")
	}

	m := &Body{
		Scopes:   w.Scopes,
		Vars:     w.Vars,
		Args:     w.Args,
		Temps:    w.Temps,
		Upvars:   w.Upvars,
		ReturnTy: w.ReturnTy,
		Span:     w.Span,
	}

	if w.Blocks != nil {
		m.Blocks = make([]BlockData, len(w.Blocks))

		for i := range w.Blocks {
			d, err := unmarshalBlock(&w.Blocks[i])
			if err != nil {
				return nil, errors.Wrap(err, "%v", NewBasicBlock(i))
			}

			m.Blocks[i] = d
		}
	}

	return m, nil
}

func marshalBlock(d *BlockData) (wireBlock, error) {
	w := wireBlock{IsCleanup: d.IsCleanup}

	if d.Statements != nil {
		w.Statements = make([]wireStmt, len(d.Statements))

		for i := range d.Statements {
			s := &d.Statements[i]

			kind, err := marshalStmtKind(s.Kind)
			if err != nil {
				return w, errors.Wrap(err, "statement %v", i)
			}

			w.Statements[i] = wireStmt{Span: s.Span, Scope: s.Scope, Kind: kind}
		}
	}

	if d.Terminator != nil {
		kind, err := marshalTermKind(d.Terminator.Kind)
		if err != nil {
			return w, errors.Wrap(err, "terminator")
		}

		w.Terminator = &wireTerm{
			Span:  d.Terminator.Span,
			Scope: d.Terminator.Scope,
			Kind:  kind,
		}
	}

	return w, nil
}

func unmarshalBlock(w *wireBlock) (BlockData, error) {
	d := BlockData{IsCleanup: w.IsCleanup}

	if w.Statements != nil {
		d.Statements = make([]Statement, len(w.Statements))

		for i := range w.Statements {
			s := &w.Statements[i]

			kind, err := unmarshalStmtKind(s.Kind)
			if err != nil {
				return d, errors.Wrap(err, "statement %v", i)
			}

			d.Statements[i] = Statement{Span: s.Span, Scope: s.Scope, Kind: kind}
		}
	}

	if w.Terminator != nil {
		kind, err := unmarshalTermKind(w.Terminator.Kind)
		if err != nil {
			return d, errors.Wrap(err, "terminator")
		}

		d.Terminator = &Terminator{
			Span:  w.Terminator.Span,
			Scope: w.Terminator.Scope,
			Kind:  kind,
		}
	}

	return d, nil
}

func env(k string, v any) (json.RawMessage, error) {
	e := wireEnv{K: k}

	if v != nil {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrap(err, "%v", k)
		}

		e.V = raw
	}

	return json.Marshal(e)
}

func openEnv(data json.RawMessage) (wireEnv, error) {
	var e wireEnv

	err := json.Unmarshal(data, &e)

	return e, err
}

func marshalStmtKind(k StatementKind) (json.RawMessage, error) {
	switch k := k.(type) {
	case Assign:
		place, err := marshalPlace(k.Place)
		if err != nil {
			return nil, errors.Wrap(err, "place")
		}

		rv, err := marshalRvalue(k.Rvalue)
		if err != nil {
			return nil, errors.Wrap(err, "rvalue")
		}

		return env("assign", wireAssign{Place: place, Rvalue: rv})
	default:
		return nil, errors.New("unknown statement kind: %T", k)
	}
}

func unmarshalStmtKind(data json.RawMessage) (StatementKind, error) {
	e, err := openEnv(data)
	if err != nil {
		return nil, err
	}

	switch e.K {
	case "assign":
		var w wireAssign

		err = json.Unmarshal(e.V, &w)
		if err != nil {
			return nil, err
		}

		place, err := unmarshalPlace(w.Place)
		if err != nil {
			return nil, errors.Wrap(err, "place")
		}

		rv, err := unmarshalRvalue(w.Rvalue)
		if err != nil {
			return nil, errors.Wrap(err, "rvalue")
		}

		return Assign{Place: place, Rvalue: rv}, nil
	default:
		return nil, errors.New("unknown statement kind: %v", e.K)
	}
}

func marshalTermKind(k TerminatorKind) (json.RawMessage, error) {
	switch k := k.(type) {
	case *Goto:
		return env("goto", k.Target)
	case *If:
		cond, err := marshalOperand(k.Cond)
		if err != nil {
			return nil, errors.Wrap(err, "cond")
		}

		return env("if", wireIf{Cond: cond, Then: k.Then, Else: k.Else})
	case *Switch:
		discr, err := marshalPlace(k.Discr)
		if err != nil {
			return nil, errors.Wrap(err, "discr")
		}

		return env("switch", wireSwitch{Discr: discr, Adt: k.Adt, Targets: k.Targets})
	case *SwitchInt:
		discr, err := marshalPlace(k.Discr)
		if err != nil {
			return nil, errors.Wrap(err, "discr")
		}

		values, err := marshalList(k.Values, marshalConstVal)
		if err != nil {
			return nil, errors.Wrap(err, "values")
		}

		return env("switchint", wireSwitchInt{
			Discr:    discr,
			SwitchTy: k.SwitchTy,
			Values:   values,
			Targets:  k.Targets,
		})
	case *Resume:
		return env("resume", nil)
	case *Return:
		return env("return", nil)
	case *Drop:
		value, err := marshalPlace(k.Value)
		if err != nil {
			return nil, errors.Wrap(err, "value")
		}

		return env("drop", wireDrop{Value: value, Target: k.Target, Unwind: k.Unwind})
	case *Call:
		fn, err := marshalOperand(k.Func)
		if err != nil {
			return nil, errors.Wrap(err, "func")
		}

		args, err := marshalList(k.Args, marshalOperand)
		if err != nil {
			return nil, errors.Wrap(err, "args")
		}

		w := wireCall{Func: fn, Args: args, Cleanup: k.Cleanup}

		if k.Destination != nil {
			place, err := marshalPlace(k.Destination.Place)
			if err != nil {
				return nil, errors.Wrap(err, "destination")
			}

			w.Destination = &wireCallDest{Place: place, Target: k.Destination.Target}
		}

		return env("call", w)
	default:
		return nil, errors.New("unknown terminator kind: %T", k)
	}
}

func unmarshalTermKind(data json.RawMessage) (TerminatorKind, error) {
	e, err := openEnv(data)
	if err != nil {
		return nil, err
	}

	switch e.K {
	case "goto":
		var target BasicBlock

		err = json.Unmarshal(e.V, &target)
		if err != nil {
			return nil, err
		}

		return &Goto{Target: target}, nil
	case "if":
		var w wireIf

		err = json.Unmarshal(e.V, &w)
		if err != nil {
			return nil, err
		}

		cond, err := unmarshalOperand(w.Cond)
		if err != nil {
			return nil, errors.Wrap(err, "cond")
		}

		return &If{Cond: cond, Then: w.Then, Else: w.Else}, nil
	case "switch":
		var w wireSwitch

		err = json.Unmarshal(e.V, &w)
		if err != nil {
			return nil, err
		}

		discr, err := unmarshalPlace(w.Discr)
		if err != nil {
			return nil, errors.Wrap(err, "discr")
		}

		return &Switch{Discr: discr, Adt: w.Adt, Targets: w.Targets}, nil
	case "switchint":
		var w wireSwitchInt

		err = json.Unmarshal(e.V, &w)
		if err != nil {
			return nil, err
		}

		discr, err := unmarshalPlace(w.Discr)
		if err != nil {
			return nil, errors.Wrap(err, "discr")
		}

		values, err := unmarshalList(w.Values, unmarshalConstVal)
		if err != nil {
			return nil, errors.Wrap(err, "values")
		}

		return &SwitchInt{
			Discr:    discr,
			SwitchTy: w.SwitchTy,
			Values:   values,
			Targets:  w.Targets,
		}, nil
	case "resume":
		return &Resume{}, nil
	case "return":
		return &Return{}, nil
	case "drop":
		var w wireDrop

		err = json.Unmarshal(e.V, &w)
		if err != nil {
			return nil, err
		}

		value, err := unmarshalPlace(w.Value)
		if err != nil {
			return nil, errors.Wrap(err, "value")
		}

		return &Drop{Value: value, Target: w.Target, Unwind: w.Unwind}, nil
	case "call":
		var w wireCall

		err = json.Unmarshal(e.V, &w)
		if err != nil {
			return nil, err
		}

		fn, err := unmarshalOperand(w.Func)
		if err != nil {
			return nil, errors.Wrap(err, "func")
		}

		args, err := unmarshalList(w.Args, unmarshalOperand)
		if err != nil {
			return nil, errors.Wrap(err, "args")
		}

		k := &Call{Func: fn, Args: args, Cleanup: w.Cleanup}

		if w.Destination != nil {
			place, err := unmarshalPlace(w.Destination.Place)
			if err != nil {
				return nil, errors.Wrap(err, "destination")
			}

			k.Destination = &CallDestination{Place: place, Target: w.Destination.Target}
		}

		return k, nil
	default:
		return nil, errors.New("unknown terminator kind: %v", e.K)
	}
}

func marshalPlace(p Place) (json.RawMessage, error) {
	switch p := p.(type) {
	case Var:
		return env("var", uint32(p))
	case Temp:
		return env("temp", uint32(p))
	case Arg:
		return env("arg", uint32(p))
	case Static:
		return env("static", tp.Item(p))
	case ReturnPointer:
		return env("ret", nil)
	case *Projection:
		base, err := marshalPlace(p.Base)
		if err != nil {
			return nil, errors.Wrap(err, "base")
		}

		elem, err := marshalProjElem(p.Elem)
		if err != nil {
			return nil, errors.Wrap(err, "elem")
		}

		return env("proj", wireProj{Base: base, Elem: elem})
	default:
		return nil, errors.New("unknown place: %T", p)
	}
}

func unmarshalPlace(data json.RawMessage) (Place, error) {
	e, err := openEnv(data)
	if err != nil {
		return nil, err
	}

	switch e.K {
	case "var", "temp", "arg":
		var i uint32

		err = json.Unmarshal(e.V, &i)
		if err != nil {
			return nil, err
		}

		switch e.K {
		case "var":
			return Var(i), nil
		case "temp":
			return Temp(i), nil
		default:
			return Arg(i), nil
		}
	case "static":
		var item tp.Item

		err = json.Unmarshal(e.V, &item)
		if err != nil {
			return nil, err
		}

		return Static(item), nil
	case "ret":
		return ReturnPointer{}, nil
	case "proj":
		var w wireProj

		err = json.Unmarshal(e.V, &w)
		if err != nil {
			return nil, err
		}

		base, err := unmarshalPlace(w.Base)
		if err != nil {
			return nil, errors.Wrap(err, "base")
		}

		elem, err := unmarshalProjElem(w.Elem)
		if err != nil {
			return nil, errors.Wrap(err, "elem")
		}

		return &Projection{Base: base, Elem: elem}, nil
	default:
		return nil, errors.New("unknown place: %v", e.K)
	}
}

func marshalProjElem(elem ProjElem) (json.RawMessage, error) {
	switch elem := elem.(type) {
	case Deref:
		return env("deref", nil)
	case FieldProj:
		return env("field", wireFieldProj{Field: elem.Field, Ty: elem.Ty})
	case IndexProj:
		index, err := marshalOperand(elem.Index)
		if err != nil {
			return nil, errors.Wrap(err, "index")
		}

		return env("index", wireIndexProj{Index: index})
	case ConstantIndex:
		return env("cindex", elem)
	case Downcast:
		return env("downcast", elem)
	default:
		return nil, errors.New("unknown projection elem: %T", elem)
	}
}

func unmarshalProjElem(data json.RawMessage) (ProjElem, error) {
	e, err := openEnv(data)
	if err != nil {
		return nil, err
	}

	switch e.K {
	case "deref":
		return Deref{}, nil
	case "field":
		var w wireFieldProj

		err = json.Unmarshal(e.V, &w)
		if err != nil {
			return nil, err
		}

		return FieldProj{Field: w.Field, Ty: w.Ty}, nil
	case "index":
		var w wireIndexProj

		err = json.Unmarshal(e.V, &w)
		if err != nil {
			return nil, err
		}

		index, err := unmarshalOperand(w.Index)
		if err != nil {
			return nil, errors.Wrap(err, "index")
		}

		return IndexProj{Index: index}, nil
	case "cindex":
		var elem ConstantIndex

		err = json.Unmarshal(e.V, &elem)

		return elem, err
	case "downcast":
		var elem Downcast

		err = json.Unmarshal(e.V, &elem)

		return elem, err
	default:
		return nil, errors.New("unknown projection elem: %v", e.K)
	}
}

func marshalOperand(op Operand) (json.RawMessage, error) {
	switch op := op.(type) {
	case Consume:
		place, err := marshalPlace(op.Place)
		if err != nil {
			return nil, err
		}

		return env("consume", place)
	case ConstOperand:
		c, err := marshalConstant(op.Constant)
		if err != nil {
			return nil, err
		}

		return env("const", c)
	default:
		return nil, errors.New("unknown operand: %T", op)
	}
}

func unmarshalOperand(data json.RawMessage) (Operand, error) {
	e, err := openEnv(data)
	if err != nil {
		return nil, err
	}

	switch e.K {
	case "consume":
		place, err := unmarshalPlace(e.V)
		if err != nil {
			return nil, err
		}

		return Consume{Place: place}, nil
	case "const":
		c, err := unmarshalConstant(e.V)
		if err != nil {
			return nil, err
		}

		return ConstOperand{Constant: c}, nil
	default:
		return nil, errors.New("unknown operand: %v", e.K)
	}
}

func marshalConstant(c Constant) (json.RawMessage, error) {
	lit, err := marshalLiteral(c.Literal)
	if err != nil {
		return nil, errors.Wrap(err, "literal")
	}

	return json.Marshal(wireConstant{Span: c.Span, Ty: c.Ty, Literal: lit})
}

func unmarshalConstant(data json.RawMessage) (Constant, error) {
	var w wireConstant

	err := json.Unmarshal(data, &w)
	if err != nil {
		return Constant{}, err
	}

	lit, err := unmarshalLiteral(w.Literal)
	if err != nil {
		return Constant{}, errors.Wrap(err, "literal")
	}

	return Constant{Span: w.Span, Ty: w.Ty, Literal: lit}, nil
}

func marshalLiteral(l Literal) (json.RawMessage, error) {
	switch l := l.(type) {
	case ItemLit:
		return env("item", l)
	case ValueLit:
		v, err := marshalConstVal(l.Value)
		if err != nil {
			return nil, err
		}

		return env("value", wireValueLit{Value: v})
	default:
		return nil, errors.New("unknown literal: %T", l)
	}
}

func unmarshalLiteral(data json.RawMessage) (Literal, error) {
	e, err := openEnv(data)
	if err != nil {
		return nil, err
	}

	switch e.K {
	case "item":
		var l ItemLit

		err = json.Unmarshal(e.V, &l)

		return l, err
	case "value":
		var w wireValueLit

		err = json.Unmarshal(e.V, &w)
		if err != nil {
			return nil, err
		}

		v, err := unmarshalConstVal(w.Value)
		if err != nil {
			return nil, err
		}

		return ValueLit{Value: v}, nil
	default:
		return nil, errors.New("unknown literal: %v", e.K)
	}
}

func marshalConstVal(v ConstVal) (json.RawMessage, error) {
	switch v := v.(type) {
	case Float:
		// By bit pattern: NaN and negative zero survive the trip.
		return env("float", math.Float64bits(float64(v)))
	case Integral:
		return env("int", int64(v))
	case Str:
		return env("str", string(v))
	case ByteStr:
		return env("bytes", []byte(v))
	case Bool:
		return env("bool", bool(v))
	case Char:
		return env("char", int32(v))
	case StructLit:
		return env("struct", uint32(v))
	case Function:
		return env("fn", tp.Item(v))
	case Dummy:
		return env("dummy", nil)
	default:
		return nil, errors.New("unknown const val: %T", v)
	}
}

func unmarshalConstVal(data json.RawMessage) (ConstVal, error) {
	e, err := openEnv(data)
	if err != nil {
		return nil, err
	}

	switch e.K {
	case "float":
		var bits uint64

		err = json.Unmarshal(e.V, &bits)

		return Float(math.Float64frombits(bits)), err
	case "int":
		var i int64

		err = json.Unmarshal(e.V, &i)

		return Integral(i), err
	case "str":
		var s string

		err = json.Unmarshal(e.V, &s)

		return Str(s), err
	case "bytes":
		var bs []byte

		err = json.Unmarshal(e.V, &bs)

		return ByteStr(bs), err
	case "bool":
		var v bool

		err = json.Unmarshal(e.V, &v)

		return Bool(v), err
	case "char":
		var c int32

		err = json.Unmarshal(e.V, &c)

		return Char(c), err
	case "struct":
		var n uint32

		err = json.Unmarshal(e.V, &n)

		return StructLit(n), err
	case "fn":
		var item tp.Item

		err = json.Unmarshal(e.V, &item)

		return Function(item), err
	case "dummy":
		return Dummy{}, nil
	default:
		return nil, errors.New("unknown const val: %v", e.K)
	}
}

func marshalRvalue(rv Rvalue) (json.RawMessage, error) {
	switch rv := rv.(type) {
	case Use:
		op, err := marshalOperand(rv.Op)
		if err != nil {
			return nil, err
		}

		return env("use", wireUse{Op: op})
	case Repeat:
		op, err := marshalOperand(rv.Op)
		if err != nil {
			return nil, err
		}

		return env("repeat", wireRepeat{Op: op, Count: rv.Count})
	case Ref:
		place, err := marshalPlace(rv.Place)
		if err != nil {
			return nil, err
		}

		return env("ref", wireRef{Region: rv.Region, Kind: rv.Kind, Place: place})
	case Len:
		place, err := marshalPlace(rv.Place)
		if err != nil {
			return nil, err
		}

		return env("len", wireLen{Place: place})
	case Cast:
		op, err := marshalOperand(rv.Op)
		if err != nil {
			return nil, err
		}

		return env("cast", wireCast{Kind: rv.Kind, Op: op, Ty: rv.Ty})
	case BinaryOp:
		l, err := marshalOperand(rv.L)
		if err != nil {
			return nil, errors.Wrap(err, "l")
		}

		r, err := marshalOperand(rv.R)
		if err != nil {
			return nil, errors.Wrap(err, "r")
		}

		return env("binop", wireBinaryOp{Op: rv.Op, L: l, R: r})
	case UnaryOp:
		x, err := marshalOperand(rv.X)
		if err != nil {
			return nil, err
		}

		return env("unop", wireUnaryOp{Op: rv.Op, X: x})
	case BoxAlloc:
		return env("box", rv.Ty)
	case Aggregate:
		kind, err := marshalAggKind(rv.Kind)
		if err != nil {
			return nil, errors.Wrap(err, "kind")
		}

		ops, err := marshalList(rv.Ops, marshalOperand)
		if err != nil {
			return nil, errors.Wrap(err, "ops")
		}

		return env("agg", wireAggregate{Kind: kind, Ops: ops})
	case Slice:
		input, err := marshalPlace(rv.Input)
		if err != nil {
			return nil, err
		}

		return env("slice", wireSlice{
			Input:     input,
			FromStart: rv.FromStart,
			FromEnd:   rv.FromEnd,
		})
	case InlineAsm:
		outputs, err := marshalList(rv.Outputs, marshalPlace)
		if err != nil {
			return nil, errors.Wrap(err, "outputs")
		}

		inputs, err := marshalList(rv.Inputs, marshalOperand)
		if err != nil {
			return nil, errors.Wrap(err, "inputs")
		}

		return env("asm", wireInlineAsm{Asm: rv.Asm, Outputs: outputs, Inputs: inputs})
	default:
		return nil, errors.New("unknown rvalue: %T", rv)
	}
}

func unmarshalRvalue(data json.RawMessage) (Rvalue, error) {
	e, err := openEnv(data)
	if err != nil {
		return nil, err
	}

	switch e.K {
	case "use":
		var w wireUse

		err = json.Unmarshal(e.V, &w)
		if err != nil {
			return nil, err
		}

		op, err := unmarshalOperand(w.Op)
		if err != nil {
			return nil, err
		}

		return Use{Op: op}, nil
	case "repeat":
		var w wireRepeat

		err = json.Unmarshal(e.V, &w)
		if err != nil {
			return nil, err
		}

		op, err := unmarshalOperand(w.Op)
		if err != nil {
			return nil, err
		}

		return Repeat{Op: op, Count: w.Count}, nil
	case "ref":
		var w wireRef

		err = json.Unmarshal(e.V, &w)
		if err != nil {
			return nil, err
		}

		place, err := unmarshalPlace(w.Place)
		if err != nil {
			return nil, err
		}

		return Ref{Region: w.Region, Kind: w.Kind, Place: place}, nil
	case "len":
		var w wireLen

		err = json.Unmarshal(e.V, &w)
		if err != nil {
			return nil, err
		}

		place, err := unmarshalPlace(w.Place)
		if err != nil {
			return nil, err
		}

		return Len{Place: place}, nil
	case "cast":
		var w wireCast

		err = json.Unmarshal(e.V, &w)
		if err != nil {
			return nil, err
		}

		op, err := unmarshalOperand(w.Op)
		if err != nil {
			return nil, err
		}

		return Cast{Kind: w.Kind, Op: op, Ty: w.Ty}, nil
	case "binop":
		var w wireBinaryOp

		err = json.Unmarshal(e.V, &w)
		if err != nil {
			return nil, err
		}

		l, err := unmarshalOperand(w.L)
		if err != nil {
			return nil, errors.Wrap(err, "l")
		}

		r, err := unmarshalOperand(w.R)
		if err != nil {
			return nil, errors.Wrap(err, "r")
		}

		return BinaryOp{Op: w.Op, L: l, R: r}, nil
	case "unop":
		var w wireUnaryOp

		err = json.Unmarshal(e.V, &w)
		if err != nil {
			return nil, err
		}

		x, err := unmarshalOperand(w.X)
		if err != nil {
			return nil, err
		}

		return UnaryOp{Op: w.Op, X: x}, nil
	case "box":
		var ty tp.Type

		err = json.Unmarshal(e.V, &ty)

		return BoxAlloc{Ty: ty}, err
	case "agg":
		var w wireAggregate

		err = json.Unmarshal(e.V, &w)
		if err != nil {
			return nil, err
		}

		kind, err := unmarshalAggKind(w.Kind)
		if err != nil {
			return nil, errors.Wrap(err, "kind")
		}

		ops, err := unmarshalList(w.Ops, unmarshalOperand)
		if err != nil {
			return nil, errors.Wrap(err, "ops")
		}

		return Aggregate{Kind: kind, Ops: ops}, nil
	case "slice":
		var w wireSlice

		err = json.Unmarshal(e.V, &w)
		if err != nil {
			return nil, err
		}

		input, err := unmarshalPlace(w.Input)
		if err != nil {
			return nil, err
		}

		return Slice{Input: input, FromStart: w.FromStart, FromEnd: w.FromEnd}, nil
	case "asm":
		var w wireInlineAsm

		err = json.Unmarshal(e.V, &w)
		if err != nil {
			return nil, err
		}

		outputs, err := unmarshalList(w.Outputs, unmarshalPlace)
		if err != nil {
			return nil, errors.Wrap(err, "outputs")
		}

		inputs, err := unmarshalList(w.Inputs, unmarshalOperand)
		if err != nil {
			return nil, errors.Wrap(err, "inputs")
		}

		return InlineAsm{Asm: w.Asm, Outputs: outputs, Inputs: inputs}, nil
	default:
		return nil, errors.New("unknown rvalue: %v", e.K)
	}
}

func marshalAggKind(k AggKind) (json.RawMessage, error) {
	switch k := k.(type) {
	case AggVec:
		return env("vec", nil)
	case AggTuple:
		return env("tuple", nil)
	case AggAdt:
		return env("adt", k)
	case AggClosure:
		return env("closure", k)
	default:
		return nil, errors.New("unknown aggregate kind: %T", k)
	}
}

func unmarshalAggKind(data json.RawMessage) (AggKind, error) {
	e, err := openEnv(data)
	if err != nil {
		return nil, err
	}

	switch e.K {
	case "vec":
		return AggVec{}, nil
	case "tuple":
		return AggTuple{}, nil
	case "adt":
		var k AggAdt

		err = json.Unmarshal(e.V, &k)

		return k, err
	case "closure":
		var k AggClosure

		err = json.Unmarshal(e.V, &k)

		return k, err
	default:
		return nil, errors.New("unknown aggregate kind: %v", e.K)
	}
}

func marshalList[T any](s []T, f func(T) (json.RawMessage, error)) ([]json.RawMessage, error) {
	if s == nil {
		return nil, nil
	}

	out := make([]json.RawMessage, len(s))

	for i, x := range s {
		raw, err := f(x)
		if err != nil {
			return nil, errors.Wrap(err, "%v", i)
		}

		out[i] = raw
	}

	return out, nil
}

func unmarshalList[T any](s []json.RawMessage, f func(json.RawMessage) (T, error)) ([]T, error) {
	if s == nil {
		return nil, nil
	}

	out := make([]T, len(s))

	for i, raw := range s {
		x, err := f(raw)
		if err != nil {
			return nil, errors.Wrap(err, "%v", i)
		}

		out[i] = x
	}

	return out, nil
}
