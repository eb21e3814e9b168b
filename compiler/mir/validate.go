package mir

import (
	"tlog.app/go/errors"
)

// Validate checks the guarantees the lowering stage must publish with
// every body: every block is terminated, every index used is in
// range, switchInt carries one target per value plus one fallback,
// downcasts stand immediately before field projections, and no
// unreachable constant survived lowering. It is meant for ingestion
// boundaries (decoded files, fresh lowering output); inside the
// compiler these conditions hold by construction and their violation
// is fatal.
//
// Cleanup blocks targeting non-cleanup blocks is checked by the CFG
// verifier, not here.
func (m *Body) Validate() error {
	for i := range m.Scopes {
		err := m.checkScopeChain(NewScopeID(i))
		if err != nil {
			return err
		}
	}

	for i, v := range m.Vars {
		if err := m.checkScope(v.Scope); err != nil {
			return errors.Wrap(err, "var%d", i)
		}
	}

	for i := range m.Blocks {
		err := m.checkBlock(&m.Blocks[i])
		if err != nil {
			return errors.Wrap(err, "%v", NewBasicBlock(i))
		}
	}

	return nil
}

func (m *Body) checkScopeChain(s ScopeID) error {
	// The forest has no cycles iff every parent chain ends at a root
	// within len(Scopes) steps.
	cur := s

	for steps := 0; ; steps++ {
		if steps > len(m.Scopes) {
			return errors.New("%v: scope parent cycle", s)
		}

		parent := m.Scopes[cur.Index()].Parent
		if parent == NoScope {
			return nil
		}

		if parent.Index() >= len(m.Scopes) {
			return errors.New("%v: parent %v out of range of %v scopes", cur, parent, len(m.Scopes))
		}

		cur = parent
	}
}

func (m *Body) checkScope(s ScopeID) error {
	if s.Index() >= len(m.Scopes) {
		return errors.New("scope out of range: %v of %v", s, len(m.Scopes))
	}

	return nil
}

func (m *Body) checkBlock(d *BlockData) error {
	for i := range d.Statements {
		err := m.checkStatement(&d.Statements[i])
		if err != nil {
			return errors.Wrap(err, "statement %v", i)
		}
	}

	if d.Terminator == nil {
		return errors.New("missing terminator")
	}

	return m.checkTerminator(d.Terminator)
}

func (m *Body) checkStatement(s *Statement) error {
	err := m.checkScope(s.Scope)
	if err != nil {
		return err
	}

	switch k := s.Kind.(type) {
	case Assign:
		err = m.checkPlace(k.Place)
		if err != nil {
			return err
		}

		return m.checkRvalue(k.Rvalue)
	default:
		return errors.New("unknown statement kind: %T", s.Kind)
	}
}

func (m *Body) checkTerminator(t *Terminator) error {
	err := m.checkScope(t.Scope)
	if err != nil {
		return err
	}

	switch k := t.Kind.(type) {
	case *Goto, *Resume, *Return:
	case *If:
		err = m.checkOperand(k.Cond)
	case *Switch:
		if k.Adt == nil {
			return errors.New("switch without adt")
		}

		if len(k.Targets) != len(k.Adt.Variants) {
			return errors.New("switch: %v targets for %v variants", len(k.Targets), len(k.Adt.Variants))
		}

		err = m.checkPlace(k.Discr)
	case *SwitchInt:
		if len(k.Values)+1 != len(k.Targets) {
			return errors.New("switchInt: %v values need %v targets, have %v",
				len(k.Values), len(k.Values)+1, len(k.Targets))
		}

		err = m.checkPlace(k.Discr)
	case *Drop:
		err = m.checkPlace(k.Value)
	case *Call:
		err = m.checkOperand(k.Func)

		for i := 0; err == nil && i < len(k.Args); i++ {
			err = m.checkOperand(k.Args[i])
		}

		if err == nil && k.Destination != nil {
			err = m.checkPlace(k.Destination.Place)
		}
	default:
		return errors.New("unknown terminator kind: %T", t.Kind)
	}

	if err != nil {
		return err
	}

	succ := t.Successors()

	for i := 0; i < succ.Len(); i++ {
		if bb := succ.At(i); bb.Index() >= len(m.Blocks) {
			return errors.New("successor %v out of range of %v blocks", bb, len(m.Blocks))
		}
	}

	return nil
}

func (m *Body) checkPlace(p Place) error {
	return m.checkPlaceIn(p, false)
}

func (m *Body) checkPlaceIn(p Place, underField bool) error {
	switch p := p.(type) {
	case Var:
		if int(p) >= len(m.Vars) {
			return errors.New("%v out of range of %v vars", p, len(m.Vars))
		}
	case Temp:
		if int(p) >= len(m.Temps) {
			return errors.New("%v out of range of %v temps", p, len(m.Temps))
		}
	case Arg:
		if int(p) >= len(m.Args) {
			return errors.New("%v out of range of %v args", p, len(m.Args))
		}
	case Static, ReturnPointer:
	case *Projection:
		switch elem := p.Elem.(type) {
		case Downcast:
			if !underField {
				return errors.New("downcast not followed by a field projection")
			}

			if elem.Adt == nil || elem.Variant >= len(elem.Adt.Variants) {
				return errors.New("downcast variant out of range")
			}
		case IndexProj:
			err := m.checkOperand(elem.Index)
			if err != nil {
				return err
			}
		}

		_, isField := p.Elem.(FieldProj)

		return m.checkPlaceIn(p.Base, isField)
	default:
		return errors.New("unknown place: %T", p)
	}

	return nil
}

func (m *Body) checkOperand(op Operand) error {
	switch op := op.(type) {
	case Consume:
		return m.checkPlace(op.Place)
	case ConstOperand:
		return m.checkConstant(op.Constant)
	default:
		return errors.New("unknown operand: %T", op)
	}
}

func (m *Body) checkConstant(c Constant) error {
	v, ok := c.Literal.(ValueLit)
	if !ok {
		return nil
	}

	if _, dummy := v.Value.(Dummy); dummy {
		return errors.New("unreachable constant in finished body")
	}

	return nil
}

func (m *Body) checkRvalue(rv Rvalue) error {
	switch rv := rv.(type) {
	case Use:
		return m.checkOperand(rv.Op)
	case Repeat:
		return m.checkOperand(rv.Op)
	case Ref:
		return m.checkPlace(rv.Place)
	case Len:
		return m.checkPlace(rv.Place)
	case Cast:
		return m.checkOperand(rv.Op)
	case BinaryOp:
		err := m.checkOperand(rv.L)
		if err != nil {
			return err
		}

		return m.checkOperand(rv.R)
	case UnaryOp:
		return m.checkOperand(rv.X)
	case BoxAlloc:
	case Aggregate:
		err := m.checkAggKind(rv.Kind, len(rv.Ops))
		if err != nil {
			return err
		}

		for _, op := range rv.Ops {
			err = m.checkOperand(op)
			if err != nil {
				return err
			}
		}
	case Slice:
		return m.checkPlace(rv.Input)
	case InlineAsm:
		for _, pl := range rv.Outputs {
			err := m.checkPlace(pl)
			if err != nil {
				return err
			}
		}

		for _, op := range rv.Inputs {
			err := m.checkOperand(op)
			if err != nil {
				return err
			}
		}
	default:
		return errors.New("unknown rvalue: %T", rv)
	}

	return nil
}

func (m *Body) checkAggKind(k AggKind, ops int) error {
	a, ok := k.(AggAdt)
	if !ok {
		return nil
	}

	if a.Adt == nil || a.Variant >= len(a.Adt.Variants) {
		return errors.New("aggregate variant out of range")
	}

	if fields := len(a.Adt.Variants[a.Variant].Fields); ops != fields {
		return errors.New("aggregate: %v operands for %v fields", ops, fields)
	}

	return nil
}
