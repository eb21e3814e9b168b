package mir

import (
	"github.com/rill-lang/rill/compiler/source"
	"github.com/rill-lang/rill/compiler/tp"
)

type (
	// Terminator is a block's single control transfer.
	Terminator struct {
		Span  source.Span
		Scope ScopeID
		Kind  TerminatorKind
	}

	// TerminatorKind is the closed set of control-transfer kinds.
	// Every kind reports its successor edges with an exact count and
	// order, and a label per edge; the two always agree in length.
	TerminatorKind interface {
		isTerminator()

		// Successors are the target blocks, in edge order.
		Successors() Successors

		// SuccessorsMut aliases the same edges for in-place
		// retargeting, in the same order as Successors.
		SuccessorsMut() []*BasicBlock

		// SuccessorLabels has one label per successor edge.
		SuccessorLabels() []string
	}

	// Goto jumps unconditionally.
	Goto struct {
		Target BasicBlock
	}

	// If jumps to Then if the operand evaluates to true, else to
	// Else.
	If struct {
		Cond Operand
		Then BasicBlock
		Else BasicBlock
	}

	// Switch jumps on the variant of an enum value, one target per
	// declared variant, in declaration order.
	Switch struct {
		Discr   Place
		Adt     *tp.Adt
		Targets []BasicBlock
	}

	// SwitchInt jumps on an integral value: one target per listed
	// value plus exactly one fallback, so
	// len(Values)+1 == len(Targets).
	SwitchInt struct {
		Discr    Place
		SwitchTy tp.Type
		Values   []ConstVal
		Targets  []BasicBlock
	}

	// Resume ends a landing pad; unwinding continues.
	Resume struct{}

	// Return returns normally. The return slot has been filled in by
	// now.
	Return struct{}

	// Drop drops a place, then continues at Target, or at Unwind if
	// dropping unwinds.
	Drop struct {
		Value  Place
		Target BasicBlock
		Unwind *BasicBlock
	}

	// Call calls Func. If Destination is set the call converges and
	// continues there with the result stored; if Cleanup is set,
	// unwinding out of the call lands there.
	Call struct {
		Func        Operand
		Args        []Operand
		Destination *CallDestination
		Cleanup     *BasicBlock
	}

	CallDestination struct {
		Place  Place
		Target BasicBlock
	}

	// Successors is an ordered sequence of successor edges. It is a
	// closed tagged union over empty/one/two/borrowed-many so the
	// common shapes never heap-allocate; the many case borrows the
	// terminator's own target slice.
	Successors struct {
		kind succKind
		a, b BasicBlock
		many []BasicBlock
	}

	succKind uint8
)

const (
	succNone succKind = iota
	succOne
	succTwo
	succMany
)

func NoSuccessors() Successors              { return Successors{kind: succNone} }
func OneSuccessor(bb BasicBlock) Successors { return Successors{kind: succOne, a: bb} }

func TwoSuccessors(a, b BasicBlock) Successors {
	return Successors{kind: succTwo, a: a, b: b}
}

// ManySuccessors borrows s; the caller keeps ownership.
func ManySuccessors(s []BasicBlock) Successors {
	return Successors{kind: succMany, many: s}
}

func (s Successors) Len() int {
	switch s.kind {
	case succNone:
		return 0
	case succOne:
		return 1
	case succTwo:
		return 2
	}

	return len(s.many)
}

func (s Successors) At(i int) BasicBlock {
	switch s.kind {
	case succOne:
		if i == 0 {
			return s.a
		}
	case succTwo:
		switch i {
		case 0:
			return s.a
		case 1:
			return s.b
		}
	case succMany:
		if i < len(s.many) {
			return s.many[i]
		}
	}

	invariant("successor index out of range: %v of %v", i, s.Len())

	return 0
}

// AppendTo appends the edges to dst in order.
func (s Successors) AppendTo(dst []BasicBlock) []BasicBlock {
	switch s.kind {
	case succNone:
	case succOne:
		dst = append(dst, s.a)
	case succTwo:
		dst = append(dst, s.a, s.b)
	case succMany:
		dst = append(dst, s.many...)
	}

	return dst
}

func (t *Terminator) Successors() Successors       { return t.Kind.Successors() }
func (t *Terminator) SuccessorsMut() []*BasicBlock { return t.Kind.SuccessorsMut() }
func (t *Terminator) SuccessorLabels() []string    { return t.Kind.SuccessorLabels() }

func (*Goto) isTerminator()      {}
func (*If) isTerminator()        {}
func (*Switch) isTerminator()    {}
func (*SwitchInt) isTerminator() {}
func (*Resume) isTerminator()    {}
func (*Return) isTerminator()    {}
func (*Drop) isTerminator()      {}
func (*Call) isTerminator()      {}

func (k *Goto) Successors() Successors       { return OneSuccessor(k.Target) }
func (k *Goto) SuccessorsMut() []*BasicBlock { return []*BasicBlock{&k.Target} }
func (k *Goto) SuccessorLabels() []string    { return []string{""} }

func (k *If) Successors() Successors       { return TwoSuccessors(k.Then, k.Else) }
func (k *If) SuccessorsMut() []*BasicBlock { return []*BasicBlock{&k.Then, &k.Else} }
func (k *If) SuccessorLabels() []string    { return []string{"true", "false"} }

func (k *Switch) Successors() Successors { return ManySuccessors(k.Targets) }

func (k *Switch) SuccessorsMut() []*BasicBlock {
	return sliceMut(k.Targets)
}

func (k *Switch) SuccessorLabels() []string {
	labels := make([]string, len(k.Adt.Variants))

	for i, v := range k.Adt.Variants {
		labels[i] = v.Name
	}

	return labels
}

func (k *SwitchInt) Successors() Successors { return ManySuccessors(k.Targets) }

func (k *SwitchInt) SuccessorsMut() []*BasicBlock {
	return sliceMut(k.Targets)
}

func (k *SwitchInt) SuccessorLabels() []string {
	labels := make([]string, 0, len(k.Values)+1)

	for _, v := range k.Values {
		labels = append(labels, string(appendConstVal(nil, v)))
	}

	return append(labels, "otherwise")
}

func (k *Resume) Successors() Successors       { return NoSuccessors() }
func (k *Resume) SuccessorsMut() []*BasicBlock { return nil }
func (k *Resume) SuccessorLabels() []string    { return nil }

func (k *Return) Successors() Successors       { return NoSuccessors() }
func (k *Return) SuccessorsMut() []*BasicBlock { return nil }
func (k *Return) SuccessorLabels() []string    { return nil }

func (k *Drop) Successors() Successors {
	if k.Unwind != nil {
		return TwoSuccessors(k.Target, *k.Unwind)
	}

	return OneSuccessor(k.Target)
}

func (k *Drop) SuccessorsMut() []*BasicBlock {
	if k.Unwind != nil {
		return []*BasicBlock{&k.Target, k.Unwind}
	}

	return []*BasicBlock{&k.Target}
}

func (k *Drop) SuccessorLabels() []string {
	if k.Unwind != nil {
		return []string{"return", "unwind"}
	}

	return []string{"return"}
}

func (k *Call) Successors() Successors {
	switch {
	case k.Destination != nil && k.Cleanup != nil:
		return TwoSuccessors(k.Destination.Target, *k.Cleanup)
	case k.Destination != nil:
		return OneSuccessor(k.Destination.Target)
	case k.Cleanup != nil:
		return OneSuccessor(*k.Cleanup)
	}

	return NoSuccessors()
}

func (k *Call) SuccessorsMut() []*BasicBlock {
	switch {
	case k.Destination != nil && k.Cleanup != nil:
		return []*BasicBlock{&k.Destination.Target, k.Cleanup}
	case k.Destination != nil:
		return []*BasicBlock{&k.Destination.Target}
	case k.Cleanup != nil:
		return []*BasicBlock{k.Cleanup}
	}

	return nil
}

func (k *Call) SuccessorLabels() []string {
	switch {
	case k.Destination != nil && k.Cleanup != nil:
		return []string{"return", "unwind"}
	case k.Destination != nil:
		return []string{"return"}
	case k.Cleanup != nil:
		return []string{"unwind"}
	}

	return nil
}

func sliceMut(s []BasicBlock) []*BasicBlock {
	m := make([]*BasicBlock, len(s))

	for i := range s {
		m[i] = &s[i]
	}

	return m
}
