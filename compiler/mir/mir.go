// Package mir is the mid-level intermediate representation of a
// function body: a control-flow graph of basic blocks over an
// addressable-storage model of places and projections.
//
// A Body is produced once by the lowering stage and is plain value
// data afterwards. Transformation passes may rewrite vectors and
// variants in place, but only one pass at a time may hold a body for
// writing; concurrent read-only traversal is safe while no writer is
// active. That discipline belongs to the pass scheduler, not to the
// types here.
package mir

import (
	"fmt"
	"math"

	"tlog.app/go/loc"
	"tlog.app/go/tlog/tlwire"

	"github.com/rill-lang/rill/compiler/source"
	"github.com/rill-lang/rill/compiler/tp"
)

type (
	// BasicBlock indexes into Body.Blocks. A u32 is enough for any
	// function we care to compile and keeps terminators small.
	BasicBlock uint32

	// Field indexes into the field list of an aggregate variant.
	Field uint32

	// ScopeID indexes into Body.Scopes.
	ScopeID uint32

	// Body is the lowered form of a single function. It owns every
	// block, scope and declaration table below it.
	Body struct {
		// Blocks is the basic block list. All references to blocks
		// anywhere in the body are BasicBlock indices into it.
		Blocks []BlockData

		// Scopes is the lexical nesting forest, indexed by ScopeID.
		// Used for debuginfo only; no executable behavior.
		Scopes []ScopeData

		// Vars are stack slots for user-declared bindings. They may
		// be assigned many times.
		Vars []VarDecl

		// Args are stack slots for the formal arguments. Distinct
		// from the bindings the user declares, which are Vars.
		Args []ArgDecl

		// Temps are compiler-introduced stack slots. Assigned once,
		// but not SSA: they can be borrowed and mutated through the
		// resulting reference.
		Temps []TempDecl

		// Upvars are the closure captures, assuming the first
		// argument is the closure or a reference to it.
		Upvars []UpvarDecl

		// ReturnTy is the declared return type.
		ReturnTy tp.Type

		Span source.Span
	}

	// BlockData is one basic block: straight-line statements and a
	// single control transfer out.
	BlockData struct {
		Statements []Statement

		// Terminator may be nil only while a pass that owns this
		// block exclusively is restructuring it. Every traversal
		// goes through Term, which treats nil as fatal.
		Terminator *Terminator

		// IsCleanup marks blocks on the unwind path. Cleanup blocks
		// must only branch to other cleanup blocks; that contract is
		// checked by the verifier, not here.
		IsCleanup bool
	}

	Mutability int

	// VarDecl is a binding declared by the user: a fn parameter
	// pattern, a let, etc. The IR refers to it by index only.
	VarDecl struct {
		Mut   Mutability
		Name  string
		Ty    tp.Type
		Scope ScopeID
		Span  source.Span
	}

	// TempDecl is an anonymous, always-mutable stack slot.
	TempDecl struct {
		Ty tp.Type
	}

	// ArgDecl is one formal argument.
	ArgDecl struct {
		Ty tp.Type

		// Spread marks an argument that is a tuple after
		// monomorphization and has to be collected from multiple
		// actual arguments.
		Spread bool

		// DebugName is the single-binding pattern name if there is
		// one, or empty. Debuginfo only.
		DebugName string
	}

	// UpvarDecl is a closure capture, with its name and mode.
	UpvarDecl struct {
		DebugName string

		// ByRef marks captures taken behind a reference.
		ByRef bool
	}

	// ScopeData is one node of the lexical nesting forest.
	ScopeData struct {
		Span   source.Span
		Parent ScopeID
	}
)

const (
	Mut Mutability = iota
	Not
)

// MaxIndex bounds every dense index type. Constructing an index at or
// above it is a precondition violation.
const MaxIndex = math.MaxUint32

// NoScope marks the absent parent of a root scope. It is outside the
// constructible index range, so it can never name a real scope.
const NoScope ScopeID = math.MaxUint32

// StartBlock is where execution begins.
const StartBlock BasicBlock = 0

// invariant reports a violated internal invariant. These indicate a
// defect in an upstream producer; processing of the current unit must
// not continue.
func invariant(f string, args ...any) {
	args = append(args, loc.Caller(2))
	panic(fmt.Sprintf("mir: "+f+" (from %v)", args...))
}

func newIndex(kind string, i int) uint32 {
	if i < 0 || i >= MaxIndex {
		invariant("%v index out of representable range: %v", kind, i)
	}

	return uint32(i)
}

func NewBasicBlock(i int) BasicBlock { return BasicBlock(newIndex("block", i)) }
func NewField(i int) Field           { return Field(newIndex("field", i)) }
func NewScopeID(i int) ScopeID       { return ScopeID(newIndex("scope", i)) }

func (bb BasicBlock) Index() int { return int(bb) }
func (f Field) Index() int       { return int(f) }
func (s ScopeID) Index() int     { return int(s) }

func (bb BasicBlock) String() string { return fmt.Sprintf("bb%d", uint32(bb)) }
func (f Field) String() string       { return fmt.Sprintf("field%d", uint32(f)) }

func (s ScopeID) String() string {
	if s == NoScope {
		return "scope_none"
	}

	return fmt.Sprintf("scope%d", uint32(s))
}

func (bb BasicBlock) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	return e.AppendString(b, bb.String())
}

// Block gives access to a block's data. An out-of-range index is an
// internal invariant violation and is fatal.
func (m *Body) Block(bb BasicBlock) *BlockData {
	if bb.Index() >= len(m.Blocks) {
		invariant("block index out of range: %v of %v", bb, len(m.Blocks))
	}

	return &m.Blocks[bb.Index()]
}

// AllBasicBlocks enumerates the block indices in order.
func (m *Body) AllBasicBlocks() []BasicBlock {
	bbs := make([]BasicBlock, len(m.Blocks))

	for i := range bbs {
		bbs[i] = NewBasicBlock(i)
	}

	return bbs
}

// Scope gives access to a scope node. Fatal if out of range.
func (m *Body) Scope(s ScopeID) *ScopeData {
	if s.Index() >= len(m.Scopes) {
		invariant("scope index out of range: %v of %v", s, len(m.Scopes))
	}

	return &m.Scopes[s.Index()]
}

// Term is the terminator accessor. The terminator may be nil only
// during restructuring by the pass that owns the block; observing nil
// from anywhere else is fatal rather than "no successors".
func (d *BlockData) Term() *Terminator {
	if d.Terminator == nil {
		invariant("invalid terminator state")
	}

	return d.Terminator
}

func NewBlockData(t *Terminator) BlockData {
	return BlockData{Terminator: t}
}
