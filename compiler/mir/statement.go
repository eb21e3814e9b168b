package mir

import (
	"github.com/rill-lang/rill/compiler/source"
)

type (
	// Statement is one block-local effect. Statements run in order,
	// then the terminator.
	Statement struct {
		Span  source.Span
		Scope ScopeID
		Kind  StatementKind
	}

	// StatementKind is the closed set of statement behaviors. Adding
	// behavior means adding a variant here, never switching on
	// structural shape somewhere else.
	StatementKind interface {
		isStatement()
	}

	// Assign stores an rvalue's result into a place.
	Assign struct {
		Place  Place
		Rvalue Rvalue
	}
)

func (Assign) isStatement() {}
