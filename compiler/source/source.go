// Package source supplies source-location values attached to IR nodes.
// They are inert diagnostic payload; nothing in the compiler core
// interprets them.
package source

import (
	"fmt"

	"tlog.app/go/tlog/tlwire"
)

type (
	// Span is a byte range in some source file.
	Span struct {
		Lo uint32
		Hi uint32
	}

	// NodeID refers to a syntax-tree node, used by constants that
	// remember the structural literal they were born from.
	NodeID uint32
)

func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Lo, s.Hi)
}

func (n NodeID) String() string {
	return fmt.Sprintf("node#%d", uint32(n))
}

func (s Span) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 2)
	b = e.AppendKeyInt64(b, "lo", int64(s.Lo))
	b = e.AppendKeyInt64(b, "hi", int64(s.Hi))

	return b
}
