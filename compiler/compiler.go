package compiler

import (
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/rill-lang/rill/compiler/mir"
)

// LoadFile reads and decodes an encoded function body.
func LoadFile(ctx context.Context, name string) (*mir.Body, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(data), "name", name)

	return Load(ctx, name, data)
}

// Load decodes a function body and checks the lowering guarantees on
// it before handing it out.
func Load(ctx context.Context, name string, data []byte) (*mir.Body, error) {
	m, err := mir.DecodeBody(data)
	if err != nil {
		return nil, errors.Wrap(err, "decode body")
	}

	err = m.Validate()
	if err != nil {
		return nil, errors.Wrap(err, "validate")
	}

	tlog.SpanFromContext(ctx).Printw("loaded body",
		"name", name,
		"blocks", len(m.Blocks),
		"vars", len(m.Vars),
		"temps", len(m.Temps))

	return m, nil
}

// Render formats a body into its textual form.
func Render(ctx context.Context, b []byte, m *mir.Body) ([]byte, error) {
	p := mir.Printer{Body: m}

	return p.Append(b, m)
}
