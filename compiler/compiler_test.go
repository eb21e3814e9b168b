package compiler

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rill-lang/rill/compiler/mir"
)

func TestLoadRender(t *testing.T) {
	ctx := context.Background()

	m := &mir.Body{
		ReturnTy: "()",
		Blocks: []mir.BlockData{
			mir.NewBlockData(&mir.Terminator{Kind: &mir.Goto{Target: 1}}),
			mir.NewBlockData(&mir.Terminator{Kind: &mir.Return{}}),
		},
	}

	data, err := mir.EncodeBody(m)
	require.NoError(t, err)

	got, err := Load(ctx, "test", data)
	require.NoError(t, err)

	text, err := Render(ctx, nil, got)
	require.NoError(t, err)

	assert.Contains(t, string(text), "goto -> bb1")
	assert.True(t, strings.HasPrefix(string(text), "fn() -> () {\n"))
}

func TestLoadRejectsBadBody(t *testing.T) {
	ctx := context.Background()

	_, err := Load(ctx, "test", []byte(`{"blocks"`))
	assert.Error(t, err)

	// Decodes fine but fails the lowering guarantees.
	m := &mir.Body{
		Blocks: []mir.BlockData{
			mir.NewBlockData(&mir.Terminator{Kind: &mir.Goto{Target: 9}}),
		},
	}

	data, err := mir.EncodeBody(m)
	require.NoError(t, err)

	_, err = Load(ctx, "test", data)
	assert.Error(t, err)
}
