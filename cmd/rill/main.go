package main

import (
	"context"
	"fmt"
	"os"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/rill-lang/rill/compiler"
)

func main() {
	dumpCmd := &cli.Command{
		Name:   "dump",
		Action: dumpAct,
		Args:   cli.Args{},
	}

	edgesCmd := &cli.Command{
		Name:   "edges",
		Action: edgesAct,
		Args:   cli.Args{},
	}

	app := &cli.Command{
		Name:        "rill",
		Description: "rill is a tool for inspecting lowered rill function bodies",
		Commands: []*cli.Command{
			dumpCmd,
			edgesCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func dumpAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		m, err := compiler.LoadFile(ctx, a)
		if err != nil {
			return errors.Wrap(err, "load %v", a)
		}

		text, err := compiler.Render(ctx, nil, m)
		if err != nil {
			return errors.Wrap(err, "render %v", a)
		}

		fmt.Printf("%s", text)
	}

	return nil
}

func edgesAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		m, err := compiler.LoadFile(ctx, a)
		if err != nil {
			return errors.Wrap(err, "load %v", a)
		}

		for _, bb := range m.AllBasicBlocks() {
			t := m.Block(bb).Term()

			succ := t.Successors()
			labels := t.SuccessorLabels()

			fmt.Printf("%v:", bb)

			for i := 0; i < succ.Len(); i++ {
				if labels[i] != "" {
					fmt.Printf(" %s: %v", labels[i], succ.At(i))
				} else {
					fmt.Printf(" %v", succ.At(i))
				}
			}

			fmt.Printf("\n")
		}
	}

	return nil
}
