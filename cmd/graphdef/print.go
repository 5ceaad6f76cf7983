package main

import (
	"context"
)

func printCmd(ctx context.Context, e *env, args []string) error {
	fs := e.flags("print")
	subgraph := fs.Bool("subgraph", false, "print the federation subgraph schema")
	out := fs.String("o", "", "write the SDL to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return generate(ctx, e, *subgraph, *out)
}

// generate builds a fresh schema and writes its SDL.
func generate(ctx context.Context, e *env, subgraph bool, out string) error {
	g, err := e.open()
	if err != nil {
		return err
	}
	exe, err := schema(ctx, g, subgraph)
	if err != nil {
		return err
	}
	return write(e.stdout, out, exe.SDL)
}
