// graphdef compiles GraphQL type definitions into an API schema.
//
// Usage:
//
//	graphdef [-config graphdef.yml] [-log-level info] <command> [flags]
//
// Commands:
//
//	print   print the generated SDL
//	cache   report, clear or clean up the compilation cache
//	serve   serve the API and a playground page
//	watch   regenerate the SDL whenever a type definition file changes
//	models  emit Go models and bind them into gqlgen.yml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/syssam/graphdef"
)

type command struct {
	run   func(context.Context, *env, []string) error
	brief string
}

var commands = map[string]command{
	"print":  {printCmd, "print the generated SDL"},
	"cache":  {cacheCmd, "stats, clear or cleanup the compilation cache"},
	"serve":  {serveCmd, "serve the API and a playground page"},
	"watch":  {watchCmd, "regenerate the SDL whenever a type definition file changes"},
	"models": {modelsCmd, "emit Go models and bind them into gqlgen.yml"},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "graphdef: %v\n", err)
		}
		os.Exit(1)
	}
}

// env is shared by all commands.
type env struct {
	file   *graphdef.File
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

// open returns a GraphQL instance for the configured type definitions.
func (e *env) open(extra ...graphdef.Option) (*graphdef.GraphQL, error) {
	src, err := e.file.Source()
	if err != nil {
		return nil, err
	}
	opts := append(e.file.Options(), graphdef.WithLogger(e.logger))
	return graphdef.New(src, append(opts, extra...)...)
}

// flags returns the flag set of a command.
func (e *env) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("graphdef "+name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("graphdef", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "graphdef.yml", "path to the configuration file")
	level := fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.Usage = func() { usage(stderr, fs) }
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}
	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		fs.Usage()
		return fmt.Errorf("unknown command %q", fs.Arg(0))
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(*level)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	file, err := graphdef.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	e := &env{
		file:   file,
		logger: slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: lvl})),
		stdout: stdout,
		stderr: stderr,
	}
	return cmd.run(ctx, e, fs.Args()[1:])
}

func usage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, "Usage: graphdef [flags] <command> [command flags]\n\nCommands:\n")
	for _, name := range []string{"print", "cache", "serve", "watch", "models"} {
		fmt.Fprintf(w, "  %-8s %s\n", name, commands[name].brief)
	}
	fmt.Fprintf(w, "\nFlags:\n")
	fs.PrintDefaults()
}

// schema builds the API schema, or the subgraph schema.
func schema(ctx context.Context, g *graphdef.GraphQL, subgraph bool) (*graphdef.Executable, error) {
	if subgraph {
		return g.SubgraphSchema(ctx)
	}
	return g.Schema(ctx)
}

// write writes s to path, or to w if path is empty.
func write(w io.Writer, path, s string) error {
	if path == "" {
		_, err := io.WriteString(w, s)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(s), 0o644)
}
