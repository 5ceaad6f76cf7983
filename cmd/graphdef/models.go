package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/syssam/graphdef/contrib/gqlmodel"
)

func modelsCmd(ctx context.Context, e *env, args []string) error {
	fs := e.flags("models")
	out := fs.String("o", "graph/model/models_gen.go", "Go file receiving the models")
	pkg := fs.String("package", "", "package name of the models (default: directory name of -o)")
	schemaOut := fs.String("schema", "graph/schema.graphqls", "file receiving the generated SDL")
	config := fs.String("gqlgen", "gqlgen.yml", "gqlgen configuration to bind the models into")
	importPath := fs.String("import", "", "import path of the models package; binding is skipped when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *pkg == "" {
		*pkg = filepath.Base(filepath.Dir(*out))
	}
	g, err := e.open()
	if err != nil {
		return err
	}
	exe, err := g.Schema(ctx)
	if err != nil {
		return err
	}
	if err := gqlmodel.WriteFile(*out, exe.Document, *pkg); err != nil {
		return err
	}
	if err := write(e.stdout, *schemaOut, exe.SDL); err != nil {
		return err
	}
	if *importPath == "" || *config == "" {
		fmt.Fprintf(e.stdout, "wrote %s\n", *out)
		return nil
	}
	c, err := gqlmodel.LoadGQLGenConfig(*config)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(filepath.Dir(*config), *schemaOut)
	if err != nil {
		rel = *schemaOut
	}
	c.BindModels(exe.Document, *importPath, filepath.ToSlash(rel))
	if err := gqlmodel.SaveGQLGenConfig(*config, c); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "wrote %s and bound %s into %s\n", *out, *importPath, *config)
	return nil
}
