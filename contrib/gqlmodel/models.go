// Package gqlmodel emits Go models for a generated GraphQL schema and binds
// them into a gqlgen configuration.
//
// Object, input, enum, interface and union types of the augmented document
// become Go types; root operation types and federation internals are
// skipped. Nullable fields are pointers, lists are slices and enums are
// string types with one constant per value:
//
//	f := gqlmodel.Models(res.Document, "models")
//	err := gqlmodel.WriteFile("models/models_gen.go", res.Document, "models")
package gqlmodel

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/vektah/gqlparser/v2/ast"
	"golang.org/x/tools/imports"

	"github.com/syssam/graphdef/compiler/gen"
)

// scalars maps built-in and catalog scalars to Go types. Scalars not
// listed become any.
var scalars = map[string]func() *jen.Statement{
	"ID":            jen.String,
	"String":        jen.String,
	"Int":           jen.Int,
	"Float":         jen.Float64,
	"Boolean":       jen.Bool,
	"BigInt":        jen.Int64,
	"DateTime":      func() *jen.Statement { return jen.Qual("time", "Time") },
	"LocalDateTime": func() *jen.Statement { return jen.Qual("time", "Time") },
	"Date":          func() *jen.Statement { return jen.Qual("time", "Time") },
	"Time":          jen.String,
	"LocalTime":     jen.String,
	"Duration":      jen.String,
}

var initialisms = map[string]bool{
	"id": true, "uuid": true, "url": true, "jwt": true, "json": true, "api": true, "sdl": true,
}

// Models returns the Go file holding the models of doc.
func Models(doc *ast.SchemaDocument, pkg string) *jen.File {
	m := newModeler(doc)
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by graphdef, DO NOT EDIT.")
	for _, d := range doc.Definitions {
		if m.skip(d) {
			continue
		}
		comment(f, d)
		switch d.Kind {
		case ast.Object, ast.InputObject:
			m.structType(f, d)
		case ast.Enum:
			m.enumType(f, d)
		case ast.Interface, ast.Union:
			f.Type().Id(GoName(d.Name)).Interface(jen.Id("Is" + GoName(d.Name)).Params())
		}
	}
	return f
}

// WriteFile renders the models of doc into path, formatted with goimports.
func WriteFile(path string, doc *ast.SchemaDocument, pkg string) error {
	var buf bytes.Buffer
	if err := Models(doc, pkg).Render(&buf); err != nil {
		return fmt.Errorf("gqlmodel: render %s: %w", path, err)
	}
	src, err := imports.Process(path, buf.Bytes(), nil)
	if err != nil {
		return fmt.Errorf("gqlmodel: format %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("gqlmodel: create directory: %w", err)
		}
	}
	return os.WriteFile(path, src, 0o644)
}

// GoName returns the exported Go identifier of a GraphQL name:
// "rating_ADD" becomes RatingAdd and "id" becomes ID.
func GoName(name string) string {
	var b strings.Builder
	for _, part := range strings.Split(name, "_") {
		switch {
		case part == "":
		case initialisms[strings.ToLower(part)]:
			b.WriteString(strings.ToUpper(part))
		case strings.ToUpper(part) == part:
			b.WriteString(gen.Pascal(strings.ToLower(part)))
		default:
			b.WriteString(gen.Pascal(part))
		}
	}
	return b.String()
}

type modeler struct {
	roots map[string]bool
	kinds map[string]ast.DefinitionKind
	// marks lists the abstract types each object belongs to.
	marks map[string][]string
}

func newModeler(doc *ast.SchemaDocument) *modeler {
	m := &modeler{
		roots: map[string]bool{"Query": true, "Mutation": true, "Subscription": true},
		kinds: make(map[string]ast.DefinitionKind),
		marks: make(map[string][]string),
	}
	for _, s := range doc.Schema {
		for _, op := range s.OperationTypes {
			m.roots[op.Type] = true
		}
	}
	for _, d := range doc.Definitions {
		m.kinds[d.Name] = d.Kind
		if m.skip(d) {
			continue
		}
		switch d.Kind {
		case ast.Object:
			for _, i := range d.Interfaces {
				m.marks[d.Name] = append(m.marks[d.Name], i)
			}
		case ast.Union:
			for _, t := range d.Types {
				m.marks[t] = append(m.marks[t], d.Name)
			}
		}
	}
	return m
}

func (m *modeler) skip(d *ast.Definition) bool {
	return d.BuiltIn || m.roots[d.Name] || strings.HasPrefix(d.Name, "_")
}

func (m *modeler) structType(f *jen.File, d *ast.Definition) {
	name := GoName(d.Name)
	f.Type().Id(name).StructFunc(func(g *jen.Group) {
		for _, fd := range d.Fields {
			tag := fd.Name
			if !fd.Type.NonNull {
				tag += ",omitempty"
			}
			s := g.Id(GoName(fd.Name)).Add(m.goType(fd.Type)).Tag(map[string]string{"json": tag})
			if fd.Description != "" {
				s.Comment(oneLine(fd.Description))
			}
		}
	})
	for _, abstract := range m.marks[d.Name] {
		f.Func().Params(jen.Id(name)).Id("Is" + GoName(abstract)).Params().Block()
	}
}

func (m *modeler) enumType(f *jen.File, d *ast.Definition) {
	name := GoName(d.Name)
	f.Type().Id(name).String()
	consts := make([]jen.Code, 0, len(d.EnumValues))
	f.Const().DefsFunc(func(g *jen.Group) {
		for _, v := range d.EnumValues {
			c := name + GoName(v.Name)
			g.Id(c).Id(name).Op("=").Lit(v.Name)
			consts = append(consts, jen.Id(c))
		}
	})
	f.Commentf("All%s lists the values of %s.", name, name)
	f.Var().Id("All" + name).Op("=").Index().Id(name).Values(consts...)
	f.Commentf("IsValid reports whether e is a value of %s.", name)
	f.Func().Params(jen.Id("e").Id(name)).Id("IsValid").Params().Bool().Block(
		jen.Switch(jen.Id("e")).Block(
			jen.Case(consts...).Block(jen.Return(jen.True())),
		),
		jen.Return(jen.False()),
	)
	f.Func().Params(jen.Id("e").Id(name)).Id("String").Params().String().Block(
		jen.Return(jen.String().Call(jen.Id("e"))),
	)
}

func (m *modeler) goType(t *ast.Type) *jen.Statement {
	if t.Elem != nil {
		return jen.Index().Add(m.goType(t.Elem))
	}
	var (
		s       *jen.Statement
		pointer = !t.NonNull
	)
	switch kind := m.kinds[t.NamedType]; {
	case strings.HasPrefix(t.NamedType, "_"):
		s, pointer = jen.Any(), false
	case scalars[t.NamedType] != nil:
		s = scalars[t.NamedType]()
	case kind == ast.Object, kind == ast.InputObject:
		s, pointer = jen.Id(GoName(t.NamedType)), true
	case kind == ast.Enum:
		s = jen.Id(GoName(t.NamedType))
	case kind == ast.Interface, kind == ast.Union:
		s, pointer = jen.Id(GoName(t.NamedType)), false
	default:
		s, pointer = jen.Any(), false
	}
	if pointer {
		return jen.Op("*").Add(s)
	}
	return s
}

func comment(f *jen.File, d *ast.Definition) {
	if d.Description != "" {
		f.Comment(oneLine(d.Description))
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
