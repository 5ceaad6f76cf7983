package load

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
)

// Source is a type-definition input. Sources are resolved lazily, once per
// compilation, into a flat list of parts.
type Source interface {
	parts(ctx context.Context) ([]Part, error)
}

// Part is one resolved piece of a Source. Exactly one of Text or Doc is
// meaningful; Text is always populated so that it can be hashed.
type Part struct {
	Name string
	Text string
	doc  *ast.SchemaDocument
}

type (
	stringSource struct{ name, sdl string }
	docSource    struct{ doc *ast.SchemaDocument }
	listSource   []Source
	funcSource   func(context.Context) (Source, error)
	fileSource   []string
)

// String returns a Source for raw SDL text.
func String(sdl string) Source { return stringSource{name: "schema.graphql", sdl: sdl} }

// Named returns a Source for raw SDL text carrying a source name used in
// error positions.
func Named(name, sdl string) Source { return stringSource{name: name, sdl: sdl} }

// Document returns a Source for an already parsed document. The document is
// not modified by normalization.
func Document(doc *ast.SchemaDocument) Source { return docSource{doc: doc} }

// Sources combines several sources, merged in the given order.
func Sources(srcs ...Source) Source { return listSource(srcs) }

// Func returns a Source produced by fn when the compilation first needs it.
func Func(fn func(context.Context) (Source, error)) Source { return funcSource(fn) }

// Files returns a Source reading each path at resolution time.
func Files(paths ...string) Source { return fileSource(paths) }

func (s stringSource) parts(context.Context) ([]Part, error) {
	return []Part{{Name: s.name, Text: s.sdl}}, nil
}

func (s docSource) parts(context.Context) ([]Part, error) {
	if s.doc == nil {
		return nil, fmt.Errorf("load: nil schema document")
	}
	return []Part{{Name: "document", Text: Print(s.doc), doc: s.doc}}, nil
}

func (s listSource) parts(ctx context.Context) ([]Part, error) {
	var all []Part
	for i, src := range s {
		if src == nil {
			return nil, fmt.Errorf("load: nil source at index %d", i)
		}
		ps, err := src.parts(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, ps...)
	}
	return all, nil
}

func (fn funcSource) parts(ctx context.Context) ([]Part, error) {
	src, err := safeCall(ctx, fn)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("load: source function returned nil")
	}
	return src.parts(ctx)
}

func (paths fileSource) parts(context.Context) ([]Part, error) {
	all := make([]Part, 0, len(paths))
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("load: read type definitions %q: %w", p, err)
		}
		all = append(all, Part{Name: p, Text: string(b)})
	}
	return all, nil
}

// safeCall wraps a user source function with recover to ensure no panics escape.
func safeCall(ctx context.Context, fn funcSource) (src Source, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("load: source function panics: %v", v)
			src = nil
		}
	}()
	return fn(ctx)
}

// Resolve flattens src into its parts.
func Resolve(ctx context.Context, src Source) ([]Part, error) {
	if src == nil {
		return nil, fmt.Errorf("load: missing type definitions")
	}
	return src.parts(ctx)
}

// FlatText returns the textual representation of parts used for hashing.
func FlatText(parts []Part) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.Name)
		b.WriteByte(0)
		b.WriteString(p.Text)
		b.WriteByte(0)
	}
	return b.String()
}

// Print formats doc as SDL. The output is stable for a given document and
// does not depend on source positions, which decoded documents lack.
func Print(doc *ast.SchemaDocument) string {
	var buf bytes.Buffer
	formatter.NewFormatter(&buf, formatter.WithIndent("  "), formatter.WithBuiltin()).FormatSchemaDocument(doc)
	return buf.String()
}
