package load

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

const movieSDL = `
type Movie @node {
  title: String!
}
extend type Movie {
  released: Int
}
type Actor @node {
  name: String!
}
`

func TestResolve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("string", func(t *testing.T) {
		t.Parallel()
		parts, err := Resolve(ctx, String("type A { id: ID }"))
		require.NoError(t, err)
		require.Len(t, parts, 1)
		assert.Equal(t, "schema.graphql", parts[0].Name)
	})

	t.Run("list order", func(t *testing.T) {
		t.Parallel()
		parts, err := Resolve(ctx, Sources(Named("a", "type A { id: ID }"), Named("b", "type B { id: ID }")))
		require.NoError(t, err)
		require.Len(t, parts, 2)
		assert.Equal(t, "a", parts[0].Name)
		assert.Equal(t, "b", parts[1].Name)
	})

	t.Run("func is lazy", func(t *testing.T) {
		t.Parallel()
		calls := 0
		src := Func(func(context.Context) (Source, error) {
			calls++
			return String("type A { id: ID }"), nil
		})
		assert.Zero(t, calls)
		_, err := Resolve(ctx, src)
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("func panics", func(t *testing.T) {
		t.Parallel()
		_, err := Resolve(ctx, Func(func(context.Context) (Source, error) { panic("boom") }))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("func error", func(t *testing.T) {
		t.Parallel()
		want := errors.New("unavailable")
		_, err := Resolve(ctx, Func(func(context.Context) (Source, error) { return nil, want }))
		require.ErrorIs(t, err, want)
	})

	t.Run("nil", func(t *testing.T) {
		t.Parallel()
		_, err := Resolve(ctx, nil)
		require.Error(t, err)
		_, err = Resolve(ctx, Sources(String(""), nil))
		require.Error(t, err)
	})

	t.Run("files", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "movie.graphql")
		require.NoError(t, os.WriteFile(path, []byte(movieSDL), 0o600))
		parts, err := Resolve(ctx, Files(path))
		require.NoError(t, err)
		require.Len(t, parts, 1)
		assert.Equal(t, movieSDL, parts[0].Text)

		_, err = Resolve(ctx, Files(filepath.Join(t.TempDir(), "missing.graphql")))
		require.Error(t, err)
	})
}

func TestFlatText(t *testing.T) {
	t.Parallel()
	a := FlatText([]Part{{Name: "a", Text: "x"}, {Name: "b", Text: "y"}})
	b := FlatText([]Part{{Name: "ab", Text: "xy"}})
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, FlatText([]Part{{Name: "a", Text: "x"}, {Name: "b", Text: "y"}}))
}

func TestNormalize(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("folds extensions", func(t *testing.T) {
		t.Parallel()
		parts, err := Resolve(ctx, String(movieSDL))
		require.NoError(t, err)
		doc, err := Normalize(parts)
		require.NoError(t, err)
		require.Empty(t, doc.Extensions)
		movie := doc.Definitions.ForName("Movie")
		require.NotNil(t, movie)
		require.Len(t, movie.Fields, 2)
		assert.Equal(t, "released", movie.Fields[1].Name)
	})

	t.Run("extension without definition", func(t *testing.T) {
		t.Parallel()
		doc, err := Normalize([]Part{{Name: "x", Text: "extend type Genre { name: String }"}})
		require.NoError(t, err)
		require.NotNil(t, doc.Definitions.ForName("Genre"))
	})

	t.Run("does not mutate documents", func(t *testing.T) {
		t.Parallel()
		orig, err := parser.ParseSchema(&ast.Source{Name: "m", Input: movieSDL})
		require.NoError(t, err)
		parts, err := Resolve(ctx, Document(orig))
		require.NoError(t, err)
		_, err = Normalize(parts)
		require.NoError(t, err)
		assert.Len(t, orig.Definitions.ForName("Movie").Fields, 1)
		assert.Len(t, orig.Extensions, 1)
	})

	t.Run("parse error", func(t *testing.T) {
		t.Parallel()
		_, err := Normalize([]Part{{Name: "broken.graphql", Text: "type {"}})
		require.Error(t, err)
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "broken.graphql", perr.Source)
		assert.ErrorIs(t, err, ErrMalformedDocument)
	})

	t.Run("print is stable", func(t *testing.T) {
		t.Parallel()
		parts, err := Resolve(ctx, String(movieSDL))
		require.NoError(t, err)
		d1, err := Normalize(parts)
		require.NoError(t, err)
		d2, err := Normalize(parts)
		require.NoError(t, err)
		assert.Equal(t, Print(d1), Print(d2))
	})
}

func TestCollect(t *testing.T) {
	t.Parallel()

	collect := func(t *testing.T, sdl string) (*Collection, error) {
		t.Helper()
		doc, err := Normalize([]Part{{Name: "t", Text: sdl}})
		require.NoError(t, err)
		return Collect(doc)
	}

	t.Run("partitions", func(t *testing.T) {
		t.Parallel()
		c, err := collect(t, `
			interface Production { title: String }
			type Movie implements Production @node { title: String }
			union Search = Movie
			enum Genre { ACTION DRAMA }
			scalar JSON
			input Extra { x: Int }
			type Query { hello: String }
		`)
		require.NoError(t, err)
		assert.Contains(t, c.Objects, "Movie")
		assert.Contains(t, c.Objects, "Query")
		assert.Contains(t, c.Interfaces, "Production")
		assert.Contains(t, c.Unions, "Search")
		assert.Contains(t, c.Enums, "Genre")
		assert.Contains(t, c.Scalars, "JSON")
		assert.Contains(t, c.Inputs, "Extra")
		assert.Equal(t, []string{"Production", "Movie", "Search", "Genre", "JSON", "Extra", "Query"}, c.Order)
		assert.True(t, c.IsRoot("Query"))
		kind, ok := c.Kind("Search")
		require.True(t, ok)
		assert.Equal(t, ast.Union, kind)
		assert.Equal(t, "Genre", c.Definition("Genre").Name)
		assert.Nil(t, c.Definition("Missing"))
	})

	t.Run("object last wins", func(t *testing.T) {
		t.Parallel()
		c, err := collect(t, `
			type Movie { a: String }
			type Movie { b: String }
		`)
		require.NoError(t, err)
		require.Len(t, c.Objects["Movie"].Fields, 1)
		assert.Equal(t, "b", c.Objects["Movie"].Fields[0].Name)
		assert.Equal(t, []string{"Movie"}, c.Order)
	})

	t.Run("duplicate interface", func(t *testing.T) {
		t.Parallel()
		_, err := collect(t, `
			interface Named { name: String }
			interface Named { title: String }
		`)
		var derr *DefinitionError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "Named", derr.Name)
		assert.ErrorIs(t, err, ErrMalformedDocument)
	})

	t.Run("duplicate union", func(t *testing.T) {
		t.Parallel()
		_, err := collect(t, `
			type A { a: Int }
			union U = A
			union U = A
		`)
		require.Error(t, err)
	})

	t.Run("kind conflict", func(t *testing.T) {
		t.Parallel()
		_, err := collect(t, `
			type Genre { name: String }
			enum Genre { ACTION }
		`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "OBJECT")
	})

	t.Run("schema roots", func(t *testing.T) {
		t.Parallel()
		c, err := collect(t, `
			schema { query: RootQuery }
			type RootQuery { a: Int }
		`)
		require.NoError(t, err)
		assert.Equal(t, "RootQuery", c.Query)
		assert.Equal(t, "Mutation", c.Mutation)
	})
}
