package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/syssam/graphdef/compiler/gen"
	"github.com/syssam/graphdef/schema"
)

func parse(t *testing.T, sdl string) *ast.SchemaDocument {
	t.Helper()
	doc, err := parser.ParseSchema(&ast.Source{Name: "test.graphql", Input: sdl})
	require.NoError(t, err)
	return doc
}

func TestDocument(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		doc := parse(t, `
			scalar DateTime
			type Movie @node @plural(value: "films") @authorization(filter: [{ where: { node: { id: "$jwt.sub" } } }]) {
				id: ID! @id
				released: DateTime @timestamp(operations: [CREATE])
				actors: [Actor!]! @relationship(type: "ACTED_IN", direction: IN, nestedOperations: [CONNECT, CREATE])
				location: Point
			}
			type Actor @node @key(fields: "name") { name: String! @unique }
			type Query {
				top(limit: Int = 10): [Movie!]! @cypher(statement: "MATCH (m:Movie) RETURN m", columnName: "m")
			}
		`)
		require.NoError(t, Document(doc))
		query := doc.Definitions.ForName("Query")
		assert.Len(t, query.Fields, 1)
	})

	t.Run("collects every problem", func(t *testing.T) {
		t.Parallel()
		doc := parse(t, `
			type Movie @node @nope {
				title: String @relationship(direction: SIDEWAYS)
				genre: Genre
				title: String
			}
			type Actor @node(labels: "Actor") {
				name: String @id(autogenerate: "yes")
			}
		`)
		err := Document(doc)
		require.Error(t, err)
		assert.ErrorIs(t, err, gen.ErrValidationFailed)
		var errs *gen.ValidationErrors
		require.ErrorAs(t, err, &errs)

		messages := make([]string, 0, len(errs.Errors))
		for _, e := range errs.Errors {
			messages = append(messages, e.Message)
		}
		assert.Contains(t, messages, "unknown directive @nope")
		assert.Contains(t, messages, "@relationship(direction:) SIDEWAYS is not a value of RelationshipDirection")
		assert.Contains(t, messages, "directive @relationship requires argument type")
		assert.Contains(t, messages, "unknown type Genre")
		assert.Contains(t, messages, "field declared more than once")
		assert.Contains(t, messages, `@id(autogenerate:) "yes" is not a valid Boolean`)
		assert.GreaterOrEqual(t, len(errs.Errors), 6)

		for _, e := range errs.Errors {
			if e.Message == "unknown type Genre" {
				assert.Equal(t, "Movie", e.Type)
				assert.Equal(t, "genre", e.Field)
				require.Len(t, e.Locations, 1)
				assert.Equal(t, 4, e.Locations[0].Line)
			}
		}
	})

	t.Run("wrong location", func(t *testing.T) {
		t.Parallel()
		err := Document(parse(t, `type Movie { title: String @node }`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "directive @node is not allowed on FIELD_DEFINITION")
	})

	t.Run("not repeatable", func(t *testing.T) {
		t.Parallel()
		err := Document(parse(t, `type Movie @node @node { title: String }`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not repeatable")
		require.NoError(t, Document(parse(t, `type Movie @node @key(fields: "a") @key(fields: "b") { a: ID b: ID }`)))
	})

	t.Run("interface implementation", func(t *testing.T) {
		t.Parallel()
		err := Document(parse(t, `
			interface Production { title: String! }
			type Movie implements Production @node { name: String }
			type Series implements Genre @node { name: String }
			enum Genre { ACTION }
		`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing field declared by interface Production")
		assert.Contains(t, err.Error(), "implements Genre which is not an interface")
	})

	t.Run("reserved names", func(t *testing.T) {
		t.Parallel()
		err := Document(parse(t, `type Point { x: Int }`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reserved")
	})

	t.Run("does not mutate the document", func(t *testing.T) {
		t.Parallel()
		doc := parse(t, `type Query { hello: String @customResolver }`)
		require.NoError(t, Document(doc))
		assert.Len(t, doc.Definitions.ForName("Query").Fields, 1)
	})
}

func TestAugmented(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		doc := parse(t, `
			type Movie { title: String }
			input MovieWhere { title_EQ: String @deprecated(reason: "use title: { eq: ... }") AND: [MovieWhere!] }
			type Query { movies(where: MovieWhere, limit: Int = 10): [Movie!]! }
		`)
		require.NoError(t, Augmented(doc))
	})

	t.Run("graph directives are unknown", func(t *testing.T) {
		t.Parallel()
		err := Augmented(parse(t, `type Movie @node { title: String } type Query { m: Movie }`))
		require.Error(t, err)
		assert.True(t, gen.IsValidationError(err))
	})

	t.Run("federation directives with extra source", func(t *testing.T) {
		t.Parallel()
		doc := parse(t, `type Movie @key(fields: "id") { id: ID! } type Query { m: Movie }`)
		require.Error(t, Augmented(doc))
		require.NoError(t, Augmented(doc, schema.Federation()))
	})

	t.Run("input used as output", func(t *testing.T) {
		t.Parallel()
		err := Augmented(parse(t, `input MovieWhere { a: Int } type Query { m: MovieWhere }`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be used as a field type")
	})

	t.Run("bad default", func(t *testing.T) {
		t.Parallel()
		err := Augmented(parse(t, `type Query { m(limit: Int = "ten"): Int }`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `default value: "ten" is not a valid Int`)
	})
}
