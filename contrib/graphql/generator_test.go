package graphql

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/graphdef/compiler/gen"
	"github.com/syssam/graphdef/compiler/load"
	"github.com/syssam/graphdef/compiler/validate"
	"github.com/syssam/graphdef/dialect"
	"github.com/syssam/graphdef/schema"
	"github.com/syssam/graphdef/subscription"
)

const moviesSDL = `
interface Production {
  title: String!
  actors: [Actor!]! @declareRelationship
}

type Movie implements Production @node @limit(default: 10, max: 50) {
  id: ID! @id
  title: String!
  released: DateTime
  rating: Float
  genres: [Genre!]
  location: Point
  actors: [Actor!]! @relationship(type: "ACTED_IN", direction: IN, properties: "ActedIn")
  director: Person @relationship(type: "DIRECTED", direction: IN)
}

type Series implements Production @node {
  title: String!
  episodes: Int
  tags: [Genre!]
  actors: [Actor!]! @relationship(type: "ACTED_IN", direction: IN, properties: "ActedIn")
}

type Actor @node {
  name: String! @unique
  movies: [Movie!]! @relationship(type: "ACTED_IN", direction: OUT, properties: "ActedIn")
}

type Person @node {
  name: String!
  credits: [Credit!]! @relationship(type: "CREDITED", direction: OUT)
}

type ActedIn @relationshipProperties {
  roles: [String!]
  screenTime: Int
}

union Credit = Movie | Series

enum Genre {
  ACTION
  DRAMA
}
`

func model(t *testing.T, sdl string, opts ...gen.Option) (*gen.Graph, *load.Collection) {
	t.Helper()
	doc, err := load.Normalize([]load.Part{{Name: "test.graphql", Text: sdl}})
	require.NoError(t, err)
	c, err := load.Collect(doc)
	require.NoError(t, err)
	g, err := gen.NewGraph(c, opts...)
	require.NoError(t, err)
	return g, c
}

func generate(t *testing.T, sdl string, features []gen.Feature, opts ...Option) *Result {
	t.Helper()
	g, c := model(t, sdl, gen.WithFeatures(features...))
	gr, err := NewGenerator(append([]Option{WithOptions(gen.WithFeatures(features...))}, opts...)...)
	require.NoError(t, err)
	res, err := gr.Generate(g, c)
	require.NoError(t, err)
	return res
}

func def(t *testing.T, res *Result, name string) *ast.Definition {
	t.Helper()
	d := res.Document.Definitions.ForName(name)
	require.NotNil(t, d, "definition %s", name)
	return d
}

func fieldNames(d *ast.Definition) []string {
	names := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		names = append(names, f.Name)
	}
	return names
}

func TestGenerateMinimal(t *testing.T) {
	t.Parallel()
	res := generate(t, `type User @node { id: ID! @id name: String }`, nil)

	query := def(t, res, "Query")
	assert.Equal(t, []string{"users", "usersConnection", "usersAggregate"}, fieldNames(query))
	users := query.Fields.ForName("users")
	assert.Equal(t, "[User!]!", users.Type.String())
	for _, name := range []string{"where", "limit", "offset", "sort"} {
		assert.NotNil(t, users.Arguments.ForName(name), name)
	}

	mutation := def(t, res, "Mutation")
	assert.Equal(t, []string{"createUsers", "updateUsers", "deleteUsers"}, fieldNames(mutation))
	assert.Equal(t, "[UserCreateInput!]!", mutation.Fields.ForName("createUsers").Arguments.ForName("input").Type.String())
	assert.Equal(t, "DeleteInfo!", mutation.Fields.ForName("deleteUsers").Type.String())

	assert.Equal(t, []string{"name"}, fieldNames(def(t, res, "UserCreateInput")))
	assert.Equal(t, []string{"info", "users"}, fieldNames(def(t, res, "CreateUsersMutationResponse")))
	assert.Equal(t, []string{"edges", "totalCount", "pageInfo"}, fieldNames(def(t, res, "UsersConnection")))
	assert.Equal(t, []string{"cursor", "node"}, fieldNames(def(t, res, "UserEdge")))

	where := def(t, res, "UserWhere")
	assert.Equal(t, "StringScalarFilters", where.Fields.ForName("name").Type.Name())
	flat := where.Fields.ForName("name_EQ")
	require.NotNil(t, flat)
	assert.NotNil(t, flat.Directives.ForName("deprecated"))
	for _, name := range []string{"AND", "OR", "NOT"} {
		assert.NotNil(t, where.Fields.ForName(name), name)
	}

	assert.Equal(t, []string{"count", "id", "name"}, fieldNames(def(t, res, "UserAggregateSelection")))
	assert.Nil(t, res.Document.Definitions.ForName("Subscription"))
	require.NoError(t, validate.Augmented(res.Document))
}

func TestGenerateDeterministic(t *testing.T) {
	t.Parallel()
	first := generate(t, moviesSDL, nil)
	for range 5 {
		again := generate(t, moviesSDL, nil)
		require.Equal(t, first.SDL, again.SDL)
	}
}

func TestGenerateValid(t *testing.T) {
	t.Parallel()
	res := generate(t, moviesSDL, nil)
	require.NoError(t, validate.Augmented(res.Document))

	t.Run("catalog types", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, ast.Scalar, def(t, res, "DateTime").Kind)
		assert.Equal(t, ast.Object, def(t, res, "Point").Kind)
		assert.Equal(t, "PointInput", def(t, res, "PointFilters").Fields.ForName("eq").Type.Name())
	})

	t.Run("graph directives are removed", func(t *testing.T) {
		t.Parallel()
		assert.NotContains(t, res.SDL, "@node")
		assert.NotContains(t, res.SDL, "@relationship")
		assert.NotContains(t, res.SDL, "@limit")
	})

	t.Run("default page size", func(t *testing.T) {
		t.Parallel()
		limit := def(t, res, "Query").Fields.ForName("movies").Arguments.ForName("limit")
		require.NotNil(t, limit.DefaultValue)
		assert.Equal(t, "10", limit.DefaultValue.Raw)
		op, ok := res.Operations.Get("Query", "movies")
		require.True(t, ok)
		assert.Equal(t, 50, op.MaxLimit)
	})

	t.Run("interface", func(t *testing.T) {
		t.Parallel()
		query := def(t, res, "Query")
		assert.NotNil(t, query.Fields.ForName("productions"))
		assert.NotNil(t, query.Fields.ForName("productionsAggregate"))
		op, ok := res.Operations.Get("Query", "productions")
		require.True(t, ok)
		assert.Equal(t, []string{"Movie", "Series"}, op.Members)

		impl := def(t, res, "ProductionImplementation")
		require.Len(t, impl.EnumValues, 2)
		assert.Equal(t, "[ProductionImplementation!]", def(t, res, "ProductionWhere").Fields.ForName("typename").Type.String())

		// Implementers share the relationship types of the interface.
		for _, name := range []string{"Movie", "Series"} {
			conn := def(t, res, name).Fields.ForName("actorsConnection")
			assert.Equal(t, "ProductionActorsConnection!", conn.Type.String(), name)
		}
		rel := def(t, res, "ProductionActorsRelationship")
		assert.Equal(t, "ActedIn!", rel.Fields.ForName("properties").Type.String())
		// Mutation inputs keep the entity prefix.
		assert.Equal(t, "MovieActorsFieldInput", def(t, res, "MovieCreateInput").Fields.ForName("actors").Type.Name())
	})

	t.Run("union", func(t *testing.T) {
		t.Parallel()
		where := def(t, res, "CreditWhere")
		assert.Equal(t, []string{"Movie", "Series"}, fieldNames(where))
		credits := def(t, res, "Person").Fields.ForName("credits")
		assert.Equal(t, "CreditWhere", credits.Arguments.ForName("where").Type.Name())
		assert.Nil(t, def(t, res, "Person").Fields.ForName("creditsAggregate"))
		assert.Equal(t, []string{"Movie", "Series"}, fieldNames(def(t, res, "PersonCreditsConnectionWhere")))
	})

	t.Run("connectOrCreate needs a unique target", func(t *testing.T) {
		t.Parallel()
		actors := def(t, res, "MovieActorsFieldInput")
		assert.NotNil(t, actors.Fields.ForName("connectOrCreate"))
		assert.Equal(t, []string{"name"}, fieldNames(def(t, res, "ActorUniqueWhere")))
		director := def(t, res, "MovieDirectorFieldInput")
		assert.Nil(t, director.Fields.ForName("connectOrCreate"))
		assert.NotNil(t, director.Fields.ForName("create"))
		assert.NotNil(t, director.Fields.ForName("connect"))
	})

	t.Run("relationship properties", func(t *testing.T) {
		t.Parallel()
		create := def(t, res, "MovieActorsCreateFieldInput")
		assert.Equal(t, "ActedInCreateInput", create.Fields.ForName("edge").Type.Name())
		assert.NotNil(t, def(t, res, "ActedInWhere").Fields.ForName("screenTime"))
	})

	t.Run("numeric mutations", func(t *testing.T) {
		t.Parallel()
		update := def(t, res, "MovieUpdateInput")
		assert.Equal(t, "FloatScalarMutations", update.Fields.ForName("rating").Type.Name())
		assert.Equal(t, []string{"set", "add", "subtract", "multiply", "divide"}, fieldNames(def(t, res, "FloatScalarMutations")))
		assert.NotNil(t, update.Fields.ForName("rating_ADD"))
	})
}

func TestGenerateEnumListFilters(t *testing.T) {
	t.Parallel()
	res := generate(t, moviesSDL, nil)
	assert.Equal(t, 1, strings.Count(res.SDL, "input GenreListEnumScalarFilters "))
	assert.Equal(t, "GenreListEnumScalarFilters", def(t, res, "MovieWhere").Fields.ForName("genres").Type.Name())
	assert.Equal(t, "GenreListEnumScalarFilters", def(t, res, "SeriesWhere").Fields.ForName("tags").Type.Name())
	assert.Equal(t, []string{"eq", "includes"}, fieldNames(def(t, res, "GenreListEnumScalarFilters")))
}

func TestGenerateExcludeDeprecated(t *testing.T) {
	t.Parallel()
	res := generate(t, moviesSDL, []gen.Feature{gen.FeatureExcludeDeprecatedFields})
	require.NoError(t, validate.Augmented(res.Document))
	assert.NotContains(t, res.SDL, "@deprecated")
	where := def(t, res, "MovieWhere")
	assert.Nil(t, where.Fields.ForName("title_EQ"))
	assert.Nil(t, where.Fields.ForName("actors_ALL"))
	assert.NotNil(t, where.Fields.ForName("title"))
	assert.Nil(t, def(t, res, "MovieUpdateInput").Fields.ForName("rating_ADD"))
}

func TestGenerateNestedOperations(t *testing.T) {
	t.Parallel()
	const sdl = `
type Movie @node {
  title: String!
  director: Person @relationship(type: "DIRECTED", direction: IN, nestedOperations: [CONNECT])
  writer: Person @relationship(type: "WROTE", direction: IN, nestedOperations: [])
}

type Person @node {
  name: String!
}
`
	res := generate(t, sdl, nil)
	require.NoError(t, validate.Augmented(res.Document))

	assert.Equal(t, []string{"connect"}, fieldNames(def(t, res, "MovieDirectorFieldInput")))
	assert.Nil(t, res.Document.Definitions.ForName("MovieDirectorCreateFieldInput"))
	update := def(t, res, "MovieDirectorUpdateFieldInput")
	assert.Equal(t, []string{"where", "connect"}, fieldNames(update))

	create := def(t, res, "MovieCreateInput")
	assert.NotNil(t, create.Fields.ForName("director"))
	assert.Nil(t, create.Fields.ForName("writer"))
	assert.Nil(t, def(t, res, "MovieUpdateInput").Fields.ForName("writer"))
	// Filters do not depend on nested operations.
	assert.NotNil(t, def(t, res, "MovieWhere").Fields.ForName("writer"))
}

func TestGenerateUnionConnectOrCreate(t *testing.T) {
	t.Parallel()

	t.Run("mixed_uniqueness", func(t *testing.T) {
		t.Parallel()
		res := generate(t, moviesSDL, nil)
		require.NoError(t, validate.Augmented(res.Document))
		for _, name := range []string{
			"PersonCreditsMovieFieldInput",
			"PersonCreditsMovieUpdateFieldInput",
			"PersonCreditsSeriesFieldInput",
			"PersonCreditsSeriesUpdateFieldInput",
		} {
			d := def(t, res, name)
			assert.Nil(t, d.Fields.ForName("connectOrCreate"), name)
			assert.NotNil(t, d.Fields.ForName("connect"), name)
		}
	})

	t.Run("uniform_uniqueness", func(t *testing.T) {
		t.Parallel()
		const sdl = `
type Person @node {
  name: String!
  credits: [Credit!]! @relationship(type: "CREDITED", direction: OUT)
}

type Movie @node {
  id: ID! @id
  title: String!
}

type Series @node {
  id: ID! @id
  title: String!
}

union Credit = Movie | Series
`
		res := generate(t, sdl, nil)
		require.NoError(t, validate.Augmented(res.Document))
		assert.NotNil(t, def(t, res, "PersonCreditsMovieFieldInput").Fields.ForName("connectOrCreate"))
		assert.NotNil(t, def(t, res, "PersonCreditsSeriesUpdateFieldInput").Fields.ForName("connectOrCreate"))
	})
}

func TestGenerateConnectionAggregateFilter(t *testing.T) {
	t.Parallel()

	t.Run("nested", func(t *testing.T) {
		t.Parallel()
		res := generate(t, moviesSDL, nil)
		require.NoError(t, validate.Augmented(res.Document))
		where := def(t, res, "MovieWhere")
		filters := def(t, res, where.Fields.ForName("actorsConnection").Type.Name())
		assert.Equal(t, []string{"aggregate", "all", "none", "single", "some"}, fieldNames(filters))

		flat := where.Fields.ForName("actorsAggregate")
		require.NotNil(t, flat)
		assert.Equal(t, filters.Fields.ForName("aggregate").Type.Name(), flat.Type.Name())
		deprecated := flat.Directives.ForName("deprecated")
		require.NotNil(t, deprecated)
		assert.Contains(t, deprecated.Arguments.ForName("reason").Value.Raw, "actorsConnection: { aggregate: ... }")
	})

	t.Run("exclude_deprecated", func(t *testing.T) {
		t.Parallel()
		res := generate(t, moviesSDL, []gen.Feature{gen.FeatureExcludeDeprecatedFields})
		where := def(t, res, "MovieWhere")
		assert.Nil(t, where.Fields.ForName("actorsAggregate"))
		filters := def(t, res, where.Fields.ForName("actorsConnection").Type.Name())
		assert.NotNil(t, filters.Fields.ForName("aggregate"))
	})

	t.Run("aggregate_only", func(t *testing.T) {
		t.Parallel()
		const sdl = `
type Movie @node {
  title: String!
  actors: [Actor!]! @relationship(type: "ACTED_IN", direction: IN) @filterable(byValue: false)
}

type Actor @node {
  name: String!
}
`
		res := generate(t, sdl, nil)
		require.NoError(t, validate.Augmented(res.Document))
		where := def(t, res, "MovieWhere")
		assert.Nil(t, where.Fields.ForName("actorsConnection"))
		flat := where.Fields.ForName("actorsAggregate")
		require.NotNil(t, flat)
		assert.Nil(t, flat.Directives.ForName("deprecated"))
	})

	t.Run("no_aggregate", func(t *testing.T) {
		t.Parallel()
		const sdl = `
type Movie @node {
  title: String!
  actors: [Actor!]! @relationship(type: "ACTED_IN", direction: IN, aggregate: false)
}

type Actor @node {
  name: String!
}
`
		res := generate(t, sdl, nil)
		where := def(t, res, "MovieWhere")
		assert.Nil(t, where.Fields.ForName("actorsAggregate"))
		filters := def(t, res, where.Fields.ForName("actorsConnection").Type.Name())
		assert.Equal(t, []string{"all", "none", "single", "some"}, fieldNames(filters))
	})
}

func TestGenerateAbstractRoots(t *testing.T) {
	t.Parallel()
	sdl := strings.Replace(moviesSDL, "interface Production {", "interface Production @query(aggregate: false) @limit(default: 5, max: 20) {", 1)
	sdl = strings.Replace(sdl, "union Credit =", "union Credit @query(read: false) =", 1)
	res := generate(t, sdl, nil)
	require.NoError(t, validate.Augmented(res.Document))
	query := def(t, res, "Query")

	assert.Nil(t, query.Fields.ForName("productionsAggregate"))
	read := query.Fields.ForName("productions")
	require.NotNil(t, read)
	assert.Equal(t, "5", read.Arguments.ForName("limit").DefaultValue.Raw)
	op, ok := res.Operations.Get("Query", "productions")
	require.True(t, ok)
	assert.Equal(t, 20, op.MaxLimit)
	_, ok = res.Operations.Get("Query", "productionsAggregate")
	assert.False(t, ok)

	assert.Nil(t, query.Fields.ForName("credits"))
	_, ok = res.Operations.Get("Query", "credits")
	assert.False(t, ok)
	assert.NotNil(t, def(t, res, "Person").Fields.ForName("credits"))
	assert.NotNil(t, query.Fields.ForName("moviesAggregate"))
}

func TestGenerateErrors(t *testing.T) {
	t.Parallel()

	t.Run("no query fields", func(t *testing.T) {
		t.Parallel()
		g := (&gen.Graph{}).Link()
		gr, err := NewGenerator()
		require.NoError(t, err)
		_, err = gr.Generate(g, nil)
		require.Error(t, err)
		assert.True(t, gen.IsGenerationError(err))
		assert.Contains(t, err.Error(), "no query fields")
	})

	t.Run("attribute kind without generated types", func(t *testing.T) {
		t.Parallel()
		g := (&gen.Graph{Nodes: []*gen.Type{{
			Name:   "Thing",
			Plural: "things",
			Fields: []*gen.Field{{Name: "x", Type: gen.TypeRef{Name: "X"}}},
			Query:  gen.QueryOps{Read: true},
		}}}).Link()
		gr, err := NewGenerator()
		require.NoError(t, err)
		_, err = gr.Generate(g, nil)
		require.Error(t, err)
		assert.True(t, gen.IsGenerationError(err))
		assert.Contains(t, err.Error(), "x")
	})

	t.Run("nil model", func(t *testing.T) {
		t.Parallel()
		gr, err := NewGenerator()
		require.NoError(t, err)
		_, err = gr.Generate(nil, nil)
		assert.True(t, gen.IsGenerationError(err))
	})

	t.Run("hook", func(t *testing.T) {
		t.Parallel()
		g, c := model(t, `type User @node { name: String }`)
		gr, err := NewGenerator(WithSchemaHook(func(*gen.Graph, *ast.SchemaDocument) error {
			return assert.AnError
		}))
		require.NoError(t, err)
		_, err = gr.Generate(g, c)
		require.ErrorIs(t, err, assert.AnError)
	})
}

func TestGenerateRenamedRoots(t *testing.T) {
	t.Parallel()
	const sdl = `
schema { query: Root }
type Root { ping: String }
type User @node { name: String }
`
	res := generate(t, sdl, nil)
	require.Len(t, res.Document.Schema, 1)
	root := def(t, res, "Root")
	assert.NotNil(t, root.Fields.ForName("users"))
	assert.NotNil(t, root.Fields.ForName("ping"))
	_, ok := res.Operations.Get("Root", "users")
	assert.True(t, ok)
}

type recorder struct {
	mu   sync.Mutex
	ops  []*dialect.Operation
	rows map[string][]map[string]any
	sess []dialect.AccessMode
}

func (r *recorder) Execute(_ context.Context, op *dialect.Operation, _ dialect.Session) (*dialect.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
	res := &dialect.Result{Rows: r.rows[op.Field+":"+op.Entity]}
	if op.Kind == dialect.OpCreate {
		res.Counters.NodesCreated = len(res.Rows)
	}
	return res, nil
}

func (r *recorder) Session(_ context.Context, mode dialect.AccessMode) (dialect.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sess = append(r.sess, mode)
	return dialect.NopSession{}, nil
}

func (r *recorder) op(field string) *dialect.Operation {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, op := range r.ops {
		if op.Field == field {
			return op
		}
	}
	return nil
}

func execute(t *testing.T, s graphql.Schema, query string, vars map[string]any) string {
	t.Helper()
	out := graphql.Do(graphql.Params{
		Schema:         s,
		RequestString:  query,
		VariableValues: vars,
		Context:        context.Background(),
	})
	require.Empty(t, out.Errors)
	b, err := json.Marshal(out.Data)
	require.NoError(t, err)
	return string(b)
}

func TestExecutable(t *testing.T) {
	t.Parallel()
	rec := &recorder{rows: map[string][]map[string]any{
		"movies:Movie":           {{"title": "Heat"}},
		"productions:Production": {{"__typename": "Series", "title": "Dark"}},
		"createMovies:Movie":     {{"title": "Ronin"}},
	}}
	res := generate(t, moviesSDL, nil, WithExecutor(rec), WithDriver(rec))
	s, err := Executable(res.Document, res.Resolvers)
	require.NoError(t, err)

	t.Run("read", func(t *testing.T) {
		data := execute(t, s, `{ movies(limit: 100) { title } }`, nil)
		assert.JSONEq(t, `{"movies":[{"title":"Heat"}]}`, data)
		op := rec.op("movies")
		require.NotNil(t, op)
		assert.Equal(t, dialect.OpRead, op.Kind)
		assert.Equal(t, 50, op.Args["limit"])
		require.Len(t, op.Selection, 1)
		assert.Equal(t, "title", op.Selection[0].Name)
	})

	t.Run("interface", func(t *testing.T) {
		data := execute(t, s, `{ productions { __typename title } }`, nil)
		assert.JSONEq(t, `{"productions":[{"__typename":"Series","title":"Dark"}]}`, data)
	})

	t.Run("create", func(t *testing.T) {
		data := execute(t, s, `mutation { createMovies(input: [{ title: "Ronin" }]) { info { nodesCreated } movies { title } } }`, nil)
		assert.JSONEq(t, `{"createMovies":{"info":{"nodesCreated":1},"movies":[{"title":"Ronin"}]}}`, data)
		op := rec.op("createMovies")
		require.NotNil(t, op)
		assert.Equal(t, "movies", op.Plural)
	})

	t.Run("aggregate without rows", func(t *testing.T) {
		data := execute(t, s, `{ moviesAggregate { count } }`, nil)
		assert.JSONEq(t, `{"moviesAggregate":{"count":0}}`, data)
	})

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Contains(t, rec.sess, dialect.WriteAccess)
	assert.Contains(t, rec.sess, dialect.ReadAccess)
}

func TestExecutableMissingQuery(t *testing.T) {
	t.Parallel()
	_, err := Executable(&ast.SchemaDocument{}, nil)
	require.Error(t, err)
	assert.True(t, gen.IsGenerationError(err))
}

func TestFederation(t *testing.T) {
	t.Parallel()
	const sdl = `
type Actor @node @key(fields: "name") {
  name: String! @unique
}

type Studio @node @key(fields: "code") {
  code: String! @unique
  city: String
}

type Review @node {
  body: String
}
`
	rec := &recorder{rows: map[string][]map[string]any{
		"_entities:Actor":  {{"name": "Pacino"}, nil},
		"_entities:Studio": {{"code": "WB", "city": "Burbank"}},
	}}
	res := generate(t, sdl, []gen.Feature{gen.FeatureFederation}, WithExecutor(rec), WithDriver(rec))
	require.NoError(t, validate.Augmented(res.Document, schema.Federation()))

	union := def(t, res, TypeEntity)
	assert.Equal(t, []string{"Actor", "Studio"}, union.Types)
	assert.NotNil(t, def(t, res, "Actor").Directives.ForName("key"))

	s, err := Executable(res.Document, res.Resolvers)
	require.NoError(t, err)

	t.Run("service", func(t *testing.T) {
		var out struct {
			Service struct {
				SDL string `json:"sdl"`
			} `json:"_service"`
		}
		require.NoError(t, json.Unmarshal([]byte(execute(t, s, `{ _service { sdl } }`, nil)), &out))
		assert.Contains(t, out.Service.SDL, "type Actor")
		assert.NotContains(t, out.Service.SDL, "_entities")
		assert.NotContains(t, out.Service.SDL, TypeEntity)
	})

	t.Run("entities", func(t *testing.T) {
		reps := []any{
			map[string]any{"__typename": "Actor", "name": "Pacino"},
			map[string]any{"__typename": "Studio", "code": "WB"},
			map[string]any{"__typename": "Actor", "name": "Nobody"},
		}
		data := execute(t, s, `query($reps: [_Any!]!) {
  _entities(representations: $reps) {
    ... on Actor { name }
    ... on Studio { code city }
  }
}`, map[string]any{"reps": reps})
		assert.JSONEq(t, `{"_entities":[{"name":"Pacino"},{"code":"WB","city":"Burbank"},null]}`, data)

		rec.mu.Lock()
		defer rec.mu.Unlock()
		var batches []string
		for _, op := range rec.ops {
			if op.Kind == dialect.OpEntities {
				batches = append(batches, op.Entity)
				values, _ := op.Args["representations"].([]any)
				if op.Entity == "Actor" {
					assert.Len(t, values, 2)
				}
			}
		}
		assert.Equal(t, []string{"Actor", "Studio"}, batches)
	})

	t.Run("unknown entity", func(t *testing.T) {
		out := graphql.Do(graphql.Params{
			Schema:         s,
			RequestString:  `query($reps: [_Any!]!) { _entities(representations: $reps) { __typename } }`,
			VariableValues: map[string]any{"reps": []any{map[string]any{"__typename": "Review"}}},
		})
		require.NotEmpty(t, out.Errors)
		assert.Contains(t, out.Errors[0].Message, "Review is not an entity")
	})
}

func TestSubscriptions(t *testing.T) {
	t.Parallel()
	engine := subscription.NewMemory()
	t.Cleanup(func() { _ = engine.Close() })
	res := generate(t, moviesSDL, nil, WithSubscriptions(engine))
	require.NoError(t, validate.Augmented(res.Document))

	root := def(t, res, "Subscription")
	for _, name := range []string{"movieCreated", "movieUpdated", "movieDeleted", "actorCreated"} {
		assert.NotNil(t, root.Fields.ForName(name), name)
	}
	updated := def(t, res, "MovieUpdatedEvent")
	assert.Equal(t, []string{"event", "timestamp", "updatedMovie", "previousState"}, fieldNames(updated))
	where := def(t, res, "MovieSubscriptionWhere")
	assert.Nil(t, where.Fields.ForName("location"))
	assert.NotNil(t, where.Fields.ForName("title"))

	fn, ok := res.Resolvers.Get("Subscription", "movieCreated")
	require.True(t, ok)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	v, err := fn(graphql.ResolveParams{
		Context: ctx,
		Args:    map[string]any{"where": map[string]any{"title": map[string]any{"eq": "Heat"}}},
	})
	require.NoError(t, err)
	events, ok := v.(chan any)
	require.True(t, ok)

	require.NoError(t, engine.Publish(ctx, subscription.Event{Type: subscription.Create, Entity: "Movie", Properties: map[string]any{"title": "Ronin"}}))
	require.NoError(t, engine.Publish(ctx, subscription.Event{Type: subscription.Create, Entity: "Movie", Properties: map[string]any{"title": "Heat"}}))

	select {
	case got := <-events:
		payload, ok := got.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "CREATE", payload["event"])
		assert.Equal(t, map[string]any{"title": "Heat"}, payload["createdMovie"])
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}
