package gen

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/graphdef/compiler/load"
)

func buildGraph(t *testing.T, sdl string, opts ...Option) (*Graph, error) {
	t.Helper()
	doc, err := load.Normalize([]load.Part{{Name: "test.graphql", Text: sdl}})
	require.NoError(t, err)
	c, err := load.Collect(doc)
	require.NoError(t, err)
	return NewGraph(c, opts...)
}

const moviesSDL = `
type Movie @node {
  id: ID! @id
  title: String!
  released: Int
  genres: [Genre!]
  actors: [Actor!]! @relationship(type: "ACTED_IN", direction: IN, properties: "ActedIn")
  director: Person @relationship(type: "DIRECTED", direction: IN, nestedOperations: [])
}

type Actor @node {
  name: String! @unique
  movies: [Movie!]! @relationship(type: "ACTED_IN", direction: OUT, properties: "ActedIn")
}

type Person @node {
  name: String!
}

type ActedIn @relationshipProperties {
  roles: [String!]
}

enum Genre {
  ACTION
  DRAMA
}
`

func TestNewGraph(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	g, err := buildGraph(t, moviesSDL)
	require.NoError(err)
	require.Len(g.Nodes, 3)

	movie, ok := g.Node("Movie")
	require.True(ok)
	assert.Equal(t, "movies", movie.Plural)
	assert.Equal(t, []string{"Movie"}, movie.Labels)
	assert.True(t, movie.Query.Read)
	assert.True(t, movie.Mutation.Create)
	require.Len(movie.Fields, 4)
	require.Len(movie.Edges, 2)

	id, ok := movie.FieldByName("id")
	require.True(ok)
	assert.Equal(t, KindID, id.Kind)
	require.NotNil(id.ID)
	assert.True(t, id.ID.Autogenerate)
	assert.False(t, id.SettableOnCreate())

	genres, _ := movie.FieldByName("genres")
	assert.Equal(t, KindEnum, genres.Kind)
	assert.True(t, genres.Type.List)

	actors, ok := movie.EdgeByName("actors")
	require.True(ok)
	assert.Equal(t, "ACTED_IN", actors.Label)
	assert.Equal(t, DirectionIn, actors.Direction)
	assert.Equal(t, "ActedIn", actors.Properties)
	assert.Equal(t, AllNestedOps, actors.NestedOps)
	assert.True(t, actors.List)
	assert.True(t, actors.Aggregate)

	director, _ := movie.EdgeByName("director")
	assert.Equal(t, NestedOps(0), director.NestedOps)
	assert.False(t, director.SettableOnCreate())
	assert.False(t, director.SettableOnUpdate())

	props, ok := g.Object("ActedIn")
	require.True(ok)
	assert.True(t, props.Properties)

	_, ok = g.Enum("Genre")
	assert.True(t, ok)
}

func TestNewGraphErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		sdl   string
		typ   string
		field string
		edge  bool
	}{
		{
			name:  "unknown type",
			sdl:   `type A @node { x: Missing }`,
			typ:   "A",
			field: "x",
		},
		{
			name:  "cypher and timestamp",
			sdl:   `type A @node { t: DateTime @timestamp @cypher(statement: "RETURN 1 AS x", columnName: "x") }`,
			typ:   "A",
			field: "t",
		},
		{
			name:  "cypher and alias",
			sdl:   `type A @node { t: Int @alias(property: "tt") @cypher(statement: "RETURN 1 AS x", columnName: "x") }`,
			typ:   "A",
			field: "t",
		},
		{
			name:  "cypher and id",
			sdl:   `type A @node { t: ID @cypher(statement: "RETURN 1 AS x", columnName: "x") @id }`,
			typ:   "A",
			field: "t",
		},
		{
			name:  "custom resolver and timestamp",
			sdl:   `type A @node { t: DateTime @customResolver @timestamp }`,
			typ:   "A",
			field: "t",
		},
		{
			name:  "timestamp on string",
			sdl:   `type A @node { t: String @timestamp }`,
			typ:   "A",
			field: "t",
		},
		{
			name:  "id on list",
			sdl:   `type A @node { ids: [ID!] @id(autogenerate: false) }`,
			typ:   "A",
			field: "ids",
		},
		{
			name:  "bad direction",
			sdl:   `type A @node { b: [B!]! @relationship(type: "R", direction: SIDEWAYS) } type B @node { x: Int }`,
			typ:   "A",
			field: "b",
		},
		{
			name:  "label must be a string",
			sdl:   `type A @node { b: [B!]! @relationship(type: R, direction: OUT) } type B @node { x: Int }`,
			typ:   "A",
			field: "b",
		},
		{
			name:  "node reference without relationship",
			sdl:   `type A @node { b: B } type B @node { x: Int }`,
			typ:   "A",
			field: "b",
		},
		{
			name:  "nested list",
			sdl:   `type A @node { m: [[Int]] }`,
			typ:   "A",
			field: "m",
		},
		{
			name: "duplicate relationship",
			sdl: `type A @node {
				b1: [B!]! @relationship(type: "R", direction: OUT)
				b2: [B!]! @relationship(type: "R", direction: OUT)
			}
			type B @node { x: Int }`,
			edge: true,
		},
		{
			name: "properties mismatch",
			sdl: `type A @node { b: [B!]! @relationship(type: "R", direction: OUT, properties: "P1") }
			type B @node { a: [A!]! @relationship(type: "R", direction: IN, properties: "P2") }
			type P1 @relationshipProperties { x: Int }
			type P2 @relationshipProperties { y: Int }`,
			edge: true,
		},
		{
			name: "properties not marked",
			sdl: `type A @node { b: [B!]! @relationship(type: "R", direction: OUT, properties: "P") }
			type B @node { x: Int }
			type P { x: Int }`,
			edge: true,
		},
		{
			name: "implementer disagrees on aggregate",
			sdl: `interface Production { actors: [Actor!]! @declareRelationship }
			type Movie implements Production @node { actors: [Actor!]! @relationship(type: "ACTED_IN", direction: IN) }
			type Series implements Production @node { actors: [Actor!]! @relationship(type: "ACTED_IN", direction: IN, aggregate: false) }
			type Actor @node { name: String }`,
			edge: true,
		},
		{
			name: "aggregate query on union",
			sdl:  `type A @node { x: Int } type B @node { y: Int } union U @query(aggregate: true) = A | B`,
			typ:  "U",
		},
		{
			name: "relationship to scalar",
			sdl:  `type A @node { b: Int @relationship(type: "R", direction: OUT) }`,
			edge: true,
		},
		{
			name:  "root field without implementation",
			sdl:   `type A @node { x: Int } type Query { hello: String }`,
			typ:   "Query",
			field: "hello",
		},
		{
			name:  "unknown authorization attribute",
			sdl:   `type A @node @authorization(filter: [{ where: { node: { owner: "$jwt.sub" } } }]) { x: Int }`,
			typ:   "A",
			field: "owner",
		},
		{
			name: "unknown authorization operation",
			sdl:  `type A @node @authorization(validate: [{ operations: [EXPLODE] }]) { x: Int }`,
			typ:  "A",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := buildGraph(t, tt.sdl)
			require.Error(t, err)
			if tt.edge {
				assert.True(t, IsEdgeError(err), err.Error())
				assert.ErrorIs(t, err, ErrInvalidEdge)
				return
			}
			var serr *SchemaError
			require.ErrorAs(t, err, &serr, err.Error())
			assert.ErrorIs(t, err, ErrInvalidSchema)
			assert.Equal(t, tt.typ, serr.Type)
			assert.Equal(t, tt.field, serr.Field)
		})
	}
}

func TestAnnotations(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	g, err := buildGraph(t, `
		type Post @node {
			id: ID! @id
			slug: String! @unique(constraintName: "post_slug")
			body: String @alias(property: "content")
			createdAt: DateTime! @timestamp(operations: [CREATE])
			updatedAt: DateTime @timestamp
			score: Float @cypher(statement: "RETURN 1.0 AS s", columnName: "s")
			summary: String @customResolver(requires: "body")
			status: String @default(value: "draft") @settable(onUpdate: false)
			secret: String @selectable(onRead: false, onAggregate: false) @filterable(byValue: false)
			views: Int @sortable(byValue: false)
			legacy: String @deprecated(reason: "use body")
		}
	`, WithResolvers("Post.summary"))
	require.NoError(err)
	post, _ := g.Node("Post")

	slug, _ := post.FieldByName("slug")
	require.NotNil(slug.Unique)
	assert.Equal(t, "post_slug", slug.Unique.ConstraintName)
	assert.Equal(t, []*Field{mustField(t, post, "id"), slug}, post.KeyFields())

	body, _ := post.FieldByName("body")
	assert.Equal(t, "content", body.Property())

	created, _ := post.FieldByName("createdAt")
	assert.Equal(t, &TimestampAnnotation{OnCreate: true}, created.Timestamp)
	assert.False(t, created.SettableOnCreate())
	updated, _ := post.FieldByName("updatedAt")
	assert.Equal(t, &TimestampAnnotation{OnCreate: true, OnUpdate: true}, updated.Timestamp)

	score, _ := post.FieldByName("score")
	require.NotNil(score.Cypher)
	assert.True(t, score.Computed())
	assert.True(t, score.FilterableByValue())
	assert.False(t, score.SettableOnCreate())

	summary, _ := post.FieldByName("summary")
	assert.True(t, summary.HasUserResolver)
	assert.False(t, summary.FilterableByValue())

	status, _ := post.FieldByName("status")
	require.NotNil(status.Default)
	assert.Equal(t, `"draft"`, status.Default.String())
	assert.True(t, status.SettableOnCreate())
	assert.False(t, status.SettableOnUpdate())

	secret, _ := post.FieldByName("secret")
	assert.False(t, secret.Readable())
	assert.False(t, secret.FilterableByValue())
	assert.False(t, secret.Aggregatable())

	views, _ := post.FieldByName("views")
	assert.False(t, views.SortableByValue())
	assert.True(t, views.Aggregatable())

	legacy, _ := post.FieldByName("legacy")
	require.NotNil(legacy.Deprecated)
	assert.Equal(t, "use body", *legacy.Deprecated)
}

func mustField(t *testing.T, typ *Type, name string) *Field {
	t.Helper()
	f, ok := typ.FieldByName(name)
	require.True(t, ok, name)
	return f
}

func TestPolymorphic(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	g, err := buildGraph(t, `
		interface Production {
			title: String!
			actors: [Actor!]! @declareRelationship
		}
		type Movie implements Production @node {
			id: ID! @id
			title: String!
			actors: [Actor!]! @relationship(type: "ACTED_IN", direction: IN)
		}
		type Series implements Production @node {
			title: String!
			actors: [Actor!]! @relationship(type: "ACTED_IN", direction: IN)
		}
		type Actor @node {
			name: String! @unique
			productions: [Production!]! @relationship(type: "ACTED_IN", direction: OUT)
			favorite: Search @relationship(type: "LIKES", direction: OUT)
			keyed: Keyed @relationship(type: "KEYED", direction: OUT)
		}
		union Search = Movie | Series
		union Keyed = Movie | Actor
	`)
	require.NoError(err)

	prod, ok := g.Interface("Production")
	require.True(ok)
	assert.Equal(t, []string{"Movie", "Series"}, prod.Implementers)
	require.Len(prod.Edges, 1)
	assert.True(t, prod.Edges[0].Declared)

	search, ok := g.Union("Search")
	require.True(ok)
	assert.Equal(t, "searches", search.Plural)
	assert.Len(t, g.Members("Search"), 2)

	actor, _ := g.Node("Actor")
	productions, _ := actor.EdgeByName("productions")
	assert.Equal(t, KindInterface, productions.TargetKind)
	assert.False(t, productions.UniformUniqueness)
	assert.False(t, productions.Allows(OpConnectOrCreate))

	favorite, _ := actor.EdgeByName("favorite")
	assert.Equal(t, KindUnion, favorite.TargetKind)
	assert.False(t, favorite.UniformUniqueness)
	assert.False(t, favorite.Allows(OpConnectOrCreate))
	assert.True(t, favorite.Allows(OpConnect))

	keyed, _ := actor.EdgeByName("keyed")
	assert.True(t, keyed.UniformUniqueness)
	assert.True(t, keyed.Allows(OpConnectOrCreate))
}

func TestDeclaredRelationshipMissing(t *testing.T) {
	t.Parallel()
	_, err := buildGraph(t, `
		interface Production {
			actors: [Actor!]! @declareRelationship
		}
		type Movie implements Production @node {
			actors: [Actor!]!
		}
		type Actor @node { name: String }
	`)
	require.Error(t, err)
}

func TestToggles(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	g, err := buildGraph(t, `
		type Log @node(labels: ["Log", "Audit"]) @plural(value: "Logbook") @query(aggregate: false)
			@mutation(operations: [CREATE]) @subscription(events: [CREATED]) @limit(default: 10, max: 100) {
			line: String
		}
	`)
	require.NoError(err)
	l, _ := g.Node("Log")
	assert.Equal(t, []string{"Log", "Audit"}, l.Labels)
	assert.Equal(t, "logbook", l.Plural)
	assert.Equal(t, QueryOps{Read: true}, l.Query)
	assert.Equal(t, MutationOps{Create: true}, l.Mutation)
	assert.Equal(t, SubscriptionOps{Created: true}, l.Subscription)
	assert.Equal(t, &Limit{Default: 10, Max: 100}, l.Limit)

	_, err = buildGraph(t, `type Log @node @limit(default: 100, max: 10) { line: String }`)
	require.Error(err)
}

func TestAbstractToggles(t *testing.T) {
	t.Parallel()
	g, err := buildGraph(t, `
			interface Entry @query(aggregate: false) @limit(default: 5, max: 20) { line: String }
			interface Plain { line: String }
			type Log implements Entry & Plain @node { line: String }
			type Note @node { text: String }
			union Feed @query(read: false) = Log | Note
			union Open = Log | Note
		`)
	require.NoError(t, err)
	entry, _ := g.Interface("Entry")
	assert.Equal(t, QueryOps{Read: true}, entry.Query)
	assert.Equal(t, &Limit{Default: 5, Max: 20}, entry.Limit)
	plain, _ := g.Interface("Plain")
	assert.Equal(t, QueryOps{Read: true, Aggregate: true}, plain.Query)
	assert.Nil(t, plain.Limit)
	feed, _ := g.Union("Feed")
	assert.Equal(t, QueryOps{}, feed.Query)
	open, _ := g.Union("Open")
	assert.Equal(t, QueryOps{Read: true}, open.Query)
}

func TestPolicy(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	g, err := buildGraph(t, `
		type Doc @node
			@authentication(operations: [DELETE], jwt: { roles: "admin" })
			@authorization(
				filter: [{ operations: [READ], where: { node: { owner: "$jwt.sub" } } }]
				validate: [{ requireAuthentication: false, where: { jwt: { active: true } } }]
			) {
			owner: String!
		}
	`)
	require.NoError(err)
	d, _ := g.Node("Doc")
	require.NotNil(d.Policy)
	assert.True(t, d.Policy.Authentication.Requires(OperationDelete))
	assert.False(t, d.Policy.Authentication.Requires(OperationRead))
	assert.Equal(t, "admin", d.Policy.Authentication.JWT["roles"].Interface())

	filter, validate := d.Policy.Rules(OperationRead)
	require.Len(filter, 1)
	require.Len(validate, 1)
	assert.Equal(t, "$jwt.sub", filter[0].Node["owner"].Interface())
	assert.False(t, validate[0].RequireAuthentication)

	filter, _ = d.Policy.Rules(OperationUpdate)
	assert.Empty(t, filter)
}

func TestUserResolvers(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	g, err := buildGraph(t, `
		type A @node { x: Int, computed: String }
		type Query {
			top: [A!]! @cypher(statement: "MATCH (a:A) RETURN a", columnName: "a")
			hello: String
		}
	`, WithResolvers("A.computed", "Query.hello"))
	require.NoError(err)
	a, _ := g.Node("A")
	computed, _ := a.FieldByName("computed")
	assert.True(t, computed.HasUserResolver)
	require.Len(g.Queries, 2)
	assert.Equal(t, KindNode, g.Queries[0].Kind)
	assert.True(t, g.Queries[1].HasUserResolver)
}

func TestLinkAfterDecode(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	g, err := buildGraph(t, moviesSDL)
	require.NoError(err)
	buf, err := json.Marshal(g)
	require.NoError(err)

	var restored Graph
	require.NoError(json.Unmarshal(buf, &restored))
	_, ok := restored.Node("Movie")
	require.False(ok)

	restored.Link()
	movie, ok := restored.Node("Movie")
	require.True(ok)
	e, ok := movie.EdgeByName("actors")
	require.True(ok)
	assert.Equal(t, "ActedIn", e.Properties)
	again, err := json.Marshal(restored.Link())
	require.NoError(err)
	assert.JSONEq(t, string(buf), string(again))
}

func TestNaming(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "movies", Plural("Movie"))
	assert.Equal(t, "categories", Plural("Category"))
	assert.Equal(t, "actorProfiles", Plural("ActorProfile"))
	assert.Equal(t, "ActedIn", Pascal("actedIn"))
	assert.Equal(t, "Actors", Pascal("actors"))
	assert.Equal(t, "movie", LowerFirst("Movie"))
}

func TestNestedOps(t *testing.T) {
	t.Parallel()
	op, ok := ParseNestedOp("CONNECT_OR_CREATE")
	require.True(t, ok)
	assert.Equal(t, OpConnectOrCreate, op)
	_, ok = ParseNestedOp("MERGE")
	assert.False(t, ok)
	assert.Equal(t, "[CONNECT, CREATE]", (OpConnect | OpCreate).String())
	assert.True(t, AllNestedOps.Has(OpDelete|OpUpdate))
	assert.False(t, OpConnect.Any(OpCreate|OpDelete))
}
