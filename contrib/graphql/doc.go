// Package graphql generates the augmented API schema of a graph model and
// assembles it into an executable schema.
//
// The generator takes the model built by compiler/gen and emits, for every
// @node type, the output type, the filter, sort and mutation inputs, the
// aggregate selections and connections, and the query, mutation and
// (optionally) subscription root fields. Every generated root field also
// gets an operation template and a resolver translating it through the
// dialect contracts.
//
// # Usage
//
//	g, err := graphql.NewGenerator(
//	    graphql.WithOptions(gen.WithFeatures(gen.FeatureExcludeDeprecatedFields)),
//	    graphql.WithExecutor(exec),
//	    graphql.WithDriver(drv),
//	)
//	if err != nil {
//	    log.Fatalf("creating generator: %v", err)
//	}
//	res, err := g.Generate(model, collection)
//	if err != nil {
//	    log.Fatalf("generating schema: %v", err)
//	}
//	schema, err := graphql.Executable(res.Document, res.Resolvers)
//
// Generation is deterministic: definitions are emitted in model order and
// each generated type is created once, the first time it is needed.
//
// # Generated Types
//
// For an entity Movie with plural movies:
//
//	Type                          Purpose
//	─────────────────────────────────────────────────────────────────────────
//	Movie                         output type, attributes then relationships
//	MovieWhere                    filter with AND, OR and NOT
//	MovieSort                     sort by attribute
//	MovieCreateInput              create input, nested relationship inputs
//	MovieUpdateInput              update input with generic mutations
//	MovieDeleteInput              nested delete input
//	MovieAggregateSelection       root aggregate output
//	MoviesConnection, MovieEdge   root connection
//
// Relationships add types prefixed by the source type and field name, for
// example MovieActorsConnection, MovieActorsConnectionWhere and
// MovieActorsFieldInput. Nested inputs are generated only for the
// operations the relationship allows.
//
// # Filters and Mutations
//
// Attribute filters use the generic form:
//
//	movies(where: { title: { contains: "Matrix" }, released: { gt: 1999 } })
//
// The flat forms (title_CONTAINS, released_GT) are generated as well,
// marked @deprecated with a pointer to the generic filter, unless the
// excludeDeprecatedFields feature is enabled. Updates work the same way:
//
//	updateMovies(update: { rating: { add: 1 } })
//
// Filter and mutation types are shared by all attributes of one type and
// kind: every String attribute uses StringScalarFilters, every list of the
// Genre enum uses GenreListEnumScalarFilters.
//
// # Interfaces and Unions
//
// Interfaces get read, connection and aggregate root fields over their
// implementers and a {Interface}Implementation enum used by the typename
// filter. Union inputs are keyed by member type:
//
//	search(where: { Movie: { title: { eq: "Heat" } }, Series: { ... } })
//
// # Subscriptions
//
// With a subscription engine, each entity gets {entity}Created,
// {entity}Updated and {entity}Deleted root fields streaming events that
// match a {Entity}SubscriptionWhere filter.
//
// # Federation
//
// With the federation feature, entities declaring @key are collected in the
// _Entity union and resolved by Query._entities. Representations are
// grouped by __typename and fetched with one operation per type.
package graphql
