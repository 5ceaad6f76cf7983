// Package graphdef compiles GraphQL type definitions that describe a graph
// database into an executable GraphQL API.
//
// Type definitions are annotated with directives such as @node,
// @relationship and @authorization. From them graphdef builds a schema
// model and generates the API schema: query and mutation root fields,
// filter, sort and input types, aggregations, connections, and optionally
// subscriptions and a federation subgraph. Generated resolvers translate
// requests into dialect operations run by a user supplied executor.
//
//	g, err := graphdef.New(load.Files("schema.graphql"),
//		graphdef.WithExecutor(exec),
//		graphdef.WithCache(graphdef.CacheConfig{Directory: ".graphdef-cache"}),
//	)
//	if err != nil {
//		return err
//	}
//	exe, err := g.Schema(ctx)
//	if err != nil {
//		return err
//	}
//	res := exe.Do(ctx, `{ users { id name } }`, nil)
package graphdef
