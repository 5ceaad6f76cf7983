// Package schema holds the directive catalog understood by graphdef.
//
// User type definitions annotate plain GraphQL object types with graph
// directives:
//
//	type Movie @node {
//	    id: ID! @id
//	    title: String!
//	    actors: [Actor!]! @relationship(type: "ACTED_IN", direction: IN, properties: "ActedIn")
//	}
//
//	type ActedIn @relationshipProperties {
//	    roles: [String!]
//	}
//
// The catalog is embedded as SDL and merged with user documents during
// validation. Directives consumed by the model builder are stripped from
// the augmented schema; standard directives such as @deprecated pass through.
package schema
