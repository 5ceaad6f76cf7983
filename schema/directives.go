package schema

import (
	_ "embed"
	"sync"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// Directive names recognized in user type definitions.
const (
	DirectiveNode                 = "node"
	DirectiveRelationship         = "relationship"
	DirectiveDeclareRelationship  = "declareRelationship"
	DirectiveRelationshipProperty = "relationshipProperties"
	DirectiveID                   = "id"
	DirectiveUnique               = "unique"
	DirectiveTimestamp            = "timestamp"
	DirectiveAlias                = "alias"
	DirectiveCypher               = "cypher"
	DirectiveCustomResolver       = "customResolver"
	DirectiveDefault              = "default"
	DirectiveSettable             = "settable"
	DirectiveFilterable           = "filterable"
	DirectiveSelectable           = "selectable"
	DirectiveSortable             = "sortable"
	DirectivePlural               = "plural"
	DirectiveLimit                = "limit"
	DirectiveQuery                = "query"
	DirectiveMutation             = "mutation"
	DirectiveSubscription         = "subscription"
	DirectiveAuthentication       = "authentication"
	DirectiveAuthorization        = "authorization"
	DirectiveDeprecated           = "deprecated"
	DirectiveKey                  = "key"
	DirectiveShareable            = "shareable"
)

var (
	//go:embed directives.graphql
	directivesSDL string

	//go:embed federation.graphql
	federationSDL string
)

// Directives returns the catalog of graph directives, their argument enums
// and the temporal and spatial scalars as a schema source.
func Directives() *ast.Source {
	return &ast.Source{Name: "graphdef/directives.graphql", Input: directivesSDL, BuiltIn: true}
}

// Federation returns the federation directive catalog used for subgraphs.
func Federation() *ast.Source {
	return &ast.Source{Name: "graphdef/federation.graphql", Input: federationSDL, BuiltIn: true}
}

// IsGraphDirective reports whether name is a directive consumed by the model
// builder. Such directives are removed from the augmented schema output.
func IsGraphDirective(name string) bool {
	_, ok := graphDirectives[name]
	return ok
}

var graphDirectives = map[string]struct{}{
	DirectiveNode:                 {},
	DirectiveRelationship:         {},
	DirectiveDeclareRelationship:  {},
	DirectiveRelationshipProperty: {},
	DirectiveID:                   {},
	DirectiveUnique:               {},
	DirectiveTimestamp:            {},
	DirectiveAlias:                {},
	DirectiveCypher:               {},
	DirectiveCustomResolver:       {},
	DirectiveDefault:              {},
	DirectiveSettable:             {},
	DirectiveFilterable:           {},
	DirectiveSelectable:           {},
	DirectiveSortable:             {},
	DirectivePlural:               {},
	DirectiveLimit:                {},
	DirectiveQuery:                {},
	DirectiveMutation:             {},
	DirectiveSubscription:         {},
	DirectiveAuthentication:       {},
	DirectiveAuthorization:        {},
}

// Built-in scalar names of the GraphQL specification.
var builtinScalars = map[string]struct{}{
	"ID": {}, "String": {}, "Int": {}, "Float": {}, "Boolean": {},
}

// IsBuiltinScalar reports whether name is one of the five GraphQL scalars.
func IsBuiltinScalar(name string) bool {
	_, ok := builtinScalars[name]
	return ok
}

var federationDirectives = map[string]struct{}{
	DirectiveKey:       {},
	DirectiveShareable: {},
	"external":         {},
	"requires":         {},
	"provides":         {},
	"extends":          {},
	"inaccessible":     {},
}

// IsFederationDirective reports whether name is declared by the federation
// catalog. Such directives are kept only in subgraph output.
func IsFederationDirective(name string) bool {
	_, ok := federationDirectives[name]
	return ok
}

var catalog = sync.OnceValue(func() *ast.SchemaDocument {
	doc, err := parser.ParseSchema(Directives())
	if err != nil {
		panic("schema: invalid directive catalog: " + err.Error())
	}
	return doc
})

// CatalogType returns a copy of a type declared by the directive catalog,
// such as DateTime or Point. The copy is not marked built-in and carries no
// source positions.
func CatalogType(name string) (*ast.Definition, bool) {
	def := catalog().Definitions.ForName(name)
	if def == nil {
		return nil, false
	}
	cp := *def
	cp.BuiltIn = false
	cp.Position = nil
	cp.Fields = make(ast.FieldList, 0, len(def.Fields))
	for _, f := range def.Fields {
		fc := *f
		fc.Position = nil
		cp.Fields = append(cp.Fields, &fc)
	}
	return &cp, true
}
