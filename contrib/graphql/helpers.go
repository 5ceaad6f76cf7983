package graphql

// This file contains the naming rules of generated types and small
// constructors for gqlparser definitions.

import (
	"strconv"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/graphdef/compiler/gen"
	"github.com/syssam/graphdef/schema"
)

// =============================================================================
// Field Name Constants
// =============================================================================

const (
	// FieldTypeName is the introspection type name field. Executors set
	// it on rows of interface and union operations.
	FieldTypeName = "__typename"

	deprecatedFilter   = "Please use the relevant generic filter '%s: { %s: ... }'"
	deprecatedMutation = "Please use the relevant generic mutation '%s: { %s: ... }'"
	deprecatedRelation = "Please use the relevant generic filter '%s: { %s: ... }'"
)

// =============================================================================
// Entity Type Names
// =============================================================================

// EntityNames holds the names of the types generated for one node or
// interface.
type EntityNames struct {
	Where              string
	Sort               string
	CreateInput        string
	UpdateInput        string
	DeleteInput        string
	ConnectInput       string
	DisconnectInput    string
	ConnectWhere       string
	UniqueWhere        string
	ConnectOrCreate    string
	OnCreateInput      string
	AggregateSelection string
	Edge               string
	Connection         string
	Implementation     string
	SubscriptionWhere  string
	EventPayload       string
}

// Names returns the generated type names of the entity or interface name
// with the given plural.
func Names(name, plural string) *EntityNames {
	return &EntityNames{
		Where:              name + "Where",
		Sort:               name + "Sort",
		CreateInput:        name + "CreateInput",
		UpdateInput:        name + "UpdateInput",
		DeleteInput:        name + "DeleteInput",
		ConnectInput:       name + "ConnectInput",
		DisconnectInput:    name + "DisconnectInput",
		ConnectWhere:       name + "ConnectWhere",
		UniqueWhere:        name + "UniqueWhere",
		ConnectOrCreate:    name + "ConnectOrCreateWhere",
		OnCreateInput:      name + "OnCreateInput",
		AggregateSelection: name + "AggregateSelection",
		Edge:               name + "Edge",
		Connection:         gen.Pascal(plural) + "Connection",
		Implementation:     name + "Implementation",
		SubscriptionWhere:  name + "SubscriptionWhere",
		EventPayload:       name + "EventPayload",
	}
}

// =============================================================================
// Relationship Type Names
// =============================================================================

// RelationNames holds the names of the types generated for one
// relationship. Prefix is the source type name followed by the field name.
type RelationNames struct {
	Prefix                 string
	Connection             string
	Relationship           string
	ConnectionWhere        string
	ConnectionSort         string
	ConnectionFilters      string
	FieldInput             string
	CreateFieldInput       string
	ConnectFieldInput      string
	DisconnectFieldInput   string
	DeleteFieldInput       string
	UpdateFieldInput       string
	UpdateConnectionInput  string
	ConnectOrCreateInput   string
	ConnectOrCreateOnInput string
	AggregateInput         string
	NodeAggregationWhere   string
	EdgeAggregationWhere   string
	// Union-keyed wrappers.
	CreateInput     string
	ConnectInput    string
	DisconnectInput string
	DeleteInput     string
	UpdateInput     string
}

func relationNames(prefix string) *RelationNames {
	return &RelationNames{
		Prefix:                 prefix,
		Connection:             prefix + "Connection",
		Relationship:           prefix + "Relationship",
		ConnectionWhere:        prefix + "ConnectionWhere",
		ConnectionSort:         prefix + "ConnectionSort",
		ConnectionFilters:      prefix + "ConnectionFilters",
		FieldInput:             prefix + "FieldInput",
		CreateFieldInput:       prefix + "CreateFieldInput",
		ConnectFieldInput:      prefix + "ConnectFieldInput",
		DisconnectFieldInput:   prefix + "DisconnectFieldInput",
		DeleteFieldInput:       prefix + "DeleteFieldInput",
		UpdateFieldInput:       prefix + "UpdateFieldInput",
		UpdateConnectionInput:  prefix + "UpdateConnectionInput",
		ConnectOrCreateInput:   prefix + "ConnectOrCreateFieldInput",
		ConnectOrCreateOnInput: prefix + "ConnectOrCreateFieldInputOnCreate",
		AggregateInput:         prefix + "AggregateInput",
		NodeAggregationWhere:   prefix + "NodeAggregationWhereInput",
		EdgeAggregationWhere:   prefix + "EdgeAggregationWhereInput",
		CreateInput:            prefix + "CreateInput",
		ConnectInput:           prefix + "ConnectInput",
		DisconnectInput:        prefix + "DisconnectInput",
		DeleteInput:            prefix + "DeleteInput",
		UpdateInput:            prefix + "UpdateInput",
	}
}

// aggregationSelection names the aggregate output of a relationship.
func aggregationSelection(src, target, field string) string {
	return src + target + gen.Pascal(field) + "AggregationSelection"
}

// =============================================================================
// Root Field Names
// =============================================================================

// RootNames holds the generated root field names of an entity.
type RootNames struct {
	Read       string
	Connection string
	Aggregate  string
	Create     string
	Update     string
	Delete     string
	Created    string
	Updated    string
	Deleted    string
}

// Roots returns the root field names of the entity with the given plural.
func Roots(name, plural string) *RootNames {
	p := gen.Pascal(plural)
	single := gen.LowerFirst(name)
	return &RootNames{
		Read:       plural,
		Connection: plural + "Connection",
		Aggregate:  plural + "Aggregate",
		Create:     "create" + p,
		Update:     "update" + p,
		Delete:     "delete" + p,
		Created:    single + "Created",
		Updated:    single + "Updated",
		Deleted:    single + "Deleted",
	}
}

// =============================================================================
// AST Constructors
// =============================================================================

func named(name string) *ast.Type { return ast.NamedType(name, nil) }

func nonNull(name string) *ast.Type { return ast.NonNullNamedType(name, nil) }

// listOf returns [name!].
func listOf(name string) *ast.Type { return ast.ListType(nonNull(name), nil) }

// nonNullListOf returns [name!]!.
func nonNullListOf(name string) *ast.Type { return ast.NonNullListType(nonNull(name), nil) }

func field(name string, typ *ast.Type, args ...*ast.ArgumentDefinition) *ast.FieldDefinition {
	return &ast.FieldDefinition{Name: name, Type: typ, Arguments: args}
}

func arg(name string, typ *ast.Type) *ast.ArgumentDefinition {
	return &ast.ArgumentDefinition{Name: name, Type: typ}
}

func intValue(n int) *ast.Value {
	return &ast.Value{Kind: ast.IntValue, Raw: strconv.Itoa(n)}
}

func deprecatedDirective(reason string) *ast.Directive {
	return &ast.Directive{
		Name:      schema.DirectiveDeprecated,
		Arguments: ast.ArgumentList{{Name: "reason", Value: &ast.Value{Kind: ast.StringValue, Raw: reason}}},
	}
}

// directives converts passthrough directive applications. Federation
// directives are kept only in subgraph output.
func (e *emitter) directives(dirs []gen.Directive) ast.DirectiveList {
	var out ast.DirectiveList
	for _, d := range dirs {
		if schema.IsGraphDirective(d.Name) {
			continue
		}
		if schema.IsFederationDirective(d.Name) && !e.federation {
			continue
		}
		out = append(out, d.AST())
	}
	return out
}

func isCatalogDirective(name string) bool {
	return schema.IsGraphDirective(name) || schema.IsFederationDirective(name) || name == schema.DirectiveDeprecated
}
