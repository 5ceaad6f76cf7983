package gen

import (
	"strings"
)

// Direction is the direction of a relationship relative to its source.
type Direction string

// Relationship directions.
const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool { return d == DirectionIn || d == DirectionOut }

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if d == DirectionIn {
		return DirectionOut
	}
	return DirectionIn
}

// QueryDirection controls whether reads follow the declared direction.
type QueryDirection string

// Query directions.
const (
	QueryDirected   QueryDirection = "DIRECTED"
	QueryUndirected QueryDirection = "UNDIRECTED"
)

// NestedOps is the allow-list of nested mutation operations of a
// relationship.
type NestedOps uint8

// Nested operations.
const (
	OpConnect NestedOps = 1 << iota
	OpDisconnect
	OpCreate
	OpUpdate
	OpDelete
	OpConnectOrCreate

	// AllNestedOps is the default allow-list.
	AllNestedOps = OpConnect | OpDisconnect | OpCreate | OpUpdate | OpDelete | OpConnectOrCreate
)

var nestedOpNames = []struct {
	op   NestedOps
	name string
}{
	{OpConnect, "CONNECT"},
	{OpDisconnect, "DISCONNECT"},
	{OpCreate, "CREATE"},
	{OpUpdate, "UPDATE"},
	{OpDelete, "DELETE"},
	{OpConnectOrCreate, "CONNECT_OR_CREATE"},
}

// ParseNestedOp returns the operation for an enum value name.
func ParseNestedOp(name string) (NestedOps, bool) {
	for _, n := range nestedOpNames {
		if n.name == name {
			return n.op, true
		}
	}
	return 0, false
}

// Has reports whether every operation in ops is allowed.
func (o NestedOps) Has(ops NestedOps) bool { return o&ops == ops }

// Any reports whether at least one operation in ops is allowed.
func (o NestedOps) Any(ops NestedOps) bool { return o&ops != 0 }

// String returns the allowed operations as a list of enum values.
func (o NestedOps) String() string {
	var names []string
	for _, n := range nestedOpNames {
		if o.Has(n.op) {
			names = append(names, n.name)
		}
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// Edge is a relationship field.
type Edge struct {
	// Name is the GraphQL field name.
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// Label is the relationship type stored in the graph.
	Label          string         `json:"label"`
	Direction      Direction      `json:"direction"`
	QueryDirection QueryDirection `json:"queryDirection"`
	// Target is the node, interface or union at the other end.
	Target     string `json:"target"`
	TargetKind Kind   `json:"targetKind"`
	List       bool   `json:"list,omitempty"`
	// NonNull reports whether the field (or list) is non-null.
	NonNull bool `json:"nonNull,omitempty"`
	// Properties names the relationship-properties type, if any.
	Properties string    `json:"properties,omitempty"`
	NestedOps  NestedOps `json:"nestedOps"`
	Aggregate  bool      `json:"aggregate"`
	// UniformUniqueness is set for interface and union targets whose
	// members all have a unique key.
	UniformUniqueness bool `json:"uniformUniqueness,omitempty"`
	// Declared marks relationships declared on interfaces.
	Declared   bool                  `json:"declared,omitempty"`
	Deprecated *string               `json:"deprecated,omitempty"`
	Filterable *FilterableAnnotation `json:"filterable,omitempty"`
	Settable   *SettableAnnotation   `json:"settable,omitempty"`
	Directives []Directive           `json:"directives,omitempty"`
}

// Ref returns the declared output type of the relationship field.
func (e *Edge) Ref() TypeRef {
	if e.List {
		return TypeRef{Name: e.Target, NonNull: true, List: true, ElemNonNull: true}
	}
	return TypeRef{Name: e.Target, NonNull: e.NonNull}
}

// Polymorphic reports whether the target is an interface or a union.
func (e *Edge) Polymorphic() bool {
	return e.TargetKind == KindInterface || e.TargetKind == KindUnion
}

// Allows reports whether the nested operation is permitted.
func (e *Edge) Allows(op NestedOps) bool {
	if op == OpConnectOrCreate && e.Polymorphic() && !e.UniformUniqueness {
		return false
	}
	if op == OpConnectOrCreate && e.TargetKind == KindInterface {
		return false
	}
	return e.NestedOps.Has(op)
}

// SettableOnCreate reports whether the relationship appears in create inputs.
func (e *Edge) SettableOnCreate() bool {
	if e.Settable != nil && !e.Settable.OnCreate {
		return false
	}
	return e.Allows(OpCreate) || e.Allows(OpConnect) || e.Allows(OpConnectOrCreate)
}

// SettableOnUpdate reports whether the relationship appears in update inputs.
func (e *Edge) SettableOnUpdate() bool {
	if e.Settable != nil && !e.Settable.OnUpdate {
		return false
	}
	return e.NestedOps != 0 && (e.Allows(OpCreate) || e.Allows(OpConnect) || e.Allows(OpConnectOrCreate) ||
		e.Allows(OpUpdate) || e.Allows(OpDelete) || e.Allows(OpDisconnect))
}
