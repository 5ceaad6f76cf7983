package gen

import (
	"strconv"

	"github.com/vektah/gqlparser/v2/ast"
)

// Kind is the closed set of semantic attribute kinds.
type Kind uint8

// Attribute kinds.
const (
	KindInvalid Kind = iota
	KindID
	KindString
	KindInt
	KindFloat
	KindBoolean
	KindBigInt
	KindDateTime
	KindLocalDateTime
	KindDate
	KindTime
	KindLocalTime
	KindDuration
	KindPoint
	KindCartesianPoint
	KindEnum
	KindScalar
	KindObject
	KindNode
	KindInterface
	KindUnion
	endKinds
)

var kindNames = [...]string{
	KindInvalid:        "invalid",
	KindID:             "ID",
	KindString:         "String",
	KindInt:            "Int",
	KindFloat:          "Float",
	KindBoolean:        "Boolean",
	KindBigInt:         "BigInt",
	KindDateTime:       "DateTime",
	KindLocalDateTime:  "LocalDateTime",
	KindDate:           "Date",
	KindTime:           "Time",
	KindLocalTime:      "LocalTime",
	KindDuration:       "Duration",
	KindPoint:          "Point",
	KindCartesianPoint: "CartesianPoint",
	KindEnum:           "Enum",
	KindScalar:         "Scalar",
	KindObject:         "Object",
	KindNode:           "Node",
	KindInterface:      "Interface",
	KindUnion:          "Union",
}

// builtinKinds maps built-in and catalog scalar names to their kind.
var builtinKinds = map[string]Kind{
	"ID":             KindID,
	"String":         KindString,
	"Int":            KindInt,
	"Float":          KindFloat,
	"Boolean":        KindBoolean,
	"BigInt":         KindBigInt,
	"DateTime":       KindDateTime,
	"LocalDateTime":  KindLocalDateTime,
	"Date":           KindDate,
	"Time":           KindTime,
	"LocalTime":      KindLocalTime,
	"Duration":       KindDuration,
	"Point":          KindPoint,
	"CartesianPoint": KindCartesianPoint,
}

// String returns the kind name.
func (k Kind) String() string {
	if k < endKinds {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Valid reports whether k is a known kind other than KindInvalid.
func (k Kind) Valid() bool { return k > KindInvalid && k < endKinds }

// Temporal reports whether the kind holds a date or time.
func (k Kind) Temporal() bool {
	switch k {
	case KindDateTime, KindLocalDateTime, KindDate, KindTime, KindLocalTime:
		return true
	}
	return false
}

// Numeric reports whether the kind supports arithmetic.
func (k Kind) Numeric() bool {
	return k == KindInt || k == KindFloat || k == KindBigInt
}

// Spatial reports whether the kind is a point type.
func (k Kind) Spatial() bool {
	return k == KindPoint || k == KindCartesianPoint
}

// Composite reports whether the kind refers to an output object.
func (k Kind) Composite() bool {
	switch k {
	case KindObject, KindNode, KindInterface, KindUnion:
		return true
	}
	return false
}

// KindOf returns the kind of a built-in or catalog scalar.
func KindOf(name string) (Kind, bool) {
	k, ok := builtinKinds[name]
	return k, ok
}

// TypeRef is a reference to a named type with list and nullability
// wrappers. Only one list level is supported.
type TypeRef struct {
	Name        string `json:"name"`
	NonNull     bool   `json:"nonNull,omitempty"`
	List        bool   `json:"list,omitempty"`
	ElemNonNull bool   `json:"elemNonNull,omitempty"`
}

// AST returns the gqlparser type for the reference.
func (r TypeRef) AST() *ast.Type {
	var t *ast.Type
	if r.List {
		elem := &ast.Type{NamedType: r.Name, NonNull: r.ElemNonNull}
		t = &ast.Type{Elem: elem}
	} else {
		t = &ast.Type{NamedType: r.Name}
	}
	t.NonNull = r.NonNull
	return t
}

// String returns the SDL form of the reference.
func (r TypeRef) String() string { return r.AST().String() }

// Rename returns a copy of r pointing at another named type.
func (r TypeRef) Rename(name string) TypeRef {
	r.Name = name
	return r
}

// refOf converts a gqlparser type. Nested lists are rejected.
func refOf(t *ast.Type) (TypeRef, bool) {
	if t == nil {
		return TypeRef{}, false
	}
	if t.Elem == nil {
		return TypeRef{Name: t.NamedType, NonNull: t.NonNull}, true
	}
	if t.Elem.Elem != nil {
		return TypeRef{}, false
	}
	return TypeRef{Name: t.Elem.NamedType, NonNull: t.NonNull, List: true, ElemNonNull: t.Elem.NonNull}, true
}

// Value is a serializable GraphQL literal.
type Value struct {
	Kind     ast.ValueKind `json:"kind"`
	Raw      string        `json:"raw,omitempty"`
	Children []ChildValue  `json:"children,omitempty"`
}

// ChildValue is an element of a list or object literal. Name is empty
// for list elements.
type ChildValue struct {
	Name  string `json:"name,omitempty"`
	Value *Value `json:"value"`
}

// valueOf converts a gqlparser literal.
func valueOf(v *ast.Value) *Value {
	if v == nil {
		return nil
	}
	out := &Value{Kind: v.Kind, Raw: v.Raw}
	for _, c := range v.Children {
		out.Children = append(out.Children, ChildValue{Name: c.Name, Value: valueOf(c.Value)})
	}
	return out
}

// AST returns the gqlparser literal.
func (v *Value) AST() *ast.Value {
	if v == nil {
		return nil
	}
	out := &ast.Value{Kind: v.Kind, Raw: v.Raw}
	for _, c := range v.Children {
		out.Children = append(out.Children, &ast.ChildValue{Name: c.Name, Value: c.Value.AST()})
	}
	return out
}

// Interface returns the Go value of the literal.
func (v *Value) Interface() any {
	if v == nil {
		return nil
	}
	val, err := v.AST().Value(nil)
	if err != nil {
		return v.Raw
	}
	return val
}

// String returns the SDL form of the literal.
func (v *Value) String() string {
	if v == nil {
		return "null"
	}
	return v.AST().String()
}

// Argument is a field argument or an input field.
type Argument struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Type        TypeRef `json:"type"`
	Default     *Value  `json:"default,omitempty"`
}

// Directive is a directive application kept in the generated schema.
type Directive struct {
	Name      string       `json:"name"`
	Arguments []ChildValue `json:"arguments,omitempty"`
}

// AST returns the gqlparser directive.
func (d Directive) AST() *ast.Directive {
	out := &ast.Directive{Name: d.Name}
	for _, a := range d.Arguments {
		out.Arguments = append(out.Arguments, &ast.Argument{Name: a.Name, Value: a.Value.AST()})
	}
	return out
}

func directiveOf(d *ast.Directive) Directive {
	out := Directive{Name: d.Name}
	for _, a := range d.Arguments {
		out.Arguments = append(out.Arguments, ChildValue{Name: a.Name, Value: valueOf(a.Value)})
	}
	return out
}

// Field is an attribute of an entity, interface, relationship-properties
// type or plain object type.
type Field struct {
	// Name is the GraphQL field name.
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Type        TypeRef    `json:"type"`
	Kind        Kind       `json:"kind"`
	Arguments   []Argument `json:"arguments,omitempty"`
	// Alias is the stored property name when it differs from Name.
	Alias          string                    `json:"alias,omitempty"`
	ID             *IDAnnotation             `json:"id,omitempty"`
	Unique         *UniqueAnnotation         `json:"unique,omitempty"`
	Timestamp      *TimestampAnnotation      `json:"timestamp,omitempty"`
	Cypher         *CypherAnnotation         `json:"cypher,omitempty"`
	CustomResolver *CustomResolverAnnotation `json:"customResolver,omitempty"`
	Default        *Value                    `json:"default,omitempty"`
	Settable       *SettableAnnotation       `json:"settable,omitempty"`
	Filterable     *FilterableAnnotation     `json:"filterable,omitempty"`
	Selectable     *SelectableAnnotation     `json:"selectable,omitempty"`
	Sortable       *SortableAnnotation       `json:"sortable,omitempty"`
	// Deprecated holds the deprecation reason; nil when not deprecated.
	Deprecated *string `json:"deprecated,omitempty"`
	// Directives are applications passed through to the output type.
	Directives []Directive `json:"directives,omitempty"`
	// HasUserResolver is set when a custom resolver is registered for the
	// field. Such fields are computed and never stored.
	HasUserResolver bool `json:"hasUserResolver,omitempty"`
}

// Property returns the stored property name.
func (f *Field) Property() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// Computed reports whether the field value is produced at read time.
func (f *Field) Computed() bool {
	return f.Cypher != nil || f.CustomResolver != nil || f.HasUserResolver
}

// Key reports whether the field identifies a node.
func (f *Field) Key() bool { return f.ID != nil || f.Unique != nil }

// Readable reports whether the field is part of the output type.
func (f *Field) Readable() bool {
	return f.Selectable == nil || f.Selectable.OnRead
}

// Aggregatable reports whether the field takes part in aggregations.
func (f *Field) Aggregatable() bool {
	if f.Computed() || f.Type.List {
		return false
	}
	if f.Selectable != nil && !f.Selectable.OnAggregate {
		return false
	}
	if f.Filterable != nil && !f.Filterable.ByAggregate {
		return false
	}
	switch {
	case f.Kind == KindID, f.Kind == KindString, f.Kind.Numeric(), f.Kind.Temporal(), f.Kind == KindDuration:
		return true
	}
	return false
}

// FilterableByValue reports whether the field gets a filter in Where inputs.
func (f *Field) FilterableByValue() bool {
	if f.CustomResolver != nil || f.HasUserResolver || f.Kind.Composite() {
		return false
	}
	if f.Cypher != nil && len(f.Arguments) > 0 {
		return false
	}
	return f.Filterable == nil || f.Filterable.ByValue
}

// SortableByValue reports whether the field gets a Sort input entry.
func (f *Field) SortableByValue() bool {
	if f.CustomResolver != nil || f.HasUserResolver || f.Kind.Composite() || f.Type.List || f.Kind.Spatial() {
		return false
	}
	if f.Cypher != nil && len(f.Arguments) > 0 {
		return false
	}
	return f.Sortable == nil || f.Sortable.ByValue
}

// SettableOnCreate reports whether the field appears in create inputs.
func (f *Field) SettableOnCreate() bool {
	if f.Computed() || f.Timestamp != nil || f.Kind.Composite() {
		return false
	}
	if f.ID != nil && f.ID.Autogenerate {
		return false
	}
	return f.Settable == nil || f.Settable.OnCreate
}

// SettableOnUpdate reports whether the field appears in update inputs.
func (f *Field) SettableOnUpdate() bool {
	if f.Computed() || f.Timestamp != nil || f.Kind.Composite() {
		return false
	}
	if f.ID != nil && f.ID.Autogenerate {
		return false
	}
	return f.Settable == nil || f.Settable.OnUpdate
}

// Attribute annotations. Each is resolved once from its directive and
// stored on the field as an optional value.
type (
	// IDAnnotation marks an identifying attribute.
	IDAnnotation struct {
		Autogenerate bool `json:"autogenerate,omitempty"`
	}
	// UniqueAnnotation marks a uniquely constrained attribute.
	UniqueAnnotation struct {
		ConstraintName string `json:"constraintName,omitempty"`
	}
	// TimestampAnnotation marks an attribute populated by mutations.
	TimestampAnnotation struct {
		OnCreate bool `json:"onCreate,omitempty"`
		OnUpdate bool `json:"onUpdate,omitempty"`
	}
	// CypherAnnotation marks an attribute computed by a query fragment.
	CypherAnnotation struct {
		Statement  string `json:"statement"`
		ColumnName string `json:"columnName"`
	}
	// CustomResolverAnnotation marks an attribute resolved by user code.
	CustomResolverAnnotation struct {
		Requires string `json:"requires,omitempty"`
	}
	// SettableAnnotation restricts inputs.
	SettableAnnotation struct {
		OnCreate bool `json:"onCreate"`
		OnUpdate bool `json:"onUpdate"`
	}
	// FilterableAnnotation restricts filters.
	FilterableAnnotation struct {
		ByValue     bool `json:"byValue"`
		ByAggregate bool `json:"byAggregate"`
	}
	// SelectableAnnotation restricts selections.
	SelectableAnnotation struct {
		OnRead      bool `json:"onRead"`
		OnAggregate bool `json:"onAggregate"`
	}
	// SortableAnnotation restricts sorting.
	SortableAnnotation struct {
		ByValue bool `json:"byValue"`
	}
)
