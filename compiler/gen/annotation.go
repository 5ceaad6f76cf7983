package gen

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/graphdef/schema"
)

// annotation is the closed set of attribute annotations. Each directive
// on an attribute is parsed into exactly one variant, once, and the
// variants are applied in precedence order.
type annotation interface {
	// rank orders application: alias, id/unique, timestamp, cypher,
	// custom resolver, then the remaining behavior flags.
	rank() int
	apply(f *Field) error
}

type (
	aliasAnnotation          struct{ property string }
	idAnnotation             IDAnnotation
	uniqueAnnotation         UniqueAnnotation
	timestampAnnotation      TimestampAnnotation
	cypherAnnotation         CypherAnnotation
	customResolverAnnotation CustomResolverAnnotation
	defaultAnnotation        struct{ value *Value }
	settableAnnotation       SettableAnnotation
	filterableAnnotation     FilterableAnnotation
	selectableAnnotation     SelectableAnnotation
	sortableAnnotation       SortableAnnotation
)

func (aliasAnnotation) rank() int          { return 0 }
func (idAnnotation) rank() int             { return 1 }
func (uniqueAnnotation) rank() int         { return 1 }
func (timestampAnnotation) rank() int      { return 2 }
func (cypherAnnotation) rank() int         { return 3 }
func (customResolverAnnotation) rank() int { return 4 }
func (defaultAnnotation) rank() int        { return 5 }
func (settableAnnotation) rank() int       { return 5 }
func (filterableAnnotation) rank() int     { return 5 }
func (selectableAnnotation) rank() int     { return 5 }
func (sortableAnnotation) rank() int       { return 5 }

func (a aliasAnnotation) apply(f *Field) error {
	f.Alias = a.property
	return nil
}

func (a idAnnotation) apply(f *Field) error {
	if f.Type.List {
		return fmt.Errorf("@id cannot be used on a list")
	}
	if a.Autogenerate && f.Kind != KindID {
		return fmt.Errorf("@id(autogenerate: true) requires type ID, got %s", f.Type.Name)
	}
	f.ID = &IDAnnotation{Autogenerate: a.Autogenerate}
	return nil
}

func (a uniqueAnnotation) apply(f *Field) error {
	if f.Type.List {
		return fmt.Errorf("@unique cannot be used on a list")
	}
	f.Unique = &UniqueAnnotation{ConstraintName: a.ConstraintName}
	return nil
}

func (a timestampAnnotation) apply(f *Field) error {
	if !f.Kind.Temporal() || f.Kind == KindDate {
		return fmt.Errorf("@timestamp requires a DateTime, LocalDateTime, Time or LocalTime field, got %s", f.Type.Name)
	}
	if f.Type.List {
		return fmt.Errorf("@timestamp cannot be used on a list")
	}
	f.Timestamp = &TimestampAnnotation{OnCreate: a.OnCreate, OnUpdate: a.OnUpdate}
	return nil
}

func (a cypherAnnotation) apply(f *Field) error {
	switch {
	case f.Timestamp != nil:
		return fmt.Errorf("@cypher cannot be combined with @timestamp")
	case f.Alias != "":
		return fmt.Errorf("@cypher cannot be combined with @alias")
	case f.Key():
		return fmt.Errorf("@cypher cannot be combined with @id or @unique")
	}
	f.Cypher = &CypherAnnotation{Statement: a.Statement, ColumnName: a.ColumnName}
	return nil
}

func (a customResolverAnnotation) apply(f *Field) error {
	switch {
	case f.Cypher != nil:
		return fmt.Errorf("@customResolver cannot be combined with @cypher")
	case f.Timestamp != nil:
		return fmt.Errorf("@customResolver cannot be combined with @timestamp")
	case f.Key():
		return fmt.Errorf("@customResolver cannot be combined with @id or @unique")
	}
	f.CustomResolver = &CustomResolverAnnotation{Requires: a.Requires}
	return nil
}

func (a defaultAnnotation) apply(f *Field) error {
	if f.Computed() {
		return fmt.Errorf("@default cannot be used on a computed field")
	}
	f.Default = a.value
	return nil
}

func (a settableAnnotation) apply(f *Field) error {
	f.Settable = &SettableAnnotation{OnCreate: a.OnCreate, OnUpdate: a.OnUpdate}
	return nil
}

func (a filterableAnnotation) apply(f *Field) error {
	f.Filterable = &FilterableAnnotation{ByValue: a.ByValue, ByAggregate: a.ByAggregate}
	return nil
}

func (a selectableAnnotation) apply(f *Field) error {
	f.Selectable = &SelectableAnnotation{OnRead: a.OnRead, OnAggregate: a.OnAggregate}
	return nil
}

func (a sortableAnnotation) apply(f *Field) error {
	f.Sortable = &SortableAnnotation{ByValue: a.ByValue}
	return nil
}

// parseAnnotations parses the attribute directives of def. Directives
// that are not graph annotations are returned as passthrough directives,
// except @deprecated which is recorded on the field.
func parseAnnotations(def *ast.FieldDefinition) ([]annotation, []Directive, error) {
	var (
		anns []annotation
		pass []Directive
	)
	for _, d := range def.Directives {
		var (
			a   annotation
			err error
		)
		switch d.Name {
		case schema.DirectiveAlias:
			var p string
			if p, _, err = argString(d, "property"); err == nil {
				if p == "" {
					err = fmt.Errorf("@alias(property:) cannot be empty")
				}
				a = aliasAnnotation{property: p}
			}
		case schema.DirectiveID:
			var auto bool
			auto, err = argBool(d, "autogenerate", true)
			a = idAnnotation{Autogenerate: auto}
		case schema.DirectiveUnique:
			var name string
			name, _, err = argString(d, "constraintName")
			a = uniqueAnnotation{ConstraintName: name}
		case schema.DirectiveTimestamp:
			ops, ok, perr := argEnumList(d, "operations")
			err = perr
			t := timestampAnnotation{OnCreate: !ok, OnUpdate: !ok}
			for _, op := range ops {
				switch op {
				case OperationCreate:
					t.OnCreate = true
				case OperationUpdate:
					t.OnUpdate = true
				default:
					err = fmt.Errorf("@timestamp(operations:) unknown operation %s", op)
				}
			}
			a = t
		case schema.DirectiveCypher:
			var stmt, col string
			if stmt, _, err = argString(d, "statement"); err == nil {
				col, _, err = argString(d, "columnName")
			}
			if err == nil && (stmt == "" || col == "") {
				err = fmt.Errorf("@cypher requires statement and columnName")
			}
			a = cypherAnnotation{Statement: stmt, ColumnName: col}
		case schema.DirectiveCustomResolver:
			var req string
			req, _, err = argString(d, "requires")
			a = customResolverAnnotation{Requires: req}
		case schema.DirectiveDefault:
			arg := d.Arguments.ForName("value")
			if arg == nil || arg.Value == nil {
				err = fmt.Errorf("@default requires a value")
			}
			if err == nil {
				a = defaultAnnotation{value: valueOf(arg.Value)}
			}
		case schema.DirectiveSettable:
			var s settableAnnotation
			if s.OnCreate, err = argBool(d, "onCreate", true); err == nil {
				s.OnUpdate, err = argBool(d, "onUpdate", true)
			}
			a = s
		case schema.DirectiveFilterable:
			var s filterableAnnotation
			if s.ByValue, err = argBool(d, "byValue", true); err == nil {
				s.ByAggregate, err = argBool(d, "byAggregate", true)
			}
			a = s
		case schema.DirectiveSelectable:
			var s selectableAnnotation
			if s.OnRead, err = argBool(d, "onRead", true); err == nil {
				s.OnAggregate, err = argBool(d, "onAggregate", true)
			}
			a = s
		case schema.DirectiveSortable:
			var s sortableAnnotation
			s.ByValue, err = argBool(d, "byValue", true)
			a = s
		case schema.DirectiveDeprecated, schema.DirectiveRelationship, schema.DirectiveDeclareRelationship:
			continue
		default:
			if schema.IsGraphDirective(d.Name) {
				err = fmt.Errorf("@%s is not allowed on fields", d.Name)
			} else {
				pass = append(pass, directiveOf(d))
			}
		}
		if err != nil {
			return nil, nil, err
		}
		if a != nil {
			anns = append(anns, a)
		}
	}
	slices.SortStableFunc(anns, func(a, b annotation) int { return a.rank() - b.rank() })
	return anns, pass, nil
}

// applyAnnotations applies anns to f in precedence order.
func applyAnnotations(f *Field, anns []annotation) error {
	for _, a := range anns {
		if err := a.apply(f); err != nil {
			return err
		}
	}
	return nil
}

// deprecation returns the @deprecated reason, if the directive is present.
func deprecation(dirs ast.DirectiveList) *string {
	d := dirs.ForName(schema.DirectiveDeprecated)
	if d == nil {
		return nil
	}
	reason := "No longer supported"
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		reason = arg.Value.Raw
	}
	return &reason
}

func argString(d *ast.Directive, name string) (string, bool, error) {
	arg := d.Arguments.ForName(name)
	if arg == nil || arg.Value == nil || arg.Value.Kind == ast.NullValue {
		return "", false, nil
	}
	if arg.Value.Kind != ast.StringValue && arg.Value.Kind != ast.BlockValue {
		return "", false, fmt.Errorf("@%s(%s:) must be a String", d.Name, name)
	}
	return arg.Value.Raw, true, nil
}

func argBool(d *ast.Directive, name string, def bool) (bool, error) {
	arg := d.Arguments.ForName(name)
	if arg == nil || arg.Value == nil || arg.Value.Kind == ast.NullValue {
		return def, nil
	}
	if arg.Value.Kind != ast.BooleanValue {
		return false, fmt.Errorf("@%s(%s:) must be a Boolean", d.Name, name)
	}
	return arg.Value.Raw == "true", nil
}

func argInt(d *ast.Directive, name string) (int, bool, error) {
	arg := d.Arguments.ForName(name)
	if arg == nil || arg.Value == nil || arg.Value.Kind == ast.NullValue {
		return 0, false, nil
	}
	if arg.Value.Kind != ast.IntValue {
		return 0, false, fmt.Errorf("@%s(%s:) must be an Int", d.Name, name)
	}
	n, err := strconv.Atoi(arg.Value.Raw)
	if err != nil {
		return 0, false, fmt.Errorf("@%s(%s:) %w", d.Name, name, err)
	}
	return n, true, nil
}

func argEnum(d *ast.Directive, name string) (string, bool, error) {
	arg := d.Arguments.ForName(name)
	if arg == nil || arg.Value == nil || arg.Value.Kind == ast.NullValue {
		return "", false, nil
	}
	if arg.Value.Kind != ast.EnumValue {
		return "", false, fmt.Errorf("@%s(%s:) must be an enum value", d.Name, name)
	}
	return arg.Value.Raw, true, nil
}

// argEnumList reads a list of enum values. A single value is coerced to a
// list of one, as GraphQL input coercion does.
func argEnumList(d *ast.Directive, name string) ([]string, bool, error) {
	arg := d.Arguments.ForName(name)
	if arg == nil || arg.Value == nil || arg.Value.Kind == ast.NullValue {
		return nil, false, nil
	}
	return enumList(arg.Value, "@"+d.Name+"("+name+":)")
}

func enumList(v *ast.Value, what string) ([]string, bool, error) {
	switch v.Kind {
	case ast.EnumValue:
		return []string{v.Raw}, true, nil
	case ast.ListValue:
		vals := make([]string, 0, len(v.Children))
		for _, c := range v.Children {
			if c.Value == nil || c.Value.Kind != ast.EnumValue {
				return nil, false, fmt.Errorf("%s must be a list of enum values", what)
			}
			vals = append(vals, c.Value.Raw)
		}
		return vals, true, nil
	}
	return nil, false, fmt.Errorf("%s must be a list of enum values", what)
}
