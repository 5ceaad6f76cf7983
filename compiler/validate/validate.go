// Package validate checks type definitions and generated schemas. Every
// problem found in one pass is reported, as a *gen.ValidationErrors.
package validate

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"

	"github.com/syssam/graphdef/compiler/gen"
	"github.com/syssam/graphdef/schema"
)

// catalog holds the prelude and the graph directive catalog.
var catalog = sync.OnceValues(func() (*ast.SchemaDocument, error) {
	return parser.ParseSchemas(validator.Prelude, schema.Directives(), schema.Federation())
})

// Document validates user type definitions against the directive catalog.
func Document(doc *ast.SchemaDocument) error {
	base, err := catalog()
	if err != nil {
		return fmt.Errorf("validate: parse directive catalog: %w", err)
	}
	return run(base, doc)
}

// Augmented validates a generated API schema. Directive definitions used by
// the schema but declared elsewhere, such as the federation catalog, are
// passed as extra sources.
func Augmented(doc *ast.SchemaDocument, extra ...*ast.Source) error {
	base, err := parser.ParseSchemas(append([]*ast.Source{validator.Prelude}, extra...)...)
	if err != nil {
		return fmt.Errorf("validate: parse extra sources: %w", err)
	}
	return run(base, doc)
}

func run(base, doc *ast.SchemaDocument) error {
	merged := merge(base, doc)
	c := &checker{
		types:      make(map[string]*ast.Definition),
		directives: make(map[string]*ast.DirectiveDefinition),
	}
	for _, def := range merged.Definitions {
		c.types[def.Name] = def
	}
	for _, d := range merged.Directives {
		c.directives[d.Name] = d
	}
	c.duplicates(base, doc)
	for _, def := range doc.Definitions {
		c.definition(def)
	}
	for _, d := range doc.Directives {
		for _, arg := range d.Arguments {
			c.argumentDefinition(d.Name, "", arg)
		}
	}
	for _, sd := range doc.Schema {
		c.directiveList(sd.Directives, ast.LocationSchema, "", "")
		for _, op := range sd.OperationTypes {
			if def := c.types[op.Type]; def == nil || def.Kind != ast.Object {
				c.add(op.Type, "", op.Position, "schema %s root %s must be an object type", op.Operation, op.Type)
			}
		}
	}
	if len(c.errs.Errors) == 0 {
		// The gqlparser validator stops at the first problem; it runs last
		// to catch whatever the checks above do not cover.
		if _, err := validator.ValidateSchemaDocument(merged); err != nil {
			c.errs.Add(fromParser(err))
		}
	}
	return c.errs.Err()
}

// merge returns base followed by doc. Definitions are copied so that the
// validator, which appends introspection fields to the query type, leaves
// doc untouched. Catalog scalars redeclared by doc are dropped.
func merge(base, doc *ast.SchemaDocument) *ast.SchemaDocument {
	out := &ast.SchemaDocument{
		Schema:     doc.Schema,
		Directives: slices.Clone(base.Directives),
	}
	seen := make(map[string]bool, len(base.Definitions))
	for _, def := range base.Definitions {
		seen[def.Name] = true
		out.Definitions = append(out.Definitions, def)
	}
	for _, def := range doc.Definitions {
		if seen[def.Name] && def.Kind == ast.Scalar {
			continue
		}
		cp := *def
		cp.Fields = slices.Clone(def.Fields)
		out.Definitions = append(out.Definitions, &cp)
	}
	known := make(map[string]bool, len(base.Directives))
	for _, d := range base.Directives {
		known[d.Name] = true
	}
	for _, d := range doc.Directives {
		if !known[d.Name] {
			out.Directives = append(out.Directives, d)
		}
	}
	return out
}

type checker struct {
	types      map[string]*ast.Definition
	directives map[string]*ast.DirectiveDefinition
	errs       gen.ValidationErrors
}

func (c *checker) add(typ, field string, pos *ast.Position, format string, args ...any) {
	e := gen.NewValidationError(typ, field, fmt.Sprintf(format, args...))
	if pos != nil {
		e.Locations = []gqlerror.Location{{Line: pos.Line, Column: pos.Column}}
	}
	c.errs.Add(e)
}

// duplicates reports type names declared twice in doc, or declared by doc
// and by the catalog with a different kind.
func (c *checker) duplicates(base, doc *ast.SchemaDocument) {
	builtin := make(map[string]ast.DefinitionKind, len(base.Definitions))
	for _, def := range base.Definitions {
		builtin[def.Name] = def.Kind
	}
	seen := make(map[string]bool, len(doc.Definitions))
	for _, def := range doc.Definitions {
		if kind, ok := builtin[def.Name]; ok && (kind != ast.Scalar || def.Kind != ast.Scalar) {
			c.add(def.Name, "", def.Position, "%s is reserved by the directive catalog", def.Name)
		}
		if seen[def.Name] {
			c.add(def.Name, "", def.Position, "type declared more than once")
		}
		seen[def.Name] = true
	}
}

func (c *checker) definition(def *ast.Definition) {
	switch def.Kind {
	case ast.Object:
		c.directiveList(def.Directives, ast.LocationObject, def.Name, "")
		c.outputFields(def)
		c.implements(def)
	case ast.Interface:
		c.directiveList(def.Directives, ast.LocationInterface, def.Name, "")
		c.outputFields(def)
		c.implements(def)
	case ast.Union:
		c.directiveList(def.Directives, ast.LocationUnion, def.Name, "")
		if len(def.Types) == 0 {
			c.add(def.Name, "", def.Position, "union must have at least one member")
		}
		for _, m := range def.Types {
			if t := c.types[m]; t == nil || t.Kind != ast.Object {
				c.add(def.Name, "", def.Position, "union member %s must be an object type", m)
			}
		}
	case ast.Enum:
		c.directiveList(def.Directives, ast.LocationEnum, def.Name, "")
		if len(def.EnumValues) == 0 {
			c.add(def.Name, "", def.Position, "enum must have at least one value")
		}
		seen := make(map[string]bool, len(def.EnumValues))
		for _, v := range def.EnumValues {
			if seen[v.Name] {
				c.add(def.Name, v.Name, v.Position, "enum value declared more than once")
			}
			seen[v.Name] = true
			c.directiveList(v.Directives, ast.LocationEnumValue, def.Name, v.Name)
		}
	case ast.Scalar:
		c.directiveList(def.Directives, ast.LocationScalar, def.Name, "")
	case ast.InputObject:
		c.directiveList(def.Directives, ast.LocationInputObject, def.Name, "")
		seen := make(map[string]bool, len(def.Fields))
		for _, f := range def.Fields {
			if seen[f.Name] {
				c.add(def.Name, f.Name, f.Position, "field declared more than once")
			}
			seen[f.Name] = true
			c.inputType(def.Name, f.Name, f.Position, f.Type)
			c.directiveList(f.Directives, ast.LocationInputFieldDefinition, def.Name, f.Name)
			if f.DefaultValue != nil {
				if msg := c.value(f.Type, f.DefaultValue); msg != "" {
					c.add(def.Name, f.Name, f.Position, "default value: %s", msg)
				}
			}
		}
	}
}

func (c *checker) outputFields(def *ast.Definition) {
	seen := make(map[string]bool, len(def.Fields))
	for _, f := range def.Fields {
		if seen[f.Name] {
			c.add(def.Name, f.Name, f.Position, "field declared more than once")
		}
		seen[f.Name] = true
		if t := c.types[f.Type.Name()]; t == nil {
			c.add(def.Name, f.Name, f.Position, "unknown type %s", f.Type.Name())
		} else if t.Kind == ast.InputObject {
			c.add(def.Name, f.Name, f.Position, "input type %s cannot be used as a field type", t.Name)
		}
		c.directiveList(f.Directives, ast.LocationFieldDefinition, def.Name, f.Name)
		for _, arg := range f.Arguments {
			c.argumentDefinition(def.Name, f.Name, arg)
		}
	}
}

func (c *checker) argumentDefinition(typ, field string, arg *ast.ArgumentDefinition) {
	c.inputType(typ, field, arg.Position, arg.Type)
	c.directiveList(arg.Directives, ast.LocationArgumentDefinition, typ, field)
	if arg.DefaultValue != nil {
		if msg := c.value(arg.Type, arg.DefaultValue); msg != "" {
			c.add(typ, field, arg.Position, "argument %s default value: %s", arg.Name, msg)
		}
	}
}

func (c *checker) inputType(typ, field string, pos *ast.Position, t *ast.Type) {
	def := c.types[t.Name()]
	switch {
	case def == nil:
		c.add(typ, field, pos, "unknown type %s", t.Name())
	case def.Kind != ast.Scalar && def.Kind != ast.Enum && def.Kind != ast.InputObject:
		c.add(typ, field, pos, "%s type %s cannot be used as an input type", def.Kind, t.Name())
	}
}

func (c *checker) implements(def *ast.Definition) {
	for _, name := range def.Interfaces {
		iface := c.types[name]
		if iface == nil || iface.Kind != ast.Interface {
			c.add(def.Name, "", def.Position, "implements %s which is not an interface", name)
			continue
		}
		for _, f := range iface.Fields {
			impl := def.Fields.ForName(f.Name)
			if impl == nil {
				c.add(def.Name, f.Name, def.Position, "missing field declared by interface %s", name)
				continue
			}
			if impl.Type.Name() != f.Type.Name() && !c.possible(f.Type.Name(), impl.Type.Name()) {
				c.add(def.Name, f.Name, impl.Position, "field type %s does not match %s in interface %s", impl.Type, f.Type, name)
			}
		}
	}
}

// possible reports whether concrete is a member of the abstract type.
func (c *checker) possible(abstract, concrete string) bool {
	a := c.types[abstract]
	if a == nil {
		return false
	}
	switch a.Kind {
	case ast.Union:
		return slices.Contains(a.Types, concrete)
	case ast.Interface:
		if t := c.types[concrete]; t != nil {
			return slices.Contains(t.Interfaces, abstract)
		}
	}
	return false
}

func (c *checker) directiveList(dirs ast.DirectiveList, loc ast.DirectiveLocation, typ, field string) {
	used := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		def := c.directives[d.Name]
		if def == nil {
			c.add(typ, field, d.Position, "unknown directive @%s", d.Name)
			continue
		}
		if !slices.Contains(def.Locations, loc) {
			c.add(typ, field, d.Position, "directive @%s is not allowed on %s", d.Name, loc)
		}
		if used[d.Name] && !def.IsRepeatable {
			c.add(typ, field, d.Position, "directive @%s is not repeatable", d.Name)
		}
		used[d.Name] = true
		for _, arg := range d.Arguments {
			argDef := def.Arguments.ForName(arg.Name)
			if argDef == nil {
				c.add(typ, field, arg.Position, "unknown argument %s on directive @%s", arg.Name, d.Name)
				continue
			}
			if msg := c.value(argDef.Type, arg.Value); msg != "" {
				c.add(typ, field, arg.Position, "@%s(%s:) %s", d.Name, arg.Name, msg)
			}
		}
		for _, argDef := range def.Arguments {
			if argDef.Type.NonNull && argDef.DefaultValue == nil && d.Arguments.ForName(argDef.Name) == nil {
				c.add(typ, field, d.Position, "directive @%s requires argument %s", d.Name, argDef.Name)
			}
		}
	}
}

// value checks a literal against an input type. It returns a message
// describing the first mismatch, or "" when the literal is acceptable.
func (c *checker) value(t *ast.Type, v *ast.Value) string {
	if v == nil {
		return ""
	}
	switch {
	case v.Kind == ast.Variable:
		return "variables are not allowed in type definitions"
	case v.Kind == ast.NullValue:
		if t.NonNull {
			return fmt.Sprintf("null is not allowed for %s", t)
		}
		return ""
	case t.Elem != nil:
		if v.Kind != ast.ListValue {
			return c.value(t.Elem, v)
		}
		for _, child := range v.Children {
			if msg := c.value(t.Elem, child.Value); msg != "" {
				return msg
			}
		}
		return ""
	}
	def := c.types[t.NamedType]
	if def == nil {
		return ""
	}
	switch def.Kind {
	case ast.Enum:
		if v.Kind != ast.EnumValue {
			return fmt.Sprintf("expected a %s value", def.Name)
		}
		if def.EnumValues.ForName(v.Raw) == nil {
			return fmt.Sprintf("%s is not a value of %s", v.Raw, def.Name)
		}
	case ast.InputObject:
		if v.Kind != ast.ObjectValue {
			return fmt.Sprintf("expected a %s object", def.Name)
		}
		for _, child := range v.Children {
			f := def.Fields.ForName(child.Name)
			if f == nil {
				return fmt.Sprintf("unknown field %s of %s", child.Name, def.Name)
			}
			if msg := c.value(f.Type, child.Value); msg != "" {
				return msg
			}
		}
		for _, f := range def.Fields {
			if f.Type.NonNull && f.DefaultValue == nil && v.Children.ForName(f.Name) == nil {
				return fmt.Sprintf("missing field %s of %s", f.Name, def.Name)
			}
		}
	case ast.Scalar:
		return scalar(def.Name, v)
	}
	return ""
}

func scalar(name string, v *ast.Value) string {
	ok := true
	switch name {
	case "Int":
		_, err := strconv.ParseInt(v.Raw, 10, 32)
		ok = v.Kind == ast.IntValue && err == nil
	case "Float":
		ok = v.Kind == ast.IntValue || v.Kind == ast.FloatValue
	case "String":
		ok = v.Kind == ast.StringValue || v.Kind == ast.BlockValue
	case "ID":
		ok = v.Kind == ast.StringValue || v.Kind == ast.IntValue
	case "Boolean":
		ok = v.Kind == ast.BooleanValue
	}
	if !ok {
		return fmt.Sprintf("%s is not a valid %s", v.String(), name)
	}
	return ""
}

func fromParser(err error) *gen.ValidationError {
	var gerr *gqlerror.Error
	if errors.As(err, &gerr) {
		e := gen.NewValidationError("", "", gerr.Message)
		e.Locations = gerr.Locations
		e.Cause = err
		return e
	}
	e := gen.NewValidationError("", "", err.Error())
	e.Cause = err
	return e
}
