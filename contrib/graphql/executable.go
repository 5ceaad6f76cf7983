package graphql

import (
	"strconv"

	"github.com/graphql-go/graphql"
	gast "github.com/graphql-go/graphql/language/ast"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/graphdef/compiler/gen"
	"github.com/syssam/graphdef/resolver"
)

// Executable assembles an executable schema from a generated document and
// its resolvers. Scalars other than the built-in ones pass values through
// unchanged. Interface and union values are resolved by their __typename.
// Subscription root fields use their resolver as the subscribe function.
func Executable(doc *ast.SchemaDocument, resolvers resolver.Map) (graphql.Schema, error) {
	b := &assembler{
		defs:      make(map[string]*ast.Definition, len(doc.Definitions)),
		types:     make(map[string]graphql.Type, len(doc.Definitions)),
		objects:   make(map[string]*graphql.Object),
		resolvers: resolvers,
		roots: map[ast.Operation]string{
			ast.Query:        resolver.Query,
			ast.Mutation:     resolver.Mutation,
			ast.Subscription: resolver.Subscription,
		},
	}
	for _, d := range doc.Definitions {
		b.defs[d.Name] = d
	}
	for _, sd := range doc.Schema {
		for _, ot := range sd.OperationTypes {
			b.roots[ot.Operation] = ot.Type
		}
	}
	cfg := graphql.SchemaConfig{}
	for _, d := range doc.Definitions {
		cfg.Types = append(cfg.Types, b.named(d.Name))
	}
	if b.err != nil {
		return graphql.Schema{}, b.err
	}
	cfg.Query = b.objects[b.roots[ast.Query]]
	cfg.Mutation = b.objects[b.roots[ast.Mutation]]
	cfg.Subscription = b.objects[b.roots[ast.Subscription]]
	if cfg.Query == nil {
		return graphql.Schema{}, gen.NewGenerationError("executable", b.roots[ast.Query], "", "query root type is missing", nil)
	}
	s, err := graphql.NewSchema(cfg)
	if err != nil {
		return graphql.Schema{}, gen.NewGenerationError("executable", "", "", "invalid schema", err)
	}
	return s, nil
}

type assembler struct {
	defs      map[string]*ast.Definition
	types     map[string]graphql.Type
	objects   map[string]*graphql.Object
	resolvers resolver.Map
	roots     map[ast.Operation]string
	err       error
}

var builtins = map[string]graphql.Type{
	"Int":     graphql.Int,
	"Float":   graphql.Float,
	"String":  graphql.String,
	"Boolean": graphql.Boolean,
	"ID":      graphql.ID,
}

func (b *assembler) named(name string) graphql.Type {
	if t, ok := builtins[name]; ok {
		return t
	}
	if t, ok := b.types[name]; ok {
		return t
	}
	d, ok := b.defs[name]
	if !ok {
		if b.err == nil {
			b.err = gen.NewGenerationError("executable", name, "", "unknown type", nil)
		}
		b.types[name] = graphql.String
		return graphql.String
	}
	var t graphql.Type
	switch d.Kind {
	case ast.Scalar:
		t = passthrough(d)
	case ast.Enum:
		values := graphql.EnumValueConfigMap{}
		for _, v := range d.EnumValues {
			values[v.Name] = &graphql.EnumValueConfig{Value: v.Name, Description: v.Description, DeprecationReason: deprecation(v.Directives)}
		}
		t = graphql.NewEnum(graphql.EnumConfig{Name: d.Name, Description: d.Description, Values: values})
	case ast.Object:
		obj := graphql.NewObject(graphql.ObjectConfig{
			Name:        d.Name,
			Description: d.Description,
			Interfaces: graphql.InterfacesThunk(func() []*graphql.Interface {
				out := make([]*graphql.Interface, 0, len(d.Interfaces))
				for _, name := range d.Interfaces {
					if i, ok := b.named(name).(*graphql.Interface); ok {
						out = append(out, i)
					}
				}
				return out
			}),
			Fields: graphql.FieldsThunk(func() graphql.Fields { return b.fields(d) }),
		})
		b.objects[d.Name] = obj
		t = obj
	case ast.Interface:
		t = graphql.NewInterface(graphql.InterfaceConfig{
			Name:        d.Name,
			Description: d.Description,
			Fields:      graphql.FieldsThunk(func() graphql.Fields { return b.fields(d) }),
			ResolveType: b.resolveType,
		})
	case ast.Union:
		t = graphql.NewUnion(graphql.UnionConfig{
			Name:        d.Name,
			Description: d.Description,
			Types: graphql.UnionTypesThunk(func() []*graphql.Object {
				out := make([]*graphql.Object, 0, len(d.Types))
				for _, name := range d.Types {
					if o, ok := b.named(name).(*graphql.Object); ok {
						out = append(out, o)
					}
				}
				return out
			}),
			ResolveType: b.resolveType,
		})
	case ast.InputObject:
		t = graphql.NewInputObject(graphql.InputObjectConfig{
			Name:        d.Name,
			Description: d.Description,
			Fields: graphql.InputObjectConfigFieldMapThunk(func() graphql.InputObjectConfigFieldMap {
				fields := graphql.InputObjectConfigFieldMap{}
				for _, f := range d.Fields {
					fields[f.Name] = &graphql.InputObjectFieldConfig{
						Type:         b.typ(f.Type),
						DefaultValue: literal(f.DefaultValue),
						Description:  f.Description,
					}
				}
				return fields
			}),
		})
	}
	b.types[name] = t
	return t
}

func (b *assembler) typ(t *ast.Type) graphql.Type {
	var out graphql.Type
	if t.Elem != nil {
		out = graphql.NewList(b.typ(t.Elem))
	} else {
		out = b.named(t.NamedType)
	}
	if t.NonNull {
		return graphql.NewNonNull(out)
	}
	return out
}

func (b *assembler) fields(d *ast.Definition) graphql.Fields {
	subscription := d.Name == b.roots[ast.Subscription]
	fields := graphql.Fields{}
	for _, f := range d.Fields {
		gf := &graphql.Field{
			Name:              f.Name,
			Type:              b.typ(f.Type),
			Description:       f.Description,
			DeprecationReason: deprecation(f.Directives),
		}
		if len(f.Arguments) > 0 {
			gf.Args = graphql.FieldConfigArgument{}
			for _, a := range f.Arguments {
				gf.Args[a.Name] = &graphql.ArgumentConfig{
					Type:         b.typ(a.Type),
					DefaultValue: literal(a.DefaultValue),
					Description:  a.Description,
				}
			}
		}
		if fn, ok := b.resolvers.Get(d.Name, f.Name); ok {
			if subscription {
				gf.Subscribe = fn
				gf.Resolve = func(p graphql.ResolveParams) (any, error) { return p.Source, nil }
			} else {
				gf.Resolve = fn
			}
		}
		fields[f.Name] = gf
	}
	return fields
}

func (b *assembler) resolveType(p graphql.ResolveTypeParams) *graphql.Object {
	m, ok := p.Value.(map[string]any)
	if !ok {
		return nil
	}
	name, _ := m[FieldTypeName].(string)
	return b.objects[name]
}

// passthrough returns a scalar that serializes and parses values as is.
func passthrough(d *ast.Definition) *graphql.Scalar {
	identity := func(v any) any { return v }
	return graphql.NewScalar(graphql.ScalarConfig{
		Name:         d.Name,
		Description:  d.Description,
		Serialize:    identity,
		ParseValue:   identity,
		ParseLiteral: func(v gast.Value) any { return resolver.Literal(v, nil) },
	})
}

func deprecation(dirs ast.DirectiveList) string {
	d := dirs.ForName("deprecated")
	if d == nil {
		return ""
	}
	if a := d.Arguments.ForName("reason"); a != nil && a.Value != nil {
		return a.Value.Raw
	}
	return "No longer supported"
}

// literal converts a schema default value. Ints become int, as the
// executor compares page sizes as int.
func literal(v *ast.Value) any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case ast.IntValue:
		n, err := strconv.Atoi(v.Raw)
		if err != nil {
			return v.Raw
		}
		return n
	case ast.FloatValue:
		f, err := strconv.ParseFloat(v.Raw, 64)
		if err != nil {
			return v.Raw
		}
		return f
	case ast.BooleanValue:
		return v.Raw == "true"
	case ast.NullValue:
		return nil
	case ast.ListValue:
		out := make([]any, 0, len(v.Children))
		for _, c := range v.Children {
			out = append(out, literal(c.Value))
		}
		return out
	case ast.ObjectValue:
		out := make(map[string]any, len(v.Children))
		for _, c := range v.Children {
			out[c.Name] = literal(c.Value)
		}
		return out
	}
	return v.Raw
}
