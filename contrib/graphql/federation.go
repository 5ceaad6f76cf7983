package graphql

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/graphdef/compiler/load"
	"github.com/syssam/graphdef/contrib/dataloader"
	"github.com/syssam/graphdef/dialect"
	"github.com/syssam/graphdef/resolver"
)

// Federation names.
const (
	TypeAny       = "_Any"
	TypeEntity    = "_Entity"
	TypeService   = "_Service"
	FieldEntities = "_entities"
	FieldService  = "_service"
)

// federationFields emits the subgraph types and returns the _entities and
// _service root fields. _entities exists only when an entity declares a
// @key.
func (e *emitter) federationFields(root string) ast.FieldList {
	e.add(&ast.Definition{Kind: ast.Scalar, Name: TypeAny})
	service := e.ensure(TypeService, ast.Object, func(d *ast.Definition) {
		d.Fields = ast.FieldList{field("sdl", named("String"))}
	})
	var keyed []string
	for _, t := range e.g.Nodes {
		if len(t.Keys) > 0 {
			keyed = append(keyed, t.Name)
		}
	}
	var out ast.FieldList
	if len(keyed) > 0 {
		e.add(&ast.Definition{Kind: ast.Union, Name: TypeEntity, Types: keyed})
		f := field(FieldEntities, ast.NonNullListType(named(TypeEntity), nil), arg("representations", nonNullListOf(TypeAny)))
		out = append(out, f)
		e.template(&dialect.Operation{
			Kind:    dialect.OpEntities,
			Root:    root,
			Field:   f.Name,
			Members: keyed,
			List:    true,
		})
	}
	return append(out, field(FieldService, nonNull(service)))
}

// federate returns the SDL served by _service: the document without the
// federation types and root fields.
func (e *emitter) federate(doc *ast.SchemaDocument) string {
	sub := &ast.SchemaDocument{Directives: doc.Directives, Schema: doc.Schema}
	for _, d := range doc.Definitions {
		switch d.Name {
		case TypeAny, TypeEntity, TypeService:
			continue
		case e.c.Query:
			cp := *d
			cp.Fields = nil
			for _, f := range d.Fields {
				if f.Name != FieldEntities && f.Name != FieldService {
					cp.Fields = append(cp.Fields, f)
				}
			}
			d = &cp
		}
		sub.Definitions = append(sub.Definitions, d)
	}
	return load.Print(sub)
}

type representation struct {
	index    int
	typename string
	fields   map[string]any
}

// entityKeys returns the top-level fields of the first @key of each keyed
// entity. Nested selections of a key are ignored when matching rows.
func (e *emitter) entityKeys() map[string][]string {
	keys := make(map[string][]string)
	for _, t := range e.g.Nodes {
		if len(t.Keys) > 0 {
			keys[t.Name] = keyFieldNames(t.Keys[0])
		}
	}
	return keys
}

func keyFieldNames(set string) []string {
	var (
		names []string
		depth int
	)
	set = strings.NewReplacer("{", " { ", "}", " } ").Replace(set)
	for _, tok := range strings.Fields(set) {
		switch tok {
		case "{":
			depth++
		case "}":
			depth--
		default:
			if depth == 0 {
				names = append(names, tok)
			}
		}
	}
	return names
}

// entities resolves _entities. Representations are grouped by __typename
// and each group is fetched with one OpEntities operation. Rows may come
// back in any order and are matched to representations by their key
// fields; representations without a row resolve to null. The result keeps
// the order of the representations.
func entities(tmpl *dialect.Operation, keys map[string][]string, exec dialect.Executor, drv dialect.Driver) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		ctx := p.Context
		if ctx == nil {
			ctx = context.Background()
		}
		base := tmpl
		if call := resolver.CallFrom(ctx); call != nil && call.Op != nil {
			base = call.Op
		} else {
			base = resolver.Build(tmpl, p)
		}
		if exec == nil {
			return nil, dialect.ErrNoExecutor
		}
		if drv == nil {
			return nil, dialect.ErrNoDriver
		}
		raw, _ := p.Args["representations"].([]any)
		reps := make([]representation, 0, len(raw))
		for i, v := range raw {
			m, _ := v.(map[string]any)
			name, _ := m[FieldTypeName].(string)
			if name == "" {
				return nil, fmt.Errorf("resolver: %s: representation %d has no %s", FieldEntities, i, FieldTypeName)
			}
			if !slices.Contains(base.Members, name) {
				return nil, fmt.Errorf("resolver: %s: %s is not an entity", FieldEntities, name)
			}
			reps = append(reps, representation{index: i, typename: name, fields: m})
		}
		groups := dataloader.GroupByKey(reps, func(r representation) string { return r.typename })
		names := slices.Sorted(maps.Keys(groups))
		out := make([]any, len(reps))
		for i, group := range dataloader.OrderGroupsByKeys(names, groups) {
			op := base.Clone()
			op.Entity = names[i]
			op.Members = nil
			fields := keys[op.Entity]
			values := make([]any, len(group))
			want := make([]string, len(group))
			for j, r := range group {
				values[j] = r.fields
				want[j] = dataloader.FieldsKey(r.fields, fields)
			}
			op.Args = map[string]any{"representations": values}
			res, err := resolver.Execute(ctx, op, exec, drv)
			if err != nil {
				return nil, fmt.Errorf("resolver: %s.%s: %s: %w", op.Root, op.Field, op.Entity, err)
			}
			rows := slices.DeleteFunc(slices.Clone(res.Rows), func(row map[string]any) bool { return row == nil })
			ordered, errs := dataloader.OrderByKeys(want, rows, func(row map[string]any) string {
				return dataloader.FieldsKey(row, fields)
			})
			for j, r := range group {
				if errs[j] != nil {
					continue
				}
				row := maps.Clone(ordered[j])
				row[FieldTypeName] = r.typename
				out[r.index] = row
			}
		}
		return out, nil
	}
}
