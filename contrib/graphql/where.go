package graphql

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/graphdef/compiler/gen"
)

var quantifiers = []string{"all", "none", "single", "some"}

// logical returns the AND, OR and NOT entries of the input named name.
func logical(name string) ast.FieldList {
	return ast.FieldList{
		field("AND", listOf(name)),
		field("OR", listOf(name)),
		field("NOT", named(name)),
	}
}

// where ensures the Where input of a node, interface, union or
// relationship-properties type.
func (e *emitter) where(name string) string {
	if u, ok := e.g.Union(name); ok {
		return e.ensure(u.Name+"Where", ast.InputObject, func(d *ast.Definition) {
			for _, m := range u.Members {
				d.Fields = append(d.Fields, field(m, named(e.where(m))))
			}
		})
	}
	h := e.mustHolder(name)
	return e.ensure(name+"Where", ast.InputObject, func(d *ast.Definition) {
		for _, f := range h.fields {
			if f.FilterableByValue() {
				d.Fields = append(d.Fields, e.whereFields(h.name, f)...)
			}
		}
		for _, edge := range h.edges {
			d.Fields = append(d.Fields, e.relationWhere(e.relation(h, edge))...)
		}
		if h.iface != nil && len(h.iface.Implementers) > 0 {
			d.Fields = append(d.Fields, field("typename", listOf(e.implementation(h.iface))))
		}
		d.Fields = append(d.Fields, logical(d.Name)...)
	})
}

// implementation ensures the enum of the implementers of an interface.
func (e *emitter) implementation(i *gen.Interface) string {
	return e.ensure(Names(i.Name, i.Plural).Implementation, ast.Enum, func(d *ast.Definition) {
		for _, name := range i.Implementers {
			d.EnumValues = append(d.EnumValues, &ast.EnumValueDefinition{Name: name})
		}
	})
}

// relationWhere returns the Where entries of a relationship.
func (e *emitter) relationWhere(r *relation) ast.FieldList {
	edge := r.edge
	byValue := edge.Filterable == nil || edge.Filterable.ByValue
	byAggregate := (edge.Filterable == nil || edge.Filterable.ByAggregate) &&
		edge.Aggregate && edge.List && edge.TargetKind != gen.KindUnion
	var out ast.FieldList
	if byValue {
		target := e.where(edge.Target)
		if edge.List {
			out = append(out,
				field(edge.Name, named(e.relationshipFilters(edge.Target, target))),
				field(edge.Name+"Connection", named(e.connectionFilters(r, byAggregate))),
			)
			if e.deprecated {
				conn := e.connectionWhere(r)
				for _, q := range quantifiers {
					out = append(out, deprecatedField(edge.Name+"_"+strings.ToUpper(q), target, edge.Name, q))
				}
				for _, q := range quantifiers {
					out = append(out, deprecatedField(edge.Name+"Connection_"+strings.ToUpper(q), conn, edge.Name+"Connection", q))
				}
			}
		} else {
			out = append(out,
				field(edge.Name, named(target)),
				field(edge.Name+"Connection", named(e.connectionWhere(r))),
			)
		}
	}
	switch {
	case !byAggregate:
	case !byValue:
		// The connection filter is not generated, so the flat field is the
		// only aggregate filter.
		out = append(out, field(edge.Name+"Aggregate", named(e.aggregateInput(r))))
	case e.deprecated:
		out = append(out, deprecatedField(edge.Name+"Aggregate", e.aggregateInput(r), edge.Name+"Connection", "aggregate"))
	}
	return out
}

func deprecatedField(name, typ, generic, op string) *ast.FieldDefinition {
	f := field(name, named(typ))
	f.Directives = ast.DirectiveList{deprecatedDirective(fmt.Sprintf(deprecatedRelation, generic, op))}
	return f
}

// relationshipFilters ensures the quantified filter over the related
// nodes of target.
func (e *emitter) relationshipFilters(target, where string) string {
	return e.ensure(target+"RelationshipFilters", ast.InputObject, func(d *ast.Definition) {
		for _, q := range quantifiers {
			d.Fields = append(d.Fields, field(q, named(where)))
		}
	})
}

// connectionFilters ensures the quantified filter over the relationships
// of r. It carries the aggregate filter when the relationship can be
// filtered by aggregate.
func (e *emitter) connectionFilters(r *relation, aggregate bool) string {
	conn := e.connectionWhere(r)
	return e.ensure(r.shared.ConnectionFilters, ast.InputObject, func(d *ast.Definition) {
		if aggregate {
			d.Fields = append(d.Fields, field("aggregate", named(e.aggregateInput(r))))
		}
		for _, q := range quantifiers {
			d.Fields = append(d.Fields, field(q, named(conn)))
		}
	})
}

// connectionWhere ensures the filter over the relationships of r: the
// related node and the relationship properties. Union targets are keyed
// per member.
func (e *emitter) connectionWhere(r *relation) string {
	if u, ok := e.g.Union(r.edge.Target); ok {
		return e.ensure(r.shared.ConnectionWhere, ast.InputObject, func(d *ast.Definition) {
			for _, m := range u.Members {
				d.Fields = append(d.Fields, field(m, named(e.connectionWhere(r.member(m)))))
			}
		})
	}
	return e.ensure(r.shared.ConnectionWhere, ast.InputObject, func(d *ast.Definition) {
		d.Fields = logical(d.Name)
		d.Fields = append(d.Fields, field("node", named(e.where(r.edge.Target))))
		if r.edge.Properties != "" {
			d.Fields = append(d.Fields, field("edge", named(e.where(r.edge.Properties))))
		}
	})
}

func (e *emitter) sortDirection() string {
	return e.ensure("SortDirection", ast.Enum, func(d *ast.Definition) {
		d.EnumValues = ast.EnumValueList{
			{Name: "ASC", Description: "Sort by field values in ascending order."},
			{Name: "DESC", Description: "Sort by field values in descending order."},
		}
	})
}

// sort ensures the Sort input of a node, interface or properties type.
// It reports false when nothing is sortable.
func (e *emitter) sort(name string) (string, bool) {
	h, ok := e.holder(name)
	if !ok {
		return "", false
	}
	var fields []*gen.Field
	for _, f := range h.fields {
		if f.SortableByValue() && f.Readable() {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return "", false
	}
	dir := e.sortDirection()
	return e.ensure(name+"Sort", ast.InputObject, func(d *ast.Definition) {
		for _, f := range fields {
			d.Fields = append(d.Fields, field(f.Name, named(dir)))
		}
	}), true
}

func (e *emitter) connectionSort(r *relation) (string, bool) {
	if r.edge.TargetKind == gen.KindUnion {
		return "", false
	}
	node, hasNode := e.sort(r.edge.Target)
	var edge string
	var hasEdge bool
	if r.edge.Properties != "" {
		edge, hasEdge = e.sort(r.edge.Properties)
	}
	if !hasNode && !hasEdge {
		return "", false
	}
	return e.ensure(r.shared.ConnectionSort, ast.InputObject, func(d *ast.Definition) {
		if hasNode {
			d.Fields = append(d.Fields, field("node", named(node)))
		}
		if hasEdge {
			d.Fields = append(d.Fields, field("edge", named(edge)))
		}
	}), true
}
