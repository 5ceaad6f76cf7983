package graphql

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/graphdef/compiler/gen"
)

func aggregatable(fields []*gen.Field) []*gen.Field {
	var out []*gen.Field
	for _, f := range fields {
		if f.Aggregatable() {
			out = append(out, f)
		}
	}
	return out
}

func (e *emitter) fieldsOf(name string) []*gen.Field {
	if h, ok := e.holder(name); ok {
		return h.fields
	}
	return nil
}

// aggregate ensures the output of the root aggregate field of a
// node or interface.
func (e *emitter) aggregate(h *holder) string {
	return e.ensure(Names(h.name, h.plural).AggregateSelection, ast.Object, func(d *ast.Definition) {
		d.Fields = ast.FieldList{field("count", nonNull("Int"))}
		for _, f := range aggregatable(h.fields) {
			d.Fields = append(d.Fields, field(f.Name, nonNull(e.aggregateSelection(f))))
		}
	})
}

// relationAggregate ensures the output of the aggregate accessor of a
// relationship.
func (e *emitter) relationAggregate(r *relation) string {
	name := aggregationSelection(r.source, r.edge.Target, r.edge.Name)
	prefix := r.source + r.edge.Target + gen.Pascal(r.edge.Name)
	return e.ensure(name, ast.Object, func(d *ast.Definition) {
		d.Fields = ast.FieldList{field("count", nonNull("Int"))}
		if fields := aggregatable(e.fieldsOf(r.edge.Target)); len(fields) > 0 {
			node := e.ensure(prefix+"NodeAggregateSelection", ast.Object, func(d *ast.Definition) {
				for _, f := range fields {
					d.Fields = append(d.Fields, field(f.Name, nonNull(e.aggregateSelection(f))))
				}
			})
			d.Fields = append(d.Fields, field("node", named(node)))
		}
		if r.edge.Properties == "" {
			return
		}
		if fields := aggregatable(e.fieldsOf(r.edge.Properties)); len(fields) > 0 {
			edge := e.ensure(prefix+"EdgeAggregateSelection", ast.Object, func(d *ast.Definition) {
				for _, f := range fields {
					d.Fields = append(d.Fields, field(f.Name, nonNull(e.aggregateSelection(f))))
				}
			})
			d.Fields = append(d.Fields, field("edge", named(edge)))
		}
	})
}

// aggregateInput ensures the aggregation filter of a relationship.
func (e *emitter) aggregateInput(r *relation) string {
	return e.ensure(r.shared.AggregateInput, ast.InputObject, func(d *ast.Definition) {
		d.Fields = ast.FieldList{field("count", named(e.filters(classNumber, "Int", false)))}
		if e.deprecated {
			for _, o := range e.filterOps(classNumber, "Int", false) {
				if o.name == "in" {
					continue
				}
				fd := field("count_"+o.flat, o.typ)
				fd.Directives = ast.DirectiveList{deprecatedDirective(fmt.Sprintf(deprecatedFilter, "count", o.name))}
				d.Fields = append(d.Fields, fd)
			}
		}
		if fields := aggregatable(e.fieldsOf(r.edge.Target)); len(fields) > 0 {
			d.Fields = append(d.Fields, field("node", named(e.aggregationWhere(r.shared.NodeAggregationWhere, fields))))
		}
		if r.edge.Properties != "" {
			if fields := aggregatable(e.fieldsOf(r.edge.Properties)); len(fields) > 0 {
				d.Fields = append(d.Fields, field("edge", named(e.aggregationWhere(r.shared.EdgeAggregationWhere, fields))))
			}
		}
		d.Fields = append(d.Fields, logical(d.Name)...)
	})
}

func (e *emitter) aggregationWhere(name string, fields []*gen.Field) string {
	return e.ensure(name, ast.InputObject, func(d *ast.Definition) {
		d.Fields = logical(name)
		for _, f := range fields {
			d.Fields = append(d.Fields, field(f.Name, named(e.aggregationFilters(f))))
		}
	})
}
