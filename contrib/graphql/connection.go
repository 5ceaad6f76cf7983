package graphql

import (
	"github.com/vektah/gqlparser/v2/ast"
)

func (e *emitter) pageInfo() string {
	return e.ensure("PageInfo", ast.Object, func(d *ast.Definition) {
		d.Fields = ast.FieldList{
			field("hasNextPage", nonNull("Boolean")),
			field("hasPreviousPage", nonNull("Boolean")),
			field("startCursor", named("String")),
			field("endCursor", named("String")),
		}
	})
}

// rootConnection ensures the connection returned by the root connection
// field of a node or interface.
func (e *emitter) rootConnection(h *holder) string {
	n := Names(h.name, h.plural)
	edge := e.ensure(n.Edge, ast.Object, func(d *ast.Definition) {
		d.Fields = ast.FieldList{
			field("cursor", nonNull("String")),
			field("node", nonNull(h.name)),
		}
	})
	return e.ensure(n.Connection, ast.Object, func(d *ast.Definition) {
		d.Fields = ast.FieldList{
			field("edges", nonNullListOf(edge)),
			field("totalCount", nonNull("Int")),
			field("pageInfo", nonNull(e.pageInfo())),
		}
	})
}

// relationConnection ensures the connection of a relationship. Its
// relationship type carries the properties of the relationship.
func (e *emitter) relationConnection(r *relation) string {
	rel := e.ensure(r.shared.Relationship, ast.Object, func(d *ast.Definition) {
		d.Fields = ast.FieldList{
			field("cursor", nonNull("String")),
			field("node", nonNull(r.edge.Target)),
		}
		if r.edge.Properties != "" {
			d.Fields = append(d.Fields, field("properties", nonNull(r.edge.Properties)))
		}
	})
	return e.ensure(r.shared.Connection, ast.Object, func(d *ast.Definition) {
		d.Fields = ast.FieldList{
			field("edges", nonNullListOf(rel)),
			field("totalCount", nonNull("Int")),
			field("pageInfo", nonNull(e.pageInfo())),
		}
	})
}
