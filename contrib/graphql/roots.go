package graphql

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/graphdef/compiler/gen"
	"github.com/syssam/graphdef/dialect"
)

// template registers the operation template of a generated root field.
func (e *emitter) template(op *dialect.Operation) {
	e.ops.Set(op)
}

func (e *emitter) queryRoot() {
	d := &ast.Definition{Kind: ast.Object, Name: e.c.Query}
	e.add(d)
	for _, t := range e.g.Nodes {
		d.Fields = append(d.Fields, e.queryFields(e.mustHolder(t.Name), t.Query)...)
	}
	for _, i := range e.g.Interfaces {
		d.Fields = append(d.Fields, e.queryFields(e.mustHolder(i.Name), i.Query)...)
	}
	for _, u := range e.g.Unions {
		if !u.Query.Read {
			continue
		}
		f := field(u.Plural, nonNullListOf(u.Name),
			arg("where", named(e.where(u.Name))),
			arg("limit", named("Int")),
			arg("offset", named("Int")),
		)
		d.Fields = append(d.Fields, f)
		e.template(&dialect.Operation{
			Kind:    dialect.OpRead,
			Root:    d.Name,
			Field:   f.Name,
			Entity:  u.Name,
			Members: u.Members,
			List:    true,
		})
	}
	for _, f := range e.g.Queries {
		d.Fields = append(d.Fields, e.customRoot(d.Name, f))
	}
	if e.federation {
		d.Fields = append(d.Fields, e.federationFields(d.Name)...)
	}
	if len(d.Fields) == 0 {
		e.fail(gen.NewGenerationError("roots", d.Name, "", "no query fields: declare at least one @node type or custom query", nil))
	}
}

// queryFields returns the read, connection and aggregate root fields of a
// node or interface.
func (e *emitter) queryFields(h *holder, ops gen.QueryOps) ast.FieldList {
	roots := Roots(h.name, h.plural)
	base := dialect.Operation{Root: e.c.Query, Entity: h.name}
	if h.iface != nil {
		base.Members = h.iface.Implementers
	}
	if l := h.limit(); l != nil {
		base.MaxLimit = l.Max
	}
	where := e.where(h.name)
	var out ast.FieldList
	if ops.Read {
		read := field(roots.Read, nonNullListOf(h.name), arg("where", named(where)))
		read.Arguments = append(read.Arguments, e.pageArgs(h.name)...)
		out = append(out, read)
		op := base
		op.Kind, op.Field, op.List = dialect.OpRead, read.Name, true
		e.template(&op)

		conn := field(roots.Connection, nonNull(e.rootConnection(h)),
			arg("where", named(where)),
			arg("first", named("Int")),
			arg("after", named("String")),
		)
		if sort, ok := e.sort(h.name); ok {
			conn.Arguments = append(conn.Arguments, arg("sort", listOf(sort)))
		}
		out = append(out, conn)
		op = base
		op.Kind, op.Field = dialect.OpConnection, conn.Name
		e.template(&op)
	}
	if ops.Aggregate {
		agg := field(roots.Aggregate, nonNull(e.aggregate(h)), arg("where", named(where)))
		out = append(out, agg)
		op := base
		op.Kind, op.Field = dialect.OpAggregate, agg.Name
		e.template(&op)
	}
	return out
}

// customRoot emits a root field declared by the user. @cypher fields get
// an operation template; other fields are resolved by user resolvers.
func (e *emitter) customRoot(root string, f *gen.Field) *ast.FieldDefinition {
	fd := e.outputField(f)
	if f.Cypher == nil {
		return fd
	}
	op := &dialect.Operation{
		Kind:   dialect.OpCypher,
		Root:   root,
		Field:  f.Name,
		List:   f.Type.List,
		Cypher: &dialect.Cypher{Statement: f.Cypher.Statement, ColumnName: f.Cypher.ColumnName},
	}
	switch f.Kind {
	case gen.KindNode:
		op.Entity = f.Type.Name
	case gen.KindInterface, gen.KindUnion:
		op.Entity = f.Type.Name
		for _, m := range e.g.Members(f.Type.Name) {
			op.Members = append(op.Members, m.Name)
		}
	}
	e.template(op)
	return fd
}

func (e *emitter) mutationRoot() {
	d := &ast.Definition{Kind: ast.Object, Name: e.c.Mutation}
	for _, t := range e.g.Nodes {
		d.Fields = append(d.Fields, e.mutationFields(t)...)
	}
	for _, f := range e.g.Mutations {
		d.Fields = append(d.Fields, e.customRoot(d.Name, f))
	}
	if len(d.Fields) > 0 {
		e.add(d)
	}
}

func (e *emitter) mutationFields(t *gen.Type) ast.FieldList {
	h := e.mustHolder(t.Name)
	roots := Roots(t.Name, t.Plural)
	p := gen.Pascal(t.Plural)
	var out ast.FieldList
	if t.Mutation.Create {
		res := e.ensure("Create"+p+"MutationResponse", ast.Object, func(d *ast.Definition) {
			d.Fields = ast.FieldList{
				field("info", nonNull(e.createInfo())),
				field(t.Plural, nonNullListOf(t.Name)),
			}
		})
		f := field(roots.Create, nonNull(res), arg("input", nonNullListOf(e.createInput(h.name))))
		out = append(out, f)
		e.template(&dialect.Operation{Kind: dialect.OpCreate, Root: e.c.Mutation, Field: f.Name, Entity: t.Name, Plural: t.Plural, List: true})
	}
	if t.Mutation.Update {
		res := e.ensure("Update"+p+"MutationResponse", ast.Object, func(d *ast.Definition) {
			d.Fields = ast.FieldList{
				field("info", nonNull(e.updateInfo())),
				field(t.Plural, nonNullListOf(t.Name)),
			}
		})
		f := field(roots.Update, nonNull(res),
			arg("where", named(e.where(h.name))),
			arg("update", named(e.updateInput(h.name))),
		)
		out = append(out, f)
		e.template(&dialect.Operation{Kind: dialect.OpUpdate, Root: e.c.Mutation, Field: f.Name, Entity: t.Name, Plural: t.Plural, List: true})
	}
	if t.Mutation.Delete {
		f := field(roots.Delete, nonNull(e.deleteInfo()),
			arg("where", named(e.where(h.name))),
			arg("delete", named(e.deleteInput(h.name))),
		)
		out = append(out, f)
		e.template(&dialect.Operation{Kind: dialect.OpDelete, Root: e.c.Mutation, Field: f.Name, Entity: t.Name, Plural: t.Plural})
	}
	return out
}

func (e *emitter) createInfo() string {
	return e.ensure("CreateInfo", ast.Object, func(d *ast.Definition) {
		d.Fields = ast.FieldList{
			field("nodesCreated", nonNull("Int")),
			field("relationshipsCreated", nonNull("Int")),
		}
	})
}

func (e *emitter) updateInfo() string {
	return e.ensure("UpdateInfo", ast.Object, func(d *ast.Definition) {
		d.Fields = ast.FieldList{
			field("nodesCreated", nonNull("Int")),
			field("nodesDeleted", nonNull("Int")),
			field("relationshipsCreated", nonNull("Int")),
			field("relationshipsDeleted", nonNull("Int")),
		}
	})
}

func (e *emitter) deleteInfo() string {
	return e.ensure("DeleteInfo", ast.Object, func(d *ast.Definition) {
		d.Fields = ast.FieldList{
			field("nodesDeleted", nonNull("Int")),
			field("relationshipsDeleted", nonNull("Int")),
		}
	})
}
