package graphql

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/graphdef/compiler/gen"
)

// wrap returns [name!] for list relationships and name otherwise.
func wrap(list bool, name string) *ast.Type {
	if list {
		return listOf(name)
	}
	return named(name)
}

// allows reports whether the nested operation is generated for r.
// connectOrCreate needs a unique key on the target.
func (e *emitter) allows(r *relation, op gen.NestedOps) bool {
	if !r.edge.Allows(op) {
		return false
	}
	if op == gen.OpConnectOrCreate {
		if t, ok := e.g.Node(r.edge.Target); ok {
			return t.HasKey()
		}
	}
	return true
}

// nested reports whether any relationship of name allows op.
func (e *emitter) nested(name string, op gen.NestedOps) bool {
	h, ok := e.holder(name)
	if !ok {
		return false
	}
	for _, edge := range h.edges {
		if e.allows(e.relation(h, edge), op) {
			return true
		}
	}
	return false
}

// requiredOnCreate reports whether a create input of fields must be given.
func requiredOnCreate(fields []*gen.Field) bool {
	for _, f := range fields {
		if f.SettableOnCreate() && f.Type.NonNull && f.Default == nil {
			return true
		}
	}
	return false
}

func (e *emitter) propertiesCreate(r *relation, d *ast.Definition) {
	if r.edge.Properties == "" {
		return
	}
	typ := named(e.createInput(r.edge.Properties))
	if requiredOnCreate(e.fieldsOf(r.edge.Properties)) {
		typ.NonNull = true
	}
	d.Fields = append(d.Fields, field("edge", typ))
}

// createInput ensures the create input of a node, interface or properties
// type. Interface inputs are keyed per implementer.
func (e *emitter) createInput(name string) string {
	if i, ok := e.g.Interface(name); ok {
		return e.ensure(name+"CreateInput", ast.InputObject, func(d *ast.Definition) {
			for _, impl := range i.Implementers {
				d.Fields = append(d.Fields, field(impl, named(e.createInput(impl))))
			}
		})
	}
	h := e.mustHolder(name)
	return e.ensure(name+"CreateInput", ast.InputObject, func(d *ast.Definition) {
		d.Fields = e.createFields(h)
		if h.node == nil {
			return
		}
		for _, edge := range h.edges {
			if edge.SettableOnCreate() {
				d.Fields = append(d.Fields, field(edge.Name, named(e.fieldInput(e.relation(h, edge)))))
			}
		}
	})
}

func (e *emitter) createFields(h *holder) ast.FieldList {
	var out ast.FieldList
	for _, f := range h.fields {
		if !f.SettableOnCreate() {
			continue
		}
		if typ := e.createType(h.name, f); typ != nil {
			out = append(out, field(f.Name, typ))
		}
	}
	return out
}

// fieldInput ensures the input of a relationship inside a create input.
func (e *emitter) fieldInput(r *relation) string {
	if u, ok := e.g.Union(r.edge.Target); ok {
		return e.ensure(r.own.CreateInput, ast.InputObject, func(d *ast.Definition) {
			for _, m := range u.Members {
				d.Fields = append(d.Fields, field(m, named(e.fieldInput(r.member(m)))))
			}
		})
	}
	return e.ensure(r.own.FieldInput, ast.InputObject, func(d *ast.Definition) {
		if e.allows(r, gen.OpCreate) {
			d.Fields = append(d.Fields, field("create", wrap(r.edge.List, e.createFieldInput(r))))
		}
		if e.allows(r, gen.OpConnect) {
			d.Fields = append(d.Fields, field("connect", wrap(r.edge.List, e.connectFieldInput(r))))
		}
		if e.allows(r, gen.OpConnectOrCreate) {
			d.Fields = append(d.Fields, field("connectOrCreate", wrap(r.edge.List, e.connectOrCreateInput(r))))
		}
	})
}

func (e *emitter) createFieldInput(r *relation) string {
	return e.ensure(r.own.CreateFieldInput, ast.InputObject, func(d *ast.Definition) {
		d.Fields = ast.FieldList{field("node", nonNull(e.createInput(r.edge.Target)))}
		e.propertiesCreate(r, d)
	})
}

func (e *emitter) connectWhere(target string) string {
	return e.ensure(target+"ConnectWhere", ast.InputObject, func(d *ast.Definition) {
		d.Fields = ast.FieldList{field("node", nonNull(e.where(target)))}
	})
}

func (e *emitter) connectFieldInput(r *relation) string {
	return e.ensure(r.own.ConnectFieldInput, ast.InputObject, func(d *ast.Definition) {
		d.Fields = ast.FieldList{field("where", named(e.connectWhere(r.edge.Target)))}
		if e.nested(r.edge.Target, gen.OpConnect) {
			d.Fields = append(d.Fields, field("connect", listOf(e.connectInput(r.edge.Target))))
		}
		e.propertiesCreate(r, d)
	})
}

// connectInput ensures the nested connect input of a node or interface.
func (e *emitter) connectInput(name string) string {
	h := e.mustHolder(name)
	return e.ensure(name+"ConnectInput", ast.InputObject, func(d *ast.Definition) {
		for _, edge := range h.edges {
			r := e.relation(h, edge)
			if !e.allows(r, gen.OpConnect) {
				continue
			}
			if u, ok := e.g.Union(edge.Target); ok {
				keyed := e.ensure(r.own.ConnectInput, ast.InputObject, func(d *ast.Definition) {
					for _, m := range u.Members {
						d.Fields = append(d.Fields, field(m, wrap(edge.List, e.connectFieldInput(r.member(m)))))
					}
				})
				d.Fields = append(d.Fields, field(edge.Name, named(keyed)))
				continue
			}
			d.Fields = append(d.Fields, field(edge.Name, wrap(edge.List, e.connectFieldInput(r))))
		}
	})
}

func (e *emitter) disconnectFieldInput(r *relation) string {
	return e.ensure(r.own.DisconnectFieldInput, ast.InputObject, func(d *ast.Definition) {
		d.Fields = ast.FieldList{field("where", named(e.connectionWhere(r)))}
		if e.nested(r.edge.Target, gen.OpDisconnect) {
			d.Fields = append(d.Fields, field("disconnect", named(e.disconnectInput(r.edge.Target))))
		}
	})
}

// disconnectInput ensures the nested disconnect input of a node or
// interface.
func (e *emitter) disconnectInput(name string) string {
	h := e.mustHolder(name)
	return e.ensure(name+"DisconnectInput", ast.InputObject, func(d *ast.Definition) {
		for _, edge := range h.edges {
			r := e.relation(h, edge)
			if !e.allows(r, gen.OpDisconnect) {
				continue
			}
			if u, ok := e.g.Union(edge.Target); ok {
				keyed := e.ensure(r.own.DisconnectInput, ast.InputObject, func(d *ast.Definition) {
					for _, m := range u.Members {
						d.Fields = append(d.Fields, field(m, wrap(edge.List, e.disconnectFieldInput(r.member(m)))))
					}
				})
				d.Fields = append(d.Fields, field(edge.Name, named(keyed)))
				continue
			}
			d.Fields = append(d.Fields, field(edge.Name, wrap(edge.List, e.disconnectFieldInput(r))))
		}
	})
}

func (e *emitter) deleteFieldInput(r *relation) string {
	return e.ensure(r.own.DeleteFieldInput, ast.InputObject, func(d *ast.Definition) {
		d.Fields = ast.FieldList{field("where", named(e.connectionWhere(r)))}
		if e.nested(r.edge.Target, gen.OpDelete) {
			d.Fields = append(d.Fields, field("delete", named(e.deleteInput(r.edge.Target))))
		}
	})
}

// deleteInput ensures the nested delete input of a node or interface. It
// exists even when no relationship allows deletes, as the delete root
// field takes it.
func (e *emitter) deleteInput(name string) string {
	h := e.mustHolder(name)
	return e.ensure(name+"DeleteInput", ast.InputObject, func(d *ast.Definition) {
		for _, edge := range h.edges {
			r := e.relation(h, edge)
			if !e.allows(r, gen.OpDelete) {
				continue
			}
			if u, ok := e.g.Union(edge.Target); ok {
				keyed := e.ensure(r.own.DeleteInput, ast.InputObject, func(d *ast.Definition) {
					for _, m := range u.Members {
						d.Fields = append(d.Fields, field(m, wrap(edge.List, e.deleteFieldInput(r.member(m)))))
					}
				})
				d.Fields = append(d.Fields, field(edge.Name, named(keyed)))
				continue
			}
			d.Fields = append(d.Fields, field(edge.Name, wrap(edge.List, e.deleteFieldInput(r))))
		}
	})
}

// updateInput ensures the update input of a node, interface or
// properties type.
func (e *emitter) updateInput(name string) string {
	h := e.mustHolder(name)
	return e.ensure(name+"UpdateInput", ast.InputObject, func(d *ast.Definition) {
		for _, f := range h.fields {
			if f.SettableOnUpdate() {
				d.Fields = append(d.Fields, e.updateFields(h.name, f)...)
			}
		}
		for _, edge := range h.edges {
			if !edge.SettableOnUpdate() {
				continue
			}
			r := e.relation(h, edge)
			if u, ok := e.g.Union(edge.Target); ok {
				keyed := e.ensure(r.own.UpdateInput, ast.InputObject, func(d *ast.Definition) {
					for _, m := range u.Members {
						d.Fields = append(d.Fields, field(m, wrap(edge.List, e.updateFieldInput(r.member(m)))))
					}
				})
				d.Fields = append(d.Fields, field(edge.Name, named(keyed)))
				continue
			}
			d.Fields = append(d.Fields, field(edge.Name, wrap(edge.List, e.updateFieldInput(r))))
		}
	})
}

func (e *emitter) updateFieldInput(r *relation) string {
	return e.ensure(r.own.UpdateFieldInput, ast.InputObject, func(d *ast.Definition) {
		d.Fields = ast.FieldList{field("where", named(e.connectionWhere(r)))}
		list := r.edge.List
		if e.allows(r, gen.OpConnect) {
			d.Fields = append(d.Fields, field("connect", wrap(list, e.connectFieldInput(r))))
		}
		if e.allows(r, gen.OpDisconnect) {
			d.Fields = append(d.Fields, field("disconnect", wrap(list, e.disconnectFieldInput(r))))
		}
		if e.allows(r, gen.OpCreate) {
			d.Fields = append(d.Fields, field("create", wrap(list, e.createFieldInput(r))))
		}
		if e.allows(r, gen.OpUpdate) {
			d.Fields = append(d.Fields, field("update", named(e.updateConnectionInput(r))))
		}
		if e.allows(r, gen.OpDelete) {
			d.Fields = append(d.Fields, field("delete", wrap(list, e.deleteFieldInput(r))))
		}
		if e.allows(r, gen.OpConnectOrCreate) {
			d.Fields = append(d.Fields, field("connectOrCreate", wrap(list, e.connectOrCreateInput(r))))
		}
	})
}

func (e *emitter) updateConnectionInput(r *relation) string {
	return e.ensure(r.own.UpdateConnectionInput, ast.InputObject, func(d *ast.Definition) {
		d.Fields = ast.FieldList{field("node", named(e.updateInput(r.edge.Target)))}
		if r.edge.Properties != "" {
			d.Fields = append(d.Fields, field("edge", named(e.updateInput(r.edge.Properties))))
		}
	})
}

func (e *emitter) connectOrCreateInput(r *relation) string {
	target := e.mustHolder(r.edge.Target)
	n := Names(target.name, target.plural)
	unique := e.ensure(n.UniqueWhere, ast.InputObject, func(d *ast.Definition) {
		for _, f := range target.node.KeyFields() {
			e.catalog(f.Type.Name)
			d.Fields = append(d.Fields, field(f.Name, named(f.Type.Name)))
		}
	})
	where := e.ensure(n.ConnectOrCreate, ast.InputObject, func(d *ast.Definition) {
		d.Fields = ast.FieldList{field("node", nonNull(unique))}
	})
	onCreateNode := e.ensure(n.OnCreateInput, ast.InputObject, func(d *ast.Definition) {
		d.Fields = e.createFields(target)
	})
	onCreate := e.ensure(r.own.ConnectOrCreateOnInput, ast.InputObject, func(d *ast.Definition) {
		d.Fields = ast.FieldList{field("node", nonNull(onCreateNode))}
		e.propertiesCreate(r, d)
	})
	return e.ensure(r.own.ConnectOrCreateInput, ast.InputObject, func(d *ast.Definition) {
		d.Fields = ast.FieldList{
			field("where", nonNull(where)),
			field("onCreate", nonNull(onCreate)),
		}
	})
}
