package graphql

import (
	"slices"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/graphdef/compiler/gen"
)

// relation is a relationship seen from its source. Output, filter and
// connection types use the shared names, which come from the interface
// declaring the relationship when there is one. Nested mutation inputs
// always use the source's own names.
type relation struct {
	src    *holder
	edge   *gen.Edge
	shared *RelationNames
	own    *RelationNames
	// source is the type name used for aggregation selections.
	source string
}

func (e *emitter) relation(h *holder, edge *gen.Edge) *relation {
	if h.iface != nil && edge.Properties == "" {
		if p := e.implementedProperties(h.iface, edge.Name); p != "" {
			cp := *edge
			cp.Properties = p
			edge = &cp
		}
	}
	r := &relation{
		src:    h,
		edge:   edge,
		own:    relationNames(h.name + gen.Pascal(edge.Name)),
		source: h.name,
	}
	r.shared = r.own
	if h.node == nil {
		return r
	}
	for _, name := range h.node.Interfaces {
		i, ok := e.g.Interface(name)
		if !ok {
			continue
		}
		ie, ok := i.EdgeByName(edge.Name)
		if !ok || ie.Target != edge.Target {
			continue
		}
		props := ie.Properties
		if props == "" {
			props = e.implementedProperties(i, ie.Name)
		}
		if props == edge.Properties {
			r.shared = relationNames(i.Name + gen.Pascal(edge.Name))
			r.source = i.Name
			break
		}
	}
	return r
}

// implementedProperties returns the properties type shared by all
// implementations of a relationship declared on an interface, or "" when
// they differ.
func (e *emitter) implementedProperties(i *gen.Interface, name string) string {
	var props string
	for n, impl := range i.Implementers {
		t, ok := e.g.Node(impl)
		if !ok {
			return ""
		}
		edge, ok := t.EdgeByName(name)
		if !ok || (n > 0 && edge.Properties != props) {
			return ""
		}
		props = edge.Properties
	}
	return props
}

// member returns the relation narrowed to one member of a union target.
// The member keeps the operations the union relationship allows, so
// connectOrCreate stays suppressed unless every member has a unique key.
func (r *relation) member(name string) *relation {
	edge := *r.edge
	edge.Target = name
	edge.TargetKind = gen.KindNode
	if !r.edge.Allows(gen.OpConnectOrCreate) {
		edge.NestedOps &^= gen.OpConnectOrCreate
	}
	return &relation{
		src:    r.src,
		edge:   &edge,
		shared: relationNames(r.shared.Prefix + name),
		own:    relationNames(r.own.Prefix + name),
		source: r.source,
	}
}

func (e *emitter) fieldDirectives(deprecated *string, dirs []gen.Directive) ast.DirectiveList {
	var out ast.DirectiveList
	if deprecated != nil {
		out = append(out, deprecatedDirective(*deprecated))
	}
	return append(out, e.directives(dirs)...)
}

func (e *emitter) outputField(f *gen.Field) *ast.FieldDefinition {
	e.catalog(f.Type.Name)
	fd := &ast.FieldDefinition{
		Name:        f.Name,
		Description: f.Description,
		Type:        f.Type.AST(),
		Directives:  e.fieldDirectives(f.Deprecated, f.Directives),
	}
	for _, a := range f.Arguments {
		e.catalog(a.Type.Name)
		fd.Arguments = append(fd.Arguments, &ast.ArgumentDefinition{
			Name:         a.Name,
			Description:  a.Description,
			Type:         a.Type.AST(),
			DefaultValue: a.Default.AST(),
		})
	}
	return fd
}

// outputFields returns the attributes as declared, then the
// relationships as declared.
func (e *emitter) outputFields(h *holder) ast.FieldList {
	var out ast.FieldList
	for _, f := range h.fields {
		if f.Readable() {
			out = append(out, e.outputField(f))
		}
	}
	for _, edge := range h.edges {
		out = append(out, e.relationFields(e.relation(h, edge))...)
	}
	return out
}

func (e *emitter) object(o *gen.Object) {
	d := &ast.Definition{
		Kind:        ast.Object,
		Name:        o.Name,
		Description: o.Description,
		Interfaces:  slices.Clone(o.Interfaces),
		Directives:  e.directives(o.Directives),
	}
	e.add(d)
	for _, f := range o.Fields {
		if f.Readable() {
			d.Fields = append(d.Fields, e.outputField(f))
		}
	}
}

func (e *emitter) ifaceOutput(i *gen.Interface) {
	d := &ast.Definition{
		Kind:        ast.Interface,
		Name:        i.Name,
		Description: i.Description,
		Interfaces:  slices.Clone(i.Interfaces),
		Directives:  e.directives(i.Directives),
	}
	e.add(d)
	d.Fields = e.outputFields(e.mustHolder(i.Name))
}

func (e *emitter) nodeOutput(t *gen.Type) {
	d := &ast.Definition{
		Kind:        ast.Object,
		Name:        t.Name,
		Description: t.Description,
		Interfaces:  slices.Clone(t.Interfaces),
		Directives:  e.directives(t.Directives),
	}
	e.add(d)
	d.Fields = e.outputFields(e.mustHolder(t.Name))
}

// relationFields returns the field of a relationship followed by its
// aggregate and connection accessors.
func (e *emitter) relationFields(r *relation) ast.FieldList {
	edge := r.edge
	where := e.where(edge.Target)
	dirs := e.fieldDirectives(edge.Deprecated, edge.Directives)

	f := field(edge.Name, edge.Ref().AST(), arg("where", named(where)))
	f.Description = edge.Description
	f.Directives = dirs
	if edge.List {
		f.Arguments = append(f.Arguments, e.pageArgs(edge.Target)...)
	}
	out := ast.FieldList{f}

	if edge.Aggregate && edge.List && edge.TargetKind != gen.KindUnion {
		agg := field(edge.Name+"Aggregate", named(e.relationAggregate(r)), arg("where", named(where)))
		agg.Directives = dirs
		out = append(out, agg)
	}

	conn := field(edge.Name+"Connection", nonNull(e.relationConnection(r)),
		arg("where", named(e.connectionWhere(r))),
		arg("first", named("Int")),
		arg("after", named("String")),
	)
	if sort, ok := e.connectionSort(r); ok {
		conn.Arguments = append(conn.Arguments, arg("sort", listOf(sort)))
	}
	conn.Directives = dirs
	return append(out, conn)
}

// pageArgs returns the limit, offset and sort arguments of a list
// accessor of target.
func (e *emitter) pageArgs(target string) ast.ArgumentDefinitionList {
	limit := arg("limit", named("Int"))
	if h, ok := e.holder(target); ok {
		if l := h.limit(); l != nil && l.Default > 0 {
			limit.DefaultValue = intValue(l.Default)
		}
	}
	args := ast.ArgumentDefinitionList{limit, arg("offset", named("Int"))}
	if sort, ok := e.sort(target); ok {
		args = append(args, arg("sort", listOf(sort)))
	}
	return args
}

// plural returns the plural of a node, interface or union.
func (e *emitter) plural(name string) string {
	if u, ok := e.g.Union(name); ok {
		return u.Plural
	}
	if h, ok := e.holder(name); ok && h.plural != "" {
		return h.plural
	}
	return gen.Plural(name)
}
