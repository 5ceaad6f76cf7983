package gen

import (
	"fmt"
	"slices"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/graphdef/compiler/load"
	"github.com/syssam/graphdef/schema"
)

// Graph holds the schema model: the entities, their relationships and
// the groups and supporting types they reference. It is read-only after
// NewGraph returns and is the unit stored by the model cache.
type Graph struct {
	Nodes      []*Type      `json:"nodes"`
	Interfaces []*Interface `json:"interfaces,omitempty"`
	Unions     []*Union     `json:"unions,omitempty"`
	Enums      []*Enum      `json:"enums,omitempty"`
	Scalars    []*Scalar    `json:"scalars,omitempty"`
	Objects    []*Object    `json:"objects,omitempty"`
	Inputs     []*Input     `json:"inputs,omitempty"`
	// Custom root fields declared on the user's root operation types.
	Queries       []*Field `json:"queries,omitempty"`
	Mutations     []*Field `json:"mutations,omitempty"`
	Subscriptions []*Field `json:"subscriptions,omitempty"`

	nodes      map[string]*Type
	interfaces map[string]*Interface
	unions     map[string]*Union
	enums      map[string]*Enum
	scalars    map[string]*Scalar
	objects    map[string]*Object
}

// NewGraph builds the schema model from collected type definitions.
// Structural problems are reported as *SchemaError or *EdgeError.
func NewGraph(c *load.Collection, opts ...Option) (*Graph, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	b := &builder{cfg: cfg, coll: c, g: &Graph{}}
	if err := b.build(); err != nil {
		return nil, err
	}
	return b.g, nil
}

// Link rebuilds the lookup indexes of a graph restored from its
// serialized form. It is idempotent.
func (g *Graph) Link() *Graph {
	g.nodes = make(map[string]*Type, len(g.Nodes))
	for _, t := range g.Nodes {
		t.fields = indexFields(t.Fields)
		t.edges = indexEdges(t.Edges)
		g.nodes[t.Name] = t
	}
	g.interfaces = make(map[string]*Interface, len(g.Interfaces))
	for _, i := range g.Interfaces {
		i.fields = indexFields(i.Fields)
		i.edges = indexEdges(i.Edges)
		g.interfaces[i.Name] = i
	}
	g.unions = make(map[string]*Union, len(g.Unions))
	for _, u := range g.Unions {
		g.unions[u.Name] = u
	}
	g.enums = make(map[string]*Enum, len(g.Enums))
	for _, e := range g.Enums {
		g.enums[e.Name] = e
	}
	g.scalars = make(map[string]*Scalar, len(g.Scalars))
	for _, s := range g.Scalars {
		g.scalars[s.Name] = s
	}
	g.objects = make(map[string]*Object, len(g.Objects))
	for _, o := range g.Objects {
		o.fields = indexFields(o.Fields)
		g.objects[o.Name] = o
	}
	return g
}

// Node returns the entity with the given name.
func (g *Graph) Node(name string) (*Type, bool) {
	t, ok := g.nodes[name]
	return t, ok
}

// Interface returns the interface group with the given name.
func (g *Graph) Interface(name string) (*Interface, bool) {
	i, ok := g.interfaces[name]
	return i, ok
}

// Union returns the union group with the given name.
func (g *Graph) Union(name string) (*Union, bool) {
	u, ok := g.unions[name]
	return u, ok
}

// Enum returns the enum with the given name.
func (g *Graph) Enum(name string) (*Enum, bool) {
	e, ok := g.enums[name]
	return e, ok
}

// Object returns the plain object or relationship-properties type with
// the given name.
func (g *Graph) Object(name string) (*Object, bool) {
	o, ok := g.objects[name]
	return o, ok
}

// Members returns the concrete entities of an interface or union target.
func (g *Graph) Members(name string) []*Type {
	var names []string
	if i, ok := g.interfaces[name]; ok {
		names = i.Implementers
	} else if u, ok := g.unions[name]; ok {
		names = u.Members
	} else if t, ok := g.nodes[name]; ok {
		return []*Type{t}
	}
	members := make([]*Type, 0, len(names))
	for _, n := range names {
		if t, ok := g.nodes[n]; ok {
			members = append(members, t)
		}
	}
	return members
}

// Fields returns the attributes of a node or interface.
func (g *Graph) Fields(name string) []*Field {
	if t, ok := g.nodes[name]; ok {
		return t.Fields
	}
	if i, ok := g.interfaces[name]; ok {
		return i.Fields
	}
	if o, ok := g.objects[name]; ok {
		return o.Fields
	}
	return nil
}

// Edges returns the relationships of a node or interface.
func (g *Graph) Edges(name string) []*Edge {
	if t, ok := g.nodes[name]; ok {
		return t.Edges
	}
	if i, ok := g.interfaces[name]; ok {
		return i.Edges
	}
	return nil
}

type builder struct {
	cfg  *Config
	coll *load.Collection
	g    *Graph
}

func (b *builder) build() error {
	b.collectLeaves()
	// Entity and group names must be known before any field is resolved.
	b.g.nodes = make(map[string]*Type)
	b.g.interfaces = make(map[string]*Interface)
	b.g.unions = make(map[string]*Union)
	b.g.objects = make(map[string]*Object)
	for _, name := range b.coll.Order {
		switch {
		case b.coll.IsRoot(name):
		case b.coll.Objects[name] != nil:
			def := b.coll.Objects[name]
			if _, ok := builtinKinds[name]; ok {
				continue
			}
			if def.Directives.ForName(schema.DirectiveNode) != nil {
				t := &Type{Name: name}
				b.g.Nodes = append(b.g.Nodes, t)
				b.g.nodes[name] = t
			} else {
				o := &Object{Name: name, Properties: def.Directives.ForName(schema.DirectiveRelationshipProperty) != nil}
				b.g.Objects = append(b.g.Objects, o)
				b.g.objects[name] = o
			}
		case b.coll.Interfaces[name] != nil:
			i := &Interface{Name: name}
			b.g.Interfaces = append(b.g.Interfaces, i)
			b.g.interfaces[name] = i
		case b.coll.Unions[name] != nil:
			u := &Union{Name: name}
			b.g.Unions = append(b.g.Unions, u)
			b.g.unions[name] = u
		}
	}
	for _, t := range b.g.Nodes {
		if err := b.node(t, b.coll.Objects[t.Name]); err != nil {
			return err
		}
	}
	for _, o := range b.g.Objects {
		if err := b.object(o, b.coll.Objects[o.Name]); err != nil {
			return err
		}
	}
	for _, i := range b.g.Interfaces {
		if err := b.iface(i, b.coll.Interfaces[i.Name]); err != nil {
			return err
		}
	}
	for _, u := range b.g.Unions {
		if err := b.union(u, b.coll.Unions[u.Name]); err != nil {
			return err
		}
	}
	if err := b.inputs(); err != nil {
		return err
	}
	if err := b.roots(); err != nil {
		return err
	}
	b.g.Link()
	if err := b.checkEdges(); err != nil {
		return err
	}
	b.uniformity()
	return nil
}

func (b *builder) collectLeaves() {
	b.g.enums = make(map[string]*Enum)
	b.g.scalars = make(map[string]*Scalar)
	for _, name := range b.coll.Order {
		if def := b.coll.Enums[name]; def != nil {
			e := &Enum{Name: name, Description: def.Description}
			for _, v := range def.EnumValues {
				e.Values = append(e.Values, EnumValue{Name: v.Name, Description: v.Description, Deprecated: deprecation(v.Directives)})
			}
			b.g.Enums = append(b.g.Enums, e)
			b.g.enums[name] = e
		}
		if def := b.coll.Scalars[name]; def != nil {
			if _, ok := builtinKinds[name]; ok {
				continue
			}
			s := &Scalar{Name: name, Description: def.Description}
			b.g.Scalars = append(b.g.Scalars, s)
			b.g.scalars[name] = s
		}
	}
}

// kindOf resolves a named type reference.
func (b *builder) kindOf(name string) (Kind, bool) {
	if k, ok := builtinKinds[name]; ok {
		return k, true
	}
	switch {
	case b.g.enums[name] != nil:
		return KindEnum, true
	case b.g.scalars[name] != nil:
		return KindScalar, true
	case b.g.nodes[name] != nil:
		return KindNode, true
	case b.g.interfaces[name] != nil:
		return KindInterface, true
	case b.g.unions[name] != nil:
		return KindUnion, true
	case b.g.objects[name] != nil:
		return KindObject, true
	}
	return KindInvalid, false
}

func (b *builder) node(t *Type, def *ast.Definition) error {
	t.Description = def.Description
	t.Interfaces = slices.Clone(def.Interfaces)
	t.Labels = []string{t.Name}
	t.Query = QueryOps{Read: true, Aggregate: true}
	t.Mutation = MutationOps{Create: true, Update: true, Delete: true}
	t.Subscription = SubscriptionOps{Created: true, Updated: true, Deleted: true}
	for _, d := range def.Directives {
		var err error
		switch d.Name {
		case schema.DirectiveNode:
			if labels, ok, lerr := argStringList(d, "labels"); lerr != nil {
				err = lerr
			} else if ok && len(labels) > 0 {
				t.Labels = labels
			}
		case schema.DirectivePlural:
			t.Plural, _, err = argString(d, "value")
		case schema.DirectiveLimit:
			t.Limit, err = parseLimit(d)
		case schema.DirectiveQuery:
			t.Query, err = parseQueryOps(d)
		case schema.DirectiveMutation:
			t.Mutation, err = parseMutationOps(d)
		case schema.DirectiveSubscription:
			t.Subscription, err = parseSubscriptionOps(d)
		case schema.DirectiveAuthentication, schema.DirectiveAuthorization:
			// Resolved once the attributes are known.
		case schema.DirectiveKey:
			var fields string
			if fields, _, err = argString(d, "fields"); err == nil {
				t.Keys = append(t.Keys, fields)
			}
			t.Directives = append(t.Directives, directiveOf(d))
		default:
			if schema.IsGraphDirective(d.Name) {
				err = fmt.Errorf("@%s is not allowed on node types", d.Name)
			} else {
				t.Directives = append(t.Directives, directiveOf(d))
			}
		}
		if err != nil {
			return NewSchemaError(t.Name, "", err.Error(), nil)
		}
	}
	if t.Plural == "" {
		t.Plural = Plural(t.Name)
	} else {
		t.Plural = LowerFirst(t.Plural)
	}
	for _, name := range t.Interfaces {
		if b.g.interfaces[name] == nil {
			return NewSchemaError(t.Name, "", fmt.Sprintf("implements unknown interface %s", name), nil)
		}
	}
	seen := make(map[string]bool)
	for _, fd := range def.Fields {
		if seen[fd.Name] {
			return NewSchemaError(t.Name, fd.Name, "field declared more than once", nil)
		}
		seen[fd.Name] = true
		if fd.Directives.ForName(schema.DirectiveRelationship) != nil {
			e, err := b.edge(t.Name, fd)
			if err != nil {
				return err
			}
			t.Edges = append(t.Edges, e)
			continue
		}
		f, err := b.field(t.Name, fd, true)
		if err != nil {
			return err
		}
		t.Fields = append(t.Fields, f)
	}
	t.fields = indexFields(t.Fields)
	t.edges = indexEdges(t.Edges)
	policy, err := parsePolicy(t, def)
	if err != nil {
		return err
	}
	t.Policy = policy
	return nil
}

// field builds an attribute. On nodes, entity and group references are
// allowed only on computed fields.
func (b *builder) field(owner string, fd *ast.FieldDefinition, onNode bool) (*Field, error) {
	ref, ok := refOf(fd.Type)
	if !ok {
		return nil, NewSchemaError(owner, fd.Name, "nested lists are not supported", nil)
	}
	kind, ok := b.kindOf(ref.Name)
	if !ok {
		return nil, NewSchemaError(owner, fd.Name, fmt.Sprintf("unknown type %s", ref.Name), nil)
	}
	f := &Field{
		Name:        fd.Name,
		Description: fd.Description,
		Type:        ref,
		Kind:        kind,
		Deprecated:  deprecation(fd.Directives),
	}
	for _, a := range fd.Arguments {
		arg, err := b.argument(owner, fd.Name, a.Name, a.Description, a.Type, a.DefaultValue)
		if err != nil {
			return nil, err
		}
		f.Arguments = append(f.Arguments, arg)
	}
	anns, pass, err := parseAnnotations(fd)
	if err != nil {
		return nil, NewSchemaError(owner, fd.Name, err.Error(), nil)
	}
	f.Directives = pass
	if err := applyAnnotations(f, anns); err != nil {
		return nil, NewSchemaError(owner, fd.Name, "conflicting annotations", err)
	}
	if b.cfg.HasResolver(owner, fd.Name) {
		f.HasUserResolver = true
	}
	if f.CustomResolver != nil && !f.HasUserResolver {
		b.cfg.logger().Warn("custom resolver field has no resolver", "type", owner, "field", fd.Name)
	}
	if kind.Composite() && onNode && !f.Computed() {
		return nil, NewSchemaError(owner, fd.Name, fmt.Sprintf("type %s requires @relationship, @cypher or a resolver", ref.Name), nil)
	}
	return f, nil
}

func (b *builder) argument(owner, field, name, desc string, typ *ast.Type, def *ast.Value) (Argument, error) {
	ref, ok := refOf(typ)
	if !ok {
		return Argument{}, NewSchemaError(owner, field, fmt.Sprintf("argument %s: nested lists are not supported", name), nil)
	}
	if _, known := b.kindOf(ref.Name); !known && b.coll.Inputs[ref.Name] == nil {
		return Argument{}, NewSchemaError(owner, field, fmt.Sprintf("argument %s: unknown type %s", name, ref.Name), nil)
	}
	return Argument{Name: name, Description: desc, Type: ref, Default: valueOf(def)}, nil
}

func (b *builder) edge(owner string, fd *ast.FieldDefinition) (*Edge, error) {
	ref, ok := refOf(fd.Type)
	if !ok {
		return nil, NewSchemaError(owner, fd.Name, "nested lists are not supported", nil)
	}
	kind, ok := b.kindOf(ref.Name)
	if !ok {
		return nil, NewSchemaError(owner, fd.Name, fmt.Sprintf("unknown type %s", ref.Name), nil)
	}
	if kind != KindNode && kind != KindInterface && kind != KindUnion {
		return nil, NewEdgeError(owner, ref.Name, fd.Name, "relationship target must be a node, interface or union", nil)
	}
	e := &Edge{
		Name:           fd.Name,
		Description:    fd.Description,
		Target:         ref.Name,
		TargetKind:     kind,
		List:           ref.List,
		NonNull:        ref.NonNull,
		QueryDirection: QueryDirected,
		NestedOps:      AllNestedOps,
		Aggregate:      true,
		Deprecated:     deprecation(fd.Directives),
	}
	for _, d := range fd.Directives {
		var err error
		switch d.Name {
		case schema.DirectiveRelationship:
			err = parseRelationship(e, d)
		case schema.DirectiveDeclareRelationship:
			err = parseNestedOps(e, d)
		case schema.DirectiveFilterable:
			var f FilterableAnnotation
			if f.ByValue, err = argBool(d, "byValue", true); err == nil {
				f.ByAggregate, err = argBool(d, "byAggregate", true)
			}
			e.Filterable = &f
		case schema.DirectiveSettable:
			var s SettableAnnotation
			if s.OnCreate, err = argBool(d, "onCreate", true); err == nil {
				s.OnUpdate, err = argBool(d, "onUpdate", true)
			}
			e.Settable = &s
		case schema.DirectiveDeprecated:
		default:
			if schema.IsGraphDirective(d.Name) {
				err = fmt.Errorf("@%s is not allowed on relationship fields", d.Name)
			} else {
				e.Directives = append(e.Directives, directiveOf(d))
			}
		}
		if err != nil {
			return nil, NewSchemaError(owner, fd.Name, err.Error(), nil)
		}
	}
	if e.Properties != "" {
		if o := b.g.objects[e.Properties]; o == nil || !o.Properties {
			return nil, NewEdgeError(owner, ref.Name, fd.Name, fmt.Sprintf("properties type %s must be an object marked @relationshipProperties", e.Properties), nil)
		}
	}
	return e, nil
}

func parseRelationship(e *Edge, d *ast.Directive) error {
	label, ok, err := argString(d, "type")
	if err != nil {
		return err
	}
	if !ok || label == "" {
		return fmt.Errorf("@relationship(type:) is required")
	}
	e.Label = label
	dir, ok, err := argEnum(d, "direction")
	if err != nil {
		return err
	}
	if !ok || !Direction(dir).Valid() {
		return fmt.Errorf("@relationship(direction:) must be IN or OUT")
	}
	e.Direction = Direction(dir)
	qd, ok, err := argEnum(d, "queryDirection")
	if err != nil {
		return err
	}
	if ok {
		switch QueryDirection(qd) {
		case QueryDirected, QueryUndirected:
			e.QueryDirection = QueryDirection(qd)
		default:
			return fmt.Errorf("@relationship(queryDirection:) unknown value %s", qd)
		}
	}
	if e.Properties, _, err = argString(d, "properties"); err != nil {
		return err
	}
	return parseNestedOps(e, d)
}

func parseNestedOps(e *Edge, d *ast.Directive) error {
	ops, ok, err := argEnumList(d, "nestedOperations")
	if err != nil {
		return err
	}
	if ok {
		e.NestedOps = 0
		for _, name := range ops {
			op, known := ParseNestedOp(name)
			if !known {
				return fmt.Errorf("@%s(nestedOperations:) unknown operation %s", d.Name, name)
			}
			e.NestedOps |= op
		}
	}
	e.Aggregate, err = argBool(d, "aggregate", true)
	return err
}

func (b *builder) object(o *Object, def *ast.Definition) error {
	o.Description = def.Description
	o.Interfaces = slices.Clone(def.Interfaces)
	for _, d := range def.Directives {
		if d.Name == schema.DirectiveRelationshipProperty {
			continue
		}
		if schema.IsGraphDirective(d.Name) {
			return NewSchemaError(o.Name, "", fmt.Sprintf("@%s requires @node", d.Name), nil)
		}
		o.Directives = append(o.Directives, directiveOf(d))
	}
	for _, fd := range def.Fields {
		if fd.Directives.ForName(schema.DirectiveRelationship) != nil {
			return NewSchemaError(o.Name, fd.Name, "@relationship is only allowed on node types", nil)
		}
		f, err := b.field(o.Name, fd, false)
		if err != nil {
			return err
		}
		if o.Properties && f.Kind.Composite() {
			return NewSchemaError(o.Name, fd.Name, "relationship properties must be scalar or enum attributes", nil)
		}
		o.Fields = append(o.Fields, f)
	}
	o.fields = indexFields(o.Fields)
	return nil
}

func (b *builder) iface(i *Interface, def *ast.Definition) error {
	i.Description = def.Description
	i.Interfaces = slices.Clone(def.Interfaces)
	i.Query = QueryOps{Read: true, Aggregate: true}
	for _, d := range def.Directives {
		var err error
		switch d.Name {
		case schema.DirectivePlural:
			i.Plural, _, err = argString(d, "value")
		case schema.DirectiveLimit:
			i.Limit, err = parseLimit(d)
		case schema.DirectiveQuery:
			i.Query, err = parseQueryOps(d)
		default:
			if schema.IsGraphDirective(d.Name) {
				err = fmt.Errorf("@%s is not allowed on interfaces", d.Name)
			} else {
				i.Directives = append(i.Directives, directiveOf(d))
			}
		}
		if err != nil {
			return NewSchemaError(i.Name, "", err.Error(), nil)
		}
	}
	if i.Plural == "" {
		i.Plural = Plural(i.Name)
	} else {
		i.Plural = LowerFirst(i.Plural)
	}
	for _, fd := range def.Fields {
		if fd.Directives.ForName(schema.DirectiveDeclareRelationship) != nil || fd.Directives.ForName(schema.DirectiveRelationship) != nil {
			e, err := b.edge(i.Name, fd)
			if err != nil {
				return err
			}
			e.Declared = fd.Directives.ForName(schema.DirectiveRelationship) == nil
			i.Edges = append(i.Edges, e)
			continue
		}
		f, err := b.field(i.Name, fd, false)
		if err != nil {
			return err
		}
		i.Fields = append(i.Fields, f)
	}
	for _, t := range b.g.Nodes {
		if slices.Contains(t.Interfaces, i.Name) {
			i.Implementers = append(i.Implementers, t.Name)
		}
	}
	for _, name := range i.Implementers {
		t := b.g.nodes[name]
		for _, e := range i.Edges {
			impl, ok := t.edges[e.Name]
			if !ok {
				return NewEdgeError(t.Name, e.Target, e.Name, fmt.Sprintf("must implement relationship declared by %s", i.Name), nil)
			}
			if impl.Aggregate != e.Aggregate {
				return NewEdgeError(t.Name, e.Target, e.Name, fmt.Sprintf("aggregate must match the relationship declared by %s", i.Name), nil)
			}
			if e.Declared && e.Label == "" {
				continue
			}
			if impl.Label != e.Label || impl.Direction != e.Direction {
				return NewEdgeError(t.Name, e.Target, e.Name, fmt.Sprintf("relationship differs from the one declared by %s", i.Name), nil)
			}
		}
	}
	i.fields = indexFields(i.Fields)
	i.edges = indexEdges(i.Edges)
	return nil
}

func (b *builder) union(u *Union, def *ast.Definition) error {
	u.Description = def.Description
	u.Query = QueryOps{Read: true}
	for _, d := range def.Directives {
		var err error
		switch d.Name {
		case schema.DirectivePlural:
			u.Plural, _, err = argString(d, "value")
		case schema.DirectiveQuery:
			// Unions have no aggregate root; only an explicit request is an error.
			u.Query, err = parseQueryOps(d)
			if err == nil && u.Query.Aggregate && d.Arguments.ForName("aggregate") != nil {
				err = fmt.Errorf("@query(aggregate:) is not supported on unions")
			}
			u.Query.Aggregate = false
		}
		if err != nil {
			return NewSchemaError(u.Name, "", err.Error(), nil)
		}
	}
	if u.Plural == "" {
		u.Plural = Plural(u.Name)
	} else {
		u.Plural = LowerFirst(u.Plural)
	}
	for _, m := range def.Types {
		if b.g.nodes[m] == nil {
			return NewSchemaError(u.Name, "", fmt.Sprintf("union member %s is not a node", m), nil)
		}
		u.Members = append(u.Members, m)
	}
	if len(u.Members) == 0 {
		return NewSchemaError(u.Name, "", "union has no members", nil)
	}
	return nil
}

func (b *builder) inputs() error {
	for _, name := range b.coll.Order {
		def := b.coll.Inputs[name]
		if def == nil {
			continue
		}
		in := &Input{Name: name, Description: def.Description}
		for _, fd := range def.Fields {
			arg, err := b.argument(name, fd.Name, fd.Name, fd.Description, fd.Type, fd.DefaultValue)
			if err != nil {
				return err
			}
			in.Fields = append(in.Fields, arg)
		}
		b.g.Inputs = append(b.g.Inputs, in)
	}
	return nil
}

// roots collects custom fields of the user's root operation types. Each
// needs either @cypher or a user resolver.
func (b *builder) roots() error {
	for _, r := range []struct {
		name   string
		fields *[]*Field
	}{
		{b.coll.Query, &b.g.Queries},
		{b.coll.Mutation, &b.g.Mutations},
		{b.coll.Subscription, &b.g.Subscriptions},
	} {
		def := b.coll.Objects[r.name]
		if def == nil {
			continue
		}
		for _, fd := range def.Fields {
			f, err := b.field(r.name, fd, false)
			if err != nil {
				return err
			}
			if f.Cypher == nil && !f.HasUserResolver {
				return NewSchemaError(r.name, fd.Name, "root fields require @cypher or a resolver", nil)
			}
			*r.fields = append(*r.fields, f)
		}
	}
	return nil
}

type edgeKey struct {
	label     string
	direction Direction
	target    string
}

// checkEdges reports relationships that are declared twice on one entity
// and paired relationships that disagree on their properties type.
func (b *builder) checkEdges() error {
	for _, t := range b.g.Nodes {
		seen := make(map[edgeKey]string)
		for _, e := range t.Edges {
			k := edgeKey{e.Label, e.Direction, e.Target}
			if prev, ok := seen[k]; ok {
				return NewEdgeError(t.Name, e.Target, e.Name, fmt.Sprintf("relationship %s %s duplicates field %s", e.Label, e.Direction, prev), nil)
			}
			seen[k] = e.Name
		}
	}
	for _, t := range b.g.Nodes {
		for _, e := range t.Edges {
			if e.Properties == "" {
				continue
			}
			for _, other := range b.g.Members(e.Target) {
				for _, back := range other.Edges {
					if back.Label != e.Label || back.Direction != e.Direction.Reverse() || back.Properties == "" {
						continue
					}
					if !b.pointsAt(back, t) {
						continue
					}
					if back.Properties != e.Properties {
						return NewEdgeError(t.Name, other.Name, e.Name,
							fmt.Sprintf("relationship %s uses properties %s but %s.%s uses %s", e.Label, e.Properties, other.Name, back.Name, back.Properties), nil)
					}
				}
			}
		}
	}
	return nil
}

func (b *builder) pointsAt(e *Edge, t *Type) bool {
	for _, m := range b.g.Members(e.Target) {
		if m.Name == t.Name {
			return true
		}
	}
	return false
}

// uniformity precomputes whether every member of a polymorphic target
// has a unique key.
func (b *builder) uniformity() {
	mark := func(edges []*Edge) {
		for _, e := range edges {
			if !e.Polymorphic() {
				continue
			}
			members := b.g.Members(e.Target)
			e.UniformUniqueness = len(members) > 0
			for _, m := range members {
				if !m.HasKey() {
					e.UniformUniqueness = false
					break
				}
			}
		}
	}
	for _, t := range b.g.Nodes {
		mark(t.Edges)
	}
	for _, i := range b.g.Interfaces {
		mark(i.Edges)
	}
}

func argStringList(d *ast.Directive, name string) ([]string, bool, error) {
	arg := d.Arguments.ForName(name)
	if arg == nil || arg.Value == nil || arg.Value.Kind == ast.NullValue {
		return nil, false, nil
	}
	switch arg.Value.Kind {
	case ast.StringValue:
		return []string{arg.Value.Raw}, true, nil
	case ast.ListValue:
		var out []string
		for _, c := range arg.Value.Children {
			if c.Value == nil || c.Value.Kind != ast.StringValue {
				return nil, false, fmt.Errorf("@%s(%s:) must be a list of strings", d.Name, name)
			}
			out = append(out, c.Value.Raw)
		}
		return out, true, nil
	}
	return nil, false, fmt.Errorf("@%s(%s:) must be a list of strings", d.Name, name)
}

func parseQueryOps(d *ast.Directive) (QueryOps, error) {
	read, err := argBool(d, "read", true)
	if err != nil {
		return QueryOps{}, err
	}
	agg, err := argBool(d, "aggregate", true)
	if err != nil {
		return QueryOps{}, err
	}
	return QueryOps{Read: read, Aggregate: agg}, nil
}

func parseLimit(d *ast.Directive) (*Limit, error) {
	def, _, err := argInt(d, "default")
	if err != nil {
		return nil, err
	}
	maxv, _, err := argInt(d, "max")
	if err != nil {
		return nil, err
	}
	if def < 0 || maxv < 0 || (maxv > 0 && def > maxv) {
		return nil, fmt.Errorf("@limit(default: %d, max: %d) is out of range", def, maxv)
	}
	return &Limit{Default: def, Max: maxv}, nil
}

func parseMutationOps(d *ast.Directive) (MutationOps, error) {
	ops, ok, err := argEnumList(d, "operations")
	if err != nil || !ok {
		return MutationOps{Create: true, Update: true, Delete: true}, err
	}
	var m MutationOps
	for _, op := range ops {
		switch op {
		case OperationCreate:
			m.Create = true
		case OperationUpdate:
			m.Update = true
		case OperationDelete:
			m.Delete = true
		default:
			return m, fmt.Errorf("@mutation(operations:) unknown operation %s", op)
		}
	}
	return m, nil
}

func parseSubscriptionOps(d *ast.Directive) (SubscriptionOps, error) {
	events, ok, err := argEnumList(d, "events")
	if err != nil || !ok {
		return SubscriptionOps{Created: true, Updated: true, Deleted: true}, err
	}
	var s SubscriptionOps
	for _, ev := range events {
		switch ev {
		case "CREATED":
			s.Created = true
		case "UPDATED":
			s.Updated = true
		case "DELETED":
			s.Deleted = true
		default:
			return s, fmt.Errorf("@subscription(events:) unknown event %s", ev)
		}
	}
	return s, nil
}
