package graphql

import (
	"fmt"
	"slices"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/graphdef/compiler/gen"
	"github.com/syssam/graphdef/compiler/load"
	"github.com/syssam/graphdef/dialect"
	"github.com/syssam/graphdef/resolver"
	"github.com/syssam/graphdef/subscription"
)

// SchemaHook is called with the augmented document after generation and
// before it is printed. It may add or change definitions.
type SchemaHook func(g *gen.Graph, doc *ast.SchemaDocument) error

// Generator produces the augmented API schema of a model.
type Generator struct {
	cfg    *gen.Config
	exec   dialect.Executor
	drv    dialect.Driver
	engine subscription.Engine
	hooks  []SchemaHook
}

// Option configures a Generator.
type Option func(*Generator) error

// WithConfig sets the generation config shared with the model builder.
func WithConfig(cfg *gen.Config) Option {
	return func(g *Generator) error {
		if cfg == nil {
			return gen.NewConfigError("Config", nil, "config cannot be nil")
		}
		g.cfg = cfg
		return nil
	}
}

// WithOptions applies model builder options to the generation config.
func WithOptions(opts ...gen.Option) Option {
	return func(g *Generator) error {
		return g.cfg.Apply(opts...)
	}
}

// WithExecutor sets the executor the generated resolvers translate to.
func WithExecutor(exec dialect.Executor) Option {
	return func(g *Generator) error {
		g.exec = exec
		return nil
	}
}

// WithDriver sets the driver opening sessions for the executor.
func WithDriver(drv dialect.Driver) Option {
	return func(g *Generator) error {
		g.drv = drv
		return nil
	}
}

// WithSubscriptions sets the event engine and enables subscription output.
func WithSubscriptions(engine subscription.Engine) Option {
	return func(g *Generator) error {
		if engine == nil {
			return gen.NewConfigError("Subscriptions", nil, "engine cannot be nil")
		}
		g.engine = engine
		return g.cfg.Apply(gen.WithFeatures(gen.FeatureSubscriptions))
	}
}

// WithSchemaHook adds a hook run on the generated document.
func WithSchemaHook(hooks ...SchemaHook) Option {
	return func(g *Generator) error {
		g.hooks = append(g.hooks, hooks...)
		return nil
	}
}

// NewGenerator returns a generator configured by opts.
func NewGenerator(opts ...Option) (*Generator, error) {
	g := &Generator{cfg: &gen.Config{}}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Result holds the artifacts of one generation.
type Result struct {
	// Document is the augmented schema.
	Document *ast.SchemaDocument
	// SDL is Document printed.
	SDL string
	// Resolvers resolve the generated root fields.
	Resolvers resolver.Map
	// Operations are the templates of the generated root fields.
	Operations resolver.Operations
}

// Generate builds the augmented schema of g. The collection provides the
// root type names and user directive definitions. Generation is
// deterministic: equal models produce byte-identical SDL.
func (gr *Generator) Generate(g *gen.Graph, c *load.Collection) (*Result, error) {
	if g == nil {
		return nil, gen.NewGenerationError("setup", "", "", "nil model", nil)
	}
	if c == nil {
		c, _ = load.Collect(nil)
	}
	e := newEmitter(g, c, gr.cfg)
	e.subscriptions = gr.cfg.FeatureEnabled(gen.FeatureSubscriptions.Name)
	e.run()
	if e.err != nil {
		return nil, e.err
	}
	doc := e.document()
	var sdl string
	if gr.cfg.FeatureEnabled(gen.FeatureFederation.Name) {
		sdl = e.federate(doc)
	}
	for _, hook := range gr.hooks {
		if err := hook(g, doc); err != nil {
			return nil, gen.NewGenerationError("hook", "", "", "schema hook failed", err)
		}
	}
	res := &Result{
		Document:   doc,
		SDL:        load.Print(doc),
		Operations: e.ops,
	}
	res.Resolvers = gr.resolvers(e, sdl)
	return res, nil
}

// emitter accumulates generated definitions. Definitions are created at
// most once, keyed by name; the first error sticks.
type emitter struct {
	g   *gen.Graph
	c   *load.Collection
	cfg *gen.Config

	defs  ast.DefinitionList
	index map[string]*ast.Definition
	ops   resolver.Operations
	err   error
	// events maps subscription root fields to the event they stream.
	events map[string]subscription.EventType

	deprecated    bool
	subscriptions bool
	federation    bool
}

func newEmitter(g *gen.Graph, c *load.Collection, cfg *gen.Config) *emitter {
	return &emitter{
		g:          g,
		c:          c,
		cfg:        cfg,
		index:      make(map[string]*ast.Definition),
		ops:        resolver.Operations{},
		events:     make(map[string]subscription.EventType),
		deprecated: !cfg.FeatureEnabled(gen.FeatureExcludeDeprecatedFields.Name),
		federation: cfg.FeatureEnabled(gen.FeatureFederation.Name),
	}
}

// fail records the first error.
func (e *emitter) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

// ensure emits the definition named name unless it exists. The name is
// reserved before build runs so recursive references resolve to it.
func (e *emitter) ensure(name string, kind ast.DefinitionKind, build func(d *ast.Definition)) string {
	if _, ok := e.index[name]; ok {
		return name
	}
	d := &ast.Definition{Kind: kind, Name: name}
	e.index[name] = d
	build(d)
	if kind == ast.InputObject && len(d.Fields) == 0 {
		d.Fields = append(d.Fields, &ast.FieldDefinition{Name: "_emptyInput", Type: named("Boolean")})
	}
	e.defs = append(e.defs, d)
	return name
}

// add emits a prebuilt definition unless its name exists.
func (e *emitter) add(d *ast.Definition) {
	if _, ok := e.index[d.Name]; ok {
		return
	}
	e.index[d.Name] = d
	e.defs = append(e.defs, d)
}

func (e *emitter) run() {
	e.leaves()
	for _, o := range e.g.Objects {
		e.object(o)
	}
	for _, i := range e.g.Interfaces {
		e.ifaceOutput(i)
	}
	for _, t := range e.g.Nodes {
		e.nodeOutput(t)
	}
	for _, u := range e.g.Unions {
		e.add(&ast.Definition{Kind: ast.Union, Name: u.Name, Description: u.Description, Types: slices.Clone(u.Members)})
	}
	for _, in := range e.g.Inputs {
		e.ensure(in.Name, ast.InputObject, func(d *ast.Definition) {
			d.Description = in.Description
			for _, a := range in.Fields {
				d.Fields = append(d.Fields, &ast.FieldDefinition{Name: a.Name, Description: a.Description, Type: a.Type.AST(), DefaultValue: a.Default.AST()})
			}
		})
	}
	e.queryRoot()
	e.mutationRoot()
	if e.subscriptions {
		e.subscriptionRoot()
	}
}

// leaves emits user enums and scalars.
func (e *emitter) leaves() {
	for _, en := range e.g.Enums {
		d := &ast.Definition{Kind: ast.Enum, Name: en.Name, Description: en.Description}
		for _, v := range en.Values {
			ev := &ast.EnumValueDefinition{Name: v.Name, Description: v.Description}
			if v.Deprecated != nil {
				ev.Directives = ast.DirectiveList{deprecatedDirective(*v.Deprecated)}
			}
			d.EnumValues = append(d.EnumValues, ev)
		}
		e.add(d)
	}
	for _, s := range e.g.Scalars {
		e.add(&ast.Definition{Kind: ast.Scalar, Name: s.Name, Description: s.Description})
	}
}

// document assembles the generated definitions with the user directive
// definitions and a schema definition when roots are renamed.
func (e *emitter) document() *ast.SchemaDocument {
	doc := &ast.SchemaDocument{Definitions: e.defs}
	names := make([]string, 0, len(e.c.Directives))
	for name := range e.c.Directives {
		if isCatalogDirective(name) {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		doc.Directives = append(doc.Directives, e.c.Directives[name])
	}
	if e.c.Query != resolver.Query || e.c.Mutation != resolver.Mutation || e.c.Subscription != resolver.Subscription {
		sd := &ast.SchemaDefinition{}
		for _, r := range []struct {
			op   ast.Operation
			name string
		}{
			{ast.Query, e.c.Query},
			{ast.Mutation, e.c.Mutation},
			{ast.Subscription, e.c.Subscription},
		} {
			if _, ok := e.index[r.name]; ok {
				sd.OperationTypes = append(sd.OperationTypes, &ast.OperationTypeDefinition{Operation: r.op, Type: r.name})
			}
		}
		doc.Schema = ast.SchemaDefinitionList{sd}
	}
	return doc
}

// holder is an entity or an interface: both own attributes and
// relationships and get the same family of generated inputs.
// Relationship-properties types are holders without relationships.
type holder struct {
	name   string
	plural string
	fields []*gen.Field
	edges  []*gen.Edge
	node   *gen.Type
	iface  *gen.Interface
}

func (e *emitter) holder(name string) (*holder, bool) {
	if t, ok := e.g.Node(name); ok {
		return &holder{name: t.Name, plural: t.Plural, fields: t.Fields, edges: t.Edges, node: t}, true
	}
	if i, ok := e.g.Interface(name); ok {
		return &holder{name: i.Name, plural: i.Plural, fields: i.Fields, edges: i.Edges, iface: i}, true
	}
	if o, ok := e.g.Object(name); ok && o.Properties {
		return &holder{name: o.Name, fields: o.Fields}, true
	}
	return nil, false
}

func (e *emitter) mustHolder(name string) *holder {
	h, ok := e.holder(name)
	if !ok {
		e.fail(gen.NewGenerationError("resolve", name, "", fmt.Sprintf("%s is not a node or interface", name), nil))
		return &holder{name: name}
	}
	return h
}

// limit returns the page size bounds of a holder.
func (h *holder) limit() *gen.Limit {
	switch {
	case h.node != nil:
		return h.node.Limit
	case h.iface != nil:
		return h.iface.Limit
	}
	return nil
}
