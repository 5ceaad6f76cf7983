package graphdef

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/graphdef/compiler/cache"
	"github.com/syssam/graphdef/compiler/gen"
	"github.com/syssam/graphdef/compiler/load"
	"github.com/syssam/graphdef/compiler/validate"
	apigen "github.com/syssam/graphdef/contrib/graphql"
	"github.com/syssam/graphdef/privacy"
	"github.com/syssam/graphdef/resolver"
	"github.com/syssam/graphdef/schema"
	"github.com/syssam/graphdef/subscription"
)

// GraphQL compiles one set of type definitions into executable API
// schemas. Each schema is built at most once; concurrent callers share the
// build in flight.
type GraphQL struct {
	src    load.Source
	cfg    config
	logger *slog.Logger
	tiers  *cache.Tiers

	api      build
	subgraph build

	mu    sync.RWMutex
	model *gen.Graph
}

// Executable is a built API schema.
type Executable struct {
	// Schema executes requests.
	Schema graphql.Schema
	// Document is the generated schema.
	Document *ast.SchemaDocument
	// SDL is Document printed.
	SDL string
	// Operations are the templates of the generated root fields.
	Operations resolver.Operations
}

// Do executes a request against the schema.
func (e *Executable) Do(ctx context.Context, query string, variables map[string]any) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         e.Schema,
		RequestString:  query,
		VariableValues: variables,
		Context:        ctx,
	})
}

// New returns a GraphQL instance for the type definitions of src. The
// cache tiers are opened here; nothing is compiled until Schema or
// SubgraphSchema is called.
func New(src load.Source, opts ...Option) (*GraphQL, error) {
	g := &GraphQL{src: src}
	for _, opt := range opts {
		if err := opt(&g.cfg); err != nil {
			return nil, err
		}
	}
	g.logger = g.cfg.logger
	if g.logger == nil {
		g.logger = slog.Default()
	}
	g.tiers = &cache.Tiers{}
	if g.cfg.cache != nil {
		tiers, err := cache.New(g.cfg.cache.internal(), cache.WithLogger(g.logger), cache.WithRegisterer(g.cfg.registry))
		if err != nil {
			return nil, err
		}
		g.tiers = tiers
	}
	return g, nil
}

// Schema returns the executable API schema, building it on first use.
// A failed build is not memoized; the next call builds again.
func (g *GraphQL) Schema(ctx context.Context) (*Executable, error) {
	return g.api.get(ctx, func(ctx context.Context) (*Executable, error) {
		return g.compile(ctx, false)
	})
}

// SubgraphSchema returns the schema served as a federation subgraph: the
// API schema plus the _service and _entities fields of entities that
// declare a @key.
func (g *GraphQL) SubgraphSchema(ctx context.Context) (*Executable, error) {
	return g.subgraph.get(ctx, func(ctx context.Context) (*Executable, error) {
		return g.compile(ctx, true)
	})
}

// Model returns the schema model of the last successful build.
func (g *GraphQL) Model() (*gen.Graph, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.model == nil {
		return nil, NewPrerequisiteError("Model", "Schema or SubgraphSchema")
	}
	return g.model, nil
}

// ClearCache removes every cache entry. It does not affect schemas that
// are already built.
func (g *GraphQL) ClearCache(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return g.tiers.Clear()
}

// CacheStats reports the entries and size of each cache tier. A disabled
// cache reports zeros.
func (g *GraphQL) CacheStats(ctx context.Context) (cache.Stats, error) {
	if err := ctx.Err(); err != nil {
		return cache.Stats{}, err
	}
	return g.tiers.Stats()
}

// CleanupCache removes expired and stale entries and reports how many
// were removed from each tier.
func (g *GraphQL) CleanupCache(ctx context.Context) (cache.Removed, error) {
	if err := ctx.Err(); err != nil {
		return cache.Removed{}, err
	}
	removed, err := g.tiers.Cleanup()
	if removed.Total() > 0 {
		g.logger.Info("cache cleanup", "ast", removed.AST, "model", removed.Model)
	}
	return removed, err
}

// compile runs the build pipeline: load, normalize and validate the type
// definitions, build the model, generate the API schema, validate it and
// assemble it with the composed resolvers.
func (g *GraphQL) compile(ctx context.Context, federation bool) (*Executable, error) {
	start := time.Now()
	model, coll, err := g.buildModel(ctx)
	if err != nil {
		return nil, err
	}
	features := slices.Clone(g.cfg.features)
	if federation {
		features = append(features, gen.FeatureFederation)
	}
	opts := []apigen.Option{
		apigen.WithOptions(
			gen.WithFeatures(features...),
			gen.WithResolvers(g.cfg.resolvers.Names()...),
			gen.WithLogger(g.logger),
		),
		apigen.WithExecutor(g.cfg.exec),
		apigen.WithDriver(g.cfg.drv),
	}
	if g.cfg.engine != nil {
		opts = append(opts, apigen.WithSubscriptions(g.cfg.engine))
	}
	gr, err := apigen.NewGenerator(opts...)
	if err != nil {
		return nil, &BuildError{Phase: "generate", Err: err}
	}
	res, err := gr.Generate(model, coll)
	if err != nil {
		return nil, &BuildError{Phase: "generate", Err: err}
	}
	var extra []*ast.Source
	if federation {
		extra = append(extra, schema.Federation())
	}
	if err := validate.Augmented(res.Document, extra...); err != nil {
		return nil, &BuildError{Phase: "validate", Err: err}
	}
	chain := resolver.Chain{
		Operations: res.Operations,
		Authorizer: g.cfg.authorizer,
		Logger:     g.logger,
	}
	if chain.Authorizer == nil {
		chain.Authorizer = privacy.NewPolicyAuthorizer(model)
	}
	if g.cfg.engine != nil {
		chain.Emit = subscription.Emitter(g.cfg.engine)
		if initializer, ok := g.cfg.engine.(subscription.Initializer); ok {
			if err := initializer.Init(ctx, model); err != nil {
				return nil, &BuildError{Phase: "subscriptions", Err: err}
			}
		}
	}
	s, err := apigen.Executable(res.Document, resolver.Compose(res.Resolvers, g.cfg.resolvers, chain))
	if err != nil {
		return nil, &BuildError{Phase: "assemble", Err: err}
	}
	g.logger.Info("schema built",
		"federation", federation,
		"entities", len(model.Nodes),
		"types", len(res.Document.Definitions),
		"duration", time.Since(start),
	)
	return &Executable{Schema: s, Document: res.Document, SDL: res.SDL, Operations: res.Operations}, nil
}

// buildModel returns the schema model and the collection it was built
// from, reading and filling the cache tiers.
func (g *GraphQL) buildModel(ctx context.Context) (*gen.Graph, *load.Collection, error) {
	parts, err := load.Resolve(ctx, g.src)
	if err != nil {
		return nil, nil, &BuildError{Phase: "load", Err: err}
	}
	akey := cache.ASTKey(parts)
	doc, ok := g.tiers.AST.Get(akey)
	if !ok {
		if doc, err = load.Normalize(parts); err != nil {
			return nil, nil, &BuildError{Phase: "load", Err: err}
		}
		if err := validate.Document(doc); err != nil {
			return nil, nil, &BuildError{Phase: "validate", Err: err}
		}
		g.tiers.AST.Set(akey, doc)
	}
	coll, err := load.Collect(doc)
	if err != nil {
		return nil, nil, &BuildError{Phase: "load", Err: err}
	}
	names := g.cfg.resolvers.Names()
	mkey := cache.ModelKey(doc, names)
	model, ok := g.tiers.Model.Get(mkey)
	if ok {
		model.Link()
	} else {
		model, err = gen.NewGraph(coll, gen.WithResolvers(names...), gen.WithLogger(g.logger))
		if err != nil {
			return nil, nil, &BuildError{Phase: "model", Err: err}
		}
		g.tiers.Model.Set(mkey, model)
	}
	g.mu.Lock()
	g.model = model
	g.mu.Unlock()
	return model, coll, nil
}

type buildState int

const (
	stateUninitialized buildState = iota
	stateBuilding
	stateReady
)

// build memoizes one schema. Callers arriving while a build is in flight
// wait for it instead of starting another.
type build struct {
	mu    sync.Mutex
	state buildState
	cur   *attempt
}

type attempt struct {
	done chan struct{}
	exe  *Executable
	err  error
}

// get returns the built schema, starting fn if no build succeeded or is
// running. fn runs detached from the cancellation of ctx: a caller that
// gives up returns ctx.Err() and the build still completes for the others.
func (b *build) get(ctx context.Context, fn func(context.Context) (*Executable, error)) (*Executable, error) {
	b.mu.Lock()
	switch b.state {
	case stateReady:
		exe := b.cur.exe
		b.mu.Unlock()
		return exe, nil
	case stateUninitialized:
		a := &attempt{done: make(chan struct{})}
		b.cur, b.state = a, stateBuilding
		go func(ctx context.Context) {
			a.exe, a.err = fn(ctx)
			b.mu.Lock()
			if a.err != nil {
				b.state = stateUninitialized
			} else {
				b.state = stateReady
			}
			b.mu.Unlock()
			close(a.done)
		}(context.WithoutCancel(ctx))
	}
	a := b.cur
	b.mu.Unlock()
	select {
	case <-a.done:
		return a.exe, a.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
