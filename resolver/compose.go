package resolver

import (
	"context"
	"log/slog"

	"github.com/graphql-go/graphql"

	"github.com/syssam/graphdef/dialect"
)

// Chain holds the collaborators wrapped around root fields.
type Chain struct {
	// Operations are the templates of generated root fields. Root fields
	// without a template pass through the chain untouched.
	Operations Operations
	Authorizer Authorizer
	Emit       EmitFunc
	// Logger receives emission failures. Defaults to slog.Default().
	Logger *slog.Logger
}

// Compose merges generated and custom resolvers and wraps the root fields
// that have an operation template.
// Custom resolvers win on name collisions. Neither input map is modified.
func Compose(generated, custom Map, chain Chain) Map {
	out := make(Map, len(generated)+len(custom))
	for _, m := range []Map{generated, custom} {
		for typ, fields := range m {
			for field, fn := range fields {
				if fn != nil {
					out.Set(typ, field, fn)
				}
			}
		}
	}
	for root, fields := range out {
		for field, fn := range fields {
			tmpl, ok := chain.Operations.Get(root, field)
			if !ok {
				continue
			}
			out[root][field] = chain.wrap(tmpl, fn)
		}
	}
	return out
}

func (c Chain) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// wrap applies authorize -> emit around next.
func (c Chain) wrap(tmpl *dialect.Operation, next graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		ctx := p.Context
		if ctx == nil {
			ctx = context.Background()
		}
		call := &Call{Op: Build(tmpl, p)}
		ctx = WithCall(ctx, call)
		if c.Authorizer != nil {
			if err := c.Authorizer.Authorize(ctx, call.Op); err != nil {
				return nil, err
			}
		}
		p.Context = ctx
		v, err := next(p)
		if err != nil {
			return nil, err
		}
		if c.Emit != nil && call.Op.Kind.Mutating() && call.Result != nil {
			if err := c.Emit(ctx, call.Op, call.Result); err != nil {
				c.logger().WarnContext(ctx, "event emission failed",
					"root", call.Op.Root, "field", call.Op.Field, "error", err)
			}
		}
		return v, nil
	}
}
