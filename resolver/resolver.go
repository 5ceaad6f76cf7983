package resolver

import (
	"context"
	"slices"

	"github.com/graphql-go/graphql"

	"github.com/syssam/graphdef/dialect"
)

// Root operation type names.
const (
	Query        = "Query"
	Mutation     = "Mutation"
	Subscription = "Subscription"
)

// Map holds field resolvers keyed by type name and field name. Entries of
// subscription root fields are Subscribe functions: they return a
// channel of events, one per response.
type Map map[string]map[string]graphql.FieldResolveFn

// Set registers fn for typ.field.
func (m Map) Set(typ, field string, fn graphql.FieldResolveFn) {
	if m[typ] == nil {
		m[typ] = make(map[string]graphql.FieldResolveFn)
	}
	m[typ][field] = fn
}

// Get returns the resolver of typ.field.
func (m Map) Get(typ, field string) (graphql.FieldResolveFn, bool) {
	fn, ok := m[typ][field]
	return fn, ok && fn != nil
}

// Names returns the sorted "Type.field" names of the map.
func (m Map) Names() []string {
	names := make([]string, 0, len(m))
	for typ, fields := range m {
		for field, fn := range fields {
			if fn != nil {
				names = append(names, typ+"."+field)
			}
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// Operations holds the operation templates of generated root fields, keyed
// by root type name and field name.
type Operations map[string]map[string]*dialect.Operation

// Set registers the template of root.field.
func (o Operations) Set(op *dialect.Operation) {
	if o[op.Root] == nil {
		o[op.Root] = make(map[string]*dialect.Operation)
	}
	o[op.Root][op.Field] = op
}

// Get returns the template of root.field.
func (o Operations) Get(root, field string) (*dialect.Operation, bool) {
	op, ok := o[root][field]
	return op, ok
}

// Call carries the state of one root field call through the chain.
type Call struct {
	// Op is the completed operation, set before authorization.
	Op *dialect.Operation
	// Result is set by translation.
	Result *dialect.Result
}

type callKey struct{}

// WithCall returns a context carrying c.
func WithCall(ctx context.Context, c *Call) context.Context {
	return context.WithValue(ctx, callKey{}, c)
}

// CallFrom returns the call carried by ctx, if any.
func CallFrom(ctx context.Context) *Call {
	if ctx == nil {
		return nil
	}
	c, _ := ctx.Value(callKey{}).(*Call)
	return c
}

// Authorizer decides whether an operation may run. It may narrow the
// operation by appending filter or validation predicates.
type Authorizer interface {
	Authorize(ctx context.Context, op *dialect.Operation) error
}

// AuthorizerFunc adapts a function to the Authorizer interface.
type AuthorizerFunc func(ctx context.Context, op *dialect.Operation) error

// Authorize calls f(ctx, op).
func (f AuthorizerFunc) Authorize(ctx context.Context, op *dialect.Operation) error {
	return f(ctx, op)
}

// EmitFunc publishes the events of a completed mutation.
type EmitFunc func(ctx context.Context, op *dialect.Operation, res *dialect.Result) error
