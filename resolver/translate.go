package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/syssam/graphdef/dialect"
)

// Build completes the template with the arguments and selection of the
// call. Page sizes above the entity's maximum are clamped.
func Build(tmpl *dialect.Operation, p graphql.ResolveParams) *dialect.Operation {
	op := tmpl.Clone()
	op.Args = make(map[string]any, len(p.Args))
	for k, v := range p.Args {
		op.Args[k] = v
	}
	if op.MaxLimit > 0 {
		for _, key := range []string{"limit", "first"} {
			if n, ok := op.Args[key].(int); ok && n > op.MaxLimit {
				op.Args[key] = op.MaxLimit
			}
		}
	}
	op.Selection = Selections(p.Info)
	return op
}

// Translate returns the resolver of a generated root field. It reuses the
// operation completed by the chain when there is one, opens a session in
// the mode the operation needs, executes it and shapes the result for the
// field's output type.
func Translate(tmpl *dialect.Operation, exec dialect.Executor, drv dialect.Driver) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		ctx := p.Context
		if ctx == nil {
			ctx = context.Background()
		}
		call := CallFrom(ctx)
		var op *dialect.Operation
		if call != nil && call.Op != nil {
			op = call.Op
		} else {
			op = Build(tmpl, p)
		}
		if exec == nil {
			return nil, dialect.ErrNoExecutor
		}
		if drv == nil {
			return nil, dialect.ErrNoDriver
		}
		res, err := Execute(ctx, op, exec, drv)
		if err != nil {
			return nil, fmt.Errorf("resolver: %s.%s: %w", op.Root, op.Field, err)
		}
		if call != nil {
			call.Result = res
		}
		return Shape(op, res), nil
	}
}

// Execute runs op in a session opened in the mode the operation needs. A
// nil result from the executor is returned as an empty result.
func Execute(ctx context.Context, op *dialect.Operation, exec dialect.Executor, drv dialect.Driver) (res *dialect.Result, err error) {
	sess, err := drv.Session(ctx, op.Kind.Mode())
	if err != nil {
		return nil, fmt.Errorf("open %s session: %w", op.Kind.Mode(), err)
	}
	defer func() {
		err = errors.Join(err, sess.Close(ctx))
	}()
	res, err = exec.Execute(ctx, op, sess)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &dialect.Result{}
	}
	return res, nil
}

// Shape converts an executor result into the value of the root field.
func Shape(op *dialect.Operation, res *dialect.Result) any {
	switch op.Kind {
	case dialect.OpAggregate:
		if len(res.Rows) == 0 {
			return map[string]any{"count": 0}
		}
		return res.Rows[0]
	case dialect.OpConnection:
		if len(res.Rows) == 0 {
			return map[string]any{
				"edges":      []any{},
				"totalCount": 0,
				"pageInfo":   map[string]any{"hasNextPage": false, "hasPreviousPage": false},
			}
		}
		return res.Rows[0]
	case dialect.OpCreate, dialect.OpUpdate:
		return map[string]any{
			"info":    counters(res.Counters),
			op.Plural: rows(res.Rows),
		}
	case dialect.OpDelete:
		return counters(res.Counters)
	}
	values := rows(res.Rows)
	if op.Cypher != nil && op.Cypher.ColumnName != "" {
		for i, row := range res.Rows {
			values[i] = row[op.Cypher.ColumnName]
		}
	}
	if op.List {
		return values
	}
	if len(values) == 0 {
		return nil
	}
	return values[0]
}

func rows(in []map[string]any) []any {
	out := make([]any, len(in))
	for i, r := range in {
		out[i] = r
	}
	return out
}

func counters(c dialect.Counters) map[string]any {
	return map[string]any{
		"nodesCreated":         c.NodesCreated,
		"nodesDeleted":         c.NodesDeleted,
		"relationshipsCreated": c.RelationshipsCreated,
		"relationshipsDeleted": c.RelationshipsDeleted,
	}
}
