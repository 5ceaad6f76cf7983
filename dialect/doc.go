// Package dialect defines the contracts between the generated resolvers
// and the query-translation layer.
//
// Every generated root field is described by an Operation: what kind of
// access it performs, on which entity, with which arguments and selection.
// At call time the resolver opens a Session through the Driver and hands
// the Operation to the Executor, which translates it into a concrete graph
// query, runs it and returns rows.
//
//	type Driver interface {
//	    Session(ctx context.Context, mode AccessMode) (Session, error)
//	}
//
//	type Executor interface {
//	    Execute(ctx context.Context, op *Operation, s Session) (*Result, error)
//	}
//
// # Result shapes
//
// The executor returns rows shaped like the GraphQL output of the field:
//
//   - OpRead, OpCypher and OpEntities: one row per node, keyed by field name.
//     Rows of interface or union operations carry the concrete type name
//     under "__typename".
//   - OpAggregate: a single row holding the aggregate selection.
//   - OpConnection: a single row with "edges", "totalCount" and "pageInfo".
//   - OpCreate and OpUpdate: the affected nodes, plus Counters. Updates also
//     fill Previous with the state before the update, in row order.
//   - OpDelete: Counters, and the removed nodes in Deleted.
//
// # Statistics
//
// NewStatsExecutor wraps an Executor with operation statistics and slow
// operation detection:
//
//	exec := dialect.NewStatsExecutor(translator,
//	    dialect.WithSlowThreshold(200*time.Millisecond),
//	    dialect.WithSlowOperationLog(),
//	)
package dialect
