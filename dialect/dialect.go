package dialect

import (
	"context"
	"errors"
)

// OpKind is the kind of access an operation performs.
type OpKind string

// Operation kinds.
const (
	OpRead       OpKind = "read"
	OpAggregate  OpKind = "aggregate"
	OpConnection OpKind = "connection"
	OpCreate     OpKind = "create"
	OpUpdate     OpKind = "update"
	OpDelete     OpKind = "delete"
	OpCypher     OpKind = "cypher"
	OpEntities   OpKind = "entities"
	OpSubscribe  OpKind = "subscribe"
)

// Mutating reports whether the kind writes to the database.
func (k OpKind) Mutating() bool {
	return k == OpCreate || k == OpUpdate || k == OpDelete
}

// AccessMode selects a read or a write session.
type AccessMode int

// Access modes.
const (
	ReadAccess AccessMode = iota
	WriteAccess
)

// String returns the mode name.
func (m AccessMode) String() string {
	if m == WriteAccess {
		return "write"
	}
	return "read"
}

// Mode returns the access mode an operation of kind k needs.
func (k OpKind) Mode() AccessMode {
	if k.Mutating() {
		return WriteAccess
	}
	return ReadAccess
}

// Cypher is the statement of a @cypher backed root field.
type Cypher struct {
	Statement  string `json:"statement"`
	ColumnName string `json:"columnName"`
}

// Selection is a node of the requested selection set. Fragments are
// flattened; TypeCondition is set for fields selected through a fragment on
// a concrete type.
type Selection struct {
	Name          string         `json:"name"`
	Alias         string         `json:"alias,omitempty"`
	TypeCondition string         `json:"typeCondition,omitempty"`
	Args          map[string]any `json:"args,omitempty"`
	Children      []Selection    `json:"children,omitempty"`
}

// Operation describes one generated root field call.
type Operation struct {
	Kind OpKind `json:"kind"`
	// Root is the root operation type, e.g. Query.
	Root string `json:"root"`
	// Field is the root field name, e.g. movies.
	Field string `json:"field"`
	// Entity is the node, interface or union the operation targets.
	Entity string `json:"entity,omitempty"`
	// Members are the concrete entities of an interface or union target.
	Members []string `json:"members,omitempty"`
	// Plural is the response key of mutation results.
	Plural string `json:"plural,omitempty"`
	// List reports whether the field returns a list.
	List bool `json:"list,omitempty"`
	// Cypher is set for @cypher backed root fields.
	Cypher *Cypher `json:"cypher,omitempty"`
	// MaxLimit caps the page size when the entity declares @limit(max:).
	MaxLimit int `json:"maxLimit,omitempty"`
	// Args are the coerced field arguments.
	Args      map[string]any `json:"args,omitempty"`
	Selection []Selection    `json:"selection,omitempty"`
	// Filters are predicates the authorization layer requires the
	// translation to apply, keyed by entity.
	Filters []Predicate `json:"filters,omitempty"`
	// Validate are predicates every affected node must satisfy.
	Validate []Predicate `json:"validate,omitempty"`
}

// Predicate is a where-shaped condition on one entity.
type Predicate struct {
	Entity string         `json:"entity"`
	Where  map[string]any `json:"where"`
}

// Clone returns a copy of op that can be changed without affecting op.
func (op *Operation) Clone() *Operation {
	cp := *op
	cp.Members = append([]string(nil), op.Members...)
	cp.Filters = append([]Predicate(nil), op.Filters...)
	cp.Validate = append([]Predicate(nil), op.Validate...)
	if op.Args != nil {
		cp.Args = make(map[string]any, len(op.Args))
		for k, v := range op.Args {
			cp.Args[k] = v
		}
	}
	return &cp
}

// Counters report the changes made by a mutation.
type Counters struct {
	NodesCreated         int `json:"nodesCreated"`
	NodesDeleted         int `json:"nodesDeleted"`
	RelationshipsCreated int `json:"relationshipsCreated"`
	RelationshipsDeleted int `json:"relationshipsDeleted"`
}

// Result is the outcome of an executed operation.
type Result struct {
	Rows     []map[string]any
	Counters Counters
	// Previous holds the state of updated nodes before the update.
	Previous []map[string]any
	// Deleted holds the removed nodes.
	Deleted []map[string]any
}

// Session is a unit of work against the database. Executors type-assert
// it to their concrete session type.
type Session interface {
	Close(ctx context.Context) error
}

// Driver opens sessions.
type Driver interface {
	Session(ctx context.Context, mode AccessMode) (Session, error)
}

// Executor translates and runs operations.
type Executor interface {
	Execute(ctx context.Context, op *Operation, s Session) (*Result, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, op *Operation, s Session) (*Result, error)

// Execute calls f(ctx, op, s).
func (f ExecutorFunc) Execute(ctx context.Context, op *Operation, s Session) (*Result, error) {
	return f(ctx, op, s)
}

// DriverFunc adapts a function to the Driver interface.
type DriverFunc func(ctx context.Context, mode AccessMode) (Session, error)

// Session calls f(ctx, mode).
func (f DriverFunc) Session(ctx context.Context, mode AccessMode) (Session, error) {
	return f(ctx, mode)
}

// NopSession is a session without resources, for executors that manage
// their own connections.
type NopSession struct{}

// Close implements Session.
func (NopSession) Close(context.Context) error { return nil }

// Errors returned when a generated resolver runs without collaborators.
var (
	ErrNoExecutor = errors.New("dialect: no executor configured")
	ErrNoDriver   = errors.New("dialect: no driver configured")
)
