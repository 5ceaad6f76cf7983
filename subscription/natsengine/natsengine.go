// Package natsengine implements subscription.Engine on NATS core
// publish/subscribe. Events are JSON encoded on one subject per entity.
package natsengine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/syssam/graphdef/compiler/gen"
	"github.com/syssam/graphdef/subscription"
)

// DefaultPrefix is the subject prefix used when none is configured.
const DefaultPrefix = "graphdef.events"

// Conn is the subset of *nats.Conn used by the engine.
type Conn interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// Engine distributes events over NATS.
type Engine struct {
	conn   Conn
	prefix string
	buffer int
	logger *slog.Logger

	mu       sync.Mutex
	subjects map[string]string
}

// Option configures an Engine.
type Option func(*Engine)

// WithPrefix sets the subject prefix.
func WithPrefix(prefix string) Option {
	return func(e *Engine) { e.prefix = prefix }
}

// WithBuffer sets the per-subscriber buffer size. Default is 64.
func WithBuffer(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.buffer = n
		}
	}
}

// WithLogger sets the logger for undecodable messages.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New returns an engine publishing on conn, typically a *nats.Conn.
func New(conn Conn, opts ...Option) *Engine {
	e := &Engine{
		conn:     conn,
		prefix:   DefaultPrefix,
		buffer:   64,
		logger:   slog.Default(),
		subjects: make(map[string]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Connect dials url and returns an engine on the new connection.
func Connect(url string, opts []nats.Option, engineOpts ...Option) (*Engine, *nats.Conn, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("natsengine: connect: %w", err)
	}
	return New(nc, engineOpts...), nc, nil
}

// Subject returns the subject carrying the events of entity.
func (e *Engine) Subject(entity string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.subjects[entity]; ok {
		return s
	}
	return e.prefix + "." + entity
}

// Init registers the subjects of every entity of the schema.
func (e *Engine) Init(_ context.Context, g *gen.Graph) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range g.Nodes {
		e.subjects[t.Name] = e.prefix + "." + t.Name
	}
	return nil
}

// Publish encodes ev and publishes it on the entity subject.
func (e *Engine) Publish(_ context.Context, ev subscription.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("natsengine: encode event: %w", err)
	}
	return e.conn.Publish(e.Subject(ev.Entity), data)
}

// Subscribe subscribes to the entity subject until ctx is done. Events are
// dropped when the subscriber's buffer is full.
func (e *Engine) Subscribe(ctx context.Context, entity string) (<-chan subscription.Event, error) {
	out := make(chan subscription.Event, e.buffer)
	var (
		mu     sync.Mutex
		closed bool
	)
	sub, err := e.conn.Subscribe(e.Subject(entity), func(msg *nats.Msg) {
		var ev subscription.Event
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			e.logger.Warn("dropping undecodable event", "subject", msg.Subject, "error", err)
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case out <- ev:
		default:
		}
	})
	if err != nil {
		return nil, fmt.Errorf("natsengine: subscribe %s: %w", entity, err)
	}
	go func() {
		<-ctx.Done()
		if err := sub.Unsubscribe(); err != nil {
			e.logger.Debug("unsubscribe failed", "entity", entity, "error", err)
		}
		mu.Lock()
		closed = true
		close(out)
		mu.Unlock()
	}()
	return out, nil
}

var (
	_ subscription.Engine      = (*Engine)(nil)
	_ subscription.Initializer = (*Engine)(nil)
)
