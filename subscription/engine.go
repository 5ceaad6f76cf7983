package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/syssam/graphdef/compiler/gen"
)

// EventType is the kind of mutation an event reports.
type EventType string

// Event types. The values match the generated EventType enum.
const (
	Create EventType = "CREATE"
	Update EventType = "UPDATE"
	Delete EventType = "DELETE"
)

// Event is one node change.
type Event struct {
	Type   EventType `json:"event"`
	Entity string    `json:"entity"`
	// Timestamp is the publication time in milliseconds since the epoch.
	Timestamp  int64          `json:"timestamp"`
	Properties map[string]any `json:"properties"`
	// Previous holds the properties before an update.
	Previous map[string]any `json:"previous,omitempty"`
}

// Engine is an event bus. Subscribe returns a channel of the events of one
// entity; the channel is closed when ctx is done or the engine closes.
type Engine interface {
	Publish(ctx context.Context, ev Event) error
	Subscribe(ctx context.Context, entity string) (<-chan Event, error)
}

// Initializer is implemented by engines that prepare resources for the
// entities of a schema, such as streams or topics, before first use.
type Initializer interface {
	Init(ctx context.Context, g *gen.Graph) error
}

// ErrClosed is returned by engines after Close.
var ErrClosed = errors.New("subscription: engine closed")

func now() int64 { return time.Now().UnixMilli() }
