package subscription

import (
	"context"
	"errors"
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/syssam/graphdef/dialect"
	"github.com/syssam/graphdef/resolver"
)

// Emitter returns the emission step of the resolver chain. It publishes
// one event per created, updated or deleted node.
func Emitter(engine Engine) resolver.EmitFunc {
	return func(ctx context.Context, op *dialect.Operation, res *dialect.Result) error {
		var errs []error
		publish := func(typ EventType, props, prev map[string]any) {
			ev := Event{Type: typ, Entity: op.Entity, Timestamp: now(), Properties: props, Previous: prev}
			if err := engine.Publish(ctx, ev); err != nil {
				errs = append(errs, fmt.Errorf("publish %s %s: %w", typ, op.Entity, err))
			}
		}
		switch op.Kind {
		case dialect.OpCreate:
			for _, row := range res.Rows {
				publish(Create, row, nil)
			}
		case dialect.OpUpdate:
			for i, row := range res.Rows {
				var prev map[string]any
				if i < len(res.Previous) {
					prev = res.Previous[i]
				}
				publish(Update, row, prev)
			}
		case dialect.OpDelete:
			for _, row := range res.Deleted {
				publish(Delete, row, nil)
			}
		}
		return errors.Join(errs...)
	}
}

// PayloadKey returns the response key of the node in an event of entity,
// e.g. createdMovie.
func PayloadKey(typ EventType, entity string) string {
	switch typ {
	case Create:
		return "created" + entity
	case Update:
		return "updated" + entity
	default:
		return "deleted" + entity
	}
}

// Payload converts an event into the value of a subscription response.
func Payload(ev Event) map[string]any {
	out := map[string]any{
		"event":                        string(ev.Type),
		"timestamp":                    float64(ev.Timestamp),
		PayloadKey(ev.Type, ev.Entity): ev.Properties,
	}
	if ev.Type == Update {
		prev := ev.Previous
		if prev == nil {
			prev = map[string]any{}
		}
		out["previousState"] = prev
	}
	return out
}

// Resolver returns the subscribe function of a subscription root field. It
// streams the events of one type of entity matching the where argument
// until the subscription context is done.
func Resolver(engine Engine, entity string, typ EventType) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		ctx := p.Context
		if ctx == nil {
			ctx = context.Background()
		}
		where, _ := p.Args["where"].(map[string]any)
		events, err := engine.Subscribe(ctx, entity)
		if err != nil {
			return nil, err
		}
		out := make(chan any)
		go func() {
			defer close(out)
			for ev := range events {
				if ev.Type != typ || !Match(where, ev.Properties) {
					continue
				}
				select {
				case out <- Payload(ev):
				case <-ctx.Done():
					return
				}
			}
		}()
		return out, nil
	}
}
