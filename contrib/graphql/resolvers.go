package graphql

import (
	"github.com/graphql-go/graphql"

	"github.com/syssam/graphdef/dialect"
	"github.com/syssam/graphdef/resolver"
	"github.com/syssam/graphdef/subscription"
)

// resolvers returns the resolvers of the generated root fields. Subscription
// fields are resolved only when an engine is configured.
func (gr *Generator) resolvers(e *emitter, sdl string) resolver.Map {
	m := resolver.Map{}
	keys := e.entityKeys()
	for root, fields := range e.ops {
		for name, op := range fields {
			switch op.Kind {
			case dialect.OpSubscribe:
				if gr.engine != nil {
					m.Set(root, name, subscription.Resolver(gr.engine, op.Entity, e.events[name]))
				}
			case dialect.OpEntities:
				m.Set(root, name, entities(op, keys, gr.exec, gr.drv))
			default:
				m.Set(root, name, resolver.Translate(op, gr.exec, gr.drv))
			}
		}
	}
	if e.federation {
		service := map[string]any{"sdl": sdl}
		m.Set(e.c.Query, FieldService, func(graphql.ResolveParams) (any, error) {
			return service, nil
		})
	}
	return m
}
