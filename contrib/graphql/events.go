package graphql

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/graphdef/compiler/gen"
	"github.com/syssam/graphdef/dialect"
	"github.com/syssam/graphdef/subscription"
)

func (e *emitter) eventType() string {
	return e.ensure("EventType", ast.Enum, func(d *ast.Definition) {
		for _, v := range []subscription.EventType{subscription.Create, subscription.Update, subscription.Delete} {
			d.EnumValues = append(d.EnumValues, &ast.EnumValueDefinition{Name: string(v)})
		}
	})
}

// published reports whether an attribute is carried by events.
func published(f *gen.Field) bool {
	return f.Readable() && !f.Computed() && !f.Kind.Composite()
}

// eventPayload ensures the node state type carried by events.
func (e *emitter) eventPayload(t *gen.Type) string {
	return e.ensure(Names(t.Name, t.Plural).EventPayload, ast.Object, func(d *ast.Definition) {
		for _, f := range t.Fields {
			if published(f) {
				e.catalog(f.Type.Name)
				d.Fields = append(d.Fields, field(f.Name, f.Type.AST()))
			}
		}
	})
}

// subscriptionWhere ensures the event filter of an entity. Spatial
// attributes cannot be matched against event payloads and are left out.
func (e *emitter) subscriptionWhere(t *gen.Type) string {
	return e.ensure(Names(t.Name, t.Plural).SubscriptionWhere, ast.InputObject, func(d *ast.Definition) {
		for _, f := range t.Fields {
			if !published(f) || !f.FilterableByValue() || f.Kind.Spatial() {
				continue
			}
			cl, ok := e.classOf(t.Name, f)
			if !ok {
				return
			}
			d.Fields = append(d.Fields, field(f.Name, named(e.filters(cl, f.Type.Name, f.Type.List))))
		}
		d.Fields = append(d.Fields, logical(d.Name)...)
	})
}

func (e *emitter) subscriptionRoot() {
	d := &ast.Definition{Kind: ast.Object, Name: e.c.Subscription}
	for _, t := range e.g.Nodes {
		d.Fields = append(d.Fields, e.eventFields(t)...)
	}
	for _, f := range e.g.Subscriptions {
		d.Fields = append(d.Fields, e.outputField(f))
	}
	if len(d.Fields) > 0 {
		e.add(d)
	}
}

func (e *emitter) eventFields(t *gen.Type) ast.FieldList {
	roots := Roots(t.Name, t.Plural)
	var out ast.FieldList
	for _, ev := range []struct {
		on    bool
		typ   subscription.EventType
		field string
		name  string
	}{
		{t.Subscription.Created, subscription.Create, roots.Created, t.Name + "CreatedEvent"},
		{t.Subscription.Updated, subscription.Update, roots.Updated, t.Name + "UpdatedEvent"},
		{t.Subscription.Deleted, subscription.Delete, roots.Deleted, t.Name + "DeletedEvent"},
	} {
		if !ev.on {
			continue
		}
		payload := e.eventPayload(t)
		obj := e.ensure(ev.name, ast.Object, func(d *ast.Definition) {
			d.Fields = ast.FieldList{
				field("event", nonNull(e.eventType())),
				field("timestamp", nonNull("Float")),
				field(subscription.PayloadKey(ev.typ, t.Name), nonNull(payload)),
			}
			if ev.typ == subscription.Update {
				d.Fields = append(d.Fields, field("previousState", nonNull(payload)))
			}
		})
		out = append(out, field(ev.field, nonNull(obj), arg("where", named(e.subscriptionWhere(t)))))
		e.events[ev.field] = ev.typ
		e.template(&dialect.Operation{Kind: dialect.OpSubscribe, Root: e.c.Subscription, Field: ev.field, Entity: t.Name})
	}
	return out
}
