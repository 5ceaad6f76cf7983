// Package subscription carries mutation events from the resolvers that
// perform mutations to the subscription root fields that stream them.
//
// An Engine is the event bus. The generated mutation resolvers publish
// through Emitter after each successful create, update or delete, and each
// subscription root field subscribes through Resolver, filtering events
// with the field's where argument.
//
// Memory is an in-process engine suitable for a single server. The
// natsengine package distributes events over NATS.
package subscription
