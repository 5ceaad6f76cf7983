// Package resolver composes the resolver map of an executable schema.
//
// Generated root fields resolve by translation: the field's Operation
// template is completed with the call's arguments and selection, and
// handed to a dialect.Executor. Compose merges those generated resolvers
// with user resolvers and wraps every root field in the chain
//
//	authorize -> emit -> translate
//
// Authorization runs before any data access and short-circuits the call.
// Emission publishes mutation events after a successful translation; a
// failed emission is logged and does not fail the mutation.
package resolver
