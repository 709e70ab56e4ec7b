// Package state provides an observable in-memory container for a single
// domain aggregate.
//
// A Store owns at most one aggregate together with a loading flag and the
// last load error. Mutations go through SetState, which merges the given
// partials, makes the result immediately visible to GetState and then
// notifies every subscribed listener in registration order.
//
// Aggregates held by a Store are treated as immutable: partials must build a
// new record rather than modify the one returned by GetState.
package state
