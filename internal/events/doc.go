// Package events provides the command bus that carries user intents to the
// domain services.
//
// Callers build a Command with NewCommand and hand it to Bus.Dispatch.
// Handlers are registered for as long as the owning component is active and
// removed through the function RegisterHandler returns, so nothing stays
// reachable after teardown.
//
// The primary components are:
// - Command: a typed intent with a JSON payload
// - CommandHandler: interface for components that act on commands
// - Bus: in-memory dispatcher that fans a command out to its handlers
package events
