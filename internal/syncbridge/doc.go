// Package syncbridge keeps an observable state.Store mirrored to a
// persistence adapter.
//
// A Bridge hydrates its store from the adapter when mounted, then saves the
// aggregate after every qualifying mutation. Saves are fire-and-forget: they
// run on a Dispatcher, failures are logged and never retried, and callers of
// SetState never wait for them. Flush offers a synchronous save for
// shutdown and periodic autosave.
package syncbridge
