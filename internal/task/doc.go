// Package task runs small units of background work on a bounded queue
// drained by a fixed pool of workers. The sync bridge uses it to issue
// fire-and-forget snapshot saves without blocking the goroutine that
// mutated the store.
package task
