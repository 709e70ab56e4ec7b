// Package api exposes the diary over HTTP. Reads come straight from the
// domain services; every mutation is sent as a command on the bus so the
// HTTP port and in-process callers share one path into the state stores.
package api
