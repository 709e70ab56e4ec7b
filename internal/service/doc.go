// Package service holds the diary's use cases. Services read the current
// aggregate from its state.Store, apply a domain operation and write the
// result back through SetState; persistence happens downstream through the
// sync bridge, never here.
//
// Command handlers translate bus commands into service calls and are
// registered for as long as the owning bridge is mounted.
package service
