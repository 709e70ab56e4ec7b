// Package store defines the snapshot persistence port shared by every
// storage backend, and Repository, which turns a SnapshotStore into a
// typed adapter for one aggregate kind.
//
// Backends live under internal/platform and only deal in Snapshot records;
// encoding, checksums and version handling happen here.
package store
