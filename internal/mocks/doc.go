// Package mocks provides shared mock implementations for tests.
//
// Each mock has one function field per interface method. A nil field falls
// back to the mock's default values, so tests only set what they exercise:
//
//	snapshots := &mocks.MockSnapshotStore{
//	    GetFn: func(ctx context.Context, kind, id string) (*store.Snapshot, error) {
//	        return nil, store.ErrUnavailable
//	    },
//	}
package mocks
