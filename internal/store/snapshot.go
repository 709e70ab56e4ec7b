package store

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Snapshot is one serialized aggregate as it is stored.
type Snapshot struct {
	Kind      string
	ID        string
	Version   uint64
	Codec     string
	Payload   []byte
	Checksum  []byte
	UpdatedAt time.Time
}

// SnapshotStore is implemented by every storage backend.
//
// Put keeps the stored snapshot when it has a higher version than s and
// returns ErrStaleVersion. An equal version overwrites.
type SnapshotStore interface {
	Get(ctx context.Context, kind, id string) (*Snapshot, error)
	Put(ctx context.Context, s *Snapshot) error
	Close() error
}

// Checksum returns the BLAKE2b-256 digest of payload.
func Checksum(payload []byte) []byte {
	sum := blake2b.Sum256(payload)
	return sum[:]
}

// Validate checks that s is complete enough to store.
func (s *Snapshot) Validate() error {
	switch {
	case strings.TrimSpace(s.Kind) == "":
		return fmt.Errorf("%w: kind cannot be empty", ErrInvalidSnapshot)
	case strings.TrimSpace(s.ID) == "":
		return fmt.Errorf("%w: id cannot be empty", ErrInvalidSnapshot)
	case s.Codec == "":
		return fmt.Errorf("%w: codec cannot be empty", ErrInvalidSnapshot)
	case len(s.Payload) == 0:
		return fmt.Errorf("%w: payload cannot be empty", ErrInvalidSnapshot)
	case len(s.Checksum) != blake2b.Size256:
		return fmt.Errorf("%w: checksum must be %d bytes", ErrInvalidSnapshot, blake2b.Size256)
	}
	return nil
}

// Verify reports ErrChecksumMismatch when the payload was altered.
func (s *Snapshot) Verify() error {
	if !bytes.Equal(Checksum(s.Payload), s.Checksum) {
		return fmt.Errorf("%w: %s %q", ErrChecksumMismatch, s.Kind, s.ID)
	}
	return nil
}

// Clone returns a deep copy of s.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	out.Payload = bytes.Clone(s.Payload)
	out.Checksum = bytes.Clone(s.Checksum)
	return &out
}
