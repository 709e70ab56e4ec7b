package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotValidate(t *testing.T) {
	payload := []byte(`{}`)
	valid := Snapshot{Kind: "noble", ID: "n1", Codec: "json", Payload: payload, Checksum: Checksum(payload)}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(s *Snapshot)
	}{
		{"empty kind", func(s *Snapshot) { s.Kind = " " }},
		{"empty id", func(s *Snapshot) { s.ID = "" }},
		{"empty codec", func(s *Snapshot) { s.Codec = "" }},
		{"empty payload", func(s *Snapshot) { s.Payload = nil }},
		{"short checksum", func(s *Snapshot) { s.Checksum = s.Checksum[:8] }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := *valid.Clone()
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidSnapshot)
		})
	}
}

func TestSnapshotVerify(t *testing.T) {
	payload := []byte(`{"gold":1}`)
	s := &Snapshot{Kind: "noble", ID: "n1", Payload: payload, Checksum: Checksum(payload)}
	assert.NoError(t, s.Verify())

	s.Payload = []byte(`{"gold":9}`)
	assert.ErrorIs(t, s.Verify(), ErrChecksumMismatch)
}

func TestStoreErrorWrapping(t *testing.T) {
	err := NewStoreError("noble", "save", "failed to write snapshot", ErrUnavailable)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, "save operation on noble failed: failed to write snapshot: storage unavailable", err.Error())

	bare := NewStoreError("noble", "load", "bad", nil)
	assert.Equal(t, "load operation on noble failed: bad", bare.Error())
}
