package shared

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetAndGetTraceID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	withTrace := SetTraceID(ctx)
	traceID := GetTraceID(withTrace)
	assert.Len(t, traceID, 32)
	_, err := hex.DecodeString(traceID)
	assert.NoError(t, err)

	assert.Empty(t, GetTraceID(ctx), "original context must be unchanged")
	assert.NotEqual(t, traceID, GetTraceID(SetTraceID(ctx)))
}

func TestGetTraceIDWithWrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), TraceIDKey, 123)
	assert.Empty(t, GetTraceID(ctx))
}

func TestSubject(t *testing.T) {
	_, ok := GetSubject(context.Background())
	assert.False(t, ok)

	_, ok = GetSubject(WithSubject(context.Background(), ""))
	assert.False(t, ok)

	subject, ok := GetSubject(WithSubject(context.Background(), "noble-1"))
	assert.True(t, ok)
	assert.Equal(t, "noble-1", subject)
}
