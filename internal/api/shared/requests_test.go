package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name  string `json:"name"  validate:"required,max=8"`
	Count int    `json:"count" validate:"gte=0"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		errText string
	}{
		{name: "valid json", body: `{"name":"a","count":2}`},
		{name: "invalid json", body: `{"name":"a",}`, errText: "invalid character"},
		{name: "empty body", body: "", wantErr: ErrEmptyBody},
		{name: "unknown field", body: `{"name":"a","extra":true}`, errText: "unknown field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var got sampleRequest
			err := DecodeJSON(req, &got)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errText != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errText)
			default:
				require.NoError(t, err)
				assert.Equal(t, sampleRequest{Name: "a", Count: 2}, got)
			}
		})
	}
}

type selfValidating struct{ called bool }

func (s *selfValidating) Validate() error {
	s.called = true
	return nil
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(&sampleRequest{Name: "ok"}))
	assert.Error(t, ValidateRequest(&sampleRequest{}))
	assert.Error(t, ValidateRequest(&sampleRequest{Name: "far too long"}))
	assert.Error(t, ValidateRequest(&sampleRequest{Name: "ok", Count: -1}))

	s := &selfValidating{}
	assert.NoError(t, ValidateRequest(s))
	assert.True(t, s.called)
}
