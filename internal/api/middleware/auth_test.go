package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/noble-diary/internal/api/shared"
	"github.com/phrazzld/noble-diary/internal/mocks"
	"github.com/phrazzld/noble-diary/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware_Authenticate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		authHeader      string
		claims          *auth.Claims
		validateErr     error
		expectedStatus  int
		expectedSubject string
	}{
		{
			name:            "valid token",
			authHeader:      "Bearer good",
			claims:          &auth.Claims{Subject: "noble-1"},
			expectedStatus:  http.StatusOK,
			expectedSubject: "noble-1",
		},
		{
			name:           "missing auth header",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid auth format",
			authHeader:     "Token good",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "expired token",
			authHeader:     "Bearer old",
			validateErr:    auth.ErrExpiredToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "rejected token",
			authHeader:     "Bearer forged",
			validateErr:    auth.ErrInvalidToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unexpected validation failure",
			authHeader:     "Bearer weird",
			validateErr:    errors.New("keystore offline"),
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "token for another noble",
			authHeader:     "Bearer other",
			claims:         &auth.Claims{Subject: "noble-2"},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			jwtSvc := &mocks.MockJWTService{Claims: tt.claims, ValidateErr: tt.validateErr}

			var gotSubject string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotSubject, _ = shared.GetSubject(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/noble", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			NewAuthMiddleware(jwtSvc, "noble-1").Authenticate(next).ServeHTTP(rr, req)

			require.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectedSubject, gotSubject)
		})
	}
}

func TestTraceSetsTraceID(t *testing.T) {
	var traceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
	})

	Trace(nil)(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Len(t, traceID, shared.TraceIDLength*2)
}
