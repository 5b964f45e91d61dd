package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitpolyacademy/backend/libs/auth/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddlewares(t *testing.T) {
	tg := service.NewTokenGenerator("secret", time.Hour)
	validToken, err := tg.GenerateAccessToken(7, 1)
	require.NoError(t, err)

	tests := []struct {
		name           string
		optional       bool
		setup          func(r *http.Request)
		expectedStatus int
		expectedUserID int
		expectedAuthed bool
	}{
		{
			name:           "required - bearer token",
			setup:          func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+validToken) },
			expectedStatus: http.StatusOK,
			expectedUserID: 7,
			expectedAuthed: true,
		},
		{
			name:           "required - cookie token",
			setup:          func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "access_token", Value: validToken}) },
			expectedStatus: http.StatusOK,
			expectedUserID: 7,
			expectedAuthed: true,
		},
		{
			name:           "required - missing token",
			setup:          func(r *http.Request) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "optional - missing token is anonymous",
			optional:       true,
			setup:          func(r *http.Request) {},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "optional - invalid token rejected",
			optional:       true,
			setup:          func(r *http.Request) { r.Header.Set("Authorization", "Bearer junk") },
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUserID int
			var gotAuthed bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUserID, gotAuthed = GetUserID(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			mw := AuthMiddleware(tg)
			if tt.optional {
				mw = OptionalAuthMiddleware(tg)
			}

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			mw(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedAuthed, gotAuthed)
			assert.Equal(t, tt.expectedUserID, gotUserID)
		})
	}
}

func TestAPIKeyMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		configured     string
		provided       string
		expectedStatus int
	}{
		{name: "valid key", configured: "k", provided: "k", expectedStatus: http.StatusOK},
		{name: "wrong key", configured: "k", provided: "x", expectedStatus: http.StatusUnauthorized},
		{name: "missing key", configured: "k", provided: "", expectedStatus: http.StatusUnauthorized},
		{name: "unconfigured", configured: "", provided: "", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.provided != "" {
				req.Header.Set("X-API-Key", tt.provided)
			}
			rec := httptest.NewRecorder()

			APIKeyMiddleware(tt.configured)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}
