package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"communityhub/internal/delivery/http/helpers"
	"communityhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTokenVerifier implements domain.TokenVerifier for tests.
type fakeTokenVerifier struct {
	userID string
	err    error
}

func (f *fakeTokenVerifier) Verify(_ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.userID, nil
}

type fakeSession struct {
	current *domain.User
}

func (f fakeSession) Current() *domain.User { return f.current }

func TestRequireAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	loggedIn := fakeSession{current: &domain.User{ID: "user-123"}}

	tests := []struct {
		name          string
		authHeader    string
		verifier      domain.TokenVerifier
		session       SessionSource
		wantStatus    int
		nextCalled    bool
		wantContextID string
	}{
		{
			name:          "valid token for current user",
			authHeader:    "Bearer valid-token",
			verifier:      &fakeTokenVerifier{userID: "user-123"},
			session:       loggedIn,
			wantStatus:    http.StatusOK,
			nextCalled:    true,
			wantContextID: "user-123",
		},
		{
			name:       "missing authorization header",
			verifier:   &fakeTokenVerifier{userID: "user-123"},
			session:    loggedIn,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid authorization format no Bearer prefix",
			authHeader: "Basic abc",
			verifier:   &fakeTokenVerifier{userID: "user-123"},
			session:    loggedIn,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "empty token after Bearer",
			authHeader: "Bearer ",
			verifier:   &fakeTokenVerifier{userID: "user-123"},
			session:    loggedIn,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "verifier returns error",
			authHeader: "Bearer bad-token",
			verifier:   &fakeTokenVerifier{err: errors.New("token is expired")},
			session:    loggedIn,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "nobody logged in",
			authHeader: "Bearer valid-token",
			verifier:   &fakeTokenVerifier{userID: "user-123"},
			session:    fakeSession{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "token for a different user",
			authHeader: "Bearer valid-token",
			verifier:   &fakeTokenVerifier{userID: "user-999"},
			session:    loggedIn,
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			var capturedUserID string
			next := func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				capturedUserID, _ = UserIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}
			handler := RequireAuth(tt.verifier, tt.session, logger)(next)

			req := httptest.NewRequest(http.MethodGet, "http://test/me/events", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			handler(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			assert.Equal(t, tt.nextCalled, nextCalled, "next handler called")
			if tt.nextCalled {
				assert.Equal(t, tt.wantContextID, capturedUserID, "user ID in context")
				return
			}
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			require.NotNil(t, envelope.Error)
			assert.Equal(t, helpers.ErrCodeUnauthorized, envelope.Error.Code)
		})
	}
}

func TestUserIDFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := UserIDFromContext(req.Context())
	assert.False(t, ok)
	_, ok = UserIDFromContext(SetUserID(req.Context(), ""))
	assert.False(t, ok)
}
