package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"communityhub/internal/adapters/auth"
	"communityhub/internal/adapters/clock"
	"communityhub/internal/adapters/wallet"
	"communityhub/internal/delivery/http/controllers"
	"communityhub/internal/repository/memory"
	"communityhub/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	*httptest.Server
	t *testing.T
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	kv := memory.NewKeyValueStore()
	clk := clock.NewSystemClock()
	ids := clock.NewUUIDGenerator()
	jwtSvc := auth.NewJWTService("test-secret")

	identity := services.NewIdentityStore(ctx, services.IdentityOptions{
		Storage:   kv,
		Clock:     clk,
		IDs:       ids,
		Hasher:    auth.NewBcryptHasher(bcrypt.MinCost),
		SeedUsers: 2,
		Logger:    logger,
	})
	catalog := services.NewEventCatalog(services.CatalogOptions{Clock: clk, IDs: ids, Logger: logger})
	sessions := services.NewSessionStore(ctx, services.WalletOptions{
		Storage:   kv,
		Clock:     clk,
		Addresses: wallet.NewRandomAddressGenerator(nil),
		Logger:    logger,
	})

	mux := NewRouter(RouterConfig{
		Auth:     controllers.NewAuthController(logger, identity, jwtSvc, time.Hour),
		Users:    controllers.NewUserController(logger, identity, catalog),
		Events:   controllers.NewEventController(logger, catalog, identity),
		Wallet:   controllers.NewWalletController(logger, sessions),
		Verifier: jwtSvc,
		Session:  identity,
		Logger:   logger,
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, t: t}
}

// do sends a request and decodes the envelope's data into out when non-nil.
func (s *testServer) do(method, path, token, body string, out any) int {
	s.t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, s.URL+path, rdr)
	require.NoError(s.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.Client().Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	if out != nil {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		require.NoError(s.t, json.NewDecoder(resp.Body).Decode(&env))
		require.NoError(s.t, json.Unmarshal(env.Data, out))
	}
	return resp.StatusCode
}

func TestRouter_SessionLifecycle(t *testing.T) {
	srv := newTestServer(t)

	var reg controllers.AuthResponse
	status := srv.do(http.MethodPost, "/auth/register", "", `{"name":"Ada","email":"ada@example.com","password":"pw"}`, &reg)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, reg.Token)
	adaID := reg.User.ID

	var created struct {
		ID          string   `json:"id"`
		OrganizerID string   `json:"organizerId"`
		Attendees   []string `json:"attendees"`
		Category    string   `json:"category"`
	}
	status = srv.do(http.MethodPost, "/events", reg.Token, `{"title":"Go night","location":"Berlin"}`, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, adaID, created.OrganizerID)
	assert.Equal(t, []string{adaID}, created.Attendees)
	assert.Equal(t, "Other", created.Category)

	var mine []json.RawMessage
	require.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/me/events", reg.Token, "", &mine))
	assert.Len(t, mine, 1)

	// Logging in as someone else ends Ada's session.
	var other controllers.AuthResponse
	require.Equal(t, http.StatusOK, srv.do(http.MethodPost, "/auth/login", "", `{"email":"user1@gmail.com"}`, &other))
	assert.Equal(t, http.StatusUnauthorized, srv.do(http.MethodGet, "/me/events", reg.Token, "", nil))

	assert.Equal(t, http.StatusForbidden,
		srv.do(http.MethodDelete, "/events/"+created.ID, other.Token, "", nil))
	assert.Equal(t, http.StatusOK,
		srv.do(http.MethodPut, "/events/"+created.ID+"/attendance", other.Token, `{"attending":true}`, nil))

	var detail controllers.EventDetailResponse
	require.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/events/"+created.ID, "", "", &detail))
	require.Len(t, detail.Attendees, 2)
	assert.Equal(t, "Ada", detail.Attendees[0].Name)
	assert.Equal(t, "User 1", detail.Attendees[1].Name)

	require.Equal(t, http.StatusOK, srv.do(http.MethodPost, "/auth/logout", other.Token, "", nil))
	assert.Equal(t, http.StatusUnauthorized, srv.do(http.MethodPost, "/auth/logout", other.Token, "", nil))

	// Registered credentials are enforced on the way back in.
	assert.Equal(t, http.StatusUnauthorized,
		srv.do(http.MethodPost, "/auth/login", "", `{"email":"ada@example.com","password":"nope"}`, nil))
	assert.Equal(t, http.StatusOK,
		srv.do(http.MethodPost, "/auth/login", "", `{"email":"ada@example.com","password":"pw"}`, nil))
}

func TestRouter_Wallet(t *testing.T) {
	srv := newTestServer(t)

	var session struct {
		Connected bool   `json:"connected"`
		Address   string `json:"address"`
		Balance   string `json:"balance"`
	}
	require.Equal(t, http.StatusOK, srv.do(http.MethodPost, "/wallet/connect", "", "", &session))
	assert.True(t, session.Connected)
	assert.Len(t, session.Address, 42)
	assert.Equal(t, "1.5 ETH", session.Balance)

	require.Equal(t, http.StatusOK, srv.do(http.MethodPost, "/wallet/disconnect", "", "", &session))
	require.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/wallet", "", "", &session))
	assert.False(t, session.Connected)
}

func TestRouter_PublicRoutes(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/healthz", "", "", nil))
	assert.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/events/filters", "", "", nil))
	assert.Equal(t, http.StatusNotFound, srv.do(http.MethodGet, "/users/user-99", "", "", nil))
	assert.Equal(t, http.StatusUnauthorized, srv.do(http.MethodPost, "/events", "", `{"title":"x"}`, nil))
}
