package controllers

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

	"communityhub/internal/delivery/http/helpers"
	"communityhub/internal/delivery/http/middleware"
	"communityhub/internal/domain"

	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeIdentity implements domain.IdentityStore for handler tests.
type fakeIdentity struct {
	users   []*domain.User
	current *domain.User

	registerErr error
	loginErr    error
	logoutErr   error
	updateErr   error

	lastRegister [3]string
	lastLogin    [2]string
	lastPatch    domain.UserPatch
	logoutCalls  int
}

func (f *fakeIdentity) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	f.lastRegister = [3]string{name, email, password}
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	u := &domain.User{ID: "user-new", Name: name, Email: email}
	f.users = append(f.users, u)
	f.current = u
	return u, nil
}

func (f *fakeIdentity) Login(ctx context.Context, email, password string) (*domain.User, error) {
	f.lastLogin = [2]string{email, password}
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	for _, u := range f.users {
		if u.Email == email {
			f.current = u
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeIdentity) Logout(ctx context.Context) error {
	f.logoutCalls++
	f.current = nil
	return f.logoutErr
}

func (f *fakeIdentity) GetByID(id string) *domain.User {
	for _, u := range f.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (f *fakeIdentity) UpdateProfile(ctx context.Context, patch domain.UserPatch) (*domain.User, error) {
	f.lastPatch = patch
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.current == nil {
		return nil, domain.ErrNotAuthenticated
	}
	patch.Apply(f.current)
	return f.current, nil
}

func (f *fakeIdentity) Current() *domain.User { return f.current }
func (f *fakeIdentity) Users() []*domain.User { return f.users }
func (f *fakeIdentity) Pending() int          { return 0 }

func (f *fakeIdentity) Subscribe(fn func(*domain.User)) func() { return func() {} }

// fakeCatalog implements domain.EventCatalog for handler tests.
type fakeCatalog struct {
	events []*domain.Event

	createErr error
	updateErr error
	deleteErr error
	attendErr error

	lastInput     domain.NewEventInput
	lastPatch     domain.EventPatch
	lastActor     string
	lastID        string
	lastAttending bool
}

func (f *fakeCatalog) List() []*domain.Event { return f.events }

func (f *fakeCatalog) GetByID(id string) *domain.Event {
	for _, e := range f.events {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (f *fakeCatalog) Create(ctx context.Context, in domain.NewEventInput) (*domain.Event, error) {
	f.lastInput = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &domain.Event{ID: "event-new", Title: in.Title, OrganizerID: in.OrganizerID, Organizer: in.Organizer, Version: 1}, nil
}

func (f *fakeCatalog) Update(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	return f.UpdateAs(ctx, "", id, patch)
}

func (f *fakeCatalog) UpdateAs(ctx context.Context, actorID, id string, patch domain.EventPatch) (*domain.Event, error) {
	f.lastActor, f.lastID, f.lastPatch = actorID, id, patch
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	e := &domain.Event{ID: id, Version: 2}
	patch.Apply(e)
	return e, nil
}

func (f *fakeCatalog) Delete(ctx context.Context, id string) error {
	return f.DeleteAs(ctx, "", id)
}

func (f *fakeCatalog) DeleteAs(ctx context.Context, actorID, id string) error {
	f.lastActor, f.lastID = actorID, id
	return f.deleteErr
}

func (f *fakeCatalog) SetAttendance(ctx context.Context, id, userID string, attending bool) (*domain.Event, error) {
	f.lastActor, f.lastID, f.lastAttending = userID, id, attending
	if f.attendErr != nil {
		return nil, f.attendErr
	}
	e := &domain.Event{ID: id, Attendees: []string{}}
	if attending {
		e.Attendees = append(e.Attendees, userID)
	}
	return e, nil
}

func (f *fakeCatalog) Pending() int { return 0 }

func (f *fakeCatalog) Subscribe(fn func([]*domain.Event)) func() { return func() {} }

// fakeWallet implements domain.SessionStore for handler tests.
type fakeWallet struct {
	session       domain.WalletSession
	connectErr    error
	disconnectErr error
}

func (f *fakeWallet) Connect(ctx context.Context) (string, error) {
	if f.connectErr != nil {
		return "", f.connectErr
	}
	f.session = domain.WalletSession{Connected: true, Address: "0xabc", Balance: domain.WalletConnectBalance}
	return f.session.Address, nil
}

func (f *fakeWallet) Disconnect(ctx context.Context) error {
	f.session = domain.WalletSession{}
	return f.disconnectErr
}

func (f *fakeWallet) Session() domain.WalletSession { return f.session }
func (f *fakeWallet) Pending() int                  { return 0 }

func (f *fakeWallet) Subscribe(fn func(domain.WalletSession)) func() { return func() {} }

// fakeTokens implements domain.TokenIssuer.
type fakeTokens struct {
	err        error
	lastUserID string
	lastExpiry time.Duration
}

func (f *fakeTokens) Issue(userID, email string, expiry time.Duration) (string, error) {
	f.lastUserID, f.lastExpiry = userID, expiry
	if f.err != nil {
		return "", f.err
	}
	return "token-for-" + userID, nil
}

func newRequest(method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		r.Header.Set("Content-Type", "application/json")
	}
	return r
}

func asUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(middleware.SetUserID(r.Context(), userID))
}

// decodeEnvelope decodes the response envelope, unmarshalling data into out when
// out is non-nil.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, out any) *helpers.APIError {
	t.Helper()
	var env struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	if out != nil && env.Error == nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env.Error
}
