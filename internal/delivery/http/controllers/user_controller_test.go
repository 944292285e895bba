package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"communityhub/internal/delivery/http/helpers"
	"communityhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userFixtures() (*fakeIdentity, *fakeCatalog) {
	alice := &domain.User{ID: "user-1", Name: "Alice", Email: "alice@example.com"}
	bob := &domain.User{ID: "user-2", Name: "Bob", Email: "bob@example.com"}
	identity := &fakeIdentity{users: []*domain.User{alice, bob}, current: alice}
	catalog := &fakeCatalog{events: []*domain.Event{
		{ID: "e1", Title: "Alice's meetup", OrganizerID: "user-1", Attendees: []string{"user-1"}},
		{ID: "e2", Title: "Bob's hackathon", OrganizerID: "user-2", Attendees: []string{"user-2", "user-1"}},
		{ID: "e3", Title: "Bob's talk", OrganizerID: "user-2", Attendees: []string{"user-2"}},
	}}
	return identity, catalog
}

func eventIDs(events []*domain.Event) []string {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return ids
}

func TestUserController_GetUser(t *testing.T) {
	identity, catalog := userFixtures()
	ctrl := NewUserController(testLogger, identity, catalog)

	tests := []struct {
		name       string
		userID     string
		wantStatus int
	}{
		{"found", "user-2", http.StatusOK},
		{"unknown", "user-9", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newRequest(http.MethodGet, "/users/"+tt.userID, "")
			req.SetPathValue("userID", tt.userID)
			rr := httptest.NewRecorder()

			ctrl.GetUser(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var u domain.User
			apiErr := decodeEnvelope(t, rr, &u)
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, apiErr)
				assert.Equal(t, "Bob", u.Name)
			} else {
				require.NotNil(t, apiErr)
				assert.Equal(t, helpers.ErrCodeNotFound, apiErr.Code)
			}
		})
	}
}

func TestUserController_ListUsers(t *testing.T) {
	identity, catalog := userFixtures()
	ctrl := NewUserController(testLogger, identity, catalog)
	rr := httptest.NewRecorder()

	ctrl.ListUsers(rr, newRequest(http.MethodGet, "/users?page=2&page_size=1", ""))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp ListUsersResponse
	require.Nil(t, decodeEnvelope(t, rr, &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "user-2", resp.Items[0].ID)
	assert.Equal(t, helpers.PaginationMeta{Page: 2, PageSize: 1, Total: 2, TotalPages: 2}, resp.Pagination)
}

func TestUserController_ListUserEvents(t *testing.T) {
	identity, catalog := userFixtures()
	ctrl := NewUserController(testLogger, identity, catalog)

	req := newRequest(http.MethodGet, "/users/user-2/events", "")
	req.SetPathValue("userID", "user-2")
	rr := httptest.NewRecorder()
	ctrl.ListUserEvents(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var events []*domain.Event
	require.Nil(t, decodeEnvelope(t, rr, &events))
	assert.Equal(t, []string{"e2", "e3"}, eventIDs(events))

	req = newRequest(http.MethodGet, "/users/ghost/events", "")
	req.SetPathValue("userID", "ghost")
	rr = httptest.NewRecorder()
	ctrl.ListUserEvents(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUserController_GetMe(t *testing.T) {
	identity, catalog := userFixtures()
	ctrl := NewUserController(testLogger, identity, catalog)

	rr := httptest.NewRecorder()
	ctrl.GetMe(rr, asUser(newRequest(http.MethodGet, "/users/me", ""), "user-1"))
	require.Equal(t, http.StatusOK, rr.Code)
	var u domain.User
	require.Nil(t, decodeEnvelope(t, rr, &u))
	assert.Equal(t, "user-1", u.ID)

	identity.current = nil
	rr = httptest.NewRecorder()
	ctrl.GetMe(rr, newRequest(http.MethodGet, "/users/me", ""))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUserController_UpdateMe(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		storeErr   error
		wantStatus int
		wantCode   string
	}{
		{"success", `{"name":"Alice L.","bio":"Builder"}`, nil, http.StatusOK, ""},
		{"empty name", `{"name":"  "}`, nil, http.StatusBadRequest, helpers.ErrCodeBadRequest},
		{"negative counter", `{"connections":-1}`, nil, http.StatusBadRequest, helpers.ErrCodeBadRequest},
		{"unknown field", `{"id":"user-9"}`, nil, http.StatusBadRequest, helpers.ErrCodeBadRequest},
		{"duplicate email", `{"email":"bob@example.com"}`, domain.ErrDuplicateEmail, http.StatusConflict, helpers.ErrCodeConflict},
		{"storage failure", `{"bio":"x"}`, assert.AnError, http.StatusInternalServerError, helpers.ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, catalog := userFixtures()
			identity.updateErr = tt.storeErr
			ctrl := NewUserController(testLogger, identity, catalog)
			rr := httptest.NewRecorder()

			ctrl.UpdateMe(rr, asUser(newRequest(http.MethodPatch, "/users/me", tt.body), "user-1"))

			require.Equal(t, tt.wantStatus, rr.Code)
			var u domain.User
			apiErr := decodeEnvelope(t, rr, &u)
			if tt.wantCode != "" {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantCode, apiErr.Code)
				return
			}
			assert.Equal(t, "Alice L.", u.Name)
			assert.Equal(t, "Builder", u.Bio)
		})
	}
}

func TestUserController_MyEvents(t *testing.T) {
	identity, catalog := userFixtures()
	ctrl := NewUserController(testLogger, identity, catalog)

	rr := httptest.NewRecorder()
	ctrl.MyEvents(rr, asUser(newRequest(http.MethodGet, "/me/events", ""), "user-1"))

	require.Equal(t, http.StatusOK, rr.Code)
	var events []*domain.Event
	require.Nil(t, decodeEnvelope(t, rr, &events))
	assert.Equal(t, []string{"e1", "e2"}, eventIDs(events))

	rr = httptest.NewRecorder()
	ctrl.MyEvents(rr, newRequest(http.MethodGet, "/me/events", ""))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
