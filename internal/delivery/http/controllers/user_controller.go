package controllers

import (
	"log/slog"
	"net/http"

	"communityhub/internal/delivery/http/helpers"
	"communityhub/internal/delivery/http/middleware"
	"communityhub/internal/domain"
	"communityhub/internal/services"
)

// UserSuccessResponse is the success response envelope for single-user endpoints (200).
type UserSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListUsersResponse is a page of the member directory.
type ListUsersResponse struct {
	Items      []*domain.User         `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// EventsSuccessResponse is the success response envelope for event list views (200).
type EventsSuccessResponse struct {
	Data  []*domain.Event   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UserController handles profiles and the personal dashboard.
type UserController struct {
	Logger   *slog.Logger
	Identity domain.IdentityStore
	Catalog  domain.EventCatalog
}

// NewUserController creates a UserController with the given logger and stores.
func NewUserController(logger *slog.Logger, identity domain.IdentityStore, catalog domain.EventCatalog) *UserController {
	return &UserController{
		Logger:   logger,
		Identity: identity,
		Catalog:  catalog,
	}
}

// ListUsers godoc
// @Summary List members
// @Description Returns a page of the member directory in registration order.
// @Tags users
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Router /users [get]
func (c *UserController) ListUsers(w http.ResponseWriter, r *http.Request) {
	items, meta := helpers.Paginate(c.Identity.Users(), helpers.ParsePagination(r))
	helpers.WriteJSONSuccess(w, http.StatusOK, ListUsersResponse{Items: items, Pagination: meta})
}

// GetUser godoc
// @Summary Get a member profile
// @Tags users
// @Produce json
// @Param userID path string true "User ID"
// @Success 200 {object} controllers.UserSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userID} [get]
func (c *UserController) GetUser(w http.ResponseWriter, r *http.Request) {
	user := c.Identity.GetByID(r.PathValue("userID"))
	if user == nil {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// ListUserEvents godoc
// @Summary Events organized by a member
// @Tags users
// @Produce json
// @Param userID path string true "User ID"
// @Success 200 {object} controllers.EventsSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userID}/events [get]
func (c *UserController) ListUserEvents(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if c.Identity.GetByID(userID) == nil {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, services.OrganizedBy(c.Catalog.List(), userID))
}

// GetMe godoc
// @Summary Get current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.UserSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /users/me [get]
func (c *UserController) GetMe(w http.ResponseWriter, r *http.Request) {
	user := c.Identity.Current()
	if user == nil {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// UpdateMe godoc
// @Summary Update current user
// @Description Merges the supplied profile fields into the current user. Email must stay unique.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body domain.UserPatch true "Fields to update"
// @Success 200 {object} controllers.UserSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me [patch]
func (c *UserController) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var patch domain.UserPatch
	if !helpers.DecodeAndValidate(w, r, &patch) {
		return
	}
	user, err := c.Identity.UpdateProfile(r.Context(), patch)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// MyEvents godoc
// @Summary Dashboard
// @Description Events the current user organizes or attends.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.EventsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /me/events [get]
func (c *UserController) MyEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, services.MyEvents(c.Catalog.List(), userID))
}
