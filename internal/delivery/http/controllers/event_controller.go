package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"communityhub/internal/delivery/http/helpers"
	"communityhub/internal/delivery/http/middleware"
	"communityhub/internal/domain"
	"communityhub/internal/services"
)

// CreateEventRequest is the request body for POST /events. The organizer is always
// the authenticated user.
type CreateEventRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Date        string              `json:"date"`
	StartTime   string              `json:"startTime"`
	EndTime     string              `json:"endTime"`
	Location    string              `json:"location"`
	IsVirtual   bool                `json:"isVirtual"`
	VirtualLink string              `json:"virtualLink"`
	ImageURL    string              `json:"imageUrl"`
	Category    string              `json:"category"`
	Price       float64             `json:"price"`
	ExternalURL string              `json:"externalUrl"`
	Agenda      []domain.AgendaItem `json:"agenda"`
	Speakers    []domain.Speaker    `json:"speakers"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	if strings.TrimSpace(c.Title) == "" {
		return []string{"title is required"}
	}
	return nil
}

func (c CreateEventRequest) input(organizer *domain.User) domain.NewEventInput {
	return domain.NewEventInput{
		Title:       strings.TrimSpace(c.Title),
		Description: c.Description,
		Date:        c.Date,
		StartTime:   c.StartTime,
		EndTime:     c.EndTime,
		Location:    c.Location,
		IsVirtual:   c.IsVirtual,
		VirtualLink: c.VirtualLink,
		ImageURL:    c.ImageURL,
		Category:    c.Category,
		Organizer:   organizer.Name,
		OrganizerID: organizer.ID,
		Price:       c.Price,
		ExternalURL: c.ExternalURL,
		Agenda:      c.Agenda,
		Speakers:    c.Speakers,
	}
}

// AttendanceRequest is the request body for PUT /events/{eventID}/attendance.
type AttendanceRequest struct {
	Attending *bool `json:"attending"`
}

// Validate implements Validator.
func (a AttendanceRequest) Validate() []string {
	if a.Attending == nil {
		return []string{"attending is required"}
	}
	return nil
}

// ListEventsResponse is a filtered, paginated page of events.
type ListEventsResponse struct {
	Items      []*domain.Event        `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// FilterOptionsResponse lists the selectable filter values.
type FilterOptionsResponse struct {
	Categories []string `json:"categories"`
	Locations  []string `json:"locations"`
}

// FeaturedResponse is the home page selection.
type FeaturedResponse struct {
	Featured *domain.Event   `json:"featured"`
	Events   []*domain.Event `json:"events"`
}

// EventDetailResponse is an event with its attendees resolved to members.
type EventDetailResponse struct {
	Event     *domain.Event           `json:"event"`
	Attendees []services.AttendeeView `json:"attendees"`
}

// EventSuccessResponse is the success response envelope for single-event mutations.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventController serves the event catalog.
type EventController struct {
	Logger   *slog.Logger
	Catalog  domain.EventCatalog
	Identity domain.IdentityStore
}

func NewEventController(logger *slog.Logger, catalog domain.EventCatalog, identity domain.IdentityStore) *EventController {
	return &EventController{
		Logger:   logger,
		Catalog:  catalog,
		Identity: identity,
	}
}

// ListEvents godoc
// @Summary Browse events
// @Description Filters by case-insensitive text in title or description, by category, and by location ("Virtual" selects online events). "All" or an empty value disables a filter.
// @Tags events
// @Produce json
// @Param q query string false "Search text"
// @Param category query string false "Category"
// @Param location query string false "Location"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filtered := services.FilterEvents(c.Catalog.List(), services.EventFilter{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Location: q.Get("location"),
	})
	items, meta := helpers.Paginate(filtered, helpers.ParsePagination(r))
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{Items: items, Pagination: meta})
}

// FilterOptions godoc
// @Summary Filter values
// @Tags events
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains categories and locations"
// @Router /events/filters [get]
func (c *EventController) FilterOptions(w http.ResponseWriter, r *http.Request) {
	events := c.Catalog.List()
	helpers.WriteJSONSuccess(w, http.StatusOK, FilterOptionsResponse{
		Categories: services.CategoryOptions(events),
		Locations:  services.LocationOptions(events),
	})
}

// Featured godoc
// @Summary Featured events
// @Description The newest event plus the next few.
// @Tags events
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains featured and events"
// @Router /events/featured [get]
func (c *EventController) Featured(w http.ResponseWriter, r *http.Request) {
	featured, regular := services.Featured(c.Catalog.List())
	helpers.WriteJSONSuccess(w, http.StatusOK, FeaturedResponse{Featured: featured, Events: regular})
}

// GetEvent godoc
// @Summary Get an event
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains event and attendees"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	event := c.Catalog.GetByID(r.PathValue("eventID"))
	if event == nil {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventDetailResponse{
		Event:     event,
		Attendees: services.ResolveAttendees(event, c.Identity.GetByID),
	})
}

// CreateEvent godoc
// @Summary Create an event
// @Description The authenticated user becomes organizer and first attendee. Omitted fields get defaults.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	organizer := c.Identity.Current()
	if organizer == nil {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, err := c.Catalog.Create(r.Context(), req.input(organizer))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Organizer only. Send expectedVersion to reject the update if the event changed since it was read.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body domain.EventPatch true "Fields to update"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var patch domain.EventPatch
	if !helpers.DecodeAndValidate(w, r, &patch) {
		return
	}
	event, err := c.Catalog.UpdateAs(r.Context(), userID, r.PathValue("eventID"), patch)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Organizer only. Deleting an unknown id succeeds.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data.status: deleted"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Catalog.DeleteAs(r.Context(), userID, r.PathValue("eventID")); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "deleted"})
}

// SetAttendance godoc
// @Summary Attend or leave an event
// @Description Idempotent: attending twice or leaving an event not attended changes nothing.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body controllers.AttendanceRequest true "Attendance"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/attendance [put]
func (c *EventController) SetAttendance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req AttendanceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Catalog.SetAttendance(r.Context(), r.PathValue("eventID"), userID, *req.Attending)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}
