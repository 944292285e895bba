package domain

import (
	"context"
	"slices"
	"strings"
	"time"
)

// Defaults applied by EventCatalog.Create to omitted fields.
const (
	DefaultEventCategory  = "Other"
	DefaultEventOrganizer = "Unknown"
	DefaultEventStartTime = "10:00"
	DefaultEventEndTime   = "12:00"
)

// AgendaItem is one time slot of an event agenda.
type AgendaItem struct {
	Time     string `json:"time"`
	Activity string `json:"activity"`
}

// Speaker is a person presenting at an event.
type Speaker struct {
	Name   string `json:"name"`
	Role   string `json:"role"`
	Bio    string `json:"bio,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// Event represents a community event. Location is meaningful only when IsVirtual is
// false; VirtualLink only when it is true.
// swagger:model Event
type Event struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Date        string       `json:"date"`
	StartTime   string       `json:"startTime"`
	EndTime     string       `json:"endTime"`
	Location    string       `json:"location"`
	IsVirtual   bool         `json:"isVirtual"`
	VirtualLink string       `json:"virtualLink,omitempty"`
	ImageURL    string       `json:"imageUrl,omitempty"`
	Category    string       `json:"category"`
	Organizer   string       `json:"organizer"`
	OrganizerID string       `json:"organizerId"`
	Attendees   []string     `json:"attendees"`
	Price       float64      `json:"price"`
	ExternalURL string       `json:"externalUrl,omitempty"`
	Agenda      []AgendaItem `json:"agenda,omitempty"`
	Speakers    []Speaker    `json:"speakers,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	Version     int          `json:"version"`
}

// Clone returns a deep copy so callers only ever hold transient copies.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	c := *e
	c.Attendees = slices.Clone(e.Attendees)
	if c.Attendees == nil {
		c.Attendees = []string{}
	}
	c.Agenda = slices.Clone(e.Agenda)
	c.Speakers = slices.Clone(e.Speakers)
	return &c
}

// IsAttending reports whether userID is in the attendee set.
func (e *Event) IsAttending(userID string) bool {
	return slices.Contains(e.Attendees, userID)
}

// Validate checks the location/virtual-link invariant and the price bound.
func (e *Event) Validate() []string {
	var errs []string
	if strings.TrimSpace(e.Title) == "" {
		errs = append(errs, "title is required")
	}
	if e.IsVirtual && strings.TrimSpace(e.VirtualLink) == "" {
		errs = append(errs, "virtualLink is required for a virtual event")
	}
	if !e.IsVirtual && strings.TrimSpace(e.Location) == "" {
		errs = append(errs, "location is required for an in-person event")
	}
	if e.Price < 0 {
		errs = append(errs, "price must not be negative")
	}
	return errs
}

// NewEventInput holds the fields supplied to EventCatalog.Create. Zero values are
// treated as omitted and replaced by the documented defaults.
type NewEventInput struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Date        string       `json:"date"`
	StartTime   string       `json:"startTime"`
	EndTime     string       `json:"endTime"`
	Location    string       `json:"location"`
	IsVirtual   bool         `json:"isVirtual"`
	VirtualLink string       `json:"virtualLink"`
	ImageURL    string       `json:"imageUrl"`
	Category    string       `json:"category"`
	Organizer   string       `json:"organizer"`
	OrganizerID string       `json:"organizerId"`
	Attendees   []string     `json:"attendees"`
	Price       float64      `json:"price"`
	ExternalURL string       `json:"externalUrl"`
	Agenda      []AgendaItem `json:"agenda"`
	Speakers    []Speaker    `json:"speakers"`
}

// EventPatch carries a partial event update. Nil fields are left unchanged.
// ExpectedVersion, when set, rejects the update if the stored version differs.
type EventPatch struct {
	Title           *string       `json:"title"`
	Description     *string       `json:"description"`
	Date            *string       `json:"date"`
	StartTime       *string       `json:"startTime"`
	EndTime         *string       `json:"endTime"`
	Location        *string       `json:"location"`
	IsVirtual       *bool         `json:"isVirtual"`
	VirtualLink     *string       `json:"virtualLink"`
	ImageURL        *string       `json:"imageUrl"`
	Category        *string       `json:"category"`
	Organizer       *string       `json:"organizer"`
	Attendees       *[]string     `json:"attendees"`
	Price           *float64      `json:"price"`
	ExternalURL     *string       `json:"externalUrl"`
	Agenda          *[]AgendaItem `json:"agenda"`
	Speakers        *[]Speaker    `json:"speakers"`
	ExpectedVersion *int          `json:"expectedVersion"`
}

// Apply shallow-merges the patch into e in place.
func (p EventPatch) Apply(e *Event) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		e.EndTime = *p.EndTime
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.IsVirtual != nil {
		e.IsVirtual = *p.IsVirtual
	}
	if p.VirtualLink != nil {
		e.VirtualLink = *p.VirtualLink
	}
	if p.ImageURL != nil {
		e.ImageURL = *p.ImageURL
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Organizer != nil {
		e.Organizer = *p.Organizer
	}
	if p.Attendees != nil {
		e.Attendees = slices.Clone(*p.Attendees)
	}
	if p.Price != nil {
		e.Price = *p.Price
	}
	if p.ExternalURL != nil {
		e.ExternalURL = *p.ExternalURL
	}
	if p.Agenda != nil {
		e.Agenda = slices.Clone(*p.Agenda)
	}
	if p.Speakers != nil {
		e.Speakers = slices.Clone(*p.Speakers)
	}
}

// EventCatalog owns the collection of events.
type EventCatalog interface {
	List() []*Event
	GetByID(id string) *Event
	Create(ctx context.Context, in NewEventInput) (*Event, error)
	Update(ctx context.Context, id string, patch EventPatch) (*Event, error)
	UpdateAs(ctx context.Context, actorID, id string, patch EventPatch) (*Event, error)
	Delete(ctx context.Context, id string) error
	DeleteAs(ctx context.Context, actorID, id string) error
	SetAttendance(ctx context.Context, id, userID string, attending bool) (*Event, error)
	Pending() int
	Subscribe(fn func(events []*Event)) (unsubscribe func())
}

// Authorize returns ErrForbidden unless actorID organizes the event.
func Authorize(actorID string, e *Event) error {
	if actorID == "" || e.OrganizerID != actorID {
		return ErrForbidden
	}
	return nil
}
