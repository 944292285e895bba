package services

import (
	"strings"

	"communityhub/internal/domain"
)

// Synthetic filter options.
const (
	FilterAll     = "All"
	FilterVirtual = "Virtual"
)

// featuredRegularCount is how many events follow the featured one on the home view.
const featuredRegularCount = 5

// EventFilter selects events by free-text query, category and location.
// Empty Category or Location, or the value "All", matches everything.
type EventFilter struct {
	Query    string
	Category string
	Location string
}

// Matches reports whether e satisfies every criterion of the filter.
func (f EventFilter) Matches(e *domain.Event) bool {
	q := strings.ToLower(f.Query)
	matchesSearch := strings.Contains(strings.ToLower(e.Title), q) ||
		strings.Contains(strings.ToLower(e.Description), q)

	matchesCategory := f.Category == "" || f.Category == FilterAll || e.Category == f.Category

	matchesLocation := f.Location == "" || f.Location == FilterAll ||
		(f.Location == FilterVirtual && e.IsVirtual) ||
		(!e.IsVirtual && e.Location == f.Location)

	return matchesSearch && matchesCategory && matchesLocation
}

// FilterEvents returns the events matching f, preserving order.
func FilterEvents(events []*domain.Event, f EventFilter) []*domain.Event {
	return selectEvents(events, f.Matches)
}

// CategoryOptions returns "All" followed by the distinct categories in list order.
func CategoryOptions(events []*domain.Event) []string {
	opts := []string{FilterAll}
	seen := map[string]struct{}{FilterAll: {}}
	for _, e := range events {
		if _, ok := seen[e.Category]; ok || e.Category == "" {
			continue
		}
		seen[e.Category] = struct{}{}
		opts = append(opts, e.Category)
	}
	return opts
}

// LocationOptions returns "All", "Virtual", then the distinct physical locations.
func LocationOptions(events []*domain.Event) []string {
	opts := []string{FilterAll, FilterVirtual}
	seen := map[string]struct{}{FilterAll: {}, FilterVirtual: {}}
	for _, e := range events {
		if e.IsVirtual || e.Location == "" {
			continue
		}
		if _, ok := seen[e.Location]; ok {
			continue
		}
		seen[e.Location] = struct{}{}
		opts = append(opts, e.Location)
	}
	return opts
}

// MyEvents returns the events userID organizes or attends (the dashboard view).
func MyEvents(events []*domain.Event, userID string) []*domain.Event {
	if userID == "" {
		return []*domain.Event{}
	}
	return selectEvents(events, func(e *domain.Event) bool {
		return e.OrganizerID == userID || e.IsAttending(userID)
	})
}

// OrganizedBy returns the events whose organizer is userID (the profile view).
func OrganizedBy(events []*domain.Event, userID string) []*domain.Event {
	if userID == "" {
		return []*domain.Event{}
	}
	return selectEvents(events, func(e *domain.Event) bool {
		return e.OrganizerID == userID
	})
}

// Featured splits the list into the headline event and the next few highlights.
// featured is nil when the list is empty.
func Featured(events []*domain.Event) (featured *domain.Event, regular []*domain.Event) {
	if len(events) == 0 {
		return nil, []*domain.Event{}
	}
	end := min(len(events), 1+featuredRegularCount)
	return events[0], events[1:end]
}

// AttendeeView is an attendee id resolved against the identity store.
// swagger:model AttendeeView
type AttendeeView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Known bool   `json:"known"`
}

// UnknownAttendeeName labels attendee ids that match no registered user.
const UnknownAttendeeName = "Unknown attendee"

// ResolveAttendees maps the attendee ids of e to users via lookup. Ids without a
// matching user are kept and marked unknown.
func ResolveAttendees(e *domain.Event, lookup func(id string) *domain.User) []AttendeeView {
	out := make([]AttendeeView, 0, len(e.Attendees))
	for _, id := range e.Attendees {
		if u := lookup(id); u != nil {
			out = append(out, AttendeeView{ID: id, Name: u.Name, Known: true})
			continue
		}
		out = append(out, AttendeeView{ID: id, Name: UnknownAttendeeName})
	}
	return out
}

func selectEvents(events []*domain.Event, keep func(*domain.Event) bool) []*domain.Event {
	out := []*domain.Event{}
	for _, e := range events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
