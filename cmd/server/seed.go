package main

import (
	"fmt"
	"time"

	"communityhub/internal/domain"
)

type demoEvent struct {
	title, description, category, location, link string
	daysAhead                                    int
	price                                        float64
}

var demoCatalog = []demoEvent{
	{"Go Meetup: Concurrency Patterns", "Lightning talks on channels, worker pools and context.", "Technology", "Berlin", "", 3, 0},
	{"Community Garden Day", "Planting, compost basics and a shared lunch.", "Outdoors", "Lisbon", "", 5, 0},
	{"Intro to Smart Contracts", "A hands-on evening writing and testing a first contract.", "Blockchain", "", "https://meet.example.com/contracts", 7, 15},
	{"Startup Pitch Night", "Five founders, five minutes each, open feedback.", "Business", "Berlin", "", 10, 5},
	{"Morning Yoga Online", "Gentle flow for all levels.", "Wellness", "", "https://meet.example.com/yoga", 2, 0},
	{"Design Systems Workshop", "Tokens, components and documentation that scales.", "Design", "Amsterdam", "", 14, 25},
	{"Open Source Sprint", "Pair up and land your first pull request.", "Technology", "Lisbon", "", 21, 0},
}

// demoEvents builds the sample catalog, newest first. Organizers rotate through the
// seeded users; with no seeded users the events have no organizer.
func demoEvents(now time.Time, seededUsers int) []*domain.Event {
	events := make([]*domain.Event, 0, len(demoCatalog))
	for i, d := range demoCatalog {
		e := &domain.Event{
			ID:          fmt.Sprintf("event-demo-%d", i+1),
			Title:       d.title,
			Description: d.description,
			Date:        now.AddDate(0, 0, d.daysAhead).UTC().Format(time.RFC3339),
			StartTime:   domain.DefaultEventStartTime,
			EndTime:     domain.DefaultEventEndTime,
			Location:    d.location,
			IsVirtual:   d.link != "",
			VirtualLink: d.link,
			Category:    d.category,
			Organizer:   domain.DefaultEventOrganizer,
			Attendees:   []string{},
			Price:       d.price,
			CreatedAt:   now.Add(-time.Duration(i) * time.Hour),
			Version:     1,
		}
		if seededUsers > 0 {
			n := i%seededUsers + 1
			e.OrganizerID = fmt.Sprintf("user-%d", n)
			e.Organizer = fmt.Sprintf("User %d", n)
			e.Attendees = append(e.Attendees, e.OrganizerID)
		}
		events = append(events, e)
	}
	return events
}
