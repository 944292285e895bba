package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"communityhub/internal/domain"
)

// CatalogOptions configures NewEventCatalog. Seed is the initial collection,
// newest first.
type CatalogOptions struct {
	Clock   domain.Clock
	IDs     domain.IDGenerator
	Latency time.Duration
	Seed    []*domain.Event
	Logger  *slog.Logger
}

type eventCatalog struct {
	clock   domain.Clock
	ids     domain.IDGenerator
	latency time.Duration
	logger  *slog.Logger

	mu     sync.Mutex
	events []*domain.Event

	pending inflight
	subs    subscribers[[]*domain.Event]
}

// NewEventCatalog returns an in-memory EventCatalog. Two concurrent mutations of
// the same event are not serialized: the one that completes last wins unless the
// caller sets EventPatch.ExpectedVersion. Mutations run to completion once started;
// cancelling their ctx does not abort them.
func NewEventCatalog(opts CatalogOptions) domain.EventCatalog {
	c := &eventCatalog{
		clock:   opts.Clock,
		ids:     opts.IDs,
		latency: opts.Latency,
		logger:  discardIfNil(opts.Logger),
	}
	for _, e := range opts.Seed {
		c.events = append(c.events, e.Clone())
	}
	return c
}

func (c *eventCatalog) List() []*domain.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *eventCatalog) GetByID(id string) *domain.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexLocked(id); i >= 0 {
		return c.events[i].Clone()
	}
	return nil
}

func (c *eventCatalog) Create(ctx context.Context, in domain.NewEventInput) (*domain.Event, error) {
	defer c.pending.begin()()
	ctx = context.WithoutCancel(ctx)

	e := c.fromInput(in)
	if errs := e.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(errs, "; "))
	}
	if err := c.clock.Sleep(ctx, c.latency); err != nil {
		return nil, err
	}

	e.ID = c.ids.NewID("event")
	e.CreatedAt = c.clock.Now()
	e.Version = 1

	c.mu.Lock()
	c.events = slices.Insert(c.events, 0, e)
	snapshot, seq := c.snapshotLocked(), c.subs.stamp()
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "event created", "event_id", e.ID, "organizer_id", e.OrganizerID)
	c.subs.publish(seq, snapshot)
	return e.Clone(), nil
}

func (c *eventCatalog) fromInput(in domain.NewEventInput) *domain.Event {
	e := &domain.Event{
		Title:       in.Title,
		Description: in.Description,
		Date:        orDefault(in.Date, c.clock.Now().UTC().Format(time.RFC3339)),
		StartTime:   orDefault(in.StartTime, domain.DefaultEventStartTime),
		EndTime:     orDefault(in.EndTime, domain.DefaultEventEndTime),
		Location:    in.Location,
		IsVirtual:   in.IsVirtual,
		VirtualLink: in.VirtualLink,
		ImageURL:    in.ImageURL,
		Category:    orDefault(in.Category, domain.DefaultEventCategory),
		Organizer:   orDefault(in.Organizer, domain.DefaultEventOrganizer),
		OrganizerID: in.OrganizerID,
		Attendees:   []string{},
		Price:       in.Price,
		ExternalURL: in.ExternalURL,
		Agenda:      slices.Clone(in.Agenda),
		Speakers:    slices.Clone(in.Speakers),
	}
	for _, id := range in.Attendees {
		if id != "" && !slices.Contains(e.Attendees, id) {
			e.Attendees = append(e.Attendees, id)
		}
	}
	if e.OrganizerID != "" && !slices.Contains(e.Attendees, e.OrganizerID) {
		e.Attendees = slices.Insert(e.Attendees, 0, e.OrganizerID)
	}
	return e
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func (c *eventCatalog) Update(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	return c.update(ctx, id, patch, nil)
}

// UpdateAs is Update restricted to the event's organizer.
func (c *eventCatalog) UpdateAs(ctx context.Context, actorID, id string, patch domain.EventPatch) (*domain.Event, error) {
	return c.update(ctx, id, patch, func(e *domain.Event) error {
		return domain.Authorize(actorID, e)
	})
}

func (c *eventCatalog) update(ctx context.Context, id string, patch domain.EventPatch, authorize func(*domain.Event) error) (*domain.Event, error) {
	defer c.pending.begin()()
	ctx = context.WithoutCancel(ctx)

	if err := c.clock.Sleep(ctx, c.latency); err != nil {
		return nil, err
	}

	c.mu.Lock()
	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	current := c.events[i]
	if authorize != nil {
		if err := authorize(current); err != nil {
			c.mu.Unlock()
			return nil, err
		}
	}
	if patch.ExpectedVersion != nil && *patch.ExpectedVersion != current.Version {
		c.mu.Unlock()
		return nil, domain.ErrVersionConflict
	}
	updated := current.Clone()
	patch.Apply(updated)
	if errs := updated.Validate(); len(errs) > 0 {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(errs, "; "))
	}
	updated.Version = current.Version + 1
	c.events[i] = updated
	snapshot, seq := c.snapshotLocked(), c.subs.stamp()
	c.mu.Unlock()

	c.subs.publish(seq, snapshot)
	return updated.Clone(), nil
}

// Delete removes the event. Deleting an absent id is treated as already deleted.
func (c *eventCatalog) Delete(ctx context.Context, id string) error {
	return c.delete(ctx, id, nil)
}

// DeleteAs is Delete restricted to the event's organizer.
func (c *eventCatalog) DeleteAs(ctx context.Context, actorID, id string) error {
	return c.delete(ctx, id, func(e *domain.Event) error {
		return domain.Authorize(actorID, e)
	})
}

func (c *eventCatalog) delete(ctx context.Context, id string, authorize func(*domain.Event) error) error {
	defer c.pending.begin()()
	ctx = context.WithoutCancel(ctx)

	if err := c.clock.Sleep(ctx, c.latency); err != nil {
		return err
	}

	c.mu.Lock()
	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return nil
	}
	if authorize != nil {
		if err := authorize(c.events[i]); err != nil {
			c.mu.Unlock()
			return err
		}
	}
	c.events = slices.Delete(c.events, i, i+1)
	snapshot, seq := c.snapshotLocked(), c.subs.stamp()
	c.mu.Unlock()

	c.subs.publish(seq, snapshot)
	return nil
}

// SetAttendance adds or removes userID from the attendee set. Adding a present
// attendee or removing an absent one changes nothing.
func (c *eventCatalog) SetAttendance(ctx context.Context, id, userID string, attending bool) (*domain.Event, error) {
	defer c.pending.begin()()
	ctx = context.WithoutCancel(ctx)

	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if err := c.clock.Sleep(ctx, c.latency); err != nil {
		return nil, err
	}

	c.mu.Lock()
	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	current := c.events[i]
	if current.IsAttending(userID) == attending {
		out := current.Clone()
		c.mu.Unlock()
		return out, nil
	}
	updated := current.Clone()
	if attending {
		updated.Attendees = append(updated.Attendees, userID)
	} else {
		updated.Attendees = slices.DeleteFunc(updated.Attendees, func(a string) bool { return a == userID })
	}
	updated.Version = current.Version + 1
	c.events[i] = updated
	snapshot, seq := c.snapshotLocked(), c.subs.stamp()
	c.mu.Unlock()

	c.subs.publish(seq, snapshot)
	return updated.Clone(), nil
}

func (c *eventCatalog) Pending() int {
	return c.pending.count()
}

func (c *eventCatalog) Subscribe(fn func(events []*domain.Event)) func() {
	return c.subs.add(fn)
}

func (c *eventCatalog) indexLocked(id string) int {
	return slices.IndexFunc(c.events, func(e *domain.Event) bool { return e.ID == id })
}

func (c *eventCatalog) snapshotLocked() []*domain.Event {
	out := make([]*domain.Event, len(c.events))
	for i, e := range c.events {
		out[i] = e.Clone()
	}
	return out
}
