package session

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytparty/internal/models"
	"github.com/desertthunder/ytparty/internal/shared"
	"github.com/desertthunder/ytparty/internal/store"
)

// EventBook is the persisted event catalogue. At most one event is active at a time.
type EventBook struct {
	store         store.IdentityStore
	registrations *RegistrationBook
	logger        *log.Logger
	now           func() time.Time
}

// NewEventBook creates an EventBook over s. Deleting an event also clears its entries in registrations.
func NewEventBook(s store.IdentityStore, registrations *RegistrationBook, logger *log.Logger, clock func() time.Time) *EventBook {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &EventBook{store: s, registrations: registrations, logger: logger, now: clock}
}

// List returns the catalogue in creation order.
func (b *EventBook) List() ([]models.Event, error) {
	return b.read()
}

// Get returns the event with id or [shared.ErrEventNotFound].
func (b *EventBook) Get(id string) (*models.Event, error) {
	events, err := b.read()
	if err != nil {
		return nil, err
	}
	idx := eventIndex(events, id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrEventNotFound, id)
	}
	return &events[idx], nil
}

// Active returns the running event, or nil when none is.
func (b *EventBook) Active() (*models.Event, error) {
	events, err := b.read()
	if err != nil {
		return nil, err
	}
	if idx := activeIndex(events); idx >= 0 {
		return &events[idx], nil
	}
	return nil, nil
}

// Create adds a scheduled event. Its start must be in the future.
func (b *EventBook) Create(draft models.EventDraft, createdBy string) (*models.Event, error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	now := b.now()
	if !draft.StartsAt().After(now) {
		return nil, fmt.Errorf("%w: event must start in the future", shared.ErrValidationFailed)
	}

	events, err := b.read()
	if err != nil {
		return nil, err
	}

	event := models.Event{
		ID:         shared.GenerateID(),
		EventDraft: draft,
		Status:     models.EventScheduled,
		CreatedBy:  createdBy,
		CreatedAt:  now,
	}
	if err := b.write(append(events, event)); err != nil {
		return nil, err
	}

	b.logger.Info("event created", "event", event.ID, "by", createdBy)
	return &event, nil
}

// Update replaces the editable fields of an event. Status and authorship are kept.
func (b *EventBook) Update(id string, draft models.EventDraft) (*models.Event, error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	events, err := b.read()
	if err != nil {
		return nil, err
	}
	idx := eventIndex(events, id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrEventNotFound, id)
	}

	events[idx].EventDraft = draft
	if err := b.write(events); err != nil {
		return nil, err
	}

	b.logger.Info("event updated", "event", id)
	return &events[idx], nil
}

// Delete removes an event and its registrations.
func (b *EventBook) Delete(id string) error {
	events, err := b.read()
	if err != nil {
		return err
	}
	idx := eventIndex(events, id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", shared.ErrEventNotFound, id)
	}

	id = events[idx].ID
	if err := b.write(slices.Delete(events, idx, idx+1)); err != nil {
		return err
	}
	if err := b.registrations.RemoveEvent(id); err != nil {
		b.logger.Error("failed to remove event registrations", "event", id, "error", err)
		return err
	}

	b.logger.Info("event deleted", "event", id)
	return nil
}

// Start marks an event active. Starting the active event again is a no-op; starting any other event while
// one is active fails with [shared.ErrEventInProgress].
func (b *EventBook) Start(id string) (*models.Event, error) {
	events, err := b.read()
	if err != nil {
		return nil, err
	}
	idx := eventIndex(events, id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrEventNotFound, id)
	}

	if active := activeIndex(events); active >= 0 {
		if active == idx {
			return &events[idx], nil
		}
		return nil, fmt.Errorf("%w: %s", shared.ErrEventInProgress, events[active].ID)
	}

	started := b.now()
	events[idx].Status = models.EventActive
	events[idx].StartedAt = &started
	if err := b.write(events); err != nil {
		return nil, err
	}

	b.logger.Info("event started", "event", id)
	return &events[idx], nil
}

// Cancel returns the active event to the schedule.
func (b *EventBook) Cancel() (*models.Event, error) {
	events, err := b.read()
	if err != nil {
		return nil, err
	}
	idx := activeIndex(events)
	if idx < 0 {
		return nil, fmt.Errorf("%w: no active event", shared.ErrEventNotFound)
	}

	events[idx].Status = models.EventScheduled
	events[idx].StartedAt = nil
	if err := b.write(events); err != nil {
		return nil, err
	}

	b.logger.Info("event cancelled", "event", events[idx].ID)
	return &events[idx], nil
}

// read returns the catalogue. Invalid entries are skipped with a warning.
func (b *EventBook) read() ([]models.Event, error) {
	var events []models.Event
	if _, err := readJSON(b.store, store.EventsKey, &events); err != nil {
		return nil, err
	}

	valid := events[:0]
	for _, event := range events {
		if err := event.Validate(); err != nil {
			b.logger.Warn("skipping invalid event", "event", event.ID, "error", err)
			continue
		}
		valid = append(valid, event)
	}
	return valid, nil
}

func (b *EventBook) write(events []models.Event) error {
	if events == nil {
		events = []models.Event{}
	}
	if err := writeJSON(b.store, store.EventsKey, events); err != nil {
		b.logger.Error("failed to write events", "error", err)
		return err
	}
	return nil
}

func eventIndex(events []models.Event, id string) int {
	id = strings.TrimSpace(id)
	for i := range events {
		if events[i].ID == id {
			return i
		}
	}
	return -1
}

func activeIndex(events []models.Event) int {
	for i := range events {
		if events[i].Active() {
			return i
		}
	}
	return -1
}

// CreateEvent adds an event to the catalogue on behalf of the current administrator.
func (e *Engine) CreateEvent(draft models.EventDraft) (*models.Event, error) {
	actor, err := e.requirePrivileged()
	if err != nil {
		return nil, err
	}
	return e.events.Create(draft, actor.ID)
}

// UpdateEvent edits an event's title, schedule, description and banner.
func (e *Engine) UpdateEvent(id string, draft models.EventDraft) (*models.Event, error) {
	if _, err := e.requirePrivileged(); err != nil {
		return nil, err
	}
	return e.events.Update(id, draft)
}

// DeleteEvent removes an event and everyone's registration for it.
func (e *Engine) DeleteEvent(id string) error {
	if _, err := e.requirePrivileged(); err != nil {
		return err
	}
	return e.events.Delete(id)
}

// StartEvent makes id the active event.
func (e *Engine) StartEvent(id string) (*models.Event, error) {
	if _, err := e.requirePrivileged(); err != nil {
		return nil, err
	}
	return e.events.Start(id)
}

// CancelEvent stops the active event.
func (e *Engine) CancelEvent() (*models.Event, error) {
	if _, err := e.requirePrivileged(); err != nil {
		return nil, err
	}
	return e.events.Cancel()
}
