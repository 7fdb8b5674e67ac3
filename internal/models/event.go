package models

import (
	"strings"
	"time"
)

// EventStatus is the lifecycle state of a catalogue event.
type EventStatus string

const (
	EventScheduled EventStatus = "scheduled"
	EventActive    EventStatus = "active"
)

// EventLength is how long an event is considered running after its start time.
const EventLength = 3 * time.Hour

const (
	eventDateLayout = "2006-01-02"
	eventTimeLayout = "15:04"
)

// EventDraft holds the organizer-editable fields of an event. Date and time are UTC.
type EventDraft struct {
	Title       string `json:"title" validate:"required,max=100"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time" validate:"required,datetime=15:04"`
	Description string `json:"description"`
	Banner      string `json:"banner" validate:"omitempty,url|datauri"`
}

// Normalize trims every field.
func (d EventDraft) Normalize() EventDraft {
	return EventDraft{
		Title:       strings.TrimSpace(d.Title),
		Date:        strings.TrimSpace(d.Date),
		Time:        strings.TrimSpace(d.Time),
		Description: strings.TrimSpace(d.Description),
		Banner:      strings.TrimSpace(d.Banner),
	}
}

// Validate checks that the title, date and time are present and well formed.
func (d EventDraft) Validate() error {
	return structError(validate.Struct(d))
}

// StartsAt combines the date and time. It returns the zero time when either is malformed.
func (d EventDraft) StartsAt() time.Time {
	t, err := time.ParseInLocation(eventDateLayout+" "+eventTimeLayout, d.Date+" "+d.Time, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Event is a watch party in the event catalogue.
type Event struct {
	ID string `json:"id" validate:"required"`
	EventDraft
	Status    EventStatus `json:"status" validate:"required,oneof=scheduled active"`
	CreatedBy string      `json:"createdBy"`
	CreatedAt time.Time   `json:"createdAt"`
	StartedAt *time.Time  `json:"startedAt,omitempty"`
}

// Validate checks the id, status and draft fields of the event.
func (e *Event) Validate() error {
	return structError(validate.Struct(e))
}

// Active reports whether the event is running.
func (e *Event) Active() bool {
	return e.Status == EventActive
}

// Past reports whether a scheduled event ended before now.
func (e *Event) Past(now time.Time) bool {
	if e.Active() {
		return false
	}
	start := e.StartsAt()
	return !start.IsZero() && start.Add(EventLength).Before(now)
}
