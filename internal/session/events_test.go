package session

import (
	"errors"
	"slices"
	"testing"

	"github.com/desertthunder/ytparty/internal/models"
	"github.com/desertthunder/ytparty/internal/shared"
	"github.com/desertthunder/ytparty/internal/store"
	tu "github.com/desertthunder/ytparty/internal/testing"
)

func draft(title string) models.EventDraft {
	return models.EventDraft{Title: title, Date: "2025-07-04", Time: "19:30", Description: "bring snacks"}
}

// scheduleEvent adds an event to e's catalogue without going through the privilege check.
func scheduleEvent(t *testing.T, e *Engine, title string) *models.Event {
	t.Helper()
	event, err := e.Events().Create(draft(title), "aqua")
	if err != nil {
		t.Fatalf("failed to create %q: %v", title, err)
	}
	return event
}

func TestEventBookCreate(t *testing.T) {
	t.Run("scheduled with authorship", func(t *testing.T) {
		e := newTestEngine(t, nil)

		event, err := e.Events().Create(models.EventDraft{Title: "  Movie night ", Date: "2025-07-04", Time: "19:30"}, "aqua")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if event.ID == "" || event.Status != models.EventScheduled || event.CreatedBy != "aqua" {
			t.Errorf("unexpected event: %+v", event)
		}
		if event.Title != "Movie night" || !event.CreatedAt.Equal(fixedNow) || event.StartedAt != nil {
			t.Errorf("unexpected event fields: %+v", event)
		}

		events, _ := e.Events().List()
		if len(events) != 1 || events[0].ID != event.ID {
			t.Errorf("expected the event in the catalogue, got %+v", events)
		}
	})

	tc := []struct {
		name  string
		draft models.EventDraft
	}{
		{name: "missing title", draft: models.EventDraft{Date: "2025-07-04", Time: "19:30"}},
		{name: "blank title", draft: models.EventDraft{Title: "   ", Date: "2025-07-04", Time: "19:30"}},
		{name: "missing date", draft: models.EventDraft{Title: "Party", Time: "19:30"}},
		{name: "missing time", draft: models.EventDraft{Title: "Party", Date: "2025-07-04"}},
		{name: "malformed date", draft: models.EventDraft{Title: "Party", Date: "07/04/2025", Time: "19:30"}},
		{name: "malformed time", draft: models.EventDraft{Title: "Party", Date: "2025-07-04", Time: "7pm"}},
		{name: "in the past", draft: models.EventDraft{Title: "Party", Date: "2025-05-01", Time: "19:30"}},
		{name: "starting now", draft: models.EventDraft{Title: "Party", Date: "2025-06-01", Time: "20:00"}},
		{name: "bad banner", draft: models.EventDraft{Title: "Party", Date: "2025-07-04", Time: "19:30", Banner: "not a url"}},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			mem := store.NewMemoryStore()
			e := newTestEngine(t, mem)

			if _, err := e.Events().Create(tt.draft, "aqua"); !errors.Is(err, shared.ErrValidationFailed) {
				t.Errorf("expected ErrValidationFailed, got %v", err)
			}
			if _, err := mem.Get(store.EventsKey); !errors.Is(err, shared.ErrKeyNotFound) {
				t.Errorf("catalogue should not be written, got %v", err)
			}
		})
	}
}

func TestEventBookUpdate(t *testing.T) {
	e := newTestEngine(t, nil)
	event := scheduleEvent(t, e, "Movie night")
	if _, err := e.Events().Start(event.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("replaces editable fields", func(t *testing.T) {
		updated, err := e.Events().Update(event.ID, models.EventDraft{Title: "Concert", Date: "2025-05-01", Time: "18:00"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.Title != "Concert" || updated.Date != "2025-05-01" || updated.Description != "" {
			t.Errorf("unexpected update: %+v", updated)
		}
		if !updated.Active() || updated.CreatedBy != "aqua" || !updated.CreatedAt.Equal(fixedNow) {
			t.Errorf("status and authorship should be kept, got %+v", updated)
		}
	})

	t.Run("requires title date and time", func(t *testing.T) {
		if _, err := e.Events().Update(event.ID, models.EventDraft{Title: "Concert"}); !errors.Is(err, shared.ErrValidationFailed) {
			t.Errorf("expected ErrValidationFailed, got %v", err)
		}
	})

	t.Run("unknown event", func(t *testing.T) {
		if _, err := e.Events().Update("nope", draft("Concert")); !errors.Is(err, shared.ErrEventNotFound) {
			t.Errorf("expected ErrEventNotFound, got %v", err)
		}
	})
}

func TestEventBookDelete(t *testing.T) {
	t.Run("cascades to registrations", func(t *testing.T) {
		e := newTestEngine(t, nil)
		doomed := scheduleEvent(t, e, "Movie night")
		kept := scheduleEvent(t, e, "Concert")
		_ = e.Registrations().Register(doomed.ID, "bob")
		_ = e.Registrations().Register(kept.ID, "bob")

		if err := e.Events().Delete(doomed.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := e.Events().Get(doomed.ID); !errors.Is(err, shared.ErrEventNotFound) {
			t.Errorf("expected deleted event to be gone, got %v", err)
		}
		if got, _ := e.Registrations().Attendees(doomed.ID); len(got) != 0 {
			t.Errorf("expected registrations to be removed, got %v", got)
		}
		if got, _ := e.Registrations().Attendees(kept.ID); !slices.Equal(got, []string{"bob"}) {
			t.Errorf("other events should be untouched, got %v", got)
		}
	})

	t.Run("unknown event", func(t *testing.T) {
		e := newTestEngine(t, nil)
		if err := e.Events().Delete("nope"); !errors.Is(err, shared.ErrEventNotFound) {
			t.Errorf("expected ErrEventNotFound, got %v", err)
		}
	})

	t.Run("registration failure is reported", func(t *testing.T) {
		mem := store.NewMemoryStore()
		e := newTestEngine(t, mem)
		event := scheduleEvent(t, e, "Movie night")
		_ = e.Registrations().Register(event.ID, "bob")

		failing := tu.NewFailingStore(mem)
		failing.FailWrites[store.RegistrationsKey] = true
		e = newTestEngine(t, failing)

		if err := e.Events().Delete(event.ID); !errors.Is(err, shared.ErrStorageUnavailable) {
			t.Errorf("expected ErrStorageUnavailable, got %v", err)
		}
	})
}

func TestEventBookStartAndCancel(t *testing.T) {
	tc := []struct {
		name    string
		setup   func(e *Engine, first, second *models.Event)
		start   func(first, second *models.Event) string
		wantErr error
		active  func(first, second *models.Event) string
	}{
		{
			name:   "start a scheduled event",
			setup:  func(*Engine, *models.Event, *models.Event) {},
			start:  func(first, _ *models.Event) string { return first.ID },
			active: func(first, _ *models.Event) string { return first.ID },
		},
		{
			name:    "second event while one is active",
			setup:   func(e *Engine, first, _ *models.Event) { _, _ = e.Events().Start(first.ID) },
			start:   func(_, second *models.Event) string { return second.ID },
			wantErr: shared.ErrEventInProgress,
			active:  func(first, _ *models.Event) string { return first.ID },
		},
		{
			name:   "restarting the active event",
			setup:  func(e *Engine, first, _ *models.Event) { _, _ = e.Events().Start(first.ID) },
			start:  func(first, _ *models.Event) string { return first.ID },
			active: func(first, _ *models.Event) string { return first.ID },
		},
		{
			name: "second event after cancelling",
			setup: func(e *Engine, first, _ *models.Event) {
				_, _ = e.Events().Start(first.ID)
				_, _ = e.Events().Cancel()
			},
			start:  func(_, second *models.Event) string { return second.ID },
			active: func(_, second *models.Event) string { return second.ID },
		},
		{
			name:    "unknown event",
			setup:   func(*Engine, *models.Event, *models.Event) {},
			start:   func(*models.Event, *models.Event) string { return "nope" },
			wantErr: shared.ErrEventNotFound,
			active:  func(*models.Event, *models.Event) string { return "" },
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, nil)
			first := scheduleEvent(t, e, "Movie night")
			second := scheduleEvent(t, e, "Concert")
			tt.setup(e, first, second)

			started, err := e.Events().Start(tt.start(first, second))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			} else if !started.Active() || started.StartedAt == nil {
				t.Errorf("expected started event, got %+v", started)
			}

			active, err := e.Events().Active()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := tt.active(first, second)
			switch {
			case want == "" && active != nil:
				t.Errorf("expected no active event, got %s", active.ID)
			case want != "" && (active == nil || active.ID != want):
				t.Errorf("expected %s to be active, got %+v", want, active)
			}
		})
	}

	t.Run("cancel returns the event to the schedule", func(t *testing.T) {
		e := newTestEngine(t, nil)
		event := scheduleEvent(t, e, "Movie night")
		if _, err := e.Events().Start(event.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cancelled, err := e.Events().Cancel()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cancelled.ID != event.ID || cancelled.Status != models.EventScheduled || cancelled.StartedAt != nil {
			t.Errorf("unexpected cancelled event: %+v", cancelled)
		}
	})

	t.Run("cancel without an active event", func(t *testing.T) {
		e := newTestEngine(t, nil)
		scheduleEvent(t, e, "Movie night")
		if _, err := e.Events().Cancel(); !errors.Is(err, shared.ErrEventNotFound) {
			t.Errorf("expected ErrEventNotFound, got %v", err)
		}
	})
}

func TestEventCatalogueRead(t *testing.T) {
	t.Run("malformed catalogue", func(t *testing.T) {
		mem := store.NewMemoryStore()
		tu.MustSet(t, mem, store.EventsKey, `{"id":"x"}`)
		e := newTestEngine(t, mem)

		if _, err := e.Events().List(); !errors.Is(err, shared.ErrMalformedRecord) {
			t.Errorf("expected ErrMalformedRecord, got %v", err)
		}
	})

	t.Run("invalid entries are skipped", func(t *testing.T) {
		mem := store.NewMemoryStore()
		tu.MustSet(t, mem, store.EventsKey, `[`+
			`{"id":"","title":"No id","date":"2025-07-04","time":"19:30","status":"scheduled"},`+
			`{"id":"e1","title":"Bad status","date":"2025-07-04","time":"19:30","status":"paused"},`+
			`{"id":"e2","title":"Good","date":"2025-07-04","time":"19:30","status":"scheduled"}]`)
		e := newTestEngine(t, mem)

		events, err := e.Events().List()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(events) != 1 || events[0].ID != "e2" {
			t.Errorf("expected only e2, got %+v", events)
		}
	})
}

func TestEngineEvents(t *testing.T) {
	t.Run("participants cannot manage events", func(t *testing.T) {
		e, _ := loggedIn(t, "bob")
		event := scheduleEvent(t, e, "Movie night")

		if _, err := e.CreateEvent(draft("Concert")); !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("CreateEvent: expected ErrForbidden, got %v", err)
		}
		if _, err := e.UpdateEvent(event.ID, draft("Concert")); !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("UpdateEvent: expected ErrForbidden, got %v", err)
		}
		if err := e.DeleteEvent(event.ID); !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("DeleteEvent: expected ErrForbidden, got %v", err)
		}
		if _, err := e.StartEvent(event.ID); !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("StartEvent: expected ErrForbidden, got %v", err)
		}
		if _, err := e.CancelEvent(); !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("CancelEvent: expected ErrForbidden, got %v", err)
		}
	})

	t.Run("signed out", func(t *testing.T) {
		e := newTestEngine(t, nil)
		if _, err := e.CreateEvent(draft("Concert")); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("administrator lifecycle", func(t *testing.T) {
		e := newTestEngine(t, nil)
		login(t, e, "aqua", "admin123")

		event, err := e.CreateEvent(draft("Movie night"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if event.CreatedBy != "aqua" {
			t.Errorf("expected aqua as author, got %q", event.CreatedBy)
		}
		if err := e.JoinEvent(event.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := e.UpdateEvent(event.ID, draft("Premiere")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := e.StartEvent(event.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := e.CancelEvent(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := e.DeleteEvent(event.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got, _ := e.Registrations().Attendees(event.ID); len(got) != 0 {
			t.Errorf("expected registrations to be removed, got %v", got)
		}
	})
}
