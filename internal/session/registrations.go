package session

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytparty/internal/shared"
	"github.com/desertthunder/ytparty/internal/store"
)

// RegistrationBook maps event ids to the ids of users registered for them.
type RegistrationBook struct {
	store  store.IdentityStore
	logger *log.Logger
}

// NewRegistrationBook creates a RegistrationBook over s.
func NewRegistrationBook(s store.IdentityStore, logger *log.Logger) *RegistrationBook {
	return &RegistrationBook{store: s, logger: logger}
}

// Register adds userID to eventID. Registering twice is a no-op.
func (b *RegistrationBook) Register(eventID, userID string) error {
	if err := requireIDs(eventID, userID); err != nil {
		return err
	}

	book, err := b.read()
	if err != nil {
		return err
	}
	if slices.Contains(book[eventID], userID) {
		return nil
	}

	book[eventID] = append(book[eventID], userID)
	return b.write(book)
}

// Unregister removes userID from eventID.
func (b *RegistrationBook) Unregister(eventID, userID string) error {
	if err := requireIDs(eventID, userID); err != nil {
		return err
	}

	book, err := b.read()
	if err != nil {
		return err
	}

	attendees, ok := book[eventID]
	if !ok || !slices.Contains(attendees, userID) {
		return nil
	}

	book[eventID] = slices.DeleteFunc(attendees, func(id string) bool { return id == userID })
	return b.write(book)
}

// Attendees returns the users registered for eventID, in registration order.
func (b *RegistrationBook) Attendees(eventID string) ([]string, error) {
	book, err := b.read()
	if err != nil {
		return nil, err
	}
	return slices.Clone(book[eventID]), nil
}

// RemoveUser removes userID from every event. Events left without attendees are kept.
func (b *RegistrationBook) RemoveUser(userID string) error {
	book, err := b.read()
	if err != nil {
		return err
	}

	changed := false
	for eventID, attendees := range book {
		if !slices.Contains(attendees, userID) {
			continue
		}
		book[eventID] = slices.DeleteFunc(attendees, func(id string) bool { return id == userID })
		changed = true
	}

	if !changed {
		return nil
	}
	b.logger.Debug("removed user from events", "id", userID)
	return b.write(book)
}

// RemoveEvent drops every registration for eventID.
func (b *RegistrationBook) RemoveEvent(eventID string) error {
	book, err := b.read()
	if err != nil {
		return err
	}
	if _, ok := book[eventID]; !ok {
		return nil
	}

	delete(book, eventID)
	b.logger.Debug("removed event registrations", "event", eventID)
	return b.write(book)
}

func (b *RegistrationBook) read() (map[string][]string, error) {
	book := map[string][]string{}
	if _, err := readJSON(b.store, store.RegistrationsKey, &book); err != nil {
		return nil, err
	}
	if book == nil {
		book = map[string][]string{}
	}
	return book, nil
}

func (b *RegistrationBook) write(book map[string][]string) error {
	if err := writeJSON(b.store, store.RegistrationsKey, book); err != nil {
		b.logger.Error("failed to write event registrations", "error", err)
		return err
	}
	return nil
}

func requireIDs(eventID, userID string) error {
	if strings.TrimSpace(eventID) == "" || strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: event id and user id are required", shared.ErrValidationFailed)
	}
	return nil
}

// JoinEvent registers the current user for eventID, which must be in the event catalogue.
func (e *Engine) JoinEvent(eventID string) error {
	s, err := e.current()
	if err != nil {
		return err
	}
	event, err := e.events.Get(eventID)
	if err != nil {
		return err
	}
	return e.registrations.Register(event.ID, s.ID)
}

// LeaveEvent removes the current user from eventID.
func (e *Engine) LeaveEvent(eventID string) error {
	s, err := e.current()
	if err != nil {
		return err
	}
	return e.registrations.Unregister(eventID, s.ID)
}
