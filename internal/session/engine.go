package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytparty/internal/models"
	"github.com/desertthunder/ytparty/internal/shared"
	"github.com/desertthunder/ytparty/internal/store"
)

// Engine produces the current-user view and keeps the session slot and registry consistent.
//
// It holds no state beyond its dependencies; every operation reads the store afresh.
type Engine struct {
	store         store.IdentityStore
	identity      models.Identity
	reserved      []string
	logger        *log.Logger
	now           func() time.Time
	registrations *RegistrationBook
	events        *EventBook
}

// EngineOpts contains the dependencies of an [Engine]. Zero values are replaced with defaults.
type EngineOpts struct {
	Store         store.IdentityStore
	Identity      models.Identity
	ReservedNames []string
	Logger        *log.Logger
	Clock         func() time.Time
}

// NewEngine creates an Engine with the provided options.
func NewEngine(opts EngineOpts) *Engine {
	if opts.Store == nil {
		opts.Store = store.NewMemoryStore()
	}
	if opts.Identity.ID == "" {
		opts.Identity = models.DefaultIdentity
	}
	if opts.ReservedNames == nil {
		opts.ReservedNames = models.DefaultReservedNames
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return time.Now().UTC() }
	}

	opts.Identity.ID = shared.NormalizeAccountID(opts.Identity.ID)
	reserved := append([]string{opts.Identity.ID}, opts.ReservedNames...)
	logger := shared.WithLogger(opts.Logger, "component", "session")
	registrations := NewRegistrationBook(opts.Store, logger)

	return &Engine{
		store:         opts.Store,
		identity:      opts.Identity,
		reserved:      reserved,
		logger:        logger,
		now:           opts.Clock,
		registrations: registrations,
		events:        NewEventBook(opts.Store, registrations, logger, opts.Clock),
	}
}

// Identity returns the distinguished identity.
func (e *Engine) Identity() models.Identity {
	return e.identity
}

// Registrations returns the event registration book sharing the engine's store.
func (e *Engine) Registrations() *RegistrationBook {
	return e.registrations
}

// Events returns the event catalogue sharing the engine's store.
func (e *Engine) Events() *EventBook {
	return e.events
}

// LoadCurrentUser returns the reconciled current user, or nil when there is no active session.
//
// Registry values for alias, avatar, role and stats override the session slot. A role change is written
// back to the slot. Unreadable values are logged and reported as no session.
func (e *Engine) LoadCurrentUser() *models.Session {
	current, err := e.readSession()
	if err != nil {
		e.logger.Warn("discarding unreadable session", "error", err)
		return nil
	}
	if current == nil {
		e.logger.Debug("no active session")
		return nil
	}

	if e.identity.Is(current.ID) {
		return current
	}

	registry, err := e.readRegistry()
	if err != nil {
		e.logger.Warn("discarding session, registry unreadable", "id", current.ID, "error", err)
		return nil
	}

	idx := indexOf(registry, current.ID)
	if idx < 0 {
		if err := current.ValidateFor(e.identity); err != nil {
			e.logger.Warn("discarding session with no registry entry", "id", current.ID, "error", err)
			return nil
		}
		e.logger.Debug("session has no registry entry", "id", current.ID)
		return current
	}

	merged := current.MergeFrom(&registry[idx])
	if merged.Role != current.Role {
		e.logger.Info("role changed in registry", "id", current.ID, "from", current.Role, "to", merged.Role)
		if err := e.writeSession(merged); err != nil {
			e.logger.Error("failed to persist reconciled session", "id", current.ID, "error", err)
		}
	}

	return merged
}

// CommitUser writes s to the session slot and, unless s is the distinguished identity, through to the registry.
//
// An existing registry entry has its alias, avatar, role and stats replaced; otherwise a new entry is appended.
// Only the distinguished identity may be committed with the superadmin role.
// Storage failures are logged and returned; state persisted before the failure is left intact.
func (e *Engine) CommitUser(s *models.Session) error {
	if s == nil || strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("%w: session id is required", shared.ErrValidationFailed)
	}
	if err := s.ValidateFor(e.identity); err != nil {
		return err
	}

	if err := e.writeSession(s); err != nil {
		e.logger.Error("failed to write session", "id", s.ID, "error", err)
		return err
	}

	if e.identity.Is(s.ID) {
		return nil
	}

	registry, err := e.readRegistry()
	if err != nil {
		e.logger.Error("failed to read registry", "id", s.ID, "error", err)
		return err
	}
	registry = e.withoutIdentity(registry)

	if idx := indexOf(registry, s.ID); idx >= 0 {
		s.ApplyTo(&registry[idx])
	} else {
		registry = append(registry, *s.ToAccount(e.now()))
		e.logger.Info("added session user to registry", "id", s.ID)
	}

	if err := e.writeRegistry(registry); err != nil {
		e.logger.Error("failed to write registry", "id", s.ID, "error", err)
		return err
	}
	return nil
}

// ClearSession removes the session slot. The registry is untouched.
func (e *Engine) ClearSession() error {
	if err := e.store.Remove(store.SessionKey); err != nil {
		e.logger.Error("failed to clear session", "error", err)
		return err
	}
	return nil
}

// current returns the active session or [shared.ErrNotAuthenticated].
func (e *Engine) current() (*models.Session, error) {
	s := e.LoadCurrentUser()
	if s == nil {
		return nil, shared.ErrNotAuthenticated
	}
	return s, nil
}
