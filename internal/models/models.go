// package models defines the identity records for the watch party session engine
package models

import (
	"time"
)

// Model defines the base interface for records that cross a storage boundary.
type Model interface {
	Validate() error // Validate checks if the record's data is valid and returns an error if not
}

// Role is an account's privilege level.
type Role string

const (
	RoleParticipant Role = "participant"
	RoleAdmin       Role = "admin"
	RoleSuperAdmin  Role = "superadmin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleParticipant, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// Privileged reports whether r may manage other accounts.
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Stats aggregates a user's listening history.
type Stats struct {
	TotalSessions      int     `json:"totalSessions"`
	TotalTimeConnected int64   `json:"totalTimeConnected"` // seconds
	AverageRating      float64 `json:"averageRating"`
}

// Account is the durable record of a non-distinguished user, as stored in the registry.
type Account struct {
	ID        string    `json:"id" validate:"required,min=3,account_id"`
	Password  string    `json:"password"`
	Role      Role      `json:"role" validate:"required,oneof=participant admin superadmin"`
	Alias     string    `json:"alias"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
	Stats     Stats     `json:"stats"`
}

// NewAccount creates a participant account whose alias defaults to its id.
func NewAccount(id, credential string, createdAt time.Time) *Account {
	return &Account{
		ID:        id,
		Password:  credential,
		Role:      RoleParticipant,
		Alias:     id,
		CreatedAt: createdAt,
	}
}

// Validate checks the id and role of the account.
func (a *Account) Validate() error {
	return structError(validate.Struct(a))
}

// ValidateFor validates a and rejects the superadmin role on any id but the identity's.
func (a *Account) ValidateFor(identity Identity) error {
	if err := a.Validate(); err != nil {
		return err
	}
	return roleError(identity, a.ID, a.Role)
}

// DisplayName returns the alias, or the id when no alias is set.
func (a *Account) DisplayName() string {
	if a.Alias != "" {
		return a.Alias
	}
	return a.ID
}

// Session is the active-session view of an account.
//
// It never carries the credential. JoinTime and SessionID are minted at authentication
// and are not written to the registry.
type Session struct {
	ID        string    `json:"id" validate:"required"`
	Role      Role      `json:"role" validate:"required,oneof=participant admin superadmin"`
	Alias     string    `json:"alias"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
	Stats     Stats     `json:"stats"`
	JoinTime  time.Time `json:"joinTime"`
	SessionID string    `json:"sessionId,omitempty"`
}

// NewSession derives a session from an account.
func NewSession(a *Account, joinTime time.Time, sessionID string) *Session {
	return &Session{
		ID:        a.ID,
		Role:      a.Role,
		Alias:     a.DisplayName(),
		Avatar:    a.Avatar,
		CreatedAt: a.CreatedAt,
		Stats:     a.Stats,
		JoinTime:  joinTime,
		SessionID: sessionID,
	}
}

// Validate checks that the session names a user and a known role.
func (s *Session) Validate() error {
	return structError(validate.Struct(s))
}

// ValidateFor validates s and rejects the superadmin role on any id but the identity's.
func (s *Session) ValidateFor(identity Identity) error {
	if err := s.Validate(); err != nil {
		return err
	}
	return roleError(identity, s.ID, s.Role)
}

// Clone returns a copy of s.
func (s *Session) Clone() *Session {
	c := *s
	return &c
}

// DisplayName returns the alias, or the id when no alias is set.
func (s *Session) DisplayName() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.ID
}

// MergeFrom returns a copy of s with the registry-owned fields taken from a.
func (s *Session) MergeFrom(a *Account) *Session {
	merged := s.Clone()
	merged.Alias = a.Alias
	merged.Avatar = a.Avatar
	merged.Role = a.Role
	merged.Stats = a.Stats
	return merged
}

// ApplyTo copies the session-owned fields onto a registry account.
// The credential and creation time are left alone.
func (s *Session) ApplyTo(a *Account) {
	a.Alias = s.Alias
	a.Avatar = s.Avatar
	a.Role = s.Role
	a.Stats = s.Stats
}

// ToAccount synthesizes a registry account for a session with no registry counterpart.
//
// The account carries no credential, so it cannot be used to authenticate until one is set.
func (s *Session) ToAccount(now time.Time) *Account {
	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	return &Account{
		ID:        s.ID,
		Role:      s.Role,
		Alias:     s.Alias,
		Avatar:    s.Avatar,
		CreatedAt: createdAt,
		Stats:     s.Stats,
	}
}

// Identity is the distinguished super-administrator.
//
// It is always present, cannot be deleted, and must never appear in the account registry.
type Identity struct {
	ID         string
	Alias      string
	Credential string
}

// DefaultIdentity is used when no identity is configured.
var DefaultIdentity = Identity{ID: "aqua", Alias: "Aqua Admin", Credential: "admin123"}

// Is reports whether id names the distinguished identity. Ids are compared in stored (lowercase) form.
func (i Identity) Is(id string) bool {
	return i.ID != "" && id == i.ID
}

// Account returns the built-in account record for the identity.
func (i Identity) Account() *Account {
	alias := i.Alias
	if alias == "" {
		alias = i.ID
	}
	return &Account{
		ID:       i.ID,
		Password: i.Credential,
		Role:     RoleSuperAdmin,
		Alias:    alias,
	}
}
