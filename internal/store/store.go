package store

import (
	"fmt"

	"github.com/desertthunder/ytparty/internal/shared"
)

// Well-known keys.
const (
	SessionKey       = "userData"
	RegistryKey      = "registeredUsers"
	RegistrationsKey = "eventRegistrations"
	EventsKey        = "ytPartyEvents"
)

// IdentityStore is a synchronous key/value store.
type IdentityStore interface {
	Get(key string) ([]byte, error)    // Get returns the value for key, or [shared.ErrKeyNotFound]
	Set(key string, value []byte) error // Set creates or replaces the value for key
	Remove(key string) error            // Remove deletes key; removing a missing key is not an error
}

// Store is an [IdentityStore] that holds resources until closed.
type Store interface {
	IdentityStore
	Close() error
}

// Open creates the store selected by cfg.Driver.
func Open(cfg shared.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return OpenSQLiteStore(cfg)
	case "redis":
		return NewRedisStore(cfg.Redis), nil
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", shared.ErrInvalidConfig, cfg.Driver)
	}
}

func unavailable(op, key string, err error) error {
	return fmt.Errorf("%w: %s %q: %v", shared.ErrStorageUnavailable, op, key, err)
}
