package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/desertthunder/ytparty/internal/models"
	"github.com/desertthunder/ytparty/internal/shared"
	"github.com/desertthunder/ytparty/internal/store"
)

// readJSON decodes key into v. found is false when the key is absent.
func readJSON(s store.IdentityStore, key string, v any) (found bool, err error) {
	data, err := s.Get(key)
	if errors.Is(err, shared.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%w: %s: %v", shared.ErrMalformedRecord, key, err)
	}
	return true, nil
}

func writeJSON(s store.IdentityStore, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Set(key, data)
}

// readSession returns the session slot, or nil when it is empty.
func (e *Engine) readSession() (*models.Session, error) {
	var s models.Session
	found, err := readJSON(e.store, store.SessionKey, &s)
	if err != nil || !found {
		return nil, err
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrMalformedRecord, store.SessionKey, err)
	}
	return &s, nil
}

func (e *Engine) writeSession(s *models.Session) error {
	return writeJSON(e.store, store.SessionKey, s)
}

// readRegistry returns the registry; an absent registry is empty.
//
// Entries failing validation are skipped with a warning and dropped on the next registry write.
// Entries claiming the distinguished id are kept for [Engine.withoutIdentity] to strip.
func (e *Engine) readRegistry() ([]models.Account, error) {
	var accounts []models.Account
	if _, err := readJSON(e.store, store.RegistryKey, &accounts); err != nil {
		return nil, err
	}

	valid := accounts[:0]
	for _, a := range accounts {
		if !e.identity.Is(a.ID) {
			if err := a.ValidateFor(e.identity); err != nil {
				e.logger.Warn("skipping invalid registry entry", "id", a.ID, "error", err)
				continue
			}
		}
		valid = append(valid, a)
	}
	return valid, nil
}

func (e *Engine) writeRegistry(accounts []models.Account) error {
	if accounts == nil {
		accounts = []models.Account{}
	}
	return writeJSON(e.store, store.RegistryKey, accounts)
}

// withoutIdentity drops any registry entry claiming the distinguished id.
func (e *Engine) withoutIdentity(accounts []models.Account) []models.Account {
	kept := accounts[:0]
	for _, a := range accounts {
		if e.identity.Is(a.ID) {
			e.logger.Warn("removing distinguished identity from registry", "id", a.ID)
			continue
		}
		kept = append(kept, a)
	}
	return kept
}

func indexOf(accounts []models.Account, id string) int {
	for i := range accounts {
		if accounts[i].ID == id {
			return i
		}
	}
	return -1
}
