package session

import (
	"crypto/subtle"
	"fmt"

	"github.com/desertthunder/ytparty/internal/models"
	"github.com/desertthunder/ytparty/internal/shared"
)

// RegisterNewAccount appends a participant account for id to the registry.
//
// The id is trimmed and lowercased first. Reserved names fail with [shared.ErrNameReserved] and ids already
// used by the distinguished identity or a registry entry (ignoring case) with [shared.ErrNameTaken].
// Registration does not log the account in.
func (e *Engine) RegisterNewAccount(id, credential string) (*models.Account, error) {
	id = shared.NormalizeAccountID(id)

	if err := models.ValidateAccountID(id); err != nil {
		return nil, err
	}
	if err := models.ValidateCredential(credential); err != nil {
		return nil, err
	}
	if e.isReserved(id) {
		return nil, fmt.Errorf("%w: %s", shared.ErrNameReserved, id)
	}

	registry, err := e.readRegistry()
	if err != nil {
		return nil, err
	}
	registry = e.withoutIdentity(registry)

	if shared.SameName(id, e.identity.ID) {
		return nil, fmt.Errorf("%w: %s", shared.ErrNameTaken, id)
	}
	for _, a := range registry {
		if shared.SameName(id, a.ID) {
			return nil, fmt.Errorf("%w: %s", shared.ErrNameTaken, id)
		}
	}

	account := models.NewAccount(id, credential, e.now())
	if err := account.Validate(); err != nil {
		return nil, err
	}

	if err := e.writeRegistry(append(registry, *account)); err != nil {
		e.logger.Error("failed to register account", "id", id, "error", err)
		return nil, err
	}

	e.logger.Info("registered account", "id", id)
	return account, nil
}

// Authenticate checks credential for id and returns a new session for the account.
//
// Unknown ids and wrong credentials both fail with [shared.ErrInvalidCredentials]. Nothing is written;
// pass the session to [Engine.CommitUser] to log in.
func (e *Engine) Authenticate(id, credential string) (*models.Session, error) {
	account, err := e.lookup(id)
	if err != nil {
		return nil, err
	}

	if account == nil || !credentialsMatch(account.Password, credential) {
		e.logger.Info("authentication failed", "id", id)
		return nil, shared.ErrInvalidCredentials
	}

	return models.NewSession(account, e.now(), shared.GenerateID()), nil
}

// ListAccounts returns the distinguished identity followed by the registry, with credentials blanked.
func (e *Engine) ListAccounts() ([]models.Account, error) {
	registry, err := e.readRegistry()
	if err != nil {
		return nil, err
	}
	registry = e.withoutIdentity(registry)

	accounts := make([]models.Account, 0, len(registry)+1)
	accounts = append(accounts, *e.identity.Account())
	accounts = append(accounts, registry...)
	for i := range accounts {
		accounts[i].Password = ""
	}
	return accounts, nil
}

// lookup finds id among the distinguished identity and the registry. A missing account is (nil, nil).
func (e *Engine) lookup(id string) (*models.Account, error) {
	if e.identity.Is(id) {
		return e.identity.Account(), nil
	}

	registry, err := e.readRegistry()
	if err != nil {
		return nil, err
	}
	if idx := indexOf(registry, id); idx >= 0 {
		return &registry[idx], nil
	}
	return nil, nil
}

func (e *Engine) isReserved(id string) bool {
	for _, name := range e.reserved {
		if shared.SameName(id, name) {
			return true
		}
	}
	return false
}

// credentialsMatch compares in constant time. An empty stored credential never matches.
func credentialsMatch(stored, presented string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}
