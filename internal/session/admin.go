package session

import (
	"fmt"
	"strings"

	"github.com/desertthunder/ytparty/internal/models"
	"github.com/desertthunder/ytparty/internal/shared"
)

// AccountEdit lists the fields an administrator may change. Nil fields are left alone.
type AccountEdit struct {
	Alias *string
	Role  *models.Role
	Stats *models.Stats
}

// AdminUpdateAccount edits another account's alias, role or stats.
//
// The current user must be privileged; only the distinguished identity may change roles, and no account
// may be promoted to superadmin. The distinguished identity's alias can only be edited by itself, and is
// kept in its session slot. Editing the current user's own registry entry refreshes the session slot too.
func (e *Engine) AdminUpdateAccount(id string, edit AccountEdit) error {
	actor, err := e.requirePrivileged()
	if err != nil {
		return err
	}
	id = shared.NormalizeAccountID(id)

	if edit.Alias != nil {
		alias := strings.TrimSpace(*edit.Alias)
		if err := models.ValidateAlias(alias); err != nil {
			return err
		}
		edit.Alias = &alias
	}
	if edit.Role != nil {
		if !e.identity.Is(actor.ID) {
			return fmt.Errorf("%w: only the super administrator can change roles", shared.ErrForbidden)
		}
		if *edit.Role != models.RoleParticipant && *edit.Role != models.RoleAdmin {
			return fmt.Errorf("%w: role must be participant or admin", shared.ErrValidationFailed)
		}
	}

	if e.identity.Is(id) {
		if edit.Role != nil || edit.Stats != nil || !e.identity.Is(actor.ID) {
			return fmt.Errorf("%w: %s", shared.ErrProtectedAccount, id)
		}
		if edit.Alias != nil {
			actor.Alias = *edit.Alias
			return e.CommitUser(actor)
		}
		return nil
	}

	registry, err := e.readRegistry()
	if err != nil {
		return err
	}
	registry = e.withoutIdentity(registry)

	idx := indexOf(registry, id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", shared.ErrAccountNotFound, id)
	}

	target := &registry[idx]
	if edit.Alias != nil {
		target.Alias = *edit.Alias
	}
	if edit.Role != nil {
		target.Role = *edit.Role
	}
	if edit.Stats != nil {
		target.Stats = *edit.Stats
	}

	if err := e.writeRegistry(registry); err != nil {
		e.logger.Error("failed to update account", "id", id, "error", err)
		return err
	}
	e.logger.Info("account updated", "id", id, "by", actor.ID)

	if actor.ID == id {
		return e.CommitUser(actor.MergeFrom(target))
	}
	return nil
}

// DeleteAccount removes an account from the registry and from every event registration.
//
// The distinguished identity cannot be deleted, and administrators cannot delete themselves.
func (e *Engine) DeleteAccount(id string) error {
	actor, err := e.requirePrivileged()
	if err != nil {
		return err
	}
	id = shared.NormalizeAccountID(id)

	if e.identity.Is(id) {
		return fmt.Errorf("%w: %s", shared.ErrProtectedAccount, id)
	}
	if actor.ID == id {
		return fmt.Errorf("%w: cannot delete the account in use", shared.ErrForbidden)
	}

	registry, err := e.readRegistry()
	if err != nil {
		return err
	}
	registry = e.withoutIdentity(registry)

	idx := indexOf(registry, id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", shared.ErrAccountNotFound, id)
	}

	registry = append(registry[:idx], registry[idx+1:]...)
	if err := e.writeRegistry(registry); err != nil {
		e.logger.Error("failed to delete account", "id", id, "error", err)
		return err
	}

	if err := e.registrations.RemoveUser(id); err != nil {
		e.logger.Error("failed to remove event registrations", "id", id, "error", err)
		return err
	}

	e.logger.Info("account deleted", "id", id, "by", actor.ID)
	return nil
}

func (e *Engine) requirePrivileged() (*models.Session, error) {
	actor, err := e.current()
	if err != nil {
		return nil, err
	}
	if !actor.Role.Privileged() {
		return nil, fmt.Errorf("%w: administrator role required", shared.ErrForbidden)
	}
	return actor, nil
}
