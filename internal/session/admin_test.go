package session

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/desertthunder/ytparty/internal/models"
	"github.com/desertthunder/ytparty/internal/shared"
	"github.com/desertthunder/ytparty/internal/store"
	tu "github.com/desertthunder/ytparty/internal/testing"
)

func ptr[T any](v T) *T { return &v }

// seeded returns an engine with bob, carol and dave registered and nobody logged in.
func seeded(t *testing.T) (*Engine, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	e := newTestEngine(t, mem)
	for _, id := range []string{"bob", "carol", "dave"} {
		if _, err := e.RegisterNewAccount(id, "pw5678"); err != nil {
			t.Fatalf("failed to register %s: %v", id, err)
		}
	}
	return e, mem
}

func TestListAccounts(t *testing.T) {
	e, _ := seeded(t)

	accounts, err := e.ListAccounts()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(accounts) != 4 {
		t.Fatalf("expected 4 accounts, got %d", len(accounts))
	}
	if accounts[0].ID != "aqua" || accounts[0].Role != models.RoleSuperAdmin {
		t.Errorf("expected identity first, got %+v", accounts[0])
	}
	for _, a := range accounts {
		if a.Password != "" {
			t.Errorf("credential exposed for %s", a.ID)
		}
	}
}

func TestAdminUpdateAccount(t *testing.T) {
	t.Run("requires privileged session", func(t *testing.T) {
		e, _ := seeded(t)
		if err := e.AdminUpdateAccount("carol", AccountEdit{Alias: ptr("Caz")}); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}

		login(t, e, "bob", "pw5678")
		if err := e.AdminUpdateAccount("carol", AccountEdit{Alias: ptr("Caz")}); !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("superadmin promotes and the promoted session heals", func(t *testing.T) {
		e, mem := seeded(t)
		login(t, e, "bob", "pw5678")
		stale := tu.MustGet(t, mem, store.SessionKey)

		login(t, e, "aqua", "admin123")
		if err := e.AdminUpdateAccount("bob", AccountEdit{Role: ptr(models.RoleAdmin), Stats: &models.Stats{TotalSessions: 9}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertNoIdentityInRegistry(t, mem)

		// bob's slot from before the promotion comes back
		tu.MustSet(t, mem, store.SessionKey, string(stale))
		got := e.LoadCurrentUser()
		if got == nil || got.Role != models.RoleAdmin || got.Stats.TotalSessions != 9 {
			t.Fatalf("expected healed admin session, got %+v", got)
		}

		var slot models.Session
		if err := json.Unmarshal(tu.MustGet(t, mem, store.SessionKey), &slot); err != nil {
			t.Fatalf("failed to decode slot: %v", err)
		}
		if slot.Role != models.RoleAdmin {
			t.Errorf("expected slot rewritten with admin role, got %s", slot.Role)
		}
	})

	t.Run("role edits", func(t *testing.T) {
		e, mem := seeded(t)
		login(t, e, "aqua", "admin123")
		if err := e.AdminUpdateAccount("bob", AccountEdit{Role: ptr(models.RoleAdmin)}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := e.AdminUpdateAccount("carol", AccountEdit{Role: ptr(models.RoleSuperAdmin)}); !errors.Is(err, shared.ErrValidationFailed) {
			t.Errorf("expected ErrValidationFailed for superadmin promotion, got %v", err)
		}

		bob := newTestEngine(t, mem)
		login(t, bob, "bob", "pw5678")
		if err := bob.AdminUpdateAccount("carol", AccountEdit{Role: ptr(models.RoleAdmin)}); !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("admins must not change roles, got %v", err)
		}
		if err := bob.AdminUpdateAccount("carol", AccountEdit{Alias: ptr("Caz")}); err != nil {
			t.Errorf("admins may edit aliases: %v", err)
		}
	})

	t.Run("editing own entry refreshes session", func(t *testing.T) {
		e, mem := seeded(t)
		login(t, e, "aqua", "admin123")
		if err := e.AdminUpdateAccount("bob", AccountEdit{Role: ptr(models.RoleAdmin)}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		bob := newTestEngine(t, mem)
		login(t, bob, "bob", "pw5678")
		if err := bob.AdminUpdateAccount("bob", AccountEdit{Alias: ptr("Boss Bob")}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := bob.LoadCurrentUser(); got.Alias != "Boss Bob" {
			t.Errorf("expected refreshed session alias, got %q", got.Alias)
		}
	})

	t.Run("distinguished identity", func(t *testing.T) {
		e, mem := seeded(t)
		login(t, e, "aqua", "admin123")

		if err := e.AdminUpdateAccount("aqua", AccountEdit{Alias: ptr("Big Boss")}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := e.LoadCurrentUser(); got.Alias != "Big Boss" {
			t.Errorf("expected identity alias in session, got %q", got.Alias)
		}
		if err := e.AdminUpdateAccount("aqua", AccountEdit{Stats: &models.Stats{}}); !errors.Is(err, shared.ErrProtectedAccount) {
			t.Errorf("expected ErrProtectedAccount, got %v", err)
		}
		assertNoIdentityInRegistry(t, mem)
	})

	t.Run("unknown account", func(t *testing.T) {
		e, _ := seeded(t)
		login(t, e, "aqua", "admin123")
		if err := e.AdminUpdateAccount("zed", AccountEdit{Alias: ptr("Zed")}); !errors.Is(err, shared.ErrAccountNotFound) {
			t.Errorf("expected ErrAccountNotFound, got %v", err)
		}
	})

	t.Run("invalid alias", func(t *testing.T) {
		e, _ := seeded(t)
		login(t, e, "aqua", "admin123")
		if err := e.AdminUpdateAccount("bob", AccountEdit{Alias: ptr("x")}); !errors.Is(err, shared.ErrValidationFailed) {
			t.Errorf("expected ErrValidationFailed, got %v", err)
		}
	})
}

func TestDeleteAccount(t *testing.T) {
	t.Run("cascades to event registrations", func(t *testing.T) {
		e, mem := seeded(t)
		book := e.Registrations()
		for _, reg := range [][2]string{{"evt-1", "bob"}, {"evt-1", "carol"}, {"evt-2", "bob"}} {
			if err := book.Register(reg[0], reg[1]); err != nil {
				t.Fatalf("failed to register: %v", err)
			}
		}

		login(t, e, "aqua", "admin123")
		if err := e.DeleteAccount("bob"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if indexOf(registry(t, mem), "bob") >= 0 {
			t.Error("bob should be gone from the registry")
		}
		if _, err := e.Authenticate("bob", "pw5678"); !errors.Is(err, shared.ErrInvalidCredentials) {
			t.Error("deleted account should not authenticate")
		}

		evt1, _ := book.Attendees("evt-1")
		evt2, _ := book.Attendees("evt-2")
		if len(evt1) != 1 || evt1[0] != "carol" || len(evt2) != 0 {
			t.Errorf("unexpected attendees after delete: %v / %v", evt1, evt2)
		}
	})

	t.Run("protected and forbidden", func(t *testing.T) {
		e, _ := seeded(t)
		login(t, e, "aqua", "admin123")
		if err := e.DeleteAccount("aqua"); !errors.Is(err, shared.ErrProtectedAccount) {
			t.Errorf("expected ErrProtectedAccount, got %v", err)
		}
		if err := e.DeleteAccount("nobody"); !errors.Is(err, shared.ErrAccountNotFound) {
			t.Errorf("expected ErrAccountNotFound, got %v", err)
		}

		if err := e.AdminUpdateAccount("bob", AccountEdit{Role: ptr(models.RoleAdmin)}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		login(t, e, "bob", "pw5678")
		if err := e.DeleteAccount("bob"); !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("expected ErrForbidden for self-delete, got %v", err)
		}
		if err := e.DeleteAccount("carol"); err != nil {
			t.Errorf("admin should delete participants: %v", err)
		}

		login(t, e, "dave", "pw5678")
		if err := e.DeleteAccount("bob"); !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("expected ErrForbidden for participant, got %v", err)
		}
	})
}
