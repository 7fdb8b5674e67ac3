package session

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/ytparty/internal/models"
	"github.com/desertthunder/ytparty/internal/shared"
	"github.com/desertthunder/ytparty/internal/store"
	tu "github.com/desertthunder/ytparty/internal/testing"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func loggedIn(t *testing.T, id string) (*Engine, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	e := newTestEngine(t, mem)
	if _, err := e.RegisterNewAccount(id, "pw5678"); err != nil {
		t.Fatalf("failed to register: %v", err)
	}
	login(t, e, id, "pw5678")
	return e, mem
}

func TestUpdateAlias(t *testing.T) {
	t.Run("requires session", func(t *testing.T) {
		e := newTestEngine(t, nil)
		if _, err := e.UpdateAlias("Someone"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("boundaries", func(t *testing.T) {
		tc := []struct {
			name  string
			alias string
			ok    bool
		}{
			{name: "length 1", alias: "a", ok: false},
			{name: "length 2", alias: "ab", ok: true},
			{name: "length 20", alias: strings.Repeat("b", 20), ok: true},
			{name: "length 21", alias: strings.Repeat("c", 21), ok: false},
			{name: "trimmed to 2", alias: "  ab  ", ok: true},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				e, mem := loggedIn(t, "bob")

				s, err := e.UpdateAlias(tt.alias)
				if !tt.ok {
					if !errors.Is(err, shared.ErrValidationFailed) {
						t.Errorf("expected ErrValidationFailed, got %v", err)
					}
					if registry(t, mem)[0].Alias != "bob" {
						t.Error("rejected alias must not be written")
					}
					return
				}

				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				want := strings.TrimSpace(tt.alias)
				if s.Alias != want || registry(t, mem)[0].Alias != want {
					t.Errorf("expected alias %q in session and registry", want)
				}
			})
		}
	})

	t.Run("ResetAlias", func(t *testing.T) {
		e, _ := loggedIn(t, "bob")
		if _, err := e.UpdateAlias("Bobby"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		s, err := e.ResetAlias()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Alias != "bob" || e.LoadCurrentUser().Alias != "bob" {
			t.Errorf("expected alias reset to id, got %q", s.Alias)
		}
	})
}

func TestAvatar(t *testing.T) {
	t.Run("UpdateAvatar and ClearAvatar", func(t *testing.T) {
		e, mem := loggedIn(t, "bob")

		if _, err := e.UpdateAvatar("https://cdn.example.com/bob.png"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if registry(t, mem)[0].Avatar != "https://cdn.example.com/bob.png" {
			t.Error("avatar not written through")
		}

		if _, err := e.UpdateAvatar("nope"); !errors.Is(err, shared.ErrValidationFailed) {
			t.Errorf("expected ErrValidationFailed, got %v", err)
		}

		s, err := e.ClearAvatar()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Avatar != "" || registry(t, mem)[0].Avatar != "" {
			t.Error("avatar not cleared")
		}
		if s.Alias != "bob" {
			t.Error("clearing avatar must not touch other fields")
		}
	})

	t.Run("UpdateAvatarFromFile", func(t *testing.T) {
		e, _ := loggedIn(t, "bob")
		path := tu.WriteFile(t, "avatar.png", pngHeader)

		s, err := e.UpdateAvatarFromFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(s.Avatar, "data:image/png;base64,") {
			t.Errorf("expected png data URI, got %q", s.Avatar)
		}
	})

	t.Run("rejects non-images", func(t *testing.T) {
		path := tu.WriteFile(t, "notes.txt", []byte("just some text"))
		if _, err := AvatarDataURI(path); !errors.Is(err, shared.ErrValidationFailed) {
			t.Errorf("expected ErrValidationFailed, got %v", err)
		}
	})

	t.Run("rejects files over 2MB", func(t *testing.T) {
		big := append(bytes.Clone(pngHeader), make([]byte, models.MaxAvatarBytes)...)
		path := tu.WriteFile(t, "big.png", big)
		if _, err := AvatarDataURI(path); !errors.Is(err, shared.ErrValidationFailed) {
			t.Errorf("expected ErrValidationFailed, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := AvatarDataURI("/does/not/exist.png"); !errors.Is(err, shared.ErrValidationFailed) {
			t.Errorf("expected ErrValidationFailed, got %v", err)
		}
	})
}

func TestChangeCredential(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		e, _ := loggedIn(t, "bob")

		if err := e.ChangeCredential("pw5678", "newpass", "newpass"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := e.Authenticate("bob", "pw5678"); !errors.Is(err, shared.ErrInvalidCredentials) {
			t.Error("old credential should no longer work")
		}
		if _, err := e.Authenticate("bob", "newpass"); err != nil {
			t.Errorf("new credential should work: %v", err)
		}
	})

	t.Run("failures", func(t *testing.T) {
		tc := []struct {
			name                   string
			current, next, confirm string
			want                   error
		}{
			{name: "missing field", current: "", next: "abcd", confirm: "abcd", want: shared.ErrValidationFailed},
			{name: "mismatch", current: "pw5678", next: "abcd", confirm: "abce", want: shared.ErrValidationFailed},
			{name: "too short", current: "pw5678", next: "abc", confirm: "abc", want: shared.ErrValidationFailed},
			{name: "wrong current", current: "guess", next: "abcd", confirm: "abcd", want: shared.ErrInvalidCredentials},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				e, _ := loggedIn(t, "bob")
				if err := e.ChangeCredential(tt.current, tt.next, tt.confirm); !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
				if _, err := e.Authenticate("bob", "pw5678"); err != nil {
					t.Error("credential should be unchanged after a failure")
				}
			})
		}
	})

	t.Run("distinguished identity", func(t *testing.T) {
		e := newTestEngine(t, nil)
		login(t, e, "aqua", "admin123")
		if err := e.ChangeCredential("admin123", "abcd", "abcd"); !errors.Is(err, shared.ErrProtectedAccount) {
			t.Errorf("expected ErrProtectedAccount, got %v", err)
		}
	})

	t.Run("no session", func(t *testing.T) {
		e := newTestEngine(t, nil)
		if err := e.ChangeCredential("a", "abcd", "abcd"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}
