package session

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/ytparty/internal/models"
	"github.com/desertthunder/ytparty/internal/shared"
	"github.com/gabriel-vasile/mimetype"
)

// UpdateAlias sets the current user's alias after trimming and validating it.
func (e *Engine) UpdateAlias(alias string) (*models.Session, error) {
	alias = strings.TrimSpace(alias)
	if err := models.ValidateAlias(alias); err != nil {
		return nil, err
	}
	return e.mutate(func(s *models.Session) { s.Alias = alias })
}

// ResetAlias sets the current user's alias back to their id.
func (e *Engine) ResetAlias() (*models.Session, error) {
	return e.mutate(func(s *models.Session) { s.Alias = s.ID })
}

// UpdateAvatar sets the current user's avatar to a URL or data URI.
func (e *Engine) UpdateAvatar(avatar string) (*models.Session, error) {
	avatar = strings.TrimSpace(avatar)
	if err := models.ValidateAvatar(avatar); err != nil {
		return nil, err
	}
	return e.mutate(func(s *models.Session) { s.Avatar = avatar })
}

// UpdateAvatarFromFile reads an image file of at most [models.MaxAvatarBytes] and stores it as a data URI.
func (e *Engine) UpdateAvatarFromFile(path string) (*models.Session, error) {
	avatar, err := AvatarDataURI(path)
	if err != nil {
		return nil, err
	}
	return e.mutate(func(s *models.Session) { s.Avatar = avatar })
}

// ClearAvatar removes the current user's avatar.
func (e *Engine) ClearAvatar() (*models.Session, error) {
	return e.mutate(func(s *models.Session) { s.Avatar = "" })
}

// ChangeCredential replaces the current user's credential after checking the current one.
//
// The distinguished identity's credential comes from configuration and cannot be changed here.
func (e *Engine) ChangeCredential(current, next, confirm string) error {
	s, err := e.current()
	if err != nil {
		return err
	}
	if e.identity.Is(s.ID) {
		return fmt.Errorf("%w: %s credential is configured, not stored", shared.ErrProtectedAccount, s.ID)
	}

	if current == "" || next == "" || confirm == "" {
		return fmt.Errorf("%w: current, new and confirmation credentials are required", shared.ErrValidationFailed)
	}
	if next != confirm {
		return fmt.Errorf("%w: new credentials do not match", shared.ErrValidationFailed)
	}
	if err := models.ValidateCredential(next); err != nil {
		return err
	}

	registry, err := e.readRegistry()
	if err != nil {
		return err
	}

	idx := indexOf(registry, s.ID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", shared.ErrAccountNotFound, s.ID)
	}
	if !credentialsMatch(registry[idx].Password, current) {
		return shared.ErrInvalidCredentials
	}

	registry[idx].Password = next
	if err := e.writeRegistry(registry); err != nil {
		e.logger.Error("failed to change credential", "id", s.ID, "error", err)
		return err
	}

	e.logger.Info("credential changed", "id", s.ID)
	return nil
}

// AvatarDataURI encodes an image file as a base64 data URI.
func AvatarDataURI(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: avatar file: %v", shared.ErrValidationFailed, err)
	}
	if info.Size() > models.MaxAvatarBytes {
		return "", fmt.Errorf("%w: avatar must be smaller than 2MB", shared.ErrValidationFailed)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: avatar file: %v", shared.ErrValidationFailed, err)
	}

	mediaType, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	if !strings.HasPrefix(mediaType, "image/") {
		return "", fmt.Errorf("%w: avatar must be an image, got %s", shared.ErrValidationFailed, mediaType)
	}

	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// mutate applies fn to the current session and commits the result.
func (e *Engine) mutate(fn func(*models.Session)) (*models.Session, error) {
	s, err := e.current()
	if err != nil {
		return nil, err
	}

	fn(s)
	if err := e.CommitUser(s); err != nil {
		return nil, err
	}
	return s, nil
}
