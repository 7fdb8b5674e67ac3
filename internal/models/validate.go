package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/desertthunder/ytparty/internal/shared"
	"github.com/go-playground/validator/v10"
)

// MaxAvatarBytes bounds file-sourced avatars.
const MaxAvatarBytes = 2 * 1024 * 1024

// MinCredentialLength is the shortest accepted credential.
const MinCredentialLength = 4

// DefaultReservedNames may never be registered. The distinguished identity's id is always reserved in addition.
var DefaultReservedNames = []string{
	"admin", "administrator", "root", "superuser", "moderator", "mod",
	"owner", "master", "god", "system", "server", "bot", "null", "undefined",
	"test", "demo", "guest", "user", "player", "default",
}

var (
	accountIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	aliasPattern     = regexp.MustCompile(`^[a-zA-Z0-9_\- áéíóúñüÁÉÍÓÚÑÜ]+$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := registerCustomValidators(v); err != nil {
		panic(fmt.Sprintf("failed to register validators: %v", err))
	}
	return v
}

// registerCustomValidators adds the account_id and alias_chars tags.
func registerCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("account_id", func(fl validator.FieldLevel) bool {
		return accountIDPattern.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("alias_chars", func(fl validator.FieldLevel) bool {
		return aliasPattern.MatchString(fl.Field().String())
	})
}

// ValidateAccountID checks an id in its normalized form: 3+ characters of letters, digits, '-' and '_'.
func ValidateAccountID(id string) error {
	return varError("id", validate.Var(id, "required,min=3,account_id"))
}

// ValidateAlias checks a trimmed alias: 2–20 characters of letters, digits, spaces, '-', '_' and accented vowels or ñ.
func ValidateAlias(alias string) error {
	return varError("alias", validate.Var(alias, "required,min=2,max=20,alias_chars"))
}

// ValidateCredential checks a new credential's length.
func ValidateCredential(credential string) error {
	return varError("credential", validate.Var(credential, fmt.Sprintf("required,min=%d", MinCredentialLength)))
}

// ValidateAvatar checks that an avatar is a URL or a data URI.
func ValidateAvatar(avatar string) error {
	return varError("avatar", validate.Var(strings.TrimSpace(avatar), "required,url|datauri"))
}

// roleError reserves the superadmin role for the distinguished identity.
func roleError(identity Identity, id string, r Role) error {
	if r == RoleSuperAdmin && !identity.Is(id) {
		return fmt.Errorf("%w: %s cannot hold the %s role", shared.ErrValidationFailed, id, RoleSuperAdmin)
	}
	return nil
}

func varError(subject string, err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Errorf("%w: %s", shared.ErrValidationFailed, reason(subject, verrs[0]))
	}
	return fmt.Errorf("%w: %s: %v", shared.ErrValidationFailed, subject, err)
}

func structError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%w: %s", shared.ErrValidationFailed, reason(strings.ToLower(fe.Field()), fe))
	}
	return fmt.Errorf("%w: %v", shared.ErrValidationFailed, err)
}

func reason(subject string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return subject + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", subject, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", subject, fe.Param())
	case "account_id":
		return subject + " may only contain letters, digits, '-' and '_'"
	case "alias_chars":
		return subject + " contains characters that are not allowed"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", subject, fe.Param())
	case "url|datauri":
		return subject + " must be a URL or data URI"
	case "datetime":
		return fmt.Sprintf("%s must match the layout %s", subject, fe.Param())
	}
	return fmt.Sprintf("%s failed %q", subject, fe.Tag())
}
