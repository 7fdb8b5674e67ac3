package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Storage errors
	ErrStorageUnavailable = fmt.Errorf("storage unavailable")
	ErrMalformedRecord    = fmt.Errorf("malformed record")
	ErrKeyNotFound        = fmt.Errorf("key not found")

	// Registration and authentication errors
	ErrNameReserved       = fmt.Errorf("name is reserved")
	ErrNameTaken          = fmt.Errorf("name is already taken")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrNotAuthenticated   = fmt.Errorf("not authenticated")

	// Account management errors
	ErrAccountNotFound  = fmt.Errorf("account not found")
	ErrForbidden        = fmt.Errorf("operation not permitted")
	ErrProtectedAccount = fmt.Errorf("account is protected")

	// Event catalogue errors
	ErrEventNotFound   = fmt.Errorf("event not found")
	ErrEventInProgress = fmt.Errorf("another event is already active")

	// Input validation errors
	ErrValidationFailed = fmt.Errorf("validation failed")
	ErrMissingArgument  = fmt.Errorf("missing required argument")
	ErrInvalidArgument  = fmt.Errorf("invalid argument")
)
