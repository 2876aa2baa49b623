package errs

import (
	"errors"
)

// Taxonomy of the lifecycle manager. Backend/store failures are mapped to
// these at the service boundary; handlers never see raw driver errors.
var (
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrNotVerified         = errors.New("email address is not verified")
	ErrCapacityExceeded    = errors.New("no free loan slot left")
	ErrItemUnavailable     = errors.New("no copies of this item are available")
	ErrNotFound            = errors.New("not found")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrUnavailable         = errors.New("service temporarily unavailable")
	ErrValidation          = errors.New("validation failed")
	ErrRequiresRecentLogin = errors.New("sensitive operation requires a recent login")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyRegistered  = errors.New("username or email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
