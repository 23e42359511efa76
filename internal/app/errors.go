package app

import "errors"

var (
	// ErrInvalidCredentials is returned when the supplied credentials do not
	// match. The message is user-facing and must not enable enumeration.
	ErrInvalidCredentials = errors.New("incorrect login or password")

	// ErrUserBlocked is returned when a blocked account tries to act.
	ErrUserBlocked = errors.New("account is blocked")

	// ErrNotFound covers both truly absent entities and entities the
	// principal may not see. Owner-scoped lookups deliberately conflate
	// "does not exist" with "not yours".
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned for authenticated but not permitted actions.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidToken marks a missing, malformed, or unverifiable session
	// token. A valid token whose user no longer exists is ErrNotFound.
	ErrInvalidToken = errors.New("invalid token")

	// ErrStorageUnavailable is returned when a blob-backed feature is used
	// without object storage configured.
	ErrStorageUnavailable = errors.New("object storage not configured")

	ErrMissingFields         = errors.New("required fields missing")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")

	ErrInvalidPlan      = errors.New("invalid plan")
	ErrInvalidSignature = errors.New("invalid payment signature")
	ErrSlugTaken        = errors.New("slug already in use")

	ErrNameAndContentRequired = errors.New("name and content required")
)
