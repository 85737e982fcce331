package access

import "errors"

// The four failure kinds every mutation can surface. Transport maps them to
// status codes; nothing below this package distinguishes finer reasons, so a
// denial never reveals which clause failed or whether an entity exists.
var (
	// ErrUnauthenticated means the request reached a protected operation
	// without decoded session claims.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrDenied means the session is valid but lacks permission: a
	// membership, ownership, or admin check failed.
	ErrDenied = errors.New("permission denied")

	// ErrNotFound means the referenced entity does not exist or is outside
	// the caller's active group.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput means the arguments are malformed.
	ErrInvalidInput = errors.New("invalid input")
)
