package session

import (
	"errors"
)

// Domain errors
var (
	ErrTokenInvalid = errors.New("session token invalid")
	ErrNoSecret     = errors.New("signing secret is empty")
)

// Claims is the decoded content of a session token. ActiveGroup is nil until
// the user selects a group; every group-scoped mutation requires it to be set.
// Claims are decoded once per request and passed through the call chain;
// there is no server-side session store.
type Claims struct {
	UserID      string
	ActiveGroup *string
}

// GroupScoped reports whether the session is bound to a group.
func (c Claims) GroupScoped() bool {
	return c.ActiveGroup != nil && *c.ActiveGroup != ""
}

// Group returns the active group ID, or "" for an authenticated-only session.
func (c Claims) Group() string {
	if c.ActiveGroup == nil {
		return ""
	}
	return *c.ActiveGroup
}

// WithGroup returns a copy of the claims bound to the given group.
func (c Claims) WithGroup(groupID string) Claims {
	return Claims{UserID: c.UserID, ActiveGroup: &groupID}
}
