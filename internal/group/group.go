package group

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrGroupNotFound = errors.New("group not found")
)

// Group represents a contact circle with exactly one admin. The admin is
// fixed at creation, is always also a member, and is never reassigned.
type Group struct {
	ID          string
	AdminID     string
	Name        string
	ColorScheme string
	WelcomeText string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Member is a user's membership view within a group.
type Member struct {
	UserID        string
	ContactNumber string
	FullName      string
	JoinedAt      time.Time
}

// ContactRef pairs a requested contact number with the existing user it
// resolved to.
type ContactRef struct {
	ContactNumber string
	UserID        string
}

// Repository defines the interface for group persistence
type Repository interface {
	// Create inserts the group and its full initial member set in one
	// transaction
	Create(ctx context.Context, g *Group, memberIDs []string) error

	// GetByID retrieves a group by ID
	GetByID(ctx context.Context, id string) (*Group, error)

	// IsMember reports whether userID is in the group's member set
	IsMember(ctx context.Context, userID, groupID string) (bool, error)

	// IsAdmin reports whether userID is the group's admin
	IsAdmin(ctx context.Context, userID, groupID string) (bool, error)

	// RemoveMember disconnects a user from the group
	RemoveMember(ctx context.Context, groupID, userID string) error

	// ListForUser retrieves the groups a user belongs to
	ListForUser(ctx context.Context, userID string) ([]*Group, error)

	// ListMembers retrieves the group's member set
	ListMembers(ctx context.Context, groupID string) ([]*Member, error)

	// ResolveExistingUsers partitions contact numbers into the subset that
	// already exists as users, as one batch query
	ResolveExistingUsers(ctx context.Context, contactNumbers []string) ([]ContactRef, error)

	// ResolveGroupMembers resolves contact numbers to users that are
	// members of the given group, as one batch query
	ResolveGroupMembers(ctx context.Context, groupID string, contactNumbers []string) ([]ContactRef, error)
}

// UserDirectory creates placeholder users for contacts invited at group
// creation before they ever registered.
type UserDirectory interface {
	CreatePlaceholder(ctx context.Context, contactNumber string) (string, error)
}
