// Copyright 2026 The Huddle Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package access

import (
	"context"
	"fmt"

	"github.com/huddlehq/huddle/internal/session"
)

// Membership answers the two group predicates every rule is built on.
// Implemented by the group repository.
type Membership interface {
	// IsMember reports whether userID is in the group's member set
	IsMember(ctx context.Context, userID, groupID string) (bool, error)

	// IsAdmin reports whether userID is the group's admin
	IsAdmin(ctx context.Context, userID, groupID string) (bool, error)
}

// Checker implements the per-mutation authorization rules. Every deny is
// ErrDenied regardless of which clause failed.
type Checker struct {
	membership Membership
}

// NewChecker creates a new access checker
func NewChecker(membership Membership) *Checker {
	return &Checker{membership: membership}
}

// CanUpdateUser allows self-update, or an active-group admin updating a
// member of that group. Either way the target must belong to the caller's
// active group, so a group-scoped session is required.
func (c *Checker) CanUpdateUser(ctx context.Context, claims session.Claims, targetUserID string) error {
	if !claims.GroupScoped() {
		return ErrDenied
	}

	targetIsMember, err := c.membership.IsMember(ctx, targetUserID, claims.Group())
	if err != nil {
		return fmt.Errorf("membership check: %w", err)
	}
	if !targetIsMember {
		return ErrDenied
	}

	if claims.UserID == targetUserID {
		return nil
	}

	callerIsAdmin, err := c.membership.IsAdmin(ctx, claims.UserID, claims.Group())
	if err != nil {
		return fmt.Errorf("admin check: %w", err)
	}
	if !callerIsAdmin {
		return ErrDenied
	}
	return nil
}

// CanDeletePost allows the author deleting within the post's own group.
func (c *Checker) CanDeletePost(ctx context.Context, claims session.Claims, authorID, groupID string) error {
	return c.ownerInActiveGroup(claims, authorID, groupID)
}

// CanDeleteComment allows the author deleting within the group of the
// comment's parent post.
func (c *Checker) CanDeleteComment(ctx context.Context, claims session.Claims, authorID, postGroupID string) error {
	return c.ownerInActiveGroup(claims, authorID, postGroupID)
}

// CanDeleteTag applies the post or comment ownership rule depending on which
// target the tag carries; the caller resolves the target to its author and
// group first.
func (c *Checker) CanDeleteTag(ctx context.Context, claims session.Claims, targetAuthorID, targetGroupID string) error {
	return c.ownerInActiveGroup(claims, targetAuthorID, targetGroupID)
}

// CanDeleteUser allows self-deletion only. There is deliberately no admin
// override here, unlike the other destructive operations.
func (c *Checker) CanDeleteUser(claims session.Claims, targetUserID string) error {
	if claims.UserID != targetUserID {
		return ErrDenied
	}
	return nil
}

// CanRemoveMember allows the active group's admin to remove a current member.
// The admin cannot be removed; a group always keeps its admin as a member.
func (c *Checker) CanRemoveMember(ctx context.Context, claims session.Claims, targetUserID string) error {
	if !claims.GroupScoped() {
		return ErrDenied
	}

	callerIsAdmin, err := c.membership.IsAdmin(ctx, claims.UserID, claims.Group())
	if err != nil {
		return fmt.Errorf("admin check: %w", err)
	}
	if !callerIsAdmin {
		return ErrDenied
	}

	if targetUserID == claims.UserID {
		return ErrDenied
	}

	targetIsMember, err := c.membership.IsMember(ctx, targetUserID, claims.Group())
	if err != nil {
		return fmt.Errorf("membership check: %w", err)
	}
	if !targetIsMember {
		return ErrDenied
	}
	return nil
}

// ownerInActiveGroup is the shared content rule: caller authored the entity
// and the session is scoped to the entity's group.
func (c *Checker) ownerInActiveGroup(claims session.Claims, authorID, groupID string) error {
	if !claims.GroupScoped() {
		return ErrDenied
	}
	if claims.UserID != authorID || claims.Group() != groupID {
		return ErrDenied
	}
	return nil
}
