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

package group

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/huddlehq/huddle/internal/access"
	"github.com/huddlehq/huddle/internal/audit"
	"github.com/huddlehq/huddle/internal/id"
	"github.com/huddlehq/huddle/internal/session"
)

// Attributes are the display fields of a group, opaque to authorization.
type Attributes struct {
	Name        string
	ColorScheme string
	WelcomeText string
	Description string
}

// Service provides group management business logic
type Service struct {
	repo        Repository
	directory   UserDirectory
	checker     *access.Checker
	auditLogger audit.Logger
}

// NewService creates a new group service
func NewService(repo Repository, directory UserDirectory, checker *access.Checker, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		directory:   directory,
		checker:     checker,
		auditLogger: auditLogger,
	}
}

// Create creates a group with the caller as admin and member. Invited contact
// numbers that already belong to users are connected; the rest get placeholder
// user rows so the invitation survives until they register. Resolution is one
// batch lookup, not a query per contact.
func (s *Service) Create(ctx context.Context, adminID string, attrs Attributes, inviteContacts []string) (*Group, error) {
	contacts := lo.Uniq(lo.Filter(inviteContacts, func(c string, _ int) bool { return c != "" }))

	memberIDs := []string{adminID}
	if len(contacts) > 0 {
		existing, err := s.repo.ResolveExistingUsers(ctx, contacts)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve invited contacts: %w", err)
		}

		resolved := make(map[string]string, len(existing))
		for _, ref := range existing {
			resolved[ref.ContactNumber] = ref.UserID
		}

		// Placeholders are inserted outside the group transaction. If the
		// group insert fails they remain valid unclaimed user rows: a later
		// invite resolves them and registration claims them.
		for _, contact := range contacts {
			userID, ok := resolved[contact]
			if !ok {
				userID, err = s.directory.CreatePlaceholder(ctx, contact)
				if err != nil {
					return nil, fmt.Errorf("failed to create placeholder for invited contact: %w", err)
				}
			}
			memberIDs = append(memberIDs, userID)
		}
	}

	g := &Group{
		ID:          id.NewUUIDv7(),
		AdminID:     adminID,
		Name:        attrs.Name,
		ColorScheme: attrs.ColorScheme,
		WelcomeText: attrs.WelcomeText,
		Description: attrs.Description,
	}

	if err := s.repo.Create(ctx, g, lo.Uniq(memberIDs)); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeGroupCreated,
		GroupID:  g.ID,
		ActorID:  adminID,
		Resource: "group",
		Metadata: map[string]any{"invited": len(contacts)},
	})

	return g, nil
}

// Select verifies membership and returns the group the session will be
// scoped to. Non-members are denied without revealing whether the group
// exists. The membership check happens here, at token issuance, and is not
// re-verified on later group-scoped calls.
func (s *Service) Select(ctx context.Context, userID, groupID string) (*Group, error) {
	member, err := s.repo.IsMember(ctx, userID, groupID)
	if err != nil {
		return nil, fmt.Errorf("membership check: %w", err)
	}
	if !member {
		return nil, access.ErrDenied
	}

	g, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		if err == ErrGroupNotFound {
			return nil, access.ErrDenied
		}
		return nil, fmt.Errorf("failed to load group: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeGroupSelected,
		GroupID:  groupID,
		ActorID:  userID,
		Resource: "group",
	})

	return g, nil
}

// RemoveMember removes a member from the caller's active group. Admin only;
// the admin cannot remove themselves.
func (s *Service) RemoveMember(ctx context.Context, claims session.Claims, targetUserID string) error {
	if err := s.checker.CanRemoveMember(ctx, claims, targetUserID); err != nil {
		return err
	}

	if err := s.repo.RemoveMember(ctx, claims.Group(), targetUserID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeMemberRemoved,
		GroupID:  claims.Group(),
		ActorID:  claims.UserID,
		Resource: "group_member",
		Metadata: map[string]any{"user_id": targetUserID},
	})

	return nil
}

// ListForUser returns the groups the user is a member of.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*Group, error) {
	return s.repo.ListForUser(ctx, userID)
}

// Members returns the member set of the caller's active group.
func (s *Service) Members(ctx context.Context, claims session.Claims) ([]*Member, error) {
	if !claims.GroupScoped() {
		return nil, access.ErrDenied
	}
	return s.repo.ListMembers(ctx, claims.Group())
}
