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
	"testing"

	"github.com/huddlehq/huddle/internal/session"
)

// fakeMembership is an in-memory Membership with fixed group rosters.
type fakeMembership struct {
	members map[string][]string // groupID -> user IDs
	admins  map[string]string   // groupID -> admin user ID
}

func (f *fakeMembership) IsMember(ctx context.Context, userID, groupID string) (bool, error) {
	for _, id := range f.members[groupID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMembership) IsAdmin(ctx context.Context, userID, groupID string) (bool, error) {
	return f.admins[groupID] == userID, nil
}

func testChecker() *Checker {
	return NewChecker(&fakeMembership{
		members: map[string][]string{
			"group-1": {"admin-1", "member-1", "member-2"},
			"group-2": {"member-1", "other-1"},
		},
		admins: map[string]string{
			"group-1": "admin-1",
			"group-2": "other-1",
		},
	})
}

func scoped(userID, groupID string) session.Claims {
	return session.Claims{UserID: userID}.WithGroup(groupID)
}

// TestPurpose: Validates the content deletion rule: only the author, and only while scoped to the content's group.
// Scope: Unit Test
// Security: Ownership enforcement on destructive operations
// Expected: Author in the right group passes; wrong author, wrong group, or missing group scope is denied.
// Test Case ID: ACC-01
func TestAccess_Checker_DeleteContent(t *testing.T) {
	c := testChecker()
	ctx := context.Background()

	tests := []struct {
		name     string
		claims   session.Claims
		authorID string
		groupID  string
		wantErr  error
	}{
		{"author in own group", scoped("member-1", "group-1"), "member-1", "group-1", nil},
		{"not the author", scoped("member-2", "group-1"), "member-1", "group-1", ErrDenied},
		{"author scoped to another group", scoped("member-1", "group-2"), "member-1", "group-1", ErrDenied},
		{"no group scope", session.Claims{UserID: "member-1"}, "member-1", "group-1", ErrDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.CanDeletePost(ctx, tt.claims, tt.authorID, tt.groupID); err != tt.wantErr {
				t.Errorf("CanDeletePost: expected %v, got %v", tt.wantErr, err)
			}
			// Comments and tags share the ownership rule.
			if err := c.CanDeleteComment(ctx, tt.claims, tt.authorID, tt.groupID); err != tt.wantErr {
				t.Errorf("CanDeleteComment: expected %v, got %v", tt.wantErr, err)
			}
			if err := c.CanDeleteTag(ctx, tt.claims, tt.authorID, tt.groupID); err != tt.wantErr {
				t.Errorf("CanDeleteTag: expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestPurpose: Validates member removal: admin only, never self, and the target must currently be a member.
// Scope: Unit Test
// Security: Admin privilege boundary
// Expected: Admin removing a member passes; non-admin, self-removal, and non-member targets are denied.
// Test Case ID: ACC-02
func TestAccess_Checker_RemoveMember(t *testing.T) {
	c := testChecker()
	ctx := context.Background()

	tests := []struct {
		name    string
		claims  session.Claims
		target  string
		wantErr error
	}{
		{"admin removes member", scoped("admin-1", "group-1"), "member-1", nil},
		{"non-admin denied", scoped("member-1", "group-1"), "member-2", ErrDenied},
		{"admin cannot remove self", scoped("admin-1", "group-1"), "admin-1", ErrDenied},
		{"target not a member", scoped("admin-1", "group-1"), "stranger-1", ErrDenied},
		{"no group scope", session.Claims{UserID: "admin-1"}, "member-1", ErrDenied},
		{"admin of another group", scoped("other-1", "group-1"), "member-1", ErrDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.CanRemoveMember(ctx, tt.claims, tt.target); err != tt.wantErr {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestPurpose: Validates profile updates: the user themselves, or the active-group admin over a member of that group.
// Scope: Unit Test
// Security: Cross-user write protection
// Expected: Self and admin-over-member pass; peers and out-of-group targets are denied.
// Test Case ID: ACC-03
func TestAccess_Checker_UpdateUser(t *testing.T) {
	c := testChecker()
	ctx := context.Background()

	tests := []struct {
		name    string
		claims  session.Claims
		target  string
		wantErr error
	}{
		{"self update", scoped("member-1", "group-1"), "member-1", nil},
		{"admin updates member", scoped("admin-1", "group-1"), "member-1", nil},
		{"peer denied", scoped("member-2", "group-1"), "member-1", ErrDenied},
		{"target outside active group", scoped("admin-1", "group-1"), "other-1", ErrDenied},
		{"no group scope", session.Claims{UserID: "member-1"}, "member-1", ErrDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.CanUpdateUser(ctx, tt.claims, tt.target); err != tt.wantErr {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestPurpose: Validates that account deletion is self-service only, with no admin override.
// Scope: Unit Test
// Security: Account lifecycle boundary
// Expected: Self passes; anyone else, including a group admin, is denied.
// Test Case ID: ACC-04
func TestAccess_Checker_DeleteUser(t *testing.T) {
	c := testChecker()

	if err := c.CanDeleteUser(scoped("member-1", "group-1"), "member-1"); err != nil {
		t.Errorf("self-deletion should pass, got %v", err)
	}
	if err := c.CanDeleteUser(session.Claims{UserID: "member-1"}, "member-1"); err != nil {
		t.Errorf("self-deletion without group scope should pass, got %v", err)
	}
	if err := c.CanDeleteUser(scoped("admin-1", "group-1"), "member-1"); err != ErrDenied {
		t.Errorf("admin deleting another user should be denied, got %v", err)
	}
}
