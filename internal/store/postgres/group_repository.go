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

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/huddlehq/huddle/internal/group"
)

// GroupRepository implements group.Repository
type GroupRepository struct {
	db *DB
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db *DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create inserts the group and its initial member set in one transaction so
// a group is never visible without its admin membership.
func (r *GroupRepository) Create(ctx context.Context, g *group.Group, memberIDs []string) error {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	_, err = tx.Exec(ctx, `
		INSERT INTO groups (id, admin_id, name, color_scheme, welcome_text, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`, g.ID, g.AdminID, g.Name, g.ColorScheme, g.WelcomeText, g.Description, now)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	for _, userID := range memberIDs {
		_, err = tx.Exec(ctx, `
			INSERT INTO group_members (group_id, user_id, joined_at)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING
		`, g.ID, userID, now)
		if err != nil {
			return fmt.Errorf("failed to insert group member: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit group creation: %w", err)
	}

	g.CreatedAt = now
	g.UpdatedAt = now

	return nil
}

// GetByID retrieves a group by ID
func (r *GroupRepository) GetByID(ctx context.Context, groupID string) (*group.Group, error) {
	var g group.Group

	err := r.db.pool.QueryRow(ctx, `
		SELECT id, admin_id, name, color_scheme, welcome_text, description, created_at, updated_at
		FROM groups
		WHERE id = $1
	`, groupID).Scan(
		&g.ID, &g.AdminID, &g.Name, &g.ColorScheme, &g.WelcomeText, &g.Description,
		&g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, group.ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return &g, nil
}

// IsMember reports whether the user is in the group's member set
func (r *GroupRepository) IsMember(ctx context.Context, userID, groupID string) (bool, error) {
	var exists bool
	err := r.db.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2
		)
	`, groupID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}

// IsAdmin reports whether the user is the group's admin
func (r *GroupRepository) IsAdmin(ctx context.Context, userID, groupID string) (bool, error) {
	var exists bool
	err := r.db.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM groups WHERE id = $1 AND admin_id = $2
		)
	`, groupID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check admin: %w", err)
	}
	return exists, nil
}

// RemoveMember disconnects a user from the group
func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, userID string) error {
	_, err := r.db.pool.Exec(ctx, `
		DELETE FROM group_members WHERE group_id = $1 AND user_id = $2
	`, groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

// ListForUser retrieves the groups a user belongs to
func (r *GroupRepository) ListForUser(ctx context.Context, userID string) ([]*group.Group, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT g.id, g.admin_id, g.name, g.color_scheme, g.welcome_text, g.description, g.created_at, g.updated_at
		FROM groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.user_id = $1
		ORDER BY g.created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*group.Group
	for rows.Next() {
		var g group.Group
		if err := rows.Scan(
			&g.ID, &g.AdminID, &g.Name, &g.ColorScheme, &g.WelcomeText, &g.Description,
			&g.CreatedAt, &g.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, &g)
	}

	return groups, rows.Err()
}

// ListMembers retrieves the group's member set
func (r *GroupRepository) ListMembers(ctx context.Context, groupID string) ([]*group.Member, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT u.id, u.contact_number, u.full_name, m.joined_at
		FROM group_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.group_id = $1
		ORDER BY m.joined_at
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*group.Member
	for rows.Next() {
		var m group.Member
		if err := rows.Scan(&m.UserID, &m.ContactNumber, &m.FullName, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, &m)
	}

	return members, rows.Err()
}

// ResolveExistingUsers resolves contact numbers to existing users as a
// single batch query.
func (r *GroupRepository) ResolveExistingUsers(ctx context.Context, contactNumbers []string) ([]group.ContactRef, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT contact_number, id
		FROM users
		WHERE contact_number = ANY($1)
	`, contactNumbers)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve contacts: %w", err)
	}
	defer rows.Close()

	return scanContactRefs(rows)
}

// ResolveGroupMembers resolves contact numbers to users that are members of
// the group, as a single batch query.
func (r *GroupRepository) ResolveGroupMembers(ctx context.Context, groupID string, contactNumbers []string) ([]group.ContactRef, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT u.contact_number, u.id
		FROM users u
		JOIN group_members m ON m.user_id = u.id
		WHERE m.group_id = $1 AND u.contact_number = ANY($2)
	`, groupID, contactNumbers)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve group members: %w", err)
	}
	defer rows.Close()

	return scanContactRefs(rows)
}

func scanContactRefs(rows pgx.Rows) ([]group.ContactRef, error) {
	var refs []group.ContactRef
	for rows.Next() {
		var ref group.ContactRef
		if err := rows.Scan(&ref.ContactNumber, &ref.UserID); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
