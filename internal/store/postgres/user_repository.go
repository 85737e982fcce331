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

	"github.com/huddlehq/huddle/internal/id"
	"github.com/huddlehq/huddle/internal/identity"
)

// UserRepository implements identity.UserRepository and group.UserDirectory
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *identity.User) error {
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO users (id, contact_number, full_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, user.ContactNumber, user.FullName, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	user.CreatedAt = now
	user.UpdatedAt = now

	return nil
}

// CreatePlaceholder inserts a user row for an invited contact that has not
// registered yet. No credentials are stored; registration later claims the
// row.
func (r *UserRepository) CreatePlaceholder(ctx context.Context, contactNumber string) (string, error) {
	userID := id.NewUUIDv7()
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO users (id, contact_number, full_name, created_at, updated_at)
		VALUES ($1, $2, '', $3, $3)
	`, userID, contactNumber, now)
	if err != nil {
		return "", fmt.Errorf("failed to insert placeholder user: %w", err)
	}
	return userID, nil
}

// AddCredentials stores the hashed passphrase for a user
func (r *UserRepository) AddCredentials(ctx context.Context, credentials *identity.Credentials) error {
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO credentials (user_id, passphrase_hash, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET passphrase_hash = $2, updated_at = $3
	`, credentials.UserID, credentials.PassphraseHash, now)
	if err != nil {
		return fmt.Errorf("failed to insert credentials: %w", err)
	}

	credentials.UpdatedAt = now

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*identity.User, error) {
	var user identity.User

	err := r.db.pool.QueryRow(ctx, `
		SELECT id, contact_number, full_name, created_at, updated_at
		FROM users
		WHERE id = $1
	`, userID).Scan(
		&user.ID, &user.ContactNumber, &user.FullName,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// GetByContactNumber retrieves a user by contact number
func (r *UserRepository) GetByContactNumber(ctx context.Context, contactNumber string) (*identity.User, error) {
	var user identity.User

	err := r.db.pool.QueryRow(ctx, `
		SELECT id, contact_number, full_name, created_at, updated_at
		FROM users
		WHERE contact_number = $1
	`, contactNumber).Scan(
		&user.ID, &user.ContactNumber, &user.FullName,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// Update updates user information
func (r *UserRepository) Update(ctx context.Context, user *identity.User) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE users SET full_name = $2, updated_at = NOW()
		WHERE id = $1
	`, user.ID, user.FullName)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}

	return nil
}

// Delete removes a user. Memberships, content, tags, and administered
// groups go with the row via the delete cascade, and the contact number
// is released for reuse.
func (r *UserRepository) Delete(ctx context.Context, userID string) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM users WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}

	return nil
}

// GetCredentials retrieves user credentials
func (r *UserRepository) GetCredentials(ctx context.Context, userID string) (*identity.Credentials, error) {
	var creds identity.Credentials

	err := r.db.pool.QueryRow(ctx, `
		SELECT user_id, passphrase_hash, updated_at
		FROM credentials
		WHERE user_id = $1
	`, userID).Scan(&creds.UserID, &creds.PassphraseHash, &creds.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get credentials: %w", err)
	}

	return &creds, nil
}

// UpdatePassphrase replaces the stored passphrase hash
func (r *UserRepository) UpdatePassphrase(ctx context.Context, userID string, passphraseHash string) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE credentials SET passphrase_hash = $2, updated_at = NOW()
		WHERE user_id = $1
	`, userID, passphraseHash)
	if err != nil {
		return fmt.Errorf("failed to update passphrase: %w", err)
	}

	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}

	return nil
}
