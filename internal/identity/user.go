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

package identity

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidContact     = errors.New("invalid contact number")
	ErrWeakPassphrase     = errors.New("passphrase does not meet security requirements")
)

// User represents a registered identity. Users are addressed by their unique
// contact number; a user invited to a group before registering exists as a
// placeholder row with no credentials until they sign up themselves.
type User struct {
	ID            string
	ContactNumber string
	FullName      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Credentials holds the stored one-way form of a user's passphrase.
// The raw passphrase is never persisted or returned to callers.
type Credentials struct {
	UserID         string
	PassphraseHash string
	UpdatedAt      time.Time
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// AddCredentials stores the hashed passphrase for a user
	AddCredentials(ctx context.Context, credentials *Credentials) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByContactNumber retrieves a user by their unique contact number
	GetByContactNumber(ctx context.Context, contactNumber string) (*User, error)

	// Update updates user information
	Update(ctx context.Context, user *User) error

	// Delete removes a user; dependent rows follow via the delete cascade
	Delete(ctx context.Context, id string) error

	// GetCredentials retrieves user credentials
	GetCredentials(ctx context.Context, userID string) (*Credentials, error)

	// UpdatePassphrase replaces the stored passphrase hash
	UpdatePassphrase(ctx context.Context, userID string, passphraseHash string) error
}
