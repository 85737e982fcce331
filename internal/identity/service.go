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
	"fmt"

	"github.com/huddlehq/huddle/internal/access"
	"github.com/huddlehq/huddle/internal/audit"
	"github.com/huddlehq/huddle/internal/id"
	"github.com/huddlehq/huddle/internal/session"
)

// Service provides identity business logic
type Service struct {
	repo        UserRepository
	hasher      *PassphraseHasher
	checker     *access.Checker
	auditLogger audit.Logger
}

// NewService creates a new identity service
func NewService(repo UserRepository, hasher *PassphraseHasher, checker *access.Checker, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		hasher:      hasher,
		checker:     checker,
		auditLogger: auditLogger,
	}
}

// Register creates a new user with a hashed passphrase. A placeholder user
// created earlier by a group invitation is claimed instead: the row already
// exists with the contact number but carries no credentials yet.
func (s *Service) Register(ctx context.Context, contactNumber, fullName, passphrase string) (*User, error) {
	if !isValidContactNumber(contactNumber) {
		return nil, ErrInvalidContact
	}
	if !isAcceptablePassphrase(passphrase) {
		return nil, ErrWeakPassphrase
	}

	passphraseHash, err := s.hasher.Hash(passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to hash passphrase: %w", err)
	}

	user, err := s.repo.GetByContactNumber(ctx, contactNumber)
	switch {
	case err == nil:
		// Contact already known. Registered users (credentials present)
		// conflict; placeholders are claimed.
		if _, credErr := s.repo.GetCredentials(ctx, user.ID); credErr == nil {
			return nil, ErrUserAlreadyExists
		}
		user.FullName = fullName
		if err := s.repo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to claim placeholder user: %w", err)
		}
	case err == ErrUserNotFound:
		user = &User{
			ID:            id.NewUUIDv7(),
			ContactNumber: contactNumber,
			FullName:      fullName,
		}
		if err := s.repo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to look up contact number: %w", err)
	}

	if err := s.repo.AddCredentials(ctx, &Credentials{
		UserID:         user.ID,
		PassphraseHash: passphraseHash,
	}); err != nil {
		return nil, fmt.Errorf("failed to store credentials: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserCreated,
		ActorID:  user.ID,
		Resource: "user",
	})

	return user, nil
}

// Authenticate verifies a contact number and passphrase pair. Every failure
// mode collapses to ErrInvalidCredentials so callers cannot probe which
// contact numbers are registered.
func (s *Service) Authenticate(ctx context.Context, contactNumber, passphrase string) (*User, error) {
	user, err := s.repo.GetByContactNumber(ctx, contactNumber)
	if err != nil {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeLoginFailed,
			Resource: "login",
			Metadata: map[string]any{"reason": "user_not_found"},
		})
		return nil, ErrInvalidCredentials
	}

	credentials, err := s.repo.GetCredentials(ctx, user.ID)
	if err != nil {
		// Placeholder user: invited but never registered.
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeLoginFailed,
			ActorID:  user.ID,
			Resource: "login",
			Metadata: map[string]any{"reason": "no_credentials"},
		})
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(passphrase, credentials.PassphraseHash) {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeLoginFailed,
			ActorID:  user.ID,
			Resource: "login",
			Metadata: map[string]any{"reason": "invalid_passphrase"},
		})
		return nil, ErrInvalidCredentials
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeLoginSuccess,
		ActorID:  user.ID,
		Resource: "login",
	})

	return user, nil
}

// GetUser retrieves a user by ID
func (s *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateUser updates a user's profile fields, and optionally their
// passphrase. Allowed for the user themselves or for the admin of the
// caller's active group when the target is a member of that group.
func (s *Service) UpdateUser(ctx context.Context, claims session.Claims, targetUserID, fullName, newPassphrase string) (*User, error) {
	if err := s.checker.CanUpdateUser(ctx, claims, targetUserID); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, targetUserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	// The whole request is validated before the first write; a rejected
	// passphrase must not leave a renamed profile behind.
	var newHash string
	if newPassphrase != "" {
		if !isAcceptablePassphrase(newPassphrase) {
			return nil, ErrWeakPassphrase
		}
		newHash, err = s.hasher.Hash(newPassphrase)
		if err != nil {
			return nil, fmt.Errorf("failed to hash passphrase: %w", err)
		}
	}

	if fullName != "" {
		user.FullName = fullName
		if err := s.repo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	if newHash != "" {
		if err := s.repo.UpdatePassphrase(ctx, targetUserID, newHash); err != nil {
			return nil, fmt.Errorf("failed to update passphrase: %w", err)
		}
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserUpdated,
		GroupID:  claims.Group(),
		ActorID:  claims.UserID,
		Resource: "user",
		Metadata: map[string]any{"user_id": targetUserID},
	})

	return user, nil
}

// DeleteUser removes a user. Self-deletion only; memberships, authored
// content, and groups the user administers follow via the store's delete
// cascade, and the contact number becomes free for a fresh registration.
func (s *Service) DeleteUser(ctx context.Context, claims session.Claims, targetUserID string) error {
	if err := s.checker.CanDeleteUser(claims, targetUserID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, targetUserID); err != nil {
		if err == ErrUserNotFound {
			return access.ErrNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserDeleted,
		ActorID:  claims.UserID,
		Resource: "user",
	})

	return nil
}

// Helper functions
func isValidContactNumber(contactNumber string) bool {
	if len(contactNumber) < 4 || len(contactNumber) > 20 {
		return false
	}
	for i, c := range contactNumber {
		if c >= '0' && c <= '9' {
			continue
		}
		if c == '+' && i == 0 {
			continue
		}
		return false
	}
	return true
}

func isAcceptablePassphrase(passphrase string) bool {
	return len(passphrase) >= 8
}
