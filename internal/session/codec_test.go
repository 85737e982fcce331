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

package session

import (
	"testing"
)

// TestPurpose: Validates that a token carries the claims through an issue/decode round trip, with and without an active group.
// Scope: Unit Test
// Security: Session state integrity
// Expected: Decoded claims equal the issued claims; group scope survives the round trip.
// Test Case ID: SES-01
func TestSession_Codec_RoundTrip(t *testing.T) {
	codec, err := NewCodec([]byte("test-secret"), "huddle")
	if err != nil {
		t.Fatalf("failed to create codec: %v", err)
	}

	// Authenticated, no group
	token, err := codec.Issue(Claims{UserID: "user-1"})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	claims, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("failed to decode token: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("expected user-1, got %s", claims.UserID)
	}
	if claims.GroupScoped() {
		t.Error("expected no group scope before selection")
	}

	// Group-scoped
	scoped, err := codec.Issue(claims.WithGroup("group-1"))
	if err != nil {
		t.Fatalf("failed to issue scoped token: %v", err)
	}

	claims, err = codec.Decode(scoped)
	if err != nil {
		t.Fatalf("failed to decode scoped token: %v", err)
	}
	if !claims.GroupScoped() || claims.Group() != "group-1" {
		t.Errorf("expected group-1 scope, got %q", claims.Group())
	}
}

// TestPurpose: Validates that tokens signed with a different secret are rejected.
// Scope: Unit Test
// Security: Signature verification (prevents token forgery)
// Expected: ErrTokenInvalid for a token signed under another key.
// Test Case ID: SES-02
func TestSession_Codec_WrongSecret(t *testing.T) {
	codec, _ := NewCodec([]byte("secret-a"), "huddle")
	other, _ := NewCodec([]byte("secret-b"), "huddle")

	token, err := other.Issue(Claims{UserID: "user-1"})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	if _, err := codec.Decode(token); err != ErrTokenInvalid {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

// TestPurpose: Validates that malformed and empty token strings are rejected.
// Scope: Unit Test
// Security: Token parsing safety
// Expected: ErrTokenInvalid for garbage input.
// Test Case ID: SES-03
func TestSession_Codec_Malformed(t *testing.T) {
	codec, _ := NewCodec([]byte("test-secret"), "huddle")

	for _, token := range []string{"", "not-a-token", "aaa.bbb.ccc"} {
		if _, err := codec.Decode(token); err != ErrTokenInvalid {
			t.Errorf("token %q: expected ErrTokenInvalid, got %v", token, err)
		}
	}
}

// TestPurpose: Validates that a codec cannot be constructed without a signing secret.
// Scope: Unit Test
// Security: Fail-closed startup (no unsigned sessions)
// Expected: ErrNoSecret for an empty secret.
// Test Case ID: SES-04
func TestSession_Codec_EmptySecret(t *testing.T) {
	if _, err := NewCodec(nil, "huddle"); err != ErrNoSecret {
		t.Errorf("expected ErrNoSecret, got %v", err)
	}
}

func TestSession_Claims_WithGroup(t *testing.T) {
	c := Claims{UserID: "user-1"}
	scoped := c.WithGroup("group-1")

	if scoped.Group() != "group-1" {
		t.Errorf("expected group-1, got %q", scoped.Group())
	}
	// Original claims stay unscoped.
	if c.GroupScoped() {
		t.Error("WithGroup must not mutate the receiver")
	}
}
